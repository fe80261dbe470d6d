package bridge

import (
	"context"
	"fmt"
	"time"

	"github.com/itsbrianburton/sunseeker-bridge/internal/archive"
	"github.com/itsbrianburton/sunseeker-bridge/internal/bridge/server"
	"github.com/itsbrianburton/sunseeker-bridge/internal/bridge/server/http"
	"github.com/itsbrianburton/sunseeker-bridge/internal/hass"
	"github.com/itsbrianburton/sunseeker-bridge/internal/mower"
	"github.com/itsbrianburton/sunseeker-bridge/internal/pkg/metrics"
	"github.com/itsbrianburton/sunseeker-bridge/internal/schedule"
	"github.com/itsbrianburton/sunseeker-bridge/pkg/log"
	pkgmqtt "github.com/itsbrianburton/sunseeker-bridge/pkg/mqtt"
	"github.com/itsbrianburton/sunseeker-bridge/pkg/options"
)

// connectWait bounds how long startup waits for the first broker
// connection. A broker that is down at startup leaves the bridge running
// in degraded form; autopaho keeps retrying in the background.
const connectWait = 10 * time.Second

// connectivityPollInterval drives the broker connectivity gauge.
const connectivityPollInterval = 5 * time.Second

type Config struct {
	MqttOptions     *options.MqttOptions
	HttpOptions     *options.HttpOptions
	S3Options       *options.S3Options
	MowerOptions    *options.MowerOptions
	HassOptions     *options.HassOptions
	ScheduleOptions *options.ScheduleOptions
}

// New assembles the bridge: the shared MQTT client, the mower coordinator,
// the Home Assistant surface and the optional schedule watcher and
// snapshot archiver, all run under one server manager.
func (cfg *Config) New() (*Bridge, error) {
	logger := log.Std()

	topics := hass.NewTopics(cfg.HassOptions.DiscoveryPrefix, cfg.HassOptions.TopicRoot, cfg.MowerOptions.DeviceID)

	clientConfig := cfg.MqttOptions.ToClientConfig()
	if cfg.HassOptions.Enabled {
		// The LWT flips the device to offline in Home Assistant when the
		// bridge dies without a clean shutdown.
		clientConfig.WillTopic = topics.Availability
		clientConfig.WillPayload = []byte("offline")
		clientConfig.WillQoS = 1
		clientConfig.WillRetain = true
	}

	client, err := pkgmqtt.NewClient(clientConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to init mqtt client: %w", err)
	}

	coord, err := mower.NewCoordinator(mower.Config{
		DeviceID:        cfg.MowerOptions.DeviceID,
		TopicPrefix:     cfg.MowerOptions.TopicPrefix,
		RefreshInterval: cfg.MowerOptions.RefreshInterval,
		CommandPause:    cfg.MowerOptions.CommandPause,
		RefreshTimeout:  cfg.MowerOptions.RefreshTimeout,
	}, client, logger)
	if err != nil {
		return nil, err
	}

	servers := []server.Server{
		connectivityServer(client),
		coordinatorServer(coord),
	}

	if cfg.HassOptions.Enabled {
		publisher := hass.NewPublisher(client, coord, topics, cfg.MowerOptions.Name, logger)
		servers = append(servers, componentServer(publisher.Start, publisher.Stop))
	}

	if cfg.ScheduleOptions.Enabled() {
		watcher, err := schedule.NewWatcher(cfg.ScheduleOptions.File, coord, logger)
		if err != nil {
			return nil, fmt.Errorf("failed to init schedule watcher: %w", err)
		}
		servers = append(servers, server.ServerFunc(func(ctx context.Context) error {
			if err := watcher.Start(ctx); err != nil {
				return err
			}
			<-ctx.Done()
			watcher.Wait()
			return nil
		}))
	}

	if cfg.S3Options.Enabled() {
		archiver, err := archive.NewArchiver(cfg.S3Options, coord, logger)
		if err != nil {
			return nil, err
		}
		servers = append(servers, server.ServerFunc(func(ctx context.Context) error {
			if err := archiver.Start(ctx); err != nil {
				return err
			}
			<-ctx.Done()
			archiver.Wait()
			return nil
		}))
	}

	handler := http.NewHandler(coord, logger)
	servers = append(servers, http.NewServer(cfg.HttpOptions, handler, client.IsConnected))

	return &Bridge{
		client:  client,
		manager: server.NewManager(servers...),
	}, nil
}

// connectivityServer keeps the broker connectivity gauge current.
func connectivityServer(client pkgmqtt.Client) server.Server {
	return server.ServerFunc(func(ctx context.Context) error {
		ticker := time.NewTicker(connectivityPollInterval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return nil
			case <-ticker.C:
				if client.IsConnected() {
					metrics.BrokerConnectivityStatus.Set(1)
				} else {
					metrics.BrokerConnectivityStatus.Set(0)
				}
			}
		}
	})
}

func coordinatorServer(coord *mower.Coordinator) server.Server {
	return componentServer(coord.Start, coord.Stop)
}

// componentServer adapts start/stop components to the blocking Server
// contract.
func componentServer(start func(ctx context.Context) error, stop func(ctx context.Context)) server.Server {
	return server.ServerFunc(func(ctx context.Context) error {
		if err := start(ctx); err != nil {
			return err
		}
		<-ctx.Done()
		stopCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		stop(stopCtx)
		return nil
	})
}
