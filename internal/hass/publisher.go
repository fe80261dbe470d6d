package hass

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/itsbrianburton/sunseeker-bridge/internal/mower"
	"github.com/itsbrianburton/sunseeker-bridge/pkg/log"
	"github.com/itsbrianburton/sunseeker-bridge/pkg/mqtt"
)

const qosAtLeastOnce = 1

const (
	payloadOnline  = "online"
	payloadOffline = "offline"
)

// Publisher exposes one mower to Home Assistant: it publishes the retained
// discovery config and state documents, and maps commands arriving from
// Home Assistant into mower commands.
type Publisher struct {
	logger   log.Logger
	client   mqtt.Client
	coord    *mower.Coordinator
	topics   Topics
	identity Identity

	// identityComplete flips once discovery has been republished with the
	// model and firmware version from the first robot status payload.
	identityComplete bool

	// announced tracks whether the retained discovery and availability
	// messages reached the broker. Publishing retries on the next update
	// when the broker was down at startup.
	announced bool

	cancel context.CancelFunc
	done   chan struct{}
}

// NewPublisher creates a publisher for the given coordinator. Name is the
// display name used for the device and the lawn mower entity.
func NewPublisher(client mqtt.Client, coord *mower.Coordinator, topics Topics, name string, logger log.Logger) *Publisher {
	if logger == nil {
		logger = log.NewNopLogger()
	}
	return &Publisher{
		logger: logger.WithName("hass").WithValues("device", coord.DeviceID()),
		client: client,
		coord:  coord,
		topics: topics,
		identity: Identity{
			DeviceID: coord.DeviceID(),
			Name:     name,
		},
	}
}

// Start publishes discovery and availability, subscribes to the command
// topics and begins forwarding snapshot updates to the state topic.
func (p *Publisher) Start(ctx context.Context) error {
	if err := p.announce(ctx); err != nil {
		// Not fatal, the broker may simply not be up yet. The next
		// snapshot update retries.
		p.logger.Warn("Discovery announcement deferred", "err", err)
	}

	subscriptions := map[string]mqtt.MessageHandler{
		p.topics.Command:          p.onCommand,
		p.topics.RainCommand:      p.onRainCommand,
		p.topics.RainDelayCommand: p.onRainDelayCommand,
	}
	for topic, handler := range subscriptions {
		if err := p.client.Subscribe(ctx, topic, qosAtLeastOnce, handler); err != nil {
			return fmt.Errorf("subscribe %s: %w", topic, err)
		}
	}

	updates := p.coord.Updates()
	loopCtx, cancel := context.WithCancel(context.Background())
	p.cancel = cancel
	p.done = make(chan struct{})
	go p.run(loopCtx, updates)

	p.logger.Info("Home Assistant surface started", "discoveryTopic", p.topics.Discovery)
	return nil
}

// Stop marks the device offline, tears down the command subscriptions and
// stops the forwarding loop. Idempotent.
func (p *Publisher) Stop(ctx context.Context) {
	if p.cancel == nil {
		return
	}
	p.cancel()
	<-p.done
	p.cancel = nil

	for _, topic := range []string{p.topics.Command, p.topics.RainCommand, p.topics.RainDelayCommand} {
		if err := p.client.Unsubscribe(ctx, topic); err != nil {
			p.logger.Warn("Unsubscribe failed during shutdown", "topic", topic, "err", err)
		}
	}
	if err := p.client.Publish(ctx, p.topics.Availability, qosAtLeastOnce, true, []byte(payloadOffline)); err != nil {
		p.logger.Warn("Failed to publish offline availability", "err", err)
	}
}

func (p *Publisher) run(ctx context.Context, updates <-chan mower.Update) {
	defer close(p.done)

	for {
		select {
		case <-ctx.Done():
			return
		case u, open := <-updates:
			if !open {
				return
			}
			p.publishState(ctx, u.Snapshot)
		}
	}
}

// announce publishes the retained discovery config and marks the device
// online.
func (p *Publisher) announce(ctx context.Context) error {
	if err := p.publishDiscovery(ctx); err != nil {
		return err
	}
	if err := p.client.Publish(ctx, p.topics.Availability, qosAtLeastOnce, true, []byte(payloadOnline)); err != nil {
		return fmt.Errorf("publish availability: %w", err)
	}
	p.announced = true
	return nil
}

func (p *Publisher) publishState(ctx context.Context, snapshot mower.Snapshot) {
	if !p.announced {
		if err := p.announce(ctx); err != nil {
			p.logger.Warn("Discovery announcement failed", "err", err)
		}
	}

	// The first robot status payload carries the model and firmware
	// version; fold them into the device registry entry once known.
	if !p.identityComplete {
		if model, version, ok := p.coord.Cache().Identity(); ok {
			p.identity.Model = model
			p.identity.SoftwareVersion = version
			p.identityComplete = true
			if err := p.publishDiscovery(ctx); err != nil {
				p.logger.Warn("Failed to republish discovery", "err", err)
			}
		}
	}

	payload, err := json.Marshal(StatePayload(snapshot))
	if err != nil {
		p.logger.Error(err, "Failed to encode state payload")
		return
	}
	if err := p.client.Publish(ctx, p.topics.State, qosAtLeastOnce, true, payload); err != nil {
		p.logger.Warn("Failed to publish state", "err", err)
	}
}

func (p *Publisher) publishDiscovery(ctx context.Context) error {
	payload, err := json.Marshal(NewDiscoveryMessage(p.identity, p.topics))
	if err != nil {
		return fmt.Errorf("encode discovery: %w", err)
	}
	if err := p.client.Publish(ctx, p.topics.Discovery, qosAtLeastOnce, true, payload); err != nil {
		return fmt.Errorf("publish discovery: %w", err)
	}
	return nil
}

// onCommand handles lawn mower activity payloads and the edge cut press.
func (p *Publisher) onCommand(ctx context.Context, topic string, payload []byte) {
	var cmd mower.Command
	switch action := strings.TrimSpace(string(payload)); action {
	case PayloadStartMowing:
		cmd = mower.Start()
	case PayloadPause:
		cmd = mower.Pause()
	case PayloadDock:
		cmd = mower.Dock()
	case PayloadEdgeCut:
		cmd = mower.EdgeCut()
	default:
		p.logger.Warn("Ignoring unknown command payload", "payload", action)
		return
	}

	if err := p.coord.SendCommand(ctx, cmd); err != nil {
		p.logger.Warn("Command failed", "command", cmd.Name(), "err", err)
	}
}

// onRainCommand toggles the rain sensor, keeping the configured delay.
func (p *Publisher) onRainCommand(ctx context.Context, topic string, payload []byte) {
	var enabled bool
	switch strings.TrimSpace(string(payload)) {
	case "ON":
		enabled = true
	case "OFF":
		enabled = false
	default:
		p.logger.Warn("Ignoring unknown rain switch payload", "payload", string(payload))
		return
	}

	_, delay := p.rainState()
	if err := p.coord.SendCommand(ctx, mower.SetRainDelay(enabled, delay)); err != nil {
		p.logger.Warn("Rain switch command failed", "err", err)
	}
}

// onRainDelayCommand updates the delay, keeping the current enable state.
func (p *Publisher) onRainDelayCommand(ctx context.Context, topic string, payload []byte) {
	minutes, err := strconv.Atoi(strings.TrimSpace(string(payload)))
	if err != nil {
		p.logger.Warn("Ignoring non-integer rain delay payload", "payload", string(payload))
		return
	}

	enabled, _ := p.rainState()
	if err := p.coord.SendCommand(ctx, mower.SetRainDelay(enabled, minutes)); err != nil {
		p.logger.Warn("Rain delay command failed", "err", err)
	}
}

// rainState reads the last reported rain configuration from the cache,
// falling back to disabled/zero before the first rain status payload.
func (p *Publisher) rainState() (enabled bool, delayMinutes int) {
	snapshot, err := p.coord.Cache().Snapshot()
	if err != nil {
		return false, 0
	}
	enabled, _ = snapshot["rain_en"].(bool)
	if v, ok := snapshot["rain_delay_set"].(float64); ok {
		delayMinutes = int(v)
	}
	return enabled, delayMinutes
}
