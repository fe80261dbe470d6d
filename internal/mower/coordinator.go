package mower

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/itsbrianburton/sunseeker-bridge/internal/pkg/metrics"
	"github.com/itsbrianburton/sunseeker-bridge/pkg/log"
	"github.com/itsbrianburton/sunseeker-bridge/pkg/mqtt"
	"github.com/itsbrianburton/sunseeker-bridge/pkg/mqtt/topic"
)

// qosAtLeastOnce is the delivery tier the protocol uses in both directions.
const qosAtLeastOnce = 1

// inboundQueueSize bounds the handoff channel between the transport's
// handler goroutines and the run loop. The mower publishes at most a few
// messages per refresh, so overflow only happens when the run loop is gone.
const inboundQueueSize = 16

// Config identifies one physical mower and tunes its refresh cycle.
type Config struct {
	DeviceID    string
	TopicPrefix string

	RefreshInterval time.Duration
	// CommandPause separates the status request from the rain status
	// request. The firmware drops back-to-back commands.
	CommandPause   time.Duration
	RefreshTimeout time.Duration
}

func (c *Config) validate() error {
	if strings.TrimSpace(c.DeviceID) == "" {
		return fmt.Errorf("mower: device ID must not be empty")
	}
	if c.TopicPrefix == "" {
		c.TopicPrefix = "device"
	}
	if c.RefreshInterval <= 0 {
		c.RefreshInterval = 30 * time.Second
	}
	if c.CommandPause <= 0 {
		c.CommandPause = 500 * time.Millisecond
	}
	if c.RefreshTimeout <= 0 {
		c.RefreshTimeout = 10 * time.Second
	}
	return nil
}

// Update is delivered to subscribers whenever the merged snapshot changes.
type Update struct {
	Snapshot Snapshot
}

// Coordinator owns the protocol session with one mower. Inbound payloads
// arrive on the transport's handler goroutines and are handed off through a
// bounded channel into the run loop, which is the only goroutine that
// mutates the status cache. Subscribers observe the cache through Updates.
type Coordinator struct {
	logger log.Logger
	client mqtt.Client
	topics *topic.Builder
	cache  *StatusCache
	cfg    Config

	inbound chan []byte
	updated chan struct{}

	refreshMu sync.Mutex
	fsm       *refreshFSM

	subMu sync.Mutex
	subs  []chan Update

	cancel context.CancelFunc
	done   chan struct{}
}

// NewCoordinator creates a coordinator for the device described by cfg.
// The client must be started separately.
func NewCoordinator(cfg Config, client mqtt.Client, logger log.Logger) (*Coordinator, error) {
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	if logger == nil {
		logger = log.NewNopLogger()
	}
	logger = logger.WithName("coordinator").WithValues("device", cfg.DeviceID)

	return &Coordinator{
		logger:  logger,
		client:  client,
		topics:  topic.NewBuilder(cfg.TopicPrefix),
		cache:   NewStatusCache(logger),
		cfg:     cfg,
		inbound: make(chan []byte, inboundQueueSize),
		updated: make(chan struct{}, 1),
		fsm:     newRefreshFSM(logger),
	}, nil
}

// Cache exposes the status cache for read-only consumers.
func (c *Coordinator) Cache() *StatusCache { return c.cache }

// DeviceID returns the identifier of the managed mower.
func (c *Coordinator) DeviceID() string { return c.cfg.DeviceID }

// Connected reports whether the transport currently has a live broker
// connection.
func (c *Coordinator) Connected() bool { return c.client.IsConnected() }

// Start subscribes to the mower's response topic and launches the run
// loop. It returns once the subscription is registered; the run loop keeps
// running until Stop is called.
func (c *Coordinator) Start(ctx context.Context) error {
	responseTopic := c.topics.Response(c.cfg.DeviceID)
	if err := c.client.Subscribe(ctx, responseTopic, qosAtLeastOnce, c.onMessage); err != nil {
		return fmt.Errorf("subscribe %s: %w", responseTopic, err)
	}

	runCtx, cancel := context.WithCancel(context.Background())
	c.cancel = cancel
	c.done = make(chan struct{})
	go c.run(runCtx)

	c.logger.Info("Coordinator started", "responseTopic", responseTopic)
	return nil
}

// Stop cancels the run loop, unsubscribes from the response topic and
// waits for the loop to drain. Idempotent.
func (c *Coordinator) Stop(ctx context.Context) {
	if c.cancel == nil {
		return
	}
	c.cancel()
	<-c.done
	c.cancel = nil

	if err := c.client.Unsubscribe(ctx, c.topics.Response(c.cfg.DeviceID)); err != nil {
		c.logger.Warn("Unsubscribe failed during shutdown", "err", err)
	}

	c.subMu.Lock()
	for _, ch := range c.subs {
		close(ch)
	}
	c.subs = nil
	c.subMu.Unlock()

	c.logger.Info("Coordinator stopped")
}

// onMessage runs on the transport's handler goroutines. It only hands the
// payload to the run loop, so arrival order is preserved.
func (c *Coordinator) onMessage(ctx context.Context, t string, payload []byte) {
	select {
	case c.inbound <- payload:
	default:
		c.logger.Warn("Inbound queue full, dropping payload", "topic", t)
	}
}

// run is the sole mutator of the status cache. It folds inbound payloads
// into the cache and triggers the periodic refresh.
func (c *Coordinator) run(ctx context.Context) {
	defer close(c.done)

	ticker := time.NewTicker(c.cfg.RefreshInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case payload := <-c.inbound:
			c.handleInbound(payload)
		case <-ticker.C:
			// Refresh blocks on the update signal this loop produces,
			// so it must not run on the loop goroutine.
			go func() {
				if _, err := c.Refresh(ctx); err != nil {
					c.logger.Warn("Scheduled refresh failed", "err", err)
				}
			}()
		}
	}
}

func (c *Coordinator) handleInbound(payload []byte) {
	kind, changed := c.cache.Ingest(payload)
	metrics.StatusIngestTotal.WithLabelValues(kind).Inc()
	if !changed {
		return
	}

	select {
	case c.updated <- struct{}{}:
	default:
	}

	snapshot, err := c.cache.Snapshot()
	if err != nil {
		return
	}
	c.notify(Update{Snapshot: snapshot})
}

// Updates returns a channel on which the coordinator delivers snapshot
// updates. Delivery is latest-wins; a slow subscriber observes the most
// recent update, not every intermediate one. The channel is closed by Stop.
func (c *Coordinator) Updates() <-chan Update {
	ch := make(chan Update, 1)
	c.subMu.Lock()
	c.subs = append(c.subs, ch)
	c.subMu.Unlock()
	return ch
}

func (c *Coordinator) notify(u Update) {
	c.subMu.Lock()
	defer c.subMu.Unlock()
	for _, ch := range c.subs {
		select {
		case ch <- u:
		default:
			select {
			case <-ch:
			default:
			}
			ch <- u
		}
	}
}

// SendCommand encodes and publishes one command to the mower. It returns
// mqtt.ErrNotConnected when the transport has no live connection.
func (c *Coordinator) SendCommand(ctx context.Context, cmd Command) error {
	payload, err := cmd.Encode()
	if err != nil {
		metrics.CommandSentTotal.WithLabelValues("failed", cmd.Name()).Inc()
		return fmt.Errorf("encode command %s: %w", cmd.Name(), err)
	}

	err = c.client.Publish(ctx, c.topics.Command(c.cfg.DeviceID), qosAtLeastOnce, false, payload)
	if err != nil {
		metrics.CommandSentTotal.WithLabelValues("failed", cmd.Name()).Inc()
		return err
	}

	metrics.CommandSentTotal.WithLabelValues("success", cmd.Name()).Inc()
	c.logger.Debug("Command published", "command", cmd.Name())
	return nil
}

// Refresh requests a fresh status snapshot and waits for the cache to be
// updated. It fails fast with mqtt.ErrNotConnected when the transport is
// down, without sending anything, and with ErrRefreshTimeout when the
// mower does not answer in time. Both are retryable; the periodic schedule
// is unaffected by a failed cycle.
func (c *Coordinator) Refresh(ctx context.Context) (Snapshot, error) {
	if !c.client.IsConnected() {
		return nil, mqtt.ErrNotConnected
	}
	if !c.refreshMu.TryLock() {
		return nil, ErrRefreshInProgress
	}
	defer c.refreshMu.Unlock()

	if err := c.fsm.Event(ctx, EventRequest); err != nil {
		return nil, err
	}
	started := time.Now()

	// Drop a stale update signal from an unsolicited payload so the wait
	// below only observes payloads that arrive from here on.
	select {
	case <-c.updated:
	default:
	}

	if err := c.SendCommand(ctx, StatusRequest()); err != nil {
		c.failRefresh(ctx)
		return nil, err
	}

	select {
	case <-time.After(c.cfg.CommandPause):
	case <-ctx.Done():
		c.failRefresh(ctx)
		return nil, ctx.Err()
	}

	if err := c.SendCommand(ctx, RainStatusRequest()); err != nil {
		c.failRefresh(ctx)
		return nil, err
	}

	select {
	case <-c.updated:
		_ = c.fsm.Event(ctx, EventUpdated)
		metrics.RefreshDuration.Observe(time.Since(started).Seconds())
		_ = c.fsm.Event(ctx, EventReset)
		return c.cache.Snapshot()
	case <-time.After(c.cfg.RefreshTimeout):
		c.failRefresh(ctx)
		return nil, ErrRefreshTimeout
	case <-ctx.Done():
		c.failRefresh(ctx)
		return nil, ctx.Err()
	}
}

func (c *Coordinator) failRefresh(ctx context.Context) {
	_ = c.fsm.Event(ctx, EventTimeout)
	_ = c.fsm.Event(ctx, EventReset)
}
