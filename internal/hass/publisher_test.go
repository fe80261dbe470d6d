package hass

import (
	"context"
	"encoding/json"
	"sync"
	"testing"
	"time"

	"github.com/itsbrianburton/sunseeker-bridge/internal/mower"
	"github.com/itsbrianburton/sunseeker-bridge/pkg/log"
	pkgmqtt "github.com/itsbrianburton/sunseeker-bridge/pkg/mqtt"
)

type publishRecord struct {
	topic   string
	retain  bool
	payload []byte
}

type fakeClient struct {
	mu        sync.Mutex
	published []publishRecord
	handlers  map[string]pkgmqtt.MessageHandler
}

func newFakeClient() *fakeClient {
	return &fakeClient{handlers: map[string]pkgmqtt.MessageHandler{}}
}

func (f *fakeClient) Start(ctx context.Context) error { return nil }
func (f *fakeClient) Disconnect(ctx context.Context)  {}

func (f *fakeClient) Publish(ctx context.Context, topic string, qos int, retain bool, payload []byte) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.published = append(f.published, publishRecord{topic: topic, retain: retain, payload: payload})
	return nil
}

func (f *fakeClient) Subscribe(ctx context.Context, topic string, qos int, handler pkgmqtt.MessageHandler) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.handlers[topic] = handler
	return nil
}

func (f *fakeClient) Unsubscribe(ctx context.Context, topic string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.handlers, topic)
	return nil
}

func (f *fakeClient) AwaitConnection(ctx context.Context) error { return nil }
func (f *fakeClient) IsConnected() bool                         { return true }

func (f *fakeClient) lastOn(topic string) ([]byte, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := len(f.published) - 1; i >= 0; i-- {
		if f.published[i].topic == topic {
			return f.published[i].payload, true
		}
	}
	return nil, false
}

func (f *fakeClient) handler(topic string) pkgmqtt.MessageHandler {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.handlers[topic]
}

func newTestPublisher(t *testing.T) (*fakeClient, *Publisher, *mower.Coordinator, Topics) {
	t.Helper()
	client := newFakeClient()
	coord, err := mower.NewCoordinator(mower.Config{DeviceID: "MOWER01"}, client, log.NewNopLogger())
	if err != nil {
		t.Fatal(err)
	}
	if err := coord.Start(t.Context()); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { coord.Stop(context.Background()) })

	topics := NewTopics("homeassistant", "sunseeker-bridge", "MOWER01")
	p := NewPublisher(client, coord, topics, "Backyard Mower", log.NewNopLogger())
	if err := p.Start(t.Context()); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { p.Stop(context.Background()) })

	return client, p, coord, topics
}

func TestPublisherAnnounces(t *testing.T) {
	client, _, _, topics := newTestPublisher(t)

	payload, ok := client.lastOn(topics.Discovery)
	if !ok {
		t.Fatal("no discovery message published")
	}
	var msg DiscoveryMessage
	if err := json.Unmarshal(payload, &msg); err != nil {
		t.Fatalf("discovery payload: %v", err)
	}
	if msg.Device.Identifiers != "MOWER01" || msg.Device.Manufacturer != "Sunseeker" {
		t.Errorf("device block = %+v", msg.Device)
	}

	availability, ok := client.lastOn(topics.Availability)
	if !ok || string(availability) != "online" {
		t.Errorf("availability = %q, ok = %v", availability, ok)
	}
}

func TestPublisherForwardsState(t *testing.T) {
	client, _, _, topics := newTestPublisher(t)

	// A status payload from the mower flows to the state topic.
	mowerHandler := client.handler("/device/MOWER01/update")
	if mowerHandler == nil {
		t.Fatal("coordinator not subscribed to the mower's response topic")
	}
	mowerHandler(t.Context(), "/device/MOWER01/update", []byte(`{"cmd":501,"mode":1,"station":false,"power":55}`))

	deadline := time.After(2 * time.Second)
	for {
		if payload, ok := client.lastOn(topics.State); ok {
			var state map[string]any
			if err := json.Unmarshal(payload, &state); err != nil {
				t.Fatal(err)
			}
			if state["activity"] != "mowing" || state["power"] != float64(55) {
				t.Errorf("state = %v", state)
			}
			return
		}
		select {
		case <-deadline:
			t.Fatal("no state published")
		case <-time.After(20 * time.Millisecond):
		}
	}
}

func TestPublisherCommandMapping(t *testing.T) {
	tests := []struct {
		payload  string
		wantMode float64
	}{
		{PayloadStartMowing, 1},
		{PayloadPause, 0},
		{PayloadDock, 2},
		{PayloadEdgeCut, 4},
	}

	for _, tt := range tests {
		t.Run(tt.payload, func(t *testing.T) {
			client, _, _, topics := newTestPublisher(t)

			handler := client.handler(topics.Command)
			if handler == nil {
				t.Fatal("command topic not subscribed")
			}
			handler(t.Context(), topics.Command, []byte(tt.payload))

			payload, ok := client.lastOn("/device/MOWER01/get")
			if !ok {
				t.Fatal("no command published to the mower")
			}
			var cmd map[string]any
			if err := json.Unmarshal(payload, &cmd); err != nil {
				t.Fatal(err)
			}
			if cmd["cmd"] != float64(101) || cmd["mode"] != tt.wantMode {
				t.Errorf("command = %v, want mode %v", cmd, tt.wantMode)
			}
		})
	}
}

func TestPublisherStopMarksOffline(t *testing.T) {
	client, p, _, topics := newTestPublisher(t)

	p.Stop(t.Context())

	payload, ok := client.lastOn(topics.Availability)
	if !ok || string(payload) != "offline" {
		t.Errorf("availability after Stop = %q", payload)
	}
	if client.handler(topics.Command) != nil {
		t.Error("command topic still subscribed after Stop")
	}
}
