package schedule

import (
	"context"
	"encoding/json"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/itsbrianburton/sunseeker-bridge/internal/mower"
	"github.com/itsbrianburton/sunseeker-bridge/pkg/log"
	pkgmqtt "github.com/itsbrianburton/sunseeker-bridge/pkg/mqtt"
)

type recordingClient struct {
	mu        sync.Mutex
	published []mower.Command
}

func (r *recordingClient) Start(ctx context.Context) error { return nil }
func (r *recordingClient) Disconnect(ctx context.Context)  {}

func (r *recordingClient) Publish(ctx context.Context, topic string, qos int, retain bool, payload []byte) error {
	var cmd mower.Command
	if err := json.Unmarshal(payload, &cmd); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.published = append(r.published, cmd)
	return nil
}

func (r *recordingClient) Subscribe(ctx context.Context, topic string, qos int, handler pkgmqtt.MessageHandler) error {
	return nil
}
func (r *recordingClient) Unsubscribe(ctx context.Context, topic string) error { return nil }
func (r *recordingClient) AwaitConnection(ctx context.Context) error           { return nil }
func (r *recordingClient) IsConnected() bool                                   { return true }

func (r *recordingClient) scheduleCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for _, cmd := range r.published {
		if code, ok := cmd["cmd"].(float64); ok && int(code) == 103 {
			n++
		}
	}
	return n
}

func TestWatcherPushesOnChange(t *testing.T) {
	path := writeScheduleFile(t, `
auto: true
days:
  Mon:
    slice:
      - start: 480
        end: 720
`)

	client := &recordingClient{}
	coord, err := mower.NewCoordinator(mower.Config{DeviceID: "MOWER01"}, client, log.NewNopLogger())
	if err != nil {
		t.Fatal(err)
	}

	w, err := NewWatcher(path, coord, log.NewNopLogger())
	if err != nil {
		t.Fatal(err)
	}

	ctx, cancel := context.WithCancel(t.Context())
	if err := w.Start(ctx); err != nil {
		t.Fatalf("Start() error = %v", err)
	}

	// The initial load pushes once.
	if n := client.scheduleCount(); n != 1 {
		t.Fatalf("pushed %d schedules after start, want 1", n)
	}

	if err := os.WriteFile(path, []byte("auto: false\ndays: {}\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	deadline := time.After(5 * time.Second)
	for client.scheduleCount() < 2 {
		select {
		case <-deadline:
			t.Fatal("schedule change not pushed")
		case <-time.After(50 * time.Millisecond):
		}
	}

	cancel()
	w.Wait()
}
