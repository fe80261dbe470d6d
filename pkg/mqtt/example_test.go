package mqtt_test

import (
	"context"
	"fmt"
	"time"

	"github.com/itsbrianburton/sunseeker-bridge/pkg/log"
	"github.com/itsbrianburton/sunseeker-bridge/pkg/mqtt"
)

// ExampleClient shows the standard usage flow of the MQTT component: create a
// client, subscribe to the device response topic and send a command payload.
func ExampleClient() {
	// 1. Prepare the configuration. In the bridge these values come from
	// pkg/options or CLI flags.
	cfg := &mqtt.ClientConfig{
		BrokerURL:      "tcp://localhost:1883",
		ClientID:       "sunseeker-bridge-example",
		KeepAlive:      60,
		ConnectTimeout: 5 * time.Second,
		// The session survives short disconnects so QoS 1 messages queued by
		// the broker while offline are still delivered.
		CleanStart: false,
	}

	// 2. Create the client instance. No connection is established yet.
	client, err := mqtt.NewClient(cfg)
	if err != nil {
		log.Error(err, "Failed to create MQTT client")
		return
	}

	// 3. Start the client (non-blocking). The connection and any reconnects
	// happen in the background.
	ctx := context.Background()
	if err := client.Start(ctx); err != nil {
		log.Error(err, "Failed to start MQTT client")
		return
	}

	// 4. Register a handler for inbound status payloads. Handlers run on
	// their own goroutine; don't block them for long.
	handler := func(ctx context.Context, topic string, payload []byte) {
		fmt.Printf("Received status on %s: %s\n", topic, string(payload))
	}

	// 5. Subscribe. If the connection drops and comes back, the client
	// re-sends the SUBSCRIBE packet automatically.
	if err := client.Subscribe(ctx, "/device/MOWER01/update", 1, handler); err != nil {
		log.Error(err, "Failed to subscribe")
	}

	// 6. Optionally block until the connection is ready.
	if err := client.AwaitConnection(ctx); err != nil {
		log.Error(err, "Connection timed out")
		return
	}

	// 7. Publish a command with QoS 1 (at least once).
	if err := client.Publish(ctx, "/device/MOWER01/get", 1, false, []byte(`{"cmd":200}`)); err != nil {
		log.Error(err, "Failed to publish command")
	}

	// 8. Graceful shutdown.
	client.Disconnect(ctx)
}
