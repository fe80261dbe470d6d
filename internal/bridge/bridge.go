// Package bridge assembles and runs the Sunseeker bridge daemon.
package bridge

import (
	"context"
	"fmt"
	"time"

	"github.com/itsbrianburton/sunseeker-bridge/internal/bridge/server"
	"github.com/itsbrianburton/sunseeker-bridge/pkg/log"
	pkgmqtt "github.com/itsbrianburton/sunseeker-bridge/pkg/mqtt"
)

// Bridge is the main application struct.
type Bridge struct {
	client  pkgmqtt.Client
	manager *server.Manager
}

// Run starts the MQTT client, then all components, and blocks until ctx is
// cancelled or a component fails. A broker that is down at startup does not
// abort the run; the client reconnects in the background and components
// report unavailable until it does.
func (b *Bridge) Run(ctx context.Context) error {
	log.Info("Starting Sunseeker bridge...")

	if err := b.client.Start(ctx); err != nil {
		return fmt.Errorf("failed to start mqtt client: %w", err)
	}
	defer func() {
		disconnectCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		b.client.Disconnect(disconnectCtx)
	}()

	waitCtx, cancel := context.WithTimeout(ctx, connectWait)
	if err := b.client.AwaitConnection(waitCtx); err != nil {
		log.Warn("Broker not reachable yet, continuing in degraded mode", "err", err)
	}
	cancel()

	return b.manager.Start(ctx)
}
