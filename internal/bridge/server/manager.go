package server

import (
	"context"

	"golang.org/x/sync/errgroup"

	"github.com/itsbrianburton/sunseeker-bridge/pkg/log"
)

// Server defines the common interface for all bridge components. Start
// blocks until ctx is cancelled or the component fails.
type Server interface {
	Start(ctx context.Context) error
}

// ServerFunc adapts a plain function to the Server interface.
type ServerFunc func(ctx context.Context) error

func (f ServerFunc) Start(ctx context.Context) error { return f(ctx) }

// Manager manages the lifecycle of all bridge components.
type Manager struct {
	servers []Server
}

// NewManager creates a manager over the given components.
func NewManager(servers ...Server) *Manager {
	return &Manager{servers: servers}
}

// Start launches all components in parallel and waits for termination.
// The first failure cancels the rest.
func (m *Manager) Start(ctx context.Context) error {
	g, ctx := errgroup.WithContext(ctx)

	for _, s := range m.servers {
		srv := s
		g.Go(func() error {
			return srv.Start(ctx)
		})
	}

	log.Info("All components starting...")
	return g.Wait()
}
