package mower

import (
	"context"

	"github.com/looplab/fsm"

	fsmutil "github.com/itsbrianburton/sunseeker-bridge/internal/pkg/util/fsm"
	"github.com/itsbrianburton/sunseeker-bridge/pkg/log"
)

// Refresh cycle states.
const (
	StateIdle       = "idle"
	StateRequesting = "requesting"
	StateUpdated    = "updated"
	StateTimedOut   = "timed_out"
)

const (
	// EventRequest starts a refresh cycle.
	EventRequest = "event_request"
	// EventUpdated marks the cache as refreshed.
	EventUpdated = "event_updated"
	// EventTimeout marks the cycle as expired without an answer.
	EventTimeout = "event_timeout"
	// EventReset returns a finished cycle to Idle for the next tick.
	EventReset = "event_reset"
)

// refreshFSM tracks the state of the current refresh cycle. A cycle that
// ends in TimedOut is reset on the next tick, the schedule never stops.
type refreshFSM struct {
	*fsm.FSM
	logger log.Logger
}

func newRefreshFSM(logger log.Logger) *refreshFSM {
	f := &refreshFSM{logger: logger}

	events := fsm.Events{
		{Name: EventRequest, Src: []string{StateIdle}, Dst: StateRequesting},
		{Name: EventUpdated, Src: []string{StateRequesting}, Dst: StateUpdated},
		{Name: EventTimeout, Src: []string{StateRequesting}, Dst: StateTimedOut},
		{Name: EventReset, Src: []string{StateUpdated, StateTimedOut}, Dst: StateIdle},
	}

	callbacks := fsm.Callbacks{
		"enter_" + StateTimedOut: fsmutil.WrapEvent(f.actionEnterTimedOut),
	}

	f.FSM = fsm.NewFSM(StateIdle, events, callbacks)
	return f
}

func (f *refreshFSM) actionEnterTimedOut(ctx context.Context, e *fsm.Event) error {
	f.logger.Warn("Refresh cycle timed out waiting for the mower")
	return nil
}
