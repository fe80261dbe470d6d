package schedule

import (
	"context"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/itsbrianburton/sunseeker-bridge/internal/mower"
	"github.com/itsbrianburton/sunseeker-bridge/pkg/log"
)

// debounceDelay absorbs the bursts of write events editors produce when
// saving a file.
const debounceDelay = 500 * time.Millisecond

// Watcher watches one schedule file and pushes its content to the mower on
// every change. Editors replace files by rename, so the watch is placed on
// the parent directory and filtered by file name.
type Watcher struct {
	logger log.Logger
	coord  *mower.Coordinator
	path   string

	watcher *fsnotify.Watcher
	done    chan struct{}
}

// NewWatcher creates a watcher for the schedule file at path.
func NewWatcher(path string, coord *mower.Coordinator, logger log.Logger) (*Watcher, error) {
	if logger == nil {
		logger = log.NewNopLogger()
	}

	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, err
	}

	return &Watcher{
		logger: logger.WithName("schedule").WithValues("file", abs),
		coord:  coord,
		path:   abs,
	}, nil
}

// Start pushes the current schedule once, then watches for changes until
// ctx is cancelled. A schedule that fails to load or push is logged and
// skipped; the watch continues.
func (w *Watcher) Start(ctx context.Context) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	if err := watcher.Add(filepath.Dir(w.path)); err != nil {
		watcher.Close()
		return err
	}
	w.watcher = watcher
	w.done = make(chan struct{})

	w.push(ctx)

	go w.run(ctx)
	w.logger.Info("Schedule watcher started")
	return nil
}

// Wait blocks until the watch loop has exited.
func (w *Watcher) Wait() {
	if w.done != nil {
		<-w.done
	}
}

func (w *Watcher) run(ctx context.Context) {
	defer close(w.done)
	defer w.watcher.Close()

	var debounce *time.Timer
	var fire <-chan time.Time

	for {
		select {
		case <-ctx.Done():
			return
		case event, open := <-w.watcher.Events:
			if !open {
				return
			}
			if filepath.Clean(event.Name) != w.path {
				continue
			}
			if !event.Op.Has(fsnotify.Write | fsnotify.Create | fsnotify.Rename) {
				continue
			}
			if debounce == nil {
				debounce = time.NewTimer(debounceDelay)
			} else {
				debounce.Reset(debounceDelay)
			}
			fire = debounce.C
		case err, open := <-w.watcher.Errors:
			if !open {
				return
			}
			w.logger.Warn("Watcher error", "err", err)
		case <-fire:
			fire = nil
			w.push(ctx)
		}
	}
}

// push loads the file and sends the schedule command.
func (w *Watcher) push(ctx context.Context) {
	file, err := Load(w.path)
	if err != nil {
		w.logger.Warn("Failed to load schedule", "err", err)
		return
	}

	cmd, err := file.Command()
	if err != nil {
		w.logger.Warn("Invalid schedule, nothing sent", "err", err)
		return
	}

	if err := w.coord.SendCommand(ctx, cmd); err != nil {
		w.logger.Warn("Failed to push schedule", "err", err)
		return
	}
	w.logger.Info("Schedule pushed to mower")
}
