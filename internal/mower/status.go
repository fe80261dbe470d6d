package mower

import (
	"encoding/json"
	"maps"
	"sync"

	"github.com/itsbrianburton/sunseeker-bridge/pkg/log"
)

// Payload kinds recognized by the cache, used as metric labels.
const (
	KindRobot    = "robot"
	KindRain     = "rain"
	KindName     = "name"
	KindSchedule = "schedule"
	KindDropped  = "dropped"
)

// Snapshot is the merged, latest-known set of status fields for one mower.
type Snapshot map[string]any

// Mode returns the reported operating mode, defaulting to pause when the
// field is absent.
func (s Snapshot) Mode() int { return s.intField("mode") }

// Docked reports whether the mower is on its charging station.
func (s Snapshot) Docked() bool {
	station, _ := s["station"].(bool)
	return station
}

// Battery returns the battery charge percentage.
func (s Snapshot) Battery() int { return s.intField("power") }

func (s Snapshot) intField(key string) int {
	switch v := s[key].(type) {
	case float64:
		return int(v)
	case int:
		return v
	default:
		return 0
	}
}

// Activity maps the reported mode and station flag to a coarse activity
// label. A mower sitting on the station is docked regardless of mode.
func (s Snapshot) Activity() string {
	if s.Docked() {
		return "docked"
	}
	switch s.Mode() {
	case ModeStart, ModeEdgeCut:
		return "mowing"
	case ModeDock:
		return "returning"
	default:
		return "paused"
	}
}

// StatusCache holds the latest decoded status for one mower. The snapshot
// is rebuilt by shallow-merging the most recent robot status payload and
// the most recent rain status payload, rain fields last.
//
// Ingest is only ever called from the coordinator's run loop; the mutex
// exists so Snapshot and Identity can be read from other goroutines.
type StatusCache struct {
	logger log.Logger

	mu       sync.RWMutex
	robot    map[string]any
	rain     map[string]any
	name     string
	schedule map[string]any

	model   string
	version string
	derived bool
}

// NewStatusCache creates an empty cache.
func NewStatusCache(logger log.Logger) *StatusCache {
	if logger == nil {
		logger = log.NewNopLogger()
	}
	return &StatusCache{logger: logger}
}

// Ingest parses one inbound payload and folds it into the cache. Malformed
// JSON and unknown command codes are logged and dropped, never propagated.
// The returned kind labels what was stored; ok reports whether the merged
// snapshot changed.
func (c *StatusCache) Ingest(payload []byte) (kind string, ok bool) {
	var fields map[string]any
	if err := json.Unmarshal(payload, &fields); err != nil {
		c.logger.Warn("Dropping malformed status payload", "err", err, "payload", string(payload))
		return KindDropped, false
	}

	code, found := fields["cmd"].(float64)
	if !found {
		c.logger.Warn("Dropping status payload without cmd field", "payload", string(payload))
		return KindDropped, false
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	switch int(code) {
	case cmdRobotStatus:
		c.robot = fields
		c.deriveIdentity(fields)
		return KindRobot, true
	case cmdRainStatus:
		c.rain = fields
		return KindRain, true
	case cmdNameResponse:
		if name, found := fields["name"].(string); found {
			c.name = name
		}
		return KindName, false
	case cmdScheduleResponse:
		c.schedule = fields
		return KindSchedule, false
	default:
		c.logger.Debug("Ignoring status payload with unknown cmd", "cmd", int(code))
		return KindDropped, false
	}
}

// deriveIdentity captures the static device identity from the first robot
// status payload. Later payloads do not overwrite it.
func (c *StatusCache) deriveIdentity(fields map[string]any) {
	if c.derived {
		return
	}
	if model, found := fields["model"].(string); found {
		c.model = model
	}
	if version, found := fields["version"].(string); found {
		c.version = version
	}
	c.derived = true
}

// Snapshot returns a copy of the current merged snapshot, or ErrNoData if
// nothing has ever been ingested. Rain fields are merged last so they may
// override same-named robot fields.
func (c *StatusCache) Snapshot() (Snapshot, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if c.robot == nil && c.rain == nil {
		return nil, ErrNoData
	}

	merged := make(Snapshot, len(c.robot)+len(c.rain))
	maps.Copy(merged, c.robot)
	maps.Copy(merged, c.rain)
	delete(merged, "cmd")
	return merged, nil
}

// Identity returns the model and firmware version derived from the first
// robot status payload. ok is false until one has arrived.
func (c *StatusCache) Identity() (model, version string, ok bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.model, c.version, c.derived
}

// Name returns the device name reported by the mower, empty until a name
// response has been received.
func (c *StatusCache) Name() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.name
}

// Schedule returns the last schedule payload reported by the mower.
func (c *StatusCache) Schedule() map[string]any {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.schedule
}
