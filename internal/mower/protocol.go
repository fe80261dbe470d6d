// Package mower implements the Sunseeker MQTT protocol: encoding commands,
// caching status payloads, and driving the periodic refresh cycle.
package mower

// Command codes accepted by the mower on the command topic.
const (
	cmdSetMode           = 101
	cmdSetSchedule       = 103
	cmdSetRainDelay      = 105
	cmdStatusRequest     = 200
	cmdNameRequest       = 202
	cmdScheduleRequest   = 203
	cmdRainStatusRequest = 205
)

// Command codes the mower publishes on the response topic.
const (
	cmdRobotStatus      = 501
	cmdNameResponse     = 502
	cmdScheduleResponse = 503
	cmdRainStatus       = 505
)

// Operating modes carried by the set-mode command and reported in the
// robot status payload.
const (
	ModePause   = 0
	ModeStart   = 1
	ModeDock    = 2
	ModeEdgeCut = 4
)

// dayKeys are the seven fixed day keys the schedule command requires,
// in the order the firmware documents them.
var dayKeys = [...]string{"Mon", "Tue", "Wed", "Thu", "Fri", "Sat", "Sun"}
