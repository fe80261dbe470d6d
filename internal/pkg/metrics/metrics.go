package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

// Registry is the bridge's own metrics registry, served on /metrics.
var Registry = prometheus.NewRegistry()

var (
	// BrokerConnectivityStatus records the connection state to the MQTT
	// broker (1=connected, 0=not connected).
	BrokerConnectivityStatus = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "sunseeker_broker_connectivity_status",
			Help: "The connectivity status to the MQTT broker (1=Connected, 0=NotConnected).",
		},
	)

	// CommandSentTotal records commands published to the mower.
	CommandSentTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "sunseeker_command_sent_total",
			Help: "Total number of commands published to the mower.",
		},
		[]string{"status", "command"}, // status: success/failed, command: set_mode/set_schedule/...
	)

	// RefreshDuration records how long a status refresh takes end to end.
	RefreshDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "sunseeker_refresh_duration_seconds",
			Help:    "Duration of a status refresh from first request to cache update.",
			Buckets: prometheus.DefBuckets,
		},
	)

	// StatusIngestTotal records inbound status payloads by kind.
	StatusIngestTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "sunseeker_status_ingest_total",
			Help: "Total number of inbound status payloads processed.",
		},
		[]string{"kind"}, // kind: robot/rain/name/schedule/dropped
	)
)

func init() {
	Registry.MustRegister(BrokerConnectivityStatus)
	Registry.MustRegister(CommandSentTotal)
	Registry.MustRegister(RefreshDuration)
	Registry.MustRegister(StatusIngestTotal)
	Registry.MustRegister(collectors.NewGoCollector())
	Registry.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
}
