package metrics

import (
	"fmt"
	"time"

	"github.com/penglongli/gin-metrics/ginmetrics"

	"lockd/pkg/log"
	"lockd/service/lock"
)

var Metrics MetricsType

const (
	// Prefix is the prefix for all metrics.
	Prefix = "lockd_"
)

type MetricsType struct {
	Collectors []MetricDefinition
}

// MetricDefinition pairs a gin-metrics gauge with the registry counter it
// tracks. Extract reads the current value out of a Counters snapshot.
type MetricDefinition struct {
	Name        string
	Description string
	Extract     func(lock.Counters) float64
}

func Setup() error {
	collectors := GetCollectors()

	Metrics = MetricsType{
		Collectors: collectors,
	}

	m := ginmetrics.GetMonitor()

	for _, def := range collectors {
		err := m.AddMetric(&ginmetrics.Metric{
			Type:        ginmetrics.Gauge,
			Name:        def.Name,
			Description: def.Description,
			Labels:      []string{},
		})
		if err != nil {
			return fmt.Errorf("failed to add metric %s to monitor. details: %w", def.Name, err)
		}
	}

	return nil
}

// Sync synchronizes the metrics with the registry's current counters.
func Sync(registry *lock.Registry) {
	stats := registry.Stats(time.Now())
	monitor := ginmetrics.GetMonitor()

	for _, collector := range Metrics.Collectors {
		metric := monitor.GetMetric(collector.Name)
		if metric == nil {
			log.PrettyError(fmt.Errorf("metric %s not found when synchronizing metrics", collector.Name))
			continue
		}

		if err := metric.SetGaugeValue([]string{}, collector.Extract(stats)); err != nil {
			log.PrettyError(fmt.Errorf("error setting gauge value for metric %s when synchronizing metrics. details: %w", collector.Name, err))
		}
	}
}

// GetCollectors returns all collectors.
func GetCollectors() []MetricDefinition {
	defs := []MetricDefinition{
		{
			Name:        "live_lease_count",
			Description: "Number of currently live leases in the registry.",
			Extract:     func(c lock.Counters) float64 { return float64(c.LiveCount) },
		},
		{
			Name:        "acquires_granted_total",
			Description: "Total acquire requests that granted a lease.",
			Extract:     func(c lock.Counters) float64 { return float64(c.AcquiresGranted) },
		},
		{
			Name:        "acquires_denied_total",
			Description: "Total acquire requests denied with LockHeld.",
			Extract:     func(c lock.Counters) float64 { return float64(c.AcquiresDenied) },
		},
		{
			Name:        "heartbeats_accepted_total",
			Description: "Total heartbeat requests that renewed a lease.",
			Extract:     func(c lock.Counters) float64 { return float64(c.HeartbeatsAccepted) },
		},
		{
			Name:        "heartbeats_rejected_total",
			Description: "Total heartbeat requests rejected with LockNotFound.",
			Extract:     func(c lock.Counters) float64 { return float64(c.HeartbeatsRejected) },
		},
		{
			Name:        "releases_total",
			Description: "Total successful release requests.",
			Extract:     func(c lock.Counters) float64 { return float64(c.Releases) },
		},
		{
			Name:        "evictions_total",
			Description: "Total leases evicted, lazily or by the sweeper.",
			Extract:     func(c lock.Counters) float64 { return float64(c.Evictions) },
		},
	}

	for i := range defs {
		defs[i].Name = Prefix + defs[i].Name
	}

	return defs
}
