package monitor

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type collectors struct {
	samples  prometheus.Counter
	skipped  prometheus.Counter
	triggers *prometheus.CounterVec
	alarms   *prometheus.CounterVec
	resets   *prometheus.CounterVec
	dropped  prometheus.Counter
	phase    *prometheus.GaugeVec
	pgdMax   *prometheus.GaugeVec
	pgaMax   *prometheus.GaugeVec
	channels prometheus.Gauge
}

// newCollectors registers with r.  A nil r leaves the collectors unregistered.
func newCollectors(r prometheus.Registerer) *collectors {
	f := promauto.With(r)

	return &collectors{
		samples: f.NewCounter(prometheus.CounterOpts{
			Name: "ews_samples_total",
			Help: "Total number of acceleration samples processed",
		}),
		skipped: f.NewCounter(prometheus.CounterOpts{
			Name: "ews_samples_skipped_total",
			Help: "Total number of resent or overlapping samples skipped",
		}),
		triggers: f.NewCounterVec(prometheus.CounterOpts{
			Name: "ews_triggers_total",
			Help: "Total number of STA/LTA triggers",
		}, []string{"stream"}),
		alarms: f.NewCounterVec(prometheus.CounterOpts{
			Name: "ews_alarms_total",
			Help: "Total number of damage alarms",
		}, []string{"stream"}),
		resets: f.NewCounterVec(prometheus.CounterOpts{
			Name: "ews_resets_total",
			Help: "Total number of channel resets",
		}, []string{"reason"}),
		dropped: f.NewCounter(prometheus.CounterOpts{
			Name: "ews_alerts_dropped_total",
			Help: "Total number of alerts dropped on a full queue",
		}),
		phase: f.NewGaugeVec(prometheus.GaugeOpts{
			Name: "ews_phase",
			Help: "Processing phase per stream: 0 waiting, 1 triggered, 2 alarmed",
		}, []string{"stream"}),
		pgdMax: f.NewGaugeVec(prometheus.GaugeOpts{
			Name: "ews_pgd_max_meters",
			Help: "Peak ground displacement since the trigger",
		}, []string{"stream"}),
		pgaMax: f.NewGaugeVec(prometheus.GaugeOpts{
			Name: "ews_pga_max",
			Help: "Peak high-pass filtered ground acceleration (m/s^2) since the channel started",
		}, []string{"stream"}),
		channels: f.NewGauge(prometheus.GaugeOpts{
			Name: "ews_channels",
			Help: "Number of channels being processed",
		}),
	}
}

func (c *collectors) forget(source string) {
	c.phase.DeleteLabelValues(source)
	c.pgdMax.DeleteLabelValues(source)
	c.pgaMax.DeleteLabelValues(source)
}
