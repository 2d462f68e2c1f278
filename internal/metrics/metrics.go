// Package metrics exposes run outcomes as Prometheus metrics.
//
// The checker is a batch tool, so metrics are collected in a private registry
// and written once in the text exposition format, ready for the node
// exporter textfile collector.
package metrics

import (
	"errors"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	multitone "github.com/tphakala/go-multitone-check"
)

const namespace = "multitone"

// ErrNoPath indicates WriteTextfile was called without a destination.
var ErrNoPath = errors.New("metrics textfile path is empty")

// Recorder collects the metrics of one run.
type Recorder struct {
	registry *prometheus.Registry
	profile  string

	channels      *prometheus.CounterVec
	deviation     *prometheus.GaugeVec
	designatedBin *prometheus.GaugeVec
	peaks         *prometheus.GaugeVec
	lastRun       prometheus.Gauge
}

// New creates a recorder whose series carry the profile label.
func New(profile string) *Recorder {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)

	return &Recorder{
		registry: reg,
		profile:  profile,
		channels: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "channels_total",
			Help:      "Analyzed channels by verdict.",
		}, []string{"profile", "verdict"}),
		deviation: factory.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "deviation_db",
			Help:      "Peak-to-peak amplitude deviation of the selected tones.",
		}, []string{"profile", "channel"}),
		designatedBin: factory.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "designated_bin",
			Help:      "FFT bin of the designated tone, -1 when not computed.",
		}, []string{"profile", "channel"}),
		peaks: factory.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "peaks",
			Help:      "Number of tones selected.",
		}, []string{"profile", "channel"}),
		lastRun: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "last_run_timestamp_seconds",
			Help:      "Unix time of the last completed run.",
		}),
	}
}

// Observe records one channel outcome. It matches the multitone.WithObserver
// callback signature.
func (r *Recorder) Observe(cr multitone.ChannelResult) {
	ch := strconv.Itoa(cr.Channel)
	r.channels.WithLabelValues(r.profile, cr.Verdict.String()).Inc()
	r.deviation.WithLabelValues(r.profile, ch).Set(cr.Result.Deviation)
	r.designatedBin.WithLabelValues(r.profile, ch).Set(float64(cr.Result.DesignatedBin))
	r.peaks.WithLabelValues(r.profile, ch).Set(float64(cr.Result.PeakCount))
}

// MarkRun stamps the completion time of the run.
func (r *Recorder) MarkRun(t time.Time) {
	r.lastRun.Set(float64(t.Unix()))
}

// Registry returns the registry holding the run metrics.
func (r *Recorder) Registry() *prometheus.Registry {
	return r.registry
}

// WriteTextfile writes all metrics to path atomically.
func (r *Recorder) WriteTextfile(path string) error {
	if path == "" {
		return ErrNoPath
	}
	return prometheus.WriteToTextfile(path, r.registry)
}
