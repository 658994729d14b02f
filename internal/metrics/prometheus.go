// Package metrics records batch-run metrics for the rotospeed tools and
// exports them in the node_exporter textfile format.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/cwbudde/rotospeed/dsp/spectrum"
	"github.com/cwbudde/rotospeed/measure/rpm"
)

const namespace = "rotospeed"

// Recorder owns a private registry. It implements [rpm.Observer].
type Recorder struct {
	reg *prometheus.Registry

	// SamplesRead counts samples parsed from input dumps.
	SamplesRead prometheus.Counter
	// FramesProcessed counts analyzed frames.
	FramesProcessed prometheus.Counter
	// FramesGated counts frames rejected by the noise gate.
	FramesGated prometheus.Counter
	// DetectedRPM is the distribution of accepted speed estimates.
	DetectedRPM prometheus.Histogram
	// StageDuration is the wall time of each pipeline stage.
	StageDuration *prometheus.HistogramVec
	// IncompleteRuns counts detections that stopped on a frame error.
	IncompleteRuns prometheus.Counter
}

var _ rpm.Observer = (*Recorder)(nil)

// New creates a Recorder with all collectors registered.
func New() *Recorder {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)

	return &Recorder{
		reg: reg,
		SamplesRead: factory.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "samples_read_total",
				Help:      "Total number of samples read from input dumps",
			},
		),
		FramesProcessed: factory.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "frames_processed_total",
				Help:      "Total number of analyzed frames",
			},
		),
		FramesGated: factory.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "frames_gated_total",
				Help:      "Total number of frames below the minimum peak",
			},
		),
		DetectedRPM: factory.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "detected_rpm",
				Help:      "Detected rotational speed of accepted frames",
				Buckets:   prometheus.ExponentialBuckets(1000, 2, 7),
			},
		),
		StageDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "stage_duration_seconds",
				Help:      "Pipeline stage duration in seconds",
				Buckets:   []float64{.0001, .001, .005, .01, .05, .1, .5, 1, 5},
			},
			[]string{"stage"},
		),
		IncompleteRuns: factory.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "incomplete_runs_total",
				Help:      "Total number of detections stopped by a frame error",
			},
		),
	}
}

// Registry exposes the private registry.
func (r *Recorder) Registry() *prometheus.Registry { return r.reg }

// AddSamplesRead counts n parsed samples.
func (r *Recorder) AddSamplesRead(n int) {
	r.SamplesRead.Add(float64(n))
}

// ObserveStage records the duration of one pipeline stage.
func (r *Recorder) ObserveStage(stage rpm.Stage, elapsed time.Duration) {
	r.StageDuration.WithLabelValues(string(stage)).Observe(elapsed.Seconds())
}

// ObserveReport records per-frame detection outcomes.
func (r *Recorder) ObserveReport(report *spectrum.Report) {
	for _, f := range report.Frames {
		r.FramesProcessed.Inc()
		if f.Gated {
			r.FramesGated.Inc()
			continue
		}
		r.DetectedRPM.Observe(f.RPM)
	}

	if !report.Complete {
		r.IncompleteRuns.Inc()
	}
}

// WriteTextfile writes all metrics to path atomically.
func (r *Recorder) WriteTextfile(path string) error {
	return prometheus.WriteToTextfile(path, r.reg)
}
