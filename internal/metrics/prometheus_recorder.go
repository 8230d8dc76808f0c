package metrics

import (
	"fmt"
	"time"

	prom "github.com/prometheus/client_golang/prometheus"
)

const namespace = "texsubmit"

// PrometheusRecorder implements Recorder using Prometheus metrics.
type PrometheusRecorder struct {
	reg             *prom.Registry
	stageDuration   *prom.HistogramVec
	stageResults    *prom.CounterVec
	runDuration     prom.Histogram
	runOutcome      *prom.CounterVec
	documents       prom.Gauge
	stagedResources *prom.CounterVec
	defectFiles     prom.Counter
	removedFiles    prom.Counter
}

// NewPrometheusRecorder constructs and registers Prometheus metrics. A nil
// registry selects a fresh private one.
func NewPrometheusRecorder(reg *prom.Registry) *PrometheusRecorder {
	if reg == nil {
		reg = prom.NewRegistry()
	}
	pr := &PrometheusRecorder{reg: reg}
	pr.stageDuration = prom.NewHistogramVec(prom.HistogramOpts{
		Namespace: namespace,
		Name:      "stage_duration_seconds",
		Help:      "Duration of individual pipeline stages",
		Buckets:   prom.DefBuckets,
	}, []string{"stage"})
	pr.stageResults = prom.NewCounterVec(prom.CounterOpts{
		Namespace: namespace,
		Name:      "stage_results_total",
		Help:      "Stage result counts by outcome",
	}, []string{"stage", "result"})
	pr.runDuration = prom.NewHistogram(prom.HistogramOpts{
		Namespace: namespace,
		Name:      "run_duration_seconds",
		Help:      "Total packaging run duration",
		Buckets:   prom.DefBuckets,
	})
	pr.runOutcome = prom.NewCounterVec(prom.CounterOpts{
		Namespace: namespace,
		Name:      "run_outcomes_total",
		Help:      "Packaging runs by final status",
	}, []string{"outcome"})
	pr.documents = prom.NewGauge(prom.GaugeOpts{
		Namespace: namespace,
		Name:      "documents",
		Help:      "Source documents discovered in the last run",
	})
	pr.stagedResources = prom.NewCounterVec(prom.CounterOpts{
		Namespace: namespace,
		Name:      "staged_resources_total",
		Help:      "Library resources copied into the working copy",
	}, []string{"kind"})
	pr.defectFiles = prom.NewCounter(prom.CounterOpts{
		Namespace: namespace,
		Name:      "defective_outputs_total",
		Help:      "Rendered outputs reported with broken references or citations",
	})
	pr.removedFiles = prom.NewCounter(prom.CounterOpts{
		Namespace: namespace,
		Name:      "auxiliary_files_removed_total",
		Help:      "Auxiliary build files removed from the working copy",
	})
	reg.MustRegister(pr.stageDuration, pr.stageResults, pr.runDuration, pr.runOutcome,
		pr.documents, pr.stagedResources, pr.defectFiles, pr.removedFiles)
	return pr
}

// Registry exposes the registry the collectors were registered on.
func (p *PrometheusRecorder) Registry() *prom.Registry { return p.reg }

// WriteTextfile writes the current metric values in the text exposition
// format, replacing path atomically.
func (p *PrometheusRecorder) WriteTextfile(path string) error {
	if err := prom.WriteToTextfile(path, p.reg); err != nil {
		return fmt.Errorf("write metrics textfile: %w", err)
	}
	return nil
}

func (p *PrometheusRecorder) ObserveStageDuration(stage string, d time.Duration) {
	if p == nil || p.stageDuration == nil {
		return
	}
	p.stageDuration.WithLabelValues(stage).Observe(d.Seconds())
}

func (p *PrometheusRecorder) IncStageResult(stage string, result ResultLabel) {
	if p == nil || p.stageResults == nil {
		return
	}
	p.stageResults.WithLabelValues(stage, string(result)).Inc()
}

func (p *PrometheusRecorder) ObserveRunDuration(d time.Duration) {
	if p == nil || p.runDuration == nil {
		return
	}
	p.runDuration.Observe(d.Seconds())
}

func (p *PrometheusRecorder) IncRunOutcome(outcome RunOutcome) {
	if p == nil || p.runOutcome == nil {
		return
	}
	p.runOutcome.WithLabelValues(string(outcome)).Inc()
}

func (p *PrometheusRecorder) SetDocuments(n int) {
	if p == nil || p.documents == nil {
		return
	}
	p.documents.Set(float64(n))
}

func (p *PrometheusRecorder) AddStagedResources(kind string, n int) {
	if p == nil || p.stagedResources == nil {
		return
	}
	p.stagedResources.WithLabelValues(kind).Add(float64(n))
}

func (p *PrometheusRecorder) AddDefectFiles(n int) {
	if p == nil || p.defectFiles == nil {
		return
	}
	p.defectFiles.Add(float64(n))
}

func (p *PrometheusRecorder) AddRemovedFiles(n int) {
	if p == nil || p.removedFiles == nil {
		return
	}
	p.removedFiles.Add(float64(n))
}
