package metrics

import (
	"bytes"
	"fmt"
	"net/http"
	"sort"
	"strconv"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gin-gonic/gin"
)

var (
	analysisStartedTotal   atomic.Uint64
	analysisCompletedTotal atomic.Uint64
	analysisFailedTotal    atomic.Uint64

	analysisDuration = newHistogram([]float64{100, 250, 500, 1000, 2000, 5000, 10000, 30000, 60000})
	llmDuration      = newHistogram([]float64{100, 250, 500, 1000, 2000, 5000, 10000, 30000, 60000})

	llmRequests    = newLabeledCounter()
	llmErrors      = newLabeledCounter()
	extractions    = newLabeledCounter()
	analysisByKind = newLabeledCounter()
)

// IncAnalysisStarted increments the started counter for an analysis kind.
func IncAnalysisStarted(kind string) {
	analysisStartedTotal.Add(1)
	analysisByKind.Inc(labels("kind", kind))
}

// IncAnalysisCompleted increments the completed counter.
func IncAnalysisCompleted() {
	analysisCompletedTotal.Add(1)
}

// IncAnalysisFailed increments the failed counter.
func IncAnalysisFailed() {
	analysisFailedTotal.Add(1)
}

// ObserveAnalysisDurationMs records an analysis duration in milliseconds.
func ObserveAnalysisDurationMs(value float64) {
	if value < 0 {
		value = 0
	}
	analysisDuration.Observe(value)
}

// ObserveLLMRequest records one completion call against a provider.
func ObserveLLMRequest(provider string, d time.Duration) {
	llmRequests.Inc(labels("provider", provider))
	llmDuration.Observe(float64(d.Milliseconds()))
}

// IncLLMError counts a failed completion call by error kind.
func IncLLMError(provider, kind string) {
	llmErrors.Inc(labels("provider", provider, "kind", kind))
}

// IncExtraction counts a document extraction by format and outcome.
func IncExtraction(format, outcome string) {
	extractions.Inc(labels("format", format, "outcome", outcome))
}

// Handler exposes metrics in Prometheus text format.
func Handler() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("Content-Type", "text/plain; version=0.0.4")
		c.String(http.StatusOK, Render())
	}
}

// Render renders metrics in Prometheus text format.
func Render() string {
	var buf bytes.Buffer
	writeCounter(&buf, "analysis_started_total", "Total analyses started", analysisStartedTotal.Load())
	writeCounter(&buf, "analysis_completed_total", "Total analyses completed", analysisCompletedTotal.Load())
	writeCounter(&buf, "analysis_failed_total", "Total analyses failed", analysisFailedTotal.Load())
	writeLabeled(&buf, "analysis_kind_total", "Analyses started by kind", analysisByKind.Snapshot())
	writeHistogram(&buf, "analysis_duration_ms", "Analysis duration in milliseconds", analysisDuration.Snapshot())
	writeLabeled(&buf, "llm_requests_total", "Completion requests by provider", llmRequests.Snapshot())
	writeLabeled(&buf, "llm_errors_total", "Completion failures by provider and kind", llmErrors.Snapshot())
	writeHistogram(&buf, "llm_duration_ms", "Completion latency in milliseconds", llmDuration.Snapshot())
	writeLabeled(&buf, "extractions_total", "Document extractions by format and outcome", extractions.Snapshot())
	return buf.String()
}

type histogram struct {
	mu      sync.Mutex
	buckets []float64
	counts  []uint64
	sum     float64
	count   uint64
}

type histogramSnapshot struct {
	buckets []float64
	counts  []uint64
	sum     float64
	count   uint64
}

func newHistogram(buckets []float64) *histogram {
	return &histogram{
		buckets: buckets,
		counts:  make([]uint64, len(buckets)),
	}
}

// Observe adds value to the first bucket that holds it; Render accumulates.
func (h *histogram) Observe(value float64) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.count++
	h.sum += value
	for i, bound := range h.buckets {
		if value <= bound {
			h.counts[i]++
			return
		}
	}
}

func (h *histogram) Snapshot() histogramSnapshot {
	h.mu.Lock()
	defer h.mu.Unlock()
	out := histogramSnapshot{
		buckets: append([]float64(nil), h.buckets...),
		counts:  append([]uint64(nil), h.counts...),
		sum:     h.sum,
		count:   h.count,
	}
	return out
}

// labeledCounter keys counts by a rendered label set such as `kind="x"`.
type labeledCounter struct {
	mu     sync.Mutex
	values map[string]uint64
}

type labeledSample struct {
	labels string
	value  uint64
}

func newLabeledCounter() *labeledCounter {
	return &labeledCounter{values: make(map[string]uint64)}
}

func (l *labeledCounter) Inc(labelSet string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.values[labelSet]++
}

func (l *labeledCounter) Snapshot() []labeledSample {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]labeledSample, 0, len(l.values))
	for k, v := range l.values {
		out = append(out, labeledSample{labels: k, value: v})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].labels < out[j].labels })
	return out
}

func labels(pairs ...string) string {
	var buf bytes.Buffer
	for i := 0; i+1 < len(pairs); i += 2 {
		if buf.Len() > 0 {
			buf.WriteByte(',')
		}
		fmt.Fprintf(&buf, "%s=%s", pairs[i], strconv.Quote(pairs[i+1]))
	}
	return buf.String()
}

func writeCounter(buf *bytes.Buffer, name, help string, value uint64) {
	fmt.Fprintf(buf, "# HELP %s %s\n", name, help)
	fmt.Fprintf(buf, "# TYPE %s counter\n", name)
	fmt.Fprintf(buf, "%s %d\n", name, value)
}

func writeLabeled(buf *bytes.Buffer, name, help string, samples []labeledSample) {
	fmt.Fprintf(buf, "# HELP %s %s\n", name, help)
	fmt.Fprintf(buf, "# TYPE %s counter\n", name)
	for _, s := range samples {
		fmt.Fprintf(buf, "%s{%s} %d\n", name, s.labels, s.value)
	}
}

func writeHistogram(buf *bytes.Buffer, name, help string, snap histogramSnapshot) {
	fmt.Fprintf(buf, "# HELP %s %s\n", name, help)
	fmt.Fprintf(buf, "# TYPE %s histogram\n", name)
	var cumulative uint64
	for i, bound := range snap.buckets {
		cumulative += snap.counts[i]
		fmt.Fprintf(buf, "%s_bucket{le=\"%s\"} %d\n", name, formatFloat(bound), cumulative)
	}
	fmt.Fprintf(buf, "%s_bucket{le=\"+Inf\"} %d\n", name, snap.count)
	fmt.Fprintf(buf, "%s_sum %s\n", name, formatFloat(snap.sum))
	fmt.Fprintf(buf, "%s_count %d\n", name, snap.count)
}

func formatFloat(value float64) string {
	if value == float64(int64(value)) {
		return strconv.FormatInt(int64(value), 10)
	}
	return strconv.FormatFloat(value, 'f', -1, 64)
}
