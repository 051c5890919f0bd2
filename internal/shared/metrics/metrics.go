package metrics

import (
	"bytes"
	"fmt"
	"net/http"
	"sort"
	"strconv"
	"sync"
	"sync/atomic"

	"github.com/gin-gonic/gin"
)

var (
	diagnosisStartedTotal   atomic.Uint64
	diagnosisCompletedTotal atomic.Uint64
	diagnosisFailedTotal    atomic.Uint64
	diagnosisDiscardedTotal atomic.Uint64

	recordsUploadedTotal atomic.Uint64
	uploadRejectedTotal  atomic.Uint64
	lookupMissTotal      atomic.Uint64

	reportOutcomes = newLabeledCounter()

	diagnosisDuration = newHistogram([]float64{1000, 2500, 5000, 10000, 20000, 30000, 60000, 120000})
)

// IncDiagnosisStarted increments the started counter.
func IncDiagnosisStarted() {
	diagnosisStartedTotal.Add(1)
}

// IncDiagnosisCompleted increments the completed counter.
func IncDiagnosisCompleted() {
	diagnosisCompletedTotal.Add(1)
}

// IncDiagnosisFailed increments the failed counter.
func IncDiagnosisFailed() {
	diagnosisFailedTotal.Add(1)
}

// IncDiagnosisDiscarded counts completions dropped because a newer submission replaced them.
func IncDiagnosisDiscarded() {
	diagnosisDiscardedTotal.Add(1)
}

func IncRecordsUploaded() {
	recordsUploadedTotal.Add(1)
}

func IncUploadRejected() {
	uploadRejectedTotal.Add(1)
}

func IncLookupMiss() {
	lookupMissTotal.Add(1)
}

// IncReportOutcome counts split results by outcome (parsed or fallback).
func IncReportOutcome(outcome string) {
	reportOutcomes.Inc(outcome)
}

// ObserveDiagnosisDurationMs records a diagnosis duration in milliseconds.
func ObserveDiagnosisDurationMs(value float64) {
	if value < 0 {
		value = 0
	}
	diagnosisDuration.Observe(value)
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
	writeCounter(&buf, "diagnosis_started_total", "Total diagnoses started", diagnosisStartedTotal.Load())
	writeCounter(&buf, "diagnosis_completed_total", "Total diagnoses completed", diagnosisCompletedTotal.Load())
	writeCounter(&buf, "diagnosis_failed_total", "Total diagnoses failed", diagnosisFailedTotal.Load())
	writeCounter(&buf, "diagnosis_discarded_total", "Total diagnoses superseded before completion", diagnosisDiscardedTotal.Load())
	writeCounter(&buf, "records_uploaded_total", "Total accepted record uploads", recordsUploadedTotal.Load())
	writeCounter(&buf, "records_upload_rejected_total", "Total rejected record uploads", uploadRejectedTotal.Load())
	writeCounter(&buf, "records_lookup_miss_total", "Total meeting id lookups that missed", lookupMissTotal.Load())
	writeLabeledCounter(&buf, "report_outcome_total", "Split outcomes of model reports", "outcome", reportOutcomes.Snapshot())
	writeHistogram(&buf, "diagnosis_duration_ms", "Diagnosis duration in milliseconds", diagnosisDuration.Snapshot())
	return buf.String()
}

type labeledCounter struct {
	mu     sync.Mutex
	values map[string]uint64
}

func newLabeledCounter() *labeledCounter {
	return &labeledCounter{values: make(map[string]uint64)}
}

func (l *labeledCounter) Inc(label string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.values[label]++
}

func (l *labeledCounter) Snapshot() map[string]uint64 {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make(map[string]uint64, len(l.values))
	for k, v := range l.values {
		out[k] = v
	}
	return out
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

func (h *histogram) Observe(value float64) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.count++
	h.sum += value
	for i, bound := range h.buckets {
		if value <= bound {
			h.counts[i]++
			break
		}
	}
}

func (h *histogram) Snapshot() histogramSnapshot {
	h.mu.Lock()
	defer h.mu.Unlock()
	return histogramSnapshot{
		buckets: append([]float64(nil), h.buckets...),
		counts:  append([]uint64(nil), h.counts...),
		sum:     h.sum,
		count:   h.count,
	}
}

func writeCounter(buf *bytes.Buffer, name, help string, value uint64) {
	fmt.Fprintf(buf, "# HELP %s %s\n", name, help)
	fmt.Fprintf(buf, "# TYPE %s counter\n", name)
	fmt.Fprintf(buf, "%s %d\n", name, value)
}

func writeLabeledCounter(buf *bytes.Buffer, name, help, label string, values map[string]uint64) {
	fmt.Fprintf(buf, "# HELP %s %s\n", name, help)
	fmt.Fprintf(buf, "# TYPE %s counter\n", name)
	keys := make([]string, 0, len(values))
	for k := range values {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		fmt.Fprintf(buf, "%s{%s=%q} %d\n", name, label, k, values[k])
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
