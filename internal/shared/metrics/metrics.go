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

// Batch-sign outcomes.
const (
	SignApplied       = "applied"
	SignCompleted     = "completed"
	SignAlreadySigned = "already_signed"
	SignNoFields      = "no_fields"
	SignFailed        = "failed"
)

var (
	batchSignTotal = newLabeledCounter()

	webhookDeliverySuccess atomic.Uint64
	webhookDeliveryFailure atomic.Uint64
	webhookDispatchJobs    atomic.Uint64

	webhookDeliveryDuration = newHistogram([]float64{50, 100, 250, 500, 1000, 2500, 5000, 10000})
)

// IncBatchSign counts one batch-sign attempt by outcome.
func IncBatchSign(result string) {
	batchSignTotal.Inc(result)
}

// IncWebhookDelivery counts one outbound webhook delivery.
func IncWebhookDelivery(ok bool) {
	if ok {
		webhookDeliverySuccess.Add(1)
		return
	}
	webhookDeliveryFailure.Add(1)
}

// IncWebhookDispatchJob counts one dispatch (all subscribers of one event).
func IncWebhookDispatchJob() {
	webhookDispatchJobs.Add(1)
}

// ObserveWebhookDeliveryMs records a delivery duration in milliseconds.
func ObserveWebhookDeliveryMs(value float64) {
	if value < 0 {
		value = 0
	}
	webhookDeliveryDuration.Observe(value)
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
	writeLabeledCounter(&buf, "batch_sign_total", "Batch-sign attempts by result", "result", batchSignTotal.Snapshot())
	writeLabeledCounter(&buf, "webhook_deliveries_total", "Outbound webhook deliveries by outcome", "outcome", map[string]uint64{
		"success": webhookDeliverySuccess.Load(),
		"failure": webhookDeliveryFailure.Load(),
	})
	writeCounter(&buf, "webhook_dispatch_jobs_total", "Webhook dispatches executed", webhookDispatchJobs.Load())
	writeHistogram(&buf, "webhook_delivery_duration_ms", "Webhook delivery duration in milliseconds", webhookDeliveryDuration.Snapshot())
	return buf.String()
}

type labeledCounter struct {
	mu     sync.Mutex
	values map[string]uint64
}

func newLabeledCounter() *labeledCounter {
	return &labeledCounter{values: make(map[string]uint64)}
}

func (c *labeledCounter) Inc(label string) {
	c.mu.Lock()
	c.values[label]++
	c.mu.Unlock()
}

func (c *labeledCounter) Snapshot() map[string]uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make(map[string]uint64, len(c.values))
	for k, v := range c.values {
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

// Observe records value in the first bucket whose bound contains it; Render accumulates.
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
