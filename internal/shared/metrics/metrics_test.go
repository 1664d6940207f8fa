package metrics

import (
	"bytes"
	"strings"
	"testing"
)

func TestRenderIncludesSigningAndWebhookSeries(t *testing.T) {
	IncBatchSign(SignCompleted)
	IncBatchSign(SignAlreadySigned)
	IncWebhookDelivery(true)
	IncWebhookDelivery(false)
	IncWebhookDispatchJob()
	ObserveWebhookDeliveryMs(120)

	out := Render()
	for _, want := range []string{
		`batch_sign_total{result="completed"}`,
		`batch_sign_total{result="already_signed"}`,
		`webhook_deliveries_total{outcome="success"}`,
		`webhook_deliveries_total{outcome="failure"}`,
		"webhook_dispatch_jobs_total",
		"webhook_delivery_duration_ms_count",
	} {
		if !strings.Contains(out, want) {
			t.Fatalf("expected %q in output:\n%s", want, out)
		}
	}
}

func TestHistogramBucketsAreCumulative(t *testing.T) {
	h := newHistogram([]float64{10, 100})
	h.Observe(5)
	h.Observe(50)
	h.Observe(500)

	snap := h.Snapshot()
	if snap.count != 3 {
		t.Fatalf("expected count 3, got %d", snap.count)
	}
	if snap.counts[0] != 1 || snap.counts[1] != 1 {
		t.Fatalf("unexpected per-bucket counts %v", snap.counts)
	}

	var buf bytes.Buffer
	writeHistogram(&buf, "test_ms", "test", snap)
	out := buf.String()
	for _, want := range []string{
		`test_ms_bucket{le="10"} 1`,
		`test_ms_bucket{le="100"} 2`,
		`test_ms_bucket{le="+Inf"} 3`,
	} {
		if !strings.Contains(out, want) {
			t.Fatalf("expected %q in output:\n%s", want, out)
		}
	}
}
