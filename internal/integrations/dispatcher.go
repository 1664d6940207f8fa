package integrations

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"sync"
	"time"

	"kingsign-backend/internal/documents"
	"kingsign-backend/internal/shared/metrics"
	"kingsign-backend/internal/shared/telemetry"
)

const (
	defaultDeliveryTimeout = 10 * time.Second
	userAgent              = "Kingsign-Webhook/1.0"
	webhookSource          = "kingsign"
)

// DocumentSource assembles a document with its current fields.
type DocumentSource interface {
	GetWithFields(ctx context.Context, id string) (documents.WithFields, error)
}

// Subscribers lists the enabled integrations for a workspace and type.
type Subscribers interface {
	ListEnabled(ctx context.Context, workspaceID, notificationType string) ([]Integration, error)
}

// Payload is the body POSTed to every subscriber.
type Payload struct {
	Type      string           `json:"type"`
	Document  DocumentSnapshot `json:"document"`
	Timestamp string           `json:"timestamp"`
	WebhookID string           `json:"webhookId"`
}

// DocumentSnapshot is the document view sent in webhook payloads.
type DocumentSnapshot struct {
	ID             string          `json:"_id"`
	Title          string          `json:"title"`
	Status         string          `json:"status"`
	Note           string          `json:"note"`
	WorkspaceID    string          `json:"workspaceId"`
	TemplateID     string          `json:"templateId"`
	FileID         string          `json:"fileId"`
	CreatedAt      time.Time       `json:"createdAt"`
	UpdatedAt      time.Time       `json:"updatedAt"`
	DocumentFields []FieldSnapshot `json:"documentFields"`
}

// FieldSnapshot is the field view sent in webhook payloads.
type FieldSnapshot struct {
	ID         string          `json:"_id"`
	DocumentID string          `json:"documentId"`
	FieldID    string          `json:"fieldId"`
	ContactID  string          `json:"contactId"`
	Value      json.RawMessage `json:"value"`
	IsSigned   bool            `json:"isSigned"`
	CreatedAt  time.Time       `json:"createdAt"`
	UpdatedAt  time.Time       `json:"updatedAt"`
}

// Snapshot converts an assembled document into its webhook view.
func Snapshot(doc documents.WithFields) DocumentSnapshot {
	out := DocumentSnapshot{
		ID:             doc.ID,
		Title:          doc.Title,
		Status:         string(doc.Status),
		Note:           doc.Note,
		WorkspaceID:    doc.WorkspaceID,
		TemplateID:     doc.TemplateID,
		FileID:         doc.FileID,
		CreatedAt:      doc.CreatedAt,
		UpdatedAt:      doc.UpdatedAt,
		DocumentFields: make([]FieldSnapshot, 0, len(doc.Fields)),
	}
	for _, f := range doc.Fields {
		value := f.Value
		if len(value) == 0 {
			value = json.RawMessage("null")
		}
		out.DocumentFields = append(out.DocumentFields, FieldSnapshot{
			ID:         f.ID,
			DocumentID: f.DocumentID,
			FieldID:    f.TemplateFieldID,
			ContactID:  f.ContactID,
			Value:      value,
			IsSigned:   f.IsSigned,
			CreatedAt:  f.CreatedAt,
			UpdatedAt:  f.UpdatedAt,
		})
	}
	return out
}

// Result is the outcome of one delivery.
type Result struct {
	IntegrationID string
	StatusCode    int
	Duration      time.Duration
	Err           error
}

// Dispatcher fans a document event out to every enabled subscriber of the
// document's workspace. Deliveries run concurrently, each bounded by Timeout,
// and every delivery is awaited whatever the others do.
type Dispatcher struct {
	Documents   DocumentSource
	Subscribers Subscribers
	Client      *http.Client
	Timeout     time.Duration
	now         func() time.Time
}

// NewDispatcher constructs a Dispatcher.
func NewDispatcher(docs DocumentSource, subs Subscribers, timeout time.Duration) *Dispatcher {
	if timeout <= 0 {
		timeout = defaultDeliveryTimeout
	}
	return &Dispatcher{
		Documents:   docs,
		Subscribers: subs,
		Client:      &http.Client{},
		Timeout:     timeout,
		now:         func() time.Time { return time.Now().UTC() },
	}
}

// Notify delivers notificationType for documentID. Failures are logged and
// reported in the results, never returned as an error.
func (d *Dispatcher) Notify(ctx context.Context, notificationType, documentID string) []Result {
	doc, err := d.Documents.GetWithFields(ctx, documentID)
	if err != nil {
		telemetry.Error("webhook.document_load_failed", map[string]any{
			"document_id":       documentID,
			"notification_type": notificationType,
			"error":             err,
		})
		return nil
	}

	subs, err := d.Subscribers.ListEnabled(ctx, doc.WorkspaceID, notificationType)
	if err != nil {
		telemetry.Error("webhook.integrations_load_failed", map[string]any{
			"document_id":       documentID,
			"workspace_id":      doc.WorkspaceID,
			"notification_type": notificationType,
			"error":             err,
		})
		return nil
	}
	if len(subs) == 0 {
		return nil
	}

	snapshot := Snapshot(doc)
	timestamp := d.now().Format(time.RFC3339Nano)

	results := make([]Result, len(subs))
	var wg sync.WaitGroup
	for i, sub := range subs {
		wg.Add(1)
		go func(i int, sub Integration) {
			defer wg.Done()
			results[i] = d.deliver(ctx, sub, Payload{
				Type:      notificationType,
				Document:  snapshot,
				Timestamp: timestamp,
				WebhookID: sub.ID,
			})
		}(i, sub)
	}
	wg.Wait()

	delivered := 0
	for _, r := range results {
		if r.Err == nil {
			delivered++
		}
	}
	telemetry.Info("webhook.dispatch_complete", map[string]any{
		"document_id":       documentID,
		"workspace_id":      doc.WorkspaceID,
		"notification_type": notificationType,
		"subscribers":       len(subs),
		"delivered":         delivered,
	})
	return results
}

func (d *Dispatcher) deliver(ctx context.Context, sub Integration, payload Payload) Result {
	start := time.Now()
	res := Result{IntegrationID: sub.ID}
	defer func() {
		res.Duration = time.Since(start)
		metrics.IncWebhookDelivery(res.Err == nil)
		metrics.ObserveWebhookDeliveryMs(float64(res.Duration.Milliseconds()))
	}()

	ctx, cancel := context.WithTimeout(ctx, d.Timeout)
	defer cancel()

	res.StatusCode, res.Err = d.post(ctx, sub.URL, payload)
	if res.Err != nil {
		telemetry.Error("webhook.delivery_failed", map[string]any{
			"integration_id":    sub.ID,
			"workspace_id":      sub.WorkspaceID,
			"document_id":       payload.Document.ID,
			"notification_type": payload.Type,
			"status":            res.StatusCode,
			"error":             res.Err,
		})
	}
	return res
}

func (d *Dispatcher) post(ctx context.Context, url string, payload Payload) (int, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return 0, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return 0, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("X-Webhook-Type", payload.Type)
	req.Header.Set("X-Webhook-Source", webhookSource)

	resp, err := d.Client.Do(req)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return 0, fmt.Errorf("webhook timeout after %s: %w", d.Timeout, err)
		}
		return 0, err
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 64<<10))

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return resp.StatusCode, fmt.Errorf("webhook responded %d", resp.StatusCode)
	}
	return resp.StatusCode, nil
}
