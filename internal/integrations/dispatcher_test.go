package integrations

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"kingsign-backend/internal/documents"
	"kingsign-backend/internal/fields"
)

type stubDocs map[string]documents.WithFields

func (s stubDocs) GetWithFields(ctx context.Context, id string) (documents.WithFields, error) {
	doc, ok := s[id]
	if !ok {
		return documents.WithFields{}, documents.ErrNotFound
	}
	return doc, nil
}

func sampleDocument() documents.WithFields {
	now := time.Now().UTC()
	return documents.WithFields{
		Document: documents.Document{
			ID: "doc-1", WorkspaceID: "ws-1", TemplateID: "tpl-1", FileID: "file-1",
			Title: "NDA", Status: documents.StatusSigned, CreatedAt: now, UpdatedAt: now,
		},
		Fields: []fields.Field{
			{ID: "f1", DocumentID: "doc-1", TemplateFieldID: "tf-1", ContactID: "c1", Value: json.RawMessage(`"Jane"`), IsSigned: true},
			{ID: "f2", DocumentID: "doc-1", TemplateFieldID: "tf-2", ContactID: "c2", IsSigned: true},
		},
	}
}

func addIntegration(t *testing.T, repo *MemoryRepo, id, url string, enabled bool) {
	t.Helper()
	err := repo.Create(context.Background(), Integration{
		ID: id, WorkspaceID: "ws-1", URL: url, NotificationType: TypeDocumentCompleted,
		IsEnabled: enabled, CreatedAt: time.Now().UTC(),
	})
	if err != nil {
		t.Fatalf("create integration: %v", err)
	}
}

func TestNotifyIsolatesSubscriberFailures(t *testing.T) {
	release := make(chan struct{})
	slow := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	defer slow.Close()
	defer close(release)

	failing := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer failing.Close()

	var mu sync.Mutex
	var got Payload
	var headers http.Header
	ok := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		defer mu.Unlock()
		headers = r.Header.Clone()
		_ = json.NewDecoder(r.Body).Decode(&got)
		w.WriteHeader(http.StatusNoContent)
	}))
	defer ok.Close()

	repo := NewMemoryRepo()
	addIntegration(t, repo, "slow", slow.URL, true)
	addIntegration(t, repo, "failing", failing.URL, true)
	addIntegration(t, repo, "ok", ok.URL, true)
	addIntegration(t, repo, "disabled", ok.URL, false)

	d := NewDispatcher(stubDocs{"doc-1": sampleDocument()}, repo, 100*time.Millisecond)
	results := d.Notify(context.Background(), TypeDocumentCompleted, "doc-1")

	if len(results) != 3 {
		t.Fatalf("expected 3 deliveries, got %d", len(results))
	}
	byID := map[string]Result{}
	for _, r := range results {
		byID[r.IntegrationID] = r
	}
	if !errors.Is(byID["slow"].Err, context.DeadlineExceeded) {
		t.Fatalf("expected slow subscriber to time out, got %v", byID["slow"].Err)
	}
	if byID["failing"].Err == nil || byID["failing"].StatusCode != http.StatusInternalServerError {
		t.Fatalf("expected failing subscriber error, got %+v", byID["failing"])
	}
	if byID["ok"].Err != nil {
		t.Fatalf("expected ok delivery, got %v", byID["ok"].Err)
	}

	mu.Lock()
	defer mu.Unlock()
	if got.Type != TypeDocumentCompleted || got.WebhookID != "ok" || got.Document.ID != "doc-1" {
		t.Fatalf("unexpected payload %+v", got)
	}
	if len(got.Document.DocumentFields) != 2 || string(got.Document.DocumentFields[1].Value) != "null" {
		t.Fatalf("unexpected snapshot fields %+v", got.Document.DocumentFields)
	}
	if headers.Get("User-Agent") != "Kingsign-Webhook/1.0" || headers.Get("X-Webhook-Type") != TypeDocumentCompleted ||
		headers.Get("X-Webhook-Source") != "kingsign" || headers.Get("Content-Type") != "application/json" {
		t.Fatalf("unexpected headers %v", headers)
	}
}

func TestNotifyWithoutSubscribersIsNoop(t *testing.T) {
	d := NewDispatcher(stubDocs{"doc-1": sampleDocument()}, NewMemoryRepo(), time.Second)
	if results := d.Notify(context.Background(), TypeDocumentUpdated, "doc-1"); len(results) != 0 {
		t.Fatalf("expected no deliveries, got %d", len(results))
	}
	if results := d.Notify(context.Background(), TypeDocumentUpdated, "missing"); results != nil {
		t.Fatalf("expected nil results for missing document")
	}
}

func TestSnapshotUsesUnderscoreIDs(t *testing.T) {
	raw, err := json.Marshal(Snapshot(sampleDocument()))
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	var decoded map[string]any
	_ = json.Unmarshal(raw, &decoded)
	if decoded["_id"] != "doc-1" {
		t.Fatalf("expected _id key, got %v", decoded)
	}
	fieldsList := decoded["documentFields"].([]any)
	if fieldsList[0].(map[string]any)["_id"] != "f1" || fieldsList[0].(map[string]any)["fieldId"] != "tf-1" {
		t.Fatalf("unexpected field snapshot %v", fieldsList[0])
	}
}
