package workerproc

import (
	"context"
	"errors"
	"testing"

	"kingsign-backend/internal/events"
)

func TestParseMessageValidation(t *testing.T) {
	cases := []struct {
		name string
		body string
		want func(error) bool
	}{
		{"empty", "  ", func(err error) bool { var e ErrEmptyBody; return errors.As(err, &e) }},
		{"bad json", "{nope", func(err error) bool { var e ErrDecode; return errors.As(err, &e) }},
		{"missing document", `{"type":"document.completed"}`, func(err error) bool { var e ErrMissingDocumentID; return errors.As(err, &e) }},
		{"unknown type", `{"type":"document.deleted","documentId":"d1"}`, func(err error) bool { var e ErrUnknownType; return errors.As(err, &e) }},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, _, err := ParseMessage(tc.body)
			if !tc.want(err) {
				t.Fatalf("unexpected error %v", err)
			}
			if !IsPoison(err) {
				t.Fatalf("expected poison error, got %v", err)
			}
		})
	}
}

func TestHandleMessageDispatchesEvent(t *testing.T) {
	var got events.Event
	var requestID string
	handle := func(ctx context.Context, e events.Event) {
		got = e
		requestID = events.RequestIDFromContext(ctx)
	}

	body := `{"type":"document.completed","documentId":"doc-1","requestId":"req-9","version":1}`
	if err := HandleMessage(context.Background(), handle, body); err != nil {
		t.Fatalf("HandleMessage: %v", err)
	}
	if got.Type != "document.completed" || got.DocumentID != "doc-1" {
		t.Fatalf("unexpected event %+v", got)
	}
	if requestID != "req-9" {
		t.Fatalf("expected request id in context, got %q", requestID)
	}
}

func TestHandleMessageRequiresHandler(t *testing.T) {
	if err := HandleMessage(context.Background(), nil, `{}`); err == nil || IsPoison(err) {
		t.Fatalf("expected configuration error, got %v", err)
	}
}

func TestComputeMeta(t *testing.T) {
	meta := ComputeMeta("abc")
	if meta.BodyLen != 3 || len(meta.BodySHA) != 64 {
		t.Fatalf("unexpected meta %+v", meta)
	}
	if ComputeMeta("") != (MessageMeta{}) {
		t.Fatalf("expected zero meta for empty body")
	}
}
