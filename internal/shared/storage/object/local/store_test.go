package local

import (
	"context"
	"io"
	"strings"
	"testing"
	"time"
)

func TestSaveOpenAndSignedURL(t *testing.T) {
	store := New(t.TempDir())
	store.now = func() time.Time { return time.Unix(1_700_000_000, 0) }

	key, size, mimeType, err := store.Save(context.Background(), "ws-1", "nda.pdf", strings.NewReader("%PDF-1.4 body"))
	if err != nil {
		t.Fatalf("Save: %v", err)
	}
	if size != int64(len("%PDF-1.4 body")) {
		t.Fatalf("unexpected size %d", size)
	}
	if mimeType != "application/pdf" {
		t.Fatalf("unexpected mime type %q", mimeType)
	}
	if !strings.HasSuffix(key, "_nda.pdf") {
		t.Fatalf("unexpected key %q", key)
	}

	rc, err := store.Open(context.Background(), key)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	data, _ := io.ReadAll(rc)
	rc.Close()
	if string(data) != "%PDF-1.4 body" {
		t.Fatalf("unexpected body %q", data)
	}

	signed, err := store.SignedURL(context.Background(), key, time.Hour)
	if err != nil {
		t.Fatalf("SignedURL: %v", err)
	}
	if !strings.HasPrefix(signed, "file://") || !strings.Contains(signed, "expires=1700003600") {
		t.Fatalf("unexpected signed url %q", signed)
	}
}

func TestOpenRejectsTraversal(t *testing.T) {
	store := New(t.TempDir())
	if _, err := store.Open(context.Background(), "../secret"); err == nil {
		t.Fatalf("expected traversal to be rejected")
	}
}
