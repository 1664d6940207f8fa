package util

import "testing"

func TestHashNamespace(t *testing.T) {
	id := "workspace-12345"
	got := HashNamespace(id)
	if got != HashNamespace(id) {
		t.Fatalf("expected stable hash, got %s", got)
	}
	if got == HashNamespace("workspace-12346") {
		t.Fatalf("expected distinct hashes for distinct workspaces")
	}
	for _, ch := range got {
		if !((ch >= 'a' && ch <= 'f') || (ch >= '0' && ch <= '9')) {
			t.Fatalf("hash contains non-hex character: %c", ch)
		}
	}
	if len(got) != 64 {
		t.Fatalf("expected 64 hex characters, got %d", len(got))
	}
}
