package util

import (
	"strings"
	"testing"
)

func TestSanitizeFileName(t *testing.T) {
	got, err := SanitizeFileName(" contracts/nda.pdf ")
	if err != nil {
		t.Fatalf("SanitizeFileName: %v", err)
	}
	if got != "contracts_nda.pdf" {
		t.Fatalf("unexpected sanitized name %q", got)
	}
	for _, bad := range []string{"", "   ", "../etc/passwd"} {
		if _, err := SanitizeFileName(bad); err == nil {
			t.Fatalf("expected error for %q", bad)
		}
	}
}

func TestSanitizeFileNameControlAndLength(t *testing.T) {
	got, err := SanitizeFileName("lease\x00\tsigned.pdf")
	if err != nil || got != "leasesigned.pdf" {
		t.Fatalf("unexpected result %q, %v", got, err)
	}

	long := strings.Repeat("é", 150) + ".pdf"
	got, err = SanitizeFileName(long)
	if err != nil {
		t.Fatalf("SanitizeFileName: %v", err)
	}
	if len(got) > maxFileNameBytes || !strings.HasSuffix(got, ".pdf") {
		t.Fatalf("unexpected truncation %d bytes %q", len(got), got[len(got)-8:])
	}
}

func TestFileExtension(t *testing.T) {
	cases := map[string]string{
		"NDA.PDF":       "pdf",
		"offer.v2.docx": "docx",
		"README":        "",
	}
	for in, want := range cases {
		if got := FileExtension(in); got != want {
			t.Fatalf("FileExtension(%q) = %q, want %q", in, got, want)
		}
	}
}
