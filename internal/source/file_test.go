package source

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadNormalizesAndRestores(t *testing.T) {
	tmp := t.TempDir()
	path := filepath.Join(tmp, "main.go")
	raw := []byte("\xEF\xBB\xBFpackage main\r\n\r\nfunc main() {}\r\n")
	if err := os.WriteFile(path, raw, 0o600); err != nil {
		t.Fatalf("failed to write file: %v", err)
	}

	f, err := Load(path)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if f.Content != "package main\n\nfunc main() {}\n" {
		t.Fatalf("unexpected content %q", f.Content)
	}
	if f.Flags&FileHadBOM == 0 || f.Flags&FileNormalizedCRLF == 0 || f.Flags&FileMixedEOL != 0 {
		t.Fatalf("expected BOM and CRLF flags only, got %b", f.Flags)
	}
	if got := string(f.Restore(f.Content)); got != string(raw) {
		t.Fatalf("Restore = %q, want %q", got, raw)
	}
}

func TestLoneCarriageReturnIsKept(t *testing.T) {
	f := FromBytes("x.go", []byte("a\rb\n"), FileVirtual)
	if f.Content != "a\rb\n" || f.Flags&FileNormalizedCRLF != 0 || f.EOL() != "\n" {
		t.Fatalf("lone CR must not be normalised: %q %b", f.Content, f.Flags)
	}
}

func TestMixedLineEndings(t *testing.T) {
	f := FromBytes("./dir/../x.go", []byte("a\r\nb\nc\r\n"), 0)
	if f.Flags&FileMixedEOL == 0 || f.Content != "a\nb\nc\n" {
		t.Fatalf("unexpected file %+v", f)
	}
	if got := string(f.Restore(f.Content)); got != "a\r\nb\r\nc\r\n" {
		t.Fatalf("Restore = %q", got)
	}
	if f.Path != "x.go" {
		t.Fatalf("path not cleaned: %q", f.Path)
	}
}
