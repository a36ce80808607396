package utils

import (
	"os"
	"path/filepath"
	"testing"
)

func TestSafeWriteFile(t *testing.T) {
	p := filepath.Join(t.TempDir(), "out", "report.md")
	if err := SafeWriteFile(p, []byte("first")); err != nil {
		t.Fatalf("SafeWriteFile: %v", err)
	}
	if err := SafeWriteFile(p, []byte("second")); err != nil {
		t.Fatalf("SafeWriteFile overwrite: %v", err)
	}
	b, err := os.ReadFile(p)
	if err != nil {
		t.Fatal(err)
	}
	if string(b) != "second" {
		t.Fatalf("content = %q, want %q", b, "second")
	}
	if _, err := os.Stat(p + ".tmp"); !os.IsNotExist(err) {
		t.Fatalf("temp file left behind: %v", err)
	}
}
