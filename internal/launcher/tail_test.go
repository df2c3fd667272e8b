package launcher

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestTailLinesReturnsFinalLines(t *testing.T) {
	path := filepath.Join(t.TempDir(), "svc.log")
	var b strings.Builder
	for i := 1; i <= 100; i++ {
		fmt.Fprintf(&b, "line-%03d\n", i)
	}
	if err := os.WriteFile(path, []byte(b.String()), 0o644); err != nil {
		t.Fatalf("write log: %v", err)
	}

	lines := tailLines(path, LogTailLines)
	if len(lines) != LogTailLines {
		t.Fatalf("expected %d lines, got %d", LogTailLines, len(lines))
	}
	if lines[0] != "line-041" || lines[len(lines)-1] != "line-100" {
		t.Fatalf("unexpected window: first=%q last=%q", lines[0], lines[len(lines)-1])
	}
}

func TestTailLinesShortFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "svc.log")
	if err := os.WriteFile(path, []byte("only\ntwo\n"), 0o644); err != nil {
		t.Fatalf("write log: %v", err)
	}

	lines := tailLines(path, LogTailLines)
	if len(lines) != 2 || lines[0] != "only" || lines[1] != "two" {
		t.Fatalf("unexpected lines: %q", lines)
	}
}

func TestTailLinesMissingOrEmptyFile(t *testing.T) {
	if lines := tailLines(filepath.Join(t.TempDir(), "absent.log"), LogTailLines); lines != nil {
		t.Fatalf("expected nil for missing file, got %q", lines)
	}

	path := filepath.Join(t.TempDir(), "empty.log")
	if err := os.WriteFile(path, nil, 0o644); err != nil {
		t.Fatalf("write log: %v", err)
	}
	if lines := tailLines(path, LogTailLines); lines != nil {
		t.Fatalf("expected nil for empty file, got %q", lines)
	}
}

func TestTailLinesLargeFileUsesWindow(t *testing.T) {
	path := filepath.Join(t.TempDir(), "svc.log")
	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("create log: %v", err)
	}
	filler := strings.Repeat("x", 120)
	for i := 0; i < 2000; i++ {
		fmt.Fprintf(f, "%s %d\n", filler, i)
	}
	if err := f.Close(); err != nil {
		t.Fatalf("close log: %v", err)
	}

	lines := tailLines(path, LogTailLines)
	if len(lines) != LogTailLines {
		t.Fatalf("expected %d lines, got %d", LogTailLines, len(lines))
	}
	if !strings.HasSuffix(lines[len(lines)-1], " 1999") {
		t.Fatalf("unexpected final line: %q", lines[len(lines)-1])
	}
}
