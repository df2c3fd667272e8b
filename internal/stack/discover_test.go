package stack

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

type stackFakeRunner struct {
	commands [][]string
	results  []stackRunResult
}

type stackRunResult struct {
	stdout   []byte
	stderr   []byte
	exitCode int
	err      error
}

func (r *stackFakeRunner) Run(name string, args ...string) ([]byte, []byte, int, error) {
	cmd := []string{name}
	cmd = append(cmd, args...)
	r.commands = append(r.commands, cmd)
	if len(r.results) > 0 {
		next := r.results[0]
		r.results = r.results[1:]
		return next.stdout, next.stderr, next.exitCode, next.err
	}
	return nil, nil, 0, nil
}

func TestLocatePrefersEarlierCandidates(t *testing.T) {
	dir := t.TempDir()
	second := filepath.Join(dir, "px4-v2")
	if err := os.WriteFile(second, []byte("bin"), 0o755); err != nil {
		t.Fatalf("write candidate: %v", err)
	}

	path, err := locate([]string{
		filepath.Join(dir, "px4-v1"),
		second,
		filepath.Join(dir, "px4-v3"),
	})
	if err != nil {
		t.Fatalf("locate: %v", err)
	}
	if path != second {
		t.Fatalf("expected %q, got %q", second, path)
	}
}

func TestLocateExpandsGlobs(t *testing.T) {
	dir := t.TempDir()
	jar := filepath.Join(dir, "jmavsim_run.jar")
	if err := os.WriteFile(jar, []byte("jar"), 0o644); err != nil {
		t.Fatalf("write jar: %v", err)
	}

	path, err := locate([]string{filepath.Join(dir, "*.jar")})
	if err != nil {
		t.Fatalf("locate: %v", err)
	}
	if path != jar {
		t.Fatalf("expected %q, got %q", jar, path)
	}
}

func TestLocateReportsNothingMatched(t *testing.T) {
	dir := t.TempDir()
	_, err := locate([]string{
		filepath.Join(dir, "missing"),
		filepath.Join(dir, "*.AppImage"),
		"  ",
	})
	if !errors.Is(err, ErrNotLocated) {
		t.Fatalf("expected ErrNotLocated, got %v", err)
	}
}

func TestCheckJavaMapsMissingBinary(t *testing.T) {
	runner := &stackFakeRunner{
		results: []stackRunResult{
			{exitCode: 127, err: errors.New("java missing")},
		},
	}
	if err := checkJava(runner); !errors.Is(err, ErrJavaNotInstalled) {
		t.Fatalf("expected ErrJavaNotInstalled, got %v", err)
	}
	if len(runner.commands) != 1 {
		t.Fatalf("expected one probe command, got %d", len(runner.commands))
	}
}

func TestCheckJavaPassesWhenPresent(t *testing.T) {
	runner := &stackFakeRunner{}
	if err := checkJava(runner); err != nil {
		t.Fatalf("expected probe to pass, got %v", err)
	}
}

func TestCheckJavaKeepsOtherFailures(t *testing.T) {
	runner := &stackFakeRunner{
		results: []stackRunResult{
			{stderr: []byte("bad jvm config"), exitCode: 2, err: errors.New("exit status 2")},
		},
	}
	err := checkJava(runner)
	if err == nil || errors.Is(err, ErrJavaNotInstalled) {
		t.Fatalf("expected a non-missing probe failure, got %v", err)
	}
}
