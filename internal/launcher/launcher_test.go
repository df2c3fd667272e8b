package launcher

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/AryaMajumder/px4-jmavsim/internal/readiness"
	"github.com/AryaMajumder/px4-jmavsim/internal/testutil/testlog"
)

type fakeStarter struct {
	pid    int
	err    error
	starts []Request
}

func (s *fakeStarter) start(req Request) (int, error) {
	s.starts = append(s.starts, req)
	if s.err != nil {
		return 0, s.err
	}
	return s.pid, nil
}

type fakeClock struct {
	elapsed  time.Duration
	sleeps   []time.Duration
	sleepErr func(call int) error
}

func (c *fakeClock) now() time.Time {
	return time.Unix(0, 0)
}

func (c *fakeClock) since(time.Time) time.Duration {
	return c.elapsed
}

func (c *fakeClock) sleep(_ context.Context, d time.Duration) error {
	if c.sleepErr != nil {
		if err := c.sleepErr(len(c.sleeps)); err != nil {
			return err
		}
	}
	c.sleeps = append(c.sleeps, d)
	c.elapsed += d
	return nil
}

type countingCheck struct {
	calls   int
	readyOn int
	err     error
}

func (c *countingCheck) check(context.Context) (bool, error) {
	c.calls++
	if c.err != nil && c.calls == 1 {
		return false, c.err
	}
	return c.readyOn > 0 && c.calls >= c.readyOn, nil
}

func testRequest(t *testing.T, ready readiness.Check) Request {
	t.Helper()
	return Request{
		Command:      []string{os.Args[0]},
		LogPath:      filepath.Join(t.TempDir(), "svc.log"),
		Ready:        ready,
		PollInterval: time.Second,
		Timeout:      5 * time.Second,
	}
}

func TestLaunchReadyAfterFirstInterval(t *testing.T) {
	testlog.Start(t)
	starter := &fakeStarter{pid: 4242}
	clk := &fakeClock{}
	counting := &countingCheck{readyOn: 1}
	l := &Launcher{starter: starter, clk: clk}

	out := l.Launch(context.Background(), testRequest(t, counting.check))
	if out.Status != StatusReady {
		t.Fatalf("expected ready, got %s (err=%v)", out.Status, out.Err)
	}
	if out.PID != 4242 {
		t.Fatalf("unexpected pid: %d", out.PID)
	}
	if len(clk.sleeps) != 1 || clk.sleeps[0] != time.Second {
		t.Fatalf("expected one full poll interval before the check, got %v", clk.sleeps)
	}
	if counting.calls != 1 {
		t.Fatalf("expected one readiness evaluation, got %d", counting.calls)
	}
	if out.Elapsed != time.Second {
		t.Fatalf("unexpected elapsed: %v", out.Elapsed)
	}
}

func TestLaunchTimesOutWithinOneIntervalPastTimeout(t *testing.T) {
	testlog.Start(t)
	starter := &fakeStarter{pid: 77}
	clk := &fakeClock{}
	counting := &countingCheck{}
	l := &Launcher{starter: starter, clk: clk}

	req := testRequest(t, counting.check)
	req.PollInterval = time.Second
	req.Timeout = 3 * time.Second
	if err := os.WriteFile(req.LogPath, []byte("boot line one\nboot line two\n"), 0o644); err != nil {
		t.Fatalf("write log: %v", err)
	}

	out := l.Launch(context.Background(), req)
	if out.Status != StatusTimedOut {
		t.Fatalf("expected timed_out, got %s", out.Status)
	}
	if out.Elapsed < req.Timeout || out.Elapsed >= req.Timeout+req.PollInterval {
		t.Fatalf("elapsed %v outside [timeout, timeout+interval)", out.Elapsed)
	}
	if len(clk.sleeps) != 3 {
		t.Fatalf("expected 3 poll sleeps, got %d", len(clk.sleeps))
	}
	if counting.calls != 3 {
		t.Fatalf("expected 3 readiness evaluations, got %d", counting.calls)
	}
	if len(out.LogTail) != 2 || out.LogTail[1] != "boot line two" {
		t.Fatalf("unexpected log tail: %q", out.LogTail)
	}
	if out.PID != 77 {
		t.Fatalf("timed-out outcome should still carry the pid, got %d", out.PID)
	}
}

func TestLaunchStartFailedWhenExecutableMissing(t *testing.T) {
	testlog.Start(t)
	starter := &fakeStarter{pid: 1}
	l := &Launcher{starter: starter, clk: &fakeClock{}}

	req := testRequest(t, (&countingCheck{}).check)
	req.Command = []string{"/nonexistent/px4-binary"}

	out := l.Launch(context.Background(), req)
	if out.Status != StatusStartFailed {
		t.Fatalf("expected start_failed, got %s", out.Status)
	}
	if !errors.Is(out.Err, ErrExecutableNotFound) {
		t.Fatalf("expected ErrExecutableNotFound, got %v", out.Err)
	}
	if len(starter.starts) != 0 {
		t.Fatalf("expected zero spawns, got %d", len(starter.starts))
	}
}

func TestLaunchStartFailedWhenWorkingDirMissing(t *testing.T) {
	testlog.Start(t)
	starter := &fakeStarter{pid: 1}
	l := &Launcher{starter: starter, clk: &fakeClock{}}

	req := testRequest(t, (&countingCheck{}).check)
	req.Dir = filepath.Join(t.TempDir(), "missing")

	out := l.Launch(context.Background(), req)
	if out.Status != StatusStartFailed {
		t.Fatalf("expected start_failed, got %s", out.Status)
	}
	if !errors.Is(out.Err, ErrWorkingDirInvalid) {
		t.Fatalf("expected ErrWorkingDirInvalid, got %v", out.Err)
	}
	if len(starter.starts) != 0 {
		t.Fatalf("expected zero spawns, got %d", len(starter.starts))
	}
}

func TestLaunchRejectsInvalidRequests(t *testing.T) {
	testlog.Start(t)
	starter := &fakeStarter{pid: 1}
	l := &Launcher{starter: starter, clk: &fakeClock{}}

	base := testRequest(t, (&countingCheck{}).check)

	cases := []struct {
		name   string
		mutate func(*Request)
	}{
		{"empty command", func(r *Request) { r.Command = nil }},
		{"blank executable", func(r *Request) { r.Command = []string{"  "} }},
		{"empty log path", func(r *Request) { r.LogPath = "" }},
		{"nil readiness check", func(r *Request) { r.Ready = nil }},
		{"zero poll interval", func(r *Request) { r.PollInterval = 0 }},
		{"timeout below interval", func(r *Request) { r.Timeout = r.PollInterval / 2 }},
	}
	for _, tc := range cases {
		req := base
		tc.mutate(&req)
		out := l.Launch(context.Background(), req)
		if out.Status != StatusStartFailed {
			t.Fatalf("%s: expected start_failed, got %s", tc.name, out.Status)
		}
		if !errors.Is(out.Err, ErrInvalidRequest) {
			t.Fatalf("%s: expected ErrInvalidRequest, got %v", tc.name, out.Err)
		}
	}
	if len(starter.starts) != 0 {
		t.Fatalf("expected zero spawns across invalid requests, got %d", len(starter.starts))
	}
}

func TestLaunchSpawnErrorBecomesStartFailed(t *testing.T) {
	testlog.Start(t)
	starter := &fakeStarter{err: errors.New("fork refused")}
	counting := &countingCheck{readyOn: 1}
	l := &Launcher{starter: starter, clk: &fakeClock{}}

	out := l.Launch(context.Background(), testRequest(t, counting.check))
	if out.Status != StatusStartFailed {
		t.Fatalf("expected start_failed, got %s", out.Status)
	}
	if !errors.Is(out.Err, ErrSpawnFailed) {
		t.Fatalf("expected ErrSpawnFailed, got %v", out.Err)
	}
	if !strings.Contains(out.Err.Error(), "fork refused") {
		t.Fatalf("expected spawn reason preserved, got %v", out.Err)
	}
	if counting.calls != 0 {
		t.Fatalf("expected no polling after failed spawn, got %d calls", counting.calls)
	}
}

func TestLaunchCancelledAtNextIntervalBoundary(t *testing.T) {
	testlog.Start(t)
	starter := &fakeStarter{pid: 901}
	clk := &fakeClock{
		sleepErr: func(call int) error {
			if call == 1 {
				return context.Canceled
			}
			return nil
		},
	}
	counting := &countingCheck{}
	l := &Launcher{starter: starter, clk: clk}

	req := testRequest(t, counting.check)
	req.Timeout = time.Hour

	out := l.Launch(context.Background(), req)
	if out.Status != StatusCancelled {
		t.Fatalf("expected cancelled, got %s", out.Status)
	}
	if out.PID != 901 {
		t.Fatalf("cancelled outcome should carry the pid, got %d", out.PID)
	}
	if out.Elapsed != req.PollInterval {
		t.Fatalf("expected cancellation within one interval, elapsed %v", out.Elapsed)
	}
}

func TestLaunchTreatsCheckErrorAsNotReady(t *testing.T) {
	testlog.Start(t)
	starter := &fakeStarter{pid: 5}
	clk := &fakeClock{}
	counting := &countingCheck{readyOn: 2, err: errors.New("socket table scan failed")}
	l := &Launcher{starter: starter, clk: clk}

	out := l.Launch(context.Background(), testRequest(t, counting.check))
	if out.Status != StatusReady {
		t.Fatalf("expected ready after transient check error, got %s", out.Status)
	}
	if counting.calls != 2 {
		t.Fatalf("expected 2 readiness evaluations, got %d", counting.calls)
	}
	if len(clk.sleeps) != 2 {
		t.Fatalf("expected 2 poll sleeps, got %d", len(clk.sleeps))
	}
}

func TestOverlayEnvAppendsOverridesLast(t *testing.T) {
	testlog.Start(t)
	base := []string{"HOME=/root", "PX4_SIM_SPEED=1"}
	env := overlayEnv(base, map[string]string{
		"PX4_SIM_SPEED": "2",
		"HEADLESS":      "1",
	})

	if len(env) != 4 {
		t.Fatalf("unexpected env length: %d", len(env))
	}
	if env[0] != "HOME=/root" || env[1] != "PX4_SIM_SPEED=1" {
		t.Fatalf("inherited entries reordered: %v", env)
	}
	if env[2] != "HEADLESS=1" || env[3] != "PX4_SIM_SPEED=2" {
		t.Fatalf("overrides must come last so they win: %v", env)
	}
}
