package launcher

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/AryaMajumder/px4-jmavsim/internal/readiness"
)

var (
	ErrInvalidRequest     = errors.New("launcher: invalid launch request")
	ErrExecutableNotFound = errors.New("launcher: executable not found")
	ErrWorkingDirInvalid  = errors.New("launcher: invalid working directory")
	ErrSpawnFailed        = errors.New("launcher: spawn failed")
)

// Status classifies how a launch ended.
type Status string

const (
	StatusReady       Status = "ready"
	StatusTimedOut    Status = "timed_out"
	StatusStartFailed Status = "start_failed"
	StatusCancelled   Status = "cancelled"
)

// Request describes one launch: what to run, where its output goes, and how
// readiness is observed. Command is passed to the OS verbatim; nothing is
// interpreted through a shell. Env entries overlay the inherited environment
// and win on conflict. Concurrent launches must not share a LogPath.
type Request struct {
	Command      []string
	Dir          string
	LogPath      string
	Env          map[string]string
	Ready        readiness.Check
	PollInterval time.Duration
	Timeout      time.Duration
}

// Outcome is the single result of a launch. Exactly one Status is set. PID is
// valid for every outcome after a successful spawn, including TimedOut and
// Cancelled: the process keeps running and the operator may want to find it.
// Err is set only for StatusStartFailed and wraps one of the sentinel errors.
type Outcome struct {
	Status  Status
	PID     int
	Elapsed time.Duration
	LogTail []string
	Err     error
}

// Launcher spawns processes and polls readiness. The zero collaborators are
// replaced by New; tests substitute their own.
type Launcher struct {
	starter starter
	clk     clock
}

func New() *Launcher {
	return &Launcher{starter: execStarter{}, clk: realClock{}}
}

// Launch runs the spawn-and-poll sequence for one request using a fresh
// Launcher.
func Launch(ctx context.Context, req Request) Outcome {
	return New().Launch(ctx, req)
}

// Launch validates the request, spawns the process detached with its output
// redirected to the truncated log file, then polls the readiness check once
// per PollInterval until it holds or Timeout elapses. Cancelling ctx returns
// promptly with StatusCancelled; the spawned process is left running in every
// case.
func (l *Launcher) Launch(ctx context.Context, req Request) Outcome {
	if err := req.validate(); err != nil {
		return Outcome{Status: StatusStartFailed, Err: err}
	}
	if err := checkWorkingDir(req.Dir); err != nil {
		return Outcome{Status: StatusStartFailed, Err: err}
	}
	if err := checkExecutable(req.Command[0], req.Dir); err != nil {
		return Outcome{Status: StatusStartFailed, Err: err}
	}

	pid, err := l.starter.start(req)
	if err != nil {
		return Outcome{Status: StatusStartFailed, Err: fmt.Errorf("%w: %v", ErrSpawnFailed, err)}
	}
	log.Info().
		Str("cmd", req.Command[0]).
		Int("pid", pid).
		Str("log", req.LogPath).
		Msg("process started")

	start := l.clk.now()
	for {
		if err := l.clk.sleep(ctx, req.PollInterval); err != nil {
			elapsed := l.clk.since(start)
			log.Info().Int("pid", pid).Dur("elapsed", elapsed).Msg("launch cancelled, process left running")
			return Outcome{Status: StatusCancelled, PID: pid, Elapsed: elapsed}
		}

		ready, err := req.Ready(ctx)
		if err != nil {
			log.Debug().Err(err).Msg("readiness check failed, treating as not ready")
			ready = false
		}
		elapsed := l.clk.since(start)
		if ready {
			log.Info().Int("pid", pid).Dur("elapsed", elapsed).Msg("process ready")
			return Outcome{Status: StatusReady, PID: pid, Elapsed: elapsed}
		}
		if elapsed >= req.Timeout {
			log.Warn().Int("pid", pid).Dur("elapsed", elapsed).Msg("readiness wait timed out, process left running")
			return Outcome{
				Status:  StatusTimedOut,
				PID:     pid,
				Elapsed: elapsed,
				LogTail: tailLines(req.LogPath, LogTailLines),
			}
		}
	}
}

func (r Request) validate() error {
	if len(r.Command) == 0 || strings.TrimSpace(r.Command[0]) == "" {
		return fmt.Errorf("%w: empty command", ErrInvalidRequest)
	}
	if strings.TrimSpace(r.LogPath) == "" {
		return fmt.Errorf("%w: empty log path", ErrInvalidRequest)
	}
	if r.Ready == nil {
		return fmt.Errorf("%w: nil readiness check", ErrInvalidRequest)
	}
	if r.PollInterval <= 0 {
		return fmt.Errorf("%w: poll interval must be positive", ErrInvalidRequest)
	}
	if r.Timeout < r.PollInterval {
		return fmt.Errorf("%w: timeout %s shorter than poll interval %s", ErrInvalidRequest, r.Timeout, r.PollInterval)
	}
	return nil
}

func checkWorkingDir(dir string) error {
	if strings.TrimSpace(dir) == "" {
		return nil
	}
	info, err := os.Stat(dir)
	if err != nil {
		return fmt.Errorf("%w: %s: %v", ErrWorkingDirInvalid, dir, err)
	}
	if !info.IsDir() {
		return fmt.Errorf("%w: %s is not a directory", ErrWorkingDirInvalid, dir)
	}
	return nil
}

// checkExecutable resolves name the way the spawn will: bare names through
// PATH, relative paths against the working directory.
func checkExecutable(name string, dir string) error {
	name = strings.TrimSpace(name)
	path := name
	if strings.ContainsRune(name, os.PathSeparator) && !filepath.IsAbs(name) && dir != "" {
		path = filepath.Join(dir, name)
	}
	if _, err := exec.LookPath(path); err != nil {
		return fmt.Errorf("%w: %s: %v", ErrExecutableNotFound, name, err)
	}
	return nil
}
