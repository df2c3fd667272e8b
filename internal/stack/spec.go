package stack

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/AryaMajumder/px4-jmavsim/internal/readiness"
)

var (
	ErrInvalidService   = errors.New("stack: invalid service spec")
	ErrNotLocated       = errors.New("stack: no candidate path matched")
	ErrJavaNotInstalled = errors.New("stack: java runtime not installed")
)

// ReadinessKind selects which observation proves a service is up.
type ReadinessKind string

const (
	ReadinessProcess ReadinessKind = "process"
	ReadinessPort    ReadinessKind = "port"
)

// ReadinessSpec names a readiness check in configuration form.
type ReadinessSpec struct {
	Kind    ReadinessKind
	Pattern string // process kind: command-line substring
	Proto   string // port kind: "udp" or "tcp"
	Port    int
}

func (r ReadinessSpec) validate() error {
	switch r.Kind {
	case ReadinessProcess:
		if strings.TrimSpace(r.Pattern) == "" {
			return fmt.Errorf("%w: process readiness requires a pattern", ErrInvalidService)
		}
	case ReadinessPort:
		proto := strings.ToLower(strings.TrimSpace(r.Proto))
		if proto != "udp" && proto != "tcp" {
			return fmt.Errorf("%w: port readiness proto must be udp or tcp, got %q", ErrInvalidService, r.Proto)
		}
		if r.Port <= 0 || r.Port > 65535 {
			return fmt.Errorf("%w: port readiness requires a valid port, got %d", ErrInvalidService, r.Port)
		}
	default:
		return fmt.Errorf("%w: unknown readiness kind %q", ErrInvalidService, r.Kind)
	}
	return nil
}

func (r ReadinessSpec) check() readiness.Check {
	switch r.Kind {
	case ReadinessProcess:
		return readiness.ProcessRunning(r.Pattern)
	case ReadinessPort:
		return readiness.PortBound(r.Proto, r.Port)
	default:
		return func(context.Context) (bool, error) {
			return false, fmt.Errorf("%w: unknown readiness kind %q", ErrInvalidService, r.Kind)
		}
	}
}

// ServiceSpec is one managed service. The executable comes from exactly one
// source, checked in order: an explicit Command, a Jar run under java, or the
// first match among Candidates path globs.
type ServiceSpec struct {
	Name         string
	Command      []string
	Candidates   []string
	Jar          string
	JavaFlags    []string
	JarArgs      []string
	Dir          string
	LogPath      string
	Env          map[string]string
	Readiness    ReadinessSpec
	PollInterval time.Duration
	Timeout      time.Duration
}

func (s ServiceSpec) validate() error {
	if strings.TrimSpace(s.Name) == "" {
		return fmt.Errorf("%w: missing name", ErrInvalidService)
	}
	if len(s.Command) == 0 && len(s.Candidates) == 0 && strings.TrimSpace(s.Jar) == "" {
		return fmt.Errorf("%w: %s needs a command, candidate paths, or a jar", ErrInvalidService, s.Name)
	}
	if strings.TrimSpace(s.LogPath) == "" {
		return fmt.Errorf("%w: %s missing log path", ErrInvalidService, s.Name)
	}
	if s.PollInterval <= 0 {
		return fmt.Errorf("%w: %s poll interval must be positive", ErrInvalidService, s.Name)
	}
	if s.Timeout < s.PollInterval {
		return fmt.Errorf("%w: %s timeout shorter than poll interval", ErrInvalidService, s.Name)
	}
	return s.Readiness.validate()
}
