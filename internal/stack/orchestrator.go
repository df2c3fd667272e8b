package stack

import (
	"context"
	"fmt"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/AryaMajumder/px4-jmavsim/internal/launcher"
	"github.com/AryaMajumder/px4-jmavsim/internal/observability"
	"github.com/AryaMajumder/px4-jmavsim/internal/tools"
)

// ServiceResult pairs a service name with its launch outcome.
type ServiceResult struct {
	Name    string
	Outcome launcher.Outcome
}

// ServiceStatus is one row of a readiness snapshot.
type ServiceStatus struct {
	Name    string
	Running bool
	Err     error
}

// OrchestratorConfig carries the orchestrator's collaborators; nil fields get
// the real implementations.
type OrchestratorConfig struct {
	Launch func(context.Context, launcher.Request) launcher.Outcome
	Runner tools.CommandRunner
}

// Orchestrator resolves service specs into launch requests and runs them.
type Orchestrator struct {
	launch func(context.Context, launcher.Request) launcher.Outcome
	runner tools.CommandRunner
}

func NewOrchestrator(cfg OrchestratorConfig) *Orchestrator {
	launch := cfg.Launch
	if launch == nil {
		launch = launcher.Launch
	}
	runner := cfg.Runner
	if runner == nil {
		runner = tools.ExecRunner{}
	}
	return &Orchestrator{launch: launch, runner: runner}
}

// Launch resolves and launches one service, then records the outcome metric.
// A returned error means the launch could not be attempted at all; launch
// failures after that point are reported through the outcome.
func (o *Orchestrator) Launch(ctx context.Context, spec ServiceSpec) (ServiceResult, error) {
	if err := spec.validate(); err != nil {
		return ServiceResult{Name: spec.Name}, err
	}
	req, err := o.buildRequest(spec)
	if err != nil {
		return ServiceResult{Name: spec.Name}, err
	}

	out := o.launch(ctx, req)
	observability.RecordLaunchOutcome(spec.Name, string(out.Status), out.Elapsed)
	return ServiceResult{Name: spec.Name, Outcome: out}, nil
}

// Up launches every service concurrently. Each launch polls independently;
// one service failing or timing out never cancels its siblings. The error
// summarizes services that did not reach ready.
func (o *Orchestrator) Up(ctx context.Context, specs ...ServiceSpec) ([]ServiceResult, error) {
	results := make([]ServiceResult, len(specs))
	errs := make([]error, len(specs))

	var g errgroup.Group
	for i, spec := range specs {
		i, spec := i, spec
		g.Go(func() error {
			res, err := o.Launch(ctx, spec)
			results[i] = res
			errs[i] = err
			return nil
		})
	}
	_ = g.Wait()

	var failures []string
	for i, spec := range specs {
		if errs[i] != nil {
			failures = append(failures, fmt.Sprintf("%s: %v", spec.Name, errs[i]))
			continue
		}
		if results[i].Outcome.Status != launcher.StatusReady {
			failures = append(failures, fmt.Sprintf("%s: %s", spec.Name, results[i].Outcome.Status))
		}
	}
	if len(failures) > 0 {
		return results, fmt.Errorf("stack: not all services became ready: %s", strings.Join(failures, "; "))
	}
	return results, nil
}

// Status evaluates each service's readiness check once, without launching
// anything.
func (o *Orchestrator) Status(ctx context.Context, specs ...ServiceSpec) []ServiceStatus {
	statuses := make([]ServiceStatus, 0, len(specs))
	for _, spec := range specs {
		if err := spec.Readiness.validate(); err != nil {
			statuses = append(statuses, ServiceStatus{Name: spec.Name, Err: err})
			continue
		}
		running, err := spec.Readiness.check()(ctx)
		statuses = append(statuses, ServiceStatus{Name: spec.Name, Running: running, Err: err})
	}
	return statuses
}

func (o *Orchestrator) buildRequest(spec ServiceSpec) (launcher.Request, error) {
	command, err := o.resolveCommand(spec)
	if err != nil {
		return launcher.Request{}, err
	}
	return launcher.Request{
		Command:      command,
		Dir:          spec.Dir,
		LogPath:      spec.LogPath,
		Env:          spec.Env,
		Ready:        spec.Readiness.check(),
		PollInterval: spec.PollInterval,
		Timeout:      spec.Timeout,
	}, nil
}

func (o *Orchestrator) resolveCommand(spec ServiceSpec) ([]string, error) {
	if len(spec.Command) > 0 {
		return spec.Command, nil
	}
	if strings.TrimSpace(spec.Jar) != "" {
		if err := checkJava(o.runner); err != nil {
			return nil, err
		}
		jar, err := locate([]string{spec.Jar})
		if err != nil {
			return nil, err
		}
		command := append([]string{"java"}, spec.JavaFlags...)
		command = append(command, "-jar", jar)
		command = append(command, spec.JarArgs...)
		return command, nil
	}
	bin, err := locate(spec.Candidates)
	if err != nil {
		return nil, err
	}
	return []string{bin}, nil
}
