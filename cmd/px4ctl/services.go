package main

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"github.com/AryaMajumder/px4-jmavsim/internal/launcher"
	"github.com/AryaMajumder/px4-jmavsim/internal/stack"
)

func newGCSCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "gcs",
		Short: "Launch the ground control station and wait until it is up",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runService(cmd.Context(), cfg.GCS)
		},
	}
}

func newSITLCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "sitl",
		Short: "Launch the flight simulator and wait until it is up",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runService(cmd.Context(), cfg.SITL)
		},
	}
}

func newUpCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "up",
		Short: "Launch the simulator and the ground station together",
		RunE: func(cmd *cobra.Command, args []string) error {
			orch := stack.NewOrchestrator(stack.OrchestratorConfig{})
			specs := []stack.ServiceSpec{cfg.SITL, cfg.GCS}
			results, err := orch.Up(cmd.Context(), specs...)
			for i, res := range results {
				if res.Outcome.Status == "" {
					// launch was never attempted; the aggregate error names it
					continue
				}
				printOutcome(specs[i], res.Outcome)
			}
			return err
		},
	}
}

func newStatusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Report which parts of the stack look up right now",
		RunE: func(cmd *cobra.Command, args []string) error {
			orch := stack.NewOrchestrator(stack.OrchestratorConfig{})
			bridgeSpec := stack.ServiceSpec{
				Name: "bridge-endpoint",
				Readiness: stack.ReadinessSpec{
					Kind:  stack.ReadinessPort,
					Proto: "udp",
					Port:  cfg.Patch.UDPPort,
				},
			}
			for _, st := range orch.Status(cmd.Context(), cfg.SITL, cfg.GCS, bridgeSpec) {
				switch {
				case st.Err != nil:
					term.Warn(fmt.Sprintf("%s: check failed: %v", st.Name, st.Err))
				case st.Running:
					term.Success(st.Name + " is up")
				default:
					term.Failure(st.Name + " is not up")
				}
			}
			return nil
		},
	}
}

// runService launches one service and prints the outcome. A non-ready
// outcome maps to a non-zero exit through the returned error.
func runService(ctx context.Context, spec stack.ServiceSpec) error {
	term.Subtle(fmt.Sprintf("starting %s (timeout %s, poll %s)", spec.Name, spec.Timeout, spec.PollInterval))
	orch := stack.NewOrchestrator(stack.OrchestratorConfig{})
	res, err := orch.Launch(ctx, spec)
	if err != nil {
		term.Failure(fmt.Sprintf("%s could not be launched: %v", spec.Name, err))
		return err
	}
	printOutcome(spec, res.Outcome)
	if res.Outcome.Status != launcher.StatusReady {
		return fmt.Errorf("%s: %s after %s", spec.Name, res.Outcome.Status, res.Outcome.Elapsed.Round(time.Millisecond))
	}
	return nil
}

func printOutcome(spec stack.ServiceSpec, out launcher.Outcome) {
	elapsed := out.Elapsed.Round(time.Millisecond).String()
	switch out.Status {
	case launcher.StatusReady:
		term.Success(fmt.Sprintf("%s ready after %s", spec.Name, elapsed))
		term.KeyValue("pid", strconv.Itoa(out.PID))
		term.KeyValue("log", spec.LogPath)
	case launcher.StatusTimedOut:
		term.Failure(fmt.Sprintf("%s not ready after %s; process %d is still running", spec.Name, elapsed, out.PID))
		term.KeyValue("log", spec.LogPath)
		if len(out.LogTail) > 0 {
			term.Subtle("last log lines:")
			for _, line := range out.LogTail {
				term.Println("  " + line)
			}
		}
	case launcher.StatusCancelled:
		term.Warn(fmt.Sprintf("%s wait cancelled after %s; process %d was left running", spec.Name, elapsed, out.PID))
		term.KeyValue("log", spec.LogPath)
	case launcher.StatusStartFailed:
		term.Failure(fmt.Sprintf("%s failed to start: %v", spec.Name, out.Err))
	}
}
