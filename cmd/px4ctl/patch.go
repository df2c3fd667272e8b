package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/AryaMajumder/px4-jmavsim/internal/bootscript"
	"github.com/AryaMajumder/px4-jmavsim/internal/config"
)

func newPatchCmd() *cobra.Command {
	var revert bool
	cmd := &cobra.Command{
		Use:   "patch",
		Short: "Add the second telemetry endpoint to the autopilot boot script",
		RunE: func(cmd *cobra.Command, args []string) error {
			patch := config.TelemetryPatch(cfg.Patch)

			var (
				res bootscript.Result
				err error
			)
			if revert {
				res, err = patch.Revert()
			} else {
				res, err = patch.Apply()
			}
			if err != nil {
				term.Failure(fmt.Sprintf("patch %s: %v", patch.ScriptPath, err))
				return err
			}

			switch res.State {
			case bootscript.StateApplied:
				term.Success(fmt.Sprintf("telemetry endpoint (udp %d) added to %s", cfg.Patch.UDPPort, patch.ScriptPath))
			case bootscript.StateAlreadyApplied:
				term.Println("already patched, nothing to do")
			case bootscript.StateReverted:
				term.Success("telemetry endpoint removed from " + patch.ScriptPath)
			case bootscript.StateNotApplied:
				term.Println("not patched, nothing to revert")
			}
			if res.BackupPath != "" {
				term.KeyValue("backup", res.BackupPath)
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&revert, "revert", false, "Remove the patch instead of applying it")
	return cmd
}
