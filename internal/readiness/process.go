package readiness

import (
	"context"
	"strings"

	"github.com/shirou/gopsutil/v3/process"
)

// ProcessRunning is true while some process command line contains pattern.
// Processes that vanish or deny inspection mid-scan are skipped.
func ProcessRunning(pattern string) Check {
	pattern = strings.TrimSpace(pattern)
	return func(ctx context.Context) (bool, error) {
		procs, err := process.ProcessesWithContext(ctx)
		if err != nil {
			return false, err
		}
		for _, p := range procs {
			cmdline, err := p.CmdlineWithContext(ctx)
			if err != nil {
				continue
			}
			if strings.Contains(cmdline, pattern) {
				return true, nil
			}
		}
		return false, nil
	}
}

// PIDAlive is true while the given pid exists in the process table.
func PIDAlive(pid int) Check {
	return func(ctx context.Context) (bool, error) {
		return process.PidExistsWithContext(ctx, int32(pid))
	}
}
