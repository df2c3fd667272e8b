package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/AryaMajumder/px4-jmavsim/internal/bootscript"
	"github.com/AryaMajumder/px4-jmavsim/internal/stack"
)

// TelemetryPatch builds the boot-script patch for the configured script and
// port.
func TelemetryPatch(pc PatchConfig) bootscript.Patch {
	patch := bootscript.DefaultTelemetryPatch(pc.ScriptPath, pc.UDPPort)
	patch.BackupDir = pc.BackupDir
	return patch
}

func parseReadinessKind(raw string) (stack.ReadinessKind, error) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "process":
		return stack.ReadinessProcess, nil
	case "port":
		return stack.ReadinessPort, nil
	default:
		return "", fmt.Errorf("unknown readiness kind %q (expected process or port)", raw)
	}
}

func parseDuration(key, raw string) (time.Duration, error) {
	d, err := time.ParseDuration(strings.TrimSpace(raw))
	if err != nil {
		return 0, fmt.Errorf("%s: bad duration %q", key, raw)
	}
	if d <= 0 {
		return 0, fmt.Errorf("%s: duration must be positive, got %q", key, raw)
	}
	return d, nil
}
