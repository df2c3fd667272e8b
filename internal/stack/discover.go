package stack

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/AryaMajumder/px4-jmavsim/internal/tools"
)

// locate returns the first existing path among the ordered candidate globs.
// Entries without glob metacharacters are plain existence checks.
func locate(candidates []string) (string, error) {
	for _, raw := range candidates {
		pattern := strings.TrimSpace(raw)
		if pattern == "" {
			continue
		}
		if !strings.ContainsAny(pattern, "*?[") {
			if _, err := os.Stat(pattern); err == nil {
				return pattern, nil
			}
			continue
		}
		matches, err := filepath.Glob(pattern)
		if err != nil {
			return "", fmt.Errorf("%w: bad pattern %q: %v", ErrInvalidService, raw, err)
		}
		sort.Strings(matches)
		for _, match := range matches {
			if _, err := os.Stat(match); err == nil {
				return match, nil
			}
		}
	}
	return "", fmt.Errorf("%w: %q", ErrNotLocated, candidates)
}

// checkJava probes for a java runtime before a jar launch is attempted.
func checkJava(runner tools.CommandRunner) error {
	_, stderr, exitCode, err := runner.Run("java", "-version")
	if err == nil {
		return nil
	}
	if exitCode == tools.ExitCommandNotFound {
		return ErrJavaNotInstalled
	}
	return fmt.Errorf(
		"stack: java probe failed exit=%d stderr=%q: %w",
		exitCode,
		strings.TrimSpace(string(stderr)),
		err,
	)
}
