package tools

import (
	"bytes"
	"errors"
	"os/exec"
)

// ExitCommandNotFound mirrors the shell convention for a missing binary.
const ExitCommandNotFound = 127

// CommandRunner abstracts short host-command execution for availability probes.
type CommandRunner interface {
	Run(name string, args ...string) ([]byte, []byte, int, error)
}

// ExecRunner executes commands on the local host.
type ExecRunner struct{}

func (r ExecRunner) Run(name string, args ...string) ([]byte, []byte, int, error) {
	cmd := exec.Command(name, args...)
	var stdout bytes.Buffer
	var stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()
	if err == nil {
		return stdout.Bytes(), stderr.Bytes(), 0, nil
	}

	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		return stdout.Bytes(), stderr.Bytes(), exitErr.ExitCode(), err
	}

	exitCode := 1
	var execErr *exec.Error
	if errors.As(err, &execErr) {
		exitCode = ExitCommandNotFound
	}
	return stdout.Bytes(), stderr.Bytes(), exitCode, err
}
