package launcher

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"sort"
	"syscall"
)

// starter performs the actual spawn. Split out so the poll loop can be tested
// without creating processes.
type starter interface {
	start(req Request) (int, error)
}

type execStarter struct{}

func (execStarter) start(req Request) (int, error) {
	if dir := filepath.Dir(req.LogPath); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return 0, fmt.Errorf("create log directory %s: %v", dir, err)
		}
	}
	logFile, err := os.OpenFile(req.LogPath, os.O_CREATE|os.O_WRONLY|os.O_TRUNC|os.O_APPEND, 0o644)
	if err != nil {
		return 0, fmt.Errorf("open log %s: %v", req.LogPath, err)
	}

	cmd := exec.Command(req.Command[0], req.Command[1:]...)
	cmd.Dir = req.Dir
	cmd.Stdout = logFile
	cmd.Stderr = logFile
	cmd.Env = overlayEnv(os.Environ(), req.Env)
	// Own session: a terminal interrupt aimed at the launcher must never
	// reach the child.
	cmd.SysProcAttr = &syscall.SysProcAttr{Setsid: true}

	err = cmd.Start()
	logFile.Close()
	if err != nil {
		return 0, err
	}

	// Reap the child if it exits before we do. Wait observes; it never
	// influences the child's lifetime.
	go func() { _ = cmd.Wait() }()

	return cmd.Process.Pid, nil
}

// overlayEnv appends overrides after the inherited environment; os/exec keeps
// the last duplicate, so overrides win.
func overlayEnv(base []string, overrides map[string]string) []string {
	if len(overrides) == 0 {
		return base
	}
	keys := make([]string, 0, len(overrides))
	for k := range overrides {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	env := make([]string, 0, len(base)+len(overrides))
	env = append(env, base...)
	for _, k := range keys {
		env = append(env, k+"="+overrides[k])
	}
	return env
}
