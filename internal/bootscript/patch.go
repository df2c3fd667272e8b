// Package bootscript applies marker-guarded configuration blocks to the PX4
// boot script (rcS). Every modification is preceded by a timestamped backup
// whose path is reported to the caller.
package bootscript

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"
)

var (
	ErrScriptNotFound = errors.New("bootscript: boot script not found")
	ErrInvalidPatch   = errors.New("bootscript: invalid patch")
	ErrBlockModified  = errors.New("bootscript: patched block was modified")
)

// State classifies the result of an Apply or Revert.
type State string

const (
	StateApplied        State = "applied"
	StateAlreadyApplied State = "already_applied"
	StateReverted       State = "reverted"
	StateNotApplied     State = "not_applied"
	StateFailed         State = "failed"
)

// Result reports what happened to the script. BackupPath is set whenever the
// file was modified; a no-op (AlreadyApplied, NotApplied) takes no backup.
type Result struct {
	State      State
	BackupPath string
}

// Patch is one idempotent block addition. Marker must occur inside Block;
// its presence in the script is the applied-ness test, so Apply can run any
// number of times.
type Patch struct {
	ScriptPath string
	Marker     string
	Block      string
	BackupDir  string
}

const (
	// TelemetryMarker guards the second MAVLink endpoint stanza.
	TelemetryMarker = "# px4ctl: second telemetry endpoint"
	telemetryEnd    = "# px4ctl: end telemetry endpoint"
)

// DefaultTelemetryPatch adds a second MAVLink UDP endpoint on udpPort to the
// boot script, leaving the primary ground-station endpoint untouched. To move
// the port of an applied patch, revert and re-apply.
func DefaultTelemetryPatch(scriptPath string, udpPort int) Patch {
	block := strings.Join([]string{
		TelemetryMarker,
		fmt.Sprintf("mavlink start -x -u %d -r 4000000 -f", udpPort),
		telemetryEnd,
	}, "\n")
	return Patch{ScriptPath: scriptPath, Marker: TelemetryMarker, Block: block}
}

// Apply appends the block unless the marker is already present. The script is
// rewritten atomically with its mode preserved.
func (p Patch) Apply() (Result, error) {
	if err := p.validate(); err != nil {
		return Result{State: StateFailed}, err
	}
	content, mode, err := p.readScript()
	if err != nil {
		return Result{State: StateFailed}, err
	}
	if strings.Contains(string(content), p.Marker) {
		return Result{State: StateAlreadyApplied}, nil
	}

	backupPath, err := p.writeBackup(content, mode)
	if err != nil {
		return Result{State: StateFailed}, err
	}

	updated := string(content)
	if updated != "" && !strings.HasSuffix(updated, "\n") {
		updated += "\n"
	}
	updated += "\n" + strings.TrimRight(p.Block, "\n") + "\n"

	if err := p.writeScript([]byte(updated), mode); err != nil {
		return Result{State: StateFailed, BackupPath: backupPath}, err
	}
	return Result{State: StateApplied, BackupPath: backupPath}, nil
}

// Revert removes a previously applied block. The block must still read
// exactly as written; a hand-edited block is refused so the edit is not
// silently destroyed.
func (p Patch) Revert() (Result, error) {
	if err := p.validate(); err != nil {
		return Result{State: StateFailed}, err
	}
	content, mode, err := p.readScript()
	if err != nil {
		return Result{State: StateFailed}, err
	}
	text := string(content)
	if !strings.Contains(text, p.Marker) {
		return Result{State: StateNotApplied}, nil
	}

	stripped, ok := removeBlock(text, p.Block)
	if !ok {
		return Result{State: StateFailed}, fmt.Errorf("%w: %s", ErrBlockModified, p.ScriptPath)
	}

	backupPath, err := p.writeBackup(content, mode)
	if err != nil {
		return Result{State: StateFailed}, err
	}
	if err := p.writeScript([]byte(stripped), mode); err != nil {
		return Result{State: StateFailed, BackupPath: backupPath}, err
	}
	return Result{State: StateReverted, BackupPath: backupPath}, nil
}

func (p Patch) validate() error {
	if strings.TrimSpace(p.ScriptPath) == "" {
		return fmt.Errorf("%w: missing script path", ErrInvalidPatch)
	}
	if strings.TrimSpace(p.Marker) == "" {
		return fmt.Errorf("%w: missing marker", ErrInvalidPatch)
	}
	if strings.TrimSpace(p.Block) == "" {
		return fmt.Errorf("%w: missing block", ErrInvalidPatch)
	}
	if !strings.Contains(p.Block, p.Marker) {
		return fmt.Errorf("%w: block must contain the marker", ErrInvalidPatch)
	}
	return nil
}

func (p Patch) readScript() ([]byte, os.FileMode, error) {
	info, err := os.Stat(p.ScriptPath)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, 0, fmt.Errorf("%w: %s", ErrScriptNotFound, p.ScriptPath)
		}
		return nil, 0, fmt.Errorf("bootscript: stat %s: %w", p.ScriptPath, err)
	}
	content, err := os.ReadFile(p.ScriptPath)
	if err != nil {
		return nil, 0, fmt.Errorf("bootscript: read %s: %w", p.ScriptPath, err)
	}
	return content, info.Mode().Perm(), nil
}

func (p Patch) writeBackup(content []byte, mode os.FileMode) (string, error) {
	dir := strings.TrimSpace(p.BackupDir)
	if dir == "" {
		dir = filepath.Dir(p.ScriptPath)
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("bootscript: create backup dir %s: %w", dir, err)
	}
	name := fmt.Sprintf(
		"%s.%s.bak",
		filepath.Base(p.ScriptPath),
		time.Now().Format("20060102T150405.000"),
	)
	backupPath := filepath.Join(dir, name)
	if err := os.WriteFile(backupPath, content, mode); err != nil {
		return "", fmt.Errorf("bootscript: write backup %s: %w", backupPath, err)
	}
	return backupPath, nil
}

func (p Patch) writeScript(content []byte, mode os.FileMode) error {
	dir := filepath.Dir(p.ScriptPath)
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(p.ScriptPath)+"-*")
	if err != nil {
		return fmt.Errorf("bootscript: create temp file: %w", err)
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(content); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("bootscript: write temp file: %w", err)
	}
	if err := tmp.Chmod(mode); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("bootscript: chmod temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("bootscript: close temp file: %w", err)
	}
	if err := os.Rename(tmpName, p.ScriptPath); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("bootscript: replace %s: %w", p.ScriptPath, err)
	}
	return nil
}

// removeBlock drops the first exact occurrence of the block's lines plus the
// blank separator Apply added before it.
func removeBlock(text string, block string) (string, bool) {
	blockLines := strings.Split(strings.TrimRight(block, "\n"), "\n")
	lines := strings.Split(text, "\n")

	for i := 0; i+len(blockLines) <= len(lines); i++ {
		if lines[i] != blockLines[0] {
			continue
		}
		match := true
		for j := range blockLines {
			if lines[i+j] != blockLines[j] {
				match = false
				break
			}
		}
		if !match {
			continue
		}

		head := append([]string{}, lines[:i]...)
		if len(head) > 0 && head[len(head)-1] == "" {
			head = head[:len(head)-1]
		}
		out := append(head, lines[i+len(blockLines):]...)
		return strings.Join(out, "\n"), true
	}
	return text, false
}
