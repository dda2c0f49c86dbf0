package settings

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/imamik/wsldev/internal/config"
	"github.com/imamik/wsldev/internal/provisioning"
	"github.com/imamik/wsldev/internal/util/retry"
)

// renameRetries bounds retries of the final replace.
const renameRetries = 4

// Edit is one key to set in a document.
type Edit struct {
	Path  string
	Value string

	// OnlyIfUnset leaves an existing value alone.
	OnlyIfUnset bool

	// Literal treats Path as one top-level key that contains dots, the way
	// VS Code names its settings.
	Literal bool
}

// Patcher applies edits to settings files, backing each one up first.
type Patcher struct {
	backupDir string
	terminal  string
	editor    string
	face      string

	// now stamps backup names. Swapped in tests.
	now func() time.Time

	// rename and sleep are swapped in tests.
	rename func(oldpath, newpath string) error
	sleep  retry.Sleeper
}

// NewPatcher creates a patcher for the terminal and editor files in cfg.
func NewPatcher(cfg *config.Config) *Patcher {
	return &Patcher{
		backupDir: cfg.BackupDir,
		terminal:  cfg.Terminal.Path,
		editor:    cfg.Editor.Path,
		face:      cfg.Font.Face,
		now:       time.Now,
		rename:    os.Rename,
		sleep:     retry.Sleep,
	}
}

// PatchTerminalConfig sets the default profile font of Windows Terminal.
func (p *Patcher) PatchTerminalConfig(ctx *provisioning.Context) bool {
	return p.patch(ctx, "Terminal", p.terminal, []Edit{
		{Path: "profiles.defaults.font.face", Value: p.face},
	})
}

// PatchEditorConfig sets the integrated terminal font of VS Code, and the
// editor font when the user has not chosen one.
func (p *Patcher) PatchEditorConfig(ctx *provisioning.Context) bool {
	return p.patch(ctx, "Editor", p.editor, []Edit{
		{Path: "terminal.integrated.fontFamily", Value: p.face, Literal: true},
		{Path: "editor.fontFamily", Value: p.face, OnlyIfUnset: true, Literal: true},
	})
}

func (p *Patcher) patch(ctx *provisioning.Context, label, path string, edits []Edit) bool {
	changed, err := p.Apply(ctx, label, path, edits)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		ctx.Observer.Warnf("[%s] %s not found, skipping", label, path)
		return false
	case err != nil:
		ctx.Observer.Warnf("[%s] %v", label, err)
		return false
	case !changed:
		ctx.Observer.Printf("[%s] %s already up to date", label, path)
	default:
		ctx.Observer.Successf("[%s] Font set to %s in %s", label, p.face, path)
	}
	return true
}

// Apply edits the file at path and reports whether it was rewritten. A
// missing file is never created; the returned error wraps fs.ErrNotExist.
func (p *Patcher) Apply(ctx context.Context, label, path string, edits []Edit) (bool, error) {
	if path == "" {
		return false, fmt.Errorf("settings path: %w", fs.ErrNotExist)
	}
	original, err := os.ReadFile(path)
	if err != nil {
		return false, err
	}

	doc, err := Parse(original)
	if err != nil {
		return false, fmt.Errorf("%s: %w", path, err)
	}

	changed := false
	for _, e := range edits {
		if e.OnlyIfUnset && doc.has(e) {
			continue
		}
		c, err := doc.apply(e)
		if err != nil {
			return false, fmt.Errorf("%s: %w", path, err)
		}
		changed = changed || c
	}
	if !changed {
		return false, nil
	}

	data, err := doc.Encode()
	if err != nil {
		return false, err
	}
	if _, err := p.backup(label, path, original); err != nil {
		return false, err
	}
	if err := p.writeFile(ctx, path, data); err != nil {
		return false, err
	}
	return true, nil
}

// backup copies original into the backup directory as
// <label>-<name>.<timestamp>.bak.
func (p *Patcher) backup(label, path string, original []byte) (string, error) {
	if err := os.MkdirAll(p.backupDir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create backup directory: %w", err)
	}
	name := fmt.Sprintf("%s-%s.%s.bak", label, filepath.Base(path), p.now().Format("20060102-150405"))
	dest := filepath.Join(p.backupDir, name)
	if err := os.WriteFile(dest, original, 0o600); err != nil {
		return "", fmt.Errorf("failed to back up %s: %w", path, err)
	}
	return dest, nil
}

// writeFile replaces path through a temporary file in the same directory.
// The application that owns the file may hold it open for a moment while it
// reloads, so the final rename is retried briefly.
func (p *Patcher) writeFile(ctx context.Context, path string, data []byte) error {
	mode := fs.FileMode(0o644)
	if info, err := os.Stat(path); err == nil {
		mode = info.Mode().Perm()
	}

	tmp, err := os.CreateTemp(filepath.Dir(path), filepath.Base(path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	defer func() { _ = os.Remove(tmp.Name()) }()

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	if err := os.Chmod(tmp.Name(), mode); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	err = retry.WithExponentialBackoff(ctx, func() error {
		return p.rename(tmp.Name(), path)
	}, retry.WithMaxRetries(renameRetries), retry.WithInitialDelay(100*time.Millisecond), retry.WithMaxDelay(time.Second), retry.WithSleeper(p.sleep))
	if err != nil {
		return fmt.Errorf("failed to replace %s: %w", path, err)
	}
	return nil
}
