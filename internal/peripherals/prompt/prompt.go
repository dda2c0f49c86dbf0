// Package prompt installs oh-my-posh inside a distribution and enables it for
// the user's bash sessions.
package prompt

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"text/template"

	"github.com/imamik/wsldev/internal/config"
	"github.com/imamik/wsldev/internal/platform/wsl"
	"github.com/imamik/wsldev/internal/provisioning"
)

// marker tags the init block appended to ~/.bashrc.
const marker = "# wsldev-prompt"

// Executor runs commands inside a distribution.
type Executor interface {
	Exec(ctx context.Context, distro, user string, stdin io.Reader, argv ...string) (wsl.Result, error)
}

var installTemplate = template.Must(template.New("prompt").Parse(`set -eu
BIN="$HOME/.local/bin"
mkdir -p "$BIN"
if [ ! -x "$BIN/oh-my-posh" ]; then
  curl -fsSL {{.InstallURL}} | bash -s -- -d "$BIN"
fi
if ! grep -qF {{.Marker}} "$HOME/.bashrc" 2>/dev/null; then
  cat >> "$HOME/.bashrc" <<'WSLDEV_EOF'
{{.MarkerLine}}
if [ -x "$HOME/.local/bin/oh-my-posh" ]; then
  eval "$("$HOME/.local/bin/oh-my-posh" init bash --config "$HOME/.cache/oh-my-posh/themes/{{.Theme}}.omp.json")"
fi
WSLDEV_EOF
fi
"$BIN/oh-my-posh" version
`))

type templateData struct {
	InstallURL string
	Marker     string
	MarkerLine string
	Theme      string
}

// Script renders the install payload for cfg.
func Script(cfg config.PromptConfig) (string, error) {
	var buf bytes.Buffer
	err := installTemplate.Execute(&buf, templateData{
		InstallURL: wsl.ShellQuote(cfg.InstallURL),
		Marker:     wsl.ShellQuote(marker),
		MarkerLine: marker,
		Theme:      cfg.Theme,
	})
	if err != nil {
		return "", fmt.Errorf("failed to render prompt payload: %w", err)
	}
	return buf.String(), nil
}

// Installer installs the prompt for one user.
type Installer struct {
	exec Executor
	cfg  config.PromptConfig
}

// NewInstaller creates a prompt installer.
func NewInstaller(exec Executor, cfg config.PromptConfig) *Installer {
	return &Installer{exec: exec, cfg: cfg}
}

// Install runs the payload as user in distro. Re-running is harmless: the
// binary and the bashrc block are only added once.
func (i *Installer) Install(ctx *provisioning.Context, distro, user string) bool {
	ctx.Observer.Printf("[Prompt] Installing oh-my-posh for %s in %s", user, distro)

	script, err := Script(i.cfg)
	if err != nil {
		ctx.Observer.Warnf("[Prompt] %v", err)
		return false
	}

	res, err := i.exec.Exec(ctx, distro, user, nil, wsl.PayloadCommand(script)...)
	if err != nil {
		ctx.Observer.Warnf("[Prompt] Failed to run installer: %v", err)
		return false
	}
	if !res.Success() {
		ctx.Observer.Warnf("[Prompt] Installer exited with code %d: %s", res.ExitCode, lastLine(res.Output()))
		return false
	}

	ctx.Observer.Successf("[Prompt] oh-my-posh %s enabled for %s", lastLine(res.Stdout), user)
	return true
}

func lastLine(s string) string {
	lines := bytes.Split(bytes.TrimSpace([]byte(s)), []byte("\n"))
	return string(bytes.TrimSpace(lines[len(lines)-1]))
}
