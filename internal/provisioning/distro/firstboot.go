package distro

import (
	"bytes"
	"fmt"
	"text/template"

	"github.com/imamik/wsldev/internal/platform/wsl"
)

// firstBootTemplate runs as the new user. The first stdin line is the
// password; it primes sudo once and is unset before anything else runs.
var firstBootTemplate = template.Must(template.New("first-boot").Parse(`set -u
IFS= read -r WSLDEV_PW || true
printf '%s\n' "$WSLDEV_PW" | sudo -S -p '' -v
WSLDEV_SUDO=$?
unset WSLDEV_PW
if [ "$WSLDEV_SUDO" -ne 0 ]; then
  echo "wsldev: sudo authentication failed" >&2
  exit 10
fi

export DEBIAN_FRONTEND=noninteractive
rc=0
{{- if .Packages}}
if command -v apt-get >/dev/null 2>&1; then
  sudo -n apt-get update -q || rc=$((rc | 1))
  sudo -n apt-get install -y -q {{.Packages}} || rc=$((rc | 2))
elif command -v dnf >/dev/null 2>&1; then
  sudo -n dnf install -y {{.Packages}} || rc=$((rc | 2))
elif command -v zypper >/dev/null 2>&1; then
  sudo -n zypper --non-interactive install {{.Packages}} || rc=$((rc | 2))
else
  echo "wsldev: no supported package manager found" >&2
  rc=$((rc | 4))
fi
{{- end}}

if ! grep -q 'wsldev-welcome' "$HOME/.bashrc" 2>/dev/null; then
  cat >> "$HOME/.bashrc" <<'WSLDEV_EOF'
# wsldev-welcome
if [ -z "${WSLDEV_WELCOMED:-}" ]; then
  export WSLDEV_WELCOMED=1
  echo {{.Greeting}}
fi
WSLDEV_EOF
fi

echo "user:   $(id -un)"
echo "home:   $HOME"
echo "kernel: $(uname -r)"
echo "distro: $(. /etc/os-release 2>/dev/null && echo "$PRETTY_NAME")"
sudo -k
if [ "$rc" -ne 0 ]; then
  exit $((16 | rc))
fi
`))

type firstBootData struct {
	Greeting string
	Packages string
}

// firstBootScript renders the payload for distro. Package names come from
// validated configuration and are shell-quoted regardless.
func firstBootScript(distro string, packages []string) (string, error) {
	var quoted bytes.Buffer
	for i, p := range packages {
		if i > 0 {
			quoted.WriteByte(' ')
		}
		quoted.WriteString(wsl.ShellQuote(p))
	}

	var buf bytes.Buffer
	if err := firstBootTemplate.Execute(&buf, firstBootData{
		Greeting: wsl.ShellQuote(fmt.Sprintf("Welcome to %s, provisioned by wsldev.", distro)),
		Packages: quoted.String(),
	}); err != nil {
		return "", fmt.Errorf("failed to render first-boot payload: %w", err)
	}
	return buf.String(), nil
}

// Exit codes of the first-boot payload. Step failures set one bit each
// above firstBootStepFailed so that every failed step is reported.
const (
	firstBootSudoFailed = 10
	firstBootStepFailed = 16

	stepIndexRefresh     = 1
	stepInstall          = 2
	stepNoPackageManager = 4
	stepMask             = stepIndexRefresh | stepInstall | stepNoPackageManager
)

var stepFailures = []struct {
	bit  int
	what string
}{
	{stepIndexRefresh, "package index refresh failed"},
	{stepInstall, "package installation failed"},
	{stepNoPackageManager, "no supported package manager found"},
}

// firstBootFailures describes the payload's exit code, one entry per failed step.
func firstBootFailures(code int) []string {
	if code == firstBootSudoFailed {
		return []string{"sudo authentication failed"}
	}
	if code&^stepMask != firstBootStepFailed || code&stepMask == 0 {
		return []string{fmt.Sprintf("exited with code %d", code)}
	}
	var failures []string
	for _, s := range stepFailures {
		if code&s.bit != 0 {
			failures = append(failures, s.what)
		}
	}
	return failures
}
