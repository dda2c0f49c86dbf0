package distro

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/imamik/wsldev/internal/platform/wsl"
	"github.com/imamik/wsldev/internal/provisioning"
)

// useradd exit status for a name already in use.
const useraddExists = 9

func (p *Provisioner) userExists(ctx *provisioning.Context, distro, user string) (bool, error) {
	res, err := p.wsl.Exec(ctx, distro, "root", nil, "id", "-u", user)
	if err != nil {
		return false, fmt.Errorf("failed to check for user %s: %w", user, err)
	}
	return res.Success(), nil
}

// createUser creates user with a home directory, bash, and the admin group,
// then sets the password through chpasswd on stdin.
func (p *Provisioner) createUser(ctx *provisioning.Context, distro string, req *ProvisioningRequest) error {
	user := req.Username
	group := ctx.Config.AdminGroup
	ctx.Observer.Printf("[Distro] Creating user %s in %s (group %s)", user, distro, group)

	res, err := p.wsl.Exec(ctx, distro, "root", nil, "useradd", "-m", "-s", "/bin/bash", "-G", group, user)
	if err != nil {
		return fmt.Errorf("failed to create user %s: %w", user, err)
	}
	switch {
	case res.Success():
	case res.ExitCode == useraddExists:
		ctx.Observer.Warnf("[Distro] User %s already exists in %s, resetting its password", user, distro)
	default:
		return fmt.Errorf("failed to create user %s: %s", user, wsl.Translate(res.ExitCode, res.Output()))
	}

	err = req.Password.Use(func(pw []byte) error {
		line := make([]byte, 0, len(user)+len(pw)+2)
		defer func() { clear(line) }()
		line = append(line, user...)
		line = append(line, ':')
		line = append(line, pw...)
		line = append(line, '\n')

		res, err := p.wsl.Exec(ctx, distro, "root", bytes.NewReader(line), "chpasswd")
		if err != nil {
			return err
		}
		if !res.Success() {
			return fmt.Errorf("%s", wsl.Translate(res.ExitCode, res.Output()))
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to set password for %s: %w", user, err)
	}
	return nil
}

// bindDefaultUser makes user the login user of distro. The native subcommand
// is preferred; older subsystems get a wsl.conf directive and a terminate so
// the next start picks it up. Failure only warns.
func (p *Provisioner) bindDefaultUser(ctx *provisioning.Context, distro, user string, status wsl.SubsystemStatus) bool {
	if status.SupportsSetDefaultUser() {
		err := p.wsl.SetDefaultUser(ctx, distro, user)
		if err == nil {
			ctx.Observer.Printf("[Distro] Default user of %s set to %s", distro, user)
			return true
		}
		ctx.Observer.Warnf("[Distro] Native default-user binding failed, falling back to %s: %v", wslConfPath, err)
	}

	if err := p.writeWSLConf(ctx, distro, user); err != nil {
		ctx.Observer.Warnf("[Distro] Could not bind %s as default user of %s: %v", user, distro, err)
		return false
	}
	if err := p.wsl.Terminate(ctx, distro); err != nil {
		ctx.Observer.Warnf("[Distro] %s was not restarted, the default user applies after its next shutdown: %v", distro, err)
	}
	ctx.Observer.Printf("[Distro] Default user of %s set to %s in %s", distro, user, wslConfPath)
	return true
}

func (p *Provisioner) writeWSLConf(ctx *provisioning.Context, distro, user string) error {
	// A missing file reads as empty.
	res, err := p.wsl.Exec(ctx, distro, "root", nil, "cat", wslConfPath)
	if err != nil {
		return err
	}
	var existing []byte
	if res.Success() {
		existing = []byte(res.Stdout)
	}

	content, err := setDefaultUserConf(existing, user)
	if err != nil {
		return err
	}

	res, err = p.wsl.Exec(ctx, distro, "root", nil, wsl.WriteFileCommand(wslConfPath, content)...)
	if err != nil {
		return err
	}
	if !res.Success() {
		return fmt.Errorf("writing %s: %s", wslConfPath, wsl.Translate(res.ExitCode, res.Output()))
	}
	return nil
}

// firstBoot runs the first-boot payload as the new user. The password is
// passed on stdin to prime sudo. Failure only warns.
func (p *Provisioner) firstBoot(ctx *provisioning.Context, distro string, req *ProvisioningRequest) bool {
	script, err := firstBootScript(distro, ctx.Config.FirstBoot.Packages)
	if err != nil {
		ctx.Observer.Warnf("[Distro] First-boot payload skipped: %v", err)
		return false
	}

	ctx.Observer.Printf("[Distro] Running first-boot payload in %s", distro)
	var res wsl.Result
	err = req.Password.Use(func(pw []byte) error {
		input := make([]byte, 0, len(pw)+1)
		defer func() { clear(input) }()
		input = append(input, pw...)
		input = append(input, '\n')

		var runErr error
		res, runErr = p.wsl.Exec(ctx, distro, req.Username, bytes.NewReader(input), wsl.PayloadCommand(script)...)
		return runErr
	})
	if err != nil {
		ctx.Observer.Warnf("[Distro] First-boot payload could not run: %v", err)
		return false
	}
	if !res.Success() {
		for _, failure := range firstBootFailures(res.ExitCode) {
			ctx.Observer.Warnf("[Distro] First-boot payload: %s", failure)
		}
		return false
	}

	for _, line := range strings.Split(strings.TrimSpace(res.Stdout), "\n") {
		if line != "" {
			ctx.Observer.Printf("[Distro]   %s", line)
		}
	}
	return true
}

func trimLine(s string) string {
	return strings.TrimSpace(strings.SplitN(strings.TrimSpace(s), "\n", 2)[0])
}
