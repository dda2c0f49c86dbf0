package distro

import (
	"bytes"
	"fmt"

	"gopkg.in/ini.v1"
)

// wslConfPath is read by the subsystem when a distribution starts.
const wslConfPath = "/etc/wsl.conf"

// setDefaultUserConf returns existing wsl.conf content with [user] default
// set to user. Other sections and keys are preserved.
func setDefaultUserConf(existing []byte, user string) ([]byte, error) {
	cfg, err := ini.LoadSources(ini.LoadOptions{
		IgnoreInlineComment:     true,
		SkipUnrecognizableLines: true,
	}, existing)
	if err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", wslConfPath, err)
	}

	cfg.Section("user").Key("default").SetValue(user)

	var buf bytes.Buffer
	if _, err := cfg.WriteTo(&buf); err != nil {
		return nil, fmt.Errorf("failed to render %s: %w", wslConfPath, err)
	}
	return buf.Bytes(), nil
}
