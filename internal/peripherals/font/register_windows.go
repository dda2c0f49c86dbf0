//go:build windows

package font

import (
	"fmt"
	"path/filepath"
	"strings"

	"golang.org/x/sys/windows/registry"
)

const fontsKey = `Software\Microsoft\Windows NT\CurrentVersion\Fonts`

// register adds a per-user font registration for path.
func register(path string) error {
	key, _, err := registry.CreateKey(registry.CURRENT_USER, fontsKey, registry.SET_VALUE)
	if err != nil {
		return fmt.Errorf("failed to open %s: %w", fontsKey, err)
	}
	defer func() { _ = key.Close() }()

	return key.SetStringValue(valueName(path), path)
}

func valueName(path string) string {
	base := filepath.Base(path)
	name := strings.TrimSuffix(base, filepath.Ext(base))
	if strings.EqualFold(filepath.Ext(base), ".otf") {
		return name + " (OpenType)"
	}
	return name + " (TrueType)"
}
