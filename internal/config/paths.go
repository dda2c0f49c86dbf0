package config

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"

	"github.com/adrg/xdg"
)

const appName = "wsldev"

// Windows Terminal (Store build) keeps its settings under the package's LocalState.
const terminalPackage = "Microsoft.WindowsTerminal_8wekyb3d8bbwe"

// resolvePaths fills every empty path with its per-user default.
func resolvePaths(cfg *Config) error {
	var err error

	if cfg.LogFile == "" {
		cfg.LogFile, err = xdg.StateFile(filepath.Join(appName, appName+".log"))
		if err != nil {
			return fmt.Errorf("failed to resolve log file path: %w", err)
		}
	}
	if cfg.BackupDir == "" {
		cfg.BackupDir = filepath.Join(xdg.StateHome, appName, "backups")
	}
	if cfg.CacheDir == "" {
		cfg.CacheDir = filepath.Join(xdg.CacheHome, appName)
	}
	if cfg.Font.InstallDir == "" {
		cfg.Font.InstallDir = defaultFontDir()
	}
	if cfg.Terminal.Path == "" {
		cfg.Terminal.Path = filepath.Join(xdg.DataHome, "Packages", terminalPackage, "LocalState", "settings.json")
	}
	if cfg.Editor.Path == "" {
		cfg.Editor.Path = filepath.Join(roamingConfigHome(), "Code", "User", "settings.json")
	}

	return nil
}

// defaultFontDir is the per-user font directory that needs no elevation.
func defaultFontDir() string {
	if runtime.GOOS == "windows" {
		return filepath.Join(xdg.DataHome, "Microsoft", "Windows", "Fonts")
	}
	return filepath.Join(xdg.DataHome, "fonts")
}

// roamingConfigHome is %APPDATA% on Windows and the XDG config home elsewhere.
func roamingConfigHome() string {
	if appData := os.Getenv("APPDATA"); appData != "" && runtime.GOOS == "windows" {
		return appData
	}
	return xdg.ConfigHome
}

// LauncherName derives the distribution launcher executable from a distribution
// name, e.g. "Ubuntu-22.04" -> "ubuntu2204.exe".
func LauncherName(distro string) string {
	out := make([]rune, 0, len(distro)+4)
	for _, r := range distro {
		switch {
		case r >= 'A' && r <= 'Z':
			out = append(out, r+('a'-'A'))
		case r == '-' || r == '.' || r == '_' || r == ' ':
		default:
			out = append(out, r)
		}
	}
	return string(out) + ".exe"
}

// LauncherOrDefault returns the configured launcher or the derived one.
func (d DistroConfig) LauncherOrDefault() string {
	if d.Launcher != "" {
		return d.Launcher
	}
	return LauncherName(d.Name)
}
