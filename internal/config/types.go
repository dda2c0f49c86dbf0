package config

// Config holds the full configuration for a provisioning run.
type Config struct {
	// WSLBinary is the subsystem entry point.
	WSLBinary string `yaml:"wsl_binary" default:"wsl.exe" validate:"required"`

	Distro DistroConfig `yaml:"distro"`

	// Username is the default Linux user to create. Lowercase letters and digits only.
	Username string `yaml:"username" validate:"omitempty,lowercase,alphanum,max=32"`

	// AdminGroup is the group granting sudo inside the image.
	AdminGroup string `yaml:"admin_group" default:"sudo" validate:"required,alphanum"`

	// LogFile receives every log line. Defaults to $XDG_STATE_HOME/wsldev/wsldev.log.
	LogFile string `yaml:"log_file"`

	// BackupDir receives copies of every file patched. Defaults to $XDG_STATE_HOME/wsldev/backups.
	BackupDir string `yaml:"backup_dir"`

	// CacheDir holds downloaded archives. Defaults to $XDG_CACHE_HOME/wsldev.
	CacheDir string `yaml:"cache_dir"`

	// MinWindowsBuild is the oldest Windows build supported by the subsystem commands used.
	MinWindowsBuild int `yaml:"min_windows_build" default:"19041" validate:"gte=0"`

	FirstBoot FirstBootConfig `yaml:"first_boot"`
	Font      FontConfig      `yaml:"font"`
	Prompt    PromptConfig    `yaml:"prompt"`
	Terminal  SettingsConfig  `yaml:"terminal"`
	Editor    SettingsConfig  `yaml:"editor"`
	Skip      SkipConfig      `yaml:"skip"`
}

// DistroConfig selects the distribution image.
type DistroConfig struct {
	Name string `yaml:"name" default:"Ubuntu" validate:"required,max=64"`

	// Launcher registers an installed but unregistered image ("<launcher> install --root").
	// Derived from Name when empty, e.g. Ubuntu-22.04 -> ubuntu2204.exe.
	Launcher string `yaml:"launcher"`

	// WebDownload passes --web-download to the install command.
	WebDownload bool `yaml:"web_download"`
}

// FirstBootConfig describes the payload run once inside a fresh image.
type FirstBootConfig struct {
	Packages []string `yaml:"packages" default:"[\"git\",\"curl\",\"wget\",\"unzip\",\"ca-certificates\",\"build-essential\"]" validate:"dive,required,printascii,excludesall=;&0x7C$'\"\\"`
}

// FontConfig describes the Nerd Font to install on the host.
type FontConfig struct {
	URL  string `yaml:"url" default:"https://github.com/ryanoasis/nerd-fonts/releases/latest/download/CascadiaCode.tar.xz" validate:"required,url"`
	Face string `yaml:"face" default:"CaskaydiaCove Nerd Font" validate:"required"`

	// InstallDir is the per-user font directory.
	InstallDir string `yaml:"install_dir"`
}

// PromptConfig describes the shell prompt installed inside the image.
type PromptConfig struct {
	InstallURL string `yaml:"install_url" default:"https://ohmyposh.dev/install.sh" validate:"required,url"`
	Theme      string `yaml:"theme" default:"jandedobbeleer" validate:"required,excludesall=;&0x7C$'\"\\/"`
}

// SettingsConfig points at a JSON-with-comments settings document.
type SettingsConfig struct {
	Path string `yaml:"path"`
}

// SkipConfig turns peripheral steps off.
type SkipConfig struct {
	Font     bool `yaml:"font"`
	Prompt   bool `yaml:"prompt"`
	Terminal bool `yaml:"terminal"`
	Editor   bool `yaml:"editor"`
}
