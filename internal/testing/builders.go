package testing

import (
	"slices"

	"github.com/imamik/wsldev/internal/config"
)

// ConfigBuilder provides a fluent interface for constructing test configs.
// Each method returns a new builder (immutable) for chaining.
type ConfigBuilder struct {
	cfg config.Config
}

// NewConfigBuilder creates a new ConfigBuilder with sensible defaults. Paths
// point nowhere; tests that touch the filesystem set them explicitly.
func NewConfigBuilder() *ConfigBuilder {
	return &ConfigBuilder{
		cfg: config.Config{
			WSLBinary:       "wsl.exe",
			Distro:          config.DistroConfig{Name: "Ubuntu"},
			AdminGroup:      "sudo",
			MinWindowsBuild: 19041,
			FirstBoot: config.FirstBootConfig{
				Packages: []string{"git", "curl"},
			},
			Font: config.FontConfig{
				URL:  "https://example.com/CascadiaCode.tar.xz",
				Face: "CaskaydiaCove Nerd Font",
			},
			Prompt: config.PromptConfig{
				InstallURL: "https://ohmyposh.dev/install.sh",
				Theme:      "jandedobbeleer",
			},
		},
	}
}

// WithDistro sets the distribution name.
func (b *ConfigBuilder) WithDistro(name string) *ConfigBuilder {
	newBuilder := b.clone()
	newBuilder.cfg.Distro.Name = name
	return newBuilder
}

// WithUsername sets the default user.
func (b *ConfigBuilder) WithUsername(name string) *ConfigBuilder {
	newBuilder := b.clone()
	newBuilder.cfg.Username = name
	return newBuilder
}

// WithWebDownload toggles --web-download on install.
func (b *ConfigBuilder) WithWebDownload(enabled bool) *ConfigBuilder {
	newBuilder := b.clone()
	newBuilder.cfg.Distro.WebDownload = enabled
	return newBuilder
}

// WithPackages sets the first-boot package list.
func (b *ConfigBuilder) WithPackages(pkgs ...string) *ConfigBuilder {
	newBuilder := b.clone()
	newBuilder.cfg.FirstBoot.Packages = pkgs
	return newBuilder
}

// WithDirs sets the backup, cache, and font directories.
func (b *ConfigBuilder) WithDirs(backup, cache, fonts string) *ConfigBuilder {
	newBuilder := b.clone()
	newBuilder.cfg.BackupDir = backup
	newBuilder.cfg.CacheDir = cache
	newBuilder.cfg.Font.InstallDir = fonts
	return newBuilder
}

// Build returns a copy of the configured Config.
func (b *ConfigBuilder) Build() *config.Config {
	cfg := b.clone().cfg
	return &cfg
}

func (b *ConfigBuilder) clone() *ConfigBuilder {
	c := b.cfg
	c.FirstBoot.Packages = slices.Clone(b.cfg.FirstBoot.Packages)
	return &ConfigBuilder{cfg: c}
}

// MinimalConfig returns a minimal valid configuration for testing.
func MinimalConfig() *config.Config {
	return NewConfigBuilder().Build()
}
