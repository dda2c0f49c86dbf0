package font

import (
	"context"
	"fmt"
	"io"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/imamik/wsldev/internal/config"
	"github.com/imamik/wsldev/internal/provisioning"
)

// Downloader fetches a URL into a local file.
type Downloader interface {
	Download(ctx context.Context, url, dest string) error
}

// Installer installs the configured Nerd Font.
type Installer struct {
	cfg      config.FontConfig
	cacheDir string
	client   Downloader

	// register makes an installed file known to the host. Swapped in tests.
	register func(path string) error
}

// NewInstaller creates an installer for cfg.Font. A nil client uses
// NewClient with the run's download timeout.
func NewInstaller(cfg *config.Config, client Downloader) *Installer {
	return &Installer{
		cfg:      cfg.Font,
		cacheDir: cfg.CacheDir,
		client:   client,
		register: register,
	}
}

// Install downloads, extracts, copies and registers the font files. Files
// already present in the install directory are skipped. Failures are logged
// as warnings and reported through the return value.
func (i *Installer) Install(ctx *provisioning.Context) bool {
	ctx.Observer.Printf("[Font] Installing %s", i.cfg.Face)

	archive, err := i.fetch(ctx)
	if err != nil {
		ctx.Observer.Warnf("[Font] %v", err)
		return false
	}

	staging := filepath.Join(i.cacheDir, "fonts", archiveStem(filepath.Base(archive)))
	files, err := Extract(archive, staging)
	if err != nil {
		ctx.Observer.Warnf("[Font] %v", err)
		return false
	}
	if len(files) == 0 {
		ctx.Observer.Warnf("[Font] %s contains no font files", filepath.Base(archive))
		return false
	}

	if err := os.MkdirAll(i.cfg.InstallDir, 0o755); err != nil {
		ctx.Observer.Warnf("[Font] Failed to create %s: %v", i.cfg.InstallDir, err)
		return false
	}

	var installed, skipped, failed int
	for _, src := range files {
		dest := filepath.Join(i.cfg.InstallDir, filepath.Base(src))
		if _, err := os.Stat(dest); err == nil {
			skipped++
			continue
		}
		if err := copyFile(src, dest); err != nil {
			ctx.Observer.Warnf("[Font] %v", err)
			failed++
			continue
		}
		if err := i.register(dest); err != nil {
			ctx.Observer.Warnf("[Font] Failed to register %s: %v", filepath.Base(dest), err)
			failed++
			continue
		}
		installed++
	}

	ctx.Observer.Printf("[Font] %d installed, %d already present, %d failed", installed, skipped, failed)
	if failed > 0 {
		return false
	}
	ctx.Observer.Successf("[Font] %s is available", i.cfg.Face)
	return true
}

// downloader returns the configured client or one bounded by ctx.Timeouts.
func (i *Installer) downloader(ctx *provisioning.Context) Downloader {
	if i.client != nil {
		return i.client
	}
	var timeout time.Duration
	if ctx.Timeouts != nil {
		timeout = ctx.Timeouts.Download
	}
	return NewClient(timeout)
}

// fetch returns the cached archive, downloading it first when absent.
func (i *Installer) fetch(ctx *provisioning.Context) (string, error) {
	u, err := url.Parse(i.cfg.URL)
	if err != nil {
		return "", fmt.Errorf("invalid font URL: %w", err)
	}
	name := path.Base(u.Path)
	if name == "" || name == "/" || name == "." {
		return "", fmt.Errorf("font URL %s does not name a file", i.cfg.URL)
	}

	dest := filepath.Join(i.cacheDir, name)
	if _, err := os.Stat(dest); err == nil {
		return dest, nil
	}
	if err := i.downloader(ctx).Download(ctx, i.cfg.URL, dest); err != nil {
		return "", err
	}
	return dest, nil
}

// archiveStem strips the archive extension: "CascadiaCode.tar.xz" -> "CascadiaCode".
func archiveStem(name string) string {
	lower := strings.ToLower(name)
	for _, ext := range []string{".tar.xz", ".zip"} {
		if strings.HasSuffix(lower, ext) {
			return name[:len(name)-len(ext)]
		}
	}
	return name
}

func copyFile(src, dest string) error {
	in, err := os.Open(src)
	if err != nil {
		return fmt.Errorf("failed to open %s: %w", src, err)
	}
	defer func() { _ = in.Close() }()

	out, err := os.Create(dest)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", dest, err)
	}
	if _, err := io.Copy(out, in); err != nil {
		_ = out.Close()
		_ = os.Remove(dest)
		return fmt.Errorf("failed to copy %s: %w", filepath.Base(src), err)
	}
	return out.Close()
}
