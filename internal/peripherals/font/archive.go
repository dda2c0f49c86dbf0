package font

import (
	"archive/tar"
	"errors"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/klauspost/compress/zip"
	"github.com/ulikunitz/xz"
)

// isFontFile reports whether name is a TrueType or OpenType font.
func isFontFile(name string) bool {
	switch strings.ToLower(path.Ext(name)) {
	case ".ttf", ".otf":
		return true
	default:
		return false
	}
}

// Extract unpacks the font files of archive into dir, flattening any
// directory structure, and returns the extracted file paths. Supported
// formats are .tar.xz and .zip.
func Extract(archive, dir string) ([]string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create %s: %w", dir, err)
	}

	lower := strings.ToLower(archive)
	switch {
	case strings.HasSuffix(lower, ".tar.xz"):
		return extractTarXZ(archive, dir)
	case strings.HasSuffix(lower, ".zip"):
		return extractZip(archive, dir)
	default:
		return nil, fmt.Errorf("unsupported archive format: %s", filepath.Base(archive))
	}
}

func extractTarXZ(archive, dir string) ([]string, error) {
	f, err := os.Open(archive)
	if err != nil {
		return nil, err
	}
	defer func() { _ = f.Close() }()

	xr, err := xz.NewReader(f)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", filepath.Base(archive), err)
	}

	var files []string
	tr := tar.NewReader(xr)
	for {
		hdr, err := tr.Next()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read %s: %w", filepath.Base(archive), err)
		}
		if hdr.Typeflag != tar.TypeReg || !isFontFile(hdr.Name) {
			continue
		}
		dest, err := writeEntry(dir, hdr.Name, tr)
		if err != nil {
			return nil, err
		}
		files = append(files, dest)
	}
	return files, nil
}

func extractZip(archive, dir string) ([]string, error) {
	zr, err := zip.OpenReader(archive)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", filepath.Base(archive), err)
	}
	defer func() { _ = zr.Close() }()

	var files []string
	for _, entry := range zr.File {
		if entry.FileInfo().IsDir() || !isFontFile(entry.Name) {
			continue
		}
		rc, err := entry.Open()
		if err != nil {
			return nil, fmt.Errorf("failed to read %s: %w", entry.Name, err)
		}
		dest, err := writeEntry(dir, entry.Name, rc)
		_ = rc.Close()
		if err != nil {
			return nil, err
		}
		files = append(files, dest)
	}
	return files, nil
}

// writeEntry writes r to dir under the base name of the archive entry.
func writeEntry(dir, name string, r io.Reader) (string, error) {
	dest := filepath.Join(dir, path.Base(strings.ReplaceAll(name, `\`, "/")))
	out, err := os.Create(dest)
	if err != nil {
		return "", fmt.Errorf("failed to create %s: %w", dest, err)
	}
	if _, err := io.Copy(out, r); err != nil {
		_ = out.Close()
		return "", fmt.Errorf("failed to extract %s: %w", name, err)
	}
	return dest, out.Close()
}
