package wsl

import (
	"encoding/base64"
	"strings"
)

// PayloadCommand wraps a shell script into an argv that runs it inside an
// image. The script travels base64-encoded so its content never needs
// quoting on the way through wsl.exe. stdin stays connected to the caller.
func PayloadCommand(script string) []string {
	encoded := base64.StdEncoding.EncodeToString([]byte(script))
	return []string{"/bin/bash", "-c", `eval "$(printf '%s' ` + encoded + ` | base64 -d)"`}
}

// WriteFileCommand returns an argv that writes content to path inside an image.
func WriteFileCommand(path string, content []byte) []string {
	encoded := base64.StdEncoding.EncodeToString(content)
	return []string{"/bin/sh", "-c", "printf '%s' " + encoded + " | base64 -d > " + ShellQuote(path)}
}

// ShellQuote single-quotes s for POSIX shells.
func ShellQuote(s string) string {
	return "'" + strings.ReplaceAll(s, "'", `'\''`) + "'"
}
