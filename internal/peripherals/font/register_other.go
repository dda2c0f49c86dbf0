//go:build !windows

package font

// register is a no-op: copying into the font directory is enough for
// fontconfig-based hosts.
func register(string) error { return nil }
