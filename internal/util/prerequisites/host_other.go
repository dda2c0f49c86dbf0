//go:build !windows

package prerequisites

func hostInfo() (HostInfo, error) {
	return HostInfo{}, nil
}
