//go:build windows

package prerequisites

import "golang.org/x/sys/windows"

func hostInfo() (HostInfo, error) {
	info := HostInfo{Windows: true}
	info.Elevated = windows.GetCurrentProcessToken().IsElevated()
	if v := windows.RtlGetVersion(); v != nil {
		info.Build = v.BuildNumber
	}
	return info, nil
}
