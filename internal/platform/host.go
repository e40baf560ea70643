package platform

import (
	"fmt"
	"runtime"

	"github.com/shirou/gopsutil/v3/host"
)

// HostDescription describes the machine for the doctor command, e.g.
// "linux (fedora 40, amd64)". It falls back to runtime values when the host
// cannot be queried.
func HostDescription() string {
	info, err := host.Info()
	if err != nil || info.Platform == "" {
		return fmt.Sprintf("%s (%s)", runtime.GOOS, runtime.GOARCH)
	}
	return fmt.Sprintf("%s (%s %s, %s)", info.OS, info.Platform, info.PlatformVersion, info.KernelArch)
}
