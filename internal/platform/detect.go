package platform

import (
	"context"
	"fmt"
	"runtime"

	"github.com/shirou/gopsutil/v4/host"
)

// RealDetector implements Detector using the running host.
type RealDetector struct {
	goos   string
	goarch string
}

// NewDetector creates a detector for the current process.
func NewDetector() Detector {
	return &RealDetector{goos: runtime.GOOS, goarch: runtime.GOARCH}
}

// Detect reports OS and architecture from the Go runtime and, on Linux,
// the distribution from gopsutil. A failed distro lookup leaves the distro
// fields empty; only context cancellation is an error.
func (d *RealDetector) Detect(ctx context.Context) (*Info, error) {
	info := &Info{
		ID:      FromGOOS(d.goos),
		OS:      d.goos,
		Arch:    normalizeArch(d.goarch),
		ArchRaw: d.goarch,
	}

	if info.ID != Linux {
		return info, nil
	}

	distro, family, version, err := host.PlatformInformationWithContext(ctx)
	if err != nil {
		if ctx.Err() != nil {
			return nil, fmt.Errorf("platform detection cancelled: %w", ctx.Err())
		}
		return info, nil
	}

	if distro = normalizeField(distro); distro != "" {
		info.Platform = distro
		info.Family = mapFamily(family)
		info.Version = normalizeField(version)
	}

	return info, nil
}

// StaticDetector returns a fixed Info. It is used when the platform is
// forced on the command line.
type StaticDetector struct {
	Info Info
}

// Detect returns a copy of the configured info.
func (d StaticDetector) Detect(ctx context.Context) (*Info, error) {
	info := d.Info
	return &info, nil
}
