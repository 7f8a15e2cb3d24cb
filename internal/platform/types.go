// Package platform identifies the host a SteamCMD install runs on.
//
// Identifiers follow the runner convention ("linux", "darwin", "win32")
// rather than Go's GOOS names, so the value a workflow passes in and the
// value detected on the host compare equal. Linux distribution details are
// collected with gopsutil and degrade to empty fields when detection fails.
package platform

import "context"

// ID is a supported platform identifier.
type ID string

const (
	Linux   ID = "linux"
	Darwin  ID = "darwin"
	Windows ID = "win32"
)

// String returns the identifier as passed on the command line.
func (id ID) String() string {
	return string(id)
}

// Linux distribution family constants.
const (
	FamilyDebian  = "debian"  // Debian, Ubuntu, Linux Mint
	FamilyRHEL    = "rhel"    // RHEL, CentOS, Rocky Linux, AlmaLinux
	FamilyFedora  = "fedora"  // Fedora
	FamilySUSE    = "suse"    // openSUSE, SLES
	FamilyArch    = "arch"    // Arch Linux, Manjaro
	FamilyAlpine  = "alpine"  // Alpine Linux
	FamilyUnknown = "unknown" // Unrecognized distributions
)

// Info contains platform detection information.
type Info struct {
	ID       ID     // runner identifier, empty if the host OS is unsupported
	OS       string // raw GOOS
	Arch     string // normalized architecture ("amd64", "arm64", "386")
	ArchRaw  string // original GOARCH
	Platform string // distro ID (Linux only, e.g., "ubuntu")
	Family   string // canonical family (e.g., "debian")
	Version  string // distro version (Linux only, e.g., "22.04")
}

// Supported reports whether the host maps to one of the runner identifiers.
func (i *Info) Supported() bool {
	return i.ID != ""
}

// IsLinux returns true if the platform is Linux.
func (i *Info) IsLinux() bool {
	return i.ID == Linux
}

// IsMacOS returns true if the platform is macOS.
func (i *Info) IsMacOS() bool {
	return i.ID == Darwin
}

// IsWindows returns true if the platform is Windows.
func (i *Info) IsWindows() bool {
	return i.ID == Windows
}

// IsDebianFamily returns true if the Linux distribution is Debian-based.
func (i *Info) IsDebianFamily() bool {
	return i.IsLinux() && i.Family == FamilyDebian
}

// HasDistro reports whether distribution details were detected.
func (i *Info) HasDistro() bool {
	return i.IsLinux() && i.Platform != ""
}

// Detector is the interface for platform detection.
type Detector interface {
	Detect(ctx context.Context) (*Info, error)
}
