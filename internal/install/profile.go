// Package install implements the SteamCMD installation workflow.
//
// A Profile bundles the per-platform steps (archive naming, extraction,
// dependency bootstrap, shimming, first-run verification) and is chosen
// once by Resolve. The Installer runs those steps in a fixed order and
// short-circuits when the tool cache already holds a completed install.
package install

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/afero"

	"github.com/CyberAndrii/setup-steamcmd/internal/logging"
	"github.com/CyberAndrii/setup-steamcmd/internal/platform"
	"github.com/CyberAndrii/setup-steamcmd/internal/runner"
)

const (
	// ToolName is the cache name and the logical extraction name.
	ToolName = "steamcmd"
	// ToolVersion is the only version Valve distributes.
	ToolVersion = "latest"
	// ToolArch is the cache architecture; SteamCMD is a 32-bit program on
	// every platform.
	ToolArch = "i386"

	// DefaultBaseURL is Valve's versionless installer location.
	DefaultBaseURL = "https://steamcdn-a.akamaihd.net/client/installer"
)

// DefaultDependencies are the apt packages SteamCMD needs on Linux.
var DefaultDependencies = []string{"lib32gcc-s1"}

// InstallLocation is where an install ended up. Paths always use forward
// slashes.
type InstallLocation struct {
	Directory    string
	Executable   string
	BinDirectory string
}

// Profile is the set of platform-specific install steps.
type Profile interface {
	Platform() platform.ID
	ArchiveName() string
	DownloadURL() string
	ExecutablePath(installDir string) string
	Extract(ctx context.Context, archivePath string) (string, error)
	InstallDependencies(ctx context.Context) error
	PostInstall(ctx context.Context, installDir string) error
	VerifyFirstRun(ctx context.Context, executable string) error
	DescribeInstallLocation(installDir string) InstallLocation
}

// Extractor unpacks downloaded archives.
type Extractor interface {
	ExtractTar(ctx context.Context, archivePath, name string) (string, error)
	ExtractZip(ctx context.Context, archivePath, name string) (string, error)
}

// Runner executes processes.
type Runner interface {
	Exec(ctx context.Context, name string, args []string, opts runner.Options) (int, error)
}

// Notifier shows a message to the person reading the run log.
type Notifier interface {
	Info(message string)
}

type logNotifier struct {
	log logging.Logger
}

func (n logNotifier) Info(message string) {
	n.log.Info(message)
}

func notifierOr(n Notifier, log logging.Logger) Notifier {
	if n != nil {
		return n
	}
	return logNotifier{log: logging.OrNop(log)}
}

// Services are the collaborators a Profile delegates to.
type Services struct {
	Extractor Extractor
	Runner    Runner
	FS        afero.Fs
	Log       logging.Logger
	// Notify receives user-facing messages; Log.Info is used when nil.
	Notify Notifier
	// Host is optional; when set on Linux it is used to warn about
	// distributions without apt.
	Host *platform.Info
}

type settings struct {
	baseURL      string
	dependencies []string
}

// Option customizes a resolved profile.
type Option func(*settings)

// WithBaseURL replaces the distribution base URL, e.g. with a mirror.
func WithBaseURL(url string) Option {
	return func(s *settings) {
		if url != "" {
			s.baseURL = url
		}
	}
}

// WithDependencies replaces the Linux apt dependency set. A nil slice
// keeps the default; an empty one disables the bootstrap.
func WithDependencies(deps []string) Option {
	return func(s *settings) {
		if deps != nil {
			s.dependencies = append([]string(nil), deps...)
		}
	}
}

// base carries what every profile shares.
type base struct {
	svc     Services
	baseURL string
}

func (b base) downloadURL(archiveName string) string {
	return strings.TrimRight(b.baseURL, "/") + "/" + archiveName
}

// InstallDependencies is a no-op unless a profile overrides it.
func (b base) InstallDependencies(ctx context.Context) error {
	return nil
}

// verifyExitCode runs executable once with +quit and accepts 0 plus any
// tolerated codes.
func (b base) verifyExitCode(ctx context.Context, id platform.ID, executable string, tolerated ...int) error {
	code, err := b.svc.Runner.Exec(ctx, executable, []string{"+quit"}, runner.Options{IgnoreReturnCode: true})
	if err != nil {
		return err
	}
	if code == 0 {
		return nil
	}
	for _, ok := range tolerated {
		if code == ok {
			b.svc.Notify.Info(fmt.Sprintf("Ignoring exit code %d.", code))
			return nil
		}
	}
	return &FirstRunError{Platform: id, Code: code}
}

// Resolve maps a raw platform identifier to its profile.
func Resolve(raw string, svc Services, opts ...Option) (Profile, error) {
	id, err := platform.Parse(raw)
	if err != nil {
		return nil, err
	}

	s := settings{baseURL: DefaultBaseURL, dependencies: DefaultDependencies}
	for _, opt := range opts {
		opt(&s)
	}
	svc.Log = logging.OrNop(svc.Log)
	svc.Notify = notifierOr(svc.Notify, svc.Log)
	if svc.FS == nil {
		svc.FS = afero.NewOsFs()
	}

	b := base{svc: svc, baseURL: s.baseURL}
	switch id {
	case platform.Linux:
		return &linuxProfile{posix: posix{base: b, archive: "steamcmd_linux.tar.gz"}, dependencies: s.dependencies}, nil
	case platform.Darwin:
		return &darwinProfile{posix: posix{base: b, archive: "steamcmd_osx.tar.gz"}}, nil
	case platform.Windows:
		return &windowsProfile{base: b}, nil
	default:
		return nil, &platform.UnsupportedError{Identifier: raw}
	}
}
