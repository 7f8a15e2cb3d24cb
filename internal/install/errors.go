package install

import (
	"errors"
	"fmt"

	"github.com/CyberAndrii/setup-steamcmd/internal/archive"
	"github.com/CyberAndrii/setup-steamcmd/internal/config"
	"github.com/CyberAndrii/setup-steamcmd/internal/platform"
)

// PackageError reports one dependency that is neither installable nor
// already present.
type PackageError struct {
	Package string
	Err     error
}

func (e *PackageError) Error() string {
	return fmt.Sprintf("Failed to install %s. See apt-get log.", e.Package)
}

func (e *PackageError) Unwrap() error {
	return e.Err
}

// DependencyError aggregates every package that failed the bootstrap. It
// reads as the first failure.
type DependencyError struct {
	Failures []error
}

func (e *DependencyError) Error() string {
	if len(e.Failures) == 0 {
		return "dependency installation failed"
	}
	return e.Failures[0].Error()
}

func (e *DependencyError) Unwrap() []error {
	return e.Failures
}

// FirstRunError reports a verification run that exited with a code the
// platform does not tolerate.
type FirstRunError struct {
	Platform platform.ID
	Code     int
}

func (e *FirstRunError) Error() string {
	return fmt.Sprintf("steamcmd first run failed on %s with exit code %d", e.Platform, e.Code)
}

// Kind is a coarse classification of install failures.
type Kind int

const (
	KindExternalService Kind = iota
	KindUnsupportedPlatform
	KindConfiguration
	KindArchiveFormatMismatch
	KindDependencyInstall
	KindFirstRunVerification
)

func (k Kind) String() string {
	switch k {
	case KindUnsupportedPlatform:
		return "unsupported-platform"
	case KindConfiguration:
		return "configuration"
	case KindArchiveFormatMismatch:
		return "archive-format-mismatch"
	case KindDependencyInstall:
		return "dependency-install"
	case KindFirstRunVerification:
		return "first-run-verification"
	default:
		return "external-service"
	}
}

// KindOf classifies err. Anything unrecognized is an external service
// failure (network, filesystem, process start).
func KindOf(err error) Kind {
	var (
		depErr   *DependencyError
		runErr   *FirstRunError
		parseErr *config.ParseError
	)
	switch {
	case errors.Is(err, platform.ErrUnsupported):
		return KindUnsupportedPlatform
	case errors.Is(err, config.ErrMissingEnv), errors.As(err, &parseErr):
		return KindConfiguration
	case errors.Is(err, archive.ErrFormatMismatch):
		return KindArchiveFormatMismatch
	case errors.As(err, &depErr):
		return KindDependencyInstall
	case errors.As(err, &runErr):
		return KindFirstRunVerification
	default:
		return KindExternalService
	}
}
