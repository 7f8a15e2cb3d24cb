package platform

import (
	"errors"
	"fmt"
	"strings"
)

// ErrUnsupported is returned for any identifier outside the supported set.
var ErrUnsupported = errors.New("unsupported platform")

// UnsupportedError names the identifier that was rejected.
type UnsupportedError struct {
	Identifier string
}

func (e *UnsupportedError) Error() string {
	if e.Identifier == "" {
		return ErrUnsupported.Error()
	}
	return fmt.Sprintf("%s: %q", ErrUnsupported, e.Identifier)
}

func (e *UnsupportedError) Unwrap() error {
	return ErrUnsupported
}

// Parse maps a raw identifier to a supported ID. Matching is exact.
func Parse(raw string) (ID, error) {
	switch id := ID(raw); id {
	case Linux, Darwin, Windows:
		return id, nil
	default:
		return "", &UnsupportedError{Identifier: raw}
	}
}

// FromGOOS converts a GOOS value to the runner identifier.
// It returns an empty ID for operating systems without a profile.
func FromGOOS(goos string) ID {
	switch strings.ToLower(goos) {
	case "linux":
		return Linux
	case "darwin":
		return Darwin
	case "windows":
		return Windows
	default:
		return ""
	}
}
