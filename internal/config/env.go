package config

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"
)

// ErrMissingEnv is wrapped by every EnvError.
var ErrMissingEnv = errors.New("missing environment variable")

// EnvError reports a required environment variable that is unset.
type EnvError struct {
	Name string
}

func (e *EnvError) Error() string {
	return fmt.Sprintf("Expected %s to be defined", e.Name)
}

func (e *EnvError) Unwrap() error {
	return ErrMissingEnv
}

// Settings is the runner environment contract.
type Settings struct {
	// TempDir is where archives are downloaded and extracted.
	TempDir string
	// ToolCacheDir is the tool cache root.
	ToolCacheDir string
	// ConfigPath is an optional Lua config file.
	ConfigPath string
	// Debug enables debug logging.
	Debug bool
}

// FromEnv reads Settings through getenv, usually os.Getenv.
func FromEnv(getenv func(string) string) (*Settings, error) {
	temp := strings.TrimSpace(getenv(EnvTemp))
	if temp == "" {
		return nil, &EnvError{Name: EnvTemp}
	}

	s := &Settings{
		TempDir:      temp,
		ToolCacheDir: strings.TrimSpace(getenv(EnvToolCache)),
		ConfigPath:   strings.TrimSpace(getenv(EnvConfig)),
		Debug:        getenv(EnvDebug) == "1",
	}
	if s.ToolCacheDir == "" {
		s.ToolCacheDir = filepath.Join(temp, "tool-cache")
	}
	return s, nil
}
