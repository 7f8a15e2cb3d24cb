package config

import (
	"errors"
	"path/filepath"
	"testing"
)

func mapEnv(m map[string]string) func(string) string {
	return func(k string) string { return m[k] }
}

func TestFromEnv(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
		want Settings
	}{
		{
			name: "defaults",
			env:  map[string]string{EnvTemp: "/runner/_temp"},
			want: Settings{
				TempDir:      "/runner/_temp",
				ToolCacheDir: filepath.Join("/runner/_temp", "tool-cache"),
			},
		},
		{
			name: "everything set",
			env: map[string]string{
				EnvTemp:      "/runner/_temp",
				EnvToolCache: "/opt/hostedtoolcache",
				EnvConfig:    "steamcmd.lua",
				EnvDebug:     "1",
			},
			want: Settings{
				TempDir:      "/runner/_temp",
				ToolCacheDir: "/opt/hostedtoolcache",
				ConfigPath:   "steamcmd.lua",
				Debug:        true,
			},
		},
		{
			name: "debug must be exactly 1",
			env:  map[string]string{EnvTemp: "/t", EnvToolCache: "/c", EnvDebug: "true"},
			want: Settings{TempDir: "/t", ToolCacheDir: "/c"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := FromEnv(mapEnv(tt.env))
			if err != nil {
				t.Fatalf("FromEnv() error = %v", err)
			}
			if *got != tt.want {
				t.Errorf("FromEnv() = %+v, want %+v", *got, tt.want)
			}
		})
	}
}

func TestFromEnv_MissingTemp(t *testing.T) {
	for _, v := range []string{"", "   "} {
		_, err := FromEnv(mapEnv(map[string]string{EnvTemp: v}))
		if !errors.Is(err, ErrMissingEnv) {
			t.Fatalf("FromEnv() error = %v, want ErrMissingEnv", err)
		}
		var envErr *EnvError
		if !errors.As(err, &envErr) || envErr.Name != EnvTemp {
			t.Errorf("error = %v, want EnvError for %s", err, EnvTemp)
		}
		if got, want := err.Error(), "Expected RUNNER_TEMP to be defined"; got != want {
			t.Errorf("Error() = %q, want %q", got, want)
		}
	}
}
