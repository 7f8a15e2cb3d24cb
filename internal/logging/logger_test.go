package logging

import (
	"bytes"
	"strings"
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestFromZap(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	log := FromZap(zap.New(core))

	log.Debug("probing cache", "tool", "steamcmd")
	log.Info("found in cache", "dir", "/cache/steamcmd")
	log.Warn("distro is not debian", "family", "rhel")
	log.Error("install failed", "error", "boom")

	entries := logs.AllUntimed()
	if len(entries) != 4 {
		t.Fatalf("got %d entries, want 4", len(entries))
	}

	wantLevels := []zapcore.Level{zapcore.DebugLevel, zapcore.InfoLevel, zapcore.WarnLevel, zapcore.ErrorLevel}
	for i, e := range entries {
		if e.Level != wantLevels[i] {
			t.Errorf("entry %d level = %v, want %v", i, e.Level, wantLevels[i])
		}
	}

	if got := entries[1].ContextMap()["dir"]; got != "/cache/steamcmd" {
		t.Errorf("dir field = %v, want /cache/steamcmd", got)
	}
}

func TestNew_LevelFiltering(t *testing.T) {
	tests := []struct {
		name      string
		debug     bool
		wantDebug bool
	}{
		{"info", false, false},
		{"debug", true, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			log, sync := New(&buf, tt.debug)

			log.Debug("hidden unless debug")
			log.Info("always shown")
			_ = sync()

			out := buf.String()
			if !strings.Contains(out, "always shown") {
				t.Errorf("info line missing from %q", out)
			}
			if got := strings.Contains(out, "hidden unless debug"); got != tt.wantDebug {
				t.Errorf("debug line present = %v, want %v", got, tt.wantDebug)
			}
		})
	}
}

func TestOrNop(t *testing.T) {
	if OrNop(nil) == nil {
		t.Fatal("OrNop(nil) returned nil")
	}
	// must not panic
	OrNop(nil).Info("discarded", "k", "v")
}
