package config

import (
	"context"
	"errors"
	"reflect"
	"strings"
	"testing"

	"github.com/spf13/afero"

	"github.com/CyberAndrii/setup-steamcmd/internal/platform"
)

const testDigest = "9f86d081884c7d659a2feaa0c55ad015a3bf4f1b2b0b822cd15d6c15b0f00a08"

func linuxParser() *Parser {
	return NewParser(platform.StaticDetector{Info: platform.Info{
		ID:       platform.Linux,
		OS:       "linux",
		Arch:     "amd64",
		Platform: "ubuntu",
		Family:   platform.FamilyDebian,
	}})
}

func TestParseString(t *testing.T) {
	progress := false
	tests := []struct {
		name string
		code string
		want Overrides
	}{
		{
			name: "no steamcmd table",
			code: `x = 1`,
			want: Overrides{},
		},
		{
			name: "all fields",
			code: `steamcmd = {
				base_url = "https://mirror.example.com/steam",
				dependencies = {"lib32gcc-s1", "lib32stdc++6"},
				sha256 = "` + testDigest + `",
				signature_url = "https://mirror.example.com/steam/steamcmd_linux.tar.gz.sig",
				keyring = "/etc/keys/valve.asc",
				progress = false,
			}`,
			want: Overrides{
				BaseURL:      "https://mirror.example.com/steam",
				Dependencies: []string{"lib32gcc-s1", "lib32stdc++6"},
				SHA256:       testDigest,
				SignatureURL: "https://mirror.example.com/steam/steamcmd_linux.tar.gz.sig",
				KeyringPath:  "/etc/keys/valve.asc",
				Progress:     &progress,
			},
		},
		{
			name: "platform conditionals",
			code: `steamcmd = {
				dependencies = {
					"lib32gcc-s1",
					platform.is_macos and "never" or nil,
					platform.is_debian_family and "lib32stdc++6" or nil,
				},
			}`,
			want: Overrides{Dependencies: []string{"lib32gcc-s1", "lib32stdc++6"}},
		},
		{
			name: "empty dependency list disables bootstrap",
			code: `steamcmd = { dependencies = {} }`,
			want: Overrides{Dependencies: []string{}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := linuxParser().ParseString(context.Background(), tt.code)
			if err != nil {
				t.Fatalf("ParseString() error = %v", err)
			}
			if !reflect.DeepEqual(*got, tt.want) {
				t.Errorf("ParseString() = %+v, want %+v", *got, tt.want)
			}
		})
	}
}

func TestParseString_Errors(t *testing.T) {
	tests := []struct {
		name    string
		code    string
		wantMsg string
	}{
		{"syntax", `steamcmd = {`, "Lua syntax error"},
		{"not a table", `steamcmd = "x"`, "invalid 'steamcmd' value"},
		{"base_url type", `steamcmd = { base_url = 1 }`, "invalid 'steamcmd.base_url' value"},
		{"progress type", `steamcmd = { progress = "yes" }`, "invalid 'steamcmd.progress' value"},
		{"dependencies type", `steamcmd = { dependencies = "lib32gcc-s1" }`, "invalid 'steamcmd.dependencies' value"},
		{"base_url scheme", `steamcmd = { base_url = "ftp://example.com" }`, "config validation failed"},
		{"flag as package", `steamcmd = { dependencies = {"--purge"} }`, "config validation failed"},
		{"bad digest", `steamcmd = { sha256 = "abc" }`, "config validation failed"},
		{"signature without keyring", `steamcmd = { signature_url = "https://example.com/a.sig" }`, "config validation failed"},
		{"sandbox", `os.exit(1)`, "Lua syntax error"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := linuxParser().ParseString(context.Background(), tt.code)
			var parseErr *ParseError
			if !errors.As(err, &parseErr) {
				t.Fatalf("error = %v, want *ParseError", err)
			}
			if parseErr.Message != tt.wantMsg {
				t.Errorf("Message = %q, want %q", parseErr.Message, tt.wantMsg)
			}
		})
	}
}

func TestParseString_NoDetector(t *testing.T) {
	_, err := NewParser(nil).ParseString(context.Background(), `x = platform.is_linux`)
	if err == nil {
		t.Fatal("expected error without a platform table")
	}
}

func TestParseFile(t *testing.T) {
	fs := afero.NewMemMapFs()
	if err := afero.WriteFile(fs, "/work/steamcmd.lua", []byte(`steamcmd = { base_url = "https://m.example.com" }`), 0o644); err != nil {
		t.Fatal(err)
	}
	p := NewParser(platform.StaticDetector{Info: platform.Info{ID: platform.Windows}}, WithFS(fs))

	got, err := p.ParseFile(context.Background(), "/work/steamcmd.lua")
	if err != nil {
		t.Fatalf("ParseFile() error = %v", err)
	}
	if got.BaseURL != "https://m.example.com" {
		t.Errorf("BaseURL = %q", got.BaseURL)
	}

	_, err = p.ParseFile(context.Background(), "/work/missing.lua")
	var parseErr *ParseError
	if !errors.As(err, &parseErr) {
		t.Errorf("missing file error = %v, want *ParseError", err)
	}
}

func TestOverrides(t *testing.T) {
	var o Overrides
	if !o.Verification().Empty() {
		t.Error("zero Overrides should not request verification")
	}
	if !o.ProgressEnabled(true) || o.ProgressEnabled(false) {
		t.Error("unset progress should return the default")
	}

	off := false
	o = Overrides{SHA256: testDigest, Progress: &off}
	if o.Verification().SHA256 != testDigest {
		t.Errorf("Verification() = %+v", o.Verification())
	}
	if o.ProgressEnabled(true) {
		t.Error("progress = false should win over the default")
	}
}

func TestFormatError(t *testing.T) {
	err := &ParseError{Message: "Lua syntax error", Detail: "line 1: unexpected EOF\nstack traceback:\n\t[G]: ?"}

	if got := FormatError(err, false); got != "Lua syntax error: line 1: unexpected EOF" {
		t.Errorf("FormatError(false) = %q", got)
	}
	if got := FormatError(err, true); !strings.Contains(got, "stack traceback") {
		t.Errorf("FormatError(true) = %q, want full detail", got)
	}
	if got := FormatError(errors.New("plain"), false); got != "plain" {
		t.Errorf("FormatError(plain) = %q", got)
	}
}
