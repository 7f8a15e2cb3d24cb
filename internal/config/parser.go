package config

import (
	"context"
	"encoding/hex"
	"fmt"
	"net/url"
	"strings"

	"github.com/spf13/afero"
	lua "github.com/yuin/gopher-lua"

	"github.com/CyberAndrii/setup-steamcmd/internal/download"
	"github.com/CyberAndrii/setup-steamcmd/internal/platform"
)

// Overrides are the optional settings a Lua config file can change. Zero
// values mean "keep the default".
type Overrides struct {
	BaseURL string
	// Dependencies is nil when the file does not set it; an empty slice
	// disables the Linux bootstrap.
	Dependencies []string
	SHA256       string
	SignatureURL string
	KeyringPath  string
	// Progress is nil when unset.
	Progress *bool
}

// Verification returns the archive verification the overrides ask for.
func (o *Overrides) Verification() download.Verification {
	return download.Verification{
		SHA256:       o.SHA256,
		SignatureURL: o.SignatureURL,
		KeyringPath:  o.KeyringPath,
	}
}

// ProgressEnabled reports whether to draw a download progress bar.
// def is used when the file does not say.
func (o *Overrides) ProgressEnabled(def bool) bool {
	if o.Progress == nil {
		return def
	}
	return *o.Progress
}

// ParseError represents a config parsing error with friendly message.
type ParseError struct {
	Message string // User-friendly message
	Detail  string // Technical details (raw Lua error)
}

func (e *ParseError) Error() string {
	if e.Detail == "" {
		return e.Message
	}
	return fmt.Sprintf("%s: %s", e.Message, e.Detail)
}

// Parser evaluates Lua config files with a platform table injected.
type Parser struct {
	detector platform.Detector
	fs       afero.Fs
}

// ParserOption customizes a Parser.
type ParserOption func(*Parser)

// WithFS reads config files from fs instead of the OS filesystem.
func WithFS(fs afero.Fs) ParserOption {
	return func(p *Parser) { p.fs = fs }
}

// NewParser creates a parser. detector may be nil, in which case the
// platform table is not available to the config.
func NewParser(detector platform.Detector, opts ...ParserOption) *Parser {
	p := &Parser{detector: detector, fs: afero.NewOsFs()}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// ParseFile reads and evaluates the config file at path.
func (p *Parser) ParseFile(ctx context.Context, path string) (*Overrides, error) {
	data, err := afero.ReadFile(p.fs, path)
	if err != nil {
		return nil, &ParseError{Message: "cannot read config file", Detail: err.Error()}
	}
	return p.ParseString(ctx, string(data))
}

// ParseString evaluates luaCode and extracts the steamcmd table.
func (p *Parser) ParseString(ctx context.Context, luaCode string) (*Overrides, error) {
	L := newSandboxedVM()
	defer L.Close()
	L.SetContext(ctx)

	if p.detector != nil {
		info, err := p.detector.Detect(ctx)
		if err != nil {
			return nil, fmt.Errorf("platform detection failed: %w", err)
		}
		platform.InjectTable(L, info)
	}

	if err := L.DoString(luaCode); err != nil {
		return nil, &ParseError{
			Message: "Lua syntax error",
			Detail:  err.Error(),
		}
	}

	return extractOverrides(L)
}

func extractOverrides(L *lua.LState) (*Overrides, error) {
	global := L.GetGlobal(luaGlobalSteamCMD)
	if global.Type() == lua.LTNil {
		return &Overrides{}, nil
	}
	table, ok := global.(*lua.LTable)
	if !ok {
		return nil, &ParseError{
			Message: "invalid 'steamcmd' value",
			Detail:  fmt.Sprintf("expected table, got %s", global.Type()),
		}
	}

	o := &Overrides{}
	var err error
	if o.BaseURL, err = stringField(table, luaFieldBaseURL); err != nil {
		return nil, err
	}
	if o.SHA256, err = stringField(table, luaFieldSHA256); err != nil {
		return nil, err
	}
	if o.SignatureURL, err = stringField(table, luaFieldSigURL); err != nil {
		return nil, err
	}
	if o.KeyringPath, err = stringField(table, luaFieldKeyring); err != nil {
		return nil, err
	}

	switch v := table.RawGetString(luaFieldProgress).(type) {
	case *lua.LNilType:
	case lua.LBool:
		b := bool(v)
		o.Progress = &b
	default:
		return nil, fieldTypeError(luaFieldProgress, "boolean", v)
	}

	switch v := table.RawGetString(luaFieldDeps).(type) {
	case *lua.LNilType:
	case *lua.LTable:
		o.Dependencies = extractDependencies(v)
	default:
		return nil, fieldTypeError(luaFieldDeps, "table", v)
	}

	if err := o.validate(); err != nil {
		return nil, &ParseError{
			Message: "config validation failed",
			Detail:  err.Error(),
		}
	}
	return o, nil
}

func stringField(table *lua.LTable, name string) (string, error) {
	v := table.RawGetString(name)
	switch v.Type() {
	case lua.LTNil:
		return "", nil
	case lua.LTString:
		return strings.TrimSpace(v.String()), nil
	default:
		return "", fieldTypeError(name, "string", v)
	}
}

func fieldTypeError(name, want string, got lua.LValue) error {
	return &ParseError{
		Message: fmt.Sprintf("invalid 'steamcmd.%s' value", name),
		Detail:  fmt.Sprintf("expected %s, got %s", want, got.Type()),
	}
}

// extractDependencies keeps the string entries of an array table. nil
// holes left by platform conditionals are skipped.
func extractDependencies(table *lua.LTable) []string {
	deps := []string{}
	table.ForEach(func(key, value lua.LValue) {
		if key.Type() != lua.LTNumber || value.Type() != lua.LTString {
			return
		}
		deps = append(deps, value.String())
	})
	return deps
}

func (o *Overrides) validate() error {
	if o.BaseURL != "" {
		u, err := url.Parse(o.BaseURL)
		if err != nil {
			return fmt.Errorf("base_url: %w", err)
		}
		if (u.Scheme != "https" && u.Scheme != "http") || u.Host == "" {
			return fmt.Errorf("base_url: %q is not an http(s) URL", o.BaseURL)
		}
	}

	for _, dep := range o.Dependencies {
		if dep == "" || strings.HasPrefix(dep, "-") || strings.ContainsAny(dep, " \t\n") {
			return fmt.Errorf("dependencies: invalid package name %q", dep)
		}
	}

	if o.SHA256 != "" {
		if b, err := hex.DecodeString(o.SHA256); err != nil || len(b) != 32 {
			return fmt.Errorf("sha256: %q is not a hex SHA-256 digest", o.SHA256)
		}
	}

	if (o.SignatureURL == "") != (o.KeyringPath == "") {
		return fmt.Errorf("signature_url and keyring must be set together")
	}
	return nil
}

// FormatError formats a ParseError for user display.
// In verbose mode, show the raw Lua error. Otherwise, show friendly message.
func FormatError(err error, verbose bool) string {
	if parseErr, ok := err.(*ParseError); ok {
		if verbose {
			return fmt.Sprintf("%s\n\nDetails:\n%s", parseErr.Message, parseErr.Detail)
		}
		detail := parseErr.Detail
		if idx := strings.Index(detail, "stack traceback"); idx > 0 {
			detail = strings.TrimSpace(detail[:idx])
		}
		if detail == "" {
			return parseErr.Message
		}
		return fmt.Sprintf("%s: %s", parseErr.Message, detail)
	}
	return err.Error()
}
