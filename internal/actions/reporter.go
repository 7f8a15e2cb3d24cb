// Package actions speaks the GitHub Actions runner protocol: step outputs,
// PATH additions, failure annotations and debug lines.
//
// When the runner provides GITHUB_OUTPUT and GITHUB_PATH the values are
// appended to those files; older runners get the equivalent workflow
// commands on stdout.
package actions

import (
	"errors"
	"fmt"
	"io"
	"maps"
	"os"
	"slices"
	"strings"

	"github.com/google/uuid"
	"github.com/spf13/afero"
)

const (
	envOutput = "GITHUB_OUTPUT"
	envPath   = "GITHUB_PATH"
)

// Reporter writes runner commands. It is not safe for concurrent use.
type Reporter struct {
	out       io.Writer
	fs        afero.Fs
	getenv    func(string) string
	setenv    func(string, string) error
	delimiter func() string
	exitCode  int
}

// Option customizes a Reporter.
type Option func(*Reporter)

// WithFS writes env files through fs.
func WithFS(fs afero.Fs) Option {
	return func(r *Reporter) { r.fs = fs }
}

// WithEnv replaces the process environment accessors.
func WithEnv(getenv func(string) string, setenv func(string, string) error) Option {
	return func(r *Reporter) {
		r.getenv = getenv
		r.setenv = setenv
	}
}

// New creates a Reporter that writes commands to out.
func New(out io.Writer, opts ...Option) *Reporter {
	r := &Reporter{
		out:       out,
		fs:        afero.NewOsFs(),
		getenv:    os.Getenv,
		setenv:    os.Setenv,
		delimiter: func() string { return "ghadelimiter_" + uuid.NewString() },
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Output is a named step output.
type Output struct {
	Name  string
	Value string
}

// Publish sets every output and prepends dir to PATH for later steps and
// for this process. Values are validated and the env files opened before
// anything is written, so a rejected output leaves no partial state.
func (r *Reporter) Publish(outputs []Output, dir string) error {
	outText, err := r.outputText(outputs)
	if err != nil {
		return err
	}
	pathText := formatCommand("add-path", nil, dir) + "\n"
	pathFile := r.getenv(envPath)
	if pathFile != "" {
		pathText = dir + "\n"
	}

	outW, err := r.target(r.getenv(envOutput))
	if err != nil {
		return err
	}
	pathW, err := r.target(pathFile)
	if err != nil {
		outW.Close()
		return err
	}

	_, outErr := io.WriteString(outW, outText)
	_, pathErr := io.WriteString(pathW, pathText)
	if err := errors.Join(outErr, pathErr, outW.Close(), pathW.Close()); err != nil {
		return fmt.Errorf("publish outputs: %w", err)
	}

	path := dir
	if cur := r.getenv("PATH"); cur != "" {
		path = dir + string(os.PathListSeparator) + cur
	}
	return r.setenv("PATH", path)
}

func (r *Reporter) outputText(outputs []Output) (string, error) {
	var b strings.Builder
	if r.getenv(envOutput) == "" {
		for _, o := range outputs {
			b.WriteString(formatCommand("set-output", map[string]string{"name": o.Name}, o.Value))
			b.WriteString("\n")
		}
		return b.String(), nil
	}

	for _, o := range outputs {
		delim := r.delimiter()
		if strings.Contains(o.Name, delim) || strings.Contains(o.Value, delim) {
			return "", fmt.Errorf("output %q: value contains the delimiter %q", o.Name, delim)
		}
		fmt.Fprintf(&b, "%s<<%s\n%s\n%s\n", o.Name, delim, o.Value, delim)
	}
	return b.String(), nil
}

// target opens the env file name for appending, or falls back to stdout
// when the runner did not provide one.
func (r *Reporter) target(name string) (io.WriteCloser, error) {
	if name == "" {
		return nopCloser{r.out}, nil
	}
	f, err := r.fs.OpenFile(name, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", name, err)
	}
	return f, nil
}

type nopCloser struct{ io.Writer }

func (nopCloser) Close() error { return nil }

// SetFailed emits an error annotation and marks the run as failed.
func (r *Reporter) SetFailed(message string) {
	r.exitCode = 1
	fmt.Fprintln(r.out, formatCommand("error", nil, message))
}

// ExitCode is 1 after SetFailed and 0 otherwise.
func (r *Reporter) ExitCode() int {
	return r.exitCode
}

// Info writes a plain log line.
func (r *Reporter) Info(message string) {
	fmt.Fprintln(r.out, message)
}

// Debug writes a line that is only shown when step debugging is on.
func (r *Reporter) Debug(message string) {
	fmt.Fprintln(r.out, formatCommand("debug", nil, message))
}

func formatCommand(name string, props map[string]string, message string) string {
	var b strings.Builder
	b.WriteString("::")
	b.WriteString(name)
	if len(props) > 0 {
		b.WriteString(" ")
		first := true
		for _, k := range slices.Sorted(maps.Keys(props)) {
			if !first {
				b.WriteString(",")
			}
			first = false
			b.WriteString(k)
			b.WriteString("=")
			b.WriteString(escapeProperty(props[k]))
		}
	}
	b.WriteString("::")
	b.WriteString(escapeData(message))
	return b.String()
}

var (
	dataEscaper     = strings.NewReplacer("%", "%25", "\r", "%0D", "\n", "%0A")
	propertyEscaper = strings.NewReplacer("%", "%25", "\r", "%0D", "\n", "%0A", ":", "%3A", ",", "%2C")
)

func escapeData(s string) string {
	return dataEscaper.Replace(s)
}

func escapeProperty(s string) string {
	return propertyEscaper.Replace(s)
}
