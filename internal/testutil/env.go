// Package testutil provides an isolated runner environment for tests.
package testutil

import (
	"os"
	"path/filepath"
	"testing"
)

// RunnerEnv holds the paths SetupRunnerEnv created.
type RunnerEnv struct {
	Root      string
	Temp      string
	ToolCache string
	// OutputFile and PathFile are the GITHUB_OUTPUT and GITHUB_PATH files.
	OutputFile string
	PathFile   string
}

// SetupRunnerEnv points every runner variable at fresh directories under
// t.TempDir(), so tests never touch a real tool cache or leak outputs
// into the job that runs them. t.TempDir() removes everything afterwards.
func SetupRunnerEnv(t *testing.T) *RunnerEnv {
	t.Helper()

	root := t.TempDir()
	env := &RunnerEnv{
		Root:       root,
		Temp:       filepath.Join(root, "_temp"),
		ToolCache:  filepath.Join(root, "hostedtoolcache"),
		OutputFile: filepath.Join(root, "_runner_file_commands", "output"),
		PathFile:   filepath.Join(root, "_runner_file_commands", "path"),
	}

	for _, dir := range []string{env.Temp, env.ToolCache, filepath.Dir(env.OutputFile)} {
		if err := os.MkdirAll(dir, 0o750); err != nil {
			t.Fatalf("failed to create test directory %s: %v", dir, err)
		}
	}
	for _, f := range []string{env.OutputFile, env.PathFile} {
		if err := os.WriteFile(f, nil, 0o640); err != nil {
			t.Fatalf("failed to create %s: %v", f, err)
		}
	}

	t.Setenv("RUNNER_TEMP", env.Temp)
	t.Setenv("RUNNER_TOOL_CACHE", env.ToolCache)
	t.Setenv("GITHUB_OUTPUT", env.OutputFile)
	t.Setenv("GITHUB_PATH", env.PathFile)
	t.Setenv("INPUT_CONFIG", "")
	t.Setenv("RUNNER_DEBUG", "")

	return env
}
