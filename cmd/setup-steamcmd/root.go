package main

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"

	"github.com/CyberAndrii/setup-steamcmd/internal/actions"
	"github.com/CyberAndrii/setup-steamcmd/internal/archive"
	"github.com/CyberAndrii/setup-steamcmd/internal/config"
	"github.com/CyberAndrii/setup-steamcmd/internal/download"
	"github.com/CyberAndrii/setup-steamcmd/internal/install"
	"github.com/CyberAndrii/setup-steamcmd/internal/logging"
	"github.com/CyberAndrii/setup-steamcmd/internal/platform"
	"github.com/CyberAndrii/setup-steamcmd/internal/runner"
	"github.com/CyberAndrii/setup-steamcmd/internal/toolcache"
)

type options struct {
	platform   string
	configPath string
	verbose    bool
}

// app holds the process boundaries so tests can replace them.
type app struct {
	stdout   io.Writer
	stderr   io.Writer
	getenv   func(string) string
	setenv   func(string, string) error
	fs       afero.Fs
	detector platform.Detector
	// newRunner builds the process runner; tests swap in a fake.
	newRunner func(logging.Logger) install.Runner

	reporter *actions.Reporter
}

func newApp() *app {
	return &app{
		getenv:    os.Getenv,
		setenv:    os.Setenv,
		fs:        afero.NewOsFs(),
		detector:  platform.NewDetector(),
		newRunner: func(log logging.Logger) install.Runner { return runner.New(log) },
	}
}

func newRootCmd(a *app) *cobra.Command {
	opts := &options{}
	cmd := &cobra.Command{
		Use:   "setup-steamcmd",
		Short: "Install SteamCMD and expose it on PATH",
		Long: `setup-steamcmd downloads Valve's SteamCMD for the current platform,
stores it in the runner tool cache and publishes the install location as
step outputs ("directory", "executable") and a PATH entry.`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.run(cmd.Context(), opts)
		},
	}

	cmd.Flags().StringVar(&opts.platform, "platform", "", "target platform: linux, darwin or win32 (default: host)")
	cmd.Flags().StringVar(&opts.configPath, "config", "", "Lua config file (default: $INPUT_CONFIG)")
	cmd.Flags().BoolVarP(&opts.verbose, "verbose", "v", false, "enable debug logging")
	return cmd
}

// run installs SteamCMD and reports the result. Every failure is reported
// once through SetFailed and also returned so the exit code is non-zero.
func (a *app) run(ctx context.Context, opts *options) error {
	if ctx == nil {
		ctx = context.Background()
	}
	a.reporter = actions.New(a.stdout, actions.WithFS(a.fs), actions.WithEnv(a.getenv, a.setenv))

	debug := opts.verbose || a.getenv(config.EnvDebug) == "1"
	log, sync := logging.New(a.stdout, debug)
	defer func() { _ = sync() }()

	loc, err := a.install(ctx, opts, log)
	if err != nil {
		a.reporter.Debug("install failed: " + install.KindOf(err).String())
		a.reporter.SetFailed(config.FormatError(err, debug))
		return err
	}

	if err := a.publish(loc); err != nil {
		a.reporter.SetFailed(err.Error())
		return err
	}
	return nil
}

func (a *app) install(ctx context.Context, opts *options, log logging.Logger) (install.InstallLocation, error) {
	host, err := a.detector.Detect(ctx)
	if err != nil {
		return install.InstallLocation{}, fmt.Errorf("detect platform: %w", err)
	}

	raw := opts.platform
	if raw == "" {
		raw = host.ID.String()
		if !host.Supported() {
			raw = host.OS
		}
	}
	id, err := platform.Parse(raw)
	if err != nil {
		return install.InstallLocation{}, err
	}
	target := *host
	target.ID = id

	settings, err := config.FromEnv(a.getenv)
	if err != nil {
		return install.InstallLocation{}, err
	}

	overrides := &config.Overrides{}
	path := opts.configPath
	if path == "" {
		path = settings.ConfigPath
	}
	if path != "" {
		parser := config.NewParser(platform.StaticDetector{Info: target}, config.WithFS(a.fs))
		if overrides, err = parser.ParseFile(ctx, path); err != nil {
			return install.InstallLocation{}, err
		}
		log.Debug("loaded config", "path", path)
	}

	svc := install.Services{
		Extractor: archive.NewExtractor(settings.TempDir),
		Runner:    a.newRunner(log),
		FS:        a.fs,
		Log:       log,
		Notify:    a.reporter,
		Host:      &target,
	}
	profile, err := install.Resolve(raw, svc,
		install.WithBaseURL(overrides.BaseURL),
		install.WithDependencies(overrides.Dependencies),
	)
	if err != nil {
		return install.InstallLocation{}, err
	}

	dlOpts := []download.Option{
		download.WithLogger(log),
		download.WithUserAgent("setup-steamcmd/" + Version),
		download.WithVerification(overrides.Verification()),
	}
	if overrides.ProgressEnabled(false) {
		dlOpts = append(dlOpts, download.WithProgress(a.stderr))
	}

	installer, err := install.NewInstaller(install.Config{
		Profile:    profile,
		Downloader: download.NewDownloader(dlOpts...),
		ToolCache:  toolcache.New(settings.ToolCacheDir, log),
		TempDir:    settings.TempDir,
		Logger:     log,
		Notifier:   a.reporter,
	})
	if err != nil {
		return install.InstallLocation{}, err
	}

	return installer.InstallIfNecessary(ctx)
}

func (a *app) publish(loc install.InstallLocation) error {
	return a.reporter.Publish([]actions.Output{
		{Name: "directory", Value: loc.Directory},
		{Name: "executable", Value: loc.Executable},
	}, loc.BinDirectory)
}
