package install

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"

	"github.com/CyberAndrii/setup-steamcmd/internal/logging"
	"github.com/CyberAndrii/setup-steamcmd/internal/toolcache"
)

// CacheKey is the single tool cache entry SteamCMD lives under. Lookup and
// population both use it.
var CacheKey = toolcache.Key{Tool: ToolName, Version: ToolVersion, Arch: ToolArch}

// Downloader fetches a URL to a local file and returns its path.
type Downloader interface {
	Download(ctx context.Context, url, dest string) (string, error)
}

// ToolCache stores completed installs across runs. Find only reports
// entries that went through MarkComplete.
type ToolCache interface {
	Find(key toolcache.Key) (string, bool)
	CacheDir(ctx context.Context, src string, key toolcache.Key) (string, error)
	MarkComplete(key toolcache.Key) error
}

// Config holds the Installer collaborators.
type Config struct {
	Profile    Profile
	Downloader Downloader
	ToolCache  ToolCache
	// TempDir receives the downloaded archive.
	TempDir string
	Logger  logging.Logger
	// Notifier receives user-facing messages; Logger.Info is used when nil.
	Notifier Notifier
}

// Installer drives a Profile through a complete install.
type Installer struct {
	profile Profile
	dl      Downloader
	cache   ToolCache
	tempDir string
	log     logging.Logger
	notify  Notifier
}

// NewInstaller validates cfg and creates an Installer.
func NewInstaller(cfg Config) (*Installer, error) {
	switch {
	case cfg.Profile == nil:
		return nil, errors.New("install: profile is required")
	case cfg.Downloader == nil:
		return nil, errors.New("install: downloader is required")
	case cfg.ToolCache == nil:
		return nil, errors.New("install: tool cache is required")
	case cfg.TempDir == "":
		return nil, errors.New("install: temp dir is required")
	}
	return &Installer{
		profile: cfg.Profile,
		dl:      cfg.Downloader,
		cache:   cfg.ToolCache,
		tempDir: cfg.TempDir,
		log:     logging.OrNop(cfg.Logger),
		notify:  notifierOr(cfg.Notifier, cfg.Logger),
	}, nil
}

// InstallIfNecessary returns the cached install when one exists and
// installs otherwise.
func (i *Installer) InstallIfNecessary(ctx context.Context) (InstallLocation, error) {
	if dir, ok := i.cache.Find(CacheKey); ok {
		i.notify.Info(fmt.Sprintf("Found in cache @ %s", dir))
		return i.profile.DescribeInstallLocation(dir), nil
	}
	return i.Install(ctx)
}

// Install performs a full install regardless of the cache. Each step's
// error is returned as is so callers can classify it with KindOf.
func (i *Installer) Install(ctx context.Context) (InstallLocation, error) {
	p := i.profile

	dest := filepath.Join(i.tempDir, p.ArchiveName())
	i.log.Debug("downloading", "url", p.DownloadURL(), "dest", dest)
	archivePath, err := i.dl.Download(ctx, p.DownloadURL(), dest)
	if err != nil {
		return InstallLocation{}, err
	}

	i.log.Debug("extracting", "archive", archivePath)
	extracted, err := p.Extract(ctx, archivePath)
	if err != nil {
		return InstallLocation{}, err
	}

	i.log.Debug("caching", "src", extracted, "key", CacheKey.String())
	dir, err := i.cache.CacheDir(ctx, extracted, CacheKey)
	if err != nil {
		return InstallLocation{}, err
	}

	i.log.Debug("installing dependencies", "platform", p.Platform().String())
	if err := p.InstallDependencies(ctx); err != nil {
		return InstallLocation{}, err
	}

	i.log.Debug("post install", "dir", dir)
	if err := p.PostInstall(ctx, dir); err != nil {
		return InstallLocation{}, err
	}

	exe := p.ExecutablePath(dir)
	i.log.Debug("verifying first run", "executable", exe)
	if err := p.VerifyFirstRun(ctx, exe); err != nil {
		return InstallLocation{}, err
	}

	if err := i.cache.MarkComplete(CacheKey); err != nil {
		return InstallLocation{}, err
	}

	return p.DescribeInstallLocation(dir), nil
}
