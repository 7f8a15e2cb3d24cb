package install

import (
	"context"
	"fmt"
	"path"

	"github.com/spf13/afero"
)

// posix holds the steps Linux and macOS share: a tarball with a
// steamcmd.sh entry point and a bin/steamcmd shim.
type posix struct {
	base
	archive string
}

func (p posix) ArchiveName() string {
	return p.archive
}

func (p posix) DownloadURL() string {
	return p.downloadURL(p.archive)
}

func (p posix) ExecutablePath(installDir string) string {
	return path.Join(installDir, "steamcmd.sh")
}

func (p posix) Extract(ctx context.Context, archivePath string) (string, error) {
	return p.svc.Extractor.ExtractTar(ctx, archivePath, ToolName)
}

// PostInstall writes bin/steamcmd, a shim that execs steamcmd.sh, so the
// tool can be called without the .sh extension once bin is on PATH.
func (p posix) PostInstall(ctx context.Context, installDir string) error {
	binDir := path.Join(installDir, "bin")
	shim := path.Join(binDir, ToolName)

	if err := p.svc.FS.MkdirAll(binDir, 0o755); err != nil {
		return fmt.Errorf("create bin dir: %w", err)
	}
	if err := afero.WriteFile(p.svc.FS, shim, []byte(shimScript(p.ExecutablePath(installDir))), 0o755); err != nil {
		return fmt.Errorf("write shim: %w", err)
	}
	if err := p.svc.FS.Chmod(shim, 0o755); err != nil {
		return fmt.Errorf("chmod shim: %w", err)
	}

	p.svc.Log.Debug("wrote shim", "path", shim)
	return nil
}

func (p posix) DescribeInstallLocation(installDir string) InstallLocation {
	return InstallLocation{
		Directory:    installDir,
		Executable:   p.ExecutablePath(installDir),
		BinDirectory: path.Join(installDir, "bin"),
	}
}

func shimScript(target string) string {
	return fmt.Sprintf("#!/bin/bash\nexec \"%s\" \"$@\"\n", target)
}
