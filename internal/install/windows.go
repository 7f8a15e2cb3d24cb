package install

import (
	"context"
	"strings"

	"github.com/CyberAndrii/setup-steamcmd/internal/platform"
)

// exitCodeFirstRun is what steamcmd.exe returns after updating itself on
// its very first launch.
const exitCodeFirstRun = 7

type windowsProfile struct {
	base
}

func (p *windowsProfile) Platform() platform.ID {
	return platform.Windows
}

func (p *windowsProfile) ArchiveName() string {
	return "steamcmd.zip"
}

func (p *windowsProfile) DownloadURL() string {
	return p.downloadURL(p.ArchiveName())
}

func (p *windowsProfile) ExecutablePath(installDir string) string {
	return strings.TrimRight(toSlash(installDir), "/") + "/steamcmd.exe"
}

func (p *windowsProfile) Extract(ctx context.Context, archivePath string) (string, error) {
	return p.svc.Extractor.ExtractZip(ctx, archivePath, ToolName)
}

// PostInstall is a no-op: steamcmd.exe already has a stable name.
func (p *windowsProfile) PostInstall(ctx context.Context, installDir string) error {
	return nil
}

func (p *windowsProfile) VerifyFirstRun(ctx context.Context, executable string) error {
	return p.verifyExitCode(ctx, platform.Windows, executable, exitCodeFirstRun)
}

// DescribeInstallLocation puts the install directory itself on PATH, since
// there is no shim directory on Windows.
func (p *windowsProfile) DescribeInstallLocation(installDir string) InstallLocation {
	dir := toSlash(installDir)
	return InstallLocation{
		Directory:    dir,
		Executable:   p.ExecutablePath(installDir),
		BinDirectory: dir,
	}
}

// toSlash replaces every back-slash regardless of the host separator,
// unlike filepath.ToSlash.
func toSlash(p string) string {
	return strings.ReplaceAll(p, `\`, "/")
}
