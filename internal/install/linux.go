package install

import (
	"context"
	"fmt"

	"github.com/CyberAndrii/setup-steamcmd/internal/platform"
	"github.com/CyberAndrii/setup-steamcmd/internal/runner"
)

const dpkgQuery = "/usr/bin/dpkg-query"

type linuxProfile struct {
	posix
	dependencies []string
}

func (p *linuxProfile) Platform() platform.ID {
	return platform.Linux
}

func (p *linuxProfile) VerifyFirstRun(ctx context.Context, executable string) error {
	return p.verifyExitCode(ctx, platform.Linux, executable)
}

// InstallDependencies installs the 32-bit runtime packages with apt. When
// refreshing or installing fails, each package is checked with dpkg-query
// instead, since a runner image may already ship them while apt itself is
// unusable (no network, broken mirror, no sudo).
func (p *linuxProfile) InstallDependencies(ctx context.Context) error {
	if len(p.dependencies) == 0 {
		return nil
	}

	if host := p.svc.Host; host != nil && knownFamily(host.Family) && !host.IsDebianFamily() {
		p.svc.Log.Warn("distribution is not Debian based, apt-get may be unavailable",
			"platform", host.Platform, "family", host.Family)
	}

	if p.aptGet(ctx, "update") {
		if p.aptGet(ctx, append([]string{"install"}, p.dependencies...)...) {
			return nil
		}
	}

	var failures []error
	for _, dep := range p.dependencies {
		if err := p.checkInstalled(ctx, dep); err != nil {
			failures = append(failures, err)
		}
	}
	if len(failures) > 0 {
		return &DependencyError{Failures: failures}
	}
	return nil
}

// aptGet runs sudo apt-get --yes <args> and reports whether it exited 0.
func (p *linuxProfile) aptGet(ctx context.Context, args ...string) bool {
	argv := append([]string{"apt-get", "--yes"}, args...)
	code, err := p.svc.Runner.Exec(ctx, "sudo", argv, runner.Options{IgnoreReturnCode: true})
	if err != nil {
		p.svc.Log.Debug("apt-get could not be started", "args", args, "error", err)
		return false
	}
	if code != 0 {
		p.svc.Log.Debug("apt-get failed", "args", args, "code", code)
		return false
	}
	return true
}

func (p *linuxProfile) checkInstalled(ctx context.Context, dep string) error {
	args := []string{"--show", "--showformat=${db:Status-Status}\\n", dep}
	code, err := p.svc.Runner.Exec(ctx, dpkgQuery, args, runner.Options{IgnoreReturnCode: true})
	if err != nil {
		return &PackageError{Package: dep, Err: err}
	}
	if code != 0 {
		return &PackageError{Package: dep, Err: &runner.ExitError{Command: dpkgQuery, Code: code}}
	}
	p.svc.Notify.Info(fmt.Sprintf("%s was already installed!", dep))
	return nil
}

func knownFamily(family string) bool {
	return family != "" && family != platform.FamilyUnknown
}
