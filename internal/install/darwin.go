package install

import (
	"context"

	"github.com/CyberAndrii/setup-steamcmd/internal/platform"
)

type darwinProfile struct {
	posix
}

func (p *darwinProfile) Platform() platform.ID {
	return platform.Darwin
}

func (p *darwinProfile) VerifyFirstRun(ctx context.Context, executable string) error {
	return p.verifyExitCode(ctx, platform.Darwin, executable)
}
