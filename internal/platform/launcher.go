package platform

import (
	"context"
	"errors"
	"os"
	"os/exec"

	"github.com/m-mizutani/goerr/v2"

	"freshrss-update/internal/apperr"
	"freshrss-update/internal/logger"
)

// Runner runs a command to completion.
type Runner interface {
	Run(ctx context.Context, cmd Command) error
}

// ExecRunner runs commands with os/exec, attached to the terminal.
type ExecRunner struct{}

// Run starts cmd and waits for it to exit. A command that cannot be started
// fails with apperr.ErrLaunch; a non-zero exit status is only logged.
func (ExecRunner) Run(ctx context.Context, cmd Command) error {
	c := exec.CommandContext(ctx, cmd.Name, cmd.Args...)
	c.Stdin, c.Stdout, c.Stderr = os.Stdin, os.Stdout, os.Stderr

	logger.Debug("[DEBUG] Running command: %s\n", cmd)
	err := c.Run()

	var exitErr *exec.ExitError
	switch {
	case err == nil:
		return nil
	case errors.As(err, &exitErr):
		logger.Warn("[WARN] %s exited with status %d\n", cmd.Name, exitErr.ExitCode())
		return nil
	default:
		return goerr.Wrap(errors.Join(apperr.ErrLaunch, err), "failed to start command",
			goerr.V("command", cmd.String()))
	}
}

// Launcher performs the two external actions through a Resolver and a Runner.
// On an unsupported platform both actions print an advisory and succeed.
type Launcher struct {
	Resolver Resolver
	Runner   Runner
}

// NewLauncher returns a launcher that executes real processes.
func NewLauncher(r Resolver) *Launcher {
	return &Launcher{Resolver: r, Runner: ExecRunner{}}
}

// LaunchSyncTool opens project in FreeFileSync and blocks until the user closes it.
func (l *Launcher) LaunchSyncTool(ctx context.Context, project string) error {
	cmd, err := l.Resolver.SyncTool(project)
	if err != nil {
		return l.advise(err)
	}
	logger.Info("[INFO] Starting FreeFileSync, the update continues once it is closed\n")
	return l.Runner.Run(ctx, cmd)
}

// OpenWebsite opens url in the default browser. How long this blocks is up to
// the platform opener, which normally hands off to the browser and returns.
func (l *Launcher) OpenWebsite(ctx context.Context, url string) error {
	cmd, err := l.Resolver.OpenURL(url)
	if err != nil {
		return l.advise(err)
	}
	logger.Info("[INFO] Opening %s\n", url)
	return l.Runner.Run(ctx, cmd)
}

// advise swallows apperr.ErrUnsupportedPlatform after telling the user.
func (l *Launcher) advise(err error) error {
	if errors.Is(err, apperr.ErrUnsupportedPlatform) {
		logger.Warn("[WARN] Unsupported operating system: %s\n", l.Resolver.Name())
		return nil
	}
	return err
}
