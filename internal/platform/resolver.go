// Package platform maps the two external actions of an update run, starting
// FreeFileSync and opening the status page, onto concrete commands for the
// host operating system, and runs them.
package platform

import (
	"strings"

	"github.com/m-mizutani/goerr/v2"

	"freshrss-update/internal/apperr"
	"freshrss-update/internal/config"
)

// Command is a program and its arguments, run without a shell.
type Command struct {
	Name string
	Args []string
}

// String renders the command for logs.
func (c Command) String() string {
	return strings.Join(append([]string{c.Name}, c.Args...), " ")
}

// Resolver turns a logical action into the command that performs it on one platform.
type Resolver interface {
	// Name is the platform name shown to the user.
	Name() string
	// SyncTool returns the command that opens project in FreeFileSync.
	SyncTool(project string) (Command, error)
	// OpenURL returns the command that opens url in the default browser.
	OpenURL(url string) (Command, error)
}

// Detect picks the resolver for goos (a runtime.GOOS value).
func Detect(goos string, cfg config.Config) Resolver {
	switch goos {
	case "windows":
		return Windows{Executable: cfg.SyncTool.WindowsExecutable, Shell: cfg.Browser.WindowsShell}
	case "linux":
		return Linux{FlatpakID: cfg.SyncTool.FlatpakID, Opener: cfg.Browser.LinuxOpener}
	default:
		return Unsupported{OS: goos}
	}
}

// Windows starts FreeFileSync from its install path and opens URLs through PowerShell.
type Windows struct {
	Executable string // e.g. C:\Program Files\FreeFileSync\FreeFileSync.exe
	Shell      string // pwsh or powershell
}

// Name returns "Windows".
func (Windows) Name() string { return "Windows" }

// SyncTool runs the FreeFileSync executable with project as its only argument.
func (w Windows) SyncTool(project string) (Command, error) {
	return Command{Name: w.Executable, Args: []string{project}}, nil
}

// OpenURL hands url to Start-Process, which opens it in the default browser.
func (w Windows) OpenURL(url string) (Command, error) {
	return Command{Name: w.Shell, Args: []string{"-Command", "Start-Process", url}}, nil
}

// Linux starts the FreeFileSync flatpak and opens URLs with the desktop opener.
type Linux struct {
	FlatpakID string // e.g. org.freefilesync.FreeFileSync
	Opener    string // xdg-open
}

// Name returns "Linux".
func (Linux) Name() string { return "Linux" }

// SyncTool runs the FreeFileSync flatpak with project as its argument.
func (l Linux) SyncTool(project string) (Command, error) {
	return Command{Name: "flatpak", Args: []string{"run", l.FlatpakID, project}}, nil
}

// OpenURL passes url to the desktop opener.
func (l Linux) OpenURL(url string) (Command, error) {
	return Command{Name: l.Opener, Args: []string{url}}, nil
}

// Unsupported is every other platform; both actions report apperr.ErrUnsupportedPlatform.
type Unsupported struct {
	OS string
}

// Name returns the operating system as reported by runtime.GOOS.
func (u Unsupported) Name() string { return u.OS }

// SyncTool always fails with apperr.ErrUnsupportedPlatform.
func (u Unsupported) SyncTool(string) (Command, error) {
	return Command{}, goerr.Wrap(apperr.ErrUnsupportedPlatform, "no sync tool command for this platform",
		goerr.V("os", u.OS))
}

// OpenURL always fails with apperr.ErrUnsupportedPlatform.
func (u Unsupported) OpenURL(string) (Command, error) {
	return Command{}, goerr.Wrap(apperr.ErrUnsupportedPlatform, "no browser command for this platform",
		goerr.V("os", u.OS))
}
