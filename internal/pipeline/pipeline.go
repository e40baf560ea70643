// Package pipeline runs one update: validate, fetch, extract, generate the
// FreeFileSync project, launch FreeFileSync, open the website. Steps run in
// that order, each blocking until done; the first failing step ends the run
// and files already written are left where they are.
package pipeline

import (
	"context"
	"errors"
	"fmt"

	"freshrss-update/internal/config"
	"freshrss-update/internal/ffs"
	"freshrss-update/internal/logger"
	"freshrss-update/internal/platform"
	"freshrss-update/internal/progress"
	"freshrss-update/internal/release"
	"freshrss-update/internal/version"
)

// Step names one stage of the run.
type Step string

const (
	StepValidate       Step = "Validate"
	StepFetch          Step = "Fetch"
	StepExtract        Step = "Extract"
	StepGenerateConfig Step = "GenerateConfig"
	StepLaunch         Step = "Launch"
	StepOpenWebsite    Step = "OpenWebsite"
)

// StepError is returned by Run and records which step failed.
type StepError struct {
	Step Step
	Err  error
}

func (e *StepError) Error() string {
	return fmt.Sprintf("%s: %v", e.Step, e.Err)
}

func (e *StepError) Unwrap() error {
	return e.Err
}

// Exit codes of the CLI, one per failing step.
const (
	ExitOK         = 0
	ExitValidation = 1
	ExitNetwork    = 2
	ExitExtraction = 3
	ExitTemplate   = 4
	ExitLaunch     = 5
)

// ExitCode maps an error returned by Run to the process exit code.
func ExitCode(err error) int {
	if err == nil {
		return ExitOK
	}
	var stepErr *StepError
	if !errors.As(err, &stepErr) {
		return ExitValidation
	}
	switch stepErr.Step {
	case StepValidate:
		return ExitValidation
	case StepFetch:
		return ExitNetwork
	case StepExtract:
		return ExitExtraction
	case StepGenerateConfig:
		return ExitTemplate
	default:
		return ExitLaunch
	}
}

// Options switch off the interactive tail of the run.
type Options struct {
	SkipLaunch  bool // do not start FreeFileSync
	SkipWebsite bool // do not open the website
}

// Updater holds the collaborators of a run. Build it with New; tests swap
// the Downloader client and the Launcher runner.
type Updater struct {
	Config     config.Config
	Downloader *release.Downloader
	Launcher   *platform.Launcher
	Progress   progress.Indicator
	Options    Options
}

// New wires an Updater for cfg on the platform named by goos.
func New(cfg config.Config, goos string, opts Options) *Updater {
	return &Updater{
		Config:     cfg,
		Downloader: release.NewDownloader(nil),
		Launcher:   platform.NewLauncher(platform.Detect(goos, cfg)),
		Progress:   progress.New(),
		Options:    opts,
	}
}

// Run performs the update for v. The returned error is a *StepError.
func (u *Updater) Run(ctx context.Context, v string) error {
	if err := version.Validate(v); err != nil {
		return &StepError{Step: StepValidate, Err: err}
	}
	if !version.Canonical(v) {
		logger.Warn("[WARN] %q is accepted but carries more than major.minor.patch\n", v)
	}

	cfg := u.Config
	archive := cfg.ArchivePath(v)
	project := cfg.ProjectPath(v)

	// Fetch
	url := cfg.ArchiveURL(v)
	logger.Info("[INFO] Downloading %s to %s\n", url, archive)
	if err := u.fetch(ctx, url, archive); err != nil {
		return &StepError{Step: StepFetch, Err: err}
	}

	// Extract
	logger.Info("[INFO] Extracting %s\n", archive)
	top, err := release.Extract(archive, cfg.DownloadsDir)
	if err != nil {
		return &StepError{Step: StepExtract, Err: err}
	}
	logger.Debug("[DEBUG] Extracted release to %s\n", top)

	// Generate the FreeFileSync project
	logger.Info("[INFO] Writing %s\n", project)
	if err := ffs.Generate(cfg.TemplatePath, project, v); err != nil {
		return &StepError{Step: StepGenerateConfig, Err: err}
	}

	if u.Options.SkipLaunch {
		logger.Info("[INFO] Skipping FreeFileSync\n")
	} else if err := u.Launcher.LaunchSyncTool(ctx, project); err != nil {
		return &StepError{Step: StepLaunch, Err: err}
	}

	if u.Options.SkipWebsite {
		logger.Info("[INFO] Skipping website\n")
	} else if err := u.Launcher.OpenWebsite(ctx, cfg.WebsiteURL); err != nil {
		return &StepError{Step: StepOpenWebsite, Err: err}
	}

	logger.Info("[INFO] FreshRSS %s update finished\n", v)
	return nil
}

func (u *Updater) fetch(ctx context.Context, url, archive string) error {
	ind := u.Progress
	if ind == nil {
		ind = progress.Silent{}
	}
	ind.Start("Downloading")
	defer ind.Stop()
	return u.Downloader.Download(ctx, url, archive, ind.Update)
}
