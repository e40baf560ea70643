package cmd

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"runtime"

	"github.com/spf13/cobra"

	"freshrss-update/internal/config"
	"freshrss-update/internal/logger"
	"freshrss-update/internal/pipeline"
)

// debug flag indicates whether debug logging should be enabled.
// It can be toggled via the `--debug` command-line flag.
var debug bool

// configPath points at an optional YAML file overriding the defaults.
var configPath string

// Per-run overrides that win over the config file.
var (
	downloadsDir string
	templatePath string
	noLaunch     bool
	noWebsite    bool
)

// rootCmd downloads, unpacks and stages one FreshRSS release.
var rootCmd = &cobra.Command{
	Use:   "freshrss-update <version>",
	Short: "Download a FreshRSS release and hand it to FreeFileSync",
	Long: `Downloads the FreshRSS source archive for the given tag from GitHub,
extracts it next to the archive, writes a FreeFileSync project from your
template with the version filled in, starts FreeFileSync and, once it is
closed, opens the FreshRSS website.`,
	Example:       "  freshrss-update 1.24.0",
	Args:          cobra.ExactArgs(1),
	SilenceUsage:  true,
	SilenceErrors: true,

	// PersistentPreRun is a hook that runs before any subcommand.
	// Here, we initialize the logger based on the debug flag.
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		logger.Init(debug)
	},

	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		updater := pipeline.New(cfg, runtime.GOOS, pipeline.Options{
			SkipLaunch:  noLaunch,
			SkipWebsite: noWebsite,
		})
		return updater.Run(cmd.Context(), args[0])
	},
}

// loadConfig reads the config file, if any, and applies the flag overrides.
func loadConfig() (config.Config, error) {
	cfg, err := config.Load(configPath, config.Overrides{
		DownloadsDir: downloadsDir,
		TemplatePath: templatePath,
	})
	if err != nil {
		return config.Config{}, err
	}
	logger.Debug("[DEBUG] Downloads directory: %s\n", cfg.DownloadsDir)
	logger.Debug("[DEBUG] Template: %s\n", cfg.TemplatePath)
	return cfg, nil
}

func init() {
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "Enable debug logging")
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "Path to a YAML configuration file")
	rootCmd.PersistentFlags().StringVar(&downloadsDir, "downloads-dir", "", "Directory receiving the archive and the project (default ~/Downloads)")
	rootCmd.PersistentFlags().StringVar(&templatePath, "template", "", "FreeFileSync template containing {version}")

	rootCmd.Flags().BoolVar(&noLaunch, "no-launch", false, "Do not start FreeFileSync")
	rootCmd.Flags().BoolVar(&noWebsite, "no-website", false, "Do not open the website")
}

// Execute runs the CLI and exits with the code of the failing step.
func Execute() {
	os.Exit(run(os.Args[1:]))
}

// run executes the command tree with args and returns the exit code.
func run(args []string) int {
	// Ctrl-C cancels the download and stops a running child process
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	rootCmd.SetArgs(args)
	err := rootCmd.ExecuteContext(ctx)
	if err == nil {
		return pipeline.ExitOK
	}

	var stepErr *pipeline.StepError
	if errors.As(err, &stepErr) {
		logger.Error("[ERROR] %s failed: %v\n", stepErr.Step, stepErr.Err)
		return pipeline.ExitCode(err)
	}

	// Usage mistakes, a rejected version outside the pipeline and a broken config file
	logger.Error("[ERROR] %v\n", err)
	return pipeline.ExitValidation
}
