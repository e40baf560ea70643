package cmd

import (
	"errors"
	"fmt"
	"io"
	"os"
	"runtime"

	"github.com/spf13/cobra"

	"freshrss-update/internal/apperr"
	"freshrss-update/internal/platform"
)

// doctorCmd checks the machine before an update: platform, commands, files.
var doctorCmd = &cobra.Command{
	Use:   "doctor",
	Short: "Check the platform, launch commands and required files",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		resolver := platform.Detect(runtime.GOOS, cfg)

		fmt.Fprintf(out, "host:       %s\n", platform.HostDescription())
		fmt.Fprintf(out, "platform:   %s\n", resolver.Name())

		if sync, err := resolver.SyncTool("<project>"); err == nil {
			fmt.Fprintf(out, "sync tool:  %s\n", sync)
		} else if errors.Is(err, apperr.ErrUnsupportedPlatform) {
			fmt.Fprintf(out, "sync tool:  unsupported on this platform\n")
		}
		if open, err := resolver.OpenURL(cfg.WebsiteURL); err == nil {
			fmt.Fprintf(out, "browser:    %s\n", open)
		} else if errors.Is(err, apperr.ErrUnsupportedPlatform) {
			fmt.Fprintf(out, "browser:    unsupported on this platform\n")
		}

		checkPath(out, "downloads:", cfg.DownloadsDir, true)
		checkPath(out, "template:", cfg.TemplatePath, false)
		return nil
	},
}

// checkPath prints whether path exists and has the expected kind.
func checkPath(w io.Writer, label, path string, wantDir bool) {
	info, err := os.Stat(path)
	switch {
	case err != nil:
		fmt.Fprintf(w, "%-11s %s (missing)\n", label, path)
	case info.IsDir() != wantDir:
		fmt.Fprintf(w, "%-11s %s (wrong type)\n", label, path)
	default:
		fmt.Fprintf(w, "%-11s %s (ok)\n", label, path)
	}
}

func init() {
	rootCmd.AddCommand(doctorCmd)
}
