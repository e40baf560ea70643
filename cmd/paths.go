package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"freshrss-update/internal/version"
)

// pathsCmd prints what an update to <version> would fetch and write, without doing it.
var pathsCmd = &cobra.Command{
	Use:   "paths <version>",
	Short: "Show the URL and files an update would use",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		v := args[0]
		if err := version.Validate(v); err != nil {
			return err
		}
		cfg, err := loadConfig()
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "archive url: %s\n", cfg.ArchiveURL(v))
		fmt.Fprintf(out, "archive:     %s\n", cfg.ArchivePath(v))
		fmt.Fprintf(out, "extract to:  %s\n", cfg.DownloadsDir)
		fmt.Fprintf(out, "template:    %s\n", cfg.TemplatePath)
		fmt.Fprintf(out, "project:     %s\n", cfg.ProjectPath(v))
		fmt.Fprintf(out, "website:     %s\n", cfg.WebsiteURL)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(pathsCmd)
}
