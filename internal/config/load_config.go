package config

import (
	"errors"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/m-mizutani/goerr/v2"
	"gopkg.in/yaml.v3"
)

// ErrInvalidConfig is returned when the config file cannot be read or fails validation.
var ErrInvalidConfig = errors.New("invalid configuration")

// Default returns the configuration used when no file is given, rooted at home.
func Default(home string) Config {
	return Config{
		DownloadsDir:  filepath.Join(home, "Downloads"),
		TemplatePath:  filepath.Join(home, "Dokumente", "FreshRSS-Update-Template.ffs_gui"),
		Repository:    "FreshRSS/FreshRSS",
		ArchiveFormat: "zip",
		WebsiteURL:    "https://rss-reader.eu",
		SyncTool: SyncTool{
			WindowsExecutable: `C:\Program Files\FreeFileSync\FreeFileSync.exe`,
			FlatpakID:         "org.freefilesync.FreeFileSync",
		},
		Browser: Browser{
			WindowsShell: "pwsh",
			LinuxOpener:  "xdg-open",
		},
	}
}

// Overrides are command line values that win over the config file. Empty
// fields leave the loaded value alone.
type Overrides struct {
	DownloadsDir string
	TemplatePath string
}

// Load builds the configuration from the defaults for the current user and,
// when configFile is non-empty, overlays the YAML file found there, then the
// overrides. A named file that does not exist is an error; no file at all is not.
func Load(configFile string, o Overrides) (Config, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return Config{}, goerr.Wrap(err, "failed to determine home directory")
	}
	return LoadFrom(home, configFile, o)
}

// LoadFrom is Load with an explicit home directory.
func LoadFrom(home, configFile string, o Overrides) (Config, error) {
	cfg := Default(home)

	if configFile != "" {
		raw, err := os.ReadFile(configFile)
		if err != nil {
			return Config{}, goerr.Wrap(errors.Join(ErrInvalidConfig, err), "failed to read config file",
				goerr.V("path", configFile))
		}
		// Unmarshal onto the defaults so the file only needs the keys it changes
		if err := yaml.Unmarshal(raw, &cfg); err != nil {
			return Config{}, goerr.Wrap(errors.Join(ErrInvalidConfig, err), "failed to unmarshal config file",
				goerr.V("path", configFile))
		}
	}

	if o.DownloadsDir != "" {
		cfg.DownloadsDir = o.DownloadsDir
	}
	if o.TemplatePath != "" {
		cfg.TemplatePath = o.TemplatePath
	}

	cfg.DownloadsDir = expandHome(home, cfg.DownloadsDir)
	cfg.TemplatePath = expandHome(home, cfg.TemplatePath)

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks the struct tags of the configuration and the mirror URL placeholder.
func (c Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return goerr.Wrap(errors.Join(ErrInvalidConfig, err), "config validation failed")
	}
	if c.MirrorURL == "" {
		return nil
	}
	if !strings.Contains(c.MirrorURL, "{version}") {
		return goerr.Wrap(ErrInvalidConfig, "mirror_url must contain the {version} placeholder",
			goerr.V("mirror_url", c.MirrorURL))
	}
	u, err := url.Parse(strings.ReplaceAll(c.MirrorURL, "{version}", "0.0.0"))
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return goerr.Wrap(ErrInvalidConfig, "mirror_url must be an http(s) URL",
			goerr.V("mirror_url", c.MirrorURL))
	}
	if archiveExt(c.MirrorURL) == "" {
		return goerr.Wrap(ErrInvalidConfig, "mirror_url must end in a supported archive extension",
			goerr.V("mirror_url", c.MirrorURL))
	}
	return nil
}

// expandHome replaces a leading "~/" with the home directory.
func expandHome(home, path string) string {
	if path == "~" {
		return home
	}
	if strings.HasPrefix(path, "~/") {
		return filepath.Join(home, path[2:])
	}
	return path
}
