package config

import (
	"fmt"
	"path"
	"path/filepath"
	"strings"
)

// archiveExtensions lists the archive suffixes the extractor understands.
var archiveExtensions = []string{".tar.bz2", ".tar.gz", ".tar.xz", ".tgz", ".tar", ".zip", ".7z"}

// The methods below assume the version has already passed version.Validate.

// ArchiveURL returns the download URL of the tag archive for version.
func (c Config) ArchiveURL(version string) string {
	if c.MirrorURL != "" {
		return strings.ReplaceAll(c.MirrorURL, "{version}", version)
	}
	return fmt.Sprintf("https://github.com/%s/archive/refs/tags/%s.%s", c.Repository, version, c.ArchiveFormat)
}

// ArchivePath returns where the downloaded archive is stored, e.g. ~/Downloads/FreshRSS-1.24.0.zip.
// version.Validate only checks the leading major.minor.patch, so anything after
// it is joined as is: "1.2.3/../../x" yields a path outside DownloadsDir.
func (c Config) ArchivePath(version string) string {
	ext := archiveExt(c.ArchiveURL(version))
	return filepath.Join(c.DownloadsDir, fmt.Sprintf("%s-%s%s", ProjectName, version, ext))
}

// ProjectPath returns the generated FreeFileSync project, e.g. ~/Downloads/FreshRSS-1.24.0 Update.ffs_gui.
func (c Config) ProjectPath(version string) string {
	return filepath.Join(c.DownloadsDir, fmt.Sprintf("%s-%s Update.ffs_gui", ProjectName, version))
}

// archiveExt returns the archive suffix of a URL, or "" when it has none we know.
func archiveExt(rawURL string) string {
	// Drop query and fragment so mirrors with signed URLs still resolve
	if i := strings.IndexAny(rawURL, "?#"); i >= 0 {
		rawURL = rawURL[:i]
	}
	base := strings.ToLower(path.Base(rawURL))
	for _, ext := range archiveExtensions {
		if strings.HasSuffix(base, ext) {
			return ext
		}
	}
	return ""
}
