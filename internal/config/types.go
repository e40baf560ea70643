package config

// ProjectName prefixes every file the updater writes into the downloads directory.
const ProjectName = "FreshRSS"

// Config holds every location and command the update run derives from.
// It is normally built by Load, which starts from Default and overlays an
// optional YAML file; command line flags are applied on top by the cmd package.
type Config struct {
	DownloadsDir  string `yaml:"downloads_dir" validate:"required"`        // Where the archive, the extracted tree and the generated project land
	TemplatePath  string `yaml:"template_path" validate:"required"`        // FreeFileSync template containing the {version} placeholder
	Repository    string `yaml:"repository" validate:"required,contains=/"` // GitHub "owner/name" the tag archive is fetched from
	ArchiveFormat string `yaml:"archive_format" validate:"oneof=zip tar.gz"` // Tag archive flavour offered by GitHub
	MirrorURL     string `yaml:"mirror_url"`                                // Optional mirror URL template containing {version}
	WebsiteURL    string `yaml:"website_url" validate:"required,url"`        // Page opened after the sync tool closes

	SyncTool SyncTool `yaml:"sync_tool"`
	Browser  Browser  `yaml:"browser"`
}

// SyncTool describes how FreeFileSync is started on each supported platform.
type SyncTool struct {
	WindowsExecutable string `yaml:"windows_executable" validate:"required"` // Absolute path of FreeFileSync.exe
	FlatpakID         string `yaml:"flatpak_id" validate:"required"`         // Flatpak application id used on Linux
}

// Browser describes how the website is opened.
type Browser struct {
	WindowsShell string `yaml:"windows_shell" validate:"required"` // PowerShell binary that runs Start-Process
	LinuxOpener  string `yaml:"linux_opener" validate:"required"`  // Desktop opener, normally xdg-open
}
