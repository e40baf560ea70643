package pipeline

import (
	"archive/zip"
	"bytes"
	"context"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"freshrss-update/internal/apperr"
	"freshrss-update/internal/config"
	"freshrss-update/internal/platform"
	"freshrss-update/internal/progress"
	"freshrss-update/internal/release"
)

const template = `<?xml version="1.0" encoding="utf-8"?>
<FreeFileSync XmlType="GUI" XmlFormat="17">
    <FolderPairs>
        <Pair>
            <Left>{downloads}/FreshRSS-{version}</Left>
            <Right>/srv/www/freshrss</Right>
        </Pair>
    </FolderPairs>
</FreeFileSync>
`

// archiveTransport answers every request with a canned response and records the URLs asked for.
type archiveTransport struct {
	status      int
	contentType string
	body        []byte
	requested   []string
}

func (a *archiveTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	a.requested = append(a.requested, req.URL.String())
	header := http.Header{}
	if a.contentType != "" {
		header.Set("Content-Type", a.contentType)
	}
	return &http.Response{
		StatusCode:    a.status,
		Header:        header,
		Body:          io.NopCloser(bytes.NewReader(a.body)),
		ContentLength: int64(len(a.body)),
		Request:       req,
	}, nil
}

type recordingRunner struct {
	ran []platform.Command
}

func (r *recordingRunner) Run(_ context.Context, cmd platform.Command) error {
	r.ran = append(r.ran, cmd)
	return nil
}

func releaseZip(t *testing.T, v string) []byte {
	t.Helper()

	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	for name, body := range map[string]string{
		"FreshRSS-" + v + "/":                  "",
		"FreshRSS-" + v + "/index.php":         "<?php // FreshRSS",
		"FreshRSS-" + v + "/constants.php":     "<?php const FRESHRSS_VERSION = '" + v + "';",
		"FreshRSS-" + v + "/app/":              "",
		"FreshRSS-" + v + "/app/actualize.php": "<?php",
	} {
		w, err := zw.Create(name)
		require.NoError(t, err)
		_, err = w.Write([]byte(body))
		require.NoError(t, err)
	}
	require.NoError(t, zw.Close())
	return buf.Bytes()
}

type fixture struct {
	home      string
	cfg       config.Config
	transport *archiveTransport
	runner    *recordingRunner
	updater   *Updater
}

func newFixture(t *testing.T, goos string) *fixture {
	t.Helper()

	home := t.TempDir()
	cfg := config.Default(home)
	require.NoError(t, os.MkdirAll(cfg.DownloadsDir, 0o755))
	require.NoError(t, os.MkdirAll(filepath.Dir(cfg.TemplatePath), 0o755))
	// {downloads} is not a placeholder the generator knows, so it is filled in here
	tmpl := strings.ReplaceAll(template, "{downloads}", cfg.DownloadsDir)
	require.NoError(t, os.WriteFile(cfg.TemplatePath, []byte(tmpl), 0o644))

	transport := &archiveTransport{status: http.StatusOK, contentType: "application/zip", body: releaseZip(t, "9.9.9")}
	runner := &recordingRunner{}

	return &fixture{
		home:      home,
		cfg:       cfg,
		transport: transport,
		runner:    runner,
		updater: &Updater{
			Config:     cfg,
			Downloader: release.NewDownloader(&http.Client{Transport: transport}),
			Launcher:   &platform.Launcher{Resolver: platform.Detect(goos, cfg), Runner: runner},
			Progress:   progress.Silent{},
		},
	}
}

func TestUpdater_Run(t *testing.T) {
	f := newFixture(t, "linux")

	err := f.updater.Run(context.Background(), "9.9.9")
	require.NoError(t, err)
	assert.Equal(t, ExitOK, ExitCode(err))

	assert.Equal(t, []string{"https://github.com/FreshRSS/FreshRSS/archive/refs/tags/9.9.9.zip"}, f.transport.requested)

	downloads := filepath.Join(f.home, "Downloads")
	assert.FileExists(t, filepath.Join(downloads, "FreshRSS-9.9.9.zip"))
	assert.DirExists(t, filepath.Join(downloads, "FreshRSS-9.9.9"))
	assert.FileExists(t, filepath.Join(downloads, "FreshRSS-9.9.9", "index.php"))
	assert.FileExists(t, filepath.Join(downloads, "FreshRSS-9.9.9", "app", "actualize.php"))

	project := filepath.Join(downloads, "FreshRSS-9.9.9 Update.ffs_gui")
	raw, err := os.ReadFile(project)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(raw), `<?xml version="1.0" encoding="utf-8"?>`+"\n"))
	assert.Contains(t, string(raw), "<Left>"+filepath.Join(downloads, "FreshRSS-9.9.9")+"</Left>")

	assert.Equal(t, []platform.Command{
		{Name: "flatpak", Args: []string{"run", "org.freefilesync.FreeFileSync", project}},
		{Name: "xdg-open", Args: []string{"https://rss-reader.eu"}},
	}, f.runner.ran)
}

func TestUpdater_Run_Windows(t *testing.T) {
	f := newFixture(t, "windows")

	require.NoError(t, f.updater.Run(context.Background(), "9.9.9"))

	require.Len(t, f.runner.ran, 2)
	assert.Equal(t, `C:\Program Files\FreeFileSync\FreeFileSync.exe`, f.runner.ran[0].Name)
	assert.Equal(t, "pwsh", f.runner.ran[1].Name)
}

func TestUpdater_Run_UnsupportedPlatform(t *testing.T) {
	f := newFixture(t, "darwin")

	err := f.updater.Run(context.Background(), "9.9.9")
	require.NoError(t, err)
	assert.Equal(t, ExitOK, ExitCode(err))

	assert.Empty(t, f.runner.ran)
	assert.FileExists(t, f.cfg.ProjectPath("9.9.9"), "file steps still ran")
}

func TestUpdater_Run_SkipOptions(t *testing.T) {
	f := newFixture(t, "linux")
	f.updater.Options = Options{SkipLaunch: true, SkipWebsite: true}

	require.NoError(t, f.updater.Run(context.Background(), "9.9.9"))
	assert.Empty(t, f.runner.ran)
	assert.FileExists(t, f.cfg.ProjectPath("9.9.9"))
}

func TestUpdater_Run_Failures(t *testing.T) {
	tests := map[string]struct {
		version  string
		setup    func(t *testing.T, f *fixture)
		wantStep Step
		wantErr  error
		wantCode int
	}{
		"invalid version": {
			version:  "9.9",
			wantStep: StepValidate,
			wantErr:  apperr.ErrInvalidVersion,
			wantCode: ExitValidation,
		},
		"unknown tag": {
			version: "9.9.9",
			setup: func(t *testing.T, f *fixture) {
				f.transport.status = http.StatusNotFound
				f.transport.contentType = "text/html; charset=utf-8"
				f.transport.body = []byte("<html>Not Found</html>")
			},
			wantStep: StepFetch,
			wantErr:  apperr.ErrNetwork,
			wantCode: ExitNetwork,
		},
		"downloads directory missing": {
			version: "9.9.9",
			setup: func(t *testing.T, f *fixture) {
				require.NoError(t, os.RemoveAll(f.cfg.DownloadsDir))
			},
			wantStep: StepFetch,
			wantErr:  apperr.ErrFileSystem,
			wantCode: ExitNetwork,
		},
		"corrupt archive": {
			version: "9.9.9",
			setup: func(t *testing.T, f *fixture) {
				f.transport.body = []byte("definitely not a zip")
			},
			wantStep: StepExtract,
			wantErr:  apperr.ErrArchiveFormat,
			wantCode: ExitExtraction,
		},
		"template without FolderPairs": {
			version: "9.9.9",
			setup: func(t *testing.T, f *fixture) {
				require.NoError(t, os.WriteFile(f.cfg.TemplatePath, []byte(`<FreeFileSync/>`), 0o644))
			},
			wantStep: StepGenerateConfig,
			wantErr:  apperr.ErrMalformedTemplate,
			wantCode: ExitTemplate,
		},
		"template with empty Left": {
			version: "9.9.9",
			setup: func(t *testing.T, f *fixture) {
				empty := `<FreeFileSync><FolderPairs><Pair><Left/></Pair></FolderPairs></FreeFileSync>`
				require.NoError(t, os.WriteFile(f.cfg.TemplatePath, []byte(empty), 0o644))
			},
			wantStep: StepGenerateConfig,
			wantErr:  apperr.ErrMalformedTemplate,
			wantCode: ExitTemplate,
		},
		"template missing": {
			version: "9.9.9",
			setup: func(t *testing.T, f *fixture) {
				require.NoError(t, os.Remove(f.cfg.TemplatePath))
			},
			wantStep: StepGenerateConfig,
			wantErr:  apperr.ErrFileSystem,
			wantCode: ExitTemplate,
		},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			f := newFixture(t, "linux")
			if tt.setup != nil {
				tt.setup(t, f)
			}

			err := f.updater.Run(context.Background(), tt.version)
			require.Error(t, err)

			var stepErr *StepError
			require.ErrorAs(t, err, &stepErr)
			assert.Equal(t, tt.wantStep, stepErr.Step)
			assert.ErrorIs(t, err, tt.wantErr)
			assert.Equal(t, tt.wantCode, ExitCode(err))
			assert.Contains(t, err.Error(), string(tt.wantStep))

			// The run stops at the failing step
			assert.Empty(t, f.runner.ran)
		})
	}
}

func TestUpdater_Run_InvalidVersionTouchesNothing(t *testing.T) {
	f := newFixture(t, "linux")

	require.Error(t, f.updater.Run(context.Background(), "latest"))
	assert.Empty(t, f.transport.requested)

	entries, err := os.ReadDir(f.cfg.DownloadsDir)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestExitCode(t *testing.T) {
	t.Parallel()

	assert.Equal(t, ExitOK, ExitCode(nil))
	assert.Equal(t, ExitLaunch, ExitCode(&StepError{Step: StepLaunch, Err: apperr.ErrLaunch}))
	assert.Equal(t, ExitLaunch, ExitCode(&StepError{Step: StepOpenWebsite, Err: apperr.ErrLaunch}))
	assert.Equal(t, ExitValidation, ExitCode(apperr.ErrInvalidVersion))
}
