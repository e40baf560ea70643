package cmd

import (
	"bytes"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"freshrss-update/internal/logger"
	"freshrss-update/internal/pipeline"
)

// execute runs the command tree the way main does and captures both streams.
// The command tree and its flags are package globals, so these tests are not parallel.
func execute(t *testing.T, args ...string) (int, string, string) {
	t.Helper()
	return executeIn(t, t.TempDir(), args...)
}

// executeIn is execute with home as the user's home directory.
func executeIn(t *testing.T, home string, args ...string) (int, string, string) {
	t.Helper()

	debug, configPath, downloadsDir, templatePath, noLaunch, noWebsite = false, "", "", "", false, false
	t.Setenv("HOME", home)
	t.Setenv("USERPROFILE", home)

	var stdout, stderr bytes.Buffer
	rootCmd.SetOut(&stdout)
	rootCmd.SetErr(&stderr)
	prev := logger.SetErrorOutput(&stderr)
	t.Cleanup(func() {
		logger.SetErrorOutput(prev)
		rootCmd.SetOut(nil)
		rootCmd.SetErr(nil)
	})

	code := run(args)
	return code, stdout.String(), stderr.String()
}

func TestPaths(t *testing.T) {
	dir := t.TempDir()
	tmpl := filepath.Join(dir, "template.ffs_gui")

	code, out, _ := execute(t, "paths", "1.2.3", "--downloads-dir", dir, "--template", tmpl)
	require.Equal(t, pipeline.ExitOK, code)

	assert.Contains(t, out, "archive url: https://github.com/FreshRSS/FreshRSS/archive/refs/tags/1.2.3.zip")
	assert.Contains(t, out, filepath.Join(dir, "FreshRSS-1.2.3.zip"))
	assert.Contains(t, out, filepath.Join(dir, "FreshRSS-1.2.3 Update.ffs_gui"))
	assert.Contains(t, out, "template:    "+tmpl)
	assert.Contains(t, out, "website:     https://rss-reader.eu")
}

func TestPaths_ExpandsHomeInFlags(t *testing.T) {
	home := t.TempDir()

	code, out, _ := executeIn(t, home, "paths", "1.2.3", "--downloads-dir", "~/dl", "--template", "~/t.ffs_gui")
	require.Equal(t, pipeline.ExitOK, code)

	assert.Contains(t, out, "archive:     "+filepath.Join(home, "dl", "FreshRSS-1.2.3.zip"))
	assert.Contains(t, out, "template:    "+filepath.Join(home, "t.ffs_gui"))
	assert.NotContains(t, out, "~")
}

func TestRun_InvalidVersion(t *testing.T) {
	dir := t.TempDir()

	code, _, errOut := execute(t, "9.9", "--downloads-dir", dir)
	assert.Equal(t, pipeline.ExitValidation, code)
	assert.Contains(t, errOut, "Validate failed")
	assert.Contains(t, errOut, "major.minor.patch")
}

func TestRun_UsageErrors(t *testing.T) {
	tests := map[string][]string{
		"no version":        {},
		"too many versions": {"1.2.3", "1.2.4"},
		"missing config":    {"--config", "/nonexistent/freshrss-update.yaml", "paths", "1.2.3"},
		"paths bad version": {"paths", "one.two.three"},
	}

	for name, args := range tests {
		t.Run(name, func(t *testing.T) {
			code, _, errOut := execute(t, args...)
			assert.Equal(t, pipeline.ExitValidation, code)
			assert.Contains(t, errOut, "[ERROR]")
		})
	}
}

func TestDoctor(t *testing.T) {
	dir := t.TempDir()

	code, out, _ := execute(t, "doctor", "--downloads-dir", dir, "--template", filepath.Join(dir, "missing.ffs_gui"))
	require.Equal(t, pipeline.ExitOK, code)

	assert.Contains(t, out, "host:")
	assert.Contains(t, out, "platform:")
	assert.Contains(t, out, dir+" (ok)")
	assert.Contains(t, out, "missing.ffs_gui (missing)")
}
