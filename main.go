package main

import (
	"freshrss-update/cmd" // CLI commands and exit code handling
)

// main is the program entry point.
// It delegates to cmd.Execute() which parses the command line, runs the
// update and exits with the code of the step that failed, if any.
//
// freshrss-update stages a new FreshRSS release for a self-hosted instance:
//   - Downloads the source archive of a release tag from GitHub into ~/Downloads
//   - Extracts it next to the archive
//   - Writes a FreeFileSync project from the user's template, with the version
//     filled into the left folder of the first folder pair
//   - Starts FreeFileSync with that project and waits until the user closes it
//   - Opens the FreshRSS website so the update can be checked
//
// Exit codes:
//   - 0 success (including an unsupported platform for the last two steps)
//   - 1 invalid version or command line
//   - 2 download failed
//   - 3 extraction failed
//   - 4 FreeFileSync template missing or malformed
//   - 5 FreeFileSync or the browser could not be started
func main() {
	cmd.Execute()
}
