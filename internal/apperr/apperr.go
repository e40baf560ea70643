// Package apperr holds the error categories shared by every update step.
// Steps wrap these with goerr so callers can match them with errors.Is while
// the wrapped error still carries the path, URL or status that caused it.
package apperr

import "errors"

var (
	// ErrInvalidVersion means the version string is not major.minor.patch.
	ErrInvalidVersion = errors.New("invalid version")
	// ErrNetwork covers transport failures and non-archive HTTP responses.
	ErrNetwork = errors.New("network error")
	// ErrArchiveFormat means the downloaded file could not be decoded as an archive.
	ErrArchiveFormat = errors.New("archive format error")
	// ErrMalformedTemplate means the sync tool template lacks the expected structure.
	ErrMalformedTemplate = errors.New("malformed template")
	// ErrFileSystem covers missing files and directories and failed writes.
	ErrFileSystem = errors.New("file system error")
	// ErrUnsupportedPlatform is advisory: the step is skipped, the run continues.
	ErrUnsupportedPlatform = errors.New("unsupported platform")
	// ErrLaunch means an external program could not be started.
	ErrLaunch = errors.New("launch error")
)
