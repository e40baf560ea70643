package release

import (
	"archive/tar"    // For reading .tar archives
	"archive/zip"    // For reading .zip archives, the GitHub default
	"compress/bzip2" // For reading .bz2 compressed data
	"compress/gzip"  // For reading .gz compressed data
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/bodgit/sevenzip" // For reading .7z archives from mirrors
	"github.com/m-mizutani/goerr/v2"
	"github.com/xi2/xz" // For reading .xz compressed data

	"freshrss-update/internal/apperr"
	"freshrss-update/internal/logger"
)

// Extract unpacks the archive at src into dest, keeping the archive's own
// directory layout, and returns the path of its top-level folder.
// The format is chosen from the file suffix.
//
// A missing archive fails with apperr.ErrFileSystem; a file that does not
// decode as the expected format fails with apperr.ErrArchiveFormat.
func Extract(src, dest string) (string, error) {
	if _, err := os.Stat(src); err != nil {
		return "", goerr.Wrap(errors.Join(apperr.ErrFileSystem, err), "archive not found", goerr.V("path", src))
	}

	lower := strings.ToLower(src)
	switch {
	case strings.HasSuffix(lower, ".zip"):
		logger.Debug("[DEBUG] compression type is zip\n")
		return extractZip(src, dest)
	case strings.HasSuffix(lower, ".7z"):
		logger.Debug("[DEBUG] compression type is .7z\n")
		return extract7z(src, dest)
	case strings.HasSuffix(lower, ".tar"), strings.HasSuffix(lower, ".tar.gz"), strings.HasSuffix(lower, ".tgz"),
		strings.HasSuffix(lower, ".tar.bz2"), strings.HasSuffix(lower, ".tar.xz"):
		logger.Debug("[DEBUG] compression type is .tar.*\n")
		return extractTarArchive(src, dest)
	default:
		return "", goerr.Wrap(apperr.ErrArchiveFormat, "unsupported archive format", goerr.V("path", src))
	}
}

// extractZip extracts a .zip archive.
func extractZip(src, dest string) (string, error) {
	r, err := zip.OpenReader(src)
	if err != nil {
		return "", openError(err, src)
	}
	defer r.Close()

	var topLevel string
	for _, f := range r.File {
		target, err := entryPath(dest, f.Name)
		if err != nil {
			return "", err
		}
		if topLevel == "" {
			topLevel = firstComponent(f.Name)
		}

		if f.FileInfo().IsDir() {
			if err := os.MkdirAll(target, 0755); err != nil {
				return "", writeError(err, target)
			}
			continue
		}

		rc, err := f.Open()
		if err != nil {
			return "", goerr.Wrap(errors.Join(apperr.ErrArchiveFormat, err), "failed to open zip entry",
				goerr.V("entry", f.Name))
		}
		err = writeEntry(target, rc, f.Mode().Perm())
		rc.Close()
		if err != nil {
			return "", err
		}
	}
	return topLevelPath(dest, topLevel), nil
}

// extractTarArchive handles tar and compressed tar variants.
func extractTarArchive(src, dest string) (string, error) {
	logger.Debug("[DEBUG] uncompressing %s to %s\n", src, dest)
	f, err := os.Open(src)
	if err != nil {
		return "", openError(err, src)
	}
	defer f.Close()

	lower := strings.ToLower(src)
	var reader io.Reader = f
	switch {
	case strings.HasSuffix(lower, ".tar.gz"), strings.HasSuffix(lower, ".tgz"):
		gr, err := gzip.NewReader(f)
		if err != nil {
			return "", openError(err, src)
		}
		defer gr.Close()
		reader = gr
	case strings.HasSuffix(lower, ".tar.bz2"):
		reader = bzip2.NewReader(f)
	case strings.HasSuffix(lower, ".tar.xz"):
		xzr, err := xz.NewReader(f, 0)
		if err != nil {
			return "", openError(err, src)
		}
		reader = xzr
	}

	tr := tar.NewReader(reader)
	var topLevel string

	for {
		hdr, err := tr.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return "", goerr.Wrap(errors.Join(apperr.ErrArchiveFormat, err), "failed to read tar entry",
				goerr.V("path", src))
		}

		// GitHub tarballs start with a pax global header carrying the commit id
		if hdr.Typeflag != tar.TypeDir && hdr.Typeflag != tar.TypeReg {
			logger.Debug("[DEBUG] Skipping tar entry %s of type %q\n", hdr.Name, hdr.Typeflag)
			continue
		}

		target, err := entryPath(dest, hdr.Name)
		if err != nil {
			return "", err
		}
		if topLevel == "" {
			topLevel = firstComponent(hdr.Name)
		}

		switch hdr.Typeflag {
		case tar.TypeDir:
			if err := os.MkdirAll(target, 0755); err != nil {
				return "", writeError(err, target)
			}
		case tar.TypeReg:
			if err := writeEntry(target, tr, os.FileMode(hdr.Mode).Perm()); err != nil {
				return "", err
			}
		}
	}
	return topLevelPath(dest, topLevel), nil
}

// extract7z handles .7z extraction using the sevenzip library.
func extract7z(src, dest string) (string, error) {
	r, err := sevenzip.OpenReader(src)
	if err != nil {
		return "", openError(err, src)
	}
	defer r.Close()

	var topLevel string
	for _, f := range r.File {
		target, err := entryPath(dest, f.Name)
		if err != nil {
			return "", err
		}
		if topLevel == "" {
			topLevel = firstComponent(f.Name)
		}

		if f.FileInfo().IsDir() {
			if err := os.MkdirAll(target, 0755); err != nil {
				return "", writeError(err, target)
			}
			continue
		}

		rc, err := f.Open()
		if err != nil {
			return "", goerr.Wrap(errors.Join(apperr.ErrArchiveFormat, err), "failed to open 7z entry",
				goerr.V("entry", f.Name))
		}
		err = writeEntry(target, rc, f.Mode().Perm())
		rc.Close()
		if err != nil {
			return "", err
		}
	}
	return topLevelPath(dest, topLevel), nil
}

// writeEntry copies one archive member to target, creating parent directories.
func writeEntry(target string, r io.Reader, perm os.FileMode) error {
	if perm == 0 {
		perm = 0644
	}
	if err := os.MkdirAll(filepath.Dir(target), 0755); err != nil {
		return writeError(err, target)
	}
	out, err := os.OpenFile(target, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, perm)
	if err != nil {
		return writeError(err, target)
	}
	_, err = io.Copy(out, r)
	if cerr := out.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		var pathErr *fs.PathError
		if errors.As(err, &pathErr) {
			return writeError(err, target)
		}
		// Anything else came from the decompressor
		return goerr.Wrap(errors.Join(apperr.ErrArchiveFormat, err), "failed to decompress entry",
			goerr.V("path", target))
	}
	return nil
}

// entryPath joins an archive member name onto dest and refuses names that
// would land outside of it ("zip slip").
func entryPath(dest, name string) (string, error) {
	target := filepath.Join(dest, filepath.FromSlash(name))
	rel, err := filepath.Rel(dest, target)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(os.PathSeparator)) || filepath.IsAbs(name) {
		return "", goerr.Wrap(apperr.ErrArchiveFormat, "archive entry escapes the destination",
			goerr.V("entry", name), goerr.V("dest", dest))
	}
	return target, nil
}

// firstComponent returns the leading folder of an archive member name.
// Archive names always use forward slashes regardless of the host OS.
func firstComponent(name string) string {
	name = strings.TrimPrefix(name, "./")
	if i := strings.Index(name, "/"); i >= 0 {
		return name[:i]
	}
	return name
}

func topLevelPath(dest, topLevel string) string {
	if topLevel == "" {
		return dest
	}
	return filepath.Join(dest, topLevel)
}

// openError classifies a failure to open or decode an archive file.
func openError(err error, src string) error {
	if errors.Is(err, fs.ErrNotExist) {
		return goerr.Wrap(errors.Join(apperr.ErrFileSystem, err), "archive not found", goerr.V("path", src))
	}
	return goerr.Wrap(errors.Join(apperr.ErrArchiveFormat, err),
		fmt.Sprintf("%s is not a valid archive", filepath.Base(src)), goerr.V("path", src))
}

func writeError(err error, target string) error {
	return goerr.Wrap(errors.Join(apperr.ErrFileSystem, err), "failed to write extracted file", goerr.V("path", target))
}
