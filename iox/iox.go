// Package iox provides I/O helpers for resource cleanup and intermediate files.
package iox

import (
	"errors"
	"io"
	"io/fs"
	"os"
)

// DiscardClose closes c and discards the error.
// Use in defer statements where close errors are unactionable:
//
//	defer iox.DiscardClose(f)
func DiscardClose(c io.Closer) { _ = c.Close() }

// RemoveIfExists removes the file at path if it exists.
// removed reports whether a file was deleted; a missing file is not an error.
func RemoveIfExists(path string) (removed bool, err error) {
	err = os.Remove(path)
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, fs.ErrNotExist):
		return false, nil
	default:
		return false, err
	}
}

// CommitFile moves a fully written staging file over dst.
// On failure the staging file is left in place for the caller to clean up.
func CommitFile(staging, dst string) error {
	return os.Rename(staging, dst)
}
