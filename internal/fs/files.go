package fs

import (
	"errors"
	"io/fs"
)

// errStop is a sentinel used to abort the walk once a file has been seen.
var errStop = errors.New("stop")

// HasFiles reports whether fsys contains at least one regular file. An fsys
// rooted at a missing directory counts as empty, not as an error.
func HasFiles(fsys fs.FS) (bool, error) {
	err := fs.WalkDir(fsys, ".", func(_ string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		return errStop
	})
	switch {
	case errors.Is(err, errStop):
		return true, nil
	case errors.Is(err, fs.ErrNotExist):
		return false, nil
	}
	return false, err
}
