//go:build windows

package mysql

import (
	"errors"
	"os"
	"path/filepath"
)

// clearReadOnly makes the files in dir writable again, tests may have made
// the configuration (or its backups) read-only and Windows refuses to delete them.
func clearReadOnly(dir string) error {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return err
	}

	var errs []error
	for _, entry := range entries {
		info, err := entry.Info()
		if err != nil {
			continue
		}
		if info.Mode().Perm()&0o200 != 0 {
			continue
		}
		// On Windows setting the owner write bit clears the read-only attribute.
		if err := os.Chmod(filepath.Join(dir, entry.Name()), info.Mode().Perm()|0o200); err != nil {
			errs = append(errs, err)
		}
	}

	return errors.Join(errs...)
}
