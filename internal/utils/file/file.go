// Package file copies and measures sandbox files.
package file

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
)

var errSparseUnsupported = errors.New("sparse copy not supported")

// CopyFile copies srcPath to dstPath keeping the source permissions. InnoDB
// tablespaces are mostly holes, so a sparse copy is tried first and a regular
// copy is used when the platform can't do it.
func CopyFile(ctx context.Context, srcPath, dstPath string) error {
	src, err := os.Open(srcPath)
	if err != nil {
		return err
	}
	defer src.Close()

	info, err := src.Stat()
	if err != nil {
		return fmt.Errorf("stat source: %w", err)
	}

	dst, err := os.OpenFile(dstPath, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, info.Mode().Perm())
	if err != nil {
		return err
	}

	err = copySparse(ctx, src, dst)
	if errors.Is(err, errSparseUnsupported) {
		// Nothing was written yet.
		_, err = io.Copy(dst, src)
	}
	if err != nil {
		dst.Close()
		return fmt.Errorf("copying %s: %w", srcPath, err)
	}

	return dst.Close()
}

// DirSizeStats sums the apparent and allocated sizes of every regular file under root.
func DirSizeStats(root string) (virtualSize int64, allocatedSize int64, err error) {
	err = filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.Type().IsRegular() {
			return nil
		}

		v, a, err := sizeStats(path)
		if err != nil {
			return err
		}
		virtualSize += v
		allocatedSize += a
		return nil
	})
	if err != nil {
		return 0, 0, fmt.Errorf("walking %s: %w", root, err)
	}

	return virtualSize, allocatedSize, nil
}
