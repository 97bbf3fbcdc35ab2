package file

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"syscall"

	"golang.org/x/sys/unix"
)

// copySparse copies only the data extents of src, holes are recreated by
// truncating dst to the source size.
func copySparse(ctx context.Context, src, dst *os.File) error {
	info, err := src.Stat()
	if err != nil {
		return fmt.Errorf("stat source: %w", err)
	}
	size := info.Size()

	fd := int(src.Fd())
	for off := int64(0); off < size; {
		if err := ctx.Err(); err != nil {
			return err
		}

		start, err := unix.Seek(fd, off, unix.SEEK_DATA)
		if errors.Is(err, syscall.ENXIO) {
			break // Only holes left.
		}
		if err != nil {
			if off == 0 && seekDataUnsupported(err) {
				return errSparseUnsupported
			}
			return fmt.Errorf("seeking data at %d: %w", off, err)
		}

		end, err := unix.Seek(fd, start, unix.SEEK_HOLE)
		if err != nil {
			return fmt.Errorf("seeking hole at %d: %w", start, err)
		}
		end = min(end, size)

		extent := io.NewSectionReader(src, start, end-start)
		if _, err := io.Copy(io.NewOffsetWriter(dst, start), extent); err != nil {
			return fmt.Errorf("copying extent %d-%d: %w", start, end, err)
		}
		off = end
	}

	return dst.Truncate(size)
}

// sizeStats returns the apparent and the allocated size of a file.
func sizeStats(path string) (virtual int64, allocated int64, err error) {
	fi, err := os.Stat(path)
	if err != nil {
		return 0, 0, err
	}

	st, ok := fi.Sys().(*syscall.Stat_t)
	if !ok {
		return fi.Size(), fi.Size(), nil
	}
	return fi.Size(), st.Blocks * 512, nil
}

func seekDataUnsupported(err error) bool {
	return errors.Is(err, syscall.ENOSYS) ||
		errors.Is(err, syscall.EINVAL) ||
		errors.Is(err, syscall.EOPNOTSUPP)
}
