//go:build !windows

package mysql

// clearReadOnly is not needed, read-only files can be removed from a writable directory.
func clearReadOnly(string) error { return nil }
