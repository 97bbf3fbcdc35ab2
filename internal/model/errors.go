package model

import "errors"

var (
	// ErrNotFound is returned when a resource is not found.
	ErrNotFound = errors.New("not found")
	// ErrAlreadyExists is returned when a resource already exists.
	ErrAlreadyExists = errors.New("already exists")
	// ErrNotValid is returned when a resource is not valid.
	ErrNotValid = errors.New("not valid")

	// ErrNoSession is returned when an operation requires a live database session and there is none.
	ErrNoSession = errors.New("no active session")
	// ErrTimeout is returned when a bounded wait finishes without reaching the expected state.
	ErrTimeout = errors.New("timeout")
	// ErrSnapshotDirNotSet is returned when a snapshot operation runs without a snapshot directory.
	ErrSnapshotDirNotSet = errors.New("snapshot dir not set")

	// ErrBoilerplateStale is returned when the boilerplate was built for a different server version.
	ErrBoilerplateStale = errors.New("boilerplate stale")
	// ErrBoilerplateBuild is returned when the boilerplate sandbox could not be built.
	ErrBoilerplateBuild = errors.New("boilerplate build failed")
	// ErrFatal is returned when the run can't continue, callers are expected to abort.
	ErrFatal = errors.New("fatal")
)
