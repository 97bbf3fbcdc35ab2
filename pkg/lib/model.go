package lib

import (
	"errors"
	"time"

	"github.com/slok/dbsandbox/internal/model"
	"github.com/slok/dbsandbox/internal/prompt"
)

// ProvisionerType identifies the provisioner implementation.
type ProvisionerType string

const (
	// ProvisionerTypeCommand runs an external provisioning tool for every
	// server operation.
	ProvisionerTypeCommand ProvisionerType = "command"

	// ProvisionerTypeFake only lays out sandbox files on disk (no real servers).
	// Use this for unit testing without a database installation.
	ProvisionerTypeFake ProvisionerType = "fake"
)

// ReplayMode is the run mode of a test session.
type ReplayMode string

const (
	// ReplayModeDirect runs against real servers without recording.
	ReplayModeDirect ReplayMode = "direct"
	// ReplayModeRecord runs against real servers and records snapshots.
	ReplayModeRecord ReplayMode = "record"
	// ReplayModeReplay replays recorded snapshots, there are no real servers
	// and every sandbox operation except destroy is skipped.
	ReplayModeReplay ReplayMode = "replay"
)

// SandboxStatus represents the last known lifecycle state of a sandbox.
//
// The typical lifecycle is:
//
//	running -> stopped|killed -> running -> ... -> (destroyed)
//
// The status is what the last operation left, a server can die behind our back.
type SandboxStatus string

const (
	// SandboxStatusDeployed indicates the sandbox files exist but the server never ran.
	SandboxStatusDeployed SandboxStatus = "deployed"
	// SandboxStatusRunning indicates the sandbox server is running.
	SandboxStatusRunning SandboxStatus = "running"
	// SandboxStatusStopped indicates the sandbox server was shut down cleanly.
	SandboxStatusStopped SandboxStatus = "stopped"
	// SandboxStatusKilled indicates the sandbox server was killed.
	SandboxStatusKilled SandboxStatus = "killed"
)

// Sandbox represents a deployed sandbox returned by the SDK.
//
// This is a read-only snapshot of the registry entry at the time of the API call.
// Use [Client.GetSandbox] to get the latest state.
type Sandbox struct {
	// ID is the unique identifier (ULID) assigned at deploy.
	ID string
	// Port is the classic protocol port, it identifies the sandbox.
	Port int
	// BaseDir is the directory holding the sandbox files.
	BaseDir string
	// Status is the last known lifecycle state.
	Status SandboxStatus
	// CreatedAt is when the sandbox was deployed.
	CreatedAt time.Time
	// StartedAt is when the sandbox was last started. Nil if never started.
	StartedAt *time.Time
	// StoppedAt is when the sandbox was last stopped or killed. Nil if never stopped.
	StoppedAt *time.Time
}

// ListSandboxesOpts are the options for [Client.ListSandboxes].
type ListSandboxesOpts struct {
	// Status filters by status. Nil returns every sandbox.
	Status *SandboxStatus
}

// DiskUsage is the space used by the files of a sandbox.
type DiskUsage struct {
	// VirtualBytes is the apparent size of every file.
	VirtualBytes int64
	// AllocatedBytes is the space actually allocated on disk.
	AllocatedBytes int64
}

// CheckStatus represents the status of a preflight check.
type CheckStatus string

const (
	// CheckStatusOK indicates the check passed.
	CheckStatusOK CheckStatus = "ok"
	// CheckStatusWarning indicates the check passed with a warning.
	CheckStatusWarning CheckStatus = "warning"
	// CheckStatusError indicates the check failed.
	CheckStatusError CheckStatus = "error"
)

// CheckResult represents the result of a single preflight check.
type CheckResult struct {
	// Message is a human-readable description of the result.
	Message string
	// Status is the check status.
	Status CheckStatus
}

// TestContext is the test location failures are attributed to.
type TestContext struct {
	File string
	Line int
}

func (t TestContext) String() string {
	return model.TestContext(t).String()
}

// FailureReporter receives a failure message and the test location it belongs to.
type FailureReporter func(at TestContext, msg string)

// Sentinel errors returned by the SDK. Use [errors.Is] to check them.
var (
	// ErrNotFound is returned when a sandbox is not registered.
	ErrNotFound = errors.New("not found")
	// ErrAlreadyExists is returned when a sandbox is already registered on the port.
	ErrAlreadyExists = errors.New("already exists")
	// ErrNotValid is returned when an argument or the configuration is not valid.
	ErrNotValid = errors.New("not valid")
	// ErrNoSession is returned when waiting for a member without a session.
	ErrNoSession = errors.New("no active session")
	// ErrTimeout is returned when a member never reaches the expected state.
	ErrTimeout = errors.New("timeout")
	// ErrSnapshotDirNotSet is returned by snapshot operations without a snapshot dir.
	ErrSnapshotDirNotSet = errors.New("snapshot dir not set")
	// ErrUnexpectedPrompt is returned when an interactive program shows a prompt
	// different from the next expected one.
	ErrUnexpectedPrompt = errors.New("unexpected prompt")
	// ErrFatal is returned (after calling [Config].OnFatal) when the run can't continue.
	ErrFatal = errors.New("fatal")
)

// --- Internal conversion helpers ---

func fromInternalSandbox(s model.Sandbox) Sandbox {
	return Sandbox{
		ID:        s.ID,
		Port:      s.Port,
		BaseDir:   s.BaseDir,
		Status:    SandboxStatus(s.Status),
		CreatedAt: s.CreatedAt,
		StartedAt: s.StartedAt,
		StoppedAt: s.StoppedAt,
	}
}

// fromRegisteredSandbox returns nil for sandboxes missing from the registry.
func fromRegisteredSandbox(s *model.Sandbox) *Sandbox {
	if s == nil {
		return nil
	}
	out := fromInternalSandbox(*s)
	return &out
}

func fromInternalSandboxList(ss []model.Sandbox) []Sandbox {
	result := make([]Sandbox, len(ss))
	for i, s := range ss {
		result[i] = fromInternalSandbox(s)
	}
	return result
}

func toInternalStatuses(opts *ListSandboxesOpts) []model.SandboxStatus {
	if opts == nil || opts.Status == nil {
		return nil
	}
	return []model.SandboxStatus{model.SandboxStatus(*opts.Status)}
}

func fromInternalOutcomes(outcomes model.Outcomes) []CheckResult {
	out := make([]CheckResult, len(outcomes))
	for i, o := range outcomes {
		status := CheckStatusOK
		switch o.Kind {
		case model.OutcomeKindWarning:
			status = CheckStatusWarning
		case model.OutcomeKindError:
			status = CheckStatusError
		}
		out[i] = CheckResult{Message: o.Message, Status: status}
	}
	return out
}

var errorMappings = []struct {
	internal error
	public   error
}{
	{internal: model.ErrFatal, public: ErrFatal},
	{internal: model.ErrNotFound, public: ErrNotFound},
	{internal: model.ErrAlreadyExists, public: ErrAlreadyExists},
	{internal: model.ErrNotValid, public: ErrNotValid},
	{internal: model.ErrNoSession, public: ErrNoSession},
	{internal: model.ErrTimeout, public: ErrTimeout},
	{internal: model.ErrSnapshotDirNotSet, public: ErrSnapshotDirNotSet},
	{internal: prompt.ErrUnexpectedPrompt, public: ErrUnexpectedPrompt},
}

func mapError(err error) error {
	if err == nil {
		return nil
	}

	for _, m := range errorMappings {
		if errors.Is(err, m.internal) {
			return joinErrors(err, m.public)
		}
	}
	return err
}

func joinErrors(original, sentinel error) error {
	return &mappedError{original: original, sentinel: sentinel}
}

type mappedError struct {
	original error
	sentinel error
}

func (e *mappedError) Error() string { return e.original.Error() }

func (e *mappedError) Is(target error) bool {
	return target == e.sentinel
}

func (e *mappedError) Unwrap() error { return e.original }
