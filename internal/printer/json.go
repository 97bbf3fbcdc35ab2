package printer

import (
	"encoding/json"
	"io"
	"time"

	"github.com/slok/dbsandbox/internal/conventions"
	"github.com/slok/dbsandbox/internal/model"
)

// JSONPrinter prints sandbox information in JSON format.
type JSONPrinter struct {
	writer io.Writer
}

// NewJSONPrinter creates a new JSON printer.
func NewJSONPrinter(w io.Writer) *JSONPrinter {
	return &JSONPrinter{writer: w}
}

// listItem represents a sandbox in the list output (subset of fields).
type listItem struct {
	ID        string    `json:"id"`
	Port      int       `json:"port"`
	Status    string    `json:"status"`
	CreatedAt time.Time `json:"created_at"`
}

// statusOutput represents the full sandbox status output.
type statusOutput struct {
	ID           string      `json:"id"`
	Port         int         `json:"port"`
	ExtendedPort int         `json:"extended_port"`
	Status       string      `json:"status"`
	BaseDir      string      `json:"base_dir"`
	Disk         *diskOutput `json:"disk,omitempty"`
	CreatedAt    time.Time   `json:"created_at"`
	StartedAt    *time.Time  `json:"started_at"`
	StoppedAt    *time.Time  `json:"stopped_at"`
}

type diskOutput struct {
	VirtualBytes   int64 `json:"virtual_bytes"`
	AllocatedBytes int64 `json:"allocated_bytes"`
}

type outcomeOutput struct {
	Type    string `json:"type"`
	Message string `json:"message"`
}

type outcomesOutput struct {
	Title    string          `json:"title"`
	Outcomes []outcomeOutput `json:"outcomes"`
	Errors   int             `json:"errors"`
	Warnings int             `json:"warnings"`
}

// messageOutput represents a simple message output.
type messageOutput struct {
	Message string `json:"message"`
}

// PrintList prints sandboxes in JSON format with a subset of fields.
func (j *JSONPrinter) PrintList(sandboxes []model.Sandbox) error {
	items := make([]listItem, len(sandboxes))
	for i, s := range sandboxes {
		items[i] = listItem{
			ID:        s.ID,
			Port:      s.Port,
			Status:    string(s.Status),
			CreatedAt: s.CreatedAt.UTC(),
		}
	}

	return j.encode(items)
}

// PrintStatus prints detailed sandbox status in JSON format.
func (j *JSONPrinter) PrintStatus(sandbox model.Sandbox, usage *model.DiskUsage) error {
	output := statusOutput{
		ID:           sandbox.ID,
		Port:         sandbox.Port,
		ExtendedPort: conventions.ExtendedPort(sandbox.Port),
		Status:       string(sandbox.Status),
		BaseDir:      sandbox.BaseDir,
		CreatedAt:    sandbox.CreatedAt.UTC(),
	}

	if usage != nil {
		output.Disk = &diskOutput{VirtualBytes: usage.VirtualBytes, AllocatedBytes: usage.AllocatedBytes}
	}

	if sandbox.StartedAt != nil {
		utcTime := sandbox.StartedAt.UTC()
		output.StartedAt = &utcTime
	}

	if sandbox.StoppedAt != nil {
		utcTime := sandbox.StoppedAt.UTC()
		output.StoppedAt = &utcTime
	}

	return j.encode(output)
}

// PrintOutcomes prints outcomes in JSON format, using the same entry shape
// the provisioning tool reports.
func (j *JSONPrinter) PrintOutcomes(title string, outcomes model.Outcomes) error {
	_, warnings, errors := outcomes.CountByKind()
	output := outcomesOutput{
		Title:    title,
		Outcomes: make([]outcomeOutput, 0, len(outcomes)),
		Errors:   errors,
		Warnings: warnings,
	}
	for _, o := range outcomes {
		output.Outcomes = append(output.Outcomes, outcomeOutput{Type: string(o.Kind), Message: o.Message})
	}

	return j.encode(output)
}

// PrintMessage prints a simple message in JSON format.
func (j *JSONPrinter) PrintMessage(msg string) error {
	return j.encode(messageOutput{Message: msg})
}

func (j *JSONPrinter) encode(v any) error {
	enc := json.NewEncoder(j.writer)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
