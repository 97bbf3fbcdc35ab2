package printer

import "github.com/slok/dbsandbox/internal/model"

// Printer knows how to print sandbox information in different formats.
type Printer interface {
	PrintList(sandboxes []model.Sandbox) error
	// PrintStatus prints a sandbox, usage is optional.
	PrintStatus(sandbox model.Sandbox, usage *model.DiskUsage) error
	PrintOutcomes(title string, outcomes model.Outcomes) error
	PrintMessage(msg string) error
}
