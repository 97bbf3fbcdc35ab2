package printer

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/slok/dbsandbox/internal/model"
)

// TablePrinter prints sandbox information in a table format.
type TablePrinter struct {
	writer io.Writer
}

// NewTablePrinter creates a new table printer.
func NewTablePrinter(w io.Writer) *TablePrinter {
	return &TablePrinter{writer: w}
}

// PrintList prints sandboxes in a table format.
func (t *TablePrinter) PrintList(sandboxes []model.Sandbox) error {
	if len(sandboxes) == 0 {
		return nil
	}

	tw := tabwriter.NewWriter(t.writer, 0, 0, 2, ' ', 0)
	defer tw.Flush()

	// Print header
	fmt.Fprintln(tw, "PORT\tSTATUS\tCREATED\tDIR")

	// Print rows
	for _, s := range sandboxes {
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\n", s.Port, s.Status, formatAge(s.CreatedAt, time.Now()), s.BaseDir)
	}

	return nil
}

// PrintStatus prints detailed sandbox status.
func (t *TablePrinter) PrintStatus(sandbox model.Sandbox, usage *model.DiskUsage) error {
	fmt.Fprintf(t.writer, "Port:       %d\n", sandbox.Port)
	fmt.Fprintf(t.writer, "ID:         %s\n", sandbox.ID)
	fmt.Fprintf(t.writer, "Status:     %s\n", sandbox.Status)
	fmt.Fprintf(t.writer, "Dir:        %s\n", sandbox.BaseDir)

	if usage != nil {
		fmt.Fprintf(t.writer, "Disk:       %s (%s allocated)\n", formatBytes(usage.VirtualBytes), formatBytes(usage.AllocatedBytes))
	}

	fmt.Fprintf(t.writer, "Created:    %s\n", formatTimestamp(sandbox.CreatedAt))

	if sandbox.StartedAt != nil {
		fmt.Fprintf(t.writer, "Started:    %s\n", formatTimestamp(*sandbox.StartedAt))
	}

	if sandbox.StoppedAt != nil {
		fmt.Fprintf(t.writer, "Stopped:    %s\n", formatTimestamp(*sandbox.StoppedAt))
	}

	return nil
}

// PrintOutcomes prints check or provisioning outcomes followed by a summary.
func (t *TablePrinter) PrintOutcomes(title string, outcomes model.Outcomes) error {
	fmt.Fprintf(t.writer, "\n%s...\n", title)
	for _, o := range outcomes {
		fmt.Fprintf(t.writer, "  %s %s\n", outcomeIcon(o.Kind), o.Message)
	}

	fmt.Fprintln(t.writer)
	_, warnings, errors := outcomes.CountByKind()
	if warnings == 0 && errors == 0 {
		fmt.Fprintln(t.writer, "All checks passed!")
		return nil
	}

	var summary []string
	if errors > 0 {
		summary = append(summary, fmt.Sprintf("%d error(s)", errors))
	}
	if warnings > 0 {
		summary = append(summary, fmt.Sprintf("%d warning(s)", warnings))
	}
	fmt.Fprintln(t.writer, strings.Join(summary, ", "))

	return nil
}

// PrintMessage prints a simple text message.
func (t *TablePrinter) PrintMessage(msg string) error {
	fmt.Fprintln(t.writer, msg)
	return nil
}

func outcomeIcon(kind model.OutcomeKind) string {
	switch kind {
	case model.OutcomeKindOK:
		return "OK"
	case model.OutcomeKindWarning:
		return "!!"
	case model.OutcomeKindError:
		return "XX"
	default:
		return "??"
	}
}
