package commands

import (
	"context"
	"fmt"

	"github.com/alecthomas/kingpin/v2"
)

type DoctorCommand struct {
	Cmd     *kingpin.CmdClause
	rootCmd *RootCommand

	format string
}

// NewDoctorCommand returns the doctor command.
func NewDoctorCommand(rootCmd *RootCommand, app *kingpin.Application) *DoctorCommand {
	c := &DoctorCommand{rootCmd: rootCmd}

	c.Cmd = app.Command("doctor", "Run preflight checks for sandboxes.")
	c.Cmd.Flag("format", "Output format (table, json).").Default(formatTable).EnumVar(&c.format, formatTable, formatJSON)

	return c
}

func (c DoctorCommand) Name() string { return c.Cmd.FullCommand() }

func (c DoctorCommand) Run(ctx context.Context) error {
	eng, err := c.rootCmd.newEngine()
	if err != nil {
		return fmt.Errorf("could not create engine: %w", err)
	}

	outcomes := eng.Check(ctx)
	if err := c.rootCmd.newPrinter(c.format).PrintOutcomes("Checking MySQL sandboxes", outcomes); err != nil {
		return fmt.Errorf("could not print checks: %w", err)
	}

	// Return error if there are any errors
	if _, _, errs := outcomes.CountByKind(); errs > 0 {
		return fmt.Errorf("preflight checks failed with %d error(s)", errs)
	}

	return nil
}
