package commands

import (
	"context"
	"fmt"

	"github.com/alecthomas/kingpin/v2"

	"github.com/slok/dbsandbox/internal/app/list"
	"github.com/slok/dbsandbox/internal/model"
)

type ListCommand struct {
	Cmd     *kingpin.CmdClause
	rootCmd *RootCommand

	statuses []string
	format   string
}

// NewListCommand returns the list command.
func NewListCommand(rootCmd *RootCommand, app *kingpin.Application) *ListCommand {
	c := &ListCommand{rootCmd: rootCmd}

	c.Cmd = app.Command("list", "List all registered sandboxes.")
	c.Cmd.Flag("status", "Only show sandboxes in this status (deployed, running, stopped, killed). Can be repeated.").StringsVar(&c.statuses)
	c.Cmd.Flag("format", "Output format (table, json).").Default(formatTable).EnumVar(&c.format, formatTable, formatJSON)

	return c
}

func (c ListCommand) Name() string { return c.Cmd.FullCommand() }

func (c ListCommand) Run(ctx context.Context) error {
	logger := c.rootCmd.Logger

	statuses := make([]model.SandboxStatus, 0, len(c.statuses))
	for _, s := range c.statuses {
		status, err := model.ParseSandboxStatus(s)
		if err != nil {
			return fmt.Errorf("invalid status filter: %w", err)
		}
		statuses = append(statuses, status)
	}

	repo, err := c.rootCmd.newRepository(ctx)
	if err != nil {
		return err
	}
	defer repo.Close()

	svc, err := list.NewService(list.ServiceConfig{
		Repository: repo,
		Logger:     logger,
	})
	if err != nil {
		return fmt.Errorf("could not create service: %w", err)
	}

	sandboxes, err := svc.Run(ctx, list.Request{Statuses: statuses})
	if err != nil {
		return fmt.Errorf("could not list sandboxes: %w", err)
	}

	if err := c.rootCmd.newPrinter(c.format).PrintList(sandboxes); err != nil {
		return fmt.Errorf("could not print list: %w", err)
	}

	return nil
}
