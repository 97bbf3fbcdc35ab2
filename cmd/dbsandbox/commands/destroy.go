package commands

import (
	"context"
	"fmt"

	"github.com/alecthomas/kingpin/v2"

	"github.com/slok/dbsandbox/internal/app/destroy"
)

type DestroyCommand struct {
	Cmd     *kingpin.CmdClause
	rootCmd *RootCommand

	port int
}

// NewDestroyCommand returns the destroy command.
func NewDestroyCommand(rootCmd *RootCommand, app *kingpin.Application) *DestroyCommand {
	c := &DestroyCommand{rootCmd: rootCmd}

	c.Cmd = app.Command("destroy", "Kill a sandbox and remove its files, unregistered leftovers included.")
	c.Cmd.Arg("port", "Sandbox port.").Required().IntVar(&c.port)

	return c
}

func (c DestroyCommand) Name() string { return c.Cmd.FullCommand() }

func (c DestroyCommand) Run(ctx context.Context) error {
	logger := c.rootCmd.Logger

	repo, err := c.rootCmd.newRepository(ctx)
	if err != nil {
		return err
	}
	defer repo.Close()

	eng, err := c.rootCmd.newEngine()
	if err != nil {
		return fmt.Errorf("could not create engine: %w", err)
	}

	svc, err := destroy.NewService(destroy.ServiceConfig{
		Engine:     eng,
		Repository: repo,
		Logger:     logger,
	})
	if err != nil {
		return fmt.Errorf("could not create service: %w", err)
	}

	if _, err := svc.Run(ctx, destroy.Request{Port: c.port}); err != nil {
		return fmt.Errorf("could not destroy sandbox: %w", err)
	}

	p := c.rootCmd.newPrinter(formatTable)
	if err := p.PrintMessage(fmt.Sprintf("Destroyed sandbox: %d", c.port)); err != nil {
		return fmt.Errorf("could not print message: %w", err)
	}

	return nil
}
