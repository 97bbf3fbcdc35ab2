package commands

import (
	"context"
	"fmt"

	"github.com/alecthomas/kingpin/v2"

	"github.com/slok/dbsandbox/internal/app/kill"
)

type KillCommand struct {
	Cmd     *kingpin.CmdClause
	rootCmd *RootCommand

	port int
}

// NewKillCommand returns the kill command.
func NewKillCommand(rootCmd *RootCommand, app *kingpin.Application) *KillCommand {
	c := &KillCommand{rootCmd: rootCmd}

	c.Cmd = app.Command("kill", "Kill a sandbox server and wait until it is dead.")
	c.Cmd.Arg("port", "Sandbox port.").Required().IntVar(&c.port)

	return c
}

func (c KillCommand) Name() string { return c.Cmd.FullCommand() }

func (c KillCommand) Run(ctx context.Context) error {
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

	svc, err := kill.NewService(kill.ServiceConfig{
		Engine:     eng,
		Repository: repo,
		Logger:     logger,
	})
	if err != nil {
		return fmt.Errorf("could not create service: %w", err)
	}

	_, err = svc.Run(ctx, kill.Request{
		Port: c.port,
	})
	if err != nil {
		return fmt.Errorf("could not kill sandbox: %w", err)
	}

	p := c.rootCmd.newPrinter(formatTable)
	if err := p.PrintMessage(fmt.Sprintf("Killed sandbox: %d", c.port)); err != nil {
		return fmt.Errorf("could not print message: %w", err)
	}

	return nil
}
