package commands

import (
	"context"
	"fmt"

	"github.com/alecthomas/kingpin/v2"

	"github.com/slok/dbsandbox/internal/app/restart"
)

type RestartCommand struct {
	Cmd     *kingpin.CmdClause
	rootCmd *RootCommand

	port         int
	rootPassword string
}

// NewRestartCommand returns the restart command.
func NewRestartCommand(rootCmd *RootCommand, app *kingpin.Application) *RestartCommand {
	c := &RestartCommand{rootCmd: rootCmd}

	c.Cmd = app.Command("restart", "Stop and start a sandbox.")
	c.Cmd.Arg("port", "Sandbox port.").Required().IntVar(&c.port)
	c.Cmd.Flag("root-password", "Server root password.").Default("root").StringVar(&c.rootPassword)

	return c
}

func (c RestartCommand) Name() string { return c.Cmd.FullCommand() }

func (c RestartCommand) Run(ctx context.Context) error {
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

	svc, err := restart.NewService(restart.ServiceConfig{
		Engine:     eng,
		Repository: repo,
		Logger:     logger,
	})
	if err != nil {
		return fmt.Errorf("could not create service: %w", err)
	}

	_, err = svc.Run(ctx, restart.Request{
		Port:         c.port,
		RootPassword: c.rootPassword,
	})
	if err != nil {
		return fmt.Errorf("could not restart sandbox: %w", err)
	}

	p := c.rootCmd.newPrinter(formatTable)
	if err := p.PrintMessage(fmt.Sprintf("Restarted sandbox: %d", c.port)); err != nil {
		return fmt.Errorf("could not print message: %w", err)
	}

	return nil
}
