package commands

import (
	"context"
	"fmt"

	"github.com/alecthomas/kingpin/v2"

	"github.com/slok/dbsandbox/internal/app/deploy"
)

type DeployCommand struct {
	Cmd     *kingpin.CmdClause
	rootCmd *RootCommand

	port         int
	rootPassword string
}

// NewDeployCommand returns the deploy command.
func NewDeployCommand(rootCmd *RootCommand, app *kingpin.Application) *DeployCommand {
	c := &DeployCommand{rootCmd: rootCmd}

	c.Cmd = app.Command("deploy", "Deploy and start a new sandbox from the boilerplate.")
	c.Cmd.Arg("port", "Sandbox port.").Required().IntVar(&c.port)
	c.Cmd.Flag("root-password", "Server root password.").Default("root").StringVar(&c.rootPassword)

	return c
}

func (c DeployCommand) Name() string { return c.Cmd.FullCommand() }

func (c DeployCommand) Run(ctx context.Context) error {
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

	svc, err := deploy.NewService(deploy.ServiceConfig{
		Engine:     eng,
		Repository: repo,
		SandboxDir: c.rootCmd.SandboxDir,
		Logger:     logger,
	})
	if err != nil {
		return fmt.Errorf("could not create service: %w", err)
	}

	sandbox, err := svc.Run(ctx, deploy.Request{
		Port:         c.port,
		RootPassword: c.rootPassword,
	})
	if err != nil {
		return fmt.Errorf("could not deploy sandbox: %w", err)
	}

	p := c.rootCmd.newPrinter(formatTable)
	if err := p.PrintMessage(fmt.Sprintf("Deployed sandbox: %d (%s)", sandbox.Port, sandbox.BaseDir)); err != nil {
		return fmt.Errorf("could not print message: %w", err)
	}

	return nil
}
