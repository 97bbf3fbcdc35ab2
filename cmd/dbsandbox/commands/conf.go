package commands

import (
	"context"
	"fmt"

	"github.com/alecthomas/kingpin/v2"

	"github.com/slok/dbsandbox/internal/app/conf"
)

type ConfCommand struct {
	Cmd     *kingpin.CmdClause
	rootCmd *RootCommand

	port   int
	option string
	remove bool
}

// NewConfCommand returns the conf command.
func NewConfCommand(rootCmd *RootCommand, app *kingpin.Application) *ConfCommand {
	c := &ConfCommand{rootCmd: rootCmd}

	c.Cmd = app.Command("conf", "Change or remove a sandbox configuration option, applied on the next start.")
	c.Cmd.Arg("port", "Sandbox port.").Required().IntVar(&c.port)
	c.Cmd.Arg("option", "Option as `name` or `name=value`, with --remove every line containing it is removed.").Required().StringVar(&c.option)
	c.Cmd.Flag("remove", "Remove the option instead of setting it.").BoolVar(&c.remove)

	return c
}

func (c ConfCommand) Name() string { return c.Cmd.FullCommand() }

func (c ConfCommand) Run(ctx context.Context) error {
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

	svc, err := conf.NewService(conf.ServiceConfig{
		Engine:     eng,
		Repository: repo,
		Logger:     logger,
	})
	if err != nil {
		return fmt.Errorf("could not create service: %w", err)
	}

	res, err := svc.Run(ctx, conf.Request{
		Port:   c.port,
		Option: c.option,
		Remove: c.remove,
	})
	if err != nil {
		return fmt.Errorf("could not edit sandbox configuration: %w", err)
	}

	p := c.rootCmd.newPrinter(formatTable)
	if err := p.PrintMessage(fmt.Sprintf("Updated configuration: %s", res.ConfPath)); err != nil {
		return fmt.Errorf("could not print message: %w", err)
	}

	return nil
}
