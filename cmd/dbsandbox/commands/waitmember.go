package commands

import (
	"context"
	"fmt"

	"github.com/alecthomas/kingpin/v2"

	"github.com/slok/dbsandbox/internal/app/waitmember"
	"github.com/slok/dbsandbox/internal/cluster"
)

type WaitMemberCommand struct {
	Cmd     *kingpin.CmdClause
	rootCmd *RootCommand

	port     int
	states   string
	viaHost  string
	viaPort  int
	user     string
	password string
}

// NewWaitMemberCommand returns the wait-member command.
func NewWaitMemberCommand(rootCmd *RootCommand, app *kingpin.Application) *WaitMemberCommand {
	c := &WaitMemberCommand{rootCmd: rootCmd}

	c.Cmd = app.Command("wait-member", "Wait until a group replication member reaches one of the states.")
	c.Cmd.Arg("port", "Port of the watched member.").Required().IntVar(&c.port)
	c.Cmd.Arg("states", "Accepted states, e.g: ONLINE,RECOVERING or (MISSING).").Required().StringVar(&c.states)
	c.Cmd.Flag("via-host", "Host of the server queried.").Default("localhost").StringVar(&c.viaHost)
	c.Cmd.Flag("via-port", "Port of the server queried. Defaults to the watched member.").IntVar(&c.viaPort)
	c.Cmd.Flag("user", "Session user.").Default("root").StringVar(&c.user)
	c.Cmd.Flag("password", "Session password.").Default("root").StringVar(&c.password)

	return c
}

func (c WaitMemberCommand) Name() string { return c.Cmd.FullCommand() }

func (c WaitMemberCommand) Run(ctx context.Context) error {
	logger := c.rootCmd.Logger

	gate, err := c.rootCmd.gate()
	if err != nil {
		return err
	}

	watcher, err := cluster.NewWatcher(cluster.WatcherConfig{
		Gate:   gate,
		Logger: logger,
	})
	if err != nil {
		return fmt.Errorf("could not create member watcher: %w", err)
	}

	opener, err := c.rootCmd.newOpener()
	if err != nil {
		return err
	}

	svc, err := waitmember.NewService(waitmember.ServiceConfig{
		Opener: opener,
		Waiter: watcher,
		Logger: logger,
	})
	if err != nil {
		return fmt.Errorf("could not create service: %w", err)
	}

	err = svc.Run(ctx, waitmember.Request{
		Port:   c.port,
		States: c.states,
		Via: cluster.ConnOptions{
			Host:     c.viaHost,
			Port:     c.viaPort,
			User:     c.user,
			Password: c.password,
		},
	})
	if err != nil {
		return fmt.Errorf("could not wait for member: %w", err)
	}

	p := c.rootCmd.newPrinter(formatTable)
	if err := p.PrintMessage(fmt.Sprintf("Member %d reached one of %s", c.port, c.states)); err != nil {
		return fmt.Errorf("could not print message: %w", err)
	}

	return nil
}
