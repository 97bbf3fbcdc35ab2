package lib

import (
	"context"
	"fmt"

	"github.com/slok/dbsandbox/internal/app/waitmember"
	"github.com/slok/dbsandbox/internal/cluster"
	"github.com/slok/dbsandbox/internal/model"
)

// Session is a live database session used to watch cluster members.
type Session = cluster.Session

// Result is the result of a [Session] query.
type Result = cluster.Result

// Row is a single [Result] row.
type Row = cluster.Row

// SessionOpts identify the server and credentials of a new session.
// Host defaults to localhost and User to root.
type SessionOpts struct {
	Host     string
	Port     int
	User     string
	Password string
}

func (o SessionOpts) toInternal() cluster.ConnOptions {
	return cluster.ConnOptions{Host: o.Host, Port: o.Port, User: o.User, Password: o.Password}
}

// SetSession sets the session used by [Client.WaitMemberState]. The caller
// keeps owning it. A nil session unsets it.
func (c *Client) SetSession(s Session) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.closeOwnedSession(); err != nil {
		c.logger.Warningf("%s", err)
	}
	c.session = s
}

// OpenSession opens a session and sets it as the one used by
// [Client.WaitMemberState]. The client owns it and closes it on
// [Client.CloseSession], [Client.Close] or when another session is set.
func (c *Client) OpenSession(ctx context.Context, opts SessionOpts) error {
	if opts.Host == "" {
		opts.Host = "localhost"
	}
	if opts.User == "" {
		opts.User = "root"
	}

	conn, err := c.opener.Open(ctx, opts.toInternal())
	if err != nil {
		return mapError(fmt.Errorf("could not open session to %s:%d: %w", opts.Host, opts.Port, err))
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.closeOwnedSession(); err != nil {
		c.logger.Warningf("%s", err)
	}
	c.session = conn
	c.ownedSession = conn

	return nil
}

// CloseSession unsets the current session, closing it when it was opened by the client.
func (c *Client) CloseSession() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	err := c.closeOwnedSession()
	c.session = nil
	return err
}

func (c *Client) closeOwnedSession() error {
	if c.ownedSession == nil {
		return nil
	}

	err := c.ownedSession.Close()
	c.ownedSession = nil
	if err != nil {
		return fmt.Errorf("could not close session: %w", err)
	}
	return nil
}

// WaitMemberState blocks until the group member listening on port reports a
// state contained in states, e.g: "ONLINE,RECOVERING", using the current
// session. "(MISSING)" matches a member absent from the group.
//
// It polls every second (every millisecond while replaying) and returns
// [ErrTimeout] after 60 polls. Without a session it returns [ErrNoSession].
func (c *Client) WaitMemberState(ctx context.Context, port int, states string) error {
	c.mu.Lock()
	session := c.session
	c.mu.Unlock()

	if session == nil {
		return mapError(fmt.Errorf("could not wait for member %d state: %w", port, model.ErrNoSession))
	}

	return mapError(c.watcher.WaitMemberState(ctx, session, port, states))
}

// WaitMemberStateVia is like [Client.WaitMemberState] but uses a dedicated
// session opened with via and closed when done. An empty via.Port connects
// to the watched member itself.
func (c *Client) WaitMemberStateVia(ctx context.Context, port int, states string, via SessionOpts) error {
	svc, err := waitmember.NewService(waitmember.ServiceConfig{
		Opener: c.opener,
		Waiter: c.watcher,
		Logger: c.logger,
	})
	if err != nil {
		return fmt.Errorf("could not create service: %w", err)
	}

	return mapError(svc.Run(ctx, waitmember.Request{
		Port:   port,
		States: states,
		Via:    via.toInternal(),
	}))
}
