// Package fake provides a cluster.Opener answering from memory, it is used
// together with the fake provisioner where there are no real servers.
package fake

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"sync"

	"github.com/slok/dbsandbox/internal/cluster"
	clustermysql "github.com/slok/dbsandbox/internal/cluster/mysql"
	"github.com/slok/dbsandbox/internal/log"
	"github.com/slok/dbsandbox/internal/model"
)

// DefaultVersion is the server version reported when none is configured.
const DefaultVersion = "8.0.0-fake"

const memberPortFilter = "member_port = "

// OpenerConfig is the configuration for the fake opener.
type OpenerConfig struct {
	// Version is returned by the server version query. Defaults to DefaultVersion.
	Version string
	// MemberStates are the group member states by port. Ports missing here
	// are not part of the group.
	MemberStates map[int]string
	Logger       log.Logger
}

func (c *OpenerConfig) defaults() error {
	if c.Version == "" {
		c.Version = DefaultVersion
	}

	if c.MemberStates == nil {
		c.MemberStates = map[int]string{}
	}

	if c.Logger == nil {
		c.Logger = log.Noop
	}
	c.Logger = c.Logger.WithValues(log.Kv{"svc": "cluster.Fake"})

	return nil
}

// Opener opens in-memory sessions.
type Opener struct {
	mu      sync.Mutex
	version string
	states  map[int]string
	opened  []cluster.ConnOptions
	logger  log.Logger
}

// NewOpener returns a new fake opener.
func NewOpener(cfg OpenerConfig) (*Opener, error) {
	if err := cfg.defaults(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	states := make(map[int]string, len(cfg.MemberStates))
	for k, v := range cfg.MemberStates {
		states[k] = v
	}

	return &Opener{
		version: cfg.Version,
		states:  states,
		logger:  cfg.Logger,
	}, nil
}

func (o *Opener) Open(ctx context.Context, opts cluster.ConnOptions) (cluster.Conn, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	o.mu.Lock()
	o.opened = append(o.opened, opts)
	o.mu.Unlock()

	o.logger.Debugf("Session opened to %s:%d", opts.Host, opts.Port)

	return conn{opener: o}, nil
}

// SetMemberState sets the state reported for the member on port. An empty
// state removes the member from the group.
func (o *Opener) SetMemberState(port int, state string) {
	o.mu.Lock()
	defer o.mu.Unlock()

	if state == "" {
		delete(o.states, port)
		return
	}
	o.states[port] = state
}

// Opened returns the options of every opened session.
func (o *Opener) Opened() []cluster.ConnOptions {
	o.mu.Lock()
	defer o.mu.Unlock()

	return append([]cluster.ConnOptions(nil), o.opened...)
}

func (o *Opener) memberState(port int) (string, bool) {
	o.mu.Lock()
	defer o.mu.Unlock()

	s, ok := o.states[port]
	return s, ok
}

type conn struct {
	opener *Opener
}

func (c conn) Query(ctx context.Context, sql string) (cluster.Result, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	q := strings.TrimSpace(sql)
	if strings.EqualFold(q, "select @@version") {
		return clustermysql.NewResult(clustermysql.Row{c.opener.version}), nil
	}

	i := strings.LastIndex(q, memberPortFilter)
	if i < 0 {
		return nil, fmt.Errorf("unsupported query %q: %w", sql, model.ErrNotValid)
	}

	port, err := strconv.Atoi(strings.TrimSpace(q[i+len(memberPortFilter):]))
	if err != nil {
		return nil, fmt.Errorf("invalid member port in query %q: %w", sql, model.ErrNotValid)
	}

	state, ok := c.opener.memberState(port)
	if !ok {
		return clustermysql.NewResult(), nil
	}
	return clustermysql.NewResult(clustermysql.Row{state}), nil
}

func (c conn) Close() error { return nil }
