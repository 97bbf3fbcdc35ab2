package cluster

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/slok/dbsandbox/internal/log"
	"github.com/slok/dbsandbox/internal/model"
	"github.com/slok/dbsandbox/internal/replay"
	"github.com/slok/dbsandbox/internal/utils/wait"
)

const (
	// MissingState is the state reported for a member that is not in the group.
	MissingState = "(MISSING)"
	// DefaultMaxIterations is how many times a member state is polled before timing out.
	DefaultMaxIterations = 60
	// PollInterval is the wait between polls against real servers.
	PollInterval = 1000 * time.Millisecond
	// ReplayPollInterval is the wait between polls while replaying.
	ReplayPollInterval = 1 * time.Millisecond

	memberStateQuery = "SELECT member_state FROM performance_schema.replication_group_members WHERE member_port = "
)

// WatcherConfig is the configuration for the member state watcher.
type WatcherConfig struct {
	Gate replay.Gate
	// MaxIterations is the poll limit. Defaults to DefaultMaxIterations.
	MaxIterations int
	// Sleep is used between polls. Defaults to wait.Sleep.
	Sleep  wait.SleepFunc
	Logger log.Logger
}

func (c *WatcherConfig) defaults() error {
	if c.MaxIterations == 0 {
		c.MaxIterations = DefaultMaxIterations
	}
	if c.MaxIterations < 0 {
		return fmt.Errorf("max iterations can't be negative")
	}

	if c.Sleep == nil {
		c.Sleep = wait.Sleep
	}

	if c.Logger == nil {
		c.Logger = log.Noop
	}
	c.Logger = c.Logger.WithValues(log.Kv{"svc": "cluster.Watcher"})

	return nil
}

// Watcher polls group replication member states.
type Watcher struct {
	gate          replay.Gate
	maxIterations int
	sleep         wait.SleepFunc
	logger        log.Logger
}

// NewWatcher returns a new member state watcher.
func NewWatcher(cfg WatcherConfig) (*Watcher, error) {
	if err := cfg.defaults(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &Watcher{
		gate:          cfg.Gate,
		maxIterations: cfg.MaxIterations,
		sleep:         cfg.Sleep,
		logger:        cfg.Logger,
	}, nil
}

// WaitMemberState blocks until the member listening on port reports a state
// contained in states, e.g: "ONLINE,RECOVERING". A member absent from the
// group reports MissingState, so waiting for it to leave is possible too.
//
// The match is a substring search of the current state inside states.
func (w *Watcher) WaitMemberState(ctx context.Context, session Session, port int, states string) error {
	if states == "" {
		return fmt.Errorf("states argument can't be empty: %w", model.ErrNotValid)
	}
	if session == nil {
		return fmt.Errorf("could not wait for member %d state: %w", port, model.ErrNoSession)
	}

	query := memberStateQuery + strconv.Itoa(port)
	interval := w.gate.PollInterval(ctx, PollInterval, ReplayPollInterval)
	for i := 0; i < w.maxIterations; i++ {
		current, err := memberState(ctx, session, query)
		if err != nil {
			return fmt.Errorf("could not get member %d state: %w", port, err)
		}

		if strings.Contains(states, current) {
			w.logger.Debugf("Member %d reached state %s", port, current)
			return nil
		}

		w.logger.Debugf("Member %d in state %s, waiting for %s", port, current, states)
		if err := w.sleep(ctx, interval); err != nil {
			return fmt.Errorf("waiting for member %d state: %w", port, err)
		}
	}

	return fmt.Errorf("waiting for cluster member to become one of %s: %w", states, model.ErrTimeout)
}

func memberState(ctx context.Context, session Session, query string) (string, error) {
	res, err := session.Query(ctx, query)
	if err != nil {
		return "", err
	}

	row, err := res.FetchOne()
	if err != nil {
		return "", err
	}
	if row == nil {
		return MissingState, nil
	}

	return row.GetString(0)
}
