package waitmember

import (
	"context"
	"fmt"

	"github.com/slok/dbsandbox/internal/cluster"
	"github.com/slok/dbsandbox/internal/log"
	"github.com/slok/dbsandbox/internal/model"
)

// Waiter waits for a group member to reach a state.
type Waiter interface {
	WaitMemberState(ctx context.Context, session cluster.Session, port int, states string) error
}

// ServiceConfig is the configuration for the wait member service.
type ServiceConfig struct {
	Opener cluster.Opener
	Waiter Waiter
	Logger log.Logger
}

func (c *ServiceConfig) defaults() error {
	if c.Opener == nil {
		return fmt.Errorf("opener is required")
	}

	if c.Waiter == nil {
		return fmt.Errorf("waiter is required")
	}

	if c.Logger == nil {
		c.Logger = log.Noop
	}
	c.Logger = c.Logger.WithValues(log.Kv{"svc": "app.WaitMember"})

	return nil
}

// Service waits for cluster members using a dedicated session.
type Service struct {
	opener cluster.Opener
	waiter Waiter
	logger log.Logger
}

// NewService creates a new wait member service.
func NewService(cfg ServiceConfig) (*Service, error) {
	if err := cfg.defaults(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &Service{
		opener: cfg.Opener,
		waiter: cfg.Waiter,
		logger: cfg.Logger,
	}, nil
}

// Request represents the wait member request parameters.
type Request struct {
	// Port is the port of the member to watch.
	Port int
	// States is the accepted states list, e.g: "ONLINE,RECOVERING".
	States string
	// Via is the server the session connects to. Defaults to the watched member.
	Via cluster.ConnOptions
}

// Run opens a session and waits until the member reaches one of the states.
func (s *Service) Run(ctx context.Context, req Request) error {
	if err := model.ValidatePort(req.Port); err != nil {
		return fmt.Errorf("invalid request: %w", err)
	}

	via := req.Via
	if via.Port == 0 {
		via.Port = req.Port
	}
	if via.Host == "" {
		via.Host = "localhost"
	}
	if via.User == "" {
		via.User = "root"
	}

	conn, err := s.opener.Open(ctx, via)
	if err != nil {
		return fmt.Errorf("could not open session to %s:%d: %w", via.Host, via.Port, err)
	}
	defer func() {
		if err := conn.Close(); err != nil {
			s.logger.Warningf("could not close session: %s", err)
		}
	}()

	if err := s.waiter.WaitMemberState(ctx, conn, req.Port, req.States); err != nil {
		return err
	}

	s.logger.Infof("member %d reached one of %s", req.Port, req.States)
	return nil
}
