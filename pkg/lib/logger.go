package lib

import (
	"context"

	"github.com/slok/dbsandbox/internal/log"
)

// quietLogger drops debug messages, used unless debug is enabled.
type quietLogger struct {
	log.Logger
}

func (q quietLogger) Debugf(format string, args ...any) {}

func (q quietLogger) WithValues(values map[string]any) log.Logger {
	return quietLogger{Logger: q.Logger.WithValues(values)}
}

func (q quietLogger) WithCtxValues(ctx context.Context) log.Logger {
	return quietLogger{Logger: q.Logger.WithCtxValues(ctx)}
}
