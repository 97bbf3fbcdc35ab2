// Package log is the logging surface of the dbsandbox SDK.
//
// Any [Logger] implementation works, [Noop] is used when lib.Config has none.
// Debug messages only reach the logger when lib.Config.Debug is set, e.g. with
// TEST_DEBUG through lib.ConfigFromEnv.
//
// Test harnesses already using logrus can pass it as is:
//
//	l := logrus.New()
//	l.SetLevel(logrus.DebugLevel)
//	client, err := lib.New(ctx, lib.Config{Logger: log.Logrus(logrus.NewEntry(l))})
package log

import (
	"github.com/sirupsen/logrus"

	"github.com/slok/dbsandbox/internal/log"
	loglogrus "github.com/slok/dbsandbox/internal/log/logrus"
)

// Logger is the interface loggers implement, only the format methods
// (Infof, Warningf, Errorf, Debugf) need meaningful implementations.
type Logger = log.Logger

// Kv are structured logging key-values.
type Kv = log.Kv

// Noop discards every message.
var Noop = log.Noop

// Logrus adapts a logrus entry, the logger used by the dbsandbox CLI.
func Logrus(e *logrus.Entry) Logger { return loglogrus.NewLogrus(e) }
