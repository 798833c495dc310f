/*
Copyright 2025.

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

    http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/

// Package logger provides the shared logrus logger with request-scoped
// fields carried through context.Context.
package logger

import (
	"context"
	"fmt"
	"os"
	"sync"

	"github.com/sirupsen/logrus"
)

type contextKey string

const requestIDKey contextKey = "request_id"

var (
	base *logrus.Logger
	once sync.Once
)

func baseLogger() *logrus.Logger {
	once.Do(func() {
		base = logrus.New()
		base.SetOutput(os.Stdout)
		base.SetFormatter(&logrus.JSONFormatter{})
		base.SetLevel(logrus.InfoLevel)
	})
	return base
}

// SetLevel changes the log level for the whole process. Unparseable
// levels are ignored and the current level is kept.
func SetLevel(level string) {
	parsed, err := logrus.ParseLevel(level)
	if err != nil {
		baseLogger().WithError(err).Warn("invalid log level, keeping current level")
		return
	}
	baseLogger().SetLevel(parsed)
}

// WithRequestId returns a context carrying a request identifier that
// Logger attaches to every entry derived from that context.
func WithRequestId(ctx context.Context, id interface{}) context.Context {
	return context.WithValue(ctx, requestIDKey, fmt.Sprint(id))
}

// Logger returns a logrus entry scoped to the given context.
func Logger(ctx context.Context) *logrus.Entry {
	entry := logrus.NewEntry(baseLogger())
	if ctx == nil {
		return entry
	}
	if id, ok := ctx.Value(requestIDKey).(string); ok && id != "" {
		entry = entry.WithField("request_id", id)
	}
	return entry
}
