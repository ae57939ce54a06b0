// Copyright (c) 2026 Tulir Asokan
//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at http://mozilla.org/MPL/2.0/.

// Package ssLog contains a simple logger interface used by the other ssbot packages.
package ssLog

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

const (
	// Timestamp format
	timeFormat = "15:04:05.000"

	DebugLevel = "DEBUG" // Loggers initialized with DebugLevel will output Debugf(), Infof(), Warnf() and Errorf().
	InfoLevel  = "INFO"  // Loggers initialized with InfoLevel will output Infof(), Warnf() and Errorf().
	WarnLevel  = "WARN"  // Loggers initialized with WarnLevel will output Warnf() and Errorf().
	ErrorLevel = "ERROR" // Loggers initialized with ErrorLevel will output Errorf().
)

// Logger is a simple logger interface that can have subloggers for specific areas.
type Logger interface {
	Warnf(msg string, args ...interface{})
	Errorf(msg string, args ...interface{})
	Infof(msg string, args ...interface{})
	Debugf(msg string, args ...interface{})
	Sub(module string) Logger
}

type noopLogger struct{}

func (n *noopLogger) Errorf(_ string, _ ...interface{}) {}
func (n *noopLogger) Warnf(_ string, _ ...interface{})  {}
func (n *noopLogger) Infof(_ string, _ ...interface{})  {}
func (n *noopLogger) Debugf(_ string, _ ...interface{}) {}
func (n *noopLogger) Sub(_ string) Logger               { return n }

// Noop is a no-op Logger implementation that silently drops everything.
var Noop Logger = &noopLogger{}

type writerLogger struct {
	mod   string
	color bool
	min   int
	out   io.Writer
	lock  *sync.Mutex
}

var colors = map[string]string{
	InfoLevel:  "\033[36m",
	WarnLevel:  "\033[33m",
	ErrorLevel: "\033[31m",
}

var levelToInt = map[string]int{
	"":         -1,
	DebugLevel: 0,
	InfoLevel:  1,
	WarnLevel:  2,
	ErrorLevel: 3,
}

func (s *writerLogger) outputf(level, msg string, args ...interface{}) {
	if !shouldOutput(s.min, level) {
		return
	}
	var colorStart, colorReset string
	if s.color {
		colorStart = colors[level]
		colorReset = "\033[0m"
	}
	s.lock.Lock()
	_, _ = fmt.Fprintf(s.out, "%s%s [%s %s] %s%s\n", timestamp(), colorStart, s.mod, level, fmt.Sprintf(msg, args...), colorReset)
	s.lock.Unlock()
}

func (s *writerLogger) Errorf(msg string, args ...interface{}) { s.outputf(ErrorLevel, msg, args...) }
func (s *writerLogger) Warnf(msg string, args ...interface{})  { s.outputf(WarnLevel, msg, args...) }
func (s *writerLogger) Infof(msg string, args ...interface{})  { s.outputf(InfoLevel, msg, args...) }
func (s *writerLogger) Debugf(msg string, args ...interface{}) { s.outputf(DebugLevel, msg, args...) }

// Sub returns a sub-logger which uses the passed-in module name as a tag.
// Module names of sub loggers are slash-separated appended to the parent's name.
func (s *writerLogger) Sub(mod string) Logger {
	return &writerLogger{mod: sub(s.mod, mod), color: s.color, min: s.min, out: s.out, lock: s.lock}
}

// Stdout is a simple Logger implementation that outputs to stdout. The module name given is
// included in log lines.
//
// If color is true, then info, warn and error logs will be colored cyan, yellow and red
// respectively using ANSI color escape codes.
//
// The minLevel is the minimum level to log and can be DebugLevel, InfoLevel, WarnLevel or
// ErrorLevel.
func Stdout(module string, minLevel string, color bool) Logger {
	return Writer(os.Stdout, module, minLevel, color)
}

// Writer is like Stdout, but outputs to the given writer. Writes from all sub-loggers are serialized.
func Writer(out io.Writer, module string, minLevel string, color bool) Logger {
	return &writerLogger{
		mod:   module,
		color: color,
		min:   levelToInt[strings.ToUpper(minLevel)],
		out:   out,
		lock:  &sync.Mutex{},
	}
}

type zeroLogger struct {
	mod string
	log *zerolog.Logger
}

// Zerolog wraps a [zerolog.Logger] so it can be passed to ssbot packages.
// Sub-loggers add a "module" field instead of prefixing the message.
func Zerolog(log zerolog.Logger) Logger {
	return &zeroLogger{log: &log}
}

func (z *zeroLogger) Errorf(msg string, args ...interface{}) { z.log.Error().Msgf(msg, args...) }
func (z *zeroLogger) Warnf(msg string, args ...interface{})  { z.log.Warn().Msgf(msg, args...) }
func (z *zeroLogger) Infof(msg string, args ...interface{})  { z.log.Info().Msgf(msg, args...) }
func (z *zeroLogger) Debugf(msg string, args ...interface{}) { z.log.Debug().Msgf(msg, args...) }

func (z *zeroLogger) Sub(module string) Logger {
	mod := sub(z.mod, module)
	log := z.log.With().Str("module", mod).Logger()
	return &zeroLogger{mod: mod, log: &log}
}

// sub is a helper to consistently propagate the name of a submodule for all loggers.
func sub(existing, new string) string {
	out := existing
	if out != "" && new != "" {
		out += "/"
	}
	out += new
	return out
}

// timestamp is a helper to return a consistently formatted time stamp for all loggers.
func timestamp() string {
	return time.Now().Format(timeFormat)
}

// shouldOutput returns true when the the logger's level vs. the message's level indicates
// that the log should be sent.
func shouldOutput(loggerLevel int, messageLevel string) bool {
	return levelToInt[messageLevel] >= loggerLevel
}
