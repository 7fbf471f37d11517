// Package sysutil contains process-level helpers used at startup.
package sysutil

import (
	"strings"

	"github.com/rs/zerolog"
)

var logLevels = map[string]zerolog.Level{
	"debug":   zerolog.DebugLevel,
	"info":    zerolog.InfoLevel,
	"warn":    zerolog.WarnLevel,
	"warning": zerolog.WarnLevel,
	"error":   zerolog.ErrorLevel,
	"fatal":   zerolog.FatalLevel,
	"panic":   zerolog.PanicLevel,
}

// SetLogLevel sets the global zerolog level from a config string
// (case-insensitive, whitespace tolerated). Unknown or empty values
// fall back to info.
func SetLogLevel(lvl string) {
	if l, okLvl := logLevels[strings.ToLower(strings.TrimSpace(lvl))]; okLvl {
		zerolog.SetGlobalLevel(l)
		return
	}
	zerolog.SetGlobalLevel(zerolog.InfoLevel)
}
