package book

import (
	"os"

	"github.com/rs/zerolog"
)

var logger = zerolog.New(os.Stderr).With().Timestamp().Logger()

// SetLogger replaces the package logger. The engine reports data-quality
// conditions (duplicate adds, unknown order ids, stale trades) through it.
func SetLogger(l zerolog.Logger) {
	logger = l
}
