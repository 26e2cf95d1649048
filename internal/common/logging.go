package common

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Configure the global logger.
// An unknown level falls back to info
func SetupLogging(level string, pretty bool) {
	setupLogging(os.Stderr, level, pretty)
}

func setupLogging(out io.Writer, level string, pretty bool) {
	zerolog.TimeFieldFormat = time.RFC3339
	if pretty {
		out = zerolog.ConsoleWriter{Out: out, TimeFormat: time.TimeOnly}
	}
	log.Logger = zerolog.New(out).With().Timestamp().Logger()

	parsed, err := zerolog.ParseLevel(level)
	if err != nil || parsed == zerolog.NoLevel {
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
		log.Warn().Msg(fmt.Sprintf("Log level %q not understood, using info", level))
		return
	}
	zerolog.SetGlobalLevel(parsed)
}
