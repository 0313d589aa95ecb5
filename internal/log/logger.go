package log

import (
	"os"
	"time"

	"github.com/rs/zerolog"
)

// New builds the root logger. Development gets a colored console writer and
// debug level; production logs plain JSON at info.
func New(environment string) zerolog.Logger {
	var logger zerolog.Logger

	if environment == "production" {
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
		logger = zerolog.New(os.Stdout)
	} else {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
		logger = zerolog.New(zerolog.ConsoleWriter{
			Out:        os.Stdout,
			TimeFormat: time.RFC3339,
		})
	}

	return logger.With().
		Timestamp().
		Str("service", "gado-api").
		Str("env", environment).
		Logger()
}
