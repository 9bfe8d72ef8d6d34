package logging

import (
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Setup configures the global zerolog logger. Development gets a readable
// console writer, every other environment gets JSON lines on stderr.
func Setup(env, level string) zerolog.Logger {
	var out io.Writer = os.Stderr
	if env == "development" || env == "test" {
		out = zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Kitchen}
	}
	parsed, err := zerolog.ParseLevel(level)
	if err != nil || parsed == zerolog.NoLevel {
		parsed = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(parsed)
	log.Logger = zerolog.New(out).With().Timestamp().Str("env", env).Logger()
	return log.Logger
}
