// Package logging configures the process-wide zerolog output format used by
// the runtime's logging: the server's access log and registration messages,
// and the cmd/speedyrpcd entrypoint. The client does not log.
package logging

import (
	"os"
	"time"

	"github.com/rs/zerolog"
)

// RootLogger is the base logger all package-level loggers derive from via
// With(). It writes newline-delimited JSON to stderr with a nanosecond
// RFC3339 timestamp, matching what hosted log collectors expect.
var RootLogger *zerolog.Logger

func init() {
	zerolog.TimestampFieldName = "timestamp"
	zerolog.TimeFieldFormat = time.RFC3339Nano

	logger := zerolog.New(os.Stderr).With().Timestamp().Logger()
	RootLogger = &logger
}
