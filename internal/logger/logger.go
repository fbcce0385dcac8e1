package logger

import (
	"context"
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
	zlog "github.com/rs/zerolog/log"

	appCtx "github.com/imedia765/a-051853/internal/pkg/context"
)

const serviceName = "member-service"

// Logger is the process-wide logger; zerolog's global logger mirrors it.
var Logger zerolog.Logger

func Init() {
	InitWithWriter(os.Stdout)
}

// InitWithWriter reads LOG_LEVEL (default info) and LOG_FORMAT
// ("json", anything else means console) and rebuilds Logger on w.
func InitWithWriter(w io.Writer) {
	level, err := zerolog.ParseLevel(os.Getenv("LOG_LEVEL"))
	if err != nil || level == zerolog.NoLevel {
		level = zerolog.InfoLevel
	}

	out := w
	if os.Getenv("LOG_FORMAT") != "json" {
		out = zerolog.ConsoleWriter{Out: w, TimeFormat: time.RFC3339}
	}

	Logger = zerolog.New(out).Level(level).With().
		Timestamp().
		Str("service", serviceName).
		Logger()
	zlog.Logger = Logger
}

// WithCtx returns the package logger enriched with the request id and member carried by ctx.
func WithCtx(ctx context.Context) *zerolog.Logger {
	reqID := appCtx.GetRequestID(ctx)
	member := appCtx.GetMemberNumber(ctx)
	if reqID == "" && member == "" {
		return &Logger
	}

	lc := Logger.With()
	if reqID != "" {
		lc = lc.Str("request_id", reqID)
	}
	if member != "" {
		lc = lc.Str("member_number", member)
	}
	l := lc.Logger()
	return &l
}
