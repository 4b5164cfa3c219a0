package postgres

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/tracelog"
	"github.com/rs/zerolog"
)

// pgxLogger adapts zerolog.Logger to pgx's tracelog interface.
type pgxLogger struct {
	logger zerolog.Logger
}

func newPgxLogger(logger zerolog.Logger) *pgxLogger {
	return &pgxLogger{logger: logger.With().Str("component", "pgx").Logger()}
}

// Log maps pgx levels onto zerolog. Statement text and args are only emitted at trace level;
// query duration and errors are lifted into typed fields at every level.
func (l *pgxLogger) Log(_ context.Context, level tracelog.LogLevel, msg string, data map[string]any) {
	event := l.event(level)
	if event == nil {
		return
	}

	if level == tracelog.LogLevelTrace {
		if sql, ok := data["sql"].(string); ok {
			event = event.Str("sql", sql)
		}
		if args, ok := data["args"]; ok {
			event = event.Interface("args", args)
		}
	}
	delete(data, "sql")
	delete(data, "args")

	if d, ok := data["time"].(time.Duration); ok {
		event = event.Dur("took", d)
		delete(data, "time")
	}
	if err, ok := data["err"].(error); ok {
		event = event.Err(err)
		delete(data, "err")
	}
	if len(data) > 0 {
		event = event.Fields(data)
	}
	event.Msg(msg)
}

func (l *pgxLogger) event(level tracelog.LogLevel) *zerolog.Event {
	switch level {
	case tracelog.LogLevelNone:
		return nil
	case tracelog.LogLevelTrace:
		return l.logger.Trace()
	case tracelog.LogLevelDebug:
		return l.logger.Debug()
	case tracelog.LogLevelInfo:
		return l.logger.Info()
	case tracelog.LogLevelWarn:
		return l.logger.Warn()
	case tracelog.LogLevelError:
		return l.logger.Error()
	default:
		return l.logger.Info().Str("pgx_log_level", level.String())
	}
}
