package logger

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
)

// DebugLogPath receives a copy of console output when env=dev and level=debug.
const DebugLogPath = "logs/debug.log"

type LoggerConfig struct {
	Level          string                 `mapstructure:"level" validate:"oneof=trace debug info warn error"`
	Format         string                 `mapstructure:"format" validate:"oneof=json console"`
	OutputTarget   string                 `mapstructure:"output_target" validate:"oneof=stdout stderr"`
	TimeField      string                 `mapstructure:"time_field"`
	TimeFormat     string                 `mapstructure:"time_format" validate:"oneof=rfc3339 rfc3339nano unix unix_ms"`
	ServiceName    string                 `mapstructure:"service_name"`
	ServiceVersion string                 `mapstructure:"service_version"`
	Env            string                 `mapstructure:"env" validate:"oneof=dev test staging prod"`
	WithCaller     bool                   `mapstructure:"with_caller"`
	Stacktrace     bool                   `mapstructure:"stacktrace"`
	Fields         map[string]interface{} `mapstructure:"fields"`
}

// New builds the process logger and sets the zerolog global level.
func New(cfg *LoggerConfig) (logger zerolog.Logger, err error) {
	cfg.setDefaults()

	v := validator.New()
	if err = v.Struct(cfg); err != nil {
		return logger, fmt.Errorf("logger config validation error: %w", err)
	}

	level, err := zerolog.ParseLevel(cfg.Level)
	if err != nil {
		return logger, err
	}

	zerolog.TimestampFieldName = cfg.TimeField
	zerolog.TimeFieldFormat = zerologTimeFormat(cfg.TimeFormat)

	logger = zerolog.New(cfg.writer()).
		With().
		Timestamp().
		Str("service", cfg.ServiceName).
		Str("version", cfg.ServiceVersion).
		Str("env", cfg.Env).
		Logger()

	if cfg.WithCaller {
		logger = logger.With().Caller().Logger()
	}
	if cfg.Stacktrace {
		logger = logger.With().Stack().Logger()
	}
	if len(cfg.Fields) > 0 {
		logger = logger.With().Fields(cfg.Fields).Logger()
	}

	zerolog.SetGlobalLevel(level)
	return logger.Level(level), nil
}

// writer picks the sink: JSON goes straight to the target stream, console is human formatted,
// and dev+debug additionally tees into DebugLogPath when the file can be opened.
func (c *LoggerConfig) writer() io.Writer {
	var out io.Writer = os.Stdout
	if c.OutputTarget == "stderr" {
		out = os.Stderr
	}
	if c.Format == "json" {
		return out
	}

	console := zerolog.ConsoleWriter{Out: out, TimeFormat: zerologTimeFormat(c.TimeFormat)}
	if c.Env != "dev" || c.Level != "debug" {
		return console
	}
	if err := os.MkdirAll(filepath.Dir(DebugLogPath), 0o755); err != nil {
		return console
	}
	file, err := os.OpenFile(DebugLogPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o666)
	if err != nil {
		return console
	}
	return zerolog.MultiLevelWriter(console, file)
}

func zerologTimeFormat(name string) string {
	switch name {
	case "rfc3339":
		return "2006-01-02T15:04:05Z07:00"
	case "unix":
		return zerolog.TimeFormatUnix
	case "unix_ms":
		return zerolog.TimeFormatUnixMs
	default:
		return "2006-01-02T15:04:05.999999999Z07:00"
	}
}

func (c *LoggerConfig) setDefaults() {
	if c.Env == "" {
		c.Env = "prod"
	}
	if c.Level == "" {
		if c.Env == "dev" {
			c.Level = "debug"
		} else {
			c.Level = "info"
		}
	}
	if c.Format == "" {
		if c.Env == "dev" {
			c.Format = "console"
		} else {
			c.Format = "json"
		}
	}
	if c.OutputTarget == "" {
		c.OutputTarget = "stdout"
	}
	if c.TimeField == "" {
		c.TimeField = "ts"
	}
	if c.TimeFormat == "" {
		c.TimeFormat = "rfc3339nano"
	}
	if !c.WithCaller && c.Env == "dev" {
		c.WithCaller = true
	}
	if c.ServiceName == "" {
		c.ServiceName = "cricket-tournament-service"
	}
	if c.ServiceVersion == "" {
		c.ServiceVersion = "0.1.0"
	}
}
