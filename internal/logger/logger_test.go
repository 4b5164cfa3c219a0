package logger_test

import (
	"os"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/maxviazov/cricket-tournament-service/internal/logger"
)

func TestNew(t *testing.T) {
	tests := []struct {
		name      string
		cfg       logger.LoggerConfig
		wantErr   bool
		wantLevel zerolog.Level
	}{
		{"prod defaults to info", logger.LoggerConfig{Env: "prod"}, false, zerolog.InfoLevel},
		{"empty env is prod", logger.LoggerConfig{}, false, zerolog.InfoLevel},
		{"dev defaults to debug", logger.LoggerConfig{Env: "dev", Format: "json"}, false, zerolog.DebugLevel},
		{"explicit level wins", logger.LoggerConfig{Env: "staging", Level: "warn", Stacktrace: true}, false, zerolog.WarnLevel},
		{"test env with fields", logger.LoggerConfig{Env: "test", Level: "error", Fields: map[string]interface{}{"region": "eu"}}, false, zerolog.ErrorLevel},
		{"stderr console", logger.LoggerConfig{Env: "prod", Format: "console", OutputTarget: "stderr", TimeFormat: "unix_ms"}, false, zerolog.InfoLevel},
		{"unknown env", logger.LoggerConfig{Env: "qa"}, true, 0},
		{"unknown level", logger.LoggerConfig{Env: "prod", Level: "loud"}, true, 0},
		{"unknown format", logger.LoggerConfig{Env: "prod", Format: "xml"}, true, 0},
		{"unknown time format", logger.LoggerConfig{Env: "prod", TimeFormat: "iso"}, true, 0},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			cfg := tc.cfg
			l, err := logger.New(&cfg)
			if tc.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.wantLevel, zerolog.GlobalLevel())
			assert.Equal(t, tc.wantLevel, l.GetLevel())
			assert.Equal(t, "cricket-tournament-service", cfg.ServiceName)
		})
	}
}

func TestNew_DevDebugWritesFile(t *testing.T) {
	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(t.TempDir()))
	t.Cleanup(func() { _ = os.Chdir(wd) })

	cfg := logger.LoggerConfig{Env: "dev", Level: "debug"}
	l, err := logger.New(&cfg)
	require.NoError(t, err)
	l.Debug().Str("component", "roster").Msg("player joined roster")

	data, err := os.ReadFile(logger.DebugLogPath)
	require.NoError(t, err)
	assert.Contains(t, string(data), "player joined roster")
}
