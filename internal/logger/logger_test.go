package logger

import (
	"testing"

	"kiosk-quiz/internal/config"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap/zapcore"
)

func TestInitialize(t *testing.T) {
	t.Run("debug development", func(t *testing.T) {
		assert.NoError(t, Initialize(config.LoggerConfig{Level: "debug", Env: "development"}))
		assert.True(t, Get().Core().Enabled(zapcore.DebugLevel))
	})

	t.Run("info production", func(t *testing.T) {
		assert.NoError(t, Initialize(config.LoggerConfig{Level: "info", Env: "production"}))
		assert.False(t, Get().Core().Enabled(zapcore.DebugLevel))
		assert.True(t, Get().Core().Enabled(zapcore.InfoLevel))
	})

	t.Run("unknown level", func(t *testing.T) {
		assert.Error(t, Initialize(config.LoggerConfig{Level: "loud"}))
	})
}
