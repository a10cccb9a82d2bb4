package logger

import (
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"
)

func TestNewConfig(t *testing.T) {
	t.Run("defaults when no logger section", func(t *testing.T) {
		v := viper.New()

		cfg, err := newConfig(v)

		require.NoError(t, err)
		assert.Equal(t, zapcore.InfoLevel, cfg.Level)
		assert.Equal(t, zapcore.ErrorLevel, cfg.StacktraceLevel)
		assert.False(t, cfg.Development)
	})

	t.Run("parses level strings", func(t *testing.T) {
		v := viper.New()
		v.Set("logger.level", "debug")
		v.Set("logger.development", true)
		v.Set("logger.stacktraceLevel", "warn")

		cfg, err := newConfig(v)

		require.NoError(t, err)
		assert.Equal(t, zapcore.DebugLevel, cfg.Level)
		assert.Equal(t, zapcore.WarnLevel, cfg.StacktraceLevel)
		assert.True(t, cfg.Development)
	})

	t.Run("rejects invalid level", func(t *testing.T) {
		v := viper.New()
		v.Set("logger.level", "loudest")

		_, err := newConfig(v)

		assert.Error(t, err)
	})
}

func TestContextLogger(t *testing.T) {
	t.Run("returns attached logger", func(t *testing.T) {
		cfg := Config{Level: zapcore.InfoLevel, StacktraceLevel: zapcore.ErrorLevel}
		log, err := newLogger(cfg)
		require.NoError(t, err)

		ctx := With(t.Context(), log)

		assert.Same(t, log, Get(ctx))
	})

	t.Run("falls back to global logger", func(t *testing.T) {
		assert.NotNil(t, Get(nil))
		assert.NotNil(t, Get(t.Context()))
	})
}
