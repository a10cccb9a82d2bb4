package config

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewAppConfig(t *testing.T) {
	t.Run("loads config from environment variables", func(t *testing.T) {
		t.Setenv(envAppEnv, "local")
		t.Setenv(envAppServiceName, "gamification-outbox")
		t.Setenv(envAppServiceVersion, "1.2.3")
		t.Setenv(envConfigFile, "/etc/outbox/config.yaml")

		conf, err := newAppConfig()

		require.NoError(t, err)
		assert.Equal(t, "local", conf.Environment)
		assert.Equal(t, "gamification-outbox", conf.ServiceName)
		assert.Equal(t, "1.2.3", conf.ServiceVersion)
		assert.Equal(t, "/etc/outbox/config.yaml", conf.ConfigFile)
	})

	t.Run("builds default config file path", func(t *testing.T) {
		t.Setenv(envAppEnv, "staging")
		t.Setenv(envAppServiceName, "gamification-outbox")
		t.Setenv(envAppServiceVersion, "1.0.0")
		t.Setenv(envConfigFile, "")
		t.Setenv(envConfigDir, "")
		t.Setenv(envConfigName, "")

		conf, err := newAppConfig()

		require.NoError(t, err)
		assert.Equal(t, filepath.Join("configs", "config.staging.yaml"), conf.ConfigFile)
	})

	t.Run("fails without APP_ENV", func(t *testing.T) {
		t.Setenv(envAppEnv, "")
		t.Setenv(envAppServiceName, "gamification-outbox")
		t.Setenv(envAppServiceVersion, "1.0.0")

		_, err := newAppConfig()

		assert.ErrorContains(t, err, envAppEnv)
	})

	t.Run("fails without service name", func(t *testing.T) {
		t.Setenv(envAppEnv, "local")
		t.Setenv(envAppServiceName, "")
		t.Setenv(envAppServiceVersion, "1.0.0")

		_, err := newAppConfig()

		assert.ErrorContains(t, err, envAppServiceName)
	})
}

func TestNewViper(t *testing.T) {
	t.Run("empty config file yields env-only viper", func(t *testing.T) {
		v, err := newViper(AppConfig{})

		require.NoError(t, err)
		assert.Empty(t, v.ConfigFileUsed())
	})

	t.Run("missing config file fails", func(t *testing.T) {
		_, err := newViper(AppConfig{ConfigFile: "/does/not/exist.yaml"})

		assert.Error(t, err)
	})
}
