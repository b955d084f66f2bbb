package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "config.yml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))

	return path
}

func TestLoad(t *testing.T) {
	t.Run("Defaults when the file is missing", func(t *testing.T) {
		// When: loading a config that does not exist
		conf, err := Load(filepath.Join(t.TempDir(), "missing.yml"))

		// Then: defaults are used
		require.NoError(t, err)
		assert.Equal(t, "info", conf.LogLevel)
		assert.Equal(t, "9090", conf.HTTPPort)
		assert.Equal(t, StorageMemory, conf.Storage.Driver)
		assert.Equal(t, "ttt_session", conf.Session.CookieName)
		assert.Equal(t, 24*time.Hour, conf.Session.TTL)
		assert.Equal(t, "localhost:6379", conf.Redis.GetRedisAddr())
	})

	t.Run("Reads yaml values", func(t *testing.T) {
		// Given: a config file selecting redis
		path := writeConfig(t, `
log-level: debug
http-port: "8081"
storage:
  driver: redis
redis:
  host: cache
  port: "6380"
  db: 2
session:
  secret: s3cr3t
  ttl: 30m
`)

		// When: it is loaded
		conf, err := Load(path)

		// Then: the file values win over defaults
		require.NoError(t, err)
		assert.Equal(t, "debug", conf.LogLevel)
		assert.Equal(t, "8081", conf.HTTPPort)
		assert.Equal(t, StorageRedis, conf.Storage.Driver)
		assert.Equal(t, "cache:6380", conf.Redis.GetRedisAddr())
		assert.Equal(t, 2, conf.Redis.DB)
		assert.Equal(t, "s3cr3t", conf.Session.Secret)
		assert.Equal(t, 30*time.Minute, conf.Session.TTL)
	})

	t.Run("Environment overrides the file", func(t *testing.T) {
		path := writeConfig(t, "http-port: \"8081\"\n")
		t.Setenv("HTTP_PORT", "7000")

		conf, err := Load(path)

		require.NoError(t, err)
		assert.Equal(t, "7000", conf.HTTPPort)
	})

	t.Run("Rejects an unknown storage driver", func(t *testing.T) {
		path := writeConfig(t, "storage:\n  driver: mongo\n")

		_, err := Load(path)

		require.ErrorIs(t, err, ErrUnknownStorage)
	})

	t.Run("MustLoad panics on a bad driver", func(t *testing.T) {
		t.Setenv("STORAGE_DRIVER", "etcd")

		assert.Panics(t, func() {
			MustLoad(filepath.Join(t.TempDir(), "missing.yml"))
		})
	})
}
