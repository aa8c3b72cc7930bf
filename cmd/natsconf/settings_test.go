package main

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadSettings(t *testing.T) {
	t.Run("empty path returns defaults", func(t *testing.T) {
		s, err := loadSettings("")
		require.NoError(t, err)
		assert.Equal(t, "nats://localhost:4222", s.NATS.URL)
		assert.Equal(t, "$NATSCONF", s.NATS.SubjectPrefix)
		assert.Equal(t, 5*time.Second, s.NATS.RequestTimeout.Std())
		assert.Equal(t, 9090, s.Metrics.Port)
		assert.True(t, s.History.Mirror)
		assert.Equal(t, time.Second, s.Reload.MinInterval.Std())
	})

	t.Run("file overrides defaults", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "settings.yaml")
		content := `
nats:
  url: nats://broker:4222
  request_timeout: 10s
metrics:
  port: 0
history:
  mirror: false
reload:
  min_interval: 5s
applied_by: ops-team
`
		require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

		s, err := loadSettings(path)
		require.NoError(t, err)
		assert.Equal(t, "nats://broker:4222", s.NATS.URL)
		assert.Equal(t, 10*time.Second, s.NATS.RequestTimeout.Std())
		assert.Equal(t, 0, s.Metrics.Port)
		assert.False(t, s.History.Mirror)
		assert.Equal(t, 5*time.Second, s.Reload.MinInterval.Std())
		assert.Equal(t, "ops-team", s.AppliedBy)

		// Keys absent from the file keep their defaults.
		assert.Equal(t, "$NATSCONF", s.NATS.SubjectPrefix)
		assert.Equal(t, "natsconf_versions", s.History.Bucket)
	})

	t.Run("missing file is an error", func(t *testing.T) {
		_, err := loadSettings(filepath.Join(t.TempDir(), "absent.yaml"))
		assert.Error(t, err)
	})

	t.Run("malformed yaml is an error", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "bad.yaml")
		require.NoError(t, os.WriteFile(path, []byte("nats: [not a map"), 0o600))
		_, err := loadSettings(path)
		assert.Error(t, err)
	})
}
