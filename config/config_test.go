package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestDefault(t *testing.T) {
	c := Default()

	assert.Equal(t, uint16(2), c.PublisherID)
	assert.Equal(t, uint32(1108), c.InstrumentID)
	assert.Equal(t, 8192, c.OrderCapacity)
	assert.Equal(t, uint64(50000), c.ProgressEvery)
	assert.Equal(t, uint64(0), c.AuditEvery)
	assert.Equal(t, "info", c.Logging.Level)
	assert.False(t, c.Logging.Pretty)
}

func TestLoad(t *testing.T) {
	t.Run("empty path keeps defaults", func(t *testing.T) {
		c, err := Load("")
		require.NoError(t, err)
		assert.Equal(t, Default(), c)
	})

	t.Run("file overrides defaults", func(t *testing.T) {
		path := writeFile(t, `
instrument_id: 42
progress_every: 100
logging:
  level: debug
  pretty: true
`)
		c, err := Load(path)
		require.NoError(t, err)

		assert.Equal(t, uint32(42), c.InstrumentID)
		assert.Equal(t, uint64(100), c.ProgressEvery)
		assert.Equal(t, "debug", c.Logging.Level)
		assert.True(t, c.Logging.Pretty)

		// Untouched keys keep their defaults.
		assert.Equal(t, uint16(2), c.PublisherID)
		assert.Equal(t, 8192, c.OrderCapacity)
	})

	t.Run("empty file keeps defaults", func(t *testing.T) {
		c, err := Load(writeFile(t, ""))
		require.NoError(t, err)
		assert.Equal(t, Default(), c)
	})

	t.Run("unknown key rejected", func(t *testing.T) {
		_, err := Load(writeFile(t, "progress_evry: 100\n"))
		require.Error(t, err)
		assert.Contains(t, err.Error(), "progress_evry")
	})

	t.Run("malformed yaml rejected", func(t *testing.T) {
		_, err := Load(writeFile(t, "publisher_id: [1,\n"))
		assert.Error(t, err)
	})

	t.Run("missing file rejected", func(t *testing.T) {
		_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
		assert.Error(t, err)
	})

	t.Run("negative capacity rejected", func(t *testing.T) {
		_, err := Load(writeFile(t, "order_capacity: -5\n"))
		require.Error(t, err)
		assert.Contains(t, err.Error(), "order_capacity")
	})
}
