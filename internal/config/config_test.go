package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadMissingFileReturnsEmptyConfig(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.NoError(t, err)

	assert.Empty(t, cfg.UserID)
	assert.False(t, cfg.MQTT.Enabled)
}

func TestSaveLoadRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")

	cfg := &Config{
		UserID: "abc-123",
		MQTT:   MQTTConfig{Enabled: true, Broker: "localhost:1883", TopicPrefix: "home"},
	}
	require.NoError(t, Save(path, cfg))

	loaded, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "abc-123", loaded.UserID)
	assert.Equal(t, "localhost:1883", loaded.MQTT.Broker)
	assert.Equal(t, "home", loaded.GetTopicPrefix())
}

func TestSaveUsesRestrictivePermissions(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, Save(path, &Config{UserID: "x"}))

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0600), info.Mode().Perm())
}

func TestEnsureUserIDGeneratesAndPersists(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")

	cfg := &Config{}
	id, err := cfg.EnsureUserID(path)
	require.NoError(t, err)
	require.NotEmpty(t, id)

	// The generated id survives a reload.
	loaded, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, id, loaded.UserID)

	// A second call returns the same id without regenerating.
	again, err := loaded.EnsureUserID(path)
	require.NoError(t, err)
	assert.Equal(t, id, again)
}

func TestDefaults(t *testing.T) {
	cfg := &Config{}

	assert.Equal(t, "wattwise", cfg.GetTopicPrefix())
	assert.Equal(t, "0 8 * * *", cfg.GetWatchSchedule())
	assert.Equal(t, ":9480", cfg.GetMetricsListen())
}
