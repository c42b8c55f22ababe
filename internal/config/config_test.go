package config

import (
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mcoot/eventgames/internal/model"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := LoadFrom(map[string]string{})
	require.NoError(t, err)

	assert.Equal(t, "", cfg.HTTPHost)
	assert.Equal(t, 8080, cfg.HTTPPort)
	assert.Equal(t, slog.LevelInfo, cfg.LogLevel)
	assert.Equal(t, StorageMemory, cfg.StorageType)
	assert.Equal(t, "redis://localhost:6379", cfg.RedisURL)
	assert.Equal(t, "data/eventgames.db", cfg.SQLitePath)
	assert.Equal(t, model.PolicyFirst, cfg.ResultPolicy)
	assert.Empty(t, cfg.AdminSecret)
	assert.Empty(t, cfg.Teams)
}

func TestLoadOverrides(t *testing.T) {
	cfg, err := LoadFrom(map[string]string{
		"HTTP_HOST":     "127.0.0.1",
		"HTTP_PORT":     "9090",
		"LOG_LEVEL":     "DEBUG",
		"STORAGE_TYPE":  "sqlite",
		"SQLITE_PATH":   "/tmp/events.db",
		"RESULT_POLICY": "best",
		"ADMIN_SECRET":  "hunter2",
		"TEAMS":         "Alpha, Beta,,Gamma ",
	})
	require.NoError(t, err)

	assert.Equal(t, "127.0.0.1", cfg.HTTPHost)
	assert.Equal(t, 9090, cfg.HTTPPort)
	assert.Equal(t, slog.LevelDebug, cfg.LogLevel)
	assert.Equal(t, StorageSQLite, cfg.StorageType)
	assert.Equal(t, "/tmp/events.db", cfg.SQLitePath)
	assert.Equal(t, model.PolicyBest, cfg.ResultPolicy)
	assert.Equal(t, "hunter2", cfg.AdminSecret)
	assert.Equal(t, []string{"Alpha", "Beta", "Gamma"}, cfg.Teams)
}

func TestLoadRejectsInvalidValues(t *testing.T) {
	tests := []struct {
		name string
		vars map[string]string
	}{
		{"unknown storage", map[string]string{"STORAGE_TYPE": "postgres"}},
		{"unknown policy", map[string]string{"RESULT_POLICY": "latest"}},
		{"bad port", map[string]string{"HTTP_PORT": "http"}},
		{"port out of range", map[string]string{"HTTP_PORT": "70000"}},
		{"bad log level", map[string]string{"LOG_LEVEL": "LOUD"}},
		{"empty sqlite path", map[string]string{"STORAGE_TYPE": "sqlite", "SQLITE_PATH": " "}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadFrom(tt.vars)
			assert.Error(t, err)
		})
	}
}

func TestValidateReportsEveryProblem(t *testing.T) {
	cfg := &Config{StorageType: "disk", ResultPolicy: "latest", HTTPPort: 8080}

	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "STORAGE_TYPE")
	assert.Contains(t, err.Error(), "RESULT_POLICY")
}
