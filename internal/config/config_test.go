package config

import (
	"testing"
	"time"

	"github.com/AdamBeresnev/tourny-app/internal/bracket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func envFrom(values map[string]string) func(string) string {
	return func(key string) string {
		return values[key]
	}
}

func TestLoad_Defaults(t *testing.T) {
	cfg, err := load(envFrom(nil))
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.Port)
	assert.Equal(t, ":8080", cfg.Addr())
	assert.Equal(t, "tourny.db", cfg.DatabasePath)
	assert.Equal(t, "file://migrations", cfg.MigrationsURL)
	assert.Equal(t, 24*time.Hour, cfg.SessionLife)
	assert.Equal(t, 5*time.Minute, cfg.ReconcileInterval)
	assert.Equal(t, bracket.SizePowerOfTwo, cfg.SizePolicy)
	assert.Equal(t, bracket.RevisionForbid, cfg.RevisionPolicy)
	assert.Equal(t, 2.0, cfg.ResultRateLimit)
	assert.Equal(t, 5, cfg.ResultRateBurst)
}

func TestLoad_Overrides(t *testing.T) {
	cfg, err := load(envFrom(map[string]string{
		"PORT":                    "9000",
		"DATABASE_PATH":           "/data/brackets.db",
		"SESSION_LIFETIME":        "1h",
		"RECONCILE_INTERVAL":      "0",
		"BRACKET_SIZE_POLICY":     "floor",
		"BRACKET_REVISION_POLICY": "cascade",
		"RESULT_RATE_LIMIT":       "0.5",
		"RESULT_RATE_BURST":       "1",
	}))
	require.NoError(t, err)

	assert.Equal(t, 9000, cfg.Port)
	assert.Equal(t, "/data/brackets.db", cfg.DatabasePath)
	assert.Equal(t, time.Hour, cfg.SessionLife)
	assert.Zero(t, cfg.ReconcileInterval)
	assert.Equal(t, bracket.SizeFloor, cfg.SizePolicy)
	assert.Equal(t, bracket.RevisionCascade, cfg.RevisionPolicy)
	assert.Equal(t, 0.5, cfg.ResultRateLimit)
	assert.Equal(t, 1, cfg.ResultRateBurst)
}

func TestLoad_Invalid(t *testing.T) {
	testCases := []struct {
		name string
		env  map[string]string
	}{
		{name: "port", env: map[string]string{"PORT": "http"}},
		{name: "negative port", env: map[string]string{"PORT": "-1"}},
		{name: "session lifetime", env: map[string]string{"SESSION_LIFETIME": "forever"}},
		{name: "size policy", env: map[string]string{"BRACKET_SIZE_POLICY": "byes"}},
		{name: "revision policy", env: map[string]string{"BRACKET_REVISION_POLICY": "undo"}},
		{name: "rate limit", env: map[string]string{"RESULT_RATE_LIMIT": "0"}},
		{name: "rate burst", env: map[string]string{"RESULT_RATE_BURST": "many"}},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := load(envFrom(tc.env))
			assert.Error(t, err)
		})
	}
}
