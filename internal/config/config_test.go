package config

import (
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadEnvConfigWithoutDotEnv(t *testing.T) {
	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(t.TempDir()))
	t.Cleanup(func() { _ = os.Chdir(wd) })
	t.Setenv("APP_PORT", "9000")
	t.Setenv("EVALUATION_ROWS", "250")
	t.Setenv("PROTECT_FORMULA_HELPER", "false")
	t.Setenv("DB_CONN_MAX_LIFETIME", "30")

	require.NoError(t, LoadEnvConfig())

	cfg := DefaultEnvConfig
	assert.Equal(t, "9000", cfg.APP_PORT)
	assert.Equal(t, 250, cfg.EVALUATION_ROWS)
	assert.False(t, cfg.PROTECT_FORMULA_HELPER)
	assert.Equal(t, 30*time.Second, cfg.DB_CONN_MAX_LIFETIME)
	assert.Equal(t, 5, cfg.DEFAULT_METRIC_WEIGHT)
	assert.Equal(t, 4, cfg.BATCH_WORKERS)
	assert.Empty(t, cfg.ELASTIC_URL)
}

func TestGetEnvFallbacks(t *testing.T) {
	t.Setenv("LTX_TEST_INT", "seven")
	t.Setenv("LTX_TEST_BOOL", "maybe")
	t.Setenv("LTX_TEST_DURATION", "1m30s")

	assert.Equal(t, 7, getEnvInt("LTX_TEST_INT", 7))
	assert.True(t, getEnvBool("LTX_TEST_BOOL", true))
	assert.Equal(t, 90*time.Second, getEnvDuration("LTX_TEST_DURATION", time.Second))
	assert.Equal(t, "fallback", getEnvString("LTX_TEST_MISSING", "fallback"))
}
