package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfigFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "conf.json")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestParseJson_OverlaysValues(t *testing.T) {
	path := writeConfigFile(t, `{
		"endpoint_addr": ":9999",
		"cron_secret": "json-secret",
		"timezone": "Asia/Tokyo",
		"sweep_parallelism": 2,
		"email_timeout": "45s"
	}`)

	origArgs := os.Args
	defer func() { os.Args = origArgs }()
	os.Args = []string{"server", "-c", path}

	cfg := &Config{}
	cfg.LoadDefaults()
	parseJson(cfg)

	assert.Equal(t, ":9999", cfg.EndpointAddr)
	assert.Equal(t, "json-secret", cfg.CronSecret)
	assert.Equal(t, "Asia/Tokyo", cfg.Timezone)
	assert.Equal(t, 2, cfg.SweepParallelism)
	assert.Equal(t, 45*time.Second, cfg.EmailTimeout)

	// absent fields keep their defaults
	assert.Equal(t, "capsules", cfg.S3Bucket)
	assert.Equal(t, "http://localhost:8081", cfg.BaseURL)
}

func TestParseJson_NoFileFlagIsNoop(t *testing.T) {
	origArgs := os.Args
	defer func() { os.Args = origArgs }()
	os.Args = []string{"server"}

	cfg := &Config{}
	cfg.LoadDefaults()
	parseJson(cfg)

	assert.Equal(t, ":8081", cfg.EndpointAddr)
}

func TestParseJson_InvalidJSONPanics(t *testing.T) {
	path := writeConfigFile(t, `{not-json`)

	origArgs := os.Args
	defer func() { os.Args = origArgs }()
	os.Args = []string{"server", "-c", path}

	cfg := &Config{}
	cfg.LoadDefaults()

	assert.Panics(t, func() { parseJson(cfg) })
}
