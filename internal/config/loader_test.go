package config

import (
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const validConfigYAML = `
server:
  port: 8081
  mode: debug
  status_policy: legacy
workspace:
  root: /var/lib/cdforge/static
  ttl: 2h
assembly:
  wait_timeout: 90s
  poll_interval: 500ms
bridge:
  command: ["/opt/cdforge/bin/bridge", "--quiet"]
minimizer:
  binary: /usr/bin/obabel
  timeout: 120s
session:
  backend: redis
redis:
  addr: redis:6379
log:
  level: debug
  format: text
`

func createTempConfigFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoad_ValidFile(t *testing.T) {
	cfg, err := Load(createTempConfigFile(t, validConfigYAML))
	require.NoError(t, err)

	assert.Equal(t, 8081, cfg.Server.Port)
	assert.Equal(t, StatusPolicyLegacy, cfg.Server.StatusPolicy)
	assert.Equal(t, "/var/lib/cdforge/static", cfg.Workspace.Root)
	assert.Equal(t, 2*time.Hour, cfg.Workspace.TTL)
	assert.Equal(t, 2*time.Hour, cfg.Session.TTL, "session ttl follows workspace ttl")
	assert.Equal(t, 90*time.Second, cfg.Assembly.WaitTimeout)
	assert.Equal(t, 500*time.Millisecond, cfg.Assembly.PollInterval)
	assert.Equal(t, []string{"/opt/cdforge/bin/bridge", "--quiet"}, cfg.Bridge.Command)
	assert.Equal(t, "/usr/bin/obabel", cfg.Minimizer.Binary)
	assert.Equal(t, "redis", cfg.Session.Backend)
	assert.Equal(t, "redis:6379", cfg.Redis.Addr)
	assert.True(t, cfg.Metrics.Enabled)

	// Untouched sections fall back to defaults.
	assert.Equal(t, DefaultImageSize, cfg.Toolkit.ImageSize)
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to read config file")
}

func TestLoad_InvalidValues(t *testing.T) {
	_, err := Load(createTempConfigFile(t, "server:\n  status_policy: sometimes\n"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "validation failed")
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	t.Setenv("CDFORGE_SERVER_PORT", "9090")
	t.Setenv("CDFORGE_MINIMIZER_TIMEOUT", "45s")

	cfg, err := Load(createTempConfigFile(t, validConfigYAML))
	require.NoError(t, err)
	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, 45*time.Second, cfg.Minimizer.Timeout)
}

func TestLoadFromEnv(t *testing.T) {
	t.Setenv("CDFORGE_WORKSPACE_ROOT", "/tmp/cdforge")
	t.Setenv("CDFORGE_ASSEMBLY_WAIT_TIMEOUT", "30s")
	t.Setenv("CDFORGE_KAFKA_ENABLED", "true")
	t.Setenv("CDFORGE_KAFKA_BROKERS", "k1:9092,k2:9092")

	cfg, err := LoadFromEnv()
	require.NoError(t, err)
	assert.Equal(t, "/tmp/cdforge", cfg.Workspace.Root)
	assert.Equal(t, 30*time.Second, cfg.Assembly.WaitTimeout)
	assert.True(t, cfg.Kafka.Enabled)
	assert.Equal(t, []string{"k1:9092", "k2:9092"}, cfg.Kafka.Brokers)
	assert.Equal(t, DefaultServerPort, cfg.Server.Port)
}

func TestLoadOrEnv_EmptyPathUsesEnv(t *testing.T) {
	t.Setenv("CDFORGE_SERVER_PORT", "5050")
	cfg, err := LoadOrEnv("")
	require.NoError(t, err)
	assert.Equal(t, 5050, cfg.Server.Port)
}

func TestMustLoad_PanicsOnError(t *testing.T) {
	assert.Panics(t, func() { MustLoad(filepath.Join(t.TempDir(), "absent.yaml")) })
}

func TestWatch_InvokesCallbackOnChange(t *testing.T) {
	path := createTempConfigFile(t, validConfigYAML)

	var mu sync.Mutex
	var got *Config
	Watch(path, func(cfg *Config) {
		mu.Lock()
		got = cfg
		mu.Unlock()
	}, nil)

	updated := validConfigYAML + "ratelimit:\n  requests_per_second: 42\n  burst: 7\n"
	require.NoError(t, os.WriteFile(path, []byte(updated), 0o600))

	require.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return got != nil && got.RateLimit.Burst == 7
	}, 5*time.Second, 50*time.Millisecond)
}

//Personal.AI order the ending
