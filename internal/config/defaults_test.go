package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestApplyDefaults_EmptyConfig(t *testing.T) {
	cfg := &Config{}
	ApplyDefaults(cfg)

	assert.Equal(t, DefaultServerPort, cfg.Server.Port)
	assert.Equal(t, StatusPolicyConsistent, cfg.Server.StatusPolicy)
	assert.Equal(t, []string{"*"}, cfg.Server.CORSOrigins)
	assert.Equal(t, "static", cfg.Workspace.Root)
	assert.Equal(t, 180*time.Second, cfg.Assembly.WaitTimeout)
	assert.Equal(t, time.Second, cfg.Assembly.PollInterval)
	assert.Equal(t, "obabel", cfg.Minimizer.Binary)
	assert.Equal(t, 180*time.Second, cfg.Minimizer.Timeout)
	assert.Equal(t, 1000, cfg.Toolkit.ImageSize)
	assert.Equal(t, cfg.Workspace.TTL, cfg.Session.TTL)
	assert.Equal(t, DefaultBridgeCommand, cfg.Bridge.Command)
}

func TestApplyDefaults_PreserveExistingValues(t *testing.T) {
	cfg := &Config{}
	cfg.Server.Port = 9999
	cfg.Workspace.Root = "/srv/cdforge"
	cfg.Minimizer.Timeout = 5 * time.Second
	ApplyDefaults(cfg)

	assert.Equal(t, 9999, cfg.Server.Port)
	assert.Equal(t, "/srv/cdforge", cfg.Workspace.Root)
	assert.Equal(t, 5*time.Second, cfg.Minimizer.Timeout)
}

func TestApplyDefaults_BridgeCommandIsCopied(t *testing.T) {
	cfg := &Config{}
	ApplyDefaults(cfg)
	cfg.Bridge.Command[0] = "changed"
	assert.Equal(t, "python3", DefaultBridgeCommand[0])
}

func TestApplyDefaults_Nil(t *testing.T) {
	assert.NotPanics(t, func() { ApplyDefaults(nil) })
}

func TestDefault_IsValid(t *testing.T) {
	cfg := Default()
	require.NoError(t, cfg.Validate())
	assert.True(t, cfg.Metrics.Enabled)
}

//Personal.AI order the ending
