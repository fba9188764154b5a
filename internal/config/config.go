// Package config defines the configuration structures for cdforge.  Only
// plain data types and validation live here; loading is in loader.go and
// defaults in defaults.go.
package config

import (
	"fmt"
	"time"
)

// ─────────────────────────────────────────────────────────────────────────────
// Sub-configuration structs
// ─────────────────────────────────────────────────────────────────────────────

// Status-code policies for pipeline failures.
const (
	// StatusPolicyConsistent maps every error code to one HTTP status on all endpoints.
	StatusPolicyConsistent = "consistent"
	// StatusPolicyLegacy answers 500 for generation failures and 200 for minimization failures.
	StatusPolicyLegacy = "legacy"
)

// ServerConfig holds HTTP server tunables.
type ServerConfig struct {
	Host            string        `mapstructure:"host"`
	Port            int           `mapstructure:"port"`
	Mode            string        `mapstructure:"mode"` // "debug" | "release" | "test"
	ReadTimeout     time.Duration `mapstructure:"read_timeout"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout"`
	IdleTimeout     time.Duration `mapstructure:"idle_timeout"`
	MaxBodySize     int64         `mapstructure:"max_body_size"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
	StatusPolicy    string        `mapstructure:"status_policy"`
	CORSOrigins     []string      `mapstructure:"cors_origins"`
}

// Addr returns the listen address.
func (s ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

// WorkspaceConfig controls per-session scratch directories.
type WorkspaceConfig struct {
	Root            string        `mapstructure:"root"`
	TTL             time.Duration `mapstructure:"ttl"`
	CleanupSchedule string        `mapstructure:"cleanup_schedule"`
	RemoveOnFailure bool          `mapstructure:"remove_on_failure"`
}

// AssemblyConfig controls the generation pipeline.
type AssemblyConfig struct {
	WaitTimeout   time.Duration `mapstructure:"wait_timeout"`
	PollInterval  time.Duration `mapstructure:"poll_interval"`
	MaxConcurrent int64         `mapstructure:"max_concurrent"`
}

// BridgeConfig describes the external collaborator command.  The verb
// (interpret, build-unit, assemble) is appended to Command.
type BridgeConfig struct {
	Command []string      `mapstructure:"command"`
	Timeout time.Duration `mapstructure:"timeout"`
	Dir     string        `mapstructure:"dir"`
	Env     []string      `mapstructure:"env"`
}

// MinimizerConfig configures the geometry minimization subprocess.
type MinimizerConfig struct {
	Binary        string        `mapstructure:"binary"`
	Timeout       time.Duration `mapstructure:"timeout"`
	MaxConcurrent int64         `mapstructure:"max_concurrent"`
}

// ToolkitConfig configures SMILES and image conversion.
type ToolkitConfig struct {
	Binary            string        `mapstructure:"binary"`
	Timeout           time.Duration `mapstructure:"timeout"`
	ImageSize         int           `mapstructure:"image_size"`
	BondLineWidth     int           `mapstructure:"bond_line_width"`
	AtomLabelFontSize int           `mapstructure:"atom_label_font_size"`
}

// SessionConfig selects the session record backend.
type SessionConfig struct {
	Backend string        `mapstructure:"backend"` // "memory" | "redis"
	TTL     time.Duration `mapstructure:"ttl"`
}

// RedisConfig holds Redis connection parameters.
type RedisConfig struct {
	Addr         string        `mapstructure:"addr"`
	Password     string        `mapstructure:"password"`
	DB           int           `mapstructure:"db"`
	PoolSize     int           `mapstructure:"pool_size"`
	MinIdleConns int           `mapstructure:"min_idle_conns"`
	DialTimeout  time.Duration `mapstructure:"dial_timeout"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
	KeyPrefix    string        `mapstructure:"key_prefix"`
}

// MinIOConfig holds object-storage parameters for the artifact archive.
type MinIOConfig struct {
	Enabled       bool          `mapstructure:"enabled"`
	Endpoint      string        `mapstructure:"endpoint"`
	AccessKey     string        `mapstructure:"access_key"`
	SecretKey     string        `mapstructure:"secret_key"`
	Bucket        string        `mapstructure:"bucket"`
	Region        string        `mapstructure:"region"`
	UseSSL        bool          `mapstructure:"use_ssl"`
	PresignExpiry time.Duration `mapstructure:"presign_expiry"`
	RetentionDays int           `mapstructure:"retention_days"`
}

// KafkaConfig holds event publishing parameters.
type KafkaConfig struct {
	Enabled      bool          `mapstructure:"enabled"`
	Brokers      []string      `mapstructure:"brokers"`
	Topic        string        `mapstructure:"topic"`
	ClientID     string        `mapstructure:"client_id"`
	BatchTimeout time.Duration `mapstructure:"batch_timeout"`
	Acks         string        `mapstructure:"acks"` // "none" | "one" | "all"
}

// RateLimitConfig configures per-client request rate limiting.
type RateLimitConfig struct {
	Enabled           bool    `mapstructure:"enabled"`
	RequestsPerSecond float64 `mapstructure:"requests_per_second"`
	Burst             int     `mapstructure:"burst"`
}

// LogConfig holds structured-logging parameters.
type LogConfig struct {
	Level            string `mapstructure:"level"`  // "debug" | "info" | "warn" | "error"
	Format           string `mapstructure:"format"` // "json" | "text"
	Output           string `mapstructure:"output"`
	EnableCaller     bool   `mapstructure:"enable_caller"`
	EnableStacktrace bool   `mapstructure:"enable_stacktrace"`
}

// MetricsConfig controls the Prometheus endpoint.
type MetricsConfig struct {
	Enabled   bool   `mapstructure:"enabled"`
	Path      string `mapstructure:"path"`
	Namespace string `mapstructure:"namespace"`
}

// ─────────────────────────────────────────────────────────────────────────────
// Root Config
// ─────────────────────────────────────────────────────────────────────────────

// Config is the root configuration structure.
type Config struct {
	Server    ServerConfig    `mapstructure:"server"`
	Workspace WorkspaceConfig `mapstructure:"workspace"`
	Assembly  AssemblyConfig  `mapstructure:"assembly"`
	Bridge    BridgeConfig    `mapstructure:"bridge"`
	Minimizer MinimizerConfig `mapstructure:"minimizer"`
	Toolkit   ToolkitConfig   `mapstructure:"toolkit"`
	Session   SessionConfig   `mapstructure:"session"`
	Redis     RedisConfig     `mapstructure:"redis"`
	MinIO     MinIOConfig     `mapstructure:"minio"`
	Kafka     KafkaConfig     `mapstructure:"kafka"`
	RateLimit RateLimitConfig `mapstructure:"ratelimit"`
	Log       LogConfig       `mapstructure:"log"`
	Metrics   MetricsConfig   `mapstructure:"metrics"`
}

// ─────────────────────────────────────────────────────────────────────────────
// Validation
// ─────────────────────────────────────────────────────────────────────────────

// Validate performs semantic validation of a fully-populated Config and
// returns the first problem found.
func (c *Config) Validate() error {
	// Server
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("config: server.port %d is out of range [1, 65535]", c.Server.Port)
	}
	switch c.Server.Mode {
	case "debug", "release", "test":
	default:
		return fmt.Errorf("config: server.mode %q is invalid; expected debug|release|test", c.Server.Mode)
	}
	switch c.Server.StatusPolicy {
	case StatusPolicyConsistent, StatusPolicyLegacy:
	default:
		return fmt.Errorf("config: server.status_policy %q is invalid; expected consistent|legacy", c.Server.StatusPolicy)
	}

	// Workspace
	if c.Workspace.Root == "" {
		return fmt.Errorf("config: workspace.root is required")
	}
	if c.Workspace.TTL <= 0 {
		return fmt.Errorf("config: workspace.ttl must be > 0, got %s", c.Workspace.TTL)
	}

	// Assembly
	if c.Assembly.WaitTimeout <= 0 {
		return fmt.Errorf("config: assembly.wait_timeout must be > 0, got %s", c.Assembly.WaitTimeout)
	}
	if c.Assembly.PollInterval <= 0 || c.Assembly.PollInterval > c.Assembly.WaitTimeout {
		return fmt.Errorf("config: assembly.poll_interval %s must be in (0, wait_timeout]", c.Assembly.PollInterval)
	}
	if c.Assembly.MaxConcurrent < 1 {
		return fmt.Errorf("config: assembly.max_concurrent must be ≥ 1, got %d", c.Assembly.MaxConcurrent)
	}

	// Bridge
	if len(c.Bridge.Command) == 0 {
		return fmt.Errorf("config: bridge.command is required")
	}

	// Minimizer / toolkit
	if c.Minimizer.Binary == "" {
		return fmt.Errorf("config: minimizer.binary is required")
	}
	if c.Minimizer.Timeout <= 0 {
		return fmt.Errorf("config: minimizer.timeout must be > 0, got %s", c.Minimizer.Timeout)
	}
	if c.Minimizer.MaxConcurrent < 1 {
		return fmt.Errorf("config: minimizer.max_concurrent must be ≥ 1, got %d", c.Minimizer.MaxConcurrent)
	}
	if c.Toolkit.Binary == "" {
		return fmt.Errorf("config: toolkit.binary is required")
	}
	if c.Toolkit.ImageSize < 1 {
		return fmt.Errorf("config: toolkit.image_size must be ≥ 1, got %d", c.Toolkit.ImageSize)
	}

	// Session / Redis
	switch c.Session.Backend {
	case "memory":
	case "redis":
		if c.Redis.Addr == "" {
			return fmt.Errorf("config: redis.addr is required when session.backend is redis")
		}
		if c.Redis.DB < 0 {
			return fmt.Errorf("config: redis.db must be ≥ 0, got %d", c.Redis.DB)
		}
	default:
		return fmt.Errorf("config: session.backend %q is invalid; expected memory|redis", c.Session.Backend)
	}

	// MinIO
	if c.MinIO.Enabled {
		if c.MinIO.Endpoint == "" {
			return fmt.Errorf("config: minio.endpoint is required when minio is enabled")
		}
		if c.MinIO.Bucket == "" {
			return fmt.Errorf("config: minio.bucket is required when minio is enabled")
		}
	}

	// Kafka
	if c.Kafka.Enabled {
		if len(c.Kafka.Brokers) == 0 {
			return fmt.Errorf("config: kafka.brokers must contain at least one broker address")
		}
		if c.Kafka.Topic == "" {
			return fmt.Errorf("config: kafka.topic is required when kafka is enabled")
		}
		switch c.Kafka.Acks {
		case "none", "one", "all":
		default:
			return fmt.Errorf("config: kafka.acks %q is invalid; expected none|one|all", c.Kafka.Acks)
		}
	}

	// Rate limit
	if c.RateLimit.Enabled && (c.RateLimit.RequestsPerSecond <= 0 || c.RateLimit.Burst < 1) {
		return fmt.Errorf("config: ratelimit requires requests_per_second > 0 and burst ≥ 1")
	}

	// Log
	switch c.Log.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("config: log.level %q is invalid; expected debug|info|warn|error", c.Log.Level)
	}
	switch c.Log.Format {
	case "json", "text":
	default:
		return fmt.Errorf("config: log.format %q is invalid; expected json|text", c.Log.Format)
	}

	return nil
}

//Personal.AI order the ending
