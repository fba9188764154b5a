package config

import (
	"time"

	"github.com/spf13/viper"
)

// ─────────────────────────────────────────────────────────────────────────────
// Default value constants
// ─────────────────────────────────────────────────────────────────────────────

const (
	DefaultServerHost      = "0.0.0.0"
	DefaultServerPort      = 5000
	DefaultServerMode      = "release"
	DefaultReadTimeout     = 30 * time.Second
	DefaultWriteTimeout    = 10 * time.Minute
	DefaultIdleTimeout     = 2 * time.Minute
	DefaultMaxBodySize     = 16 << 20
	DefaultShutdownTimeout = 30 * time.Second

	DefaultWorkspaceRoot   = "static"
	DefaultWorkspaceTTL    = 24 * time.Hour
	DefaultCleanupSchedule = "@every 10m"

	DefaultAssemblyWaitTimeout  = 180 * time.Second
	DefaultAssemblyPollInterval = time.Second
	DefaultMaxConcurrent        = 4

	DefaultBridgeTimeout = 10 * time.Minute

	DefaultOpenBabelBinary  = "obabel"
	DefaultMinimizerTimeout = 180 * time.Second
	DefaultToolkitTimeout   = 60 * time.Second
	DefaultImageSize        = 1000
	DefaultBondLineWidth    = 3
	DefaultAtomLabelFont    = 16

	DefaultSessionBackend = "memory"

	DefaultRedisAddr      = "localhost:6379"
	DefaultRedisKeyPrefix = "cdforge:"

	DefaultMinIOEndpoint = "localhost:9000"
	DefaultMinIOBucket   = "cdforge-artifacts"
	DefaultPresignExpiry = time.Hour

	DefaultKafkaBroker = "localhost:9092"
	DefaultKafkaTopic  = "cdforge.structure.events"

	DefaultRateLimitRPS   = 5.0
	DefaultRateLimitBurst = 10

	DefaultLogLevel  = "info"
	DefaultLogFormat = "json"

	DefaultMetricsPath      = "/metrics"
	DefaultMetricsNamespace = "cdforge"
)

// DefaultBridgeCommand is the collaborator command used when none is configured.
var DefaultBridgeCommand = []string{"python3", "-m", "cdforge_bridge"}

// ApplyDefaults fills every zero-value field in cfg with its default.  Values
// already set are left unchanged.  Boolean switches are not touched here;
// their defaults are registered with viper by bindDefaults.
func ApplyDefaults(cfg *Config) {
	if cfg == nil {
		return
	}

	// ── Server ────────────────────────────────────────────────────────────────
	if cfg.Server.Host == "" {
		cfg.Server.Host = DefaultServerHost
	}
	if cfg.Server.Port == 0 {
		cfg.Server.Port = DefaultServerPort
	}
	if cfg.Server.Mode == "" {
		cfg.Server.Mode = DefaultServerMode
	}
	if cfg.Server.ReadTimeout == 0 {
		cfg.Server.ReadTimeout = DefaultReadTimeout
	}
	if cfg.Server.WriteTimeout == 0 {
		cfg.Server.WriteTimeout = DefaultWriteTimeout
	}
	if cfg.Server.IdleTimeout == 0 {
		cfg.Server.IdleTimeout = DefaultIdleTimeout
	}
	if cfg.Server.MaxBodySize == 0 {
		cfg.Server.MaxBodySize = DefaultMaxBodySize
	}
	if cfg.Server.ShutdownTimeout == 0 {
		cfg.Server.ShutdownTimeout = DefaultShutdownTimeout
	}
	if cfg.Server.StatusPolicy == "" {
		cfg.Server.StatusPolicy = StatusPolicyConsistent
	}
	if len(cfg.Server.CORSOrigins) == 0 {
		cfg.Server.CORSOrigins = []string{"*"}
	}

	// ── Workspace ─────────────────────────────────────────────────────────────
	if cfg.Workspace.Root == "" {
		cfg.Workspace.Root = DefaultWorkspaceRoot
	}
	if cfg.Workspace.TTL == 0 {
		cfg.Workspace.TTL = DefaultWorkspaceTTL
	}
	if cfg.Workspace.CleanupSchedule == "" {
		cfg.Workspace.CleanupSchedule = DefaultCleanupSchedule
	}

	// ── Assembly / bridge ─────────────────────────────────────────────────────
	if cfg.Assembly.WaitTimeout == 0 {
		cfg.Assembly.WaitTimeout = DefaultAssemblyWaitTimeout
	}
	if cfg.Assembly.PollInterval == 0 {
		cfg.Assembly.PollInterval = DefaultAssemblyPollInterval
	}
	if cfg.Assembly.MaxConcurrent == 0 {
		cfg.Assembly.MaxConcurrent = DefaultMaxConcurrent
	}
	if len(cfg.Bridge.Command) == 0 {
		cfg.Bridge.Command = append([]string(nil), DefaultBridgeCommand...)
	}
	if cfg.Bridge.Timeout == 0 {
		cfg.Bridge.Timeout = DefaultBridgeTimeout
	}

	// ── Minimizer / toolkit ───────────────────────────────────────────────────
	if cfg.Minimizer.Binary == "" {
		cfg.Minimizer.Binary = DefaultOpenBabelBinary
	}
	if cfg.Minimizer.Timeout == 0 {
		cfg.Minimizer.Timeout = DefaultMinimizerTimeout
	}
	if cfg.Minimizer.MaxConcurrent == 0 {
		cfg.Minimizer.MaxConcurrent = DefaultMaxConcurrent
	}
	if cfg.Toolkit.Binary == "" {
		cfg.Toolkit.Binary = DefaultOpenBabelBinary
	}
	if cfg.Toolkit.Timeout == 0 {
		cfg.Toolkit.Timeout = DefaultToolkitTimeout
	}
	if cfg.Toolkit.ImageSize == 0 {
		cfg.Toolkit.ImageSize = DefaultImageSize
	}
	if cfg.Toolkit.BondLineWidth == 0 {
		cfg.Toolkit.BondLineWidth = DefaultBondLineWidth
	}
	if cfg.Toolkit.AtomLabelFontSize == 0 {
		cfg.Toolkit.AtomLabelFontSize = DefaultAtomLabelFont
	}

	// ── Session / Redis ───────────────────────────────────────────────────────
	if cfg.Session.Backend == "" {
		cfg.Session.Backend = DefaultSessionBackend
	}
	if cfg.Session.TTL == 0 {
		cfg.Session.TTL = cfg.Workspace.TTL
	}
	if cfg.Redis.Addr == "" {
		cfg.Redis.Addr = DefaultRedisAddr
	}
	if cfg.Redis.KeyPrefix == "" {
		cfg.Redis.KeyPrefix = DefaultRedisKeyPrefix
	}
	// Redis DB 0 is both the default and a valid explicit value.

	// ── MinIO ─────────────────────────────────────────────────────────────────
	if cfg.MinIO.Endpoint == "" {
		cfg.MinIO.Endpoint = DefaultMinIOEndpoint
	}
	if cfg.MinIO.Bucket == "" {
		cfg.MinIO.Bucket = DefaultMinIOBucket
	}
	if cfg.MinIO.PresignExpiry == 0 {
		cfg.MinIO.PresignExpiry = DefaultPresignExpiry
	}

	// ── Kafka ─────────────────────────────────────────────────────────────────
	if len(cfg.Kafka.Brokers) == 0 {
		cfg.Kafka.Brokers = []string{DefaultKafkaBroker}
	}
	if cfg.Kafka.Topic == "" {
		cfg.Kafka.Topic = DefaultKafkaTopic
	}
	if cfg.Kafka.ClientID == "" {
		cfg.Kafka.ClientID = "cdforge"
	}
	if cfg.Kafka.Acks == "" {
		cfg.Kafka.Acks = "one"
	}

	// ── Rate limit ────────────────────────────────────────────────────────────
	if cfg.RateLimit.RequestsPerSecond == 0 {
		cfg.RateLimit.RequestsPerSecond = DefaultRateLimitRPS
	}
	if cfg.RateLimit.Burst == 0 {
		cfg.RateLimit.Burst = DefaultRateLimitBurst
	}

	// ── Log / metrics ─────────────────────────────────────────────────────────
	if cfg.Log.Level == "" {
		cfg.Log.Level = DefaultLogLevel
	}
	if cfg.Log.Format == "" {
		cfg.Log.Format = DefaultLogFormat
	}
	if cfg.Metrics.Path == "" {
		cfg.Metrics.Path = DefaultMetricsPath
	}
	if cfg.Metrics.Namespace == "" {
		cfg.Metrics.Namespace = DefaultMetricsNamespace
	}
}

// Default returns a Config populated entirely from defaults.
func Default() *Config {
	cfg := &Config{}
	cfg.Metrics.Enabled = true
	ApplyDefaults(cfg)
	return cfg
}

// bindDefaults registers every key with v so that CDFORGE_* environment
// variables are honoured by Unmarshal even when no config file mentions the key.
func bindDefaults(v *viper.Viper) {
	d := Default()

	v.SetDefault("server.host", d.Server.Host)
	v.SetDefault("server.port", d.Server.Port)
	v.SetDefault("server.mode", d.Server.Mode)
	v.SetDefault("server.read_timeout", d.Server.ReadTimeout)
	v.SetDefault("server.write_timeout", d.Server.WriteTimeout)
	v.SetDefault("server.idle_timeout", d.Server.IdleTimeout)
	v.SetDefault("server.max_body_size", d.Server.MaxBodySize)
	v.SetDefault("server.shutdown_timeout", d.Server.ShutdownTimeout)
	v.SetDefault("server.status_policy", d.Server.StatusPolicy)
	v.SetDefault("server.cors_origins", d.Server.CORSOrigins)

	v.SetDefault("workspace.root", d.Workspace.Root)
	v.SetDefault("workspace.ttl", d.Workspace.TTL)
	v.SetDefault("workspace.cleanup_schedule", d.Workspace.CleanupSchedule)
	v.SetDefault("workspace.remove_on_failure", false)

	v.SetDefault("assembly.wait_timeout", d.Assembly.WaitTimeout)
	v.SetDefault("assembly.poll_interval", d.Assembly.PollInterval)
	v.SetDefault("assembly.max_concurrent", d.Assembly.MaxConcurrent)

	v.SetDefault("bridge.command", d.Bridge.Command)
	v.SetDefault("bridge.timeout", d.Bridge.Timeout)
	v.SetDefault("bridge.dir", "")
	v.SetDefault("bridge.env", []string{})

	v.SetDefault("minimizer.binary", d.Minimizer.Binary)
	v.SetDefault("minimizer.timeout", d.Minimizer.Timeout)
	v.SetDefault("minimizer.max_concurrent", d.Minimizer.MaxConcurrent)

	v.SetDefault("toolkit.binary", d.Toolkit.Binary)
	v.SetDefault("toolkit.timeout", d.Toolkit.Timeout)
	v.SetDefault("toolkit.image_size", d.Toolkit.ImageSize)
	v.SetDefault("toolkit.bond_line_width", d.Toolkit.BondLineWidth)
	v.SetDefault("toolkit.atom_label_font_size", d.Toolkit.AtomLabelFontSize)

	v.SetDefault("session.backend", d.Session.Backend)
	v.SetDefault("session.ttl", time.Duration(0))

	v.SetDefault("redis.addr", d.Redis.Addr)
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)
	v.SetDefault("redis.pool_size", 0)
	v.SetDefault("redis.key_prefix", d.Redis.KeyPrefix)

	v.SetDefault("minio.enabled", false)
	v.SetDefault("minio.endpoint", d.MinIO.Endpoint)
	v.SetDefault("minio.access_key", "")
	v.SetDefault("minio.secret_key", "")
	v.SetDefault("minio.bucket", d.MinIO.Bucket)
	v.SetDefault("minio.region", "")
	v.SetDefault("minio.use_ssl", false)
	v.SetDefault("minio.presign_expiry", d.MinIO.PresignExpiry)
	v.SetDefault("minio.retention_days", 0)

	v.SetDefault("kafka.enabled", false)
	v.SetDefault("kafka.brokers", d.Kafka.Brokers)
	v.SetDefault("kafka.topic", d.Kafka.Topic)
	v.SetDefault("kafka.client_id", d.Kafka.ClientID)
	v.SetDefault("kafka.batch_timeout", time.Duration(0))
	v.SetDefault("kafka.acks", d.Kafka.Acks)

	v.SetDefault("ratelimit.enabled", false)
	v.SetDefault("ratelimit.requests_per_second", d.RateLimit.RequestsPerSecond)
	v.SetDefault("ratelimit.burst", d.RateLimit.Burst)

	v.SetDefault("log.level", d.Log.Level)
	v.SetDefault("log.format", d.Log.Format)
	v.SetDefault("log.output", "stdout")

	v.SetDefault("metrics.enabled", true)
	v.SetDefault("metrics.path", d.Metrics.Path)
	v.SetDefault("metrics.namespace", d.Metrics.Namespace)
}

//Personal.AI order the ending
