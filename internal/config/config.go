// Package config handles global configuration loading using viper.
package config

import (
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"

	"firestige.xyz/chatsniff/internal/core"
)

// GlobalConfig represents the top-level configuration.
// Maps to the `chatsniff:` root key in YAML.
type GlobalConfig struct {
	Capture   CaptureConfig    `mapstructure:"capture" yaml:"capture"`
	Protocol  ProtocolConfig   `mapstructure:"protocol" yaml:"protocol"`
	Dedup     DedupConfig      `mapstructure:"dedup" yaml:"dedup"`
	Pipeline  PipelineConfig   `mapstructure:"pipeline" yaml:"pipeline"`
	Reporters []ReporterConfig `mapstructure:"reporters" yaml:"reporters" validate:"dive"`
	Metrics   MetricsConfig    `mapstructure:"metrics" yaml:"metrics"`
	Log       LogConfig        `mapstructure:"log" yaml:"log"`
}

// ─── Capture ───

// CaptureConfig selects where frames come from.
type CaptureConfig struct {
	Engine       string        `mapstructure:"engine" yaml:"engine" validate:"oneof=pcap afpacket"`
	Interface    string        `mapstructure:"interface" yaml:"interface" validate:"required"`
	Port         uint16        `mapstructure:"port" yaml:"port" validate:"required"`
	SnapLen      int           `mapstructure:"snap_len" yaml:"snap_len" validate:"gte=0"`
	Promiscuous  bool          `mapstructure:"promiscuous" yaml:"promiscuous"`
	Timeout      time.Duration `mapstructure:"timeout" yaml:"timeout"`
	BPFFilter    string        `mapstructure:"bpf_filter" yaml:"bpf_filter"` // Empty = "tcp port <port>"
	BufferSizeMB int           `mapstructure:"buffer_size_mb" yaml:"buffer_size_mb" validate:"gte=0"`
}

// Filter returns the effective capture filter.
func (c CaptureConfig) Filter() string {
	if c.BPFFilter != "" {
		return c.BPFFilter
	}
	return fmt.Sprintf("tcp port %d", c.Port)
}

// ─── Protocol ───

// ProtocolConfig classifies message type codes. The codes depend on the
// deployment being observed and are not protocol ground truth.
type ProtocolConfig struct {
	JoinTypes        []uint32 `mapstructure:"join_types" yaml:"join_types" validate:"min=1"`
	LeaveTypes       []uint32 `mapstructure:"leave_types" yaml:"leave_types" validate:"min=1"`
	BroadcastType    uint32   `mapstructure:"broadcast_type" yaml:"broadcast_type"`
	ReservedIdentity string   `mapstructure:"reserved_identity" yaml:"reserved_identity" validate:"required"`
}

// ─── Dedup ───

// DedupConfig controls broadcast deduplication.
type DedupConfig struct {
	TTL time.Duration `mapstructure:"ttl" yaml:"ttl" validate:"gte=0"` // 0 = remember forever
}

// ─── Pipeline ───

// PipelineConfig configures the frame channel between capture and processing.
type PipelineConfig struct {
	ChannelCapacity int `mapstructure:"channel_capacity" yaml:"channel_capacity" validate:"gt=0"`
}

// ─── Reporters ───

// ReporterConfig names a reporter and carries its type-specific options.
type ReporterConfig struct {
	Type    string         `mapstructure:"type" yaml:"type" validate:"required"`
	Options map[string]any `mapstructure:",remain" yaml:",inline"`
}

// ─── Metrics ───

// MetricsConfig contains Prometheus metrics settings.
type MetricsConfig struct {
	Enabled bool   `mapstructure:"enabled" yaml:"enabled"`
	Listen  string `mapstructure:"listen" yaml:"listen" validate:"required_if=Enabled true"`
	Path    string `mapstructure:"path" yaml:"path"`
}

// ─── Log ───

// LogConfig contains logging settings.
type LogConfig struct {
	Level   string        `mapstructure:"level" yaml:"level" validate:"oneof=debug info warn error"`
	Format  string        `mapstructure:"format" yaml:"format" validate:"oneof=json text"`
	Pattern string        `mapstructure:"pattern" yaml:"pattern,omitempty"`
	File    FileLogConfig `mapstructure:"file" yaml:"file"`
}

// FileLogConfig configures the rotating log file.
type FileLogConfig struct {
	Enabled    bool   `mapstructure:"enabled" yaml:"enabled"`
	Path       string `mapstructure:"path" yaml:"path" validate:"required_if=Enabled true"`
	MaxSizeMB  int    `mapstructure:"max_size_mb" yaml:"max_size_mb"`
	MaxAgeDays int    `mapstructure:"max_age_days" yaml:"max_age_days"`
	MaxBackups int    `mapstructure:"max_backups" yaml:"max_backups"`
	Compress   bool   `mapstructure:"compress" yaml:"compress"`
}

// ─── Loading ───

// configRoot is the top-level wrapper matching the YAML structure `chatsniff: ...`.
type configRoot struct {
	Chatsniff GlobalConfig `mapstructure:"chatsniff"`
}

// Load loads configuration from file. An empty path yields the defaults.
// Env vars override file values, e.g. CHATSNIFF_CAPTURE_PORT.
func Load(path string) (*GlobalConfig, error) {
	v := viper.New()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	var root configRoot
	if err := v.Unmarshal(&root); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	cfg := root.Chatsniff

	if err := cfg.ValidateAndApplyDefaults(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}
	return &cfg, nil
}

// setDefaults sets default values. All keys use the "chatsniff." prefix.
func setDefaults(v *viper.Viper) {
	v.SetDefault("chatsniff.capture.engine", "pcap")
	v.SetDefault("chatsniff.capture.interface", "lo")
	v.SetDefault("chatsniff.capture.port", 8080)
	v.SetDefault("chatsniff.capture.snap_len", 65535)
	v.SetDefault("chatsniff.capture.promiscuous", false)
	v.SetDefault("chatsniff.capture.timeout", "500ms")
	v.SetDefault("chatsniff.capture.bpf_filter", "")
	v.SetDefault("chatsniff.capture.buffer_size_mb", 8)

	v.SetDefault("chatsniff.protocol.join_types", []uint32{10, 11})
	v.SetDefault("chatsniff.protocol.leave_types", []uint32{12, 13})
	v.SetDefault("chatsniff.protocol.broadcast_type", 14)
	v.SetDefault("chatsniff.protocol.reserved_identity", "SERVER")

	v.SetDefault("chatsniff.dedup.ttl", "0s")

	v.SetDefault("chatsniff.pipeline.channel_capacity", 4096)

	v.SetDefault("chatsniff.metrics.enabled", false)
	v.SetDefault("chatsniff.metrics.listen", ":9091")
	v.SetDefault("chatsniff.metrics.path", "/metrics")

	v.SetDefault("chatsniff.log.level", "info")
	v.SetDefault("chatsniff.log.format", "text")
	v.SetDefault("chatsniff.log.file.enabled", false)
	v.SetDefault("chatsniff.log.file.path", "/var/log/chatsniff/chatsniff.log")
	v.SetDefault("chatsniff.log.file.max_size_mb", 100)
	v.SetDefault("chatsniff.log.file.max_age_days", 30)
	v.SetDefault("chatsniff.log.file.max_backups", 5)
	v.SetDefault("chatsniff.log.file.compress", true)
}

var validate = validator.New()

// ValidateAndApplyDefaults validates configuration and applies runtime defaults.
func (cfg *GlobalConfig) ValidateAndApplyDefaults() error {
	if len(cfg.Reporters) == 0 {
		cfg.Reporters = []ReporterConfig{{Type: "console"}}
	}
	cfg.Log.Level = strings.ToLower(cfg.Log.Level)
	cfg.Log.Format = strings.ToLower(cfg.Log.Format)

	if err := validate.Struct(cfg); err != nil {
		return fmt.Errorf("%w: %v", core.ErrConfigInvalid, err)
	}

	// ── Type code classification ──
	p := cfg.Protocol
	for _, code := range p.JoinTypes {
		if slices.Contains(p.LeaveTypes, code) {
			return fmt.Errorf("%w: type code %d is both join and leave", core.ErrConfigInvalid, code)
		}
	}
	if slices.Contains(p.JoinTypes, p.BroadcastType) || slices.Contains(p.LeaveTypes, p.BroadcastType) {
		return fmt.Errorf("%w: broadcast type %d is also a control type", core.ErrConfigInvalid, p.BroadcastType)
	}

	if cfg.Metrics.Path == "" {
		cfg.Metrics.Path = "/metrics"
	}
	return nil
}
