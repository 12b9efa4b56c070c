package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"firestige.xyz/chatsniff/internal/core"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "pcap", cfg.Capture.Engine)
	assert.Equal(t, "lo", cfg.Capture.Interface)
	assert.Equal(t, uint16(8080), cfg.Capture.Port)
	assert.Equal(t, 500*time.Millisecond, cfg.Capture.Timeout)
	assert.Equal(t, "tcp port 8080", cfg.Capture.Filter())

	assert.Equal(t, []uint32{10, 11}, cfg.Protocol.JoinTypes)
	assert.Equal(t, []uint32{12, 13}, cfg.Protocol.LeaveTypes)
	assert.Equal(t, uint32(14), cfg.Protocol.BroadcastType)
	assert.Equal(t, "SERVER", cfg.Protocol.ReservedIdentity)

	assert.Equal(t, time.Duration(0), cfg.Dedup.TTL)
	assert.Equal(t, 4096, cfg.Pipeline.ChannelCapacity)
	require.Len(t, cfg.Reporters, 1)
	assert.Equal(t, "console", cfg.Reporters[0].Type)

	assert.False(t, cfg.Metrics.Enabled)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, "text", cfg.Log.Format)
}

func TestLoadValidConfig(t *testing.T) {
	path := writeConfig(t, `
chatsniff:
  capture:
    engine: afpacket
    interface: eth0
    port: 9000
    bpf_filter: "tcp src port 9000"
  protocol:
    join_types: [3, 10]
    leave_types: [4, 11]
    broadcast_type: 14
    reserved_identity: "SYSTEM"
  dedup:
    ttl: 10m
  reporters:
    - type: console
      color: true
    - type: kafka
      brokers: ["localhost:9092"]
      topic: chat-events
  metrics:
    enabled: true
    listen: "127.0.0.1:9100"
  log:
    level: DEBUG
    format: json
`)
	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "afpacket", cfg.Capture.Engine)
	assert.Equal(t, "eth0", cfg.Capture.Interface)
	assert.Equal(t, uint16(9000), cfg.Capture.Port)
	assert.Equal(t, "tcp src port 9000", cfg.Capture.Filter())
	assert.Equal(t, []uint32{3, 10}, cfg.Protocol.JoinTypes)
	assert.Equal(t, "SYSTEM", cfg.Protocol.ReservedIdentity)
	assert.Equal(t, 10*time.Minute, cfg.Dedup.TTL)

	require.Len(t, cfg.Reporters, 2)
	assert.Equal(t, "console", cfg.Reporters[0].Type)
	assert.Equal(t, true, cfg.Reporters[0].Options["color"])
	assert.Equal(t, "kafka", cfg.Reporters[1].Type)
	assert.Equal(t, "chat-events", cfg.Reporters[1].Options["topic"])

	assert.True(t, cfg.Metrics.Enabled)
	assert.Equal(t, "/metrics", cfg.Metrics.Path)
	assert.Equal(t, "debug", cfg.Log.Level)
}

func TestLoadEnvOverride(t *testing.T) {
	t.Setenv("CHATSNIFF_CAPTURE_PORT", "7777")
	t.Setenv("CHATSNIFF_LOG_LEVEL", "warn")

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, uint16(7777), cfg.Capture.Port)
	assert.Equal(t, "warn", cfg.Log.Level)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yml"))
	assert.Error(t, err)
}

func TestLoadInvalid(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"bad log level", `
chatsniff:
  log:
    level: verbose
`},
		{"bad engine", `
chatsniff:
  capture:
    engine: netmap
`},
		{"overlapping join and leave", `
chatsniff:
  protocol:
    join_types: [10, 11]
    leave_types: [11, 12]
`},
		{"broadcast is control", `
chatsniff:
  protocol:
    broadcast_type: 10
`},
		{"reporter without type", `
chatsniff:
  reporters:
    - topic: x
`},
		{"file log without path", `
chatsniff:
  log:
    file:
      enabled: true
      path: ""
`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(writeConfig(t, tt.content))
			require.Error(t, err)
			assert.ErrorIs(t, err, core.ErrConfigInvalid)
		})
	}
}
