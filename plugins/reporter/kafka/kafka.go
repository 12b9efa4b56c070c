// Package kafka implements the Kafka event reporter.
// Each broadcast becomes one message keyed by room, encoded as JSON or protobuf.
package kafka

import (
	"context"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"strconv"
	"sync/atomic"
	"time"

	"github.com/mitchellh/mapstructure"
	"github.com/samber/lo"
	"github.com/segmentio/kafka-go"
	"github.com/segmentio/kafka-go/compress"
	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/types/known/structpb"

	"firestige.xyz/chatsniff/internal/core"
	"firestige.xyz/chatsniff/internal/log"
	"firestige.xyz/chatsniff/pkg/plugin"
)

const (
	defaultBatchSize    = 100
	defaultBatchTimeout = 100 * time.Millisecond
	defaultCompression  = "snappy"
	defaultMaxAttempts  = 3
	defaultEncoding     = "json"
)

type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// KafkaReporter publishes events to a Kafka topic.
type KafkaReporter struct {
	name   string
	writer messageWriter
	config Config

	reportedCount atomic.Uint64
	errorCount    atomic.Uint64
}

// Config represents Kafka reporter configuration.
type Config struct {
	Brokers      []string      `mapstructure:"brokers"`       // required
	Topic        string        `mapstructure:"topic"`         // required
	BatchSize    int           `mapstructure:"batch_size"`    // optional, default 100
	BatchTimeout time.Duration `mapstructure:"batch_timeout"` // optional, default 100ms
	Compression  string        `mapstructure:"compression"`   // none|gzip|snappy|lz4|zstd, default snappy
	MaxAttempts  int           `mapstructure:"max_attempts"`  // optional, default 3
	Encoding     string        `mapstructure:"encoding"`      // json|proto, default json
}

// NewKafkaReporter creates a new Kafka reporter.
func NewKafkaReporter() plugin.Reporter {
	return &KafkaReporter{name: "kafka"}
}

// Name returns the plugin name.
func (r *KafkaReporter) Name() string {
	return r.name
}

// Init initializes the reporter with configuration.
func (r *KafkaReporter) Init(config map[string]any) error {
	if config == nil {
		return fmt.Errorf("kafka reporter requires configuration")
	}

	cfg := Config{
		BatchSize:    defaultBatchSize,
		BatchTimeout: defaultBatchTimeout,
		Compression:  defaultCompression,
		MaxAttempts:  defaultMaxAttempts,
		Encoding:     defaultEncoding,
	}
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		DecodeHook:       mapstructure.StringToTimeDurationHookFunc(),
		WeaklyTypedInput: true,
		Result:           &cfg,
	})
	if err != nil {
		return err
	}
	if err := decoder.Decode(config); err != nil {
		return fmt.Errorf("invalid kafka reporter config: %w", err)
	}

	if len(cfg.Brokers) == 0 {
		return fmt.Errorf("brokers is required")
	}
	if cfg.Topic == "" {
		return fmt.Errorf("topic is required")
	}
	if cfg.Encoding != "json" && cfg.Encoding != "proto" {
		return fmt.Errorf("invalid encoding %q, must be json or proto", cfg.Encoding)
	}

	var codec compress.Compression
	switch cfg.Compression {
	case "none", "":
		codec = 0
	case "gzip":
		codec = compress.Gzip
	case "snappy":
		codec = compress.Snappy
	case "lz4":
		codec = compress.Lz4
	case "zstd":
		codec = compress.Zstd
	default:
		return fmt.Errorf("invalid compression type: %s", cfg.Compression)
	}

	r.config = cfg
	r.writer = &kafka.Writer{
		Addr:         kafka.TCP(cfg.Brokers...),
		Topic:        cfg.Topic,
		Balancer:     &kafka.Hash{}, // Same room, same partition
		BatchSize:    cfg.BatchSize,
		BatchTimeout: cfg.BatchTimeout,
		MaxAttempts:  cfg.MaxAttempts,
		Compression:  codec,
	}
	return nil
}

// Start starts the reporter.
func (r *KafkaReporter) Start(ctx context.Context) error {
	log.GetLogger().WithFields(map[string]interface{}{
		"brokers":     r.config.Brokers,
		"topic":       r.config.Topic,
		"compression": r.config.Compression,
		"encoding":    r.config.Encoding,
	}).Info("kafka reporter started")
	return nil
}

// Stop closes the writer, flushing pending messages.
func (r *KafkaReporter) Stop(ctx context.Context) error {
	if r.writer != nil {
		if err := r.writer.Close(); err != nil {
			log.GetLogger().WithError(err).Error("error closing kafka writer")
			return err
		}
	}
	log.GetLogger().WithFields(map[string]interface{}{
		"total_reported": r.reportedCount.Load(),
		"total_errors":   r.errorCount.Load(),
	}).Info("kafka reporter stopped")
	return nil
}

// Report publishes one event.
func (r *KafkaReporter) Report(ctx context.Context, evt *core.BroadcastEvent) error {
	if evt == nil {
		return fmt.Errorf("nil event")
	}

	value, err := r.serialize(evt)
	if err != nil {
		r.errorCount.Add(1)
		return fmt.Errorf("serialize event failed: %w", err)
	}

	msg := kafka.Message{
		Key:   []byte("room-" + strconv.FormatInt(int64(evt.RoomID), 10)),
		Value: value,
		Time:  evt.Timestamp,
		Headers: []kafka.Header{
			{Key: "sender", Value: []byte(evt.Sender)},
			{Key: "encoding", Value: []byte(r.config.Encoding)},
		},
	}
	if err := r.writer.WriteMessages(ctx, msg); err != nil {
		r.errorCount.Add(1)
		return fmt.Errorf("kafka write failed: %w", err)
	}

	r.reportedCount.Add(1)
	return nil
}

func eventFields(evt *core.BroadcastEvent) map[string]any {
	return map[string]any{
		"id":         evt.ID,
		"timestamp":  evt.Timestamp.UnixMilli(),
		"sender":     evt.Sender,
		"recipients": lo.ToAnySlice(evt.Recipients),
		"room_id":    int64(evt.RoomID),
		"content":    evt.Content,
		"raw_hex":    hex.EncodeToString(evt.Raw),
		"src_port":   int64(evt.SrcPort),
		"dst_port":   int64(evt.DstPort),
	}
}

func (r *KafkaReporter) serialize(evt *core.BroadcastEvent) ([]byte, error) {
	fields := eventFields(evt)
	if r.config.Encoding == "proto" {
		st, err := structpb.NewStruct(fields)
		if err != nil {
			return nil, err
		}
		return proto.Marshal(st)
	}
	return json.Marshal(fields)
}

// Flush is a no-op; kafka.Writer batches by size and timeout.
func (r *KafkaReporter) Flush(ctx context.Context) error {
	return nil
}
