package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"firestige.xyz/chatsniff/internal/chat/tracker"
	"firestige.xyz/chatsniff/internal/config"
	"firestige.xyz/chatsniff/internal/core"
	"firestige.xyz/chatsniff/internal/log"
	"firestige.xyz/chatsniff/internal/metrics"
	"firestige.xyz/chatsniff/internal/pipeline"
	"firestige.xyz/chatsniff/internal/source"
)

const shutdownTimeout = 5 * time.Second

// loadConfig reads the config file named by --config and initializes logging.
func loadConfig() (*config.GlobalConfig, error) {
	cfg, err := config.Load(configFile)
	if err != nil {
		return nil, err
	}
	if err := log.Init(cfg.Log); err != nil {
		return nil, fmt.Errorf("failed to init logger: %w", err)
	}
	return cfg, nil
}

// runPipeline wires reporters, tracker and metrics around src and blocks
// until the pipeline ends.
func runPipeline(ctx context.Context, cfg *config.GlobalConfig, src source.Source, label string) error {
	reporters, err := pipeline.BuildReporters(cfg.Reporters)
	if err != nil {
		return err
	}
	if err := reporters.Start(ctx); err != nil {
		return err
	}
	defer func() {
		stopCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := reporters.Stop(stopCtx); err != nil {
			log.GetLogger().WithError(err).Warn("reporter shutdown incomplete")
		}
	}()

	if cfg.Metrics.Enabled {
		srv := metrics.NewServer(cfg.Metrics.Listen, cfg.Metrics.Path)
		if err := srv.Start(ctx); err != nil {
			return err
		}
		defer func() { _ = srv.Stop(context.Background()) }()
	}

	trk := tracker.New(tracker.Config{
		Port:          cfg.Capture.Port,
		JoinTypes:     cfg.Protocol.JoinTypes,
		LeaveTypes:    cfg.Protocol.LeaveTypes,
		BroadcastType: cfg.Protocol.BroadcastType,
		Reserved:      cfg.Protocol.ReservedIdentity,
		DedupTTL:      cfg.Dedup.TTL,
	}, reporters)

	p, err := pipeline.New(pipeline.Config{
		Source:     src,
		Handler:    trk,
		Interface:  label,
		BufferSize: cfg.Pipeline.ChannelCapacity,
		RoomCount:  func() int { return len(trk.Rooms().Rooms()) },
	})
	if err != nil {
		return err
	}
	err = p.Run(ctx)
	st := trk.State()
	log.GetLogger().WithFields(map[string]interface{}{
		"rooms":      len(st.Members),
		"members":    st.Members,
		"dedup_keys": st.DedupKeys,
	}).Info("tracker state at shutdown")
	printSummary(os.Stderr, p.Stats())
	return err
}

// describeOpenError turns privilege failures into an actionable message.
func describeOpenError(err error) error {
	if errors.Is(err, core.ErrCapturePermission) {
		return fmt.Errorf("%w\nhint: run as root or grant the binary CAP_NET_RAW, e.g. sudo setcap cap_net_raw,cap_net_admin=eip $(which chatsniff)", err)
	}
	return err
}
