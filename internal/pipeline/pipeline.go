// Package pipeline connects a packet source to the chat tracker.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"io"

	"firestige.xyz/chatsniff/internal/chat/tracker"
	"firestige.xyz/chatsniff/internal/core"
	"firestige.xyz/chatsniff/internal/core/decoder"
	"firestige.xyz/chatsniff/internal/log"
	"firestige.xyz/chatsniff/internal/metrics"
	"firestige.xyz/chatsniff/internal/source"
)

// Handler consumes frames in order. *tracker.Tracker satisfies it.
type Handler interface {
	Handle(ctx context.Context, frame core.RawFrame) tracker.Outcome
}

// Config contains pipeline configuration.
type Config struct {
	Source     source.Source
	Handler    Handler
	Interface  string // metrics label
	BufferSize int    // frame channel capacity

	// RoomCount, when set, is sampled after each frame for the rooms gauge.
	RoomCount func() int
}

// Pipeline runs one capture goroutine feeding one processing goroutine.
// The handler is only ever called from the processing goroutine.
type Pipeline struct {
	src       source.Source
	decoder   *decoder.Decoder
	handler   Handler
	iface     string
	roomCount func() int
	frames    chan core.RawFrame
	metrics   Metrics
}

// New creates a pipeline. The source stays owned by the caller.
func New(cfg Config) (*Pipeline, error) {
	if cfg.Source == nil || cfg.Handler == nil {
		return nil, errors.New("pipeline requires a source and a handler")
	}
	if cfg.BufferSize <= 0 {
		cfg.BufferSize = 1024
	}
	dec, err := decoder.New(cfg.Source.LinkType())
	if err != nil {
		return nil, err
	}
	return &Pipeline{
		src:       cfg.Source,
		decoder:   dec,
		handler:   cfg.Handler,
		iface:     cfg.Interface,
		roomCount: cfg.RoomCount,
		frames:    make(chan core.RawFrame, cfg.BufferSize),
	}, nil
}

// Run blocks until ctx is cancelled, the source is exhausted or capture
// fails. Exhaustion and cancellation return nil. Frames already queued when
// the source ends are still processed.
func (p *Pipeline) Run(ctx context.Context) error {
	log.GetLogger().WithField("interface", p.iface).Info("pipeline starting")

	captureErr := make(chan error, 1)
	go func() {
		defer close(p.frames)
		captureErr <- p.captureLoop(ctx)
	}()

	p.processLoop(ctx)

	err := <-captureErr
	stats := p.Stats()
	log.GetLogger().WithFields(map[string]interface{}{
		"packets": stats.Packets,
		"frames":  stats.Frames,
		"emitted": stats.Outcome(tracker.Emitted),
	}).Info("pipeline stopped")
	return err
}

func (p *Pipeline) captureLoop(ctx context.Context) error {
	packets := metrics.CapturePacketsTotal.WithLabelValues(p.iface)
	for {
		if ctx.Err() != nil {
			return nil
		}
		data, ci, err := p.src.ReadPacketData()
		if err != nil {
			switch {
			case source.IsTimeout(err):
				continue
			case errors.Is(err, io.EOF), errors.Is(err, core.ErrSourceClosed):
				return nil
			case ctx.Err() != nil:
				return nil
			}
			return fmt.Errorf("read packet: %w", err)
		}
		p.metrics.Packets.Add(1)
		packets.Inc()

		frame, err := p.decoder.Decode(data, ci)
		if err != nil {
			p.countExtractError(err)
			continue
		}
		p.metrics.Frames.Add(1)

		select {
		case p.frames <- frame:
			metrics.FrameQueueDepth.Set(float64(len(p.frames)))
		case <-ctx.Done():
			return nil
		}
	}
}

func (p *Pipeline) countExtractError(err error) {
	if errors.Is(err, core.ErrNoPayload) {
		p.metrics.NoPayload.Add(1)
		metrics.ExtractErrorsTotal.WithLabelValues("no_payload").Inc()
		return
	}
	p.metrics.Malformed.Add(1)
	metrics.ExtractErrorsTotal.WithLabelValues("malformed").Inc()
	log.GetLogger().WithError(err).Debug("drop malformed packet")
}

func (p *Pipeline) processLoop(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case frame, ok := <-p.frames:
			if !ok {
				return
			}
			outcome := p.handler.Handle(ctx, frame)
			p.metrics.addOutcome(outcome)
			metrics.FramesTotal.WithLabelValues(outcome.String()).Inc()
			if p.roomCount != nil {
				metrics.RoomsTracked.Set(float64(p.roomCount()))
			}
		}
	}
}

// Stats returns pipeline statistics.
func (p *Pipeline) Stats() Stats {
	return p.metrics.snapshot()
}
