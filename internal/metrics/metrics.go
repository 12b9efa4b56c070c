// Package metrics implements Prometheus metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// CapturePacketsTotal counts packets read from a source
	CapturePacketsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "chatsniff_capture_packets_total",
			Help: "Total number of packets captured",
		},
		[]string{"interface"},
	)

	// ExtractErrorsTotal counts packets that yielded no TCP payload frame
	ExtractErrorsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "chatsniff_extract_errors_total",
			Help: "Total number of packets without a usable TCP payload",
		},
		[]string{"reason"},
	)

	// FramesTotal counts frames by dispatch outcome
	FramesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "chatsniff_frames_total",
			Help: "Total number of frames handled, by outcome",
		},
		[]string{"outcome"},
	)

	// ReporterErrorsTotal counts failed Report calls by reporter name
	ReporterErrorsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "chatsniff_reporter_errors_total",
			Help: "Total number of reporter errors",
		},
		[]string{"reporter"},
	)

	// RoomsTracked is the number of rooms seen so far, including rooms
	// emptied by leave messages
	RoomsTracked = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "chatsniff_rooms_tracked",
			Help: "Current number of rooms in the registry",
		},
	)

	// FrameQueueDepth tracks frames waiting between capture and dispatch
	FrameQueueDepth = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "chatsniff_frame_queue_depth",
			Help: "Frames buffered between capture and dispatch",
		},
	)
)
