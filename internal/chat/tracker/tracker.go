// Package tracker turns captured chat frames into room membership changes and
// deduplicated broadcast events.
package tracker

import (
	"context"
	"time"

	"github.com/google/uuid"

	"firestige.xyz/chatsniff/internal/chat/dedup"
	"firestige.xyz/chatsniff/internal/chat/protocol"
	"firestige.xyz/chatsniff/internal/chat/room"
	"firestige.xyz/chatsniff/internal/core"
	"firestige.xyz/chatsniff/internal/log"
)

// Reporter receives finalized broadcast events.
type Reporter interface {
	Report(ctx context.Context, evt *core.BroadcastEvent) error
}

// Config contains tracker configuration.
type Config struct {
	Port          uint16
	JoinTypes     []uint32
	LeaveTypes    []uint32
	BroadcastType uint32
	Reserved      string
	DedupTTL      time.Duration
}

// Tracker owns the room registry and deduplicator. Frames must be handled
// one at a time in arrival order; Tracker is not safe for concurrent use.
type Tracker struct {
	port          uint16
	broadcastType uint32
	reserved      string

	rooms    *room.Registry
	dedup    *dedup.Deduplicator
	reporter Reporter

	now   func() time.Time
	newID func() string
}

// Option customizes a Tracker.
type Option func(*Tracker)

// WithClock overrides the wall clock used to timestamp events.
func WithClock(now func() time.Time) Option {
	return func(t *Tracker) { t.now = now }
}

// WithIDGenerator overrides event ID generation.
func WithIDGenerator(fn func() string) Option {
	return func(t *Tracker) { t.newID = fn }
}

// New creates a Tracker reporting broadcasts to reporter.
func New(cfg Config, reporter Reporter, opts ...Option) *Tracker {
	t := &Tracker{
		port:          cfg.Port,
		broadcastType: cfg.BroadcastType,
		reserved:      cfg.Reserved,
		rooms:         room.NewRegistry(cfg.JoinTypes, cfg.LeaveTypes, cfg.Reserved),
		dedup:         dedup.New(cfg.DedupTTL),
		reporter:      reporter,
		now:           time.Now,
		newID:         uuid.NewString,
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// Rooms exposes the room registry for read access.
func (t *Tracker) Rooms() *room.Registry {
	return t.rooms
}

// State is a snapshot of registry occupancy and dedup memory.
type State struct {
	Members   map[int32]int // member count per room, emptied rooms included
	DedupKeys int
}

// State reports current occupancy. Like Handle, it must not race with
// frame handling.
func (t *Tracker) State() State {
	s := State{Members: make(map[int32]int), DedupKeys: t.dedup.Len()}
	for _, id := range t.rooms.Rooms() {
		s.Members[id] = t.rooms.Size(id)
	}
	return s
}

// Handle processes one frame. Per-frame problems are absorbed and reported
// through the returned Outcome, never as errors.
func (t *Tracker) Handle(ctx context.Context, frame core.RawFrame) Outcome {
	if frame.SrcPort != t.port {
		return DroppedPort
	}
	// A frame no longer than one message carries no complete record.
	if len(frame.Payload) <= protocol.MinSize {
		return DroppedShort
	}

	msg, err := protocol.Decode(frame.Payload)
	if err != nil {
		log.GetLogger().WithError(err).Debug("drop undecodable frame")
		return Undecodable
	}

	if t.rooms.ApplyControl(msg) {
		log.GetLogger().WithFields(map[string]interface{}{
			"type": protocol.TypeName(msg.Type),
			"room": msg.RoomID,
			"user": msg.Username,
		}).Debug("membership updated")
		return Control
	}
	if msg.Type != t.broadcastType {
		return Ignored
	}
	return t.broadcast(ctx, frame, msg)
}

func (t *Tracker) broadcast(ctx context.Context, frame core.RawFrame, msg protocol.Message) Outcome {
	// Server notices are not chat traffic and the reserved identity must
	// never become a room member.
	if msg.Username == t.reserved {
		return ServerNotice
	}
	if msg.Username == "" {
		return Unattributed
	}
	if !t.dedup.ShouldEmit(msg.Username, msg.Content, msg.RoomID) {
		return Duplicate
	}

	// A sender is a member even if its join happened before capture started.
	t.rooms.Enroll(msg.RoomID, msg.Username)

	evt := &core.BroadcastEvent{
		ID:         t.newID(),
		Timestamp:  t.now(),
		Sender:     msg.Username,
		Recipients: t.rooms.Members(msg.RoomID, msg.Username),
		RoomID:     msg.RoomID,
		Content:    msg.Content,
		Raw:        msg.Raw,
		SrcPort:    frame.SrcPort,
		DstPort:    frame.DstPort,
	}
	if err := t.reporter.Report(ctx, evt); err != nil {
		log.GetLogger().WithError(err).WithField("room", msg.RoomID).Warn("report broadcast failed")
		return ReportFailed
	}
	return Emitted
}
