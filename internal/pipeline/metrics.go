package pipeline

import (
	"sync/atomic"

	"firestige.xyz/chatsniff/internal/chat/tracker"
)

// Metrics contains per-pipeline counters.
type Metrics struct {
	Packets   atomic.Uint64
	Frames    atomic.Uint64
	NoPayload atomic.Uint64
	Malformed atomic.Uint64
	outcomes  [len(outcomeLabels)]atomic.Uint64
}

var outcomeLabels = [...]string{
	tracker.DroppedPort:  tracker.DroppedPort.String(),
	tracker.DroppedShort: tracker.DroppedShort.String(),
	tracker.Undecodable:  tracker.Undecodable.String(),
	tracker.Control:      tracker.Control.String(),
	tracker.Ignored:      tracker.Ignored.String(),
	tracker.ServerNotice: tracker.ServerNotice.String(),
	tracker.Unattributed: tracker.Unattributed.String(),
	tracker.Duplicate:    tracker.Duplicate.String(),
	tracker.Emitted:      tracker.Emitted.String(),
	tracker.ReportFailed: tracker.ReportFailed.String(),
}

func (m *Metrics) addOutcome(o tracker.Outcome) {
	if o < 0 || int(o) >= len(m.outcomes) {
		return
	}
	m.outcomes[o].Add(1)
}

// Stats is a point-in-time copy of Metrics.
type Stats struct {
	Packets   uint64
	Frames    uint64
	NoPayload uint64
	Malformed uint64
	Outcomes  map[string]uint64
}

// Outcome returns the count for one dispatch outcome.
func (s Stats) Outcome(o tracker.Outcome) uint64 {
	return s.Outcomes[o.String()]
}

func (m *Metrics) snapshot() Stats {
	s := Stats{
		Packets:   m.Packets.Load(),
		Frames:    m.Frames.Load(),
		NoPayload: m.NoPayload.Load(),
		Malformed: m.Malformed.Load(),
		Outcomes:  make(map[string]uint64, len(outcomeLabels)),
	}
	for i, name := range outcomeLabels {
		s.Outcomes[name] = m.outcomes[i].Load()
	}
	return s
}
