// Package core defines core types with zero external dependencies.
package core

import "time"

// RawFrame is one delivered unit of TCP payload, tagged with its ports.
type RawFrame struct {
	Payload   []byte
	SrcPort   uint16
	DstPort   uint16
	Timestamp time.Time // Capture timestamp, zero when unknown
}

// BroadcastEvent is a deduplicated, attributed chat message ready for reporting.
type BroadcastEvent struct {
	ID         string
	Timestamp  time.Time
	Sender     string
	Recipients []string // Sorted, excludes sender and the reserved identity
	RoomID     int32
	Content    string
	Raw        []byte // Exact bytes the message was decoded from

	SrcPort uint16
	DstPort uint16
}
