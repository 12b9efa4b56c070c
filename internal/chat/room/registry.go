// Package room tracks which users are in which chat room, as inferred from
// observed join and leave messages.
package room

import (
	"slices"

	"github.com/samber/lo"

	"firestige.xyz/chatsniff/internal/chat/protocol"
)

// Registry maps room IDs to their member sets. Rooms are created on first
// reference and never removed. Not safe for concurrent use.
type Registry struct {
	join     map[uint32]struct{}
	leave    map[uint32]struct{}
	reserved string
	rooms    map[int32]map[string]struct{}
}

// NewRegistry creates a registry classifying the given type codes as joins
// and leaves. The reserved identity is never admitted as a member.
func NewRegistry(join, leave []uint32, reserved string) *Registry {
	return &Registry{
		join:     lo.SliceToMap(join, func(c uint32) (uint32, struct{}) { return c, struct{}{} }),
		leave:    lo.SliceToMap(leave, func(c uint32) (uint32, struct{}) { return c, struct{}{} }),
		reserved: reserved,
		rooms:    make(map[int32]map[string]struct{}),
	}
}

// IsJoin reports whether code is a join type code.
func (r *Registry) IsJoin(code uint32) bool {
	_, ok := r.join[code]
	return ok
}

// IsLeave reports whether code is a leave type code.
func (r *Registry) IsLeave(code uint32) bool {
	_, ok := r.leave[code]
	return ok
}

// IsControl reports whether code is a join or leave type code.
func (r *Registry) IsControl(code uint32) bool {
	return r.IsJoin(code) || r.IsLeave(code)
}

// ApplyControl updates membership for a join or leave message. Any other
// type code is ignored. Returns true if msg was a control message.
func (r *Registry) ApplyControl(msg protocol.Message) bool {
	switch {
	case r.IsJoin(msg.Type):
		r.add(msg.RoomID, msg.Username)
	case r.IsLeave(msg.Type):
		r.room(msg.RoomID)
		delete(r.rooms[msg.RoomID], msg.Username)
	default:
		return false
	}
	return true
}

// Enroll makes username a member of roomID. Broadcast handling calls this so
// a sender is counted even when its join was never observed.
func (r *Registry) Enroll(roomID int32, username string) {
	r.add(roomID, username)
}

// Members returns the sorted members of roomID, excluding exclude and the
// reserved identity.
func (r *Registry) Members(roomID int32, exclude string) []string {
	members := make([]string, 0, len(r.rooms[roomID]))
	for name := range r.rooms[roomID] {
		if name == exclude || name == r.reserved {
			continue
		}
		members = append(members, name)
	}
	slices.Sort(members)
	return members
}

// Size returns the number of members in roomID.
func (r *Registry) Size(roomID int32) int {
	return len(r.rooms[roomID])
}

// Rooms returns the sorted IDs of every room seen so far.
func (r *Registry) Rooms() []int32 {
	ids := lo.Keys(r.rooms)
	slices.Sort(ids)
	return ids
}

func (r *Registry) add(roomID int32, username string) {
	members := r.room(roomID)
	if username == r.reserved {
		return
	}
	members[username] = struct{}{}
}

func (r *Registry) room(roomID int32) map[string]struct{} {
	members, ok := r.rooms[roomID]
	if !ok {
		members = make(map[string]struct{})
		r.rooms[roomID] = members
	}
	return members
}
