// Package protocol decodes the chat server's fixed-layout wire messages.
package protocol

import "fmt"

// Field widths of the wire layout.
const (
	UsernameLen  = 50
	ContentLen   = 500
	EncryptedLen = 1024

	// MinSize is the number of bytes consumed by Decode.
	MinSize = 4 + UsernameLen + ContentLen + EncryptedLen + 4 + 4 + 4 + 4
)

// Field offsets.
const (
	offType         = 0
	offUsername     = offType + 4
	offContent      = offUsername + UsernameLen
	offEncrypted    = offContent + ContentLen
	offEncryptedLen = offEncrypted + EncryptedLen
	offIsEncrypted  = offEncryptedLen + 4
	offRoomID       = offIsEncrypted + 4
	offClientID     = offRoomID + 4
)

// Message types as numbered by the chat server. The tracker does not rely on
// these; which codes count as join, leave or broadcast is configuration.
const (
	TypeJoin uint32 = iota + 1
	TypeCreateRoom
	TypeJoinRoom
	TypeLeaveRoom
	TypeMessage
	TypeListRooms
	TypeQuit
	TypeWelcome
	TypeRoomCreated
	TypeRoomJoined
	TypeRoomLeft
	TypeRoomList
	TypeError
	TypeBroadcast
)

var typeNames = map[uint32]string{
	TypeJoin:        "JOIN",
	TypeCreateRoom:  "CREATE_ROOM",
	TypeJoinRoom:    "JOIN_ROOM",
	TypeLeaveRoom:   "LEAVE_ROOM",
	TypeMessage:     "MESSAGE",
	TypeListRooms:   "LIST_ROOMS",
	TypeQuit:        "QUIT",
	TypeWelcome:     "WELCOME",
	TypeRoomCreated: "ROOM_CREATED",
	TypeRoomJoined:  "ROOM_JOINED",
	TypeRoomLeft:    "ROOM_LEFT",
	TypeRoomList:    "ROOM_LIST",
	TypeError:       "ERROR",
	TypeBroadcast:   "BROADCAST",
}

// TypeName returns a readable name for a type code.
func TypeName(t uint32) string {
	if name, ok := typeNames[t]; ok {
		return name
	}
	return fmt.Sprintf("UNKNOWN(%d)", t)
}

// Message is one decoded wire message.
type Message struct {
	Type             uint32
	Username         string
	Content          string
	EncryptedContent []byte
	EncryptedLen     uint32
	Encrypted        bool
	RoomID           int32
	ClientID         int32

	// Raw holds exactly the bytes consumed by Decode.
	Raw []byte
}
