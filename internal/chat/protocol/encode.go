package protocol

import "encoding/binary"

// Encode lays msg out in wire format. Strings longer than their field are
// cut; a field filled completely carries no NUL terminator. Raw is ignored.
func Encode(msg Message) []byte {
	buf := make([]byte, MinSize)
	binary.LittleEndian.PutUint32(buf[offType:], msg.Type)
	copy(buf[offUsername:offUsername+UsernameLen], msg.Username)
	copy(buf[offContent:offContent+ContentLen], msg.Content)
	copy(buf[offEncrypted:offEncrypted+EncryptedLen], msg.EncryptedContent)
	binary.LittleEndian.PutUint32(buf[offEncryptedLen:], msg.EncryptedLen)
	if msg.Encrypted {
		binary.LittleEndian.PutUint32(buf[offIsEncrypted:], 1)
	}
	binary.LittleEndian.PutUint32(buf[offRoomID:], uint32(msg.RoomID))
	binary.LittleEndian.PutUint32(buf[offClientID:], uint32(msg.ClientID))
	return buf
}
