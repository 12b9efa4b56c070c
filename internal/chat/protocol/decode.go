package protocol

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"strings"

	"golang.org/x/text/encoding/unicode"

	"firestige.xyz/chatsniff/internal/core"
)

var (
	// ErrTooShort is returned for buffers shorter than MinSize.
	ErrTooShort = fmt.Errorf("%w: buffer shorter than %d bytes", core.ErrUndecodable, MinSize)
	// ErrTruncated is returned when a field runs past the end of the buffer.
	ErrTruncated = fmt.Errorf("%w: field out of bounds", core.ErrUndecodable)
)

// Decode parses buf into a Message. It never panics; any failure wraps
// core.ErrUndecodable. Decoding identical bytes yields identical messages.
func Decode(buf []byte) (Message, error) {
	if len(buf) < MinSize {
		return Message{}, ErrTooShort
	}

	r := reader{buf: buf}
	msg := Message{
		Type:             r.uint32(offType),
		Username:         r.text(offUsername, UsernameLen),
		Content:          r.text(offContent, ContentLen),
		EncryptedContent: r.bytes(offEncrypted, EncryptedLen),
		EncryptedLen:     r.uint32(offEncryptedLen),
		Encrypted:        r.uint32(offIsEncrypted) != 0,
		RoomID:           int32(r.uint32(offRoomID)),
		ClientID:         int32(r.uint32(offClientID)),
	}
	if r.err != nil {
		return Message{}, r.err
	}
	msg.Raw = bytes.Clone(buf[:MinSize])
	return msg, nil
}

// reader extracts fixed-offset little-endian fields and latches the first
// out-of-bounds access instead of panicking.
type reader struct {
	buf []byte
	err error
}

func (r *reader) slice(off, n int) []byte {
	if r.err != nil {
		return nil
	}
	if off < 0 || n < 0 || off+n > len(r.buf) {
		r.err = fmt.Errorf("%w: offset %d length %d buffer %d", ErrTruncated, off, n, len(r.buf))
		return nil
	}
	return r.buf[off : off+n]
}

func (r *reader) uint32(off int) uint32 {
	b := r.slice(off, 4)
	if b == nil {
		return 0
	}
	return binary.LittleEndian.Uint32(b)
}

func (r *reader) bytes(off, n int) []byte {
	return bytes.Clone(r.slice(off, n))
}

func (r *reader) text(off, n int) string {
	b := r.slice(off, n)
	if b == nil {
		return ""
	}
	return decodeString(b)
}

// decodeString truncates a fixed-width block at its first NUL and decodes it
// as UTF-8, replacing invalid sequences with U+FFFD.
func decodeString(block []byte) string {
	if i := bytes.IndexByte(block, 0); i >= 0 {
		block = block[:i]
	}
	out, err := unicode.UTF8.NewDecoder().Bytes(block)
	if err != nil {
		return strings.ToValidUTF8(string(block), "�")
	}
	return string(out)
}
