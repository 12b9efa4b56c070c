package console

import (
	"fmt"
	"strings"
)

const bytesPerLine = 16

// HexDump renders data 16 bytes per line as "offset: hex | ascii", with the
// hex column padded to a fixed width and non-printable bytes shown as '.'.
func HexDump(data []byte) string {
	var b strings.Builder
	for off := 0; off < len(data); off += bytesPerLine {
		end := min(off+bytesPerLine, len(data))
		chunk := data[off:end]

		hexPart := make([]string, len(chunk))
		ascii := make([]byte, len(chunk))
		for i, c := range chunk {
			hexPart[i] = fmt.Sprintf("%02x", c)
			if c >= 32 && c <= 126 {
				ascii[i] = c
			} else {
				ascii[i] = '.'
			}
		}

		if off > 0 {
			b.WriteByte('\n')
		}
		fmt.Fprintf(&b, "%04x: %-48s | %s", off, strings.Join(hexPart, " "), ascii)
	}
	return b.String()
}
