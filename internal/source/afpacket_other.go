//go:build !linux

package source

import (
	"errors"

	"firestige.xyz/chatsniff/internal/config"
)

// OpenAFPacket is only available on linux.
func OpenAFPacket(cfg config.CaptureConfig) (Source, error) {
	return nil, errors.New("afpacket capture engine requires linux")
}
