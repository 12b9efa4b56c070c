// Package source opens capture handles that deliver link-layer packets.
package source

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"syscall"

	"github.com/google/gopacket"
	"github.com/google/gopacket/layers"
	"github.com/google/gopacket/pcap"

	"firestige.xyz/chatsniff/internal/config"
	"firestige.xyz/chatsniff/internal/core"
)

// Source delivers captured packets one at a time.
type Source interface {
	// ReadPacketData blocks until the next packet, a timeout or an error.
	// Offline sources return io.EOF when exhausted; reads after Close return
	// io.EOF (libpcap) or core.ErrSourceClosed.
	ReadPacketData() ([]byte, gopacket.CaptureInfo, error)
	LinkType() layers.LinkType
	Close()
}

// Open opens the live capture engine selected by cfg.
func Open(cfg config.CaptureConfig) (Source, error) {
	switch cfg.Engine {
	case "pcap", "":
		return OpenLive(cfg)
	case "afpacket":
		return OpenAFPacket(cfg)
	default:
		return nil, fmt.Errorf("%w: unknown capture engine %q", core.ErrConfigInvalid, cfg.Engine)
	}
}

// classifyOpenError tags privilege failures so callers can give an
// actionable message instead of a raw libpcap string.
func classifyOpenError(device string, err error) error {
	if err == nil {
		return nil
	}
	if isPermissionError(err) {
		return fmt.Errorf("%w on %s: %v", core.ErrCapturePermission, device, err)
	}
	return fmt.Errorf("open capture on %s: %w", device, err)
}

func isPermissionError(err error) bool {
	if errors.Is(err, os.ErrPermission) || errors.Is(err, syscall.EPERM) || errors.Is(err, syscall.EACCES) {
		return true
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "permission") || strings.Contains(msg, "operation not permitted")
}

// ErrTimeout is returned by sources whose read deadline expired without a
// packet. Callers should simply read again.
var ErrTimeout = errors.New("capture read timeout")

// IsTimeout reports whether err is a benign read timeout.
func IsTimeout(err error) bool {
	return errors.Is(err, ErrTimeout) || errors.Is(err, pcap.NextErrorTimeoutExpired)
}
