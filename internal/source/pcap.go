package source

import (
	"fmt"

	"github.com/google/gopacket/pcap"

	"firestige.xyz/chatsniff/internal/config"
)

// OpenLive opens a libpcap handle on cfg.Interface with the effective filter.
func OpenLive(cfg config.CaptureConfig) (Source, error) {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = pcap.BlockForever
	}
	snapLen := cfg.SnapLen
	if snapLen <= 0 {
		snapLen = 65535
	}

	handle, err := pcap.OpenLive(cfg.Interface, int32(snapLen), cfg.Promiscuous, timeout)
	if err != nil {
		return nil, classifyOpenError(cfg.Interface, err)
	}
	if err := handle.SetBPFFilter(cfg.Filter()); err != nil {
		handle.Close()
		return nil, fmt.Errorf("set bpf filter %q: %w", cfg.Filter(), err)
	}
	return handle, nil
}

// OpenFile opens a pcap file for offline replay. An optional filter is
// applied the same way as for live capture.
func OpenFile(path, filter string) (Source, error) {
	handle, err := pcap.OpenOffline(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open pcap file %s: %w", path, err)
	}
	if filter != "" {
		if err := handle.SetBPFFilter(filter); err != nil {
			handle.Close()
			return nil, fmt.Errorf("set bpf filter %q: %w", filter, err)
		}
	}
	return handle, nil
}
