//go:build linux

package source

import (
	"errors"
	"fmt"
	"os"
	"sync/atomic"
	"time"

	"github.com/google/gopacket"
	"github.com/google/gopacket/afpacket"
	"github.com/google/gopacket/layers"
	"github.com/google/gopacket/pcap"
	"golang.org/x/net/bpf"

	"firestige.xyz/chatsniff/internal/config"
	"firestige.xyz/chatsniff/internal/core"
)

type afpacketSource struct {
	handle *afpacket.TPacket
	closed atomic.Bool
}

// OpenAFPacket opens a TPACKET_V3 ring on cfg.Interface.
func OpenAFPacket(cfg config.CaptureConfig) (Source, error) {
	snapLen := cfg.SnapLen
	if snapLen <= 0 {
		snapLen = 65535
	}
	bufferMB := cfg.BufferSizeMB
	if bufferMB <= 0 {
		bufferMB = 8
	}
	frameSize, blockSize, numBlocks, err := computeRingSize(bufferMB, snapLen, os.Getpagesize())
	if err != nil {
		return nil, err
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 500 * time.Millisecond
	}

	tp, err := afpacket.NewTPacket(
		afpacket.OptInterface(cfg.Interface),
		afpacket.OptFrameSize(frameSize),
		afpacket.OptBlockSize(blockSize),
		afpacket.OptNumBlocks(numBlocks),
		afpacket.OptPollTimeout(timeout),
		afpacket.SocketRaw,
		afpacket.TPacketVersion3,
	)
	if err != nil {
		return nil, classifyOpenError(cfg.Interface, err)
	}

	prog, err := compileBPF(cfg.Filter(), snapLen)
	if err != nil {
		tp.Close()
		return nil, err
	}
	if err := tp.SetBPF(prog); err != nil {
		tp.Close()
		return nil, fmt.Errorf("set bpf filter %q: %w", cfg.Filter(), err)
	}
	return &afpacketSource{handle: tp}, nil
}

func (s *afpacketSource) ReadPacketData() ([]byte, gopacket.CaptureInfo, error) {
	if s.closed.Load() {
		return nil, gopacket.CaptureInfo{}, core.ErrSourceClosed
	}
	data, ci, err := s.handle.ReadPacketData()
	if errors.Is(err, afpacket.ErrTimeout) {
		return nil, ci, ErrTimeout
	}
	return data, ci, err
}

func (s *afpacketSource) LinkType() layers.LinkType {
	return layers.LinkTypeEthernet
}

func (s *afpacketSource) Close() {
	if s.closed.CompareAndSwap(false, true) {
		s.handle.Close()
	}
}

// compileBPF compiles a tcpdump expression with libpcap and converts it to
// the raw form the kernel socket filter accepts.
func compileBPF(filter string, snapLen int) ([]bpf.RawInstruction, error) {
	pcapBPF, err := pcap.CompileBPFFilter(layers.LinkTypeEthernet, snapLen, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to compile BPF filter: %w", err)
	}
	raw := make([]bpf.RawInstruction, len(pcapBPF))
	for i, ins := range pcapBPF {
		raw[i] = bpf.RawInstruction{Op: ins.Code, Jt: ins.Jt, Jf: ins.Jf, K: ins.K}
	}
	return raw, nil
}
