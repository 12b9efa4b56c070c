package pipeline

import (
	"context"
	"errors"
	"io"
	"net"
	"sync"
	"testing"
	"time"

	"github.com/google/gopacket"
	"github.com/google/gopacket/layers"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"firestige.xyz/chatsniff/internal/chat/protocol"
	"firestige.xyz/chatsniff/internal/chat/tracker"
	"firestige.xyz/chatsniff/internal/core"
	"firestige.xyz/chatsniff/internal/source"
)

type packet struct {
	data []byte
	err  error
}

// memSource replays a fixed list of packets, then returns io.EOF.
type memSource struct {
	packets []packet
	pos     int
	closed  bool
}

func (s *memSource) ReadPacketData() ([]byte, gopacket.CaptureInfo, error) {
	if s.pos >= len(s.packets) {
		return nil, gopacket.CaptureInfo{}, io.EOF
	}
	p := s.packets[s.pos]
	s.pos++
	if p.err != nil {
		return nil, gopacket.CaptureInfo{}, p.err
	}
	ci := gopacket.CaptureInfo{Timestamp: time.Unix(1700000000, 0), CaptureLength: len(p.data), Length: len(p.data)}
	return p.data, ci, nil
}

func (s *memSource) LinkType() layers.LinkType { return layers.LinkTypeEthernet }
func (s *memSource) Close()                    { s.closed = true }

type recordingReporter struct {
	name    string
	mu      sync.Mutex
	events  []*core.BroadcastEvent
	err     error
	started bool
	stopped bool
	flushed bool
}

func (r *recordingReporter) Name() string                { return r.name }
func (r *recordingReporter) Init(map[string]any) error   { return nil }
func (r *recordingReporter) Start(context.Context) error { r.started = true; return nil }
func (r *recordingReporter) Stop(context.Context) error  { r.stopped = true; return nil }
func (r *recordingReporter) Flush(context.Context) error { r.flushed = true; return nil }
func (r *recordingReporter) Report(_ context.Context, evt *core.BroadcastEvent) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return r.err
	}
	r.events = append(r.events, evt)
	return nil
}

func ethTCP(t *testing.T, srcPort, dstPort uint16, payload []byte) []byte {
	t.Helper()
	eth := &layers.Ethernet{
		SrcMAC:       net.HardwareAddr{0, 1, 2, 3, 4, 5},
		DstMAC:       net.HardwareAddr{6, 7, 8, 9, 10, 11},
		EthernetType: layers.EthernetTypeIPv4,
	}
	ip := &layers.IPv4{
		Version:  4,
		TTL:      64,
		Protocol: layers.IPProtocolTCP,
		SrcIP:    net.IPv4(127, 0, 0, 1),
		DstIP:    net.IPv4(127, 0, 0, 1),
	}
	tcp := &layers.TCP{SrcPort: layers.TCPPort(srcPort), DstPort: layers.TCPPort(dstPort), ACK: true, PSH: true, Window: 1024}
	require.NoError(t, tcp.SetNetworkLayerForChecksum(ip))

	buf := gopacket.NewSerializeBuffer()
	opts := gopacket.SerializeOptions{FixLengths: true, ComputeChecksums: true}
	layersToWrite := []gopacket.SerializableLayer{eth, ip, tcp}
	if len(payload) > 0 {
		layersToWrite = append(layersToWrite, gopacket.Payload(payload))
	}
	require.NoError(t, gopacket.SerializeLayers(buf, opts, layersToWrite...))
	return buf.Bytes()
}

func chatPacket(t *testing.T, msgType uint32, room int32, user, content string) packet {
	t.Helper()
	payload := append(protocol.Encode(protocol.Message{Type: msgType, RoomID: room, Username: user, Content: content}), 0)
	return packet{data: ethTCP(t, 8080, 40000, payload)}
}

func newTracker(rep tracker.Reporter) *tracker.Tracker {
	return tracker.New(tracker.Config{
		Port:          8080,
		JoinTypes:     []uint32{10, 11},
		LeaveTypes:    []uint32{12, 13},
		BroadcastType: 14,
		Reserved:      "SERVER",
	}, rep)
}

func TestPipelineRunToEOF(t *testing.T) {
	rep := &recordingReporter{name: "rec"}
	trk := newTracker(NewFanout(rep))
	exactMinSize := packet{data: ethTCP(t, 8080, 40000,
		protocol.Encode(protocol.Message{Type: 14, RoomID: 1, Username: "bob", Content: "cut"}))}
	src := &memSource{packets: []packet{
		chatPacket(t, 10, 1, "alice", ""),
		chatPacket(t, 10, 1, "bob", ""),
		{data: ethTCP(t, 8080, 40000, nil)}, // bare ACK
		chatPacket(t, 14, 1, "alice", "hi"),
		chatPacket(t, 14, 1, "alice", "hi"),
		{data: ethTCP(t, 40000, 8080, []byte("client to server"))},
		{data: []byte{0x01, 0x02}},
		exactMinSize,
	}}

	p, err := New(Config{Source: src, Handler: trk, Interface: "test", BufferSize: 2})
	require.NoError(t, err)
	require.NoError(t, p.Run(context.Background()))

	require.Len(t, rep.events, 1)
	evt := rep.events[0]
	assert.Equal(t, "alice", evt.Sender)
	assert.Equal(t, []string{"bob"}, evt.Recipients)
	assert.Equal(t, "hi", evt.Content)

	stats := p.Stats()
	assert.Equal(t, uint64(8), stats.Packets)
	assert.Equal(t, uint64(6), stats.Frames)
	assert.Equal(t, uint64(1), stats.NoPayload)
	assert.Equal(t, uint64(1), stats.Malformed)
	assert.Equal(t, uint64(2), stats.Outcome(tracker.Control))
	assert.Equal(t, uint64(1), stats.Outcome(tracker.Emitted))
	assert.Equal(t, uint64(1), stats.Outcome(tracker.Duplicate))
	assert.Equal(t, uint64(1), stats.Outcome(tracker.DroppedPort))
	assert.Equal(t, uint64(1), stats.Outcome(tracker.DroppedShort))
	assert.False(t, src.closed, "source is owned by the caller")
}

func TestPipelineSkipsTimeouts(t *testing.T) {
	rep := &recordingReporter{name: "rec"}
	src := &memSource{packets: []packet{
		{err: source.ErrTimeout},
		chatPacket(t, 14, 3, "carol", "anyone?"),
		{err: source.ErrTimeout},
	}}

	p, err := New(Config{Source: src, Handler: newTracker(rep)})
	require.NoError(t, err)
	require.NoError(t, p.Run(context.Background()))

	require.Len(t, rep.events, 1)
	assert.Empty(t, rep.events[0].Recipients)
}

func TestPipelineStopsOnClosedSource(t *testing.T) {
	rep := &recordingReporter{name: "rec"}
	src := &memSource{packets: []packet{
		chatPacket(t, 14, 4, "dave", "bye"),
		{err: core.ErrSourceClosed},
		chatPacket(t, 14, 4, "dave", "never read"),
	}}

	p, err := New(Config{Source: src, Handler: newTracker(rep)})
	require.NoError(t, err)
	require.NoError(t, p.Run(context.Background()))

	require.Len(t, rep.events, 1)
	assert.Equal(t, "bye", rep.events[0].Content)
	assert.Equal(t, uint64(1), p.Stats().Packets)
}

func TestPipelineCaptureError(t *testing.T) {
	boom := errors.New("device went away")
	src := &memSource{packets: []packet{{err: boom}}}

	p, err := New(Config{Source: src, Handler: newTracker(&recordingReporter{})})
	require.NoError(t, err)
	err = p.Run(context.Background())
	assert.ErrorIs(t, err, boom)
}

func TestPipelineCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	p, err := New(Config{Source: &memSource{}, Handler: newTracker(&recordingReporter{})})
	require.NoError(t, err)
	assert.NoError(t, p.Run(ctx))
}

func TestNewRequiresSourceAndHandler(t *testing.T) {
	_, err := New(Config{})
	assert.Error(t, err)
}

func TestFanoutLifecycle(t *testing.T) {
	ok := &recordingReporter{name: "ok"}
	bad := &recordingReporter{name: "bad", err: errors.New("unavailable")}
	f := NewFanout(bad, ok)
	ctx := context.Background()

	require.NoError(t, f.Start(ctx))
	assert.True(t, ok.started)

	err := f.Report(ctx, &core.BroadcastEvent{Sender: "alice"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "bad")
	require.Len(t, ok.events, 1, "one failing reporter must not block the others")

	require.NoError(t, f.Stop(ctx))
	assert.True(t, ok.flushed)
	assert.True(t, ok.stopped)
	assert.True(t, bad.stopped)
}
