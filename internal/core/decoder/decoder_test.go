package decoder

import (
	"net"
	"testing"
	"time"

	"github.com/google/gopacket"
	"github.com/google/gopacket/layers"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"firestige.xyz/chatsniff/internal/core"
)

func buildTCPPacket(t *testing.T, srcPort, dstPort uint16, payload []byte) []byte {
	t.Helper()

	eth := &layers.Ethernet{
		SrcMAC:       net.HardwareAddr{0x00, 0x11, 0x22, 0x33, 0x44, 0x55},
		DstMAC:       net.HardwareAddr{0x66, 0x77, 0x88, 0x99, 0xaa, 0xbb},
		EthernetType: layers.EthernetTypeIPv4,
	}
	ip := &layers.IPv4{
		Version:  4,
		TTL:      64,
		Protocol: layers.IPProtocolTCP,
		SrcIP:    net.IPv4(127, 0, 0, 1),
		DstIP:    net.IPv4(127, 0, 0, 1),
	}
	tcp := &layers.TCP{
		SrcPort: layers.TCPPort(srcPort),
		DstPort: layers.TCPPort(dstPort),
		Seq:     1,
		ACK:     true,
		PSH:     true,
		Window:  65535,
	}
	require.NoError(t, tcp.SetNetworkLayerForChecksum(ip))

	buf := gopacket.NewSerializeBuffer()
	opts := gopacket.SerializeOptions{FixLengths: true, ComputeChecksums: true}
	require.NoError(t, gopacket.SerializeLayers(buf, opts, eth, ip, tcp, gopacket.Payload(payload)))
	return buf.Bytes()
}

func TestDecodeTCPPayload(t *testing.T) {
	d, err := New(layers.LinkTypeEthernet)
	require.NoError(t, err)

	ts := time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)
	data := buildTCPPacket(t, 8080, 51000, []byte("hello"))

	frame, err := d.Decode(data, gopacket.CaptureInfo{Timestamp: ts})
	require.NoError(t, err)
	assert.Equal(t, []byte("hello"), frame.Payload)
	assert.Equal(t, uint16(8080), frame.SrcPort)
	assert.Equal(t, uint16(51000), frame.DstPort)
	assert.Equal(t, ts, frame.Timestamp)
}

func TestDecodeEmptyPayload(t *testing.T) {
	d, err := New(layers.LinkTypeEthernet)
	require.NoError(t, err)

	data := buildTCPPacket(t, 8080, 51000, nil)
	_, err = d.Decode(data, gopacket.CaptureInfo{})
	assert.ErrorIs(t, err, core.ErrNoPayload)
}

func TestDecodeReusesParser(t *testing.T) {
	d, err := New(layers.LinkTypeEthernet)
	require.NoError(t, err)

	first, err := d.Decode(buildTCPPacket(t, 8080, 1, []byte("one")), gopacket.CaptureInfo{})
	require.NoError(t, err)
	assert.Equal(t, "one", string(first.Payload))

	second, err := d.Decode(buildTCPPacket(t, 9090, 2, []byte("two")), gopacket.CaptureInfo{})
	require.NoError(t, err)
	assert.Equal(t, "two", string(second.Payload))
	assert.Equal(t, uint16(9090), second.SrcPort)
}

func TestDecodeTruncated(t *testing.T) {
	d, err := New(layers.LinkTypeEthernet)
	require.NoError(t, err)

	data := buildTCPPacket(t, 8080, 51000, []byte("hello"))
	_, err = d.Decode(data[:20], gopacket.CaptureInfo{})
	assert.Error(t, err)
}

func TestNewUnsupportedLinkType(t *testing.T) {
	_, err := New(layers.LinkTypeIEEE802_11)
	assert.Error(t, err)
}
