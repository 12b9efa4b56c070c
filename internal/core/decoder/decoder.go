// Package decoder turns captured link-layer packets into TCP payload frames.
package decoder

import (
	"fmt"

	"github.com/google/gopacket"
	"github.com/google/gopacket/layers"

	"firestige.xyz/chatsniff/internal/core"
)

// Decoder decodes raw packets into frames. Not safe for concurrent use;
// each capture goroutine owns one.
type Decoder struct {
	parser *gopacket.DecodingLayerParser

	eth      layers.Ethernet
	loopback layers.Loopback
	sll      layers.LinuxSLL
	ip4      layers.IPv4
	ip6      layers.IPv6
	tcp      layers.TCP
	payload  gopacket.Payload

	decoded []gopacket.LayerType
}

// New creates a Decoder for the given link type.
func New(linkType layers.LinkType) (*Decoder, error) {
	d := &Decoder{decoded: make([]gopacket.LayerType, 0, 8)}

	var first gopacket.LayerType
	switch linkType {
	case layers.LinkTypeEthernet:
		first = layers.LayerTypeEthernet
	case layers.LinkTypeNull, layers.LinkTypeLoop:
		first = layers.LayerTypeLoopback
	case layers.LinkTypeLinuxSLL:
		first = layers.LayerTypeLinuxSLL
	case layers.LinkTypeRaw, layers.LinkTypeIPv4:
		first = layers.LayerTypeIPv4
	case layers.LinkTypeIPv6:
		first = layers.LayerTypeIPv6
	default:
		return nil, fmt.Errorf("unsupported link type %s", linkType)
	}

	d.parser = gopacket.NewDecodingLayerParser(first,
		&d.eth, &d.loopback, &d.sll,
		&d.ip4, &d.ip6,
		&d.tcp, &d.payload,
	)
	// Application ports may map to layer types we don't register.
	d.parser.IgnoreUnsupported = true
	return d, nil
}

// Decode extracts the TCP payload of one captured packet.
// The returned payload aliases data.
func (d *Decoder) Decode(data []byte, ci gopacket.CaptureInfo) (core.RawFrame, error) {
	d.decoded = d.decoded[:0]
	if err := d.parser.DecodeLayers(data, &d.decoded); err != nil {
		return core.RawFrame{}, fmt.Errorf("%w: %v", core.ErrPacketTooShort, err)
	}

	for _, lt := range d.decoded {
		if lt != layers.LayerTypeTCP {
			continue
		}
		if len(d.tcp.Payload) == 0 {
			return core.RawFrame{}, core.ErrNoPayload
		}
		return core.RawFrame{
			Payload:   d.tcp.Payload,
			SrcPort:   uint16(d.tcp.SrcPort),
			DstPort:   uint16(d.tcp.DstPort),
			Timestamp: ci.Timestamp,
		}, nil
	}
	return core.RawFrame{}, core.ErrNoPayload
}
