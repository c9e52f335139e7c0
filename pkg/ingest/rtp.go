package ingest

import (
	"encoding/binary"
	"fmt"
	"log/slog"

	"github.com/pion/rtp"
)

// RTPStream depacketizes uncompressed L16 audio carried in RTP
// packets. L16 samples are big-endian network order (RFC 3551); the
// sample rate is negotiated out of band. Sequence numbers are checked
// across packets so dropped audio shows up in the gap count.
type RTPStream struct {
	started bool
	expect  uint16
	gaps    int
}

// Depacketize parses one RTP packet and returns its samples in host
// int16 form. A sequence discontinuity is counted, not an error; the
// packet's audio is still returned.
func (s *RTPStream) Depacketize(raw []byte) ([]int16, error) {
	var p rtp.Packet
	if err := p.Unmarshal(raw); err != nil {
		return nil, fmt.Errorf("unmarshal rtp packet: %w", err)
	}

	if s.started && p.SequenceNumber != s.expect {
		s.gaps++
		slog.Debug("ingest: rtp sequence gap",
			"expected", s.expect, "got", p.SequenceNumber, "gaps", s.gaps)
	}
	s.started = true
	s.expect = p.SequenceNumber + 1

	if len(p.Payload)%2 != 0 {
		return nil, fmt.Errorf("odd L16 payload length %d", len(p.Payload))
	}
	samples := make([]int16, len(p.Payload)/2)
	for i := range samples {
		samples[i] = int16(binary.BigEndian.Uint16(p.Payload[i*2:]))
	}
	return samples, nil
}

// Gaps returns how many sequence discontinuities have been seen.
func (s *RTPStream) Gaps() int {
	return s.gaps
}
