package ingest_test

import (
	"encoding/binary"
	"testing"

	"github.com/pion/rtp"

	"github.com/ben-juodvalkis/musical-perception/pkg/ingest"
)

func l16Payload(samples []int16) []byte {
	buf := make([]byte, len(samples)*2)
	for i, s := range samples {
		binary.BigEndian.PutUint16(buf[i*2:], uint16(s))
	}
	return buf
}

func rtpPacket(t *testing.T, seq uint16, payload []byte) []byte {
	t.Helper()
	p := rtp.Packet{
		Header: rtp.Header{
			Version:        2,
			PayloadType:    11,
			SequenceNumber: seq,
			Timestamp:      uint32(seq) * 1280,
			SSRC:           42,
		},
		Payload: payload,
	}
	raw, err := p.Marshal()
	if err != nil {
		t.Fatalf("marshal rtp packet: %v", err)
	}
	return raw
}

func TestDepacketizeL16(t *testing.T) {
	want := []int16{1000, -1000, 0, 32767, -32768}
	s := &ingest.RTPStream{}

	got, err := s.Depacketize(rtpPacket(t, 1, l16Payload(want)))
	if err != nil {
		t.Fatalf("Depacketize: %v", err)
	}
	if len(got) != len(want) {
		t.Fatalf("got %d samples, want %d", len(got), len(want))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("sample[%d] = %d, want %d", i, got[i], want[i])
		}
	}
	if s.Gaps() != 0 {
		t.Errorf("Gaps = %d, want 0", s.Gaps())
	}
}

func TestSequenceGapTracking(t *testing.T) {
	s := &ingest.RTPStream{}
	payload := l16Payload([]int16{0, 0})

	for _, seq := range []uint16{10, 11, 12} {
		if _, err := s.Depacketize(rtpPacket(t, seq, payload)); err != nil {
			t.Fatal(err)
		}
	}
	if s.Gaps() != 0 {
		t.Fatalf("Gaps = %d after contiguous packets, want 0", s.Gaps())
	}

	// Two packets lost.
	if _, err := s.Depacketize(rtpPacket(t, 15, payload)); err != nil {
		t.Fatal(err)
	}
	if s.Gaps() != 1 {
		t.Errorf("Gaps = %d after jump, want 1", s.Gaps())
	}

	// Sequence numbers wrap without counting a gap.
	wrap := &ingest.RTPStream{}
	for _, seq := range []uint16{65534, 65535, 0, 1} {
		if _, err := wrap.Depacketize(rtpPacket(t, seq, payload)); err != nil {
			t.Fatal(err)
		}
	}
	if wrap.Gaps() != 0 {
		t.Errorf("Gaps = %d across wraparound, want 0", wrap.Gaps())
	}
}

func TestDepacketizeRejectsOddPayload(t *testing.T) {
	s := &ingest.RTPStream{}
	if _, err := s.Depacketize(rtpPacket(t, 1, []byte{1, 2, 3})); err == nil {
		t.Fatal("odd payload accepted")
	}
}

func TestDepacketizeRejectsGarbage(t *testing.T) {
	s := &ingest.RTPStream{}
	if _, err := s.Depacketize([]byte{0x80, 0x0b}); err == nil {
		t.Fatal("truncated packet accepted")
	}
}
