package pcm

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"io"
)

// EncodeWAV wraps 16-bit mono samples in a RIFF/WAVE container at the
// given sample rate.
func EncodeWAV(samples []int16, rate int) []byte {
	data := Bytes(samples)
	byteRate := uint32(rate * 2)
	dataLen := uint32(len(data))
	riffSize := uint32(4 + (8 + 16) + (8 + dataLen))

	buf := &bytes.Buffer{}
	buf.WriteString("RIFF")
	binary.Write(buf, binary.LittleEndian, riffSize)
	buf.WriteString("WAVE")
	buf.WriteString("fmt ")
	binary.Write(buf, binary.LittleEndian, uint32(16))
	binary.Write(buf, binary.LittleEndian, uint16(1)) // PCM
	binary.Write(buf, binary.LittleEndian, uint16(1)) // mono
	binary.Write(buf, binary.LittleEndian, uint32(rate))
	binary.Write(buf, binary.LittleEndian, byteRate)
	binary.Write(buf, binary.LittleEndian, uint16(2))  // block align
	binary.Write(buf, binary.LittleEndian, uint16(16)) // bits per sample
	buf.WriteString("data")
	binary.Write(buf, binary.LittleEndian, dataLen)
	buf.Write(data)
	return buf.Bytes()
}

// DecodeWAV parses a RIFF/WAVE container holding 16-bit PCM and returns
// the samples and their sample rate. Stereo input is downmixed to mono by
// averaging channels. Unknown chunks are skipped.
func DecodeWAV(data []byte) ([]int16, int, error) {
	if len(data) < 12 || string(data[0:4]) != "RIFF" || string(data[8:12]) != "WAVE" {
		return nil, 0, fmt.Errorf("wav: not a RIFF/WAVE container")
	}

	var (
		rate     int
		channels int
		haveFmt  bool
		pcmData  []byte
	)

	off := 12
	for off+8 <= len(data) {
		id := string(data[off : off+4])
		size := int(binary.LittleEndian.Uint32(data[off+4 : off+8]))
		body := off + 8
		if body+size > len(data) {
			return nil, 0, fmt.Errorf("wav: chunk %q exceeds container: %w", id, io.ErrUnexpectedEOF)
		}
		switch id {
		case "fmt ":
			if size < 16 {
				return nil, 0, fmt.Errorf("wav: fmt chunk too short")
			}
			audioFormat := binary.LittleEndian.Uint16(data[body : body+2])
			if audioFormat != 1 {
				return nil, 0, fmt.Errorf("wav: unsupported audio format %d (want PCM)", audioFormat)
			}
			channels = int(binary.LittleEndian.Uint16(data[body+2 : body+4]))
			rate = int(binary.LittleEndian.Uint32(data[body+4 : body+8]))
			bits := binary.LittleEndian.Uint16(data[body+14 : body+16])
			if bits != 16 {
				return nil, 0, fmt.Errorf("wav: unsupported bit depth %d (want 16)", bits)
			}
			if channels != 1 && channels != 2 {
				return nil, 0, fmt.Errorf("wav: unsupported channel count %d", channels)
			}
			haveFmt = true
		case "data":
			pcmData = data[body : body+size]
		}
		// chunks are word-aligned
		off = body + size + size%2
	}

	if !haveFmt {
		return nil, 0, fmt.Errorf("wav: missing fmt chunk")
	}
	if pcmData == nil {
		return nil, 0, fmt.Errorf("wav: missing data chunk")
	}

	samples := Int16s(pcmData)
	if channels == 2 {
		samples = downmix(samples)
	}
	return samples, rate, nil
}

// downmix averages interleaved stereo samples into mono.
func downmix(stereo []int16) []int16 {
	mono := make([]int16, len(stereo)/2)
	for i := range mono {
		l := int32(stereo[i*2])
		r := int32(stereo[i*2+1])
		mono[i] = int16((l + r) / 2)
	}
	return mono
}
