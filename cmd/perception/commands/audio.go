package commands

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/ben-juodvalkis/musical-perception/pkg/audio/pcm"
	"github.com/ben-juodvalkis/musical-perception/pkg/audio/resample"
)

// readAudio loads an audio file as 16kHz mono samples. WAV files carry
// their own sample rate and are resampled when it differs; any other
// extension (and "-" for stdin) is read as raw 16-bit little-endian
// mono at rawRate.
func readAudio(path string, rawRate int) ([]int16, error) {
	var (
		data []byte
		err  error
	)
	if path == "-" {
		data, err = io.ReadAll(os.Stdin)
	} else {
		data, err = os.ReadFile(path)
	}
	if err != nil {
		return nil, fmt.Errorf("read audio: %w", err)
	}

	var (
		samples []int16
		rate    int
	)
	if path != "-" && strings.EqualFold(filepath.Ext(path), ".wav") {
		samples, rate, err = pcm.DecodeWAV(data)
		if err != nil {
			return nil, fmt.Errorf("decode %s: %w", path, err)
		}
	} else {
		if len(data)%2 != 0 {
			return nil, fmt.Errorf("raw audio has odd length %d", len(data))
		}
		samples, rate = pcm.Int16s(data), rawRate
	}

	if rate == pcm.L16Mono16K.SampleRate() {
		return samples, nil
	}
	rs, err := resample.New(rate, pcm.L16Mono16K.SampleRate())
	if err != nil {
		return nil, err
	}
	out, err := rs.Process(samples)
	if err != nil {
		return nil, err
	}
	return out, nil
}
