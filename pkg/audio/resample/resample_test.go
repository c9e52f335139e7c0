package resample

import "testing"

func TestNewRejectsInvalidRates(t *testing.T) {
	for _, tt := range []struct{ in, out int }{
		{0, 16000},
		{48000, 0},
		{-1, 16000},
	} {
		if _, err := New(tt.in, tt.out); err == nil {
			t.Errorf("New(%d, %d) accepted invalid rates", tt.in, tt.out)
		}
	}
}

func TestPassthrough(t *testing.T) {
	r, err := New(16000, 16000)
	if err != nil {
		t.Fatal(err)
	}
	if r.InRate() != 16000 || r.OutRate() != 16000 {
		t.Errorf("rates = %d -> %d", r.InRate(), r.OutRate())
	}

	in := []int16{1, -2, 3, -32768, 32767}
	out, err := r.Process(in)
	if err != nil {
		t.Fatal(err)
	}
	if len(out) != len(in) {
		t.Fatalf("passthrough returned %d samples, want %d", len(out), len(in))
	}
	for i := range in {
		if out[i] != in[i] {
			t.Fatalf("out[%d] = %d, want %d", i, out[i], in[i])
		}
	}

	if out, err := r.Process(nil); err != nil || len(out) != 0 {
		t.Errorf("Process(nil) = %v, %v", out, err)
	}
}

func TestDownsampleRatio(t *testing.T) {
	tests := []struct {
		name   string
		inRate int
	}{
		{"48k", 48000},
		{"44.1k", 44100},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r, err := New(tt.inRate, 16000)
			if err != nil {
				t.Fatal(err)
			}

			// One second of DC fed in frames. The filter delays some
			// output, so only check the total is near one second at
			// the target rate.
			frame := make([]int16, tt.inRate/10)
			for i := range frame {
				frame[i] = 1000
			}
			total := 0
			peak := int16(0)
			for range 10 {
				out, err := r.Process(frame)
				if err != nil {
					t.Fatal(err)
				}
				for _, s := range out {
					if s > peak {
						peak = s
					}
				}
				total += len(out)
			}
			if total < 12000 || total > 20000 {
				t.Errorf("one second at %d Hz resampled to %d samples, want about 16000", tt.inRate, total)
			}
			// DC should pass the filter near unity gain.
			if peak < 500 || peak > 4000 {
				t.Errorf("peak = %d, want near the 1000 input level", peak)
			}
		})
	}
}
