package wake

import (
	"math"
	"sort"

	"gonum.org/v1/gonum/stat"

	"github.com/ben-juodvalkis/musical-perception/pkg/buffer"
)

const (
	// DefaultFloorWindow is how many recent chunk levels the rolling
	// noise floor estimate remembers. 50 chunks of 80ms cover four
	// seconds of room tone.
	DefaultFloorWindow = 50

	// DefaultOnMarginDB and DefaultOffMarginDB bound the scoring ramp
	// above the noise floor. Speech typically sits 12-18dB above the
	// floor of a quiet room; the gap between the two margins gives the
	// active state hysteresis.
	DefaultOnMarginDB  = 12.0
	DefaultOffMarginDB = 6.0

	// floorQuantile picks the quiet end of the recent levels as the
	// floor, the same idea as an RMS trough measurement.
	floorQuantile = 0.1

	initialFloorDB = -60.0
	silenceDB      = -96.0
)

// EnergyScorer scores chunks by RMS level relative to a rolling noise
// floor. The floor is the low quantile of recent chunk levels, so it
// tracks room tone without being dragged up by speech. The score ramps
// from 0 at floor+off margin to 1 at floor+on margin.
type EnergyScorer struct {
	levels *buffer.Ring[float64]
	active bool
	onDB   float64
	offDB  float64
}

// EnergyOption configures an EnergyScorer.
type EnergyOption func(*EnergyScorer)

// WithFloorWindow sets how many chunk levels feed the noise floor
// estimate (default 50).
func WithFloorWindow(n int) EnergyOption {
	return func(s *EnergyScorer) {
		if n > 0 {
			s.levels = buffer.NewRing[float64](n)
		}
	}
}

// WithMargins sets the on and off margins in dB above the noise floor
// (defaults 12 and 6). Requires on > off >= 0.
func WithMargins(onDB, offDB float64) EnergyOption {
	return func(s *EnergyScorer) {
		if onDB > offDB && offDB >= 0 {
			s.onDB = onDB
			s.offDB = offDB
		}
	}
}

// NewEnergyScorer creates an EnergyScorer with the given options.
func NewEnergyScorer(opts ...EnergyOption) *EnergyScorer {
	s := &EnergyScorer{
		levels: buffer.NewRing[float64](DefaultFloorWindow),
		onDB:   DefaultOnMarginDB,
		offDB:  DefaultOffMarginDB,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Score measures the chunk level against the current noise floor and
// returns {"energy": score}. Every chunk's level also feeds the floor
// estimate.
func (s *EnergyScorer) Score(chunk []int16) map[string]float64 {
	level := dbfs(chunk)
	floor := s.noiseFloor()

	if !s.active && level >= floor+s.onDB {
		s.active = true
	} else if s.active && level < floor+s.offDB {
		s.active = false
	}

	s.levels.Push(level)

	score := (level - floor - s.offDB) / (s.onDB - s.offDB)
	return map[string]float64{"energy": clamp01(score)}
}

// Active reports whether the scorer currently considers the input
// speech. The on and off margins make this sticky: once active, the
// level must drop below the off margin to release.
func (s *EnergyScorer) Active() bool {
	return s.active
}

// Reset clears the noise floor history and the active state.
func (s *EnergyScorer) Reset() {
	s.levels.Reset()
	s.active = false
}

func (s *EnergyScorer) noiseFloor() float64 {
	if s.levels.Len() == 0 {
		return initialFloorDB
	}
	levels := s.levels.Values()
	sort.Float64s(levels)
	return stat.Quantile(floorQuantile, stat.Empirical, levels, nil)
}

// dbfs returns the RMS level of the chunk in dB relative to int16 full
// scale, floored at silenceDB.
func dbfs(chunk []int16) float64 {
	if len(chunk) == 0 {
		return silenceDB
	}
	var sum float64
	for _, v := range chunk {
		f := float64(v) / 32768.0
		sum += f * f
	}
	rms := math.Sqrt(sum / float64(len(chunk)))
	if rms <= 0 {
		return silenceDB
	}
	return math.Max(20*math.Log10(rms), silenceDB)
}

func clamp01(x float64) float64 {
	return math.Max(0, math.Min(1, x))
}
