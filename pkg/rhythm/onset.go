package rhythm

import (
	"math"
	"slices"
	"sort"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"github.com/ben-juodvalkis/musical-perception/pkg/transcribe"
)

// Config holds the tunables for onset rhythm detection.
type Config struct {
	Window      float64 // sliding window duration in seconds (default 3.0)
	Step        float64 // step between window starts in seconds (default 0.5)
	CVThreshold float64 // maximum CV for a window to count as rhythmic (default 0.4)
	MinWords    int     // minimum word onsets per window (default 3)
	MinIOI      float64 // shortest musical inter-onset interval (default 0.15)
	MaxIOI      float64 // longest musical inter-onset interval (default 2.0)
}

// DefaultConfig returns the tuned defaults for counted exercises.
func DefaultConfig() Config {
	return Config{
		Window:      3.0,
		Step:        0.5,
		CVThreshold: 0.4,
		MinWords:    3,
		MinIOI:      0.15,
		MaxIOI:      2.0,
	}
}

// Detector finds rhythmic sections in word onset timing without word
// classification. Overlapping windows slide across the onsets; windows
// whose inter-onset intervals have a low coefficient of variation are
// rhythmic, and BPM comes from the mean interval inside them. Works
// with counted numbers, step names, or any rhythmic speech.
type Detector struct {
	cfg Config
}

// NewDetector creates a Detector with the given config.
func NewDetector(cfg Config) *Detector {
	return &Detector{cfg: cfg}
}

// Detect estimates tempo from word onsets. Returns nil when fewer than
// three words are available or no rhythmic section is found.
func (d *Detector) Detect(words []transcribe.Word) *OnsetTempoResult {
	if len(words) < 3 {
		return nil
	}

	onsets := make([]float64, len(words))
	texts := make([]string, len(words))
	for i, w := range words {
		onsets[i] = w.Start
		texts[i] = w.Word
	}

	// Secondary estimate from the distribution of all musical IOIs.
	var musical []float64
	for i := 1; i < len(onsets); i++ {
		ioi := onsets[i] - onsets[i-1]
		if ioi >= d.cfg.MinIOI && ioi <= d.cfg.MaxIOI {
			musical = append(musical, ioi)
		}
	}
	histogramBPM := histogramPeakBPM(musical)

	sections := d.windowSections(onsets, texts)
	if len(sections) == 0 {
		return nil
	}
	merged := mergeSections(sections)

	totalDuration := onsets[len(onsets)-1] - onsets[0]
	var rhythmicDuration float64
	for _, s := range merged {
		rhythmicDuration += s.End - s.Start
	}
	coverage := 0.0
	if totalDuration > 0 {
		coverage = roundTo(math.Min(1, rhythmicDuration/totalDuration), 3)
	}

	return &OnsetTempoResult{
		BPM:                 weightedMedianBPM(merged),
		Confidence:          sectionConfidence(merged, totalDuration, histogramBPM),
		RhythmicSections:    merged,
		TotalDuration:       roundTo(totalDuration, 2),
		RhythmicCoverage:    coverage,
		IOIHistogramPeakBPM: histogramBPM,
	}
}

// windowSections slides fixed windows over the onsets and keeps the
// regular ones as candidate sections.
func (d *Detector) windowSections(onsets []float64, texts []string) []RhythmicSection {
	cfg := d.cfg
	var sections []RhythmicSection
	end := onsets[len(onsets)-1]

	for t := onsets[0]; t+cfg.Window <= end+cfg.Step; t += cfg.Step {
		var indices []int
		for i, on := range onsets {
			if on >= t && on < t+cfg.Window {
				indices = append(indices, i)
			}
		}
		if len(indices) < cfg.MinWords {
			continue
		}

		// IOIs between consecutive onsets in the window, sub-word
		// artifacts filtered out.
		var iois []float64
		for j := 1; j < len(indices); j++ {
			if ioi := onsets[indices[j]] - onsets[indices[j-1]]; ioi >= cfg.MinIOI {
				iois = append(iois, ioi)
			}
		}
		if len(iois) < 2 {
			continue
		}

		mean := stat.Mean(iois, nil)
		if mean <= 0 {
			continue
		}
		cv := stat.PopStdDev(iois, nil) / mean
		if cv >= cfg.CVThreshold {
			continue
		}

		words := make([]string, len(indices))
		for j, i := range indices {
			words[j] = texts[i]
		}
		sections = append(sections, RhythmicSection{
			Start:     roundTo(t, 2),
			End:       roundTo(t+cfg.Window, 2),
			BPM:       roundTo(60.0/mean, 1),
			MeanIOI:   roundTo(mean, 4),
			CV:        roundTo(cv, 3),
			WordCount: len(indices),
			Words:     words,
		})
	}
	return sections
}

// mergeSections consolidates overlapping windows. A merged section
// takes BPM, mean IOI, and CV from whichever window was more regular
// (lower CV) and de-duplicates word text, since overlapping windows
// carry the same words.
func mergeSections(sections []RhythmicSection) []RhythmicSection {
	if len(sections) == 0 {
		return nil
	}

	ordered := slices.Clone(sections)
	sort.SliceStable(ordered, func(i, j int) bool { return ordered[i].Start < ordered[j].Start })

	merged := []RhythmicSection{ordered[0]}
	for _, section := range ordered[1:] {
		prev := &merged[len(merged)-1]
		if section.Start > prev.End {
			merged = append(merged, section)
			continue
		}

		best := *prev
		if section.CV < prev.CV {
			best = section
		}
		words := dedupeWords(prev.Words, section.Words)
		*prev = RhythmicSection{
			Start:     prev.Start,
			End:       math.Max(prev.End, section.End),
			BPM:       best.BPM,
			MeanIOI:   best.MeanIOI,
			CV:        best.CV,
			WordCount: len(words),
			Words:     words,
		}
	}
	return merged
}

// dedupeWords concatenates word lists keeping the first occurrence of
// each text.
func dedupeWords(lists ...[]string) []string {
	seen := make(map[string]bool)
	var out []string
	for _, list := range lists {
		for _, w := range list {
			if seen[w] {
				continue
			}
			seen[w] = true
			out = append(out, w)
		}
	}
	return out
}

// weightedMedianBPM picks the duration-weighted median of the section
// BPMs: with sections ordered by BPM, the first whose cumulative
// duration reaches half the total. Robust when one short section
// carries an outlier tempo.
func weightedMedianBPM(sections []RhythmicSection) float64 {
	bpms := make([]float64, len(sections))
	weights := make([]float64, len(sections))
	for i, s := range sections {
		bpms[i] = s.BPM
		weights[i] = s.End - s.Start
	}

	inds := make([]int, len(bpms))
	floats.Argsort(bpms, inds)
	sortedWeights := make([]float64, len(weights))
	for i, idx := range inds {
		sortedWeights[i] = weights[idx]
	}

	return roundTo(stat.Quantile(0.5, stat.Empirical, bpms, sortedWeights), 1)
}

// histogramPeakBPM finds the dominant inter-onset interval by
// histogram peak and returns it as BPM, or 0 when the distribution has
// no stable peak.
func histogramPeakBPM(iois []float64) float64 {
	if len(iois) < 3 {
		return 0
	}

	lo, hi := floats.Min(iois), floats.Max(iois)
	if lo == hi {
		// All IOIs identical: perfectly regular, no histogram needed.
		if lo > 0 {
			return roundTo(60.0/lo, 1)
		}
		return 0
	}

	nBins := max(10, min(50, len(iois)/2))
	edges := make([]float64, nBins+1)
	floats.Span(edges, lo, hi)
	centers := make([]float64, nBins)
	for i := range centers {
		centers[i] = (edges[i] + edges[i+1]) / 2
	}

	// The top edge is nudged past the maximum so the final interval is
	// right-closed and the largest IOI lands in the last bin.
	dividers := slices.Clone(edges)
	dividers[nBins] = math.Nextafter(hi, math.Inf(1))

	sorted := slices.Clone(iois)
	sort.Float64s(sorted)
	counts := stat.Histogram(nil, dividers, sorted, nil)

	peak := floats.MaxIdx(counts)
	if counts[peak] < 2 {
		return 0
	}
	return roundTo(60.0/centers[peak], 1)
}

// sectionConfidence scores the detection from coverage, cross-section
// BPM consistency, mean regularity, and histogram agreement.
func sectionConfidence(sections []RhythmicSection, totalDuration, histogramBPM float64) float64 {
	if len(sections) == 0 {
		return 0
	}

	var rhythmicDuration float64
	bpms := make([]float64, len(sections))
	cvs := make([]float64, len(sections))
	for i, s := range sections {
		rhythmicDuration += s.End - s.Start
		bpms[i] = s.BPM
		cvs[i] = s.CV
	}

	coverage := 0.0
	if totalDuration > 0 {
		coverage = math.Min(1, rhythmicDuration/totalDuration)
	}

	consistency := 0.5
	if len(bpms) > 1 {
		mean := stat.Mean(bpms, nil)
		cv := 1.0
		if mean > 0 {
			cv = stat.PopStdDev(bpms, nil) / mean
		}
		consistency = math.Max(0, 1-cv)
	}

	regularity := math.Max(0, 1-stat.Mean(cvs, nil))

	agreement := 0.5
	if histogramBPM > 0 {
		medianBPM := median(bpms)
		agreement = math.Min(medianBPM, histogramBPM) / math.Max(medianBPM, histogramBPM)
	}

	confidence := 0.30*coverage + 0.30*consistency + 0.25*regularity + 0.15*agreement
	return roundTo(math.Max(0, math.Min(1, confidence)), 2)
}
