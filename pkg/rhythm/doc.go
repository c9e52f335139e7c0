// Package rhythm infers musical timing from the way words are spoken.
//
// A teacher counting an exercise ("one and two and ...") or naming
// steps in time carries the tempo, meter, and subdivision of the music
// in the timestamps of their words. The package recovers those from
// word-level transcription output:
//
//   - EstimateTempo: BPM from classified beat timestamps.
//   - Detector: classification-free tempo from raw word onsets, via
//     sliding-window regularity analysis.
//   - ClassifySubdivisions: duple vs triplet counting from markers.
//   - NormalizeTempo: snap a BPM into the 70-140 class-tempo band.
//   - InterpretMeter: reconcile all tempo signals into one coherent
//     BPM + meter + subdivision reading.
//
// Everything here is pure computation over timestamps. Insufficient or
// unrhythmic input yields nil results, never errors; feeding impossible
// internal states panics.
package rhythm
