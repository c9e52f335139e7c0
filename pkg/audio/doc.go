// Package audio is the umbrella for the raw-audio sub-packages:
//
//   - pcm: sample formats, WAV encoding and chunk iteration
//   - resample: streaming sample-rate conversion to the 16kHz the
//     rest of the pipeline expects
//
// Everything downstream works on 16-bit mono PCM at 16kHz
// (pcm.L16Mono16K); these packages get captured audio into that shape.
package audio
