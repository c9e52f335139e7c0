// Package buffer provides the small sample-window containers the audio
// pipeline is built on.
//
//   - Ring: a fixed-capacity sliding window that drops the oldest value
//     when full. The wake scorer keeps its rolling noise floor in one.
//
//   - Chunker: regroups arbitrarily sized slices into fixed-size chunks,
//     holding a partial tail between pushes. The ingest server uses one
//     to turn network frames into trigger-sized chunks.
//
// Neither type is safe for concurrent use; both are meant to live inside
// a single goroutine's processing loop.
package buffer
