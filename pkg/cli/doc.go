// Package cli provides shared utilities for the perception command-line
// tools.
//
// This package includes:
//   - Output formatting (YAML, JSON, raw) with optional jq filtering
//   - Request file loading (YAML/JSON)
//   - Terminal styling for analysis summaries
//
// Example usage:
//
//	// Output result
//	cli.Output(result, cli.OutputOptions{
//	    Format: cli.FormatJSON,
//	    File:   outputPath,
//	})
//
//	// Filter with a jq expression
//	q, err := cli.ParseQuery(".normalized_tempo.bpm")
//	results, err := q.Apply(params)
package cli
