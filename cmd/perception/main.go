// Package main is the entry point for the perception CLI.
//
// Usage:
//
//	perception [flags] <command> [subcommand] [args]
//
// Commands:
//
//	analyze    - Extract musical parameters from audio or transcribed words
//	markers    - Show rhythmic markers heard in audio or words
//	listen     - Run the trigger pipeline over an audio file or stdin
//	serve      - Run the live websocket ingest server
//	events     - Inspect archived trigger events (list, show, export, prune)
//	config     - Configuration management (init, show)
//	version    - Show version information
package main

import (
	"fmt"
	"os"

	"github.com/ben-juodvalkis/musical-perception/cmd/perception/commands"
)

func main() {
	if err := commands.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
