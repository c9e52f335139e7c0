package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ben-juodvalkis/musical-perception/pkg/markers"
)

var (
	markersWordsFile string
	markersRawRate   int
	markersOut       outputFlags
)

var markersCmd = &cobra.Command{
	Use:   "markers [audio-file]",
	Short: "Show the rhythmic markers heard in audio or words",
	Long: `Extract the timed rhythmic markers (counts, "and"s, "ah"s, go words)
from a take. Audio is transcribed first; with --words an existing
transcription is used directly.

Examples:
  perception markers class.wav
  perception markers --words words.json --format json`,
	Args: cobra.MaximumNArgs(1),
	RunE: runMarkers,
}

func init() {
	markersCmd.Flags().StringVar(&markersWordsFile, "words", "", "transcribed words file (JSON or YAML) instead of audio")
	markersCmd.Flags().IntVar(&markersRawRate, "rate", 16000, "sample rate for raw (non-WAV) audio input")
	markersOut.register(markersCmd)
	rootCmd.AddCommand(markersCmd)
}

func runMarkers(cmd *cobra.Command, args []string) error {
	var ms []markers.Marker

	if markersWordsFile != "" {
		if len(args) > 0 {
			return fmt.Errorf("--words and an audio file are mutually exclusive")
		}
		words, err := loadWords(markersWordsFile)
		if err != nil {
			return err
		}
		ms = markers.Extract(words)
	} else {
		if len(args) == 0 {
			return fmt.Errorf("an audio file (or --words) is required")
		}
		samples, err := readAudio(args[0], markersRawRate)
		if err != nil {
			return err
		}
		transcriber, err := newTranscriber()
		if err != nil {
			return err
		}
		words, err := transcriber.Transcribe(cmd.Context(), samples)
		if err != nil {
			return fmt.Errorf("transcribe: %w", err)
		}
		ms = markers.Extract(words)
	}

	return markersOut.emit(ms, func() string { return renderMarkers(ms) })
}
