package commands

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ben-juodvalkis/musical-perception/pkg/analyze"
	"github.com/ben-juodvalkis/musical-perception/pkg/cli"
	"github.com/ben-juodvalkis/musical-perception/pkg/transcribe"
)

var (
	analyzeWordsFile string
	analyzeRawRate   int
	analyzeOut       outputFlags
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze [audio-file]",
	Short: "Extract musical parameters from audio or transcribed words",
	Long: `Analyze one take of spoken counting and report its musical parameters:
tempo, meter, subdivision, and the exercise announced at the start.

Audio goes through the configured transcriber (and classifier, when one
is set up). With --words the analysis runs over an existing word-level
transcription instead and needs no services at all.

Examples:
  perception analyze class.wav
  perception analyze take.pcm --rate 48000 --format json
  perception analyze --words words.json --query .normalized_tempo.bpm
  cat take.pcm | perception analyze -`,
	Args: cobra.MaximumNArgs(1),
	RunE: runAnalyze,
}

func init() {
	analyzeCmd.Flags().StringVar(&analyzeWordsFile, "words", "", "transcribed words file (JSON or YAML) instead of audio")
	analyzeCmd.Flags().IntVar(&analyzeRawRate, "rate", 16000, "sample rate for raw (non-WAV) audio input")
	analyzeOut.register(analyzeCmd)
	rootCmd.AddCommand(analyzeCmd)
}

// wordsDoc is the file shape accepted by --words: either a bare array
// of words or an object wrapping one.
type wordsDoc struct {
	Words []transcribe.Word `json:"words" yaml:"words"`
}

func loadWords(path string) ([]transcribe.Word, error) {
	var words []transcribe.Word
	if err := cli.LoadRequest(path, &words); err == nil {
		return words, nil
	}
	var doc wordsDoc
	if err := cli.LoadRequest(path, &doc); err != nil {
		return nil, fmt.Errorf("load words file: %w", err)
	}
	return doc.Words, nil
}

func runAnalyze(cmd *cobra.Command, args []string) error {
	var params *analyze.MusicalParameters

	if analyzeWordsFile != "" {
		if len(args) > 0 {
			return fmt.Errorf("--words and an audio file are mutually exclusive")
		}
		words, err := loadWords(analyzeWordsFile)
		if err != nil {
			return err
		}
		if len(words) == 0 {
			return fmt.Errorf("no words in %s", analyzeWordsFile)
		}
		// The words path never transcribes, so no service is needed.
		analyzer := analyze.New(transcribe.TranscriberFunc(
			func(_ context.Context, _ []int16) ([]transcribe.Word, error) {
				return nil, fmt.Errorf("no audio to transcribe")
			}))
		params = analyzer.AnalyzeWords(words)
	} else {
		if len(args) == 0 {
			return fmt.Errorf("an audio file (or --words) is required")
		}
		samples, err := readAudio(args[0], analyzeRawRate)
		if err != nil {
			return err
		}
		analyzer, err := newAnalyzer(cmd.Context())
		if err != nil {
			return err
		}
		params, err = analyzer.Analyze(cmd.Context(), samples)
		if err != nil {
			return err
		}
	}

	return analyzeOut.emit(params, func() string { return renderParams(params) })
}
