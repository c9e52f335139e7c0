package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ben-juodvalkis/musical-perception/pkg/audio/pcm"
	"github.com/ben-juodvalkis/musical-perception/pkg/cli"
	"github.com/ben-juodvalkis/musical-perception/pkg/events"
	"github.com/ben-juodvalkis/musical-perception/pkg/rhythm"
	"github.com/ben-juodvalkis/musical-perception/pkg/transcribe"
	"github.com/ben-juodvalkis/musical-perception/pkg/trigger"
)

var (
	listenStream  string
	listenArchive bool
	listenRawRate int
	listenOut     outputFlags
)

var listenCmd = &cobra.Command{
	Use:   "listen <audio-file|->",
	Short: "Run the wake + rhythm trigger over an audio file or stdin",
	Long: `Feed audio through the trigger pipeline exactly as the live server
would: wake on speech energy, confirm rhythmic counting, and report
each fired event. Useful for replaying recorded classes and for tuning
against known material.

With --archive, fired events are appended to the local event store
under --stream.

Examples:
  perception listen class.wav
  perception listen class.wav --archive --stream studio-a
  ffmpeg -i class.mp4 -f s16le -ar 16000 -ac 1 - | perception listen -`,
	Args: cobra.ExactArgs(1),
	RunE: runListen,
}

func init() {
	listenCmd.Flags().StringVar(&listenStream, "stream", "default", "stream name for archived events")
	listenCmd.Flags().BoolVar(&listenArchive, "archive", false, "append fired events to the event store")
	listenCmd.Flags().IntVar(&listenRawRate, "rate", 16000, "sample rate for raw (non-WAV) audio input")
	listenOut.register(listenCmd)
	rootCmd.AddCommand(listenCmd)
}

// firedEvent is one trigger fire as reported by listen.
type firedEvent struct {
	Timestamp    float64                  `json:"timestamp"`
	AudioSeconds float64                  `json:"audio_seconds"`
	Words        []transcribe.Word        `json:"words"`
	OnsetTempo   *rhythm.OnsetTempoResult `json:"onset_tempo,omitempty"`
	RecordID     string                   `json:"record_id,omitempty"`
}

func runListen(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	if err := events.ValidateStream(listenStream); err != nil {
		return err
	}

	samples, err := readAudio(args[0], listenRawRate)
	if err != nil {
		return err
	}

	factory, err := newTriggerFactory()
	if err != nil {
		return err
	}
	trig := factory()

	var store *events.Store
	if listenArchive {
		var closeStore func()
		store, closeStore, err = openEventStore()
		if err != nil {
			return err
		}
		defer closeStore()
	}

	var fired []firedEvent
	for ts, chunk := range pcm.L16Mono16K.Chunks(samples, trigger.ChunkSamples) {
		ev, err := trig.Feed(ctx, chunk, ts)
		if err != nil {
			return err
		}
		if ev == nil {
			continue
		}
		fe := firedEvent{
			Timestamp:    ev.Timestamp,
			AudioSeconds: pcm.L16Mono16K.Seconds(len(ev.Audio) / 2),
			Words:        ev.Words,
			OnsetTempo:   ev.OnsetTempo,
		}
		if store != nil {
			rec, err := store.Append(ctx, listenStream, ev)
			if err != nil {
				return fmt.Errorf("archive event: %w", err)
			}
			fe.RecordID = rec.ID
		}
		fired = append(fired, fe)
	}

	return listenOut.emit(fired, func() string {
		return renderListen(args[0], pcm.L16Mono16K.Seconds(len(samples)), fired)
	})
}

func renderListen(source string, duration float64, fired []firedEvent) string {
	styles := cli.NewStyles(cli.DefaultTheme)
	rows := []cli.KV{
		{"Source", source},
		{"Duration", cli.FormatSeconds(duration)},
		{"Events", fmt.Sprintf("%d", len(fired))},
	}
	for _, fe := range fired {
		desc := fmt.Sprintf("%d words, %s of audio", len(fe.Words), cli.FormatSeconds(fe.AudioSeconds))
		if fe.OnsetTempo != nil && fe.OnsetTempo.BPM > 0 {
			desc = fmt.Sprintf("%.1f BPM, %s", fe.OnsetTempo.BPM, desc)
		}
		if fe.RecordID != "" {
			desc += ", archived " + shortID(fe.RecordID)
		}
		rows = append(rows, cli.KV{"  " + cli.FormatSeconds(fe.Timestamp), desc})
	}
	if len(fired) == 0 {
		rows = append(rows, cli.KV{"", "no rhythmic counting detected"})
	}
	return styles.Summary("Listen", rows)
}
