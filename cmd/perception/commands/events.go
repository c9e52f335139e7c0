package commands

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/ben-juodvalkis/musical-perception/pkg/audio/pcm"
	"github.com/ben-juodvalkis/musical-perception/pkg/cli"
	"github.com/ben-juodvalkis/musical-perception/pkg/events"
)

var (
	eventsStream string
	eventsLimit  int
	eventsKeep   int
	eventsRaw    bool
	eventsFile   string
	eventsOut    outputFlags
)

var eventsCmd = &cobra.Command{
	Use:   "events",
	Short: "Inspect archived trigger events",
	Long: `Work with the local event archive written by 'serve' and
'listen --archive'.

Events are addressed by ID prefix; any unambiguous prefix works:

  perception events list
  perception events show 01930a2f
  perception events export 01930a2f -o take.wav
  perception events prune --stream studio-a --keep 100`,
}

var eventsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List archived events",
	Args:  cobra.NoArgs,
	RunE:  runEventsList,
}

var eventsShowCmd = &cobra.Command{
	Use:   "show <id-prefix>",
	Short: "Show one archived event",
	Args:  cobra.ExactArgs(1),
	RunE:  runEventsShow,
}

var eventsExportCmd = &cobra.Command{
	Use:   "export <id-prefix>",
	Short: "Export an event's audio as WAV",
	Args:  cobra.ExactArgs(1),
	RunE:  runEventsExport,
}

var eventsPruneCmd = &cobra.Command{
	Use:   "prune",
	Short: "Delete all but the newest events of a stream",
	Args:  cobra.NoArgs,
	RunE:  runEventsPrune,
}

func init() {
	eventsCmd.PersistentFlags().StringVar(&eventsStream, "stream", "", "restrict to one stream (default: all streams)")

	eventsListCmd.Flags().IntVar(&eventsLimit, "limit", 0, "show only the newest N events")
	eventsOut.register(eventsListCmd)
	eventsOut.register(eventsShowCmd)

	eventsExportCmd.Flags().BoolVar(&eventsRaw, "raw", false, "write raw 16-bit PCM instead of WAV")
	eventsExportCmd.Flags().StringVarP(&eventsFile, "output", "o", "", "output file (default: <id>.wav)")

	eventsPruneCmd.Flags().IntVar(&eventsKeep, "keep", 100, "number of newest events to keep")

	eventsCmd.AddCommand(eventsListCmd)
	eventsCmd.AddCommand(eventsShowCmd)
	eventsCmd.AddCommand(eventsExportCmd)
	eventsCmd.AddCommand(eventsPruneCmd)
	rootCmd.AddCommand(eventsCmd)
}

// findRecord resolves an ID prefix against the archive. The search
// spans all streams unless --stream narrows it.
func findRecord(ctx context.Context, store *events.Store, stream, idPrefix string) (*events.Record, error) {
	var found *events.Record
	for rec, err := range store.List(ctx, stream) {
		if err != nil {
			return nil, err
		}
		if !strings.HasPrefix(rec.ID, idPrefix) {
			continue
		}
		if found != nil {
			return nil, fmt.Errorf("id prefix %q is ambiguous", idPrefix)
		}
		found = rec
	}
	if found == nil {
		return nil, fmt.Errorf("no event matches %q", idPrefix)
	}
	return found, nil
}

func runEventsList(cmd *cobra.Command, args []string) error {
	store, closeStore, err := openEventStore()
	if err != nil {
		return err
	}
	defer closeStore()

	var recs []*events.Record
	for rec, err := range store.List(cmd.Context(), eventsStream) {
		if err != nil {
			return err
		}
		recs = append(recs, rec)
	}
	if eventsLimit > 0 && len(recs) > eventsLimit {
		recs = recs[len(recs)-eventsLimit:]
	}

	return eventsOut.emit(recs, func() string { return renderEventList(recs) })
}

func renderEventList(recs []*events.Record) string {
	styles := cli.NewStyles(cli.DefaultTheme)
	rows := make([]cli.KV, 0, len(recs))
	for _, rec := range recs {
		desc := fmt.Sprintf("%-12s %s  %3d words",
			rec.Stream, rec.CreatedAt.Format("2006-01-02 15:04:05"), len(rec.Words))
		if rec.OnsetTempo != nil && rec.OnsetTempo.BPM > 0 {
			desc += fmt.Sprintf("  %.1f BPM", rec.OnsetTempo.BPM)
		}
		rows = append(rows, cli.KV{shortID(rec.ID), desc})
	}
	if len(rows) == 0 {
		rows = append(rows, cli.KV{"", "no archived events"})
	}
	return styles.Summary(fmt.Sprintf("Events (%d)", len(recs)), rows)
}

func runEventsShow(cmd *cobra.Command, args []string) error {
	store, closeStore, err := openEventStore()
	if err != nil {
		return err
	}
	defer closeStore()

	rec, err := findRecord(cmd.Context(), store, eventsStream, args[0])
	if err != nil {
		return err
	}
	return eventsOut.emit(rec, func() string { return renderRecord(rec) })
}

func runEventsExport(cmd *cobra.Command, args []string) error {
	store, closeStore, err := openEventStore()
	if err != nil {
		return err
	}
	defer closeStore()

	rec, err := findRecord(cmd.Context(), store, eventsStream, args[0])
	if err != nil {
		return err
	}
	audio, err := store.Audio(cmd.Context(), rec)
	if err != nil {
		return fmt.Errorf("load audio: %w", err)
	}

	path := eventsFile
	data := audio
	if !eventsRaw {
		data = pcm.EncodeWAV(pcm.Int16s(audio), pcm.L16Mono16K.SampleRate())
		if path == "" {
			path = shortID(rec.ID) + ".wav"
		}
	} else if path == "" {
		path = shortID(rec.ID) + ".pcm"
	}

	if err := cli.OutputBytes(data, path); err != nil {
		return err
	}
	cli.PrintSuccess("wrote %s (%s)", path, cli.FormatBytes(int64(len(data))))
	return nil
}

func runEventsPrune(cmd *cobra.Command, args []string) error {
	if eventsStream == "" {
		return fmt.Errorf("prune needs an explicit --stream")
	}

	store, closeStore, err := openEventStore()
	if err != nil {
		return err
	}
	defer closeStore()

	removed, err := store.Prune(cmd.Context(), eventsStream, eventsKeep)
	if err != nil {
		return err
	}
	cli.PrintSuccess("removed %d events from %s, kept the newest %d", removed, eventsStream, eventsKeep)
	return nil
}
