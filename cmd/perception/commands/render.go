package commands

import (
	"fmt"
	"strings"

	"github.com/ben-juodvalkis/musical-perception/pkg/analyze"
	"github.com/ben-juodvalkis/musical-perception/pkg/cli"
	"github.com/ben-juodvalkis/musical-perception/pkg/events"
	"github.com/ben-juodvalkis/musical-perception/pkg/markers"
)

// renderParams builds the terminal summary for one analysis reading.
func renderParams(p *analyze.MusicalParameters) string {
	styles := cli.NewStyles(cli.DefaultTheme)
	var rows []cli.KV

	switch {
	case p.NormalizedTempo != nil:
		rows = append(rows, cli.KV{"Tempo", fmt.Sprintf("%.1f BPM (confidence %.2f)",
			p.NormalizedTempo.BPM, p.NormalizedTempo.Confidence)})
		if p.NormalizedTempo.TempoMultiplier != 1 {
			rows = append(rows, cli.KV{"", fmt.Sprintf("raw %.1f BPM, multiplier %d",
				p.NormalizedTempo.RawBPM, p.NormalizedTempo.TempoMultiplier)})
		}
	case p.OnsetTempo != nil && p.OnsetTempo.BPM > 0:
		rows = append(rows, cli.KV{"Tempo", fmt.Sprintf("%.1f BPM (onset only, confidence %.2f)",
			p.OnsetTempo.BPM, p.OnsetTempo.Confidence)})
	default:
		rows = append(rows, cli.KV{"Tempo", "not detected"})
	}

	if p.Meter != nil {
		rows = append(rows, cli.KV{"Meter", fmt.Sprintf("%d/%d", p.Meter.BeatsPerMeasure, p.Meter.BeatUnit)})
	}
	if p.Subdivision.Type != "" {
		rows = append(rows, cli.KV{"Subdivision", string(p.Subdivision.Type)})
	}
	if p.Exercise != nil && p.Exercise.Type != "" {
		rows = append(rows, cli.KV{"Exercise", fmt.Sprintf("%s (confidence %.2f)",
			p.Exercise.DisplayName, p.Exercise.Confidence)})
	}
	if p.Quality != nil && len(p.Quality.Descriptors) > 0 {
		rows = append(rows, cli.KV{"Quality", strings.Join(p.Quality.Descriptors, ", ")})
	}

	rows = append(rows, cli.KV{"Words", fmt.Sprintf("%d heard, %d markers", len(p.Words), len(p.Markers))})
	if preview := wordPreview(p); preview != "" {
		rows = append(rows, cli.KV{"", preview})
	}

	return styles.Summary("Musical Parameters", rows)
}

func wordPreview(p *analyze.MusicalParameters) string {
	const max = 12
	texts := make([]string, 0, max)
	for _, w := range p.Words {
		if len(texts) == max {
			texts = append(texts, "...")
			break
		}
		texts = append(texts, w.Word)
	}
	return strings.Join(texts, " ")
}

// renderMarkers builds the terminal summary for extracted markers.
func renderMarkers(ms []markers.Marker) string {
	styles := cli.NewStyles(cli.DefaultTheme)
	rows := make([]cli.KV, 0, len(ms)+1)
	for _, m := range ms {
		rows = append(rows, cli.KV{fmt.Sprintf("%7.2fs", m.Timestamp),
			fmt.Sprintf("%-12s %s", m.Kind, m.Word)})
	}
	if len(rows) == 0 {
		rows = append(rows, cli.KV{"", "no rhythmic markers heard"})
	}
	return styles.Summary(fmt.Sprintf("Markers (%d)", len(ms)), rows)
}

// renderRecord builds the terminal summary for one archived event.
func renderRecord(rec *events.Record) string {
	styles := cli.NewStyles(cli.DefaultTheme)
	rows := []cli.KV{
		{"ID", rec.ID},
		{"Stream", rec.Stream},
		{"Created", rec.CreatedAt.Format("2006-01-02 15:04:05")},
		{"Fired at", cli.FormatSeconds(rec.Timestamp)},
		{"Audio", fmt.Sprintf("%s (%s)", cli.FormatBytes(int64(rec.AudioSize)),
			cli.FormatSeconds(float64(rec.AudioSize/2)/16000))},
	}
	if rec.AudioKey != "" {
		rows = append(rows, cli.KV{"Blob", rec.AudioKey})
	}
	if rec.OnsetTempo != nil && rec.OnsetTempo.BPM > 0 {
		rows = append(rows, cli.KV{"Tempo", fmt.Sprintf("%.1f BPM (confidence %.2f)",
			rec.OnsetTempo.BPM, rec.OnsetTempo.Confidence)})
	}
	texts := make([]string, 0, len(rec.Words))
	for _, w := range rec.Words {
		texts = append(texts, w.Word)
	}
	rows = append(rows, cli.KV{"Words", fmt.Sprintf("%d heard", len(rec.Words))})
	if len(texts) > 0 {
		rows = append(rows, cli.KV{"", strings.Join(texts, " ")})
	}
	return styles.Summary("Event "+shortID(rec.ID), rows)
}

// shortID abbreviates a record ID for titles and list rows.
func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
