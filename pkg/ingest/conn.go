package ingest

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/gorilla/websocket"

	"github.com/ben-juodvalkis/musical-perception/pkg/audio/pcm"
	"github.com/ben-juodvalkis/musical-perception/pkg/audio/resample"
	"github.com/ben-juodvalkis/musical-perception/pkg/buffer"
	"github.com/ben-juodvalkis/musical-perception/pkg/events"
	"github.com/ben-juodvalkis/musical-perception/pkg/trigger"
)

// conn is one websocket audio stream. All reads and writes happen on
// the serving goroutine.
type conn struct {
	ws     *websocket.Conn
	stream string
	rate   int
	format string

	trig *trigger.Trigger
	// nil when the stream already arrives at 16kHz
	rs *resample.Resampler
	// nil for pcm format
	rtp *RTPStream

	store *events.Store

	// chunks regroups resampled samples into trigger-sized chunks.
	chunks *buffer.Chunker[int16]
	// fed counts 16kHz samples handed to the trigger, giving stream time.
	fed   int
	fired int
}

func (c *conn) run(ctx context.Context) {
	defer c.ws.Close()
	c.ws.SetReadLimit(maxFrameBytes)

	slog.Debug("ingest: stream connected",
		"stream", c.stream, "rate", c.rate, "format", c.format,
		"remote", c.ws.RemoteAddr())

	if err := c.ws.WriteJSON(ReadyFrame{
		Type:   "ready",
		Stream: c.stream,
		Rate:   c.rate,
		Format: c.format,
	}); err != nil {
		return
	}

	for {
		msgType, data, err := c.ws.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err,
				websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				slog.Debug("ingest: stream dropped", "stream", c.stream, "error", err)
			}
			break
		}
		if msgType != websocket.BinaryMessage {
			continue
		}

		samples, err := c.decode(data)
		if err != nil {
			slog.Warn("ingest: bad audio frame", "stream", c.stream, "error", err)
			c.ws.WriteMessage(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseUnsupportedData, err.Error()))
			break
		}
		if err := c.push(ctx, samples); err != nil {
			// Transcriber trouble leaves the trigger listening, so the
			// stream itself stays up.
			slog.Warn("ingest: trigger feed failed", "stream", c.stream, "error", err)
		}
	}

	slog.Debug("ingest: stream ended",
		"stream", c.stream,
		"seconds", pcm.L16Mono16K.Seconds(c.fed),
		"events", c.fired,
		"rtp_gaps", c.gaps())
}

// decode turns one binary frame into 16kHz mono samples.
func (c *conn) decode(data []byte) ([]int16, error) {
	var samples []int16
	if c.rtp != nil {
		var err error
		samples, err = c.rtp.Depacketize(data)
		if err != nil {
			return nil, err
		}
	} else {
		if len(data)%2 != 0 {
			return nil, fmt.Errorf("odd pcm frame length %d", len(data))
		}
		samples = pcm.Int16s(data)
	}
	if c.rs != nil {
		return c.rs.Process(samples)
	}
	return samples, nil
}

// push feeds complete chunks to the trigger. A transcriber error does
// not stop the remaining chunks; the first one is returned for logging.
func (c *conn) push(ctx context.Context, samples []int16) error {
	var firstErr error
	for chunk := range c.chunks.Push(samples) {
		ts := pcm.L16Mono16K.Seconds(c.fed)
		c.fed += trigger.ChunkSamples

		ev, err := c.trig.Feed(ctx, chunk, ts)
		if err != nil {
			if firstErr == nil {
				firstErr = err
			}
			continue
		}
		if ev != nil {
			c.emit(ctx, ev)
		}
	}
	return firstErr
}

// emit archives the event and writes it back as a text frame.
func (c *conn) emit(ctx context.Context, ev *trigger.Event) {
	c.fired++
	frame := EventFrame{
		Type:         "event",
		Stream:       c.stream,
		Timestamp:    ev.Timestamp,
		Words:        ev.Words,
		OnsetTempo:   ev.OnsetTempo,
		AudioSeconds: pcm.L16Mono16K.Seconds(len(ev.Audio) / 2),
	}

	if c.store != nil {
		rec, err := c.store.Append(ctx, c.stream, ev)
		if err != nil {
			slog.Error("ingest: archive event", "stream", c.stream, "error", err)
		} else {
			frame.RecordID = rec.ID
		}
	}

	if err := c.ws.WriteJSON(frame); err != nil {
		slog.Warn("ingest: write event frame", "stream", c.stream, "error", err)
	}
}

func (c *conn) gaps() int {
	if c.rtp == nil {
		return 0
	}
	return c.rtp.Gaps()
}
