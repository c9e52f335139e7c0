// Package ingest receives live audio over websockets and runs it
// through the analysis trigger.
//
// Clients connect with a stream name and send 16-bit little-endian
// mono PCM as binary frames, or RTP packets carrying L16 payloads when
// format=rtp. Audio at rates other than 16kHz is resampled on the way
// in. Whenever the stream's trigger confirms rhythmic speech the fired
// event is written back as a JSON text frame and, when an event store
// is configured, archived under the stream name.
package ingest

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/gorilla/websocket"

	"github.com/ben-juodvalkis/musical-perception/pkg/audio/pcm"
	"github.com/ben-juodvalkis/musical-perception/pkg/audio/resample"
	"github.com/ben-juodvalkis/musical-perception/pkg/buffer"
	"github.com/ben-juodvalkis/musical-perception/pkg/events"
	"github.com/ben-juodvalkis/musical-perception/pkg/rhythm"
	"github.com/ben-juodvalkis/musical-perception/pkg/transcribe"
	"github.com/ben-juodvalkis/musical-perception/pkg/trigger"
)

// Audio frame formats accepted on a connection.
const (
	FormatPCM = "pcm"
	FormatRTP = "rtp"
)

// maxFrameBytes caps a single websocket frame. One MiB is over half a
// minute of 16kHz PCM.
const maxFrameBytes = 1 << 20

// ReadyFrame is the first text frame on a new connection, echoing the
// negotiated parameters.
type ReadyFrame struct {
	Type   string `json:"type"`
	Stream string `json:"stream"`
	Rate   int    `json:"rate"`
	Format string `json:"format"`
}

// EventFrame is written as a JSON text frame each time the stream's
// trigger fires. The raw audio segment is not echoed back; when the
// event was archived, RecordID locates it in the event store.
type EventFrame struct {
	Type         string                   `json:"type"`
	Stream       string                   `json:"stream"`
	Timestamp    float64                  `json:"timestamp"`
	Words        []transcribe.Word        `json:"words"`
	OnsetTempo   *rhythm.OnsetTempoResult `json:"onset_tempo,omitempty"`
	AudioSeconds float64                  `json:"audio_seconds"`
	RecordID     string                   `json:"record_id,omitempty"`
}

// Server upgrades HTTP requests to websocket audio streams. Each
// connection gets its own trigger from the factory, so concurrent
// streams do not share state.
type Server struct {
	newTrigger func() *trigger.Trigger
	store      *events.Store
	upgrader   websocket.Upgrader
}

// Option configures a Server.
type Option func(*Server)

// WithEventStore archives fired events under the connection's stream
// name.
func WithEventStore(s *events.Store) Option {
	return func(srv *Server) {
		if s != nil {
			srv.store = s
		}
	}
}

// NewServer creates a websocket ingest server. The factory is called
// once per connection and is required.
func NewServer(newTrigger func() *trigger.Trigger, opts ...Option) *Server {
	if newTrigger == nil {
		panic("ingest: nil trigger factory")
	}
	s := &Server{
		newTrigger: newTrigger,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool { return true },
		},
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// ServeHTTP accepts a stream connection. Query parameters: stream
// (required), rate (sample rate in Hz, default 16000) and format (pcm
// or rtp, default pcm).
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	stream := q.Get("stream")
	if err := events.ValidateStream(stream); err != nil {
		http.Error(w, "missing or invalid stream name", http.StatusBadRequest)
		return
	}

	rate := pcm.L16Mono16K.SampleRate()
	if v := q.Get("rate"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			http.Error(w, fmt.Sprintf("invalid rate %q", v), http.StatusBadRequest)
			return
		}
		rate = n
	}

	format := q.Get("format")
	if format == "" {
		format = FormatPCM
	}
	if format != FormatPCM && format != FormatRTP {
		http.Error(w, fmt.Sprintf("unsupported format %q", format), http.StatusBadRequest)
		return
	}

	var rs *resample.Resampler
	if rate != pcm.L16Mono16K.SampleRate() {
		var err error
		rs, err = resample.New(rate, pcm.L16Mono16K.SampleRate())
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
	}

	ws, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}

	c := &conn{
		ws:     ws,
		stream: stream,
		rate:   rate,
		format: format,
		trig:   s.newTrigger(),
		rs:     rs,
		store:  s.store,
		chunks: buffer.NewChunker[int16](trigger.ChunkSamples),
	}
	if format == FormatRTP {
		c.rtp = &RTPStream{}
	}
	c.run(r.Context())
}
