package commands

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/ben-juodvalkis/musical-perception/pkg/ingest"
)

var (
	serveAddr      string
	serveNoArchive bool
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the live websocket ingest server",
	Long: `Serve websocket audio ingest. Clients connect to /v1/ingest with a
stream name and send PCM (or RTP) audio frames; fired trigger events
come back as JSON frames and are archived to the local event store.

  ws://<addr>/v1/ingest?stream=studio-a&rate=48000&format=pcm

Streams at rates other than 16kHz are resampled on arrival. See
'perception events' for inspecting the archive.

Examples:
  perception serve
  perception serve --addr :9000 --no-archive`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "listen address (default from config, falling back to :8090)")
	serveCmd.Flags().BoolVar(&serveNoArchive, "no-archive", false, "do not archive fired events")
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	addr := serveAddr
	if addr == "" {
		addr = GetConfig().Serve.Addr
	}

	factory, err := newTriggerFactory()
	if err != nil {
		return err
	}

	var opts []ingest.Option
	if !serveNoArchive {
		store, closeStore, err := openEventStore()
		if err != nil {
			return err
		}
		defer closeStore()
		opts = append(opts, ingest.WithEventStore(store))
	}

	mux := http.NewServeMux()
	mux.Handle("/v1/ingest", ingest.NewServer(factory, opts...))
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	srv := &http.Server{Addr: addr, Handler: mux}

	errCh := make(chan error, 1)
	go func() {
		slog.Info("ingest server listening", "addr", addr, "archive", !serveNoArchive)
		if err := srv.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		return fmt.Errorf("serve: %w", err)
	case sig := <-sigCh:
		slog.Info("shutting down", "signal", sig.String())
	case <-cmd.Context().Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
