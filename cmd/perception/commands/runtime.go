package commands

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
	"google.golang.org/genai"

	"github.com/ben-juodvalkis/musical-perception/pkg/analyze"
	"github.com/ben-juodvalkis/musical-perception/pkg/classify"
	"github.com/ben-juodvalkis/musical-perception/pkg/events"
	"github.com/ben-juodvalkis/musical-perception/pkg/kv"
	"github.com/ben-juodvalkis/musical-perception/pkg/storage"
	"github.com/ben-juodvalkis/musical-perception/pkg/transcribe"
	"github.com/ben-juodvalkis/musical-perception/pkg/trigger"
	"github.com/ben-juodvalkis/musical-perception/pkg/wake"
)

// newTranscriber builds the speech-to-text client from configuration.
func newTranscriber() (*transcribe.Client, error) {
	tc := GetConfig().Transcriber
	if tc.URL == "" {
		return nil, fmt.Errorf("no transcriber configured; set transcriber.url in %s or run 'perception config init'", GetConfig().Path())
	}
	var opts []transcribe.ClientOption
	if tc.Language != "" {
		opts = append(opts, transcribe.WithLanguage(tc.Language))
	}
	return transcribe.NewClient(tc.URL, opts...), nil
}

// newClassifier builds the configured LLM classification backend.
// Returns (nil, nil) when classification is disabled.
func newClassifier(ctx context.Context) (classify.Classifier, error) {
	cc := GetConfig().Classifier
	switch cc.Backend {
	case "", "none":
		return nil, nil

	case "gemini":
		if cc.APIKey == "" {
			return nil, fmt.Errorf("classifier backend gemini needs classifier.api_key")
		}
		client, err := genai.NewClient(ctx, &genai.ClientConfig{APIKey: cc.APIKey})
		if err != nil {
			return nil, fmt.Errorf("create gemini client: %w", err)
		}
		return classify.NewGemini(client, classify.WithGeminiModel(cc.Model)), nil

	case "openai":
		if cc.APIKey == "" {
			return nil, fmt.Errorf("classifier backend openai needs classifier.api_key")
		}
		opts := []option.RequestOption{option.WithAPIKey(cc.APIKey)}
		if cc.BaseURL != "" {
			opts = append(opts, option.WithBaseURL(cc.BaseURL))
		}
		client := openai.NewClient(opts...)
		return classify.NewOpenAI(&client, classify.WithOpenAIModel(cc.Model)), nil

	default:
		return nil, fmt.Errorf("unknown classifier backend %q (want gemini, openai, or none)", cc.Backend)
	}
}

// newAnalyzer wires the full analysis pipeline from configuration.
func newAnalyzer(ctx context.Context) (*analyze.Analyzer, error) {
	transcriber, err := newTranscriber()
	if err != nil {
		return nil, err
	}
	var opts []analyze.Option
	classifier, err := newClassifier(ctx)
	if err != nil {
		return nil, err
	}
	if classifier != nil {
		opts = append(opts, analyze.WithClassifier(classifier))
	}
	return analyze.New(transcriber, opts...), nil
}

// newTriggerFactory returns a constructor for per-stream triggers.
// Each websocket connection and each listen run needs its own trigger
// because trigger state is single-stream.
func newTriggerFactory() (func() *trigger.Trigger, error) {
	transcriber, err := newTranscriber()
	if err != nil {
		return nil, err
	}
	return func() *trigger.Trigger {
		return trigger.New(wake.NewEnergyScorer(), transcriber)
	}, nil
}

// testStoreOverride lets command tests swap in a memory-backed store.
var testStoreOverride *events.Store

// openEventStore opens the on-disk event archive under the data
// directory. The returned closer flushes and releases the database.
func openEventStore() (*events.Store, func(), error) {
	if testStoreOverride != nil {
		return testStoreOverride, func() {}, nil
	}

	dir, err := dataDir()
	if err != nil {
		return nil, nil, err
	}

	db, err := kv.NewBadger(kv.BadgerOptions{Dir: filepath.Join(dir, "events")})
	if err != nil {
		return nil, nil, fmt.Errorf("open event database: %w", err)
	}

	blobs, err := storage.NewLocal(blobDir(dir))
	if err != nil {
		db.Close()
		return nil, nil, fmt.Errorf("open blob store: %w", err)
	}

	store := events.New(db, events.WithBlobStore(blobs))
	return store, func() { db.Close() }, nil
}
