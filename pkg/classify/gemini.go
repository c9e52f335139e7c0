package classify

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/jsonschema-go/jsonschema"
	"github.com/googleapis/gax-go/v2/apierror"
	"google.golang.org/genai"

	"github.com/ben-juodvalkis/musical-perception/pkg/audio/pcm"
)

// DefaultGeminiModel handles audio input reliably at interactive cost.
const DefaultGeminiModel = "gemini-2.5-flash"

// Gemini classifies takes with the Gemini API. The audio is sent
// inline as WAV together with the analysis prompt, and the response is
// constrained to the shared schema.
type Gemini struct {
	client *genai.Client
	model  string
}

// GeminiOption configures a Gemini classifier.
type GeminiOption func(*Gemini)

// WithGeminiModel overrides the model name (default DefaultGeminiModel).
func WithGeminiModel(model string) GeminiOption {
	return func(g *Gemini) {
		if model != "" {
			g.model = model
		}
	}
}

// NewGemini creates a Gemini classifier over an initialized client.
func NewGemini(client *genai.Client, opts ...GeminiOption) *Gemini {
	if client == nil {
		panic("classify: nil genai client")
	}
	g := &Gemini{client: client, model: DefaultGeminiModel}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Classify implements Classifier.
func (g *Gemini) Classify(ctx context.Context, req Request) (*Classification, error) {
	wav := pcm.EncodeWAV(req.Samples, pcm.L16Mono16K.SampleRate())
	contents := []*genai.Content{{
		Role: "user",
		Parts: []*genai.Part{
			genai.NewPartFromBytes(wav, "audio/wav"),
			genai.NewPartFromText(buildPrompt(req)),
		},
	}}
	cfg := &genai.GenerateContentConfig{
		ResponseMIMEType: "application/json",
		ResponseSchema:   geminiSchema(responseSchema()),
	}

	slog.Debug("classify: gemini request", "model", g.model, "samples", len(req.Samples))
	resp, err := g.client.Models.GenerateContent(ctx, g.model, contents, cfg)
	if err != nil {
		status := 0
		if e, ok := err.(*apierror.APIError); ok {
			if code := e.HTTPCode(); code > 0 {
				status = code
			}
			if cause := e.Unwrap(); cause != nil {
				err = cause
			}
		}
		return nil, fmt.Errorf("generate content: %w", backendError("gemini", g.model, status, err))
	}
	if len(resp.Candidates) == 0 {
		return nil, errors.New("no candidates")
	}
	cand := resp.Candidates[0]
	if cand.FinishReason != genai.FinishReasonStop {
		return nil, fmt.Errorf("unexpected finish reason: %s", cand.FinishReason)
	}
	var sb strings.Builder
	for _, p := range cand.Content.Parts {
		if p.Text != "" {
			sb.WriteString(p.Text)
		}
	}
	return decodeResponse([]byte(sb.String()), g.model)
}

// geminiSchema converts the shared schema to the Gemini variant. A
// "null" entry in the type union becomes the Nullable flag.
func geminiSchema(schema *jsonschema.Schema) *genai.Schema {
	if schema == nil {
		return nil
	}

	enums := make([]string, 0, len(schema.Enum))
	for _, v := range schema.Enum {
		enums = append(enums, fmt.Sprintf("%v", v))
	}

	gs := genai.Schema{
		Format:      schema.Format,
		Description: schema.Description,
		Enum:        enums,
		Items:       geminiSchema(schema.Items),
		Required:    schema.Required,
	}
	if n := len(schema.Properties); n > 0 {
		gs.Properties = make(map[string]*genai.Schema, n)
		for k, prop := range schema.Properties {
			gs.Properties[k] = geminiSchema(prop)
		}
	}

	typ := schema.Type
	for _, t := range schema.Types {
		switch {
		case t == "null":
			nullable := true
			gs.Nullable = &nullable
		case typ == "":
			typ = t
		}
	}
	switch typ {
	case "object":
		gs.Type = genai.TypeObject
	case "array":
		gs.Type = genai.TypeArray
	case "string":
		gs.Type = genai.TypeString
	case "number":
		gs.Type = genai.TypeNumber
	case "integer":
		gs.Type = genai.TypeInteger
	case "boolean":
		gs.Type = genai.TypeBoolean
	}
	return &gs
}
