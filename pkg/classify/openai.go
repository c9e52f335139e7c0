package classify

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/jsonschema-go/jsonschema"
	"github.com/openai/openai-go"
	"github.com/openai/openai-go/packages/param"

	"github.com/ben-juodvalkis/musical-perception/pkg/audio/pcm"
)

// DefaultOpenAIModel is the default audio-capable chat model.
const DefaultOpenAIModel = "gpt-4o-audio-preview"

const oaiFinishReasonStop = "stop"

// OpenAI classifies takes through an OpenAI-compatible chat completions
// endpoint with strict structured output. The audio travels base64
// encoded as an input_audio content part.
type OpenAI struct {
	client *openai.Client
	model  string
}

// OpenAIOption configures an OpenAI classifier.
type OpenAIOption func(*OpenAI)

// WithOpenAIModel overrides the model name (default DefaultOpenAIModel).
func WithOpenAIModel(model string) OpenAIOption {
	return func(o *OpenAI) {
		if model != "" {
			o.model = model
		}
	}
}

// NewOpenAI creates an OpenAI classifier over an initialized client.
func NewOpenAI(client *openai.Client, opts ...OpenAIOption) *OpenAI {
	if client == nil {
		panic("classify: nil openai client")
	}
	o := &OpenAI{client: client, model: DefaultOpenAIModel}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// Classify implements Classifier.
func (o *OpenAI) Classify(ctx context.Context, req Request) (*Classification, error) {
	wav := pcm.EncodeWAV(req.Samples, pcm.L16Mono16K.SampleRate())
	parts := []openai.ChatCompletionContentPartUnionParam{
		openai.TextContentPart(buildPrompt(req)),
		openai.InputAudioContentPart(openai.ChatCompletionContentPartInputAudioInputAudioParam{
			Data:   base64.StdEncoding.EncodeToString(wav),
			Format: "wav",
		}),
	}
	params := openai.ChatCompletionNewParams{
		Model: o.model,
		Messages: []openai.ChatCompletionMessageParamUnion{{
			OfUser: &openai.ChatCompletionUserMessageParam{
				Content: openai.ChatCompletionUserMessageParamContentUnion{
					OfArrayOfContentParts: parts,
				},
			},
		}},
		ResponseFormat: openai.ChatCompletionNewParamsResponseFormatUnion{
			OfJSONSchema: &openai.ResponseFormatJSONSchemaParam{
				JSONSchema: openai.ResponseFormatJSONSchemaJSONSchemaParam{
					Name:        "take_analysis",
					Description: param.NewOpt("Structured reading of a counted dance exercise"),
					Schema:      strictSchema(responseSchema()),
					Strict:      param.NewOpt(true),
				},
			},
		},
	}

	slog.Debug("classify: openai request", "model", o.model, "samples", len(req.Samples))
	resp, err := o.client.Chat.Completions.New(ctx, params)
	if err != nil {
		status := 0
		var apierr *openai.Error
		if errors.As(err, &apierr) {
			status = apierr.StatusCode
		}
		return nil, fmt.Errorf("chat completion: %w", backendError("openai", o.model, status, err))
	}
	if len(resp.Choices) == 0 {
		return nil, errors.New("no choices")
	}
	choice := resp.Choices[0]
	if choice.Message.Refusal != "" {
		return nil, fmt.Errorf("blocked: %s", choice.Message.Refusal)
	}
	if choice.FinishReason != oaiFinishReasonStop {
		return nil, fmt.Errorf("unexpected finish reason: %s", choice.FinishReason)
	}
	if len(choice.Message.Content) == 0 {
		return nil, errors.New("no content")
	}
	return decodeResponse([]byte(choice.Message.Content), o.model)
}

// strictSchema prepares the shared schema for OpenAI strict mode,
// which demands additionalProperties: false on every object. The
// shared schema already requires every property.
func strictSchema(s *jsonschema.Schema) any {
	if s == nil {
		return nil
	}
	return (any)(formatStrict(s.CloneSchemas()))
}

func formatStrict(m *jsonschema.Schema) *jsonschema.Schema {
	if m == nil {
		return nil
	}
	typ := m.Type
	if typ == "" {
		for _, t := range m.Types {
			if t != "null" && t != "" {
				typ = t
				break
			}
		}
	}
	switch typ {
	case "array":
		m.Items = formatStrict(m.Items)
	case "object":
		m.AdditionalProperties = &jsonschema.Schema{Not: &jsonschema.Schema{}}
		for k, v := range m.Properties {
			m.Properties[k] = formatStrict(v)
		}
	}
	return m
}
