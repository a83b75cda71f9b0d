package llm

import (
	"context"
	"time"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
	"github.com/openai/openai-go/responses"
	"github.com/rs/zerolog/log"
)

const defaultMaxOutputTokens = 8192

// OpenAI generates text with the OpenAI Responses API.
type OpenAI struct {
	client *openai.Client
	model  string
}

var _ Generator = (*OpenAI)(nil)

// NewOpenAI creates an OpenAI generator. An empty model selects gpt-4o-mini.
func NewOpenAI(opts Options) (*OpenAI, error) {
	if opts.APIKey == "" {
		return nil, &Error{Kind: KindAPIKey, Provider: ProviderOpenAI, Message: "OPENAI_API_KEY is not set"}
	}
	reqOpts := []option.RequestOption{option.WithAPIKey(opts.APIKey)}
	if opts.BaseURL != "" {
		reqOpts = append(reqOpts, option.WithBaseURL(opts.BaseURL))
	}
	client := openai.NewClient(reqOpts...)

	model := opts.Model
	if model == "" {
		model = DefaultModel(ProviderOpenAI)
	}
	return &OpenAI{client: &client, model: model}, nil
}

// Name returns "openai".
func (o *OpenAI) Name() string { return ProviderOpenAI }

// Generate sends prompt as a single user message and returns the output text.
func (o *OpenAI) Generate(ctx context.Context, prompt string) (string, error) {
	callStart := time.Now()
	log.Debug().
		Str("model", o.model).
		Int("prompt_length", len(prompt)).
		Msg("Starting OpenAI API call")

	params := responses.ResponseNewParams{
		Model:           o.model,
		MaxOutputTokens: openai.Int(defaultMaxOutputTokens),
		Input: responses.ResponseNewParamsInputUnion{
			OfInputItemList: []responses.ResponseInputItemUnionParam{
				responses.ResponseInputItemParamOfMessage(prompt, responses.EasyInputMessageRoleUser),
			},
		},
	}

	resp, err := o.client.Responses.New(ctx, params)
	duration := time.Since(callStart)
	if err != nil {
		log.Warn().Err(err).Dur("duration", duration).Msg("OpenAI API call failed")
		return "", Classify(ProviderOpenAI, err)
	}

	text := resp.OutputText()
	log.Debug().
		Int("response_length", len(text)).
		Int64("input_tokens", resp.Usage.InputTokens).
		Int64("output_tokens", resp.Usage.OutputTokens).
		Dur("duration", duration).
		Msg("OpenAI API response received")

	if text == "" {
		return "", &Error{Kind: KindUnknown, Provider: ProviderOpenAI, Message: "OpenAI returned no text"}
	}
	return text, nil
}
