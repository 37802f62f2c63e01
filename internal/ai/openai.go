package ai

import (
	"context"
	"errors"
	"fmt"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"

	"github.com/kozaktomas/celebrity-detector/internal/constants"
)

type OpenAIProvider struct {
	client *openai.Client
	model  string
	usageTracker
}

// NewOpenAIProvider creates an OpenAI provider. baseURL is optional and points the
// client at an OpenAI-compatible gateway. The SDK's automatic retries are disabled.
func NewOpenAIProvider(apiKey, model, baseURL string, pricing RequestPricing) *OpenAIProvider {
	opts := []option.RequestOption{
		option.WithAPIKey(apiKey),
		option.WithMaxRetries(0),
	}
	if baseURL != "" {
		opts = append(opts, option.WithBaseURL(baseURL))
	}
	client := openai.NewClient(opts...)
	return &OpenAIProvider{
		client:       &client,
		model:        model,
		usageTracker: usageTracker{pricing: pricing},
	}
}

func (p *OpenAIProvider) Name() string {
	return p.model
}

func (p *OpenAIProvider) IdentifyCelebrity(ctx context.Context, imageData []byte) (string, error) {
	resized, err := prepareImage(imageData)
	if err != nil {
		return "", err
	}

	messages := []openai.ChatCompletionMessageParamUnion{
		{
			OfUser: &openai.ChatCompletionUserMessageParam{
				Content: openai.ChatCompletionUserMessageParamContentUnion{
					OfArrayOfContentParts: []openai.ChatCompletionContentPartUnionParam{
						openai.TextContentPart(buildIdentifyPrompt()),
						openai.ImageContentPart(openai.ChatCompletionContentPartImageImageURLParam{
							URL: imageDataURL(resized),
						}),
					},
				},
			},
		},
	}
	return p.complete(ctx, messages, constants.IdentifyTemperature)
}

func (p *OpenAIProvider) AskAboutCelebrity(ctx context.Context, name, question string) (string, error) {
	messages := []openai.ChatCompletionMessageParamUnion{
		openai.UserMessage(buildAskPrompt(name, question)),
	}
	return p.complete(ctx, messages, constants.AskTemperature)
}

func (p *OpenAIProvider) complete(ctx context.Context, messages []openai.ChatCompletionMessageParamUnion, temperature float64) (string, error) {
	resp, err := p.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model:       openai.ChatModel(p.model),
		Messages:    messages,
		MaxTokens:   openai.Int(constants.MaxCompletionTokens),
		Temperature: openai.Float(temperature),
	})
	if err != nil {
		var apiErr *openai.Error
		if errors.As(err, &apiErr) {
			return "", fmt.Errorf("OpenAI API error: %w", &StatusError{StatusCode: apiErr.StatusCode, Body: apiErr.Message})
		}
		return "", fmt.Errorf("OpenAI API error: %w", err)
	}

	p.trackUsage(int(resp.Usage.PromptTokens), int(resp.Usage.CompletionTokens))

	if len(resp.Choices) == 0 {
		return "", errors.New("no response from OpenAI")
	}
	return resp.Choices[0].Message.Content, nil
}
