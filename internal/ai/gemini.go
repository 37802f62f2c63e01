package ai

import (
	"context"
	"errors"
	"fmt"

	"google.golang.org/genai"

	"github.com/kozaktomas/celebrity-detector/internal/constants"
)

type GeminiProvider struct {
	client *genai.Client
	model  string
	usageTracker
}

// NewGeminiProvider creates a Gemini API provider. baseURL is optional.
func NewGeminiProvider(ctx context.Context, apiKey, model, baseURL string, pricing RequestPricing) (*GeminiProvider, error) {
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:      apiKey,
		Backend:     genai.BackendGeminiAPI,
		HTTPOptions: genai.HTTPOptions{BaseURL: baseURL},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}

	return &GeminiProvider{
		client:       client,
		model:        model,
		usageTracker: usageTracker{pricing: pricing},
	}, nil
}

func (p *GeminiProvider) Name() string {
	return p.model
}

func (p *GeminiProvider) IdentifyCelebrity(ctx context.Context, imageData []byte) (string, error) {
	resized, err := prepareImage(imageData)
	if err != nil {
		return "", err
	}

	contents := []*genai.Content{
		{
			Role: "user",
			Parts: []*genai.Part{
				{Text: buildIdentifyPrompt()},
				{InlineData: &genai.Blob{Data: resized, MIMEType: "image/jpeg"}},
			},
		},
	}
	return p.generate(ctx, contents, constants.IdentifyTemperature)
}

func (p *GeminiProvider) AskAboutCelebrity(ctx context.Context, name, question string) (string, error) {
	contents := []*genai.Content{
		{
			Role:  "user",
			Parts: []*genai.Part{{Text: buildAskPrompt(name, question)}},
		},
	}
	return p.generate(ctx, contents, constants.AskTemperature)
}

func (p *GeminiProvider) generate(ctx context.Context, contents []*genai.Content, temperature float64) (string, error) {
	config := &genai.GenerateContentConfig{
		Temperature:     genai.Ptr(float32(temperature)),
		MaxOutputTokens: constants.MaxCompletionTokens,
	}

	result, err := p.client.Models.GenerateContent(ctx, p.model, contents, config)
	if err != nil {
		var apiErr genai.APIError
		if errors.As(err, &apiErr) {
			return "", fmt.Errorf("gemini API error: %w", &StatusError{StatusCode: apiErr.Code, Body: apiErr.Message})
		}
		return "", fmt.Errorf("gemini API error: %w", err)
	}

	if result.UsageMetadata != nil {
		p.trackUsage(int(result.UsageMetadata.PromptTokenCount), int(result.UsageMetadata.CandidatesTokenCount))
	}

	content := result.Text()
	if content == "" {
		return "", errors.New("no response from Gemini")
	}
	return content, nil
}
