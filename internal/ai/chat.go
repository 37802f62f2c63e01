package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"

	"github.com/kozaktomas/celebrity-detector/internal/constants"
)

// ChatProvider implements Provider against an OpenAI-compatible chat completions
// endpoint such as Groq.
type ChatProvider struct {
	endpoint string
	apiKey   string
	model    string
	client   *http.Client
	usageTracker
}

// NewChatProvider creates a provider posting to endpoint, the full chat completions URL.
func NewChatProvider(endpoint, apiKey, model string, pricing RequestPricing) (*ChatProvider, error) {
	parsed, err := url.Parse(endpoint)
	if err != nil {
		return nil, fmt.Errorf("invalid chat completions URL: %w", err)
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return nil, fmt.Errorf("invalid chat completions URL scheme %q: must be http or https", parsed.Scheme)
	}
	if parsed.Host == "" {
		return nil, errors.New("invalid chat completions URL: missing host")
	}
	if model == "" {
		return nil, errors.New("model name is required")
	}
	return &ChatProvider{
		endpoint:     parsed.String(),
		apiKey:       apiKey,
		model:        model,
		client:       &http.Client{},
		usageTracker: usageTracker{pricing: pricing},
	}, nil
}

// Name returns the model name.
func (p *ChatProvider) Name() string {
	return p.model
}

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	MaxTokens   int           `json:"max_tokens"`
	Temperature float64       `json:"temperature"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content any    `json:"content"` // string or []chatContentPart
}

type chatContentPart struct {
	Type     string        `json:"type"`
	Text     string        `json:"text,omitempty"`
	ImageURL *chatImageURL `json:"image_url,omitempty"`
}

type chatImageURL struct {
	URL string `json:"url"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Role    string `json:"role"`
			Content string `json:"content"`
		} `json:"message"`
		FinishReason string `json:"finish_reason"`
	} `json:"choices"`
	Usage struct {
		PromptTokens     int `json:"prompt_tokens"`
		CompletionTokens int `json:"completion_tokens"`
	} `json:"usage"`
}

// IdentifyCelebrity sends the recognition prompt together with the image.
func (p *ChatProvider) IdentifyCelebrity(ctx context.Context, imageData []byte) (string, error) {
	resized, err := prepareImage(imageData)
	if err != nil {
		return "", err
	}

	messages := []chatMessage{
		{
			Role: "user",
			Content: []chatContentPart{
				{Type: "text", Text: buildIdentifyPrompt()},
				{Type: "image_url", ImageURL: &chatImageURL{URL: imageDataURL(resized)}},
			},
		},
	}
	return p.complete(ctx, messages, constants.IdentifyTemperature)
}

// AskAboutCelebrity sends the Q&A prompt as a single text message.
func (p *ChatProvider) AskAboutCelebrity(ctx context.Context, name, question string) (string, error) {
	messages := []chatMessage{
		{Role: "user", Content: buildAskPrompt(name, question)},
	}
	return p.complete(ctx, messages, constants.AskTemperature)
}

func (p *ChatProvider) complete(ctx context.Context, messages []chatMessage, temperature float64) (string, error) {
	resp, err := p.sendRequest(ctx, chatRequest{
		Model:       p.model,
		Messages:    messages,
		MaxTokens:   constants.MaxCompletionTokens,
		Temperature: temperature,
	})
	if err != nil {
		return "", fmt.Errorf("chat completions API error: %w", err)
	}

	p.trackUsage(resp.Usage.PromptTokens, resp.Usage.CompletionTokens)

	if len(resp.Choices) == 0 {
		return "", errors.New("no choices in chat completions response")
	}
	return resp.Choices[0].Message.Content, nil
}

func (p *ChatProvider) sendRequest(ctx context.Context, reqBody chatRequest) (*chatResponse, error) {
	jsonBody, err := json.Marshal(reqBody)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.endpoint, bytes.NewReader(jsonBody))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+p.apiKey)

	resp, err := p.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, &StatusError{StatusCode: resp.StatusCode, Body: string(body)}
	}

	var chatResp chatResponse
	if err := json.Unmarshal(body, &chatResp); err != nil {
		return nil, fmt.Errorf("failed to parse response: %w", err)
	}
	return &chatResp, nil
}
