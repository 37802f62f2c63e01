package ai

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/kozaktomas/celebrity-detector/internal/constants"
)

// OllamaProvider talks to a local Ollama server through its native chat API.
type OllamaProvider struct {
	baseURL string
	model   string
	client  *http.Client
	usageTracker
}

func NewOllamaProvider(baseURL, model string) (*OllamaProvider, error) {
	if baseURL == "" || model == "" {
		return nil, errors.New("ollama URL and model are required")
	}
	return &OllamaProvider{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		model:   model,
		client:  &http.Client{},
	}, nil
}

func (p *OllamaProvider) Name() string {
	return p.model
}

type ollamaRequest struct {
	Model    string          `json:"model"`
	Messages []ollamaMessage `json:"messages"`
	Stream   bool            `json:"stream"`
	Options  ollamaOptions   `json:"options"`
}

type ollamaMessage struct {
	Role    string   `json:"role"`
	Content string   `json:"content"`
	Images  []string `json:"images,omitempty"` // base64 encoded images
}

type ollamaOptions struct {
	NumPredict  int     `json:"num_predict"`
	Temperature float64 `json:"temperature"`
}

type ollamaResponse struct {
	Model   string `json:"model"`
	Message struct {
		Role    string `json:"role"`
		Content string `json:"content"`
	} `json:"message"`
	Done            bool `json:"done"`
	PromptEvalCount int  `json:"prompt_eval_count"`
	EvalCount       int  `json:"eval_count"`
}

func (p *OllamaProvider) IdentifyCelebrity(ctx context.Context, imageData []byte) (string, error) {
	resized, err := prepareImage(imageData)
	if err != nil {
		return "", err
	}

	messages := []ollamaMessage{
		{
			Role:    "user",
			Content: buildIdentifyPrompt(),
			Images:  []string{base64.StdEncoding.EncodeToString(resized)},
		},
	}
	return p.chat(ctx, messages, constants.IdentifyTemperature)
}

func (p *OllamaProvider) AskAboutCelebrity(ctx context.Context, name, question string) (string, error) {
	messages := []ollamaMessage{
		{Role: "user", Content: buildAskPrompt(name, question)},
	}
	return p.chat(ctx, messages, constants.AskTemperature)
}

func (p *OllamaProvider) chat(ctx context.Context, messages []ollamaMessage, temperature float64) (string, error) {
	reqBody := ollamaRequest{
		Model:    p.model,
		Messages: messages,
		Stream:   false,
		Options: ollamaOptions{
			NumPredict:  constants.MaxCompletionTokens,
			Temperature: temperature,
		},
	}

	jsonBody, err := json.Marshal(reqBody)
	if err != nil {
		return "", fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.baseURL+"/api/chat", bytes.NewReader(jsonBody))
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := p.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("ollama request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("ollama API error: %w", &StatusError{StatusCode: resp.StatusCode, Body: string(body)})
	}

	var ollamaResp ollamaResponse
	if err := json.Unmarshal(body, &ollamaResp); err != nil {
		return "", fmt.Errorf("failed to parse response: %w", err)
	}

	// Ollama is free, tokens are tracked for stats only
	p.trackUsage(ollamaResp.PromptEvalCount, ollamaResp.EvalCount)

	if ollamaResp.Message.Content == "" {
		return "", errors.New("no response from ollama")
	}
	return ollamaResp.Message.Content, nil
}
