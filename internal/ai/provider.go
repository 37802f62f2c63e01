package ai

import (
	"context"
	"fmt"
	"sync"
)

// Provider defines the interface for LLM backends that recognise celebrities.
type Provider interface {
	Name() string
	// IdentifyCelebrity sends a JPEG image and returns the raw biography text.
	IdentifyCelebrity(ctx context.Context, imageData []byte) (string, error)
	// AskAboutCelebrity answers a free-text question about the named person.
	AskAboutCelebrity(ctx context.Context, name, question string) (string, error)

	// Usage tracking.
	GetUsage() Usage
	ResetUsage()
}

// Usage tracks token usage and calculates cost.
type Usage struct {
	InputTokens  int     `json:"input_tokens"`
	OutputTokens int     `json:"output_tokens"`
	TotalCost    float64 `json:"total_cost"` // in USD
}

// RequestPricing holds input/output prices per 1M tokens.
type RequestPricing struct {
	Input  float64
	Output float64
}

// StatusError is returned when the LLM endpoint answers with a non-200 status.
type StatusError struct {
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("API error (status %d)", e.StatusCode)
	}
	return fmt.Sprintf("API error (status %d): %s", e.StatusCode, e.Body)
}

// usageTracker is embedded by providers; requests may run concurrently.
type usageTracker struct {
	mu      sync.Mutex
	usage   Usage
	pricing RequestPricing
}

func (t *usageTracker) trackUsage(inputTokens, outputTokens int) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.usage.InputTokens += inputTokens
	t.usage.OutputTokens += outputTokens
	t.usage.TotalCost += float64(inputTokens) / 1_000_000 * t.pricing.Input
	t.usage.TotalCost += float64(outputTokens) / 1_000_000 * t.pricing.Output
}

// GetUsage returns a snapshot of the accumulated token usage.
func (t *usageTracker) GetUsage() Usage {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.usage
}

// ResetUsage zeroes out the accumulated token usage counters.
func (t *usageTracker) ResetUsage() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.usage = Usage{}
}
