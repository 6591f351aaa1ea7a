package ai

import (
	"context"
	"net/http"

	"go.uber.org/zap"
)

// systemPrompt frames every completion request, matching the instruction
// block in BuildPrompt.
const systemPrompt = "You are a helpful API test data generator that creates realistic test data based on OpenAPI schemas."

const (
	defaultTemperature = 0.7
	defaultMaxTokens   = 2000
)

// Backend abstracts a generative model provider. Complete performs one
// synchronous request and returns the raw text completion; it applies no
// retries and no timeout of its own, so callers needing bounded latency
// must pass a context with a deadline.
type Backend interface {
	Complete(ctx context.Context, prompt string) (string, error)
}

// ClientConfig carries the explicit configuration for a provider client.
// Credentials are passed here at construction; clients never consult the
// process environment.
type ClientConfig struct {
	// APIKey authenticates against the provider. Empty keys fail client
	// construction with an AuthError.
	APIKey string
	// Model overrides the provider's default model when set.
	Model string
	// BaseURL overrides the provider endpoint, mainly for tests.
	BaseURL string
	// HTTPClient defaults to http.DefaultClient.
	HTTPClient *http.Client
	// Logger defaults to a no-op logger.
	Logger *zap.Logger
}

func (c *ClientConfig) fill() {
	if c.HTTPClient == nil {
		c.HTTPClient = http.DefaultClient
	}
	if c.Logger == nil {
		c.Logger = zap.NewNop()
	}
}
