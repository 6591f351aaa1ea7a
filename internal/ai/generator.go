package ai

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"github.com/ama5ter/spec2testdata/internal/gen"
	genspec "github.com/ama5ter/spec2testdata/internal/spec"
)

// Generator produces endpoint payloads by delegating synthesis to a
// generative model backend. It is the AI-backed counterpart of
// gen.Synthesizer and yields the same payload shape.
type Generator struct {
	model   *genspec.ServiceModel
	backend Backend
	log     *zap.Logger
}

// GeneratorOption configures a Generator.
type GeneratorOption func(*Generator)

// WithLogger attaches a logger; the default is a no-op logger.
func WithLogger(l *zap.Logger) GeneratorOption {
	return func(g *Generator) {
		if l != nil {
			g.log = l
		}
	}
}

// NewGenerator builds a Generator over a service model and a backend.
func NewGenerator(model *genspec.ServiceModel, backend Backend, opts ...GeneratorOption) *Generator {
	g := &Generator{model: model, backend: backend, log: zap.NewNop()}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// ForEndpoint prompts the backend for the endpoint's test data and recovers
// the completion into a payload. Every failure on this path is surfaced:
// endpoint lookup, backend call, and response recovery all fail fast.
func (g *Generator) ForEndpoint(ctx context.Context, path, method string) (*gen.Payload, error) {
	ep := g.model.Endpoint(path, method)
	if ep == nil {
		return nil, &gen.NotFoundError{Method: method, Path: path}
	}

	prompt := BuildPrompt(ep)
	g.log.Debug("requesting completion", zap.String("endpoint", ep.ID), zap.Int("prompt_len", len(prompt)))

	text, err := g.backend.Complete(ctx, prompt)
	if err != nil {
		// Auth and backend errors already carry provider context; anything
		// else a custom Backend returns gets wrapped here.
		var ae *AuthError
		var be *BackendError
		if errors.As(err, &ae) || errors.As(err, &be) {
			return nil, err
		}
		return nil, &BackendError{Provider: "backend", Err: err}
	}

	payload, err := Recover(text)
	if err != nil {
		g.log.Warn("unrecoverable completion", zap.String("endpoint", ep.ID), zap.Error(err))
		return nil, err
	}
	return payload, nil
}
