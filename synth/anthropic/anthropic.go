// Package anthropic implements core.Generator on the Anthropic Messages API.
package anthropic

import (
	"context"
	"fmt"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"

	"github.com/hupe1980/voicemesh/core"
)

// Options configure the Anthropic generator (model id, max tokens,
// temperature, API key). Extend via functional options to preserve stability.
type Options struct {
	Model       anthropic.Model
	Temperature float64
	MaxTokens   int64
	APIKey      string
}

// Generator wraps the Anthropic Messages API behind core.Generator.
type Generator struct {
	client *anthropic.Client
	opts   Options
}

// NewGenerator creates a Generator using the official client.
func NewGenerator(optFns ...func(o *Options)) *Generator {
	opts := Options{
		Model:       anthropic.ModelClaude3_5Sonnet20241022,
		Temperature: 0.7,
		MaxTokens:   512,
	}
	for _, fn := range optFns {
		fn(&opts)
	}

	var clientOpts []option.RequestOption
	if opts.APIKey != "" {
		clientOpts = append(clientOpts, option.WithAPIKey(opts.APIKey))
	}
	client := anthropic.NewClient(clientOpts...)

	return &Generator{client: &client, opts: opts}
}

// NewGeneratorFromClient creates a Generator from an existing client.
func NewGeneratorFromClient(client *anthropic.Client, optFns ...func(o *Options)) *Generator {
	opts := Options{
		Model:       anthropic.ModelClaude3_5Sonnet20241022,
		Temperature: 0.7,
		MaxTokens:   512,
	}
	for _, fn := range optFns {
		fn(&opts)
	}
	return &Generator{client: client, opts: opts}
}

var _ core.Generator = (*Generator)(nil)

// Generate sends the assembled prompt as a single user message and returns
// the concatenated text blocks of the reply.
func (g *Generator) Generate(ctx context.Context, prompt string) (string, error) {
	resp, err := g.client.Messages.New(ctx, anthropic.MessageNewParams{
		Model:       g.opts.Model,
		MaxTokens:   g.opts.MaxTokens,
		Temperature: anthropic.Float(g.opts.Temperature),
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(prompt)),
		},
	})
	if err != nil {
		return "", fmt.Errorf("anthropic api error: %w", err)
	}

	var reply string
	for _, block := range resp.Content {
		if block.Type == "text" {
			reply += block.AsText().Text
		}
	}
	return reply, nil
}
