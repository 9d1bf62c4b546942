// Package openai implements core.Generator and core.Synthesizer on the OpenAI
// API: Chat Completions for reply generation and the Speech endpoint for
// text-to-speech. It adapts VoiceMesh's prompt-in/text-out contract onto the
// official SDK.
package openai

import (
	"context"
	"fmt"
	"io"

	"github.com/openai/openai-go"

	"github.com/hupe1980/voicemesh/core"
)

// Options configure the OpenAI adapters. Fields mirror a subset of the API
// parameters intentionally kept minimal; extend via functional options
// without breaking callers.
type Options struct {
	Model               string
	Temperature         float64
	MaxCompletionTokens int64
	SpeechModel         string
	Voice               string
}

// Generator wraps the Chat Completions API behind core.Generator.
type Generator struct {
	client *openai.Client
	opts   Options
}

// Synthesizer wraps the Speech (TTS) API behind core.Synthesizer.
type Synthesizer struct {
	client *openai.Client
	opts   Options
}

func defaultOptions(optFns []func(o *Options)) Options {
	opts := Options{
		Model:               openai.ChatModelGPT4oMini,
		Temperature:         0.7,
		MaxCompletionTokens: 512,
		SpeechModel:         "tts-1",
		Voice:               "alloy",
	}
	for _, fn := range optFns {
		fn(&opts)
	}
	return opts
}

// NewGenerator creates a Generator using the official client (API key from
// the environment).
func NewGenerator(optFns ...func(o *Options)) *Generator {
	client := openai.NewClient()
	return NewGeneratorFromClient(&client, optFns...)
}

// NewGeneratorFromClient creates a Generator from an existing client.
func NewGeneratorFromClient(client *openai.Client, optFns ...func(o *Options)) *Generator {
	return &Generator{client: client, opts: defaultOptions(optFns)}
}

var _ core.Generator = (*Generator)(nil)

// Generate sends the assembled prompt as a single user message and returns
// the reply text. An empty reply with no error is passed through as-is; API
// failures (network, quota, malformed response) are returned as errors.
func (g *Generator) Generate(ctx context.Context, prompt string) (string, error) {
	resp, err := g.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model:               g.opts.Model,
		Temperature:         openai.Float(g.opts.Temperature),
		MaxCompletionTokens: openai.Int(g.opts.MaxCompletionTokens),
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.UserMessage(prompt),
		},
	})
	if err != nil {
		return "", fmt.Errorf("openai api error: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("no choices returned")
	}
	return resp.Choices[0].Message.Content, nil
}

// NewSynthesizer creates a Synthesizer using the official client.
func NewSynthesizer(optFns ...func(o *Options)) *Synthesizer {
	client := openai.NewClient()
	return NewSynthesizerFromClient(&client, optFns...)
}

// NewSynthesizerFromClient creates a Synthesizer from an existing client.
func NewSynthesizerFromClient(client *openai.Client, optFns ...func(o *Options)) *Synthesizer {
	return &Synthesizer{client: client, opts: defaultOptions(optFns)}
}

var _ core.Synthesizer = (*Synthesizer)(nil)

// Synthesize converts text to MP3 audio bytes.
func (s *Synthesizer) Synthesize(ctx context.Context, text string) ([]byte, error) {
	resp, err := s.client.Audio.Speech.New(ctx, openai.AudioSpeechNewParams{
		Model:          openai.SpeechModel(s.opts.SpeechModel),
		Voice:          openai.AudioSpeechNewParamsVoice(s.opts.Voice),
		Input:          text,
		ResponseFormat: openai.AudioSpeechNewParamsResponseFormatMP3,
	})
	if err != nil {
		return nil, fmt.Errorf("openai tts error: %w", err)
	}
	defer resp.Body.Close()
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read tts audio: %w", err)
	}
	return data, nil
}
