package core

import "context"

// Generator produces free-form text completions. Implementations may return
// an empty string on a degraded upstream response; callers treat empty output
// as "nothing produced this attempt", not as a fatal error.
type Generator interface {
	Generate(ctx context.Context, prompt string, options ...GenerateOption) (string, error)
}

// Evaluator judges a candidate recipe and returns its dimension scores plus
// the derived weighted fitness. A transport or parse failure surfaces as an
// incomplete Evaluation rather than an error the search loop must handle.
type Evaluator interface {
	Evaluate(ctx context.Context, recipe string, islandID int, modelName string) (Evaluation, error)
}

// GenerateOption represents an option for text generation.
type GenerateOption func(*GenerateOptions)

// GenerateOptions holds configuration for text generation.
type GenerateOptions struct {
	MaxTokens   int
	Temperature float64
	TopP        float64
	Stop        []string
}

// NewGenerateOptions creates a new GenerateOptions with default values.
func NewGenerateOptions() *GenerateOptions {
	return &GenerateOptions{
		MaxTokens:   512, // Matches the contest pipeline's completion budget
		Temperature: 0.5,
	}
}

// WithMaxTokens sets the maximum number of tokens to generate.
func WithMaxTokens(n int) GenerateOption {
	return func(o *GenerateOptions) {
		o.MaxTokens = n
	}
}

// WithTemperature sets the sampling temperature.
func WithTemperature(t float64) GenerateOption {
	return func(o *GenerateOptions) {
		o.Temperature = t
	}
}

// WithTopP sets the nucleus sampling probability.
func WithTopP(p float64) GenerateOption {
	return func(o *GenerateOptions) {
		o.TopP = p
	}
}

// WithStopSequences sets the stop sequences.
func WithStopSequences(sequences ...string) GenerateOption {
	return func(o *GenerateOptions) {
		o.Stop = sequences
	}
}
