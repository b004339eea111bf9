package scoring

import (
	"context"

	"github.com/evolune/funsearch-go/pkg/core"
	"github.com/evolune/funsearch-go/pkg/errors"
	"github.com/evolune/funsearch-go/pkg/prompts"
)

// Formatter rewrites a winning recipe into the contest's house style using
// two reference examples for few-shot grounding.
type Formatter struct {
	generator core.Generator
	examples  [2]string
}

// NewFormatter creates a formatter backed by the given generator.
func NewFormatter(generator core.Generator, examples [2]string) *Formatter {
	return &Formatter{generator: generator, examples: examples}
}

// Format returns the house-style rendition of the recipe. Formatting runs at
// full temperature; the engine's fitness never depends on the result.
func (f *Formatter) Format(ctx context.Context, recipe *core.Recipe) (string, error) {
	prompt := prompts.Format(recipe.Name, recipe.Ingredients, recipe.Instructions, f.examples)

	text, err := f.generator.Generate(ctx, prompt,
		core.WithTemperature(1.0),
		core.WithMaxTokens(512),
	)
	if err != nil {
		return "", errors.Wrap(err, errors.LLMGenerationFailed, "recipe formatting failed")
	}
	if text == "" {
		return "", errors.New(errors.InvalidResponse, "formatter returned empty output")
	}
	return text, nil
}
