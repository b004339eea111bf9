// Command funsearch runs the full experimental pipeline: evolutionary recipe
// search per setting, best-recipe selection, house-style formatting, the
// creativity judging panel, and CSV/archive export.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/google/uuid"
	"github.com/sourcegraph/conc/pool"

	"github.com/evolune/funsearch-go/pkg/config"
	"github.com/evolune/funsearch-go/pkg/core"
	"github.com/evolune/funsearch-go/pkg/creativity"
	"github.com/evolune/funsearch-go/pkg/evolve"
	"github.com/evolune/funsearch-go/pkg/export"
	"github.com/evolune/funsearch-go/pkg/llms"
	"github.com/evolune/funsearch-go/pkg/logging"
	"github.com/evolune/funsearch-go/pkg/scoring"
)

// GeneratorModel is the hosted model used for recipe generation and
// evolution.
const GeneratorModel = "meta-llama/Llama-4-Scout-17B-16E-Instruct"

var defaultFormatExamples = [2]string{
	"Classic Crescent Ring: ingredients listed with measures, numbered steps, bake time and yield at the end.",
	"Golden Layer Bars: ingredients listed with measures, numbered steps, bake time and yield at the end.",
}

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "funsearch: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	configPath := flag.String("config", "funsearch.yaml", "path to experiment config YAML")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		return err
	}

	logging.SetLogger(logging.NewLogger(logging.Config{
		Severity: logging.ParseSeverity(cfg.LogLevel),
		Outputs:  []logging.Output{logging.NewConsoleOutput(true)},
	}))
	logger := logging.GetLogger()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	generator, err := buildGenerator()
	if err != nil {
		return err
	}

	judge := scoring.NewLLMJudge(func(model string) (core.Generator, error) {
		return llms.NewDeepInfraLLM(model)
	})

	examples := defaultFormatExamples
	if len(cfg.FormatExamples) == 2 {
		examples = [2]string{cfg.FormatExamples[0], cfg.FormatExamples[1]}
	}
	formatter := scoring.NewFormatter(generator, examples)

	panel, err := buildPanel(cfg)
	if err != nil {
		return err
	}

	var archive *export.Archive
	if cfg.ArchivePath != "" {
		archive, err = export.OpenArchive(cfg.ArchivePath)
		if err != nil {
			return err
		}
		defer archive.Close()
	}

	if err := os.MkdirAll(cfg.OutputDir, 0o755); err != nil {
		return err
	}

	for _, temperature := range cfg.GeneratorTemperatures {
		for _, evaluatorModel := range cfg.EvaluatorModels {
			logger.Info(ctx, "Processing generator=%g, evaluator=%s", temperature, evaluatorModel)

			best, err := runSetting(ctx, cfg, temperature, evaluatorModel, generator, judge)
			if err != nil {
				return err
			}
			if len(best) == 0 {
				logger.Warn(ctx, "Setting produced no valid recipes, skipping export")
				continue
			}

			formatRecipes(ctx, formatter, best)
			summary := panel.Score(ctx, best)

			resultsPath := filepath.Join(cfg.OutputDir,
				fmt.Sprintf("results%g_evaluator%s.csv", temperature, sanitize(evaluatorModel)))
			if err := export.WriteResults(resultsPath, best, temperature, evaluatorModel); err != nil {
				return err
			}
			logger.Info(ctx, "Saved best recipes to %s", resultsPath)

			creativityPath := filepath.Join(cfg.OutputDir,
				fmt.Sprintf("creativity_generator_%g_evaluator_%s.csv", temperature, sanitize(evaluatorModel)))
			if err := export.WriteCreativitySummary(creativityPath, summary); err != nil {
				return err
			}
			logger.Info(ctx, "Saved creativity summary to %s", creativityPath)

			if archive != nil {
				runID := uuid.NewString()
				if err := archive.RecordRun(runID, temperature, evaluatorModel, best); err != nil {
					return err
				}
				if err := archive.RecordCreativity(runID, summary); err != nil {
					return err
				}
				logger.Info(ctx, "Archived setting as run %s", runID)
			}
		}
	}

	return nil
}

// runSetting repeats the evolutionary search and collects the best recipe of
// each run. A run that fails to produce any recipe degrades the setting, not
// the sweep.
func runSetting(ctx context.Context, cfg *config.Experiment, temperature float64, evaluatorModel string, generator core.Generator, judge core.Evaluator) ([]*core.Recipe, error) {
	logger := logging.GetLogger()

	var best []*core.Recipe
	for i := 0; i < cfg.RunsPerSetting; i++ {
		logger.Info(ctx, "  -> Run %d/%d", i+1, cfg.RunsPerSetting)

		searchCfg := cfg.Search
		searchCfg.GeneratorTemperature = temperature
		searchCfg.EvaluatorModel = evaluatorModel

		search, err := evolve.New(searchCfg, generator, judge)
		if err != nil {
			return nil, err
		}

		store, err := search.Run(ctx)
		if err != nil {
			return nil, err
		}

		if winner := bestOf(store.All()); winner != nil {
			best = append(best, winner)
		} else {
			logger.Warn(ctx, "Run %d produced no valid recipes", i+1)
		}
	}
	return best, nil
}

func bestOf(recipes []*core.Recipe) *core.Recipe {
	var best *core.Recipe
	for _, r := range recipes {
		if best == nil || r.WeightedScore > best.WeightedScore {
			best = r
		}
	}
	return best
}

// formatRecipes rewrites the winners in house style concurrently; a failed
// format leaves a placeholder rather than dropping the recipe.
func formatRecipes(ctx context.Context, formatter *scoring.Formatter, recipes []*core.Recipe) {
	logger := logging.GetLogger()

	p := pool.New().WithMaxGoroutines(4)
	for _, recipe := range recipes {
		p.Go(func() {
			formatted, err := formatter.Format(ctx, recipe)
			if err != nil {
				logger.Error(ctx, "Error formatting recipe %q: %v", recipe.Name, err)
				formatted = "Error or no response from API."
			}
			recipe.Formatted = formatted
		})
	}
	p.Wait()
}

func buildGenerator() (core.Generator, error) {
	base, err := llms.NewDeepInfraLLM(GeneratorModel)
	if err != nil {
		return nil, err
	}
	return llms.NewRetryingGenerator(base, llms.DefaultRetryConfig()), nil
}

func buildPanel(cfg *config.Experiment) (*creativity.Panel, error) {
	panel := creativity.NewPanel()

	for alias, model := range cfg.Panel.DeepInfraModels {
		gen, err := llms.NewDeepInfraLLM(model)
		if err != nil {
			return nil, err
		}
		panel.AddModel(alias, gen)
	}

	if cfg.Panel.AnthropicModel != "" {
		gen, err := llms.NewAnthropicLLM("", anthropic.Model(cfg.Panel.AnthropicModel))
		if err != nil {
			return nil, err
		}
		panel.AddModel("claude", gen)
	}

	return panel, nil
}

func sanitize(s string) string {
	return strings.NewReplacer("/", "_", " ", "_").Replace(s)
}
