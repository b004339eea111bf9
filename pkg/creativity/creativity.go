// Package creativity scores already-formatted recipes on the four Torrance
// Tests of Creative Thinking dimensions using a panel of judging models. It
// runs after a search completes and never feeds back into the evolution loop.
package creativity

import (
	"context"
	"math"
	"sync"

	"github.com/sourcegraph/conc/pool"

	"github.com/evolune/funsearch-go/pkg/core"
	"github.com/evolune/funsearch-go/pkg/llms"
	"github.com/evolune/funsearch-go/pkg/logging"
	"github.com/evolune/funsearch-go/pkg/prompts"
	"github.com/evolune/funsearch-go/pkg/scoring"
)

// Dimensions lists the TTCT score keys.
var Dimensions = []string{"fluency", "flexibility", "elaboration", "originality"}

// AverageModel labels the synthetic per-recipe average row.
const AverageModel = "Average"

// Row is one scored recipe/model pair. Dimensions the model failed to resolve
// are absent from Scores; Average is NaN unless all four resolved.
type Row struct {
	Recipe  string
	Model   string
	Scores  map[string]float64
	Average float64
}

// Summary aggregates panel output: the per-pair rows, synthetic per-recipe
// average rows, and data-quality counters.
type Summary struct {
	Rows         []Row
	TotalMissing int
	OutOfRange   int
}

// Panel fans recipe prompts out to several judging models concurrently, with
// bounded retry per call.
type Panel struct {
	order  []string
	models map[string]core.Generator
}

// NewPanel creates an empty judging panel.
func NewPanel() *Panel {
	return &Panel{models: make(map[string]core.Generator)}
}

// AddModel registers a judging model under the given alias. Calls to it are
// wrapped with the default retry policy.
func (p *Panel) AddModel(alias string, gen core.Generator) {
	if _, ok := p.models[alias]; !ok {
		p.order = append(p.order, alias)
	}
	p.models[alias] = llms.NewRetryingGenerator(gen, llms.DefaultRetryConfig())
}

// ExtractScores parses one panel response into a TTCT row. Exposed for tests;
// the parsing tiers are shared with the contest judge.
func ExtractScores(response, recipeName, model string) Row {
	set := scoring.ExtractScores(response, Dimensions)

	average := math.NaN()
	if set.Complete() {
		sum := 0.0
		for _, key := range Dimensions {
			v, _ := set.Get(key)
			sum += v
		}
		average = sum / float64(len(Dimensions))
	}

	return Row{
		Recipe:  recipeName,
		Model:   model,
		Scores:  set.Values(),
		Average: average,
	}
}

// Score judges every recipe with every panel model concurrently and returns
// the aggregated summary. Recipes without formatted text are skipped.
func (p *Panel) Score(ctx context.Context, recipes []*core.Recipe) Summary {
	logger := logging.GetLogger()

	type task struct {
		recipe *core.Recipe
		alias  string
	}
	var tasks []task
	for _, recipe := range recipes {
		if recipe.Formatted == "" {
			logger.Warn(ctx, "Skipping unformatted recipe %q in creativity panel", recipe.Name)
			continue
		}
		for _, alias := range p.order {
			tasks = append(tasks, task{recipe: recipe, alias: alias})
		}
	}

	var mu sync.Mutex
	rows := make([]Row, 0, len(tasks))

	pl := pool.New().WithMaxGoroutines(len(p.order) + 1)
	for _, t := range tasks {
		pl.Go(func() {
			gen := p.models[t.alias]
			response, err := gen.Generate(ctx, prompts.Creativity(t.recipe.Formatted),
				core.WithTemperature(0.25),
				core.WithMaxTokens(512),
			)
			if err != nil || response == "" {
				if err != nil && ctx.Err() == nil {
					logger.Error(ctx, "Creativity call failed for %q on %s: %v", t.recipe.Name, t.alias, err)
				}
				response = ""
			}

			row := ExtractScores(response, t.recipe.Name, t.alias)
			mu.Lock()
			rows = append(rows, row)
			mu.Unlock()
		})
	}
	pl.Wait()

	return summarize(rows, p.order)
}

// summarize appends per-recipe average rows, keeps a stable recipe-then-model
// ordering, and counts missing and out-of-range cells.
func summarize(rows []Row, modelOrder []string) Summary {
	byRecipe := make(map[string][]Row)
	var recipeOrder []string
	for _, row := range rows {
		if _, ok := byRecipe[row.Recipe]; !ok {
			recipeOrder = append(recipeOrder, row.Recipe)
		}
		byRecipe[row.Recipe] = append(byRecipe[row.Recipe], row)
	}

	rank := make(map[string]int, len(modelOrder)+1)
	for i, alias := range modelOrder {
		rank[alias] = i
	}
	rank[AverageModel] = len(modelOrder)

	var summary Summary
	for _, recipe := range recipeOrder {
		group := byRecipe[recipe]

		ordered := make([]Row, 0, len(group)+1)
		for _, alias := range modelOrder {
			for _, row := range group {
				if row.Model == alias {
					ordered = append(ordered, row)
					break
				}
			}
		}
		ordered = append(ordered, averageRow(recipe, group))

		for _, row := range ordered {
			for _, key := range Dimensions {
				v, ok := row.Scores[key]
				if !ok || math.IsNaN(v) {
					summary.TotalMissing++
					continue
				}
				if v < 1 || v > 5 {
					summary.OutOfRange++
				}
			}
			if math.IsNaN(row.Average) {
				summary.TotalMissing++
			} else if row.Average < 1 || row.Average > 5 {
				summary.OutOfRange++
			}
			summary.Rows = append(summary.Rows, row)
		}
	}

	return summary
}

// averageRow computes the per-dimension mean over a recipe's model rows,
// ignoring unresolved cells rather than treating them as zero.
func averageRow(recipe string, group []Row) Row {
	scores := make(map[string]float64, len(Dimensions))
	for _, key := range Dimensions {
		sum, n := 0.0, 0
		for _, row := range group {
			if v, ok := row.Scores[key]; ok && !math.IsNaN(v) {
				sum += v
				n++
			}
		}
		if n > 0 {
			scores[key] = sum / float64(n)
		}
	}

	avgSum, avgN := 0.0, 0
	for _, row := range group {
		if !math.IsNaN(row.Average) {
			avgSum += row.Average
			avgN++
		}
	}
	average := math.NaN()
	if avgN > 0 {
		average = avgSum / float64(avgN)
	}

	return Row{Recipe: recipe, Model: AverageModel, Scores: scores, Average: average}
}
