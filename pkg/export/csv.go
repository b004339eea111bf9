// Package export persists finished runs: CSV files for the per-setting
// results and a SQLite archive for durable cross-run storage.
package export

import (
	"encoding/csv"
	"fmt"
	"math"
	"os"
	"strings"

	"github.com/evolune/funsearch-go/pkg/core"
	"github.com/evolune/funsearch-go/pkg/creativity"
	"github.com/evolune/funsearch-go/pkg/errors"
	"github.com/evolune/funsearch-go/pkg/scoring"
)

// resultHeader lists the per-recipe CSV columns in a fixed order.
var resultHeader = []string{
	"island_id", "recipe_idea", "essay", "recipe_name",
	"ingredients", "instructions",
	"taste", "appearance", "creativity", "crowd_appeal",
	"recipe_ties_story", "story_brings_to_life", "passion",
	"weighted_score", "better_format", "generator", "evaluator",
}

// WriteResults writes the selected recipes of one setting to a CSV file.
func WriteResults(path string, recipes []*core.Recipe, generatorTemperature float64, evaluatorModel string) error {
	f, err := os.Create(path)
	if err != nil {
		return errors.WithFields(
			errors.Wrap(err, errors.Unknown, "failed to create results file"),
			errors.Fields{"path": path})
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write(resultHeader); err != nil {
		return errors.Wrap(err, errors.Unknown, "failed to write CSV header")
	}

	for _, r := range recipes {
		row := []string{
			fmt.Sprintf("%d", r.IslandID),
			r.Idea,
			r.Essay,
			r.Name,
			strings.Join(r.Ingredients, "; "),
			r.Instructions,
		}
		for _, key := range scoring.Dimensions {
			row = append(row, formatScore(r.Scores[key]))
		}
		row = append(row,
			fmt.Sprintf("%.2f", r.WeightedScore),
			r.Formatted,
			fmt.Sprintf("%g", generatorTemperature),
			evaluatorModel,
		)
		if err := w.Write(row); err != nil {
			return errors.Wrap(err, errors.Unknown, "failed to write CSV row")
		}
	}

	w.Flush()
	return w.Error()
}

// WriteCreativitySummary writes the panel rows followed by the data-quality
// metric rows.
func WriteCreativitySummary(path string, summary creativity.Summary) error {
	f, err := os.Create(path)
	if err != nil {
		return errors.WithFields(
			errors.Wrap(err, errors.Unknown, "failed to create creativity file"),
			errors.Fields{"path": path})
	}
	defer f.Close()

	w := csv.NewWriter(f)
	header := append([]string{"recipe", "model"}, creativity.Dimensions...)
	header = append(header, "average_score")
	if err := w.Write(header); err != nil {
		return errors.Wrap(err, errors.Unknown, "failed to write CSV header")
	}

	for _, row := range summary.Rows {
		record := []string{row.Recipe, row.Model}
		for _, key := range creativity.Dimensions {
			v, ok := row.Scores[key]
			if !ok {
				v = math.NaN()
			}
			record = append(record, formatScore(v))
		}
		record = append(record, formatScore(row.Average))
		if err := w.Write(record); err != nil {
			return errors.Wrap(err, errors.Unknown, "failed to write CSV row")
		}
	}

	metrics := [][]string{
		{"total_missing", "", "", "", "", "", fmt.Sprintf("%d", summary.TotalMissing)},
		{"out_of_range", "", "", "", "", "", fmt.Sprintf("%d", summary.OutOfRange)},
	}
	for _, record := range metrics {
		if err := w.Write(record); err != nil {
			return errors.Wrap(err, errors.Unknown, "failed to write metric row")
		}
	}

	w.Flush()
	return w.Error()
}

func formatScore(v float64) string {
	if math.IsNaN(v) {
		return ""
	}
	return fmt.Sprintf("%g", v)
}
