package export

import (
	"database/sql"
	"encoding/json"
	"math"
	"sync"

	_ "github.com/mattn/go-sqlite3"

	"github.com/evolune/funsearch-go/pkg/core"
	"github.com/evolune/funsearch-go/pkg/creativity"
	"github.com/evolune/funsearch-go/pkg/errors"
)

// Archive stores finished runs in SQLite so results survive across
// experiment sweeps. Pass ":memory:" as the path for an ephemeral archive.
type Archive struct {
	db   *sql.DB
	mu   sync.Mutex
	path string

	initialized sync.Once
}

// OpenArchive opens (and if needed creates) the archive at path.
func OpenArchive(path string) (*Archive, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, errors.WithFields(
			errors.Wrap(err, errors.Unknown, "failed to open archive database"),
			errors.Fields{"path": path})
	}

	a := &Archive{db: db, path: path}
	if err := a.ensureInitialized(); err != nil {
		return nil, err
	}
	return a, nil
}

func (a *Archive) ensureInitialized() error {
	var initErr error
	a.initialized.Do(func() {
		// WAL keeps concurrent readers cheap while runs append
		if _, err := a.db.Exec("PRAGMA journal_mode=WAL;"); err != nil {
			initErr = errors.Wrap(err, errors.Unknown, "failed to enable WAL mode")
			return
		}

		query := `
        CREATE TABLE IF NOT EXISTS runs (
            id TEXT PRIMARY KEY,
            generator_temperature REAL NOT NULL,
            evaluator_model TEXT NOT NULL,
            created_at DATETIME DEFAULT CURRENT_TIMESTAMP
        );

        CREATE TABLE IF NOT EXISTS recipes (
            run_id TEXT NOT NULL REFERENCES runs(id),
            island_id INTEGER NOT NULL,
            recipe_name TEXT NOT NULL,
            ingredients TEXT NOT NULL,
            instructions TEXT NOT NULL,
            scores TEXT NOT NULL,
            weighted_score REAL NOT NULL,
            formatted TEXT NOT NULL
        );

        CREATE TABLE IF NOT EXISTS creativity (
            run_id TEXT NOT NULL REFERENCES runs(id),
            recipe TEXT NOT NULL,
            model TEXT NOT NULL,
            scores TEXT NOT NULL,
            average REAL
        );

        CREATE INDEX IF NOT EXISTS idx_recipes_run_id ON recipes(run_id);
        CREATE INDEX IF NOT EXISTS idx_creativity_run_id ON creativity(run_id);
        `

		if _, err := a.db.Exec(query); err != nil {
			initErr = errors.Wrap(err, errors.Unknown, "failed to initialize archive schema")
		}
	})
	return initErr
}

// RecordRun persists a run's configuration and its selected recipes.
func (a *Archive) RecordRun(runID string, generatorTemperature float64, evaluatorModel string, recipes []*core.Recipe) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	tx, err := a.db.Begin()
	if err != nil {
		return errors.Wrap(err, errors.Unknown, "failed to begin transaction")
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.Exec(
		`INSERT OR REPLACE INTO runs (id, generator_temperature, evaluator_model) VALUES (?, ?, ?)`,
		runID, generatorTemperature, evaluatorModel,
	); err != nil {
		return errors.WithFields(
			errors.Wrap(err, errors.Unknown, "failed to record run"),
			errors.Fields{"run_id": runID})
	}

	for _, r := range recipes {
		ingredients, err := json.Marshal(r.Ingredients)
		if err != nil {
			return errors.Wrap(err, errors.InvalidInput, "failed to marshal ingredients")
		}
		scores, err := json.Marshal(r.Scores)
		if err != nil {
			return errors.Wrap(err, errors.InvalidInput, "failed to marshal scores")
		}

		if _, err := tx.Exec(
			`INSERT INTO recipes (run_id, island_id, recipe_name, ingredients, instructions, scores, weighted_score, formatted)
             VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
			runID, r.IslandID, r.Name, string(ingredients), r.Instructions, string(scores), r.WeightedScore, r.Formatted,
		); err != nil {
			return errors.WithFields(
				errors.Wrap(err, errors.Unknown, "failed to record recipe"),
				errors.Fields{"run_id": runID, "recipe": r.Name})
		}
	}

	return tx.Commit()
}

// RecordCreativity persists the panel summary rows for a run.
func (a *Archive) RecordCreativity(runID string, summary creativity.Summary) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	tx, err := a.db.Begin()
	if err != nil {
		return errors.Wrap(err, errors.Unknown, "failed to begin transaction")
	}
	defer func() { _ = tx.Rollback() }()

	for _, row := range summary.Rows {
		scores, err := json.Marshal(row.Scores)
		if err != nil {
			return errors.Wrap(err, errors.InvalidInput, "failed to marshal scores")
		}

		var average interface{}
		if !math.IsNaN(row.Average) {
			average = row.Average
		}

		if _, err := tx.Exec(
			`INSERT INTO creativity (run_id, recipe, model, scores, average) VALUES (?, ?, ?, ?, ?)`,
			runID, row.Recipe, row.Model, string(scores), average,
		); err != nil {
			return errors.WithFields(
				errors.Wrap(err, errors.Unknown, "failed to record creativity row"),
				errors.Fields{"run_id": runID, "recipe": row.Recipe})
		}
	}

	return tx.Commit()
}

// RecipesForRun loads a run's archived recipes in insertion order.
func (a *Archive) RecipesForRun(runID string) ([]*core.Recipe, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	rows, err := a.db.Query(
		`SELECT island_id, recipe_name, ingredients, instructions, scores, weighted_score, formatted
         FROM recipes WHERE run_id = ? ORDER BY rowid`, runID)
	if err != nil {
		return nil, errors.Wrap(err, errors.Unknown, "failed to query recipes")
	}
	defer rows.Close()

	var out []*core.Recipe
	for rows.Next() {
		var r core.Recipe
		var ingredients, scores string
		if err := rows.Scan(&r.IslandID, &r.Name, &ingredients, &r.Instructions, &scores, &r.WeightedScore, &r.Formatted); err != nil {
			return nil, errors.Wrap(err, errors.Unknown, "failed to scan recipe row")
		}
		if err := json.Unmarshal([]byte(ingredients), &r.Ingredients); err != nil {
			return nil, errors.Wrap(err, errors.InvalidResponse, "failed to decode ingredients")
		}
		if err := json.Unmarshal([]byte(scores), &r.Scores); err != nil {
			return nil, errors.Wrap(err, errors.InvalidResponse, "failed to decode scores")
		}
		out = append(out, &r)
	}
	return out, rows.Err()
}

// Close releases the underlying database handle.
func (a *Archive) Close() error {
	return a.db.Close()
}
