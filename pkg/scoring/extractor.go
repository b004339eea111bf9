// Package scoring turns free-form judge output into numeric dimension scores
// and a single weighted fitness value.
package scoring

import (
	"encoding/json"
	"fmt"
	"math"
	"regexp"
	"strconv"
	"sync"
)

// Dimensions lists the judged score keys in contest order.
var Dimensions = []string{
	"taste", "appearance", "creativity", "crowd_appeal",
	"recipe_ties_story", "story_brings_to_life", "passion",
}

// Weights is the fixed linear combination used to derive a recipe's single
// fitness value. It must sum to 1.0; ValidateWeights enforces that at
// configuration time.
var Weights = map[string]float64{
	"taste":                0.175,
	"appearance":           0.175,
	"creativity":           0.175,
	"crowd_appeal":         0.175,
	"recipe_ties_story":    0.12,
	"story_brings_to_life": 0.12,
	"passion":              0.06,
}

// ValidateWeights checks that the weight table covers every key and sums to
// 1.0 within floating tolerance.
func ValidateWeights(weights map[string]float64, keys []string) error {
	sum := 0.0
	for _, key := range keys {
		w, ok := weights[key]
		if !ok {
			return fmt.Errorf("weight table missing key %q", key)
		}
		sum += w
	}
	if math.Abs(sum-1.0) > 1e-9 {
		return fmt.Errorf("weight table sums to %v, want 1.0", sum)
	}
	return nil
}

// ScoreSet holds the dimensions a response actually resolved. Unresolved keys
// are absent, not zero; they default to zero only inside Weighted.
type ScoreSet struct {
	keys   []string
	values map[string]float64
}

// Get returns the resolved score for key, if any.
func (s ScoreSet) Get(key string) (float64, bool) {
	v, ok := s.values[key]
	return v, ok
}

// Len returns the number of resolved dimensions.
func (s ScoreSet) Len() int {
	return len(s.values)
}

// Complete reports whether every expected dimension resolved.
func (s ScoreSet) Complete() bool {
	return len(s.values) == len(s.keys)
}

// Values returns a copy of the resolved scores.
func (s ScoreSet) Values() map[string]float64 {
	out := make(map[string]float64, len(s.values))
	for k, v := range s.values {
		out[k] = v
	}
	return out
}

// Weighted computes the weighted fitness over the expected keys, treating
// unresolved dimensions as zero so partial data never breaks the arithmetic.
// The result is rounded to two decimals.
func (s ScoreSet) Weighted(weights map[string]float64) float64 {
	sum := 0.0
	for _, key := range s.keys {
		sum += s.values[key] * weights[key]
	}
	return math.Round(sum*100) / 100
}

var jsonBlockRe = regexp.MustCompile(`\{[\s\S]*?\}`)

var (
	patternMu sync.Mutex
	strictRes = map[string]*regexp.Regexp{}
	looseRes  = map[string]*regexp.Regexp{}
)

func strictPattern(key string) *regexp.Regexp {
	patternMu.Lock()
	defer patternMu.Unlock()
	re, ok := strictRes[key]
	if !ok {
		re = regexp.MustCompile(`(?i)"?\b` + regexp.QuoteMeta(key) + `\b"?\s*[:=]\s*"?([1-5](?:\.\d+)?)"?`)
		strictRes[key] = re
	}
	return re
}

func loosePattern(key string) *regexp.Regexp {
	patternMu.Lock()
	defer patternMu.Unlock()
	re, ok := looseRes[key]
	if !ok {
		re = regexp.MustCompile(`(?i)` + regexp.QuoteMeta(key) + `.*?\b([1-5])\b`)
		looseRes[key] = re
	}
	return re
}

// ExtractScores parses raw judge output into a ScoreSet for the given keys.
// Three fallback tiers run in order, each filling only keys the previous tier
// left unresolved:
//
//  1. the first brace-delimited block parsed as JSON, keeping numeric values
//     in [1,5];
//  2. a strict key:value (or key=value) pattern, optionally quoted;
//  3. a loose match of the key followed by the first standalone digit 1-5 on
//     the same line.
//
// Extraction never fails outward; unresolved keys simply stay absent.
func ExtractScores(text string, keys []string) ScoreSet {
	scores := make(map[string]float64, len(keys))

	if block := jsonBlockRe.FindString(text); block != "" {
		var parsed map[string]interface{}
		if err := json.Unmarshal([]byte(block), &parsed); err == nil {
			for _, key := range keys {
				if raw, ok := parsed[key]; ok {
					if v, ok := raw.(float64); ok && v >= 1 && v <= 5 {
						scores[key] = v
					}
				}
			}
		}
	}

	if len(scores) < len(keys) {
		for _, key := range keys {
			if _, ok := scores[key]; ok {
				continue
			}
			if m := strictPattern(key).FindStringSubmatch(text); m != nil {
				if v, err := strconv.ParseFloat(m[1], 64); err == nil {
					scores[key] = v
				}
			}
		}
	}

	if len(scores) < len(keys) {
		for _, key := range keys {
			if _, ok := scores[key]; ok {
				continue
			}
			if m := loosePattern(key).FindStringSubmatch(text); m != nil {
				if v, err := strconv.ParseFloat(m[1], 64); err == nil {
					scores[key] = v
				}
			}
		}
	}

	return ScoreSet{keys: keys, values: scores}
}
