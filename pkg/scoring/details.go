package scoring

import (
	"regexp"
	"strings"
)

// Details holds the structured fields recovered from a raw generation,
// normalized to canonical forms: ingredients as a list, instructions as a
// single string.
type Details struct {
	Idea         string
	Essay        string
	Name         string
	Ingredients  []string
	Instructions string
}

// Field values arrive either as a JSON array or as a quoted string; the
// generator is not reliable enough to promise one shape.
var detailPatterns = map[string]*regexp.Regexp{
	"recipe_idea":  regexp.MustCompile(`"recipe_idea"\s*[:=]\s*(\[[^\]]*\]|"[^"]*")`),
	"essay":        regexp.MustCompile(`"essay"\s*[:=]\s*(\[[^\]]*\]|"[^"]*")`),
	"recipe_name":  regexp.MustCompile(`"recipe_name"\s*[:=]\s*(\[[^\]]*\]|"[^"]*")`),
	"ingredients":  regexp.MustCompile(`"ingredients"\s*[:=]\s*(\[[^\]]*\]|"[^"]*")`),
	"instructions": regexp.MustCompile(`"instructions"\s*[:=]\s*(\[[^\]]*\]|"[^"]*")`),
}

// ExtractDetails recovers recipe fields from a raw model response. Missing
// fields stay zero-valued; the registration path decides what to do about
// them.
func ExtractDetails(text string) Details {
	var d Details

	for field, pattern := range detailPatterns {
		m := pattern.FindStringSubmatch(text)
		if m == nil {
			continue
		}
		value := strings.TrimSpace(m[1])

		switch field {
		case "ingredients":
			d.Ingredients = NormalizeIngredients(value)
		case "instructions":
			d.Instructions = NormalizeInstructions(value)
		case "recipe_idea":
			d.Idea = unquote(value)
		case "essay":
			d.Essay = unquote(value)
		case "recipe_name":
			d.Name = unquote(value)
		}
	}

	return d
}

// NormalizeIngredients turns either an array literal or a comma-separated
// string blob into a clean list, dropping empty entries.
func NormalizeIngredients(value string) []string {
	inner := value
	if strings.HasPrefix(value, "[") && strings.HasSuffix(value, "]") {
		inner = value[1 : len(value)-1]
	} else {
		inner = unquote(value)
	}

	var out []string
	for _, part := range strings.Split(inner, ",") {
		part = strings.TrimSpace(part)
		part = strings.Trim(part, `"`)
		if part != "" {
			out = append(out, part)
		}
	}
	return out
}

// NormalizeInstructions collapses either an array literal or an escaped
// multi-line string into one space-joined instruction string.
func NormalizeInstructions(value string) string {
	var parts []string
	if strings.HasPrefix(value, "[") && strings.HasSuffix(value, "]") {
		for _, part := range strings.Split(value[1:len(value)-1], ",") {
			part = strings.TrimSpace(part)
			part = strings.Trim(part, `"`)
			if part != "" {
				parts = append(parts, part)
			}
		}
	} else {
		// Quoted strings carry literal \n separators, not real newlines.
		for _, line := range strings.Split(unquote(value), `\n`) {
			line = strings.TrimSpace(line)
			if line != "" {
				parts = append(parts, line)
			}
		}
	}
	return strings.Join(parts, " ")
}

func unquote(s string) string {
	s = strings.TrimSpace(s)
	if len(s) >= 2 && strings.HasPrefix(s, `"`) && strings.HasSuffix(s, `"`) {
		s = s[1 : len(s)-1]
	}
	return strings.TrimSpace(s)
}
