// Package config loads and validates experiment configuration from YAML.
package config

import (
	"os"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"github.com/evolune/funsearch-go/pkg/errors"
	"github.com/evolune/funsearch-go/pkg/evolve"
	"github.com/evolune/funsearch-go/pkg/scoring"
)

// PanelConfig names the models on the creativity judging panel. Aliases map
// to hosted DeepInfra model IDs; the Anthropic model is addressed directly.
type PanelConfig struct {
	DeepInfraModels map[string]string `yaml:"deepinfra_models"`
	AnthropicModel  string            `yaml:"anthropic_model"`
}

// Experiment is the full configuration for one experimental sweep: the
// cartesian product of generator temperatures and evaluator models, each
// repeated RunsPerSetting times.
type Experiment struct {
	GeneratorTemperatures []float64 `yaml:"generator_temperatures" validate:"required,min=1,dive,min=0,max=2"`
	EvaluatorModels       []string  `yaml:"evaluator_models" validate:"required,min=1"`
	RunsPerSetting        int       `yaml:"runs_per_setting" validate:"required,min=1"`

	OutputDir   string `yaml:"output_dir" validate:"required"`
	ArchivePath string `yaml:"archive_path"`
	LogLevel    string `yaml:"log_level"`

	FormatExamples []string `yaml:"format_examples" validate:"omitempty,len=2"`

	Search evolve.Config `yaml:"search"`
	Panel  PanelConfig   `yaml:"panel"`
}

// Default panel membership when the config names no models.
var defaultPanelModels = map[string]string{
	"llama": "deepseek-ai/DeepSeek-R1-Distill-Llama-70B",
	"phi":   "microsoft/Phi-4-multimodal-instruct",
	"meta":  "meta-llama/Llama-4-Scout-17B-16E-Instruct",
}

func (e *Experiment) applyDefaults() {
	if e.LogLevel == "" {
		e.LogLevel = "INFO"
	}
	if len(e.Panel.DeepInfraModels) == 0 {
		e.Panel.DeepInfraModels = defaultPanelModels
	}
}

// Load reads, defaults and validates an experiment configuration file. The
// score weight table is checked here too: a weight set that does not sum to
// 1.0 is a configuration error, not a runtime surprise.
func Load(path string) (*Experiment, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.WithFields(
			errors.Wrap(err, errors.InvalidInput, "failed to read config file"),
			errors.Fields{"path": path})
	}
	return Parse(data)
}

// Parse decodes and validates raw YAML configuration bytes.
func Parse(data []byte) (*Experiment, error) {
	var exp Experiment
	if err := yaml.Unmarshal(data, &exp); err != nil {
		return nil, errors.Wrap(err, errors.InvalidInput, "failed to parse config YAML")
	}

	exp.applyDefaults()

	validate := validator.New()
	if err := validate.Struct(&exp); err != nil {
		return nil, errors.Wrap(err, errors.ValidationFailed, "config validation failed")
	}
	if err := validate.Struct(&exp.Search); err != nil {
		return nil, errors.Wrap(err, errors.ValidationFailed, "search config validation failed")
	}

	if err := scoring.ValidateWeights(scoring.Weights, scoring.Dimensions); err != nil {
		return nil, errors.Wrap(err, errors.ValidationFailed, "score weight table is invalid")
	}

	return &exp, nil
}
