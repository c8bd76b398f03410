package domain

import (
	"fmt"
	"strings"
)

type ModelConfig struct {
	Model            string
	Temperature      float64
	MaxTokens        int
	TopP             float64
	FrequencyPenalty float64
	PresencePenalty  float64
}

func DefaultModelConfig() ModelConfig {
	return ModelConfig{
		Model:            "google/gemini-2.0-flash-001",
		Temperature:      0.75,
		MaxTokens:        1500,
		TopP:             0.9,
		FrequencyPenalty: 0.1,
		PresencePenalty:  0.1,
	}
}

// ModelConfigOverride holds only the fields a user explicitly set.
type ModelConfigOverride struct {
	Model            *string
	Temperature      *float64
	MaxTokens        *int
	TopP             *float64
	FrequencyPenalty *float64
	PresencePenalty  *float64
}

func (o ModelConfigOverride) IsEmpty() bool {
	return o.Model == nil && o.Temperature == nil && o.MaxTokens == nil &&
		o.TopP == nil && o.FrequencyPenalty == nil && o.PresencePenalty == nil
}

func (o ModelConfigOverride) Resolve(defaults ModelConfig) ModelConfig {
	resolved := defaults
	if o.Model != nil {
		resolved.Model = *o.Model
	}
	if o.Temperature != nil {
		resolved.Temperature = *o.Temperature
	}
	if o.MaxTokens != nil {
		resolved.MaxTokens = *o.MaxTokens
	}
	if o.TopP != nil {
		resolved.TopP = *o.TopP
	}
	if o.FrequencyPenalty != nil {
		resolved.FrequencyPenalty = *o.FrequencyPenalty
	}
	if o.PresencePenalty != nil {
		resolved.PresencePenalty = *o.PresencePenalty
	}
	return resolved
}

// Merge overlays the fields set in patch onto o.
func (o ModelConfigOverride) Merge(patch ModelConfigOverride) ModelConfigOverride {
	merged := o
	if patch.Model != nil {
		merged.Model = patch.Model
	}
	if patch.Temperature != nil {
		merged.Temperature = patch.Temperature
	}
	if patch.MaxTokens != nil {
		merged.MaxTokens = patch.MaxTokens
	}
	if patch.TopP != nil {
		merged.TopP = patch.TopP
	}
	if patch.FrequencyPenalty != nil {
		merged.FrequencyPenalty = patch.FrequencyPenalty
	}
	if patch.PresencePenalty != nil {
		merged.PresencePenalty = patch.PresencePenalty
	}
	return merged
}

func (o ModelConfigOverride) Validate() error {
	if o.Model != nil {
		model := strings.TrimSpace(*o.Model)
		if !strings.Contains(model, "/") || len(model) < 3 {
			return fmt.Errorf("%w: model %q must look like provider/model-name", ErrInvalidConfig, *o.Model)
		}
	}
	if o.Temperature != nil {
		if err := checkRange("temperature", *o.Temperature, 0, 2); err != nil {
			return err
		}
	}
	if o.MaxTokens != nil && (*o.MaxTokens < 1 || *o.MaxTokens > 16384) {
		return fmt.Errorf("%w: max_tokens %d must be between 1 and 16384", ErrInvalidConfig, *o.MaxTokens)
	}
	if o.TopP != nil {
		if err := checkRange("top_p", *o.TopP, 0, 1); err != nil {
			return err
		}
	}
	if o.FrequencyPenalty != nil {
		if err := checkRange("frequency_penalty", *o.FrequencyPenalty, -2, 2); err != nil {
			return err
		}
	}
	if o.PresencePenalty != nil {
		if err := checkRange("presence_penalty", *o.PresencePenalty, -2, 2); err != nil {
			return err
		}
	}
	return nil
}

func checkRange(name string, value, lo, hi float64) error {
	if value < lo || value > hi {
		return fmt.Errorf("%w: %s %g must be between %g and %g", ErrInvalidConfig, name, value, lo, hi)
	}
	return nil
}
