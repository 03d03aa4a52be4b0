package config

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/smardesk/smardesk-backend/pkg/advisor"
	"github.com/smardesk/smardesk-backend/pkg/classify"
)

// Tuning is the behavior configuration file: classifier calibration,
// analyzer thresholds and advice copy overrides. Every section is
// optional; omitted values fall back to the built-in defaults.
type Tuning struct {
	Calibration *classify.Calibration `yaml:"calibration,omitempty"`
	Analyzer    advisor.Tuning        `yaml:"analyzer"`
	Advice      advisor.Catalog       `yaml:"advice,omitempty"`
}

// LoadTuning loads the tuning file from path. Supports environment
// variable expansion in the form ${VAR_NAME} or ${VAR_NAME:default}.
// A missing file is not an error: the defaults apply.
func LoadTuning(path string) (*Tuning, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return &Tuning{}, nil
		}
		return nil, fmt.Errorf("failed to read tuning file %s: %w", path, err)
	}

	expanded := expandEnvVars(string(data))

	var tuning Tuning
	if err := yaml.Unmarshal([]byte(expanded), &tuning); err != nil {
		return nil, fmt.Errorf("failed to parse tuning file %s: %w", path, err)
	}

	if err := tuning.Validate(); err != nil {
		return nil, fmt.Errorf("invalid tuning file %s: %w", path, err)
	}

	return &tuning, nil
}

// CalibrationOrDefault returns the calibration section, or the built-in
// defaults when the section is absent.
func (t *Tuning) CalibrationOrDefault() classify.Calibration {
	if t.Calibration != nil {
		return *t.Calibration
	}

	return classify.DefaultCalibration()
}

// Validate checks the thresholds that can silently break classification
// when misordered.
func (t *Tuning) Validate() error {
	if c := t.Calibration; c != nil {
		if c.HeadAngleMedium > c.HeadAngleHigh || c.HeadAngleHigh > c.HeadAngleCritical {
			return fmt.Errorf("head angle thresholds must be ordered medium <= high <= critical")
		}
		if c.EarShoulderRatioMedium > c.EarShoulderRatioHigh || c.EarShoulderRatioHigh > c.EarShoulderRatioCritical {
			return fmt.Errorf("ear-shoulder ratio thresholds must be ordered medium <= high <= critical")
		}
		if c.MinConfidence < 0 || c.MinConfidence > 1 {
			return fmt.Errorf("min_confidence must be within [0, 1], got %v", c.MinConfidence)
		}
	}

	for adviceType := range t.Advice {
		if !advisor.KnownType(adviceType) {
			return fmt.Errorf("advice override for unknown type: %s", adviceType)
		}
	}

	return nil
}

// expandEnvVars expands environment variables in the format ${VAR} or ${VAR:default}.
func expandEnvVars(s string) string {
	return os.Expand(s, func(key string) string {
		// Support ${VAR:default} syntax
		parts := strings.SplitN(key, ":", 2)
		varName := parts[0]
		defaultValue := ""
		if len(parts) == 2 {
			defaultValue = parts[1]
		}

		value := os.Getenv(varName)
		if value == "" {
			return defaultValue
		}
		return value
	})
}
