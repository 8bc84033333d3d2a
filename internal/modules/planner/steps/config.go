package steps

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Config tunes the feedback loop and the validation bands. Values compile
// in as defaults and can be overridden from a YAML file.
type Config struct {
	// MaxAttempts is the total generation budget: 1 initial + repairs.
	MaxAttempts int `yaml:"max_attempts"`

	// HardDailyHourCap is the system-wide per-day ceiling, independent of
	// user preferences.
	HardDailyHourCap float64 `yaml:"hard_daily_hour_cap"`

	// ParseRetryBudget bounds the "respond more briefly" re-prompts after
	// a structurally unrepairable generation.
	ParseRetryBudget int `yaml:"parse_retry_budget"`

	// Review tiering thresholds: above LargeTierTopics only the top
	// priority course keeps review_1 and review_2 is dropped; above
	// MediumTierTopics small topics may skip review_1 and only the
	// largest topic per course keeps review_2.
	LargeTierTopics  int `yaml:"large_tier_topics"`
	MediumTierTopics int `yaml:"medium_tier_topics"`

	Review2MinPages       int `yaml:"review2_min_pages"`
	Review1SkipUnderPages int `yaml:"review1_skip_under_pages"`

	// Validator bands. The generation prompt targets a narrower review
	// gap (3-5 days) than the validator tolerates; both are intentional.
	MinReviewGapDays      int `yaml:"min_review_gap_days"`
	MaxReviewGapDays      int `yaml:"max_review_gap_days"`
	LastSessionMaxGapDays int `yaml:"last_session_max_gap_days"`
}

func DefaultConfig() Config {
	return Config{
		MaxAttempts:           3,
		HardDailyHourCap:      8,
		ParseRetryBudget:      1,
		LargeTierTopics:       15,
		MediumTierTopics:      10,
		Review2MinPages:       40,
		Review1SkipUnderPages: 20,
		MinReviewGapDays:      2,
		MaxReviewGapDays:      7,
		LastSessionMaxGapDays: 3,
	}
}

// LoadConfig overlays a YAML file on the defaults. An empty path returns
// the defaults unchanged.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()
	if path == "" {
		return cfg, nil
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("read planner config: %w", err)
	}
	if err := yaml.Unmarshal(raw, &cfg); err != nil {
		return cfg, fmt.Errorf("decode planner config: %w", err)
	}
	if cfg.MaxAttempts < 1 {
		return cfg, fmt.Errorf("planner config: max_attempts must be >= 1")
	}
	if cfg.HardDailyHourCap <= 0 {
		return cfg, fmt.Errorf("planner config: hard_daily_hour_cap must be > 0")
	}
	return cfg, nil
}
