package config

import (
	"fmt"
	"strings"

	"github.com/BurntSushi/toml"
)

type Config struct {
	Environment string
	Host        string `toml:"host"`
	Port        int    `toml:"port"`

	// logging
	LogLevel      string `toml:"log_level"`
	LogsPath      string `toml:"logs_path"`
	LogToStdout   bool   `toml:"log_to_stdout"`
	SentryEnabled bool   `toml:"sentry_enabled"`

	// postgres
	PostgresHost   string `toml:"postgres_host"`
	PostgresPort   string `toml:"postgres_port"`
	PostgresDBName string `toml:"postgres_db_name"`

	// redis (rate limiting)
	RedisHost                 string `toml:"redis_host"`
	RedisPort                 string `toml:"redis_port"`
	LogRateLimitAllowedPerMin int    `toml:"log_rate_limit_allowed_per_min"`

	// prometheus
	PrometheusMetricsHost string `toml:"prometheus_metrics_host"`
	PrometheusMetricsPort string `toml:"prometheus_metrics_port"`

	Training Training `toml:"training"`
}

// Training holds the tuning constants of the recommendation core. The
// numbers come from years of plan tuning, not from first principles -
// do not re-derive them, change them only via config.
type Training struct {
	// goal computation windows
	SpeedGoalWindowWeeks     int     `toml:"speed_goal_window_weeks"`
	RateGoalWindowWeeks      int     `toml:"rate_goal_window_weeks"`
	ProgressionLookbackWeeks int     `toml:"progression_lookback_weeks"`
	GoalRoundStep            float64 `toml:"goal_round_step"`

	// end-of-ladder rotation: restart at len-EndOfLadderOffset
	EndOfLadderOffset int `toml:"end_of_ladder_offset"`

	// backfill
	TrailingGapHours        int    `toml:"trailing_gap_hours"`
	SettledGapHours         int    `toml:"settled_gap_hours"`
	RestSpacingHours        int    `toml:"rest_spacing_hours"`
	BackfillDebounceMinutes int    `toml:"backfill_debounce_minutes"`
	BackfillTimezone        string `toml:"backfill_timezone"`

	// routines which must not be scheduled on weekdays (e.g. long routes)
	WeekendOnlyRoutines []string `toml:"weekend_only_routines"`
}

type Toml struct {
	Development *Config
	Production  *Config
}

func (t *Toml) Get(env string) (*Config, error) {
	switch strings.ToLower(env) {
	case "dev", "development":
		return t.Development, nil
	case "prod", "production":
		return t.Production, nil
	default:
		return nil, fmt.Errorf("unknown env: %s", env)
	}
}

func Load(env, path string) (*Config, error) {
	var tomlFile Toml
	if _, err := toml.DecodeFile(path, &tomlFile); err != nil {
		return nil, fmt.Errorf("decode config file: %w", err)
	}

	cfg, err := tomlFile.Get(env)
	if err != nil {
		return nil, err
	}
	if cfg == nil {
		return nil, fmt.Errorf("no config section for env: %s", env)
	}

	cfg.Environment = env
	cfg.Training.applyDefaults()

	return cfg, nil
}

func (t *Training) applyDefaults() {
	if t.SpeedGoalWindowWeeks == 0 {
		t.SpeedGoalWindowWeeks = 26 // ~6 months
	}
	if t.RateGoalWindowWeeks == 0 {
		t.RateGoalWindowWeeks = 8
	}
	if t.ProgressionLookbackWeeks == 0 {
		t.ProgressionLookbackWeeks = 26
	}
	if t.GoalRoundStep == 0 {
		t.GoalRoundStep = 0.1
	}
	if t.EndOfLadderOffset == 0 {
		t.EndOfLadderOffset = 3
	}
	if t.TrailingGapHours == 0 {
		t.TrailingGapHours = 32
	}
	if t.SettledGapHours == 0 {
		t.SettledGapHours = 40
	}
	if t.RestSpacingHours == 0 {
		t.RestSpacingHours = 24
	}
	if t.BackfillDebounceMinutes == 0 {
		t.BackfillDebounceMinutes = 5
	}
	if t.BackfillTimezone == "" {
		t.BackfillTimezone = "UTC"
	}
}

// DefaultTraining returns the Training tuning with all defaults applied,
// used by tests and tools which do not go through a config file.
func DefaultTraining() Training {
	var t Training
	t.applyDefaults()
	return t
}
