// Package config loads settings for the pullback command.
package config

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"github.com/born-ml/pullback/internal/gradcheck"
	"github.com/born-ml/pullback/internal/parallel"
)

// ErrInvalid is wrapped by every validation failure.
var ErrInvalid = errors.New("invalid config")

var validate = validator.New()

// Config is the top-level configuration.
type Config struct {
	// GradCheck controls finite-difference verification.
	GradCheck GradCheckConfig `yaml:"gradcheck"`

	// Log controls the logger.
	Log LogConfig `yaml:"log"`

	// Parallel controls how many scenarios run at once.
	Parallel ParallelConfig `yaml:"parallel"`

	// Scenarios restricts the catalog to the named scenarios. Empty runs all.
	Scenarios []string `yaml:"scenarios" validate:"dive,required"`
}

// GradCheckConfig contains gradient-check settings.
type GradCheckConfig struct {
	Step              float64 `yaml:"step" validate:"gt=0,lte=0.1"`
	Tolerance         float64 `yaml:"tolerance" validate:"gt=0"`
	ScenarioTolerance float64 `yaml:"scenario_tolerance" validate:"gt=0"`
}

// ParallelConfig contains concurrency settings.
type ParallelConfig struct {
	Enabled bool `yaml:"enabled"`
	Workers int  `yaml:"workers" validate:"gte=1,lte=256"`
}

// LogConfig contains logger settings.
type LogConfig struct {
	Level  string `yaml:"level" validate:"oneof=debug info warn error"`
	Format string `yaml:"format" validate:"oneof=text json"`
}

// Default returns the default configuration.
func Default() Config {
	d := gradcheck.DefaultSettings()
	p := parallel.DefaultConfig()
	return Config{
		GradCheck: GradCheckConfig{
			Step:              d.Step,
			Tolerance:         d.Tolerance,
			ScenarioTolerance: 1e-5,
		},
		Log: LogConfig{
			Level:  "info",
			Format: "text",
		},
		Parallel: ParallelConfig{
			Enabled: p.Enabled,
			Workers: min(p.Workers, 256),
		},
	}
}

// DefaultPath is read when Load is given no path. It may be absent.
const DefaultPath = "pullback.yaml"

// Load reads configuration with priority: env > file > defaults.
// An empty path reads DefaultPath if it exists. A path given explicitly
// must exist.
func Load(path string) (Config, error) {
	cfg := Default()

	optional := path == ""
	if optional {
		path = DefaultPath
	}
	if err := loadFile(path, optional, &cfg); err != nil {
		return cfg, fmt.Errorf("load config file: %w", err)
	}

	loadEnv(&cfg)

	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

func loadFile(path string, optional bool, cfg *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if optional && os.IsNotExist(err) {
			return nil
		}
		return err
	}
	return yaml.Unmarshal(data, cfg)
}

func loadEnv(cfg *Config) {
	if v := os.Getenv("PULLBACK_LOG_LEVEL"); v != "" {
		cfg.Log.Level = strings.ToLower(v)
	}
	if v := os.Getenv("PULLBACK_LOG_FORMAT"); v != "" {
		cfg.Log.Format = strings.ToLower(v)
	}
	if v := os.Getenv("PULLBACK_GRADCHECK_STEP"); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			cfg.GradCheck.Step = f
		}
	}
	if v := os.Getenv("PULLBACK_GRADCHECK_TOLERANCE"); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			cfg.GradCheck.Tolerance = f
		}
	}
}

// Validate checks the configuration against its constraints.
func (c Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			msgs := make([]string, 0, len(verrs))
			for _, fe := range verrs {
				msgs = append(msgs, fmt.Sprintf("%s failed %q", fe.Namespace(), fe.Tag()))
			}
			return fmt.Errorf("%w: %s", ErrInvalid, strings.Join(msgs, "; "))
		}
		return fmt.Errorf("%w: %v", ErrInvalid, err)
	}
	return nil
}

// Settings returns the gradient-check settings.
func (c Config) Settings() gradcheck.Settings {
	return gradcheck.Settings{Step: c.GradCheck.Step, Tolerance: c.GradCheck.Tolerance}
}

// ParallelConfig returns the scenario runner settings.
func (c Config) ParallelConfig() parallel.Config {
	return parallel.Config{Enabled: c.Parallel.Enabled, Workers: c.Parallel.Workers}
}

// NewLogger builds a slog logger writing to w.
func (c Config) NewLogger(w io.Writer) *slog.Logger {
	opts := &slog.HandlerOptions{Level: c.level()}
	if c.Log.Format == "json" {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}

func (c Config) level() slog.Level {
	switch c.Log.Level {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
