package config

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v2"

	"github.com/AngelCh415/marketing-etl/internal/pipeline"
)

// EnvPrefix prefixes every environment variable, e.g. MKTG_DATA_DIR.
const EnvPrefix = "MKTG"

type Config struct {
	DataDir     string         `yaml:"data_dir" envconfig:"DATA_DIR" validate:"required"`
	Sources     SourcesConfig  `yaml:"sources" envconfig:"SOURCES"`
	Outputs     OutputsConfig  `yaml:"outputs" envconfig:"OUTPUTS"`
	Sink        SinkConfig     `yaml:"sink" envconfig:"SINK"`
	Pipeline    PipelineConfig `yaml:"pipeline" envconfig:"PIPELINE"`
	Port        string         `yaml:"port" envconfig:"PORT" validate:"required,numeric"`
	HTTPTimeout time.Duration  `yaml:"http_timeout" envconfig:"HTTP_TIMEOUT" validate:"gt=0"`
	// FetchRetries bounds the retries of an http(s) source.
	FetchRetries int    `yaml:"fetch_retries" envconfig:"FETCH_RETRIES" validate:"gte=0,lte=10"`
	LogLevel     string `yaml:"log_level" envconfig:"LOG_LEVEL" validate:"oneof=debug info warn error"`
}

// SourcesConfig names the four inputs. A value starting with http:// or
// https:// is fetched; anything else is a file under DataDir.
type SourcesConfig struct {
	PPC         string `yaml:"ppc" envconfig:"PPC" validate:"required"`
	Email       string `yaml:"email" envconfig:"EMAIL" validate:"required"`
	Social      string `yaml:"social" envconfig:"SOCIAL" validate:"required"`
	Conversions string `yaml:"conversions" envconfig:"CONVERSIONS" validate:"required"`
}

type OutputsConfig struct {
	Daily  string `yaml:"daily" envconfig:"DAILY" validate:"required"`
	Weekly string `yaml:"weekly" envconfig:"WEEKLY" validate:"required"`
	// XLSX, when set, also writes both reports into one workbook.
	XLSX string `yaml:"xlsx" envconfig:"XLSX"`
	// SQLitePath, when set, also stores both reports in a SQLite database.
	SQLitePath string `yaml:"sqlite_path" envconfig:"SQLITE_PATH"`
}

// PipelineConfig mirrors pipeline.Options for the env and file loaders.
type PipelineConfig struct {
	DayFirst              bool `yaml:"day_first" envconfig:"DAY_FIRST"`
	PreAggregateActivity  bool `yaml:"pre_aggregate_activity" envconfig:"PRE_AGGREGATE_ACTIVITY"`
	KeepOrphanConversions bool `yaml:"keep_orphan_conversions" envconfig:"KEEP_ORPHAN_CONVERSIONS"`
	ParallelNormalize     bool `yaml:"parallel_normalize" envconfig:"PARALLEL_NORMALIZE"`
}

func (p PipelineConfig) Options() pipeline.Options {
	return pipeline.Options{
		DayFirst:              p.DayFirst,
		PreAggregateActivity:  p.PreAggregateActivity,
		KeepOrphanConversions: p.KeepOrphanConversions,
		ParallelNormalize:     p.ParallelNormalize,
	}
}

func pipelineConfig(o pipeline.Options) PipelineConfig {
	return PipelineConfig{
		DayFirst:              o.DayFirst,
		PreAggregateActivity:  o.PreAggregateActivity,
		KeepOrphanConversions: o.KeepOrphanConversions,
		ParallelNormalize:     o.ParallelNormalize,
	}
}

type SinkConfig struct {
	URL    string `yaml:"url" envconfig:"URL" validate:"omitempty,url"`
	Secret string `yaml:"secret" envconfig:"SECRET"`
}

// Default returns the configuration used for every key that neither the
// YAML file nor the environment sets.
func Default() Config {
	return Config{
		DataDir: "data",
		Sources: SourcesConfig{
			PPC:         "ppc_spend.csv",
			Email:       "email_campaigns.csv",
			Social:      "social_media_ads.csv",
			Conversions: "website_conversions.csv",
		},
		Outputs: OutputsConfig{
			Daily:  "aggregated_daily.csv",
			Weekly: "aggregated_weekly.csv",
		},
		Pipeline:     pipelineConfig(pipeline.DefaultOptions()),
		Port:         "8080",
		HTTPTimeout:  15 * time.Second,
		FetchRetries: 2,
		LogLevel:     "info",
	}
}

// Load starts from Default, overlays the YAML file named by
// MKTG_CONFIG_FILE when present, then the environment, and validates the
// result. Environment variables win over the file.
func Load() (Config, error) {
	cfg := Default()
	if path := os.Getenv(EnvPrefix + "_CONFIG_FILE"); path != "" {
		if err := loadFile(path, &cfg); err != nil {
			return Config{}, fmt.Errorf("failed to load config file %s: %w", path, err)
		}
	}
	// Fields without a matching variable are left untouched.
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return Config{}, fmt.Errorf("failed to load config from env: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("config validation failed: %w", err)
	}
	return cfg, nil
}

func loadFile(path string, cfg *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	return yaml.Unmarshal(data, cfg)
}

func (c Config) Validate() error {
	return validator.New().Struct(c)
}

// Location resolves a source or output name against DataDir. URLs and
// absolute paths are returned unchanged.
func (c Config) Location(name string) string {
	if IsURL(name) || filepath.IsAbs(name) {
		return name
	}
	return filepath.Join(c.DataDir, name)
}

func IsURL(s string) bool {
	return strings.HasPrefix(s, "http://") || strings.HasPrefix(s, "https://")
}

func (c Config) SlogLevel() slog.Level {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(c.LogLevel)); err != nil {
		return slog.LevelInfo
	}
	return lvl
}
