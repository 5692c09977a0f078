package config

import (
	"fmt"
	"os"
	"runtime"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"shade-resolver/internal/resolve/model"
	"shade-resolver/internal/utils"
)

type Config struct {
	Host         string   `yaml:"host"`
	Port         int      `yaml:"port"`
	AllowOrigins []string `yaml:"allow_origins"`
	LogLevel     string   `yaml:"log_level"`
	LogFile      string   `yaml:"log_file"`
	MaxUploadMB  int      `yaml:"max_upload_mb"`

	CataloguePath string         `yaml:"catalogue_path"`
	CheckpointDB  string         `yaml:"checkpoint_db"` // пусто: без чекпойнта
	Workers       int            `yaml:"workers"`
	Resolver      ResolverConfig `yaml:"resolver"`
}

// ResolverConfig holds the engine settings: threshold, number fallback, fold table.
type ResolverConfig struct {
	SimilarityThreshold float64 `yaml:"similarity_threshold"`
	ShadeNumberFallback bool    `yaml:"shade_number_fallback"`
	NormalizationRules  struct {
		Fold map[string]string `yaml:"fold"`
	} `yaml:"normalization_rules"`
}

func defaults() Config {
	c := Config{
		Host:          "127.0.0.1",
		Port:          8083,
		AllowOrigins:  []string{"*"},
		LogLevel:      "info",
		LogFile:       "logs/shade-resolver.log",
		MaxUploadMB:   64,
		CataloguePath: "catalogue.json",
		Workers:       runtime.NumCPU(),
	}
	c.Resolver.SimilarityThreshold = model.DefaultThreshold
	return c
}

// Load: defaults → YAML (CONFIG_FILE) → env. .env подхватывается, если есть.
func Load() (Config, error) {
	_ = godotenv.Load()

	cfg := defaults()
	if path := os.Getenv("CONFIG_FILE"); path != "" {
		if err := cfg.mergeYAML(path); err != nil {
			return cfg, err
		}
	}
	if err := cfg.mergeEnv(); err != nil {
		return cfg, err
	}
	return cfg, cfg.validate()
}

func (c *Config) mergeYAML(path string) error {
	b, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config %s: %w", path, err)
	}
	if err := yaml.Unmarshal(b, c); err != nil {
		return fmt.Errorf("parse config %s: %w", path, err)
	}
	return nil
}

func (c *Config) mergeEnv() error {
	c.Host = getenv("HOST", c.Host)
	c.LogLevel = getenv("LOG_LEVEL", c.LogLevel)
	c.LogFile = getenv("LOG_FILE", c.LogFile)
	c.CataloguePath = getenv("CATALOGUE_PATH", c.CataloguePath)
	c.CheckpointDB = getenv("CHECKPOINT_DB", c.CheckpointDB)
	if v := os.Getenv("ALLOW_ORIGINS"); v != "" {
		c.AllowOrigins = strings.Split(v, ",")
	}

	var err error
	if c.Port, err = envInt("PORT", c.Port); err != nil {
		return err
	}
	if c.MaxUploadMB, err = envInt("MAX_UPLOAD_MB", c.MaxUploadMB); err != nil {
		return err
	}
	if c.Workers, err = envInt("WORKERS", c.Workers); err != nil {
		return err
	}
	if v := os.Getenv("SIMILARITY_THRESHOLD"); v != "" {
		f, ok := utils.ParseFloat(v)
		if !ok {
			return fmt.Errorf("SIMILARITY_THRESHOLD: bad number %q", v)
		}
		c.Resolver.SimilarityThreshold = f
	}
	if v := os.Getenv("SHADE_NUMBER_FALLBACK"); v != "" {
		b, ok := utils.ParseBool(v)
		if !ok {
			return fmt.Errorf("SHADE_NUMBER_FALLBACK: bad bool %q", v)
		}
		c.Resolver.ShadeNumberFallback = b
	}
	return nil
}

func (c Config) validate() error {
	t := c.Resolver.SimilarityThreshold
	if t < 0 || t > 100 {
		return fmt.Errorf("similarity_threshold must be in [0,100], got %v", t)
	}
	if c.Port <= 0 || c.Port > 65535 {
		return fmt.Errorf("bad port %d", c.Port)
	}
	return nil
}

// Options converts the resolver section into engine options.
func (c Config) Options() model.Options {
	return model.Options{
		Threshold:           c.Resolver.SimilarityThreshold,
		ShadeNumberFallback: c.Resolver.ShadeNumberFallback,
		Fold:                c.Resolver.NormalizationRules.Fold,
	}
}

func (c Config) Addr() string { return fmt.Sprintf("%s:%d", c.Host, c.Port) }

func getenv(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}

func envInt(k string, def int) (int, error) {
	v := os.Getenv(k)
	if v == "" {
		return def, nil
	}
	n, err := strconv.Atoi(strings.TrimSpace(v))
	if err != nil {
		return def, fmt.Errorf("%s: %w", k, err)
	}
	return n, nil
}
