// Package config loads pdbgraph run settings from YAML and the environment.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/dd0wney/cluso-pdbgraph/pkg/validation"
	"gopkg.in/yaml.v3"
)

// Default configuration values
const (
	DefaultScaling  float32 = 2.5
	DefaultLogLevel         = "info"
	DefaultJobs             = 1
	DefaultType             = "atomic"
)

// Environment variables that override file values
const (
	EnvLogLevel    = "LOG_LEVEL"
	EnvDatabaseURL = "PDBGRAPH_DATABASE_URL"
	EnvS3Bucket    = "PDBGRAPH_S3_BUCKET"
	EnvS3AccessKey = "PDBGRAPH_S3_ACCESS_KEY"
	EnvS3SecretKey = "PDBGRAPH_S3_SECRET_KEY"
)

var (
	logLevels     = []string{"debug", "info", "warn", "error"}
	edgelistTypes = []string{"atomic", "residue"}
)

// Config holds the settings for one pdbgraph invocation.
type Config struct {
	// Type selects atom nodes or residue nodes
	Type string `yaml:"type" validate:"oneof=atomic residue"`

	// Scaling multiplies the summed covalent radii to give the contact cutoff
	Scaling float32 `yaml:"scaling" validate:"gt=0"`

	// Workers for the parallel graph build; 0 or 1 builds sequentially
	Workers int `yaml:"workers" validate:"min=0,max=1024"`

	// Jobs is the number of input files converted at once
	Jobs int `yaml:"jobs" validate:"min=1,max=256"`

	// Lenient skips malformed ATOM records instead of failing
	Lenient bool `yaml:"lenient"`

	// ExcludeHydrogens drops atoms whose element is H
	ExcludeHydrogens bool `yaml:"exclude_hydrogens"`

	// Chain keeps only atoms of one chain when set
	Chain string `yaml:"chain" validate:"omitempty,len=1"`

	// Compress writes snappy framed edge lists
	Compress bool `yaml:"compress"`

	LogLevel string `yaml:"log_level" validate:"oneof=debug info warn error"`

	// MetricsFile receives a Prometheus textfile dump after the run
	MetricsFile string `yaml:"metrics_file"`

	S3       S3Config       `yaml:"s3"`
	Postgres PostgresConfig `yaml:"postgres"`
}

// S3Config describes where finished edge lists are uploaded. Upload is
// disabled when Bucket is empty.
type S3Config struct {
	Bucket    string `yaml:"bucket"`
	Prefix    string `yaml:"prefix"`
	Region    string `yaml:"region"`
	Endpoint  string `yaml:"endpoint" validate:"omitempty,url"`
	PathStyle bool   `yaml:"path_style"`

	// Static credentials; both empty uses the default AWS chain
	AccessKey string `yaml:"access_key"`
	SecretKey string `yaml:"secret_key"`
}

// PostgresConfig enables edge list deposit when URL is set.
type PostgresConfig struct {
	URL string `yaml:"url"`
}

// Default returns a Config populated with default values.
func Default() *Config {
	return &Config{
		Type:     DefaultType,
		Scaling:  DefaultScaling,
		Jobs:     DefaultJobs,
		LogLevel: DefaultLogLevel,
	}
}

// Load reads the YAML file at path over the defaults and applies environment
// overrides. An empty path skips the file.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config: %w", err)
		}
		if err := Parse(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config %s: %w", path, err)
		}
	}

	cfg.ApplyEnv()
	return cfg, nil
}

// Parse decodes YAML into cfg. Unknown keys are rejected.
func Parse(data []byte, cfg *Config) error {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return err
	}
	return nil
}

// ApplyEnv overrides fields from the environment.
func (c *Config) ApplyEnv() {
	if v := os.Getenv(EnvLogLevel); v != "" {
		c.LogLevel = strings.ToLower(strings.TrimSpace(v))
	}
	if v := os.Getenv(EnvDatabaseURL); v != "" {
		c.Postgres.URL = v
	}
	if v := os.Getenv(EnvS3Bucket); v != "" {
		c.S3.Bucket = v
	}
	if v := os.Getenv(EnvS3AccessKey); v != "" {
		c.S3.AccessKey = v
	}
	if v := os.Getenv(EnvS3SecretKey); v != "" {
		c.S3.SecretKey = v
	}
}

// Validate checks field ranges and the relations between fields.
func (c *Config) Validate() error {
	if err := validation.Struct(c); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}

	return validation.NewConfigValidator("config").
		OneOf("type", c.Type, edgelistTypes).
		PositiveFloat("scaling", float64(c.Scaling)).
		NonNegative("workers", c.Workers).
		OneOf("log_level", c.LogLevel, logLevels).
		When(c.Chain != "", func(cv *validation.ConfigValidator) {
			cv.Custom("chain", func() error { return validation.ValidateChainID(c.Chain) })
		}).
		When(c.S3.Bucket == "", func(cv *validation.ConfigValidator) {
			cv.Custom("s3", func() error {
				if c.S3.Prefix != "" || c.S3.Endpoint != "" {
					return errors.New("prefix and endpoint require a bucket")
				}
				return nil
			})
		}).
		When((c.S3.AccessKey == "") != (c.S3.SecretKey == ""), func(cv *validation.ConfigValidator) {
			cv.Custom("s3", func() error { return errors.New("access_key and secret_key must be set together") })
		}).
		Validate()
}

// Parallel reports whether the graph build should use a worker pool.
func (c *Config) Parallel() bool {
	return c.Workers > 1
}
