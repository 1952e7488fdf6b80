package config

import (
	"bytes"
	"os"
	"path/filepath"
	"runtime"
	"strconv"

	"github.com/geocombine/geocombine/mderr"
	"github.com/geocombine/geocombine/schema"
	"github.com/joho/godotenv"
	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

// ErrConfigNotFound is returned when the config file does not exist.
var ErrConfigNotFound = errors.New("config file not found")

// FileName is the config file looked up in a directory
const FileName = "geocombine.yaml"

// Environment overrides
const (
	EnvRuleSets   = "GEOCOMBINE_RULESETS"
	EnvWorkers    = "GEOCOMBINE_WORKERS"
	EnvProvenance = "GEOCOMBINE_PROVENANCE"
)

// Output formats of the convert command
const (
	FormatGeoblacklight = "geoblacklight"
	FormatJSON          = "json"
	FormatHTML          = "html"
)

// SchemaAuto detects the schema of each input
const SchemaAuto = "auto"

type Config struct {
	RuleSets string            `yaml:"rulesets,omitempty"`
	Workers  int               `yaml:"workers,omitempty"`
	Format   string            `yaml:"format,omitempty"`
	Schema   string            `yaml:"schema,omitempty"`
	Params   map[string]string `yaml:"params,omitempty"`
}

// Default returns the configuration used when no file is present
func Default() *Config {
	return &Config{
		Workers: runtime.NumCPU(),
		Format:  FormatGeoblacklight,
		Schema:  SchemaAuto,
		Params:  map[string]string{},
	}
}

// Load reads the config file at path. If path is a directory, FileName
// is read from it. Unset fields take their Default values.
func Load(path string) (*Config, error) {
	if fi, err := os.Stat(path); err == nil && fi.IsDir() {
		path = filepath.Join(path, FileName)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrConfigNotFound
		}
		return nil, errors.WithStack(mderr.InvalidConfig(path, mderr.WithCause(err)))
	}

	cfg := Default()
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil && len(bytes.TrimSpace(data)) > 0 {
		return nil, errors.WithStack(mderr.InvalidConfig(path, mderr.WithCause(err)))
	}
	if cfg.Params == nil {
		cfg.Params = map[string]string{}
	}
	if cfg.RuleSets != "" && !filepath.IsAbs(cfg.RuleSets) {
		cfg.RuleSets = filepath.Join(filepath.Dir(path), cfg.RuleSets)
	}
	return cfg, nil
}

// Resolve loads .env from the working directory, then the config file at
// path, then applies environment overrides. An empty path looks for
// FileName in the working directory and tolerates its absence.
func Resolve(path string) (*Config, error) {
	_ = godotenv.Load()

	cfg := Default()
	file := path
	if file == "" {
		file = FileName
	}
	loaded, err := Load(file)
	switch {
	case err == nil:
		cfg = loaded
	case errors.Is(err, ErrConfigNotFound) && path == "":
	case errors.Is(err, ErrConfigNotFound):
		return nil, errors.WithStack(mderr.InvalidConfig(path, mderr.WithCause(err)))
	default:
		return nil, err
	}

	if err := cfg.ApplyEnv(os.Getenv); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// ApplyEnv overrides the configuration from the environment
func (c *Config) ApplyEnv(getenv func(string) string) error {
	if v := getenv(EnvRuleSets); v != "" {
		c.RuleSets = v
	}
	if v := getenv(EnvWorkers); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return errors.WithStack(mderr.InvalidConfig(EnvWorkers, mderr.WithCause(err)))
		}
		c.Workers = n
	}
	if v := getenv(EnvProvenance); v != "" {
		if c.Params == nil {
			c.Params = map[string]string{}
		}
		c.Params["provenance"] = v
	}
	return nil
}

// Validate checks field values
func (c *Config) Validate() error {
	invalid := func(msg string) error {
		return errors.WithStack(mderr.InvalidConfig(FileName, mderr.WithMessage(msg)))
	}
	if c.Workers < 1 {
		return invalid("workers must be at least 1, got " + strconv.Itoa(c.Workers))
	}
	switch c.Format {
	case FormatGeoblacklight, FormatJSON, FormatHTML:
	default:
		return invalid("unknown format " + strconv.Quote(c.Format))
	}
	if c.Schema == SchemaAuto {
		return nil
	}
	for _, name := range schema.Names() {
		if c.Schema == name {
			return nil
		}
	}
	return invalid("unknown schema " + strconv.Quote(c.Schema))
}
