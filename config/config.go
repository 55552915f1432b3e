// Package config loads run settings for the propagation tool from YAML
// or TOML files.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"

	"github.com/nodeadmin/go-propagate/ontology"
)

// Output formats accepted by OutputConfig.Format.
const (
	FormatGMT    = "gmt"
	FormatTable  = "table"
	FormatMatrix = "matrix"
	FormatDir    = "dir"
	FormatJSON   = "json"
)

// Config is the complete run configuration.
type Config struct {
	// OBO is a path or URL of the ontology in OBO format.
	OBO string `yaml:"obo" toml:"obo"`
	// OWL is used instead of OBO when set.
	OWL string `yaml:"owl" toml:"owl"`
	// FetchTimeout bounds remote ontology and annotation downloads.
	FetchTimeout Duration `yaml:"fetch_timeout" toml:"fetch_timeout"`

	Annotations string           `yaml:"annotations" toml:"annotations"`
	Columns     ontology.Columns `yaml:"columns" toml:"columns"`
	GMT         string           `yaml:"gmt" toml:"gmt"`
	IDMap       string           `yaml:"idmap" toml:"idmap"`

	// Namespace restricts exports, e.g. biological_process.
	Namespace string       `yaml:"namespace" toml:"namespace"`
	Output    OutputConfig `yaml:"output" toml:"output"`
	Log       LogConfig    `yaml:"log" toml:"log"`
}

// OutputConfig selects the export.
type OutputConfig struct {
	Format string `yaml:"format" toml:"format"`
	// Path is a file, or a directory for the dir format. Empty means stdout.
	Path string `yaml:"path" toml:"path"`
	// Assoc switches the table format to the association layout.
	Assoc bool `yaml:"assoc" toml:"assoc"`
}

// LogConfig configures the zap logger.
type LogConfig struct {
	Mode  string `yaml:"mode" toml:"mode"`
	Level string `yaml:"level" toml:"level"`
}

// Duration is a time.Duration read from strings such as "5s".
type Duration time.Duration

func (d *Duration) UnmarshalText(b []byte) error {
	v, err := time.ParseDuration(string(b))
	if err != nil {
		return err
	}
	*d = Duration(v)
	return nil
}

func (d Duration) MarshalText() ([]byte, error) {
	return []byte(time.Duration(d).String()), nil
}

// Default returns a Config with the GAF column layout and gmt output.
func Default() *Config {
	return &Config{
		FetchTimeout: Duration(5 * time.Second),
		Columns:      ontology.DefaultColumns(),
		Output:       OutputConfig{Format: FormatGMT},
		Log:          LogConfig{Mode: "dev", Level: "info"},
	}
}

// Validate checks that the configuration is usable.
func (c *Config) Validate() error {
	if c.OBO == "" && c.OWL == "" {
		return fmt.Errorf("obo or owl is required")
	}
	switch c.Output.Format {
	case FormatGMT, FormatTable, FormatMatrix, FormatJSON:
	case FormatDir:
		if c.Output.Path == "" {
			return fmt.Errorf("output.path is required for the dir format")
		}
	default:
		return fmt.Errorf("unknown output.format %q", c.Output.Format)
	}
	if c.Columns.XDB < 0 || c.Columns.Gene < 0 || c.Columns.Term < 0 {
		return fmt.Errorf("columns.xdb, columns.gene and columns.term must be >= 0")
	}
	if c.FetchTimeout < 0 {
		return fmt.Errorf("fetch_timeout must not be negative")
	}
	return nil
}

// Load reads a configuration file over the defaults. The format follows
// the extension: .toml for TOML, anything else for YAML.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config file: %w", err)
	}

	cfg := Default()
	switch strings.ToLower(filepath.Ext(path)) {
	case ".toml":
		if _, err := toml.Decode(string(data), cfg); err != nil {
			return nil, fmt.Errorf("parse config file: %w", err)
		}
	default:
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config file: %w", err)
		}
	}
	return cfg, nil
}

// Merge copies the non-zero values of other into c.
func (c *Config) Merge(other *Config) {
	if other == nil {
		return
	}
	if other.OBO != "" {
		c.OBO = other.OBO
	}
	if other.OWL != "" {
		c.OWL = other.OWL
	}
	if other.FetchTimeout != 0 {
		c.FetchTimeout = other.FetchTimeout
	}
	if other.Annotations != "" {
		c.Annotations = other.Annotations
	}
	if other.GMT != "" {
		c.GMT = other.GMT
	}
	if other.IDMap != "" {
		c.IDMap = other.IDMap
	}
	if other.Namespace != "" {
		c.Namespace = other.Namespace
	}
	if other.Output.Format != "" {
		c.Output.Format = other.Output.Format
	}
	if other.Output.Path != "" {
		c.Output.Path = other.Output.Path
	}
	if other.Output.Assoc {
		c.Output.Assoc = true
	}
	if other.Log.Mode != "" {
		c.Log.Mode = other.Log.Mode
	}
	if other.Log.Level != "" {
		c.Log.Level = other.Log.Level
	}
}
