// Package config loads and validates the migration run's configuration
// file (spec §6): a flat JSON or XML document, selected by file extension,
// the way the teacher's own config surfaces (e.g. axfor-aproxy's
// internal/config.LoadConfig) read one format and unmarshaled into a
// single struct with defaults applied afterward.
package config

import (
	"encoding/json"
	"encoding/xml"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"mysql2pg/internal/migerr"
)

// Config is the flat configuration document described in spec §6.
type Config struct {
	Source        string  `json:"source" xml:"source"`
	Target        string  `json:"target" xml:"target"`
	Schema        string  `json:"schema" xml:"schema"`
	Encoding      string  `json:"encoding" xml:"encoding"`
	DataChunkSize float64 `json:"data_chunk_size" xml:"data_chunk_size"`
	DataOnly      bool    `json:"data_only" xml:"data_only"`
	TempDirPath   string  `json:"temp_dir_path" xml:"temp_dir_path"`
	// MetricsAddr is the listen address for the Prometheus scrape
	// endpoint (internal/metrics.Handler). Empty disables it.
	MetricsAddr string `json:"metrics_addr" xml:"metrics_addr"`
}

// Load reads and validates the configuration file at path. Format is
// selected by extension: .json or .xml.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, migerr.New(migerr.CodeConfig, "", "reading config file "+path, err)
	}

	cfg := &Config{}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		if err := json.Unmarshal(data, cfg); err != nil {
			return nil, migerr.New(migerr.CodeConfig, "", "parsing JSON config", err)
		}
	case ".xml":
		if err := xml.Unmarshal(data, cfg); err != nil {
			return nil, migerr.New(migerr.CodeConfig, "", "parsing XML config", err)
		}
	default:
		return nil, migerr.New(migerr.CodeConfig, "", "unrecognized config extension for "+path, nil)
	}

	cfg.applyDefaults()
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyDefaults() {
	if c.Encoding == "" {
		c.Encoding = "UTF-8"
	}
	if c.DataChunkSize == 0 {
		c.DataChunkSize = 10
	} else if c.DataChunkSize < 1 {
		c.DataChunkSize = 1
	}
}

func (c *Config) validate() error {
	if c.Source == "" {
		return migerr.New(migerr.CodeConfig, "", "missing required \"source\"", nil)
	}
	if c.Target == "" {
		return migerr.New(migerr.CodeConfig, "", "missing required \"target\"", nil)
	}
	if _, _, _, err := splitTriple(c.Source); err != nil {
		return migerr.New(migerr.CodeConfig, "", "invalid \"source\"", err)
	}
	if _, _, _, err := splitTriple(c.Target); err != nil {
		return migerr.New(migerr.CodeConfig, "", "invalid \"target\"", err)
	}
	return nil
}

// splitTriple parses the "dsn, user, password" comma triple shared by
// both source and target (Open Question 2: the source project split on a
// bare "," with no escaping; this keeps the same three-field shape but
// the DSN portion itself is then parsed structurally, not string-split
// further. Everything after the second comma is the password, so commas
// inside the password are safe; a comma inside the DSN or the user name
// still breaks the split).
func splitTriple(value string) (dsn, user, password string, err error) {
	parts := strings.SplitN(value, ",", 3)
	if len(parts) != 3 {
		return "", "", "", fmt.Errorf("expected \"dsn, user, password\", got %q", value)
	}
	return strings.TrimSpace(parts[0]), strings.TrimSpace(parts[1]), strings.TrimSpace(parts[2]), nil
}
