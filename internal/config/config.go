package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"unicode/utf8"

	"gopkg.in/yaml.v3"
)

// Environment variables that override file values.
const (
	EnvConfig    = "CSV2ICS_CONFIG"
	EnvDelimiter = "CSV2ICS_DELIMITER"
	EnvHeader    = "CSV2ICS_HEADER"
	EnvEncoding  = "CSV2ICS_ENCODING"
	EnvLogLevel  = "CSV2ICS_LOG_LEVEL"
)

// Config is the conversion configuration.
type Config struct {
	// Delimiter is the column separator; a single character.
	Delimiter string `yaml:"delimiter" json:"delimiter"`

	// Header, when true, drops the first row of the table. Pointer so an
	// explicit "false" in YAML is distinguishable from "unset".
	Header *bool `yaml:"header,omitempty" json:"header,omitempty"`

	// Encoding is a WHATWG label of the source encoding, e.g. "utf-8",
	// "windows-1252", "iso-8859-15".
	Encoding string `yaml:"encoding" json:"encoding"`

	// LineEnding of the generated calendar:
	//   - "lf" (default)
	//   - "crlf"
	LineEnding string `yaml:"line_ending" json:"line_ending"`

	// LogLevel is one of debug, info, error.
	LogLevel string `yaml:"log_level" json:"log_level"`
}

// DefaultConfig returns an in-memory default configuration.
func DefaultConfig() *Config {
	header := true
	return &Config{
		Delimiter:  ";",
		Header:     &header,
		Encoding:   "utf-8",
		LineEnding: "lf",
		LogLevel:   "info",
	}
}

// HasHeader reports the effective header setting.
func (c *Config) HasHeader() bool {
	return c.Header == nil || *c.Header
}

// SetHeader sets the header flag.
func (c *Config) SetHeader(v bool) {
	c.Header = &v
}

// DelimiterRune returns the delimiter as a rune. Call Validate first.
func (c *Config) DelimiterRune() rune {
	r, _ := utf8.DecodeRuneInString(c.Delimiter)
	return r
}

// Normalize fills in missing/zero values with defaults so that partially
// filled configs still behave correctly.
func (c *Config) Normalize() {
	if c.Delimiter == "" {
		c.Delimiter = ";"
	}
	if c.Header == nil {
		c.SetHeader(true)
	}
	if strings.TrimSpace(c.Encoding) == "" {
		c.Encoding = "utf-8"
	}
	c.LineEnding = strings.ToLower(strings.TrimSpace(c.LineEnding))
	if c.LineEnding == "" {
		c.LineEnding = "lf"
	}
	c.LogLevel = strings.ToLower(strings.TrimSpace(c.LogLevel))
	if c.LogLevel == "" {
		c.LogLevel = "info"
	}
}

// Validate rejects values the converter cannot work with.
func (c *Config) Validate() error {
	if utf8.RuneCountInString(c.Delimiter) != 1 {
		return fmt.Errorf("delimiter must be a single character, got %q", c.Delimiter)
	}
	switch r := c.DelimiterRune(); r {
	case '"', '\r', '\n', utf8.RuneError:
		return fmt.Errorf("delimiter %q is not allowed", r)
	}
	switch c.LineEnding {
	case "lf", "crlf":
	default:
		return fmt.Errorf("line_ending must be lf or crlf, got %q", c.LineEnding)
	}
	switch c.LogLevel {
	case "debug", "info", "error":
	default:
		return fmt.Errorf("log_level must be debug, info or error, got %q", c.LogLevel)
	}
	return nil
}

// ApplyEnv overrides fields from the environment. lookup is usually
// os.LookupEnv.
func (c *Config) ApplyEnv(lookup func(string) (string, bool)) error {
	if v, ok := lookup(EnvDelimiter); ok && v != "" {
		c.Delimiter = v
	}
	if v, ok := lookup(EnvHeader); ok && v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("%s: %w", EnvHeader, err)
		}
		c.SetHeader(b)
	}
	if v, ok := lookup(EnvEncoding); ok && v != "" {
		c.Encoding = v
	}
	if v, ok := lookup(EnvLogLevel); ok && v != "" {
		c.LogLevel = v
	}
	c.Normalize()
	return nil
}

// Load loads configuration from the given YAML path.
//
// Behavior:
//   - If path is empty or the file does not exist, the defaults are returned.
//   - Otherwise the YAML is unmarshalled over the defaults and normalized.
func Load(path string) (*Config, error) {
	if path == "" {
		return DefaultConfig(), nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return DefaultConfig(), nil
		}
		return nil, err
	}

	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	cfg.Normalize()

	return cfg, nil
}

// Save writes the given configuration to the specified path.
//
// Implementation details:
//   - Ensures parent directory exists (0700).
//   - Marshals cfg to YAML.
//   - Writes atomically via a temp file + rename.
//   - Ensures final file permissions are 0600.
func Save(path string, cfg *Config) error {
	if path == "" {
		return errors.New("config path is empty")
	}
	if cfg == nil {
		return errors.New("config is nil")
	}

	cfg.Normalize()

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return err
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}

	tmp, err := os.CreateTemp(dir, ".csv2ics-config-*.tmp")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()

	defer os.Remove(tmpName)

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return err
	}

	// Flush and close before chmod/rename.
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}

	if err := os.Chmod(tmpName, 0o600); err != nil {
		return err
	}

	return os.Rename(tmpName, path)
}

// Save is a convenience method on Config that delegates to the package-level
// Save function.
func (c *Config) Save(path string) error {
	return Save(path, c)
}
