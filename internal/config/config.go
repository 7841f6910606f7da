package config

import (
	"bytes"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/vango-dev/reactive/internal/errors"
	"github.com/vango-dev/reactive/pkg/reactive"
)

const (
	// ConfigFileName is the name of the configuration file.
	ConfigFileName = "reactive.yaml"

	// DefaultLogLevel is the default slog level name.
	DefaultLogLevel = "info"

	// DefaultLogFormat is the default log handler format.
	DefaultLogFormat = "text"

	// DefaultNamespace is the default Prometheus namespace.
	DefaultNamespace = "reactive"

	// DefaultTracerName is the default OpenTelemetry instrumentation name.
	DefaultTracerName = "github.com/vango-dev/reactive"
)

// Config represents the complete reactive.yaml configuration.
type Config struct {
	// Runtime configures the reactive scheduler.
	Runtime RuntimeConfig `yaml:"runtime"`

	// Log configures structured logging.
	Log LogConfig `yaml:"log"`

	// Metrics configures the Prometheus monitor.
	Metrics MetricsConfig `yaml:"metrics"`

	// Tracing configures the OpenTelemetry monitor.
	Tracing TracingConfig `yaml:"tracing"`

	// configPath stores the path where the config was loaded from.
	configPath string

	// root is the parsed document, kept to locate invalid fields.
	root *yaml.Node
}

// RuntimeConfig contains scheduler limits.
type RuntimeConfig struct {
	// MaxRunsPerFlush aborts a flush after this many node runs.
	MaxRunsPerFlush int `yaml:"max_runs_per_flush"`

	// Debug enables debug logging of batches and flushes.
	Debug bool `yaml:"debug"`
}

// LogConfig contains logging settings.
type LogConfig struct {
	// Level is one of debug, info, warn or error.
	Level string `yaml:"level"`

	// Format is text or json.
	Format string `yaml:"format"`
}

// MetricsConfig contains Prometheus settings.
type MetricsConfig struct {
	Enabled   bool   `yaml:"enabled"`
	Namespace string `yaml:"namespace"`
	Subsystem string `yaml:"subsystem"`
}

// TracingConfig contains OpenTelemetry settings.
type TracingConfig struct {
	Enabled    bool   `yaml:"enabled"`
	TracerName string `yaml:"tracer_name"`
}

// New creates a new Config with default values.
func New() *Config {
	return &Config{
		Runtime: RuntimeConfig{
			MaxRunsPerFlush: reactive.DefaultMaxRunsPerFlush,
		},
		Log: LogConfig{
			Level:  DefaultLogLevel,
			Format: DefaultLogFormat,
		},
		Metrics: MetricsConfig{
			Namespace: DefaultNamespace,
		},
		Tracing: TracingConfig{
			TracerName: DefaultTracerName,
		},
	}
}

// Load reads configuration from the specified directory.
// It looks for reactive.yaml in the directory.
func Load(dir string) (*Config, error) {
	return LoadFile(filepath.Join(dir, ConfigFileName))
}

// LoadFile reads configuration from the specified file path.
func LoadFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.New("C001").
				WithDetail("No " + ConfigFileName + " found at " + path)
		}
		return nil, errors.New("C001").Wrap(err)
	}

	cfg, err := Parse(data)
	if err != nil {
		if e, ok := err.(*errors.Error); ok && e.Location != nil {
			e.WithLocation(path, e.Location.Line, e.Location.Column)
		}
		return nil, err
	}
	cfg.configPath = path
	return cfg, nil
}

var yamlLine = regexp.MustCompile(`line (\d+)`)

// Parse decodes a YAML document on top of the defaults.
func Parse(data []byte) (*Config, error) {
	cfg := New()

	var root yaml.Node
	dec := yaml.NewDecoder(bytes.NewReader(data))
	if err := dec.Decode(&root); err != nil && err != io.EOF {
		return nil, parseError(err)
	}
	if len(root.Content) > 0 {
		if err := root.Content[0].Decode(cfg); err != nil {
			return nil, parseError(err)
		}
		cfg.root = root.Content[0]
	}

	cfg.applyDefaults()
	return cfg, nil
}

func parseError(err error) error {
	e := errors.New("C002").
		WithDetail(err.Error()).
		WithSuggestion("Check that " + ConfigFileName + " is valid YAML")
	if m := yamlLine.FindStringSubmatch(err.Error()); m != nil {
		line, _ := strconv.Atoi(m[1])
		e.Location = &errors.Location{Line: line}
	}
	return e
}

// Save writes the configuration to the file it was loaded from.
func (c *Config) Save() error {
	if c.configPath == "" {
		return errors.Newf(errors.CategoryConfig, "no config path set")
	}
	return c.SaveTo(c.configPath)
}

// SaveTo writes the configuration to the specified path.
func (c *Config) SaveTo(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return errors.New("C002").Wrap(err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return errors.New("C001").Wrap(err)
	}
	c.configPath = path
	return nil
}

// Path returns the path where the config was loaded from.
func (c *Config) Path() string {
	return c.configPath
}

// applyDefaults fills in default values for empty fields.
func (c *Config) applyDefaults() {
	if c.Runtime.MaxRunsPerFlush == 0 {
		c.Runtime.MaxRunsPerFlush = reactive.DefaultMaxRunsPerFlush
	}
	if c.Log.Level == "" {
		c.Log.Level = DefaultLogLevel
	}
	if c.Log.Format == "" {
		c.Log.Format = DefaultLogFormat
	}
	if c.Metrics.Namespace == "" {
		c.Metrics.Namespace = DefaultNamespace
	}
	if c.Tracing.TracerName == "" {
		c.Tracing.TracerName = DefaultTracerName
	}
}

var metricName = regexp.MustCompile(`^[a-zA-Z_][a-zA-Z0-9_]*$`)

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if c.Runtime.MaxRunsPerFlush < 0 {
		return c.locate(errors.New("C005").
			WithDetailf("max_runs_per_flush must be positive, got %d", c.Runtime.MaxRunsPerFlush),
			"runtime", "max_runs_per_flush")
	}
	if _, err := c.LogLevel(); err != nil {
		return c.locate(errors.New("C003").
			WithDetailf("%q is not one of debug, info, warn, error", c.Log.Level),
			"log", "level")
	}
	switch strings.ToLower(c.Log.Format) {
	case "text", "json":
	default:
		return c.locate(errors.New("C004").
			WithDetailf("%q is not one of text, json", c.Log.Format),
			"log", "format")
	}
	if !metricName.MatchString(c.Metrics.Namespace) {
		return c.locate(errors.New("C006").
			WithDetailf("namespace %q is not a valid metric name", c.Metrics.Namespace),
			"metrics", "namespace")
	}
	if c.Metrics.Subsystem != "" && !metricName.MatchString(c.Metrics.Subsystem) {
		return c.locate(errors.New("C006").
			WithDetailf("subsystem %q is not a valid metric name", c.Metrics.Subsystem),
			"metrics", "subsystem")
	}
	return nil
}

// locate attaches the source position of the value at path, if known.
func (c *Config) locate(e *errors.Error, path ...string) *errors.Error {
	n := c.root
	for _, key := range path {
		if n == nil || n.Kind != yaml.MappingNode {
			return e
		}
		var next *yaml.Node
		for i := 0; i+1 < len(n.Content); i += 2 {
			if n.Content[i].Value == key {
				next = n.Content[i+1]
				break
			}
		}
		n = next
	}
	if n == nil {
		return e
	}
	if c.configPath != "" {
		return e.WithLocation(c.configPath, n.Line, n.Column)
	}
	e.Location = &errors.Location{Line: n.Line, Column: n.Column}
	return e
}

// LogLevel parses the configured level.
func (c *Config) LogLevel() (slog.Level, error) {
	var lvl slog.Level
	err := lvl.UnmarshalText([]byte(c.Log.Level))
	return lvl, err
}

// Logger builds a slog logger writing to w in the configured format.
func (c *Config) Logger(w io.Writer) *slog.Logger {
	lvl, err := c.LogLevel()
	if err != nil {
		lvl = slog.LevelInfo
	}
	if c.Runtime.Debug {
		lvl = slog.LevelDebug
	}
	opts := &slog.HandlerOptions{Level: lvl}

	var h slog.Handler
	if strings.EqualFold(c.Log.Format, "json") {
		h = slog.NewJSONHandler(w, opts)
	} else {
		h = slog.NewTextHandler(w, opts)
	}
	return slog.New(h)
}

// ReactiveConfig returns the reactive runtime configuration for this file.
func (c *Config) ReactiveConfig(logger *slog.Logger, m reactive.Monitor) reactive.Config {
	return reactive.Config{
		Logger:          logger.With("component", "reactive"),
		Monitor:         m,
		MaxRunsPerFlush: c.Runtime.MaxRunsPerFlush,
		Debug:           c.Runtime.Debug,
	}
}

// Exists checks if a config file exists in the given directory.
func Exists(dir string) bool {
	_, err := os.Stat(filepath.Join(dir, ConfigFileName))
	return err == nil
}

// FindProjectRoot walks up directories to find the nearest reactive.yaml.
func FindProjectRoot(startDir string) (string, error) {
	dir, err := filepath.Abs(startDir)
	if err != nil {
		return "", err
	}

	for {
		if Exists(dir) {
			return dir, nil
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			return "", errors.New("C001").
				WithDetail("No " + ConfigFileName + " found in " + startDir + " or any parent directory")
		}
		dir = parent
	}
}

// LoadOrDefault loads the config at path. An empty path searches upward from
// the working directory and falls back to defaults when nothing is found.
func LoadOrDefault(path string) (*Config, error) {
	if path != "" {
		return LoadFile(path)
	}
	wd, err := os.Getwd()
	if err != nil {
		return New(), nil
	}
	root, err := FindProjectRoot(wd)
	if err != nil {
		return New(), nil
	}
	return Load(root)
}
