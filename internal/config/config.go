package config

import (
	"fmt"
	"io"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"gopkg.in/yaml.v3"
)

const (
	StationIDPlaceholder = "{stationId}"
	SensorIDPlaceholder  = "{sensorId}"
)

// Endpoints holds the path templates of the three GIOS calls, relative to BaseURL
type Endpoints struct {
	FindAll        string `yaml:"find_all"`
	StationSensors string `yaml:"station_sensors"`
	SensorData     string `yaml:"sensor_data"`
}

type Config struct {
	Environment string
	LogLevel    zerolog.Level
	HTTPTimeout time.Duration
	BaseURL     string
	Endpoints   Endpoints
	ViewerAddr  string
	OpenBrowser bool
	PlotWidth   int
	PlotHeight  int
}

type Option func(*Config)

// WithEnvironment allows setting the environment
func WithEnvironment(env string) Option {
	return func(c *Config) {
		c.Environment = env
	}
}

// WithLogLevel allows setting the log level
func WithLogLevel(level string) Option {
	return func(c *Config) {
		parsedLevel, err := zerolog.ParseLevel(level)
		if err != nil || level == "" {
			parsedLevel = zerolog.WarnLevel
		}
		c.LogLevel = parsedLevel
	}
}

// WithHTTPTimeout allows setting the HTTP timeout
func WithHTTPTimeout(timeout time.Duration) Option {
	return func(c *Config) {
		c.HTTPTimeout = timeout
	}
}

// WithBaseURL points the API client at another GIOS-compatible server
func WithBaseURL(baseURL string) Option {
	return func(c *Config) {
		c.BaseURL = strings.TrimRight(baseURL, "/")
	}
}

func WithEndpoints(endpoints Endpoints) Option {
	return func(c *Config) {
		if endpoints.FindAll != "" {
			c.Endpoints.FindAll = endpoints.FindAll
		}
		if endpoints.StationSensors != "" {
			c.Endpoints.StationSensors = endpoints.StationSensors
		}
		if endpoints.SensorData != "" {
			c.Endpoints.SensorData = endpoints.SensorData
		}
	}
}

// WithViewer configures the local plot viewer
func WithViewer(addr string, openBrowser bool) Option {
	return func(c *Config) {
		c.ViewerAddr = addr
		c.OpenBrowser = openBrowser
	}
}

func WithPlotSize(width, height int) Option {
	return func(c *Config) {
		if width > 0 {
			c.PlotWidth = width
		}
		if height > 0 {
			c.PlotHeight = height
		}
	}
}

// New creates a new configuration with default values
func New(opts ...Option) *Config {
	cfg := &Config{
		Environment: "local",
		LogLevel:    zerolog.WarnLevel,
		HTTPTimeout: 30 * time.Second,
		BaseURL:     "http://api.gios.gov.pl",
		Endpoints: Endpoints{
			FindAll:        "/pjp-api/rest/station/findAll",
			StationSensors: "/pjp-api/rest/station/sensors/" + StationIDPlaceholder,
			SensorData:     "/pjp-api/rest/data/getData/" + SensorIDPlaceholder,
		},
		ViewerAddr:  "127.0.0.1:0",
		OpenBrowser: true,
		PlotWidth:   1280,
		PlotHeight:  720,
	}

	// Apply options
	for _, opt := range opts {
		opt(cfg)
	}

	return cfg
}

// Validate reports configuration that would make every API call fail
func (c *Config) Validate() error {
	u, err := url.Parse(c.BaseURL)
	if err != nil {
		return fmt.Errorf("parsing base URL %q: %w", c.BaseURL, err)
	}
	if u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("base URL %q must include scheme and host", c.BaseURL)
	}
	if c.Endpoints.FindAll == "" {
		return fmt.Errorf("find_all endpoint is empty")
	}
	if !strings.Contains(c.Endpoints.StationSensors, StationIDPlaceholder) {
		return fmt.Errorf("station_sensors endpoint %q lacks %s", c.Endpoints.StationSensors, StationIDPlaceholder)
	}
	if !strings.Contains(c.Endpoints.SensorData, SensorIDPlaceholder) {
		return fmt.Errorf("sensor_data endpoint %q lacks %s", c.Endpoints.SensorData, SensorIDPlaceholder)
	}
	if c.HTTPTimeout < 0 {
		return fmt.Errorf("negative HTTP timeout %s", c.HTTPTimeout)
	}
	return nil
}

// InitializeLogging sets up logging based on the configuration.
// Output goes to w so that log lines never mix with the interactive prompts.
func (c *Config) InitializeLogging(w io.Writer, runID string) {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	zerolog.SetGlobalLevel(c.LogLevel)

	// Setup console logger for development environments
	if c.Environment == "local" || c.Environment == "development" {
		log.Logger = zerolog.New(zerolog.ConsoleWriter{Out: w}).With().Timestamp().Str("run_id", runID).Logger()
		return
	}
	log.Logger = zerolog.New(w).With().Timestamp().Str("run_id", runID).Logger()
}

// fileConfig is the YAML shape of the optional config file
type fileConfig struct {
	Environment string    `yaml:"env"`
	LogLevel    string    `yaml:"log_level"`
	HTTPTimeout string    `yaml:"http_timeout"`
	BaseURL     string    `yaml:"base_url"`
	Endpoints   Endpoints `yaml:"endpoints"`
	Viewer      struct {
		Addr        string `yaml:"addr"`
		OpenBrowser *bool  `yaml:"open_browser"`
	} `yaml:"viewer"`
	Plot struct {
		Width  int `yaml:"width"`
		Height int `yaml:"height"`
	} `yaml:"plot"`
}

// LoadFile reads a YAML config file into options, applied in file order
func LoadFile(path string) ([]Option, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}
	return parseFile(data)
}

func parseFile(data []byte) ([]Option, error) {
	var fc fileConfig
	if err := yaml.Unmarshal(data, &fc); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}

	var opts []Option
	if fc.Environment != "" {
		opts = append(opts, WithEnvironment(fc.Environment))
	}
	if fc.LogLevel != "" {
		opts = append(opts, WithLogLevel(fc.LogLevel))
	}
	if fc.HTTPTimeout != "" {
		timeout, err := time.ParseDuration(fc.HTTPTimeout)
		if err != nil {
			return nil, fmt.Errorf("parsing http_timeout: %w", err)
		}
		opts = append(opts, WithHTTPTimeout(timeout))
	}
	if fc.BaseURL != "" {
		opts = append(opts, WithBaseURL(fc.BaseURL))
	}
	opts = append(opts, WithEndpoints(fc.Endpoints))
	if fc.Viewer.Addr != "" || fc.Viewer.OpenBrowser != nil {
		opts = append(opts, func(c *Config) {
			if fc.Viewer.Addr != "" {
				c.ViewerAddr = fc.Viewer.Addr
			}
			if fc.Viewer.OpenBrowser != nil {
				c.OpenBrowser = *fc.Viewer.OpenBrowser
			}
		})
	}
	opts = append(opts, WithPlotSize(fc.Plot.Width, fc.Plot.Height))
	return opts, nil
}

// Load builds the configuration from defaults, the file named by AIRQ_CONFIG and
// then the environment, in that order of precedence
func Load() (*Config, error) {
	var opts []Option
	if path := os.Getenv("AIRQ_CONFIG"); path != "" {
		fileOpts, err := LoadFile(path)
		if err != nil {
			return nil, err
		}
		opts = append(opts, fileOpts...)
	}
	opts = append(opts, envOptions()...)

	cfg := New(opts...)
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// envOptions turns the environment into options. Unset and empty variables are skipped so
// they never override the config file.
func envOptions() []Option {
	var opts []Option
	if value := os.Getenv("ENV"); value != "" {
		opts = append(opts, WithEnvironment(value))
	}
	if value := os.Getenv("LOG_LEVEL"); value != "" {
		opts = append(opts, WithLogLevel(value))
	}
	if value := os.Getenv("HTTP_TIMEOUT"); value != "" {
		if timeout, err := time.ParseDuration(value); err == nil {
			opts = append(opts, WithHTTPTimeout(timeout))
		} else {
			log.Warn().Str("key", "HTTP_TIMEOUT").Msg("Invalid duration value in environment variable, ignoring it")
		}
	}
	if value := os.Getenv("AIRQ_BASE_URL"); value != "" {
		opts = append(opts, WithBaseURL(value))
	}
	if value := os.Getenv("AIRQ_VIEWER_ADDR"); value != "" {
		opts = append(opts, func(c *Config) { c.ViewerAddr = value })
	}
	if value := os.Getenv("AIRQ_OPEN_BROWSER"); value != "" {
		if open, ok := parseBool(value); ok {
			opts = append(opts, func(c *Config) { c.OpenBrowser = open })
		} else {
			log.Warn().Str("key", "AIRQ_OPEN_BROWSER").Msg("Invalid boolean value in environment variable, ignoring it")
		}
	}
	opts = append(opts, WithPlotSize(getIntEnvOrDefault("AIRQ_PLOT_WIDTH", 0), getIntEnvOrDefault("AIRQ_PLOT_HEIGHT", 0)))
	return opts
}

func getIntEnvOrDefault(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
		log.Warn().Str("key", key).Msg("Invalid integer value in environment variable, using default")
	}
	return defaultValue
}

func parseBool(value string) (bool, bool) {
	switch strings.ToLower(value) {
	case "true", "1", "yes":
		return true, true
	case "false", "0", "no":
		return false, true
	}
	return false, false
}
