package config

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewConfigWithDefaults(t *testing.T) {
	cfg := New()

	assert.Equal(t, "local", cfg.Environment)
	assert.Equal(t, zerolog.WarnLevel, cfg.LogLevel)
	assert.Equal(t, 30*time.Second, cfg.HTTPTimeout)
	assert.Equal(t, "http://api.gios.gov.pl", cfg.BaseURL)
	assert.Equal(t, "/pjp-api/rest/station/findAll", cfg.Endpoints.FindAll)
	assert.Equal(t, "/pjp-api/rest/station/sensors/{stationId}", cfg.Endpoints.StationSensors)
	assert.Equal(t, "/pjp-api/rest/data/getData/{sensorId}", cfg.Endpoints.SensorData)
	assert.True(t, cfg.OpenBrowser)
	require.NoError(t, cfg.Validate())
}

func TestWithLogLevel(t *testing.T) {
	assert.Equal(t, zerolog.DebugLevel, New(WithLogLevel("debug")).LogLevel)
	assert.Equal(t, zerolog.WarnLevel, New(WithLogLevel("loud")).LogLevel)
	assert.Equal(t, zerolog.WarnLevel, New(WithLogLevel("")).LogLevel)
}

func TestWithBaseURLTrimsTrailingSlash(t *testing.T) {
	cfg := New(WithBaseURL("http://localhost:8080/"))

	assert.Equal(t, "http://localhost:8080", cfg.BaseURL)
}

func TestWithEndpointsKeepsDefaultsForEmptyFields(t *testing.T) {
	cfg := New(WithEndpoints(Endpoints{FindAll: "/stations"}))

	assert.Equal(t, "/stations", cfg.Endpoints.FindAll)
	assert.Equal(t, "/pjp-api/rest/station/sensors/{stationId}", cfg.Endpoints.StationSensors)
}

func TestValidate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		opts    []Option
		wantErr string
	}{
		{
			name:    "missing scheme",
			opts:    []Option{WithBaseURL("api.gios.gov.pl")},
			wantErr: "must include scheme and host",
		},
		{
			name:    "sensors template without placeholder",
			opts:    []Option{WithEndpoints(Endpoints{StationSensors: "/sensors"})},
			wantErr: "lacks {stationId}",
		},
		{
			name:    "data template without placeholder",
			opts:    []Option{WithEndpoints(Endpoints{SensorData: "/data"})},
			wantErr: "lacks {sensorId}",
		},
		{
			name:    "negative timeout",
			opts:    []Option{WithHTTPTimeout(-time.Second)},
			wantErr: "negative HTTP timeout",
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			err := New(tt.opts...).Validate()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestInitializeLogging(t *testing.T) {
	original, level := log.Logger, zerolog.GlobalLevel()
	defer func() {
		log.Logger = original
		zerolog.SetGlobalLevel(level)
	}()

	var buf bytes.Buffer
	cfg := New(WithEnvironment("production"), WithLogLevel("debug"))
	cfg.InitializeLogging(&buf, "run-1")

	log.Debug().Msg("hello")

	assert.Equal(t, zerolog.DebugLevel, zerolog.GlobalLevel())
	assert.Contains(t, buf.String(), `"run_id":"run-1"`)
	assert.Contains(t, buf.String(), `"message":"hello"`)
}

func TestParseFile(t *testing.T) {
	data := []byte(`
env: production
log_level: debug
http_timeout: 5s
base_url: http://localhost:9000/
endpoints:
  find_all: /all
viewer:
  addr: 127.0.0.1:8089
  open_browser: false
plot:
  width: 800
`)

	opts, err := parseFile(data)
	require.NoError(t, err)

	cfg := New(opts...)
	assert.Equal(t, "production", cfg.Environment)
	assert.Equal(t, zerolog.DebugLevel, cfg.LogLevel)
	assert.Equal(t, 5*time.Second, cfg.HTTPTimeout)
	assert.Equal(t, "http://localhost:9000", cfg.BaseURL)
	assert.Equal(t, "/all", cfg.Endpoints.FindAll)
	assert.Equal(t, "/pjp-api/rest/data/getData/{sensorId}", cfg.Endpoints.SensorData)
	assert.Equal(t, "127.0.0.1:8089", cfg.ViewerAddr)
	assert.False(t, cfg.OpenBrowser)
	assert.Equal(t, 800, cfg.PlotWidth)
	assert.Equal(t, 720, cfg.PlotHeight)
}

func TestParseFileRejectsBadTimeout(t *testing.T) {
	_, err := parseFile([]byte("http_timeout: soon\n"))

	require.Error(t, err)
	assert.Contains(t, err.Error(), "http_timeout")
}

func TestLoadFromEnvironment(t *testing.T) {
	t.Setenv("AIRQ_CONFIG", "")
	t.Setenv("ENV", "test")
	t.Setenv("LOG_LEVEL", "error")
	t.Setenv("HTTP_TIMEOUT", "5s")
	t.Setenv("AIRQ_BASE_URL", "http://localhost:1234")
	t.Setenv("AIRQ_OPEN_BROWSER", "no")
	t.Setenv("AIRQ_PLOT_HEIGHT", "480")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "test", cfg.Environment)
	assert.Equal(t, zerolog.ErrorLevel, cfg.LogLevel)
	assert.Equal(t, 5*time.Second, cfg.HTTPTimeout)
	assert.Equal(t, "http://localhost:1234", cfg.BaseURL)
	assert.False(t, cfg.OpenBrowser)
	assert.Equal(t, 1280, cfg.PlotWidth)
	assert.Equal(t, 480, cfg.PlotHeight)
}

func TestLoadEnvOverridesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "airq.yaml")
	require.NoError(t, os.WriteFile(path, []byte("base_url: http://file.example\nlog_level: info\n"), 0o600))

	t.Setenv("AIRQ_CONFIG", path)
	t.Setenv("AIRQ_BASE_URL", "http://env.example")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "http://env.example", cfg.BaseURL)
	assert.Equal(t, zerolog.InfoLevel, cfg.LogLevel)
}

func TestLoadMissingFile(t *testing.T) {
	t.Setenv("AIRQ_CONFIG", filepath.Join(t.TempDir(), "missing.yaml"))

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "reading config file")
}

func TestLoadInvalidBaseURL(t *testing.T) {
	t.Setenv("AIRQ_BASE_URL", "not a url")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid configuration")
}

func TestLoadEmptyEnvironmentKeepsFileValues(t *testing.T) {
	path := filepath.Join(t.TempDir(), "airq.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
env: production
log_level: info
http_timeout: 5s
viewer:
  addr: 127.0.0.1:8089
  open_browser: false
plot:
  width: 800
`), 0o600))

	t.Setenv("AIRQ_CONFIG", path)
	for _, key := range []string{"ENV", "LOG_LEVEL", "HTTP_TIMEOUT", "AIRQ_BASE_URL", "AIRQ_VIEWER_ADDR", "AIRQ_OPEN_BROWSER", "AIRQ_PLOT_WIDTH"} {
		t.Setenv(key, "")
	}

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "production", cfg.Environment)
	assert.Equal(t, zerolog.InfoLevel, cfg.LogLevel)
	assert.Equal(t, 5*time.Second, cfg.HTTPTimeout)
	assert.Equal(t, "127.0.0.1:8089", cfg.ViewerAddr)
	assert.False(t, cfg.OpenBrowser)
	assert.Equal(t, 800, cfg.PlotWidth)
}

func TestLoadIgnoresInvalidEnvironmentValues(t *testing.T) {
	path := filepath.Join(t.TempDir(), "airq.yaml")
	require.NoError(t, os.WriteFile(path, []byte("http_timeout: 5s\nviewer:\n  open_browser: false\n"), 0o600))

	t.Setenv("AIRQ_CONFIG", path)
	t.Setenv("HTTP_TIMEOUT", "later")
	t.Setenv("AIRQ_OPEN_BROWSER", "maybe")
	t.Setenv("AIRQ_PLOT_HEIGHT", "tall")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 5*time.Second, cfg.HTTPTimeout)
	assert.False(t, cfg.OpenBrowser)
	assert.Equal(t, 720, cfg.PlotHeight)
}

func TestParseBool(t *testing.T) {
	tests := []struct {
		value  string
		want   bool
		wantOK bool
	}{
		{value: "true", want: true, wantOK: true},
		{value: "YES", want: true, wantOK: true},
		{value: "1", want: true, wantOK: true},
		{value: "false", want: false, wantOK: true},
		{value: "no", want: false, wantOK: true},
		{value: "maybe", want: false, wantOK: false},
	}

	for _, tt := range tests {
		got, ok := parseBool(tt.value)
		assert.Equal(t, tt.want, got, tt.value)
		assert.Equal(t, tt.wantOK, ok, tt.value)
	}
}
