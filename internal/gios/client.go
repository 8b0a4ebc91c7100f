package gios

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/bbernstein/airquality/internal/config"
	"github.com/bbernstein/airquality/internal/models"
	"github.com/bbernstein/airquality/pkg/http/client"
	"github.com/rs/zerolog/log"
)

const (
	endpointFindAll        = "find_all"
	endpointStationSensors = "station_sensors"
	endpointSensorData     = "sensor_data"
)

// Client talks to the GIOS pjp-api. Every call is a single GET with no retry.
type Client struct {
	httpClient client.Interface
	endpoints  config.Endpoints
	metrics    *Metrics
}

// NewClient creates a client; metrics may be nil
func NewClient(httpClient client.Interface, endpoints config.Endpoints, metrics *Metrics) *Client {
	return &Client{
		httpClient: httpClient,
		endpoints:  endpoints,
		metrics:    metrics,
	}
}

// ListAllStations returns the raw station directory
func (c *Client) ListAllStations(ctx context.Context) ([]json.RawMessage, error) {
	return c.fetch(ctx, endpointFindAll, c.endpoints.FindAll, func(body []byte) ([]json.RawMessage, error) {
		return models.DecodeArray("stations", body)
	})
}

// GetStationSensors returns the raw sensors of one station
func (c *Client) GetStationSensors(ctx context.Context, stationID int) ([]json.RawMessage, error) {
	path := expand(c.endpoints.StationSensors, config.StationIDPlaceholder, stationID)
	return c.fetch(ctx, endpointStationSensors, path, func(body []byte) ([]json.RawMessage, error) {
		return models.DecodeArray("sensors", body)
	})
}

// GetSensorReadings returns the raw readings of one sensor, newest first as served
func (c *Client) GetSensorReadings(ctx context.Context, sensorID int) ([]json.RawMessage, error) {
	path := expand(c.endpoints.SensorData, config.SensorIDPlaceholder, sensorID)
	return c.fetch(ctx, endpointSensorData, path, models.DecodeReadingsPayload)
}

// fetch performs one GET and decodes the body, recording a single metric sample per call
func (c *Client) fetch(ctx context.Context, endpoint, path string, decode func([]byte) ([]json.RawMessage, error)) ([]json.RawMessage, error) {
	url := c.url(path)
	start := time.Now()

	resp, err := c.httpClient.Get(ctx, path)
	if err != nil {
		c.metrics.observe(endpoint, resultNetworkError, time.Since(start))
		return nil, NewNetworkError(url, 0, err)
	}

	log.Debug().
		Str("endpoint", endpoint).
		Str("url", url).
		Int("status", resp.StatusCode).
		Int("bytes", len(resp.Body)).
		Dur("duration", time.Since(start)).
		Msg("GIOS API call")

	if !resp.OK() {
		c.metrics.observe(endpoint, resultStatusError, time.Since(start))
		return nil, NewNetworkError(url, resp.StatusCode, nil)
	}

	items, err := decode(resp.Body)
	if err != nil {
		c.metrics.observe(endpoint, resultParseError, time.Since(start))
		return nil, fmt.Errorf("decoding %s response: %w", endpoint, err)
	}

	c.metrics.observe(endpoint, resultSuccess, time.Since(start))
	return items, nil
}

func (c *Client) url(path string) string {
	if resolver, ok := c.httpClient.(interface{ URL(string) string }); ok {
		return resolver.URL(path)
	}
	return path
}

func expand(template, placeholder string, id int) string {
	return strings.ReplaceAll(template, placeholder, strconv.Itoa(id))
}
