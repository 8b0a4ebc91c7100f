package models

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/rs/zerolog/log"
)

// Fetcher is what a Station needs to expand itself into sensors and readings
type Fetcher interface {
	ReadingFetcher
	GetStationSensors(ctx context.Context, stationID int) ([]json.RawMessage, error)
}

type Coordinates struct {
	Latitude  float64
	Longitude float64
}

// Location is the administrative location of a station
type Location struct {
	City     string
	Commune  string
	District string
	Province string
}

// ShortEntry is the id and name projection shown in the search table
type ShortEntry struct {
	ID   int
	Name string
}

// Station starts unexpanded; Expand attaches its sensors exactly once.
type Station struct {
	id          int
	name        string
	coordinates Coordinates
	address     *string
	location    *Location
	sensors     []*Sensor
	expanded    bool
}

func NewStation(raw json.RawMessage) (*Station, error) {
	obj, err := decodeObject("station", raw)
	if err != nil {
		return nil, err
	}

	s := &Station{}
	if err := obj.require("id", &s.id); err != nil {
		return nil, err
	}
	if err := obj.require("stationName", &s.name); err != nil {
		return nil, err
	}

	var lat, lon coordinate
	if err := obj.require("gegrLat", &lat); err != nil {
		return nil, err
	}
	if err := obj.require("gegrLon", &lon); err != nil {
		return nil, err
	}
	s.coordinates = Coordinates{Latitude: float64(lat), Longitude: float64(lon)}

	if err := obj.nullable("addressStreet", &s.address); err != nil {
		return nil, err
	}

	// Some stations have a null city; then no location field is set
	city, err := obj.nested("city")
	if err != nil {
		return nil, err
	}
	if city != nil {
		location, err := decodeLocation(city)
		if err != nil {
			return nil, err
		}
		s.location = location
	}
	return s, nil
}

func decodeLocation(city *object) (*Location, error) {
	var loc Location
	if err := city.require("name", &loc.City); err != nil {
		return nil, err
	}

	commune, err := city.nested("commune")
	if err != nil {
		return nil, err
	}
	if commune == nil {
		return nil, NewParseError(city.kind, city.name("commune"), errors.New("unexpected null"))
	}
	if err := commune.require("communeName", &loc.Commune); err != nil {
		return nil, err
	}
	if err := commune.require("districtName", &loc.District); err != nil {
		return nil, err
	}
	if err := commune.require("provinceName", &loc.Province); err != nil {
		return nil, err
	}
	return &loc, nil
}

// NewStations decodes a station directory, failing on the first malformed entry
func NewStations(raws []json.RawMessage) ([]*Station, error) {
	stations := make([]*Station, 0, len(raws))
	for i, raw := range raws {
		station, err := NewStation(raw)
		if err != nil {
			return nil, fmt.Errorf("station %d: %w", i, err)
		}
		stations = append(stations, station)
	}
	return stations, nil
}

func (s *Station) ID() int {
	return s.id
}

func (s *Station) Name() string {
	return s.name
}

func (s *Station) Coordinates() Coordinates {
	return s.coordinates
}

func (s *Station) Address() (string, bool) {
	if s.address == nil {
		return "", false
	}
	return *s.address, true
}

func (s *Station) City() (string, bool) {
	if s.location == nil {
		return "", false
	}
	return s.location.City, true
}

// Location returns city, commune, district and province together, or ok=false when the station has none
func (s *Station) Location() (Location, bool) {
	if s.location == nil {
		return Location{}, false
	}
	return *s.location, true
}

func (s *Station) Shortlist() ShortEntry {
	return ShortEntry{ID: s.id, Name: s.name}
}

func (s *Station) Expanded() bool {
	return s.expanded
}

// Sensors returns the attached sensors; nil until Expand succeeds
func (s *Station) Sensors() []*Sensor {
	if !s.expanded {
		return nil
	}
	sensors := make([]*Sensor, len(s.sensors))
	copy(sensors, s.sensors)
	return sensors
}

// Expand fetches the station's sensors, and through them their readings, one request at a time.
// It is a no-op on an expanded station. On error the station stays unexpanded.
func (s *Station) Expand(ctx context.Context, fetcher Fetcher) error {
	if s.expanded {
		return nil
	}

	raws, err := fetcher.GetStationSensors(ctx, s.id)
	if err != nil {
		return fmt.Errorf("fetching sensors for station %d: %w", s.id, err)
	}

	sensors := make([]*Sensor, 0, len(raws))
	for _, raw := range raws {
		sensor, err := NewSensor(ctx, raw, fetcher)
		if err != nil {
			return fmt.Errorf("station %d: %w", s.id, err)
		}
		log.Debug().
			Int("station_id", s.id).
			Int("sensor_id", sensor.ID()).
			Str("param", sensor.ParamFormula()).
			Int("readings", len(sensor.readings)).
			Msg("Sensor attached")
		sensors = append(sensors, sensor)
	}

	s.sensors = sensors
	s.expanded = true
	return nil
}
