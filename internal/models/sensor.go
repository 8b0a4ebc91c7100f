package models

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
)

// ReadingFetcher returns the raw readings of one sensor, newest first
type ReadingFetcher interface {
	GetSensorReadings(ctx context.Context, sensorID int) ([]json.RawMessage, error)
}

// Param describes the quantity a sensor measures
type Param struct {
	Name    string
	Formula string
	Code    string
	ID      int
}

type Sensor struct {
	id       int
	param    Param
	readings []Reading
}

// NewSensor decodes a sensor and eagerly fetches its readings, stored oldest first
func NewSensor(ctx context.Context, raw json.RawMessage, fetcher ReadingFetcher) (*Sensor, error) {
	sensor, err := decodeSensor(raw)
	if err != nil {
		return nil, err
	}

	values, err := fetcher.GetSensorReadings(ctx, sensor.id)
	if err != nil {
		return nil, fmt.Errorf("fetching readings for sensor %d: %w", sensor.id, err)
	}

	readings, err := newReadings(values)
	if err != nil {
		return nil, fmt.Errorf("sensor %d: %w", sensor.id, err)
	}
	sensor.readings = readings
	return sensor, nil
}

func decodeSensor(raw json.RawMessage) (*Sensor, error) {
	obj, err := decodeObject("sensor", raw)
	if err != nil {
		return nil, err
	}

	s := &Sensor{}
	if err := obj.require("id", &s.id); err != nil {
		return nil, err
	}

	param, err := obj.nested("param")
	if err != nil {
		return nil, err
	}
	if param == nil {
		return nil, NewParseError("sensor", "param", errors.New("unexpected null"))
	}
	if err := param.require("paramName", &s.param.Name); err != nil {
		return nil, err
	}
	if err := param.require("paramFormula", &s.param.Formula); err != nil {
		return nil, err
	}
	if err := param.require("paramCode", &s.param.Code); err != nil {
		return nil, err
	}
	if err := param.require("idParam", &s.param.ID); err != nil {
		return nil, err
	}
	return s, nil
}

// newReadings reverses the newest-first API order into chronological order
func newReadings(values []json.RawMessage) ([]Reading, error) {
	readings := make([]Reading, len(values))
	for i, value := range values {
		reading, err := NewReading(value)
		if err != nil {
			return nil, fmt.Errorf("reading %d: %w", i, err)
		}
		readings[len(values)-1-i] = reading
	}
	return readings, nil
}

func (s *Sensor) ID() int {
	return s.id
}

func (s *Sensor) Param() string {
	return s.param.Name
}

// ParamFormula is the short symbol used as the plot legend label
func (s *Sensor) ParamFormula() string {
	return s.param.Formula
}

func (s *Sensor) ParamCode() string {
	return s.param.Code
}

func (s *Sensor) ParamID() int {
	return s.param.ID
}

// Readings returns a copy of the readings, oldest first
func (s *Sensor) Readings() []Reading {
	readings := make([]Reading, len(s.readings))
	copy(readings, s.readings)
	return readings
}
