package models

import "encoding/json"

// Reading is one timestamped measurement. The date is kept exactly as served.
type Reading struct {
	date  string
	value *float64
}

func NewReading(raw json.RawMessage) (Reading, error) {
	obj, err := decodeObject("reading", raw)
	if err != nil {
		return Reading{}, err
	}

	var r Reading
	if err := obj.require("date", &r.date); err != nil {
		return Reading{}, err
	}
	if err := obj.nullable("value", &r.value); err != nil {
		return Reading{}, err
	}
	return r, nil
}

func (r Reading) Date() string {
	return r.date
}

// Value returns the measured value; ok is false for a missing measurement
func (r Reading) Value() (value float64, ok bool) {
	if r.value == nil {
		return 0, false
	}
	return *r.value, true
}
