package models

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
)

var null = []byte("null")

// object is one decoded JSON object whose keys are checked for presence before use.
// path is the dotted prefix of nested objects, used in error messages.
type object struct {
	kind   string
	path   string
	fields map[string]json.RawMessage
}

func decodeObject(kind string, raw json.RawMessage) (*object, error) {
	return decodeNested(kind, "", raw)
}

func decodeNested(kind, path string, raw json.RawMessage) (*object, error) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || trimmed[0] != '{' {
		return nil, NewParseError(kind, strings.TrimSuffix(path, "."), errors.New("expected a JSON object"))
	}

	var fields map[string]json.RawMessage
	if err := json.Unmarshal(trimmed, &fields); err != nil {
		return nil, NewParseError(kind, strings.TrimSuffix(path, "."), err)
	}
	return &object{kind: kind, path: path, fields: fields}, nil
}

func (o *object) name(field string) string {
	return o.path + field
}

func (o *object) raw(field string) (json.RawMessage, error) {
	value, ok := o.fields[field]
	if !ok {
		return nil, NewMissingFieldError(o.kind, o.name(field))
	}
	return value, nil
}

// require decodes a present, non-null key into dst
func (o *object) require(field string, dst interface{}) error {
	value, err := o.raw(field)
	if err != nil {
		return err
	}
	if bytes.Equal(bytes.TrimSpace(value), null) {
		return NewParseError(o.kind, o.name(field), errors.New("unexpected null"))
	}
	if err := json.Unmarshal(value, dst); err != nil {
		return NewParseError(o.kind, o.name(field), err)
	}
	return nil
}

// nullable decodes a present key into dst, which should be a pointer to a pointer.
// A JSON null leaves dst nil.
func (o *object) nullable(field string, dst interface{}) error {
	value, err := o.raw(field)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(value, dst); err != nil {
		return NewParseError(o.kind, o.name(field), err)
	}
	return nil
}

// nested returns the child object under field, or nil when the value is null
func (o *object) nested(field string) (*object, error) {
	value, err := o.raw(field)
	if err != nil {
		return nil, err
	}
	if bytes.Equal(bytes.TrimSpace(value), null) {
		return nil, nil
	}
	return decodeNested(o.kind, o.name(field)+".", value)
}

// coordinate accepts both JSON numbers and numeric strings
type coordinate float64

func (c *coordinate) UnmarshalJSON(data []byte) error {
	text := string(bytes.TrimSpace(data))
	if text == "null" {
		return errors.New("coordinate is null")
	}
	if unquoted, err := strconv.Unquote(text); err == nil {
		text = strings.TrimSpace(unquoted)
	}
	value, err := strconv.ParseFloat(text, 64)
	if err != nil {
		return fmt.Errorf("invalid coordinate %s", string(data))
	}
	*c = coordinate(value)
	return nil
}

// DecodeArray splits a JSON array body into its raw elements
func DecodeArray(kind string, body []byte) ([]json.RawMessage, error) {
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) == 0 || trimmed[0] != '[' {
		return nil, NewParseError(kind, "", errors.New("expected a JSON array"))
	}

	var items []json.RawMessage
	if err := json.Unmarshal(trimmed, &items); err != nil {
		return nil, NewParseError(kind, "", err)
	}
	return items, nil
}

// DecodeReadingsPayload extracts the values list from a sensor data payload
func DecodeReadingsPayload(body []byte) ([]json.RawMessage, error) {
	obj, err := decodeObject("readings", body)
	if err != nil {
		return nil, err
	}

	values, err := obj.raw("values")
	if err != nil {
		return nil, err
	}
	if bytes.Equal(bytes.TrimSpace(values), null) {
		return nil, NewParseError("readings", "values", errors.New("values is null"))
	}

	items, err := DecodeArray("readings", values)
	if err != nil {
		var parseErr *ParseError
		if errors.As(err, &parseErr) {
			parseErr.Field = "values"
		}
		return nil, err
	}
	return items, nil
}
