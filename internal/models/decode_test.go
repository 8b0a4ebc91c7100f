package models

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeArray(t *testing.T) {
	items, err := DecodeArray("stations", []byte(` [{"id":1}, {"id":2}] `))
	require.NoError(t, err)
	assert.Len(t, items, 2)

	for _, body := range []string{``, `{}`, `null`, `<html>`, `[{"id":1}`} {
		_, err := DecodeArray("stations", []byte(body))
		var parseErr *ParseError
		assert.True(t, errors.As(err, &parseErr), "body %q", body)
	}
}

func TestDecodeReadingsPayload(t *testing.T) {
	items, err := DecodeReadingsPayload([]byte(`{"key":"PM10","values":[{"date":"d2","value":2},{"date":"d1","value":null}]}`))
	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.JSONEq(t, `{"date":"d2","value":2}`, string(items[0]))

	_, err = DecodeReadingsPayload([]byte(`{"key":"PM10"}`))
	var missing *MissingFieldError
	require.True(t, errors.As(err, &missing))
	assert.Equal(t, "values", missing.Field)

	for _, body := range []string{`[]`, `{"values":null}`, `{"values":{}}`} {
		_, err := DecodeReadingsPayload([]byte(body))
		var parseErr *ParseError
		assert.True(t, errors.As(err, &parseErr), "body %q", body)
	}
}

func TestCoordinateAcceptsNumbersAndStrings(t *testing.T) {
	var c coordinate
	require.NoError(t, c.UnmarshalJSON([]byte(`52.2297`)))
	assert.Equal(t, coordinate(52.2297), c)

	require.NoError(t, c.UnmarshalJSON([]byte(`" 21.0122 "`)))
	assert.Equal(t, coordinate(21.0122), c)

	assert.Error(t, c.UnmarshalJSON([]byte(`"east"`)))
	assert.Error(t, c.UnmarshalJSON([]byte(`null`)))
}

func TestErrorMessages(t *testing.T) {
	assert.Equal(t, `station: missing field "city"`, NewMissingFieldError("station", "city").Error())
	assert.Equal(t, `reading: parsing field "value": bad`, NewParseError("reading", "value", errors.New("bad")).Error())
	assert.Equal(t, `stations: parsing: bad`, NewParseError("stations", "", errors.New("bad")).Error())
}
