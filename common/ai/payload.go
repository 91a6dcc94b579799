// Copyright (c) CurioSwitch (choko@curioswitch.org)
// SPDX-License-Identifier: BUSL-1.1

package ai

import (
	"bytes"
	"encoding/json"
	"math"
	"strconv"
	"strings"
)

// Model output is loosely typed, numbers arrive as strings and strings as null.
// These types decode whatever was sent and never fail, leaving the zero value for
// anything unusable.

// String is a JSON value decoded as a trimmed string.
type String string

func (s *String) UnmarshalJSON(b []byte) error {
	var v any
	if err := json.Unmarshal(b, &v); err != nil {
		*s = ""
		return nil //nolint:nilerr
	}
	switch v := v.(type) {
	case string:
		*s = String(strings.TrimSpace(v))
	case float64:
		*s = String(strconv.FormatFloat(v, 'f', -1, 64))
	default:
		*s = ""
	}
	return nil
}

// Int is a JSON value decoded as an integer. Valid is false for null, missing or
// non-numeric values.
type Int struct {
	Value int
	Valid bool
}

func (i *Int) UnmarshalJSON(b []byte) error {
	*i = Int{}

	var v any
	d := json.NewDecoder(bytes.NewReader(b))
	d.UseNumber()
	if err := d.Decode(&v); err != nil {
		return nil //nolint:nilerr
	}

	var f float64
	switch v := v.(type) {
	case json.Number:
		n, err := v.Float64()
		if err != nil {
			return nil //nolint:nilerr
		}
		f = n
	case string:
		n, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
		if err != nil {
			return nil //nolint:nilerr
		}
		f = n
	default:
		return nil
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return nil
	}
	*i = Int{Value: int(math.Round(f)), Valid: true}
	return nil
}

// Bool is a JSON value decoded as a boolean, accepting true and "true".
type Bool bool

func (b *Bool) UnmarshalJSON(data []byte) error {
	var v any
	if err := json.Unmarshal(data, &v); err != nil {
		*b = false
		return nil //nolint:nilerr
	}
	switch v := v.(type) {
	case bool:
		*b = Bool(v)
	case string:
		*b = Bool(strings.EqualFold(strings.TrimSpace(v), "true"))
	default:
		*b = false
	}
	return nil
}
