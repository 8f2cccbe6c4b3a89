/*
Copyright (C) 2026 Friends Incode

SPDX-License-Identifier: AGPL-3.0-or-later
*/

package params

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"
)

var (
	// ErrMissingParameter is returned when a required key is absent.
	ErrMissingParameter = errors.New("missing parameter")
	// ErrInvalidParameter is returned when a value has the wrong type or range.
	ErrInvalidParameter = errors.New("invalid parameter")
)

// Source is a read-only lookup of typed parameter values by key.
type Source interface {
	Int(key string) (int, error)
	Bool(key string) (bool, error)
	TimeOfDay(key string) (TimeOfDay, error)
	Date(key string) (time.Time, error)
}

// TimeOfDay is a wall-clock hour and minute.
type TimeOfDay struct {
	Hour   int
	Minute int
}

// String renders the time as HH:MM.
func (t TimeOfDay) String() string {
	return fmt.Sprintf("%02d:%02d", t.Hour, t.Minute)
}

// ParseTimeOfDay parses HH:MM.
func ParseTimeOfDay(s string) (TimeOfDay, error) {
	hh, mm, ok := strings.Cut(strings.TrimSpace(s), ":")
	if !ok {
		return TimeOfDay{}, fmt.Errorf("%w: time of day %q", ErrInvalidParameter, s)
	}
	h, err := strconv.Atoi(hh)
	if err != nil || h < 0 || h > 23 {
		return TimeOfDay{}, fmt.Errorf("%w: hour in %q", ErrInvalidParameter, s)
	}
	m, err := strconv.Atoi(mm)
	if err != nil || m < 0 || m > 59 {
		return TimeOfDay{}, fmt.Errorf("%w: minute in %q", ErrInvalidParameter, s)
	}
	return TimeOfDay{Hour: h, Minute: m}, nil
}

// MapSource serves parameters from decoded YAML or JSON values.
type MapSource map[string]any

func (m MapSource) lookup(key string) (any, error) {
	v, ok := m[key]
	if !ok || v == nil {
		return nil, fmt.Errorf("%w: %s", ErrMissingParameter, key)
	}
	return v, nil
}

// Int returns an integer value. Whole floats from JSON decoding are accepted.
func (m MapSource) Int(key string) (int, error) {
	v, err := m.lookup(key)
	if err != nil {
		return 0, err
	}
	switch val := v.(type) {
	case int:
		return val, nil
	case int64:
		return int(val), nil
	case uint64:
		return int(val), nil
	case float64:
		if val != math.Trunc(val) {
			return 0, fmt.Errorf("%w: %s is not a whole number", ErrInvalidParameter, key)
		}
		return int(val), nil
	case string:
		n, err := strconv.Atoi(strings.TrimSpace(val))
		if err != nil {
			return 0, fmt.Errorf("%w: %s=%q", ErrInvalidParameter, key, val)
		}
		return n, nil
	}
	return 0, fmt.Errorf("%w: %s has type %T", ErrInvalidParameter, key, v)
}

// Bool returns a boolean value.
func (m MapSource) Bool(key string) (bool, error) {
	v, err := m.lookup(key)
	if err != nil {
		return false, err
	}
	switch val := v.(type) {
	case bool:
		return val, nil
	case string:
		b, err := strconv.ParseBool(strings.TrimSpace(val))
		if err != nil {
			return false, fmt.Errorf("%w: %s=%q", ErrInvalidParameter, key, val)
		}
		return b, nil
	}
	return false, fmt.Errorf("%w: %s has type %T", ErrInvalidParameter, key, v)
}

// TimeOfDay returns an HH:MM value.
func (m MapSource) TimeOfDay(key string) (TimeOfDay, error) {
	v, err := m.lookup(key)
	if err != nil {
		return TimeOfDay{}, err
	}
	s, ok := v.(string)
	if !ok {
		return TimeOfDay{}, fmt.Errorf("%w: %s has type %T", ErrInvalidParameter, key, v)
	}
	t, err := ParseTimeOfDay(s)
	if err != nil {
		return TimeOfDay{}, fmt.Errorf("%s: %w", key, err)
	}
	return t, nil
}

// Date returns a calendar date. YAML timestamps and YYYY-MM-DD strings are accepted.
func (m MapSource) Date(key string) (time.Time, error) {
	v, err := m.lookup(key)
	if err != nil {
		return time.Time{}, err
	}
	switch val := v.(type) {
	case time.Time:
		return time.Date(val.Year(), val.Month(), val.Day(), 0, 0, 0, 0, time.UTC), nil
	case string:
		val = strings.TrimSpace(val)
		if d, err := time.Parse("2006-01-02", val); err == nil {
			return d, nil
		}
		// Stored plans carry the date as a full timestamp.
		d, err := time.Parse(time.RFC3339, val)
		if err != nil {
			return time.Time{}, fmt.Errorf("%w: %s=%q", ErrInvalidParameter, key, val)
		}
		return time.Date(d.Year(), d.Month(), d.Day(), 0, 0, 0, 0, time.UTC), nil
	}
	return time.Time{}, fmt.Errorf("%w: %s has type %T", ErrInvalidParameter, key, v)
}

// MarshalText renders HH:MM.
func (t TimeOfDay) MarshalText() ([]byte, error) {
	return []byte(t.String()), nil
}

// UnmarshalText parses HH:MM.
func (t *TimeOfDay) UnmarshalText(b []byte) error {
	v, err := ParseTimeOfDay(string(b))
	if err != nil {
		return err
	}
	*t = v
	return nil
}
