/*
Copyright (C) 2026 Friends Incode

SPDX-License-Identifier: AGPL-3.0-or-later
*/

package params

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// BlockSpec is a fixed-duration block the organiser pins at a named insertion point.
type BlockSpec struct {
	Point    string `yaml:"point" json:"point"`
	Label    string `yaml:"label" json:"label"`
	Duration int    `yaml:"duration" json:"duration"`
}

// File is the on-disk form of a generation request.
type File struct {
	Parameters map[string]any `yaml:"parameters" json:"parameters"`
	Blocks     []BlockSpec    `yaml:"blocks,omitempty" json:"blocks,omitempty"`
}

// LoadFile reads a YAML parameter file.
func LoadFile(path string) (*File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read parameter file: %w", err)
	}
	return ParseFile(data)
}

// ParseFile decodes YAML (or JSON, which is valid YAML) parameter data.
func ParseFile(data []byte) (*File, error) {
	var f File
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse parameter file: %w", err)
	}
	if f.Parameters == nil {
		return nil, fmt.Errorf("%w: parameters section", ErrMissingParameter)
	}
	for i, b := range f.Blocks {
		if b.Point == "" {
			return nil, fmt.Errorf("%w: block %d has no point", ErrInvalidParameter, i)
		}
		if b.Duration < 0 {
			return nil, fmt.Errorf("%w: block %q has negative duration", ErrInvalidParameter, b.Point)
		}
	}
	return &f, nil
}

// Load resolves the file's parameters, overlaid on base when base is non-nil.
func (f *File) Load(base map[string]any) (ScheduleParameters, error) {
	values := f.Parameters
	if base != nil {
		values = Overlay(base, f.Parameters)
	}
	return Load(MapSource(values))
}
