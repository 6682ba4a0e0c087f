// Package imagegen resolves loosely-typed generation requests and manages
// acquisition of the underlying Z-Image pipeline.
//
// dimensions.go turns an aspect-ratio selection plus optional custom
// width/height into a validated (width, height) pair aligned to the model's
// 16-pixel grid.
package imagegen

import (
	"fmt"
	"os"
	"sort"

	"gopkg.in/yaml.v3"
)

// Grid and default constants for dimension resolution.
const (
	// DimensionStep is the hardware-imposed alignment; every resolved
	// dimension is a multiple of this.
	DimensionStep = 16

	// DefaultDimension is the fallback edge length for malformed custom input
	// and unknown presets.
	DefaultDimension = 1024

	// AspectCustom selects manual width/height instead of a preset.
	AspectCustom = "custom"
)

// Dimensions is a (width, height) pair in pixels.
type Dimensions struct {
	Width  int `yaml:"width"`
	Height int `yaml:"height"`
}

// AspectTable maps aspect-ratio preset names to their dimensions.
type AspectTable map[string]Dimensions

// DefaultAspectTable returns the built-in preset table.
func DefaultAspectTable() AspectTable {
	return AspectTable{
		"1:1":  {Width: 1024, Height: 1024},
		"16:9": {Width: 1280, Height: 720},
		"9:16": {Width: 720, Height: 1280},
		"4:3":  {Width: 1088, Height: 816},
		"3:4":  {Width: 816, Height: 1088},
	}
}

// LoadAspectTable reads preset overrides from a YAML file and merges them
// over the built-in table. Entries whose dimensions are not positive
// multiples of the grid step are rejected.
//
// File format:
//
//	"21:9":
//	  width: 2048
//	  height: 864
func LoadAspectTable(path string) (AspectTable, error) {
	table := DefaultAspectTable()

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read aspect presets: %w", err)
	}

	overrides := AspectTable{}
	if err := yaml.Unmarshal(data, &overrides); err != nil {
		return nil, fmt.Errorf("parse aspect presets: %w", err)
	}

	for name, d := range overrides {
		if d.Width < DimensionStep || d.Height < DimensionStep ||
			d.Width%DimensionStep != 0 || d.Height%DimensionStep != 0 {
			return nil, fmt.Errorf("aspect preset %q: %dx%d is not a positive multiple of %d",
				name, d.Width, d.Height, DimensionStep)
		}
		table[name] = d
	}

	return table, nil
}

// Names returns the preset names in stable sorted order, with "custom"
// appended last the way the front end lists choices.
func (t AspectTable) Names() []string {
	names := make([]string, 0, len(t)+1)
	for name := range t {
		names = append(names, name)
	}
	sort.Strings(names)
	return append(names, AspectCustom)
}

// Resolve turns an aspect selection plus raw custom dimensions into a
// validated (width, height) pair.
//
// A known preset returns exactly the table's dimensions. An unknown preset
// falls back to the default square rather than failing. The "custom"
// selection coerces each raw value to a positive integer (fallback 1024),
// floors it to the nearest multiple of 16, and clamps at 16 so a tiny input
// can never resolve to a zero dimension.
//
// Pure function of its inputs.
func (t AspectTable) Resolve(aspect, rawHeight, rawWidth string) (width, height int) {
	if aspect != AspectCustom {
		d, ok := t[aspect]
		if !ok {
			return DefaultDimension, DefaultDimension
		}
		return d.Width, d.Height
	}

	height = coercePositiveInt(rawHeight, DefaultDimension)
	width = coercePositiveInt(rawWidth, DefaultDimension)

	height = clampMin(height/DimensionStep*DimensionStep, DimensionStep)
	width = clampMin(width/DimensionStep*DimensionStep, DimensionStep)
	return width, height
}

// ResolveDimensions resolves against the built-in preset table.
func ResolveDimensions(aspect, rawHeight, rawWidth string) (width, height int) {
	return DefaultAspectTable().Resolve(aspect, rawHeight, rawWidth)
}
