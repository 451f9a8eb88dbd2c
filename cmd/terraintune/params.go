package main

import (
	"github.com/pthm-cable/sandfall/config"
)

// ParamSpec is one tunable terrain field with its search bounds.
type ParamSpec struct {
	Name     string
	Path     string // YAML path, for reports
	Min, Max float64
	field    func(*config.TerrainConfig) *float64
}

func (s ParamSpec) clamp(v float64) float64 { return min(max(v, s.Min), s.Max) }

// ParamVector maps between search vectors and terrain configs. Octaves,
// seed and element are never tuned.
type ParamVector struct {
	Specs []ParamSpec
}

// NewParamVector returns the standard search space.
func NewParamVector() *ParamVector {
	return &ParamVector{Specs: []ParamSpec{
		{"base_height", "terrain.base_height", 0.02, 0.6, func(t *config.TerrainConfig) *float64 { return &t.BaseHeight }},
		{"amplitude", "terrain.amplitude", 0, 0.4, func(t *config.TerrainConfig) *float64 { return &t.Amplitude }},
		{"scale", "terrain.scale", 0.002, 0.08, func(t *config.TerrainConfig) *float64 { return &t.Scale }},
		{"alpha", "terrain.alpha", 1.2, 3.5, func(t *config.TerrainConfig) *float64 { return &t.Alpha }},
		{"beta", "terrain.beta", 1.5, 3.5, func(t *config.TerrainConfig) *float64 { return &t.Beta }},
	}}
}

// Dim returns the number of parameters.
func (pv *ParamVector) Dim() int { return len(pv.Specs) }

// Normalize maps raw values onto [0, 1] within each parameter's bounds.
func (pv *ParamVector) Normalize(raw []float64) []float64 {
	out := make([]float64, len(pv.Specs))
	for i, s := range pv.Specs {
		out[i] = (raw[i] - s.Min) / (s.Max - s.Min)
	}
	return out
}

// Denormalize is the inverse of Normalize.
func (pv *ParamVector) Denormalize(unit []float64) []float64 {
	out := make([]float64, len(pv.Specs))
	for i, s := range pv.Specs {
		out[i] = s.Min + unit[i]*(s.Max-s.Min)
	}
	return out
}

// Clamp returns v with every entry inside its bounds.
func (pv *ParamVector) Clamp(v []float64) []float64 {
	out := make([]float64, len(pv.Specs))
	for i, s := range pv.Specs {
		out[i] = s.clamp(v[i])
	}
	return out
}

// Apply returns t with the clamped values written into the tuned fields.
func (pv *ParamVector) Apply(t config.TerrainConfig, values []float64) config.TerrainConfig {
	for i, s := range pv.Specs {
		*s.field(&t) = s.clamp(values[i])
	}
	return t
}

// Extract reads the tuned fields of t, clamped into bounds.
func (pv *ParamVector) Extract(t config.TerrainConfig) []float64 {
	out := make([]float64, len(pv.Specs))
	for i, s := range pv.Specs {
		out[i] = s.clamp(*s.field(&t))
	}
	return out
}
