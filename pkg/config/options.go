// Package config loads analysis options from JSON. Every field is
// optional; the Get* accessors supply defaults for anything left out, so
// partial files are safe.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/chazu/arborhull/pkg/tree"
)

// Defaults applied when a field is absent.
const (
	DefaultEngineTimeout = 30 * time.Second
	DefaultMinNodes      = 3
	DefaultHullPoints    = "all"
	DefaultUnit          = "um"
)

// Options is the root analysis configuration.
type Options struct {
	EngineTimeout     *string  `json:"engine_timeout,omitempty"` // duration string like "30s"
	MinNodes          *int     `json:"min_nodes,omitempty"`
	HullPoints        *string  `json:"hull_points,omitempty"` // all, tips or branch points (and synonyms)
	SplitCompartments *bool    `json:"split_compartments,omitempty"`
	Unit              *string  `json:"unit,omitempty"`
	Metrics           []string `json:"metrics,omitempty"` // subset written to tables; empty means all
}

// Helper functions to create pointers
func ptrBool(v bool) *bool       { return &v }
func ptrInt(v int) *int          { return &v }
func ptrString(v string) *string { return &v }

// Empty returns Options with every field unset.
func Empty() *Options {
	return &Options{}
}

// LoadOptions loads Options from a JSON file. The file must have a .json
// extension and be under 1MB.
func LoadOptions(path string) (*Options, error) {
	cleanPath := filepath.Clean(path)
	if ext := filepath.Ext(cleanPath); ext != ".json" {
		return nil, fmt.Errorf("config file must have .json extension, got %q", ext)
	}

	fileInfo, err := os.Stat(cleanPath)
	if err != nil {
		return nil, fmt.Errorf("failed to stat config file: %w", err)
	}
	const maxFileSize = 1 * 1024 * 1024 // 1MB
	if fileInfo.Size() > maxFileSize {
		return nil, fmt.Errorf("config file too large: %d bytes (max %d)", fileInfo.Size(), maxFileSize)
	}

	data, err := os.ReadFile(cleanPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	opts := Empty()
	if err := json.Unmarshal(data, opts); err != nil {
		return nil, fmt.Errorf("failed to parse config JSON: %w", err)
	}
	if err := opts.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return opts, nil
}

// Validate checks the values that are set.
func (o *Options) Validate() error {
	if o.EngineTimeout != nil && *o.EngineTimeout != "" {
		d, err := time.ParseDuration(*o.EngineTimeout)
		if err != nil {
			return fmt.Errorf("invalid engine_timeout '%s': %w", *o.EngineTimeout, err)
		}
		if d <= 0 {
			return fmt.Errorf("engine_timeout must be positive, got %s", d)
		}
	}

	if o.MinNodes != nil && *o.MinNodes < 0 {
		return fmt.Errorf("min_nodes must be non-negative, got %d", *o.MinNodes)
	}

	if o.HullPoints != nil {
		if _, err := tree.ParsePointKind(*o.HullPoints); err != nil {
			return fmt.Errorf("invalid hull_points: %w", err)
		}
	}

	for i, m := range o.Metrics {
		if m == "" {
			return fmt.Errorf("metrics[%d] is empty", i)
		}
	}
	return nil
}

// GetEngineTimeout parses and returns EngineTimeout.
func (o *Options) GetEngineTimeout() time.Duration {
	if o.EngineTimeout == nil || *o.EngineTimeout == "" {
		return DefaultEngineTimeout
	}
	d, err := time.ParseDuration(*o.EngineTimeout)
	if err != nil || d <= 0 {
		return DefaultEngineTimeout
	}
	return d
}

// GetMinNodes returns min_nodes or the default.
func (o *Options) GetMinNodes() int {
	if o.MinNodes == nil {
		return DefaultMinNodes
	}
	return *o.MinNodes
}

// GetHullPoints returns hull_points or the default.
func (o *Options) GetHullPoints() string {
	if o.HullPoints == nil || *o.HullPoints == "" {
		return DefaultHullPoints
	}
	return *o.HullPoints
}

// GetSplitCompartments returns split_compartments or false.
func (o *Options) GetSplitCompartments() bool {
	if o.SplitCompartments == nil {
		return false
	}
	return *o.SplitCompartments
}

// GetUnit returns unit or the default.
func (o *Options) GetUnit() string {
	if o.Unit == nil || *o.Unit == "" {
		return DefaultUnit
	}
	return *o.Unit
}

// SetSplitCompartments overrides split_compartments, e.g. from a flag.
func (o *Options) SetSplitCompartments(v bool) { o.SplitCompartments = ptrBool(v) }

// SetMinNodes overrides min_nodes.
func (o *Options) SetMinNodes(v int) { o.MinNodes = ptrInt(v) }

// SetHullPoints overrides hull_points.
func (o *Options) SetHullPoints(v string) { o.HullPoints = ptrString(v) }
