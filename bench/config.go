// SPDX-License-Identifier: MIT

package bench

import (
	"fmt"
	"math"
)

// Config is the serializable form of the harness options, for callers that
// load a run description from JSON.
//
//	{"pivot_tolerance": 1e-12, "svd_rank_tolerance": 0, "in_place": false, "engines": ["lu", "cholesky"]}
//
// A zero PivotTolerance or SVDRankTolerance keeps the corresponding default,
// so a document that omits them behaves like DefaultConfig. An empty Engines
// list runs every applicable engine.
type Config struct {
	PivotTolerance   float64  `json:"pivot_tolerance"`
	SVDRankTolerance float64  `json:"svd_rank_tolerance"`
	InPlace          bool     `json:"in_place"`
	Engines          []Engine `json:"engines"`
}

// DefaultConfig mirrors the defaults of Run without options.
func DefaultConfig() Config {
	return Config{PivotTolerance: DefaultPivotTolerance}
}

// Validate checks tolerances and engine names.
func (c Config) Validate() error {
	if math.IsNaN(c.PivotTolerance) || math.IsInf(c.PivotTolerance, 0) || c.PivotTolerance < 0 {
		return fmt.Errorf("bench: pivot_tolerance %v must be finite, non-negative", c.PivotTolerance)
	}
	if math.IsNaN(c.SVDRankTolerance) || math.IsInf(c.SVDRankTolerance, 0) || c.SVDRankTolerance < 0 {
		return fmt.Errorf("bench: svd_rank_tolerance %v must be finite, non-negative", c.SVDRankTolerance)
	}
	for _, e := range c.Engines {
		if !e.Valid() {
			return fmt.Errorf("engines: %q: %w", string(e), ErrUnknownEngine)
		}
	}

	return nil
}

// Options converts c into functional options for Run. It validates first so
// none of the returned setters can panic.
func (c Config) Options() ([]Option, error) {
	if err := c.Validate(); err != nil {
		return nil, err
	}
	var opts []Option
	if c.PivotTolerance > 0 {
		opts = append(opts, WithPivotTolerance(c.PivotTolerance))
	}
	if c.SVDRankTolerance > 0 {
		opts = append(opts, WithRankTolerance(c.SVDRankTolerance))
	}
	if c.InPlace {
		opts = append(opts, WithInPlace())
	}
	if len(c.Engines) > 0 {
		opts = append(opts, WithEngines(c.Engines...))
	}

	return opts, nil
}
