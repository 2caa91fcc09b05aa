// SPDX-License-Identifier: MIT

// Package parallel runs independent per-element work across goroutines.
//
// Every batch engine in this module expresses its work as f(i) for a batch
// index i with no shared mutable state between indices, so For may split the
// index range freely. Results do not depend on the worker count.
package parallel

import (
	"runtime"
	"sync"
)

// DefaultMinChunkSize is the smallest index range handed to one goroutine.
// Small-matrix kernels are cheap, so chunks must be large enough to amortize
// the goroutine start.
const DefaultMinChunkSize = 256

// Config controls parallel execution behavior.
type Config struct {
	Enabled      bool // Whether parallel execution is enabled.
	NumWorkers   int  // Number of worker goroutines to use.
	MinChunkSize int  // Minimum items per goroutine to avoid overhead.
}

// DefaultConfig returns defaults based on CPU count.
func DefaultConfig() Config {
	n := runtime.NumCPU()
	return Config{
		Enabled:      n > 1,
		NumWorkers:   n,
		MinChunkSize: DefaultMinChunkSize,
	}
}

// Sequential returns a Config that always runs in the calling goroutine.
func Sequential() Config {
	return Config{Enabled: false, NumWorkers: 1, MinChunkSize: DefaultMinChunkSize}
}

// For executes f(i) for i in [0, n) with optional parallelism.
// Falls back to sequential execution if parallelism is disabled or n is too small.
// For returns after every f(i) has returned.
func For(n int, f func(i int), cfg Config) {
	if !cfg.Enabled || cfg.NumWorkers < 2 || n < cfg.MinChunkSize {
		for i := 0; i < n; i++ {
			f(i)
		}
		return
	}

	var wg sync.WaitGroup
	chunkSize := max((n+cfg.NumWorkers-1)/cfg.NumWorkers, cfg.MinChunkSize, 1)

	for start := 0; start < n; start += chunkSize {
		end := min(start+chunkSize, n)
		wg.Add(1)
		go func(s, e int) {
			defer wg.Done()
			for i := s; i < e; i++ {
				f(i)
			}
		}(start, end)
	}
	wg.Wait()
}
