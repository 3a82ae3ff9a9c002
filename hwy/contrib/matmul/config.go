// Copyright 2025 go-highway Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package matmul

import (
	"runtime"
	"sync/atomic"

	"github.com/ajroetker/go-gemm/hwy/contrib/dense"
)

// DefaultParallelThreshold is the default minimum m*n*k before the GEMM
// driver splits work across workers. The parallel driver has higher setup
// cost, so we need larger products to benefit.
const DefaultParallelThreshold = 128 * 128 * 128

// Config holds the process-wide tuning knobs of the product kernels.
type Config struct {
	L1CacheBytes int
	L2CacheBytes int
	L3CacheBytes int

	// MaxWorkers caps the number of workers of the parallel GEMM driver.
	// Values <= 1 disable parallelism.
	MaxWorkers int

	// PreferParallelThreshold is the minimum m*n*k for the parallel driver.
	PreferParallelThreshold int
}

// DefaultConfig returns cache sizes assumed for the detected SIMD level and
// MaxWorkers = GOMAXPROCS.
func DefaultConfig() Config {
	l1, l2, l3 := DefaultCacheSizes()
	return Config{
		L1CacheBytes:            l1,
		L2CacheBytes:            l2,
		L3CacheBytes:            l3,
		MaxWorkers:              runtime.GOMAXPROCS(0),
		PreferParallelThreshold: DefaultParallelThreshold,
	}
}

// Validate rejects non-positive cache sizes and a negative threshold.
func (c Config) Validate() error {
	switch {
	case c.L1CacheBytes <= 0:
		return &dense.Error{Kind: dense.KindUnsupportedMode, Op: "config", Arg: "L1CacheBytes", Got: c.L1CacheBytes, Want: 1}
	case c.L2CacheBytes <= 0:
		return &dense.Error{Kind: dense.KindUnsupportedMode, Op: "config", Arg: "L2CacheBytes", Got: c.L2CacheBytes, Want: 1}
	case c.L3CacheBytes <= 0:
		return &dense.Error{Kind: dense.KindUnsupportedMode, Op: "config", Arg: "L3CacheBytes", Got: c.L3CacheBytes, Want: 1}
	case c.PreferParallelThreshold < 0:
		return &dense.Error{Kind: dense.KindUnsupportedMode, Op: "config", Arg: "PreferParallelThreshold", Got: c.PreferParallelThreshold}
	}
	return nil
}

// current is read on every product and written rarely.
var current atomic.Pointer[Config]

func init() {
	c := DefaultConfig()
	current.Store(&c)
}

// CurrentConfig returns the process-wide configuration.
func CurrentConfig() Config {
	return *current.Load()
}

// SetConfig replaces the process-wide configuration after validating it.
func SetConfig(c Config) error {
	if err := c.Validate(); err != nil {
		return err
	}
	current.Store(&c)
	return nil
}
