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

import "github.com/ajroetker/go-gemm/hwy"

// CacheParams defines the blocking parameters for the GotoBLAS-style
// 5-loop matmul algorithm.
//
// The parameters are tuned for cache hierarchy:
//   - Mr × Nr: Micro-tile dimensions (register blocking)
//   - Kc: K-blocking for L1 cache (packed A panel height)
//   - Mc: M-blocking for L2 cache (packed A panel width)
//   - Nc: N-blocking for L3 cache (packed B panel width)
//
// Memory layout after packing:
//   - Packed A: [ceil(Mc/Mr), Kc, Mr] - K-first within micro-panels
//   - Packed B: [ceil(Nc/Nr), Kc, Nr] - K-first within micro-panels
type CacheParams struct {
	Mr int // Micro-tile rows (register blocking)
	Nr int // Micro-tile columns (register blocking, in elements not vectors)
	Kc int // K-blocking (L1 cache)
	Mc int // M-blocking (L2 cache)
	Nc int // N-blocking (L3 cache)
}

// PackedASize returns the buffer size needed for packed A matrix.
// Packed A layout: ceil(Mc/Mr) micro-panels, each Mr × Kc elements.
func (p CacheParams) PackedASize() int {
	numPanels := (p.Mc + p.Mr - 1) / p.Mr
	return numPanels * p.Mr * p.Kc
}

// PackedBSize returns the buffer size needed for packed B matrix.
// Packed B layout: ceil(Nc/Nr) micro-panels, each Kc × Nr elements.
func (p CacheParams) PackedBSize() int {
	numPanels := (p.Nc + p.Nr - 1) / p.Nr
	return numPanels * p.Kc * p.Nr
}

// ScratchSize returns the size of the micro-kernel scratch tile W.
func (p CacheParams) ScratchSize() int {
	return p.Mr * p.Nr
}

// SmallPanelWidth is the width of the diagonal blocks of the triangular
// drivers, max(Mr, Nr).
func (p CacheParams) SmallPanelWidth() int {
	return max(p.Mr, p.Nr)
}

// RegisterTile returns the (mr, nr) register tile for T.
//
// Real types use 4 rows by two packets (8 columns): 8 accumulators plus
// two live B packets and one broadcast fit the 16 registers of AVX2 and
// leave headroom on NEON and AVX-512. Complex types use one packet per
// row because each complex multiply needs twice the registers.
func RegisterTile[T hwy.Scalar]() (mr, nr int) {
	if hwy.IsComplex[T]() {
		return 4, hwy.Lanes
	}
	return 4, 2 * hwy.Lanes
}

// DefaultCacheSizes returns the L1/L2/L3 sizes in bytes assumed for the
// detected dispatch level. These are conservative estimates that should work
// well across most CPUs in each architecture family.
func DefaultCacheSizes() (l1, l2, l3 int) {
	switch hwy.CurrentLevel() {
	case hwy.DispatchAVX512:
		// Skylake-X and later: 32KB L1d, 1MB L2, 30+MB L3
		return 32 << 10, 1 << 20, 32 << 20
	case hwy.DispatchAVX2:
		// Haswell and later: 32KB L1d, 256KB L2, 8+MB L3
		return 32 << 10, 256 << 10, 8 << 20
	case hwy.DispatchNEON:
		// Cortex-A76 / Apple cores: 64KB L1d, 1MB L2, 4+MB L3
		return 64 << 10, 1 << 20, 4 << 20
	default:
		return 32 << 10, 256 << 10, 4 << 20
	}
}
