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
	"math"

	"github.com/samber/lo"

	"github.com/ajroetker/go-gemm/hwy"
	"github.com/ajroetker/go-gemm/hwy/contrib/dense"
)

// Dynamic marks a dimension that is not known when planning.
const Dynamic = -1

// maxPackedElems bounds a single packed buffer. Larger plans are reported
// as allocation failures instead of attempting the allocation.
const maxPackedElems = 1 << 36

// ComputeBlocking plans (Kc, Mc, Nc) for elements of elemSize bytes and an
// mr x nr register tile:
//
//   - Kc keeps an mr x Kc slice of packed A, a Kc x nr slice of packed B and
//     the mr x nr tile of C resident in L1;
//   - Mc*Kc*elemSize stays within half of L2;
//   - Kc*Nc*elemSize stays within half of L3.
//
// Kc is a multiple of nr, Mc of mr and Nc of nr unless clamped to a known
// dimension. Dimensions passed as Dynamic are not clamped.
func ComputeBlocking(elemSize, mr, nr int, cfg Config, m, n, k int) CacheParams {
	l1 := max(cfg.L1CacheBytes/elemSize, 1)
	l2 := max(cfg.L2CacheBytes/elemSize, 1)
	l3 := max(cfg.L3CacheBytes/elemSize, 1)

	kc := (l1 - mr*nr) / (mr + nr)
	kc = max(kc/nr*nr, nr)
	if k != Dynamic {
		kc = lo.Clamp(kc, 1, max(k, 1))
	}

	mc := l2 / 2 / kc
	mc = max(mc/mr*mr, mr)
	if m != Dynamic {
		mc = lo.Clamp(mc, 1, max(m, 1))
	}

	nc := l3 / 2 / kc
	nc = max(nc/nr*nr, nr)
	if n != Dynamic {
		nc = lo.Clamp(nc, 1, max(n, 1))
	}

	return CacheParams{Mr: mr, Nr: nr, Kc: kc, Mc: mc, Nc: nc}
}

// BlockingFor plans the blocking of an m x n x k product of T.
func BlockingFor[T hwy.Scalar](cfg Config, m, n, k int) CacheParams {
	mr, nr := RegisterTile[T]()
	return ComputeBlocking(hwy.SizeOf[T](), mr, nr, cfg, m, n, k)
}

// BlockingHandle owns a plan and the packed buffers of the sequential
// driver. A handle can be reused across products of any shape: the plan
// only bounds the block sizes, never the problem size.
type BlockingHandle[T hwy.Scalar] struct {
	params  CacheParams
	packedA []T
	packedB []T
	w       []T
}

// NewBlockingHandle plans an m x n x k product (any may be Dynamic) with cfg
// and allocates the packed buffers.
func NewBlockingHandle[T hwy.Scalar](cfg Config, m, n, k int) (*BlockingHandle[T], error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return newBlockingHandle[T](BlockingFor[T](cfg, m, n, k))
}

func newBlockingHandle[T hwy.Scalar](p CacheParams) (*BlockingHandle[T], error) {
	h := &BlockingHandle[T]{params: p}
	if err := h.alloc(); err != nil {
		return nil, err
	}
	return h, nil
}

func (h *BlockingHandle[T]) alloc() error {
	p := h.params
	if _, ok := mulChecked(roundUp(p.Mc, p.Mr), p.Kc); !ok || p.PackedASize() > maxPackedElems {
		return dense.AllocError("blocking", "packedA", 0, p.PackedASize())
	}
	if _, ok := mulChecked(roundUp(p.Nc, p.Nr), p.Kc); !ok || p.PackedBSize() > maxPackedElems {
		return dense.AllocError("blocking", "packedB", 0, p.PackedBSize())
	}
	sizeA, sizeB := p.PackedASize(), p.PackedBSize()
	h.packedA = hwy.AlignedSlice[T](sizeA)
	h.packedB = hwy.AlignedSlice[T](sizeB)
	h.w = hwy.AlignedSlice[T](h.params.ScratchSize())
	return nil
}

// Reset replans the handle for an m x n x k product with cfg. The packed
// buffers are kept when they are large enough for the new plan.
func (h *BlockingHandle[T]) Reset(cfg Config, m, n, k int) error {
	if err := cfg.Validate(); err != nil {
		return err
	}
	h.params = BlockingFor[T](cfg, m, n, k)
	if h.check("blocking") == nil {
		return nil
	}
	return h.alloc()
}

// Params returns the plan held by the handle.
func (h *BlockingHandle[T]) Params() CacheParams {
	return h.params
}

// Kc returns the depth block width.
func (h *BlockingHandle[T]) Kc() int { return h.params.Kc }

// Mc returns the row block width.
func (h *BlockingHandle[T]) Mc() int { return h.params.Mc }

// Nc returns the column block width.
func (h *BlockingHandle[T]) Nc() int { return h.params.Nc }

// check verifies the handle against the register tile of T and its buffers
// against its plan.
func (h *BlockingHandle[T]) check(op string) error {
	if h == nil {
		return dense.AllocError(op, "blocking", 0, 1)
	}
	mr, nr := RegisterTile[T]()
	if h.params.Mr != mr || h.params.Nr != nr || h.params.Kc < 1 || h.params.Mc < 1 || h.params.Nc < 1 {
		return &dense.Error{Kind: dense.KindAllocation, Op: op, Arg: "blocking", Msg: "plan does not match the register tile"}
	}
	if want := h.params.PackedASize(); len(h.packedA) < want {
		return dense.AllocError(op, "blocking.packedA", len(h.packedA), want)
	}
	if want := h.params.PackedBSize(); len(h.packedB) < want {
		return dense.AllocError(op, "blocking.packedB", len(h.packedB), want)
	}
	if len(h.w) < h.params.ScratchSize() {
		return dense.AllocError(op, "blocking.w", len(h.w), h.params.ScratchSize())
	}
	return nil
}

func roundUp(x, m int) int {
	return (x + m - 1) / m * m
}

func mulChecked(a, b int) (int, bool) {
	if a < 0 || b < 0 {
		return 0, false
	}
	if a != 0 && b > math.MaxInt/a {
		return 0, false
	}
	return a * b, true
}
