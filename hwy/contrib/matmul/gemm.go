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
	"github.com/ajroetker/go-gemm/hwy"
	"github.com/ajroetker/go-gemm/hwy/contrib/dense"
	"github.com/ajroetker/go-gemm/hwy/contrib/workerpool"
)

type parallelMode uint8

const (
	parallelAuto parallelMode = iota
	parallelOn
	parallelOff
)

type options struct {
	cfg      Config
	handle   any
	pool     *workerpool.Pool
	parallel parallelMode
	conjA    bool
	conjB    bool
}

// Option configures a single product call.
type Option func(*options)

// WithConfig overrides the process-wide Config for one call.
func WithConfig(c Config) Option {
	return func(o *options) { o.cfg = c }
}

// WithBlocking makes the call use h's plan and packed buffers instead of
// allocating its own. The handle must not be shared by concurrent calls.
func WithBlocking[T hwy.Scalar](h *BlockingHandle[T]) Option {
	return func(o *options) { o.handle = h }
}

// WithPool runs parallel work on p instead of fresh goroutines.
func WithPool(p *workerpool.Pool) Option {
	return func(o *options) { o.pool = p }
}

// WithParallel forces the parallel driver on or off. By default it is used
// once m*n*k reaches Config.PreferParallelThreshold.
func WithParallel(on bool) Option {
	return func(o *options) {
		if on {
			o.parallel = parallelOn
		} else {
			o.parallel = parallelOff
		}
	}
}

// WithConj conjugates A and/or B on read, on top of any conjugation already
// carried by the tiles.
func WithConj(conjA, conjB bool) Option {
	return func(o *options) {
		o.conjA = conjA
		o.conjB = conjB
	}
}

func buildOptions(opts []Option) (options, error) {
	o := options{cfg: CurrentConfig()}
	for _, opt := range opts {
		opt(&o)
	}
	if err := o.cfg.Validate(); err != nil {
		return o, err
	}
	return o, nil
}

// Gemm computes C += alpha * op(A) * op(B), where op conjugates on read when
// the tile carries Conj or WithConj requests it.
//
// C may be row- or column-major and the operands may be any mix of orders
// and strides. Products with alpha == 0 or an empty depth leave C unchanged.
func Gemm[T hwy.Scalar](c, a, b dense.Tile[T], alpha T, opts ...Option) error {
	o, err := buildOptions(opts)
	if err != nil {
		return err
	}
	if err := checkGemm("gemm", c, a, b); err != nil {
		return err
	}
	return gemm(c, a.WithConj(o.conjA), b.WithConj(o.conjB), alpha, &o)
}

func checkGemm[T hwy.Scalar](op string, c, a, b dense.Tile[T]) error {
	if err := a.Check(op, "A"); err != nil {
		return err
	}
	if err := b.Check(op, "B"); err != nil {
		return err
	}
	if err := c.Check(op, "C"); err != nil {
		return err
	}
	if b.Rows != a.Cols {
		return dense.ShapeError(op, "B", "rows", b.Rows, a.Cols)
	}
	if c.Rows != a.Rows {
		return dense.ShapeError(op, "C", "rows", c.Rows, a.Rows)
	}
	if c.Cols != b.Cols {
		return dense.ShapeError(op, "C", "cols", c.Cols, b.Cols)
	}
	if c.Conj {
		return dense.ModeError(op, "destination must not be a conjugated view")
	}
	return nil
}

// gemm runs the blocked product on validated operands.
func gemm[T hwy.Scalar](c, a, b dense.Tile[T], alpha T, o *options) error {
	m, n, k := c.Rows, c.Cols, a.Cols
	if m == 0 || n == 0 || k == 0 || alpha == 0 {
		return nil
	}
	// The drivers write column-major blocks; a row-major C is handled
	// through C^T = B^T * A^T.
	if c.Order == dense.RowMajor {
		c, a, b = c.T(), b.T(), a.T()
		m, n = n, m
	}

	h, err := handleFor[T](o, "gemm", m, n, k)
	if err != nil {
		return err
	}
	if workers := parallelWorkers(o, h.params, m, n, k); workers > 1 {
		return gemmParallel(c, a, b, alpha, h.params, workers, o.pool)
	}
	gemmSequential(c, a, b, alpha, h)
	return nil
}

// handleFor returns the caller's blocking handle or plans a fresh one.
func handleFor[T hwy.Scalar](o *options, op string, m, n, k int) (*BlockingHandle[T], error) {
	if o.handle == nil {
		return newBlockingHandle[T](BlockingFor[T](o.cfg, m, n, k))
	}
	h, ok := o.handle.(*BlockingHandle[T])
	if !ok {
		return nil, &dense.Error{Kind: dense.KindAllocation, Op: op, Arg: "blocking", Msg: "handle element type does not match the operands"}
	}
	if err := h.check(op); err != nil {
		return nil, err
	}
	return h, nil
}

// parallelWorkers returns how many workers the parallel driver should use,
// or 1 for the sequential driver.
func parallelWorkers(o *options, p CacheParams, m, n, k int) int {
	switch o.parallel {
	case parallelOff:
		return 1
	case parallelAuto:
		if m*n*k < o.cfg.PreferParallelThreshold || m < 2*p.Mr {
			return 1
		}
	}
	workers := min(o.cfg.MaxWorkers, (m+p.Mr-1)/p.Mr)
	if o.pool != nil {
		workers = min(workers, o.pool.NumWorkers())
	}
	return max(workers, 1)
}

// gemmSequential is the GotoBLAS 5-loop algorithm:
//
//	for jc := 0; jc < n; jc += Nc:       // Loop 5: B panels (L3 cache)
//	  for k2 := 0; k2 < k; k2 += Kc:     // Loop 4: K blocking (L1 cache)
//	    packRHS(B[k2:k2+Kc, jc:jc+Nc])   // alpha applied here
//	    for i2 := 0; i2 < m; i2 += Mc:   // Loop 3: A panels (L2 cache)
//	      packLHS(A[i2:i2+Mc, k2:k2+Kc])
//	      gebp(...)                      // Loops 2 and 1
func gemmSequential[T hwy.Scalar](c, a, b dense.Tile[T], alpha T, h *BlockingHandle[T]) {
	p := h.params
	m, n, k := c.Rows, c.Cols, a.Cols
	alphaL, alphaR := splitAlpha(alpha)
	kern := kernelFor[T](p.Mr, p.Nr)

	for jc := 0; jc < n; jc += p.Nc {
		nc := min(p.Nc, n-jc)
		for k2 := 0; k2 < k; k2 += p.Kc {
			kc := min(p.Kc, k-k2)
			packRHS(h.packedB, b, k2, jc, kc, nc, p.Nr, alphaR)
			for i2 := 0; i2 < m; i2 += p.Mc {
				mc := min(p.Mc, m-i2)
				packLHS(h.packedA, a, i2, k2, mc, kc, p.Mr, alphaL)
				gebp(c.Slice(i2, jc, mc, nc), h.packedA, h.packedB, mc, kc, nc, -1, -1, 0, 0, h.w, kern, p.Mr, p.Nr)
			}
		}
	}
}
