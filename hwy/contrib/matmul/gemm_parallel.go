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

	"golang.org/x/sync/errgroup"

	"github.com/ajroetker/go-gemm/hwy"
	"github.com/ajroetker/go-gemm/hwy/contrib/dense"
	"github.com/ajroetker/go-gemm/hwy/contrib/workerpool"
)

// workerInfo is the per-worker synchronization record of the parallel
// driver. Each worker owns one column slot of the shared packed B.
//
// users counts the workers that still have to read the slot of the current
// stripe; the owner may repack only once it drops to zero. sync holds the
// sequence number of the stripe whose slot is ready to read.
type workerInfo struct {
	users     atomic.Int32
	sync      atomic.Int64
	rhsStart  int
	rhsLength int
	_         [32]byte // keep neighbouring records off one cache line
}

// gemmParallel splits C by rows across workers. For every (jc, k2) stripe
// each worker packs the A rows it owns and one column slot of a shared
// packed B, then multiplies its rows with every slot as soon as the slot's
// owner publishes it.
func gemmParallel[T hwy.Scalar](c, a, b dense.Tile[T], alpha T, p CacheParams, workers int, pool *workerpool.Pool) error {
	m, n, k := c.Rows, c.Cols, a.Cols
	mr, nr := p.Mr, p.Nr

	blockRows := roundUp((m+workers-1)/workers, mr)
	kc := p.Kc
	nc := roundUp(p.Nc, nr)

	sizeA, sizeB, err := parallelPackedSizes(blockRows, nc, kc)
	if err != nil {
		return err
	}
	packedB := hwy.AlignedSlice[T](sizeB)
	packedA := make([][]T, workers)
	scratch := make([][]T, workers)
	for t := range workers {
		packedA[t] = hwy.AlignedSlice[T](sizeA)
		scratch[t] = hwy.AlignedSlice[T](p.ScratchSize())
	}

	info := make([]workerInfo, workers)
	alphaL, alphaR := splitAlpha(alpha)
	kern := kernelFor[T](mr, nr)

	run := func(tid int) {
		rowStart := min(tid*blockRows, m)
		rows := min(blockRows, m-rowStart)
		myA := packedA[tid]
		w := scratch[tid]
		self := &info[tid]

		var seq int64
		for jc := 0; jc < n; jc += p.Nc {
			ncA := min(p.Nc, n-jc)
			slotWidth := roundUp((ncA+workers-1)/workers, nr)
			for k2 := 0; k2 < k; k2 += kc {
				actualKc := min(kc, k-k2)
				seq++

				if rows > 0 {
					packLHS(myA, a, rowStart, k2, rows, actualKc, mr, alphaL)
				}

				// Wait until every worker is done with my slot of the
				// previous stripe.
				for self.users.Load() != 0 {
					runtime.Gosched()
				}
				self.users.Store(int32(workers))
				self.rhsStart = min(tid*slotWidth, ncA)
				self.rhsLength = min(slotWidth, ncA-self.rhsStart)
				if self.rhsLength > 0 {
					packRHS(packedB[self.rhsStart*actualKc:], b, k2, jc+self.rhsStart, actualKc, self.rhsLength, nr, alphaR)
				}
				self.sync.Store(seq)

				for shift := range workers {
					i := (tid + shift) % workers
					other := &info[i]
					for other.sync.Load() != seq {
						runtime.Gosched()
					}
					if rows == 0 || other.rhsLength == 0 {
						continue
					}
					dst := c.Slice(rowStart, jc+other.rhsStart, rows, other.rhsLength)
					gebp(dst, myA, packedB[other.rhsStart*actualKc:], rows, actualKc, other.rhsLength, -1, -1, 0, 0, w, kern, mr, nr)
				}

				// Release every slot of this stripe.
				for i := range info {
					info[i].users.Add(-1)
				}
			}
		}
	}

	if pool != nil {
		pool.Gang(workers, run)
		return nil
	}
	var g errgroup.Group
	for tid := range workers {
		g.Go(func() error {
			run(tid)
			return nil
		})
	}
	return g.Wait()
}

// parallelPackedSizes returns the per-worker packed A and the shared packed
// B sizes, refusing sizes the sequential handle would refuse.
func parallelPackedSizes(blockRows, nc, kc int) (sizeA, sizeB int, err error) {
	sizeA, okA := mulChecked(blockRows, kc)
	if !okA || sizeA > maxPackedElems {
		return 0, 0, dense.AllocError("gemm", "packedA", 0, sizeA)
	}
	sizeB, okB := mulChecked(nc, kc)
	if !okB || sizeB > maxPackedElems {
		return 0, 0, dense.AllocError("gemm", "packedB", 0, sizeB)
	}
	return sizeA, sizeB, nil
}
