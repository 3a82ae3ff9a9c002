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

package hwy

import "unsafe"

// Alignment is the byte alignment of slices returned by AlignedSlice.
// It covers one cache line and the widest register supported.
const Alignment = 64

// AlignedSlice returns a zeroed slice of n elements whose first element is
// Alignment-byte aligned.
func AlignedSlice[T Scalar](n int) []T {
	if n <= 0 {
		return nil
	}
	// Scalars hold no pointers, so backing them with a byte slice is safe for the GC.
	buf := make([]byte, n*SizeOf[T]()+Alignment)
	addr := uintptr(unsafe.Pointer(&buf[0]))
	off := int((Alignment - addr%Alignment) % Alignment)
	return unsafe.Slice((*T)(unsafe.Pointer(&buf[off])), n)
}

// IsAligned reports whether the first element of s is aligned to the packet
// alignment Lanes*sizeof(T), the precondition of LoadAligned.
func IsAligned[T Scalar](s []T) bool {
	if len(s) == 0 {
		return true
	}
	a := uintptr(Lanes * SizeOf[T]())
	return uintptr(unsafe.Pointer(&s[0]))%a == 0
}

// PaddedLen rounds n up to a multiple of Lanes.
func PaddedLen(n int) int {
	return (n + Lanes - 1) / Lanes * Lanes
}
