// Copyright 2021 Matrix Origin
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//      http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package frame

import (
	"sort"

	"golang.org/x/exp/constraints"
	"golang.org/x/exp/slices"
)

// Bound narrows a sorted boundary sequence to the run covered by
// [lo, hi]: from the first value >= lo through the last value <= hi.
// The result reslices seq.
func Bound[T constraints.Ordered](seq []T, lo, hi T) []T {
	i := sort.Search(len(seq), func(k int) bool { return seq[k] >= lo })
	j := sort.Search(len(seq), func(k int) bool { return seq[k] > hi })
	if j < i {
		j = i
	}
	return seq[i:j]
}

// MergeDivisions merges boundary sequences into their sorted distinct
// union.  The result is never nil, so it stays a known boundary
// sequence even when every input is empty.
func MergeDivisions[T constraints.Ordered](seqs ...[]T) []T {
	n := 0
	for _, seq := range seqs {
		n += len(seq)
	}
	all := make([]T, 0, n)
	for _, seq := range seqs {
		all = append(all, seq...)
	}
	slices.Sort(all)
	return slices.Compact(all)
}
