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

// Package multi combines sharded ordered tables: it aligns their
// partitions onto shared boundaries, joins them interval by interval
// or through a hash redistribution, and concatenates them.
package multi

import (
	"context"
	"sort"

	"github.com/matrixorigin/moframe/pkg/common/moerr"
	"github.com/matrixorigin/moframe/pkg/dag"
	"github.com/matrixorigin/moframe/pkg/frame"
	"golang.org/x/exp/constraints"
)

// Slot points at one input's partition for one interval of the common
// boundaries.  An invalid slot means the input has no rows there.
type Slot struct {
	Key   dag.Key
	Valid bool
}

// Align repartitions the frames onto the distinct union of their
// boundaries.  Each input only covers the stretch of the union inside
// its own range, so beyond that nothing is computed for it.  Align
// returns the repartitioned frames, the common boundary sequence, and
// one Slot row per common interval recording each input's partition
// there, absent where the interval lies outside the input's range.
//
// Every input must have known boundaries.
func Align[T constraints.Ordered](ctx context.Context, tk *dag.Tokens, frames ...*frame.Frame[T]) ([]*frame.Frame[T], []T, [][]Slot, error) {
	if len(frames) == 0 {
		return nil, nil, nil, moerr.NewInvalidInput(ctx, "align of no frames")
	}
	seqs := make([][]T, len(frames))
	for i, f := range frames {
		if !f.KnownDivisions() {
			return nil, nil, nil, moerr.NewInvalidState(ctx,
				"frame %s has unknown boundaries, repartition it or join by hash", f.Name)
		}
		seqs[i] = f.Divisions
	}
	common := frame.MergeDivisions(seqs...)
	if len(common) == 1 {
		// every input holds one single index value
		common = []T{common[0], common[0]}
	}

	aligned := make([]*frame.Frame[T], len(frames))
	for i, f := range frames {
		if f.NPartitions == 0 {
			aligned[i] = f
			continue
		}
		divs := f.Divisions
		bounded := frame.Bound(common, divs[0], divs[len(divs)-1])
		if len(bounded) == 1 {
			// a single value input still needs one interval to land in
			at := sort.Search(len(common), func(k int) bool { return common[k] >= bounded[0] })
			if at+1 < len(common) {
				bounded = common[at : at+2]
			} else {
				bounded = common[at-1 : at+1]
			}
		}
		af, err := f.Repartition(ctx, tk, bounded)
		if err != nil {
			return nil, nil, nil, err
		}
		aligned[i] = af
	}

	nrows := len(common) - 1
	if nrows < 0 {
		nrows = 0
	}
	rows := make([][]Slot, nrows)
	cursors := make([]int, len(frames))
	for i := 0; i < nrows; i++ {
		row := make([]Slot, len(frames))
		for k, af := range aligned {
			j := cursors[k]
			if j < af.NPartitions && af.Divisions[j] == common[i] {
				row[k] = Slot{Key: af.Key(j), Valid: true}
				cursors[k]++
			}
		}
		rows[i] = row
	}
	return aligned, common, rows, nil
}
