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
	"context"
	"sort"

	"github.com/matrixorigin/moframe/pkg/common/moerr"
	"github.com/matrixorigin/moframe/pkg/container/batch"
	"github.com/matrixorigin/moframe/pkg/dag"
	"golang.org/x/exp/slices"
)

// Repartition redistributes the frame's rows onto the given boundary
// sequence.  Every new partition gathers the rows of its interval from
// the old partitions overlapping it, so boundaries that do not cover
// the frame's whole range drop the rows outside them.  A target equal
// to the current boundaries returns the frame unchanged.
func (f *Frame[T]) Repartition(ctx context.Context, tk *dag.Tokens, divisions []T) (*Frame[T], error) {
	if !f.KnownDivisions() {
		return nil, moerr.NewInvalidState(ctx, "repartition of a frame with unknown boundaries")
	}
	for i := 1; i < len(divisions); i++ {
		if divisions[i] < divisions[i-1] {
			return nil, moerr.NewInvalidInput(ctx, "partition boundaries out of order at %d", i)
		}
	}
	if slices.Equal(divisions, f.Divisions) {
		return f, nil
	}
	g, err := dag.Union(f.Graph)
	if err != nil {
		return nil, err
	}
	name := tk.Name("repartition")
	nparts := len(divisions) - 1
	if nparts < 0 {
		nparts = 0
	}
	old := f.Divisions
	var placeholder *batch.Batch
	for i := 0; i < nparts; i++ {
		lo, hi := divisions[i], divisions[i+1]
		// old partitions whose interval can reach [lo, hi]
		start := sort.Search(f.NPartitions, func(j int) bool { return old[j+1] >= lo })
		end := sort.Search(f.NPartitions, func(j int) bool { return old[j] > hi })
		var inputs []dag.Operand
		for j := start; j < end; j++ {
			inputs = append(inputs, dag.Ref(f.Key(j)))
		}
		if len(inputs) == 0 {
			if placeholder == nil {
				placeholder = f.Placeholder()
			}
			inputs = []dag.Operand{dag.Lit(placeholder)}
		}
		err := g.Add(dag.Key{Name: name, Idx: int32(i)}, &dag.RangeTask{
			Inputs:    inputs,
			Attr:      f.IndexAttr,
			Lo:        lo,
			Hi:        hi,
			IncludeHi: i == nparts-1,
		})
		if err != nil {
			return nil, err
		}
	}
	return &Frame[T]{
		Name:        name,
		Attrs:       f.Attrs,
		Typs:        f.Typs,
		IndexAttr:   f.IndexAttr,
		Divisions:   append([]T{}, divisions...),
		NPartitions: nparts,
		Graph:       g,
	}, nil
}
