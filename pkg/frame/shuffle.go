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

	"github.com/matrixorigin/moframe/pkg/common/moerr"
	"github.com/matrixorigin/moframe/pkg/dag"
)

// Shuffle hash redistributes the frame into buckets partitions on the
// key columns.  Rows with equal keys land in the same bucket whatever
// partition they start from.  The result's boundaries are unknown.
func (f *Frame[T]) Shuffle(ctx context.Context, tk *dag.Tokens, attrs []string, buckets int) (*Frame[T], error) {
	if buckets <= 0 {
		return nil, moerr.NewInvalidInput(ctx, "shuffle into %d buckets", buckets)
	}
	if len(attrs) == 0 {
		return nil, moerr.NewInvalidInput(ctx, "shuffle without key columns")
	}
	for _, attr := range attrs {
		if _, err := f.TypeOf(ctx, attr); err != nil {
			return nil, err
		}
	}
	g, err := dag.Union(f.Graph)
	if err != nil {
		return nil, err
	}
	name := tk.Name("shuffle")
	if f.NPartitions == 0 {
		placeholder := f.Placeholder()
		for b := 0; b < buckets; b++ {
			if err := g.Add(dag.Key{Name: name, Idx: int32(b)}, &dag.SourceTask{Bat: placeholder}); err != nil {
				return nil, err
			}
		}
	} else {
		splits := tk.Name("split")
		inputs := make([]dag.Operand, f.NPartitions)
		for j := 0; j < f.NPartitions; j++ {
			k := dag.Key{Name: splits, Idx: int32(j)}
			err := g.Add(k, &dag.SplitTask{
				Input:   dag.Ref(f.Key(j)),
				Attrs:   append([]string{}, attrs...),
				Buckets: int32(buckets),
			})
			if err != nil {
				return nil, err
			}
			inputs[j] = dag.Ref(k)
		}
		for b := 0; b < buckets; b++ {
			err := g.Add(dag.Key{Name: name, Idx: int32(b)}, &dag.BucketTask{
				Inputs: append([]dag.Operand{}, inputs...),
				Idx:    int32(b),
			})
			if err != nil {
				return nil, err
			}
		}
	}
	return &Frame[T]{
		Name:        name,
		Attrs:       f.Attrs,
		Typs:        f.Typs,
		IndexAttr:   f.IndexAttr,
		NPartitions: buckets,
		Graph:       g,
	}, nil
}
