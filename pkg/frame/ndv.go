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

	"github.com/matrixorigin/moframe/pkg/dag"
)

// ApproxNDV builds the tasks estimating the number of distinct values
// of one column: a sketch per partition merged by a single estimate
// task.  It returns the graph to run and the key of the estimate, a
// one row batch holding the count.
func (f *Frame[T]) ApproxNDV(ctx context.Context, tk *dag.Tokens, attr string) (*dag.Graph, dag.Key, error) {
	if _, err := f.TypeOf(ctx, attr); err != nil {
		return nil, dag.Key{}, err
	}
	g, err := dag.Union(f.Graph)
	if err != nil {
		return nil, dag.Key{}, err
	}
	sketches := tk.Name("sketch")
	inputs := make([]dag.Operand, f.NPartitions)
	for i := 0; i < f.NPartitions; i++ {
		k := dag.Key{Name: sketches, Idx: int32(i)}
		if err := g.Add(k, &dag.SketchTask{Input: dag.Ref(f.Key(i)), Attr: attr}); err != nil {
			return nil, dag.Key{}, err
		}
		inputs[i] = dag.Ref(k)
	}
	est := dag.Key{Name: tk.Name("ndv")}
	if err := g.Add(est, &dag.EstimateTask{Inputs: inputs}); err != nil {
		return nil, dag.Key{}, err
	}
	return g, est, nil
}
