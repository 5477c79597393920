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

package multi

import (
	"context"

	"github.com/matrixorigin/moframe/pkg/colexec/concat"
	"github.com/matrixorigin/moframe/pkg/common/moerr"
	"github.com/matrixorigin/moframe/pkg/container/batch"
	"github.com/matrixorigin/moframe/pkg/dag"
	"github.com/matrixorigin/moframe/pkg/frame"
	"github.com/matrixorigin/moframe/pkg/plan"
	"golang.org/x/exp/constraints"
)

// ConcatIndexed stacks frames that share an index.  The frames are
// aligned on common boundaries and every interval becomes one concat
// task over the inputs present there, inputs absent from an interval
// standing in as empty tables.  No interval is pruned, the result
// spans every input's range.  policy picks the output columns, the
// union or the intersection of the input schemas.
func ConcatIndexed[T constraints.Ordered](ctx context.Context, tk *dag.Tokens, frames []*frame.Frame[T], policy plan.ConcatPolicy) (*frame.Frame[T], error) {
	if len(frames) == 0 {
		return nil, moerr.NewInvalidInput(ctx, "concat of no frames")
	}
	indexAttr := frames[0].IndexAttr
	for _, f := range frames[1:] {
		if f.IndexAttr != indexAttr {
			return nil, moerr.NewInvalidInput(ctx,
				"concat of frames indexed on '%s' and '%s'", indexAttr, f.IndexAttr)
		}
	}
	// one empty table per input stands in for every absent interval,
	// and concatenating them infers the output schema and checks the
	// column types before any task is built
	placeholders := make([]*batch.Batch, len(frames))
	for i, f := range frames {
		placeholders[i] = f.Placeholder()
	}
	schema, err := concat.Concat(ctx, placeholders, policy)
	if err != nil {
		return nil, err
	}

	aligned, divisions, rows, err := Align(ctx, tk, frames...)
	if err != nil {
		return nil, err
	}
	gs := make([]*dag.Graph, len(aligned))
	for i, af := range aligned {
		gs[i] = af.Graph
	}
	g, err := dag.Union(gs...)
	if err != nil {
		return nil, err
	}
	name := tk.Name("concat")
	for i, row := range rows {
		inputs := make([]dag.Operand, len(row))
		for k, slot := range row {
			if slot.Valid {
				inputs[k] = dag.Ref(slot.Key)
			} else {
				inputs[k] = dag.Lit(placeholders[k])
			}
		}
		err := g.Add(dag.Key{Name: name, Idx: int32(i)}, &dag.ConcatTask{
			Inputs: inputs,
			Policy: policy,
		})
		if err != nil {
			return nil, err
		}
	}
	return &frame.Frame[T]{
		Name:        name,
		Attrs:       append([]string{}, schema.Attrs...),
		Typs:        schema.Types(),
		IndexAttr:   indexAttr,
		Divisions:   divisions,
		NPartitions: len(rows),
		Graph:       g,
	}, nil
}
