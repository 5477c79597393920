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

	"github.com/matrixorigin/moframe/pkg/colexec/join"
	"github.com/matrixorigin/moframe/pkg/common/moerr"
	"github.com/matrixorigin/moframe/pkg/dag"
	"github.com/matrixorigin/moframe/pkg/frame"
	"github.com/matrixorigin/moframe/pkg/plan"
	"golang.org/x/exp/constraints"
)

// JoinIndexed joins two frames on their index without moving rows
// between partitions.  The frames are aligned on shared boundaries,
// intervals that cannot contribute under kind are pruned, and every
// surviving interval becomes one local join task.  A side absent from
// an interval joins as an empty table.  The output keeps the pruned
// common boundaries, so a join of frames with disjoint ranges still
// has a partition per interval of both ranges under an outer kind.
func JoinIndexed[T constraints.Ordered](ctx context.Context, tk *dag.Tokens, lf, rf *frame.Frame[T], kind plan.JoinKind, lsuffix, rsuffix string) (*frame.Frame[T], error) {
	if !kind.Valid() {
		return nil, moerr.NewInvalidInput(ctx, "join kind %s", kind)
	}
	if lf.IndexAttr != rf.IndexAttr {
		return nil, moerr.NewInvalidInput(ctx,
			"join on differently named index columns '%s' and '%s'", lf.IndexAttr, rf.IndexAttr)
	}
	// one empty table per side stands in for every absent interval,
	// and joining them infers the output schema and checks the
	// suffixes before any task is built
	lph, rph := lf.Placeholder(), rf.Placeholder()
	schema, err := join.Join(ctx, lph, rph, lf.IndexAttr, kind, lsuffix, rsuffix)
	if err != nil {
		return nil, err
	}

	aligned, divisions, rows, err := Align(ctx, tk, lf, rf)
	if err != nil {
		return nil, err
	}
	divisions, rows = Require(divisions, rows, plan.Required(kind))

	g, err := dag.Union(aligned[0].Graph, aligned[1].Graph)
	if err != nil {
		return nil, err
	}
	name := tk.Name("join")
	for i, row := range rows {
		l, r := row[0], row[1]
		task := &dag.JoinTask{Attr: lf.IndexAttr, Kind: kind, LSuffix: lsuffix, RSuffix: rsuffix}
		switch {
		case l.Valid && r.Valid:
			task.Left, task.Right = dag.Ref(l.Key), dag.Ref(r.Key)
		case l.Valid && (kind == plan.Left || kind == plan.Outer):
			task.Left, task.Right = dag.Ref(l.Key), dag.Lit(rph)
		case r.Valid && (kind == plan.Right || kind == plan.Outer):
			task.Left, task.Right = dag.Lit(lph), dag.Ref(r.Key)
		case !l.Valid && !r.Valid && kind == plan.Outer:
			task.Left, task.Right = dag.Lit(lph), dag.Lit(rph)
		default:
			return nil, moerr.NewInternalError(ctx,
				"aligned %s join lost a required side in interval %d", kind, i)
		}
		if err := g.Add(dag.Key{Name: name, Idx: int32(i)}, task); err != nil {
			return nil, err
		}
	}
	return &frame.Frame[T]{
		Name:        name,
		Attrs:       append([]string{}, schema.Attrs...),
		Typs:        schema.Types(),
		IndexAttr:   lf.IndexAttr,
		Divisions:   divisions,
		NPartitions: len(rows),
		Graph:       g,
	}, nil
}
