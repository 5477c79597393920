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

	"github.com/matrixorigin/moframe/pkg/colexec/merge"
	"github.com/matrixorigin/moframe/pkg/common/moerr"
	"github.com/matrixorigin/moframe/pkg/dag"
	"github.com/matrixorigin/moframe/pkg/frame"
	"github.com/matrixorigin/moframe/pkg/plan"
	"golang.org/x/exp/constraints"
)

// HashJoin joins two frames on arbitrary key columns.  Both sides are
// hash redistributed into the same number of buckets, rows with equal
// keys meet in the same bucket, and every bucket pair becomes one
// merge task.  Boundaries need not be known on either side and are
// unknown on the output.  nparts <= 0 picks the larger side's
// partition count.
func HashJoin[T constraints.Ordered](ctx context.Context, tk *dag.Tokens, lf, rf *frame.Frame[T], leftOn, rightOn []string, kind plan.JoinKind, lsuffix, rsuffix string, nparts int) (*frame.Frame[T], error) {
	if !kind.Valid() {
		return nil, moerr.NewInvalidInput(ctx, "join kind %s", kind)
	}
	if len(leftOn) == 0 || len(leftOn) != len(rightOn) {
		return nil, moerr.NewInvalidInput(ctx,
			"hash join requires matching key lists, got %d and %d", len(leftOn), len(rightOn))
	}
	for i := range leftOn {
		lt, err := lf.TypeOf(ctx, leftOn[i])
		if err != nil {
			return nil, err
		}
		rt, err := rf.TypeOf(ctx, rightOn[i])
		if err != nil {
			return nil, err
		}
		if !lt.Eq(rt) {
			return nil, moerr.NewInvalidInput(ctx,
				"hash join keys '%s' and '%s' differ in type", leftOn[i], rightOn[i])
		}
	}
	// merging two empty tables infers the output schema and checks the
	// suffixes before any task is built
	schema, err := merge.Merge(ctx, lf.Placeholder(), rf.Placeholder(), kind, leftOn, rightOn, lsuffix, rsuffix)
	if err != nil {
		return nil, err
	}
	if nparts <= 0 {
		nparts = lf.NPartitions
		if rf.NPartitions > nparts {
			nparts = rf.NPartitions
		}
		if nparts == 0 {
			nparts = 1
		}
	}
	ls, err := lf.Shuffle(ctx, tk, leftOn, nparts)
	if err != nil {
		return nil, err
	}
	rs, err := rf.Shuffle(ctx, tk, rightOn, nparts)
	if err != nil {
		return nil, err
	}
	g, err := dag.Union(ls.Graph, rs.Graph)
	if err != nil {
		return nil, err
	}
	name := tk.Name("hashjoin")
	for b := 0; b < nparts; b++ {
		err := g.Add(dag.Key{Name: name, Idx: int32(b)}, &dag.MergeTask{
			Left:    dag.Ref(ls.Key(b)),
			Right:   dag.Ref(rs.Key(b)),
			Kind:    kind,
			LeftOn:  append([]string{}, leftOn...),
			RightOn: append([]string{}, rightOn...),
			LSuffix: lsuffix,
			RSuffix: rsuffix,
		})
		if err != nil {
			return nil, err
		}
	}
	indexAttr := lf.IndexAttr
	if schema.Pos(indexAttr) < 0 {
		indexAttr = ""
	}
	return &frame.Frame[T]{
		Name:        name,
		Attrs:       append([]string{}, schema.Attrs...),
		Typs:        schema.Types(),
		IndexAttr:   indexAttr,
		NPartitions: nparts,
		Graph:       g,
	}, nil
}
