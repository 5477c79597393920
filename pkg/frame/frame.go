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

// Package frame models a sharded ordered table: rows live in a list of
// partitions computed by a task graph, each partition sorted on an
// index column, with the boundary values between partitions recorded
// so that range work can be routed to the partitions that hold it.
package frame

import (
	"context"

	"github.com/matrixorigin/moframe/pkg/common/moerr"
	"github.com/matrixorigin/moframe/pkg/container/batch"
	"github.com/matrixorigin/moframe/pkg/container/nulls"
	"github.com/matrixorigin/moframe/pkg/container/types"
	"github.com/matrixorigin/moframe/pkg/container/vector"
	"github.com/matrixorigin/moframe/pkg/dag"
	"golang.org/x/exp/constraints"
)

// Frame is a sharded ordered table.  Partition i of NPartitions is the
// batch computed by task {Name, i} of Graph and holds the index values
// in [Divisions[i], Divisions[i+1]), the last partition keeping its
// upper bound.
//
// Divisions is nil when the distribution of index values over the
// partitions is unknown, as after a hash redistribution.  A non nil
// empty Divisions is a known empty frame with no partitions.
// Divisions are never mutated, derived frames share or reslice them.
type Frame[T constraints.Ordered] struct {
	Name        string
	Attrs       []string
	Typs        []types.Type
	IndexAttr   string
	Divisions   []T
	NPartitions int
	Graph       *dag.Graph
}

// FromBatches wraps in-memory partitions into a frame of source tasks.
// Every batch must carry the same schema with indexAttr among its
// columns.  divisions may be nil when the partition ranges are
// unknown; when given it needs one more boundary than there are
// partitions, and every partition is checked to be sorted on the index
// and inside its interval.
func FromBatches[T constraints.Ordered](ctx context.Context, tk *dag.Tokens, bats []*batch.Batch, indexAttr string, divisions []T) (*Frame[T], error) {
	if len(bats) == 0 {
		return nil, moerr.NewInvalidInput(ctx, "frame with no partitions")
	}
	attrs := append([]string{}, bats[0].Attrs...)
	typs := bats[0].Types()
	for _, bat := range bats[1:] {
		if err := sameSchema(ctx, attrs, typs, bat); err != nil {
			return nil, err
		}
	}
	pos := bats[0].Pos(indexAttr)
	if pos < 0 {
		return nil, moerr.NewBadFieldError(ctx, indexAttr, "frame input")
	}
	if divisions != nil {
		if oid := divisionOid[T](); oid != typs[pos].Oid {
			return nil, moerr.NewInvalidInput(ctx, "division type does not match index column '%s'", indexAttr)
		}
		if len(divisions) != len(bats)+1 {
			return nil, moerr.NewInvalidInput(ctx, "%d boundaries for %d partitions", len(divisions), len(bats))
		}
		for i := 1; i < len(divisions); i++ {
			if divisions[i] < divisions[i-1] {
				return nil, moerr.NewInvalidInput(ctx, "partition boundaries out of order at %d", i)
			}
		}
		for i, bat := range bats {
			last := i == len(bats)-1
			if err := checkPartition(ctx, bat.Vecs[pos], divisions[i], divisions[i+1], last, i); err != nil {
				return nil, err
			}
		}
		divisions = append([]T{}, divisions...)
	}
	name := tk.Name("frame")
	g := dag.NewGraph()
	for i, bat := range bats {
		if err := g.Add(dag.Key{Name: name, Idx: int32(i)}, &dag.SourceTask{Bat: bat}); err != nil {
			return nil, err
		}
	}
	return &Frame[T]{
		Name:        name,
		Attrs:       attrs,
		Typs:        typs,
		IndexAttr:   indexAttr,
		Divisions:   divisions,
		NPartitions: len(bats),
		Graph:       g,
	}, nil
}

func sameSchema(ctx context.Context, attrs []string, typs []types.Type, bat *batch.Batch) error {
	if len(bat.Attrs) != len(attrs) {
		return moerr.NewInvalidInput(ctx, "partitions disagree on the schema")
	}
	for i, attr := range attrs {
		if bat.Attrs[i] != attr || bat.Vecs[i].Typ.Oid != typs[i].Oid {
			return moerr.NewInvalidInput(ctx, "partitions disagree on the schema")
		}
	}
	return nil
}

func checkPartition[T constraints.Ordered](ctx context.Context, vec *vector.Vector, lo, hi T, last bool, part int) error {
	if nulls.Any(vec.Nsp) {
		return moerr.NewInvalidInput(ctx, "null index value in partition %d", part)
	}
	col, ok := vec.Col.([]T)
	if !ok {
		return moerr.NewInternalError(ctx, "index column of partition %d does not hold division typed values", part)
	}
	for i, v := range col {
		if i > 0 && v < col[i-1] {
			return moerr.NewInvalidInput(ctx, "partition %d is not sorted on the index", part)
		}
		if v < lo || v > hi || (!last && v == hi) {
			return moerr.NewInvalidInput(ctx, "index value of partition %d outside its boundaries", part)
		}
	}
	return nil
}

// divisionOid maps the division type parameter onto the column type it
// can describe.
func divisionOid[T constraints.Ordered]() types.T {
	var z T
	switch any(z).(type) {
	case int32:
		return types.T_int32
	case int64:
		return types.T_int64
	case float64:
		return types.T_float64
	case string:
		return types.T_varchar
	default:
		return types.T_any
	}
}

// Key returns the task key computing partition i.
func (f *Frame[T]) Key(i int) dag.Key {
	return dag.Key{Name: f.Name, Idx: int32(i)}
}

// KnownDivisions reports whether the partition boundaries are known.
func (f *Frame[T]) KnownDivisions() bool {
	return f.Divisions != nil
}

// TypeOf returns the type of the named column.
func (f *Frame[T]) TypeOf(ctx context.Context, attr string) (types.Type, error) {
	for i, a := range f.Attrs {
		if a == attr {
			return f.Typs[i], nil
		}
	}
	return types.Type{}, moerr.NewBadFieldError(ctx, attr, "frame")
}

// Placeholder builds an empty batch with the frame's layout.
func (f *Frame[T]) Placeholder() *batch.Batch {
	return batch.NewWithSchema(f.Attrs, f.Typs)
}
