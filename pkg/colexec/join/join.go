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

// Package join implements the sorted merge join of two partitions on
// their index column.
package join

import (
	"context"

	"github.com/matrixorigin/moframe/pkg/colexec"
	"github.com/matrixorigin/moframe/pkg/common/moerr"
	"github.com/matrixorigin/moframe/pkg/container/batch"
	"github.com/matrixorigin/moframe/pkg/container/nulls"
	"github.com/matrixorigin/moframe/pkg/container/vector"
	"github.com/matrixorigin/moframe/pkg/plan"
)

// Join merges two partitions on the index column attr.  The index
// column appears once in the result, left columns keep their order and
// right columns follow, renamed by the suffixes where names collide.
// Rows with equal index values pair up row by row, duplicate values
// pair every combination.  Rows without a counterpart survive with
// null filled columns when the kind keeps their side.  Null index
// values never match.  The result is sorted by the index column, the
// inputs are sorted first when they are not.
func Join(ctx context.Context, left, right *batch.Batch, attr string, kind plan.JoinKind, lsuffix, rsuffix string) (*batch.Batch, error) {
	if !kind.Valid() {
		return nil, moerr.NewInvalidInput(ctx, "unknown join kind %d", kind)
	}
	lpos, rpos := left.Pos(attr), right.Pos(attr)
	if lpos < 0 {
		return nil, moerr.NewBadFieldError(ctx, attr, "left input")
	}
	if rpos < 0 {
		return nil, moerr.NewBadFieldError(ctx, attr, "right input")
	}
	if !left.Vecs[lpos].Typ.Eq(right.Vecs[rpos].Typ) {
		return nil, moerr.NewInvalidInput(ctx, "join column '%s' type mismatch: %s vs %s",
			attr, left.Vecs[lpos].Typ, right.Vecs[rpos].Typ)
	}
	if !colexec.IsSorted(left.Vecs[lpos]) {
		left = batch.Filter(left, colexec.SortSels(left.Vecs[lpos]))
	}
	if !colexec.IsSorted(right.Vecs[rpos]) {
		right = batch.Filter(right, colexec.SortSels(right.Vecs[rpos]))
	}

	lattrs, rattrs, err := colexec.ResolveJoinAttrs(ctx, left.Attrs, right.Attrs,
		map[string]bool{attr: true}, lsuffix, rsuffix)
	if err != nil {
		return nil, err
	}
	attrs := append([]string{}, lattrs...)
	typs := left.Types()
	var rcols []int
	for i, a := range rattrs {
		if a == "" {
			continue
		}
		attrs = append(attrs, a)
		typs = append(typs, right.Vecs[i].Typ)
		rcols = append(rcols, i)
	}
	out := batch.NewWithSchema(attrs, typs)

	lvec, rvec := left.Vecs[lpos], right.Vecs[rpos]
	ln, rn := int64(left.Length()), int64(right.Length())

	// li < 0 emits a right only row, rj < 0 a left only row
	emit := func(li, rj int64) error {
		for i, vec := range left.Vecs {
			switch {
			case li >= 0:
				if err := vector.UnionOne(out.Vecs[i], vec, li); err != nil {
					return err
				}
			case i == lpos:
				if err := vector.UnionOne(out.Vecs[i], rvec, rj); err != nil {
					return err
				}
			default:
				vector.UnionNull(out.Vecs[i])
			}
		}
		for k, j := range rcols {
			ov := out.Vecs[len(left.Vecs)+k]
			if rj >= 0 {
				if err := vector.UnionOne(ov, right.Vecs[j], rj); err != nil {
					return err
				}
			} else {
				vector.UnionNull(ov)
			}
		}
		return nil
	}

	keepLeft := kind == plan.Left || kind == plan.Outer
	keepRight := kind == plan.Right || kind == plan.Outer

	var i, j int64
	for i < ln && j < rn {
		cmp := colexec.CompareAt(lvec, rvec, i, j)
		switch {
		case cmp < 0:
			if keepLeft {
				if err := emit(i, -1); err != nil {
					return nil, err
				}
			}
			i++
		case cmp > 0:
			if keepRight {
				if err := emit(-1, j); err != nil {
					return nil, err
				}
			}
			j++
		default:
			if nulls.Contains(lvec.Nsp, uint64(i)) {
				// null index values never match
				if keepLeft {
					if err := emit(i, -1); err != nil {
						return nil, err
					}
				}
				if keepRight {
					if err := emit(-1, j); err != nil {
						return nil, err
					}
				}
				i++
				j++
				continue
			}
			i2 := i + 1
			for i2 < ln && colexec.CompareAt(lvec, lvec, i2, i) == 0 {
				i2++
			}
			j2 := j + 1
			for j2 < rn && colexec.CompareAt(rvec, rvec, j2, j) == 0 {
				j2++
			}
			for li := i; li < i2; li++ {
				for rj := j; rj < j2; rj++ {
					if err := emit(li, rj); err != nil {
						return nil, err
					}
				}
			}
			i, j = i2, j2
		}
	}
	if keepLeft {
		for ; i < ln; i++ {
			if err := emit(i, -1); err != nil {
				return nil, err
			}
		}
	}
	if keepRight {
		for ; j < rn; j++ {
			if err := emit(-1, j); err != nil {
				return nil, err
			}
		}
	}
	return out, nil
}
