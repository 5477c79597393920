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

// Package merge implements the hash join of two partitions on
// arbitrary key columns.
package merge

import (
	"context"

	"github.com/matrixorigin/moframe/pkg/colexec"
	"github.com/matrixorigin/moframe/pkg/common/moerr"
	"github.com/matrixorigin/moframe/pkg/container/batch"
	"github.com/matrixorigin/moframe/pkg/container/hashtable"
	"github.com/matrixorigin/moframe/pkg/container/nulls"
	"github.com/matrixorigin/moframe/pkg/container/vector"
	"github.com/matrixorigin/moframe/pkg/plan"
)

// Merge joins two partitions on the paired key columns leftOn and
// rightOn.  A hash table is built over the right rows and probed with
// the left rows, matches come out in left row order and a row matching
// several right rows pairs with each of them in right row order.
// Unmatched rows of a kept side follow with null filled columns, rows
// with a null key never match.  A key pair with the same name on both
// sides appears once in the result, other colliding names take the
// side suffixes.
func Merge(ctx context.Context, left, right *batch.Batch, kind plan.JoinKind, leftOn, rightOn []string, lsuffix, rsuffix string) (*batch.Batch, error) {
	if !kind.Valid() {
		return nil, moerr.NewInvalidInput(ctx, "unknown join kind %d", kind)
	}
	if len(leftOn) == 0 || len(leftOn) != len(rightOn) {
		return nil, moerr.NewInvalidInput(ctx, "merge requires matching key lists, got %d and %d", len(leftOn), len(rightOn))
	}
	lkeys := make([]*vector.Vector, len(leftOn))
	for i, attr := range leftOn {
		pos := left.Pos(attr)
		if pos < 0 {
			return nil, moerr.NewBadFieldError(ctx, attr, "left input")
		}
		lkeys[i] = left.Vecs[pos]
	}
	rkeys := make([]*vector.Vector, len(rightOn))
	for i, attr := range rightOn {
		pos := right.Pos(attr)
		if pos < 0 {
			return nil, moerr.NewBadFieldError(ctx, attr, "right input")
		}
		rkeys[i] = right.Vecs[pos]
	}
	for i := range lkeys {
		if !lkeys[i].Typ.Eq(rkeys[i].Typ) {
			return nil, moerr.NewInvalidInput(ctx, "merge key '%s' type mismatch: %s vs %s",
				leftOn[i], lkeys[i].Typ, rkeys[i].Typ)
		}
	}

	// key pairs with one name appear once, for right only rows the
	// right key value fills the left column
	shared := make(map[string]bool)
	coalesce := make([]*vector.Vector, len(left.Vecs))
	for i := range leftOn {
		if leftOn[i] == rightOn[i] {
			shared[leftOn[i]] = true
			coalesce[left.Pos(leftOn[i])] = rkeys[i]
		}
	}

	lattrs, rattrs, err := colexec.ResolveJoinAttrs(ctx, left.Attrs, right.Attrs, shared, lsuffix, rsuffix)
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

	ln, rn := int64(left.Length()), int64(right.Length())

	var data []byte
	hashRow := func(keys []*vector.Vector, i int64) (uint64, bool) {
		data = data[:0]
		for _, vec := range keys {
			if nulls.Contains(vec.Nsp, uint64(i)) {
				return 0, false
			}
			data = colexec.AppendKeyValue(data, vec, i)
		}
		return hashtable.BytesHash(data), true
	}
	keysEqual := func(i, j int64) bool {
		for k := range lkeys {
			if colexec.CompareAt(lkeys[k], rkeys[k], i, j) != 0 {
				return false
			}
		}
		return true
	}

	ht := make(map[uint64][]int64)
	for j := int64(0); j < rn; j++ {
		if h, ok := hashRow(rkeys, j); ok {
			ht[h] = append(ht[h], j)
		}
	}

	emit := func(li, rj int64) error {
		for i, vec := range left.Vecs {
			switch {
			case li >= 0:
				if err := vector.UnionOne(out.Vecs[i], vec, li); err != nil {
					return err
				}
			case coalesce[i] != nil:
				if err := vector.UnionOne(out.Vecs[i], coalesce[i], rj); err != nil {
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

	matched := make([]bool, rn)
	for i := int64(0); i < ln; i++ {
		var hits []int64
		if h, ok := hashRow(lkeys, i); ok {
			for _, j := range ht[h] {
				if keysEqual(i, j) {
					hits = append(hits, j)
				}
			}
		}
		if len(hits) == 0 {
			if keepLeft {
				if err := emit(i, -1); err != nil {
					return nil, err
				}
			}
			continue
		}
		for _, j := range hits {
			matched[j] = true
			if err := emit(i, j); err != nil {
				return nil, err
			}
		}
	}
	if keepRight {
		for j := int64(0); j < rn; j++ {
			if !matched[j] {
				if err := emit(-1, j); err != nil {
					return nil, err
				}
			}
		}
	}
	return out, nil
}
