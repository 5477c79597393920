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

// Package concat implements the row wise concatenation of partitions
// whose column sets may differ.
package concat

import (
	"context"

	"github.com/matrixorigin/moframe/pkg/common/moerr"
	"github.com/matrixorigin/moframe/pkg/container/batch"
	"github.com/matrixorigin/moframe/pkg/container/types"
	"github.com/matrixorigin/moframe/pkg/container/vector"
	"github.com/matrixorigin/moframe/pkg/plan"
)

// Concat stacks the rows of bats in order.  With PolicyOuter the
// result carries the union of all columns in first seen order and
// rows null fill the columns their batch does not have.  With
// PolicyInner only the columns present in every batch survive, in the
// order of the first batch.  A column must have one type across the
// batches that carry it.
func Concat(ctx context.Context, bats []*batch.Batch, policy plan.ConcatPolicy) (*batch.Batch, error) {
	if len(bats) == 0 {
		return nil, moerr.NewInvalidInput(ctx, "concat of no inputs")
	}
	var attrs []string
	switch policy {
	case plan.PolicyOuter:
		seen := make(map[string]bool)
		for _, bat := range bats {
			for _, attr := range bat.Attrs {
				if !seen[attr] {
					seen[attr] = true
					attrs = append(attrs, attr)
				}
			}
		}
	case plan.PolicyInner:
		for _, attr := range bats[0].Attrs {
			everywhere := true
			for _, bat := range bats[1:] {
				if bat.Pos(attr) < 0 {
					everywhere = false
					break
				}
			}
			if everywhere {
				attrs = append(attrs, attr)
			}
		}
	default:
		return nil, moerr.NewInvalidInput(ctx, "unknown concat policy %d", policy)
	}

	typs := make([]types.Type, len(attrs))
	for i, attr := range attrs {
		for _, bat := range bats {
			vec := bat.GetVector(attr)
			if vec == nil {
				continue
			}
			if typs[i].Oid == types.T_any {
				typs[i] = vec.Typ
			} else if !typs[i].Eq(vec.Typ) {
				return nil, moerr.NewInvalidInput(ctx, "concat column '%s' type mismatch: %s vs %s",
					attr, typs[i], vec.Typ)
			}
		}
	}

	out := batch.NewWithSchema(attrs, typs)
	for _, bat := range bats {
		rows := bat.Length()
		for i, attr := range attrs {
			vec := bat.GetVector(attr)
			if vec == nil {
				for r := 0; r < rows; r++ {
					vector.UnionNull(out.Vecs[i])
				}
				continue
			}
			if err := vector.UnionAll(out.Vecs[i], vec); err != nil {
				return nil, err
			}
		}
	}
	return out, nil
}
