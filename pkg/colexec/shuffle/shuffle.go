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

// Package shuffle redistributes partitions by key hash.  The hash
// seeds are fixed, so equal keys land in the same bucket whichever
// partition or run they come from.
package shuffle

import (
	"context"

	"github.com/matrixorigin/moframe/pkg/colexec"
	"github.com/matrixorigin/moframe/pkg/common/moerr"
	"github.com/matrixorigin/moframe/pkg/container/batch"
	"github.com/matrixorigin/moframe/pkg/container/hashtable"
	"github.com/matrixorigin/moframe/pkg/container/nulls"
	"github.com/matrixorigin/moframe/pkg/container/vector"
)

// Split cuts bat into buckets batches by the hash of the key columns.
// Rows keep their relative order inside a bucket and rows with a null
// in any key column all go to bucket 0.
func Split(ctx context.Context, bat *batch.Batch, attrs []string, buckets int32) ([]*batch.Batch, error) {
	if buckets <= 0 {
		return nil, moerr.NewInvalidInput(ctx, "split into %d buckets", buckets)
	}
	if len(attrs) == 0 {
		return nil, moerr.NewInvalidInput(ctx, "split without key columns")
	}
	vecs := make([]*vector.Vector, len(attrs))
	for i, attr := range attrs {
		pos := bat.Pos(attr)
		if pos < 0 {
			return nil, moerr.NewBadFieldError(ctx, attr, "split input")
		}
		vecs[i] = bat.Vecs[pos]
	}
	sels := make([][]int64, buckets)
	n := int64(bat.Length())
	var intCol []int64
	if len(vecs) == 1 {
		intCol, _ = vecs[0].Col.([]int64)
	}
	var data []byte
	for i := int64(0); i < n; i++ {
		null := false
		for _, vec := range vecs {
			if nulls.Contains(vec.Nsp, uint64(i)) {
				null = true
				break
			}
		}
		b := int64(0)
		if !null {
			var h uint64
			if intCol != nil {
				h = hashtable.Int64Hash(uint64(intCol[i]))
			} else {
				data = data[:0]
				for _, vec := range vecs {
					data = colexec.AppendKeyValue(data, vec, i)
				}
				h = hashtable.BytesHash(data)
			}
			b = int64(h % uint64(buckets))
		}
		sels[b] = append(sels[b], i)
	}
	out := make([]*batch.Batch, buckets)
	for b := range out {
		out[b] = batch.Filter(bat, sels[b])
	}
	return out, nil
}

// Gather stacks same layout batches into one, the body of a bucket
// barrier task.
func Gather(ctx context.Context, bats []*batch.Batch) (*batch.Batch, error) {
	if len(bats) == 0 {
		return nil, moerr.NewInvalidInput(ctx, "gather of no inputs")
	}
	out := batch.NewWithSchema(bats[0].Attrs, bats[0].Types())
	for _, bat := range bats {
		if err := out.Append(ctx, bat); err != nil {
			return nil, err
		}
	}
	return out, nil
}
