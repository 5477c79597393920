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

// Package approxcd estimates the distinct value count of a column
// with hyperloglog sketches.  Partitions sketch independently and the
// sketches merge without loss, so the estimate does not depend on how
// the rows are partitioned.
package approxcd

import (
	"context"

	hll "github.com/axiomhq/hyperloglog"
	"github.com/matrixorigin/moframe/pkg/colexec"
	"github.com/matrixorigin/moframe/pkg/common/moerr"
	"github.com/matrixorigin/moframe/pkg/container/batch"
	"github.com/matrixorigin/moframe/pkg/container/nulls"
	"github.com/matrixorigin/moframe/pkg/container/types"
	"github.com/matrixorigin/moframe/pkg/container/vector"
)

const (
	// SketchAttr names the column carrying a serialized sketch.
	SketchAttr = "sketch"
	// NdvAttr names the column carrying the estimated distinct count.
	NdvAttr = "ndv"
)

// Sketch summarizes the attr column of bat into a one row batch
// holding a serialized sketch.  Null rows do not count.
func Sketch(ctx context.Context, bat *batch.Batch, attr string) (*batch.Batch, error) {
	pos := bat.Pos(attr)
	if pos < 0 {
		return nil, moerr.NewBadFieldError(ctx, attr, "sketch input")
	}
	vec := bat.Vecs[pos]
	sk := hll.New()
	var data []byte
	n := int64(bat.Length())
	for i := int64(0); i < n; i++ {
		if nulls.Contains(vec.Nsp, uint64(i)) {
			continue
		}
		data = colexec.AppendKeyValue(data[:0], vec, i)
		sk.Insert(data)
	}
	buf, err := sk.MarshalBinary()
	if err != nil {
		return nil, moerr.NewInternalError(ctx, "marshal cardinality sketch: %v", err)
	}
	out := batch.NewWithSchema([]string{SketchAttr}, []types.Type{types.New(types.T_varchar)})
	if err := vector.Append(out.Vecs[0], string(buf)); err != nil {
		return nil, err
	}
	return out, nil
}

// Estimate merges the sketches of bats into one and returns a one row
// batch holding the estimated distinct count.
func Estimate(ctx context.Context, bats []*batch.Batch) (*batch.Batch, error) {
	var acc *hll.Sketch
	for _, bat := range bats {
		pos := bat.Pos(SketchAttr)
		if pos < 0 {
			return nil, moerr.NewBadFieldError(ctx, SketchAttr, "estimate input")
		}
		for _, s := range vector.MustTCols[string](bat.Vecs[pos]) {
			sk := hll.New()
			if err := sk.UnmarshalBinary([]byte(s)); err != nil {
				return nil, moerr.NewInvalidInput(ctx, "malformed cardinality sketch: %v", err)
			}
			if acc == nil {
				acc = sk
				continue
			}
			if err := acc.Merge(sk); err != nil {
				return nil, moerr.NewInternalError(ctx, "merge cardinality sketch: %v", err)
			}
		}
	}
	var ndv int64
	if acc != nil {
		ndv = int64(acc.Estimate())
	}
	out := batch.NewWithSchema([]string{NdvAttr}, []types.Type{types.New(types.T_int64)})
	if err := vector.Append(out.Vecs[0], ndv); err != nil {
		return nil, err
	}
	return out, nil
}
