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

// Package restrict cuts partitions down to an index range.
package restrict

import (
	"context"

	"github.com/matrixorigin/moframe/pkg/colexec"
	"github.com/matrixorigin/moframe/pkg/common/moerr"
	"github.com/matrixorigin/moframe/pkg/container/batch"
)

// Range stacks the rows of bats whose attr value lies in [lo, hi), or
// [lo, hi] when includeHi.  The batches must share a column layout.
// Stacking ordered partitions in order keeps the result ordered.
func Range(ctx context.Context, bats []*batch.Batch, attr string, lo, hi any, includeHi bool) (*batch.Batch, error) {
	if len(bats) == 0 {
		return nil, moerr.NewInvalidInput(ctx, "range restriction of no inputs")
	}
	out := batch.NewWithSchema(bats[0].Attrs, bats[0].Types())
	for _, bat := range bats {
		pos := bat.Pos(attr)
		if pos < 0 {
			return nil, moerr.NewBadFieldError(ctx, attr, "range restriction input")
		}
		sels, err := colexec.RangeSels(ctx, bat.Vecs[pos], lo, hi, includeHi)
		if err != nil {
			return nil, err
		}
		if len(sels) == 0 {
			continue
		}
		if err := out.Append(ctx, batch.Filter(bat, sels)); err != nil {
			return nil, err
		}
	}
	return out, nil
}
