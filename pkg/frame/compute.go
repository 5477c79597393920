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

package frame

import (
	"context"

	"github.com/matrixorigin/moframe/pkg/common/moerr"
	"github.com/matrixorigin/moframe/pkg/container/batch"
	"github.com/matrixorigin/moframe/pkg/dag"
)

// Runner runs a task graph and returns the batches of the requested
// keys.
type Runner interface {
	Run(ctx context.Context, g *dag.Graph, targets ...dag.Key) (map[dag.Key]*batch.Batch, error)
}

// Collect computes every partition and returns them in order.
func (f *Frame[T]) Collect(ctx context.Context, r Runner) ([]*batch.Batch, error) {
	if f.NPartitions == 0 {
		return nil, nil
	}
	targets := make([]dag.Key, f.NPartitions)
	for i := range targets {
		targets[i] = f.Key(i)
	}
	res, err := r.Run(ctx, f.Graph, targets...)
	if err != nil {
		return nil, err
	}
	out := make([]*batch.Batch, f.NPartitions)
	for i, k := range targets {
		bat, ok := res[k]
		if !ok {
			return nil, moerr.NewInternalError(ctx, "partition %s missing from the run results", k)
		}
		out[i] = bat
	}
	return out, nil
}

// Compute materializes the whole frame as a single batch, partitions
// stacked in order.
func (f *Frame[T]) Compute(ctx context.Context, r Runner) (*batch.Batch, error) {
	bats, err := f.Collect(ctx, r)
	if err != nil {
		return nil, err
	}
	out := f.Placeholder()
	for _, bat := range bats {
		if err := out.Append(ctx, bat); err != nil {
			return nil, err
		}
	}
	return out, nil
}
