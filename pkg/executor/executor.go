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

// Package executor runs task graphs on a bounded worker pool.  A task
// starts as soon as every task it references has finished, the first
// failure cancels the rest of the run.
package executor

import (
	"context"
	"runtime"
	"sync"

	"github.com/matrixorigin/moframe/pkg/colexec/approxcd"
	"github.com/matrixorigin/moframe/pkg/colexec/concat"
	"github.com/matrixorigin/moframe/pkg/colexec/join"
	"github.com/matrixorigin/moframe/pkg/colexec/merge"
	"github.com/matrixorigin/moframe/pkg/colexec/restrict"
	"github.com/matrixorigin/moframe/pkg/colexec/shuffle"
	"github.com/matrixorigin/moframe/pkg/common/moerr"
	"github.com/matrixorigin/moframe/pkg/container/batch"
	"github.com/matrixorigin/moframe/pkg/dag"
	"github.com/matrixorigin/moframe/pkg/logutil"
	"github.com/panjf2000/ants/v2"
	"go.uber.org/zap"
)

var numCPU = runtime.NumCPU

type Executor struct {
	parallelism int
}

type Option func(*Executor)

// WithParallelism caps the number of tasks running at once.
func WithParallelism(n int) Option {
	return func(e *Executor) {
		if n > 0 {
			e.parallelism = n
		}
	}
}

func New(opts ...Option) *Executor {
	e := &Executor{parallelism: numCPU()}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// runState is shared by the workers of one run.  A split task leaves
// a bucket group in results, every other task a single batch.
type runState struct {
	sync.Mutex
	results map[dag.Key]any
	err     error
}

func (st *runState) fail(err error) {
	st.Lock()
	if st.err == nil {
		st.err = err
	}
	st.Unlock()
}

func (st *runState) batchOf(ctx context.Context, k dag.Key) (*batch.Batch, error) {
	st.Lock()
	defer st.Unlock()
	if bat, ok := st.results[k].(*batch.Batch); ok {
		return bat, nil
	}
	return nil, moerr.NewInvalidState(ctx, "result of %s is not a single batch", k)
}

func (st *runState) groupOf(ctx context.Context, k dag.Key) ([]*batch.Batch, error) {
	st.Lock()
	defer st.Unlock()
	if group, ok := st.results[k].([]*batch.Batch); ok {
		return group, nil
	}
	return nil, moerr.NewInvalidState(ctx, "operand %s is not a split group", k)
}

func (st *runState) operandBatch(ctx context.Context, o dag.Operand) (*batch.Batch, error) {
	if !o.IsRef() {
		return o.Lit, nil
	}
	return st.batchOf(ctx, o.Key)
}

func (st *runState) operandBatches(ctx context.Context, os []dag.Operand) ([]*batch.Batch, error) {
	bats := make([]*batch.Batch, len(os))
	for i, o := range os {
		bat, err := st.operandBatch(ctx, o)
		if err != nil {
			return nil, err
		}
		bats[i] = bat
	}
	return bats, nil
}

// Run executes every task the targets depend on and returns the
// target results.  Without explicit targets the whole graph runs.
func (e *Executor) Run(ctx context.Context, g *dag.Graph, targets ...dag.Key) (map[dag.Key]*batch.Batch, error) {
	if err := g.Validate(ctx); err != nil {
		return nil, err
	}
	if len(targets) == 0 {
		targets = g.Keys()
	}
	needed, err := g.Ancestors(ctx, targets)
	if err != nil {
		return nil, err
	}

	// dependency counts and reverse edges inside the needed set
	waits := make(map[dag.Key]int, len(needed))
	dependents := make(map[dag.Key][]dag.Key, len(needed))
	for k := range needed {
		deps := g.Dependencies(k)
		waits[k] = len(deps)
		for _, dep := range deps {
			dependents[dep] = append(dependents[dep], k)
		}
	}

	pool, err := ants.NewPool(e.parallelism)
	if err != nil {
		return nil, moerr.ConvertGoError(ctx, err)
	}
	defer pool.Release()

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	logutil.Debug("task graph run",
		zap.Int("tasks", len(needed)),
		zap.Int("parallelism", e.parallelism))

	st := &runState{results: make(map[dag.Key]any, len(needed))}
	var wg sync.WaitGroup

	var schedule func(k dag.Key)
	run := func(k dag.Key) {
		defer wg.Done()
		if ctx.Err() != nil {
			return
		}
		task, _ := g.Get(k)
		res, err := e.dispatch(ctx, st, k, task)
		if err != nil {
			logutil.Error("task failed",
				zap.String("task", k.String()), zap.Error(err))
			st.fail(err)
			cancel()
			return
		}
		st.Lock()
		st.results[k] = res
		var ready []dag.Key
		for _, dep := range dependents[k] {
			waits[dep]--
			if waits[dep] == 0 {
				ready = append(ready, dep)
			}
		}
		st.Unlock()
		for _, next := range ready {
			schedule(next)
		}
	}
	// submit from a fresh goroutine, a worker submitting in place
	// would hold its slot while waiting for a free one
	schedule = func(k dag.Key) {
		wg.Add(1)
		go func() {
			if err := pool.Submit(func() { run(k) }); err != nil {
				st.fail(moerr.ConvertGoError(ctx, err))
				cancel()
				wg.Done()
			}
		}()
	}

	for k := range needed {
		if waits[k] == 0 {
			schedule(k)
		}
	}
	wg.Wait()

	if st.err == nil && ctx.Err() != nil {
		st.fail(moerr.ConvertGoError(ctx, ctx.Err()))
	}
	if st.err != nil {
		return nil, st.err
	}

	out := make(map[dag.Key]*batch.Batch, len(targets))
	for _, k := range targets {
		bat, err := st.batchOf(ctx, k)
		if err != nil {
			return nil, err
		}
		out[k] = bat
	}
	return out, nil
}

func (e *Executor) dispatch(ctx context.Context, st *runState, k dag.Key, task dag.Task) (any, error) {
	switch t := task.(type) {
	case *dag.SourceTask:
		if t.Bat == nil {
			return nil, moerr.NewInvalidState(ctx, "source task %s has no data", k)
		}
		return t.Bat, nil
	case *dag.RangeTask:
		bats, err := st.operandBatches(ctx, t.Inputs)
		if err != nil {
			return nil, err
		}
		return restrict.Range(ctx, bats, t.Attr, t.Lo, t.Hi, t.IncludeHi)
	case *dag.JoinTask:
		left, err := st.operandBatch(ctx, t.Left)
		if err != nil {
			return nil, err
		}
		right, err := st.operandBatch(ctx, t.Right)
		if err != nil {
			return nil, err
		}
		return join.Join(ctx, left, right, t.Attr, t.Kind, t.LSuffix, t.RSuffix)
	case *dag.MergeTask:
		left, err := st.operandBatch(ctx, t.Left)
		if err != nil {
			return nil, err
		}
		right, err := st.operandBatch(ctx, t.Right)
		if err != nil {
			return nil, err
		}
		return merge.Merge(ctx, left, right, t.Kind, t.LeftOn, t.RightOn, t.LSuffix, t.RSuffix)
	case *dag.ConcatTask:
		bats, err := st.operandBatches(ctx, t.Inputs)
		if err != nil {
			return nil, err
		}
		return concat.Concat(ctx, bats, t.Policy)
	case *dag.SplitTask:
		bat, err := st.operandBatch(ctx, t.Input)
		if err != nil {
			return nil, err
		}
		return shuffle.Split(ctx, bat, t.Attrs, t.Buckets)
	case *dag.BucketTask:
		picks := make([]*batch.Batch, len(t.Inputs))
		for i, o := range t.Inputs {
			if !o.IsRef() {
				return nil, moerr.NewInvalidState(ctx, "bucket input of %s is not a split group", k)
			}
			group, err := st.groupOf(ctx, o.Key)
			if err != nil {
				return nil, err
			}
			if int(t.Idx) < 0 || int(t.Idx) >= len(group) {
				return nil, moerr.NewInternalError(ctx, "bucket %d of a %d bucket split", t.Idx, len(group))
			}
			picks[i] = group[t.Idx]
		}
		return shuffle.Gather(ctx, picks)
	case *dag.SketchTask:
		bat, err := st.operandBatch(ctx, t.Input)
		if err != nil {
			return nil, err
		}
		return approxcd.Sketch(ctx, bat, t.Attr)
	case *dag.EstimateTask:
		bats, err := st.operandBatches(ctx, t.Inputs)
		if err != nil {
			return nil, err
		}
		return approxcd.Estimate(ctx, bats)
	}
	return nil, moerr.NewNYI(ctx, "%s task", task.Op())
}
