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
	"testing"

	"github.com/matrixorigin/moframe/pkg/common/moerr"
	"github.com/matrixorigin/moframe/pkg/container/batch"
	"github.com/matrixorigin/moframe/pkg/container/nulls"
	"github.com/matrixorigin/moframe/pkg/container/vector"
	"github.com/matrixorigin/moframe/pkg/dag"
	"github.com/matrixorigin/moframe/pkg/executor"
	"github.com/matrixorigin/moframe/pkg/frame"
	"github.com/matrixorigin/moframe/pkg/plan"
	"github.com/matrixorigin/moframe/pkg/testutil"
	"github.com/stretchr/testify/require"
)

func TestConcatIndexedOuter(t *testing.T) {
	ctx := context.TODO()
	tk := dag.NewTokens()
	a := kvFrame(t, tk, "v", []int64{1, 4},
		[2][]int64{{1, 3}, {10, 30}})
	b := kvFrame(t, tk, "w", []int64{4, 9},
		[2][]int64{{4, 8}, {400, 800}})

	c, err := ConcatIndexed(ctx, tk, []*frame.Frame[int64]{a, b}, plan.PolicyOuter)
	require.NoError(t, err)
	require.Equal(t, []string{"k", "v", "w"}, c.Attrs)
	require.Equal(t, "k", c.IndexAttr)
	require.Equal(t, []int64{1, 4, 9}, c.Divisions)
	require.Equal(t, 2, c.NPartitions)

	out, err := c.Compute(ctx, executor.New())
	require.NoError(t, err)
	require.Equal(t, []int64{1, 3, 4, 8}, vector.MustTCols[int64](out.GetVector("k")))
	v := out.GetVector("v")
	require.Equal(t, 2, nulls.Length(v.Nsp))
	require.True(t, nulls.Contains(v.Nsp, 2))
	require.True(t, nulls.Contains(v.Nsp, 3))
	require.Equal(t, int64(10), vector.MustTCols[int64](v)[0])
	w := out.GetVector("w")
	require.Equal(t, 2, nulls.Length(w.Nsp))
	require.True(t, nulls.Contains(w.Nsp, 0))
	require.Equal(t, int64(800), vector.MustTCols[int64](w)[3])
}

func TestConcatIndexedInner(t *testing.T) {
	ctx := context.TODO()
	tk := dag.NewTokens()
	a := kvFrame(t, tk, "v", []int64{1, 4},
		[2][]int64{{1, 3}, {10, 30}})
	b := kvFrame(t, tk, "w", []int64{4, 9},
		[2][]int64{{4, 8}, {400, 800}})

	c, err := ConcatIndexed(ctx, tk, []*frame.Frame[int64]{a, b}, plan.PolicyInner)
	require.NoError(t, err)
	// only the index column lives on both sides
	require.Equal(t, []string{"k"}, c.Attrs)

	out, err := c.Compute(ctx, executor.New())
	require.NoError(t, err)
	require.Equal(t, 1, len(out.Vecs))
	require.Equal(t, []int64{1, 3, 4, 8}, vector.MustTCols[int64](out.GetVector("k")))
}

func TestConcatIndexedOverlap(t *testing.T) {
	ctx := context.TODO()
	tk := dag.NewTokens()
	a := kvFrame(t, tk, "v", []int64{1, 5},
		[2][]int64{{1, 2, 4}, {10, 20, 40}})
	b := kvFrame(t, tk, "v", []int64{2, 9},
		[2][]int64{{2, 6}, {200, 600}})

	c, err := ConcatIndexed(ctx, tk, []*frame.Frame[int64]{a, b}, plan.PolicyOuter)
	require.NoError(t, err)
	require.Equal(t, []int64{1, 2, 5, 9}, c.Divisions)
	require.Equal(t, 3, c.NPartitions)

	// within an interval the first frame's rows come first
	out, err := c.Compute(ctx, executor.New())
	require.NoError(t, err)
	require.Equal(t, []int64{1, 2, 4, 2, 6}, vector.MustTCols[int64](out.GetVector("k")))
	require.Equal(t, []int64{10, 20, 40, 200, 600}, vector.MustTCols[int64](out.GetVector("v")))
}

func TestConcatIndexedSingle(t *testing.T) {
	ctx := context.TODO()
	tk := dag.NewTokens()
	a := kvFrame(t, tk, "v", []int64{1, 3, 7},
		[2][]int64{{1, 2}, {10, 20}},
		[2][]int64{{3, 6}, {30, 60}})

	c, err := ConcatIndexed(ctx, tk, []*frame.Frame[int64]{a}, plan.PolicyOuter)
	require.NoError(t, err)
	require.Equal(t, a.Divisions, c.Divisions)
	require.Equal(t, a.NPartitions, c.NPartitions)

	out, err := c.Compute(ctx, executor.New())
	require.NoError(t, err)
	require.Equal(t, []int64{1, 2, 3, 6}, vector.MustTCols[int64](out.GetVector("k")))
}

func TestConcatIndexedWithEmpty(t *testing.T) {
	ctx := context.TODO()
	tk := dag.NewTokens()
	a := kvFrame(t, tk, "v", []int64{1, 4},
		[2][]int64{{1, 3}, {10, 30}})
	e, err := a.Repartition(ctx, tk, []int64{})
	require.NoError(t, err)
	require.Equal(t, 0, e.NPartitions)

	c, err := ConcatIndexed(ctx, tk, []*frame.Frame[int64]{a, e}, plan.PolicyOuter)
	require.NoError(t, err)
	require.Equal(t, []int64{1, 4}, c.Divisions)
	require.Equal(t, 1, c.NPartitions)

	out, err := c.Compute(ctx, executor.New())
	require.NoError(t, err)
	require.Equal(t, []int64{1, 3}, vector.MustTCols[int64](out.GetVector("k")))
}

func TestConcatIndexedErrors(t *testing.T) {
	ctx := context.TODO()
	tk := dag.NewTokens()

	_, err := ConcatIndexed(ctx, tk, nil, plan.PolicyOuter)
	require.True(t, moerr.IsMoErrCode(err, moerr.ErrInvalidInput))

	a := kvFrame(t, tk, "v", []int64{1, 4}, [2][]int64{{1, 3}, {10, 30}})
	obats := []*batch.Batch{testutil.NewBatch([]string{"t", "v"},
		testutil.NewInt64Vector([]int64{1}),
		testutil.NewInt64Vector([]int64{10}))}
	other, err := frame.FromBatches(ctx, tk, obats, "t", []int64{1, 1})
	require.NoError(t, err)
	_, err = ConcatIndexed(ctx, tk, []*frame.Frame[int64]{a, other}, plan.PolicyOuter)
	require.True(t, moerr.IsMoErrCode(err, moerr.ErrInvalidInput))

	sbats := []*batch.Batch{testutil.NewBatch([]string{"k", "v"},
		testutil.NewInt64Vector([]int64{1}),
		testutil.NewStringVector([]string{"x"}))}
	sf, err := frame.FromBatches(ctx, tk, sbats, "k", []int64{1, 1})
	require.NoError(t, err)
	_, err = ConcatIndexed(ctx, tk, []*frame.Frame[int64]{a, sf}, plan.PolicyOuter)
	require.True(t, moerr.IsMoErrCode(err, moerr.ErrInvalidInput))

	b := kvFrame(t, tk, "w", []int64{1, 4}, [2][]int64{{2, 3}, {20, 30}})
	shuffled, err := b.Shuffle(ctx, tk, []string{"k"}, 2)
	require.NoError(t, err)
	_, err = ConcatIndexed(ctx, tk, []*frame.Frame[int64]{a, shuffled}, plan.PolicyOuter)
	require.True(t, moerr.IsMoErrCode(err, moerr.ErrInvalidState))

	_, err = ConcatIndexed(ctx, tk, []*frame.Frame[int64]{a}, plan.ConcatPolicy(7))
	require.True(t, moerr.IsMoErrCode(err, moerr.ErrInvalidInput))
}
