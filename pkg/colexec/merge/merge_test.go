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

package merge

import (
	"context"
	"testing"

	"github.com/matrixorigin/moframe/pkg/common/moerr"
	"github.com/matrixorigin/moframe/pkg/container/nulls"
	"github.com/matrixorigin/moframe/pkg/container/vector"
	"github.com/matrixorigin/moframe/pkg/plan"
	"github.com/matrixorigin/moframe/pkg/testutil"
	"github.com/stretchr/testify/require"
)

func TestMergeInner(t *testing.T) {
	ctx := context.TODO()
	left := testutil.NewBatch([]string{"k", "v"},
		testutil.NewStringVector([]string{"a", "b", "c"}),
		testutil.NewInt64Vector([]int64{1, 2, 3}))
	right := testutil.NewBatch([]string{"k", "w"},
		testutil.NewStringVector([]string{"b", "b", "d"}),
		testutil.NewInt64Vector([]int64{20, 21, 40}))

	out, err := Merge(ctx, left, right, plan.Inner, []string{"k"}, []string{"k"}, "", "")
	require.NoError(t, err)
	require.Equal(t, []string{"k", "v", "w"}, out.Attrs)
	require.Equal(t, []string{"b", "b"}, vector.MustTCols[string](out.Vecs[0]))
	require.Equal(t, []int64{2, 2}, vector.MustTCols[int64](out.Vecs[1]))
	require.Equal(t, []int64{20, 21}, vector.MustTCols[int64](out.Vecs[2]))
}

func TestMergeDifferentKeyNames(t *testing.T) {
	ctx := context.TODO()
	left := testutil.NewBatch([]string{"a", "v"},
		testutil.NewInt64Vector([]int64{1, 2}),
		testutil.NewInt64Vector([]int64{10, 20}))
	right := testutil.NewBatch([]string{"b", "w"},
		testutil.NewInt64Vector([]int64{2, 3}),
		testutil.NewInt64Vector([]int64{200, 300}))

	out, err := Merge(ctx, left, right, plan.Inner, []string{"a"}, []string{"b"}, "", "")
	require.NoError(t, err)
	// both key columns survive when the names differ
	require.Equal(t, []string{"a", "v", "b", "w"}, out.Attrs)
	require.Equal(t, []int64{2}, vector.MustTCols[int64](out.Vecs[0]))
	require.Equal(t, []int64{2}, vector.MustTCols[int64](out.Vecs[2]))
}

func TestMergeOuter(t *testing.T) {
	ctx := context.TODO()
	left := testutil.NewBatch([]string{"k", "v"},
		testutil.NewInt64Vector([]int64{1, 2}),
		testutil.NewInt64Vector([]int64{10, 20}))
	right := testutil.NewBatch([]string{"k", "w"},
		testutil.NewInt64Vector([]int64{2, 9}),
		testutil.NewInt64Vector([]int64{200, 900}))

	out, err := Merge(ctx, left, right, plan.Outer, []string{"k"}, []string{"k"}, "", "")
	require.NoError(t, err)
	require.Equal(t, 3, out.Length())
	// left rows in order, then the unmatched right rows
	require.Equal(t, []int64{1, 2, 9}, vector.MustTCols[int64](out.Vecs[0]))
	require.False(t, nulls.Any(out.Vecs[0].Nsp))
	require.True(t, nulls.Contains(out.GetVector("w").Nsp, 0))
	require.True(t, nulls.Contains(out.GetVector("v").Nsp, 2))
	require.Equal(t, int64(900), vector.MustTCols[int64](out.GetVector("w"))[2])
}

func TestMergeLeftAndRight(t *testing.T) {
	ctx := context.TODO()
	left := testutil.NewBatch([]string{"k"}, testutil.NewInt64Vector([]int64{1, 2}))
	right := testutil.NewBatch([]string{"k"}, testutil.NewInt64Vector([]int64{2, 3}))

	out, err := Merge(ctx, left, right, plan.Left, []string{"k"}, []string{"k"}, "", "")
	require.NoError(t, err)
	require.Equal(t, []int64{1, 2}, vector.MustTCols[int64](out.Vecs[0]))

	out, err = Merge(ctx, left, right, plan.Right, []string{"k"}, []string{"k"}, "", "")
	require.NoError(t, err)
	require.Equal(t, []int64{2, 3}, vector.MustTCols[int64](out.Vecs[0]))
}

func TestMergeNullKeysNeverMatch(t *testing.T) {
	ctx := context.TODO()
	left := testutil.NewBatch([]string{"k", "v"},
		testutil.SetNulls(testutil.NewInt64Vector([]int64{0, 1}), 0),
		testutil.NewInt64Vector([]int64{10, 11}))
	right := testutil.NewBatch([]string{"k", "w"},
		testutil.SetNulls(testutil.NewInt64Vector([]int64{0, 1}), 0),
		testutil.NewInt64Vector([]int64{100, 101}))

	inner, err := Merge(ctx, left, right, plan.Inner, []string{"k"}, []string{"k"}, "", "")
	require.NoError(t, err)
	require.Equal(t, 1, inner.Length())

	outer, err := Merge(ctx, left, right, plan.Outer, []string{"k"}, []string{"k"}, "", "")
	require.NoError(t, err)
	require.Equal(t, 3, outer.Length())
}

func TestMergeMultiColumnKeys(t *testing.T) {
	ctx := context.TODO()
	left := testutil.NewBatch([]string{"a", "b", "v"},
		testutil.NewInt64Vector([]int64{1, 1, 2}),
		testutil.NewStringVector([]string{"x", "y", "x"}),
		testutil.NewInt64Vector([]int64{10, 11, 20}))
	right := testutil.NewBatch([]string{"a", "b", "w"},
		testutil.NewInt64Vector([]int64{1, 2}),
		testutil.NewStringVector([]string{"y", "x"}),
		testutil.NewInt64Vector([]int64{100, 200}))

	out, err := Merge(ctx, left, right, plan.Inner, []string{"a", "b"}, []string{"a", "b"}, "", "")
	require.NoError(t, err)
	require.Equal(t, 2, out.Length())
	require.Equal(t, []int64{1, 2}, vector.MustTCols[int64](out.Vecs[0]))
	require.Equal(t, []string{"y", "x"}, vector.MustTCols[string](out.Vecs[1]))
	require.Equal(t, []int64{11, 20}, vector.MustTCols[int64](out.GetVector("v")))
	require.Equal(t, []int64{100, 200}, vector.MustTCols[int64](out.GetVector("w")))
}

func TestMergeSuffixes(t *testing.T) {
	ctx := context.TODO()
	left := testutil.NewBatch([]string{"k", "v"},
		testutil.NewInt64Vector([]int64{1}),
		testutil.NewInt64Vector([]int64{10}))
	right := testutil.NewBatch([]string{"k", "v"},
		testutil.NewInt64Vector([]int64{1}),
		testutil.NewInt64Vector([]int64{100}))

	out, err := Merge(ctx, left, right, plan.Inner, []string{"k"}, []string{"k"}, "_x", "_y")
	require.NoError(t, err)
	require.Equal(t, []string{"k", "v_x", "v_y"}, out.Attrs)

	_, err = Merge(ctx, left, right, plan.Inner, []string{"k"}, []string{"k"}, "", "")
	require.True(t, moerr.IsMoErrCode(err, moerr.ErrInvalidInput))
}

func TestMergeErrors(t *testing.T) {
	ctx := context.TODO()
	left := testutil.NewBatch([]string{"k"}, testutil.NewInt64Vector([]int64{1}))
	right := testutil.NewBatch([]string{"k"}, testutil.NewStringVector([]string{"a"}))

	_, err := Merge(ctx, left, right, plan.Inner, nil, nil, "", "")
	require.True(t, moerr.IsMoErrCode(err, moerr.ErrInvalidInput))
	_, err = Merge(ctx, left, right, plan.Inner, []string{"k"}, []string{"k", "k"}, "", "")
	require.True(t, moerr.IsMoErrCode(err, moerr.ErrInvalidInput))
	_, err = Merge(ctx, left, right, plan.Inner, []string{"no"}, []string{"k"}, "", "")
	require.True(t, moerr.IsMoErrCode(err, moerr.ErrBadFieldError))
	_, err = Merge(ctx, left, right, plan.Inner, []string{"k"}, []string{"no"}, "", "")
	require.True(t, moerr.IsMoErrCode(err, moerr.ErrBadFieldError))
	_, err = Merge(ctx, left, right, plan.Inner, []string{"k"}, []string{"k"}, "", "")
	require.True(t, moerr.IsMoErrCode(err, moerr.ErrInvalidInput))
}
