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

package approxcd

import (
	"context"
	"fmt"
	"testing"

	"github.com/matrixorigin/moframe/pkg/common/moerr"
	"github.com/matrixorigin/moframe/pkg/container/batch"
	"github.com/matrixorigin/moframe/pkg/container/vector"
	"github.com/matrixorigin/moframe/pkg/testutil"
	"github.com/stretchr/testify/require"
)

func TestSketchAndEstimate(t *testing.T) {
	ctx := context.TODO()
	bat := testutil.NewBatch([]string{"k"},
		testutil.NewInt64Vector([]int64{1, 2, 3, 2, 1}))

	sk, err := Sketch(ctx, bat, "k")
	require.NoError(t, err)
	require.Equal(t, []string{SketchAttr}, sk.Attrs)
	require.Equal(t, 1, sk.Length())

	est, err := Estimate(ctx, []*batch.Batch{sk})
	require.NoError(t, err)
	require.Equal(t, []string{NdvAttr}, est.Attrs)
	require.Equal(t, []int64{3}, vector.MustTCols[int64](est.Vecs[0]))
}

func TestEstimateAcrossPartitions(t *testing.T) {
	ctx := context.TODO()
	// 0..999 in one piece and the same values cut in two pieces
	// estimate to the same count
	whole := make([]int64, 1000)
	for i := range whole {
		whole[i] = int64(i)
	}
	b := testutil.NewBatch([]string{"k"}, testutil.NewInt64Vector(whole))
	b1 := testutil.NewBatch([]string{"k"}, testutil.NewInt64Vector(whole[:400]))
	b2 := testutil.NewBatch([]string{"k"}, testutil.NewInt64Vector(whole[300:]))

	sk, err := Sketch(ctx, b, "k")
	require.NoError(t, err)
	sk1, err := Sketch(ctx, b1, "k")
	require.NoError(t, err)
	sk2, err := Sketch(ctx, b2, "k")
	require.NoError(t, err)

	est, err := Estimate(ctx, []*batch.Batch{sk})
	require.NoError(t, err)
	split, err := Estimate(ctx, []*batch.Batch{sk1, sk2})
	require.NoError(t, err)
	require.Equal(t,
		vector.MustTCols[int64](est.Vecs[0])[0],
		vector.MustTCols[int64](split.Vecs[0])[0])
}

func TestSketchSkipsNulls(t *testing.T) {
	ctx := context.TODO()
	bat := testutil.NewBatch([]string{"k"},
		testutil.SetNulls(testutil.NewInt64Vector([]int64{0, 0, 7}), 0, 1))

	sk, err := Sketch(ctx, bat, "k")
	require.NoError(t, err)
	est, err := Estimate(ctx, []*batch.Batch{sk})
	require.NoError(t, err)
	require.Equal(t, []int64{1}, vector.MustTCols[int64](est.Vecs[0]))
}

func TestSketchStrings(t *testing.T) {
	ctx := context.TODO()
	vs := make([]string, 200)
	for i := range vs {
		vs[i] = fmt.Sprintf("user-%d", i%50)
	}
	bat := testutil.NewBatch([]string{"k"}, testutil.NewStringVector(vs))
	sk, err := Sketch(ctx, bat, "k")
	require.NoError(t, err)
	est, err := Estimate(ctx, []*batch.Batch{sk})
	require.NoError(t, err)
	require.Equal(t, []int64{50}, vector.MustTCols[int64](est.Vecs[0]))
}

func TestEstimateEmpty(t *testing.T) {
	ctx := context.TODO()
	est, err := Estimate(ctx, nil)
	require.NoError(t, err)
	require.Equal(t, []int64{0}, vector.MustTCols[int64](est.Vecs[0]))
}

func TestSketchErrors(t *testing.T) {
	ctx := context.TODO()
	bat := testutil.NewBatch([]string{"k"}, testutil.NewInt64Vector([]int64{1}))
	_, err := Sketch(ctx, bat, "no")
	require.True(t, moerr.IsMoErrCode(err, moerr.ErrBadFieldError))

	_, err = Estimate(ctx, []*batch.Batch{bat})
	require.True(t, moerr.IsMoErrCode(err, moerr.ErrBadFieldError))

	bad := testutil.NewBatch([]string{SketchAttr}, testutil.NewStringVector([]string{"zz"}))
	_, err = Estimate(ctx, []*batch.Batch{bad})
	require.True(t, moerr.IsMoErrCode(err, moerr.ErrInvalidInput))
}
