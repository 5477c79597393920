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
	"testing"

	"github.com/matrixorigin/moframe/pkg/common/moerr"
	"github.com/matrixorigin/moframe/pkg/container/batch"
	"github.com/matrixorigin/moframe/pkg/container/vector"
	"github.com/matrixorigin/moframe/pkg/dag"
	"github.com/matrixorigin/moframe/pkg/executor"
	"github.com/matrixorigin/moframe/pkg/testutil"
	"github.com/stretchr/testify/require"
)

func TestApproxNDV(t *testing.T) {
	ctx := context.TODO()
	tk := dag.NewTokens()
	bats := []*batch.Batch{
		testutil.NewBatch([]string{"k", "v"},
			testutil.NewInt64Vector([]int64{1, 2, 3}),
			testutil.NewInt64Vector([]int64{7, 7, 8})),
		testutil.NewBatch([]string{"k", "v"},
			testutil.NewInt64Vector([]int64{4, 5}),
			testutil.NewInt64Vector([]int64{8, 9})),
	}
	f, err := FromBatches(ctx, tk, bats, "k", []int64{1, 4, 5})
	require.NoError(t, err)

	g, key, err := f.ApproxNDV(ctx, tk, "v")
	require.NoError(t, err)
	res, err := executor.New().Run(ctx, g, key)
	require.NoError(t, err)
	// 7, 8, 9 across both partitions
	require.Equal(t, []int64{3}, vector.MustTCols[int64](res[key].GetVector("ndv")))

	_, _, err = f.ApproxNDV(ctx, tk, "no")
	require.True(t, moerr.IsMoErrCode(err, moerr.ErrBadFieldError))
}
