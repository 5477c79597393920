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

package vector

import (
	"testing"

	"github.com/matrixorigin/moframe/pkg/common/moerr"
	"github.com/matrixorigin/moframe/pkg/container/nulls"
	"github.com/matrixorigin/moframe/pkg/container/types"
	"github.com/stretchr/testify/require"
)

func TestAppend(t *testing.T) {
	v := New(types.New(types.T_int64))
	require.NoError(t, Append(v, int64(1)))
	require.NoError(t, Append(v, int64(2)))
	UnionNull(v)
	require.Equal(t, 3, v.Length())
	require.Equal(t, []int64{1, 2, 0}, MustTCols[int64](v))
	require.True(t, nulls.Contains(v.Nsp, 2))

	err := Append(v, "nope")
	require.True(t, moerr.IsMoErrCode(err, moerr.ErrInvalidInput))
}

func TestUnionOne(t *testing.T) {
	w := New(types.New(types.T_varchar))
	require.NoError(t, Append(w, "a"))
	UnionNull(w)
	require.NoError(t, Append(w, "c"))

	v := New(types.New(types.T_varchar))
	require.NoError(t, UnionOne(v, w, 2))
	require.NoError(t, UnionOne(v, w, 1))
	require.NoError(t, UnionOne(v, w, 0))
	require.Equal(t, []string{"c", "", "a"}, MustTCols[string](v))
	require.True(t, nulls.Contains(v.Nsp, 1))
	require.False(t, nulls.Contains(v.Nsp, 0))

	u := New(types.New(types.T_int64))
	err := UnionOne(u, w, 0)
	require.True(t, moerr.IsMoErrCode(err, moerr.ErrInternal))
}

func TestFilter(t *testing.T) {
	v := New(types.New(types.T_float64))
	require.NoError(t, Append(v, 1.5))
	UnionNull(v)
	require.NoError(t, Append(v, 3.5))

	w := Filter(v, []int64{2, 1})
	require.Equal(t, []float64{3.5, 0}, MustTCols[float64](w))
	require.False(t, nulls.Contains(w.Nsp, 0))
	require.True(t, nulls.Contains(w.Nsp, 1))

	// source untouched
	require.Equal(t, 3, v.Length())
	require.True(t, nulls.Contains(v.Nsp, 1))
}

func TestGetValue(t *testing.T) {
	v := New(types.New(types.T_int32))
	require.NoError(t, Append(v, int32(7)))
	UnionNull(v)

	val, isNull := GetValue(v, 0)
	require.False(t, isNull)
	require.Equal(t, int32(7), val)

	_, isNull = GetValue(v, 1)
	require.True(t, isNull)
}
