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

package nulls

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestAddContains(t *testing.T) {
	nsp := &Nulls{}
	require.False(t, Any(nsp))
	Add(nsp, 1, 3, 5)
	require.True(t, Any(nsp))
	require.True(t, Contains(nsp, 3))
	require.False(t, Contains(nsp, 2))
	require.Equal(t, 3, Length(nsp))

	Del(nsp, 3)
	require.False(t, Contains(nsp, 3))
	require.Equal(t, 2, Length(nsp))
}

func TestOr(t *testing.T) {
	a := Build(0, 2)
	b := Build(1)
	r := &Nulls{}
	Or(a, b, r)
	require.Equal(t, []uint64{0, 1, 2}, r.ToArray())

	r = &Nulls{}
	Or(nil, nil, r)
	require.False(t, Any(r))
}

func TestRange(t *testing.T) {
	nsp := Build(2, 4, 9)
	m := Range(nsp, 2, 8, 2, &Nulls{})
	require.Equal(t, []uint64{0, 2}, m.ToArray())

	m = Range(&Nulls{}, 0, 8, 0, &Nulls{})
	require.False(t, Any(m))
}

func TestFilter(t *testing.T) {
	nsp := Build(1, 4)
	m := Filter(nsp, []int64{4, 0, 1})
	require.True(t, m.Contains(0))
	require.False(t, m.Contains(1))
	require.True(t, m.Contains(2))
}

func TestShowRead(t *testing.T) {
	nsp := Build(7, 11, 13)
	data, err := nsp.Show()
	require.NoError(t, err)

	var m Nulls
	require.NoError(t, m.Read(data))
	require.True(t, nsp.IsSame(&m))
}

func TestClone(t *testing.T) {
	nsp := Build(3)
	cl := nsp.Clone()
	Add(cl, 5)
	require.False(t, Contains(nsp, 5))
	require.True(t, Contains(cl, 5))
}
