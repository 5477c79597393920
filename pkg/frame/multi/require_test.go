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
	"testing"

	"github.com/matrixorigin/moframe/pkg/dag"
	"github.com/stretchr/testify/require"
)

func at(name string, i int32) Slot {
	return Slot{Key: dag.Key{Name: name, Idx: i}, Valid: true}
}

func TestRequire(t *testing.T) {
	divisions := []int64{1, 3, 5, 7, 9}
	rows := [][]Slot{
		{at("a", 0), {}},
		{at("a", 1), at("b", 0)},
		{at("a", 2), at("b", 1)},
		{{}, at("b", 2)},
	}

	d, r := Require(divisions, rows, nil)
	require.Equal(t, divisions, d)
	require.Equal(t, rows, r)

	d, r = Require(divisions, rows, []int{0})
	require.Equal(t, []int64{1, 3, 5, 7}, d)
	require.Equal(t, rows[:3], r)

	d, r = Require(divisions, rows, []int{1})
	require.Equal(t, []int64{3, 5, 7, 9}, d)
	require.Equal(t, rows[1:], r)

	d, r = Require(divisions, rows, []int{0, 1})
	require.Equal(t, []int64{3, 5, 7}, d)
	require.Equal(t, rows[1:3], r)
}

func TestRequireEmptyIntersection(t *testing.T) {
	divisions := []int64{1, 2, 3}
	rows := [][]Slot{
		{at("a", 0), {}},
		{{}, at("b", 0)},
	}

	d, r := Require(divisions, rows, []int{0, 1})
	require.NotNil(t, d)
	require.Len(t, d, 0)
	require.Len(t, r, 0)

	// an input absent everywhere empties the result too
	rows = [][]Slot{
		{at("a", 0), {}},
		{at("a", 1), {}},
	}
	d, r = Require(divisions, rows, []int{1})
	require.NotNil(t, d)
	require.Len(t, d, 0)
	require.Len(t, r, 0)
}
