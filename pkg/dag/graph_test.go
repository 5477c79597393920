// Copyright 2022 Matrix Origin
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

package dag

import (
	"context"
	"strings"
	"testing"

	"github.com/matrixorigin/moframe/pkg/common/moerr"
	"github.com/matrixorigin/moframe/pkg/container/batch"
	"github.com/stretchr/testify/require"
)

func key(name string, idx int32) Key {
	return Key{Name: name, Idx: idx}
}

func TestAddDuplicate(t *testing.T) {
	g := NewGraph()
	require.NoError(t, g.Add(key("a", 0), &SourceTask{}))
	require.NoError(t, g.Add(key("a", 1), &SourceTask{}))

	err := g.Add(key("a", 0), &SourceTask{})
	require.True(t, moerr.IsMoErrCode(err, moerr.ErrDuplicate))
	require.Equal(t, 2, g.Len())
}

func TestUnion(t *testing.T) {
	g1 := NewGraph()
	require.NoError(t, g1.Add(key("a", 0), &SourceTask{}))
	g2 := NewGraph()
	require.NoError(t, g2.Add(key("b", 0), &SourceTask{}))

	g, err := Union(g1, g2)
	require.NoError(t, err)
	require.Equal(t, 2, g.Len())
	_, ok := g.Get(key("a", 0))
	require.True(t, ok)
	_, ok = g.Get(key("b", 0))
	require.True(t, ok)

	// two graphs grown from the same ancestor share tasks
	g4, err := Union(g1)
	require.NoError(t, err)
	require.NoError(t, g4.Add(key("c", 0), &SourceTask{}))
	g5, err := Union(g1)
	require.NoError(t, err)
	require.NoError(t, g5.Add(key("d", 0), &SourceTask{}))
	g, err = Union(g4, g5)
	require.NoError(t, err)
	require.Equal(t, 3, g.Len())

	g3 := NewGraph()
	require.NoError(t, g3.Add(key("a", 0), &SourceTask{}))
	_, err = Union(g1, g3)
	require.True(t, moerr.IsMoErrCode(err, moerr.ErrDuplicate))
}

func TestValidate(t *testing.T) {
	ctx := context.TODO()

	g := NewGraph()
	require.NoError(t, g.Add(key("src", 0), &SourceTask{}))
	require.NoError(t, g.Add(key("r", 0), &RangeTask{Inputs: []Operand{Ref(key("src", 0))}}))
	require.NoError(t, g.Validate(ctx))

	// dangling reference
	require.NoError(t, g.Add(key("r", 1), &RangeTask{Inputs: []Operand{Ref(key("src", 9))}}))
	err := g.Validate(ctx)
	require.True(t, moerr.IsMoErrCode(err, moerr.ErrInvalidState))

	// cycle
	g = NewGraph()
	require.NoError(t, g.Add(key("x", 0), &RangeTask{Inputs: []Operand{Ref(key("y", 0))}}))
	require.NoError(t, g.Add(key("y", 0), &RangeTask{Inputs: []Operand{Ref(key("x", 0))}}))
	err = g.Validate(ctx)
	require.True(t, moerr.IsMoErrCode(err, moerr.ErrInvalidState))
}

func TestDependencies(t *testing.T) {
	g := NewGraph()
	empty := batch.New(nil)
	require.NoError(t, g.Add(key("src", 0), &SourceTask{}))
	require.NoError(t, g.Add(key("j", 0), &JoinTask{Left: Ref(key("src", 0)), Right: Lit(empty)}))

	// literal operands are not dependencies
	require.Equal(t, []Key{key("src", 0)}, g.Dependencies(key("j", 0)))
	task, ok := g.Get(key("j", 0))
	require.True(t, ok)
	require.Equal(t, 2, len(task.Operands()))
	require.False(t, task.Operands()[1].IsRef())
}

func TestAncestors(t *testing.T) {
	g := NewGraph()
	require.NoError(t, g.Add(key("a", 0), &SourceTask{}))
	require.NoError(t, g.Add(key("a", 1), &SourceTask{}))
	require.NoError(t, g.Add(key("b", 0), &RangeTask{Inputs: []Operand{Ref(key("a", 0))}}))
	require.NoError(t, g.Add(key("c", 0), &RangeTask{Inputs: []Operand{Ref(key("b", 0))}}))

	seen, err := g.Ancestors(context.TODO(), []Key{key("c", 0)})
	require.NoError(t, err)
	require.Equal(t, 3, len(seen))
	require.False(t, seen[key("a", 1)])
}

func TestTokens(t *testing.T) {
	tk1 := NewTokens()
	tk2 := NewTokens()

	n1 := tk1.Name("join")
	n2 := tk1.Name("join")
	require.NotEqual(t, n1, n2)
	require.True(t, strings.HasPrefix(n1, "join-"))

	// independent sources issue disjoint names
	require.NotEqual(t, tk1.Name("x"), tk2.Name("x"))
}
