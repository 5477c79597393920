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

package testutil

import (
	"fmt"
	"math/rand"

	"github.com/matrixorigin/moframe/pkg/container/batch"
	"github.com/matrixorigin/moframe/pkg/container/nulls"
	"github.com/matrixorigin/moframe/pkg/container/types"
	"github.com/matrixorigin/moframe/pkg/container/vector"
)

// NewBatch builds a batch from column vectors.  The vectors must all
// have the same length.
func NewBatch(attrs []string, vecs ...*vector.Vector) *batch.Batch {
	if len(attrs) != len(vecs) {
		panic(fmt.Errorf("batch with %d attributes and %d vectors", len(attrs), len(vecs)))
	}
	bat := batch.New(attrs)
	copy(bat.Vecs, vecs)
	return bat
}

// NewVector builds a vector from a typed value slice, one of []bool,
// []int32, []int64, []float64 and []string.
func NewVector(vs any) *vector.Vector {
	switch col := vs.(type) {
	case []bool:
		return NewBoolVector(col)
	case []int32:
		return NewInt32Vector(col)
	case []int64:
		return NewInt64Vector(col)
	case []float64:
		return NewFloat64Vector(col)
	case []string:
		return NewStringVector(col)
	default:
		panic(fmt.Errorf("unsupport vector's type '%T'", vs))
	}
}

func NewBoolVector(vs []bool) *vector.Vector {
	vec := vector.New(types.New(types.T_bool))
	vec.Col = append([]bool{}, vs...)
	return vec
}

func NewInt32Vector(vs []int32) *vector.Vector {
	vec := vector.New(types.New(types.T_int32))
	vec.Col = append([]int32{}, vs...)
	return vec
}

func NewInt64Vector(vs []int64) *vector.Vector {
	vec := vector.New(types.New(types.T_int64))
	vec.Col = append([]int64{}, vs...)
	return vec
}

func NewFloat64Vector(vs []float64) *vector.Vector {
	vec := vector.New(types.New(types.T_float64))
	vec.Col = append([]float64{}, vs...)
	return vec
}

func NewStringVector(vs []string) *vector.Vector {
	vec := vector.New(types.New(types.T_varchar))
	vec.Col = append([]string{}, vs...)
	return vec
}

// SetNulls marks the given rows of vec as null and returns vec.
func SetNulls(vec *vector.Vector, rows ...uint64) *vector.Vector {
	nulls.Add(vec.Nsp, rows...)
	return vec
}

// NewRandomInt64Vector builds an n row vector of random values, or of
// 0..n-1 when random is false.
func NewRandomInt64Vector(n int, random bool) *vector.Vector {
	vs := make([]int64, n)
	for i := range vs {
		if random {
			vs[i] = rand.Int63()
		} else {
			vs[i] = int64(i)
		}
	}
	return NewInt64Vector(vs)
}
