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
	"context"
	"fmt"

	"github.com/matrixorigin/moframe/pkg/common/moerr"
	"github.com/matrixorigin/moframe/pkg/container/nulls"
	"github.com/matrixorigin/moframe/pkg/container/types"
)

// Vector is one column of a batch.  Col is the typed value slice, one
// of []bool, []int32, []int64, []float64 and []string, and Nsp marks
// the rows whose value is NULL.  A null row still holds a zero value
// in Col, so len(Col) is always the row count.
type Vector struct {
	Typ types.Type
	Col any
	Nsp *nulls.Nulls
}

func New(typ types.Type) *Vector {
	switch typ.Oid {
	case types.T_bool:
		return &Vector{Typ: typ, Col: []bool{}, Nsp: &nulls.Nulls{}}
	case types.T_int32:
		return &Vector{Typ: typ, Col: []int32{}, Nsp: &nulls.Nulls{}}
	case types.T_int64:
		return &Vector{Typ: typ, Col: []int64{}, Nsp: &nulls.Nulls{}}
	case types.T_float64:
		return &Vector{Typ: typ, Col: []float64{}, Nsp: &nulls.Nulls{}}
	case types.T_varchar:
		return &Vector{Typ: typ, Col: []string{}, Nsp: &nulls.Nulls{}}
	}
	panic(moerr.NewInternalError(context.TODO(), "unsupported vector type %s", typ))
}

func Length(v *Vector) int {
	switch col := v.Col.(type) {
	case []bool:
		return len(col)
	case []int32:
		return len(col)
	case []int64:
		return len(col)
	case []float64:
		return len(col)
	case []string:
		return len(col)
	}
	return 0
}

func (v *Vector) Length() int {
	return Length(v)
}

// MustTCols returns the typed value slice of v.  It panics when T does
// not match the vector type, which is a logic error of the caller.
func MustTCols[T any](v *Vector) []T {
	col, ok := v.Col.([]T)
	if !ok {
		panic(moerr.NewInternalError(context.TODO(), "unexpected column type of %s vector", v.Typ))
	}
	return col
}

// Append appends one non-null value.  w must match the vector type.
func Append(v *Vector, w any) error {
	switch col := v.Col.(type) {
	case []bool:
		val, ok := w.(bool)
		if !ok {
			return appendTypeError(v, w)
		}
		v.Col = append(col, val)
	case []int32:
		val, ok := w.(int32)
		if !ok {
			return appendTypeError(v, w)
		}
		v.Col = append(col, val)
	case []int64:
		val, ok := w.(int64)
		if !ok {
			return appendTypeError(v, w)
		}
		v.Col = append(col, val)
	case []float64:
		val, ok := w.(float64)
		if !ok {
			return appendTypeError(v, w)
		}
		v.Col = append(col, val)
	case []string:
		val, ok := w.(string)
		if !ok {
			return appendTypeError(v, w)
		}
		v.Col = append(col, val)
	default:
		return moerr.NewInternalError(context.TODO(), "append to vector of unknown column type")
	}
	return nil
}

func appendTypeError(v *Vector, w any) error {
	return moerr.NewInvalidInput(context.TODO(), "append %T value to %s vector", w, v.Typ)
}

// UnionNull appends a null row.
func UnionNull(v *Vector) {
	row := uint64(Length(v))
	switch col := v.Col.(type) {
	case []bool:
		v.Col = append(col, false)
	case []int32:
		v.Col = append(col, 0)
	case []int64:
		v.Col = append(col, 0)
	case []float64:
		v.Col = append(col, 0)
	case []string:
		v.Col = append(col, "")
	}
	nulls.Add(v.Nsp, row)
}

// UnionOne copies row sel of w to the end of v.  The vectors must have
// the same type.
func UnionOne(v, w *Vector, sel int64) error {
	if !v.Typ.Eq(w.Typ) {
		return moerr.NewInternalError(context.TODO(), "union %s vector with %s vector", w.Typ, v.Typ)
	}
	if nulls.Contains(w.Nsp, uint64(sel)) {
		UnionNull(v)
		return nil
	}
	switch col := w.Col.(type) {
	case []bool:
		v.Col = append(v.Col.([]bool), col[sel])
	case []int32:
		v.Col = append(v.Col.([]int32), col[sel])
	case []int64:
		v.Col = append(v.Col.([]int64), col[sel])
	case []float64:
		v.Col = append(v.Col.([]float64), col[sel])
	case []string:
		v.Col = append(v.Col.([]string), col[sel])
	}
	return nil
}

// UnionAll appends every row of w to v, nulls included.  The vectors
// must have the same type.
func UnionAll(v, w *Vector) error {
	if !v.Typ.Eq(w.Typ) {
		return moerr.NewInternalError(context.TODO(), "union %s vector with %s vector", w.Typ, v.Typ)
	}
	base := uint64(Length(v))
	switch col := w.Col.(type) {
	case []bool:
		v.Col = append(v.Col.([]bool), col...)
	case []int32:
		v.Col = append(v.Col.([]int32), col...)
	case []int64:
		v.Col = append(v.Col.([]int64), col...)
	case []float64:
		v.Col = append(v.Col.([]float64), col...)
	case []string:
		v.Col = append(v.Col.([]string), col...)
	}
	for _, row := range w.Nsp.ToArray() {
		nulls.Add(v.Nsp, base+row)
	}
	return nil
}

// Filter returns a fresh vector holding the rows of v selected by
// sels, in sels order.  v is left untouched, batches are shared
// between tasks and must not be mutated.
func Filter(v *Vector, sels []int64) *Vector {
	w := New(v.Typ)
	switch col := v.Col.(type) {
	case []bool:
		vs := make([]bool, len(sels))
		for i, sel := range sels {
			vs[i] = col[sel]
		}
		w.Col = vs
	case []int32:
		vs := make([]int32, len(sels))
		for i, sel := range sels {
			vs[i] = col[sel]
		}
		w.Col = vs
	case []int64:
		vs := make([]int64, len(sels))
		for i, sel := range sels {
			vs[i] = col[sel]
		}
		w.Col = vs
	case []float64:
		vs := make([]float64, len(sels))
		for i, sel := range sels {
			vs[i] = col[sel]
		}
		w.Col = vs
	case []string:
		vs := make([]string, len(sels))
		for i, sel := range sels {
			vs[i] = col[sel]
		}
		w.Col = vs
	}
	w.Nsp = nulls.Filter(v.Nsp, sels)
	return w
}

// GetValue returns the value of row i and whether it is null.  The
// value of a null row is the type zero value.
func GetValue(v *Vector, i int64) (any, bool) {
	isNull := nulls.Contains(v.Nsp, uint64(i))
	switch col := v.Col.(type) {
	case []bool:
		return col[i], isNull
	case []int32:
		return col[i], isNull
	case []int64:
		return col[i], isNull
	case []float64:
		return col[i], isNull
	case []string:
		return col[i], isNull
	}
	return nil, isNull
}

func (v *Vector) String() string {
	switch col := v.Col.(type) {
	case []bool:
		return fmt.Sprintf("%v-%s", col, nulls.String(v.Nsp))
	case []int32:
		return fmt.Sprintf("%v-%s", col, nulls.String(v.Nsp))
	case []int64:
		return fmt.Sprintf("%v-%s", col, nulls.String(v.Nsp))
	case []float64:
		return fmt.Sprintf("%v-%s", col, nulls.String(v.Nsp))
	case []string:
		return fmt.Sprintf("%v-%s", col, nulls.String(v.Nsp))
	}
	return "<empty vector>"
}
