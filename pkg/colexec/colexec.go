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

// Package colexec holds the column utilities shared by the operator
// packages: row comparison, sort selections, range selections and key
// encoding.  Null rows order before every value and compare equal to
// each other.
package colexec

import (
	"context"
	"encoding/binary"
	"math"

	"github.com/matrixorigin/moframe/pkg/common/moerr"
	"github.com/matrixorigin/moframe/pkg/container/nulls"
	"github.com/matrixorigin/moframe/pkg/container/vector"
	"golang.org/x/exp/constraints"
	"golang.org/x/exp/slices"
)

// CompareAt compares row i of v with row j of w.  The vectors must
// have the same type.
func CompareAt(v, w *vector.Vector, i, j int64) int {
	vNull := nulls.Contains(v.Nsp, uint64(i))
	wNull := nulls.Contains(w.Nsp, uint64(j))
	switch {
	case vNull && wNull:
		return 0
	case vNull:
		return -1
	case wNull:
		return 1
	}
	switch vs := v.Col.(type) {
	case []bool:
		ws := vector.MustTCols[bool](w)
		switch {
		case !vs[i] && ws[j]:
			return -1
		case vs[i] && !ws[j]:
			return 1
		}
		return 0
	case []int32:
		return compareOrdered(vs[i], vector.MustTCols[int32](w)[j])
	case []int64:
		return compareOrdered(vs[i], vector.MustTCols[int64](w)[j])
	case []float64:
		return compareOrdered(vs[i], vector.MustTCols[float64](w)[j])
	case []string:
		return compareOrdered(vs[i], vector.MustTCols[string](w)[j])
	}
	return 0
}

func compareOrdered[T constraints.Ordered](x, y T) int {
	switch {
	case x < y:
		return -1
	case x > y:
		return 1
	}
	return 0
}

// IsSorted reports whether v is in ascending order, nulls first.
func IsSorted(v *vector.Vector) bool {
	n := int64(v.Length())
	for i := int64(1); i < n; i++ {
		if CompareAt(v, v, i-1, i) > 0 {
			return false
		}
	}
	return true
}

// SortSels returns the selection vector that orders v ascending.  The
// sort is stable, rows with equal values keep their input order.
func SortSels(v *vector.Vector) []int64 {
	sels := make([]int64, v.Length())
	for i := range sels {
		sels[i] = int64(i)
	}
	slices.SortStableFunc(sels, func(a, b int64) bool {
		return CompareAt(v, v, a, b) < 0
	})
	return sels
}

// RangeSels returns the selection of rows of v whose value lies in
// [lo, hi), or [lo, hi] when includeHi.  The bounds must match the
// vector type.  Null rows are never selected.
func RangeSels(ctx context.Context, v *vector.Vector, lo, hi any, includeHi bool) ([]int64, error) {
	switch col := v.Col.(type) {
	case []int32:
		return rangeSels(ctx, v, col, lo, hi, includeHi)
	case []int64:
		return rangeSels(ctx, v, col, lo, hi, includeHi)
	case []float64:
		return rangeSels(ctx, v, col, lo, hi, includeHi)
	case []string:
		return rangeSels(ctx, v, col, lo, hi, includeHi)
	}
	return nil, moerr.NewNotSupported(ctx, "range restriction on %s column", v.Typ)
}

func rangeSels[T constraints.Ordered](ctx context.Context, v *vector.Vector, col []T, lo, hi any, includeHi bool) ([]int64, error) {
	lov, ok := lo.(T)
	if !ok {
		return nil, moerr.NewInvalidInput(ctx, "range bound %v does not match %s column", lo, v.Typ)
	}
	hiv, ok := hi.(T)
	if !ok {
		return nil, moerr.NewInvalidInput(ctx, "range bound %v does not match %s column", hi, v.Typ)
	}
	var sels []int64
	for i, x := range col {
		if nulls.Contains(v.Nsp, uint64(i)) {
			continue
		}
		if x < lov || x > hiv {
			continue
		}
		if x == hiv && !includeHi {
			continue
		}
		sels = append(sels, int64(i))
	}
	return sels, nil
}

// AppendKeyValue appends the encoding of row i of v to data.  Equal
// values of equal types always encode to the same bytes, string values
// carry a length prefix so that multi column keys cannot collide.
func AppendKeyValue(data []byte, v *vector.Vector, i int64) []byte {
	switch col := v.Col.(type) {
	case []bool:
		if col[i] {
			return append(data, 1)
		}
		return append(data, 0)
	case []int32:
		return binary.LittleEndian.AppendUint32(data, uint32(col[i]))
	case []int64:
		return binary.LittleEndian.AppendUint64(data, uint64(col[i]))
	case []float64:
		return binary.LittleEndian.AppendUint64(data, math.Float64bits(col[i]))
	case []string:
		data = binary.LittleEndian.AppendUint64(data, uint64(len(col[i])))
		return append(data, col[i]...)
	}
	return data
}

// ResolveJoinAttrs resolves the output column names of a join.  The
// columns named in shared appear once under the left input, every
// other column of both sides survives, colliding names take the side
// suffix.  The resolved names must come out unique.
func ResolveJoinAttrs(ctx context.Context, leftAttrs, rightAttrs []string, shared map[string]bool, lsuffix, rsuffix string) ([]string, []string, error) {
	rightHas := make(map[string]bool, len(rightAttrs))
	for _, attr := range rightAttrs {
		rightHas[attr] = true
	}
	leftHas := make(map[string]bool, len(leftAttrs))
	for _, attr := range leftAttrs {
		leftHas[attr] = true
	}

	lattrs := make([]string, len(leftAttrs))
	for i, attr := range leftAttrs {
		if rightHas[attr] && !shared[attr] {
			lattrs[i] = attr + lsuffix
		} else {
			lattrs[i] = attr
		}
	}
	rattrs := make([]string, len(rightAttrs))
	for i, attr := range rightAttrs {
		if shared[attr] {
			continue
		}
		if leftHas[attr] {
			rattrs[i] = attr + rsuffix
		} else {
			rattrs[i] = attr
		}
	}

	seen := make(map[string]bool, len(lattrs)+len(rattrs))
	for _, attr := range lattrs {
		if seen[attr] {
			return nil, nil, moerr.NewInvalidInput(ctx, "columns overlap on '%s' and no suffix specified", attr)
		}
		seen[attr] = true
	}
	for _, attr := range rattrs {
		if attr == "" {
			continue
		}
		if seen[attr] {
			return nil, nil, moerr.NewInvalidInput(ctx, "columns overlap on '%s' and no suffix specified", attr)
		}
		seen[attr] = true
	}
	return lattrs, rattrs, nil
}
