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

import "golang.org/x/exp/constraints"

// Require narrows an alignment to the consecutive intervals where
// every required input is present.  Within an input the present
// intervals form one run, so the survivors are the intersection of the
// required runs.  With no required inputs the alignment is returned
// unchanged, absent rows included.  When the intersection is empty the
// boundaries come back empty and no rows survive.
func Require[T constraints.Ordered](divisions []T, rows [][]Slot, required []int) ([]T, [][]Slot) {
	if len(required) == 0 {
		return divisions, rows
	}
	start, end := 0, len(rows)-1
	for _, in := range required {
		lo, hi := -1, -1
		for i, row := range rows {
			if row[in].Valid {
				if lo < 0 {
					lo = i
				}
				hi = i
			}
		}
		if lo < 0 {
			return []T{}, nil
		}
		if lo > start {
			start = lo
		}
		if hi < end {
			end = hi
		}
	}
	if start > end {
		return []T{}, nil
	}
	return divisions[start : end+2], rows[start : end+1]
}
