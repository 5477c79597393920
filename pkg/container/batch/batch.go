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

// Package batch implements the in-memory table unit flowing between
// operators.  A batch is a set of named column vectors of equal length.
package batch

import (
	"bytes"
	"context"
	"fmt"

	"github.com/matrixorigin/moframe/pkg/common/moerr"
	"github.com/matrixorigin/moframe/pkg/container/types"
	"github.com/matrixorigin/moframe/pkg/container/vector"
)

type Batch struct {
	Attrs []string
	Vecs  []*vector.Vector
}

func New(attrs []string) *Batch {
	return &Batch{
		Attrs: attrs,
		Vecs:  make([]*vector.Vector, len(attrs)),
	}
}

// NewWithSchema returns a zero row batch with typed empty vectors.
// Zero row batches stand in for absent partitions, they carry schema
// and nothing else.
func NewWithSchema(attrs []string, typs []types.Type) *Batch {
	bat := New(attrs)
	for i, typ := range typs {
		bat.Vecs[i] = vector.New(typ)
	}
	return bat
}

// Pos returns the position of the named column, or -1.
func (bat *Batch) Pos(attr string) int {
	for i, a := range bat.Attrs {
		if a == attr {
			return i
		}
	}
	return -1
}

// GetVector returns the named column vector, or nil.
func (bat *Batch) GetVector(attr string) *vector.Vector {
	for i, a := range bat.Attrs {
		if a == attr {
			return bat.Vecs[i]
		}
	}
	return nil
}

// Types returns the column types in attr order.
func (bat *Batch) Types() []types.Type {
	typs := make([]types.Type, len(bat.Vecs))
	for i, vec := range bat.Vecs {
		typs[i] = vec.Typ
	}
	return typs
}

// Length returns the row count.
func (bat *Batch) Length() int {
	if bat == nil || len(bat.Vecs) == 0 {
		return 0
	}
	return bat.Vecs[0].Length()
}

// Append appends the rows of b to bat.  The batches must have the same
// column layout.
func (bat *Batch) Append(ctx context.Context, b *Batch) error {
	if len(bat.Vecs) != len(b.Vecs) {
		return moerr.NewInternalError(ctx, "batch append column count mismatch: %d vs %d", len(bat.Vecs), len(b.Vecs))
	}
	for i, vec := range bat.Vecs {
		if err := vector.UnionAll(vec, b.Vecs[i]); err != nil {
			return err
		}
	}
	return nil
}

// Filter returns a fresh batch holding the rows selected by sels, in
// sels order.  bat is left untouched.
func Filter(bat *Batch, sels []int64) *Batch {
	r := New(bat.Attrs)
	for i, vec := range bat.Vecs {
		r.Vecs[i] = vector.Filter(vec, sels)
	}
	return r
}

func (bat *Batch) String() string {
	var buf bytes.Buffer
	for i, attr := range bat.Attrs {
		buf.WriteString(fmt.Sprintf("%s\n\t%s\n", attr, bat.Vecs[i]))
	}
	return buf.String()
}
