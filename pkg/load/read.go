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

// Package load reads CSV files into partitioned batches and writes
// batches back out.  Files compressed with gzip, bzip2, zlib, flate or
// lz4 are decompressed transparently, by filename suffix unless an
// explicit type is given.
package load

import (
	"context"
	"os"
	"strconv"

	"github.com/matrixorigin/moframe/pkg/colexec"
	"github.com/matrixorigin/moframe/pkg/common/moerr"
	"github.com/matrixorigin/moframe/pkg/container/batch"
	"github.com/matrixorigin/moframe/pkg/container/nulls"
	"github.com/matrixorigin/moframe/pkg/container/types"
	"github.com/matrixorigin/moframe/pkg/container/vector"
	"github.com/matrixorigin/moframe/pkg/dag"
	"github.com/matrixorigin/moframe/pkg/frame"
	"github.com/matrixorigin/simdcsv"
	"golang.org/x/exp/constraints"
)

// BatchReadRows is the parser read granularity.
const BatchReadRows = 4000

// DefaultBlockRows is the partition size when Options leaves it unset.
const DefaultBlockRows = 8192

// nullFlag marks a NULL field.  Empty fields of non string columns
// also read as NULL.
const nullFlag = "\\N"

// Options configure ReadBatches.
type Options struct {
	// Attrs are the column names.  Nil reads them from the first row.
	Attrs []string
	// Typs are the column types in column order.
	Typs []types.Type
	// BlockRows caps the rows per partition, DefaultBlockRows when 0.
	BlockRows int
	// Compress overrides the filename suffix.
	Compress string
}

// ReadBatches parses the CSV file at path into batches of at most
// BlockRows rows each.  A file without data rows yields one empty
// batch.
func ReadBatches(ctx context.Context, path string, opts Options) ([]*batch.Batch, error) {
	if len(opts.Typs) == 0 {
		return nil, moerr.NewInvalidInput(ctx, "load without column types")
	}
	if opts.Attrs != nil && len(opts.Attrs) != len(opts.Typs) {
		return nil, moerr.NewInvalidInput(ctx, "%d column names for %d column types", len(opts.Attrs), len(opts.Typs))
	}
	blockRows := opts.BlockRows
	if blockRows <= 0 {
		blockRows = DefaultBlockRows
	}

	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, moerr.NewFileNotFound(ctx, path)
		}
		return nil, moerr.ConvertGoError(ctx, err)
	}
	defer f.Close()
	r, err := uncompressReader(ctx, opts.Compress, path, f)
	if err != nil {
		return nil, err
	}

	rd := simdcsv.NewReaderWithOptions(r, ',', '#', true, true)
	attrs := opts.Attrs
	var bats []*batch.Batch
	var cur *batch.Batch
	row := 0
	content := make([][]string, BatchReadRows)
	for {
		var cnt int
		content, cnt, err = rd.Read(BatchReadRows, ctx, content)
		if err != nil {
			return nil, moerr.NewParseError(ctx, "%s: %v", path, err)
		}
		for _, record := range content[:cnt] {
			if attrs == nil {
				if len(record) != len(opts.Typs) {
					return nil, moerr.NewParseError(ctx, "header holds %d fields, want %d", len(record), len(opts.Typs))
				}
				attrs = append([]string{}, record...)
				continue
			}
			row++
			if len(record) != len(attrs) {
				return nil, moerr.NewParseError(ctx, "row %d holds %d fields, want %d", row, len(record), len(attrs))
			}
			if cur == nil {
				cur = batch.NewWithSchema(attrs, opts.Typs)
			}
			for i, field := range record {
				if err := appendField(ctx, cur.Vecs[i], field, row); err != nil {
					return nil, err
				}
			}
			if cur.Length() == blockRows {
				bats = append(bats, cur)
				cur = nil
			}
		}
		if cnt < BatchReadRows {
			break
		}
	}
	if attrs == nil {
		return nil, moerr.NewUnexpectedEOF(ctx, path)
	}
	if cur != nil {
		bats = append(bats, cur)
	}
	if len(bats) == 0 {
		bats = append(bats, batch.NewWithSchema(attrs, opts.Typs))
	}
	return bats, nil
}

func appendField(ctx context.Context, vec *vector.Vector, field string, row int) error {
	if field == nullFlag || (field == "" && vec.Typ.Oid != types.T_varchar) {
		vector.UnionNull(vec)
		return nil
	}
	switch vec.Typ.Oid {
	case types.T_bool:
		v, err := strconv.ParseBool(field)
		if err != nil {
			return moerr.NewParseError(ctx, "row %d: bad bool value '%s'", row, field)
		}
		return vector.Append(vec, v)
	case types.T_int32:
		v, err := strconv.ParseInt(field, 10, 32)
		if err != nil {
			return moerr.NewParseError(ctx, "row %d: bad int32 value '%s'", row, field)
		}
		return vector.Append(vec, int32(v))
	case types.T_int64:
		v, err := strconv.ParseInt(field, 10, 64)
		if err != nil {
			return moerr.NewParseError(ctx, "row %d: bad int64 value '%s'", row, field)
		}
		return vector.Append(vec, v)
	case types.T_float64:
		v, err := strconv.ParseFloat(field, 64)
		if err != nil {
			return moerr.NewParseError(ctx, "row %d: bad float value '%s'", row, field)
		}
		return vector.Append(vec, v)
	case types.T_varchar:
		return vector.Append(vec, field)
	default:
		return moerr.NewNotSupported(ctx, "loading %s columns", vec.Typ)
	}
}

// ReadCSV parses path and wraps its partitions into a frame indexed on
// indexAttr.  When the index column is sorted across the whole file
// and free of NULLs the partition boundaries are derived from it,
// otherwise the frame starts with unknown boundaries.
func ReadCSV[T constraints.Ordered](ctx context.Context, tk *dag.Tokens, path, indexAttr string, opts Options) (*frame.Frame[T], error) {
	bats, err := ReadBatches(ctx, path, opts)
	if err != nil {
		return nil, err
	}
	pos := bats[0].Pos(indexAttr)
	if pos < 0 {
		return nil, moerr.NewBadFieldError(ctx, indexAttr, path)
	}
	if _, ok := bats[0].Vecs[pos].Col.([]T); !ok {
		return nil, moerr.NewInvalidInput(ctx, "division type does not match index column '%s'", indexAttr)
	}
	return frame.FromBatches(ctx, tk, bats, indexAttr, deriveDivisions[T](bats, pos))
}

// deriveDivisions returns the boundary values of the partitions when
// the index column is globally sorted, nil otherwise.
func deriveDivisions[T constraints.Ordered](bats []*batch.Batch, pos int) []T {
	divisions := make([]T, 0, len(bats)+1)
	var prev T
	for i, bat := range bats {
		vec := bat.Vecs[pos]
		col := vector.MustTCols[T](vec)
		if len(col) == 0 || nulls.Any(vec.Nsp) || !colexec.IsSorted(vec) {
			return nil
		}
		if i > 0 && col[0] < prev {
			return nil
		}
		divisions = append(divisions, col[0])
		prev = col[len(col)-1]
	}
	return append(divisions, prev)
}
