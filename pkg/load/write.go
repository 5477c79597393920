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

package load

import (
	"context"
	"encoding/csv"
	"os"
	"strconv"

	"github.com/matrixorigin/moframe/pkg/common/moerr"
	"github.com/matrixorigin/moframe/pkg/container/batch"
	"github.com/matrixorigin/moframe/pkg/container/types"
	"github.com/matrixorigin/moframe/pkg/container/vector"
)

// WriteCSV writes bat to path as CSV with a header row, compressed
// according to the resolved compression of the path.  NULL values
// write as \N.
func WriteCSV(ctx context.Context, path string, bat *batch.Batch, compress string) error {
	f, err := os.Create(path)
	if err != nil {
		return moerr.ConvertGoError(ctx, err)
	}
	w, closer, err := compressWriter(ctx, compress, path, f)
	if err != nil {
		f.Close()
		return err
	}
	cw := csv.NewWriter(w)
	if err := cw.Write(bat.Attrs); err != nil {
		f.Close()
		return moerr.ConvertGoError(ctx, err)
	}
	record := make([]string, len(bat.Vecs))
	for i, n := 0, bat.Length(); i < n; i++ {
		for j, vec := range bat.Vecs {
			record[j] = formatValue(vec, int64(i))
		}
		if err := cw.Write(record); err != nil {
			f.Close()
			return moerr.ConvertGoError(ctx, err)
		}
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		f.Close()
		return moerr.ConvertGoError(ctx, err)
	}
	if closer != nil {
		if err := closer.Close(); err != nil {
			f.Close()
			return moerr.ConvertGoError(ctx, err)
		}
	}
	return moerr.ConvertGoError(ctx, f.Close())
}

func formatValue(vec *vector.Vector, i int64) string {
	v, isNull := vector.GetValue(vec, i)
	if isNull {
		return nullFlag
	}
	switch vec.Typ.Oid {
	case types.T_bool:
		return strconv.FormatBool(v.(bool))
	case types.T_int32:
		return strconv.FormatInt(int64(v.(int32)), 10)
	case types.T_int64:
		return strconv.FormatInt(v.(int64), 10)
	case types.T_float64:
		return strconv.FormatFloat(v.(float64), 'g', -1, 64)
	case types.T_varchar:
		return v.(string)
	}
	return ""
}
