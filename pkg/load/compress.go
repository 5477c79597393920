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
	"compress/bzip2"
	"compress/flate"
	"compress/gzip"
	"compress/zlib"
	"context"
	"io"
	"strings"

	"github.com/matrixorigin/moframe/pkg/common/moerr"
	"github.com/pierrec/lz4"
)

// Compression types of data files.  AUTO resolves from the filename.
const (
	AUTO       = "auto"
	NOCOMPRESS = "none"
	GZIP       = "gzip"
	GZ         = "gz"
	BZIP2      = "bzip2"
	BZ2        = "bz2"
	FLATE      = "flate"
	ZLIB       = "zlib"
	LZ4        = "lz4"
)

// CompressType resolves the compression of path.  An explicit type
// wins, empty or AUTO sniffs the filename suffix.
func CompressType(compress, path string) string {
	if compress != "" && compress != AUTO {
		return strings.ToLower(compress)
	}
	path = strings.ToLower(path)
	switch {
	case strings.HasSuffix(path, ".gz") || strings.HasSuffix(path, ".gzip"):
		return GZIP
	case strings.HasSuffix(path, ".bz2") || strings.HasSuffix(path, ".bzip2"):
		return BZIP2
	case strings.HasSuffix(path, ".lz4"):
		return LZ4
	default:
		return NOCOMPRESS
	}
}

func uncompressReader(ctx context.Context, compress, path string, r io.Reader) (io.Reader, error) {
	switch CompressType(compress, path) {
	case NOCOMPRESS:
		return r, nil
	case GZIP, GZ:
		return gzip.NewReader(r)
	case BZIP2, BZ2:
		return bzip2.NewReader(r), nil
	case FLATE:
		return flate.NewReader(r), nil
	case ZLIB:
		return zlib.NewReader(r)
	case LZ4:
		return lz4.NewReader(r), nil
	default:
		return nil, moerr.NewNotSupported(ctx, "compress type '%s'", compress)
	}
}

// compressWriter wraps w for writing path.  The returned closer
// flushes the compressor, the caller still closes the file.
func compressWriter(ctx context.Context, compress, path string, w io.Writer) (io.Writer, io.Closer, error) {
	switch CompressType(compress, path) {
	case NOCOMPRESS:
		return w, nil, nil
	case GZIP, GZ:
		zw := gzip.NewWriter(w)
		return zw, zw, nil
	case FLATE:
		zw, err := flate.NewWriter(w, flate.DefaultCompression)
		if err != nil {
			return nil, nil, moerr.ConvertGoError(ctx, err)
		}
		return zw, zw, nil
	case ZLIB:
		zw := zlib.NewWriter(w)
		return zw, zw, nil
	case LZ4:
		zw := lz4.NewWriter(w)
		return zw, zw, nil
	case BZIP2, BZ2:
		return nil, nil, moerr.NewNotSupported(ctx, "writing bzip2 compressed files")
	default:
		return nil, nil, moerr.NewNotSupported(ctx, "compress type '%s'", compress)
	}
}
