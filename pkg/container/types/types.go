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

package types

import (
	"context"

	"github.com/matrixorigin/moframe/pkg/common/moerr"
)

type T uint8

const (
	// T_any is an untyped placeholder
	T_any T = iota

	T_bool
	T_int32
	T_int64
	T_float64
	T_varchar
)

type Type struct {
	Oid T
	// Size is the size in bytes of one fixed length value, or the
	// header size for varlen values.
	Size int32
}

func New(oid T) Type {
	return Type{Oid: oid, Size: oid.FixedLength()}
}

func (t Type) Eq(b Type) bool {
	return t.Oid == b.Oid
}

func (t Type) String() string {
	return t.Oid.String()
}

func (t T) ToType() Type {
	return New(t)
}

func (t T) String() string {
	switch t {
	case T_any:
		return "ANY"
	case T_bool:
		return "BOOL"
	case T_int32:
		return "INT"
	case T_int64:
		return "BIGINT"
	case T_float64:
		return "DOUBLE"
	case T_varchar:
		return "VARCHAR"
	}
	return "unknown type"
}

func (t T) FixedLength() int32 {
	switch t {
	case T_any:
		return 0
	case T_bool:
		return 1
	case T_int32:
		return 4
	case T_int64, T_float64:
		return 8
	case T_varchar:
		return 24
	}
	panic(moerr.NewInternalError(context.TODO(), "unknown type %d", t))
}

// ParseType maps a type name from a config file to a Type.
func ParseType(name string) (Type, error) {
	switch name {
	case "bool":
		return New(T_bool), nil
	case "int32", "int":
		return New(T_int32), nil
	case "int64", "bigint":
		return New(T_int64), nil
	case "float64", "double":
		return New(T_float64), nil
	case "varchar", "string":
		return New(T_varchar), nil
	}
	return Type{}, moerr.NewParseError(context.TODO(), "unknown type name '%s'", name)
}
