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

// Package plan holds the shared descriptors of combine operations, the
// join kinds, the concat column policies and the alignment slots each
// join kind requires.
package plan

import (
	"context"
	"fmt"

	"github.com/matrixorigin/moframe/pkg/common/moerr"
)

type JoinKind uint8

const (
	Inner JoinKind = iota
	Left
	Right
	Outer
)

// requiredSlots maps a join kind to the alignment slots that must hold
// a real partition: slot 0 is the left input, slot 1 the right.
var requiredSlots = [4][]int{
	Inner: {0, 1},
	Left:  {0},
	Right: {1},
	Outer: {},
}

// Required returns the slots a surviving alignment row must populate
// under kind.  The kind set is closed, the mapping is a fixed table.
func Required(kind JoinKind) []int {
	return requiredSlots[kind]
}

func (k JoinKind) Valid() bool {
	return k <= Outer
}

func (k JoinKind) String() string {
	switch k {
	case Inner:
		return "inner"
	case Left:
		return "left"
	case Right:
		return "right"
	case Outer:
		return "outer"
	}
	return fmt.Sprintf("unknown(%d)", uint8(k))
}

func ParseJoinKind(name string) (JoinKind, error) {
	switch name {
	case "inner":
		return Inner, nil
	case "left":
		return Left, nil
	case "right":
		return Right, nil
	case "outer", "full":
		return Outer, nil
	}
	return 0, moerr.NewParseError(context.TODO(), "unknown join kind '%s'", name)
}

// ConcatPolicy picks the output columns of a concat: the union of the
// inputs' columns or their intersection.
type ConcatPolicy uint8

const (
	PolicyOuter ConcatPolicy = iota
	PolicyInner
)

func (p ConcatPolicy) String() string {
	switch p {
	case PolicyOuter:
		return "outer"
	case PolicyInner:
		return "inner"
	}
	return fmt.Sprintf("unknown(%d)", uint8(p))
}

func ParseConcatPolicy(name string) (ConcatPolicy, error) {
	switch name {
	case "outer":
		return PolicyOuter, nil
	case "inner":
		return PolicyInner, nil
	}
	return 0, moerr.NewParseError(context.TODO(), "unknown concat policy '%s'", name)
}
