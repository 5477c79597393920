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

// Package dag implements the declarative task graph the builders emit.
// A task names one unit of work over partitions, tasks are data only,
// an executor interprets them.
package dag

import (
	"fmt"

	"github.com/matrixorigin/moframe/pkg/container/batch"
	"github.com/matrixorigin/moframe/pkg/plan"
)

// Key identifies one partition of one dataset: the dataset name and
// the partition index.
type Key struct {
	Name string
	Idx  int32
}

func (k Key) String() string {
	return fmt.Sprintf("%s:%d", k.Name, k.Idx)
}

type OpType uint8

const (
	Source OpType = iota
	Range
	Join
	Merge
	Concat
	Split
	Bucket
	Sketch
	Estimate
)

func (op OpType) String() string {
	switch op {
	case Source:
		return "source"
	case Range:
		return "range"
	case Join:
		return "join"
	case Merge:
		return "merge"
	case Concat:
		return "concat"
	case Split:
		return "split"
	case Bucket:
		return "bucket"
	case Sketch:
		return "sketch"
	case Estimate:
		return "estimate"
	}
	return fmt.Sprintf("unknown(%d)", uint8(op))
}

// Operand is one input of a task: a reference to another task's result
// or a literal batch, used where an absent partition is replaced by a
// zero row placeholder.
type Operand struct {
	Key Key
	Lit *batch.Batch
}

func Ref(k Key) Operand {
	return Operand{Key: k}
}

func Lit(bat *batch.Batch) Operand {
	return Operand{Lit: bat}
}

func (o Operand) IsRef() bool {
	return o.Lit == nil
}

// Task describes one unit of work.  Implementations carry operation
// arguments and nothing else.
type Task interface {
	Op() OpType
	Operands() []Operand
}

// SourceTask holds an in-memory input partition.
type SourceTask struct {
	Bat *batch.Batch
}

func (t *SourceTask) Op() OpType          { return Source }
func (t *SourceTask) Operands() []Operand { return nil }

// RangeTask restricts its inputs to one index interval and stacks the
// survivors.  The interval is [Lo, Hi), or [Lo, Hi] when IncludeHi.
type RangeTask struct {
	Inputs    []Operand
	Attr      string
	Lo        any
	Hi        any
	IncludeHi bool
}

func (t *RangeTask) Op() OpType          { return Range }
func (t *RangeTask) Operands() []Operand { return t.Inputs }

// JoinTask joins two index aligned partitions on their index column.
type JoinTask struct {
	Left    Operand
	Right   Operand
	Attr    string
	Kind    plan.JoinKind
	LSuffix string
	RSuffix string
}

func (t *JoinTask) Op() OpType          { return Join }
func (t *JoinTask) Operands() []Operand { return []Operand{t.Left, t.Right} }

// MergeTask joins two co-bucketed partitions on arbitrary key columns.
type MergeTask struct {
	Left    Operand
	Right   Operand
	Kind    plan.JoinKind
	LeftOn  []string
	RightOn []string
	LSuffix string
	RSuffix string
}

func (t *MergeTask) Op() OpType          { return Merge }
func (t *MergeTask) Operands() []Operand { return []Operand{t.Left, t.Right} }

// ConcatTask stacks aligned partitions row-wise under a column policy.
type ConcatTask struct {
	Inputs []Operand
	Policy plan.ConcatPolicy
}

func (t *ConcatTask) Op() OpType          { return Concat }
func (t *ConcatTask) Operands() []Operand { return t.Inputs }

// SplitTask hash partitions one input into Buckets groups by the key columns.
// Its result is the whole bucket group.
type SplitTask struct {
	Input   Operand
	Attrs   []string
	Buckets int32
}

func (t *SplitTask) Op() OpType          { return Split }
func (t *SplitTask) Operands() []Operand { return []Operand{t.Input} }

// BucketTask stacks bucket Idx of every input split group.  It
// depends on all of them, the redistribution barrier.
type BucketTask struct {
	Inputs []Operand
	Idx    int32
}

func (t *BucketTask) Op() OpType          { return Bucket }
func (t *BucketTask) Operands() []Operand { return t.Inputs }

// SketchTask builds a cardinality sketch of one column.
type SketchTask struct {
	Input Operand
	Attr  string
}

func (t *SketchTask) Op() OpType          { return Sketch }
func (t *SketchTask) Operands() []Operand { return []Operand{t.Input} }

// EstimateTask merges sketches into a distinct count estimate.
type EstimateTask struct {
	Inputs []Operand
}

func (t *EstimateTask) Op() OpType          { return Estimate }
func (t *EstimateTask) Operands() []Operand { return t.Inputs }
