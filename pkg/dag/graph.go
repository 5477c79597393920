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

package dag

import (
	"context"

	"github.com/matrixorigin/moframe/pkg/common/moerr"
)

// Graph maps task keys to tasks.  Not safe for concurrent mutation.
type Graph struct {
	tasks map[Key]Task
	order []Key
}

func NewGraph() *Graph {
	return &Graph{tasks: make(map[Key]Task)}
}

func (g *Graph) Add(k Key, t Task) error {
	if _, ok := g.tasks[k]; ok {
		return moerr.NewDuplicate(moerr.Context(), k.String())
	}
	g.tasks[k] = t
	g.order = append(g.order, k)
	return nil
}

func (g *Graph) Get(k Key) (Task, bool) {
	t, ok := g.tasks[k]
	return t, ok
}

func (g *Graph) Len() int {
	return len(g.tasks)
}

// Keys returns all task keys in insertion order.
func (g *Graph) Keys() []Key {
	keys := make([]Key, len(g.order))
	copy(keys, g.order)
	return keys
}

// Union adds every task of the others into g.  Graphs that grew from a
// shared ancestor carry the same task under the same key, so an exact
// duplicate is skipped.  A key bound to a different task fails with
// ErrDuplicate and leaves g partially extended.
func (g *Graph) Union(others ...*Graph) error {
	for _, o := range others {
		for _, k := range o.order {
			if have, ok := g.tasks[k]; ok {
				if have == o.tasks[k] {
					continue
				}
				return moerr.NewDuplicate(moerr.Context(), k.String())
			}
			g.tasks[k] = o.tasks[k]
			g.order = append(g.order, k)
		}
	}
	return nil
}

// Union builds a fresh graph holding the tasks of all gs.
func Union(gs ...*Graph) (*Graph, error) {
	g := NewGraph()
	if err := g.Union(gs...); err != nil {
		return nil, err
	}
	return g, nil
}

// Dependencies returns the keys the task at k references.
func (g *Graph) Dependencies(k Key) []Key {
	t, ok := g.tasks[k]
	if !ok {
		return nil
	}
	var deps []Key
	for _, o := range t.Operands() {
		if o.IsRef() {
			deps = append(deps, o.Key)
		}
	}
	return deps
}

// Ancestors returns the closure of targets over task references.
func (g *Graph) Ancestors(ctx context.Context, targets []Key) (map[Key]bool, error) {
	seen := make(map[Key]bool)
	stack := append([]Key{}, targets...)
	for len(stack) > 0 {
		k := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if seen[k] {
			continue
		}
		if _, ok := g.tasks[k]; !ok {
			return nil, moerr.NewInvalidState(ctx, "task %s not in graph", k)
		}
		seen[k] = true
		stack = append(stack, g.Dependencies(k)...)
	}
	return seen, nil
}

// Validate checks that every reference resolves inside the graph and
// that the graph is acyclic.
func (g *Graph) Validate(ctx context.Context) error {
	indeg := make(map[Key]int, len(g.tasks))
	out := make(map[Key][]Key, len(g.tasks))
	for _, k := range g.order {
		for _, dep := range g.Dependencies(k) {
			if _, ok := g.tasks[dep]; !ok {
				return moerr.NewInvalidState(ctx, "task %s references missing task %s", k, dep)
			}
			indeg[k]++
			out[dep] = append(out[dep], k)
		}
	}

	queue := make([]Key, 0, len(g.tasks))
	for _, k := range g.order {
		if indeg[k] == 0 {
			queue = append(queue, k)
		}
	}
	done := 0
	for len(queue) > 0 {
		k := queue[0]
		queue = queue[1:]
		done++
		for _, next := range out[k] {
			indeg[next]--
			if indeg[next] == 0 {
				queue = append(queue, next)
			}
		}
	}
	if done != len(g.tasks) {
		return moerr.NewInvalidState(ctx, "task graph has a cycle")
	}
	return nil
}
