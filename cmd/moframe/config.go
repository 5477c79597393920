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

package main

import (
	"context"

	"github.com/BurntSushi/toml"
	"github.com/matrixorigin/moframe/pkg/common/moerr"
	"github.com/matrixorigin/moframe/pkg/container/types"
	"github.com/matrixorigin/moframe/pkg/logutil"
)

// Job operations.
const (
	opJoin     = "join"
	opHashJoin = "hash-join"
	opConcat   = "concat"
	opNDV      = "ndv"
)

// Config describes one combine job.
type Config struct {
	Log    logutil.LogConfig `toml:"log"`
	Job    JobConfig         `toml:"job"`
	Inputs []InputConfig     `toml:"input"`
	Output OutputConfig      `toml:"output"`
	Run    RunConfig         `toml:"run"`
}

// JobConfig picks the operation and its parameters.
type JobConfig struct {
	// Op is one of join, hash-join, concat and ndv.
	Op string `toml:"op"`
	// Kind of a join: inner, left, right or outer.
	Kind string `toml:"kind"`
	// Policy of a concat: outer or inner.
	Policy string `toml:"policy"`
	// LeftOn and RightOn are the key columns of a hash join.
	LeftOn  []string `toml:"left-on"`
	RightOn []string `toml:"right-on"`
	// LSuffix and RSuffix disambiguate colliding column names.
	LSuffix string `toml:"lsuffix"`
	RSuffix string `toml:"rsuffix"`
	// Attr is the column an ndv job estimates.
	Attr string `toml:"attr"`
	// Buckets is the partition count of a hash join, 0 picks the
	// larger input's count.
	Buckets int `toml:"buckets"`
}

// InputConfig describes one CSV input.
type InputConfig struct {
	Path string `toml:"path"`
	// Index is the column the file is ordered by.
	Index string `toml:"index"`
	// Attrs are the column names, omit them to read the header row.
	Attrs []string `toml:"attrs"`
	// Types are the column types: bool, int32, int64, float64, varchar.
	Types []string `toml:"types"`
	// IndexType declares the index column type when the names come
	// from the header row.
	IndexType string `toml:"index-type"`
	// BlockRows caps the rows per partition.
	BlockRows int `toml:"block-rows"`
	// Compress overrides the filename suffix.
	Compress string `toml:"compress"`
}

type OutputConfig struct {
	Path     string `toml:"path"`
	Compress string `toml:"compress"`
}

type RunConfig struct {
	// Parallelism caps the tasks running at once, 0 uses every CPU.
	Parallelism int `toml:"parallelism"`
}

func parseConfigFromFile(path string) (*Config, error) {
	ctx := context.Background()
	cfg := &Config{}
	if _, err := toml.DecodeFile(path, cfg); err != nil {
		return nil, moerr.NewParseError(ctx, "%s: %v", path, err)
	}
	if err := cfg.validate(ctx); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate(ctx context.Context) error {
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
	if c.Log.Format == "" {
		c.Log.Format = "console"
	}
	if c.Job.Kind == "" {
		c.Job.Kind = "inner"
	}
	if c.Job.Policy == "" {
		c.Job.Policy = "outer"
	}
	if c.Output.Path == "" {
		return moerr.NewBadConfig(ctx, "no output path")
	}

	switch c.Job.Op {
	case opJoin:
		if len(c.Inputs) != 2 {
			return moerr.NewBadConfig(ctx, "a join takes 2 inputs, got %d", len(c.Inputs))
		}
	case opHashJoin:
		if len(c.Inputs) != 2 {
			return moerr.NewBadConfig(ctx, "a hash join takes 2 inputs, got %d", len(c.Inputs))
		}
		if len(c.Job.LeftOn) == 0 || len(c.Job.LeftOn) != len(c.Job.RightOn) {
			return moerr.NewBadConfig(ctx, "a hash join needs matching left-on and right-on key lists")
		}
		// the key column stands in for a missing index declaration
		if c.Inputs[0].Index == "" {
			c.Inputs[0].Index = c.Job.LeftOn[0]
		}
		if c.Inputs[1].Index == "" {
			c.Inputs[1].Index = c.Job.RightOn[0]
		}
	case opConcat:
		if len(c.Inputs) == 0 {
			return moerr.NewBadConfig(ctx, "a concat takes at least one input")
		}
	case opNDV:
		if len(c.Inputs) != 1 {
			return moerr.NewBadConfig(ctx, "an ndv job takes one input, got %d", len(c.Inputs))
		}
		if c.Job.Attr == "" {
			return moerr.NewBadConfig(ctx, "an ndv job needs the attr to estimate")
		}
	default:
		return moerr.NewBadConfig(ctx, "unknown op '%s'", c.Job.Op)
	}

	for i := range c.Inputs {
		if err := c.Inputs[i].validate(ctx); err != nil {
			return err
		}
	}
	return nil
}

func (in *InputConfig) validate(ctx context.Context) error {
	if in.Path == "" {
		return moerr.NewBadConfig(ctx, "an input without a path")
	}
	if len(in.Types) == 0 {
		return moerr.NewBadConfig(ctx, "input %s declares no column types", in.Path)
	}
	if len(in.Attrs) > 0 && len(in.Attrs) != len(in.Types) {
		return moerr.NewBadConfig(ctx, "input %s declares %d names for %d types", in.Path, len(in.Attrs), len(in.Types))
	}
	if in.Index == "" {
		return moerr.NewBadConfig(ctx, "input %s declares no index column", in.Path)
	}
	if _, err := in.indexType(ctx); err != nil {
		return err
	}
	return nil
}

// indexType resolves the declared type of the input's index column.
func (in *InputConfig) indexType(ctx context.Context) (types.Type, error) {
	if len(in.Attrs) > 0 {
		for i, attr := range in.Attrs {
			if attr == in.Index {
				return types.ParseType(in.Types[i])
			}
		}
		return types.Type{}, moerr.NewBadConfig(ctx, "index column '%s' is not among the columns of %s", in.Index, in.Path)
	}
	if in.IndexType == "" {
		return types.Type{}, moerr.NewBadConfig(ctx, "input %s reads its column names from the header, declare index-type", in.Path)
	}
	return types.ParseType(in.IndexType)
}

// indexType resolves the index column type shared by every input.
func (c *Config) indexType(ctx context.Context) (types.Type, error) {
	var typ types.Type
	for i := range c.Inputs {
		t, err := c.Inputs[i].indexType(ctx)
		if err != nil {
			return types.Type{}, err
		}
		if i == 0 {
			typ = t
		} else if !typ.Eq(t) {
			return types.Type{}, moerr.NewBadConfig(ctx, "inputs disagree on the index column type: %s vs %s", typ, t)
		}
	}
	return typ, nil
}

func (in *InputConfig) columnTypes() ([]types.Type, error) {
	typs := make([]types.Type, len(in.Types))
	for i, name := range in.Types {
		t, err := types.ParseType(name)
		if err != nil {
			return nil, err
		}
		typs[i] = t
	}
	return typs, nil
}
