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

// moframe runs one combine job described by a toml file: it loads the
// CSV inputs as partitioned frames, builds the join, concat or
// estimate graph, runs it on a worker pool and writes the result back
// as CSV.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/matrixorigin/moframe/pkg/common/moerr"
	"github.com/matrixorigin/moframe/pkg/container/batch"
	"github.com/matrixorigin/moframe/pkg/container/types"
	"github.com/matrixorigin/moframe/pkg/dag"
	"github.com/matrixorigin/moframe/pkg/executor"
	"github.com/matrixorigin/moframe/pkg/frame"
	"github.com/matrixorigin/moframe/pkg/frame/multi"
	"github.com/matrixorigin/moframe/pkg/load"
	"github.com/matrixorigin/moframe/pkg/logutil"
	"github.com/matrixorigin/moframe/pkg/plan"
	"go.uber.org/zap"
	"golang.org/x/exp/constraints"
)

var (
	configFile = flag.String("cfg", "./moframe.toml", "toml configuration of the job")
	version    = flag.Bool("version", false, "print version information")
)

func main() {
	flag.Parse()
	maybePrintVersion()

	cfg, err := parseConfigFromFile(*configFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to parse config from %s: %v\n", *configFile, err)
		os.Exit(1)
	}
	logutil.SetupMOLogger(&cfg.Log)

	if err := run(context.Background(), cfg); err != nil {
		logutil.Error("job failed", zap.Error(err))
		logutil.Flush()
		os.Exit(1)
	}
	logutil.Flush()
}

// run dispatches on the declared index column type, the one type
// parameter every frame of the job shares.
func run(ctx context.Context, cfg *Config) error {
	typ, err := cfg.indexType(ctx)
	if err != nil {
		return err
	}
	switch typ.Oid {
	case types.T_int32:
		return runJob[int32](ctx, cfg)
	case types.T_int64:
		return runJob[int64](ctx, cfg)
	case types.T_float64:
		return runJob[float64](ctx, cfg)
	case types.T_varchar:
		return runJob[string](ctx, cfg)
	}
	return moerr.NewNotSupported(ctx, "index column type %s", typ)
}

func runJob[T constraints.Ordered](ctx context.Context, cfg *Config) error {
	tk := dag.NewTokens()
	frames := make([]*frame.Frame[T], len(cfg.Inputs))
	for i := range cfg.Inputs {
		in := &cfg.Inputs[i]
		typs, err := in.columnTypes()
		if err != nil {
			return err
		}
		start := time.Now()
		f, err := load.ReadCSV[T](ctx, tk, in.Path, in.Index, load.Options{
			Attrs:     in.Attrs,
			Typs:      typs,
			BlockRows: in.BlockRows,
			Compress:  in.Compress,
		})
		if err != nil {
			return err
		}
		logutil.Info("input loaded",
			zap.String("path", in.Path),
			zap.Int("partitions", f.NPartitions),
			zap.Bool("known-boundaries", f.KnownDivisions()),
			zap.Duration("cost", time.Since(start)))
		frames[i] = f
	}

	exec := executor.New(executor.WithParallelism(cfg.Run.Parallelism))
	start := time.Now()
	out, err := buildAndRun(ctx, tk, cfg, frames, exec)
	if err != nil {
		return err
	}
	logutil.Info("job computed",
		zap.String("op", cfg.Job.Op),
		zap.Int("rows", out.Length()),
		zap.Duration("cost", time.Since(start)))

	if err := load.WriteCSV(ctx, cfg.Output.Path, out, cfg.Output.Compress); err != nil {
		return err
	}
	logutil.Info("output written", zap.String("path", cfg.Output.Path))
	return nil
}

func buildAndRun[T constraints.Ordered](ctx context.Context, tk *dag.Tokens, cfg *Config, frames []*frame.Frame[T], exec *executor.Executor) (*batch.Batch, error) {
	switch cfg.Job.Op {
	case opJoin:
		kind, err := plan.ParseJoinKind(cfg.Job.Kind)
		if err != nil {
			return nil, err
		}
		j, err := multi.JoinIndexed(ctx, tk, frames[0], frames[1], kind, cfg.Job.LSuffix, cfg.Job.RSuffix)
		if err != nil {
			return nil, err
		}
		return j.Compute(ctx, exec)
	case opHashJoin:
		kind, err := plan.ParseJoinKind(cfg.Job.Kind)
		if err != nil {
			return nil, err
		}
		j, err := multi.HashJoin(ctx, tk, frames[0], frames[1],
			cfg.Job.LeftOn, cfg.Job.RightOn, kind,
			cfg.Job.LSuffix, cfg.Job.RSuffix, cfg.Job.Buckets)
		if err != nil {
			return nil, err
		}
		return j.Compute(ctx, exec)
	case opConcat:
		policy, err := plan.ParseConcatPolicy(cfg.Job.Policy)
		if err != nil {
			return nil, err
		}
		cf, err := multi.ConcatIndexed(ctx, tk, frames, policy)
		if err != nil {
			return nil, err
		}
		return cf.Compute(ctx, exec)
	case opNDV:
		g, key, err := frames[0].ApproxNDV(ctx, tk, cfg.Job.Attr)
		if err != nil {
			return nil, err
		}
		res, err := exec.Run(ctx, g, key)
		if err != nil {
			return nil, err
		}
		return res[key], nil
	}
	return nil, moerr.NewInternalError(ctx, "unknown op '%s'", cfg.Job.Op)
}
