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
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func writeInput(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestRunJoinJob(t *testing.T) {
	ctx := context.TODO()
	dir := t.TempDir()
	left := writeInput(t, dir, "a.csv", "k,v\n1,10\n2,20\n3,30\n")
	right := writeInput(t, dir, "b.csv", "k,w\n2,200\n3,300\n")
	out := filepath.Join(dir, "out.csv")

	cfg := &Config{
		Job: JobConfig{Op: opJoin},
		Inputs: []InputConfig{
			{Path: left, Index: "k", Types: []string{"int64", "int64"}, IndexType: "int64"},
			{Path: right, Index: "k", Types: []string{"int64", "int64"}, IndexType: "int64"},
		},
		Output: OutputConfig{Path: out},
	}
	require.NoError(t, cfg.validate(ctx))
	require.NoError(t, run(ctx, cfg))

	data, err := os.ReadFile(out)
	require.NoError(t, err)
	require.Equal(t, "k,v,w\n2,20,200\n3,30,300\n", string(data))
}

func TestRunHashJoinJob(t *testing.T) {
	ctx := context.TODO()
	dir := t.TempDir()
	// neither input is sorted on the key, an indexed join could not run
	left := writeInput(t, dir, "a.csv", "k,v\n3,30\n1,10\n")
	right := writeInput(t, dir, "b.csv", "k,w\n1,100\n3,300\n")
	out := filepath.Join(dir, "out.csv")

	cfg := &Config{
		Job: JobConfig{
			Op:      opHashJoin,
			LeftOn:  []string{"k"},
			RightOn: []string{"k"},
			Buckets: 1,
		},
		Inputs: []InputConfig{
			{Path: left, Types: []string{"int64", "int64"}, IndexType: "int64"},
			{Path: right, Types: []string{"int64", "int64"}, IndexType: "int64"},
		},
		Output: OutputConfig{Path: out},
	}
	require.NoError(t, cfg.validate(ctx))
	require.NoError(t, run(ctx, cfg))

	data, err := os.ReadFile(out)
	require.NoError(t, err)
	require.Equal(t, "k,v,w\n3,30,300\n1,10,100\n", string(data))
}

func TestRunNdvJob(t *testing.T) {
	ctx := context.TODO()
	dir := t.TempDir()
	in := writeInput(t, dir, "a.csv", "k,v\n1,7\n2,7\n3,8\n")
	out := filepath.Join(dir, "out.csv")

	cfg := &Config{
		Job: JobConfig{Op: opNDV, Attr: "v"},
		Inputs: []InputConfig{
			{Path: in, Index: "k", Types: []string{"int64", "int64"}, IndexType: "int64"},
		},
		Output: OutputConfig{Path: out},
	}
	require.NoError(t, cfg.validate(ctx))
	require.NoError(t, run(ctx, cfg))

	data, err := os.ReadFile(out)
	require.NoError(t, err)
	require.Equal(t, "ndv\n2\n", string(data))
}
