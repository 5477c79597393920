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
	"fmt"
	"os"
)

var (
	// Version semantic version, setup by makefile
	Version = ""
	// BranchName git branch, setup by makefile
	BranchName = ""
	// CommitID git commit id, setup by makefile
	CommitID = ""
	// BuildTime build time, setup by makefile
	BuildTime = ""
)

func maybePrintVersion() {
	if !*version {
		return
	}
	fmt.Println("moframe build info:")
	fmt.Println("  version:", Version)
	fmt.Println("  branch:", BranchName)
	fmt.Println("  commit:", CommitID)
	fmt.Println("  built at:", BuildTime)
	os.Exit(0)
}
