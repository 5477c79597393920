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
	"fmt"
	"sync/atomic"

	"github.com/google/uuid"
)

// Tokens issues unique dataset names.  Every instance carries a random
// namespace, so names issued by independent instances never collide
// and unioning their graphs stays conflict free.
type Tokens struct {
	ns  string
	ctr uint64
}

func NewTokens() *Tokens {
	return &Tokens{ns: uuid.NewString()[:8]}
}

// Name returns a fresh dataset name carrying the given prefix.
func (tk *Tokens) Name(prefix string) string {
	n := atomic.AddUint64(&tk.ctr, 1)
	return fmt.Sprintf("%s-%s-%d", prefix, tk.ns, n)
}
