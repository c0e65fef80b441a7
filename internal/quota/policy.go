// Copyright 2026 The OpenTrusty Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package quota decides whether a tenant may create another note.
package quota

import (
	"errors"

	"github.com/opentrusty/tenantnotes/internal/tenant"
)

// DefaultFreeNoteLimit is the number of notes a free tenant may hold.
const DefaultFreeNoteLimit = 3

var ErrQuotaExceeded = errors.New("free plan limit reached")

// Checker is consulted with the tenant's plan and a count read inside the
// same transaction as the insert it guards.
type Checker interface {
	Check(plan tenant.Plan, currentCount int) error
}

// Policy limits free tenants to FreeNoteLimit notes. Other plans are unlimited.
type Policy struct {
	FreeNoteLimit int
}

// NewPolicy returns a policy with the given free limit. A negative limit
// selects DefaultFreeNoteLimit.
func NewPolicy(freeNoteLimit int) Policy {
	if freeNoteLimit < 0 {
		freeNoteLimit = DefaultFreeNoteLimit
	}
	return Policy{FreeNoteLimit: freeNoteLimit}
}

// MayCreate reports whether a tenant on plan holding currentCount notes may
// create one more.
func (p Policy) MayCreate(plan tenant.Plan, currentCount int) bool {
	if plan != tenant.PlanFree {
		return true
	}
	return currentCount < p.FreeNoteLimit
}

// Check returns ErrQuotaExceeded when MayCreate is false.
func (p Policy) Check(plan tenant.Plan, currentCount int) error {
	if !p.MayCreate(plan, currentCount) {
		return ErrQuotaExceeded
	}
	return nil
}
