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

package quota

import (
	"testing"

	"github.com/opentrusty/tenantnotes/internal/tenant"
	"github.com/stretchr/testify/assert"
)

// TestPurpose: Validates the plan quota decision.
// Scope: Unit Test
// Expected: Free tenants may create while below the limit; pro tenants are never blocked by count.
// Test Case ID: QTA-01
func TestPolicy_MayCreate(t *testing.T) {
	p := NewPolicy(DefaultFreeNoteLimit)

	tests := []struct {
		plan  tenant.Plan
		count int
		want  bool
	}{
		{tenant.PlanFree, 0, true},
		{tenant.PlanFree, 2, true},
		{tenant.PlanFree, 3, false},
		{tenant.PlanFree, 7, false},
		{tenant.PlanPro, 3, true},
		{tenant.PlanPro, 10_000, true},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, p.MayCreate(tt.plan, tt.count), "%s/%d", tt.plan, tt.count)
		if tt.want {
			assert.NoError(t, p.Check(tt.plan, tt.count))
		} else {
			assert.ErrorIs(t, p.Check(tt.plan, tt.count), ErrQuotaExceeded)
		}
	}
}

func TestNewPolicy(t *testing.T) {
	assert.Equal(t, DefaultFreeNoteLimit, NewPolicy(-1).FreeNoteLimit)
	assert.False(t, NewPolicy(0).MayCreate(tenant.PlanFree, 0))
	assert.True(t, NewPolicy(10).MayCreate(tenant.PlanFree, 9))
}
