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

package memory

import (
	"context"
	"time"

	"github.com/opentrusty/tenantnotes/internal/tenant"
)

// TenantRepository implements tenant.Repository
type TenantRepository struct {
	db *DB
}

// NewTenantRepository creates a new tenant repository
func NewTenantRepository(db *DB) *TenantRepository {
	return &TenantRepository{db: db}
}

func (r *TenantRepository) Create(_ context.Context, t *tenant.Tenant) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	for _, existing := range r.db.tenants {
		if existing.Slug == t.Slug || existing.ID == t.ID {
			return tenant.ErrTenantAlreadyExists
		}
	}
	r.db.tenants[t.ID] = copyTenant(t)
	return nil
}

func (r *TenantRepository) GetByID(_ context.Context, id string) (*tenant.Tenant, error) {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()

	t, ok := r.db.tenants[id]
	if !ok {
		return nil, tenant.ErrTenantNotFound
	}
	return copyTenant(t), nil
}

func (r *TenantRepository) GetBySlug(_ context.Context, slug string) (*tenant.Tenant, error) {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()

	for _, t := range r.db.tenants {
		if t.Slug == slug {
			return copyTenant(t), nil
		}
	}
	return nil, tenant.ErrTenantNotFound
}

func (r *TenantRepository) UpdatePlan(_ context.Context, id string, plan tenant.Plan) (*tenant.Tenant, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	t, ok := r.db.tenants[id]
	if !ok {
		return nil, tenant.ErrTenantNotFound
	}
	t.Plan = plan
	t.UpdatedAt = time.Now()
	return copyTenant(t), nil
}
