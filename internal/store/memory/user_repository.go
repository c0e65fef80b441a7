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

	"github.com/opentrusty/tenantnotes/internal/identity"
	"github.com/opentrusty/tenantnotes/internal/tenant"
)

// UserRepository implements identity.UserRepository
type UserRepository struct {
	db *DB
}

// NewUserRepository creates a new user repository
func NewUserRepository(db *DB) *UserRepository {
	return &UserRepository{db: db}
}

func (r *UserRepository) Create(_ context.Context, user *identity.User) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	if _, ok := r.db.tenants[user.TenantID]; !ok {
		return tenant.ErrTenantNotFound
	}
	for _, u := range r.db.users {
		if u.Email == user.Email || u.ID == user.ID {
			return identity.ErrUserAlreadyExists
		}
	}
	cp := *user
	cp.Tenant = nil
	r.db.users[user.ID] = &cp
	return nil
}

func (r *UserRepository) GetByID(_ context.Context, id string) (*identity.User, error) {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()

	u, ok := r.db.users[id]
	if !ok {
		return nil, identity.ErrUserNotFound
	}
	return r.withTenant(u)
}

func (r *UserRepository) GetByEmail(_ context.Context, email string) (*identity.User, error) {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()

	for _, u := range r.db.users {
		if u.Email == email {
			return r.withTenant(u)
		}
	}
	return nil, identity.ErrUserNotFound
}

// DeleteUser removes a user. Used to exercise the "user gone" path.
func (r *UserRepository) DeleteUser(_ context.Context, id string) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	if _, ok := r.db.users[id]; !ok {
		return identity.ErrUserNotFound
	}
	delete(r.db.users, id)
	return nil
}

// caller holds r.db.mu
func (r *UserRepository) withTenant(u *identity.User) (*identity.User, error) {
	t, ok := r.db.tenants[u.TenantID]
	if !ok {
		return nil, identity.ErrUserNotFound
	}
	cp := *u
	cp.Tenant = copyTenant(t)
	return &cp, nil
}
