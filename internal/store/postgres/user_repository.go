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

package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/opentrusty/tenantnotes/internal/authz"
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

const userSelect = `
	SELECT u.id, u.email, u.password_hash, u.role, u.tenant_id, u.created_at, u.updated_at,
		t.id, t.slug, t.name, t.plan, t.created_at, t.updated_at
	FROM users u
	JOIN tenants t ON t.id = u.tenant_id`

// Create creates a new user identity
func (r *UserRepository) Create(ctx context.Context, user *identity.User) error {
	_, err := r.db.pool.Exec(ctx, `
		INSERT INTO users (id, email, password_hash, role, tenant_id, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`,
		user.ID, user.Email, user.PasswordHash, string(user.Role), user.TenantID,
		user.CreatedAt, user.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return identity.ErrUserAlreadyExists
		}
		return fmt.Errorf("failed to insert user: %w", err)
	}
	return nil
}

// GetByID retrieves a user and its tenant by ID
func (r *UserRepository) GetByID(ctx context.Context, id string) (*identity.User, error) {
	return scanUser(r.db.pool.QueryRow(ctx, userSelect+` WHERE u.id = $1`, id))
}

// GetByEmail retrieves a user and its tenant by email
func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*identity.User, error) {
	return scanUser(r.db.pool.QueryRow(ctx, userSelect+` WHERE u.email = $1`, email))
}

func scanUser(row pgx.Row) (*identity.User, error) {
	var (
		user       identity.User
		t          tenant.Tenant
		role, plan string
	)
	err := row.Scan(
		&user.ID, &user.Email, &user.PasswordHash, &role, &user.TenantID, &user.CreatedAt, &user.UpdatedAt,
		&t.ID, &t.Slug, &t.Name, &plan, &t.CreatedAt, &t.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, identity.ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	user.Role = authz.Role(role)
	t.Plan = tenant.Plan(plan)
	user.Tenant = &t
	return &user, nil
}
