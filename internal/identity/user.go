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

package identity

import (
	"context"
	"errors"
	"time"

	"github.com/opentrusty/tenantnotes/internal/authz"
	"github.com/opentrusty/tenantnotes/internal/tenant"
)

// Domain errors
var (
	ErrUserNotFound       = errors.New("user not found")
	ErrUserAlreadyExists  = errors.New("user already exists")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrInvalidEmail       = errors.New("invalid email address")
	ErrPasswordRequired   = errors.New("password is required")
)

// IsValidation reports whether err is an input validation failure.
func IsValidation(err error) bool {
	return errors.Is(err, ErrInvalidEmail) || errors.Is(err, ErrPasswordRequired)
}

// User represents a user identity. A user belongs to exactly one tenant for
// its lifetime and holds one role in it.
type User struct {
	ID           string
	Email        string
	PasswordHash string
	Role         authz.Role
	TenantID     string
	Tenant       *tenant.Tenant // loaded by GetByID and GetByEmail
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Summary is the sanitized view of a user returned to clients.
type Summary struct {
	ID     string         `json:"id"`
	Email  string         `json:"email"`
	Role   authz.Role     `json:"role"`
	Tenant tenant.Summary `json:"tenant"`
}

// Summary returns the sanitized view of u. It never includes the password hash.
func (u *User) Summary() Summary {
	s := Summary{
		ID:    u.ID,
		Email: u.Email,
		Role:  u.Role,
	}
	if u.Tenant != nil {
		s.Tenant = u.Tenant.Summary()
	}
	return s
}

// UserRepository defines the interface for user persistence
type UserRepository interface {
	// Create stores a new user. A duplicate email returns ErrUserAlreadyExists.
	Create(ctx context.Context, user *User) error

	// GetByID retrieves a user and its tenant by ID
	GetByID(ctx context.Context, id string) (*User, error)

	// GetByEmail retrieves a user and its tenant by email
	GetByEmail(ctx context.Context, email string) (*User, error)
}
