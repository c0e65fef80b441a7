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

// Package session issues and verifies the signed bearer tokens that carry a
// caller's identity between requests. No session state is kept server-side.
package session

import (
	"errors"

	"github.com/golang-jwt/jwt/v5"
	"github.com/opentrusty/tenantnotes/internal/authz"
)

// Domain errors
var (
	ErrNoToken      = errors.New("no token provided")
	ErrInvalidToken = errors.New("invalid token")
	ErrNoSecret     = errors.New("token secret is required")
)

// Identity is the verified caller of a request. It is authoritative for every
// tenant-scoping and authorization decision.
type Identity struct {
	UserID   string
	TenantID string
	Role     authz.Role
}

// Can reports whether the identity's role holds permission.
func (i Identity) Can(permission string) bool {
	return authz.Can(i.Role, permission)
}

// Subject is what a token is issued for.
type Subject struct {
	UserID   string
	TenantID string
	Role     authz.Role
	Email    string
}

// Claims is the token payload.
type Claims struct {
	UserID   string     `json:"userId"`
	TenantID string     `json:"tenantId"`
	Role     authz.Role `json:"role"`
	Email    string     `json:"email"`
	jwt.RegisteredClaims
}

// Identity returns the identity carried by the claims.
func (c *Claims) Identity() Identity {
	return Identity{
		UserID:   c.UserID,
		TenantID: c.TenantID,
		Role:     c.Role,
	}
}

func (c *Claims) complete() bool {
	return c.UserID != "" && c.TenantID != "" && c.Role.Valid() && c.ExpiresAt != nil
}
