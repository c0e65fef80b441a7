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

package authz

import (
	"errors"
	"fmt"
)

var ErrUnknownRole = errors.New("unknown role")

// Role is a tenant membership role. The set is closed: a user is either an
// Admin or a Member of exactly one tenant.
type Role string

const (
	// RoleAdmin manages the tenant, including its plan.
	RoleAdmin Role = "Admin"

	// RoleMember reads and writes the tenant's notes.
	RoleMember Role = "Member"
)

// Roles lists every valid role.
var Roles = []Role{RoleAdmin, RoleMember}

// ParseRole converts a stored or claimed role name into a Role.
func ParseRole(s string) (Role, error) {
	switch Role(s) {
	case RoleAdmin:
		return RoleAdmin, nil
	case RoleMember:
		return RoleMember, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownRole, s)
}

// Valid reports whether r is one of the defined roles.
func (r Role) Valid() bool {
	_, err := ParseRole(string(r))
	return err == nil
}

func (r Role) String() string {
	return string(r)
}

// -----------------------------------------------------------------------------
// Role Permission Mappings
// -----------------------------------------------------------------------------

// AdminPermissions defines permissions for the Admin role.
var AdminPermissions = []string{
	PermNoteRead,
	PermNoteWrite,
	PermTenantUpgrade,
}

// MemberPermissions defines permissions for the Member role.
var MemberPermissions = []string{
	PermNoteRead,
	PermNoteWrite,
}

// Permissions returns the permission set granted to r.
func (r Role) Permissions() []string {
	switch r {
	case RoleAdmin:
		return AdminPermissions
	case RoleMember:
		return MemberPermissions
	}
	return nil
}

// Can reports whether role r holds permission.
func Can(r Role, permission string) bool {
	for _, p := range r.Permissions() {
		if p == permission {
			return true
		}
	}
	return false
}
