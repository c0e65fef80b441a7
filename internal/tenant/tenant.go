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

package tenant

import (
	"errors"
	"fmt"
	"regexp"
	"time"
)

// Domain errors
var (
	ErrTenantNotFound      = errors.New("tenant not found")
	ErrTenantAlreadyExists = errors.New("tenant already exists")
	ErrForbidden           = errors.New("only admins can upgrade tenants")
	ErrInvalidPlan         = errors.New("invalid plan")
	ErrInvalidSlug         = errors.New("invalid tenant slug")
)

// Plan is a tenant's service tier.
type Plan string

const (
	PlanFree Plan = "free"
	PlanPro  Plan = "pro"
)

// ParsePlan converts a stored plan name into a Plan.
func ParsePlan(s string) (Plan, error) {
	switch Plan(s) {
	case PlanFree:
		return PlanFree, nil
	case PlanPro:
		return PlanPro, nil
	}
	return "", fmt.Errorf("%w: %q", ErrInvalidPlan, s)
}

// Tenant represents an isolated organization. ID is its identity; Slug is a
// stable, URL-safe external alias.
type Tenant struct {
	ID        string
	Slug      string
	Name      string
	Plan      Plan
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Summary is the public view of a tenant.
type Summary struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Slug string `json:"slug"`
	Plan Plan   `json:"plan"`
}

// Summary returns the public view of t.
func (t *Tenant) Summary() Summary {
	return Summary{
		ID:   t.ID,
		Name: t.Name,
		Slug: t.Slug,
		Plan: t.Plan,
	}
}

var slugPattern = regexp.MustCompile(`^[a-z0-9]+(?:-[a-z0-9]+)*$`)

// ValidSlug reports whether s is a lowercase, hyphen separated slug.
func ValidSlug(s string) bool {
	return len(s) <= 63 && slugPattern.MatchString(s)
}
