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

// Package seed loads the demo tenants, users and notes.
package seed

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/opentrusty/tenantnotes/internal/authz"
	"github.com/opentrusty/tenantnotes/internal/identity"
	"github.com/opentrusty/tenantnotes/internal/note"
	"github.com/opentrusty/tenantnotes/internal/observability/logger"
	"github.com/opentrusty/tenantnotes/internal/session"
	"github.com/opentrusty/tenantnotes/internal/tenant"
)

// DefaultPassword is shared by every seeded account.
const DefaultPassword = "password"

type seedUser struct {
	email string
	role  authz.Role
}

type seedNote struct {
	title, content string
	byAdmin        bool
}

type seedTenant struct {
	slug, name string
	users      []seedUser
	notes      []seedNote
}

var dataset = []seedTenant{
	{
		slug: "acme",
		name: "Acme Corporation",
		users: []seedUser{
			{"admin@acme.test", authz.RoleAdmin},
			{"user@acme.test", authz.RoleMember},
		},
		notes: []seedNote{
			{"Welcome to Acme Notes", "This is your first note in the Acme Corporation workspace.", true},
			{"Project Planning", "We need to plan our Q1 objectives and deliverables.", false},
		},
	},
	{
		slug: "globex",
		name: "Globex Corporation",
		users: []seedUser{
			{"admin@globex.test", authz.RoleAdmin},
			{"user@globex.test", authz.RoleMember},
		},
		notes: []seedNote{
			{"Globex Team Meeting", "Notes from our weekly team standup meeting.", true},
			{"Client Requirements", "Updated requirements from our main client project.", false},
		},
	},
}

// Services are the domain services the seed writes through.
type Services struct {
	Tenants *tenant.Service
	Users   *identity.Service
	Notes   *note.Service
	Hasher  *identity.PasswordHasher
}

// Run creates the demo data. It is safe to run repeatedly: existing tenants
// and users are reused and notes are only added to a tenant that has none.
func Run(ctx context.Context, svc Services) error {
	hash, err := svc.Hasher.Hash(DefaultPassword)
	if err != nil {
		return fmt.Errorf("failed to hash seed password: %w", err)
	}

	for _, st := range dataset {
		t, err := svc.Tenants.Provision(ctx, st.slug, st.name, tenant.PlanFree)
		if err != nil {
			return fmt.Errorf("failed to seed tenant %s: %w", st.slug, err)
		}

		var admin, member *identity.User
		for _, su := range st.users {
			u, err := svc.Users.Provision(ctx, identity.ProvisionInput{
				TenantID:     t.ID,
				Email:        su.email,
				PasswordHash: hash,
				Role:         su.role,
			})
			if err != nil {
				return fmt.Errorf("failed to seed user %s: %w", su.email, err)
			}
			if su.role == authz.RoleAdmin {
				admin = u
			} else {
				member = u
			}
		}

		created, err := seedNotes(ctx, svc.Notes, st.notes, identityOf(admin), identityOf(member))
		if err != nil {
			return fmt.Errorf("failed to seed notes for %s: %w", st.slug, err)
		}

		slog.InfoContext(ctx, "seeded tenant",
			logger.TenantSlug(t.Slug),
			logger.TenantID(t.ID),
			logger.Plan(string(t.Plan)),
			logger.NoteCount(created),
		)
	}
	return nil
}

func identityOf(u *identity.User) session.Identity {
	return session.Identity{UserID: u.ID, TenantID: u.TenantID, Role: u.Role}
}

func seedNotes(ctx context.Context, notes *note.Service, data []seedNote, admin, member session.Identity) (int, error) {
	existing, err := notes.List(ctx, admin)
	if err != nil {
		return 0, err
	}
	if len(existing) > 0 {
		return 0, nil
	}

	for _, sn := range data {
		author := member
		if sn.byAdmin {
			author = admin
		}
		content := sn.content
		if _, err := notes.Create(ctx, author, note.CreateInput{Title: sn.title, Content: &content}); err != nil {
			return 0, err
		}
	}
	return len(data), nil
}
