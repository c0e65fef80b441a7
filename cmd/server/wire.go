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

package main

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/opentrusty/tenantnotes/internal/audit"
	"github.com/opentrusty/tenantnotes/internal/config"
	"github.com/opentrusty/tenantnotes/internal/identity"
	"github.com/opentrusty/tenantnotes/internal/note"
	"github.com/opentrusty/tenantnotes/internal/observability/logger"
	"github.com/opentrusty/tenantnotes/internal/observability/metrics"
	"github.com/opentrusty/tenantnotes/internal/quota"
	"github.com/opentrusty/tenantnotes/internal/seed"
	"github.com/opentrusty/tenantnotes/internal/session"
	"github.com/opentrusty/tenantnotes/internal/store/memory"
	"github.com/opentrusty/tenantnotes/internal/store/postgres"
	"github.com/opentrusty/tenantnotes/internal/tenant"
)

// stores groups the repositories of the selected driver.
type stores struct {
	tenants tenant.Repository
	users   identity.UserRepository
	notes   note.Repository
	db      *postgres.DB // nil for the memory driver
}

func (s *stores) Close() {
	if s.db != nil {
		s.db.Close()
	}
}

func openStores(ctx context.Context, cfg config.DatabaseConfig) (*stores, error) {
	switch cfg.Driver {
	case config.DriverMemory:
		db := memory.New()
		return &stores{
			tenants: memory.NewTenantRepository(db),
			users:   memory.NewUserRepository(db),
			notes:   memory.NewNoteRepository(db),
		}, nil
	case config.DriverPostgres:
		db, err := postgres.New(ctx, postgres.Config{
			Host:            cfg.Host,
			Port:            cfg.Port,
			User:            cfg.User,
			Password:        cfg.Password,
			Database:        cfg.Database,
			SSLMode:         cfg.SSLMode,
			MaxOpenConns:    cfg.MaxOpenConns,
			MaxIdleConns:    cfg.MaxIdleConns,
			ConnMaxLifetime: cfg.ConnMaxLifetime,
		})
		if err != nil {
			return nil, err
		}
		return &stores{
			tenants: postgres.NewTenantRepository(db),
			users:   postgres.NewUserRepository(db),
			notes:   postgres.NewNoteRepository(db),
			db:      db,
		}, nil
	}
	return nil, fmt.Errorf("unknown database driver %q", cfg.Driver)
}

// services holds the wired domain services.
type services struct {
	sessions *session.Service
	tenants  *tenant.Service
	users    *identity.Service
	notes    *note.Service
	hasher   *identity.PasswordHasher
	audit    audit.Logger
}

func newServices(cfg *config.Config, st *stores, instruments *metrics.Instruments) (*services, error) {
	keys, err := session.NewKeyring(cfg.Token.Secret, cfg.Token.PreviousSecrets...)
	if err != nil {
		return nil, fmt.Errorf("failed to load token secrets: %w", err)
	}

	auditLogger := audit.NewSlogLogger()
	hasher := identity.NewPasswordHasher(cfg.Security.BcryptCost)
	sessions := session.NewService(keys, cfg.Token.TTL)

	slog.Info("token keyring loaded",
		logger.Component("session"),
		slog.Int("keys", keys.Len()),
	)

	return &services{
		sessions: sessions,
		tenants:  tenant.NewService(st.tenants, auditLogger, instruments),
		users:    identity.NewService(st.users, hasher, sessions, auditLogger, instruments),
		notes:    note.NewService(st.notes, quota.NewPolicy(cfg.Security.FreePlanNoteLimit), auditLogger, instruments),
		hasher:   hasher,
		audit:    auditLogger,
	}, nil
}

func (s *services) seed() seed.Services {
	return seed.Services{
		Tenants: s.tenants,
		Users:   s.users,
		Notes:   s.notes,
		Hasher:  s.hasher,
	}
}
