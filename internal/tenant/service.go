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
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/opentrusty/tenantnotes/internal/audit"
	"github.com/opentrusty/tenantnotes/internal/authz"
	"github.com/opentrusty/tenantnotes/internal/id"
	"github.com/opentrusty/tenantnotes/internal/observability/logger"
	"github.com/opentrusty/tenantnotes/internal/observability/metrics"
	"github.com/opentrusty/tenantnotes/internal/observability/tracing"
	"github.com/opentrusty/tenantnotes/internal/session"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// Service provides tenant lookup and plan management
type Service struct {
	repo        Repository
	auditLogger audit.Logger
	metrics     *metrics.Instruments
	tracer      trace.Tracer
}

// NewService creates a new tenant service
func NewService(repo Repository, auditLogger audit.Logger, instruments *metrics.Instruments) *Service {
	if instruments == nil {
		instruments = metrics.Nop()
	}
	return &Service{
		repo:        repo,
		auditLogger: auditLogger,
		metrics:     instruments,
		tracer:      tracing.Named("tenant"),
	}
}

// Provision returns the tenant with slug, creating it if it does not exist.
func (s *Service) Provision(ctx context.Context, slug, name string, plan Plan) (*Tenant, error) {
	if !ValidSlug(slug) {
		return nil, fmt.Errorf("%w: %q", ErrInvalidSlug, slug)
	}
	if name == "" {
		return nil, fmt.Errorf("tenant name is required")
	}
	if _, err := ParsePlan(string(plan)); err != nil {
		return nil, err
	}

	existing, err := s.repo.GetBySlug(ctx, slug)
	if err == nil {
		return existing, nil
	}
	if !errors.Is(err, ErrTenantNotFound) {
		return nil, fmt.Errorf("failed to look up tenant: %w", err)
	}

	now := time.Now()
	t := &Tenant{
		ID:        id.NewUUIDv7(),
		Slug:      slug,
		Name:      name,
		Plan:      plan,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.repo.Create(ctx, t); err != nil {
		return nil, fmt.Errorf("failed to create tenant: %w", err)
	}

	s.auditLogger.Log(ctx, audit.Event{
		Type:     audit.TypeTenantCreated,
		TenantID: t.ID,
		Resource: "tenant",
		Metadata: map[string]any{audit.AttrSlug: slug, audit.AttrPlan: string(plan)},
	})
	return t, nil
}

// Get retrieves a tenant by ID
func (s *Service) Get(ctx context.Context, tenantID string) (*Tenant, error) {
	return s.repo.GetByID(ctx, tenantID)
}

// Upgrade moves the caller's own tenant to plan.
//
// Checks run in a fixed order: the caller must hold tenant:upgrade
// (ErrForbidden), slug must name the caller's tenant (ErrTenantNotFound,
// also for slugs of other tenants), and plan must be "pro" (ErrInvalidPlan).
// Upgrading a tenant that is already on pro returns it unchanged.
func (s *Service) Upgrade(ctx context.Context, ident session.Identity, slug, plan string) (*Tenant, error) {
	ctx, span := s.tracer.Start(ctx, "tenant.Upgrade", trace.WithAttributes(
		attribute.String("tenant.id", ident.TenantID),
		attribute.String("tenant.slug", slug),
	))
	defer span.End()

	if !ident.Can(authz.PermTenantUpgrade) {
		s.auditLogger.Log(ctx, audit.Event{
			Type:     audit.TypeAccessDenied,
			TenantID: ident.TenantID,
			ActorID:  ident.UserID,
			Resource: "tenant",
			Metadata: map[string]any{audit.AttrReason: "missing_permission", audit.AttrSlug: slug},
		})
		return nil, ErrForbidden
	}

	current, err := s.repo.GetByID(ctx, ident.TenantID)
	if err != nil {
		if errors.Is(err, ErrTenantNotFound) {
			return nil, ErrTenantNotFound
		}
		tracing.RecordError(span, err)
		return nil, fmt.Errorf("failed to get tenant: %w", err)
	}
	if current.Slug != slug {
		slog.WarnContext(ctx, "cross-tenant upgrade attempt",
			logger.TenantID(ident.TenantID),
			logger.UserID(ident.UserID),
			logger.TenantSlug(slug),
		)
		return nil, ErrTenantNotFound
	}

	if Plan(plan) != PlanPro {
		return nil, fmt.Errorf("%w: %q", ErrInvalidPlan, plan)
	}
	if current.Plan == PlanPro {
		return current, nil
	}

	updated, err := s.repo.UpdatePlan(ctx, current.ID, PlanPro)
	if err != nil {
		if errors.Is(err, ErrTenantNotFound) {
			return nil, ErrTenantNotFound
		}
		tracing.RecordError(span, err)
		return nil, fmt.Errorf("failed to update tenant plan: %w", err)
	}

	s.auditLogger.Log(ctx, audit.Event{
		Type:     audit.TypeTenantUpgraded,
		TenantID: updated.ID,
		ActorID:  ident.UserID,
		Resource: "tenant",
		Metadata: map[string]any{
			audit.AttrFromPlan: string(current.Plan),
			audit.AttrPlan:     string(updated.Plan),
		},
	})
	metrics.Add(ctx, s.metrics.TenantUpgraded, metrics.TenantAttr(updated.ID))
	slog.InfoContext(ctx, "tenant upgraded",
		logger.TenantID(updated.ID),
		logger.Plan(string(updated.Plan)),
	)

	return updated, nil
}
