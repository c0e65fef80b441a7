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

package note

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/opentrusty/tenantnotes/internal/audit"
	"github.com/opentrusty/tenantnotes/internal/authz"
	"github.com/opentrusty/tenantnotes/internal/id"
	"github.com/opentrusty/tenantnotes/internal/observability/metrics"
	"github.com/opentrusty/tenantnotes/internal/observability/tracing"
	"github.com/opentrusty/tenantnotes/internal/quota"
	"github.com/opentrusty/tenantnotes/internal/session"
	"github.com/opentrusty/tenantnotes/internal/tenant"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// Service provides tenant-scoped note operations. The tenant and author of
// every operation come from the verified identity passed in, never from input.
type Service struct {
	repo        Repository
	policy      quota.Checker
	auditLogger audit.Logger
	metrics     *metrics.Instruments
	tracer      trace.Tracer
	now         func() time.Time
}

// NewService creates a new note service
func NewService(repo Repository, policy quota.Checker, auditLogger audit.Logger, instruments *metrics.Instruments) *Service {
	if instruments == nil {
		instruments = metrics.Nop()
	}
	return &Service{
		repo:        repo,
		policy:      policy,
		auditLogger: auditLogger,
		metrics:     instruments,
		tracer:      tracing.Named("note"),
		now:         time.Now,
	}
}

func (s *Service) start(ctx context.Context, op string, ident session.Identity) (context.Context, trace.Span) {
	return s.tracer.Start(ctx, "note."+op, trace.WithAttributes(
		attribute.String("tenant.id", ident.TenantID),
		attribute.String("user.id", ident.UserID),
	))
}

// List returns the caller's tenant notes, newest first.
func (s *Service) List(ctx context.Context, ident session.Identity) ([]*Note, error) {
	ctx, span := s.start(ctx, "List", ident)
	defer span.End()

	if !ident.Can(authz.PermNoteRead) {
		return nil, ErrForbidden
	}

	notes, err := s.repo.List(ctx, ident.TenantID)
	if err != nil {
		tracing.RecordError(span, err)
		return nil, fmt.Errorf("failed to list notes: %w", err)
	}
	return notes, nil
}

// Get returns a note of the caller's tenant.
func (s *Service) Get(ctx context.Context, ident session.Identity, noteID string) (*Note, error) {
	ctx, span := s.start(ctx, "Get", ident)
	defer span.End()

	if !ident.Can(authz.PermNoteRead) {
		return nil, ErrForbidden
	}
	if !id.Valid(noteID) {
		return nil, ErrNotFound
	}

	n, err := s.repo.Get(ctx, ident.TenantID, noteID)
	if err != nil {
		return nil, s.wrap(span, "get", err)
	}
	return n, nil
}

// Create validates in and stores a note for the caller's tenant, subject to
// the plan quota.
func (s *Service) Create(ctx context.Context, ident session.Identity, in CreateInput) (*Note, error) {
	ctx, span := s.start(ctx, "Create", ident)
	defer span.End()

	if err := validateTitle(in.Title); err != nil {
		return nil, err
	}
	if !ident.Can(authz.PermNoteWrite) {
		return nil, ErrForbidden
	}

	now := s.now()
	n := &Note{
		ID:        id.NewUUIDv7(),
		Title:     in.Title,
		Content:   in.Content,
		TenantID:  ident.TenantID,
		AuthorID:  ident.UserID,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := s.repo.CreateWithinQuota(ctx, n, s.policy); err != nil {
		if errors.Is(err, quota.ErrQuotaExceeded) {
			metrics.Add(ctx, s.metrics.QuotaRejected, metrics.TenantAttr(ident.TenantID))
			s.auditLogger.Log(ctx, audit.Event{
				Type:     audit.TypeQuotaDenied,
				TenantID: ident.TenantID,
				ActorID:  ident.UserID,
				Resource: "note",
			})
			return nil, err
		}
		return nil, s.wrap(span, "create", err)
	}

	metrics.Add(ctx, s.metrics.NotesCreated, metrics.TenantAttr(ident.TenantID))
	s.auditLogger.Log(ctx, audit.Event{
		Type:     audit.TypeNoteCreated,
		TenantID: ident.TenantID,
		ActorID:  ident.UserID,
		Resource: "note",
		Metadata: map[string]any{audit.AttrNoteID: n.ID},
	})
	return n, nil
}

// Update changes the supplied fields of a note of the caller's tenant.
func (s *Service) Update(ctx context.Context, ident session.Identity, noteID string, patch Patch) (*Note, error) {
	ctx, span := s.start(ctx, "Update", ident)
	defer span.End()

	if patch.Title != nil {
		if err := validateTitle(*patch.Title); err != nil {
			return nil, err
		}
	}
	if !ident.Can(authz.PermNoteWrite) {
		return nil, ErrForbidden
	}
	if !id.Valid(noteID) {
		return nil, ErrNotFound
	}

	n, err := s.repo.Update(ctx, ident.TenantID, noteID, patch, s.now())
	if err != nil {
		return nil, s.wrap(span, "update", err)
	}

	s.auditLogger.Log(ctx, audit.Event{
		Type:     audit.TypeNoteUpdated,
		TenantID: ident.TenantID,
		ActorID:  ident.UserID,
		Resource: "note",
		Metadata: map[string]any{audit.AttrNoteID: n.ID},
	})
	return n, nil
}

// Delete removes a note of the caller's tenant.
func (s *Service) Delete(ctx context.Context, ident session.Identity, noteID string) error {
	ctx, span := s.start(ctx, "Delete", ident)
	defer span.End()

	if !ident.Can(authz.PermNoteWrite) {
		return ErrForbidden
	}
	if !id.Valid(noteID) {
		return ErrNotFound
	}

	if err := s.repo.Delete(ctx, ident.TenantID, noteID); err != nil {
		return s.wrap(span, "delete", err)
	}

	s.auditLogger.Log(ctx, audit.Event{
		Type:     audit.TypeNoteDeleted,
		TenantID: ident.TenantID,
		ActorID:  ident.UserID,
		Resource: "note",
		Metadata: map[string]any{audit.AttrNoteID: noteID},
	})
	return nil
}

// wrap passes domain errors through and wraps everything else.
func (s *Service) wrap(span trace.Span, op string, err error) error {
	if errors.Is(err, ErrNotFound) || errors.Is(err, tenant.ErrTenantNotFound) {
		return err
	}
	tracing.RecordError(span, err)
	return fmt.Errorf("failed to %s note: %w", op, err)
}
