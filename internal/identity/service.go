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
	"fmt"
	"log/slog"
	"net/mail"
	"strings"
	"sync"
	"time"

	"github.com/opentrusty/tenantnotes/internal/audit"
	"github.com/opentrusty/tenantnotes/internal/authz"
	"github.com/opentrusty/tenantnotes/internal/id"
	"github.com/opentrusty/tenantnotes/internal/observability/logger"
	"github.com/opentrusty/tenantnotes/internal/observability/metrics"
	"github.com/opentrusty/tenantnotes/internal/observability/tracing"
	"github.com/opentrusty/tenantnotes/internal/session"
	"go.opentelemetry.io/otel/trace"
)

const maxEmailLength = 254

// TokenIssuer signs bearer tokens for authenticated users.
type TokenIssuer interface {
	Issue(sub session.Subject) (string, error)
}

// LoginResult is returned by a successful login.
type LoginResult struct {
	Token string  `json:"token"`
	User  Summary `json:"user"`
}

// ProvisionInput describes a user to create. PasswordHash, when set, is
// stored as is and Password is ignored.
type ProvisionInput struct {
	TenantID     string
	Email        string
	Password     string
	PasswordHash string
	Role         authz.Role
}

// Service provides identity-related business logic
type Service struct {
	repo        UserRepository
	hasher      *PasswordHasher
	tokens      TokenIssuer
	auditLogger audit.Logger
	metrics     *metrics.Instruments
	tracer      trace.Tracer

	decoyOnce sync.Once
	decoyHash string
}

// NewService creates a new identity service
func NewService(
	repo UserRepository,
	hasher *PasswordHasher,
	tokens TokenIssuer,
	auditLogger audit.Logger,
	instruments *metrics.Instruments,
) *Service {
	if instruments == nil {
		instruments = metrics.Nop()
	}
	return &Service{
		repo:        repo,
		hasher:      hasher,
		tokens:      tokens,
		auditLogger: auditLogger,
		metrics:     instruments,
		tracer:      tracing.Named("identity"),
	}
}

// Login authenticates email and password and issues a bearer token.
//
// An unknown email and a wrong password both return ErrInvalidCredentials,
// and both pay for one bcrypt comparison.
func (s *Service) Login(ctx context.Context, email, password string) (*LoginResult, error) {
	ctx, span := s.tracer.Start(ctx, "identity.Login")
	defer span.End()

	email = normalizeEmail(email)
	if !isValidEmail(email) {
		return nil, ErrInvalidEmail
	}
	if password == "" {
		return nil, ErrPasswordRequired
	}

	user, err := s.repo.GetByEmail(ctx, email)
	if err != nil {
		if !errors.Is(err, ErrUserNotFound) {
			tracing.RecordError(span, err)
			return nil, fmt.Errorf("failed to get user: %w", err)
		}
		_, _ = s.hasher.Verify(password, s.decoy())
		s.loginFailed(ctx, "", "", email, "user_not_found")
		return nil, ErrInvalidCredentials
	}

	valid, err := s.hasher.Verify(password, user.PasswordHash)
	if err != nil || !valid {
		reason := "invalid_password"
		if err != nil {
			reason = "unreadable_hash"
			slog.ErrorContext(ctx, "stored password hash could not be verified",
				logger.UserID(user.ID),
				logger.Error(err),
			)
		}
		s.loginFailed(ctx, user.TenantID, user.ID, email, reason)
		return nil, ErrInvalidCredentials
	}

	if user.Tenant == nil {
		return nil, fmt.Errorf("user %s loaded without tenant", user.ID)
	}

	token, err := s.tokens.Issue(session.Subject{
		UserID:   user.ID,
		TenantID: user.TenantID,
		Role:     user.Role,
		Email:    user.Email,
	})
	if err != nil {
		tracing.RecordError(span, err)
		return nil, fmt.Errorf("failed to issue token: %w", err)
	}

	s.auditLogger.Log(ctx, audit.Event{
		Type:     audit.TypeLoginSuccess,
		TenantID: user.TenantID,
		ActorID:  user.ID,
		Resource: "login",
	})

	return &LoginResult{Token: token, User: user.Summary()}, nil
}

func (s *Service) loginFailed(ctx context.Context, tenantID, userID, email, reason string) {
	metrics.Add(ctx, s.metrics.LoginFailed)
	s.auditLogger.Log(ctx, audit.Event{
		Type:     audit.TypeLoginFailed,
		TenantID: tenantID,
		ActorID:  userID,
		Resource: "login",
		Metadata: map[string]any{
			audit.AttrReason: reason,
			audit.AttrEmail:  email,
		},
	})
}

// decoy returns a hash to compare against when the email is unknown.
func (s *Service) decoy() string {
	s.decoyOnce.Do(func() {
		h, err := s.hasher.Hash(id.NewUUIDv7())
		if err == nil {
			s.decoyHash = h
		}
	})
	return s.decoyHash
}

// CurrentUser returns the caller's user record with its tenant.
func (s *Service) CurrentUser(ctx context.Context, ident session.Identity) (*Summary, error) {
	user, err := s.repo.GetByID(ctx, ident.UserID)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	if user.TenantID != ident.TenantID {
		return nil, ErrUserNotFound
	}

	summary := user.Summary()
	return &summary, nil
}

// Provision returns the user with in.Email, creating it if it does not exist.
func (s *Service) Provision(ctx context.Context, in ProvisionInput) (*User, error) {
	email := normalizeEmail(in.Email)
	if !isValidEmail(email) {
		return nil, ErrInvalidEmail
	}
	if !in.Role.Valid() {
		return nil, fmt.Errorf("%w: %q", authz.ErrUnknownRole, in.Role)
	}
	if in.TenantID == "" {
		return nil, fmt.Errorf("tenant id is required")
	}

	existing, err := s.repo.GetByEmail(ctx, email)
	if err == nil {
		return existing, nil
	}
	if !errors.Is(err, ErrUserNotFound) {
		return nil, fmt.Errorf("failed to look up user: %w", err)
	}

	hash := in.PasswordHash
	if hash == "" {
		if in.Password == "" {
			return nil, ErrPasswordRequired
		}
		if hash, err = s.hasher.Hash(in.Password); err != nil {
			return nil, err
		}
	}

	now := time.Now()
	user := &User{
		ID:           id.NewUUIDv7(),
		Email:        email,
		PasswordHash: hash,
		Role:         in.Role,
		TenantID:     in.TenantID,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.repo.Create(ctx, user); err != nil {
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	s.auditLogger.Log(ctx, audit.Event{
		Type:     audit.TypeUserCreated,
		TenantID: user.TenantID,
		ActorID:  user.ID,
		Resource: "user",
		Metadata: map[string]any{audit.AttrEmail: user.Email},
	})
	return user, nil
}

// Helper functions
func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func isValidEmail(email string) bool {
	if email == "" || len(email) > maxEmailLength {
		return false
	}
	addr, err := mail.ParseAddress(email)
	if err != nil {
		return false
	}
	// Reject display-name forms such as "Bob <bob@example.com>".
	return addr.Address == email && strings.Contains(email, "@")
}
