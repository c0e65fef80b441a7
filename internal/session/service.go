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

package session

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// DefaultTTL is the lifetime of an issued token.
const DefaultTTL = 24 * time.Hour

// Service issues and verifies HS256 bearer tokens.
type Service struct {
	keys *Keyring
	ttl  time.Duration
	now  func() time.Time
}

// NewService creates a token service. A non-positive ttl selects DefaultTTL.
func NewService(keys *Keyring, ttl time.Duration) *Service {
	return NewServiceWithClock(keys, ttl, time.Now)
}

// NewServiceWithClock creates a token service reading time from now.
func NewServiceWithClock(keys *Keyring, ttl time.Duration, now func() time.Time) *Service {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Service{keys: keys, ttl: ttl, now: now}
}

// TTL returns the token lifetime.
func (s *Service) TTL() time.Duration {
	return s.ttl
}

// Issue signs a token for sub that expires TTL after now.
func (s *Service) Issue(sub Subject) (string, error) {
	if !sub.Role.Valid() {
		return "", fmt.Errorf("failed to issue token: invalid role %q", sub.Role)
	}

	now := s.now()
	claims := &Claims{
		UserID:   sub.UserID,
		TenantID: sub.TenantID,
		Role:     sub.Role,
		Email:    sub.Email,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
		},
	}

	key := s.keys.current()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	token.Header["kid"] = key.id

	signed, err := token.SignedString(key.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return signed, nil
}

// Verify checks the signature and expiry of raw and returns its claims.
// Every failure yields ErrInvalidToken so callers cannot tell a forged token
// from an expired one.
func (s *Service) Verify(raw string) (*Claims, error) {
	parser := jwt.NewParser(
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(s.now),
	)

	unverified, _, err := parser.ParseUnverified(raw, &Claims{})
	if err != nil {
		return nil, ErrInvalidToken
	}
	kid, _ := unverified.Header["kid"].(string)

	for _, key := range s.keys.candidates(kid) {
		claims := &Claims{}
		token, err := parser.ParseWithClaims(raw, claims, func(*jwt.Token) (any, error) {
			return key.secret, nil
		})
		if err != nil {
			if errors.Is(err, jwt.ErrTokenSignatureInvalid) {
				continue
			}
			return nil, ErrInvalidToken
		}
		if !token.Valid || !claims.complete() {
			return nil, ErrInvalidToken
		}
		return claims, nil
	}

	return nil, ErrInvalidToken
}

// Authenticate resolves an Authorization header value into a verified Identity.
// A missing header, a non-Bearer scheme or an empty token yields ErrNoToken.
// A token that fails verification yields ErrInvalidToken.
func (s *Service) Authenticate(header string) (Identity, error) {
	raw, ok := bearerToken(header)
	if !ok {
		return Identity{}, ErrNoToken
	}

	claims, err := s.Verify(raw)
	if err != nil {
		return Identity{}, ErrInvalidToken
	}
	return claims.Identity(), nil
}

func bearerToken(header string) (string, bool) {
	parts := strings.SplitN(strings.TrimSpace(header), " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return "", false
	}
	token := strings.TrimSpace(parts[1])
	return token, token != ""
}
