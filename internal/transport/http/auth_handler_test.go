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

package http

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/opentrusty/tenantnotes/internal/authz"
	"github.com/opentrusty/tenantnotes/internal/session"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// =============================================================================
// AUTH API TESTS
// Category: Auth API - Login, Current User & Token Verification
// Type: Unit Test (UT)
// =============================================================================

// TestPurpose: Validates a successful login and the returned user view.
// Scope: Unit Test
// Security: Credential verification
// Expected: 200 with a token and the user's role and tenant; no password hash is exposed.
// Test Case ID: LGN-01
func TestAuth_Login_Success(t *testing.T) {
	s := newTestServer(t, RouterConfig{})

	w := s.do(t, http.MethodPost, "/auth/login", "", LoginRequest{Email: "  Admin@Acme.test ", Password: "password"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	body := decodeBody(t, w)
	assert.NotEmpty(t, body["token"])
	user := body["user"].(map[string]any)
	assert.Equal(t, "admin@acme.test", user["email"])
	assert.Equal(t, "Admin", user["role"])
	tn := user["tenant"].(map[string]any)
	assert.Equal(t, "acme", tn["slug"])
	assert.Equal(t, "Acme Corporation", tn["name"])
	assert.Equal(t, "free", tn["plan"])
	assert.NotContains(t, w.Body.String(), "$2a$")
}

// TestPurpose: Validates that unknown emails and wrong passwords are indistinguishable.
// Scope: Unit Test
// Security: User enumeration prevention
// Expected: Both return 401 with the same body.
// Test Case ID: LGN-02
func TestAuth_Login_InvalidCredentials(t *testing.T) {
	s := newTestServer(t, RouterConfig{})

	wrongPass := s.do(t, http.MethodPost, "/auth/login", "", LoginRequest{Email: "admin@acme.test", Password: "nope"})
	unknown := s.do(t, http.MethodPost, "/auth/login", "", LoginRequest{Email: "ghost@acme.test", Password: "password"})

	assert.Equal(t, http.StatusUnauthorized, wrongPass.Code)
	assert.Equal(t, http.StatusUnauthorized, unknown.Code)
	assert.Equal(t, wrongPass.Body.String(), unknown.Body.String())
	assert.Equal(t, "Invalid credentials", errorOf(t, wrongPass))
}

// TestPurpose: Validates login input validation.
// Scope: Unit Test
// Security: Input sanitization boundary check
// Expected: Malformed JSON, an invalid email and a missing password return 400 with distinct messages.
// Test Case ID: LGN-03
func TestAuth_Login_BadInput(t *testing.T) {
	s := newTestServer(t, RouterConfig{})

	tests := []struct {
		name string
		body any
		want string
	}{
		{"malformed json", `{invalid_json}`, "Invalid request body"},
		{"empty body", "", "Invalid request body"},
		{"invalid email", LoginRequest{Email: "not-an-email", Password: "password"}, "Invalid email address"},
		{"missing password", LoginRequest{Email: "admin@acme.test"}, "Password is required"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := s.do(t, http.MethodPost, "/auth/login", "", tt.body)
			assert.Equal(t, http.StatusBadRequest, w.Code)
			assert.Equal(t, tt.want, errorOf(t, w))
		})
	}
}

// TestPurpose: Validates the current user endpoint.
// Scope: Unit Test
// Security: Identity derived from token only
// Expected: 200 with the user and tenant; 404 once the user no longer exists.
// Test Case ID: ME-01
func TestAuth_Me(t *testing.T) {
	s := newTestServer(t, RouterConfig{})
	token := s.login(t, "user@globex.test")

	w := s.do(t, http.MethodGet, "/auth/me", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	user := decodeBody(t, w)["user"].(map[string]any)
	assert.Equal(t, "user@globex.test", user["email"])
	assert.Equal(t, "Member", user["role"])
	assert.Equal(t, "globex", user["tenant"].(map[string]any)["slug"])

	u, err := s.users.GetByEmail(context.Background(), "user@globex.test")
	require.NoError(t, err)
	require.NoError(t, s.users.DeleteUser(context.Background(), u.ID))

	w = s.do(t, http.MethodGet, "/auth/me", token, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "User not found", errorOf(t, w))
}

// TestPurpose: Validates that every protected route rejects missing, tampered and expired tokens.
// Scope: Unit Test
// Security: Authentication enforcement (CWE-306)
// Expected: 401 "No token provided" without a token and 401 "Invalid token" otherwise.
// Test Case ID: TOK-HTTP-01
func TestAuth_ProtectedRoutes_RejectBadTokens(t *testing.T) {
	s := newTestServer(t, RouterConfig{})
	valid := s.login(t, "admin@acme.test")

	past := session.NewServiceWithClock(s.keys, time.Hour, func() time.Time { return time.Now().Add(-2 * time.Hour) })
	expired, err := past.Issue(session.Subject{UserID: "u", TenantID: "t", Role: authz.RoleAdmin, Email: "a@b.test"})
	require.NoError(t, err)

	routes := []struct{ method, path string }{
		{http.MethodGet, "/auth/me"},
		{http.MethodGet, "/notes"},
		{http.MethodPost, "/notes"},
		{http.MethodGet, "/notes/0190a3c2-0000-7000-8000-000000000000"},
		{http.MethodPut, "/notes/0190a3c2-0000-7000-8000-000000000000"},
		{http.MethodDelete, "/notes/0190a3c2-0000-7000-8000-000000000000"},
		{http.MethodPost, "/tenants/acme/upgrade"},
	}

	for _, rt := range routes {
		t.Run(rt.method+" "+rt.path, func(t *testing.T) {
			w := s.do(t, rt.method, rt.path, "", nil)
			assert.Equal(t, http.StatusUnauthorized, w.Code)
			assert.Equal(t, "No token provided", errorOf(t, w))

			for _, bad := range []string{tamper(valid), expired, "garbage"} {
				w = s.do(t, rt.method, rt.path, bad, nil)
				assert.Equal(t, http.StatusUnauthorized, w.Code)
				assert.Equal(t, "Invalid token", errorOf(t, w))
			}
		})
	}
}
