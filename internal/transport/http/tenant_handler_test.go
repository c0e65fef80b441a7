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
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestPurpose: Validates that an admin can upgrade their own tenant.
// Scope: Unit Test
// Security: Role-gated plan mutation
// Permissions: tenant:upgrade
// Expected: 200 with the tenant on pro; repeating the upgrade is harmless; /auth/me reflects the new plan.
// Test Case ID: TEN-HTTP-01
func TestTenant_Upgrade_Admin(t *testing.T) {
	s := newTestServer(t, RouterConfig{})
	admin := s.login(t, "admin@globex.test")

	for i := 0; i < 2; i++ {
		w := s.do(t, http.MethodPost, "/tenants/globex/upgrade", admin, map[string]any{"plan": "pro"})
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())
		body := decodeBody(t, w)
		assert.Equal(t, "Tenant upgraded successfully", body["message"])
		tn := body["tenant"].(map[string]any)
		assert.Equal(t, "globex", tn["slug"])
		assert.Equal(t, "Globex Corporation", tn["name"])
		assert.Equal(t, "pro", tn["plan"])
		assert.NotEmpty(t, tn["id"])
	}

	w := s.do(t, http.MethodGet, "/auth/me", admin, nil)
	require.Equal(t, http.StatusOK, w.Code)
	user := decodeBody(t, w)["user"].(map[string]any)
	assert.Equal(t, "pro", user["tenant"].(map[string]any)["plan"])
}

// TestPurpose: Validates the upgrade refusal paths and their order.
// Scope: Unit Test
// Security: Privilege escalation and cross-tenant mutation prevention
// Expected: Members get 403 even for foreign slugs, admins get 404 for other tenants' slugs and 400 for unknown plans.
// Test Case ID: TEN-HTTP-02
func TestTenant_Upgrade_Refused(t *testing.T) {
	s := newTestServer(t, RouterConfig{})
	admin := s.login(t, "admin@acme.test")
	member := s.login(t, "user@acme.test")

	tests := []struct {
		name   string
		token  string
		path   string
		body   any
		status int
		msg    string
	}{
		{"member own tenant", member, "/tenants/acme/upgrade", map[string]any{"plan": "pro"}, http.StatusForbidden, "Only admins can upgrade tenants"},
		{"member foreign tenant", member, "/tenants/globex/upgrade", map[string]any{"plan": "pro"}, http.StatusForbidden, "Only admins can upgrade tenants"},
		{"admin foreign tenant", admin, "/tenants/globex/upgrade", map[string]any{"plan": "pro"}, http.StatusNotFound, "Tenant not found"},
		{"admin unknown tenant", admin, "/tenants/initech/upgrade", map[string]any{"plan": "pro"}, http.StatusNotFound, "Tenant not found"},
		{"admin bad plan", admin, "/tenants/acme/upgrade", map[string]any{"plan": "enterprise"}, http.StatusBadRequest, "Invalid plan"},
		{"admin no body", admin, "/tenants/acme/upgrade", nil, http.StatusBadRequest, "Invalid plan"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := s.do(t, http.MethodPost, tt.path, tt.token, tt.body)
			assert.Equal(t, tt.status, w.Code)
			assert.Equal(t, tt.msg, errorOf(t, w))
		})
	}

	globex := s.login(t, "admin@globex.test")
	w := s.do(t, http.MethodGet, "/auth/me", globex, nil)
	require.Equal(t, http.StatusOK, w.Code)
	user := decodeBody(t, w)["user"].(map[string]any)
	assert.Equal(t, "free", user["tenant"].(map[string]any)["plan"])
}
