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
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/opentrusty/tenantnotes/internal/audit"
	"github.com/opentrusty/tenantnotes/internal/identity"
	"github.com/opentrusty/tenantnotes/internal/note"
	"github.com/opentrusty/tenantnotes/internal/quota"
	"github.com/opentrusty/tenantnotes/internal/seed"
	"github.com/opentrusty/tenantnotes/internal/session"
	"github.com/opentrusty/tenantnotes/internal/store/memory"
	"github.com/opentrusty/tenantnotes/internal/tenant"
	"github.com/stretchr/testify/require"
)

const testSecret = "http-test-secret-0123456789abcdef"

type testServer struct {
	router *chi.Mux
	keys   *session.Keyring
	users  *memory.UserRepository
}

func newTestServer(t *testing.T, cfg RouterConfig) *testServer {
	t.Helper()

	db := memory.New()
	tenantRepo := memory.NewTenantRepository(db)
	userRepo := memory.NewUserRepository(db)
	noteRepo := memory.NewNoteRepository(db)

	keys, err := session.NewKeyring(testSecret)
	require.NoError(t, err)
	sessions := session.NewService(keys, time.Hour)
	hasher := identity.NewPasswordHasher(identity.MinBcryptCost)

	tenants := tenant.NewService(tenantRepo, audit.Nop{}, nil)
	users := identity.NewService(userRepo, hasher, sessions, audit.Nop{}, nil)
	notes := note.NewService(noteRepo, quota.NewPolicy(quota.DefaultFreeNoteLimit), audit.Nop{}, nil)

	require.NoError(t, seed.Run(context.Background(), seed.Services{
		Tenants: tenants,
		Users:   users,
		Notes:   notes,
		Hasher:  hasher,
	}))

	if cfg.LoginPerMinute == 0 {
		cfg.LoginPerMinute = 1000
	}
	h := NewHandler(users, sessions, tenants, notes, audit.Nop{})
	return &testServer{
		router: NewRouter(h, NewRateLimiter(1000, 1000), cfg),
		keys:   keys,
		users:  userRepo,
	}
}

func (s *testServer) do(t *testing.T, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var reader *bytes.Reader
	switch b := body.(type) {
	case nil:
		reader = bytes.NewReader(nil)
	case string:
		reader = bytes.NewReader([]byte(b))
	default:
		raw, err := json.Marshal(b)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	return w
}

func (s *testServer) login(t *testing.T, email string) string {
	t.Helper()
	w := s.do(t, http.MethodPost, "/auth/login", "", LoginRequest{Email: email, Password: seed.DefaultPassword})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var res struct {
		Token string `json:"token"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &res))
	require.NotEmpty(t, res.Token)
	return res.Token
}

func decodeBody(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out), w.Body.String())
	return out
}

func errorOf(t *testing.T, w *httptest.ResponseRecorder) string {
	t.Helper()
	msg, _ := decodeBody(t, w)["error"].(string)
	return msg
}

type noteEnvelope struct {
	Note NoteResponse `json:"note"`
}

type notesEnvelope struct {
	Notes []NoteResponse `json:"notes"`
}

func tamper(token string) string {
	parts := strings.Split(token, ".")
	sig := []byte(parts[2])
	if sig[0] == 'A' {
		sig[0] = 'B'
	} else {
		sig[0] = 'A'
	}
	parts[2] = string(sig)
	return strings.Join(parts, ".")
}
