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
	"encoding/json"
	"net/http"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// =============================================================================
// NOTES API TESTS
// Category: Notes API - CRUD, Tenant Isolation & Quota
// Type: Unit Test (UT)
// =============================================================================

func listNotes(t *testing.T, s *testServer, token string) []NoteResponse {
	t.Helper()
	w := s.do(t, http.MethodGet, "/notes", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var env notesEnvelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env))
	return env.Notes
}

// TestPurpose: Validates the create, read, update and delete cycle of a note.
// Scope: Unit Test
// Security: Tenant and author derived from token
// Expected: The note belongs to the caller's tenant and author, partial updates keep omitted fields and deletion makes the note unreachable.
// Test Case ID: NOTE-HTTP-01
func TestNotes_RoundTrip(t *testing.T) {
	s := newTestServer(t, RouterConfig{})
	token := s.login(t, "user@acme.test")

	w := s.do(t, http.MethodPost, "/notes", token, map[string]any{"title": "Draft", "content": "first"})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var created noteEnvelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &created))
	assert.Equal(t, "Draft", created.Note.Title)
	assert.Equal(t, "user@acme.test", created.Note.Author.Email)
	assert.Equal(t, created.Note.AuthorID, created.Note.Author.ID)

	notes := listNotes(t, s, token)
	require.Len(t, notes, 3)
	assert.Equal(t, created.Note.ID, notes[0].ID)

	path := "/notes/" + created.Note.ID
	w = s.do(t, http.MethodPut, path, token, map[string]any{"title": "Final"})
	require.Equal(t, http.StatusOK, w.Code)
	var updated noteEnvelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &updated))
	assert.Equal(t, "Final", updated.Note.Title)
	require.NotNil(t, updated.Note.Content)
	assert.Equal(t, "first", *updated.Note.Content)
	assert.Equal(t, created.Note.TenantID, updated.Note.TenantID)

	w = s.do(t, http.MethodPut, path, token, map[string]any{"content": "second"})
	require.Equal(t, http.StatusOK, w.Code)

	w = s.do(t, http.MethodGet, path, token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var fetched noteEnvelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &fetched))
	assert.Equal(t, "Final", fetched.Note.Title)
	require.NotNil(t, fetched.Note.Content)
	assert.Equal(t, "second", *fetched.Note.Content)

	w = s.do(t, http.MethodDelete, path, token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Note deleted successfully", decodeBody(t, w)["message"])

	w = s.do(t, http.MethodGet, path, token, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "Note not found", errorOf(t, w))
}

// TestPurpose: Validates that content may be null.
// Scope: Unit Test
// Security: N/A
// Expected: A note created without content is serialized with "content": null.
// Test Case ID: NOTE-HTTP-02
func TestNotes_NullContent(t *testing.T) {
	s := newTestServer(t, RouterConfig{})
	token := s.login(t, "admin@globex.test")

	w := s.do(t, http.MethodPost, "/notes", token, map[string]any{"title": "Bare"})
	require.Equal(t, http.StatusCreated, w.Code)
	assert.Contains(t, w.Body.String(), `"content":null`)
}

// TestPurpose: Validates note input validation.
// Scope: Unit Test
// Security: Input sanitization boundary check
// Expected: A missing or over-long title returns 400 and malformed JSON returns "Invalid request body".
// Test Case ID: NOTE-HTTP-03
func TestNotes_Validation(t *testing.T) {
	s := newTestServer(t, RouterConfig{})
	token := s.login(t, "user@acme.test")

	w := s.do(t, http.MethodPost, "/notes", token, map[string]any{"content": "no title"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "Title is required", errorOf(t, w))

	w = s.do(t, http.MethodPost, "/notes", token, map[string]any{"title": strings.Repeat("x", 201)})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "Title must be at most 200 characters", errorOf(t, w))

	w = s.do(t, http.MethodPost, "/notes", token, `{"title":`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "Invalid request body", errorOf(t, w))

	id := listNotes(t, s, token)[0].ID
	w = s.do(t, http.MethodPut, "/notes/"+id, token, map[string]any{"title": ""})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "Title is required", errorOf(t, w))
}

// TestPurpose: Validates that another tenant's notes are invisible and immutable.
// Scope: Unit Test
// Security: Multi-tenant Data Separation (CWE-284)
// Expected: Reads, updates and deletes of another tenant's note return the same 404 as a note that does not exist, and the note is unchanged.
// Test Case ID: NOTE-HTTP-04
func TestNotes_CrossTenantIsolation(t *testing.T) {
	s := newTestServer(t, RouterConfig{})
	acme := s.login(t, "admin@acme.test")
	globex := s.login(t, "admin@globex.test")

	acmeNotes := listNotes(t, s, acme)
	require.NotEmpty(t, acmeNotes)
	target := "/notes/" + acmeNotes[0].ID
	missing := "/notes/0190a3c2-0000-7000-8000-000000000000"

	for _, n := range listNotes(t, s, globex) {
		assert.NotEqual(t, acmeNotes[0].TenantID, n.TenantID)
	}

	for _, tc := range []struct {
		method string
		body   any
	}{
		{http.MethodGet, nil},
		{http.MethodPut, map[string]any{"title": "owned"}},
		{http.MethodDelete, nil},
	} {
		t.Run(tc.method, func(t *testing.T) {
			cross := s.do(t, tc.method, target, globex, tc.body)
			absent := s.do(t, tc.method, missing, globex, tc.body)
			assert.Equal(t, http.StatusNotFound, cross.Code)
			assert.Equal(t, absent.Code, cross.Code)
			assert.Equal(t, absent.Body.String(), cross.Body.String())
		})
	}

	w := s.do(t, http.MethodGet, target, acme, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var env noteEnvelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env))
	assert.Equal(t, acmeNotes[0].Title, env.Note.Title)

	w = s.do(t, http.MethodGet, "/notes/not-a-uuid", acme, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

// TestPurpose: Validates the free plan limit and that upgrading lifts it.
// Scope: Unit Test
// Security: Quota enforcement
// Expected: The fourth note of a free tenant is refused with 403; after an admin upgrade the same request succeeds.
// Test Case ID: NOTE-HTTP-05
func TestNotes_FreePlanQuota(t *testing.T) {
	s := newTestServer(t, RouterConfig{})
	member := s.login(t, "user@acme.test")
	admin := s.login(t, "admin@acme.test")

	w := s.do(t, http.MethodPost, "/notes", member, map[string]any{"title": "third"})
	require.Equal(t, http.StatusCreated, w.Code)

	w = s.do(t, http.MethodPost, "/notes", member, map[string]any{"title": "fourth"})
	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Equal(t, "Free plan limit reached. Upgrade to Pro for unlimited notes.", errorOf(t, w))
	assert.Len(t, listNotes(t, s, member), 3)

	w = s.do(t, http.MethodPost, "/notes", s.login(t, "user@globex.test"), map[string]any{"title": "unaffected"})
	assert.Equal(t, http.StatusCreated, w.Code)

	w = s.do(t, http.MethodPost, "/tenants/acme/upgrade", admin, map[string]any{"plan": "pro"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w = s.do(t, http.MethodPost, "/notes", member, map[string]any{"title": "fourth"})
	assert.Equal(t, http.StatusCreated, w.Code)
	assert.Len(t, listNotes(t, s, member), 4)
}
