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

package memory

import (
	"context"
	"sort"
	"time"

	"github.com/opentrusty/tenantnotes/internal/note"
	"github.com/opentrusty/tenantnotes/internal/quota"
	"github.com/opentrusty/tenantnotes/internal/tenant"
)

// NoteRepository implements note.Repository
type NoteRepository struct {
	db *DB
}

// NewNoteRepository creates a new note repository
func NewNoteRepository(db *DB) *NoteRepository {
	return &NoteRepository{db: db}
}

func (r *NoteRepository) List(_ context.Context, tenantID string) ([]*note.Note, error) {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()

	notes := make([]*note.Note, 0)
	for _, n := range r.db.notes {
		if n.TenantID == tenantID {
			notes = append(notes, r.withAuthor(n))
		}
	}
	sort.Slice(notes, func(i, j int) bool {
		if !notes[i].CreatedAt.Equal(notes[j].CreatedAt) {
			return notes[i].CreatedAt.After(notes[j].CreatedAt)
		}
		return notes[i].ID > notes[j].ID
	})
	return notes, nil
}

func (r *NoteRepository) Get(_ context.Context, tenantID, noteID string) (*note.Note, error) {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()

	n, ok := r.db.notes[noteID]
	if !ok || n.TenantID != tenantID {
		return nil, note.ErrNotFound
	}
	return r.withAuthor(n), nil
}

// CreateWithinQuota holds the write lock across the count and the insert, so
// concurrent creates for a tenant are serialized.
func (r *NoteRepository) CreateWithinQuota(_ context.Context, n *note.Note, checker quota.Checker) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	t, ok := r.db.tenants[n.TenantID]
	if !ok {
		return tenant.ErrTenantNotFound
	}

	count := 0
	for _, existing := range r.db.notes {
		if existing.TenantID == n.TenantID {
			count++
		}
	}
	if err := checker.Check(t.Plan, count); err != nil {
		return err
	}

	stored := copyNote(n)
	stored.Author = note.Author{}
	r.db.notes[n.ID] = stored
	n.Author = r.withAuthor(stored).Author
	return nil
}

func (r *NoteRepository) Update(_ context.Context, tenantID, noteID string, patch note.Patch, updatedAt time.Time) (*note.Note, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	n, ok := r.db.notes[noteID]
	if !ok || n.TenantID != tenantID {
		return nil, note.ErrNotFound
	}
	if patch.Title != nil {
		n.Title = *patch.Title
	}
	if patch.Content != nil {
		c := *patch.Content
		n.Content = &c
	}
	n.UpdatedAt = updatedAt
	return r.withAuthor(n), nil
}

func (r *NoteRepository) Delete(_ context.Context, tenantID, noteID string) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	n, ok := r.db.notes[noteID]
	if !ok || n.TenantID != tenantID {
		return note.ErrNotFound
	}
	delete(r.db.notes, noteID)
	return nil
}

// caller holds r.db.mu
func (r *NoteRepository) withAuthor(n *note.Note) *note.Note {
	cp := copyNote(n)
	cp.Author = note.Author{ID: n.AuthorID}
	if u, ok := r.db.users[n.AuthorID]; ok {
		cp.Author.Email = u.Email
	}
	return cp
}
