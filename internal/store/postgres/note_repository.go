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

package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
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

const noteSelect = `
	SELECT n.id, n.title, n.content, n.tenant_id, n.author_id, n.created_at, n.updated_at,
		u.id, u.email
	FROM notes n
	JOIN users u ON u.id = n.author_id`

// List returns the tenant's notes, newest first
func (r *NoteRepository) List(ctx context.Context, tenantID string) ([]*note.Note, error) {
	rows, err := r.db.pool.Query(ctx, noteSelect+`
		WHERE n.tenant_id = $1
		ORDER BY n.created_at DESC, n.id DESC
	`, tenantID)
	if err != nil {
		return nil, fmt.Errorf("failed to list notes: %w", err)
	}
	defer rows.Close()

	notes := make([]*note.Note, 0)
	for rows.Next() {
		n, err := scanNote(rows)
		if err != nil {
			return nil, err
		}
		notes = append(notes, n)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate notes: %w", err)
	}
	return notes, nil
}

// Get retrieves a note of the tenant
func (r *NoteRepository) Get(ctx context.Context, tenantID, noteID string) (*note.Note, error) {
	row := r.db.pool.QueryRow(ctx, noteSelect+`
		WHERE n.id = $1 AND n.tenant_id = $2
	`, noteID, tenantID)
	return scanNote(row)
}

// CreateWithinQuota locks the tenant row so the count and insert are
// serialized with other creates for the same tenant.
func (r *NoteRepository) CreateWithinQuota(ctx context.Context, n *note.Note, checker quota.Checker) error {
	return r.db.WithTx(ctx, func(tx pgx.Tx) error {
		var plan string
		err := tx.QueryRow(ctx, `SELECT plan FROM tenants WHERE id = $1 FOR UPDATE`, n.TenantID).Scan(&plan)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return tenant.ErrTenantNotFound
			}
			return fmt.Errorf("failed to lock tenant: %w", err)
		}

		var count int
		if err := tx.QueryRow(ctx, `SELECT COUNT(*) FROM notes WHERE tenant_id = $1`, n.TenantID).Scan(&count); err != nil {
			return fmt.Errorf("failed to count notes: %w", err)
		}
		if err := checker.Check(tenant.Plan(plan), count); err != nil {
			return err
		}

		_, err = tx.Exec(ctx, `
			INSERT INTO notes (id, title, content, tenant_id, author_id, created_at, updated_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7)
		`, n.ID, n.Title, n.Content, n.TenantID, n.AuthorID, n.CreatedAt, n.UpdatedAt)
		if err != nil {
			return fmt.Errorf("failed to insert note: %w", err)
		}

		n.Author.ID = n.AuthorID
		if err := tx.QueryRow(ctx, `SELECT email FROM users WHERE id = $1`, n.AuthorID).Scan(&n.Author.Email); err != nil {
			return fmt.Errorf("failed to load author: %w", err)
		}
		return nil
	})
}

// Update applies the non-nil fields of patch
func (r *NoteRepository) Update(ctx context.Context, tenantID, noteID string, patch note.Patch, updatedAt time.Time) (*note.Note, error) {
	row := r.db.pool.QueryRow(ctx, `
		WITH updated AS (
			UPDATE notes SET
				title = COALESCE($3, title),
				content = COALESCE($4, content),
				updated_at = $5
			WHERE id = $1 AND tenant_id = $2
			RETURNING *
		)
		SELECT n.id, n.title, n.content, n.tenant_id, n.author_id, n.created_at, n.updated_at,
			u.id, u.email
		FROM updated n
		JOIN users u ON u.id = n.author_id
	`, noteID, tenantID, patch.Title, patch.Content, updatedAt)
	return scanNote(row)
}

// Delete removes a note of the tenant
func (r *NoteRepository) Delete(ctx context.Context, tenantID, noteID string) error {
	tag, err := r.db.pool.Exec(ctx, `DELETE FROM notes WHERE id = $1 AND tenant_id = $2`, noteID, tenantID)
	if err != nil {
		return fmt.Errorf("failed to delete note: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return note.ErrNotFound
	}
	return nil
}

func scanNote(row pgx.Row) (*note.Note, error) {
	var n note.Note
	err := row.Scan(
		&n.ID, &n.Title, &n.Content, &n.TenantID, &n.AuthorID, &n.CreatedAt, &n.UpdatedAt,
		&n.Author.ID, &n.Author.Email,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, note.ErrNotFound
		}
		return nil, fmt.Errorf("failed to scan note: %w", err)
	}
	return &n, nil
}
