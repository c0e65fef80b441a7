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
	"time"
	"unicode/utf8"

	"github.com/opentrusty/tenantnotes/internal/quota"
)

// MaxTitleLength is the longest accepted title, in characters.
const MaxTitleLength = 200

// Domain errors
var (
	ErrNotFound      = errors.New("note not found")
	ErrForbidden     = errors.New("not allowed to access notes")
	ErrTitleRequired = errors.New("title is required")
	ErrTitleTooLong  = errors.New("title is too long")
)

// IsValidation reports whether err is an input validation failure.
func IsValidation(err error) bool {
	return errors.Is(err, ErrTitleRequired) || errors.Is(err, ErrTitleTooLong)
}

// Author is the public view of a note's creator.
type Author struct {
	ID    string
	Email string
}

// Note is a text note owned by exactly one tenant and one author. TenantID
// and AuthorID never change after creation.
type Note struct {
	ID        string
	Title     string
	Content   *string
	TenantID  string
	AuthorID  string
	Author    Author
	CreatedAt time.Time
	UpdatedAt time.Time
}

// CreateInput holds the fields of a new note.
type CreateInput struct {
	Title   string
	Content *string
}

// Patch holds the fields to change on update. Nil fields keep their value.
type Patch struct {
	Title   *string
	Content *string
}

func validateTitle(title string) error {
	if title == "" {
		return ErrTitleRequired
	}
	if utf8.RuneCountInString(title) > MaxTitleLength {
		return ErrTitleTooLong
	}
	return nil
}

// Repository defines tenant-scoped note persistence. Every method filters by
// tenantID; a note of another tenant is reported as ErrNotFound.
type Repository interface {
	// List returns the tenant's notes, newest first, with authors.
	List(ctx context.Context, tenantID string) ([]*Note, error)

	// Get returns ErrNotFound unless the note exists in tenantID.
	Get(ctx context.Context, tenantID, noteID string) (*Note, error)

	// CreateWithinQuota inserts n after checker approves the tenant's plan and
	// current note count. The count and insert are atomic with respect to other
	// creates for the same tenant. It returns tenant.ErrTenantNotFound when
	// n.TenantID does not exist and the checker's error when denied.
	CreateWithinQuota(ctx context.Context, n *Note, checker quota.Checker) error

	// Update applies patch to the note and sets its updated time.
	Update(ctx context.Context, tenantID, noteID string, patch Patch, updatedAt time.Time) (*Note, error)

	// Delete removes the note, returning ErrNotFound if nothing matched.
	Delete(ctx context.Context, tenantID, noteID string) error
}
