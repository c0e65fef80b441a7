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
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/opentrusty/tenantnotes/internal/note"
)

// NoteResponse is the wire form of a note
type NoteResponse struct {
	ID        string         `json:"id"`
	Title     string         `json:"title"`
	Content   *string        `json:"content"`
	TenantID  string         `json:"tenantId"`
	AuthorID  string         `json:"authorId"`
	CreatedAt time.Time      `json:"createdAt"`
	UpdatedAt time.Time      `json:"updatedAt"`
	Author    AuthorResponse `json:"author"`
}

// AuthorResponse is the public view of a note's author
type AuthorResponse struct {
	ID    string `json:"id"`
	Email string `json:"email"`
}

func toNoteResponse(n *note.Note) NoteResponse {
	return NoteResponse{
		ID:        n.ID,
		Title:     n.Title,
		Content:   n.Content,
		TenantID:  n.TenantID,
		AuthorID:  n.AuthorID,
		CreatedAt: n.CreatedAt.UTC(),
		UpdatedAt: n.UpdatedAt.UTC(),
		Author:    AuthorResponse{ID: n.Author.ID, Email: n.Author.Email},
	}
}

// CreateNoteRequest represents a new note
type CreateNoteRequest struct {
	Title   string  `json:"title" example:"Project Planning"`
	Content *string `json:"content" example:"Q1 objectives"`
}

// UpdateNoteRequest carries the fields to change. Omitted fields are kept.
type UpdateNoteRequest struct {
	Title   *string `json:"title"`
	Content *string `json:"content"`
}

// ListNotes returns the caller's tenant notes
// @Summary List Notes
// @Description List the notes of the caller's tenant, newest first
// @Tags Notes
// @Produce json
// @Security BearerAuth
// @Success 200 {object} map[string][]NoteResponse
// @Failure 401 {object} map[string]string
// @Router /notes [get]
func (h *Handler) ListNotes(w http.ResponseWriter, r *http.Request) {
	ident, _ := IdentityFrom(r.Context())

	notes, err := h.noteService.List(r.Context(), ident)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	out := make([]NoteResponse, 0, len(notes))
	for _, n := range notes {
		out = append(out, toNoteResponse(n))
	}
	respondJSON(w, http.StatusOK, map[string]any{"notes": out})
}

// CreateNote stores a note in the caller's tenant
// @Summary Create Note
// @Description Create a note. Free tenants are limited in the number of notes.
// @Tags Notes
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body CreateNoteRequest true "Note"
// @Success 201 {object} map[string]NoteResponse
// @Failure 400 {object} map[string]string
// @Failure 403 {object} map[string]string
// @Router /notes [post]
func (h *Handler) CreateNote(w http.ResponseWriter, r *http.Request) {
	ident, _ := IdentityFrom(r.Context())

	var req CreateNoteRequest
	if err := decodeJSON(w, r, &req); err != nil {
		respondError(w, http.StatusBadRequest, msgInvalidBody)
		return
	}

	n, err := h.noteService.Create(r.Context(), ident, note.CreateInput{
		Title:   req.Title,
		Content: req.Content,
	})
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	respondJSON(w, http.StatusCreated, map[string]any{"note": toNoteResponse(n)})
}

// GetNote returns one note of the caller's tenant
// @Summary Get Note
// @Tags Notes
// @Produce json
// @Security BearerAuth
// @Param id path string true "Note ID"
// @Success 200 {object} map[string]NoteResponse
// @Failure 404 {object} map[string]string
// @Router /notes/{id} [get]
func (h *Handler) GetNote(w http.ResponseWriter, r *http.Request) {
	ident, _ := IdentityFrom(r.Context())

	n, err := h.noteService.Get(r.Context(), ident, chi.URLParam(r, "id"))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]any{"note": toNoteResponse(n)})
}

// UpdateNote changes the supplied fields of a note
// @Summary Update Note
// @Tags Notes
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Note ID"
// @Param request body UpdateNoteRequest true "Fields to change"
// @Success 200 {object} map[string]NoteResponse
// @Failure 400 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Router /notes/{id} [put]
func (h *Handler) UpdateNote(w http.ResponseWriter, r *http.Request) {
	ident, _ := IdentityFrom(r.Context())

	var req UpdateNoteRequest
	if err := decodeJSON(w, r, &req); err != nil {
		respondError(w, http.StatusBadRequest, msgInvalidBody)
		return
	}

	n, err := h.noteService.Update(r.Context(), ident, chi.URLParam(r, "id"), note.Patch{
		Title:   req.Title,
		Content: req.Content,
	})
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]any{"note": toNoteResponse(n)})
}

// DeleteNote removes a note of the caller's tenant
// @Summary Delete Note
// @Tags Notes
// @Produce json
// @Security BearerAuth
// @Param id path string true "Note ID"
// @Success 200 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Router /notes/{id} [delete]
func (h *Handler) DeleteNote(w http.ResponseWriter, r *http.Request) {
	ident, _ := IdentityFrom(r.Context())

	if err := h.noteService.Delete(r.Context(), ident, chi.URLParam(r, "id")); err != nil {
		writeServiceError(w, r, err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]string{"message": msgNoteDeleted})
}
