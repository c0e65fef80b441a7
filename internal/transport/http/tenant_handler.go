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

	"github.com/go-chi/chi/v5"
)

// UpgradeTenantRequest names the target plan
type UpgradeTenantRequest struct {
	Plan string `json:"plan" example:"pro"`
}

// UpgradeTenant moves the caller's tenant to the pro plan
// @Summary Upgrade Tenant
// @Description Upgrade the caller's own tenant. Admin only.
// @Tags Tenants
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param slug path string true "Tenant slug"
// @Param request body UpgradeTenantRequest true "Target plan"
// @Success 200 {object} map[string]any
// @Failure 400 {object} map[string]string
// @Failure 403 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Router /tenants/{slug}/upgrade [post]
func (h *Handler) UpgradeTenant(w http.ResponseWriter, r *http.Request) {
	ident, _ := IdentityFrom(r.Context())

	// An unreadable body leaves the plan empty; the role and slug checks
	// still run first and the empty plan is then rejected as invalid.
	var req UpgradeTenantRequest
	_ = decodeJSON(w, r, &req)

	t, err := h.tenantService.Upgrade(r.Context(), ident, chi.URLParam(r, "slug"), req.Plan)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]any{
		"message": msgTenantUpgraded,
		"tenant":  t.Summary(),
	})
}
