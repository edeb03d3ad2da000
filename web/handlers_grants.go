package web

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/openlearn/coursegate/domain/entitlement"
)

// CreateGrantRequest is the body for POST /v1/grants.
type CreateGrantRequest struct {
	UserID    string     `json:"user_id"`
	CourseID  string     `json:"course_id"`
	Scope     string     `json:"scope"`
	ExpiresAt *time.Time `json:"expires_at,omitempty"`
	GrantedBy string     `json:"granted_by"`
}

// OfferResponse represents a bundle upgrade offer.
type OfferResponse struct {
	BundleID         string `json:"bundle_id"`
	BundleTitle      string `json:"bundle_title"`
	OwnedModuleCount int    `json:"owned_module_count"`
	RemainingAmount  int64  `json:"remaining_amount"`
	Currency         string `json:"currency"`
}

// CreateGrant creates an administrative grant without a purchase.
func (h *Handler) CreateGrant(w http.ResponseWriter, r *http.Request) {
	var req CreateGrantRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", "Invalid JSON body")
		return
	}
	if req.UserID == "" || req.CourseID == "" {
		writeError(w, http.StatusBadRequest, "invalid_request", "user_id and course_id are required")
		return
	}

	scope := entitlement.Scope(req.Scope)
	if scope != entitlement.ScopeModule && scope != entitlement.ScopeBundle {
		writeError(w, http.StatusBadRequest, "invalid_request", "scope must be 'module' or 'bundle'")
		return
	}

	e, err := h.grants.AdminGrant(r.Context(), req.UserID, req.CourseID, scope, req.ExpiresAt, req.GrantedBy)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, entitlementToResponse(e))
}

// RevokeGrant expires a grant immediately. The row is kept for audit.
func (h *Handler) RevokeGrant(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	if err := h.grants.Revoke(r.Context(), id); err != nil {
		h.writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"status": "revoked"})
}

// UserOffers returns bundle upgrade offers for a user, cheapest first.
func (h *Handler) UserOffers(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "id")

	offers, err := h.offers.UpgradeOffers(r.Context(), userID)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}

	if h.metrics != nil {
		h.metrics.OffersComputed.Inc()
	}

	out := make([]OfferResponse, 0, len(offers))
	for _, o := range offers {
		out = append(out, OfferResponse{
			BundleID:         o.BundleID,
			BundleTitle:      o.BundleTitle,
			OwnedModuleCount: o.OwnedModuleCount,
			RemainingAmount:  o.RemainingAmount,
			Currency:         o.Currency,
		})
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"user_id": userID,
		"offers":  out,
	})
}
