package web

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/openlearn/coursegate/domain/entitlement"
	"github.com/openlearn/coursegate/domain/purchase"
)

// BillingRequest carries billing details for an invoice.
type BillingRequest struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	Address string `json:"address"`
}

func (b BillingRequest) toDomain() purchase.BillingInfo {
	return purchase.BillingInfo{
		Name:    b.Name,
		Email:   b.Email,
		Address: b.Address,
	}
}

// PurchaseModuleRequest is the body for POST /v1/purchases/module.
type PurchaseModuleRequest struct {
	UserID   string         `json:"user_id"`
	ModuleID string         `json:"module_id"`
	Billing  BillingRequest `json:"billing"`
}

// PurchaseBundleRequest is the body for POST /v1/purchases/bundle.
type PurchaseBundleRequest struct {
	UserID   string         `json:"user_id"`
	BundleID string         `json:"bundle_id"`
	Billing  BillingRequest `json:"billing"`
}

// PurchaseGiftRequest is the body for POST /v1/purchases/gift.
type PurchaseGiftRequest struct {
	PayerID     string         `json:"payer_id"`
	RecipientID string         `json:"recipient_id"`
	CourseID    string         `json:"course_id"`
	Billing     BillingRequest `json:"billing"`
}

// InvoiceItemResponse represents one invoice line.
type InvoiceItemResponse struct {
	Description string `json:"description"`
	Quantity    int64  `json:"quantity"`
	UnitPrice   int64  `json:"unit_price"`
	Amount      int64  `json:"amount"`
}

// InvoiceResponse represents the immutable invoice snapshot.
type InvoiceResponse struct {
	Number         string                `json:"number"`
	BillingName    string                `json:"billing_name"`
	BillingEmail   string                `json:"billing_email"`
	BillingAddress string                `json:"billing_address,omitempty"`
	Items          []InvoiceItemResponse `json:"items"`
	Total          int64                 `json:"total"`
	Currency       string                `json:"currency"`
	IssuedAt       time.Time             `json:"issued_at"`
}

// PurchaseResponse represents a committed purchase.
type PurchaseResponse struct {
	ID              string          `json:"id"`
	Kind            string          `json:"kind"`
	PayerID         string          `json:"payer_id"`
	CourseID        string          `json:"course_id"`
	Amount          int64           `json:"amount"`
	Currency        string          `json:"currency"`
	Status          string          `json:"status"`
	GiftRecipientID string          `json:"gift_recipient_id,omitempty"`
	Invoice         InvoiceResponse `json:"invoice"`
	CreatedAt       time.Time       `json:"created_at"`
}

// EntitlementResponse represents a ledger grant.
type EntitlementResponse struct {
	ID               string     `json:"id"`
	UserID           string     `json:"user_id"`
	CourseID         string     `json:"course_id"`
	Scope            string     `json:"scope"`
	SourcePurchaseID string     `json:"source_purchase_id,omitempty"`
	GrantedBy        string     `json:"granted_by,omitempty"`
	ExpiresAt        *time.Time `json:"expires_at,omitempty"`
	CreatedAt        time.Time  `json:"created_at"`
}

// PurchaseModule sells a single module to the caller.
func (h *Handler) PurchaseModule(w http.ResponseWriter, r *http.Request) {
	var req PurchaseModuleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", "Invalid JSON body")
		return
	}
	if req.UserID == "" || req.ModuleID == "" {
		writeError(w, http.StatusBadRequest, "invalid_request", "user_id and module_id are required")
		return
	}

	p, e, err := h.purchases.PurchaseModule(r.Context(), req.UserID, req.ModuleID, req.Billing.toDomain())
	if err != nil {
		h.recordPurchaseFailure(err)
		h.writeServiceError(w, err)
		return
	}

	h.recordPurchase(p)
	writeJSON(w, http.StatusCreated, map[string]interface{}{
		"purchase":    purchaseToResponse(p),
		"entitlement": entitlementToResponse(e),
	})
}

// PurchaseBundle upgrades the caller to full bundle access at the prorated
// price.
func (h *Handler) PurchaseBundle(w http.ResponseWriter, r *http.Request) {
	var req PurchaseBundleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", "Invalid JSON body")
		return
	}
	if req.UserID == "" || req.BundleID == "" {
		writeError(w, http.StatusBadRequest, "invalid_request", "user_id and bundle_id are required")
		return
	}

	p, e, err := h.purchases.PurchaseBundle(r.Context(), req.UserID, req.BundleID, req.Billing.toDomain())
	if err != nil {
		h.recordPurchaseFailure(err)
		h.writeServiceError(w, err)
		return
	}

	h.recordPurchase(p)
	writeJSON(w, http.StatusCreated, map[string]interface{}{
		"purchase":    purchaseToResponse(p),
		"entitlement": entitlementToResponse(e),
	})
}

// PurchaseGift sells a course paid by one user for another. The entitlement
// goes to the recipient; the purchase record stays with the payer.
func (h *Handler) PurchaseGift(w http.ResponseWriter, r *http.Request) {
	var req PurchaseGiftRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", "Invalid JSON body")
		return
	}
	if req.PayerID == "" || req.RecipientID == "" || req.CourseID == "" {
		writeError(w, http.StatusBadRequest, "invalid_request", "payer_id, recipient_id and course_id are required")
		return
	}

	p, e, err := h.purchases.PurchaseGift(r.Context(), req.PayerID, req.RecipientID, req.CourseID, req.Billing.toDomain())
	if err != nil {
		h.recordPurchaseFailure(err)
		h.writeServiceError(w, err)
		return
	}

	h.recordPurchase(p)
	writeJSON(w, http.StatusCreated, map[string]interface{}{
		"purchase":    purchaseToResponse(p),
		"entitlement": entitlementToResponse(e),
	})
}

// UserPurchases returns the user's purchase history, newest first.
func (h *Handler) UserPurchases(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "id")
	limit := parseIntQuery(r, "limit", 50)

	purchases, err := h.purchases.ListPurchases(r.Context(), userID, limit)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}

	out := make([]PurchaseResponse, 0, len(purchases))
	for _, p := range purchases {
		out = append(out, purchaseToResponse(p))
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"user_id":   userID,
		"purchases": out,
	})
}

func (h *Handler) recordPurchase(p purchase.Purchase) {
	if h.metrics == nil {
		return
	}
	h.metrics.PurchasesTotal.WithLabelValues(string(p.Kind)).Inc()
	h.metrics.PurchaseAmount.WithLabelValues(string(p.Kind), p.Currency).Add(float64(p.Amount))
}

func (h *Handler) recordPurchaseFailure(err error) {
	if h.metrics == nil {
		return
	}
	h.metrics.PurchaseFailures.WithLabelValues(failureReason(err)).Inc()
}

func purchaseToResponse(p purchase.Purchase) PurchaseResponse {
	items := make([]InvoiceItemResponse, 0, len(p.Invoice.Items))
	for _, item := range p.Invoice.Items {
		items = append(items, InvoiceItemResponse{
			Description: item.Description,
			Quantity:    item.Quantity,
			UnitPrice:   item.UnitPrice,
			Amount:      item.Amount,
		})
	}
	return PurchaseResponse{
		ID:              p.ID,
		Kind:            string(p.Kind),
		PayerID:         p.PayerID,
		CourseID:        p.CourseID,
		Amount:          p.Amount,
		Currency:        p.Currency,
		Status:          string(p.Status),
		GiftRecipientID: p.GiftRecipientID,
		Invoice: InvoiceResponse{
			Number:         p.Invoice.Number,
			BillingName:    p.Invoice.BillingName,
			BillingEmail:   p.Invoice.BillingEmail,
			BillingAddress: p.Invoice.BillingAddress,
			Items:          items,
			Total:          p.Invoice.Total,
			Currency:       p.Invoice.Currency,
			IssuedAt:       p.Invoice.IssuedAt,
		},
		CreatedAt: p.CreatedAt,
	}
}

func entitlementToResponse(e entitlement.Entitlement) EntitlementResponse {
	return EntitlementResponse{
		ID:               e.ID,
		UserID:           e.UserID,
		CourseID:         e.CourseID,
		Scope:            string(e.Scope),
		SourcePurchaseID: e.SourcePurchaseID,
		GrantedBy:        e.GrantedBy,
		ExpiresAt:        e.ExpiresAt,
		CreatedAt:        e.CreatedAt,
	}
}

func parseIntQuery(r *http.Request, name string, defaultVal int) int {
	s := r.URL.Query().Get(name)
	if s == "" {
		return defaultVal
	}
	var v int
	if err := json.Unmarshal([]byte(s), &v); err != nil {
		return defaultVal
	}
	return v
}
