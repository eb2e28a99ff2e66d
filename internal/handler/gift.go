package handler

import (
	"log/slog"
	"net/http"

	"github.com/sakif/giftwish/internal/auth"
	"github.com/sakif/giftwish/internal/model"
	"github.com/sakif/giftwish/internal/service"
)

// GiftHandler serves wishlists and the claim endpoints.
type GiftHandler struct {
	giftService *service.GiftService
	logger      *slog.Logger
}

func NewGiftHandler(giftService *service.GiftService, logger *slog.Logger) *GiftHandler {
	return &GiftHandler{giftService: giftService, logger: logger}
}

type giftRequest struct {
	GiftName   string         `json:"giftName"`
	GiftURL    string         `json:"giftUrl"`
	PriceRange string         `json:"priceRange"`
	Priority   model.Priority `json:"priority"`
	Notes      string         `json:"notes"`
}

// HandleCreate adds a gift to a birthday's wishlist. Owner only.
//
// HTTP: POST /api/birthdays/{id}/gifts
func (h *GiftHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	userID, _ := auth.UserIDFromContext(r.Context())

	var req giftRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}

	gift, err := h.giftService.Create(r.Context(), userID, r.PathValue("id"),
		req.GiftName, req.GiftURL, req.PriceRange, req.Priority, req.Notes)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, gift)
}

// HandleList returns a birthday's wishlist. Claim details are redacted
// for the owner inside the service.
//
// HTTP: GET /api/birthdays/{id}/gifts
func (h *GiftHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	userID, _ := auth.UserIDFromContext(r.Context())

	gifts, err := h.giftService.List(r.Context(), userID, r.PathValue("id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, gifts)
}

// HandleClaim reserves a gift for the caller.
//
// HTTP: POST /api/gifts/{id}/claim
func (h *GiftHandler) HandleClaim(w http.ResponseWriter, r *http.Request) {
	userID, _ := auth.UserIDFromContext(r.Context())

	gift, err := h.giftService.Claim(r.Context(), userID, r.PathValue("id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, gift)
}

// HandleUnclaim releases the caller's claim.
//
// HTTP: POST /api/gifts/{id}/unclaim
func (h *GiftHandler) HandleUnclaim(w http.ResponseWriter, r *http.Request) {
	userID, _ := auth.UserIDFromContext(r.Context())

	gift, err := h.giftService.Unclaim(r.Context(), userID, r.PathValue("id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, gift)
}

type purchasedRequest struct {
	IsPurchased bool `json:"isPurchased"`
}

// HandleSetPurchased flips the purchased flag. Owner only.
//
// HTTP: PUT /api/gifts/{id}/purchased
func (h *GiftHandler) HandleSetPurchased(w http.ResponseWriter, r *http.Request) {
	userID, _ := auth.UserIDFromContext(r.Context())

	var req purchasedRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}

	if err := h.giftService.SetPurchased(r.Context(), userID, r.PathValue("id"), req.IsPurchased); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// HandleDelete removes a gift. Owner only.
//
// HTTP: DELETE /api/gifts/{id}
func (h *GiftHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	userID, _ := auth.UserIDFromContext(r.Context())

	if err := h.giftService.Delete(r.Context(), userID, r.PathValue("id")); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
