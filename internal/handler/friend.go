package handler

import (
	"log/slog"
	"net/http"

	"github.com/sakif/giftwish/internal/auth"
	"github.com/sakif/giftwish/internal/service"
)

// FriendHandler serves the friendship lifecycle endpoints.
type FriendHandler struct {
	friendService *service.FriendService
	logger        *slog.Logger
}

func NewFriendHandler(friendService *service.FriendService, logger *slog.Logger) *FriendHandler {
	return &FriendHandler{friendService: friendService, logger: logger}
}

// HandleListFriends lists the caller's accepted friendships.
//
// HTTP: GET /api/friends
func (h *FriendHandler) HandleListFriends(w http.ResponseWriter, r *http.Request) {
	userID, _ := auth.UserIDFromContext(r.Context())

	friends, err := h.friendService.ListFriends(r.Context(), userID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, friends)
}

// HandleListRequests lists pending requests addressed to the caller.
//
// HTTP: GET /api/friends/requests
func (h *FriendHandler) HandleListRequests(w http.ResponseWriter, r *http.Request) {
	userID, _ := auth.UserIDFromContext(r.Context())

	requests, err := h.friendService.ListRequests(r.Context(), userID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, requests)
}

type friendRequestBody struct {
	UserID string `json:"userId"`
}

// HandleRequest sends a friend request.
//
// HTTP: POST /api/friends/requests
func (h *FriendHandler) HandleRequest(w http.ResponseWriter, r *http.Request) {
	userID, _ := auth.UserIDFromContext(r.Context())

	var req friendRequestBody
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}

	friendship, err := h.friendService.Request(r.Context(), userID, req.UserID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, friendship)
}

// HandleAccept accepts a pending request. Recipient only.
//
// HTTP: POST /api/friends/requests/{id}/accept
func (h *FriendHandler) HandleAccept(w http.ResponseWriter, r *http.Request) {
	userID, _ := auth.UserIDFromContext(r.Context())

	friendship, err := h.friendService.Accept(r.Context(), userID, r.PathValue("id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, friendship)
}

// HandleRemove declines, withdraws, or unfriends, depending on who
// calls it and the row's state.
//
// HTTP: DELETE /api/friends/requests/{id}
func (h *FriendHandler) HandleRemove(w http.ResponseWriter, r *http.Request) {
	userID, _ := auth.UserIDFromContext(r.Context())

	if err := h.friendService.Remove(r.Context(), userID, r.PathValue("id")); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// HandleBlock blocks another user.
//
// HTTP: POST /api/friends/{userId}/block
func (h *FriendHandler) HandleBlock(w http.ResponseWriter, r *http.Request) {
	userID, _ := auth.UserIDFromContext(r.Context())

	if err := h.friendService.Block(r.Context(), userID, r.PathValue("userId")); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
