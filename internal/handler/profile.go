package handler

import (
	"log/slog"
	"net/http"

	"github.com/sakif/giftwish/internal/auth"
	"github.com/sakif/giftwish/internal/service"
)

// ProfileHandler serves the caller's own profile and user search.
type ProfileHandler struct {
	authService   *service.AuthService
	friendService *service.FriendService
	logger        *slog.Logger
}

func NewProfileHandler(authService *service.AuthService, friendService *service.FriendService, logger *slog.Logger) *ProfileHandler {
	return &ProfileHandler{
		authService:   authService,
		friendService: friendService,
		logger:        logger,
	}
}

// HandleGet returns the caller's profile.
//
// HTTP: GET /api/profile
func (h *ProfileHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	userID, _ := auth.UserIDFromContext(r.Context())

	user, err := h.authService.GetUserByID(r.Context(), userID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, user)
}

type updateProfileRequest struct {
	DisplayName string `json:"displayName"`
	AvatarURL   string `json:"avatarUrl"`
	Bio         string `json:"bio"`
}

// HandleUpdate updates the caller's profile.
//
// HTTP: PUT /api/profile
func (h *ProfileHandler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	userID, _ := auth.UserIDFromContext(r.Context())

	var req updateProfileRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}

	user, err := h.authService.UpdateProfile(r.Context(), userID, req.DisplayName, req.AvatarURL, req.Bio)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, user)
}

// HandleSearch finds users by email fragment, for adding friends.
//
// HTTP: GET /api/users/search?email=frag
func (h *ProfileHandler) HandleSearch(w http.ResponseWriter, r *http.Request) {
	userID, _ := auth.UserIDFromContext(r.Context())

	users, err := h.friendService.Search(r.Context(), userID, r.URL.Query().Get("email"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, users)
}
