package handler

import (
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/sakif/giftwish/internal/apperror"
	"github.com/sakif/giftwish/internal/auth"
	"github.com/sakif/giftwish/internal/service"
)

// BirthdayHandler serves birthday CRUD and the upcoming/today views.
type BirthdayHandler struct {
	birthdayService *service.BirthdayService
	logger          *slog.Logger
}

func NewBirthdayHandler(birthdayService *service.BirthdayService, logger *slog.Logger) *BirthdayHandler {
	return &BirthdayHandler{birthdayService: birthdayService, logger: logger}
}

type birthdayRequest struct {
	PersonName   string `json:"personName"`
	BirthDate    string `json:"birthDate"` // "2006-01-02"
	Relationship string `json:"relationship"`
	Notes        string `json:"notes"`
}

func (req *birthdayRequest) parseDate() (time.Time, error) {
	if req.BirthDate == "" {
		return time.Time{}, nil // let the service report the missing field
	}
	t, err := time.Parse("2006-01-02", req.BirthDate)
	if err != nil {
		return time.Time{}, apperror.ValidationFailed("birthDate", "birth date must be YYYY-MM-DD")
	}
	return t, nil
}

// HandleCreate records a birthday.
//
// HTTP: POST /api/birthdays
func (h *BirthdayHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	userID, _ := auth.UserIDFromContext(r.Context())

	var req birthdayRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}
	birthDate, err := req.parseDate()
	if err != nil {
		writeError(w, err)
		return
	}

	birthday, err := h.birthdayService.Create(r.Context(), userID, req.PersonName, birthDate, req.Relationship, req.Notes)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, birthday)
}

// HandleList returns all birthdays the caller tracks.
//
// HTTP: GET /api/birthdays
func (h *BirthdayHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	userID, _ := auth.UserIDFromContext(r.Context())

	birthdays, err := h.birthdayService.ListMine(r.Context(), userID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, birthdays)
}

// HandleGet returns one birthday (own or a friend's).
//
// HTTP: GET /api/birthdays/{id}
func (h *BirthdayHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	userID, _ := auth.UserIDFromContext(r.Context())

	birthday, err := h.birthdayService.Get(r.Context(), userID, r.PathValue("id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, birthday)
}

// HandleUpdate edits a birthday. Owner only.
//
// HTTP: PUT /api/birthdays/{id}
func (h *BirthdayHandler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	userID, _ := auth.UserIDFromContext(r.Context())

	var req birthdayRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}
	birthDate, err := req.parseDate()
	if err != nil {
		writeError(w, err)
		return
	}

	birthday, err := h.birthdayService.Update(r.Context(), userID, r.PathValue("id"), req.PersonName, birthDate, req.Relationship, req.Notes)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, birthday)
}

// HandleDelete removes a birthday. Owner only.
//
// HTTP: DELETE /api/birthdays/{id}
func (h *BirthdayHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	userID, _ := auth.UserIDFromContext(r.Context())

	if err := h.birthdayService.Delete(r.Context(), userID, r.PathValue("id")); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// upcomingEntry is the JSON shape for one computed occurrence.
type upcomingEntry struct {
	BirthdayID string `json:"birthdayId"`
	PersonName string `json:"personName"`
	Next       string `json:"next"` // "2006-01-02"
	Kind       string `json:"kind"` // today | tomorrow | upcoming
	AgeTurning int    `json:"ageTurning"`
}

// HandleUpcoming lists birthdays in the coming window (default 30 days).
//
// HTTP: GET /api/birthdays/upcoming?window=30
func (h *BirthdayHandler) HandleUpcoming(w http.ResponseWriter, r *http.Request) {
	userID, _ := auth.UserIDFromContext(r.Context())

	window := 0
	if raw := r.URL.Query().Get("window"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			writeError(w, apperror.ValidationFailed("window", "window must be a number of days"))
			return
		}
		window = n
	}

	entries, err := h.birthdayService.Upcoming(r.Context(), userID, window)
	if err != nil {
		writeError(w, err)
		return
	}

	out := make([]upcomingEntry, 0, len(entries))
	for _, e := range entries {
		out = append(out, upcomingEntry{
			BirthdayID: e.BirthdayID,
			PersonName: e.PersonName,
			Next:       e.Next.Format("2006-01-02"),
			Kind:       e.Kind.String(),
			AgeTurning: e.AgeTurning,
		})
	}
	writeJSON(w, http.StatusOK, out)
}

// HandleToday lists just today's birthdays.
//
// HTTP: GET /api/birthdays/today
func (h *BirthdayHandler) HandleToday(w http.ResponseWriter, r *http.Request) {
	userID, _ := auth.UserIDFromContext(r.Context())

	entries, err := h.birthdayService.Today(r.Context(), userID)
	if err != nil {
		writeError(w, err)
		return
	}

	out := make([]upcomingEntry, 0, len(entries))
	for _, e := range entries {
		out = append(out, upcomingEntry{
			BirthdayID: e.BirthdayID,
			PersonName: e.PersonName,
			Next:       e.Next.Format("2006-01-02"),
			Kind:       e.Kind.String(),
			AgeTurning: e.AgeTurning,
		})
	}
	writeJSON(w, http.StatusOK, out)
}
