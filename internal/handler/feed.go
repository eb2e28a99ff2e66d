package handler

import (
	"log/slog"
	"net/http"

	"github.com/sakif/giftwish/internal/apperror"
	"github.com/sakif/giftwish/internal/auth"
	"github.com/sakif/giftwish/internal/feed"
)

// maxImportSize caps uploaded .vcf files at 5MB.
const maxImportSize = 5 << 20

// FeedHandler serves the iCalendar feed and the vCard import.
type FeedHandler struct {
	feedService *feed.Service
	logger      *slog.Logger
}

func NewFeedHandler(feedService *feed.Service, logger *slog.Logger) *FeedHandler {
	return &FeedHandler{feedService: feedService, logger: logger}
}

// HandleCalendar streams the caller's birthdays as an iCalendar feed.
//
// HTTP: GET /api/calendar.ics
func (h *FeedHandler) HandleCalendar(w http.ResponseWriter, r *http.Request) {
	userID, _ := auth.UserIDFromContext(r.Context())

	data, err := h.feedService.Calendar(r.Context(), userID)
	if err != nil {
		writeError(w, err)
		return
	}

	w.Header().Set("Content-Type", "text/calendar; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="birthdays.ics"`)
	if _, err := w.Write(data); err != nil {
		h.logger.Error("failed to write calendar feed", slog.String("error", err.Error()))
	}
}

// HandleImport accepts a multipart upload of a .vcf file and imports
// every card with a usable birthday.
//
// HTTP: POST /api/birthdays/import (multipart field "file")
func (h *FeedHandler) HandleImport(w http.ResponseWriter, r *http.Request) {
	userID, _ := auth.UserIDFromContext(r.Context())

	r.Body = http.MaxBytesReader(w, r.Body, maxImportSize)
	if err := r.ParseMultipartForm(maxImportSize); err != nil {
		writeError(w, apperror.ValidationFailed("file", "upload must be multipart form data under 5MB"))
		return
	}

	file, _, err := r.FormFile("file")
	if err != nil {
		writeError(w, apperror.ValidationFailed("file", "a .vcf file upload named 'file' is required"))
		return
	}
	defer file.Close()

	result, err := h.feedService.ImportVCards(r.Context(), userID, file)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}
