package handlers

import (
	"errors"
	"io"
	"net/http"

	"github.com/fairwaylabs/clubtrack/middleware"
	"github.com/fairwaylabs/clubtrack/services"
)

// maxScorecardImageBytes caps uploaded scorecard photos at 10MB.
const maxScorecardImageBytes = 10 << 20

type ScorecardHandler struct {
	scorecardService services.ScorecardService
}

func NewScorecardHandler(scorecardService services.ScorecardService) *ScorecardHandler {
	return &ScorecardHandler{scorecardService: scorecardService}
}

// Extract accepts a multipart form with an "image" file field and responds
// with the structured scorecard data.
func (h *ScorecardHandler) Extract(w http.ResponseWriter, r *http.Request) {
	userID, err := middleware.GetUserIDFromContext(r.Context())
	if err != nil {
		unauthorizedResponse(w, r, "authentication required")
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, maxScorecardImageBytes)
	if err := r.ParseMultipartForm(maxScorecardImageBytes); err != nil {
		badRequestResponse(w, r, errors.New("expected a multipart form with an image file"))
		return
	}

	file, header, err := r.FormFile("image")
	if err != nil {
		badRequestResponse(w, r, errors.New("image file is required"))
		return
	}
	defer file.Close()

	image, err := io.ReadAll(file)
	if err != nil {
		serverErrorResponse(w, r, err)
		return
	}

	mimeType := header.Header.Get("Content-Type")
	if mimeType == "" {
		mimeType = "image/jpeg"
	}

	result, err := h.scorecardService.ExtractFromImage(r.Context(), userID, image, mimeType)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, result, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}
