package handlers

import (
	"net/http"
	"strconv"

	"github.com/fairwaylabs/clubtrack/middleware"
	"github.com/fairwaylabs/clubtrack/models"
	"github.com/fairwaylabs/clubtrack/services"
	"github.com/go-chi/chi/v5"
)

type RoundHandler struct {
	roundService services.RoundService
}

func NewRoundHandler(roundService services.RoundService) *RoundHandler {
	return &RoundHandler{roundService: roundService}
}

func (h *RoundHandler) Save(w http.ResponseWriter, r *http.Request) {
	userID, err := middleware.GetUserIDFromContext(r.Context())
	if err != nil {
		unauthorizedResponse(w, r, "authentication required")
		return
	}

	var input services.SaveRoundInput
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	result, err := h.roundService.SaveRound(r.Context(), userID, input)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusCreated, result, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *RoundHandler) List(w http.ResponseWriter, r *http.Request) {
	userID, err := middleware.GetUserIDFromContext(r.Context())
	if err != nil {
		unauthorizedResponse(w, r, "authentication required")
		return
	}

	rounds, err := h.roundService.ListRounds(r.Context(), userID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"rounds": rounds}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *RoundHandler) Get(w http.ResponseWriter, r *http.Request) {
	userID, err := middleware.GetUserIDFromContext(r.Context())
	if err != nil {
		unauthorizedResponse(w, r, "authentication required")
		return
	}
	roundID, err := strconv.Atoi(chi.URLParam(r, "roundID"))
	if err != nil || roundID <= 0 {
		notFoundResponse(w, r)
		return
	}

	round, err := h.roundService.GetRound(r.Context(), roundID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	// Rounds are private to their owner unless the caller is an admin.
	role, _ := middleware.GetUserRoleFromContext(r.Context())
	if round.ProfileID != userID && role != models.RoleAdmin && role != models.RoleSuperAdmin {
		forbiddenResponse(w, r, "operation not allowed for the current user")
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"round": round}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *RoundHandler) Delete(w http.ResponseWriter, r *http.Request) {
	userID, err := middleware.GetUserIDFromContext(r.Context())
	if err != nil {
		unauthorizedResponse(w, r, "authentication required")
		return
	}
	roundID, err := strconv.Atoi(chi.URLParam(r, "roundID"))
	if err != nil || roundID <= 0 {
		notFoundResponse(w, r)
		return
	}

	role, _ := middleware.GetUserRoleFromContext(r.Context())
	if err := h.roundService.DeleteRound(r.Context(), roundID, userID, role); err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
