package handlers

import (
	"net/http"
	"strconv"

	"github.com/fairwaylabs/clubtrack/middleware"
	"github.com/fairwaylabs/clubtrack/services"
	"github.com/go-chi/chi/v5"
)

type SquadHandler struct {
	squadService services.SquadService
}

func NewSquadHandler(squadService services.SquadService) *SquadHandler {
	return &SquadHandler{squadService: squadService}
}

func (h *SquadHandler) Create(w http.ResponseWriter, r *http.Request) {
	userID, err := middleware.GetUserIDFromContext(r.Context())
	if err != nil {
		unauthorizedResponse(w, r, "authentication required")
		return
	}

	var input struct {
		Name string `json:"name"`
	}
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	squad, err := h.squadService.CreateSquad(r.Context(), userID, input.Name)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusCreated, jsonResponse{"squad": squad}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *SquadHandler) List(w http.ResponseWriter, r *http.Request) {
	squads, err := h.squadService.ListSquads(r.Context())
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	if err := writeJSON(w, http.StatusOK, jsonResponse{"squads": squads}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *SquadHandler) Get(w http.ResponseWriter, r *http.Request) {
	squadID, err := strconv.Atoi(chi.URLParam(r, "squadID"))
	if err != nil || squadID <= 0 {
		notFoundResponse(w, r)
		return
	}

	squad, err := h.squadService.GetSquad(r.Context(), squadID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	if err := writeJSON(w, http.StatusOK, jsonResponse{"squad": squad}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *SquadHandler) Delete(w http.ResponseWriter, r *http.Request) {
	userID, err := middleware.GetUserIDFromContext(r.Context())
	if err != nil {
		unauthorizedResponse(w, r, "authentication required")
		return
	}
	squadID, err := strconv.Atoi(chi.URLParam(r, "squadID"))
	if err != nil || squadID <= 0 {
		notFoundResponse(w, r)
		return
	}

	role, _ := middleware.GetUserRoleFromContext(r.Context())
	if err := h.squadService.DeleteSquad(r.Context(), squadID, userID, role); err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *SquadHandler) Join(w http.ResponseWriter, r *http.Request) {
	userID, err := middleware.GetUserIDFromContext(r.Context())
	if err != nil {
		unauthorizedResponse(w, r, "authentication required")
		return
	}
	squadID, err := strconv.Atoi(chi.URLParam(r, "squadID"))
	if err != nil || squadID <= 0 {
		notFoundResponse(w, r)
		return
	}

	if err := h.squadService.JoinSquad(r.Context(), squadID, userID); err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *SquadHandler) Leave(w http.ResponseWriter, r *http.Request) {
	userID, err := middleware.GetUserIDFromContext(r.Context())
	if err != nil {
		unauthorizedResponse(w, r, "authentication required")
		return
	}
	squadID, err := strconv.Atoi(chi.URLParam(r, "squadID"))
	if err != nil || squadID <= 0 {
		notFoundResponse(w, r)
		return
	}

	if err := h.squadService.LeaveSquad(r.Context(), squadID, userID); err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
