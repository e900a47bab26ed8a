package handlers

import (
	"net/http"
	"strconv"

	"github.com/fairwaylabs/clubtrack/services"
	"github.com/go-chi/chi/v5"
)

type CourseHandler struct {
	courseService services.CourseService
}

func NewCourseHandler(courseService services.CourseService) *CourseHandler {
	return &CourseHandler{courseService: courseService}
}

func (h *CourseHandler) Create(w http.ResponseWriter, r *http.Request) {
	var input services.CreateCourseInput
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	course, err := h.courseService.CreateCourse(r.Context(), input)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusCreated, jsonResponse{"course": course}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *CourseHandler) List(w http.ResponseWriter, r *http.Request) {
	// ?name= does an exact-name lookup instead of a full listing.
	if name := r.URL.Query().Get("name"); name != "" {
		course, err := h.courseService.GetCourseByName(r.Context(), name)
		if err != nil {
			mapServiceErrorToHTTP(w, r, err)
			return
		}
		if err := writeJSON(w, http.StatusOK, jsonResponse{"course": course}, nil); err != nil {
			serverErrorResponse(w, r, err)
		}
		return
	}

	courses, err := h.courseService.ListCourses(r.Context())
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"courses": courses}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *CourseHandler) Get(w http.ResponseWriter, r *http.Request) {
	courseID, err := strconv.Atoi(chi.URLParam(r, "courseID"))
	if err != nil || courseID <= 0 {
		notFoundResponse(w, r)
		return
	}

	course, err := h.courseService.GetCourse(r.Context(), courseID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"course": course}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}
