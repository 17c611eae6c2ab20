package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/empleo-corredor/apiserver/internal/services"
	"github.com/empleo-corredor/apiserver/internal/store"
	"github.com/go-chi/chi/v5"
)

// ApplicationHandler provides application endpoints.
type ApplicationHandler struct {
	applications *services.ApplicationService
}

// NewApplicationHandler constructs an ApplicationHandler with the provided service.
func NewApplicationHandler(applications *services.ApplicationService) *ApplicationHandler {
	return &ApplicationHandler{applications: applications}
}

// ApplicationRouter registers application routes on the given router.
func ApplicationRouter(r chi.Router, applications *services.ApplicationService) {
	handler := NewApplicationHandler(applications)

	r.Post("/", handler.SubmitApplication)
	r.Get("/postulante/{applicantID}", handler.ListByApplicant)
	r.Get("/vacante/{vacancyID}", handler.ListByVacancy)
	r.Put("/{applicationID}", handler.SetStatus)
}

type SubmitApplicationRequest struct {
	VacancyID   int    `json:"vacancy_id"`
	ApplicantID int    `json:"applicant_id"`
	Message     string `json:"message"`
}

func (h *ApplicationHandler) SubmitApplication(w http.ResponseWriter, r *http.Request) {
	var req SubmitApplicationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request")
		return
	}
	if req.VacancyID < 1 || req.ApplicantID < 1 {
		writeError(w, http.StatusBadRequest, "missing required fields")
		return
	}

	application, err := h.applications.Submit(r.Context(), req.VacancyID, req.ApplicantID, req.Message)
	if err != nil {
		switch {
		case errors.Is(err, store.ErrNotFound):
			writeError(w, http.StatusNotFound, "vacancy not found")
		case errors.Is(err, services.ErrVacancyClosed):
			writeError(w, http.StatusBadRequest, "this vacancy is no longer active")
		case errors.Is(err, store.ErrDuplicateApplication):
			writeError(w, http.StatusConflict, "you have already applied to this vacancy")
		default:
			writeInternal(w, "failed to submit application", err)
		}
		return
	}

	writeData(w, http.StatusCreated, "application submitted successfully", application)
}

func (h *ApplicationHandler) ListByApplicant(w http.ResponseWriter, r *http.Request) {
	applicantID, err := parseIDParam(r, "applicantID")
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	applications, err := h.applications.ListByApplicant(r.Context(), applicantID)
	if err != nil {
		writeInternal(w, "failed to list applications", err)
		return
	}
	writeList(w, applications, len(applications))
}

func (h *ApplicationHandler) ListByVacancy(w http.ResponseWriter, r *http.Request) {
	vacancyID, err := parseIDParam(r, "vacancyID")
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	applications, err := h.applications.ListByVacancy(r.Context(), vacancyID)
	if err != nil {
		writeInternal(w, "failed to list applications", err)
		return
	}
	writeList(w, applications, len(applications))
}

type SetStatusRequest struct {
	Status string `json:"status"`
}

// SetStatus overwrites an application's review status.
func (h *ApplicationHandler) SetStatus(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r, "applicationID")
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	var req SetStatusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request")
		return
	}

	if err := h.applications.SetStatus(r.Context(), id, req.Status); err != nil {
		switch {
		case errors.Is(err, services.ErrInvalidInput):
			writeError(w, http.StatusBadRequest, "status must be pending, accepted or rejected")
		case errors.Is(err, store.ErrNotFound):
			writeError(w, http.StatusNotFound, "application not found")
		default:
			writeInternal(w, "failed to update application", err)
		}
		return
	}

	writeMessage(w, http.StatusOK, "application status updated")
}
