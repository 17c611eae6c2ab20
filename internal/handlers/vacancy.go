package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/empleo-corredor/apiserver/internal/services"
	"github.com/empleo-corredor/apiserver/internal/store"
	"github.com/empleo-corredor/apiserver/types"
	"github.com/go-chi/chi/v5"
)

// VacancyHandler provides vacancy endpoints.
type VacancyHandler struct {
	vacancies *services.VacancyService
}

// NewVacancyHandler constructs a VacancyHandler with the provided service.
func NewVacancyHandler(vacancies *services.VacancyService) *VacancyHandler {
	return &VacancyHandler{vacancies: vacancies}
}

// VacancyRouter registers vacancy routes on the given router.
func VacancyRouter(r chi.Router, vacancies *services.VacancyService) {
	handler := NewVacancyHandler(vacancies)

	r.Post("/", handler.CreateVacancy)
	r.Get("/", handler.ListVacancies)
	r.Get("/empresa/{companyID}", handler.ListCompanyVacancies)
	r.Route("/{vacancyID}", func(r chi.Router) {
		r.Get("/", handler.GetVacancy)
		r.Put("/", handler.UpdateVacancy)
		r.Delete("/", handler.DeleteVacancy)
	})
}

type CreateVacancyRequest struct {
	CompanyID    int    `json:"company_id"`
	Title        string `json:"title"`
	Description  string `json:"description"`
	Location     string `json:"location"`
	Salary       string `json:"salary"`
	ContractType string `json:"contract_type"`
}

func (h *VacancyHandler) CreateVacancy(w http.ResponseWriter, r *http.Request) {
	var req CreateVacancyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request")
		return
	}
	if req.CompanyID < 1 {
		writeError(w, http.StatusBadRequest, "missing required fields")
		return
	}

	vacancy, err := h.vacancies.Create(r.Context(), types.Vacancy{
		CompanyID:    req.CompanyID,
		Title:        req.Title,
		Description:  req.Description,
		Location:     req.Location,
		Salary:       req.Salary,
		ContractType: req.ContractType,
	})
	if err != nil {
		switch {
		case errors.Is(err, services.ErrInvalidInput):
			writeError(w, http.StatusBadRequest, "missing required fields")
		case errors.Is(err, store.ErrNotFound):
			writeError(w, http.StatusNotFound, "company not found")
		default:
			writeInternal(w, "failed to create vacancy", err)
		}
		return
	}

	writeData(w, http.StatusCreated, "vacancy created successfully", vacancy)
}

// ListVacancies returns the public board: active vacancies only.
func (h *VacancyHandler) ListVacancies(w http.ResponseWriter, r *http.Request) {
	listings, err := h.vacancies.List(r.Context(), true)
	if err != nil {
		writeInternal(w, "failed to list vacancies", err)
		return
	}
	writeList(w, listings, len(listings))
}

// ListCompanyVacancies returns all of one company's vacancies, including
// closed ones, with application counts.
func (h *VacancyHandler) ListCompanyVacancies(w http.ResponseWriter, r *http.Request) {
	companyID, err := parseIDParam(r, "companyID")
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	vacancies, err := h.vacancies.ListByCompany(r.Context(), companyID)
	if err != nil {
		writeInternal(w, "failed to list vacancies", err)
		return
	}
	writeList(w, vacancies, len(vacancies))
}

func (h *VacancyHandler) GetVacancy(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r, "vacancyID")
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	detail, err := h.vacancies.Get(r.Context(), id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "vacancy not found")
			return
		}
		writeInternal(w, "failed to load vacancy", err)
		return
	}

	writeData(w, http.StatusOK, "", detail)
}

type UpdateVacancyRequest struct {
	Title        *string `json:"title"`
	Description  *string `json:"description"`
	Location     *string `json:"location"`
	Salary       *string `json:"salary"`
	ContractType *string `json:"contract_type"`
	State        *string `json:"state"`
}

// UpdateVacancy applies a partial update: only supplied fields change.
func (h *VacancyHandler) UpdateVacancy(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r, "vacancyID")
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	var req UpdateVacancyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request")
		return
	}

	err = h.vacancies.Update(r.Context(), id, types.VacancyUpdate{
		Title:        req.Title,
		Description:  req.Description,
		Location:     req.Location,
		Salary:       req.Salary,
		ContractType: req.ContractType,
		State:        req.State,
	})
	if err != nil {
		switch {
		case errors.Is(err, services.ErrInvalidInput):
			writeError(w, http.StatusBadRequest, "no valid fields to update")
		case errors.Is(err, store.ErrNotFound):
			writeError(w, http.StatusNotFound, "vacancy not found")
		default:
			writeInternal(w, "failed to update vacancy", err)
		}
		return
	}

	writeMessage(w, http.StatusOK, "vacancy updated successfully")
}

func (h *VacancyHandler) DeleteVacancy(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r, "vacancyID")
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	if err := h.vacancies.Delete(r.Context(), id); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "vacancy not found")
			return
		}
		writeInternal(w, "failed to delete vacancy", err)
		return
	}

	writeMessage(w, http.StatusOK, "vacancy deleted successfully")
}
