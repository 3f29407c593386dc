package handlers

import (
	"errors"
	"net/http"

	"taskhub/config"
	"taskhub/database"
	"taskhub/models"
	"taskhub/response"
	"taskhub/validation"

	"github.com/go-chi/chi/v5"
)

const (
	msgProjectNotFound  = "Project not found"
	msgProjectNameTaken = "Project with this name already exists"
)

type ProjectHandler struct {
	config *config.Config
	store  database.Store
}

func NewProjectHandler(cfg *config.Config, store database.Store) *ProjectHandler {
	return &ProjectHandler{
		config: cfg,
		store:  store,
	}
}

type projectListData struct {
	Page          int                  `json:"page"`
	Limit         int                  `json:"limit"`
	TotalProjects int64                `json:"totalProjects"`
	TotalPages    int64                `json:"totalPages"`
	Projects      []models.ProjectView `json:"projects"`
}

// ensureNameFree fails unless no project other than exceptID uses name.
func (h *ProjectHandler) ensureNameFree(r *http.Request, name, exceptID string) error {
	existing, err := h.store.ProjectByName(r.Context(), name)
	if errors.Is(err, database.ErrNotFound) {
		return nil
	}
	if err != nil {
		return err
	}
	if existing.ID != exceptID {
		return badRequest(msgProjectNameTaken)
	}
	return nil
}

func (h *ProjectHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req projectRequest
	if err := validation.DecodeJSON(r.Body, &req); err != nil {
		writeError(w, r, err)
		return
	}

	if err := h.ensureNameFree(r, req.Name, ""); err != nil {
		writeError(w, r, err)
		return
	}
	memberIDs := models.UniqueIDs(req.TeamMember)
	if err := ensureMembersExist(r.Context(), h.store, memberIDs); err != nil {
		writeError(w, r, err)
		return
	}

	project := models.Project{
		Name:          req.Name,
		Description:   req.Description,
		TeamMemberIDs: memberIDs,
	}
	if err := h.store.CreateProject(r.Context(), &project); err != nil {
		writeError(w, r, mapStoreError(err, "", msgProjectNameTaken))
		return
	}

	view, err := projectView(r.Context(), h.store, &project)
	if err != nil {
		writeError(w, r, err)
		return
	}
	response.Created(w, "Project created successfully", view)
}

func (h *ProjectHandler) List(w http.ResponseWriter, r *http.Request) {
	params := listParams(r)
	projects, total, err := h.store.ListProjects(r.Context(), params)
	if err != nil {
		writeError(w, r, err)
		return
	}

	views, err := projectViews(r.Context(), h.store, projects)
	if err != nil {
		writeError(w, r, err)
		return
	}

	response.OK(w, "", projectListData{
		Page:          params.Page,
		Limit:         params.Limit,
		TotalProjects: total,
		TotalPages:    params.TotalPages(total),
		Projects:      views,
	})
}

func (h *ProjectHandler) Get(w http.ResponseWriter, r *http.Request) {
	project, err := h.store.ProjectByID(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, r, mapStoreError(err, msgProjectNotFound, ""))
		return
	}

	view, err := projectView(r.Context(), h.store, project)
	if err != nil {
		writeError(w, r, err)
		return
	}
	response.OK(w, "", view)
}

func (h *ProjectHandler) Update(w http.ResponseWriter, r *http.Request) {
	var req projectUpdateRequest
	if err := validation.DecodeJSON(r.Body, &req); err != nil {
		writeError(w, r, err)
		return
	}

	id := chi.URLParam(r, "id")
	if _, err := h.store.ProjectByID(r.Context(), id); err != nil {
		writeError(w, r, mapStoreError(err, msgProjectNotFound, ""))
		return
	}

	update := models.ProjectUpdate{Name: req.Name, Description: req.Description}
	if req.Name != nil {
		if err := h.ensureNameFree(r, *req.Name, id); err != nil {
			writeError(w, r, err)
			return
		}
	}
	if req.TeamMember != nil {
		update.TeamMemberIDs = models.UniqueIDs(req.TeamMember)
		if err := ensureMembersExist(r.Context(), h.store, update.TeamMemberIDs); err != nil {
			writeError(w, r, err)
			return
		}
	}

	project, err := h.store.UpdateProject(r.Context(), id, update)
	if err != nil {
		writeError(w, r, mapStoreError(err, msgProjectNotFound, msgProjectNameTaken))
		return
	}

	view, err := projectView(r.Context(), h.store, project)
	if err != nil {
		writeError(w, r, err)
		return
	}
	response.OK(w, "Project updated successfully", view)
}

// Delete leaves tasks that reference the project untouched.
func (h *ProjectHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.store.DeleteProject(r.Context(), chi.URLParam(r, "id")); err != nil {
		writeError(w, r, mapStoreError(err, msgProjectNotFound, ""))
		return
	}
	response.OK(w, "Project deleted successfully", nil)
}
