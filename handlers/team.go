package handlers

import (
	"context"
	"errors"
	"net/http"

	"taskhub/config"
	"taskhub/database"
	"taskhub/models"
	"taskhub/response"
	"taskhub/validation"

	"github.com/go-chi/chi/v5"
	"golang.org/x/sync/errgroup"
)

const (
	msgMemberNotFound   = "Team member not found"
	msgMemberEmailTaken = "Team member with this email already exists"
)

type TeamHandler struct {
	config *config.Config
	store  database.Store
}

func NewTeamHandler(cfg *config.Config, store database.Store) *TeamHandler {
	return &TeamHandler{
		config: cfg,
		store:  store,
	}
}

type teamListData struct {
	Page         int                 `json:"page"`
	Limit        int                 `json:"limit"`
	TotalMembers int64               `json:"totalMembers"`
	TotalPages   int64               `json:"totalPages"`
	Members      []models.TeamMember `json:"members"`
}

func (h *TeamHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req teamRequest
	if err := validation.DecodeJSON(r.Body, &req); err != nil {
		writeError(w, r, err)
		return
	}

	email := models.NormalizeEmail(req.Email)
	if _, err := h.store.TeamMemberByEmail(r.Context(), email); err == nil {
		writeError(w, r, badRequest(msgMemberEmailTaken))
		return
	} else if !errors.Is(err, database.ErrNotFound) {
		writeError(w, r, err)
		return
	}

	member := models.TeamMember{
		Name:        req.Name,
		Email:       email,
		Designation: req.Designation,
	}
	if err := h.store.CreateTeamMember(r.Context(), &member); err != nil {
		writeError(w, r, mapStoreError(err, "", msgMemberEmailTaken))
		return
	}

	response.Created(w, "Team member created successfully", member)
}

func (h *TeamHandler) List(w http.ResponseWriter, r *http.Request) {
	params := listParams(r)
	members, total, err := h.store.ListTeamMembers(r.Context(), params)
	if err != nil {
		writeError(w, r, err)
		return
	}
	if members == nil {
		members = []models.TeamMember{}
	}

	response.OK(w, "", teamListData{
		Page:         params.Page,
		Limit:        params.Limit,
		TotalMembers: total,
		TotalPages:   params.TotalPages(total),
		Members:      members,
	})
}

func (h *TeamHandler) Get(w http.ResponseWriter, r *http.Request) {
	member, err := h.store.TeamMemberByID(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, r, mapStoreError(err, msgMemberNotFound, ""))
		return
	}
	response.OK(w, "", member)
}

func (h *TeamHandler) Update(w http.ResponseWriter, r *http.Request) {
	var req teamUpdateRequest
	if err := validation.DecodeJSON(r.Body, &req); err != nil {
		writeError(w, r, err)
		return
	}

	id := chi.URLParam(r, "id")
	if _, err := h.store.TeamMemberByID(r.Context(), id); err != nil {
		writeError(w, r, mapStoreError(err, msgMemberNotFound, ""))
		return
	}

	update := models.TeamMemberUpdate{Name: req.Name, Designation: req.Designation}
	if req.Email != nil {
		email := models.NormalizeEmail(*req.Email)
		existing, err := h.store.TeamMemberByEmail(r.Context(), email)
		if err == nil && existing.ID != id {
			writeError(w, r, badRequest("Email already exists with another team member"))
			return
		}
		if err != nil && !errors.Is(err, database.ErrNotFound) {
			writeError(w, r, err)
			return
		}
		update.Email = &email
	}

	member, err := h.store.UpdateTeamMember(r.Context(), id, update)
	if err != nil {
		writeError(w, r, mapStoreError(err, msgMemberNotFound, "Email already exists with another team member"))
		return
	}

	response.OK(w, "Team member updated successfully", member)
}

func (h *TeamHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.store.DeleteTeamMember(r.Context(), chi.URLParam(r, "id")); err != nil {
		writeError(w, r, mapStoreError(err, msgMemberNotFound, ""))
		return
	}
	response.OK(w, "Team member deleted successfully", nil)
}

func (h *TeamHandler) Summary(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if _, err := h.store.TeamMemberByID(r.Context(), id); err != nil {
		writeError(w, r, mapStoreError(err, msgMemberNotFound, ""))
		return
	}

	summary, err := memberSummary(r.Context(), h.store, id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	response.OK(w, "", summary)
}

// memberSummary runs the project count and the task status breakdown
// concurrently. Either failure fails the whole summary.
func memberSummary(ctx context.Context, store database.Store, memberID string) (models.MemberSummary, error) {
	var (
		projects int64
		counts   map[models.TaskStatus]int64
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		projects, err = store.CountProjectsWithMember(gctx, memberID)
		return err
	})
	g.Go(func() error {
		var err error
		counts, err = store.CountTasksByStatus(gctx, memberID)
		return err
	})
	if err := g.Wait(); err != nil {
		return models.MemberSummary{}, err
	}

	return models.NewMemberSummary(memberID, projects, counts), nil
}
