package handlers

import (
	"errors"
	"net/http"

	"taskhub/config"
	"taskhub/database"
	"taskhub/middleware"
	"taskhub/models"
	"taskhub/response"

	"golang.org/x/sync/errgroup"
)

type DashboardHandler struct {
	config *config.Config
	store  database.Store
}

func NewDashboardHandler(cfg *config.Config, store database.Store) *DashboardHandler {
	return &DashboardHandler{
		config: cfg,
		store:  store,
	}
}

type memberDashboard struct {
	Member  *models.TeamMember   `json:"member"`
	Summary models.MemberSummary `json:"summary"`
}

// Stats counts every collection concurrently.
func (h *DashboardHandler) Stats(w http.ResponseWriter, r *http.Request) {
	var (
		stats  models.DashboardStats
		counts map[models.TaskStatus]int64
	)

	g, ctx := errgroup.WithContext(r.Context())
	g.Go(func() error {
		var err error
		stats.Projects, err = h.store.CountProjects(ctx)
		return err
	})
	g.Go(func() error {
		var err error
		stats.Teams, err = h.store.CountTeamMembers(ctx)
		return err
	})
	g.Go(func() error {
		var err error
		counts, err = h.store.CountTasksByStatus(ctx, "")
		return err
	})
	if err := g.Wait(); err != nil {
		writeError(w, r, err)
		return
	}

	stats.TasksByStatus = models.EmptyStatusCounts()
	for status, n := range counts {
		stats.TasksByStatus[status] = n
		stats.Tasks += n
	}
	response.OK(w, "", stats)
}

// Me returns the summary of the team member sharing the caller's email.
func (h *DashboardHandler) Me(w http.ResponseWriter, r *http.Request) {
	user := middleware.GetUserFromContext(r.Context())

	member, err := h.store.TeamMemberByEmail(r.Context(), user.Email)
	if errors.Is(err, database.ErrNotFound) {
		writeError(w, r, notFound("No matching team member profile found"))
		return
	}
	if err != nil {
		writeError(w, r, err)
		return
	}

	summary, err := memberSummary(r.Context(), h.store, member.ID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	response.OK(w, "", memberDashboard{Member: member, Summary: summary})
}
