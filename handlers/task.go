package handlers

import (
	"context"
	"errors"
	"net/http"
	"time"

	"taskhub/config"
	"taskhub/database"
	"taskhub/models"
	"taskhub/response"
	"taskhub/validation"

	"github.com/go-chi/chi/v5"
)

const msgTaskNotFound = "Task not found"

type TaskHandler struct {
	config *config.Config
	store  database.Store
}

func NewTaskHandler(cfg *config.Config, store database.Store) *TaskHandler {
	return &TaskHandler{
		config: cfg,
		store:  store,
	}
}

type taskListData struct {
	Page       int               `json:"page"`
	Limit      int               `json:"limit"`
	TotalTasks int64             `json:"totalTasks"`
	TotalPages int64             `json:"totalPages"`
	Tasks      []models.TaskView `json:"tasks"`
}

func ensureProjectExists(ctx context.Context, store database.ProjectStore, id string) error {
	_, err := store.ProjectByID(ctx, id)
	if errors.Is(err, database.ErrNotFound) {
		return badRequest("Project does not exist")
	}
	return err
}

func (h *TaskHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req taskRequest
	if err := validation.DecodeJSON(r.Body, &req); err != nil {
		writeError(w, r, err)
		return
	}

	deadline, err := validation.ParseDate(req.Deadline)
	if err != nil {
		writeError(w, r, badRequest(taskMessages["deadline.date"]))
		return
	}
	if err := ensureProjectExists(r.Context(), h.store, req.Project); err != nil {
		writeError(w, r, err)
		return
	}
	memberIDs := models.UniqueIDs(req.AssignedMembers)
	if err := ensureMembersExist(r.Context(), h.store, memberIDs); err != nil {
		writeError(w, r, err)
		return
	}

	task := models.Task{
		Title:             req.Title,
		Description:       req.Description,
		Deadline:          deadline,
		ProjectID:         req.Project,
		AssignedMemberIDs: memberIDs,
		Status:            models.TaskStatus(req.Status),
	}
	if task.Status == "" {
		task.Status = models.StatusToDo
	}
	if err := h.store.CreateTask(r.Context(), &task); err != nil {
		writeError(w, r, err)
		return
	}

	view, err := taskView(r.Context(), h.store, &task)
	if err != nil {
		writeError(w, r, err)
		return
	}
	response.Created(w, "Task created successfully", view)
}

// taskFilter builds the listing filter from the query string. A date-only
// endDate includes the whole of that day.
func taskFilter(r *http.Request) (models.TaskFilter, error) {
	q := r.URL.Query()
	query := taskQuery{
		Status:    q.Get("status"),
		Project:   q.Get("project"),
		Member:    q.Get("member"),
		StartDate: q.Get("startDate"),
		EndDate:   q.Get("endDate"),
	}
	if err := validation.Struct(&query); err != nil {
		return models.TaskFilter{}, err
	}

	filter := models.TaskFilter{
		ListParams: listParams(r),
		Status:     models.TaskStatus(query.Status),
		ProjectID:  query.Project,
		MemberID:   query.Member,
	}
	if query.StartDate != "" {
		start, _ := validation.ParseDate(query.StartDate)
		filter.StartDate = &start
	}
	if query.EndDate != "" {
		end, _ := validation.ParseDate(query.EndDate)
		if validation.IsDateOnly(query.EndDate) {
			end = end.Add(24*time.Hour - time.Millisecond)
		}
		filter.EndDate = &end
	}
	return filter, nil
}

func (h *TaskHandler) List(w http.ResponseWriter, r *http.Request) {
	filter, err := taskFilter(r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	tasks, total, err := h.store.ListTasks(r.Context(), filter)
	if err != nil {
		writeError(w, r, err)
		return
	}

	views, err := taskViews(r.Context(), h.store, tasks)
	if err != nil {
		writeError(w, r, err)
		return
	}

	response.OK(w, "", taskListData{
		Page:       filter.Page,
		Limit:      filter.Limit,
		TotalTasks: total,
		TotalPages: filter.TotalPages(total),
		Tasks:      views,
	})
}

func (h *TaskHandler) Get(w http.ResponseWriter, r *http.Request) {
	task, err := h.store.TaskByID(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, r, mapStoreError(err, msgTaskNotFound, ""))
		return
	}

	view, err := taskView(r.Context(), h.store, task)
	if err != nil {
		writeError(w, r, err)
		return
	}
	response.OK(w, "", view)
}

func (h *TaskHandler) Update(w http.ResponseWriter, r *http.Request) {
	var req taskUpdateRequest
	if err := validation.DecodeJSON(r.Body, &req); err != nil {
		writeError(w, r, err)
		return
	}

	id := chi.URLParam(r, "id")
	if _, err := h.store.TaskByID(r.Context(), id); err != nil {
		writeError(w, r, mapStoreError(err, msgTaskNotFound, ""))
		return
	}

	update := models.TaskUpdate{
		Title:       req.Title,
		Description: req.Description,
		ProjectID:   req.Project,
	}
	if req.Deadline != nil {
		deadline, err := validation.ParseDate(*req.Deadline)
		if err != nil {
			writeError(w, r, badRequest(taskMessages["deadline.date"]))
			return
		}
		update.Deadline = &deadline
	}
	if req.Status != nil {
		status := models.TaskStatus(*req.Status)
		update.Status = &status
	}
	if req.Project != nil {
		if err := ensureProjectExists(r.Context(), h.store, *req.Project); err != nil {
			writeError(w, r, err)
			return
		}
	}
	if req.AssignedMembers != nil {
		update.AssignedMemberIDs = models.UniqueIDs(req.AssignedMembers)
		if err := ensureMembersExist(r.Context(), h.store, update.AssignedMemberIDs); err != nil {
			writeError(w, r, err)
			return
		}
	}

	task, err := h.store.UpdateTask(r.Context(), id, update)
	if err != nil {
		writeError(w, r, mapStoreError(err, msgTaskNotFound, ""))
		return
	}

	view, err := taskView(r.Context(), h.store, task)
	if err != nil {
		writeError(w, r, err)
		return
	}
	response.OK(w, "Task updated successfully", view)
}

func (h *TaskHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.store.DeleteTask(r.Context(), chi.URLParam(r, "id")); err != nil {
		writeError(w, r, mapStoreError(err, msgTaskNotFound, ""))
		return
	}
	response.OK(w, "Task deleted successfully", nil)
}
