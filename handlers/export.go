package handlers

import (
	"encoding/csv"
	"fmt"
	"net/http"
	"strings"
	"time"

	"taskhub/logging"
	"taskhub/middleware"
	"taskhub/models"
)

// ExportCSV streams every task matching the list filters as CSV.
// Pagination parameters are ignored.
func (h *TaskHandler) ExportCSV(w http.ResponseWriter, r *http.Request) {
	filter, err := taskFilter(r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	var tasks []models.Task
	filter.ListParams = models.ListParams{Page: 1, Limit: models.MaxLimit, Search: filter.Search}
	for {
		batch, total, err := h.store.ListTasks(r.Context(), filter)
		if err != nil {
			writeError(w, r, err)
			return
		}
		tasks = append(tasks, batch...)
		if len(batch) == 0 || int64(len(tasks)) >= total {
			break
		}
		filter.Page++
	}

	views, err := taskViews(r.Context(), h.store, tasks)
	if err != nil {
		writeError(w, r, err)
		return
	}

	filename := fmt.Sprintf("tasks_%s.csv", time.Now().UTC().Format("2006-01-02"))
	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%s", filename))

	log := logging.Logger.WithField("request_id", middleware.RequestID(r))
	writer := csv.NewWriter(w)

	// Write header
	if err := writer.Write([]string{"Title", "Project", "Assigned Members", "Status", "Deadline", "Description"}); err != nil {
		log.WithError(err).Warn("Failed to write task export")
		return
	}

	// Write data
	for _, task := range views {
		// Stop once the client has gone away.
		if err := r.Context().Err(); err != nil {
			log.WithError(err).Info("Task export aborted")
			return
		}
		projectName := ""
		if task.Project != nil {
			projectName = task.Project.Name
		}
		names := make([]string, 0, len(task.AssignedMembers))
		for _, m := range task.AssignedMembers {
			names = append(names, m.Name)
		}
		err := writer.Write([]string{
			task.Title,
			projectName,
			strings.Join(names, "; "),
			string(task.Status),
			task.Deadline.Format("2006-01-02"),
			task.Description,
		})
		if err != nil {
			log.WithError(err).Warn("Failed to write task export")
			return
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		log.WithError(err).Warn("Failed to write task export")
	}
}
