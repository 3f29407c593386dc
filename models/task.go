package models

import (
	"time"
)

type TaskStatus string

const (
	StatusToDo       TaskStatus = "to-do"
	StatusInProgress TaskStatus = "in-progress"
	StatusDone       TaskStatus = "done"
	StatusCancelled  TaskStatus = "cancelled"
)

var TaskStatuses = []TaskStatus{StatusToDo, StatusInProgress, StatusDone, StatusCancelled}

func (s TaskStatus) Valid() bool {
	for _, status := range TaskStatuses {
		if s == status {
			return true
		}
	}
	return false
}

// EmptyStatusCounts returns a count map with every status set to zero.
func EmptyStatusCounts() map[TaskStatus]int64 {
	counts := make(map[TaskStatus]int64, len(TaskStatuses))
	for _, status := range TaskStatuses {
		counts[status] = 0
	}
	return counts
}

type Task struct {
	ID                string     `json:"_id"`
	Title             string     `json:"title"`
	Description       string     `json:"description"`
	Deadline          time.Time  `json:"deadline"`
	ProjectID         string     `json:"project"`
	AssignedMemberIDs []string   `json:"assignedMembers"`
	Status            TaskStatus `json:"status"`
	CreatedAt         time.Time  `json:"createdAt"`
	UpdatedAt         time.Time  `json:"updatedAt"`
}

type TaskUpdate struct {
	Title             *string
	Description       *string
	Deadline          *time.Time
	ProjectID         *string
	AssignedMemberIDs []string
	Status            *TaskStatus
}

// TaskView is a task with its project and member references expanded.
// Project is nil when the referenced project no longer exists.
type TaskView struct {
	ID              string      `json:"_id"`
	Title           string      `json:"title"`
	Description     string      `json:"description"`
	Deadline        time.Time   `json:"deadline"`
	Project         *ProjectRef `json:"project"`
	AssignedMembers []MemberRef `json:"assignedMembers"`
	Status          TaskStatus  `json:"status"`
	CreatedAt       time.Time   `json:"createdAt"`
	UpdatedAt       time.Time   `json:"updatedAt"`
}

// TaskFilter narrows a task listing. Zero values mean no constraint.
type TaskFilter struct {
	ListParams
	Status    TaskStatus
	ProjectID string
	MemberID  string
	StartDate *time.Time
	EndDate   *time.Time
}

// Matches reports whether t satisfies every non-search constraint of f.
func (f TaskFilter) Matches(t *Task) bool {
	if f.Status != "" && t.Status != f.Status {
		return false
	}
	if f.ProjectID != "" && t.ProjectID != f.ProjectID {
		return false
	}
	if f.MemberID != "" && !containsID(t.AssignedMemberIDs, f.MemberID) {
		return false
	}
	if f.StartDate != nil && t.Deadline.Before(*f.StartDate) {
		return false
	}
	if f.EndDate != nil && t.Deadline.After(*f.EndDate) {
		return false
	}
	return true
}

func containsID(ids []string, id string) bool {
	for _, v := range ids {
		if v == id {
			return true
		}
	}
	return false
}

// DashboardStats is the aggregate view for the admin dashboard.
type DashboardStats struct {
	Projects      int64                `json:"projects"`
	Teams         int64                `json:"teams"`
	Tasks         int64                `json:"tasks"`
	TasksByStatus map[TaskStatus]int64 `json:"tasksByStatus"`
}
