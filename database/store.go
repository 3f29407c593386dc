package database

import (
	"context"
	"errors"

	"taskhub/models"
)

var (
	ErrNotFound  = errors.New("record not found")
	ErrDuplicate = errors.New("duplicate key")
)

// Store is the persistence boundary of the service. Implementations provide
// per-document atomicity only; nothing spans multiple writes.
type Store interface {
	UserStore
	TeamMemberStore
	ProjectStore
	TaskStore

	Ping(ctx context.Context) error
	Close(ctx context.Context) error
}

type UserStore interface {
	// CreateUser fills in ID and timestamps. ErrDuplicate on a taken email.
	CreateUser(ctx context.Context, user *models.User) error
	UserByID(ctx context.Context, id string) (*models.User, error)
	UserByEmail(ctx context.Context, email string) (*models.User, error)
	UpdateUserRole(ctx context.Context, id string, role models.Role) (*models.User, error)
}

type TeamMemberStore interface {
	CreateTeamMember(ctx context.Context, member *models.TeamMember) error
	TeamMemberByID(ctx context.Context, id string) (*models.TeamMember, error)
	TeamMemberByEmail(ctx context.Context, email string) (*models.TeamMember, error)
	// TeamMembersByIDs returns the members that exist, in no particular order.
	TeamMembersByIDs(ctx context.Context, ids []string) ([]models.TeamMember, error)
	ListTeamMembers(ctx context.Context, params models.ListParams) ([]models.TeamMember, int64, error)
	UpdateTeamMember(ctx context.Context, id string, update models.TeamMemberUpdate) (*models.TeamMember, error)
	DeleteTeamMember(ctx context.Context, id string) error
	CountTeamMembers(ctx context.Context) (int64, error)
}

type ProjectStore interface {
	CreateProject(ctx context.Context, project *models.Project) error
	ProjectByID(ctx context.Context, id string) (*models.Project, error)
	ProjectByName(ctx context.Context, name string) (*models.Project, error)
	ProjectsByIDs(ctx context.Context, ids []string) ([]models.Project, error)
	ListProjects(ctx context.Context, params models.ListParams) ([]models.Project, int64, error)
	UpdateProject(ctx context.Context, id string, update models.ProjectUpdate) (*models.Project, error)
	DeleteProject(ctx context.Context, id string) error
	CountProjects(ctx context.Context) (int64, error)
	// CountProjectsWithMember counts projects whose member set contains memberID.
	CountProjectsWithMember(ctx context.Context, memberID string) (int64, error)
}

type TaskStore interface {
	CreateTask(ctx context.Context, task *models.Task) error
	TaskByID(ctx context.Context, id string) (*models.Task, error)
	ListTasks(ctx context.Context, filter models.TaskFilter) ([]models.Task, int64, error)
	UpdateTask(ctx context.Context, id string, update models.TaskUpdate) (*models.Task, error)
	DeleteTask(ctx context.Context, id string) error
	// CountTasksByStatus groups tasks by status. An empty memberID counts
	// every task, otherwise only tasks assigned to that member.
	CountTasksByStatus(ctx context.Context, memberID string) (map[models.TaskStatus]int64, error)
}
