package models

import (
	"time"
)

type Project struct {
	ID            string    `json:"_id"`
	Name          string    `json:"name"`
	Description   string    `json:"description"`
	TeamMemberIDs []string  `json:"teamMember"`
	CreatedAt     time.Time `json:"createdAt"`
	UpdatedAt     time.Time `json:"updatedAt"`
}

type ProjectUpdate struct {
	Name          *string
	Description   *string
	TeamMemberIDs []string
}

// ProjectRef is the populated form of a task's project reference.
type ProjectRef struct {
	ID          string `json:"_id"`
	Name        string `json:"name"`
	Description string `json:"description"`
}

func (p *Project) Ref() *ProjectRef {
	return &ProjectRef{
		ID:          p.ID,
		Name:        p.Name,
		Description: p.Description,
	}
}

// ProjectView is a project with its member references expanded.
type ProjectView struct {
	ID          string      `json:"_id"`
	Name        string      `json:"name"`
	Description string      `json:"description"`
	TeamMember  []MemberRef `json:"teamMember"`
	CreatedAt   time.Time   `json:"createdAt"`
	UpdatedAt   time.Time   `json:"updatedAt"`
}
