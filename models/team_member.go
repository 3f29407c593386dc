package models

import (
	"time"
)

// TeamMember is a person that projects and tasks can reference.
type TeamMember struct {
	ID          string    `json:"_id"`
	Name        string    `json:"name"`
	Email       string    `json:"email"`
	Designation string    `json:"designation"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// TeamMemberUpdate holds the fields of a partial update. Nil means untouched.
type TeamMemberUpdate struct {
	Name        *string
	Email       *string
	Designation *string
}

// MemberRef is the populated form of a team member reference.
type MemberRef struct {
	ID          string `json:"_id"`
	Name        string `json:"name"`
	Email       string `json:"email"`
	Designation string `json:"designation"`
}

func (m *TeamMember) Ref() MemberRef {
	return MemberRef{
		ID:          m.ID,
		Name:        m.Name,
		Email:       m.Email,
		Designation: m.Designation,
	}
}

// MemberSummary is the per-member aggregation of projects and task statuses.
type MemberSummary struct {
	MemberID string               `json:"memberId"`
	Projects int64                `json:"projects"`
	Tasks    int64                `json:"tasks"`
	Statuses map[TaskStatus]int64 `json:"statuses"`
}

// NewMemberSummary builds a summary from raw status counts. Every known
// status is present in the result, missing ones as zero.
func NewMemberSummary(memberID string, projects int64, counts map[TaskStatus]int64) MemberSummary {
	statuses := EmptyStatusCounts()
	var total int64
	for status, n := range counts {
		statuses[status] = n
		total += n
	}
	return MemberSummary{
		MemberID: memberID,
		Projects: projects,
		Tasks:    total,
		Statuses: statuses,
	}
}
