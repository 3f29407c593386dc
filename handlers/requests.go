package handlers

import (
	"taskhub/validation"
)

const statusMessage = "Status must be one of: to-do, in-progress, done, cancelled"

type registerRequest struct {
	Name     string `json:"name" validate:"required,max=50"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=6,max=72"`
}

func (registerRequest) ValidationMessages() validation.Messages {
	return validation.Messages{
		"name.required":     "Name is required",
		"name.max":          "Name cannot exceed 50 characters",
		"email.required":    "Email is required",
		"email.email":       "Please provide a valid email address",
		"password.required": "Password is required",
		"password.min":      "Password must be at least 6 characters long",
		"password.max":      "Password cannot exceed 72 characters",
	}
}

type loginRequest struct {
	Email    string `json:"email" validate:"required"`
	Password string `json:"password" validate:"required"`
}

func (loginRequest) ValidationMessages() validation.Messages {
	return validation.Messages{
		"email.required":    "Email is required",
		"password.required": "Password is required",
	}
}

type roleRequest struct {
	Role string `json:"role" validate:"required,oneof=owner admin member viewer"`
}

func (roleRequest) ValidationMessages() validation.Messages {
	return validation.Messages{
		"role.required": "Role is required",
		"role.oneof":    "Role must be one of: owner, admin, member, viewer",
	}
}

var teamMessages = validation.Messages{
	"name.required":        "Name is required",
	"name.min":             "Name must be at least 2 characters long",
	"name.max":             "Name cannot exceed 50 characters",
	"email.required":       "Email is required",
	"email.email":          "Please provide a valid email address",
	"designation.required": "Designation is required",
	"designation.min":      "Designation must be at least 2 characters long",
	"designation.max":      "Designation cannot exceed 50 characters",
}

type teamRequest struct {
	Name        string `json:"name" validate:"required,min=2,max=50"`
	Email       string `json:"email" validate:"required,email"`
	Designation string `json:"designation" validate:"required,min=2,max=50"`
}

func (teamRequest) ValidationMessages() validation.Messages { return teamMessages }

type teamUpdateRequest struct {
	Name        *string `json:"name" validate:"omitempty,min=2,max=50"`
	Email       *string `json:"email" validate:"omitempty,email"`
	Designation *string `json:"designation" validate:"omitempty,min=2,max=50"`
}

func (teamUpdateRequest) ValidationMessages() validation.Messages { return teamMessages }

var projectMessages = validation.Messages{
	"name.required":        "Project name is required",
	"name.min":             "Project name must be at least 2 characters long",
	"name.max":             "Project name cannot exceed 100 characters",
	"description.required": "Description is required",
	"description.min":      "Description must be at least 10 characters long",
	"description.max":      "Description cannot exceed 500 characters",
	"teamMember.required":  "Team members are required",
	"teamMember.min":       "At least one team member is required",
	"teamMember.objectid":  "Invalid team member ID format",
}

type projectRequest struct {
	Name        string   `json:"name" validate:"required,min=2,max=100"`
	Description string   `json:"description" validate:"required,min=10,max=500"`
	TeamMember  []string `json:"teamMember" validate:"required,min=1,dive,objectid"`
}

func (projectRequest) ValidationMessages() validation.Messages { return projectMessages }

type projectUpdateRequest struct {
	Name        *string  `json:"name" validate:"omitempty,min=2,max=100"`
	Description *string  `json:"description" validate:"omitempty,min=10,max=500"`
	TeamMember  []string `json:"teamMember" validate:"omitempty,min=1,dive,objectid"`
}

func (projectUpdateRequest) ValidationMessages() validation.Messages { return projectMessages }

var taskMessages = validation.Messages{
	"title.required":           "Task title is required",
	"title.min":                "Task title must be at least 2 characters long",
	"title.max":                "Task title cannot exceed 100 characters",
	"description.required":     "Description is required",
	"description.min":          "Description must be at least 10 characters long",
	"description.max":          "Description cannot exceed 500 characters",
	"deadline.required":        "Deadline is required",
	"deadline.date":            "Deadline must be a valid date",
	"deadline.future":          "Deadline must be a future date",
	"project.required":         "Project is required",
	"project.objectid":         "Invalid project ID format",
	"assignedMembers.required": "Assigned members are required",
	"assignedMembers.min":      "At least one team member must be assigned",
	"assignedMembers.objectid": "Invalid team member ID format",
	"status.oneof":             statusMessage,
}

type taskRequest struct {
	Title           string   `json:"title" validate:"required,min=2,max=100"`
	Description     string   `json:"description" validate:"required,min=10,max=500"`
	Deadline        string   `json:"deadline" validate:"required,date,future"`
	Project         string   `json:"project" validate:"required,objectid"`
	AssignedMembers []string `json:"assignedMembers" validate:"required,min=1,dive,objectid"`
	Status          string   `json:"status" validate:"omitempty,oneof=to-do in-progress done cancelled"`
}

func (taskRequest) ValidationMessages() validation.Messages { return taskMessages }

// The deadline of an existing task is not re-checked against the clock.
type taskUpdateRequest struct {
	Title           *string  `json:"title" validate:"omitempty,min=2,max=100"`
	Description     *string  `json:"description" validate:"omitempty,min=10,max=500"`
	Deadline        *string  `json:"deadline" validate:"omitempty,date"`
	Project         *string  `json:"project" validate:"omitempty,objectid"`
	AssignedMembers []string `json:"assignedMembers" validate:"omitempty,min=1,dive,objectid"`
	Status          *string  `json:"status" validate:"omitempty,oneof=to-do in-progress done cancelled"`
}

func (taskUpdateRequest) ValidationMessages() validation.Messages { return taskMessages }

type taskQuery struct {
	Status    string `json:"status" validate:"omitempty,oneof=to-do in-progress done cancelled"`
	Project   string `json:"project" validate:"omitempty,objectid"`
	Member    string `json:"member" validate:"omitempty,objectid"`
	StartDate string `json:"startDate" validate:"omitempty,date"`
	EndDate   string `json:"endDate" validate:"omitempty,date"`
}

func (taskQuery) ValidationMessages() validation.Messages {
	return validation.Messages{
		"status.oneof":     statusMessage,
		"project.objectid": "Invalid project ID format",
		"member.objectid":  "Invalid team member ID format",
		"startDate.date":   "Start date must be a valid date",
		"endDate.date":     "End date must be a valid date",
	}
}
