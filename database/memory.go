package database

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"taskhub/models"
)

// MemoryStore keeps everything in process memory. It backs the test suite
// and DATABASE_DRIVER=memory for local runs.
type MemoryStore struct {
	mu          sync.RWMutex
	users       map[string]models.User
	teamMembers map[string]models.TeamMember
	projects    map[string]models.Project
	tasks       map[string]models.Task
	now         func() time.Time
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		users:       make(map[string]models.User),
		teamMembers: make(map[string]models.TeamMember),
		projects:    make(map[string]models.Project),
		tasks:       make(map[string]models.Task),
		now:         time.Now,
	}
}

func (s *MemoryStore) Ping(ctx context.Context) error  { return nil }
func (s *MemoryStore) Close(ctx context.Context) error { return nil }

func (s *MemoryStore) stamp() time.Time {
	return s.now().UTC().Truncate(time.Millisecond)
}

// Users

func (s *MemoryStore) CreateUser(ctx context.Context, user *models.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, u := range s.users {
		if u.Email == user.Email {
			return fmt.Errorf("user %s: %w", user.Email, ErrDuplicate)
		}
	}
	user.ID = models.NewID()
	user.CreatedAt = s.stamp()
	user.UpdatedAt = user.CreatedAt
	s.users[user.ID] = *user
	return nil
}

func (s *MemoryStore) UserByID(ctx context.Context, id string) (*models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	u, ok := s.users[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &u, nil
}

func (s *MemoryStore) UserByEmail(ctx context.Context, email string) (*models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, u := range s.users {
		if u.Email == email {
			return &u, nil
		}
	}
	return nil, ErrNotFound
}

func (s *MemoryStore) UpdateUserRole(ctx context.Context, id string, role models.Role) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	u, ok := s.users[id]
	if !ok {
		return nil, ErrNotFound
	}
	u.Role = role
	u.UpdatedAt = s.stamp()
	s.users[id] = u
	return &u, nil
}

// Team members

func (s *MemoryStore) CreateTeamMember(ctx context.Context, member *models.TeamMember) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.teamMemberEmailTaken(member.Email, "") {
		return fmt.Errorf("team member %s: %w", member.Email, ErrDuplicate)
	}
	member.ID = models.NewID()
	member.CreatedAt = s.stamp()
	member.UpdatedAt = member.CreatedAt
	s.teamMembers[member.ID] = *member
	return nil
}

func (s *MemoryStore) teamMemberEmailTaken(email, exceptID string) bool {
	for id, m := range s.teamMembers {
		if id != exceptID && m.Email == email {
			return true
		}
	}
	return false
}

func (s *MemoryStore) TeamMemberByID(ctx context.Context, id string) (*models.TeamMember, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	m, ok := s.teamMembers[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &m, nil
}

func (s *MemoryStore) TeamMemberByEmail(ctx context.Context, email string) (*models.TeamMember, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, m := range s.teamMembers {
		if m.Email == email {
			return &m, nil
		}
	}
	return nil, ErrNotFound
}

func (s *MemoryStore) TeamMembersByIDs(ctx context.Context, ids []string) ([]models.TeamMember, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []models.TeamMember
	for _, id := range models.UniqueIDs(ids) {
		if m, ok := s.teamMembers[id]; ok {
			out = append(out, m)
		}
	}
	return out, nil
}

func (s *MemoryStore) ListTeamMembers(ctx context.Context, params models.ListParams) ([]models.TeamMember, int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var matched []models.TeamMember
	for _, m := range s.teamMembers {
		if params.MatchesSearch(m.Name, m.Email, m.Designation) {
			matched = append(matched, m)
		}
	}
	sort.Slice(matched, func(i, j int) bool {
		return newerFirst(matched[i].CreatedAt, matched[i].ID, matched[j].CreatedAt, matched[j].ID)
	})
	return paginate(matched, params), int64(len(matched)), nil
}

func (s *MemoryStore) UpdateTeamMember(ctx context.Context, id string, update models.TeamMemberUpdate) (*models.TeamMember, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	m, ok := s.teamMembers[id]
	if !ok {
		return nil, ErrNotFound
	}
	if update.Email != nil {
		if s.teamMemberEmailTaken(*update.Email, id) {
			return nil, fmt.Errorf("team member %s: %w", *update.Email, ErrDuplicate)
		}
		m.Email = *update.Email
	}
	if update.Name != nil {
		m.Name = *update.Name
	}
	if update.Designation != nil {
		m.Designation = *update.Designation
	}
	m.UpdatedAt = s.stamp()
	s.teamMembers[id] = m
	return &m, nil
}

func (s *MemoryStore) DeleteTeamMember(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.teamMembers[id]; !ok {
		return ErrNotFound
	}
	delete(s.teamMembers, id)
	return nil
}

func (s *MemoryStore) CountTeamMembers(ctx context.Context) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return int64(len(s.teamMembers)), nil
}

// Projects

func (s *MemoryStore) CreateProject(ctx context.Context, project *models.Project) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.projectNameTaken(project.Name, "") {
		return fmt.Errorf("project %s: %w", project.Name, ErrDuplicate)
	}
	project.ID = models.NewID()
	project.TeamMemberIDs = cloneIDs(project.TeamMemberIDs)
	project.CreatedAt = s.stamp()
	project.UpdatedAt = project.CreatedAt
	s.projects[project.ID] = *project
	return nil
}

func (s *MemoryStore) projectNameTaken(name, exceptID string) bool {
	for id, p := range s.projects {
		if id != exceptID && p.Name == name {
			return true
		}
	}
	return false
}

func (s *MemoryStore) ProjectByID(ctx context.Context, id string) (*models.Project, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	p, ok := s.projects[id]
	if !ok {
		return nil, ErrNotFound
	}
	p.TeamMemberIDs = cloneIDs(p.TeamMemberIDs)
	return &p, nil
}

func (s *MemoryStore) ProjectByName(ctx context.Context, name string) (*models.Project, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, p := range s.projects {
		if p.Name == name {
			p.TeamMemberIDs = cloneIDs(p.TeamMemberIDs)
			return &p, nil
		}
	}
	return nil, ErrNotFound
}

func (s *MemoryStore) ProjectsByIDs(ctx context.Context, ids []string) ([]models.Project, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []models.Project
	for _, id := range models.UniqueIDs(ids) {
		if p, ok := s.projects[id]; ok {
			p.TeamMemberIDs = cloneIDs(p.TeamMemberIDs)
			out = append(out, p)
		}
	}
	return out, nil
}

func (s *MemoryStore) ListProjects(ctx context.Context, params models.ListParams) ([]models.Project, int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var matched []models.Project
	for _, p := range s.projects {
		if params.MatchesSearch(p.Name, p.Description) {
			p.TeamMemberIDs = cloneIDs(p.TeamMemberIDs)
			matched = append(matched, p)
		}
	}
	sort.Slice(matched, func(i, j int) bool {
		return newerFirst(matched[i].CreatedAt, matched[i].ID, matched[j].CreatedAt, matched[j].ID)
	})
	return paginate(matched, params), int64(len(matched)), nil
}

func (s *MemoryStore) UpdateProject(ctx context.Context, id string, update models.ProjectUpdate) (*models.Project, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, ok := s.projects[id]
	if !ok {
		return nil, ErrNotFound
	}
	if update.Name != nil {
		if s.projectNameTaken(*update.Name, id) {
			return nil, fmt.Errorf("project %s: %w", *update.Name, ErrDuplicate)
		}
		p.Name = *update.Name
	}
	if update.Description != nil {
		p.Description = *update.Description
	}
	if update.TeamMemberIDs != nil {
		p.TeamMemberIDs = cloneIDs(update.TeamMemberIDs)
	}
	p.UpdatedAt = s.stamp()
	s.projects[id] = p
	p.TeamMemberIDs = cloneIDs(p.TeamMemberIDs)
	return &p, nil
}

func (s *MemoryStore) DeleteProject(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.projects[id]; !ok {
		return ErrNotFound
	}
	delete(s.projects, id)
	return nil
}

func (s *MemoryStore) CountProjects(ctx context.Context) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return int64(len(s.projects)), nil
}

func (s *MemoryStore) CountProjectsWithMember(ctx context.Context, memberID string) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var n int64
	for _, p := range s.projects {
		for _, id := range p.TeamMemberIDs {
			if id == memberID {
				n++
				break
			}
		}
	}
	return n, nil
}

// Tasks

func (s *MemoryStore) CreateTask(ctx context.Context, task *models.Task) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	task.ID = models.NewID()
	task.AssignedMemberIDs = cloneIDs(task.AssignedMemberIDs)
	if task.Status == "" {
		task.Status = models.StatusToDo
	}
	task.CreatedAt = s.stamp()
	task.UpdatedAt = task.CreatedAt
	s.tasks[task.ID] = *task
	return nil
}

func (s *MemoryStore) TaskByID(ctx context.Context, id string) (*models.Task, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	t, ok := s.tasks[id]
	if !ok {
		return nil, ErrNotFound
	}
	t.AssignedMemberIDs = cloneIDs(t.AssignedMemberIDs)
	return &t, nil
}

func (s *MemoryStore) ListTasks(ctx context.Context, filter models.TaskFilter) ([]models.Task, int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var matched []models.Task
	for _, t := range s.tasks {
		if filter.Matches(&t) && filter.MatchesSearch(t.Title, t.Description) {
			t.AssignedMemberIDs = cloneIDs(t.AssignedMemberIDs)
			matched = append(matched, t)
		}
	}
	sort.Slice(matched, func(i, j int) bool {
		return newerFirst(matched[i].CreatedAt, matched[i].ID, matched[j].CreatedAt, matched[j].ID)
	})
	return paginate(matched, filter.ListParams), int64(len(matched)), nil
}

func (s *MemoryStore) UpdateTask(ctx context.Context, id string, update models.TaskUpdate) (*models.Task, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	t, ok := s.tasks[id]
	if !ok {
		return nil, ErrNotFound
	}
	if update.Title != nil {
		t.Title = *update.Title
	}
	if update.Description != nil {
		t.Description = *update.Description
	}
	if update.Deadline != nil {
		t.Deadline = *update.Deadline
	}
	if update.ProjectID != nil {
		t.ProjectID = *update.ProjectID
	}
	if update.AssignedMemberIDs != nil {
		t.AssignedMemberIDs = cloneIDs(update.AssignedMemberIDs)
	}
	if update.Status != nil {
		t.Status = *update.Status
	}
	t.UpdatedAt = s.stamp()
	s.tasks[id] = t
	t.AssignedMemberIDs = cloneIDs(t.AssignedMemberIDs)
	return &t, nil
}

func (s *MemoryStore) DeleteTask(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.tasks[id]; !ok {
		return ErrNotFound
	}
	delete(s.tasks, id)
	return nil
}

func (s *MemoryStore) CountTasksByStatus(ctx context.Context, memberID string) (map[models.TaskStatus]int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	filter := models.TaskFilter{MemberID: memberID}
	counts := make(map[models.TaskStatus]int64)
	for _, t := range s.tasks {
		if filter.Matches(&t) {
			counts[t.Status]++
		}
	}
	return counts, nil
}

func newerFirst(ti time.Time, idi string, tj time.Time, idj string) bool {
	if !ti.Equal(tj) {
		return ti.After(tj)
	}
	return idi > idj
}

func paginate[T any](items []T, params models.ListParams) []T {
	start := params.Skip()
	if start < 0 || start >= len(items) {
		return []T{}
	}
	end := start + params.Limit
	if end < start || end > len(items) {
		end = len(items)
	}
	return items[start:end]
}

func cloneIDs(ids []string) []string {
	if ids == nil {
		return []string{}
	}
	out := make([]string, len(ids))
	copy(out, ids)
	return out
}
