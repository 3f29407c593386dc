// Package storetest holds the behavioural suite every database.Store
// implementation must pass.
package storetest

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"taskhub/database"
	"taskhub/models"
)

// Run executes the suite. newStore must return an empty store each call.
func Run(t *testing.T, newStore func(t *testing.T) database.Store) {
	tests := []struct {
		name string
		fn   func(t *testing.T, s database.Store)
	}{
		{"UserEmailIsUnique", testUserEmailIsUnique},
		{"UserRoleUpdate", testUserRoleUpdate},
		{"TeamMemberEmailIsUnique", testTeamMemberEmailIsUnique},
		{"TeamMemberPartialUpdate", testTeamMemberPartialUpdate},
		{"TeamMemberPagination", testTeamMemberPagination},
		{"TeamMemberSearch", testTeamMemberSearch},
		{"TeamMembersByIDsSkipsMissing", testTeamMembersByIDsSkipsMissing},
		{"ProjectNameIsUnique", testProjectNameIsUnique},
		{"ProjectSearchIsCaseInsensitive", testProjectSearchIsCaseInsensitive},
		{"ProjectMembersReplaced", testProjectMembersReplaced},
		{"TaskDefaultsAndFilters", testTaskDefaultsAndFilters},
		{"MemberCounts", testMemberCounts},
		{"DeleteDoesNotCascade", testDeleteDoesNotCascade},
		{"MissingRecords", testMissingRecords},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.fn(t, newStore(t))
		})
	}
}

func mustMember(t *testing.T, s database.Store, name, email string) models.TeamMember {
	t.Helper()
	m := models.TeamMember{Name: name, Email: email, Designation: "Developer"}
	if err := s.CreateTeamMember(context.Background(), &m); err != nil {
		t.Fatalf("CreateTeamMember(%s): %v", email, err)
	}
	return m
}

func mustProject(t *testing.T, s database.Store, name string, memberIDs ...string) models.Project {
	t.Helper()
	p := models.Project{Name: name, Description: "a project description", TeamMemberIDs: memberIDs}
	if err := s.CreateProject(context.Background(), &p); err != nil {
		t.Fatalf("CreateProject(%s): %v", name, err)
	}
	return p
}

func mustTask(t *testing.T, s database.Store, task models.Task) models.Task {
	t.Helper()
	if task.Description == "" {
		task.Description = "a task description here"
	}
	if task.Deadline.IsZero() {
		task.Deadline = time.Now().Add(48 * time.Hour)
	}
	if err := s.CreateTask(context.Background(), &task); err != nil {
		t.Fatalf("CreateTask(%s): %v", task.Title, err)
	}
	return task
}

func testUserEmailIsUnique(t *testing.T, s database.Store) {
	ctx := context.Background()
	u := models.User{Name: "A", Email: "a@x.com", PasswordHash: "hash", Role: models.RoleMember}
	if err := s.CreateUser(ctx, &u); err != nil {
		t.Fatalf("CreateUser: %v", err)
	}
	if !models.IsValidID(u.ID) {
		t.Errorf("user ID %q is not a valid id", u.ID)
	}

	dup := models.User{Name: "B", Email: "a@x.com", PasswordHash: "hash", Role: models.RoleMember}
	if err := s.CreateUser(ctx, &dup); !errors.Is(err, database.ErrDuplicate) {
		t.Errorf("duplicate CreateUser err = %v, want ErrDuplicate", err)
	}

	got, err := s.UserByEmail(ctx, "a@x.com")
	if err != nil {
		t.Fatalf("UserByEmail: %v", err)
	}
	if got.ID != u.ID || got.PasswordHash != "hash" {
		t.Errorf("UserByEmail = %+v, want id %s with hash", got, u.ID)
	}
}

func testUserRoleUpdate(t *testing.T, s database.Store) {
	ctx := context.Background()
	u := models.User{Name: "A", Email: "a@x.com", PasswordHash: "hash", Role: models.RoleMember}
	if err := s.CreateUser(ctx, &u); err != nil {
		t.Fatalf("CreateUser: %v", err)
	}

	got, err := s.UpdateUserRole(ctx, u.ID, models.RoleAdmin)
	if err != nil {
		t.Fatalf("UpdateUserRole: %v", err)
	}
	if got.Role != models.RoleAdmin {
		t.Errorf("Role = %s, want admin", got.Role)
	}

	again, _ := s.UserByID(ctx, u.ID)
	if again == nil || again.Role != models.RoleAdmin {
		t.Errorf("stored role = %v, want admin", again)
	}
}

func testTeamMemberEmailIsUnique(t *testing.T, s database.Store) {
	ctx := context.Background()
	mustMember(t, s, "Bob", "b@x.com")

	dup := models.TeamMember{Name: "Bobby", Email: "b@x.com", Designation: "QA"}
	if err := s.CreateTeamMember(ctx, &dup); !errors.Is(err, database.ErrDuplicate) {
		t.Errorf("duplicate CreateTeamMember err = %v, want ErrDuplicate", err)
	}

	n, err := s.CountTeamMembers(ctx)
	if err != nil {
		t.Fatalf("CountTeamMembers: %v", err)
	}
	if n != 1 {
		t.Errorf("CountTeamMembers = %d, want 1", n)
	}
}

func testTeamMemberPartialUpdate(t *testing.T, s database.Store) {
	ctx := context.Background()
	bob := mustMember(t, s, "Bob", "b@x.com")
	mustMember(t, s, "Carol", "c@x.com")

	designation := "Lead"
	got, err := s.UpdateTeamMember(ctx, bob.ID, models.TeamMemberUpdate{Designation: &designation})
	if err != nil {
		t.Fatalf("UpdateTeamMember: %v", err)
	}
	if got.Designation != "Lead" || got.Name != "Bob" || got.Email != "b@x.com" {
		t.Errorf("UpdateTeamMember = %+v, want only designation changed", got)
	}

	taken := "c@x.com"
	if _, err := s.UpdateTeamMember(ctx, bob.ID, models.TeamMemberUpdate{Email: &taken}); !errors.Is(err, database.ErrDuplicate) {
		t.Errorf("update to taken email err = %v, want ErrDuplicate", err)
	}
}

func testTeamMemberPagination(t *testing.T, s database.Store) {
	ctx := context.Background()
	for i := 0; i < 7; i++ {
		mustMember(t, s, fmt.Sprintf("Member %d", i), fmt.Sprintf("m%d@x.com", i))
	}

	seen := map[string]bool{}
	for page := 1; page <= 3; page++ {
		params := models.ListParams{Page: page, Limit: 3}.Normalize()
		items, total, err := s.ListTeamMembers(ctx, params)
		if err != nil {
			t.Fatalf("ListTeamMembers page %d: %v", page, err)
		}
		if total != 7 {
			t.Errorf("total = %d, want 7", total)
		}
		if len(items) > params.Limit {
			t.Errorf("page %d has %d items, limit %d", page, len(items), params.Limit)
		}
		for _, m := range items {
			if seen[m.ID] {
				t.Errorf("member %s returned on two pages", m.ID)
			}
			seen[m.ID] = true
		}
	}
	if len(seen) != 7 {
		t.Errorf("saw %d distinct members, want 7", len(seen))
	}

	first, _, _ := s.ListTeamMembers(ctx, models.ListParams{Page: 1, Limit: 1}.Normalize())
	if len(first) != 1 || first[0].Name != "Member 6" {
		t.Errorf("newest member first = %+v, want Member 6", first)
	}
}

func testTeamMemberSearch(t *testing.T, s database.Store) {
	ctx := context.Background()
	mustMember(t, s, "Alice Smith", "alice@x.com")
	mustMember(t, s, "Bob", "bob@x.com")

	items, total, err := s.ListTeamMembers(ctx, models.ListParams{Page: 1, Limit: 10, Search: "SMITH"}.Normalize())
	if err != nil {
		t.Fatalf("ListTeamMembers: %v", err)
	}
	if total != 1 || len(items) != 1 || items[0].Name != "Alice Smith" {
		t.Errorf("search SMITH = %d/%v, want Alice Smith", total, items)
	}

	_, total, _ = s.ListTeamMembers(ctx, models.ListParams{Page: 1, Limit: 10, Search: "developer"}.Normalize())
	if total != 2 {
		t.Errorf("search by designation total = %d, want 2", total)
	}

	_, total, _ = s.ListTeamMembers(ctx, models.ListParams{Page: 1, Limit: 10, Search: "a.*"}.Normalize())
	if total != 0 {
		t.Errorf("search treats pattern metacharacters literally, total = %d, want 0", total)
	}
}

func testTeamMembersByIDsSkipsMissing(t *testing.T, s database.Store) {
	ctx := context.Background()
	bob := mustMember(t, s, "Bob", "b@x.com")

	got, err := s.TeamMembersByIDs(ctx, []string{bob.ID, models.NewID(), bob.ID})
	if err != nil {
		t.Fatalf("TeamMembersByIDs: %v", err)
	}
	if len(got) != 1 || got[0].ID != bob.ID {
		t.Errorf("TeamMembersByIDs = %v, want only Bob", got)
	}
}

func testProjectNameIsUnique(t *testing.T, s database.Store) {
	ctx := context.Background()
	bob := mustMember(t, s, "Bob", "b@x.com")
	p1 := mustProject(t, s, "P1", bob.ID)
	p2 := mustProject(t, s, "P2", bob.ID)

	dup := models.Project{Name: "P1", Description: "another description", TeamMemberIDs: []string{bob.ID}}
	if err := s.CreateProject(ctx, &dup); !errors.Is(err, database.ErrDuplicate) {
		t.Errorf("duplicate CreateProject err = %v, want ErrDuplicate", err)
	}

	name := p1.Name
	if _, err := s.UpdateProject(ctx, p2.ID, models.ProjectUpdate{Name: &name}); !errors.Is(err, database.ErrDuplicate) {
		t.Errorf("rename to taken name err = %v, want ErrDuplicate", err)
	}

	got, err := s.ProjectByName(ctx, "P1")
	if err != nil {
		t.Fatalf("ProjectByName: %v", err)
	}
	if got.ID != p1.ID {
		t.Errorf("ProjectByName id = %s, want %s", got.ID, p1.ID)
	}
}

func testProjectSearchIsCaseInsensitive(t *testing.T, s database.Store) {
	ctx := context.Background()
	bob := mustMember(t, s, "Bob", "b@x.com")
	alpha := mustProject(t, s, "Project Alpha", bob.ID)
	mustProject(t, s, "Project Beta", bob.ID)

	items, total, err := s.ListProjects(ctx, models.ListParams{Page: 1, Limit: 10, Search: "alpha"}.Normalize())
	if err != nil {
		t.Fatalf("ListProjects: %v", err)
	}
	if total != 1 || len(items) != 1 || items[0].ID != alpha.ID {
		t.Errorf("search alpha = %d/%v, want Project Alpha", total, items)
	}
	if len(items) == 1 && (len(items[0].TeamMemberIDs) != 1 || items[0].TeamMemberIDs[0] != bob.ID) {
		t.Errorf("listed project members = %v, want [%s]", items[0].TeamMemberIDs, bob.ID)
	}
}

func testProjectMembersReplaced(t *testing.T, s database.Store) {
	ctx := context.Background()
	bob := mustMember(t, s, "Bob", "b@x.com")
	carol := mustMember(t, s, "Carol", "c@x.com")
	p := mustProject(t, s, "P1", bob.ID)

	got, err := s.UpdateProject(ctx, p.ID, models.ProjectUpdate{TeamMemberIDs: []string{carol.ID, bob.ID}})
	if err != nil {
		t.Fatalf("UpdateProject: %v", err)
	}
	if len(got.TeamMemberIDs) != 2 || got.TeamMemberIDs[0] != carol.ID || got.TeamMemberIDs[1] != bob.ID {
		t.Errorf("TeamMemberIDs = %v, want [carol bob]", got.TeamMemberIDs)
	}
	if got.Name != "P1" {
		t.Errorf("Name = %s, want P1 unchanged", got.Name)
	}
}

func testTaskDefaultsAndFilters(t *testing.T, s database.Store) {
	ctx := context.Background()
	bob := mustMember(t, s, "Bob", "b@x.com")
	carol := mustMember(t, s, "Carol", "c@x.com")
	p1 := mustProject(t, s, "P1", bob.ID)
	p2 := mustProject(t, s, "P2", carol.ID)

	base := time.Now().UTC().Add(72 * time.Hour).Truncate(time.Second)
	t1 := mustTask(t, s, models.Task{Title: "Write docs", ProjectID: p1.ID, AssignedMemberIDs: []string{bob.ID}, Deadline: base})
	mustTask(t, s, models.Task{Title: "Fix bug", ProjectID: p1.ID, AssignedMemberIDs: []string{bob.ID, carol.ID}, Status: models.StatusInProgress, Deadline: base.Add(24 * time.Hour)})
	mustTask(t, s, models.Task{Title: "Deploy", ProjectID: p2.ID, AssignedMemberIDs: []string{carol.ID}, Status: models.StatusDone, Deadline: base.Add(48 * time.Hour)})

	if t1.Status != models.StatusToDo {
		t.Errorf("default status = %s, want to-do", t1.Status)
	}

	count := func(f models.TaskFilter) int64 {
		t.Helper()
		f.ListParams = models.ListParams{Page: 1, Limit: 10, Search: f.Search}.Normalize()
		_, total, err := s.ListTasks(ctx, f)
		if err != nil {
			t.Fatalf("ListTasks(%+v): %v", f, err)
		}
		return total
	}

	if n := count(models.TaskFilter{}); n != 3 {
		t.Errorf("all tasks = %d, want 3", n)
	}
	if n := count(models.TaskFilter{ProjectID: p1.ID}); n != 2 {
		t.Errorf("project filter = %d, want 2", n)
	}
	if n := count(models.TaskFilter{MemberID: carol.ID}); n != 2 {
		t.Errorf("member filter = %d, want 2", n)
	}
	if n := count(models.TaskFilter{Status: models.StatusDone}); n != 1 {
		t.Errorf("status filter = %d, want 1", n)
	}
	if n := count(models.TaskFilter{ListParams: models.ListParams{Search: "BUG"}}); n != 1 {
		t.Errorf("search filter = %d, want 1", n)
	}

	start, end := base, base.Add(24*time.Hour)
	if n := count(models.TaskFilter{StartDate: &start, EndDate: &end}); n != 2 {
		t.Errorf("inclusive deadline range = %d, want 2", n)
	}
	if n := count(models.TaskFilter{StartDate: &end}); n != 2 {
		t.Errorf("start-only range = %d, want 2", n)
	}

	status := models.StatusCancelled
	updated, err := s.UpdateTask(ctx, t1.ID, models.TaskUpdate{Status: &status, AssignedMemberIDs: []string{carol.ID}})
	if err != nil {
		t.Fatalf("UpdateTask: %v", err)
	}
	if updated.Status != models.StatusCancelled || updated.Title != "Write docs" {
		t.Errorf("UpdateTask = %+v, want cancelled with title kept", updated)
	}
	if len(updated.AssignedMemberIDs) != 1 || updated.AssignedMemberIDs[0] != carol.ID {
		t.Errorf("AssignedMemberIDs = %v, want [carol]", updated.AssignedMemberIDs)
	}
}

func testMemberCounts(t *testing.T, s database.Store) {
	ctx := context.Background()
	bob := mustMember(t, s, "Bob", "b@x.com")
	carol := mustMember(t, s, "Carol", "c@x.com")
	idle := mustMember(t, s, "Idle", "i@x.com")
	p1 := mustProject(t, s, "P1", bob.ID, carol.ID)
	mustProject(t, s, "P2", bob.ID)

	mustTask(t, s, models.Task{Title: "T1", ProjectID: p1.ID, AssignedMemberIDs: []string{bob.ID}})
	mustTask(t, s, models.Task{Title: "T2", ProjectID: p1.ID, AssignedMemberIDs: []string{bob.ID, carol.ID}, Status: models.StatusDone})
	mustTask(t, s, models.Task{Title: "T3", ProjectID: p1.ID, AssignedMemberIDs: []string{carol.ID}, Status: models.StatusDone})

	n, err := s.CountProjectsWithMember(ctx, bob.ID)
	if err != nil {
		t.Fatalf("CountProjectsWithMember: %v", err)
	}
	if n != 2 {
		t.Errorf("bob projects = %d, want 2", n)
	}

	counts, err := s.CountTasksByStatus(ctx, bob.ID)
	if err != nil {
		t.Fatalf("CountTasksByStatus: %v", err)
	}
	if counts[models.StatusToDo] != 1 || counts[models.StatusDone] != 1 {
		t.Errorf("bob statuses = %v, want to-do:1 done:1", counts)
	}

	all, _ := s.CountTasksByStatus(ctx, "")
	if all[models.StatusDone] != 2 || all[models.StatusToDo] != 1 {
		t.Errorf("all statuses = %v, want to-do:1 done:2", all)
	}

	n, _ = s.CountProjectsWithMember(ctx, idle.ID)
	none, _ := s.CountTasksByStatus(ctx, idle.ID)
	if n != 0 || len(none) != 0 {
		t.Errorf("idle member = %d projects / %v statuses, want nothing", n, none)
	}
}

func testDeleteDoesNotCascade(t *testing.T, s database.Store) {
	ctx := context.Background()
	bob := mustMember(t, s, "Bob", "b@x.com")
	p := mustProject(t, s, "P1", bob.ID)
	task := mustTask(t, s, models.Task{Title: "T1", ProjectID: p.ID, AssignedMemberIDs: []string{bob.ID}})

	if err := s.DeleteProject(ctx, p.ID); err != nil {
		t.Fatalf("DeleteProject: %v", err)
	}
	if err := s.DeleteTeamMember(ctx, bob.ID); err != nil {
		t.Fatalf("DeleteTeamMember: %v", err)
	}

	got, err := s.TaskByID(ctx, task.ID)
	if err != nil {
		t.Fatalf("TaskByID after deletes: %v", err)
	}
	if got.ProjectID != p.ID {
		t.Errorf("task project = %s, want dangling %s", got.ProjectID, p.ID)
	}
	if len(got.AssignedMemberIDs) != 1 || got.AssignedMemberIDs[0] != bob.ID {
		t.Errorf("task members = %v, want dangling [%s]", got.AssignedMemberIDs, bob.ID)
	}
}

func testMissingRecords(t *testing.T, s database.Store) {
	ctx := context.Background()
	missing := models.NewID()

	checks := map[string]error{}
	_, checks["UserByID"] = s.UserByID(ctx, missing)
	_, checks["UserByEmail"] = s.UserByEmail(ctx, "nobody@x.com")
	_, checks["UpdateUserRole"] = s.UpdateUserRole(ctx, missing, models.RoleAdmin)
	_, checks["TeamMemberByID"] = s.TeamMemberByID(ctx, missing)
	_, checks["TeamMemberByEmail"] = s.TeamMemberByEmail(ctx, "nobody@x.com")
	_, checks["UpdateTeamMember"] = s.UpdateTeamMember(ctx, missing, models.TeamMemberUpdate{})
	checks["DeleteTeamMember"] = s.DeleteTeamMember(ctx, missing)
	_, checks["ProjectByID"] = s.ProjectByID(ctx, missing)
	_, checks["UpdateProject"] = s.UpdateProject(ctx, missing, models.ProjectUpdate{})
	checks["DeleteProject"] = s.DeleteProject(ctx, missing)
	_, checks["TaskByID"] = s.TaskByID(ctx, missing)
	_, checks["UpdateTask"] = s.UpdateTask(ctx, missing, models.TaskUpdate{})
	checks["DeleteTask"] = s.DeleteTask(ctx, missing)

	for name, err := range checks {
		if !errors.Is(err, database.ErrNotFound) {
			t.Errorf("%s err = %v, want ErrNotFound", name, err)
		}
	}
}
