package handlers

import (
	"bytes"
	"context"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"
	"time"

	"taskhub/config"
	"taskhub/database"
	"taskhub/logging"
	"taskhub/models"
)

const (
	ownerEmail    = "owner@x.com"
	ownerPassword = "ownerpass"
)

func TestMain(m *testing.M) {
	logging.Logger.SetOutput(io.Discard)
	os.Exit(m.Run())
}

type envelope struct {
	Success bool            `json:"success"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
	Errors  []string        `json:"errors"`
}

type testAPI struct {
	t       *testing.T
	handler http.Handler
	store   *database.MemoryStore
}

func newTestAPI(t *testing.T, publicReads bool) *testAPI {
	t.Helper()
	store := database.NewMemoryStore()
	cfg := &config.Config{
		JWTSecret:     "test-secret",
		JWTExpiration: time.Hour,
		CORSOrigins:   []string{"*"},
		PublicReads:   publicReads,
	}
	seed := config.SeedOwner{Name: "Owner", Email: ownerEmail, Password: ownerPassword}
	if err := database.SeedOwner(context.Background(), store, seed); err != nil {
		t.Fatalf("SeedOwner: %v", err)
	}
	return &testAPI{t: t, handler: NewRouter(cfg, store), store: store}
}

func (a *testAPI) do(method, path, token string, body interface{}) (int, envelope) {
	a.t.Helper()
	var reader io.Reader
	switch b := body.(type) {
	case nil:
	case string:
		reader = bytes.NewBufferString(b)
	default:
		raw, err := json.Marshal(b)
		if err != nil {
			a.t.Fatalf("marshal body: %v", err)
		}
		reader = bytes.NewReader(raw)
	}

	req := httptest.NewRequest(method, path, reader)
	if reader != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	a.handler.ServeHTTP(rec, req)

	var env envelope
	if err := json.Unmarshal(rec.Body.Bytes(), &env); err != nil {
		a.t.Fatalf("%s %s: decode body %q: %v", method, path, rec.Body.String(), err)
	}
	return rec.Code, env
}

func (a *testAPI) mustDo(method, path, token string, body interface{}, wantStatus int) envelope {
	a.t.Helper()
	status, env := a.do(method, path, token, body)
	if status != wantStatus {
		a.t.Fatalf("%s %s status = %d, want %d (message %q, errors %v)", method, path, status, wantStatus, env.Message, env.Errors)
	}
	return env
}

func decodeData(t *testing.T, env envelope, dst interface{}) {
	t.Helper()
	if err := json.Unmarshal(env.Data, dst); err != nil {
		t.Fatalf("decode data %s: %v", env.Data, err)
	}
}

func (a *testAPI) login(email, password string) string {
	a.t.Helper()
	env := a.mustDo(http.MethodPost, "/api/user/login", "", map[string]string{"email": email, "password": password}, http.StatusOK)
	var data struct {
		Token string `json:"token"`
	}
	decodeData(a.t, env, &data)
	if data.Token == "" {
		a.t.Fatal("login returned no token")
	}
	return data.Token
}

func (a *testAPI) ownerToken() string {
	return a.login(ownerEmail, ownerPassword)
}

// userToken registers a user, sets its role as the owner and logs in.
func (a *testAPI) userToken(email string, role models.Role) string {
	a.t.Helper()
	env := a.mustDo(http.MethodPost, "/api/user/register", "", map[string]string{
		"name": "User", "email": email, "password": "secret12",
	}, http.StatusCreated)
	var user models.PublicUser
	decodeData(a.t, env, &user)
	if role != models.RoleMember {
		a.mustDo(http.MethodPut, "/api/user/"+user.ID+"/role", a.ownerToken(), map[string]string{"role": string(role)}, http.StatusOK)
	}
	return a.login(email, "secret12")
}

func (a *testAPI) createMember(token, name, email string) string {
	a.t.Helper()
	env := a.mustDo(http.MethodPost, "/api/teams", token, map[string]string{
		"name": name, "email": email, "designation": "Developer",
	}, http.StatusCreated)
	var m models.TeamMember
	decodeData(a.t, env, &m)
	return m.ID
}

func (a *testAPI) createProject(token, name string, members ...string) string {
	a.t.Helper()
	env := a.mustDo(http.MethodPost, "/api/projects", token, map[string]interface{}{
		"name": name, "description": "a project description", "teamMember": members,
	}, http.StatusCreated)
	var p models.ProjectView
	decodeData(a.t, env, &p)
	return p.ID
}

func futureDeadline() string {
	return time.Now().Add(72 * time.Hour).UTC().Format(time.RFC3339)
}

func (a *testAPI) createTask(token, title, projectID string, extra map[string]interface{}, members ...string) models.TaskView {
	a.t.Helper()
	body := map[string]interface{}{
		"title":           title,
		"description":     "a task description here",
		"deadline":        futureDeadline(),
		"project":         projectID,
		"assignedMembers": members,
	}
	for k, v := range extra {
		body[k] = v
	}
	env := a.mustDo(http.MethodPost, "/api/tasks", token, body, http.StatusCreated)
	var task models.TaskView
	decodeData(a.t, env, &task)
	return task
}

func hasError(env envelope, msg string) bool {
	for _, e := range env.Errors {
		if e == msg {
			return true
		}
	}
	return false
}

func TestEndToEnd(t *testing.T) {
	api := newTestAPI(t, true)

	env := api.mustDo(http.MethodPost, "/api/user/register", "", map[string]string{
		"name": "A", "email": "a@x.com", "password": "secret12",
	}, http.StatusCreated)
	var registered models.PublicUser
	decodeData(t, env, &registered)
	if registered.Role != models.RoleMember {
		t.Errorf("registered role = %s, want member", registered.Role)
	}

	token := api.login("a@x.com", "secret12")
	team := map[string]string{"name": "Bob", "email": "b@x.com", "designation": "Dev"}
	api.mustDo(http.MethodPost, "/api/teams", token, team, http.StatusForbidden)

	// The role is read on every request, so the same token gains owner rights.
	api.mustDo(http.MethodPut, "/api/user/"+registered.ID+"/role", api.ownerToken(), map[string]string{"role": "owner"}, http.StatusOK)

	env = api.mustDo(http.MethodGet, "/api/user/me", token, nil, http.StatusOK)
	var me models.PublicUser
	decodeData(t, env, &me)
	if me.Email != "a@x.com" || me.Role != models.RoleOwner {
		t.Errorf("me = %+v, want a@x.com owner", me)
	}

	bobID := api.createMember(token, "Bob", "b@x.com")
	projectID := api.createProject(token, "P1", bobID)
	task := api.createTask(token, "T1", projectID, nil, bobID)

	if task.Status != models.StatusToDo {
		t.Errorf("task status = %s, want to-do", task.Status)
	}
	if task.Project == nil || task.Project.Name != "P1" {
		t.Errorf("task project = %+v, want populated P1", task.Project)
	}
	if len(task.AssignedMembers) != 1 || task.AssignedMembers[0].Email != "b@x.com" {
		t.Errorf("assigned members = %+v, want Bob", task.AssignedMembers)
	}

	env = api.mustDo(http.MethodGet, "/api/teams/"+bobID+"/summary", "", nil, http.StatusOK)
	var summary models.MemberSummary
	decodeData(t, env, &summary)
	if summary.MemberID != bobID || summary.Projects != 1 || summary.Tasks != 1 {
		t.Errorf("summary = %+v, want 1 project 1 task", summary)
	}
	want := map[models.TaskStatus]int64{
		models.StatusToDo: 1, models.StatusInProgress: 0, models.StatusDone: 0, models.StatusCancelled: 0,
	}
	for status, n := range want {
		if got, ok := summary.Statuses[status]; !ok || got != n {
			t.Errorf("statuses[%s] = %d (present %v), want %d", status, got, ok, n)
		}
	}
}

func TestRegisterAndLoginFailures(t *testing.T) {
	api := newTestAPI(t, true)
	api.mustDo(http.MethodPost, "/api/user/register", "", map[string]string{
		"name": "Alice", "email": "Alice@X.com", "password": "secret12",
	}, http.StatusCreated)

	env := api.mustDo(http.MethodPost, "/api/user/register", "", map[string]string{
		"name": "Alice", "email": "alice@x.com", "password": "secret12",
	}, http.StatusBadRequest)
	if env.Message != "User already exists" {
		t.Errorf("duplicate register message = %q", env.Message)
	}

	env = api.mustDo(http.MethodPost, "/api/user/login", "", map[string]string{
		"email": "alice@x.com", "password": "wrong-password",
	}, http.StatusUnauthorized)
	if env.Message != "Invalid email or password" {
		t.Errorf("bad password message = %q", env.Message)
	}
	api.mustDo(http.MethodPost, "/api/user/login", "", map[string]string{
		"email": "nobody@x.com", "password": "secret12",
	}, http.StatusUnauthorized)

	// Login is case-insensitive on email.
	api.login("ALICE@x.com", "secret12")
}

func TestRoleAssignment(t *testing.T) {
	api := newTestAPI(t, true)
	admin := api.userToken("admin@x.com", models.RoleAdmin)
	owner := api.ownerToken()

	env := api.mustDo(http.MethodGet, "/api/user/me", admin, nil, http.StatusOK)
	var adminUser models.PublicUser
	decodeData(t, env, &adminUser)

	api.mustDo(http.MethodPut, "/api/user/"+adminUser.ID+"/role", admin, map[string]string{"role": "owner"}, http.StatusForbidden)

	env = api.mustDo(http.MethodPut, "/api/user/"+adminUser.ID+"/role", owner, map[string]string{"role": "boss"}, http.StatusBadRequest)
	if !hasError(env, "Role must be one of: owner, admin, member, viewer") {
		t.Errorf("bad role errors = %v", env.Errors)
	}

	api.mustDo(http.MethodPut, "/api/user/"+models.NewID()+"/role", owner, map[string]string{"role": "viewer"}, http.StatusNotFound)

	env = api.mustDo(http.MethodGet, "/api/user/me", owner, nil, http.StatusOK)
	var ownerUser models.PublicUser
	decodeData(t, env, &ownerUser)
	api.mustDo(http.MethodPut, "/api/user/"+ownerUser.ID+"/role", owner, map[string]string{"role": "viewer"}, http.StatusBadRequest)
}

func TestTeamDuplicateEmail(t *testing.T) {
	api := newTestAPI(t, true)
	token := api.ownerToken()
	api.createMember(token, "Bob", "b@x.com")

	env := api.mustDo(http.MethodPost, "/api/teams", token, map[string]string{
		"name": "Robert", "email": "B@x.com", "designation": "QA",
	}, http.StatusBadRequest)
	if env.Message != "Team member with this email already exists" {
		t.Errorf("message = %q", env.Message)
	}

	n, _ := api.store.CountTeamMembers(context.Background())
	if n != 1 {
		t.Errorf("team members = %d, want 1", n)
	}
}

func TestTeamUpdate(t *testing.T) {
	api := newTestAPI(t, true)
	token := api.ownerToken()
	bob := api.createMember(token, "Bob", "b@x.com")
	api.createMember(token, "Carol", "c@x.com")

	env := api.mustDo(http.MethodPut, "/api/teams/"+bob, token, map[string]string{"email": "c@x.com"}, http.StatusBadRequest)
	if env.Message != "Email already exists with another team member" {
		t.Errorf("conflict message = %q", env.Message)
	}

	env = api.mustDo(http.MethodPut, "/api/teams/"+bob, token, map[string]string{"designation": "Lead", "email": "b@x.com"}, http.StatusOK)
	var m models.TeamMember
	decodeData(t, env, &m)
	if m.Designation != "Lead" || m.Name != "Bob" {
		t.Errorf("updated = %+v, want Bob the Lead", m)
	}

	env = api.mustDo(http.MethodPut, "/api/teams/"+models.NewID(), token, map[string]string{"name": "Ghost"}, http.StatusNotFound)
	if env.Message != "Team member not found" {
		t.Errorf("missing member message = %q", env.Message)
	}
}

func TestProjectRejectsUnknownMember(t *testing.T) {
	api := newTestAPI(t, true)
	token := api.ownerToken()
	bob := api.createMember(token, "Bob", "b@x.com")

	env := api.mustDo(http.MethodPost, "/api/projects", token, map[string]interface{}{
		"name": "P1", "description": "a project description", "teamMember": []string{bob, models.NewID()},
	}, http.StatusBadRequest)
	if env.Message != "One or more team members do not exist" {
		t.Errorf("message = %q", env.Message)
	}

	n, _ := api.store.CountProjects(context.Background())
	if n != 0 {
		t.Errorf("projects = %d, want 0", n)
	}
}

func TestUpdateRejectsUnknownReferences(t *testing.T) {
	api := newTestAPI(t, true)
	token := api.ownerToken()
	ctx := context.Background()
	bob := api.createMember(token, "Bob", "b@x.com")
	project := api.createProject(token, "P1", bob)
	task := api.createTask(token, "T1", project, nil, bob)
	missing := models.NewID()

	env := api.mustDo(http.MethodPut, "/api/projects/"+project, token, map[string]interface{}{
		"name": "Renamed", "teamMember": []string{bob, missing},
	}, http.StatusBadRequest)
	if env.Message != "One or more team members do not exist" {
		t.Errorf("project update message = %q", env.Message)
	}
	stored, err := api.store.ProjectByID(ctx, project)
	if err != nil {
		t.Fatalf("ProjectByID: %v", err)
	}
	if stored.Name != "P1" || len(stored.TeamMemberIDs) != 1 || stored.TeamMemberIDs[0] != bob {
		t.Errorf("project after rejected update = %+v", stored)
	}

	env = api.mustDo(http.MethodPut, "/api/tasks/"+task.ID, token, map[string]interface{}{
		"title": "Changed", "project": missing,
	}, http.StatusBadRequest)
	if env.Message != "Project does not exist" {
		t.Errorf("task project update message = %q", env.Message)
	}

	env = api.mustDo(http.MethodPut, "/api/tasks/"+task.ID, token, map[string]interface{}{
		"title": "Changed", "assignedMembers": []string{missing},
	}, http.StatusBadRequest)
	if env.Message != "One or more team members do not exist" {
		t.Errorf("task members update message = %q", env.Message)
	}

	storedTask, err := api.store.TaskByID(ctx, task.ID)
	if err != nil {
		t.Fatalf("TaskByID: %v", err)
	}
	if storedTask.Title != "T1" || storedTask.ProjectID != project ||
		len(storedTask.AssignedMemberIDs) != 1 || storedTask.AssignedMemberIDs[0] != bob {
		t.Errorf("task after rejected updates = %+v", storedTask)
	}

	// Upper-case IDs are rejected before any lookup.
	api.mustDo(http.MethodGet, "/api/teams/"+strings.ToUpper(bob), "", nil, http.StatusBadRequest)
}

func TestProjectNameConflict(t *testing.T) {
	api := newTestAPI(t, true)
	token := api.ownerToken()
	bob := api.createMember(token, "Bob", "b@x.com")
	api.createProject(token, "P1", bob)
	p2 := api.createProject(token, "P2", bob)

	env := api.mustDo(http.MethodPost, "/api/projects", token, map[string]interface{}{
		"name": "P1", "description": "a project description", "teamMember": []string{bob},
	}, http.StatusBadRequest)
	if env.Message != "Project with this name already exists" {
		t.Errorf("create conflict message = %q", env.Message)
	}

	api.mustDo(http.MethodPut, "/api/projects/"+p2, token, map[string]string{"name": "P1"}, http.StatusBadRequest)
	api.mustDo(http.MethodPut, "/api/projects/"+p2, token, map[string]string{"name": "P2"}, http.StatusOK)
}

func TestPagination(t *testing.T) {
	api := newTestAPI(t, true)
	token := api.ownerToken()
	for i := 0; i < 7; i++ {
		api.createMember(token, fmt.Sprintf("Member %d", i), fmt.Sprintf("m%d@x.com", i))
	}

	type page struct {
		Page         int                 `json:"page"`
		Limit        int                 `json:"limit"`
		TotalMembers int64               `json:"totalMembers"`
		TotalPages   int64               `json:"totalPages"`
		Members      []models.TeamMember `json:"members"`
	}
	list := func(query string) page {
		t.Helper()
		var p page
		decodeData(t, api.mustDo(http.MethodGet, "/api/teams"+query, "", nil, http.StatusOK), &p)
		return p
	}

	tests := []struct {
		query     string
		page      int
		limit     int
		pages     int64
		itemCount int
	}{
		{"?page=1&limit=3", 1, 3, 3, 3},
		{"?page=3&limit=3", 3, 3, 3, 1},
		{"?page=9&limit=3", 9, 3, 3, 0},
		{"?page=0&limit=abc", 1, 10, 1, 7},
		{"", 1, 10, 1, 7},
		{"?limit=5000", 1, 1000, 1, 7},
		{"?page=9223372036854775807&limit=10", models.MaxPage, 10, 1, 0},
	}
	for _, tt := range tests {
		p := list(tt.query)
		if p.Page != tt.page || p.Limit != tt.limit || p.TotalPages != tt.pages || p.TotalMembers != 7 {
			t.Errorf("GET /api/teams%s = page %d limit %d pages %d total %d, want %d/%d/%d/7",
				tt.query, p.Page, p.Limit, p.TotalPages, p.TotalMembers, tt.page, tt.limit, tt.pages)
		}
		if len(p.Members) != tt.itemCount {
			t.Errorf("GET /api/teams%s returned %d members, want %d", tt.query, len(p.Members), tt.itemCount)
		}
		if p.Members == nil {
			t.Errorf("GET /api/teams%s members is null, want []", tt.query)
		}
	}
}

func TestProjectSearch(t *testing.T) {
	api := newTestAPI(t, true)
	token := api.ownerToken()
	bob := api.createMember(token, "Bob", "b@x.com")
	api.createProject(token, "Project Alpha", bob)
	api.createProject(token, "Project Beta", bob)

	var data struct {
		TotalProjects int64                `json:"totalProjects"`
		Projects      []models.ProjectView `json:"projects"`
	}
	decodeData(t, api.mustDo(http.MethodGet, "/api/projects?search=alpha", "", nil, http.StatusOK), &data)
	if data.TotalProjects != 1 || len(data.Projects) != 1 || data.Projects[0].Name != "Project Alpha" {
		t.Fatalf("search alpha = %+v", data)
	}
	if len(data.Projects[0].TeamMember) != 1 || data.Projects[0].TeamMember[0].Name != "Bob" {
		t.Errorf("populated members = %+v, want Bob", data.Projects[0].TeamMember)
	}
}

func TestTaskStatusValidation(t *testing.T) {
	api := newTestAPI(t, true)
	token := api.ownerToken()
	bob := api.createMember(token, "Bob", "b@x.com")
	project := api.createProject(token, "P1", bob)

	env := api.mustDo(http.MethodPost, "/api/tasks", token, map[string]interface{}{
		"title": "T1", "description": "a task description here", "deadline": futureDeadline(),
		"project": project, "assignedMembers": []string{bob}, "status": "blocked",
	}, http.StatusBadRequest)
	if env.Message != "Validation error" || !hasError(env, statusMessage) {
		t.Errorf("create with bad status = %q %v", env.Message, env.Errors)
	}

	task := api.createTask(token, "T1", project, map[string]interface{}{"status": "in-progress"}, bob)
	if task.Status != models.StatusInProgress {
		t.Errorf("status = %s, want in-progress", task.Status)
	}

	env = api.mustDo(http.MethodPut, "/api/tasks/"+task.ID, token, map[string]string{"status": "paused"}, http.StatusBadRequest)
	if !hasError(env, statusMessage) {
		t.Errorf("update with bad status errors = %v", env.Errors)
	}

	env = api.mustDo(http.MethodPut, "/api/tasks/"+task.ID, token, map[string]string{"status": "done"}, http.StatusOK)
	var updated models.TaskView
	decodeData(t, env, &updated)
	if updated.Status != models.StatusDone || updated.Title != "T1" {
		t.Errorf("updated = %+v, want done T1", updated)
	}
}

func TestTaskCreateValidation(t *testing.T) {
	api := newTestAPI(t, true)
	token := api.ownerToken()
	bob := api.createMember(token, "Bob", "b@x.com")
	project := api.createProject(token, "P1", bob)

	env := api.mustDo(http.MethodPost, "/api/tasks", token, map[string]interface{}{
		"title": "T", "description": "short", "deadline": "2001-01-01",
		"project": "nope", "assignedMembers": []string{},
	}, http.StatusBadRequest)
	for _, msg := range []string{
		"Task title must be at least 2 characters long",
		"Description must be at least 10 characters long",
		"Deadline must be a future date",
		"Invalid project ID format",
		"At least one team member must be assigned",
	} {
		if !hasError(env, msg) {
			t.Errorf("errors %v missing %q", env.Errors, msg)
		}
	}

	env = api.mustDo(http.MethodPost, "/api/tasks", token, map[string]interface{}{
		"title": "T1", "description": "a task description here", "deadline": futureDeadline(),
		"project": models.NewID(), "assignedMembers": []string{bob},
	}, http.StatusBadRequest)
	if env.Message != "Project does not exist" {
		t.Errorf("unknown project message = %q", env.Message)
	}

	// Past deadlines are accepted on update.
	task := api.createTask(token, "T1", project, nil, bob)
	api.mustDo(http.MethodPut, "/api/tasks/"+task.ID, token, map[string]string{"deadline": "2001-01-01"}, http.StatusOK)
}

func TestTaskFilters(t *testing.T) {
	api := newTestAPI(t, true)
	token := api.ownerToken()
	bob := api.createMember(token, "Bob", "b@x.com")
	carol := api.createMember(token, "Carol", "c@x.com")
	p1 := api.createProject(token, "P1", bob)
	p2 := api.createProject(token, "P2", carol)

	day := time.Now().AddDate(0, 0, 10).UTC()
	dayStr := day.Format("2006-01-02")
	evening := time.Date(day.Year(), day.Month(), day.Day(), 18, 0, 0, 0, time.UTC)

	api.createTask(token, "Write docs", p1, map[string]interface{}{"deadline": evening.Format(time.RFC3339)}, bob)
	api.createTask(token, "Fix bug", p1, map[string]interface{}{"status": "done"}, bob, carol)
	api.createTask(token, "Deploy", p2, nil, carol)

	total := func(query string) int64 {
		t.Helper()
		var data struct {
			TotalTasks int64             `json:"totalTasks"`
			Tasks      []models.TaskView `json:"tasks"`
		}
		decodeData(t, api.mustDo(http.MethodGet, "/api/tasks"+query, "", nil, http.StatusOK), &data)
		return data.TotalTasks
	}

	tests := []struct {
		query string
		want  int64
	}{
		{"", 3},
		{"?project=" + p1, 2},
		{"?member=" + carol, 2},
		{"?status=done", 1},
		{"?search=DOCS", 1},
		{"?startDate=" + dayStr + "&endDate=" + dayStr, 1},
		{"?endDate=" + dayStr, 3},
		{"?startDate=" + day.AddDate(0, 0, 1).Format("2006-01-02"), 0},
	}
	for _, tt := range tests {
		if got := total(tt.query); got != tt.want {
			t.Errorf("GET /api/tasks%s total = %d, want %d", tt.query, got, tt.want)
		}
	}

	env := api.mustDo(http.MethodGet, "/api/tasks?status=later&member=123&startDate=soon", "", nil, http.StatusBadRequest)
	for _, msg := range []string{statusMessage, "Invalid team member ID format", "Start date must be a valid date"} {
		if !hasError(env, msg) {
			t.Errorf("query errors %v missing %q", env.Errors, msg)
		}
	}
}

func TestSummaryForIdleMember(t *testing.T) {
	api := newTestAPI(t, true)
	token := api.ownerToken()
	idle := api.createMember(token, "Idle", "i@x.com")

	var summary models.MemberSummary
	decodeData(t, api.mustDo(http.MethodGet, "/api/teams/"+idle+"/summary", "", nil, http.StatusOK), &summary)
	if summary.Projects != 0 || summary.Tasks != 0 || len(summary.Statuses) != len(models.TaskStatuses) {
		t.Errorf("summary = %+v, want all zero", summary)
	}
	for status, n := range summary.Statuses {
		if n != 0 {
			t.Errorf("statuses[%s] = %d, want 0", status, n)
		}
	}

	api.mustDo(http.MethodGet, "/api/teams/"+models.NewID()+"/summary", "", nil, http.StatusNotFound)
}

func TestDeleteProjectLeavesTask(t *testing.T) {
	api := newTestAPI(t, true)
	token := api.ownerToken()
	bob := api.createMember(token, "Bob", "b@x.com")
	project := api.createProject(token, "P1", bob)
	task := api.createTask(token, "T1", project, nil, bob)

	env := api.mustDo(http.MethodDelete, "/api/projects/"+project, token, nil, http.StatusOK)
	if env.Message != "Project deleted successfully" {
		t.Errorf("delete message = %q", env.Message)
	}
	api.mustDo(http.MethodDelete, "/api/projects/"+project, token, nil, http.StatusNotFound)
	api.mustDo(http.MethodDelete, "/api/teams/"+bob, token, nil, http.StatusOK)

	env = api.mustDo(http.MethodGet, "/api/tasks/"+task.ID, "", nil, http.StatusOK)
	var got struct {
		Project         *models.ProjectRef `json:"project"`
		AssignedMembers []models.MemberRef `json:"assignedMembers"`
	}
	decodeData(t, env, &got)
	if got.Project != nil {
		t.Errorf("project = %+v, want null for deleted project", got.Project)
	}
	if got.AssignedMembers == nil || len(got.AssignedMembers) != 0 {
		t.Errorf("assigned members = %v, want empty list", got.AssignedMembers)
	}

	stored, err := api.store.TaskByID(context.Background(), task.ID)
	if err != nil || stored.ProjectID != project {
		t.Errorf("stored task project = %v (%v), want dangling %s", stored, err, project)
	}
}

func TestAuthorization(t *testing.T) {
	api := newTestAPI(t, true)
	member := api.userToken("m@x.com", models.RoleMember)
	viewer := api.userToken("v@x.com", models.RoleViewer)
	admin := api.userToken("admin@x.com", models.RoleAdmin)
	body := map[string]string{"name": "Bob", "email": "b@x.com", "designation": "Dev"}

	env := api.mustDo(http.MethodPost, "/api/teams", "", body, http.StatusUnauthorized)
	if env.Message != "Authentication required" {
		t.Errorf("anonymous message = %q", env.Message)
	}
	api.mustDo(http.MethodPost, "/api/teams", "garbage", body, http.StatusUnauthorized)
	env = api.mustDo(http.MethodPost, "/api/teams", member, body, http.StatusForbidden)
	if env.Message != "Forbidden" {
		t.Errorf("member message = %q", env.Message)
	}
	api.mustDo(http.MethodPost, "/api/teams", viewer, body, http.StatusForbidden)
	id := api.createMember(admin, "Bob", "b@x.com")

	api.mustDo(http.MethodGet, "/api/teams/"+id, "", nil, http.StatusOK)
	api.mustDo(http.MethodDelete, "/api/teams/"+id, member, nil, http.StatusForbidden)
	api.mustDo(http.MethodDelete, "/api/teams/"+id, admin, nil, http.StatusOK)
	api.mustDo(http.MethodGet, "/api/dashboard/stats", "", nil, http.StatusUnauthorized)
	api.mustDo(http.MethodGet, "/api/dashboard/stats", viewer, nil, http.StatusOK)
}

func TestPrivateReads(t *testing.T) {
	api := newTestAPI(t, false)
	viewer := api.userToken("v@x.com", models.RoleViewer)

	api.mustDo(http.MethodGet, "/api/teams", "", nil, http.StatusUnauthorized)
	api.mustDo(http.MethodGet, "/api/tasks", "", nil, http.StatusUnauthorized)
	api.mustDo(http.MethodGet, "/api/teams", viewer, nil, http.StatusOK)
	api.mustDo(http.MethodGet, "/api/projects", viewer, nil, http.StatusOK)
}

func TestRequestValidation(t *testing.T) {
	api := newTestAPI(t, true)
	token := api.ownerToken()

	env := api.mustDo(http.MethodPost, "/api/teams", token, map[string]string{}, http.StatusBadRequest)
	for _, msg := range []string{"Name is required", "Email is required", "Designation is required"} {
		if !hasError(env, msg) {
			t.Errorf("errors %v missing %q", env.Errors, msg)
		}
	}

	env = api.mustDo(http.MethodPost, "/api/teams", token, map[string]string{
		"name": "Bob", "email": "b@x.com", "designation": "Dev", "salary": "lots",
	}, http.StatusBadRequest)
	if !hasError(env, `"salary" is not allowed`) {
		t.Errorf("unknown field errors = %v", env.Errors)
	}

	api.mustDo(http.MethodPost, "/api/teams", token, `{"name":`, http.StatusBadRequest)

	env = api.mustDo(http.MethodGet, "/api/teams/123", "", nil, http.StatusBadRequest)
	if env.Message != "Invalid ID format" {
		t.Errorf("bad id message = %q", env.Message)
	}
	env = api.mustDo(http.MethodGet, "/api/projects/"+models.NewID(), "", nil, http.StatusNotFound)
	if env.Message != "Project not found" {
		t.Errorf("missing project message = %q", env.Message)
	}
	api.mustDo(http.MethodGet, "/api/tasks/"+models.NewID(), "", nil, http.StatusNotFound)
}

func TestDashboard(t *testing.T) {
	api := newTestAPI(t, true)
	owner := api.ownerToken()
	member := api.userToken("bob@x.com", models.RoleMember)

	env := api.mustDo(http.MethodGet, "/api/dashboard/me", member, nil, http.StatusNotFound)
	if env.Message != "No matching team member profile found" {
		t.Errorf("no profile message = %q", env.Message)
	}

	bob := api.createMember(owner, "Bob", "bob@x.com")
	carol := api.createMember(owner, "Carol", "carol@x.com")
	project := api.createProject(owner, "P1", bob, carol)
	api.createTask(owner, "T1", project, nil, bob)
	api.createTask(owner, "T2", project, map[string]interface{}{"status": "done"}, carol)

	var stats models.DashboardStats
	decodeData(t, api.mustDo(http.MethodGet, "/api/dashboard/stats", owner, nil, http.StatusOK), &stats)
	if stats.Projects != 1 || stats.Teams != 2 || stats.Tasks != 2 {
		t.Errorf("stats = %+v, want 1 project 2 members 2 tasks", stats)
	}
	if stats.TasksByStatus[models.StatusDone] != 1 || stats.TasksByStatus[models.StatusCancelled] != 0 {
		t.Errorf("tasksByStatus = %v", stats.TasksByStatus)
	}

	var mine struct {
		Member  models.TeamMember    `json:"member"`
		Summary models.MemberSummary `json:"summary"`
	}
	decodeData(t, api.mustDo(http.MethodGet, "/api/dashboard/me", member, nil, http.StatusOK), &mine)
	if mine.Member.ID != bob || mine.Summary.Projects != 1 || mine.Summary.Tasks != 1 {
		t.Errorf("member dashboard = %+v", mine)
	}
}

func TestHealthAndUnknownRoutes(t *testing.T) {
	api := newTestAPI(t, true)

	for _, path := range []string{"/health", "/api/health"} {
		env := api.mustDo(http.MethodGet, path, "", nil, http.StatusOK)
		if !env.Success || env.Message != "Server is running" {
			t.Errorf("GET %s = %+v", path, env)
		}
	}

	env := api.mustDo(http.MethodGet, "/api/nowhere", "", nil, http.StatusNotFound)
	if env.Message != "Route not found" {
		t.Errorf("unknown route message = %q", env.Message)
	}
	api.mustDo(http.MethodPatch, "/api/teams", "", nil, http.StatusMethodNotAllowed)
}

func TestExportCSV(t *testing.T) {
	api := newTestAPI(t, true)
	token := api.ownerToken()
	bob := api.createMember(token, "Bob", "b@x.com")
	carol := api.createMember(token, "Carol", "c@x.com")
	project := api.createProject(token, "P1", bob)
	api.createTask(token, "Write docs", project, nil, bob, carol)
	api.createTask(token, "Fix bug", project, map[string]interface{}{"status": "done"}, bob)

	req := httptest.NewRequest(http.MethodGet, "/api/tasks/export?status=to-do", nil)
	rec := httptest.NewRecorder()
	api.handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200: %s", rec.Code, rec.Body.String())
	}
	if ct := rec.Header().Get("Content-Type"); ct != "text/csv" {
		t.Errorf("Content-Type = %q, want text/csv", ct)
	}

	rows, err := csv.NewReader(rec.Body).ReadAll()
	if err != nil {
		t.Fatalf("parse csv: %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("rows = %d, want header plus one task", len(rows))
	}
	if rows[0][0] != "Title" || rows[1][0] != "Write docs" || rows[1][1] != "P1" || rows[1][2] != "Bob; Carol" {
		t.Errorf("rows = %v", rows)
	}
}

func TestExportCSVStopsWhenClientGone(t *testing.T) {
	api := newTestAPI(t, true)
	token := api.ownerToken()
	bob := api.createMember(token, "Bob", "b@x.com")
	project := api.createProject(token, "P1", bob)
	api.createTask(token, "Write docs", project, nil, bob)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	req := httptest.NewRequest(http.MethodGet, "/api/tasks/export", nil).WithContext(ctx)
	rec := httptest.NewRecorder()
	NewTaskHandler(nil, api.store).ExportCSV(rec, req)

	rows, err := csv.NewReader(rec.Body).ReadAll()
	if err != nil {
		t.Fatalf("parse csv: %v", err)
	}
	if len(rows) != 0 {
		t.Errorf("rows = %v, want nothing written after the client left", rows)
	}
}
