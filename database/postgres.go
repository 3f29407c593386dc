package database

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"taskhub/models"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"gorm.io/gorm/logger"
)

// PostgresStore keeps entities in relational tables. Member sets live in
// join tables with no foreign key to team_members, and tasks.project_id has
// no foreign key either, so deleting a member or project never cascades.
type PostgresStore struct {
	db *gorm.DB
}

type userRow struct {
	ID           string `gorm:"primaryKey;size:24"`
	CreatedAt    time.Time
	UpdatedAt    time.Time
	Name         string `gorm:"not null;size:50"`
	Email        string `gorm:"uniqueIndex;not null;size:254"`
	PasswordHash string `gorm:"not null"`
	Role         string `gorm:"not null;size:20;default:member"`
}

func (userRow) TableName() string { return "users" }

type teamMemberRow struct {
	ID          string `gorm:"primaryKey;size:24"`
	CreatedAt   time.Time
	UpdatedAt   time.Time
	Name        string `gorm:"not null;size:50;index"`
	Email       string `gorm:"uniqueIndex;not null;size:254"`
	Designation string `gorm:"not null;size:50"`
}

func (teamMemberRow) TableName() string { return "team_members" }

type projectRow struct {
	ID          string `gorm:"primaryKey;size:24"`
	CreatedAt   time.Time
	UpdatedAt   time.Time
	Name        string             `gorm:"uniqueIndex;not null;size:100"`
	Description string             `gorm:"not null;size:500"`
	Members     []projectMemberRow `gorm:"foreignKey:ProjectID;constraint:OnDelete:CASCADE"`
}

func (projectRow) TableName() string { return "projects" }

type projectMemberRow struct {
	ProjectID    string `gorm:"primaryKey;size:24"`
	TeamMemberID string `gorm:"primaryKey;size:24;index"`
	Position     int    `gorm:"not null"`
}

func (projectMemberRow) TableName() string { return "project_members" }

type taskRow struct {
	ID          string `gorm:"primaryKey;size:24"`
	CreatedAt   time.Time
	UpdatedAt   time.Time
	Title       string          `gorm:"not null;size:100"`
	Description string          `gorm:"not null;size:500"`
	Deadline    time.Time       `gorm:"not null;index"`
	ProjectID   string          `gorm:"not null;size:24;index"`
	Status      string          `gorm:"not null;size:20;default:to-do;index"`
	Members     []taskMemberRow `gorm:"foreignKey:TaskID;constraint:OnDelete:CASCADE"`
}

func (taskRow) TableName() string { return "tasks" }

type taskMemberRow struct {
	TaskID       string `gorm:"primaryKey;size:24"`
	TeamMemberID string `gorm:"primaryKey;size:24;index"`
	Position     int    `gorm:"not null"`
}

func (taskMemberRow) TableName() string { return "task_members" }

// OpenPostgres connects through gorm and migrates the schema.
func OpenPostgres(dsn string, log logger.Writer) (*PostgresStore, error) {
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: logger.New(log, logger.Config{
			SlowThreshold:             200 * time.Millisecond,
			LogLevel:                  logger.Warn,
			IgnoreRecordNotFoundError: true,
		}),
		TranslateError: true,
	})
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}

	err = db.AutoMigrate(&userRow{}, &teamMemberRow{}, &projectRow{}, &projectMemberRow{}, &taskRow{}, &taskMemberRow{})
	if err != nil {
		return nil, fmt.Errorf("migrate postgres: %w", err)
	}

	return &PostgresStore{db: db}, nil
}

func (s *PostgresStore) Ping(ctx context.Context) error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

func (s *PostgresStore) Close(ctx context.Context) error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// Truncate empties every table. Used by integration tests.
func (s *PostgresStore) Truncate(ctx context.Context) error {
	return s.db.WithContext(ctx).Exec(
		"TRUNCATE task_members, tasks, project_members, projects, team_members, users",
	).Error
}

func translateGormError(err error, what string) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		return fmt.Errorf("%s: %w", what, ErrNotFound)
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return fmt.Errorf("%s: %w", what, ErrDuplicate)
	default:
		return fmt.Errorf("%s: %w", what, err)
	}
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// searchScope adds a case-insensitive substring match over columns.
func searchScope(search string, columns ...string) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		if search == "" {
			return db
		}
		pattern := "%" + likeEscaper.Replace(search) + "%"
		conds := make([]string, 0, len(columns))
		args := make([]interface{}, 0, len(columns))
		for _, c := range columns {
			conds = append(conds, c+" ILIKE ?")
			args = append(args, pattern)
		}
		return db.Where(strings.Join(conds, " OR "), args...)
	}
}

func pageScope(params models.ListParams) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		return db.Order("created_at desc, id desc").Offset(params.Skip()).Limit(params.Limit)
	}
}

func orderedMembers(db *gorm.DB) *gorm.DB {
	return db.Order("position asc")
}

// Users

func (r userRow) model() *models.User {
	return &models.User{
		ID:           r.ID,
		Name:         r.Name,
		Email:        r.Email,
		PasswordHash: r.PasswordHash,
		Role:         models.Role(r.Role),
		CreatedAt:    r.CreatedAt,
		UpdatedAt:    r.UpdatedAt,
	}
}

func (s *PostgresStore) CreateUser(ctx context.Context, user *models.User) error {
	row := userRow{
		ID:           models.NewID(),
		Name:         user.Name,
		Email:        user.Email,
		PasswordHash: user.PasswordHash,
		Role:         string(user.Role),
	}
	if err := s.db.WithContext(ctx).Create(&row).Error; err != nil {
		return translateGormError(err, "insert user")
	}
	*user = *row.model()
	return nil
}

func (s *PostgresStore) UserByID(ctx context.Context, id string) (*models.User, error) {
	var row userRow
	if err := s.db.WithContext(ctx).First(&row, "id = ?", id).Error; err != nil {
		return nil, translateGormError(err, "find user")
	}
	return row.model(), nil
}

func (s *PostgresStore) UserByEmail(ctx context.Context, email string) (*models.User, error) {
	var row userRow
	if err := s.db.WithContext(ctx).First(&row, "email = ?", email).Error; err != nil {
		return nil, translateGormError(err, "find user")
	}
	return row.model(), nil
}

func (s *PostgresStore) UpdateUserRole(ctx context.Context, id string, role models.Role) (*models.User, error) {
	res := s.db.WithContext(ctx).Model(&userRow{}).Where("id = ?", id).Update("role", string(role))
	if res.Error != nil {
		return nil, translateGormError(res.Error, "update user role")
	}
	if res.RowsAffected == 0 {
		return nil, fmt.Errorf("update user role: %w", ErrNotFound)
	}
	return s.UserByID(ctx, id)
}

// Team members

func (r teamMemberRow) model() models.TeamMember {
	return models.TeamMember{
		ID:          r.ID,
		Name:        r.Name,
		Email:       r.Email,
		Designation: r.Designation,
		CreatedAt:   r.CreatedAt,
		UpdatedAt:   r.UpdatedAt,
	}
}

func (s *PostgresStore) CreateTeamMember(ctx context.Context, member *models.TeamMember) error {
	row := teamMemberRow{
		ID:          models.NewID(),
		Name:        member.Name,
		Email:       member.Email,
		Designation: member.Designation,
	}
	if err := s.db.WithContext(ctx).Create(&row).Error; err != nil {
		return translateGormError(err, "insert team member")
	}
	*member = row.model()
	return nil
}

func (s *PostgresStore) TeamMemberByID(ctx context.Context, id string) (*models.TeamMember, error) {
	var row teamMemberRow
	if err := s.db.WithContext(ctx).First(&row, "id = ?", id).Error; err != nil {
		return nil, translateGormError(err, "find team member")
	}
	m := row.model()
	return &m, nil
}

func (s *PostgresStore) TeamMemberByEmail(ctx context.Context, email string) (*models.TeamMember, error) {
	var row teamMemberRow
	if err := s.db.WithContext(ctx).First(&row, "email = ?", email).Error; err != nil {
		return nil, translateGormError(err, "find team member")
	}
	m := row.model()
	return &m, nil
}

func (s *PostgresStore) TeamMembersByIDs(ctx context.Context, ids []string) ([]models.TeamMember, error) {
	ids = models.UniqueIDs(ids)
	if len(ids) == 0 {
		return nil, nil
	}
	var rows []teamMemberRow
	if err := s.db.WithContext(ctx).Where("id IN ?", ids).Find(&rows).Error; err != nil {
		return nil, translateGormError(err, "find team members")
	}
	out := make([]models.TeamMember, 0, len(rows))
	for _, r := range rows {
		out = append(out, r.model())
	}
	return out, nil
}

func (s *PostgresStore) ListTeamMembers(ctx context.Context, params models.ListParams) ([]models.TeamMember, int64, error) {
	search := searchScope(params.Search, "name", "email", "designation")

	var total int64
	if err := s.db.WithContext(ctx).Model(&teamMemberRow{}).Scopes(search).Count(&total).Error; err != nil {
		return nil, 0, translateGormError(err, "count team members")
	}
	var rows []teamMemberRow
	if err := s.db.WithContext(ctx).Scopes(search, pageScope(params)).Find(&rows).Error; err != nil {
		return nil, 0, translateGormError(err, "list team members")
	}

	out := make([]models.TeamMember, 0, len(rows))
	for _, r := range rows {
		out = append(out, r.model())
	}
	return out, total, nil
}

func (s *PostgresStore) UpdateTeamMember(ctx context.Context, id string, update models.TeamMemberUpdate) (*models.TeamMember, error) {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var row teamMemberRow
		if err := tx.First(&row, "id = ?", id).Error; err != nil {
			return err
		}
		changes := map[string]interface{}{}
		if update.Name != nil {
			changes["name"] = *update.Name
		}
		if update.Email != nil {
			changes["email"] = *update.Email
		}
		if update.Designation != nil {
			changes["designation"] = *update.Designation
		}
		if len(changes) == 0 {
			return nil
		}
		return tx.Model(&row).Updates(changes).Error
	})
	if err != nil {
		return nil, translateGormError(err, "update team member")
	}
	return s.TeamMemberByID(ctx, id)
}

func (s *PostgresStore) DeleteTeamMember(ctx context.Context, id string) error {
	res := s.db.WithContext(ctx).Delete(&teamMemberRow{}, "id = ?", id)
	if res.Error != nil {
		return translateGormError(res.Error, "delete team member")
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("delete team member: %w", ErrNotFound)
	}
	return nil
}

func (s *PostgresStore) CountTeamMembers(ctx context.Context) (int64, error) {
	var n int64
	err := s.db.WithContext(ctx).Model(&teamMemberRow{}).Count(&n).Error
	return n, translateGormError(err, "count team members")
}

// Projects

func (r projectRow) model() models.Project {
	ids := make([]string, 0, len(r.Members))
	for _, m := range r.Members {
		ids = append(ids, m.TeamMemberID)
	}
	return models.Project{
		ID:            r.ID,
		Name:          r.Name,
		Description:   r.Description,
		TeamMemberIDs: ids,
		CreatedAt:     r.CreatedAt,
		UpdatedAt:     r.UpdatedAt,
	}
}

func projectMembers(projectID string, ids []string) []projectMemberRow {
	rows := make([]projectMemberRow, 0, len(ids))
	for i, id := range models.UniqueIDs(ids) {
		rows = append(rows, projectMemberRow{ProjectID: projectID, TeamMemberID: id, Position: i})
	}
	return rows
}

func (s *PostgresStore) CreateProject(ctx context.Context, project *models.Project) error {
	id := models.NewID()
	row := projectRow{
		ID:          id,
		Name:        project.Name,
		Description: project.Description,
		Members:     projectMembers(id, project.TeamMemberIDs),
	}
	if err := s.db.WithContext(ctx).Create(&row).Error; err != nil {
		return translateGormError(err, "insert project")
	}
	*project = row.model()
	return nil
}

func (s *PostgresStore) findProject(ctx context.Context, query string, arg interface{}) (*models.Project, error) {
	var row projectRow
	err := s.db.WithContext(ctx).Preload("Members", orderedMembers).First(&row, query, arg).Error
	if err != nil {
		return nil, translateGormError(err, "find project")
	}
	p := row.model()
	return &p, nil
}

func (s *PostgresStore) ProjectByID(ctx context.Context, id string) (*models.Project, error) {
	return s.findProject(ctx, "id = ?", id)
}

func (s *PostgresStore) ProjectByName(ctx context.Context, name string) (*models.Project, error) {
	return s.findProject(ctx, "name = ?", name)
}

func (s *PostgresStore) ProjectsByIDs(ctx context.Context, ids []string) ([]models.Project, error) {
	ids = models.UniqueIDs(ids)
	if len(ids) == 0 {
		return nil, nil
	}
	var rows []projectRow
	err := s.db.WithContext(ctx).Preload("Members", orderedMembers).Where("id IN ?", ids).Find(&rows).Error
	if err != nil {
		return nil, translateGormError(err, "find projects")
	}
	out := make([]models.Project, 0, len(rows))
	for _, r := range rows {
		out = append(out, r.model())
	}
	return out, nil
}

func (s *PostgresStore) ListProjects(ctx context.Context, params models.ListParams) ([]models.Project, int64, error) {
	search := searchScope(params.Search, "name", "description")

	var total int64
	if err := s.db.WithContext(ctx).Model(&projectRow{}).Scopes(search).Count(&total).Error; err != nil {
		return nil, 0, translateGormError(err, "count projects")
	}
	var rows []projectRow
	err := s.db.WithContext(ctx).Preload("Members", orderedMembers).Scopes(search, pageScope(params)).Find(&rows).Error
	if err != nil {
		return nil, 0, translateGormError(err, "list projects")
	}

	out := make([]models.Project, 0, len(rows))
	for _, r := range rows {
		out = append(out, r.model())
	}
	return out, total, nil
}

func (s *PostgresStore) UpdateProject(ctx context.Context, id string, update models.ProjectUpdate) (*models.Project, error) {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var row projectRow
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&row, "id = ?", id).Error; err != nil {
			return err
		}
		changes := map[string]interface{}{"updated_at": time.Now()}
		if update.Name != nil {
			changes["name"] = *update.Name
		}
		if update.Description != nil {
			changes["description"] = *update.Description
		}
		if err := tx.Model(&row).Updates(changes).Error; err != nil {
			return err
		}
		if update.TeamMemberIDs == nil {
			return nil
		}
		if err := tx.Where("project_id = ?", id).Delete(&projectMemberRow{}).Error; err != nil {
			return err
		}
		members := projectMembers(id, update.TeamMemberIDs)
		if len(members) == 0 {
			return nil
		}
		return tx.Create(&members).Error
	})
	if err != nil {
		return nil, translateGormError(err, "update project")
	}
	return s.ProjectByID(ctx, id)
}

func (s *PostgresStore) DeleteProject(ctx context.Context, id string) error {
	var affected int64
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("project_id = ?", id).Delete(&projectMemberRow{}).Error; err != nil {
			return err
		}
		res := tx.Delete(&projectRow{}, "id = ?", id)
		affected = res.RowsAffected
		return res.Error
	})
	if err != nil {
		return translateGormError(err, "delete project")
	}
	if affected == 0 {
		return fmt.Errorf("delete project: %w", ErrNotFound)
	}
	return nil
}

func (s *PostgresStore) CountProjects(ctx context.Context) (int64, error) {
	var n int64
	err := s.db.WithContext(ctx).Model(&projectRow{}).Count(&n).Error
	return n, translateGormError(err, "count projects")
}

func (s *PostgresStore) CountProjectsWithMember(ctx context.Context, memberID string) (int64, error) {
	var n int64
	err := s.db.WithContext(ctx).Model(&projectMemberRow{}).
		Where("team_member_id = ?", memberID).
		Distinct("project_id").
		Count(&n).Error
	return n, translateGormError(err, "count member projects")
}

// Tasks

func (r taskRow) model() models.Task {
	ids := make([]string, 0, len(r.Members))
	for _, m := range r.Members {
		ids = append(ids, m.TeamMemberID)
	}
	return models.Task{
		ID:                r.ID,
		Title:             r.Title,
		Description:       r.Description,
		Deadline:          r.Deadline,
		ProjectID:         r.ProjectID,
		AssignedMemberIDs: ids,
		Status:            models.TaskStatus(r.Status),
		CreatedAt:         r.CreatedAt,
		UpdatedAt:         r.UpdatedAt,
	}
}

func taskMembers(taskID string, ids []string) []taskMemberRow {
	rows := make([]taskMemberRow, 0, len(ids))
	for i, id := range models.UniqueIDs(ids) {
		rows = append(rows, taskMemberRow{TaskID: taskID, TeamMemberID: id, Position: i})
	}
	return rows
}

func (s *PostgresStore) CreateTask(ctx context.Context, task *models.Task) error {
	status := task.Status
	if status == "" {
		status = models.StatusToDo
	}
	id := models.NewID()
	row := taskRow{
		ID:          id,
		Title:       task.Title,
		Description: task.Description,
		Deadline:    task.Deadline.UTC(),
		ProjectID:   task.ProjectID,
		Status:      string(status),
		Members:     taskMembers(id, task.AssignedMemberIDs),
	}
	if err := s.db.WithContext(ctx).Create(&row).Error; err != nil {
		return translateGormError(err, "insert task")
	}
	*task = row.model()
	return nil
}

func (s *PostgresStore) TaskByID(ctx context.Context, id string) (*models.Task, error) {
	var row taskRow
	if err := s.db.WithContext(ctx).Preload("Members", orderedMembers).First(&row, "id = ?", id).Error; err != nil {
		return nil, translateGormError(err, "find task")
	}
	t := row.model()
	return &t, nil
}

func taskFilterScope(f models.TaskFilter) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		db = db.Scopes(searchScope(f.Search, "title", "description"))
		if f.Status != "" {
			db = db.Where("status = ?", string(f.Status))
		}
		if f.ProjectID != "" {
			db = db.Where("project_id = ?", f.ProjectID)
		}
		if f.MemberID != "" {
			db = db.Where("id IN (SELECT task_id FROM task_members WHERE team_member_id = ?)", f.MemberID)
		}
		if f.StartDate != nil {
			db = db.Where("deadline >= ?", f.StartDate.UTC())
		}
		if f.EndDate != nil {
			db = db.Where("deadline <= ?", f.EndDate.UTC())
		}
		return db
	}
}

func (s *PostgresStore) ListTasks(ctx context.Context, f models.TaskFilter) ([]models.Task, int64, error) {
	var total int64
	if err := s.db.WithContext(ctx).Model(&taskRow{}).Scopes(taskFilterScope(f)).Count(&total).Error; err != nil {
		return nil, 0, translateGormError(err, "count tasks")
	}
	var rows []taskRow
	err := s.db.WithContext(ctx).Preload("Members", orderedMembers).
		Scopes(taskFilterScope(f), pageScope(f.ListParams)).
		Find(&rows).Error
	if err != nil {
		return nil, 0, translateGormError(err, "list tasks")
	}

	out := make([]models.Task, 0, len(rows))
	for _, r := range rows {
		out = append(out, r.model())
	}
	return out, total, nil
}

func (s *PostgresStore) UpdateTask(ctx context.Context, id string, update models.TaskUpdate) (*models.Task, error) {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var row taskRow
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&row, "id = ?", id).Error; err != nil {
			return err
		}
		changes := map[string]interface{}{"updated_at": time.Now()}
		if update.Title != nil {
			changes["title"] = *update.Title
		}
		if update.Description != nil {
			changes["description"] = *update.Description
		}
		if update.Deadline != nil {
			changes["deadline"] = update.Deadline.UTC()
		}
		if update.ProjectID != nil {
			changes["project_id"] = *update.ProjectID
		}
		if update.Status != nil {
			changes["status"] = string(*update.Status)
		}
		if err := tx.Model(&row).Updates(changes).Error; err != nil {
			return err
		}
		if update.AssignedMemberIDs == nil {
			return nil
		}
		if err := tx.Where("task_id = ?", id).Delete(&taskMemberRow{}).Error; err != nil {
			return err
		}
		members := taskMembers(id, update.AssignedMemberIDs)
		if len(members) == 0 {
			return nil
		}
		return tx.Create(&members).Error
	})
	if err != nil {
		return nil, translateGormError(err, "update task")
	}
	return s.TaskByID(ctx, id)
}

func (s *PostgresStore) DeleteTask(ctx context.Context, id string) error {
	var affected int64
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("task_id = ?", id).Delete(&taskMemberRow{}).Error; err != nil {
			return err
		}
		res := tx.Delete(&taskRow{}, "id = ?", id)
		affected = res.RowsAffected
		return res.Error
	})
	if err != nil {
		return translateGormError(err, "delete task")
	}
	if affected == 0 {
		return fmt.Errorf("delete task: %w", ErrNotFound)
	}
	return nil
}

func (s *PostgresStore) CountTasksByStatus(ctx context.Context, memberID string) (map[models.TaskStatus]int64, error) {
	var rows []struct {
		Status string
		Count  int64
	}
	q := s.db.WithContext(ctx).Model(&taskRow{}).Select("tasks.status AS status, COUNT(*) AS count")
	if memberID != "" {
		q = q.Joins("JOIN task_members ON task_members.task_id = tasks.id").
			Where("task_members.team_member_id = ?", memberID)
	}
	if err := q.Group("tasks.status").Scan(&rows).Error; err != nil {
		return nil, translateGormError(err, "count task statuses")
	}

	counts := make(map[models.TaskStatus]int64, len(rows))
	for _, r := range rows {
		counts[models.TaskStatus(r.Status)] = r.Count
	}
	return counts, nil
}
