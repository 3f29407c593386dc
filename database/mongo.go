package database

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"time"

	"taskhub/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const (
	usersCollection       = "users"
	teamMembersCollection = "teammembers"
	projectsCollection    = "projects"
	tasksCollection       = "tasks"
)

// MongoStore persists documents in MongoDB. References are stored as
// ObjectIDs.
type MongoStore struct {
	client      *mongo.Client
	users       *mongo.Collection
	teamMembers *mongo.Collection
	projects    *mongo.Collection
	tasks       *mongo.Collection
}

type userDoc struct {
	ID        primitive.ObjectID `bson:"_id"`
	Name      string             `bson:"name"`
	Email     string             `bson:"email"`
	Password  string             `bson:"password"`
	Role      string             `bson:"role"`
	CreatedAt time.Time          `bson:"createdAt"`
	UpdatedAt time.Time          `bson:"updatedAt"`
}

type teamMemberDoc struct {
	ID          primitive.ObjectID `bson:"_id"`
	Name        string             `bson:"name"`
	Email       string             `bson:"email"`
	Designation string             `bson:"designation"`
	CreatedAt   time.Time          `bson:"createdAt"`
	UpdatedAt   time.Time          `bson:"updatedAt"`
}

type projectDoc struct {
	ID          primitive.ObjectID   `bson:"_id"`
	Name        string               `bson:"name"`
	Description string               `bson:"description"`
	TeamMember  []primitive.ObjectID `bson:"teamMember"`
	CreatedAt   time.Time            `bson:"createdAt"`
	UpdatedAt   time.Time            `bson:"updatedAt"`
}

type taskDoc struct {
	ID              primitive.ObjectID   `bson:"_id"`
	Title           string               `bson:"title"`
	Description     string               `bson:"description"`
	Deadline        time.Time            `bson:"deadline"`
	Project         primitive.ObjectID   `bson:"project"`
	AssignedMembers []primitive.ObjectID `bson:"assignedMembers"`
	Status          string               `bson:"status"`
	CreatedAt       time.Time            `bson:"createdAt"`
	UpdatedAt       time.Time            `bson:"updatedAt"`
}

// OpenMongo connects, pings and ensures indexes.
func OpenMongo(ctx context.Context, uri, dbName string) (*MongoStore, error) {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("connect mongo: %w", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(ctx)
		return nil, fmt.Errorf("ping mongo: %w", err)
	}

	db := client.Database(dbName)
	s := &MongoStore{
		client:      client,
		users:       db.Collection(usersCollection),
		teamMembers: db.Collection(teamMembersCollection),
		projects:    db.Collection(projectsCollection),
		tasks:       db.Collection(tasksCollection),
	}
	if err := s.ensureIndexes(ctx); err != nil {
		_ = client.Disconnect(ctx)
		return nil, err
	}
	return s, nil
}

func (s *MongoStore) ensureIndexes(ctx context.Context) error {
	unique := options.Index().SetUnique(true)
	indexes := map[*mongo.Collection][]mongo.IndexModel{
		s.users: {
			{Keys: bson.D{{Key: "email", Value: 1}}, Options: unique},
		},
		s.teamMembers: {
			{Keys: bson.D{{Key: "email", Value: 1}}, Options: unique},
			{Keys: bson.D{{Key: "name", Value: 1}}},
		},
		s.projects: {
			{Keys: bson.D{{Key: "name", Value: 1}}, Options: unique},
			{Keys: bson.D{{Key: "teamMember", Value: 1}}},
		},
		s.tasks: {
			{Keys: bson.D{{Key: "project", Value: 1}}},
			{Keys: bson.D{{Key: "status", Value: 1}}},
			{Keys: bson.D{{Key: "deadline", Value: 1}}},
			{Keys: bson.D{{Key: "assignedMembers", Value: 1}}},
		},
	}
	for coll, idx := range indexes {
		if _, err := coll.Indexes().CreateMany(ctx, idx); err != nil {
			return fmt.Errorf("create indexes on %s: %w", coll.Name(), err)
		}
	}
	return nil
}

func (s *MongoStore) Ping(ctx context.Context) error {
	return s.client.Ping(ctx, nil)
}

func (s *MongoStore) Close(ctx context.Context) error {
	return s.client.Disconnect(ctx)
}

// Drop removes every collection. Used by integration tests.
func (s *MongoStore) Drop(ctx context.Context) error {
	for _, c := range []*mongo.Collection{s.users, s.teamMembers, s.projects, s.tasks} {
		if err := c.Drop(ctx); err != nil {
			return err
		}
	}
	return s.ensureIndexes(ctx)
}

func translateMongoError(err error, what string) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, mongo.ErrNoDocuments):
		return fmt.Errorf("%s: %w", what, ErrNotFound)
	case mongo.IsDuplicateKeyError(err):
		return fmt.Errorf("%s: %w", what, ErrDuplicate)
	default:
		return fmt.Errorf("%s: %w", what, err)
	}
}

func toObjectID(id string) (primitive.ObjectID, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return primitive.NilObjectID, fmt.Errorf("id %q: %w", id, ErrNotFound)
	}
	return oid, nil
}

func toObjectIDs(ids []string) ([]primitive.ObjectID, error) {
	out := make([]primitive.ObjectID, 0, len(ids))
	for _, id := range ids {
		oid, err := primitive.ObjectIDFromHex(id)
		if err != nil {
			return nil, fmt.Errorf("invalid id %q: %w", id, err)
		}
		out = append(out, oid)
	}
	return out, nil
}

// validObjectIDs converts the parseable IDs and skips the rest, since a
// malformed ID can never match a stored document.
func validObjectIDs(ids []string) []primitive.ObjectID {
	out := make([]primitive.ObjectID, 0, len(ids))
	for _, id := range ids {
		if oid, err := primitive.ObjectIDFromHex(id); err == nil {
			out = append(out, oid)
		}
	}
	return out
}

func hexIDs(oids []primitive.ObjectID) []string {
	out := make([]string, 0, len(oids))
	for _, oid := range oids {
		out = append(out, oid.Hex())
	}
	return out
}

func mongoNow() time.Time {
	// BSON dates carry millisecond precision.
	return time.Now().UTC().Truncate(time.Millisecond)
}

// searchFilter builds a case-insensitive substring match over fields.
func searchFilter(search string, fields ...string) bson.M {
	if search == "" {
		return bson.M{}
	}
	pattern := primitive.Regex{Pattern: regexp.QuoteMeta(search), Options: "i"}
	or := make(bson.A, 0, len(fields))
	for _, f := range fields {
		or = append(or, bson.M{f: pattern})
	}
	return bson.M{"$or": or}
}

func pageOptions(params models.ListParams) *options.FindOptions {
	return options.Find().
		SetSort(bson.D{{Key: "createdAt", Value: -1}, {Key: "_id", Value: -1}}).
		SetSkip(int64(params.Skip())).
		SetLimit(int64(params.Limit))
}

// Users

func (d userDoc) model() *models.User {
	return &models.User{
		ID:           d.ID.Hex(),
		Name:         d.Name,
		Email:        d.Email,
		PasswordHash: d.Password,
		Role:         models.Role(d.Role),
		CreatedAt:    d.CreatedAt,
		UpdatedAt:    d.UpdatedAt,
	}
}

func (s *MongoStore) CreateUser(ctx context.Context, user *models.User) error {
	now := mongoNow()
	doc := userDoc{
		ID:        primitive.NewObjectID(),
		Name:      user.Name,
		Email:     user.Email,
		Password:  user.PasswordHash,
		Role:      string(user.Role),
		CreatedAt: now,
		UpdatedAt: now,
	}
	if _, err := s.users.InsertOne(ctx, doc); err != nil {
		return translateMongoError(err, "insert user")
	}
	*user = *doc.model()
	return nil
}

func (s *MongoStore) findUser(ctx context.Context, filter bson.M) (*models.User, error) {
	var doc userDoc
	if err := s.users.FindOne(ctx, filter).Decode(&doc); err != nil {
		return nil, translateMongoError(err, "find user")
	}
	return doc.model(), nil
}

func (s *MongoStore) UserByID(ctx context.Context, id string) (*models.User, error) {
	oid, err := toObjectID(id)
	if err != nil {
		return nil, err
	}
	return s.findUser(ctx, bson.M{"_id": oid})
}

func (s *MongoStore) UserByEmail(ctx context.Context, email string) (*models.User, error) {
	return s.findUser(ctx, bson.M{"email": email})
}

func (s *MongoStore) UpdateUserRole(ctx context.Context, id string, role models.Role) (*models.User, error) {
	oid, err := toObjectID(id)
	if err != nil {
		return nil, err
	}
	var doc userDoc
	err = s.users.FindOneAndUpdate(ctx,
		bson.M{"_id": oid},
		bson.M{"$set": bson.M{"role": string(role), "updatedAt": mongoNow()}},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&doc)
	if err != nil {
		return nil, translateMongoError(err, "update user role")
	}
	return doc.model(), nil
}

// Team members

func (d teamMemberDoc) model() models.TeamMember {
	return models.TeamMember{
		ID:          d.ID.Hex(),
		Name:        d.Name,
		Email:       d.Email,
		Designation: d.Designation,
		CreatedAt:   d.CreatedAt,
		UpdatedAt:   d.UpdatedAt,
	}
}

func (s *MongoStore) CreateTeamMember(ctx context.Context, member *models.TeamMember) error {
	now := mongoNow()
	doc := teamMemberDoc{
		ID:          primitive.NewObjectID(),
		Name:        member.Name,
		Email:       member.Email,
		Designation: member.Designation,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if _, err := s.teamMembers.InsertOne(ctx, doc); err != nil {
		return translateMongoError(err, "insert team member")
	}
	*member = doc.model()
	return nil
}

func (s *MongoStore) findTeamMember(ctx context.Context, filter bson.M) (*models.TeamMember, error) {
	var doc teamMemberDoc
	if err := s.teamMembers.FindOne(ctx, filter).Decode(&doc); err != nil {
		return nil, translateMongoError(err, "find team member")
	}
	m := doc.model()
	return &m, nil
}

func (s *MongoStore) TeamMemberByID(ctx context.Context, id string) (*models.TeamMember, error) {
	oid, err := toObjectID(id)
	if err != nil {
		return nil, err
	}
	return s.findTeamMember(ctx, bson.M{"_id": oid})
}

func (s *MongoStore) TeamMemberByEmail(ctx context.Context, email string) (*models.TeamMember, error) {
	return s.findTeamMember(ctx, bson.M{"email": email})
}

func (s *MongoStore) TeamMembersByIDs(ctx context.Context, ids []string) ([]models.TeamMember, error) {
	oids := validObjectIDs(models.UniqueIDs(ids))
	if len(oids) == 0 {
		return nil, nil
	}
	cursor, err := s.teamMembers.Find(ctx, bson.M{"_id": bson.M{"$in": oids}})
	if err != nil {
		return nil, translateMongoError(err, "find team members")
	}
	var docs []teamMemberDoc
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, translateMongoError(err, "decode team members")
	}
	out := make([]models.TeamMember, 0, len(docs))
	for _, d := range docs {
		out = append(out, d.model())
	}
	return out, nil
}

func (s *MongoStore) ListTeamMembers(ctx context.Context, params models.ListParams) ([]models.TeamMember, int64, error) {
	filter := searchFilter(params.Search, "name", "email", "designation")

	cursor, err := s.teamMembers.Find(ctx, filter, pageOptions(params))
	if err != nil {
		return nil, 0, translateMongoError(err, "list team members")
	}
	var docs []teamMemberDoc
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, 0, translateMongoError(err, "decode team members")
	}
	total, err := s.teamMembers.CountDocuments(ctx, filter)
	if err != nil {
		return nil, 0, translateMongoError(err, "count team members")
	}

	out := make([]models.TeamMember, 0, len(docs))
	for _, d := range docs {
		out = append(out, d.model())
	}
	return out, total, nil
}

func (s *MongoStore) UpdateTeamMember(ctx context.Context, id string, update models.TeamMemberUpdate) (*models.TeamMember, error) {
	oid, err := toObjectID(id)
	if err != nil {
		return nil, err
	}
	set := bson.M{"updatedAt": mongoNow()}
	if update.Name != nil {
		set["name"] = *update.Name
	}
	if update.Email != nil {
		set["email"] = *update.Email
	}
	if update.Designation != nil {
		set["designation"] = *update.Designation
	}

	var doc teamMemberDoc
	err = s.teamMembers.FindOneAndUpdate(ctx, bson.M{"_id": oid}, bson.M{"$set": set},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&doc)
	if err != nil {
		return nil, translateMongoError(err, "update team member")
	}
	m := doc.model()
	return &m, nil
}

func (s *MongoStore) deleteByID(ctx context.Context, coll *mongo.Collection, id, what string) error {
	oid, err := toObjectID(id)
	if err != nil {
		return err
	}
	res, err := coll.DeleteOne(ctx, bson.M{"_id": oid})
	if err != nil {
		return translateMongoError(err, "delete "+what)
	}
	if res.DeletedCount == 0 {
		return fmt.Errorf("delete %s: %w", what, ErrNotFound)
	}
	return nil
}

func (s *MongoStore) DeleteTeamMember(ctx context.Context, id string) error {
	return s.deleteByID(ctx, s.teamMembers, id, "team member")
}

func (s *MongoStore) CountTeamMembers(ctx context.Context) (int64, error) {
	n, err := s.teamMembers.CountDocuments(ctx, bson.M{})
	return n, translateMongoError(err, "count team members")
}

// Projects

func (d projectDoc) model() models.Project {
	return models.Project{
		ID:            d.ID.Hex(),
		Name:          d.Name,
		Description:   d.Description,
		TeamMemberIDs: hexIDs(d.TeamMember),
		CreatedAt:     d.CreatedAt,
		UpdatedAt:     d.UpdatedAt,
	}
}

func (s *MongoStore) CreateProject(ctx context.Context, project *models.Project) error {
	members, err := toObjectIDs(project.TeamMemberIDs)
	if err != nil {
		return err
	}
	now := mongoNow()
	doc := projectDoc{
		ID:          primitive.NewObjectID(),
		Name:        project.Name,
		Description: project.Description,
		TeamMember:  members,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if _, err := s.projects.InsertOne(ctx, doc); err != nil {
		return translateMongoError(err, "insert project")
	}
	*project = doc.model()
	return nil
}

func (s *MongoStore) findProject(ctx context.Context, filter bson.M) (*models.Project, error) {
	var doc projectDoc
	if err := s.projects.FindOne(ctx, filter).Decode(&doc); err != nil {
		return nil, translateMongoError(err, "find project")
	}
	p := doc.model()
	return &p, nil
}

func (s *MongoStore) ProjectByID(ctx context.Context, id string) (*models.Project, error) {
	oid, err := toObjectID(id)
	if err != nil {
		return nil, err
	}
	return s.findProject(ctx, bson.M{"_id": oid})
}

func (s *MongoStore) ProjectByName(ctx context.Context, name string) (*models.Project, error) {
	return s.findProject(ctx, bson.M{"name": name})
}

func (s *MongoStore) ProjectsByIDs(ctx context.Context, ids []string) ([]models.Project, error) {
	oids := validObjectIDs(models.UniqueIDs(ids))
	if len(oids) == 0 {
		return nil, nil
	}
	cursor, err := s.projects.Find(ctx, bson.M{"_id": bson.M{"$in": oids}})
	if err != nil {
		return nil, translateMongoError(err, "find projects")
	}
	var docs []projectDoc
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, translateMongoError(err, "decode projects")
	}
	out := make([]models.Project, 0, len(docs))
	for _, d := range docs {
		out = append(out, d.model())
	}
	return out, nil
}

func (s *MongoStore) ListProjects(ctx context.Context, params models.ListParams) ([]models.Project, int64, error) {
	filter := searchFilter(params.Search, "name", "description")

	cursor, err := s.projects.Find(ctx, filter, pageOptions(params))
	if err != nil {
		return nil, 0, translateMongoError(err, "list projects")
	}
	var docs []projectDoc
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, 0, translateMongoError(err, "decode projects")
	}
	total, err := s.projects.CountDocuments(ctx, filter)
	if err != nil {
		return nil, 0, translateMongoError(err, "count projects")
	}

	out := make([]models.Project, 0, len(docs))
	for _, d := range docs {
		out = append(out, d.model())
	}
	return out, total, nil
}

func (s *MongoStore) UpdateProject(ctx context.Context, id string, update models.ProjectUpdate) (*models.Project, error) {
	oid, err := toObjectID(id)
	if err != nil {
		return nil, err
	}
	set := bson.M{"updatedAt": mongoNow()}
	if update.Name != nil {
		set["name"] = *update.Name
	}
	if update.Description != nil {
		set["description"] = *update.Description
	}
	if update.TeamMemberIDs != nil {
		members, err := toObjectIDs(update.TeamMemberIDs)
		if err != nil {
			return nil, err
		}
		set["teamMember"] = members
	}

	var doc projectDoc
	err = s.projects.FindOneAndUpdate(ctx, bson.M{"_id": oid}, bson.M{"$set": set},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&doc)
	if err != nil {
		return nil, translateMongoError(err, "update project")
	}
	p := doc.model()
	return &p, nil
}

func (s *MongoStore) DeleteProject(ctx context.Context, id string) error {
	return s.deleteByID(ctx, s.projects, id, "project")
}

func (s *MongoStore) CountProjects(ctx context.Context) (int64, error) {
	n, err := s.projects.CountDocuments(ctx, bson.M{})
	return n, translateMongoError(err, "count projects")
}

func (s *MongoStore) CountProjectsWithMember(ctx context.Context, memberID string) (int64, error) {
	oid, err := primitive.ObjectIDFromHex(memberID)
	if err != nil {
		return 0, nil
	}
	n, err := s.projects.CountDocuments(ctx, bson.M{"teamMember": oid})
	return n, translateMongoError(err, "count member projects")
}

// Tasks

func (d taskDoc) model() models.Task {
	return models.Task{
		ID:                d.ID.Hex(),
		Title:             d.Title,
		Description:       d.Description,
		Deadline:          d.Deadline,
		ProjectID:         d.Project.Hex(),
		AssignedMemberIDs: hexIDs(d.AssignedMembers),
		Status:            models.TaskStatus(d.Status),
		CreatedAt:         d.CreatedAt,
		UpdatedAt:         d.UpdatedAt,
	}
}

func (s *MongoStore) CreateTask(ctx context.Context, task *models.Task) error {
	project, err := primitive.ObjectIDFromHex(task.ProjectID)
	if err != nil {
		return fmt.Errorf("invalid project id %q: %w", task.ProjectID, err)
	}
	members, err := toObjectIDs(task.AssignedMemberIDs)
	if err != nil {
		return err
	}
	status := task.Status
	if status == "" {
		status = models.StatusToDo
	}
	now := mongoNow()
	doc := taskDoc{
		ID:              primitive.NewObjectID(),
		Title:           task.Title,
		Description:     task.Description,
		Deadline:        task.Deadline.UTC(),
		Project:         project,
		AssignedMembers: members,
		Status:          string(status),
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	if _, err := s.tasks.InsertOne(ctx, doc); err != nil {
		return translateMongoError(err, "insert task")
	}
	*task = doc.model()
	return nil
}

func (s *MongoStore) TaskByID(ctx context.Context, id string) (*models.Task, error) {
	oid, err := toObjectID(id)
	if err != nil {
		return nil, err
	}
	var doc taskDoc
	if err := s.tasks.FindOne(ctx, bson.M{"_id": oid}).Decode(&doc); err != nil {
		return nil, translateMongoError(err, "find task")
	}
	t := doc.model()
	return &t, nil
}

func taskFilterDoc(f models.TaskFilter) bson.M {
	filter := searchFilter(f.Search, "title", "description")
	if f.Status != "" {
		filter["status"] = string(f.Status)
	}
	if f.ProjectID != "" {
		oid, _ := primitive.ObjectIDFromHex(f.ProjectID)
		filter["project"] = oid
	}
	if f.MemberID != "" {
		oid, _ := primitive.ObjectIDFromHex(f.MemberID)
		filter["assignedMembers"] = oid
	}
	if f.StartDate != nil || f.EndDate != nil {
		deadline := bson.M{}
		if f.StartDate != nil {
			deadline["$gte"] = f.StartDate.UTC()
		}
		if f.EndDate != nil {
			deadline["$lte"] = f.EndDate.UTC()
		}
		filter["deadline"] = deadline
	}
	return filter
}

func (s *MongoStore) ListTasks(ctx context.Context, f models.TaskFilter) ([]models.Task, int64, error) {
	filter := taskFilterDoc(f)

	cursor, err := s.tasks.Find(ctx, filter, pageOptions(f.ListParams))
	if err != nil {
		return nil, 0, translateMongoError(err, "list tasks")
	}
	var docs []taskDoc
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, 0, translateMongoError(err, "decode tasks")
	}
	total, err := s.tasks.CountDocuments(ctx, filter)
	if err != nil {
		return nil, 0, translateMongoError(err, "count tasks")
	}

	out := make([]models.Task, 0, len(docs))
	for _, d := range docs {
		out = append(out, d.model())
	}
	return out, total, nil
}

func (s *MongoStore) UpdateTask(ctx context.Context, id string, update models.TaskUpdate) (*models.Task, error) {
	oid, err := toObjectID(id)
	if err != nil {
		return nil, err
	}
	set := bson.M{"updatedAt": mongoNow()}
	if update.Title != nil {
		set["title"] = *update.Title
	}
	if update.Description != nil {
		set["description"] = *update.Description
	}
	if update.Deadline != nil {
		set["deadline"] = update.Deadline.UTC()
	}
	if update.ProjectID != nil {
		project, err := primitive.ObjectIDFromHex(*update.ProjectID)
		if err != nil {
			return nil, fmt.Errorf("invalid project id %q: %w", *update.ProjectID, err)
		}
		set["project"] = project
	}
	if update.AssignedMemberIDs != nil {
		members, err := toObjectIDs(update.AssignedMemberIDs)
		if err != nil {
			return nil, err
		}
		set["assignedMembers"] = members
	}
	if update.Status != nil {
		set["status"] = string(*update.Status)
	}

	var doc taskDoc
	err = s.tasks.FindOneAndUpdate(ctx, bson.M{"_id": oid}, bson.M{"$set": set},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&doc)
	if err != nil {
		return nil, translateMongoError(err, "update task")
	}
	t := doc.model()
	return &t, nil
}

func (s *MongoStore) DeleteTask(ctx context.Context, id string) error {
	return s.deleteByID(ctx, s.tasks, id, "task")
}

func (s *MongoStore) CountTasksByStatus(ctx context.Context, memberID string) (map[models.TaskStatus]int64, error) {
	match := bson.M{}
	if memberID != "" {
		oid, err := primitive.ObjectIDFromHex(memberID)
		if err != nil {
			return map[models.TaskStatus]int64{}, nil
		}
		match["assignedMembers"] = oid
	}
	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: match}},
		{{Key: "$group", Value: bson.D{
			{Key: "_id", Value: "$status"},
			{Key: "count", Value: bson.D{{Key: "$sum", Value: 1}}},
		}}},
	}
	cursor, err := s.tasks.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, translateMongoError(err, "aggregate task statuses")
	}
	var rows []struct {
		Status string `bson:"_id"`
		Count  int64  `bson:"count"`
	}
	if err := cursor.All(ctx, &rows); err != nil {
		return nil, translateMongoError(err, "decode task statuses")
	}

	counts := make(map[models.TaskStatus]int64, len(rows))
	for _, r := range rows {
		counts[models.TaskStatus(r.Status)] = r.Count
	}
	return counts, nil
}
