package handlers

import (
	"context"

	"taskhub/database"
	"taskhub/models"
)

// Population expands stored references into summaries. References whose
// target no longer exists are dropped, and a missing task project renders
// as null.

func memberIndex(ctx context.Context, store database.TeamMemberStore, ids []string) (map[string]models.TeamMember, error) {
	index := make(map[string]models.TeamMember, len(ids))
	if len(ids) == 0 {
		return index, nil
	}
	members, err := store.TeamMembersByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	for _, m := range members {
		index[m.ID] = m
	}
	return index, nil
}

func memberRefs(ids []string, index map[string]models.TeamMember) []models.MemberRef {
	refs := make([]models.MemberRef, 0, len(ids))
	for _, id := range ids {
		if m, ok := index[id]; ok {
			refs = append(refs, m.Ref())
		}
	}
	return refs
}

func projectViews(ctx context.Context, store database.Store, projects []models.Project) ([]models.ProjectView, error) {
	var ids []string
	for _, p := range projects {
		ids = append(ids, p.TeamMemberIDs...)
	}
	index, err := memberIndex(ctx, store, models.UniqueIDs(ids))
	if err != nil {
		return nil, err
	}

	views := make([]models.ProjectView, 0, len(projects))
	for _, p := range projects {
		views = append(views, models.ProjectView{
			ID:          p.ID,
			Name:        p.Name,
			Description: p.Description,
			TeamMember:  memberRefs(p.TeamMemberIDs, index),
			CreatedAt:   p.CreatedAt,
			UpdatedAt:   p.UpdatedAt,
		})
	}
	return views, nil
}

func projectView(ctx context.Context, store database.Store, project *models.Project) (*models.ProjectView, error) {
	views, err := projectViews(ctx, store, []models.Project{*project})
	if err != nil {
		return nil, err
	}
	return &views[0], nil
}

func taskViews(ctx context.Context, store database.Store, tasks []models.Task) ([]models.TaskView, error) {
	var memberIDs, projectIDs []string
	for _, t := range tasks {
		memberIDs = append(memberIDs, t.AssignedMemberIDs...)
		projectIDs = append(projectIDs, t.ProjectID)
	}
	index, err := memberIndex(ctx, store, models.UniqueIDs(memberIDs))
	if err != nil {
		return nil, err
	}
	projects := make(map[string]models.Project)
	if len(projectIDs) > 0 {
		found, err := store.ProjectsByIDs(ctx, models.UniqueIDs(projectIDs))
		if err != nil {
			return nil, err
		}
		for _, p := range found {
			projects[p.ID] = p
		}
	}

	views := make([]models.TaskView, 0, len(tasks))
	for _, t := range tasks {
		view := models.TaskView{
			ID:              t.ID,
			Title:           t.Title,
			Description:     t.Description,
			Deadline:        t.Deadline,
			AssignedMembers: memberRefs(t.AssignedMemberIDs, index),
			Status:          t.Status,
			CreatedAt:       t.CreatedAt,
			UpdatedAt:       t.UpdatedAt,
		}
		if p, ok := projects[t.ProjectID]; ok {
			view.Project = p.Ref()
		}
		views = append(views, view)
	}
	return views, nil
}

func taskView(ctx context.Context, store database.Store, task *models.Task) (*models.TaskView, error) {
	views, err := taskViews(ctx, store, []models.Task{*task})
	if err != nil {
		return nil, err
	}
	return &views[0], nil
}

// ensureMembersExist fails with a 400 unless every ID names a team member.
func ensureMembersExist(ctx context.Context, store database.TeamMemberStore, ids []string) error {
	members, err := store.TeamMembersByIDs(ctx, ids)
	if err != nil {
		return err
	}
	if len(members) != len(models.UniqueIDs(ids)) {
		return badRequest("One or more team members do not exist")
	}
	return nil
}
