package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"timesheet/internal/model"

	"gorm.io/gorm"
)

// CatalogService maintains the reference taxonomy: portfolios, projects,
// group activities, teams and function activities.
type CatalogService struct{ db *gorm.DB }

func NewCatalogService(db *gorm.DB) *CatalogService { return &CatalogService{db: db} }

// --- reads ---

func (s *CatalogService) Portfolios(ctx context.Context) ([]model.Portfolio, error) {
	var out []model.Portfolio
	if err := s.db.WithContext(ctx).Order("name").Find(&out).Error; err != nil {
		return nil, persistence("list portfolios", err)
	}
	return out, nil
}

func (s *CatalogService) Projects(ctx context.Context) ([]model.ProjectView, error) {
	var projects []model.Project
	if err := s.db.WithContext(ctx).Preload("Portfolio").Order("project_name").Find(&projects).Error; err != nil {
		return nil, persistence("list projects", err)
	}
	out := make([]model.ProjectView, 0, len(projects))
	for _, p := range projects {
		v := model.ProjectView{ID: p.ID, Name: p.Name, Status: p.Status, PortfolioID: p.PortfolioID, PortfolioName: missingName}
		if p.Portfolio != nil {
			v.PortfolioName = p.Portfolio.Name
		}
		out = append(out, v)
	}
	return out, nil
}

func (s *CatalogService) GroupActivities(ctx context.Context) ([]model.GroupActivityView, error) {
	var gas []model.GroupActivity
	if err := s.db.WithContext(ctx).Preload("Project.Portfolio").Order("name, id").Find(&gas).Error; err != nil {
		return nil, persistence("list group activities", err)
	}
	out := make([]model.GroupActivityView, 0, len(gas))
	for _, ga := range gas {
		v := model.GroupActivityView{ID: ga.ID, Name: ga.Name, Project: "Unknown", Portfolio: "Unknown"}
		if ga.Project != nil {
			v.Project = ga.Project.Name
			if ga.Project.Portfolio != nil {
				v.Portfolio = ga.Project.Portfolio.Name
			}
		}
		out = append(out, v)
	}
	return out, nil
}

func (s *CatalogService) Teams(ctx context.Context) ([]model.Team, error) {
	var out []model.Team
	if err := s.db.WithContext(ctx).Order("name").Find(&out).Error; err != nil {
		return nil, persistence("list teams", err)
	}
	return out, nil
}

// FunctionActivityNames lists the activity names of the team called team.
func (s *CatalogService) FunctionActivityNames(ctx context.Context, team string) ([]string, error) {
	names := []string{}
	err := s.db.WithContext(ctx).Model(&model.FunctionActivity{}).
		Joins("JOIN teams ON teams.id = function_activities.team_id").
		Where("teams.name = ?", strings.TrimSpace(team)).
		Order("function_activities.name").
		Pluck("function_activities.name", &names).Error
	if err != nil {
		return nil, persistence("list function activities", err)
	}
	return names, nil
}

func (s *CatalogService) MemberProfile(ctx context.Context, email string) (*model.MemberProfile, error) {
	var m model.TeamMember
	err := s.db.WithContext(ctx).Preload("Team").Where("email = ?", strings.TrimSpace(email)).First(&m).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, notFoundf("user %s not found", email)
	}
	if err != nil {
		return nil, persistence("query member", err)
	}
	p := &model.MemberProfile{FullName: m.FullName, Team: "Unknown"}
	if m.Team != nil {
		p.Team = m.Team.Name
	}
	return p, nil
}

// --- portfolios ---

func (s *CatalogService) CreatePortfolio(ctx context.Context, name string) (*model.Portfolio, error) {
	p := &model.Portfolio{Name: strings.TrimSpace(name)}
	if p.Name == "" {
		return nil, invalidf("portfolio name is required")
	}
	if err := s.db.WithContext(ctx).Create(p).Error; err != nil {
		return nil, persistence("create portfolio", err)
	}
	return p, nil
}

func (s *CatalogService) UpdatePortfolio(ctx context.Context, id int, name string) (*model.Portfolio, error) {
	var p model.Portfolio
	if err := s.first(ctx, &p, id, "portfolio"); err != nil {
		return nil, err
	}
	p.Name = strings.TrimSpace(name)
	if p.Name == "" {
		return nil, invalidf("portfolio name is required")
	}
	if err := s.db.WithContext(ctx).Save(&p).Error; err != nil {
		return nil, persistence("update portfolio", err)
	}
	return &p, nil
}

func (s *CatalogService) DeletePortfolio(ctx context.Context, id int) (*model.Portfolio, error) {
	var p model.Portfolio
	if err := s.first(ctx, &p, id, "portfolio"); err != nil {
		return nil, err
	}
	if err := s.ensureUnused(ctx, &model.Project{}, "portfolio_id = ?", id, "portfolio %d still has projects", id); err != nil {
		return nil, err
	}
	if err := s.db.WithContext(ctx).Delete(&p).Error; err != nil {
		return nil, persistence("delete portfolio", err)
	}
	return &p, nil
}

// --- projects ---

func (s *CatalogService) CreateProject(ctx context.Context, in model.ProjectInput) (*model.Project, error) {
	p := &model.Project{Name: strings.TrimSpace(in.Name), Status: model.ProjectActive, PortfolioID: in.PortfolioID}
	if err := s.checkProject(ctx, p); err != nil {
		return nil, err
	}
	if err := s.db.WithContext(ctx).Create(p).Error; err != nil {
		return nil, persistence("create project", err)
	}
	return p, nil
}

func (s *CatalogService) UpdateProject(ctx context.Context, id int, in model.ProjectInput) (*model.Project, error) {
	var p model.Project
	if err := s.first(ctx, &p, id, "project"); err != nil {
		return nil, err
	}
	p.Name = strings.TrimSpace(in.Name)
	p.PortfolioID = in.PortfolioID
	if err := s.checkProject(ctx, &p); err != nil {
		return nil, err
	}
	if err := s.db.WithContext(ctx).Save(&p).Error; err != nil {
		return nil, persistence("update project", err)
	}
	return &p, nil
}

func (s *CatalogService) DeleteProject(ctx context.Context, id int) (*model.Project, error) {
	var p model.Project
	if err := s.first(ctx, &p, id, "project"); err != nil {
		return nil, err
	}
	if err := s.ensureUnused(ctx, &model.GroupActivity{}, "project_id = ?", id, "project %d still has group activities", id); err != nil {
		return nil, err
	}
	if err := s.db.WithContext(ctx).Delete(&p).Error; err != nil {
		return nil, persistence("delete project", err)
	}
	return &p, nil
}

func (s *CatalogService) checkProject(ctx context.Context, p *model.Project) error {
	if p.Name == "" {
		return invalidf("project name is required")
	}
	if p.PortfolioID != nil {
		return s.first(ctx, &model.Portfolio{}, *p.PortfolioID, "portfolio")
	}
	return nil
}

// --- group activities ---

func (s *CatalogService) CreateGroupActivity(ctx context.Context, in model.GroupActivityInput) (*model.GroupActivity, error) {
	ga := &model.GroupActivity{Name: strings.TrimSpace(in.Name), ProjectID: &in.ProjectID}
	if err := s.checkGroupActivity(ctx, ga); err != nil {
		return nil, err
	}
	if err := s.db.WithContext(ctx).Create(ga).Error; err != nil {
		return nil, persistence("create group activity", err)
	}
	return ga, nil
}

func (s *CatalogService) UpdateGroupActivity(ctx context.Context, id int, in model.GroupActivityInput) (*model.GroupActivity, error) {
	var ga model.GroupActivity
	if err := s.first(ctx, &ga, id, "group activity"); err != nil {
		return nil, err
	}
	ga.Name = strings.TrimSpace(in.Name)
	ga.ProjectID = &in.ProjectID
	if err := s.checkGroupActivity(ctx, &ga); err != nil {
		return nil, err
	}
	if err := s.db.WithContext(ctx).Save(&ga).Error; err != nil {
		return nil, persistence("update group activity", err)
	}
	return &ga, nil
}

func (s *CatalogService) DeleteGroupActivity(ctx context.Context, id int) (*model.GroupActivity, error) {
	var ga model.GroupActivity
	if err := s.first(ctx, &ga, id, "group activity"); err != nil {
		return nil, err
	}
	if err := s.ensureUnused(ctx, &model.Task{}, "group_activity_id = ?", id, "group activity %d is used by tasks", id); err != nil {
		return nil, err
	}
	if err := s.db.WithContext(ctx).Delete(&ga).Error; err != nil {
		return nil, persistence("delete group activity", err)
	}
	return &ga, nil
}

// checkGroupActivity keeps (name, project) unique; the schema does not.
func (s *CatalogService) checkGroupActivity(ctx context.Context, ga *model.GroupActivity) error {
	if ga.Name == "" {
		return invalidf("group activity name is required")
	}
	if err := s.first(ctx, &model.Project{}, *ga.ProjectID, "project"); err != nil {
		return err
	}
	var n int64
	err := s.db.WithContext(ctx).Model(&model.GroupActivity{}).
		Where("name = ? AND project_id = ? AND id <> ?", ga.Name, *ga.ProjectID, ga.ID).Count(&n).Error
	if err != nil {
		return persistence("check group activity", err)
	}
	if n > 0 {
		return invalidf("group activity %q already exists in project %d", ga.Name, *ga.ProjectID)
	}
	return nil
}

// --- teams and function activities ---

func (s *CatalogService) CreateTeam(ctx context.Context, name string) (*model.Team, error) {
	t := &model.Team{Name: strings.TrimSpace(name)}
	if t.Name == "" {
		return nil, invalidf("team name is required")
	}
	if err := s.db.WithContext(ctx).Create(t).Error; err != nil {
		return nil, persistence("create team", err)
	}
	return t, nil
}

func (s *CatalogService) CreateFunctionActivity(ctx context.Context, in model.FunctionActivityInput) (*model.FunctionActivity, error) {
	fa := &model.FunctionActivity{Name: strings.TrimSpace(in.Name), TeamID: &in.TeamID}
	if fa.Name == "" {
		return nil, invalidf("function activity name is required")
	}
	if err := s.first(ctx, &model.Team{}, in.TeamID, "team"); err != nil {
		return nil, err
	}
	var n int64
	err := s.db.WithContext(ctx).Model(&model.FunctionActivity{}).
		Where("name = ? AND team_id = ?", fa.Name, in.TeamID).Count(&n).Error
	if err != nil {
		return nil, persistence("check function activity", err)
	}
	if n > 0 {
		return nil, invalidf("function activity %q already exists in team %d", fa.Name, in.TeamID)
	}
	if err := s.db.WithContext(ctx).Create(fa).Error; err != nil {
		return nil, persistence("create function activity", err)
	}
	return fa, nil
}

// --- members ---

// AssignManager sets or clears memberID's manager. The manager chain must
// stay a tree, so a manager that already reports to memberID is rejected.
func (s *CatalogService) AssignManager(ctx context.Context, memberID int, managerID *int) (*model.TeamMember, error) {
	var m model.TeamMember
	if err := s.first(ctx, &m, memberID, "team member"); err != nil {
		return nil, err
	}
	if managerID != nil {
		if *managerID == memberID {
			return nil, invalidf("member %d cannot manage themselves", memberID)
		}
		seen := map[int]bool{}
		for cur := *managerID; ; {
			var boss model.TeamMember
			if err := s.first(ctx, &boss, cur, "team member"); err != nil {
				return nil, err
			}
			if boss.ManagerID == nil {
				break
			}
			if *boss.ManagerID == memberID {
				return nil, invalidf("member %d already reports to member %d", *managerID, memberID)
			}
			if seen[*boss.ManagerID] {
				return nil, fmt.Errorf("%w: manager chain of member %d already loops", ErrPersistence, cur)
			}
			seen[cur] = true
			cur = *boss.ManagerID
		}
	}
	if err := s.db.WithContext(ctx).Model(&m).Update("manager_id", managerID).Error; err != nil {
		return nil, persistence("assign manager", err)
	}
	m.ManagerID = managerID
	return &m, nil
}

// --- helpers ---

func (s *CatalogService) first(ctx context.Context, dst any, id int, what string) error {
	err := s.db.WithContext(ctx).First(dst, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return notFoundf("%s %d not found", what, id)
	}
	if err != nil {
		return persistence("query "+what, err)
	}
	return nil
}

func (s *CatalogService) ensureUnused(ctx context.Context, child any, cond string, id int, format string, args ...any) error {
	var n int64
	if err := s.db.WithContext(ctx).Model(child).Where(cond, id).Count(&n).Error; err != nil {
		return persistence("count references", err)
	}
	if n > 0 {
		return invalidf(format, args...)
	}
	return nil
}
