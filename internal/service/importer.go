package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"timesheet/internal/config"
	"timesheet/internal/logger"
	"timesheet/internal/model"

	"github.com/google/uuid"
	"github.com/xuri/excelize/v2"
	"gorm.io/gorm"
)

// CatalogSyncer receives everything an import committed.
type CatalogSyncer interface {
	EntrySyncer
	SyncMembers(ctx context.Context, members []model.TeamMember)
}

// ImportReport counts what one workbook import created or skipped.
type ImportReport struct {
	Portfolios         int `json:"portfolios"`
	Projects           int `json:"projects"`
	GroupActivities    int `json:"group_activities"`
	Teams              int `json:"teams"`
	FunctionActivities int `json:"function_activities"`
	Members            int `json:"members"`
	OrphanMembers      int `json:"orphan_members"`
	OrphanProjects     int `json:"orphan_projects"`
	Submissions        int `json:"submissions"`
	Entries            int `json:"entries"`
	Skipped            int `json:"skipped"`
}

// Importer loads the legacy timesheet workbook: the project taxonomy, the
// member list and the raw form responses.
type Importer struct {
	db   *gorm.DB
	cfg  config.ImportConfig
	sync CatalogSyncer
	now  func() time.Time
}

func NewImporter(db *gorm.DB, cfg config.ImportConfig) *Importer {
	return &Importer{db: db, cfg: cfg, now: time.Now}
}

func (im *Importer) SetSyncer(sync CatalogSyncer) { im.sync = sync }

// Import reads an .xlsx workbook from r and writes it in one transaction.
func (im *Importer) Import(ctx context.Context, r io.Reader) (*ImportReport, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, invalidf("open workbook: %v", err)
	}
	defer f.Close()

	projects, err := readSheet(f, im.cfg.ProjectsSheet, "Portfolio", "Project", "Group Activity")
	if err != nil {
		return nil, err
	}
	members, err := readSheet(f, im.cfg.MembersSheet, "Name", "Email", "Team", "Manager Email")
	if err != nil {
		return nil, err
	}
	responses, err := readSheet(f, im.cfg.ResponsesSheet, "Timestamp", "Email Address", "Date", "Project",
		"Group Activity", "Function Activity", "Task", "Current Status", "Hours")
	if err != nil {
		return nil, err
	}

	run := &importRun{ctx: ctx, report: &ImportReport{}, now: im.now}
	err = im.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		run.tx = tx.WithContext(ctx)
		if err := run.loadCaches(); err != nil {
			return err
		}
		if err := run.importProjects(projects); err != nil {
			return err
		}
		if err := run.importMembers(members); err != nil {
			return err
		}
		return run.importResponses(responses)
	})
	if err != nil {
		logger.Error("import.failed", "err", err)
		return nil, classify("import workbook", err)
	}

	logger.Info("import.done", "members", run.report.Members, "orphans", run.report.OrphanMembers,
		"submissions", run.report.Submissions, "entries", run.report.Entries, "skipped", run.report.Skipped)

	if im.sync != nil {
		im.sync.SyncMembers(ctx, run.newMembers)
		im.sync.SyncTasks(ctx, run.tasks)
		im.sync.SyncTimeEntries(ctx, run.entries)
	}
	return run.report, nil
}

// sheet is a worksheet with its header row turned into a column index.
type sheet struct {
	name   string
	header []string
	cols   map[string]int
	rows   [][]string
}

func readSheet(f *excelize.File, name string, required ...string) (*sheet, error) {
	rows, err := f.GetRows(name)
	if err != nil {
		return nil, invalidf("read sheet %q: %v", name, err)
	}
	if len(rows) == 0 {
		return nil, invalidf("sheet %q is empty", name)
	}
	s := &sheet{name: name, header: rows[0], cols: map[string]int{}, rows: rows[1:]}
	for i, h := range rows[0] {
		s.cols[strings.ToLower(strings.TrimSpace(h))] = i
	}
	for _, c := range required {
		if _, ok := s.cols[strings.ToLower(c)]; !ok {
			return nil, invalidf("sheet %q is missing column %q", name, c)
		}
	}
	return s, nil
}

func (s *sheet) get(row []string, col string) string {
	i, ok := s.cols[strings.ToLower(col)]
	if !ok || i >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[i])
}

type gaKey struct {
	name      string
	projectID int
}

type faKey struct {
	name   string
	teamID int
}

type importRun struct {
	ctx    context.Context
	tx     *gorm.DB
	report *ImportReport
	now    func() time.Time

	portfolios map[string]*model.Portfolio
	projects   map[string]*model.Project
	gas        map[gaKey]*model.GroupActivity
	teams      map[string]*model.Team
	fas        map[faKey]*model.FunctionActivity
	members    map[string]*model.TeamMember

	newMembers []model.TeamMember
	tasks      []model.Task
	entries    []model.TimeEntry
}

func (r *importRun) loadCaches() error {
	r.portfolios = map[string]*model.Portfolio{}
	r.projects = map[string]*model.Project{}
	r.gas = map[gaKey]*model.GroupActivity{}
	r.teams = map[string]*model.Team{}
	r.fas = map[faKey]*model.FunctionActivity{}
	r.members = map[string]*model.TeamMember{}

	var portfolios []model.Portfolio
	var projects []model.Project
	var gas []model.GroupActivity
	var teams []model.Team
	var fas []model.FunctionActivity
	var members []model.TeamMember
	for _, dst := range []any{&portfolios, &projects, &gas, &teams, &fas, &members} {
		if err := r.tx.Order("id").Find(dst).Error; err != nil {
			return fmt.Errorf("load catalog: %w", err)
		}
	}
	for i := range portfolios {
		r.portfolios[portfolios[i].Name] = &portfolios[i]
	}
	for i := range projects {
		r.projects[projects[i].Name] = &projects[i]
	}
	for i := range gas {
		if gas[i].ProjectID != nil {
			k := gaKey{gas[i].Name, *gas[i].ProjectID}
			if _, ok := r.gas[k]; !ok {
				r.gas[k] = &gas[i]
			}
		}
	}
	for i := range teams {
		r.teams[teams[i].Name] = &teams[i]
	}
	for i := range fas {
		if fas[i].TeamID != nil {
			k := faKey{fas[i].Name, *fas[i].TeamID}
			if _, ok := r.fas[k]; !ok {
				r.fas[k] = &fas[i]
			}
		}
	}
	for i := range members {
		r.members[strings.ToLower(members[i].Email)] = &members[i]
	}
	return nil
}

// importProjects reads Portfolio, Project, Group Activity and then one
// column per team listing that team's function activities.
func (r *importRun) importProjects(s *sheet) error {
	fixed := map[string]bool{"portfolio": true, "project": true, "group activity": true}
	var teamCols []int
	for i, h := range s.header {
		h = strings.TrimSpace(h)
		if h != "" && !fixed[strings.ToLower(h)] {
			teamCols = append(teamCols, i)
		}
	}

	for _, row := range s.rows {
		portfolioName := s.get(row, "Portfolio")
		projectName := s.get(row, "Project")
		gaName := s.get(row, "Group Activity")

		if projectName != "" {
			var portfolioID *int
			if portfolioName != "" {
				p, err := r.portfolio(portfolioName)
				if err != nil {
					return err
				}
				portfolioID = &p.ID
			}
			project, err := r.project(projectName, portfolioID, model.ProjectActive)
			if err != nil {
				return err
			}
			if gaName != "" {
				if _, err := r.groupActivity(gaName, project.ID); err != nil {
					return err
				}
			}
		}

		for _, i := range teamCols {
			if i >= len(row) || strings.TrimSpace(row[i]) == "" {
				continue
			}
			team, err := r.team(strings.TrimSpace(s.header[i]))
			if err != nil {
				return err
			}
			if _, err := r.functionActivity(strings.TrimSpace(row[i]), team.ID); err != nil {
				return err
			}
		}
	}
	return nil
}

// importMembers creates teams and members, then links managers in a second
// pass so a manager may appear after their reports.
func (r *importRun) importMembers(s *sheet) error {
	managers := map[string]bool{}
	for _, row := range s.rows {
		if m := strings.ToLower(s.get(row, "Manager Email")); m != "" {
			managers[m] = true
		}
	}

	for _, row := range s.rows {
		email := strings.ToLower(s.get(row, "Email"))
		if email == "" {
			r.report.Skipped++
			continue
		}
		if _, ok := r.members[email]; ok {
			continue
		}
		m := model.TeamMember{Email: email, FullName: s.get(row, "Name"), Status: model.MemberActive, Role: model.RoleUser}
		if managers[email] {
			m.Role = model.RoleManager
		}
		if teamName := s.get(row, "Team"); teamName != "" {
			team, err := r.team(teamName)
			if err != nil {
				return err
			}
			m.TeamID = &team.ID
		}
		if err := r.createMember(&m); err != nil {
			return err
		}
		r.report.Members++
	}

	for _, row := range s.rows {
		m := r.members[strings.ToLower(s.get(row, "Email"))]
		mgr := r.members[strings.ToLower(s.get(row, "Manager Email"))]
		if m == nil || mgr == nil || m.ManagerID != nil || m.ID == mgr.ID {
			continue
		}
		if err := r.tx.Model(m).Update("manager_id", mgr.ID).Error; err != nil {
			return fmt.Errorf("set manager of %s: %w", m.Email, err)
		}
		m.ManagerID = &mgr.ID
	}
	return nil
}

type submissionKey struct {
	email   string
	weekEnd time.Time
}

// importResponses turns form rows into submitted entries, one submission
// per member and week.
func (r *importRun) importResponses(s *sheet) error {
	submissions := map[submissionKey]string{}

	for _, row := range s.rows {
		email := strings.ToLower(s.get(row, "Email Address"))
		day, okDate := parseSheetDate(s.get(row, "Date"))
		hours, errHours := strconv.ParseFloat(s.get(row, "Hours"), 64)
		projectName := s.get(row, "Project")
		if email == "" || !okDate || errHours != nil || hours <= 0 || projectName == "" {
			r.report.Skipped++
			continue
		}

		fa := r.lookupFunctionActivity(s.get(row, "Function Activity"), s.get(row, "Team"))
		if fa == nil {
			r.report.Skipped++
			continue
		}

		member, err := r.orphanMember(email)
		if err != nil {
			return err
		}
		project, ok := r.projects[projectName]
		if !ok {
			if project, err = r.project(projectName, nil, model.ProjectInactive); err != nil {
				return err
			}
			r.report.OrphanProjects++
		}
		gaName := s.get(row, "Group Activity")
		if gaName == "" {
			gaName = missingName
		}
		ga, err := r.groupActivity(gaName, project.ID)
		if err != nil {
			return err
		}

		status := model.TaskDone
		if raw := s.get(row, "Current Status"); raw != "" {
			if status, err = model.ParseTaskStatus(raw); err != nil {
				r.report.Skipped++
				continue
			}
		}
		task := model.Task{
			Type:               model.TaskTypeWork,
			Description:        s.get(row, "Task"),
			Status:             status,
			GroupActivityID:    ga.ID,
			FunctionActivityID: fa.ID,
		}
		task, created, err := findOrCreateTask(r.ctx, r.tx, task)
		if err != nil {
			return err
		}
		if created {
			r.tasks = append(r.tasks, task)
		}

		key := submissionKey{email: email, weekEnd: WeekEnding(day)}
		subID, ok := submissions[key]
		if !ok {
			subID = uuid.NewString()
			submissions[key] = subID
			r.report.Submissions++
		}
		ts, ok := parseSheetDateTime(s.get(row, "Timestamp"))
		if !ok {
			ts = r.now()
		}
		entry := model.TimeEntry{
			Hours:        hours,
			Notes:        s.get(row, "Notes"),
			DateOfWork:   day,
			SubmissionID: subID,
			Timestamp:    ts,
			Status:       model.EntrySubmitted,
			TaskID:       task.ID,
			TeamMemberID: member.ID,
		}
		if err := r.tx.Create(&entry).Error; err != nil {
			return fmt.Errorf("insert time entry: %w", err)
		}
		r.entries = append(r.entries, entry)
		r.report.Entries++
	}
	return nil
}

func (r *importRun) lookupFunctionActivity(name, teamName string) *model.FunctionActivity {
	if name == "" {
		return nil
	}
	if team, ok := r.teams[teamName]; ok {
		if fa, ok := r.fas[faKey{name, team.ID}]; ok {
			return fa
		}
	}
	var found *model.FunctionActivity
	for k, fa := range r.fas {
		if k.name == name && (found == nil || fa.ID < found.ID) {
			found = fa
		}
	}
	return found
}

func (r *importRun) orphanMember(email string) (*model.TeamMember, error) {
	if m, ok := r.members[email]; ok {
		return m, nil
	}
	m := model.TeamMember{
		Email:    email,
		FullName: fmt.Sprintf("Orphaned User (%s)", email),
		Status:   model.MemberInactive,
		Role:     model.RoleUser,
	}
	if err := r.createMember(&m); err != nil {
		return nil, err
	}
	r.report.OrphanMembers++
	return r.members[email], nil
}

func (r *importRun) createMember(m *model.TeamMember) error {
	if err := r.tx.Create(m).Error; err != nil {
		return fmt.Errorf("insert member %s: %w", m.Email, err)
	}
	r.members[m.Email] = m
	r.newMembers = append(r.newMembers, *m)
	return nil
}

func (r *importRun) portfolio(name string) (*model.Portfolio, error) {
	if p, ok := r.portfolios[name]; ok {
		return p, nil
	}
	p := &model.Portfolio{Name: name}
	if err := r.tx.Create(p).Error; err != nil {
		return nil, fmt.Errorf("insert portfolio %q: %w", name, err)
	}
	r.portfolios[name] = p
	r.report.Portfolios++
	return p, nil
}

func (r *importRun) project(name string, portfolioID *int, status model.ProjectStatus) (*model.Project, error) {
	if p, ok := r.projects[name]; ok {
		if p.PortfolioID == nil && portfolioID != nil {
			if err := r.tx.Model(p).Update("portfolio_id", *portfolioID).Error; err != nil {
				return nil, fmt.Errorf("update project %q: %w", name, err)
			}
			p.PortfolioID = portfolioID
		}
		return p, nil
	}
	p := &model.Project{Name: name, Status: status, PortfolioID: portfolioID}
	if err := r.tx.Create(p).Error; err != nil {
		return nil, fmt.Errorf("insert project %q: %w", name, err)
	}
	r.projects[name] = p
	r.report.Projects++
	return p, nil
}

func (r *importRun) groupActivity(name string, projectID int) (*model.GroupActivity, error) {
	k := gaKey{name, projectID}
	if ga, ok := r.gas[k]; ok {
		return ga, nil
	}
	ga := &model.GroupActivity{Name: name, ProjectID: &projectID}
	if err := r.tx.Create(ga).Error; err != nil {
		return nil, fmt.Errorf("insert group activity %q: %w", name, err)
	}
	r.gas[k] = ga
	r.report.GroupActivities++
	return ga, nil
}

func (r *importRun) team(name string) (*model.Team, error) {
	if name == "" {
		return nil, errors.New("empty team name")
	}
	if t, ok := r.teams[name]; ok {
		return t, nil
	}
	t := &model.Team{Name: name}
	if err := r.tx.Create(t).Error; err != nil {
		return nil, fmt.Errorf("insert team %q: %w", name, err)
	}
	r.teams[name] = t
	r.report.Teams++
	return t, nil
}

func (r *importRun) functionActivity(name string, teamID int) (*model.FunctionActivity, error) {
	k := faKey{name, teamID}
	if fa, ok := r.fas[k]; ok {
		return fa, nil
	}
	fa := &model.FunctionActivity{Name: name, TeamID: &teamID}
	if err := r.tx.Create(fa).Error; err != nil {
		return nil, fmt.Errorf("insert function activity %q: %w", name, err)
	}
	r.fas[k] = fa
	r.report.FunctionActivities++
	return fa, nil
}

var sheetDateLayouts = []string{
	"2006-01-02",
	"1/2/2006",
	"01/02/2006",
	"1/2/06",
	"01-02-06",
	"2006-01-02 15:04:05",
	"1/2/2006 15:04:05",
	"1/2/2006 15:04",
}

// parseSheetDate accepts the usual formatted layouts and raw Excel serials.
func parseSheetDate(v string) (time.Time, bool) {
	t, ok := parseSheetDateTime(v)
	if !ok {
		return time.Time{}, false
	}
	return model.NewDate(t).Time, true
}

func parseSheetDateTime(v string) (time.Time, bool) {
	if v == "" {
		return time.Time{}, false
	}
	for _, layout := range sheetDateLayouts {
		if t, err := time.Parse(layout, v); err == nil {
			return t, true
		}
	}
	if serial, err := strconv.ParseFloat(v, 64); err == nil && serial > 0 {
		if t, err := excelize.ExcelDateToTime(serial, false); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}
