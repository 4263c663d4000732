package service

import (
	"path/filepath"
	"testing"
	"time"

	"timesheet/internal/model"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	return newPooledTestDB(t, 1)
}

// newPooledTestDB opens a file database shared by up to conns connections.
func newPooledTestDB(t *testing.T, conns int) *gorm.DB {
	t.Helper()
	dsn := filepath.Join(t.TempDir(), "test.db") + "?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)"
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(conns)
	t.Cleanup(func() { sqlDB.Close() })
	require.NoError(t, model.Migrate(db))
	return db
}

// fixture is a minimal catalog: one portfolio, project, group activity
// ("GA1"), team ("Eng"), function activity ("FA1") and member a@x.com.
type fixture struct {
	db        *gorm.DB
	portfolio model.Portfolio
	project   model.Project
	ga        model.GroupActivity
	team      model.Team
	fa        model.FunctionActivity
	member    model.TeamMember
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	return newFixtureOn(t, newTestDB(t))
}

func newFixtureOn(t *testing.T, db *gorm.DB) *fixture {
	t.Helper()
	f := &fixture{db: db}
	f.portfolio = model.Portfolio{Name: "Core"}
	require.NoError(t, db.Create(&f.portfolio).Error)
	f.project = model.Project{Name: "Platform", Status: "Active", PortfolioID: &f.portfolio.ID}
	require.NoError(t, db.Create(&f.project).Error)
	f.ga = model.GroupActivity{Name: "GA1", ProjectID: &f.project.ID}
	require.NoError(t, db.Create(&f.ga).Error)
	f.team = model.Team{Name: "Eng"}
	require.NoError(t, db.Create(&f.team).Error)
	f.fa = model.FunctionActivity{Name: "FA1", TeamID: &f.team.ID}
	require.NoError(t, db.Create(&f.fa).Error)
	f.member = f.addMember(t, "a@x.com")
	return f
}

func (f *fixture) addMember(t *testing.T, email string) model.TeamMember {
	t.Helper()
	m := model.TeamMember{Email: email, FullName: "Member " + email, Status: model.MemberActive, Role: model.RoleUser, TeamID: &f.team.ID}
	require.NoError(t, f.db.Create(&m).Error)
	return m
}

func (f *fixture) entries(t *testing.T, memberID int) []model.TimeEntry {
	t.Helper()
	var out []model.TimeEntry
	require.NoError(t, f.db.Preload("Task").Where("team_member_id = ?", memberID).Order("id").Find(&out).Error)
	return out
}

func date(s string) model.Date {
	d, err := model.ParseDate(s)
	if err != nil {
		panic(err)
	}
	return d
}

func day(s string) time.Time { return date(s).Time }

func countRows(t *testing.T, db *gorm.DB, m any) int64 {
	t.Helper()
	var n int64
	require.NoError(t, db.Model(m).Count(&n).Error)
	return n
}
