package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"timesheet/internal/config"
	"timesheet/internal/middleware"
	"timesheet/internal/model"
	"timesheet/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func init() { gin.SetMode(gin.TestMode) }

type testEnv struct {
	db     *gorm.DB
	router *gin.Engine
	user   model.TeamMember
	admin  model.TeamMember
}

func newEnv(t *testing.T) *testEnv {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(filepath.Join(t.TempDir(), "api.db")), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { sqlDB.Close() })
	require.NoError(t, model.Migrate(db))

	project := model.Project{Name: "Platform", Status: "Active"}
	require.NoError(t, db.Create(&project).Error)
	require.NoError(t, db.Create(&model.GroupActivity{Name: "GA1", ProjectID: &project.ID}).Error)
	team := model.Team{Name: "Eng"}
	require.NoError(t, db.Create(&team).Error)
	require.NoError(t, db.Create(&model.FunctionActivity{Name: "FA1", TeamID: &team.ID}).Error)

	env := &testEnv{db: db}
	env.user = model.TeamMember{Email: "a@x.com", FullName: "A", Status: model.MemberActive, Role: model.RoleUser, TeamID: &team.ID}
	require.NoError(t, db.Create(&env.user).Error)
	env.admin = model.TeamMember{Email: "root@x.com", FullName: "Root", Status: model.MemberActive, Role: model.RoleUser}
	require.NoError(t, db.Create(&env.admin).Error)

	auth := service.NewAuthService(db)
	_, err = auth.SetAdminPassword(context.Background(), "root@x.com", "secret-pass")
	require.NoError(t, err)
	env.admin.Role = model.RoleAdmin

	env.router = NewRouter(Services{
		Auth:       auth,
		Catalog:    service.NewCatalogService(db),
		Submission: service.NewSubmissionService(db),
		Importer:   service.NewImporter(db, config.Default().Import),
	}, []string{"http://localhost"})
	return env
}

func (e *testEnv) token(t *testing.T, m model.TeamMember) string {
	t.Helper()
	tok, err := middleware.IssueToken(&m)
	require.NoError(t, err)
	return tok
}

func (e *testEnv) do(t *testing.T, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)
	return w
}

func submission(email string, hours float64) gin.H {
	return gin.H{
		"user_email": email,
		"week_date":  "2024-06-20",
		"status":     "submitted",
		"tasks": []gin.H{{
			"description": "Design", "group_activity": "GA1", "function_activity": "FA1",
			"status": "In Progress", "weekly_hours": hours,
		}},
		"meetings": []gin.H{},
	}
}

func TestSubmitAndLoadWeek(t *testing.T) {
	env := newEnv(t)
	tok := env.token(t, env.user)

	w := env.do(t, http.MethodPost, "/api/submissions", tok, submission("a@x.com", 12))
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var res model.SubmitResult
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &res))
	assert.True(t, res.Success)
	assert.NotEmpty(t, res.SubmissionID)

	w = env.do(t, http.MethodGet, "/api/submissions/load-week?user_email=a@x.com&week_date=2024-06-20&status=submitted", tok, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var week model.WeekData
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &week))
	require.Len(t, week.Tasks, 1)
	assert.Equal(t, 12.0, week.Tasks[0].TotalWeeklyHours)
	assert.Contains(t, w.Body.String(), `"total_weekly_hours":12`)

	w = env.do(t, http.MethodGet, "/api/submissions/load-week?user_email=a@x.com&week_date=2024-06-20&status=draft", tok, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"tasks":[],"meetings":[]}`, w.Body.String())
}

func TestSubmitErrors(t *testing.T) {
	env := newEnv(t)
	userTok := env.token(t, env.user)
	adminTok := env.token(t, env.admin)

	w := env.do(t, http.MethodPost, "/api/submissions", "", submission("a@x.com", 1))
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = env.do(t, http.MethodPost, "/api/submissions", userTok, submission("root@x.com", 1))
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = env.do(t, http.MethodPost, "/api/submissions", adminTok, submission("ghost@x.com", 1))
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = env.do(t, http.MethodPost, "/api/submissions", userTok, submission("a@x.com", 0))
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "no valid time entries")

	bad := submission("a@x.com", 1)
	bad["status"] = "pending"
	w = env.do(t, http.MethodPost, "/api/submissions", userTok, bad)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = env.do(t, http.MethodGet, "/api/submissions/load-week?user_email=a@x.com&week_date=junk", userTok, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestLoadDraft(t *testing.T) {
	env := newEnv(t)
	tok := env.token(t, env.user)

	w := env.do(t, http.MethodGet, "/api/submissions/load-draft/a@x.com", tok, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"tasks":[],"meetings":[],"week_date":null}`, w.Body.String())

	draft := submission("a@x.com", 3)
	draft["status"] = "draft"
	require.Equal(t, http.StatusCreated, env.do(t, http.MethodPost, "/api/submissions", tok, draft).Code)

	w = env.do(t, http.MethodGet, "/api/submissions/load-draft/a@x.com", tok, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var out model.DraftWeek
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out))
	require.NotNil(t, out.WeekDate)
	assert.Equal(t, "2024-06-20", *out.WeekDate)
	assert.Len(t, out.Tasks, 1)

	w = env.do(t, http.MethodGet, "/api/submissions/load-draft/root@x.com", tok, nil)
	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestLogin(t *testing.T) {
	env := newEnv(t)

	w := env.do(t, http.MethodPost, "/api/login", "", gin.H{"email": "root@x.com", "password": "wrong-pass"})
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = env.do(t, http.MethodPost, "/api/login", "", gin.H{"email": "root@x.com", "password": "secret-pass"})
	require.Equal(t, http.StatusOK, w.Code)
	var res model.LoginResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &res))
	assert.Equal(t, model.RoleAdmin, res.User.Role)
	assert.NotContains(t, w.Body.String(), "password")

	w = env.do(t, http.MethodGet, "/api/teams", res.Token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"Eng"`)
}

func TestCatalogEndpoints(t *testing.T) {
	env := newEnv(t)
	tok := env.token(t, env.user)

	w := env.do(t, http.MethodGet, "/api/function_activities?team=Eng", tok, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `["FA1"]`, w.Body.String())

	w = env.do(t, http.MethodGet, "/api/function_activities", tok, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = env.do(t, http.MethodGet, "/api/users?email=a@x.com", tok, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"full_name":"A","team":"Eng"}`, w.Body.String())

	w = env.do(t, http.MethodGet, "/api/projects", tok, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"project_name":"Platform"`)

	w = env.do(t, http.MethodGet, "/api/group_activities", tok, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"project":"Platform"`)

	w = env.do(t, http.MethodGet, "/api/portfolios", tok, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `[]`, w.Body.String())
}

func TestAdminCRUD(t *testing.T) {
	env := newEnv(t)
	userTok := env.token(t, env.user)
	adminTok := env.token(t, env.admin)

	w := env.do(t, http.MethodPost, "/api/admin/portfolios", userTok, gin.H{"name": "Core"})
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = env.do(t, http.MethodPost, "/api/admin/portfolios", adminTok, gin.H{"name": "Core"})
	require.Equal(t, http.StatusCreated, w.Code)
	var p model.Portfolio
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &p))

	w = env.do(t, http.MethodPost, "/api/admin/projects", adminTok, gin.H{"name": "Mobile", "portfolio_id": p.ID})
	require.Equal(t, http.StatusCreated, w.Code)

	w = env.do(t, http.MethodDelete, "/api/admin/portfolios/"+itoa(p.ID), adminTok, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = env.do(t, http.MethodPut, "/api/admin/portfolios/999", adminTok, gin.H{"name": "x"})
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = env.do(t, http.MethodDelete, "/api/admin/projects/abc", adminTok, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = env.do(t, http.MethodPost, "/api/admin/teams", adminTok, gin.H{"name": "Ops"})
	require.Equal(t, http.StatusCreated, w.Code)

	w = env.do(t, http.MethodPut, "/api/admin/members/"+itoa(env.user.ID)+"/manager", adminTok, gin.H{"manager_id": env.admin.ID})
	require.Equal(t, http.StatusOK, w.Code)
	w = env.do(t, http.MethodPut, "/api/admin/members/"+itoa(env.admin.ID)+"/manager", adminTok, gin.H{"manager_id": env.user.ID})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestAdminImport(t *testing.T) {
	env := newEnv(t)
	adminTok := env.token(t, env.admin)

	f := excelize.NewFile()
	sheets := map[string][][]any{
		"Projects":         {{"Portfolio", "Project", "Group Activity", "Eng"}, {"Core", "Platform", "GA1", "FA1"}},
		"Team Members":     {{"Name", "Email", "Team", "Manager Email"}, {"A", "a@x.com", "Eng", ""}},
		"Form Responses 1": {{"Timestamp", "Email Address", "Date", "Project", "Group Activity", "Team", "Function Activity", "Task", "Current Status", "Hours", "Notes"}, {"", "a@x.com", "2024-06-18", "Platform", "GA1", "Eng", "FA1", "Design", "Done", "2", ""}},
	}
	for name, rows := range sheets {
		_, err := f.NewSheet(name)
		require.NoError(t, err)
		for i, row := range rows {
			cell, _ := excelize.CoordinatesToCellName(1, i+1)
			require.NoError(t, f.SetSheetRow(name, cell, &row))
		}
	}
	xlsx, err := f.WriteToBuffer()
	require.NoError(t, err)

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	part, err := mw.CreateFormFile("file", "timesheets.xlsx")
	require.NoError(t, err)
	_, err = part.Write(xlsx.Bytes())
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/admin/import", &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	req.Header.Set("Authorization", "Bearer "+adminTok)
	w := httptest.NewRecorder()
	env.router.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var report service.ImportReport
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &report))
	assert.Equal(t, 1, report.Entries)
	assert.Equal(t, 1, report.Portfolios)
	assert.Zero(t, report.Members)
}

func TestHealth(t *testing.T) {
	env := newEnv(t)
	w := env.do(t, http.MethodGet, "/api/health", "", nil)
	assert.Equal(t, http.StatusOK, w.Code)
}

func itoa(i int) string { b, _ := json.Marshal(i); return string(b) }
