package handler

import (
	"timesheet/internal/middleware"
	"timesheet/internal/model"
	"timesheet/internal/service"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

type Services struct {
	Auth       *service.AuthService
	Catalog    *service.CatalogService
	Submission *service.SubmissionService
	Importer   *service.Importer
}

// NewRouter wires every endpoint. Everything except login and health needs
// a bearer token; /api/admin additionally needs the admin role.
func NewRouter(s Services, corsOrigins []string) *gin.Engine {
	authH := NewAuthHandler(s.Auth)
	catalogH := NewCatalogHandler(s.Catalog)
	submitH := NewSubmissionHandler(s.Submission)
	importH := NewImportHandler(s.Importer)

	r := gin.Default()
	r.Use(cors.New(cors.Config{
		AllowOrigins:     corsOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		ExposeHeaders:    []string{"X-New-Token"},
		AllowCredentials: true,
	}))

	r.POST("/api/login", authH.Login)
	r.GET("/api/health", Health)

	api := r.Group("/api", middleware.JWTAuth())
	api.GET("/portfolios", catalogH.Portfolios())
	api.GET("/projects", catalogH.Projects())
	api.GET("/group_activities", catalogH.GroupActivities())
	api.GET("/teams", catalogH.Teams())
	api.GET("/function_activities", catalogH.FunctionActivities)
	api.GET("/users", catalogH.Profile)

	api.POST("/submissions", submitH.Submit)
	api.GET("/submissions/load-week", submitH.LoadWeek)
	api.GET("/submissions/load-draft/:email", submitH.LoadDraft)

	admin := api.Group("/admin", middleware.RequireRole(model.RoleAdmin))
	admin.POST("/portfolios", catalogH.CreatePortfolio)
	admin.PUT("/portfolios/:id", catalogH.UpdatePortfolio)
	admin.DELETE("/portfolios/:id", catalogH.DeletePortfolio)
	admin.POST("/projects", catalogH.CreateProject)
	admin.PUT("/projects/:id", catalogH.UpdateProject)
	admin.DELETE("/projects/:id", catalogH.DeleteProject)
	admin.POST("/group_activities", catalogH.CreateGroupActivity)
	admin.PUT("/group_activities/:id", catalogH.UpdateGroupActivity)
	admin.DELETE("/group_activities/:id", catalogH.DeleteGroupActivity)
	admin.POST("/teams", catalogH.CreateTeam)
	admin.POST("/function_activities", catalogH.CreateFunctionActivity)
	admin.PUT("/members/:id/manager", catalogH.AssignManager)
	admin.POST("/import", importH.Import)

	return r
}
