package handler

import (
	"net/http"

	"timesheet/internal/middleware"
	"timesheet/internal/model"
	"timesheet/internal/service"

	"github.com/gin-gonic/gin"
)

type CatalogHandler struct{ svc *service.CatalogService }

func NewCatalogHandler(svc *service.CatalogService) *CatalogHandler {
	return &CatalogHandler{svc: svc}
}

// list wraps a catalog read as a handler.
func list[T any](op string, fn func(c *gin.Context) ([]T, error)) gin.HandlerFunc {
	return func(c *gin.Context) {
		out, err := fn(c)
		if err != nil {
			writeError(c, op, err)
			return
		}
		if out == nil {
			out = []T{}
		}
		c.JSON(http.StatusOK, out)
	}
}

func (h *CatalogHandler) Portfolios() gin.HandlerFunc {
	return list("list_portfolios", func(c *gin.Context) ([]model.Portfolio, error) {
		return h.svc.Portfolios(c.Request.Context())
	})
}

func (h *CatalogHandler) Projects() gin.HandlerFunc {
	return list("list_projects", func(c *gin.Context) ([]model.ProjectView, error) {
		return h.svc.Projects(c.Request.Context())
	})
}

func (h *CatalogHandler) GroupActivities() gin.HandlerFunc {
	return list("list_group_activities", func(c *gin.Context) ([]model.GroupActivityView, error) {
		return h.svc.GroupActivities(c.Request.Context())
	})
}

func (h *CatalogHandler) Teams() gin.HandlerFunc {
	return list("list_teams", func(c *gin.Context) ([]model.Team, error) {
		return h.svc.Teams(c.Request.Context())
	})
}

// GET /api/function_activities?team=
func (h *CatalogHandler) FunctionActivities(c *gin.Context) {
	team := c.Query("team")
	if team == "" {
		badRequest(c, "team is required")
		return
	}
	names, err := h.svc.FunctionActivityNames(c.Request.Context(), team)
	if err != nil {
		writeError(c, "list_function_activities", err)
		return
	}
	if names == nil {
		names = []string{}
	}
	c.JSON(http.StatusOK, names)
}

// GET /api/users?email=
func (h *CatalogHandler) Profile(c *gin.Context) {
	email := c.Query("email")
	if email == "" {
		badRequest(c, "email is required")
		return
	}
	if !middleware.CanActFor(c, email) {
		c.JSON(http.StatusForbidden, gin.H{"error": "cannot read another user's profile"})
		return
	}
	p, err := h.svc.MemberProfile(c.Request.Context(), email)
	if err != nil {
		writeError(c, "profile", err)
		return
	}
	c.JSON(http.StatusOK, p)
}

// --- admin ---

func (h *CatalogHandler) CreatePortfolio(c *gin.Context) {
	var in model.NameInput
	if err := c.ShouldBindJSON(&in); err != nil {
		badRequest(c, "invalid request")
		return
	}
	p, err := h.svc.CreatePortfolio(c.Request.Context(), in.Name)
	respond(c, "create_portfolio", http.StatusCreated, p, err)
}

func (h *CatalogHandler) UpdatePortfolio(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	var in model.NameInput
	if err := c.ShouldBindJSON(&in); err != nil {
		badRequest(c, "invalid request")
		return
	}
	p, err := h.svc.UpdatePortfolio(c.Request.Context(), id, in.Name)
	respond(c, "update_portfolio", http.StatusOK, p, err)
}

func (h *CatalogHandler) DeletePortfolio(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	p, err := h.svc.DeletePortfolio(c.Request.Context(), id)
	respond(c, "delete_portfolio", http.StatusOK, p, err)
}

func (h *CatalogHandler) CreateProject(c *gin.Context) {
	var in model.ProjectInput
	if err := c.ShouldBindJSON(&in); err != nil {
		badRequest(c, "invalid request")
		return
	}
	p, err := h.svc.CreateProject(c.Request.Context(), in)
	respond(c, "create_project", http.StatusCreated, p, err)
}

func (h *CatalogHandler) UpdateProject(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	var in model.ProjectInput
	if err := c.ShouldBindJSON(&in); err != nil {
		badRequest(c, "invalid request")
		return
	}
	p, err := h.svc.UpdateProject(c.Request.Context(), id, in)
	respond(c, "update_project", http.StatusOK, p, err)
}

func (h *CatalogHandler) DeleteProject(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	p, err := h.svc.DeleteProject(c.Request.Context(), id)
	respond(c, "delete_project", http.StatusOK, p, err)
}

func (h *CatalogHandler) CreateGroupActivity(c *gin.Context) {
	var in model.GroupActivityInput
	if err := c.ShouldBindJSON(&in); err != nil {
		badRequest(c, "invalid request")
		return
	}
	ga, err := h.svc.CreateGroupActivity(c.Request.Context(), in)
	respond(c, "create_group_activity", http.StatusCreated, ga, err)
}

func (h *CatalogHandler) UpdateGroupActivity(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	var in model.GroupActivityInput
	if err := c.ShouldBindJSON(&in); err != nil {
		badRequest(c, "invalid request")
		return
	}
	ga, err := h.svc.UpdateGroupActivity(c.Request.Context(), id, in)
	respond(c, "update_group_activity", http.StatusOK, ga, err)
}

func (h *CatalogHandler) DeleteGroupActivity(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	ga, err := h.svc.DeleteGroupActivity(c.Request.Context(), id)
	respond(c, "delete_group_activity", http.StatusOK, ga, err)
}

func (h *CatalogHandler) CreateTeam(c *gin.Context) {
	var in model.NameInput
	if err := c.ShouldBindJSON(&in); err != nil {
		badRequest(c, "invalid request")
		return
	}
	t, err := h.svc.CreateTeam(c.Request.Context(), in.Name)
	respond(c, "create_team", http.StatusCreated, t, err)
}

func (h *CatalogHandler) CreateFunctionActivity(c *gin.Context) {
	var in model.FunctionActivityInput
	if err := c.ShouldBindJSON(&in); err != nil {
		badRequest(c, "invalid request")
		return
	}
	fa, err := h.svc.CreateFunctionActivity(c.Request.Context(), in)
	respond(c, "create_function_activity", http.StatusCreated, fa, err)
}

// PUT /api/admin/members/:id/manager
func (h *CatalogHandler) AssignManager(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	var in model.ManagerInput
	if err := c.ShouldBindJSON(&in); err != nil {
		badRequest(c, "invalid request")
		return
	}
	m, err := h.svc.AssignManager(c.Request.Context(), id, in.ManagerID)
	respond(c, "assign_manager", http.StatusOK, m, err)
}

func respond(c *gin.Context, op string, code int, body any, err error) {
	if err != nil {
		writeError(c, op, err)
		return
	}
	c.JSON(code, body)
}
