package handler

import (
	"net/http"

	"timesheet/internal/middleware"
	"timesheet/internal/model"
	"timesheet/internal/service"

	"github.com/gin-gonic/gin"
)

type SubmissionHandler struct{ svc *service.SubmissionService }

func NewSubmissionHandler(svc *service.SubmissionService) *SubmissionHandler {
	return &SubmissionHandler{svc: svc}
}

// POST /api/submissions
func (h *SubmissionHandler) Submit(c *gin.Context) {
	var req model.SubmissionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid request: "+err.Error())
		return
	}
	if !middleware.CanActFor(c, req.UserEmail) {
		c.JSON(http.StatusForbidden, gin.H{"error": "cannot submit for another user"})
		return
	}
	res, err := h.svc.Submit(c.Request.Context(), req)
	if err != nil {
		writeError(c, "submission", err)
		return
	}
	c.JSON(http.StatusCreated, res)
}

// GET /api/submissions/load-week?user_email=&week_date=&status=
func (h *SubmissionHandler) LoadWeek(c *gin.Context) {
	email := c.Query("user_email")
	if email == "" {
		badRequest(c, "user_email is required")
		return
	}
	weekDate, err := model.ParseDate(c.Query("week_date"))
	if err != nil {
		badRequest(c, err.Error())
		return
	}
	statuses := []model.EntryStatus{model.EntrySubmitted, model.EntryApproved}
	if raw := c.QueryArray("status"); len(raw) > 0 {
		statuses = nil
		for _, s := range raw {
			st, err := model.ParseEntryStatus(s)
			if err != nil {
				badRequest(c, err.Error())
				return
			}
			statuses = append(statuses, st)
		}
	}
	if !middleware.CanActFor(c, email) {
		c.JSON(http.StatusForbidden, gin.H{"error": "cannot read another user's timesheet"})
		return
	}

	week, err := h.svc.LoadWeek(c.Request.Context(), email, weekDate.Time, statuses)
	if err != nil {
		writeError(c, "load_week", err)
		return
	}
	c.JSON(http.StatusOK, week)
}

// GET /api/submissions/load-draft/:email
func (h *SubmissionHandler) LoadDraft(c *gin.Context) {
	email := c.Param("email")
	if !middleware.CanActFor(c, email) {
		c.JSON(http.StatusForbidden, gin.H{"error": "cannot read another user's timesheet"})
		return
	}
	draft, err := h.svc.LoadLatestDraft(c.Request.Context(), email)
	if err != nil {
		writeError(c, "load_draft", err)
		return
	}
	c.JSON(http.StatusOK, draft)
}
