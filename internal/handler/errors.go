package handler

import (
	"errors"
	"net/http"
	"strconv"

	"timesheet/internal/logger"
	"timesheet/internal/service"

	"github.com/gin-gonic/gin"
)

// writeError maps service error kinds to status codes. Persistence and
// unexpected errors are logged and reported without internals.
func writeError(c *gin.Context, op string, err error) {
	switch {
	case errors.Is(err, service.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, service.ErrValidation):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, service.ErrPersistence):
		logger.Error(op+".failed", "err", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "database error"})
	default:
		logger.Error(op+".failed", "err", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}
}

func badRequest(c *gin.Context, msg string) {
	c.JSON(http.StatusBadRequest, gin.H{"error": msg})
}

func pathID(c *gin.Context) (int, bool) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil || id <= 0 {
		badRequest(c, "invalid id")
		return 0, false
	}
	return id, true
}
