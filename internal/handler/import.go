package handler

import (
	"net/http"
	"path/filepath"
	"strings"

	"timesheet/internal/logger"
	"timesheet/internal/service"

	"github.com/gin-gonic/gin"
)

type ImportHandler struct{ importer *service.Importer }

func NewImportHandler(importer *service.Importer) *ImportHandler {
	return &ImportHandler{importer: importer}
}

// POST /api/admin/import with multipart field "file".
func (h *ImportHandler) Import(c *gin.Context) {
	file, err := c.FormFile("file")
	if err != nil {
		badRequest(c, "file is required")
		return
	}
	if !strings.EqualFold(filepath.Ext(file.Filename), ".xlsx") {
		badRequest(c, "only .xlsx workbooks are supported")
		return
	}
	logger.Info("import.start", "file", file.Filename, "size", file.Size)

	f, err := file.Open()
	if err != nil {
		badRequest(c, "cannot read upload")
		return
	}
	defer f.Close()

	report, err := h.importer.Import(c.Request.Context(), f)
	if err != nil {
		writeError(c, "import", err)
		return
	}
	c.JSON(http.StatusOK, report)
}
