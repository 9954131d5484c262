package handlers

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/sahelpay/tontine-backend/middleware"
	"github.com/sahelpay/tontine-backend/services"
	"github.com/sahelpay/tontine-backend/utils"
)

// ExportHandler handles Excel export HTTP requests
type ExportHandler struct {
	exportService *services.ExportService
}

// NewExportHandler creates a new export handler
func NewExportHandler(exportService *services.ExportService) *ExportHandler {
	return &ExportHandler{exportService: exportService}
}

// ExportGroupStatement handles GET /groups/:id/export
func (h *ExportHandler) ExportGroupStatement(c *gin.Context) {
	excelFile, filename, err := h.exportService.ExportGroupStatement(middleware.PersonID(c), c.Param("id"))
	if err != nil {
		utils.HandleError(c, err)
		return
	}

	c.Header("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=\"%s\"", filename))
	c.Header("Content-Transfer-Encoding", "binary")

	if err := excelFile.Write(c.Writer); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to write Excel file"})
		return
	}
}
