package controllers

import (
	"fmt"
	"net/http"
	"time"

	"macrolog/middlewares"
	"macrolog/services"
	"macrolog/utils"

	"github.com/gin-gonic/gin"
)

type ExportController struct {
	Export *services.ExportService
	Loc    *time.Location
}

func NewExportController(e *services.ExportService, loc *time.Location) *ExportController {
	return &ExportController{Export: e, Loc: loc}
}

func (h *ExportController) rangeParams(c *gin.Context) (string, string, bool) {
	to, ok := dateParam(c, "to", h.Loc)
	if !ok {
		return "", "", false
	}
	from := c.DefaultQuery("from", utils.AddDays(to, -30))
	return from, to, true
}

// GET /export?from=&to=
func (h *ExportController) ExportCSV(c *gin.Context) {
	from, to, ok := h.rangeParams(c)
	if !ok {
		return
	}
	data, err := h.Export.CSV(c.Request.Context(), middlewares.UserID(c), from, to)
	if err != nil {
		respondError(c, err, "export meals")
		return
	}
	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="meals_%s_to_%s.csv"`, from, to))
	c.Data(http.StatusOK, "text/csv; charset=utf-8", data)
}

// POST /export/archive?from=&to=
func (h *ExportController) ArchiveCSV(c *gin.Context) {
	from, to, ok := h.rangeParams(c)
	if !ok {
		return
	}
	url, err := h.Export.Archive(c.Request.Context(), middlewares.UserID(c), from, to)
	if err != nil {
		respondError(c, err, "archive export")
		return
	}
	c.JSON(http.StatusCreated, gin.H{"url": url})
}
