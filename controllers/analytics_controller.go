package controllers

import (
	"net/http"
	"time"

	"macrolog/middlewares"
	"macrolog/services"
	"macrolog/utils"

	"github.com/gin-gonic/gin"
)

type AnalyticsController struct {
	Svc *services.AnalyticsService
	Loc *time.Location
}

func NewAnalyticsController(svc *services.AnalyticsService, loc *time.Location) *AnalyticsController {
	return &AnalyticsController{Svc: svc, Loc: loc}
}

// GET /stats?period=week|month
func (h *AnalyticsController) GetStats(c *gin.Context) {
	out, err := h.Svc.Summary(c.Request.Context(), middlewares.UserID(c), c.DefaultQuery("period", "week"), utils.Today(h.Loc))
	if err != nil {
		respondError(c, err, "load stats")
		return
	}
	c.JSON(http.StatusOK, out)
}

// GET /stats/weekly?week_start=YYYY-MM-DD&mode=chart|detailed
func (h *AnalyticsController) GetWeeklyOverview(c *gin.Context) {
	weekStart := startOfWeek(time.Now().In(h.Loc)).Format(utils.DateLayout)
	if v := c.Query("week_start"); v != "" {
		ws, err := utils.ParseDate("week_start", v)
		if err != nil {
			respondError(c, err, "load weekly overview")
			return
		}
		weekStart = startOfWeek(ws).Format(utils.DateLayout)
	}
	out, err := h.Svc.WeeklyOverview(c.Request.Context(), middlewares.UserID(c), weekStart, c.DefaultQuery("mode", "detailed"))
	if err != nil {
		respondError(c, err, "load weekly overview")
		return
	}
	c.JSON(http.StatusOK, out)
}

// startOfWeek returns the Monday on or before t.
func startOfWeek(t time.Time) time.Time {
	wd := int(t.Weekday())
	if wd == 0 {
		wd = 7
	}
	tt := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
	return tt.AddDate(0, 0, -(wd - 1))
}
