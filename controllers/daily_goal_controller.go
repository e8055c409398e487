package controllers

import (
	"net/http"
	"time"

	"macrolog/middlewares"
	"macrolog/services"
	"macrolog/utils"

	"github.com/gin-gonic/gin"
)

type DailyController struct {
	Goals *services.GoalService
	Stats *services.DailyStatsService
	Loc   *time.Location
}

func NewDailyController(goals *services.GoalService, stats *services.DailyStatsService, loc *time.Location) *DailyController {
	return &DailyController{Goals: goals, Stats: stats, Loc: loc}
}

// GetDaily returns meals, totals and targets for ?date= (default today).
func (h *DailyController) GetDaily(c *gin.Context) {
	date, ok := dateParam(c, "date", h.Loc)
	if !ok {
		return
	}
	out, err := h.Goals.DailySummary(c.Request.Context(), middlewares.UserID(c), date)
	if err != nil {
		respondError(c, err, "load daily summary")
		return
	}
	c.JSON(http.StatusOK, out)
}

func (h *DailyController) GetTargets(c *gin.Context) {
	date, ok := dateParam(c, "date", h.Loc)
	if !ok {
		return
	}
	t, err := h.Goals.TargetsFor(c.Request.Context(), middlewares.UserID(c), date)
	if err != nil {
		respondError(c, err, "compute targets")
		return
	}
	c.JSON(http.StatusOK, gin.H{"date": date, "targets": t})
}

func (h *DailyController) GetDailyStats(c *gin.Context) {
	date := c.Param("date")
	if _, err := utils.ParseDate("date", date); err != nil {
		respondError(c, err, "load daily stats")
		return
	}
	ds, err := h.Stats.Get(c.Request.Context(), middlewares.UserID(c), date)
	if err != nil {
		respondError(c, err, "load daily stats")
		return
	}
	c.JSON(http.StatusOK, gin.H{"date": date, "stats": ds})
}

func (h *DailyController) UpsertDailyStats(c *gin.Context) {
	var in services.DailyStatsInput
	if err := c.ShouldBindJSON(&in); err != nil {
		badRequest(c, err.Error())
		return
	}
	ds, err := h.Stats.Upsert(c.Request.Context(), middlewares.UserID(c), c.Param("date"), in)
	if err != nil {
		respondError(c, err, "save daily stats")
		return
	}
	c.JSON(http.StatusOK, ds)
}

// ListDailyStats returns rows in ?from=&to=, defaulting to the last 30 days.
func (h *DailyController) ListDailyStats(c *gin.Context) {
	to, ok := dateParam(c, "to", h.Loc)
	if !ok {
		return
	}
	from := c.DefaultQuery("from", utils.AddDays(to, -30))
	if _, err := utils.ParseDate("from", from); err != nil {
		respondError(c, err, "load daily stats")
		return
	}
	rows, err := h.Stats.History(c.Request.Context(), middlewares.UserID(c), from, to)
	if err != nil {
		respondError(c, err, "load daily stats")
		return
	}
	c.JSON(http.StatusOK, rows)
}
