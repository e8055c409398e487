package controllers

import (
	"net/http"

	"macrolog/middlewares"
	"macrolog/services"

	"github.com/gin-gonic/gin"
)

// SettingsController serves the per-user goal coefficients.
type SettingsController struct {
	Settings *services.SettingsService
}

func NewSettingsController(s *services.SettingsService) *SettingsController {
	return &SettingsController{Settings: s}
}

func (h *SettingsController) GetSettings(c *gin.Context) {
	us, err := h.Settings.Get(c.Request.Context(), middlewares.UserID(c))
	if err != nil {
		respondError(c, err, "load settings")
		return
	}
	c.JSON(http.StatusOK, us)
}

func (h *SettingsController) UpdateSettings(c *gin.Context) {
	var in services.SettingsInput
	if err := c.ShouldBindJSON(&in); err != nil {
		badRequest(c, err.Error())
		return
	}
	us, err := h.Settings.Upsert(c.Request.Context(), middlewares.UserID(c), in)
	if err != nil {
		respondError(c, err, "save settings")
		return
	}
	c.JSON(http.StatusOK, us)
}
