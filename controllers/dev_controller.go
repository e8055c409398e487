package controllers

import (
	"net/http"
	"strings"
	"time"

	"macrolog/services"

	"github.com/gin-gonic/gin"
)

// DevController mints session tokens for local testing. Only routed when
// DEV_TOKENS is enabled.
type DevController struct {
	Sessions *services.SessionManager
	Bus      *services.ChangeBus
}

func NewDevController(sm *services.SessionManager, bus *services.ChangeBus) *DevController {
	return &DevController{Sessions: sm, Bus: bus}
}

type tokenReq struct {
	UserID string `json:"user_id" binding:"required"`
	TTL    string `json:"ttl"`
}

func (d *DevController) IssueToken(c *gin.Context) {
	var req tokenReq
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}
	ttl := 24 * time.Hour
	if req.TTL != "" {
		v, err := time.ParseDuration(req.TTL)
		if err != nil || v <= 0 {
			badRequest(c, "ttl must be a positive duration like 1h")
			return
		}
		ttl = v
	}
	tok, err := d.Sessions.Mint(strings.TrimSpace(req.UserID), ttl)
	if err != nil {
		respondError(c, err, "issue token")
		return
	}
	c.JSON(http.StatusOK, gin.H{"access_token": tok, "expires_in": int(ttl.Seconds())})
}

// PingRealtime pushes a synthetic meals.changed event to a user's sockets.
func (d *DevController) PingRealtime(c *gin.Context) {
	userID := c.Param("userID")
	d.Bus.MealsChanged(userID, "ping", c.DefaultQuery("date", ""))
	c.Status(http.StatusAccepted)
}
