package controllers

import (
	"errors"
	"net/http"
	"time"

	"macrolog/apperror"
	"macrolog/middlewares"
	"macrolog/utils"

	"github.com/gin-gonic/gin"
)

// respondError writes {"error": msg}. Unclassified failures become
// "failed to <action>" so storage details never reach the client.
func respondError(c *gin.Context, err error, action string) {
	_ = c.Error(err)
	status := apperror.HTTPStatus(err)
	var ae *apperror.AppError
	msg := "failed to " + action
	if errors.As(err, &ae) {
		msg = ae.Message
	}
	c.JSON(status, gin.H{"error": msg})
}

func badRequest(c *gin.Context, msg string) {
	c.JSON(http.StatusBadRequest, gin.H{"error": msg})
}

// sameUser rejects bodies that name a different user than the session.
func sameUser(c *gin.Context, bodyUserID string) bool {
	if bodyUserID != "" && bodyUserID != middlewares.UserID(c) {
		c.JSON(http.StatusForbidden, gin.H{"error": "userId does not match the signed-in user"})
		return false
	}
	return true
}

// dateParam reads a YYYY-MM-DD query value, defaulting to today in loc.
func dateParam(c *gin.Context, key string, loc *time.Location) (string, bool) {
	v := c.Query(key)
	if v == "" {
		return utils.Today(loc), true
	}
	if _, err := utils.ParseDate(key, v); err != nil {
		badRequest(c, "invalid "+key+" format. Use YYYY-MM-DD")
		return "", false
	}
	return v, true
}
