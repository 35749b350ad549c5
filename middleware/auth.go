// Package middleware provides request filters for the voting and results screens.
// File: middleware/auth.go
package middleware

import (
	"net/http"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"

	"school-vote/logger"
	"school-vote/models"
)

// session keys
const (
	SessionVoterEmail = "voterEmail"
	SessionVoterName  = "voterName"
	SessionAdminToken = "adminToken"
)

// context keys set by the middleware for downstream handlers
const (
	ContextVoter      = "voter"
	ContextAdminToken = "adminToken"
)

// -------------- voter middleware --------------

// VoterRequired ensures a voter identity was stored at login.
// How it works:
// - Reads the voter email and name from the session.
// - If either is missing, redirects to "/" (the login page) and aborts.
// - Otherwise puts the models.Voter into the gin context under ContextVoter.
func VoterRequired(c *gin.Context) {
	session := sessions.Default(c)
	email, _ := session.Get(SessionVoterEmail).(string)
	name, _ := session.Get(SessionVoterName).(string)

	if email == "" || name == "" {
		logger.Warn.Printf("VoterRequired: no voter in session for %s, redirecting to login", c.Request.URL.Path)
		c.Redirect(http.StatusFound, "/")
		c.Abort()
		return
	}

	c.Set(ContextVoter, models.Voter{Email: email, Name: name})
	c.Next()
}

// VoterFrom returns the voter placed in the context by VoterRequired.
func VoterFrom(c *gin.Context) (models.Voter, bool) {
	v, ok := c.Get(ContextVoter)
	if !ok {
		return models.Voter{}, false
	}
	voter, ok := v.(models.Voter)
	return voter, ok
}
