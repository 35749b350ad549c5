// Package controllers handles voter login and session management.
// File: controllers/loginHandler.go
package controllers

import (
	"errors"
	"net/http"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"

	"school-vote/logger"
	"school-vote/middleware"
	"school-vote/services"
)

// LoginController turns an institutional email into a voter session.
type LoginController struct {
	Resolver *services.IdentityResolver
}

// NewLoginController initializes a new instance of LoginController
func NewLoginController(resolver *services.IdentityResolver) *LoginController {
	return &LoginController{Resolver: resolver}
}

// ShowLoginPage renders the email form. A visitor whose session passes
// VoterRequired goes straight to the ballot.
func (lc *LoginController) ShowLoginPage(c *gin.Context) {
	session := sessions.Default(c)
	email, _ := session.Get(middleware.SessionVoterEmail).(string)
	name, _ := session.Get(middleware.SessionVoterName).(string)
	if email != "" && name != "" {
		c.Redirect(http.StatusFound, "/vote")
		return
	}
	c.HTML(http.StatusOK, "login.html", gin.H{
		"Domain": lc.Resolver.Domain(),
	})
}

// ------------------ login handling ------------------

// PerformLogin validates the email and stores the derived identity in the
// session. Wrong domains re-render the form with a notice.
func (lc *LoginController) PerformLogin(c *gin.Context) {
	raw := c.PostForm("email")

	voter, err := lc.Resolver.Resolve(raw)
	if err != nil {
		if errors.Is(err, services.ErrInvalidEmailDomain) {
			logger.Warn.Printf("PerformLogin: rejected email %q", raw)
		}
		c.HTML(http.StatusBadRequest, "login.html", gin.H{
			"Domain": lc.Resolver.Domain(),
			"Email":  raw,
			"Error":  "Use seu email institucional (" + lc.Resolver.Domain() + ").",
		})
		return
	}

	session := sessions.Default(c)
	session.Set(middleware.SessionVoterEmail, voter.Email)
	session.Set(middleware.SessionVoterName, voter.Name)
	if err := session.Save(); err != nil {
		logger.Error.Printf("PerformLogin: failed to save session: %v", err)
		c.HTML(http.StatusInternalServerError, "login.html", gin.H{
			"Domain": lc.Resolver.Domain(),
			"Email":  raw,
			"Error":  "Erro interno, tente novamente.",
		})
		return
	}

	logger.Info.Printf("PerformLogin: %s logged in", voter.Email)
	c.Redirect(http.StatusFound, "/vote")
}

// Logout clears the whole session, including any results token id.
func (lc *LoginController) Logout(c *gin.Context) {
	session := sessions.Default(c)
	if email, ok := session.Get(middleware.SessionVoterEmail).(string); ok {
		logger.Info.Printf("Logout: logging out %s", email)
	}

	session.Clear()
	if err := session.Save(); err != nil {
		logger.Error.Printf("Logout: Error saving session during logout: %v", err)
	} else {
		logger.Info.Println("Logout: Session cleared successfully")
	}
	c.Redirect(http.StatusFound, "/")
}
