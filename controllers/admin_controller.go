// Package controllers provides HTTP handlers for the results screen.
// File: controllers/admin_controller.go
package controllers

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"

	"school-vote/logger"
	"school-vote/middleware"
	"school-vote/models"
	"school-vote/services"
)

// flashResults holds notices shown on the results and results-auth pages.
const flashResults = "results"

// ---------------- Admin Controller ----------------

// AdminController serves the password-gated results screen, its exports
// and the reset action.
type AdminController struct {
	Gate    *services.AdminGate
	Results *services.ResultsService
}

// NewAdminController initializes a new instance of AdminController
func NewAdminController(gate *services.AdminGate, results *services.ResultsService) *AdminController {
	return &AdminController{Gate: gate, Results: results}
}

// resultEntry is one tally card on the results page.
type resultEntry struct {
	Name    string
	Title   string
	Votes   int
	Percent string
}

func addNotice(c *gin.Context, msg string) {
	session := sessions.Default(c)
	session.AddFlash(msg, flashResults)
	if err := session.Save(); err != nil {
		logger.Error.Printf("addNotice: failed to save session: %v", err)
	}
}

func takeNotices(c *gin.Context) []string {
	session := sessions.Default(c)
	flashes := session.Flashes(flashResults)
	if len(flashes) == 0 {
		return nil
	}
	if err := session.Save(); err != nil {
		logger.Error.Printf("takeNotices: failed to save session: %v", err)
	}
	out := make([]string, 0, len(flashes))
	for _, f := range flashes {
		if s, ok := f.(string); ok {
			out = append(out, s)
		}
	}
	return out
}

// ---------------- results authentication ----------------

// ShowResultsAuth renders the password form, or skips it when the session
// already carries a live token.
func (ac *AdminController) ShowResultsAuth(c *gin.Context) {
	session := sessions.Default(c)
	if id, ok := session.Get(middleware.SessionAdminToken).(string); ok {
		if _, valid := ac.Gate.Verify(id); valid {
			c.Redirect(http.StatusFound, "/results")
			return
		}
	}
	c.HTML(http.StatusOK, "results_auth.html", gin.H{
		"Notices": takeNotices(c),
	})
}

// AuthenticateResults checks the results password and keeps the issued
// token id in the session.
func (ac *AdminController) AuthenticateResults(c *gin.Context) {
	tok, err := ac.Gate.Authenticate(c.PostForm("password"))
	if err != nil {
		c.HTML(http.StatusUnauthorized, "results_auth.html", gin.H{
			"Error": "Senha incorreta.",
		})
		return
	}

	session := sessions.Default(c)
	session.Set(middleware.SessionAdminToken, tok.ID)
	if err := session.Save(); err != nil {
		logger.Error.Printf("AuthenticateResults: failed to save session: %v", err)
		ac.Gate.Revoke(tok.ID)
		c.HTML(http.StatusInternalServerError, "results_auth.html", gin.H{
			"Error": "Erro interno, tente novamente.",
		})
		return
	}
	c.Redirect(http.StatusFound, "/results")
}

// ---------------- results ----------------

// ShowResults renders the tally and the per-voter table. A read failure
// renders an error state with a retry link instead.
func (ac *AdminController) ShowResults(c *gin.Context) {
	tok, _ := middleware.AdminTokenFrom(c)

	res, err := ac.Results.Load(c.Request.Context(), tok)
	if errors.Is(err, services.ErrAdminRequired) {
		c.Redirect(http.StatusFound, "/results/auth")
		return
	}
	if err != nil {
		logger.Error.Printf("ShowResults: %v", err)
		c.HTML(http.StatusServiceUnavailable, "results.html", gin.H{
			"LoadError": "Não foi possível carregar os votos.",
			"Notices":   takeNotices(c),
		})
		return
	}

	entries := make([]resultEntry, 0, len(res.Tally.Entries))
	for _, e := range res.Tally.Entries {
		title := e.Name
		if opt, ok := models.LookupOption(e.Name); ok {
			title = opt.Title
		}
		entries = append(entries, resultEntry{
			Name:    e.Name,
			Title:   title,
			Votes:   e.Votes,
			Percent: services.FormatPercentage(e.Votes, res.Tally.Total),
		})
	}

	c.HTML(http.StatusOK, "results.html", gin.H{
		"Total":   res.Tally.Total,
		"Invalid": res.Tally.Invalid,
		"Entries": entries,
		"Records": res.Records,
		"Notices": takeNotices(c),
	})
}

// ---------------- exports ----------------

// exportFailed turns an export error into a notice on the results page.
func (ac *AdminController) exportFailed(c *gin.Context, fn string, err error) {
	switch {
	case errors.Is(err, services.ErrAdminRequired):
		c.Redirect(http.StatusFound, "/results/auth")
		return
	case errors.Is(err, services.ErrNoVotes):
		addNotice(c, "Não há votos para exportar.")
	default:
		logger.Error.Printf("%s: %v", fn, err)
		addNotice(c, "Erro ao gerar a exportação. Tente novamente.")
	}
	c.Redirect(http.StatusFound, "/results")
}

// ExportCSV downloads every vote as CSV, sorted by voter name.
func (ac *AdminController) ExportCSV(c *gin.Context) {
	tok, _ := middleware.AdminTokenFrom(c)

	filename, body, err := ac.Results.ExportCSV(c.Request.Context(), tok)
	if err != nil {
		ac.exportFailed(c, "ExportCSV", err)
		return
	}
	logger.Info.Printf("ExportCSV: exported %s", filename)
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	c.Data(http.StatusOK, services.CSVContentType, body)
}

// ExportReport serves the printable report; the browser's print dialog
// produces the PDF.
func (ac *AdminController) ExportReport(c *gin.Context) {
	tok, _ := middleware.AdminTokenFrom(c)

	doc, err := ac.Results.ExportReport(c.Request.Context(), tok)
	if err != nil {
		ac.exportFailed(c, "ExportReport", err)
		return
	}
	c.Data(http.StatusOK, "text/html; charset=utf-8", doc)
}

// ---------------- reset ----------------

// ResetVotes deletes every vote. The form must send confirm=yes. On
// success the results token is gone and the admin lands on the password
// form again.
func (ac *AdminController) ResetVotes(c *gin.Context) {
	tok, _ := middleware.AdminTokenFrom(c)

	if c.PostForm("confirm") != "yes" {
		logger.Warn.Println("ResetVotes: reset requested without confirmation")
		addNotice(c, "Confirme a exclusão de todos os votos.")
		c.Redirect(http.StatusFound, "/results")
		return
	}

	n, err := ac.Results.ResetAllVotes(c.Request.Context(), tok)
	if errors.Is(err, services.ErrAdminRequired) {
		c.Redirect(http.StatusFound, "/results/auth")
		return
	}
	if err != nil {
		logger.Error.Printf("ResetVotes: %v", err)
		addNotice(c, "Erro ao excluir os votos. Tente novamente.")
		c.Redirect(http.StatusFound, "/results")
		return
	}

	session := sessions.Default(c)
	session.Delete(middleware.SessionAdminToken)
	session.AddFlash(fmt.Sprintf("%d votos foram excluídos.", n), flashResults)
	if err := session.Save(); err != nil {
		logger.Error.Printf("ResetVotes: failed to save session: %v", err)
	}
	logger.Info.Printf("ResetVotes: admin token %s reset %d votes", tok.ID, n)
	c.Redirect(http.StatusFound, "/results/auth")
}
