// Package controllers file: controllers/vote_controller.go
package controllers

import (
	"errors"
	"net/http"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"

	"school-vote/logger"
	"school-vote/middleware"
	"school-vote/models"
	"school-vote/services"
)

// flashVote carries the chosen option from SubmitVote to ThankYou.
const flashVote = "vote"

// VoteController serves the ballot.
type VoteController struct {
	Votes *services.VoteService
}

// NewVoteController initializes a new instance of VoteController
func NewVoteController(votes *services.VoteService) *VoteController {
	return &VoteController{Votes: votes}
}

func ballotData(voter models.Voter, state services.VoteState) gin.H {
	return gin.H{
		"Voter":        voter,
		"Options":      models.VoteOptions(),
		"AlreadyVoted": state == services.StateAlreadyVoted || state == services.StateSubmitted,
		"Selected":     "",
	}
}

// ShowVotePage checks whether the voter has already voted and renders the
// ballot, or the "already voted" banner.
func (vc *VoteController) ShowVotePage(c *gin.Context) {
	voter, _ := middleware.VoterFrom(c)
	sess := vc.Votes.Begin(voter)

	state, err := sess.CheckStatus(c.Request.Context())
	data := ballotData(voter, state)
	if err != nil {
		logger.Error.Printf("ShowVotePage: status check for %s failed: %v", voter.Email, err)
		data["Error"] = "Não foi possível verificar seu voto. Recarregue a página."
		c.HTML(http.StatusServiceUnavailable, "vote.html", data)
		return
	}

	logger.Debug.Printf("ShowVotePage: %s is %s", voter.Email, state)
	c.HTML(http.StatusOK, "vote.html", data)
}

// SubmitVote records the chosen option. A store failure keeps the voter on
// the ballot with their choice selected so they can try again.
func (vc *VoteController) SubmitVote(c *gin.Context) {
	voter, _ := middleware.VoterFrom(c)
	option := c.PostForm("option")
	sess := vc.Votes.Begin(voter)

	err := sess.Submit(c.Request.Context(), option)
	if err == nil {
		session := sessions.Default(c)
		session.AddFlash(option, flashVote)
		if err := session.Save(); err != nil {
			logger.Error.Printf("SubmitVote: failed to save session: %v", err)
		}
		c.Redirect(http.StatusFound, "/thank-you")
		return
	}

	data := ballotData(voter, sess.State())
	data["Selected"] = option
	status := http.StatusOK
	switch {
	case errors.Is(err, services.ErrAlreadyVoted):
		logger.Info.Printf("SubmitVote: %s already voted", voter.Email)
	case errors.Is(err, services.ErrInvalidOption):
		logger.Warn.Printf("SubmitVote: %s sent unknown option %q", voter.Email, option)
		data["Error"] = "Selecione uma das opções."
		status = http.StatusBadRequest
	default:
		logger.Error.Printf("SubmitVote: vote for %s failed: %v", voter.Email, err)
		data["Error"] = "Erro ao registrar seu voto. Tente novamente."
		status = http.StatusServiceUnavailable
	}
	c.HTML(status, "vote.html", data)
}

// ThankYou confirms a submitted vote.
func (vc *VoteController) ThankYou(c *gin.Context) {
	session := sessions.Default(c)
	name, _ := session.Get(middleware.SessionVoterName).(string)

	var option string
	if flashes := session.Flashes(flashVote); len(flashes) > 0 {
		option, _ = flashes[0].(string)
		if err := session.Save(); err != nil {
			logger.Error.Printf("ThankYou: failed to save session: %v", err)
		}
	}
	c.HTML(http.StatusOK, "thank_you.html", gin.H{
		"Name":   name,
		"Option": option,
	})
}
