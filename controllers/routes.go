// Package controllers file: controllers/routes.go
package controllers

import (
	"github.com/gin-gonic/gin"

	"school-vote/middleware"
)

// RegisterRoutes mounts every page of the election on router. Sessions
// middleware must already be installed.
func RegisterRoutes(router *gin.Engine, lc *LoginController, vc *VoteController, ac *AdminController) {
	router.GET("/health", Health)
	router.GET("/qrcode", GetQRCode)

	// Public routes
	router.GET("/", lc.ShowLoginPage)
	router.POST("/login", lc.PerformLogin)
	router.GET("/logout", lc.Logout)
	router.GET("/thank-you", vc.ThankYou)

	// Voter routes
	voter := router.Group("/vote", middleware.VoterRequired)
	{
		voter.GET("", vc.ShowVotePage)
		voter.POST("", vc.SubmitVote)
	}

	// Results routes
	router.GET("/results/auth", ac.ShowResultsAuth)
	router.POST("/results/auth", ac.AuthenticateResults)
	results := router.Group("/results", middleware.AdminRequired(ac.Gate))
	{
		results.GET("", ac.ShowResults)
		results.GET("/export.csv", ac.ExportCSV)
		results.GET("/report", ac.ExportReport)
		results.POST("/reset", ac.ResetVotes)
	}
}
