package server

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/alkime/healthvoice/internal/auth"
	"github.com/alkime/healthvoice/internal/dashboard"
)

type verifyRequest struct {
	Transcript *string `json:"transcript" binding:"required"`
}

type verifyResponse struct {
	Outcome string `json:"outcome"`
	Matched bool   `json:"matched"`
}

func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "healthy",
		"service": "healthvoice",
	})
}

func (s *Server) handleDashboard(c *gin.Context) {
	c.JSON(http.StatusOK, dashboard.Snapshot(s.now()))
}

// handleVerify runs the decision function once on a transcript. An empty
// transcript is valid and goes through the random draw.
func (s *Server) handleVerify(c *gin.Context) {
	var req verifyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	s.evalMu.Lock()
	outcome := s.evaluator.Evaluate(*req.Transcript)
	s.evalMu.Unlock()

	s.logger.Debug("verify", "outcome", outcome)

	c.JSON(http.StatusOK, verifyResponse{
		Outcome: outcome.String(),
		Matched: auth.MatchesPhrase(*req.Transcript, auth.Passphrase),
	})
}
