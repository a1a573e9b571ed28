package server

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// ListExclusions
// GET /exclusions
func (s *Server) ListExclusions(c *gin.Context) {
	rows, err := s.exclusions.List(c.Request.Context())
	if err != nil {
		s.respondError(c, err)
		return
	}
	respondData(c, gin.H{"exclusions": rows, "count": len(rows)})
}

type addExclusionsRequest struct {
	OrderIDs []string `json:"orderIds" binding:"required,min=1"`
	Reason   string   `json:"reason"`
}

// AddExclusions
// POST /exclusions
func (s *Server) AddExclusions(c *gin.Context) {
	var req addExclusionsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, errorResponse{Code: "INVALID_REQUEST", Message: err.Error()})
		return
	}
	if err := s.exclusions.Add(c.Request.Context(), req.OrderIDs, req.Reason); err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"excluded": len(req.OrderIDs)})
}

// RemoveExclusion
// DELETE /exclusions/:orderId
func (s *Server) RemoveExclusion(c *gin.Context) {
	if err := s.exclusions.Remove(c.Request.Context(), c.Param("orderId")); err != nil {
		s.respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
