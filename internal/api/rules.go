package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

type upsertRuleRequest struct {
	Keyword    string `json:"keyword" binding:"required"`
	CategoryID int64  `json:"category_id" binding:"required"`
}

func (s *Server) handleListRules(c *gin.Context) {
	rules, err := s.store.GetAutoRules(c.Request.Context())
	if err != nil {
		s.respondError(c, err)
		return
	}

	out := make([]ruleResponse, 0, len(rules))
	for i := range rules {
		out = append(out, toRuleResponse(&rules[i]))
	}
	c.JSON(http.StatusOK, gin.H{"rules": out})
}

func (s *Server) handleUpsertRule(c *gin.Context) {
	var req upsertRuleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	rule, err := s.store.UpsertAutoRule(c.Request.Context(), req.Keyword, req.CategoryID)
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, toRuleResponse(rule))
}

func (s *Server) handleDeleteRule(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	if err := s.store.DeleteAutoRule(c.Request.Context(), id); err != nil {
		s.respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
