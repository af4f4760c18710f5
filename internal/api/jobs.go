package api

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/nisioka/self-money/internal/model"
)

type createJobRequest struct {
	Type            string `json:"type" binding:"required"`
	TargetAccountID *int64 `json:"target_account_id"`
}

func (s *Server) handleCreateJob(c *gin.Context) {
	var req createJobRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	jobType := model.JobType(req.Type)
	switch jobType {
	case model.JobTypeScrapeAll:
		req.TargetAccountID = nil
	case model.JobTypeScrapeSpecific:
		if req.TargetAccountID == nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "target_account_id is required for SCRAPE_SPECIFIC"})
			return
		}
	default:
		c.JSON(http.StatusBadRequest, gin.H{"error": "unknown job type: " + req.Type})
		return
	}

	job, err := s.store.CreateJob(c.Request.Context(), jobType, req.TargetAccountID)
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, toJobResponse(job))
}

func (s *Server) handleTriggerSync(c *gin.Context) {
	job, err := s.scheduler.TriggerNow(c.Request.Context())
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusAccepted, toJobResponse(job))
}

func (s *Server) handleGetJob(c *gin.Context) {
	job, err := s.store.GetJob(c.Request.Context(), c.Param("id"))
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, toJobResponse(job))
}

func (s *Server) handleListJobs(c *gin.Context) {
	limit := 20
	if raw := c.Query("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed <= 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "limit must be a positive integer"})
			return
		}
		limit = parsed
	}

	jobs, err := s.store.GetRecentJobs(c.Request.Context(), limit)
	if err != nil {
		s.respondError(c, err)
		return
	}

	out := make([]jobResponse, 0, len(jobs))
	for i := range jobs {
		out = append(out, toJobResponse(&jobs[i]))
	}
	c.JSON(http.StatusOK, gin.H{"jobs": out})
}
