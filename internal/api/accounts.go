package api

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/nisioka/self-money/internal/model"
)

type credentialsRequest struct {
	LoginID          string            `json:"login_id" binding:"required"`
	Password         string            `json:"password" binding:"required"`
	AdditionalFields map[string]string `json:"additional_fields"`
}

func (r *credentialsRequest) toModel() *model.Credentials {
	if r == nil {
		return nil
	}
	return &model.Credentials{
		LoginID:          r.LoginID,
		Password:         r.Password,
		AdditionalFields: r.AdditionalFields,
	}
}

type createAccountRequest struct {
	Name           string              `json:"name" binding:"required"`
	Type           string              `json:"type" binding:"required"`
	InitialBalance int64               `json:"initial_balance"`
	Credentials    *credentialsRequest `json:"credentials"`
}

func (s *Server) handleCreateAccount(c *gin.Context) {
	var req createAccountRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	accountType := model.AccountType(req.Type)
	if !model.ValidAccountType(accountType) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "unknown account type: " + req.Type})
		return
	}

	account, err := s.store.CreateAccount(c.Request.Context(), req.Name, accountType, req.InitialBalance, req.Credentials.toModel())
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, toAccountResponse(account))
}

func (s *Server) handleGetAccount(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	account, err := s.store.GetAccount(c.Request.Context(), id)
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, toAccountResponse(account))
}

func (s *Server) handleListAccounts(c *gin.Context) {
	accounts, err := s.store.GetAccounts(c.Request.Context())
	if err != nil {
		s.respondError(c, err)
		return
	}

	out := make([]accountResponse, 0, len(accounts))
	for i := range accounts {
		out = append(out, toAccountResponse(&accounts[i]))
	}
	c.JSON(http.StatusOK, gin.H{"accounts": out})
}

type updateAccountRequest struct {
	Name        string              `json:"name" binding:"required"`
	Credentials *credentialsRequest `json:"credentials"`
}

func (s *Server) handleUpdateAccount(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	var req updateAccountRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	account, err := s.store.UpdateAccount(c.Request.Context(), id, req.Name, req.Credentials.toModel())
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, toAccountResponse(account))
}

func (s *Server) handleDeleteAccount(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	if err := s.store.DeleteAccount(c.Request.Context(), id); err != nil {
		s.respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// pathID parses the :id path parameter, responding 400 on garbage.
func pathID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return 0, false
	}
	return id, true
}
