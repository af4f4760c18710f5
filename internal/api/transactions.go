package api

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/nisioka/self-money/internal/model"
	"github.com/nisioka/self-money/internal/service"
)

type createTransactionRequest struct {
	Date        string `json:"date" binding:"required"`
	Description string `json:"description" binding:"required"`
	Memo        string `json:"memo"`
	Amount      int64  `json:"amount"`
	AccountID   int64  `json:"account_id" binding:"required"`
	CategoryID  int64  `json:"category_id" binding:"required"`
}

func (s *Server) handleCreateTransaction(c *gin.Context) {
	var req createTransactionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	date, err := time.ParseInLocation("2006-01-02", req.Date, time.UTC)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "date must be YYYY-MM-DD"})
		return
	}

	txn, err := s.store.CreateTransaction(c.Request.Context(), &model.Transaction{
		Date:        date,
		Description: req.Description,
		Memo:        req.Memo,
		Amount:      req.Amount,
		AccountID:   req.AccountID,
		CategoryID:  req.CategoryID,
		IsManual:    true,
	})
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, toTransactionResponse(txn))
}

func (s *Server) handleListTransactions(c *gin.Context) {
	year, err := strconv.Atoi(c.Query("year"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "year is required"})
		return
	}
	month, err := strconv.Atoi(c.Query("month"))
	if err != nil || month < 1 || month > 12 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "month must be 1-12"})
		return
	}

	var accountID *int64
	if raw := c.Query("account_id"); raw != "" {
		parsed, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || parsed <= 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid account_id"})
			return
		}
		accountID = &parsed
	}

	transactions, err := s.store.GetTransactionsByMonth(c.Request.Context(), year, time.Month(month), accountID)
	if err != nil {
		s.respondError(c, err)
		return
	}

	out := make([]transactionResponse, 0, len(transactions))
	for i := range transactions {
		out = append(out, toTransactionResponse(&transactions[i]))
	}
	c.JSON(http.StatusOK, gin.H{"transactions": out})
}

type updateTransactionRequest struct {
	Amount     *int64  `json:"amount"`
	CategoryID *int64  `json:"category_id"`
	Memo       *string `json:"memo"`
}

func (s *Server) handleUpdateTransaction(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	var req updateTransactionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if req.Amount == nil && req.CategoryID == nil && req.Memo == nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "no fields to update"})
		return
	}

	txn, err := s.store.UpdateTransaction(c.Request.Context(), id, service.TransactionUpdate{
		Amount:     req.Amount,
		CategoryID: req.CategoryID,
		Memo:       req.Memo,
	})
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, toTransactionResponse(txn))
}

func (s *Server) handleDeleteTransaction(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	if err := s.store.DeleteTransaction(c.Request.Context(), id); err != nil {
		s.respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
