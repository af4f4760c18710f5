package api

import (
	"time"

	"github.com/nisioka/self-money/internal/model"
	"github.com/nisioka/self-money/internal/service"
)

// The wire representations. Models stay free of json tags; the API owns its
// own shapes.

type jobResponse struct {
	ID              string `json:"id"`
	Type            string `json:"type"`
	Status          string `json:"status"`
	ErrorMessage    string `json:"error_message,omitempty"`
	TargetAccountID *int64 `json:"target_account_id,omitempty"`
	CreatedAt       string `json:"created_at"`
	UpdatedAt       string `json:"updated_at"`
}

func toJobResponse(j *model.Job) jobResponse {
	return jobResponse{
		ID:              j.ID,
		Type:            string(j.Type),
		Status:          string(j.Status),
		ErrorMessage:    j.ErrorMessage,
		TargetAccountID: j.TargetAccountID,
		CreatedAt:       j.CreatedAt.UTC().Format(time.RFC3339),
		UpdatedAt:       j.UpdatedAt.UTC().Format(time.RFC3339),
	}
}

type accountResponse struct {
	ID             int64  `json:"id"`
	Name           string `json:"name"`
	Type           string `json:"type"`
	Balance        int64  `json:"balance"`
	HasCredentials bool   `json:"has_credentials"`
	CreatedAt      string `json:"created_at"`
}

func toAccountResponse(a *model.Account) accountResponse {
	return accountResponse{
		ID:             a.ID,
		Name:           a.Name,
		Type:           string(a.Type),
		Balance:        a.Balance,
		HasCredentials: a.HasCredentials(),
		CreatedAt:      a.CreatedAt.UTC().Format(time.RFC3339),
	}
}

type transactionResponse struct {
	ID          int64  `json:"id"`
	AccountID   int64  `json:"account_id"`
	CategoryID  int64  `json:"category_id"`
	Date        string `json:"date"`
	Amount      int64  `json:"amount"`
	Description string `json:"description"`
	Memo        string `json:"memo,omitempty"`
	ExternalID  string `json:"external_id,omitempty"`
	IsManual    bool   `json:"is_manual"`
}

func toTransactionResponse(t *model.Transaction) transactionResponse {
	return transactionResponse{
		ID:          t.ID,
		AccountID:   t.AccountID,
		CategoryID:  t.CategoryID,
		Date:        t.Date.UTC().Format("2006-01-02"),
		Amount:      t.Amount,
		Description: t.Description,
		Memo:        t.Memo,
		ExternalID:  t.ExternalID,
		IsManual:    t.IsManual,
	}
}

type categoryResponse struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

func toCategoryResponse(c *model.Category) categoryResponse {
	return categoryResponse{ID: c.ID, Name: c.Name}
}

type ruleResponse struct {
	ID           int64  `json:"id"`
	Keyword      string `json:"keyword"`
	CategoryID   int64  `json:"category_id"`
	CategoryName string `json:"category_name"`
}

func toRuleResponse(r *model.AutoRule) ruleResponse {
	return ruleResponse{
		ID:           r.ID,
		Keyword:      r.Keyword,
		CategoryID:   r.CategoryID,
		CategoryName: r.CategoryName,
	}
}

type monthlySummaryResponse struct {
	Year         int                       `json:"year"`
	Month        int                       `json:"month"`
	TotalIncome  int64                     `json:"total_income"`
	TotalExpense int64                     `json:"total_expense"`
	ByCategory   []categorySummaryResponse `json:"by_category"`
}

type categorySummaryResponse struct {
	CategoryID   int64  `json:"category_id"`
	CategoryName string `json:"category_name"`
	Total        int64  `json:"total"`
	Count        int    `json:"count"`
}

func toMonthlySummaryResponse(s *service.MonthlySummary) monthlySummaryResponse {
	byCategory := make([]categorySummaryResponse, 0, len(s.ByCategory))
	for _, cs := range s.ByCategory {
		byCategory = append(byCategory, categorySummaryResponse{
			CategoryID:   cs.CategoryID,
			CategoryName: cs.CategoryName,
			Total:        cs.Total,
			Count:        cs.Count,
		})
	}
	return monthlySummaryResponse{
		Year:         s.Year,
		Month:        int(s.Month),
		TotalIncome:  s.TotalIncome,
		TotalExpense: s.TotalExpense,
		ByCategory:   byCategory,
	}
}
