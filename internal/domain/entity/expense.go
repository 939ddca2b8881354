package entity

import "github.com/shopspring/decimal"

// Expense es un gasto plano asociado a un negocio.
type Expense struct {
	ID          string          `json:"id"`
	BusinessID  string          `json:"businessId"`
	Description string          `json:"description"`
	Amount      decimal.Decimal `json:"amount"`
	Category    string          `json:"category"`
	Date        string          `json:"date"` // ISO 8601
}
