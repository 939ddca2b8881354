package repository

import "github.com/jhoicas/dailyprofit-api/internal/domain/entity"

// ExpenseRepository define el puerto de persistencia para Expense (DIP).
type ExpenseRepository interface {
	UpsertMany(businessID string, expenses []entity.Expense) error
	ListByBusiness(businessID string) ([]entity.Expense, error)
	DeleteByBusiness(businessIDs ...string) error
}
