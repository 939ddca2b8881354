package postgres

import (
	"context"
	"fmt"

	"github.com/jhoicas/dailyprofit-api/internal/domain/entity"
	"github.com/jhoicas/dailyprofit-api/internal/domain/repository"
)

var _ repository.ExpenseRepository = (*ExpenseRepo)(nil)

// ExpenseRepo implementación del puerto ExpenseRepository sobre PostgreSQL.
type ExpenseRepo struct {
	q Querier
}

// NewExpenseRepository construye el adaptador de persistencia para gastos.
func NewExpenseRepository(q Querier) *ExpenseRepo {
	return &ExpenseRepo{q: q}
}

// UpsertMany inserta o actualiza gastos por su UUID de dispositivo.
func (r *ExpenseRepo) UpsertMany(businessID string, expenses []entity.Expense) error {
	ctx := context.Background()
	query := `
		INSERT INTO expenses (id, business_id, description, amount, category, date)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (id) DO UPDATE SET
			business_id = EXCLUDED.business_id,
			description = EXCLUDED.description,
			amount = EXCLUDED.amount,
			category = EXCLUDED.category,
			date = EXCLUDED.date`
	for _, e := range expenses {
		_, err := r.q.Exec(ctx, query,
			e.ID, businessID, e.Description, e.Amount, e.Category, e.Date,
		)
		if err != nil {
			return fmt.Errorf("upsert expense %s: %w", e.ID, err)
		}
	}
	return nil
}

// ListByBusiness devuelve los gastos de un negocio ordenados por fecha.
func (r *ExpenseRepo) ListByBusiness(businessID string) ([]entity.Expense, error) {
	query := `
		SELECT id, business_id, description, amount, category, date
		FROM expenses WHERE business_id = $1 ORDER BY date, id`
	rows, err := r.q.Query(context.Background(), query, businessID)
	if err != nil {
		return nil, fmt.Errorf("list expenses: %w", err)
	}
	defer rows.Close()
	var out []entity.Expense
	for rows.Next() {
		var e entity.Expense
		err := rows.Scan(&e.ID, &e.BusinessID, &e.Description, &e.Amount, &e.Category, &e.Date)
		if err != nil {
			return nil, fmt.Errorf("scan expense: %w", err)
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

// DeleteByBusiness borra todos los gastos de los negocios indicados.
func (r *ExpenseRepo) DeleteByBusiness(businessIDs ...string) error {
	if len(businessIDs) == 0 {
		return nil
	}
	_, err := r.q.Exec(context.Background(),
		`DELETE FROM expenses WHERE business_id = ANY($1)`, businessIDs)
	if err != nil {
		return fmt.Errorf("delete expenses: %w", err)
	}
	return nil
}
