package postgres

import (
	"context"
	"fmt"

	"github.com/jhoicas/dailyprofit-api/internal/domain/entity"
	"github.com/jhoicas/dailyprofit-api/internal/domain/repository"
)

var _ repository.SaleRepository = (*SaleRepo)(nil)

// SaleRepo implementación del puerto SaleRepository sobre PostgreSQL.
type SaleRepo struct {
	q Querier
}

// NewSaleRepository construye el adaptador de persistencia para ventas.
func NewSaleRepository(q Querier) *SaleRepo {
	return &SaleRepo{q: q}
}

// UpsertMany inserta o actualiza ventas por su UUID de dispositivo.
func (r *SaleRepo) UpsertMany(businessID string, sales []entity.Sale) error {
	ctx := context.Background()
	query := `
		INSERT INTO sales (
			id, business_id, product_id, product_name, quantity,
			revenue, cost, profit, date, created_at_millis
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		ON CONFLICT (id) DO UPDATE SET
			business_id = EXCLUDED.business_id,
			product_id = EXCLUDED.product_id,
			product_name = EXCLUDED.product_name,
			quantity = EXCLUDED.quantity,
			revenue = EXCLUDED.revenue,
			cost = EXCLUDED.cost,
			profit = EXCLUDED.profit,
			date = EXCLUDED.date,
			created_at_millis = EXCLUDED.created_at_millis`
	for _, s := range sales {
		_, err := r.q.Exec(ctx, query,
			s.ID, businessID, s.ProductID, s.ProductName, s.Quantity,
			s.Revenue, s.Cost, s.Profit, s.Date, s.CreatedAt,
		)
		if err != nil {
			return fmt.Errorf("upsert sale %s: %w", s.ID, err)
		}
	}
	return nil
}

// ListByBusiness devuelve las ventas de un negocio ordenadas por fecha.
func (r *SaleRepo) ListByBusiness(businessID string) ([]entity.Sale, error) {
	query := `
		SELECT id, business_id, product_id, product_name, quantity,
		       revenue, cost, profit, date, created_at_millis
		FROM sales WHERE business_id = $1 ORDER BY date, created_at_millis, id`
	rows, err := r.q.Query(context.Background(), query, businessID)
	if err != nil {
		return nil, fmt.Errorf("list sales: %w", err)
	}
	defer rows.Close()
	var out []entity.Sale
	for rows.Next() {
		var s entity.Sale
		err := rows.Scan(&s.ID, &s.BusinessID, &s.ProductID, &s.ProductName, &s.Quantity,
			&s.Revenue, &s.Cost, &s.Profit, &s.Date, &s.CreatedAt)
		if err != nil {
			return nil, fmt.Errorf("scan sale: %w", err)
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

// DeleteByBusiness borra todas las ventas de los negocios indicados.
func (r *SaleRepo) DeleteByBusiness(businessIDs ...string) error {
	if len(businessIDs) == 0 {
		return nil
	}
	_, err := r.q.Exec(context.Background(),
		`DELETE FROM sales WHERE business_id = ANY($1)`, businessIDs)
	if err != nil {
		return fmt.Errorf("delete sales: %w", err)
	}
	return nil
}
