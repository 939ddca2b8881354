package sync

import (
	"context"

	"github.com/jhoicas/dailyprofit-api/internal/domain/repository"
)

// TxRunner ejecuta una función dentro de una transacción de BD, pasando
// repositorios atados a esa tx. El reconciliador decide aceptar o rechazar el
// payload de forma atómica: o se aplica el merge completo o no se toca nada.
type TxRunner interface {
	Run(ctx context.Context, fn func(
		bizRepo repository.BusinessRepository,
		productRepo repository.ProductRepository,
		saleRepo repository.SaleRepository,
		expenseRepo repository.ExpenseRepository,
	) error) error
}
