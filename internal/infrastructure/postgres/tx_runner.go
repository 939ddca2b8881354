package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jhoicas/dailyprofit-api/internal/application/collab"
	"github.com/jhoicas/dailyprofit-api/internal/application/sync"
	"github.com/jhoicas/dailyprofit-api/internal/domain/repository"
)

// Ensure TxRunner implements sync.TxRunner and collab.TxRunner.
var _ sync.TxRunner = (*TxRunner)(nil)
var _ collab.TxRunner = (*TxRunner)(nil)

// TxRunner ejecuta callbacks dentro de una transacción PostgreSQL.
type TxRunner struct {
	pool *pgxpool.Pool
}

// NewTxRunner construye el runner con el pool.
func NewTxRunner(pool *pgxpool.Pool) *TxRunner {
	return &TxRunner{pool: pool}
}

// Run inicia una transacción para el reconciliador de sync: o se aplica el
// merge completo del payload o se revierte todo (incluida la poda de allowedIds).
func (r *TxRunner) Run(ctx context.Context, fn func(
	bizRepo repository.BusinessRepository,
	productRepo repository.ProductRepository,
	saleRepo repository.SaleRepository,
	expenseRepo repository.ExpenseRepository,
) error) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	bizRepo := NewBusinessRepository(tx)
	productRepo := NewProductRepository(tx)
	saleRepo := NewSaleRepository(tx)
	expenseRepo := NewExpenseRepository(tx)

	if err := fn(bizRepo, productRepo, saleRepo, expenseRepo); err != nil {
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

// RunCollab inicia una transacción con repos de negocio e invitación
// (para el join atómico: validar código, alta en roster, consumir código).
func (r *TxRunner) RunCollab(ctx context.Context, fn func(
	bizRepo repository.BusinessRepository,
	inviteRepo repository.InvitationRepository,
) error) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	bizRepo := NewBusinessRepository(tx)
	inviteRepo := NewInvitationRepository(tx)

	if err := fn(bizRepo, inviteRepo); err != nil {
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}
