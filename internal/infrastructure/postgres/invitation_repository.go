package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jhoicas/dailyprofit-api/internal/domain/entity"
	"github.com/jhoicas/dailyprofit-api/internal/domain/repository"
)

var _ repository.InvitationRepository = (*InvitationRepo)(nil)

// InvitationRepo implementación del puerto InvitationRepository sobre PostgreSQL.
// business_id es UNIQUE: un negocio tiene a lo sumo un código vigente.
type InvitationRepo struct {
	q Querier
}

// NewInvitationRepository construye el adaptador de persistencia para invitaciones.
func NewInvitationRepository(q Querier) *InvitationRepo {
	return &InvitationRepo{q: q}
}

// Replace guarda el código del negocio descartando cualquier código previo.
func (r *InvitationRepo) Replace(inv *entity.Invitation) error {
	query := `
		INSERT INTO invitations (business_id, code, issuer_id, expires_at, created_at)
		VALUES ($1, $2, $3, $4, now())
		ON CONFLICT (business_id) DO UPDATE SET
			code = EXCLUDED.code,
			issuer_id = EXCLUDED.issuer_id,
			expires_at = EXCLUDED.expires_at,
			created_at = now()`
	_, err := r.q.Exec(context.Background(), query,
		inv.BusinessID, inv.Code, inv.IssuerID, inv.ExpiresAt)
	if err != nil {
		return fmt.Errorf("replace invitation: %w", err)
	}
	return nil
}

// GetByCode obtiene la invitación por código. Devuelve nil si no existe.
func (r *InvitationRepo) GetByCode(code string) (*entity.Invitation, error) {
	query := `
		SELECT code, business_id, issuer_id, expires_at, created_at
		FROM invitations WHERE code = $1`
	var inv entity.Invitation
	err := r.q.QueryRow(context.Background(), query, code).Scan(
		&inv.Code, &inv.BusinessID, &inv.IssuerID, &inv.ExpiresAt, &inv.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get invitation: %w", err)
	}
	return &inv, nil
}

// Delete consume el código. No es error si ya no existe.
func (r *InvitationRepo) Delete(code string) error {
	_, err := r.q.Exec(context.Background(), `DELETE FROM invitations WHERE code = $1`, code)
	if err != nil {
		return fmt.Errorf("delete invitation: %w", err)
	}
	return nil
}

// DeleteByBusiness descarta la invitación vigente del negocio (si la hay).
func (r *InvitationRepo) DeleteByBusiness(businessID string) error {
	_, err := r.q.Exec(context.Background(), `DELETE FROM invitations WHERE business_id = $1`, businessID)
	if err != nil {
		return fmt.Errorf("delete invitation: %w", err)
	}
	return nil
}
