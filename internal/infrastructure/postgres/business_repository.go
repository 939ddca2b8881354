package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jhoicas/dailyprofit-api/internal/domain"
	"github.com/jhoicas/dailyprofit-api/internal/domain/entity"
	"github.com/jhoicas/dailyprofit-api/internal/domain/repository"
)

var _ repository.BusinessRepository = (*BusinessRepo)(nil)

// BusinessRepo implementación del puerto BusinessRepository sobre PostgreSQL.
// El roster de colaboradores y las categorías de gasto viven como JSONB;
// la columna version respalda el compare-and-swap de UpdateCollaborators.
type BusinessRepo struct {
	q Querier
}

// NewBusinessRepository construye el adaptador. Pasar pool o tx (Querier).
func NewBusinessRepository(q Querier) *BusinessRepo {
	return &BusinessRepo{q: q}
}

const businessColumns = `
	id, name, type, currency, plan, is_pro, owner_id, pin, phone_number,
	onboarding_completed, collaborators, expense_categories, version,
	created_at, updated_at`

// Create persiste un nuevo negocio.
func (r *BusinessRepo) Create(b *entity.BusinessProfile) error {
	collaborators, err := json.Marshal(b.Collaborators)
	if err != nil {
		return fmt.Errorf("marshal collaborators: %w", err)
	}
	categories, err := json.Marshal(b.ExpenseCategories)
	if err != nil {
		return fmt.Errorf("marshal expense categories: %w", err)
	}
	query := `
		INSERT INTO businesses (` + businessColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, now(), now())`
	_, err = r.q.Exec(context.Background(), query,
		b.ID, b.Name, b.Type, b.Currency, b.Plan, b.IsPro, nullable(b.OwnerID), b.Pin, b.PhoneNumber,
		b.OnboardingCompleted, collaborators, categories, b.Version,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicate
		}
		return fmt.Errorf("insert business: %w", err)
	}
	return nil
}

// GetByID obtiene un negocio por ID.
func (r *BusinessRepo) GetByID(id string) (*entity.BusinessProfile, error) {
	query := `SELECT ` + businessColumns + ` FROM businesses WHERE id = $1`
	b, err := scanBusiness(r.q.QueryRow(context.Background(), query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get business: %w", err)
	}
	return b, nil
}

// ListByOwner devuelve los negocios cuyo owner_id es el usuario.
func (r *BusinessRepo) ListByOwner(ownerID string) ([]*entity.BusinessProfile, error) {
	query := `SELECT ` + businessColumns + ` FROM businesses WHERE owner_id = $1 ORDER BY created_at`
	return r.list(query, ownerID)
}

// ListByMember devuelve los negocios donde el usuario es dueño o figura en el roster.
func (r *BusinessRepo) ListByMember(userID string) ([]*entity.BusinessProfile, error) {
	query := `
		SELECT ` + businessColumns + ` FROM businesses
		WHERE owner_id = $1
		   OR collaborators @> jsonb_build_array(jsonb_build_object('userId', $1::text))
		ORDER BY created_at`
	return r.list(query, userID)
}

// Update actualiza el perfil completo (incluido el roster) e incrementa version.
func (r *BusinessRepo) Update(b *entity.BusinessProfile) error {
	collaborators, err := json.Marshal(b.Collaborators)
	if err != nil {
		return fmt.Errorf("marshal collaborators: %w", err)
	}
	categories, err := json.Marshal(b.ExpenseCategories)
	if err != nil {
		return fmt.Errorf("marshal expense categories: %w", err)
	}
	query := `
		UPDATE businesses SET
			name = $2, type = $3, currency = $4, plan = $5, is_pro = $6, owner_id = $7,
			pin = $8, phone_number = $9, onboarding_completed = $10, collaborators = $11,
			expense_categories = $12, version = version + 1, updated_at = now()
		WHERE id = $1`
	tag, err := r.q.Exec(context.Background(), query,
		b.ID, b.Name, b.Type, b.Currency, b.Plan, b.IsPro, nullable(b.OwnerID),
		b.Pin, b.PhoneNumber, b.OnboardingCompleted, collaborators,
		categories,
	)
	if err != nil {
		return fmt.Errorf("update business: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrBusinessNotFound
	}
	return nil
}

// UpdateCollaborators reemplaza el roster solo si la versión coincide (CAS).
func (r *BusinessRepo) UpdateCollaborators(businessID string, expectedVersion int, collaborators []entity.Collaborator) error {
	payload, err := json.Marshal(collaborators)
	if err != nil {
		return fmt.Errorf("marshal collaborators: %w", err)
	}
	query := `
		UPDATE businesses SET collaborators = $3, version = version + 1, updated_at = now()
		WHERE id = $1 AND version = $2`
	tag, err := r.q.Exec(context.Background(), query, businessID, expectedVersion, payload)
	if err != nil {
		return fmt.Errorf("update collaborators: %w", err)
	}
	if tag.RowsAffected() == 0 {
		// O el negocio no existe o la versión cambió; distinguimos para el retry.
		var exists bool
		if err := r.q.QueryRow(context.Background(),
			`SELECT EXISTS (SELECT 1 FROM businesses WHERE id = $1)`, businessID).Scan(&exists); err != nil {
			return fmt.Errorf("check business: %w", err)
		}
		if !exists {
			return domain.ErrBusinessNotFound
		}
		return domain.ErrVersionMismatch
	}
	return nil
}

// Delete elimina un negocio por ID (la cascada de data anidada la hace el caso de uso).
func (r *BusinessRepo) Delete(id string) error {
	_, err := r.q.Exec(context.Background(), `DELETE FROM businesses WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete business: %w", err)
	}
	return nil
}

func (r *BusinessRepo) list(query string, args ...any) ([]*entity.BusinessProfile, error) {
	rows, err := r.q.Query(context.Background(), query, args...)
	if err != nil {
		return nil, fmt.Errorf("list businesses: %w", err)
	}
	defer rows.Close()
	var out []*entity.BusinessProfile
	for rows.Next() {
		b, err := scanBusiness(rows)
		if err != nil {
			return nil, fmt.Errorf("scan business: %w", err)
		}
		out = append(out, b)
	}
	return out, rows.Err()
}

func scanBusiness(row pgx.Row) (*entity.BusinessProfile, error) {
	var (
		b             entity.BusinessProfile
		ownerID       *string
		collaborators []byte
		categories    []byte
	)
	err := row.Scan(
		&b.ID, &b.Name, &b.Type, &b.Currency, &b.Plan, &b.IsPro, &ownerID, &b.Pin, &b.PhoneNumber,
		&b.OnboardingCompleted, &collaborators, &categories, &b.Version,
		&b.CreatedAt, &b.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	if ownerID != nil {
		b.OwnerID = *ownerID
	}
	if len(collaborators) > 0 {
		if err := json.Unmarshal(collaborators, &b.Collaborators); err != nil {
			return nil, fmt.Errorf("unmarshal collaborators: %w", err)
		}
	}
	if len(categories) > 0 {
		if err := json.Unmarshal(categories, &b.ExpenseCategories); err != nil {
			return nil, fmt.Errorf("unmarshal expense categories: %w", err)
		}
	}
	return &b, nil
}

// nullable convierte "" en NULL para columnas con índices parciales o FKs.
func nullable(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
