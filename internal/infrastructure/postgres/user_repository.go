package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jhoicas/dailyprofit-api/internal/domain"
	"github.com/jhoicas/dailyprofit-api/internal/domain/entity"
	"github.com/jhoicas/dailyprofit-api/internal/domain/repository"
)

var _ repository.UserRepository = (*UserRepo)(nil)

// UserRepo implementación del puerto UserRepository sobre PostgreSQL.
type UserRepo struct {
	q Querier
}

// NewUserRepository construye el adaptador de persistencia para usuarios.
func NewUserRepository(q Querier) *UserRepo {
	return &UserRepo{q: q}
}

const userColumns = `
	id, email, display_name, photo_url, provider_id, password_hash, plan, is_guest,
	created_at, updated_at`

// Create persiste un nuevo usuario.
func (r *UserRepo) Create(user *entity.User) error {
	query := `
		INSERT INTO users (` + userColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, now(), now())`
	_, err := r.q.Exec(context.Background(), query,
		user.ID, user.Email, user.DisplayName, user.PhotoURL, user.ProviderID,
		user.PasswordHash, user.Plan, user.IsGuest,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicate
		}
		return fmt.Errorf("insert user: %w", err)
	}
	return nil
}

// FindByID obtiene un usuario por ID. Devuelve nil si no existe.
func (r *UserRepo) FindByID(id string) (*entity.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE id = $1`
	return r.findOne(query, id)
}

// FindByEmail obtiene un usuario por email. Devuelve nil si no existe.
func (r *UserRepo) FindByEmail(email string) (*entity.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE lower(email) = lower($1)`
	return r.findOne(query, email)
}

// Update actualiza los datos de perfil del usuario.
func (r *UserRepo) Update(user *entity.User) error {
	query := `
		UPDATE users SET
			email = $2, display_name = $3, photo_url = $4, provider_id = $5,
			password_hash = $6, plan = $7, is_guest = $8, updated_at = now()
		WHERE id = $1`
	tag, err := r.q.Exec(context.Background(), query,
		user.ID, user.Email, user.DisplayName, user.PhotoURL, user.ProviderID,
		user.PasswordHash, user.Plan, user.IsGuest,
	)
	if err != nil {
		return fmt.Errorf("update user: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrUserNotFound
	}
	return nil
}

func (r *UserRepo) findOne(query string, arg any) (*entity.User, error) {
	var u entity.User
	err := r.q.QueryRow(context.Background(), query, arg).Scan(
		&u.ID, &u.Email, &u.DisplayName, &u.PhotoURL, &u.ProviderID,
		&u.PasswordHash, &u.Plan, &u.IsGuest, &u.CreatedAt, &u.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get user: %w", err)
	}
	return &u, nil
}
