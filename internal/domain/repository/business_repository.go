package repository

import "github.com/jhoicas/dailyprofit-api/internal/domain/entity"

// BusinessRepository define el puerto de persistencia para BusinessProfile (DIP).
// La implementación vive en infrastructure.
type BusinessRepository interface {
	Create(b *entity.BusinessProfile) error
	GetByID(id string) (*entity.BusinessProfile, error)
	// ListByOwner devuelve los negocios cuyo OwnerID es el usuario.
	ListByOwner(ownerID string) ([]*entity.BusinessProfile, error)
	// ListByMember devuelve los negocios donde el usuario es dueño o colaborador.
	ListByMember(userID string) ([]*entity.BusinessProfile, error)
	Update(b *entity.BusinessProfile) error
	// UpdateCollaborators reemplaza el roster solo si la versión coincide
	// (compare-and-swap). Devuelve domain.ErrVersionMismatch si otro actor
	// modificó el negocio entre la lectura y la escritura.
	UpdateCollaborators(businessID string, expectedVersion int, collaborators []entity.Collaborator) error
	Delete(id string) error
}
