package entity

import "time"

// Planes de suscripción.
const (
	PlanFree         = "FREE"
	PlanLite         = "LITE"
	PlanEntrepreneur = "ENTREPRENEUR"
	PlanUnlimited    = "UNLIMITED"
)

// Roles de colaborador. Owner es único por negocio.
const (
	RoleOwner      = "OWNER"
	RoleManager    = "MANAGER"
	RoleSupervisor = "SUPERVISOR"
	RoleSales      = "SALES"
	RoleAuditor    = "AUDITOR"
	// RoleLocked es un rol de solo-UI: dispositivo sin sesión frente a un negocio
	// de nube ajeno. Nunca se persiste en el roster.
	RoleLocked = "LOCKED"
)

// Estados de un colaborador dentro del roster.
const (
	CollaboratorActive  = "ACTIVE"
	CollaboratorPending = "PENDING"
)

// Collaborator es la membresía de un usuario dentro de un BusinessProfile.
type Collaborator struct {
	UserID      string       `json:"userId"`
	Name        string       `json:"name"`
	Email       string       `json:"email,omitempty"`
	Role        string       `json:"role"`
	Status      string       `json:"status"`
	Permissions *Permissions `json:"permissions,omitempty"` // override explícito; nil = defaults del rol
}

// BusinessProfile es la unidad de propiedad y sincronización.
// Un negocio sin OwnerID es de propiedad local (aún no reclamado en la nube).
type BusinessProfile struct {
	ID                  string         `json:"id"`
	Name                string         `json:"name"`
	Type                string         `json:"type,omitempty"`
	Currency            string         `json:"currency"`
	Plan                string         `json:"plan"`
	IsPro               bool           `json:"isPro"`
	OwnerID             string         `json:"ownerId,omitempty"`
	Collaborators       []Collaborator `json:"collaborators"`
	Pin                 string         `json:"pin,omitempty"` // hash bcrypt una vez en la nube
	PhoneNumber         string         `json:"phoneNumber,omitempty"`
	OnboardingCompleted bool           `json:"onboardingCompleted"`
	ExpenseCategories   []string       `json:"expenseCategories,omitempty"`

	// Version soporta compare-and-swap en mutaciones del roster (dos admins editando a la vez).
	Version int `json:"-"`

	CreatedAt time.Time `json:"-"`
	UpdatedAt time.Time `json:"-"`
}

// IsLocalOnly indica si el negocio aún no fue reclamado por una cuenta de nube.
func (b *BusinessProfile) IsLocalOnly() bool {
	return b.OwnerID == ""
}

// FindCollaborator busca la membresía de un usuario en el roster. Devuelve nil si no está.
func (b *BusinessProfile) FindCollaborator(userID string) *Collaborator {
	for i := range b.Collaborators {
		if b.Collaborators[i].UserID == userID {
			return &b.Collaborators[i]
		}
	}
	return nil
}

// ManagerCount cuenta los colaboradores que no son OWNER (para la cuota de managers del plan).
func (b *BusinessProfile) ManagerCount() int {
	n := 0
	for _, c := range b.Collaborators {
		if c.Role != RoleOwner {
			n++
		}
	}
	return n
}
