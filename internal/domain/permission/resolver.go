// Package permission resuelve qué puede hacer una identidad sobre un negocio.
// Es una función pura: (identidad, negocio, flag de dueño local) -> capacidades.
// Sin estado, sin red; el llamador decide contra qué roster evaluar (siempre el
// más fresco disponible, nunca una copia cacheada tras una revocación).
package permission

import "github.com/jhoicas/dailyprofit-api/internal/domain/entity"

// Action identifica una capacidad del vector de permisos.
type Action string

const (
	AddProducts         Action = "canAddProducts"
	EditProducts        Action = "canEditProducts"
	DeleteProducts      Action = "canDeleteProducts"
	AddSales            Action = "canAddSales"
	EditSales           Action = "canEditSales"
	ViewSales           Action = "canViewSales"
	AddExpenses         Action = "canAddExpenses"
	EditExpenses        Action = "canEditExpenses"
	DeleteExpenses      Action = "canDeleteExpenses"
	ViewReports         Action = "canViewReports"
	ManageSettings      Action = "canManageSettings"
	ManageCollaborators Action = "canManageCollaborators"
	EditCompanyProfile  Action = "canEditCompanyProfile"
)

// Actions enumera todas las capacidades (útil para chequeos exhaustivos en tests).
var Actions = []Action{
	AddProducts, EditProducts, DeleteProducts,
	AddSales, EditSales, ViewSales,
	AddExpenses, EditExpenses, DeleteExpenses,
	ViewReports, ManageSettings, ManageCollaborators, EditCompanyProfile,
}

// Identity es la identidad autenticada actual. Nil = invitado/offline.
type Identity struct {
	ID    string
	Email string
}

// Access es el resultado de la resolución: rol efectivo y vector de permisos.
type Access struct {
	Role        string
	Permissions entity.Permissions
	// locked fuerza Can == false para todo, independiente del vector.
	locked bool
}

// Can consulta una capacidad del vector resuelto.
func (a Access) Can(action Action) bool {
	if a.locked {
		return false
	}
	p := a.Permissions
	switch action {
	case AddProducts:
		return p.CanAddProducts
	case EditProducts:
		return p.CanEditProducts
	case DeleteProducts:
		return p.CanDeleteProducts
	case AddSales:
		return p.CanAddSales
	case EditSales:
		return p.CanEditSales
	case ViewSales:
		return p.CanViewSales
	case AddExpenses:
		return p.CanAddExpenses
	case EditExpenses:
		return p.CanEditExpenses
	case DeleteExpenses:
		return p.CanDeleteExpenses
	case ViewReports:
		return p.CanViewReports
	case ManageSettings:
		return p.CanManageSettings
	case ManageCollaborators:
		return p.CanManageCollaborators
	case EditCompanyProfile:
		return p.CanEditCompanyProfile
	default:
		return false
	}
}

// Resolve aplica la tabla de decisión, en orden de prioridad (gana la primera regla):
//  1. Sin negocio cargado -> MANAGER con todo en false (cerrado por defecto).
//  2. Sin identidad, negocio de nube y este dispositivo no lo originó -> LOCKED.
//  3. Sin identidad en cualquier otro caso -> OWNER (dueño local u offline con caché propia).
//  4. Identidad dueña del negocio, o negocio sin dueño -> OWNER.
//  5. Identidad presente en el roster -> rol del colaborador (override explícito si existe).
//  6. Identidad ajena al negocio -> MANAGER con todo en false (no debería alcanzarse).
//
// localOwner es el flag de dispositivo "este equipo creó el negocio"; evita el
// lockout del dueño antes de su primer sync autenticado.
func Resolve(identity *Identity, business *entity.BusinessProfile, localOwner bool) Access {
	if business == nil {
		return deniedAccess(entity.RoleManager)
	}

	if identity == nil {
		if !business.IsLocalOnly() && !localOwner {
			// Negocio de nube en un dispositivo sin sesión que no lo originó.
			return Access{Role: entity.RoleLocked, Permissions: Defaults(entity.RoleLocked), locked: true}
		}
		return Access{Role: entity.RoleOwner, Permissions: Defaults(entity.RoleOwner)}
	}

	if business.OwnerID == identity.ID || business.IsLocalOnly() {
		return Access{Role: entity.RoleOwner, Permissions: Defaults(entity.RoleOwner)}
	}

	if c := business.FindCollaborator(identity.ID); c != nil {
		perms := Defaults(c.Role)
		if c.Permissions != nil {
			perms = *c.Permissions
		}
		return Access{Role: c.Role, Permissions: perms}
	}

	return deniedAccess(entity.RoleManager)
}

// deniedAccess conserva el vector por defecto del rol (la UI lo muestra) pero
// fuerza Can == false para toda acción.
func deniedAccess(role string) Access {
	return Access{Role: role, Permissions: Defaults(role), locked: true}
}

// Defaults devuelve el vector de capacidades por defecto de un rol.
// OWNER concede todo; los demás roles son subconjuntos estrictos.
func Defaults(role string) entity.Permissions {
	switch role {
	case entity.RoleOwner:
		return entity.Permissions{
			CanAddProducts: true, CanEditProducts: true, CanDeleteProducts: true,
			CanAddSales: true, CanEditSales: true, CanViewSales: true,
			CanAddExpenses: true, CanEditExpenses: true, CanDeleteExpenses: true,
			CanViewReports: true, CanManageSettings: true, CanManageCollaborators: true,
			CanEditCompanyProfile: true,
		}
	case entity.RoleManager:
		return entity.Permissions{
			CanAddProducts: true, CanEditProducts: true, CanDeleteProducts: true,
			CanAddSales: true, CanEditSales: true, CanViewSales: true,
			CanViewReports: true,
		}
	case entity.RoleSupervisor:
		return entity.Permissions{
			CanAddProducts: true, CanEditProducts: true,
			CanAddSales: true, CanEditSales: true, CanViewSales: true,
			CanAddExpenses: true, CanEditExpenses: true,
			CanViewReports: true,
		}
	case entity.RoleSales:
		return entity.Permissions{
			CanAddSales: true, CanViewSales: true,
		}
	case entity.RoleAuditor:
		return entity.Permissions{
			CanViewSales: true, CanViewReports: true,
		}
	default:
		// Incluye LOCKED: vector vacío.
		return entity.Permissions{}
	}
}
