package permission_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/dailyprofit-api/internal/domain/entity"
	"github.com/jhoicas/dailyprofit-api/internal/domain/permission"
)

func cloudBusiness() *entity.BusinessProfile {
	return &entity.BusinessProfile{
		ID:      "biz-1",
		Name:    "Ferretería Central",
		OwnerID: "owner-1",
		Plan:    entity.PlanEntrepreneur,
		Collaborators: []entity.Collaborator{
			{UserID: "owner-1", Name: "Dueño", Role: entity.RoleOwner, Status: entity.CollaboratorActive},
			{UserID: "sales-1", Name: "Vendedor", Role: entity.RoleSales, Status: entity.CollaboratorActive},
		},
	}
}

func localBusiness() *entity.BusinessProfile {
	return &entity.BusinessProfile{ID: "local-1", Name: "Tienda Local"}
}

func TestNoBusinessLoadedDeniesEverything(t *testing.T) {
	access := permission.Resolve(&permission.Identity{ID: "u-1"}, nil, false)
	assert.Equal(t, entity.RoleManager, access.Role)
	for _, action := range permission.Actions {
		assert.False(t, access.Can(action), string(action))
	}
}

func TestAnonymousOnForeignCloudBusinessIsLocked(t *testing.T) {
	access := permission.Resolve(nil, cloudBusiness(), false)
	assert.Equal(t, entity.RoleLocked, access.Role)
	for _, action := range permission.Actions {
		assert.False(t, access.Can(action), string(action))
	}
}

func TestAnonymousLocalOwnerKeepsOwnerAccess(t *testing.T) {
	// Dispositivo que originó el negocio, antes del primer sync autenticado.
	access := permission.Resolve(nil, cloudBusiness(), true)
	assert.Equal(t, entity.RoleOwner, access.Role)
	assert.True(t, access.Can(permission.ManageCollaborators))

	// Negocio puramente local, sin sesión.
	access = permission.Resolve(nil, localBusiness(), false)
	assert.Equal(t, entity.RoleOwner, access.Role)
	assert.True(t, access.Can(permission.ManageSettings))
}

func TestOwnerIdentityResolvesOwner(t *testing.T) {
	access := permission.Resolve(&permission.Identity{ID: "owner-1"}, cloudBusiness(), false)
	assert.Equal(t, entity.RoleOwner, access.Role)
	for _, action := range permission.Actions {
		assert.True(t, access.Can(action), string(action))
	}
}

func TestIdentityOnLocalBusinessResolvesOwner(t *testing.T) {
	access := permission.Resolve(&permission.Identity{ID: "anyone"}, localBusiness(), false)
	assert.Equal(t, entity.RoleOwner, access.Role)
}

func TestCollaboratorGetsRoleDefaults(t *testing.T) {
	access := permission.Resolve(&permission.Identity{ID: "sales-1"}, cloudBusiness(), false)
	assert.Equal(t, entity.RoleSales, access.Role)
	assert.True(t, access.Can(permission.AddSales))
	assert.True(t, access.Can(permission.ViewSales))
	assert.False(t, access.Can(permission.EditSales))
	assert.False(t, access.Can(permission.ViewReports))
	assert.False(t, access.Can(permission.ManageCollaborators))
}

func TestCollaboratorOverrideReplacesDefaults(t *testing.T) {
	b := cloudBusiness()
	override := permission.Defaults(entity.RoleSales)
	override.CanViewReports = true
	b.Collaborators[1].Permissions = &override

	access := permission.Resolve(&permission.Identity{ID: "sales-1"}, b, false)
	assert.Equal(t, entity.RoleSales, access.Role)
	assert.True(t, access.Can(permission.ViewReports))
	assert.False(t, access.Can(permission.EditSales))
}

func TestStrangerIdentityIsDenied(t *testing.T) {
	access := permission.Resolve(&permission.Identity{ID: "stranger"}, cloudBusiness(), false)
	for _, action := range permission.Actions {
		assert.False(t, access.Can(action), string(action))
	}
}

func TestOwnerDefaultsAreSupersetOfEveryRole(t *testing.T) {
	owner := permission.Access{Role: entity.RoleOwner, Permissions: permission.Defaults(entity.RoleOwner)}
	roles := []string{entity.RoleManager, entity.RoleSupervisor, entity.RoleSales, entity.RoleAuditor, entity.RoleLocked}
	for _, role := range roles {
		access := permission.Access{Role: role, Permissions: permission.Defaults(role)}
		for _, action := range permission.Actions {
			if access.Can(action) {
				require.True(t, owner.Can(action), "%s concede %s pero OWNER no", role, action)
			}
		}
	}
}

func TestLockedDefaultsAreEmpty(t *testing.T) {
	assert.Equal(t, entity.Permissions{}, permission.Defaults(entity.RoleLocked))
	assert.Equal(t, entity.Permissions{}, permission.Defaults("UNKNOWN"))
}
