// Package plan centraliza las cuotas por plan de suscripción.
// Hay dos cuotas independientes: cantidad de negocios por cuenta (evaluada por
// el reconciliador contra el total nube+local) y cantidad de managers por
// negocio (evaluada al emitir invitaciones y al unirse). No se validan en
// conjunto: cada operación revisa solo la cuota que le corresponde.
package plan

import "github.com/jhoicas/dailyprofit-api/internal/domain/entity"

// Unlimited marca una cuota sin tope.
const Unlimited = int(^uint(0) >> 1)

// BusinessQuota devuelve el máximo de negocios (nube + locales ofrecidos) de una cuenta.
// FREE no incluye respaldo en nube: cualquier negocio ofrecido excede la cuota.
func BusinessQuota(p string) int {
	switch p {
	case entity.PlanLite:
		return 1
	case entity.PlanEntrepreneur:
		return 5
	case entity.PlanUnlimited:
		return Unlimited
	case entity.PlanFree:
		return 0
	default:
		return 0
	}
}

// ManagerQuota devuelve el máximo de colaboradores no-OWNER por negocio.
func ManagerQuota(p string) int {
	switch p {
	case entity.PlanLite:
		return 1
	case entity.PlanEntrepreneur:
		return 5
	case entity.PlanUnlimited:
		return Unlimited
	case entity.PlanFree:
		return 0
	default:
		return 0
	}
}
