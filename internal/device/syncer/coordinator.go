// Package syncer implementa el coordinador de conflictos del dispositivo:
// la máquina de estados que dispara la cosecha al iniciar sesión, interpreta
// el veredicto del reconciliador remoto, arbitra los conflictos con el
// usuario y finaliza la poda local tras la aceptación del servidor.
package syncer

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/jhoicas/dailyprofit-api/internal/application/dto"
	"github.com/jhoicas/dailyprofit-api/internal/device/harvest"
	"github.com/jhoicas/dailyprofit-api/internal/device/store"
	"github.com/jhoicas/dailyprofit-api/internal/domain/entity"
	"github.com/jhoicas/dailyprofit-api/pkg/logger"
)

// State estado observable del coordinador.
type State string

const (
	StateIdle                  State = "IDLE"
	StateAuthenticating        State = "AUTHENTICATING"
	StateSyncing               State = "SYNCING"
	StateConflictPlanLimit     State = "CONFLICT_PLAN_LIMIT"
	StateConflictNameCollision State = "CONFLICT_NAME_COLLISION"
	StateResolving             State = "RESOLVING"
	StateDone                  State = "DONE"
	StateCancelled             State = "CANCELLED"
)

var (
	// ErrSyncInFlight un segundo login mientras hay un intento en curso.
	ErrSyncInFlight = errors.New("ya hay una sincronización en curso")
	// ErrNoConflict se intentó resolver sin conflicto abierto.
	ErrNoConflict = errors.New("no hay conflicto pendiente")
	// ErrTooManySelected la selección supera el límite del plan.
	ErrTooManySelected = errors.New("la selección supera el límite del plan")
)

// Gateway operaciones remotas que necesita el coordinador.
type Gateway interface {
	GoogleLogin(ctx context.Context, idToken string) (*dto.LoginResponse, error)
	Sync(ctx context.Context, token string, payload dto.SyncPayload) (*dto.SyncAccepted, *dto.SyncConflictResponse, error)
}

// Conflict es el conflicto retenido por el coordinador mientras el usuario
// arbitra. Guarda el token pendiente: la sesión NO se considera iniciada
// hasta que el servidor acepte el payload.
type Conflict struct {
	Kind            string // dto.ConflictPlanLimit | dto.ConflictNameCollision
	Limit           int
	LocalBusinesses []entity.BusinessProfile
	CloudBusinesses []entity.BusinessProfile
	Pairs           []dto.NameCollisionPair
	// Resolutions viene sembrado con KEEP_SEPARATE para cada par: el default
	// nunca es destructivo.
	Resolutions map[string]string

	token string
}

// Coordinator máquina de estados de reconciliación. Una sola instancia
// activa por dispositivo: los métodos se serializan con el mutex.
type Coordinator struct {
	mu      sync.Mutex
	state   State
	gw      Gateway
	store   store.LocalStore
	devctx  *store.DeviceContext
	log     *logger.Logger
	pending *Conflict
}

// NewCoordinator construye el coordinador en IDLE.
func NewCoordinator(gw Gateway, s store.LocalStore, devctx *store.DeviceContext, log *logger.Logger) *Coordinator {
	return &Coordinator{
		state:  StateIdle,
		gw:     gw,
		store:  s,
		devctx: devctx,
		log:    log,
	}
}

// State devuelve el estado actual.
func (c *Coordinator) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Conflict devuelve una copia del conflicto abierto (nil si no hay).
func (c *Coordinator) Conflict() *Conflict {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.pending == nil {
		return nil
	}
	cp := *c.pending
	cp.token = ""
	return &cp
}

// Login inicia el flujo: autentica, cosecha sin filtros y ofrece el payload.
// Un login con otro intento en curso se rechaza, no se intercala.
func (c *Coordinator) Login(ctx context.Context, idToken string) error {
	c.mu.Lock()
	if c.state != StateIdle && c.state != StateDone && c.state != StateCancelled {
		c.mu.Unlock()
		return ErrSyncInFlight
	}
	c.state = StateAuthenticating
	c.pending = nil
	c.mu.Unlock()

	login, err := c.gw.GoogleLogin(ctx, idToken)
	if err != nil {
		c.setState(StateIdle)
		return fmt.Errorf("autenticación: %w", err)
	}

	payload, err := harvest.Harvest(c.store)
	if err != nil {
		c.setState(StateIdle)
		return err
	}

	// Sin negocios locales no hay nada que ofrecer: éxito trivial, cero red.
	if len(payload.Businesses) == 0 {
		if err := c.commit(login.Token); err != nil {
			return err
		}
		return nil
	}

	c.setState(StateSyncing)
	return c.submit(ctx, login.Token, payload, nil)
}

// ResolvePlanLimit reintenta con la lista de conservación elegida por el
// usuario. Tras la aceptación poda localmente los negocios no seleccionados.
func (c *Coordinator) ResolvePlanLimit(ctx context.Context, allowedIDs []string) error {
	c.mu.Lock()
	if c.state != StateConflictPlanLimit || c.pending == nil {
		c.mu.Unlock()
		return ErrNoConflict
	}
	if len(allowedIDs) > c.pending.Limit {
		c.mu.Unlock()
		return ErrTooManySelected
	}
	token := c.pending.token
	c.state = StateResolving
	c.mu.Unlock()

	// Re-cosecha acotada a la selección: los negocios descartados no viajan
	// (volverían a exceder la cuota) pero las ediciones hechas con el modal
	// abierto sobre los conservados sí.
	keep := make(map[string]bool, len(allowedIDs))
	for _, id := range allowedIDs {
		keep[id] = true
	}
	payload, err := harvest.HarvestSubset(c.store, keep)
	if err != nil {
		c.setState(StateConflictPlanLimit)
		return err
	}
	payload.AllowedIDs = allowedIDs
	if payload.AllowedIDs == nil {
		payload.AllowedIDs = []string{}
	}

	c.setState(StateSyncing)
	return c.submit(ctx, token, payload, func() error {
		return c.pruneExcept(allowedIDs)
	})
}

// ResolveNameCollision reintenta con el mapa de resoluciones confirmado.
// Las elecciones del usuario pisan el default KEEP_SEPARATE par a par.
func (c *Coordinator) ResolveNameCollision(ctx context.Context, choices map[string]string) error {
	c.mu.Lock()
	if c.state != StateConflictNameCollision || c.pending == nil {
		c.mu.Unlock()
		return ErrNoConflict
	}
	token := c.pending.token
	resolutions := make(map[string]string, len(c.pending.Resolutions))
	for id, r := range c.pending.Resolutions {
		resolutions[id] = r
	}
	for id, r := range choices {
		resolutions[id] = r
	}
	c.state = StateResolving
	c.mu.Unlock()

	payload, err := harvest.Harvest(c.store)
	if err != nil {
		c.setState(StateConflictNameCollision)
		return err
	}
	payload.Resolutions = resolutions

	c.setState(StateSyncing)
	// Sin poda local: MERGE/REPLACE son operaciones del lado servidor y
	// KEEP_SEPARATE inserta una copia renombrada sin borrar nada aquí.
	return c.submit(ctx, token, payload, nil)
}

// Cancel cierra el modal: descarta el token pendiente para que no quede una
// sesión a medias. Reintentar exige un login fresco.
func (c *Coordinator) Cancel() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.pending = nil
	c.state = StateCancelled
}

// AbortForUpgrade abandona el intento para navegar al flujo de upgrade sin
// descartar el conflicto pendiente: el usuario puede volver y reintentar o
// cancelar después.
func (c *Coordinator) AbortForUpgrade() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.pending == nil {
		return
	}
	if c.pending.Kind == dto.ConflictPlanLimit {
		c.state = StateConflictPlanLimit
	} else {
		c.state = StateConflictNameCollision
	}
}

// submit ofrece el payload y despacha el veredicto. afterAccept corre tras
// la aceptación del servidor y antes de confirmar la sesión (la poda local
// jamás precede a la aceptación).
func (c *Coordinator) submit(ctx context.Context, token string, payload dto.SyncPayload, afterAccept func() error) error {
	_, conflict, err := c.gw.Sync(ctx, token, payload)
	if err != nil {
		// Falla no-409: fatal para el intento. El token se descarta salvo
		// que un conflicto siga abierto (no pisar su token pendiente).
		c.reopenOrIdle()
		return fmt.Errorf("sincronización: %w", err)
	}

	if conflict != nil {
		c.holdConflict(token, payload, conflict)
		return nil
	}

	if afterAccept != nil {
		if err := afterAccept(); err != nil {
			c.reopenOrIdle()
			return err
		}
	}
	return c.commit(token)
}

// holdConflict retiene el conflicto estructurado con su token pendiente.
func (c *Coordinator) holdConflict(token string, payload dto.SyncPayload, conflict *dto.SyncConflictResponse) {
	c.mu.Lock()
	defer c.mu.Unlock()

	held := &Conflict{Kind: conflict.Error, token: token}
	switch conflict.Error {
	case dto.ConflictPlanLimit:
		held.Limit = conflict.Limit
		held.LocalBusinesses = payload.Businesses
		held.CloudBusinesses = conflict.ExistingBusinesses
		c.state = StateConflictPlanLimit
	case dto.ConflictNameCollision:
		held.Pairs = conflict.Conflicts
		held.Resolutions = make(map[string]string, len(conflict.Conflicts))
		for _, pair := range conflict.Conflicts {
			held.Resolutions[pair.Local.ID] = dto.ResolutionKeepSeparate
		}
		c.state = StateConflictNameCollision
	}
	c.pending = held

	if c.log != nil {
		c.log.Info().
			Str("conflicto", conflict.Error).
			Int("limite", conflict.Limit).
			Msg("reconciliación rechazada, esperando arbitraje del usuario")
	}
}

// reopenOrIdle devuelve la máquina a un estado desde el que se puede
// reintentar: el conflicto abierto si lo hay, IDLE si no. Sin esto una falla
// dejaría el coordinador en SYNCING y todo login posterior rebotaría con
// ErrSyncInFlight.
func (c *Coordinator) reopenOrIdle() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.pending != nil {
		if c.pending.Kind == dto.ConflictPlanLimit {
			c.state = StateConflictPlanLimit
		} else {
			c.state = StateConflictNameCollision
		}
		return
	}
	c.state = StateIdle
}

// commit confirma la sesión: el token pendiente pasa a ser el token del
// dispositivo y el flujo termina en DONE. Los datos locales NO se borran.
func (c *Coordinator) commit(token string) error {
	if err := c.devctx.SetToken(token); err != nil {
		c.reopenOrIdle()
		return err
	}
	c.mu.Lock()
	c.pending = nil
	c.state = StateDone
	c.mu.Unlock()
	return nil
}

// pruneExcept borra localmente todo negocio fuera de la lista de
// conservación: colecciones anidadas y perfil, atómico por negocio. Si el
// negocio activo cae podado, se limpia el puntero.
func (c *Coordinator) pruneExcept(allowedIDs []string) error {
	keep := make(map[string]bool, len(allowedIDs))
	for _, id := range allowedIDs {
		keep[id] = true
	}

	var businesses []entity.BusinessProfile
	if _, err := c.store.Load(store.KeyBusinesses, &businesses); err != nil {
		return fmt.Errorf("leer negocios locales: %w", err)
	}

	var kept []entity.BusinessProfile
	for _, b := range businesses {
		if keep[b.ID] {
			kept = append(kept, b)
			continue
		}
		if err := c.store.Remove(store.NestedKeys(b.ID)...); err != nil {
			return fmt.Errorf("podar negocio %s: %w", b.ID, err)
		}
		if c.devctx.ActiveBusiness() == b.ID {
			if err := c.devctx.ClearActiveBusiness(); err != nil {
				return err
			}
		}
		if c.log != nil {
			c.log.Info().Str("negocio", b.ID).Msg("negocio podado localmente tras la aceptación")
		}
	}
	if kept == nil {
		kept = []entity.BusinessProfile{}
	}
	return c.store.Save(store.KeyBusinesses, kept)
}

func (c *Coordinator) setState(s State) {
	c.mu.Lock()
	c.state = s
	c.mu.Unlock()
}
