package store

import "sync"

// DeviceContext es el estado global mutable del dispositivo hecho explícito:
// token de sesión, puntero al negocio activo y marcas de "dueño local" por
// negocio. Se inyecta donde haga falta en lugar de vivir como globals, y se
// respalda en el LocalStore para sobrevivir reinicios.
type DeviceContext struct {
	mu    sync.Mutex
	store LocalStore

	token          string
	activeBusiness string
}

// NewDeviceContext construye el contexto sin cargar nada.
func NewDeviceContext(s LocalStore) *DeviceContext {
	return &DeviceContext{store: s}
}

// Init carga token y negocio activo desde el store.
func (d *DeviceContext) Init() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if _, err := d.store.Load(KeyAuthToken, &d.token); err != nil {
		return err
	}
	if _, err := d.store.Load(KeyActiveBusiness, &d.activeBusiness); err != nil {
		return err
	}
	return nil
}

// Token devuelve el token de sesión vigente ("" si no hay sesión).
func (d *DeviceContext) Token() string {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.token
}

// SetToken persiste el token de sesión. Solo se llama cuando la
// reconciliación fue aceptada: nunca antes.
func (d *DeviceContext) SetToken(token string) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if err := d.store.Save(KeyAuthToken, token); err != nil {
		return err
	}
	d.token = token
	return nil
}

// ClearToken descarta la sesión (logout o cancelación del flujo).
func (d *DeviceContext) ClearToken() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if err := d.store.Remove(KeyAuthToken); err != nil {
		return err
	}
	d.token = ""
	return nil
}

// ActiveBusiness devuelve el negocio activo de la UI ("" si ninguno).
func (d *DeviceContext) ActiveBusiness() string {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.activeBusiness
}

// SetActiveBusiness cambia el negocio activo.
func (d *DeviceContext) SetActiveBusiness(businessID string) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if err := d.store.Save(KeyActiveBusiness, businessID); err != nil {
		return err
	}
	d.activeBusiness = businessID
	return nil
}

// ClearActiveBusiness limpia el puntero (p. ej. si ese negocio fue podado).
func (d *DeviceContext) ClearActiveBusiness() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if err := d.store.Remove(KeyActiveBusiness); err != nil {
		return err
	}
	d.activeBusiness = ""
	return nil
}

// IsLocalOwner indica si este dispositivo originó el negocio.
func (d *DeviceContext) IsLocalOwner(businessID string) bool {
	var flag bool
	ok, err := d.store.Load(LocalOwnerKey(businessID), &flag)
	if err != nil || !ok {
		return false
	}
	return flag
}

// MarkLocalOwner registra que el negocio nació en este dispositivo.
func (d *DeviceContext) MarkLocalOwner(businessID string) error {
	return d.store.Save(LocalOwnerKey(businessID), true)
}
