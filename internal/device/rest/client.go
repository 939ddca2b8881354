// Package rest es la pasarela HTTP del dispositivo hacia la API de nube.
// Envuelve los endpoints que usa el flujo de reconciliación y colaboración.
package rest

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/jhoicas/dailyprofit-api/internal/application/dto"
	"github.com/jhoicas/dailyprofit-api/internal/device/store"
)

// KeyCustomAPIURL override manual de la URL base (para pruebas en móvil).
const KeyCustomAPIURL = "custom_api_url"

// EnvAPIURL variable de entorno con la URL base de la API.
const EnvAPIURL = "DAILYPROFIT_API_URL"

// ErrInviteTimeout la generación de invitación venció su timeout de cliente.
var ErrInviteTimeout = errors.New("la solicitud de invitación expiró")

// inviteTimeout ventana fija de cliente para emitir un código.
const inviteTimeout = 10 * time.Second

// ResolveBaseURL aplica el orden de resolución de la URL base, que determina
// la alcanzabilidad según el entorno (emulador, dispositivo físico, web):
//  1. override manual guardado en el dispositivo,
//  2. variable de entorno,
//  3. hostname de LAN,
//  4. loopback local como último recurso.
func ResolveBaseURL(s store.LocalStore) string {
	var custom string
	if ok, err := s.Load(KeyCustomAPIURL, &custom); err == nil && ok && custom != "" {
		return custom
	}
	if env := os.Getenv(EnvAPIURL); env != "" {
		return env
	}
	if host, err := os.Hostname(); err == nil && host != "" && host != "localhost" {
		return fmt.Sprintf("http://%s:5000/api", host)
	}
	return "http://localhost:5000/api"
}

// Client pasarela HTTP con la URL base ya resuelta.
type Client struct {
	base string
	http *http.Client
}

// NewClient construye la pasarela.
func NewClient(baseURL string) *Client {
	return &Client{
		base: baseURL,
		// Sin timeout global: el submit de sync no impone timeout de cliente,
		// se cancela vía context. Las operaciones con ventana fija (invite)
		// acotan su propio context.
		http: &http.Client{},
	}
}

// GoogleLogin intercambia el ID token de Google por un token de sesión.
func (c *Client) GoogleLogin(ctx context.Context, idToken string) (*dto.LoginResponse, error) {
	var out dto.LoginResponse
	if err := c.post(ctx, "/auth/google", "", dto.GoogleLoginRequest{IDToken: idToken}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Sync ofrece la cosecha a la nube. Devuelve exactamente uno de:
// aceptación (200), conflicto estructurado (409) o error.
func (c *Client) Sync(ctx context.Context, token string, payload dto.SyncPayload) (*dto.SyncAccepted, *dto.SyncConflictResponse, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, nil, fmt.Errorf("serializar payload: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.base+"/auth/sync", bytes.NewReader(body))
	if err != nil {
		return nil, nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, nil, fmt.Errorf("enviar sync: %w", err)
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK:
		var accepted dto.SyncAccepted
		if err := json.NewDecoder(resp.Body).Decode(&accepted); err != nil {
			return nil, nil, fmt.Errorf("decodificar aceptación: %w", err)
		}
		return &accepted, nil, nil
	case http.StatusConflict:
		var conflict dto.SyncConflictResponse
		if err := json.NewDecoder(resp.Body).Decode(&conflict); err != nil {
			return nil, nil, fmt.Errorf("decodificar conflicto: %w", err)
		}
		return nil, &conflict, nil
	default:
		return nil, nil, c.statusError(resp)
	}
}

// GenerateInvite emite un código de invitación con timeout fijo de cliente:
// reporta un error distinguible en lugar de colgarse.
func (c *Client) GenerateInvite(ctx context.Context, token, businessID string) (*dto.InviteResponse, error) {
	ctx, cancel := context.WithTimeout(ctx, inviteTimeout)
	defer cancel()

	var out dto.InviteResponse
	err := c.post(ctx, "/businesses/"+businessID+"/invite", token, nil, &out)
	if errors.Is(err, context.DeadlineExceeded) {
		return nil, ErrInviteTimeout
	}
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// Join une al usuario a un negocio con un código de 6 dígitos.
func (c *Client) Join(ctx context.Context, token, code string) (*dto.JoinResponse, error) {
	var out dto.JoinResponse
	if err := c.post(ctx, "/businesses/join", token, dto.JoinRequest{Code: code}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) post(ctx context.Context, path, token string, in, out any) error {
	var body bytes.Buffer
	if in != nil {
		if err := json.NewEncoder(&body).Encode(in); err != nil {
			return fmt.Errorf("serializar cuerpo: %w", err)
		}
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.base+path, &body)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 400 {
		return c.statusError(resp)
	}
	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return fmt.Errorf("decodificar respuesta: %w", err)
		}
	}
	return nil
}

// statusError decodifica el ErrorResponse del servidor si viene.
func (c *Client) statusError(resp *http.Response) error {
	var e dto.ErrorResponse
	if err := json.NewDecoder(resp.Body).Decode(&e); err == nil && e.Code != "" {
		return fmt.Errorf("api %d %s: %s", resp.StatusCode, e.Code, e.Message)
	}
	return fmt.Errorf("api: status inesperado %d", resp.StatusCode)
}
