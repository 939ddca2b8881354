package auth

import (
	"context"
	"fmt"

	pkgjwt "github.com/jhoicas/dailyprofit-api/pkg/jwt"
)

// Profile es la identidad mínima extraída de un ID token del proveedor.
type Profile struct {
	ProviderID string // claim "sub"
	Email      string
	Name       string
	PhotoURL   string
}

// IdentityVerifier valida un ID token externo (Google/Apple) y devuelve el
// perfil. La verificación criptográfica completa es un colaborador externo;
// aquí solo se define el puerto.
type IdentityVerifier interface {
	Verify(ctx context.Context, idToken string) (*Profile, error)
}

// ClaimsVerifier decodifica los claims del ID token sin validar firma.
// Es el mismo fallback que usa la app ante desfase de reloj del dispositivo;
// en producción se antepone un verificador real del proveedor.
type ClaimsVerifier struct{}

// Verify extrae sub/email/name/picture de los claims del token.
func (ClaimsVerifier) Verify(_ context.Context, idToken string) (*Profile, error) {
	claims, err := pkgjwt.DecodeUnverified(idToken)
	if err != nil {
		return nil, err
	}
	sub, _ := claims["sub"].(string)
	if sub == "" {
		return nil, fmt.Errorf("id token sin claim sub")
	}
	email, _ := claims["email"].(string)
	name, _ := claims["name"].(string)
	picture, _ := claims["picture"].(string)
	return &Profile{ProviderID: sub, Email: email, Name: name, PhotoURL: picture}, nil
}
