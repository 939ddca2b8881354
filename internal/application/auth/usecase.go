package auth

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jhoicas/dailyprofit-api/internal/application/dto"
	"github.com/jhoicas/dailyprofit-api/internal/domain"
	"github.com/jhoicas/dailyprofit-api/internal/domain/entity"
	"github.com/jhoicas/dailyprofit-api/internal/domain/repository"
	"github.com/jhoicas/dailyprofit-api/pkg/jwt"
	"golang.org/x/crypto/bcrypt"
)

// JWTConfig configuración para generación de tokens.
type JWTConfig struct {
	Secret     string
	ExpMinutes int
	Issuer     string
}

// AuthUseCase casos de uso de autenticación: Google, Apple, invitado y perfil.
type AuthUseCase struct {
	userRepo repository.UserRepository
	verifier IdentityVerifier
	jwtCfg   JWTConfig
}

// NewAuthUseCase construye el caso de uso de auth.
func NewAuthUseCase(userRepo repository.UserRepository, verifier IdentityVerifier, jwtCfg JWTConfig) *AuthUseCase {
	return &AuthUseCase{userRepo: userRepo, verifier: verifier, jwtCfg: jwtCfg}
}

// GoogleLogin verifica el ID token, crea la cuenta si no existe y emite el JWT.
func (uc *AuthUseCase) GoogleLogin(ctx context.Context, in dto.GoogleLoginRequest) (*dto.LoginResponse, error) {
	profile, err := uc.verifier.Verify(ctx, in.IDToken)
	if err != nil {
		return nil, domain.ErrUnauthorized
	}
	user, err := uc.findOrCreateSocial(profile)
	if err != nil {
		return nil, err
	}
	return uc.issue(user)
}

// AppleLogin igual que Google, pero Apple solo envía nombre en el primer login:
// si la cuenta ya existe sin nombre, se completa con el recibido.
func (uc *AuthUseCase) AppleLogin(ctx context.Context, in dto.AppleLoginRequest) (*dto.LoginResponse, error) {
	profile, err := uc.verifier.Verify(ctx, in.IdentityToken)
	if err != nil {
		return nil, domain.ErrUnauthorized
	}
	if profile.Name == "" && (in.GivenName != "" || in.FamilyName != "") {
		profile.Name = joinName(in.GivenName, in.FamilyName)
	}
	user, err := uc.findOrCreateSocial(profile)
	if err != nil {
		return nil, err
	}
	if user.DisplayName == "" && profile.Name != "" {
		user.DisplayName = profile.Name
		user.UpdatedAt = time.Now()
		if err := uc.userRepo.Update(user); err != nil {
			return nil, err
		}
	}
	return uc.issue(user)
}

// GuestLogin crea una cuenta efímera de invitado y la autentica.
func (uc *AuthUseCase) GuestLogin(ctx context.Context) (*dto.LoginResponse, error) {
	_ = ctx
	guestID := uuid.New().String()
	hash, err := bcrypt.GenerateFromPassword([]byte(uuid.New().String()), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}
	now := time.Now()
	user := &entity.User{
		ID:           guestID,
		Email:        fmt.Sprintf("guest_%s@guest.dailyprofit.app", guestID[:8]),
		DisplayName:  "Guest User",
		PasswordHash: string(hash),
		Plan:         entity.PlanFree,
		IsGuest:      true,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := uc.userRepo.Create(user); err != nil {
		return nil, err
	}
	return uc.issue(user)
}

// Me devuelve el perfil del usuario autenticado.
func (uc *AuthUseCase) Me(userID string) (*dto.UserResponse, error) {
	user, err := uc.userRepo.FindByID(userID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, domain.ErrUserNotFound
	}
	return toUserResponse(user), nil
}

func (uc *AuthUseCase) findOrCreateSocial(profile *Profile) (*entity.User, error) {
	user, err := uc.userRepo.FindByEmail(profile.Email)
	if err != nil {
		return nil, err
	}
	if user != nil {
		return user, nil
	}
	// Password interno aleatorio: las cuentas sociales nunca hacen login con él.
	hash, err := bcrypt.GenerateFromPassword([]byte(uuid.New().String()), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}
	now := time.Now()
	user = &entity.User{
		ID:           uuid.New().String(),
		Email:        profile.Email,
		DisplayName:  profile.Name,
		PhotoURL:     profile.PhotoURL,
		ProviderID:   profile.ProviderID,
		PasswordHash: string(hash),
		Plan:         entity.PlanFree,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := uc.userRepo.Create(user); err != nil {
		return nil, err
	}
	return user, nil
}

func (uc *AuthUseCase) issue(user *entity.User) (*dto.LoginResponse, error) {
	token, err := jwt.Generate(uc.jwtCfg.Secret, user.ID, user.Email, user.Plan, uc.jwtCfg.Issuer, uc.jwtCfg.ExpMinutes)
	if err != nil {
		return nil, err
	}
	return &dto.LoginResponse{Token: token, User: *toUserResponse(user)}, nil
}

func joinName(given, family string) string {
	switch {
	case given != "" && family != "":
		return given + " " + family
	case given != "":
		return given
	default:
		return family
	}
}

func toUserResponse(u *entity.User) *dto.UserResponse {
	if u == nil {
		return nil
	}
	return &dto.UserResponse{
		ID:          u.ID,
		Email:       u.Email,
		DisplayName: u.DisplayName,
		PhotoURL:    u.PhotoURL,
		Plan:        u.Plan,
		IsGuest:     u.IsGuest,
		CreatedAt:   u.CreatedAt,
	}
}
