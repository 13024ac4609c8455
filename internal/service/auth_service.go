package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"storevision/internal/config"
	"storevision/internal/dto"
	"storevision/internal/model"
	"storevision/internal/repository"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// Token types carried in the "typ" claim. Only access tokens open protected
// routes; only refresh tokens are accepted by Refresh.
const (
	TokenAcceso   = "access"
	TokenRefresco = "refresh"
)

var bcryptCost = 12

// HashPassword hashes a plain password with the service's bcrypt cost.
func HashPassword(plain string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(plain), bcryptCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

type AuthService interface {
	// Login records login_exitoso or login_fallido with the client IP.
	Login(ctx context.Context, req dto.LoginRequest, ip string) (*dto.LoginResponse, error)
	Refresh(ctx context.Context, refreshToken string) (*dto.LoginResponse, error)
	CrearUsuario(ctx context.Context, actor Actor, req dto.CrearUsuarioRequest) (*dto.UsuarioResponse, error)
	ListarUsuarios(ctx context.Context) ([]dto.UsuarioResponse, error)
}

type authService struct {
	repo      repository.UsuarioRepository
	auditoria AuditoriaService
	uow       UnitOfWork
	cfg       *config.Config
}

func NewAuthService(repo repository.UsuarioRepository, auditoria AuditoriaService, uow UnitOfWork, cfg *config.Config) AuthService {
	return &authService{repo: repo, auditoria: auditoria, uow: uow, cfg: cfg}
}

func (s *authService) Login(ctx context.Context, req dto.LoginRequest, ip string) (*dto.LoginResponse, error) {
	user, err := s.repo.FindByEmail(ctx, req.Email)
	if err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, persistencia(err)
		}
		s.auditar(ctx, EntradaAuditoria{
			TipoAccion:  model.AccionLoginFallido,
			Descripcion: fmt.Sprintf("Intento de login fallido para %s", strings.ToLower(req.Email)),
			IP:          ip,
		})
		return nil, ErrCredencialesInvalidas
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		s.auditar(ctx, EntradaAuditoria{
			UsuarioID:   &user.ID,
			TipoAccion:  model.AccionLoginFallido,
			Descripcion: fmt.Sprintf("Contraseña incorrecta para %s", user.Email),
			IP:          ip,
		})
		return nil, ErrCredencialesInvalidas
	}

	resp, err := s.emitirTokens(user)
	if err != nil {
		return nil, err
	}
	s.auditar(ctx, EntradaAuditoria{
		UsuarioID:   &user.ID,
		TipoAccion:  model.AccionLoginExitoso,
		Descripcion: fmt.Sprintf("Login exitoso de %s (%s)", user.Email, user.Rol),
		IP:          ip,
	})
	return resp, nil
}

// auditar records a standalone event. A failure here must not change the
// login outcome, so it is only logged.
func (s *authService) auditar(ctx context.Context, e EntradaAuditoria) {
	if err := s.auditoria.Registrar(ctx, e); err != nil {
		log.Error().Err(err).Str("accion", e.TipoAccion).Msg("auth: audit entry failed")
	}
}

func (s *authService) Refresh(ctx context.Context, refreshToken string) (*dto.LoginResponse, error) {
	token, err := jwt.Parse(refreshToken, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrSignatureInvalid
		}
		return []byte(s.cfg.JWTSecret), nil
	})
	if err != nil || !token.Valid {
		return nil, ErrTokenInvalido
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok || claims["typ"] != TokenRefresco {
		return nil, ErrTokenInvalido
	}
	userIDStr, ok := claims["user_id"].(string)
	if !ok {
		return nil, ErrTokenInvalido
	}
	uid, err := uuid.Parse(userIDStr)
	if err != nil {
		return nil, ErrTokenInvalido
	}

	user, err := s.repo.FindByID(ctx, uid)
	if err != nil || !user.Activo {
		return nil, ErrTokenInvalido
	}
	return s.emitirTokens(user)
}

func (s *authService) CrearUsuario(ctx context.Context, actor Actor, req dto.CrearUsuarioRequest) (*dto.UsuarioResponse, error) {
	email := strings.ToLower(strings.TrimSpace(req.Email))
	existe, err := s.repo.ExistsEmail(ctx, email)
	if err != nil {
		return nil, persistencia(err)
	}
	if existe {
		return nil, fmt.Errorf("%w: %s", ErrEmailDuplicado, email)
	}

	hash, err := HashPassword(req.Password)
	if err != nil {
		return nil, err
	}
	user := &model.Usuario{
		Email:        email,
		Nombre:       req.Nombre,
		PasswordHash: hash,
		Rol:          req.Rol,
		Activo:       true,
	}
	err = s.uow.Do(ctx, func(tx *gorm.DB) error {
		if err := s.repo.CreateTx(tx, user); err != nil {
			return persistencia(err)
		}
		return s.auditoria.RegistrarTx(ctx, tx, EntradaAuditoria{
			UsuarioID:   &actor.UsuarioID,
			TipoAccion:  model.AccionCreacionUsuario,
			Descripcion: fmt.Sprintf("Usuario %s creado con rol %s", user.Email, user.Rol),
			IP:          actor.IP,
		})
	})
	if err != nil {
		return nil, err
	}

	resp := usuarioToResponse(user)
	return &resp, nil
}

func (s *authService) ListarUsuarios(ctx context.Context) ([]dto.UsuarioResponse, error) {
	users, err := s.repo.List(ctx)
	if err != nil {
		return nil, persistencia(err)
	}
	resp := make([]dto.UsuarioResponse, len(users))
	for i := range users {
		resp[i] = usuarioToResponse(&users[i])
	}
	return resp, nil
}

func (s *authService) emitirTokens(user *model.Usuario) (*dto.LoginResponse, error) {
	accessToken, err := s.generateToken(user, TokenAcceso, time.Duration(s.cfg.JWTExpirationHours)*time.Hour)
	if err != nil {
		return nil, err
	}
	refreshToken, err := s.generateToken(user, TokenRefresco, time.Duration(s.cfg.JWTRefreshHours)*time.Hour)
	if err != nil {
		return nil, err
	}
	return &dto.LoginResponse{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		TokenType:    "bearer",
		ExpiresIn:    s.cfg.JWTExpirationHours * 3600,
		User:         usuarioToResponse(user),
	}, nil
}

func (s *authService) generateToken(user *model.Usuario, tipo string, duration time.Duration) (string, error) {
	now := time.Now()
	claims := jwt.MapClaims{
		"user_id": user.ID.String(),
		"email":   user.Email,
		"rol":     user.Rol,
		"typ":     tipo,
		"exp":     now.Add(duration).Unix(),
		"iat":     now.Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(s.cfg.JWTSecret))
}

func usuarioToResponse(u *model.Usuario) dto.UsuarioResponse {
	return dto.UsuarioResponse{
		ID:            u.ID.String(),
		Email:         u.Email,
		Nombre:        u.Nombre,
		Rol:           u.Rol,
		Activo:        u.Activo,
		FechaCreacion: formatTime(u.FechaCreacion),
	}
}
