package auth

import (
	"github.com/jhoicas/stock-ledger-api/internal/application/dto"
	"github.com/jhoicas/stock-ledger-api/internal/domain"
	"github.com/jhoicas/stock-ledger-api/pkg/jwt"
	"golang.org/x/crypto/bcrypt"
)

// JWTConfig configuración para generación de tokens.
type JWTConfig struct {
	Secret     string
	ExpMinutes int
	Issuer     string
}

// AuthUseCase autentica contra las credenciales inyectadas por configuración
// (usuario -> hash bcrypt) y emite tokens JWT.
type AuthUseCase struct {
	users  map[string]string
	jwtCfg JWTConfig
}

// NewAuthUseCase construye el caso de uso de auth.
func NewAuthUseCase(users map[string]string, jwtCfg JWTConfig) *AuthUseCase {
	cp := make(map[string]string, len(users))
	for u, h := range users {
		cp[u] = h
	}
	return &AuthUseCase{users: cp, jwtCfg: jwtCfg}
}

// Verify compara la contraseña con el hash bcrypt del usuario.
func (uc *AuthUseCase) Verify(username, password string) error {
	hash, ok := uc.users[username]
	if !ok {
		_ = bcrypt.CompareHashAndPassword(dummyHash, []byte(password))
		return domain.ErrUnauthorized
	}
	if err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)); err != nil {
		return domain.ErrUnauthorized
	}
	return nil
}

// Login verifica usuario/password y genera un JWT.
func (uc *AuthUseCase) Login(in dto.LoginRequest) (*dto.LoginResponse, error) {
	if err := uc.Verify(in.Username, in.Password); err != nil {
		return nil, err
	}
	token, err := jwt.Generate(uc.jwtCfg.Secret, in.Username, uc.jwtCfg.Issuer, uc.jwtCfg.ExpMinutes)
	if err != nil {
		return nil, err
	}
	return &dto.LoginResponse{Token: token, ExpiresIn: uc.jwtCfg.ExpMinutes * 60}, nil
}

// ParseToken valida el token y devuelve el usuario.
func (uc *AuthUseCase) ParseToken(token string) (string, error) {
	return jwt.Parse(uc.jwtCfg.Secret, token)
}

var dummyHash, _ = bcrypt.GenerateFromPassword([]byte("stock-ledger"), bcrypt.DefaultCost)
