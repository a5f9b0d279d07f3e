package auth_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/jhoicas/stock-ledger-api/internal/application/auth"
	"github.com/jhoicas/stock-ledger-api/internal/application/dto"
	"github.com/jhoicas/stock-ledger-api/internal/domain"
)

func newUseCase(t *testing.T) *auth.AuthUseCase {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte("secreto"), bcrypt.MinCost)
	require.NoError(t, err)
	return auth.NewAuthUseCase(
		map[string]string{"admin": string(hash)},
		auth.JWTConfig{Secret: "clave-de-prueba", ExpMinutes: 15, Issuer: "stock-ledger"},
	)
}

func TestVerify(t *testing.T) {
	uc := newUseCase(t)
	assert.NoError(t, uc.Verify("admin", "secreto"))
	assert.ErrorIs(t, uc.Verify("admin", "otra"), domain.ErrUnauthorized)
	assert.ErrorIs(t, uc.Verify("nadie", "secreto"), domain.ErrUnauthorized)
}

func TestLogin_EmiteTokenValido(t *testing.T) {
	uc := newUseCase(t)

	out, err := uc.Login(dto.LoginRequest{Username: "admin", Password: "secreto"})
	require.NoError(t, err)
	assert.NotEmpty(t, out.Token)
	assert.Equal(t, 900, out.ExpiresIn)

	user, err := uc.ParseToken(out.Token)
	require.NoError(t, err)
	assert.Equal(t, "admin", user)
}

func TestLogin_CredencialesInvalidas(t *testing.T) {
	uc := newUseCase(t)
	out, err := uc.Login(dto.LoginRequest{Username: "admin", Password: "mal"})
	assert.ErrorIs(t, err, domain.ErrUnauthorized)
	assert.Nil(t, out)
}

func TestParseToken_Invalido(t *testing.T) {
	uc := newUseCase(t)
	_, err := uc.ParseToken("no.es.token")
	assert.Error(t, err)
}

func TestNewAuthUseCase_CopiaUsuarios(t *testing.T) {
	hash, err := bcrypt.GenerateFromPassword([]byte("x"), bcrypt.MinCost)
	require.NoError(t, err)
	users := map[string]string{"a": string(hash)}
	uc := auth.NewAuthUseCase(users, auth.JWTConfig{Secret: "s"})
	delete(users, "a")
	assert.NoError(t, uc.Verify("a", "x"))
}
