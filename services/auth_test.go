package services_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dcode-github/dealdirect/backend/models"
	"github.com/dcode-github/dealdirect/backend/services"
	"github.com/dcode-github/dealdirect/backend/store/memstore"
	"github.com/dcode-github/dealdirect/backend/utils"
)

func newAuth(t *testing.T) *services.AuthService {
	t.Helper()
	tokens, err := utils.NewTokenManager("test-secret", time.Hour)
	require.NoError(t, err)
	return services.NewAuthService(memstore.New(), tokens)
}

func TestRegisterAndLogin(t *testing.T) {
	ctx := context.Background()
	auth := newAuth(t)

	admin, err := auth.Register(ctx, services.Registration{Name: "Asha", Email: " Asha@Example.com ", Password: "secret1"})
	require.NoError(t, err)
	assert.Equal(t, "asha@example.com", admin.Email)
	assert.Equal(t, models.RoleAdmin, admin.Role)
	assert.NotEqual(t, "secret1", admin.Password)

	_, err = auth.Register(ctx, services.Registration{Name: "Asha", Email: "asha@example.com", Password: "secret1"})
	assert.ErrorIs(t, err, models.ErrDuplicate)

	token, logged, err := auth.Login(ctx, services.Credentials{Email: "ASHA@example.com", Password: "secret1"})
	require.NoError(t, err)
	assert.NotEmpty(t, token)
	assert.Equal(t, admin.ID, logged.ID)

	current, err := auth.Authenticate(ctx, token)
	require.NoError(t, err)
	assert.Equal(t, admin.ID, current.ID)

	profile, err := auth.Profile(ctx, admin.ID)
	require.NoError(t, err)
	assert.Equal(t, "Asha", profile.Name)
}

func TestRegisterValidation(t *testing.T) {
	ctx := context.Background()
	auth := newAuth(t)

	tests := []struct {
		name string
		reg  services.Registration
	}{
		{"missing email", services.Registration{Name: "A", Password: "secret1"}},
		{"bad email", services.Registration{Name: "A", Email: "nope", Password: "secret1"}},
		{"missing name", services.Registration{Email: "a@example.com", Password: "secret1"}},
		{"short password", services.Registration{Name: "A", Email: "a@example.com", Password: "123"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := auth.Register(ctx, tt.reg)
			assert.ErrorIs(t, err, models.ErrValidation)
		})
	}
}

func TestLoginFailures(t *testing.T) {
	ctx := context.Background()
	auth := newAuth(t)
	_, err := auth.Register(ctx, services.Registration{Name: "Asha", Email: "asha@example.com", Password: "secret1"})
	require.NoError(t, err)

	_, _, err = auth.Login(ctx, services.Credentials{Email: "asha@example.com", Password: "wrong"})
	assert.ErrorIs(t, err, models.ErrUnauthorized)

	_, _, err = auth.Login(ctx, services.Credentials{Email: "ghost@example.com", Password: "secret1"})
	assert.ErrorIs(t, err, models.ErrUnauthorized)

	_, err = auth.Authenticate(ctx, "garbage")
	assert.ErrorIs(t, err, models.ErrUnauthorized)
}

func TestAuthenticateRejectsUnknownAccount(t *testing.T) {
	ctx := context.Background()
	tokens, err := utils.NewTokenManager("test-secret", time.Hour)
	require.NoError(t, err)
	auth := services.NewAuthService(memstore.New(), tokens)

	token, err := tokens.GenerateJWT(missingID().Hex(), models.RoleAdmin)
	require.NoError(t, err)
	_, err = auth.Authenticate(ctx, token)
	assert.ErrorIs(t, err, models.ErrUnauthorized)

	token, err = tokens.GenerateJWT("not-an-object-id", models.RoleAdmin)
	require.NoError(t, err)
	_, err = auth.Authenticate(ctx, token)
	assert.ErrorIs(t, err, models.ErrUnauthorized)
}

func TestSeedAccount(t *testing.T) {
	ctx := context.Background()
	auth := newAuth(t)

	agent, err := auth.SeedAccount(ctx, "", "agent@example.com", "agentpass", models.RoleAgent)
	require.NoError(t, err)
	assert.Equal(t, models.RoleAgent, agent.Role)
	assert.Equal(t, models.RoleAgent, agent.Name)

	again, err := auth.SeedAccount(ctx, "Field Agent", "agent@example.com", "rotated", models.RoleAgent)
	require.NoError(t, err)
	assert.Equal(t, agent.ID, again.ID)

	_, _, err = auth.Login(ctx, services.Credentials{Email: "agent@example.com", Password: "agentpass"})
	assert.ErrorIs(t, err, models.ErrUnauthorized, "reseeding rotates the password")

	token, logged, err := auth.Login(ctx, services.Credentials{Email: "agent@example.com", Password: "rotated"})
	require.NoError(t, err)
	assert.Equal(t, "Field Agent", logged.Name)

	current, err := auth.Authenticate(ctx, token)
	require.NoError(t, err)
	assert.Equal(t, models.RoleAgent, current.Role)

	_, err = auth.SeedAccount(ctx, "x", "x@example.com", "pw", "root")
	assert.ErrorIs(t, err, models.ErrValidation)
}
