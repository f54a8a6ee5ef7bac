package middleware_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	logtest "github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/dcode-github/dealdirect/backend/controllers"
	"github.com/dcode-github/dealdirect/backend/logging"
	"github.com/dcode-github/dealdirect/backend/middleware"
	"github.com/dcode-github/dealdirect/backend/models"
	"github.com/dcode-github/dealdirect/backend/services"
	"github.com/dcode-github/dealdirect/backend/store/memstore"
	"github.com/dcode-github/dealdirect/backend/utils"
)

func TestLoggerTraceID(t *testing.T) {
	known := uuid.New().String()

	tests := []struct {
		name   string
		header string
		keep   bool
	}{
		{"generated when absent", "", false},
		{"kept when valid", known, true},
		{"replaced when malformed", "not-a-uuid", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			logger, _ := logtest.NewNullLogger()
			var seen logrus.FieldLogger
			h := middleware.Logger(logger)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				seen = logging.FromContext(r.Context())
			}))

			req := httptest.NewRequest(http.MethodGet, "/api/properties/list", nil)
			if tt.header != "" {
				req.Header.Set(middleware.TraceHeader, tt.header)
			}
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, req)

			got := rec.Header().Get(middleware.TraceHeader)
			_, err := uuid.Parse(got)
			require.NoError(t, err)
			if tt.keep {
				assert.Equal(t, known, got)
			} else {
				assert.NotEqual(t, tt.header, got)
			}

			entry, ok := seen.(*logrus.Entry)
			require.True(t, ok)
			assert.Equal(t, got, entry.Data["trace_id"])
		})
	}
}

func TestLoggerRecordsStatus(t *testing.T) {
	logger, hook := logtest.NewNullLogger()
	h := middleware.Logger(logger)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
		_, _ = w.Write([]byte("short and stout"))
	}))

	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))

	entries := hook.AllEntries()
	require.Len(t, entries, 2)
	assert.Equal(t, "Request started", entries[0].Message)
	assert.Equal(t, "Request finished", entries[1].Message)
	assert.Equal(t, http.StatusTeapot, entries[1].Data["status_code"])
	assert.Equal(t, 15, entries[1].Data["bytes_written"])
}

type authFixture struct {
	store *memstore.Store
	auth  *services.AuthService
	admin string
	agent string
	h     http.Handler
}

func newAuthFixture(t *testing.T) *authFixture {
	t.Helper()
	ctx := context.Background()

	tokens, err := utils.NewTokenManager("test-secret", time.Hour)
	require.NoError(t, err)
	s := memstore.New()
	auth := services.NewAuthService(s, tokens)

	_, err = auth.Register(ctx, services.Registration{Name: "Asha", Email: "asha@example.com", Password: "secret123"})
	require.NoError(t, err)
	adminToken, _, err := auth.Login(ctx, services.Credentials{Email: "asha@example.com", Password: "secret123"})
	require.NoError(t, err)

	_, err = auth.SeedAccount(ctx, "Field Agent", "agent@example.com", "agentpass", models.RoleAgent)
	require.NoError(t, err)
	agentToken, _, err := auth.Login(ctx, services.Credentials{Email: "agent@example.com", Password: "agentpass"})
	require.NoError(t, err)

	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		account, ok := controllers.AccountFromContext(r.Context())
		if !ok {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		controllers.RespondWithJSON(w, http.StatusOK, account)
	})

	return &authFixture{
		store: s,
		auth:  auth,
		admin: adminToken,
		agent: agentToken,
		h:     middleware.AuthMiddleware(auth, middleware.AgentPaths)(next),
	}
}

func (f *authFixture) do(path, authorization string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, path, nil)
	if authorization != "" {
		req.Header.Set("Authorization", authorization)
	}
	rec := httptest.NewRecorder()
	f.h.ServeHTTP(rec, req)
	return rec
}

func TestAuthMiddleware(t *testing.T) {
	f := newAuthFixture(t)

	tests := []struct {
		name          string
		path          string
		authorization string
		status        int
		role          string
	}{
		{"missing header", "/api/properties/add", "", http.StatusUnauthorized, ""},
		{"wrong scheme", "/api/properties/add", "Basic " + f.admin, http.StatusUnauthorized, ""},
		{"no token", "/api/properties/add", "Bearer", http.StatusUnauthorized, ""},
		{"garbage token", "/api/properties/add", "Bearer abc.def.ghi", http.StatusUnauthorized, ""},
		{"admin creates", "/api/properties/add", "Bearer " + f.admin, http.StatusOK, models.RoleAdmin},
		{"admin deletes", "/api/properties/delete/1", "Bearer " + f.admin, http.StatusOK, models.RoleAdmin},
		{"lowercase scheme", "/api/categories/add-category", "bearer " + f.admin, http.StatusOK, models.RoleAdmin},
		{"agent creates", "/api/properties/add", "Bearer " + f.agent, http.StatusOK, models.RoleAgent},
		{"agent approves", "/api/properties/approve/1", "Bearer " + f.agent, http.StatusForbidden, ""},
		{"agent edits taxonomy", "/api/categories/add-category", "Bearer " + f.agent, http.StatusForbidden, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := f.do(tt.path, tt.authorization)
			require.Equal(t, tt.status, rec.Code, rec.Body.String())

			if tt.status != http.StatusOK {
				var body controllers.ErrorResponse
				require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
				assert.NotEmpty(t, body.Message)
				return
			}
			var account models.Admin
			require.NoError(t, json.NewDecoder(rec.Body).Decode(&account))
			assert.Equal(t, tt.role, account.Role)
			assert.Empty(t, account.Password)
		})
	}
}

func TestAuthMiddlewareRejectsUnknownAccount(t *testing.T) {
	f := newAuthFixture(t)
	tokens, err := utils.NewTokenManager("test-secret", time.Hour)
	require.NoError(t, err)

	ghost, err := tokens.GenerateJWT(primitive.NewObjectID().Hex(), models.RoleAdmin)
	require.NoError(t, err)

	rec := f.do("/api/properties/add", "Bearer "+ghost)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestAuthMiddlewareRejectsForeignKey(t *testing.T) {
	f := newAuthFixture(t)
	other, err := utils.NewTokenManager("another-secret", time.Hour)
	require.NoError(t, err)

	account, err := f.store.FindAdminByEmail(context.Background(), "asha@example.com")
	require.NoError(t, err)
	forged, err := other.GenerateJWT(account.ID.Hex(), models.RoleAdmin)
	require.NoError(t, err)

	rec := f.do("/api/properties/add", "Bearer "+forged)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}
