package middleware

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chachabrian/swiftparcel-backend/internal/errs"
	"github.com/chachabrian/swiftparcel-backend/internal/models"
	"github.com/chachabrian/swiftparcel-backend/internal/store"
	"github.com/chachabrian/swiftparcel-backend/pkg/utils"
)

func TestMain(m *testing.M) {
	gin.SetMode(gin.TestMode)
	os.Exit(m.Run())
}

// fakeUsers only answers FindUserByEmail; any other call panics.
type fakeUsers struct {
	store.Users
	byEmail map[string]*models.User
	err     error
	lookups int
}

func (f *fakeUsers) FindUserByEmail(_ context.Context, email string) (*models.User, error) {
	f.lookups++
	if f.err != nil {
		return nil, f.err
	}
	u, ok := f.byEmail[email]
	if !ok {
		return nil, store.ErrNotFound
	}
	return u, nil
}

func newEngine() *gin.Engine {
	r := gin.New()
	r.Use(RequestID(), ContextLogger(zerolog.Nop()), ErrorHandler())
	r.NoRoute(NoRoute())
	return r
}

func serve(r *gin.Engine, req *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func TestVerifyToken(t *testing.T) {
	tokens := utils.NewTokenManager("secret", 0)
	token, err := tokens.GenerateToken(map[string]any{"email": "ann@example.com"})
	require.NoError(t, err)

	r := newEngine()
	r.GET("/me", VerifyToken(tokens), func(c *gin.Context) {
		c.String(http.StatusOK, GetEmail(c)+"|"+utils.EmailFromClaims(GetClaims(c)))
	})

	tests := []struct {
		name   string
		header string
		query  string
		status int
	}{
		{name: "bearer header", header: "Bearer " + token, status: http.StatusOK},
		{name: "any scheme", header: "Token " + token, status: http.StatusOK},
		{name: "query ignored", query: "?token=" + token, status: http.StatusUnauthorized},
		{name: "missing", status: http.StatusUnauthorized},
		{name: "header without token", header: "Bearer", status: http.StatusUnauthorized},
		{name: "tampered", header: "Bearer " + token + "x", status: http.StatusUnauthorized},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/me"+tt.query, nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			rec := serve(r, req)
			assert.Equal(t, tt.status, rec.Code)
			if tt.status == http.StatusOK {
				assert.Equal(t, "ann@example.com|ann@example.com", rec.Body.String())
			} else {
				assert.JSONEq(t, `{"code":"UNAUTHORIZED","message":"unauthorized access","status":401}`, rec.Body.String())
			}
		})
	}
}

func TestVerifySocketTokenAcceptsQuery(t *testing.T) {
	tokens := utils.NewTokenManager("secret", 0)
	token, err := tokens.GenerateToken(map[string]any{"email": "ann@example.com"})
	require.NoError(t, err)

	r := newEngine()
	r.GET("/ws", VerifySocketToken(tokens), func(c *gin.Context) {
		c.String(http.StatusOK, GetEmail(c))
	})

	rec := serve(r, httptest.NewRequest(http.MethodGet, "/ws?token="+token, nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ann@example.com", rec.Body.String())

	req := httptest.NewRequest(http.MethodGet, "/ws?token="+token, nil)
	req.Header.Set("Authorization", "Bearer nope")
	assert.Equal(t, http.StatusUnauthorized, serve(r, req).Code)

	assert.Equal(t, http.StatusUnauthorized, serve(r, httptest.NewRequest(http.MethodGet, "/ws", nil)).Code)
}

func TestRequestLoggerOmitsQueryString(t *testing.T) {
	tokens := utils.NewTokenManager("secret", 0)
	token, err := tokens.GenerateToken(map[string]any{"email": "ann@example.com"})
	require.NoError(t, err)

	var buf bytes.Buffer
	r := gin.New()
	r.Use(RequestID(), ContextLogger(zerolog.New(&buf)), RequestLogger(), ErrorHandler())
	r.GET("/ws", VerifySocketToken(tokens), func(c *gin.Context) {
		c.Status(http.StatusOK)
	})

	rec := serve(r, httptest.NewRequest(http.MethodGet, "/ws?token="+token, nil))
	require.Equal(t, http.StatusOK, rec.Code)

	line := buf.String()
	assert.Contains(t, line, `"uri":"/ws"`)
	assert.Contains(t, line, `"email":"ann@example.com"`)
	assert.NotContains(t, line, token)
	assert.NotContains(t, line, "token=")
}

func withEmail(email string) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set(EmailKey, email)
		c.Next()
	}
}

func TestRequireRoleLooksUpOncePerRequest(t *testing.T) {
	users := &fakeUsers{byEmail: map[string]*models.User{
		"admin@example.com": {Email: "admin@example.com", Role: models.RoleAdmin},
		"bob@example.com":   {Email: "bob@example.com", Role: models.RoleUser},
	}}

	r := newEngine()
	r.GET("/admin/:who", func(c *gin.Context) {
		c.Set(EmailKey, c.Param("who"))
		c.Next()
	}, RequireRole(users, models.RoleAdmin), RequireRole(users, models.RoleAdmin), func(c *gin.Context) {
		u, err := CurrentUser(c, users)
		require.NoError(t, err)
		c.String(http.StatusOK, string(u.Role))
	})

	rec := serve(r, httptest.NewRequest(http.MethodGet, "/admin/admin@example.com", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "admin", rec.Body.String())
	assert.Equal(t, 1, users.lookups)

	rec = serve(r, httptest.NewRequest(http.MethodGet, "/admin/admin@example.com", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 2, users.lookups, "cache must not outlive the request")

	rec = serve(r, httptest.NewRequest(http.MethodGet, "/admin/bob@example.com", nil))
	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.JSONEq(t, `{"code":"FORBIDDEN","message":"forbidden access","status":403}`, rec.Body.String())

	rec = serve(r, httptest.NewRequest(http.MethodGet, "/admin/ghost@example.com", nil))
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestRequireRoleStoreFailure(t *testing.T) {
	users := &fakeUsers{err: errors.New("connection reset")}

	r := newEngine()
	r.GET("/x", withEmail("ann@example.com"), RequireRole(users, models.RoleAdmin), func(c *gin.Context) {
		c.Status(http.StatusOK)
	})

	rec := serve(r, httptest.NewRequest(http.MethodGet, "/x", nil))
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.JSONEq(t, `{"code":"INTERNAL_SERVER_ERROR","message":"Internal Server Error","status":500}`, rec.Body.String())
}

func TestRequireSelf(t *testing.T) {
	r := newEngine()
	r.GET("/parcel/:email", withEmail("ann@example.com"), RequireSelf("email"), func(c *gin.Context) {
		c.Status(http.StatusOK)
	})

	assert.Equal(t, http.StatusOK, serve(r, httptest.NewRequest(http.MethodGet, "/parcel/ann@example.com", nil)).Code)
	assert.Equal(t, http.StatusForbidden, serve(r, httptest.NewRequest(http.MethodGet, "/parcel/bob@example.com", nil)).Code)
}

func TestErrorHandler(t *testing.T) {
	r := newEngine()
	r.GET("/bad", func(c *gin.Context) {
		_ = c.Error(errs.NewBadRequestError("Invalid date format"))
	})
	r.GET("/boom", func(c *gin.Context) {
		_ = c.Error(errors.New("database exploded"))
	})
	r.GET("/written", func(c *gin.Context) {
		_ = c.Error(errors.New("late failure"))
		c.String(http.StatusOK, "already sent")
	})

	rec := serve(r, httptest.NewRequest(http.MethodGet, "/bad", nil))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.JSONEq(t, `{"code":"BAD_REQUEST","message":"Invalid date format","status":400}`, rec.Body.String())

	rec = serve(r, httptest.NewRequest(http.MethodGet, "/boom", nil))
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.NotContains(t, rec.Body.String(), "exploded")

	rec = serve(r, httptest.NewRequest(http.MethodGet, "/written", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "already sent", rec.Body.String())

	rec = serve(r, httptest.NewRequest(http.MethodGet, "/missing", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.JSONEq(t, `{"code":"NOT_FOUND","message":"Route not found","status":404}`, rec.Body.String())
}

func TestRequestID(t *testing.T) {
	r := newEngine()
	r.GET("/id", func(c *gin.Context) {
		c.String(http.StatusOK, GetRequestID(c))
	})

	rec := serve(r, httptest.NewRequest(http.MethodGet, "/id", nil))
	generated := rec.Header().Get(RequestIDHeader)
	assert.NotEmpty(t, generated)
	assert.Equal(t, generated, rec.Body.String())

	req := httptest.NewRequest(http.MethodGet, "/id", nil)
	req.Header.Set(RequestIDHeader, "abc-123")
	rec = serve(r, req)
	assert.Equal(t, "abc-123", rec.Header().Get(RequestIDHeader))
	assert.Equal(t, "abc-123", rec.Body.String())
}

func TestNewRelicDisabledPassesThrough(t *testing.T) {
	r := newEngine()
	r.GET("/ok", NewRelic(nil), RequestLogger(), func(c *gin.Context) {
		c.Status(http.StatusNoContent)
	})
	assert.Equal(t, http.StatusNoContent, serve(r, httptest.NewRequest(http.MethodGet, "/ok", nil)).Code)
}
