package middleware

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"storevision/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-secret"

func init() { gin.SetMode(gin.TestMode) }

func firmar(t *testing.T, claims JWTClaims, secret string) string {
	t.Helper()
	tok, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	require.NoError(t, err)
	return tok
}

func claimsValidos(rol, tipo string) JWTClaims {
	return JWTClaims{
		UserID: uuid.NewString(),
		Email:  "cajero@storevision.com",
		Rol:    rol,
		Tipo:   tipo,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}
}

func protegido() *gin.Engine {
	r := gin.New()
	r.GET("/solo-admin", JWTAuth(testSecret), RequireRole("administradora"), func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"usuario": GetClaims(c).UsuarioID().String()})
	})
	return r
}

func get(r http.Handler, path, token string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestJWTAuth(t *testing.T) {
	r := protegido()

	expirado := claimsValidos("administradora", "access")
	expirado.ExpiresAt = jwt.NewNumericDate(time.Now().Add(-time.Minute))
	sinUsuario := claimsValidos("administradora", "access")
	sinUsuario.UserID = "no-uuid"

	casos := []struct {
		nombre string
		token  string
		status int
	}{
		{"sin token", "", http.StatusUnauthorized},
		{"firma ajena", firmar(t, claimsValidos("administradora", "access"), "otro"), http.StatusUnauthorized},
		{"expirado", firmar(t, expirado, testSecret), http.StatusUnauthorized},
		{"refresh token", firmar(t, claimsValidos("administradora", "refresh"), testSecret), http.StatusUnauthorized},
		{"usuario inválido", firmar(t, sinUsuario, testSecret), http.StatusUnauthorized},
		{"rol insuficiente", firmar(t, claimsValidos("cajero", "access"), testSecret), http.StatusForbidden},
		{"ok", firmar(t, claimsValidos("administradora", "access"), testSecret), http.StatusOK},
	}
	for _, tc := range casos {
		t.Run(tc.nombre, func(t *testing.T) {
			w := get(r, "/solo-admin", tc.token)
			assert.Equal(t, tc.status, w.Code, w.Body.String())
		})
	}
}

func TestRequestID(t *testing.T) {
	r := gin.New()
	r.Use(RequestID())
	r.GET("/", func(c *gin.Context) { c.String(http.StatusOK, c.GetString(RequestIDKey)) })

	w := get(r, "/", "")
	generado := w.Header().Get(RequestIDHeader)
	require.NotEmpty(t, generado)
	assert.Equal(t, generado, w.Body.String())

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(RequestIDHeader, "abc-123")
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, "abc-123", w.Header().Get(RequestIDHeader))
}

func TestRateLimiter(t *testing.T) {
	now := time.Date(2026, 10, 15, 9, 0, 0, 0, time.UTC)
	l := NewRateLimiter(2, time.Minute)
	l.now = func() time.Time { return now }

	ok, _ := l.Allow("1.1.1.1")
	assert.True(t, ok)
	ok, _ = l.Allow("1.1.1.1")
	assert.True(t, ok)
	ok, ends := l.Allow("1.1.1.1")
	assert.False(t, ok)
	assert.Equal(t, now.Add(time.Minute), ends)

	ok, _ = l.Allow("2.2.2.2")
	assert.True(t, ok, "limits are per client")

	now = now.Add(61 * time.Second)
	assert.Equal(t, 2, l.Purge())
	ok, _ = l.Allow("1.1.1.1")
	assert.True(t, ok, "a new window starts after expiry")
}

func TestRateLimiterMiddleware(t *testing.T) {
	l := NewRateLimiter(1, time.Minute)
	r := gin.New()
	r.POST("/login", l.Middleware("Demasiados intentos"), func(c *gin.Context) { c.Status(http.StatusOK) })

	do := func() *httptest.ResponseRecorder {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/login", nil))
		return w
	}
	assert.Equal(t, http.StatusOK, do().Code)
	w := do()
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.NotEmpty(t, w.Header().Get("Retry-After"))
	assert.Contains(t, w.Body.String(), "Demasiados intentos")
}

func TestRecovery(t *testing.T) {
	r := gin.New()
	r.Use(RequestID(), Recovery())
	r.GET("/panic", func(*gin.Context) { panic("boom") })

	w := get(r, "/panic", "")
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.NotContains(t, w.Body.String(), "boom")
}

func TestCORS(t *testing.T) {
	r := gin.New()
	r.Use(CORS(true, "https://caja.storevision.com"))
	r.GET("/", func(c *gin.Context) { c.Status(http.StatusOK) })

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Origin", "https://caja.storevision.com")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, "https://caja.storevision.com", w.Header().Get("Access-Control-Allow-Origin"))

	req = httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Origin", "https://evil.example")
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Empty(t, w.Header().Get("Access-Control-Allow-Origin"))

	req = httptest.NewRequest(http.MethodOptions, "/", nil)
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusNoContent, w.Code)
}

func TestErrorHandler(t *testing.T) {
	r := gin.New()
	r.Use(ErrorHandler())
	r.GET("/dominio", func(c *gin.Context) { _ = c.Error(service.ErrVentaNoEncontrada) })
	r.GET("/interno", func(c *gin.Context) { _ = c.Error(errors.New("pq: connection refused")) })
	r.GET("/escrito", func(c *gin.Context) {
		_ = c.Error(errors.New("ya respondido"))
		c.String(http.StatusAccepted, "ok")
	})

	w := get(r, "/dominio", "")
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Contains(t, w.Body.String(), "venta no encontrada")

	w = get(r, "/interno", "")
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.NotContains(t, w.Body.String(), "pq:")

	assert.Equal(t, http.StatusAccepted, get(r, "/escrito", "").Code)
}
