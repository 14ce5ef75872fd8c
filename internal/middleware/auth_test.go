package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-secret"

func signToken(t *testing.T, claims jwt.MapClaims, secret string) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(secret))
	require.NoError(t, err)
	return signed
}

func newProtectedApp(roles ...string) *fiber.App {
	app := fiber.New()
	app.Use(JWTProtected(testSecret))
	if len(roles) > 0 {
		app.Use(RequireRole(roles...))
	}
	app.Get("/whoami", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"id": UserID(c), "role": UserRole(c)})
	})
	return app
}

func TestJWTProtectedStoresClaims(t *testing.T) {
	app := newProtectedApp()
	token := signToken(t, jwt.MapClaims{"sub": "42", "role": "Teacher", "exp": time.Now().Add(time.Hour).Unix()}, testSecret)

	req := httptest.NewRequest(http.MethodGet, "/whoami", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	resp, err := app.Test(req)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	var body struct {
		ID   uint   `json:"id"`
		Role string `json:"role"`
	}
	decodeJSON(t, resp, &body)
	require.Equal(t, uint(42), body.ID)
	require.Equal(t, "teacher", body.Role)
}

func TestJWTProtectedRejectsBadTokens(t *testing.T) {
	app := newProtectedApp()
	expired := signToken(t, jwt.MapClaims{"sub": 1, "exp": time.Now().Add(-time.Hour).Unix()}, testSecret)
	foreign := signToken(t, jwt.MapClaims{"sub": 1}, "other-secret")

	cases := []struct {
		name   string
		header string
	}{
		{name: "missing", header: ""},
		{name: "wrong scheme", header: "Basic abc"},
		{name: "empty token", header: "Bearer "},
		{name: "expired", header: "Bearer " + expired},
		{name: "wrong secret", header: "Bearer " + foreign},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/whoami", nil)
			if tc.header != "" {
				req.Header.Set("Authorization", tc.header)
			}
			resp, err := app.Test(req)
			require.NoError(t, err)
			require.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
		})
	}
}

func TestRequireRoleAllowsAuthorizedRoles(t *testing.T) {
	app := newProtectedApp(RoleAdmin, RoleTeacher)
	token := signToken(t, jwt.MapClaims{"sub": 7, "roles": []interface{}{"admin"}}, testSecret)

	req := httptest.NewRequest(http.MethodGet, "/whoami", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	resp, err := app.Test(req)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
}

func TestRequireRoleRejectsUnauthorizedRoles(t *testing.T) {
	app := newProtectedApp(RoleAdmin, RoleTeacher)
	token := signToken(t, jwt.MapClaims{"sub": 7, "role": "student"}, testSecret)

	req := httptest.NewRequest(http.MethodGet, "/whoami", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	resp, err := app.Test(req)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusForbidden, resp.StatusCode)
}
