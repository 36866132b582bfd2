package server

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/FleetShare/FleetShare/internal/common/config"
	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
)

func newAuthTestEngine(cfg config.AuthConfig) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(JWTAuth(cfg, nil), RBAC(cfg))
	r.GET("/api/v1/admin-only", func(c *gin.Context) {
		ai, ok := AuthFromContext(c)
		if !ok {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "missing auth info"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"subject": ai.Subject})
	})
	r.GET("/api/v1/open", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	return r
}

func signTestToken(t *testing.T, cfg config.AuthConfig, roles []string) string {
	t.Helper()
	now := time.Now()
	claims := struct {
		Roles []string `json:"roles"`
		jwt.RegisteredClaims
	}{
		Roles: roles,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "u-1",
			Issuer:    cfg.Issuer,
			Audience:  jwt.ClaimStrings{cfg.Audience},
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now.Add(-time.Minute)),
			ExpiresAt: jwt.NewNumericDate(now.Add(time.Hour)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenStr, err := token.SignedString([]byte(cfg.JWTSecret))
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}
	return tokenStr
}

func TestJWTAuthAndRBAC(t *testing.T) {
	cfg := config.AuthConfig{
		Enabled:     true,
		JWTSecret:   "test-secret",
		Issuer:      "fleet-service",
		Audience:    "fleetshare",
		PublicPaths: []string{"/healthz"},
		RBAC: map[string][]string{
			"GET /api/v1/admin-only": {"ADMIN"},
		},
	}
	r := newAuthTestEngine(cfg)

	do := func(path, token string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodGet, path, nil)
		if token != "" {
			req.Header.Set("Authorization", "Bearer "+token)
		}
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		return w
	}

	// 免鉴权路径直接放行
	if w := do("/healthz", ""); w.Code != http.StatusOK {
		t.Fatalf("healthz: expected 200, got %d", w.Code)
	}

	// 无 token 被拒
	if w := do("/api/v1/open", ""); w.Code != http.StatusUnauthorized {
		t.Fatalf("no token: expected 401, got %d", w.Code)
	}

	adminToken := signTestToken(t, cfg, []string{"EMPLOYEE", "ADMIN"})
	if w := do("/api/v1/admin-only", adminToken); w.Code != http.StatusOK {
		t.Fatalf("admin token: expected 200, got %d body=%s", w.Code, w.Body.String())
	}

	// 只有普通角色时 RBAC 拒绝
	employeeToken := signTestToken(t, cfg, []string{"EMPLOYEE"})
	if w := do("/api/v1/admin-only", employeeToken); w.Code != http.StatusForbidden {
		t.Fatalf("employee token: expected 403, got %d", w.Code)
	}

	// 未配置 RBAC 的路由只鉴权不限权
	if w := do("/api/v1/open", employeeToken); w.Code != http.StatusOK {
		t.Fatalf("open route: expected 200, got %d", w.Code)
	}

	// 错误签名的 token 被拒
	badCfg := cfg
	badCfg.JWTSecret = "other-secret"
	badToken := signTestToken(t, badCfg, []string{"ADMIN"})
	if w := do("/api/v1/admin-only", badToken); w.Code != http.StatusUnauthorized {
		t.Fatalf("bad signature: expected 401, got %d", w.Code)
	}
}
