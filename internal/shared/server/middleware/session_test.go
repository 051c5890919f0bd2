package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"

	"poster-backend/internal/shared/telemetry"
)

func TestSessionRequiresHeader(t *testing.T) {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(Session("POST /api/v1/sessions"))
	router.POST("/api/v1/sessions", func(c *gin.Context) {
		c.Status(http.StatusCreated)
	})
	router.GET("/api/v1/session", func(c *gin.Context) {
		c.String(http.StatusOK, SessionIDFromContext(c))
	})

	req := httptest.NewRequest(http.MethodPost, "/api/v1/sessions", nil)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if resp.Code != http.StatusCreated {
		t.Fatalf("expected open route to pass, got %d", resp.Code)
	}

	req = httptest.NewRequest(http.MethodGet, "/api/v1/session", nil)
	resp = httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if resp.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 without header, got %d", resp.Code)
	}

	req = httptest.NewRequest(http.MethodGet, "/api/v1/session", nil)
	req.Header.Set(SessionHeader, " abc ")
	resp = httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if resp.Code != http.StatusOK || resp.Body.String() != "abc" {
		t.Fatalf("expected session id abc, got %d %q", resp.Code, resp.Body.String())
	}
}

func TestSessionAllowsOptionsWithoutHeader(t *testing.T) {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(Session())
	router.OPTIONS("/api/v1/records", func(c *gin.Context) {
		c.Status(http.StatusNoContent)
	})

	req := httptest.NewRequest(http.MethodOptions, "/api/v1/records", nil)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	if resp.Code != http.StatusNoContent {
		t.Fatalf("expected 204, got %d", resp.Code)
	}
}

func TestRequestIDPropagatesToRequestContext(t *testing.T) {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(RequestID())
	router.GET("/id", func(c *gin.Context) {
		c.String(http.StatusOK, telemetry.RequestIDFromContext(c.Request.Context()))
	})

	req := httptest.NewRequest(http.MethodGet, "/id", nil)
	req.Header.Set("X-Request-Id", "req-42")
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	if resp.Body.String() != "req-42" {
		t.Fatalf("expected req-42, got %q", resp.Body.String())
	}
	if resp.Header().Get("X-Request-Id") != "req-42" {
		t.Fatalf("expected response header echo")
	}
}

func TestRecoveryReturns500(t *testing.T) {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(RequestID(), Recovery())
	router.GET("/boom", func(c *gin.Context) {
		panic("boom")
	})

	req := httptest.NewRequest(http.MethodGet, "/boom", nil)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	if resp.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", resp.Code)
	}
}

func TestSessionLeavesUnknownRoutesToNotFound(t *testing.T) {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(Session())
	router.GET("/api/v1/session", func(c *gin.Context) {
		c.Status(http.StatusOK)
	})

	req := httptest.NewRequest(http.MethodGet, "/api/v1/unknown", nil)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if resp.Code != http.StatusNotFound {
		t.Fatalf("expected 404 for unknown route, got %d", resp.Code)
	}
}
