//go:build !integration

package middleware

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"stylShop/business/personalize"
	"stylShop/pkg/utils"

	"github.com/labstack/echo/v4"
)

const testSecret = "test-secret"

func bearer(t *testing.T, userID, role string) string {
	t.Helper()
	tok, err := utils.GenerateJWT(userID, role, testSecret, time.Hour)
	if err != nil {
		t.Fatalf("GenerateJWT: %v", err)
	}
	return "Bearer " + tok
}

func TestAuthMiddleware(t *testing.T) {
	tests := []struct {
		name       string
		header     string
		wantStatus int
		wantUser   uint
	}{
		{name: "missing header", wantStatus: http.StatusUnauthorized},
		{name: "wrong scheme", header: "Basic abc", wantStatus: http.StatusUnauthorized},
		{name: "bad token", header: "Bearer nope", wantStatus: http.StatusUnauthorized},
		{name: "non numeric user", header: bearer(t, "bob", "USER"), wantStatus: http.StatusForbidden},
		{name: "ok", header: bearer(t, "42", "USER"), wantStatus: http.StatusOK, wantUser: 42},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := echo.New()
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			rec := httptest.NewRecorder()
			c := e.NewContext(req, rec)

			var gotUser uint
			h := AuthMiddleware(testSecret)(func(c echo.Context) error {
				gotUser = c.Get("user_id").(uint)
				return c.NoContent(http.StatusOK)
			})
			if err := h(c); err != nil {
				t.Fatalf("handler: %v", err)
			}

			if rec.Code != tt.wantStatus {
				t.Errorf("status = %d, want %d", rec.Code, tt.wantStatus)
			}
			if gotUser != tt.wantUser {
				t.Errorf("user_id = %d, want %d", gotUser, tt.wantUser)
			}
		})
	}
}

func TestAdminOnly(t *testing.T) {
	for role, want := range map[string]int{"admin": http.StatusOK, "USER": http.StatusForbidden} {
		e := echo.New()
		rec := httptest.NewRecorder()
		c := e.NewContext(httptest.NewRequest(http.MethodGet, "/", nil), rec)
		c.Set("role", role)

		h := AdminOnly()(func(c echo.Context) error { return c.NoContent(http.StatusOK) })
		if err := h(c); err != nil {
			t.Fatalf("handler: %v", err)
		}
		if rec.Code != want {
			t.Errorf("role %s: status = %d, want %d", role, rec.Code, want)
		}
	}
}

func TestRequestID(t *testing.T) {
	e := echo.New()

	var traceID string
	h := RequestID()(func(c echo.Context) error {
		traceID = personalize.TraceIDFromContext(c.Request().Context())
		return c.NoContent(http.StatusOK)
	})

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	if err := h(e.NewContext(req, rec)); err != nil {
		t.Fatal(err)
	}
	if traceID == "" || rec.Header().Get(HeaderRequestID) != traceID {
		t.Errorf("minted id %q, header %q", traceID, rec.Header().Get(HeaderRequestID))
	}

	req = httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(HeaderRequestID, "abc-123")
	rec = httptest.NewRecorder()
	if err := h(e.NewContext(req, rec)); err != nil {
		t.Fatal(err)
	}
	if traceID != "abc-123" {
		t.Errorf("trace id = %q, want abc-123", traceID)
	}
}

func TestErrorHandler(t *testing.T) {
	e := echo.New()
	rec := httptest.NewRecorder()
	c := e.NewContext(httptest.NewRequest(http.MethodGet, "/", nil), rec)

	ErrorHandler(echo.NewHTTPError(http.StatusNotFound, "no such route"), c)

	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d", rec.Code)
	}
	var body struct {
		Error struct {
			Code    string `json:"code"`
			Message string `json:"message"`
		} `json:"error"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body.Error.Code != "NOT_FOUND" || body.Error.Message != "no such route" {
		t.Errorf("body = %+v", body)
	}
}
