package auth

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
)

func postJSON(t *testing.T, app *fiber.App, path string, payload any) *http.Response {
	t.Helper()
	body, _ := json.Marshal(payload)
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("request %s: %v", path, err)
	}
	return resp
}

func TestOTPLoginFlow(t *testing.T) {
	svc, _ := newTestService(t)
	app := fiber.New()
	RegisterRoutes(app.Group("/auth"), svc)

	resp := postJSON(t, app, "/auth/otp/request", fiber.Map{"phone": "9876543210"})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("request otp status %d", resp.StatusCode)
	}
	var otp struct {
		Code string `json:"code"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&otp); err != nil {
		t.Fatalf("decode: %v", err)
	}

	resp = postJSON(t, app, "/auth/otp/verify", fiber.Map{
		"phone": "9876543210", "code": otp.Code, "name": "Aryan Gupta",
	})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("verify status %d", resp.StatusCode)
	}
	var token TokenResponse
	if err := json.NewDecoder(resp.Body).Decode(&token); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if token.Token == "" || token.Role != RoleUser {
		t.Fatalf("unexpected token response: %+v", token)
	}
}

func TestOTPRequestBadPhone(t *testing.T) {
	svc, _ := newTestService(t)
	app := fiber.New()
	RegisterRoutes(app.Group("/auth"), svc)

	resp := postJSON(t, app, "/auth/otp/request", fiber.Map{"phone": "12345"})
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("short phone should 400, got %d", resp.StatusCode)
	}
	resp = postJSON(t, app, "/auth/otp/request", fiber.Map{})
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("missing phone should 400, got %d", resp.StatusCode)
	}
}

func TestOTPVerifyWrongCode(t *testing.T) {
	svc, _ := newTestService(t)
	app := fiber.New()
	RegisterRoutes(app.Group("/auth"), svc)

	resp := postJSON(t, app, "/auth/otp/verify", fiber.Map{"phone": "9876543210", "code": "9999"})
	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("unknown code should 401, got %d", resp.StatusCode)
	}
}

func TestAdminLoginHandler(t *testing.T) {
	svc, _ := newTestService(t)
	app := fiber.New()
	RegisterRoutes(app.Group("/auth"), svc)

	resp := postJSON(t, app, "/auth/admin/login", fiber.Map{
		"email": "ops@example.com", "password": "hunter2",
	})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("admin login status %d", resp.StatusCode)
	}

	resp = postJSON(t, app, "/auth/admin/login", fiber.Map{
		"email": "ops@example.com", "password": "nope",
	})
	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("bad password should 401, got %d", resp.StatusCode)
	}
}
