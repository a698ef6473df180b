package trip

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
)

func testApp(m *Manager) *fiber.App {
	app := fiber.New()
	RegisterRoutes(app.Group("/trips"), m, func(c *fiber.Ctx) error {
		c.Locals("user_id", "user-1")
		return c.Next()
	})
	return app
}

func postJSON(t *testing.T, app *fiber.App, path string, body any) (*http.Response, Snapshot) {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode: %v", err)
		}
	}
	req := httptest.NewRequest(http.MethodPost, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("request %s: %v", path, err)
	}
	var snap Snapshot
	_ = json.NewDecoder(resp.Body).Decode(&snap)
	return resp, snap
}

func TestSessionLifecycleOverHTTP(t *testing.T) {
	m := newTestManager(&fakeVerifier{}, &fakeRecorder{})
	app := testApp(m)

	resp, snap := postJSON(t, app, "/trips/sessions", fiber.Map{"mode": "WALK"})
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("create status %d", resp.StatusCode)
	}
	if snap.State != StateTracking {
		t.Fatalf("expected tracking, got %s", snap.State)
	}

	resp, mid := postJSON(t, app, "/trips/sessions/"+snap.ID+"/samples", Sample{SpeedKmh: 7.2, Lat: 28.6, Lng: 77.2, HasFix: true})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("sample status %d", resp.StatusCode)
	}
	if mid.DistanceKm == 0 {
		t.Fatalf("expected distance after sample")
	}

	resp, done := postJSON(t, app, "/trips/sessions/"+snap.ID+"/stop", nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("stop status %d", resp.StatusCode)
	}
	if done.State != StateSummary || done.Record == nil {
		t.Fatalf("expected summary with record")
	}

	req := httptest.NewRequest(http.MethodGet, "/trips/sessions/"+snap.ID, nil)
	getResp, err := app.Test(req)
	if err != nil || getResp.StatusCode != http.StatusOK {
		t.Fatalf("get session: %v status %d", err, getResp.StatusCode)
	}
}

func TestCarpoolFlowOverHTTP(t *testing.T) {
	m := newTestManager(&fakeVerifier{}, &fakeRecorder{})
	app := testApp(m)

	_, snap := postJSON(t, app, "/trips/sessions", fiber.Map{"mode": "CARPOOL"})
	if snap.State != StateCarpoolLobby || snap.CarpoolCode == "" {
		t.Fatalf("expected lobby with code, got %+v", snap)
	}

	resp, _ := postJSON(t, app, "/trips/sessions/"+snap.ID+"/launch", nil)
	if resp.StatusCode != http.StatusConflict {
		t.Fatalf("solo launch should conflict, got %d", resp.StatusCode)
	}

	resp, lobby := postJSON(t, app, "/trips/sessions/"+snap.ID+"/riders", fiber.Map{"name": "Priya"})
	if resp.StatusCode != http.StatusCreated || len(lobby.Riders) != 2 {
		t.Fatalf("join rider failed: %d %v", resp.StatusCode, lobby.Riders)
	}

	resp, live := postJSON(t, app, "/trips/sessions/"+snap.ID+"/launch", nil)
	if resp.StatusCode != http.StatusOK || live.State != StateTracking {
		t.Fatalf("launch failed: %d %s", resp.StatusCode, live.State)
	}
}

func TestCaptureValidationOverHTTP(t *testing.T) {
	m := newTestManager(&fakeVerifier{}, &fakeRecorder{})
	app := testApp(m)

	_, snap := postJSON(t, app, "/trips/sessions", fiber.Map{"mode": "METRO_BUS"})

	resp, _ := postJSON(t, app, "/trips/sessions/"+snap.ID+"/capture", fiber.Map{})
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("missing image should 400, got %d", resp.StatusCode)
	}

	resp, _ = postJSON(t, app, "/trips/sessions/"+snap.ID+"/capture", fiber.Map{"image": "ZGF0YQ=="})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("capture status %d", resp.StatusCode)
	}
}

func TestUnknownModeAndSession(t *testing.T) {
	m := newTestManager(&fakeVerifier{}, &fakeRecorder{})
	app := testApp(m)

	resp, _ := postJSON(t, app, "/trips/sessions", fiber.Map{"mode": "JETPACK"})
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("bad mode should 400, got %d", resp.StatusCode)
	}

	resp, _ = postJSON(t, app, "/trips/sessions/nope/stop", nil)
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("unknown session should 404, got %d", resp.StatusCode)
	}
}

func TestPlausibilityEndpoint(t *testing.T) {
	m := newTestManager(&fakeVerifier{}, &fakeRecorder{})
	app := testApp(m)

	var buf bytes.Buffer
	_ = json.NewEncoder(&buf).Encode(fiber.Map{"mode": "WALK", "distance_km": 10.0, "duration_sec": 300})
	req := httptest.NewRequest(http.MethodPost, "/trips/plausibility", &buf)
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req)
	if err != nil || resp.StatusCode != http.StatusOK {
		t.Fatalf("plausibility: %v status %d", err, resp.StatusCode)
	}
	var out struct {
		Possible bool `json:"possible"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if !out.Possible {
		t.Fatalf("fake verifier always says plausible")
	}
}

func TestSessionOwnership(t *testing.T) {
	m := newTestManager(&fakeVerifier{}, &fakeRecorder{})
	snap, _ := m.Start("someone-else", ModeWalk, false)

	app := testApp(m)
	resp, _ := postJSON(t, app, "/trips/sessions/"+snap.ID+"/stop", nil)
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("foreign session must look like 404, got %d", resp.StatusCode)
	}
}
