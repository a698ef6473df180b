package challenge

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/yathin7639/Eco-Move/internal/blob"

	"github.com/alicebob/miniredis/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
)

func newTestService(t *testing.T) *Service {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })
	return NewService(blob.NewStore(rdb))
}

func TestSeedCatalogue(t *testing.T) {
	svc := newTestService(t)
	list, err := svc.List(context.Background())
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(list) != 2 {
		t.Fatalf("expected 2 seeded challenges, got %d", len(list))
	}
	byTitle := map[string]Challenge{}
	for _, c := range list {
		byTitle[c.Title] = c
	}
	if c := byTitle["Morning Walker"]; c.Type != TypeWalk || c.RewardAmount != 50 {
		t.Fatalf("bad Morning Walker seed: %+v", c)
	}
	if c := byTitle["Metro Master"]; c.Type != TypeMetro || c.RewardAmount != 100 {
		t.Fatalf("bad Metro Master seed: %+v", c)
	}
}

func TestCreateValidates(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	cases := []Challenge{
		{Title: "", Type: TypeWalk, Target: 3, RewardAmount: 50},
		{Title: "No Reward", Type: TypeWalk, Target: 3, RewardAmount: 0},
		{Title: "Bad Type", Type: "SWIM", Target: 3, RewardAmount: 50},
		{Title: "No Target", Type: TypeCycle, RewardAmount: 50},
	}
	for _, input := range cases {
		if _, err := svc.Create(ctx, input); !errors.Is(err, ErrValidation) {
			t.Fatalf("expected validation error for %+v, got %v", input, err)
		}
	}

	created, err := svc.Create(ctx, Challenge{
		Title: "Weekend Cyclist", Type: TypeCycle, Target: 20, RewardAmount: 150, Active: true,
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if created.ID == "" {
		t.Fatalf("expected assigned id")
	}

	list, _ := svc.List(ctx)
	if len(list) != 3 {
		t.Fatalf("create should persist alongside seeds, got %d", len(list))
	}
}

func TestUpdateAndDelete(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	updated, err := svc.Update(ctx, "seed-morning-walker", Challenge{
		Title: "Morning Walker", Type: TypeWalk, Target: 5, RewardAmount: 75, Active: false,
	})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if updated.RewardAmount != 75 || updated.Active {
		t.Fatalf("update not applied: %+v", updated)
	}

	active, err := svc.Active(ctx)
	if err != nil {
		t.Fatalf("active: %v", err)
	}
	if len(active) != 1 || active[0].ID != "seed-metro-master" {
		t.Fatalf("deactivated challenge leaked into active list: %+v", active)
	}

	if _, err := svc.Update(ctx, "missing", Challenge{
		Title: "X", Type: TypeWalk, Target: 1, RewardAmount: 10,
	}); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}

	if err := svc.Delete(ctx, "seed-metro-master"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if err := svc.Delete(ctx, "seed-metro-master"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("double delete should be not found, got %v", err)
	}

	list, _ := svc.List(ctx)
	if len(list) != 1 {
		t.Fatalf("expected 1 remaining challenge, got %d", len(list))
	}
}

func TestAdminRoutesGated(t *testing.T) {
	svc := newTestService(t)
	app := fiber.New()

	passAuth := func(c *fiber.Ctx) error {
		c.Locals("user_id", "user-1")
		return c.Next()
	}
	denyAdmin := func(c *fiber.Ctx) error {
		return fiber.NewError(fiber.StatusForbidden, "admin only")
	}
	RegisterRoutes(app.Group("/challenges"), svc, passAuth, denyAdmin)

	req := httptest.NewRequest(http.MethodGet, "/challenges/", nil)
	resp, err := app.Test(req)
	if err != nil || resp.StatusCode != http.StatusOK {
		t.Fatalf("rider list: %v status %d", err, resp.StatusCode)
	}

	body, _ := json.Marshal(Challenge{Title: "X", Type: TypeWalk, Target: 1, RewardAmount: 10})
	req = httptest.NewRequest(http.MethodPost, "/challenges/admin/", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	resp, _ = app.Test(req)
	if resp.StatusCode != http.StatusForbidden {
		t.Fatalf("admin create should be gated, got %d", resp.StatusCode)
	}
}

func TestAdminCreateHandler(t *testing.T) {
	svc := newTestService(t)
	app := fiber.New()
	pass := func(c *fiber.Ctx) error { return c.Next() }
	RegisterRoutes(app.Group("/challenges"), svc, pass, pass)

	body, _ := json.Marshal(Challenge{
		Title: "Carpool Week", Type: TypeCarpool, Target: 3, RewardAmount: 120, Active: true,
	})
	req := httptest.NewRequest(http.MethodPost, "/challenges/admin/", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req)
	if err != nil || resp.StatusCode != http.StatusCreated {
		t.Fatalf("create: %v status %d", err, resp.StatusCode)
	}

	body, _ = json.Marshal(Challenge{Title: "Bad", Type: TypeWalk, Target: 1, RewardAmount: -5})
	req = httptest.NewRequest(http.MethodPost, "/challenges/admin/", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	resp, _ = app.Test(req)
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("invalid reward should 400, got %d", resp.StatusCode)
	}
}
