package blob

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

func newTestStore(t *testing.T) (*Store, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })
	return NewStore(rdb), mr
}

func TestSetGetRoundTrip(t *testing.T) {
	store, _ := newTestStore(t)

	type payload struct {
		Points int    `json:"points"`
		Name   string `json:"name"`
	}

	if err := store.Set(context.Background(), StatsKey("user-1"), payload{Points: 50, Name: "Aryan"}); err != nil {
		t.Fatalf("set: %v", err)
	}

	var out payload
	found, err := store.Get(context.Background(), StatsKey("user-1"), &out)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if !found {
		t.Fatalf("expected key to exist")
	}
	if out.Points != 50 || out.Name != "Aryan" {
		t.Fatalf("unexpected payload: %+v", out)
	}
}

func TestGetMissingKey(t *testing.T) {
	store, _ := newTestStore(t)

	var out map[string]any
	found, err := store.Get(context.Background(), "ecomove:missing", &out)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if found {
		t.Fatalf("expected missing key")
	}
}

func TestSetStampsSchemaVersion(t *testing.T) {
	store, mr := newTestStore(t)

	if err := store.Set(context.Background(), ChallengesKey(), []string{"a"}); err != nil {
		t.Fatalf("set: %v", err)
	}

	raw, err := mr.Get(ChallengesKey())
	if err != nil {
		t.Fatalf("raw get: %v", err)
	}
	var env struct {
		SchemaVersion int `json:"schema_version"`
	}
	if err := json.Unmarshal([]byte(raw), &env); err != nil {
		t.Fatalf("unmarshal envelope: %v", err)
	}
	if env.SchemaVersion != SchemaVersion {
		t.Fatalf("expected schema version %d, got %d", SchemaVersion, env.SchemaVersion)
	}
}

func TestNilClient(t *testing.T) {
	store := NewStore(nil)
	if err := store.Set(context.Background(), "k", 1); err == nil {
		t.Fatalf("expected error without redis")
	}
	var out int
	if _, err := store.Get(context.Background(), "k", &out); err == nil {
		t.Fatalf("expected error without redis")
	}
}

func TestGetCorruptEnvelope(t *testing.T) {
	store, mr := newTestStore(t)
	mr.Set("ecomove:bad", "{not json")

	var out map[string]any
	if _, err := store.Get(context.Background(), "ecomove:bad", &out); err == nil {
		t.Fatalf("expected unmarshal error")
	}
}
