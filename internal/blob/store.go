package blob

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/redis/go-redis/v9"
)

// SchemaVersion is stamped into every stored envelope so future readers can
// migrate old payloads instead of guessing.
const SchemaVersion = 1

var ErrNoRedis = errors.New("blob: redis not configured")

// Store keeps whole JSON documents under string keys. Every write replaces
// the full value, so a failed write loses only that mutation and never
// corrupts previously stored state.
type Store struct {
	rdb *redis.Client
}

type envelope struct {
	SchemaVersion int             `json:"schema_version"`
	Data          json.RawMessage `json:"data"`
}

func NewStore(rdb *redis.Client) *Store {
	return &Store{rdb: rdb}
}

func StatsKey(userID string) string { return "ecomove:stats:" + userID }
func TripsKey(userID string) string { return "ecomove:trips:" + userID }
func ChallengesKey() string         { return "ecomove:challenges" }

// Get unmarshals the blob stored at key into out. The second return is false
// when the key does not exist.
func (s *Store) Get(ctx context.Context, key string, out any) (bool, error) {
	if s.rdb == nil {
		return false, ErrNoRedis
	}
	raw, err := s.rdb.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, err
	}

	var env envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return false, err
	}
	if err := json.Unmarshal(env.Data, out); err != nil {
		return false, err
	}
	return true, nil
}

// Set serializes val in full and replaces whatever was stored at key.
func (s *Store) Set(ctx context.Context, key string, val any) error {
	if s.rdb == nil {
		return ErrNoRedis
	}
	data, err := json.Marshal(val)
	if err != nil {
		return err
	}
	raw, err := json.Marshal(envelope{SchemaVersion: SchemaVersion, Data: data})
	if err != nil {
		return err
	}
	return s.rdb.Set(ctx, key, raw, 0).Err()
}
