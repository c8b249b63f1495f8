package session

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/brightcart/storefront-backend/internal/authz"
)

const keyPrefix = "session:"

// Record is the server-side session payload stored in redis.
type Record struct {
	UserID uint   `json:"user_id"`
	Email  string `json:"email"`
	Role   string `json:"role"`
}

// ParsedRole returns the record's role, empty (and failing every authz
// check) if the stored value is not a defined role.
func (r Record) ParsedRole() authz.Role {
	return authz.ParseRole(r.Role)
}

// Manager stores opaque session IDs in redis with a fixed TTL. A lookup
// miss is not an error: Resolve returns (nil, nil) and the caller treats
// the request as unauthenticated.
type Manager struct {
	client redis.UniversalClient
	ttl    time.Duration
}

func NewManager(client redis.UniversalClient, ttl time.Duration) *Manager {
	return &Manager{client: client, ttl: ttl}
}

// Create stores a new session and returns its ID.
func (m *Manager) Create(ctx context.Context, rec Record) (string, error) {
	payload, err := json.Marshal(rec)
	if err != nil {
		return "", err
	}
	id := uuid.NewString()
	if err := m.client.Set(ctx, keyPrefix+id, payload, m.ttl).Err(); err != nil {
		return "", err
	}
	return id, nil
}

// Resolve loads the session record for id. Expired or unknown IDs yield
// (nil, nil); only backend failures surface as errors.
func (m *Manager) Resolve(ctx context.Context, id string) (*Record, error) {
	if id == "" {
		return nil, nil
	}
	payload, err := m.client.Get(ctx, keyPrefix+id).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, err
	}
	var rec Record
	if err := json.Unmarshal(payload, &rec); err != nil {
		// A corrupt payload is treated as no session rather than a 500.
		return nil, nil
	}
	return &rec, nil
}

// Destroy removes the session; unknown IDs are a no-op.
func (m *Manager) Destroy(ctx context.Context, id string) error {
	if id == "" {
		return nil
	}
	return m.client.Del(ctx, keyPrefix+id).Err()
}
