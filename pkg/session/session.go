// Package session provides placement sessions for the HTTP API.
//
// A session holds the engine state of one growing layout: the placed boxes,
// their side availability, the current direction hint and the bounds. Clients
// create a session, then submit boxes one or a few at a time; each submission
// continues from the state the previous one left behind.
//
// # Storage
//
// The [Store] interface has four implementations:
//   - [MemoryStore]: in-process storage for development and tests
//   - [FileStore]: JSON files in a directory, for single-host deployments
//   - [RedisStore]: Redis-backed storage with native expiry
//   - [MongoStore]: MongoDB-backed storage with a TTL index
//
// Every store persists the JSON encoding of a session, so a session written
// by one backend reads back identically from any other.
//
// # Usage
//
//	store := session.NewMemoryStore()
//	mgr := session.NewManager(store, session.WithTTL(time.Hour))
//
//	sess, err := mgr.Create(ctx, session.CreateOptions{Hint: "right"})
//	res, err := mgr.Place(ctx, sess.ID, []io.Item{{Width: 10, Height: 10}}, session.PlaceOptions{})
package session

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/matzehuels/pinwheel/pkg/scene"
	"github.com/matzehuels/pinwheel/pkg/spiral"
)

// DefaultTTL is the default session lifetime. Every placement extends it.
const DefaultTTL = 24 * time.Hour

// Session is the persisted state of one placement session.
type Session struct {
	ID        string             `json:"id"`
	State     spiral.State       `json:"state"`
	Labels    []string           `json:"labels"`
	Skipped   []scene.SkippedBox `json:"skipped,omitempty"`
	Inputs    int                `json:"inputs"` // boxes submitted, placed or not
	Options   spiral.Options     `json:"options"`
	CreatedAt time.Time          `json:"created_at"`
	UpdatedAt time.Time          `json:"updated_at"`
	ExpiresAt time.Time          `json:"expires_at"`
}

// New creates an empty session with a random ID.
func New(opts spiral.Options, hint spiral.Direction, ttl time.Duration) *Session {
	now := time.Now().UTC()
	return &Session{
		ID:        uuid.NewString(),
		State:     spiral.NewState(hint),
		Labels:    []string{},
		Options:   opts,
		CreatedAt: now,
		UpdatedAt: now,
		ExpiresAt: now.Add(ttl),
	}
}

// IsExpired returns true if the session has expired.
func (s *Session) IsExpired() bool {
	return time.Now().After(s.ExpiresAt)
}

// Scene returns the session's layout as a scene.
func (s *Session) Scene() scene.Scene {
	sc := scene.FromState(s.State, s.Labels, s.Options)
	sc.Skipped = s.Skipped
	return sc
}

// touch marks the session as updated and extends its lifetime.
func (s *Session) touch(ttl time.Duration) {
	now := time.Now().UTC()
	s.UpdatedAt = now
	s.ExpiresAt = now.Add(ttl)
}

// Store is the interface for session storage backends.
type Store interface {
	// Get retrieves a session by ID.
	// Returns nil, nil if the session doesn't exist or has expired.
	Get(ctx context.Context, sessionID string) (*Session, error)

	// Set stores a session until its ExpiresAt.
	Set(ctx context.Context, session *Session) error

	// Delete removes a session. Deleting a missing session is not an error.
	Delete(ctx context.Context, sessionID string) error

	// Cleanup removes expired sessions (may be a no-op for backends with native expiry).
	Cleanup(ctx context.Context) error

	// Close releases resources held by the store.
	Close() error
}

// encode and decode define the persisted form shared by all stores.
func encode(s *Session) ([]byte, error) {
	data, err := json.Marshal(s)
	if err != nil {
		return nil, fmt.Errorf("marshal session: %w", err)
	}
	return data, nil
}

func decode(data []byte) (*Session, error) {
	var s Session
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("parse session: %w", err)
	}
	return &s, nil
}
