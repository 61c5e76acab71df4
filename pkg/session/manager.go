package session

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/charmbracelet/log"

	perrors "github.com/matzehuels/pinwheel/pkg/errors"
	pio "github.com/matzehuels/pinwheel/pkg/io"
	"github.com/matzehuels/pinwheel/pkg/observability"
	"github.com/matzehuels/pinwheel/pkg/scene"
	"github.com/matzehuels/pinwheel/pkg/spiral"
)

// MaxBoxesPerRequest bounds the number of boxes one Place call accepts.
const MaxBoxesPerRequest = 1000

// Event types published by the manager.
const (
	EventPlaced      = "placed"
	EventUnplaceable = "unplaceable"
	EventDeleted     = "deleted"
)

// Event describes a change to a session.
type Event struct {
	Type      string              `json:"type"`
	SessionID string              `json:"session_id"`
	Block     *scene.Block        `json:"block,omitempty"`
	Skipped   *scene.SkippedBox   `json:"skipped,omitempty"`
	Bounds    *spiral.BoundingBox `json:"bounds,omitempty"`
	Hint      *spiral.Direction   `json:"hint,omitempty"`
}

// Publisher receives session events, e.g. to stream them to clients.
type Publisher interface {
	Publish(sessionID string, ev Event)
}

// CreateOptions configures a new session. Zero values select the engine
// defaults.
type CreateOptions struct {
	Hint        string   `json:"hint,omitempty"`
	Tilt        *float64 `json:"tilt,omitempty"`
	AspectRatio float64  `json:"aspect_ratio,omitempty"`
	NoRound     bool     `json:"no_round,omitempty"`
}

// PlaceOptions configures a Place call.
type PlaceOptions struct {
	// StopOnUnplaceable aborts at the first box that cannot be placed. Boxes
	// placed before it are kept.
	StopOnUnplaceable bool `json:"stop_on_unplaceable,omitempty"`
}

// PlaceResult reports what a Place call did.
type PlaceResult struct {
	Placed  []scene.Block      `json:"placed"`
	Skipped []scene.SkippedBox `json:"skipped,omitempty"`
	Bounds  spiral.BoundingBox `json:"bounds"`
	Hint    spiral.Direction   `json:"hint"`
}

// Manager creates sessions and places boxes in them. Calls for the same
// session are serialized, so every placement sees the result of the previous
// one; calls for different sessions run concurrently.
type Manager struct {
	store     Store
	ttl       time.Duration
	logger    *log.Logger
	publisher Publisher
	locks     keyedMutex
}

// ManagerOption configures a Manager.
type ManagerOption func(*Manager)

// WithTTL sets the session lifetime.
func WithTTL(ttl time.Duration) ManagerOption {
	return func(m *Manager) {
		if ttl > 0 {
			m.ttl = ttl
		}
	}
}

// WithLogger sets the manager's logger.
func WithLogger(l *log.Logger) ManagerOption { return func(m *Manager) { m.logger = l } }

// WithPublisher sets the receiver of session events.
func WithPublisher(p Publisher) ManagerOption { return func(m *Manager) { m.publisher = p } }

// NewManager returns a manager backed by store.
func NewManager(store Store, opts ...ManagerOption) *Manager {
	m := &Manager{
		store:  store,
		ttl:    DefaultTTL,
		logger: log.NewWithOptions(io.Discard, log.Options{}),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Store returns the underlying store.
func (m *Manager) Store() Store { return m.store }

// Create starts a new, empty session.
func (m *Manager) Create(ctx context.Context, opts CreateOptions) (*Session, error) {
	hint := spiral.Right
	if opts.Hint != "" {
		d, err := spiral.ParseDirection(opts.Hint)
		if err != nil {
			return nil, err
		}
		hint = d
	}
	engineOpts := spiral.DefaultOptions()
	if opts.Tilt != nil {
		if *opts.Tilt < 0 || *opts.Tilt > 1 {
			return nil, perrors.New(perrors.ErrCodeInvalidInput, "tilt must be between 0 and 1, got %g", *opts.Tilt)
		}
		engineOpts.Tilt = *opts.Tilt
	}
	if opts.AspectRatio < 0 {
		return nil, perrors.New(perrors.ErrCodeInvalidInput, "aspect ratio must not be negative, got %g", opts.AspectRatio)
	}
	engineOpts.AspectRatio = opts.AspectRatio
	engineOpts.Round = !opts.NoRound

	sess := New(engineOpts, hint, m.ttl)
	if err := m.store.Set(ctx, sess); err != nil {
		return nil, fmt.Errorf("store session: %w", err)
	}
	m.logger.Info("created session", "id", sess.ID, "hint", hint)
	return sess, nil
}

// Get returns a session, or a SESSION_NOT_FOUND error.
func (m *Manager) Get(ctx context.Context, id string) (*Session, error) {
	if err := perrors.ValidateSessionID(id); err != nil {
		return nil, err
	}
	sess, err := m.store.Get(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("load session: %w", err)
	}
	if sess == nil {
		return nil, perrors.New(perrors.ErrCodeSessionNotFound, "session %s not found", id)
	}
	return sess, nil
}

// Delete removes a session.
func (m *Manager) Delete(ctx context.Context, id string) error {
	if _, err := m.Get(ctx, id); err != nil {
		return err
	}
	unlock := m.locks.lock(id)
	defer unlock()

	if err := m.store.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete session: %w", err)
	}
	m.publish(id, Event{Type: EventDeleted, SessionID: id})
	m.logger.Info("deleted session", "id", id)
	return nil
}

// Place places items in order in the session. Unplaceable boxes are skipped
// and reported, unless opts.StopOnUnplaceable is set. The session is saved
// once, after the last box.
func (m *Manager) Place(ctx context.Context, id string, items []pio.Item, opts PlaceOptions) (*PlaceResult, error) {
	if len(items) == 0 {
		return nil, perrors.New(perrors.ErrCodeInvalidInput, "no boxes given")
	}
	if len(items) > MaxBoxesPerRequest {
		return nil, perrors.New(perrors.ErrCodeInvalidInput, "too many boxes: %d (max %d)", len(items), MaxBoxesPerRequest)
	}
	for i, it := range items {
		if err := it.Validate(); err != nil {
			return nil, perrors.New(perrors.GetCode(err), "box %d: %s", i, perrors.UserMessage(err))
		}
	}
	if err := perrors.ValidateSessionID(id); err != nil {
		return nil, err
	}

	unlock := m.locks.lock(id)
	defer unlock()

	sess, err := m.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	packer := spiral.NewPacker(spiral.New(spiral.WithOptions(sess.Options)), sess.State.Hint)
	if err := packer.Restore(sess.State); err != nil {
		return nil, perrors.Wrap(perrors.ErrCodeInternal, err, "restore session %s", id)
	}

	hooks := observability.Placement()
	res := &PlaceResult{}
	var events []Event
	var stopErr error

	for _, it := range items {
		input := sess.Inputs
		sess.Inputs++

		start := time.Now()
		p, err := packer.Place(it.Size())
		if errors.Is(err, spiral.ErrUnplaceable) {
			hooks.OnUnplaceable(ctx, it.Width, it.Height)
			sb := scene.SkippedBox{Input: input, Label: it.Label, Width: it.Width, Height: it.Height}
			if opts.StopOnUnplaceable {
				sess.Inputs--
				stopErr = perrors.Wrap(perrors.ErrCodeUnplaceable, err, "box %d (%gx%g)", input, it.Width, it.Height)
				break
			}
			sess.Skipped = append(sess.Skipped, sb)
			res.Skipped = append(res.Skipped, sb)
			events = append(events, Event{Type: EventUnplaceable, SessionID: id, Skipped: &sb})
			continue
		}
		if err != nil {
			return nil, err
		}
		hooks.OnPlace(ctx, p.Index, p.Direction.String(), time.Since(start))

		sess.Labels = append(sess.Labels, it.Label)
		blk := scene.Block{
			Index:     p.Index,
			Label:     it.Label,
			X:         p.Box.Position.X,
			Y:         p.Box.Position.Y,
			Width:     p.Box.Size.X,
			Height:    p.Box.Size.Y,
			Parent:    p.Parent,
			Direction: p.Direction,
		}
		bounds, hint := p.Bounds, p.Direction
		res.Placed = append(res.Placed, blk)
		events = append(events, Event{Type: EventPlaced, SessionID: id, Block: &blk, Bounds: &bounds, Hint: &hint})
	}

	sess.State = packer.State()
	sess.touch(m.ttl)
	if err := m.store.Set(ctx, sess); err != nil {
		return nil, fmt.Errorf("store session: %w", err)
	}
	for _, ev := range events {
		m.publish(id, ev)
	}

	res.Bounds = sess.State.Bounds
	res.Hint = sess.State.Hint
	m.logger.Debug("placed boxes", "id", id, "placed", len(res.Placed), "skipped", len(res.Skipped), "total", sess.State.Len())

	if stopErr != nil {
		return res, stopErr
	}
	return res, nil
}

// Cleanup removes expired sessions from the store.
func (m *Manager) Cleanup(ctx context.Context) error {
	return m.store.Cleanup(ctx)
}

// RunCleanup calls Cleanup every interval until ctx is cancelled.
func (m *Manager) RunCleanup(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := m.Cleanup(ctx); err != nil {
				m.logger.Warn("session cleanup failed", "error", err)
			}
		}
	}
}

func (m *Manager) publish(id string, ev Event) {
	if m.publisher != nil {
		m.publisher.Publish(id, ev)
	}
}

// keyedMutex serializes work per key. Entries are dropped when unused.
type keyedMutex struct {
	mu    sync.Mutex
	locks map[string]*keyedLock
}

type keyedLock struct {
	mu   sync.Mutex
	refs int
}

func (k *keyedMutex) lock(key string) (unlock func()) {
	k.mu.Lock()
	if k.locks == nil {
		k.locks = make(map[string]*keyedLock)
	}
	l, ok := k.locks[key]
	if !ok {
		l = &keyedLock{}
		k.locks[key] = l
	}
	l.refs++
	k.mu.Unlock()

	l.mu.Lock()
	return func() {
		l.mu.Unlock()
		k.mu.Lock()
		l.refs--
		if l.refs == 0 {
			delete(k.locks, key)
		}
		k.mu.Unlock()
	}
}
