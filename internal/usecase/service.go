package usecase

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"svw.info/alchemy/internal/decay"
	"svw.info/alchemy/internal/domain"
	"svw.info/alchemy/internal/generator"
	"svw.info/alchemy/internal/match"
	"svw.info/alchemy/internal/ports"
	"svw.info/alchemy/internal/session"
	"svw.info/alchemy/internal/solver"
	"svw.info/alchemy/internal/validator"
)

// Engine holds the per-release constants every new session gets.
type Engine struct {
	Rules        domain.ScoreRules
	Lifetime     time.Duration
	Jitter       time.Duration
	CatalystCost int
	// TTL drops sessions idle for longer. Zero keeps them until they end.
	TTL time.Duration
	// NewRand supplies each session's random stream. Nil seeds PCG randomly.
	NewRand func() ports.Rand
}

// Service is the registry of live sessions and the only place progress is
// read or written.
type Service struct {
	Levels   ports.LevelStore
	Progress ports.ProgressStore
	Hinter   ports.Hinter
	Clock    ports.Clock
	Engine   Engine
	Logger   *zap.Logger

	mu       sync.RWMutex
	sessions map[string]*entry
	hub      *hub
}

type entry struct {
	id      string
	user    string
	s       *session.Session
	started time.Time
	touched atomic.Int64
	settled atomic.Bool
}

func NewService(levels ports.LevelStore, progress ports.ProgressStore, h ports.Hinter, c ports.Clock, eng Engine, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		Levels:   levels,
		Progress: progress,
		Hinter:   h,
		Clock:    c,
		Engine:   eng,
		Logger:   logger,
		sessions: make(map[string]*entry),
		hub:      newHub(),
	}
}

var errNotConfigured = errors.New("usecase dependency not configured")

func (u *Service) newRand() ports.Rand {
	if u.Engine.NewRand != nil {
		return u.Engine.NewRand()
	}
	return rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
}

func (u *Service) deps() session.Deps {
	r := u.newRand()
	v := validator.New()
	return session.Deps{
		Generator: generator.NewRandomGenerator(r),
		Validator: v,
		Searcher:  solver.NewExhaustiveSearcher(v),
		Resolver:  match.NewResolver(u.Engine.Rules, u.Logger),
		Decay:     decay.NewScheduler(u.Engine.Lifetime, u.Engine.Jitter, r, u.Logger),
		Clock:     u.Clock,
		Logger:    u.Logger,
	}
}

// Start opens levelID for user at the user's current score. The returned
// snapshot may already be terminal when the first figure fits nowhere.
func (u *Service) Start(ctx context.Context, user, levelID string) (string, domain.Snapshot, error) {
	if u.Levels == nil || u.Progress == nil {
		return "", domain.Snapshot{}, errNotConfigured
	}
	p, err := u.LoadProgress(ctx, user)
	if err != nil {
		return "", domain.Snapshot{}, err
	}
	if p.IsLocked(levelID) {
		return "", domain.Snapshot{}, fmt.Errorf("%w: %s", domain.ErrLevelLocked, levelID)
	}
	def, err := u.Levels.Load(ctx, levelID)
	if err != nil {
		return "", domain.Snapshot{}, err
	}
	lvl, err := def.Compile()
	if err != nil {
		return "", domain.Snapshot{}, err
	}

	now := u.Clock.Now()
	e := &entry{
		id:      uuid.NewString(),
		user:    user,
		started: now,
		s: session.New(lvl, u.deps(), session.Options{
			EntryScore:   p.Score,
			CatalystCost: u.Engine.CatalystCost,
		}),
	}
	e.touched.Store(now.UnixNano())

	u.mu.Lock()
	u.sessions[e.id] = e
	u.mu.Unlock()

	u.Logger.Info("level started",
		zap.String("session", e.id),
		zap.String("user", user),
		zap.String("level_id", levelID),
		zap.Int("entry_score", p.Score))

	snap := e.s.Snapshot()
	if snap.State.Terminal() {
		if err := u.settle(ctx, e); err != nil {
			return e.id, snap, err
		}
	}
	return e.id, snap, nil
}

func (u *Service) lookup(id string) (*entry, error) {
	u.mu.RLock()
	e, ok := u.sessions[id]
	u.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w: %s", domain.ErrSessionNotFound, id)
	}
	e.touched.Store(u.Clock.Now().UnixNano())
	return e, nil
}

// after settles a session that just ended and pushes the new snapshot to
// subscribers.
func (u *Service) after(ctx context.Context, e *entry) (domain.Snapshot, error) {
	snap := e.s.Snapshot()
	var err error
	if snap.State.Terminal() {
		err = u.settle(ctx, e)
	}
	u.hub.publish(e.id, snap)
	return snap, err
}

func (u *Service) Snapshot(ctx context.Context, id string) (domain.Snapshot, error) {
	e, err := u.lookup(id)
	if err != nil {
		return domain.Snapshot{}, err
	}
	return e.s.Snapshot(), nil
}

func (u *Service) Rotate(ctx context.Context, id string) (domain.Snapshot, error) {
	e, err := u.lookup(id)
	if err != nil {
		return domain.Snapshot{}, err
	}
	if err := e.s.Rotate(); err != nil {
		return domain.Snapshot{}, err
	}
	return u.after(ctx, e)
}

func (u *Service) Fit(ctx context.Context, id string, origin domain.Pos) (domain.Fit, error) {
	e, err := u.lookup(id)
	if err != nil {
		return domain.Fit{}, err
	}
	return e.s.Fit(origin)
}

// Place drops the current figure. A rejected placement returns the error and
// leaves the session as it was.
func (u *Service) Place(ctx context.Context, id string, origin domain.Pos) (domain.Snapshot, error) {
	e, err := u.lookup(id)
	if err != nil {
		return domain.Snapshot{}, err
	}
	if err := e.s.Place(origin); err != nil {
		return domain.Snapshot{}, err
	}
	return u.after(ctx, e)
}

func (u *Service) ActivateCatalyst(ctx context.Context, id string, slot domain.Pos) (domain.Snapshot, error) {
	e, err := u.lookup(id)
	if err != nil {
		return domain.Snapshot{}, err
	}
	if err := e.s.ActivateCatalyst(slot); err != nil {
		return domain.Snapshot{}, err
	}
	return u.after(ctx, e)
}

// Abort ends the session, keeping the user's entry score.
func (u *Service) Abort(ctx context.Context, id string) (domain.Outcome, error) {
	e, err := u.lookup(id)
	if err != nil {
		return domain.Outcome{}, err
	}
	out := e.s.Abort()
	_, err = u.after(ctx, e)
	return out, err
}

// Outcome reports the result of a finished session.
func (u *Service) Outcome(ctx context.Context, id string) (domain.Outcome, bool, error) {
	e, err := u.lookup(id)
	if err != nil {
		return domain.Outcome{}, false, err
	}
	out, done := e.s.Outcome()
	return out, done, nil
}

func (u *Service) Hint(ctx context.Context, id string) (domain.Hint, bool, error) {
	if u.Hinter == nil {
		return domain.Hint{}, false, errNotConfigured
	}
	e, err := u.lookup(id)
	if err != nil {
		return domain.Hint{}, false, err
	}
	snap := e.s.Snapshot()
	if snap.State.Terminal() {
		return domain.Hint{}, false, domain.ErrSessionOver
	}
	return u.Hinter.Hint(ctx, snap.Grid, snap.Current)
}

// TickAll advances decay in every live session and publishes the ones that
// changed. It returns how many changed.
func (u *Service) TickAll(now time.Time) int {
	u.mu.RLock()
	live := make([]*entry, 0, len(u.sessions))
	for _, e := range u.sessions {
		live = append(live, e)
	}
	u.mu.RUnlock()

	changed := 0
	for _, e := range live {
		if e.s.Tick(now) {
			changed++
			u.hub.publish(e.id, e.s.Snapshot())
		}
	}
	return changed
}

// Sweep drops finished sessions and sessions idle longer than the TTL. Idle
// active sessions are aborted first, so their users keep the entry score.
func (u *Service) Sweep(ctx context.Context, now time.Time) int {
	u.mu.Lock()
	var drop []*entry
	for id, e := range u.sessions {
		idle := now.Sub(time.Unix(0, e.touched.Load()))
		if e.s.State().Terminal() || (u.Engine.TTL > 0 && idle > u.Engine.TTL) {
			drop = append(drop, e)
			delete(u.sessions, id)
		}
	}
	u.mu.Unlock()

	for _, e := range drop {
		e.s.Abort()
		if err := u.settle(ctx, e); err != nil {
			u.Logger.Warn("settle on sweep failed", zap.String("session", e.id), zap.Error(err))
		}
		u.hub.close(e.id)
	}
	if len(drop) > 0 {
		u.Logger.Debug("sessions swept", zap.Int("dropped", len(drop)))
	}
	return len(drop)
}

// Sessions lists live session ids in start order.
func (u *Service) Sessions() []string {
	u.mu.RLock()
	defer u.mu.RUnlock()
	all := make([]*entry, 0, len(u.sessions))
	for _, e := range u.sessions {
		all = append(all, e)
	}
	sort.Slice(all, func(i, j int) bool { return all[i].started.Before(all[j].started) })
	ids := make([]string, len(all))
	for i, e := range all {
		ids[i] = e.id
	}
	return ids
}

// Subscribe streams snapshots of session id until cancel is called or the
// session is swept. Slow readers only see the latest snapshot.
func (u *Service) Subscribe(id string) (<-chan domain.Snapshot, func(), error) {
	// Holding the read lock keeps Sweep from dropping id between the check
	// and the subscription, so every channel handed out is closed by it.
	u.mu.RLock()
	defer u.mu.RUnlock()
	e, ok := u.sessions[id]
	if !ok {
		return nil, nil, fmt.Errorf("%w: %s", domain.ErrSessionNotFound, id)
	}
	e.touched.Store(u.Clock.Now().UnixNano())
	ch, cancel := u.hub.subscribe(id)
	return ch, cancel, nil
}
