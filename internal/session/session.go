// Package session sequences the figure lifecycle for one level: placement,
// match resolution, decay ticks and the Victory/Defeat state machine.
//
// A Session is a single actor: every command and every tick takes the same
// mutex, so decay never interleaves with a placement in progress.
package session

import (
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"svw.info/alchemy/internal/board"
	"svw.info/alchemy/internal/domain"
	"svw.info/alchemy/internal/ports"
)

// Deps are the collaborators a session drives.
type Deps struct {
	Generator ports.FigureGenerator
	Validator ports.PlacementValidator
	Searcher  ports.PlacementSearcher
	Resolver  ports.MatchResolver
	Decay     ports.DecayScheduler
	Clock     ports.Clock
	Logger    *zap.Logger
}

// Options carry per-session values that are not part of the level.
type Options struct {
	// EntryScore is the user's score when the level starts. Defeat and Abort
	// report it unchanged.
	EntryScore   int
	CatalystCost int
}

type Session struct {
	mu sync.Mutex

	level   *domain.Level
	deps    Deps
	opts    Options
	log     *zap.Logger
	board   *board.Board
	ledger  domain.Ledger
	current domain.Figure
	next    domain.Figure
	state   domain.State
	outcome domain.Outcome
	drops   int
}

// New loads level into a fresh board, arms timers for its initial material and
// deals the current and next figures. The session may already be in Defeat when
// the first figure fits nowhere.
func New(level *domain.Level, deps Deps, opts Options) *Session {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &Session{
		level: level,
		deps:  deps,
		opts:  opts,
		log:   logger.With(zap.String("level_id", level.ID)),
		board: board.New(level.Grid),
		ledger: domain.Ledger{
			Score: opts.EntryScore,
			Goal:  level.Goal.Clone(),
		},
		state: domain.Active,
	}
	s.board.ArmAll(deps.Decay.Armer(deps.Clock.Now(), level.Stable))
	s.current = s.generate()
	s.next = s.generate()
	s.log.Info("session started",
		zap.Int("size", s.board.Size()),
		zap.Int("armed", len(s.board.Armed())),
		zap.Int("entry_score", opts.EntryScore))
	s.checkDefeat()
	return s
}

func (s *Session) generate() domain.Figure {
	return s.deps.Generator.Generate(s.level.FigureMaxSize, s.level.Palette, s.level.Spoilable)
}

func (s *Session) LevelID() string { return s.level.ID }

func (s *Session) State() domain.State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Snapshot returns a copy the caller may keep.
func (s *Session) Snapshot() domain.Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return domain.Snapshot{
		LevelID:    s.level.ID,
		State:      s.state,
		Grid:       s.board.Grid(),
		Current:    s.current.Clone(),
		Next:       s.next.Clone(),
		Score:      s.ledger.Score,
		Bonus:      s.ledger.Bonus,
		Goal:       s.ledger.Goal.Clone(),
		Substances: s.level.Substances,
	}
}

// Rotate turns the current figure a quarter clockwise.
func (s *Session) Rotate() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state.Terminal() {
		return domain.ErrSessionOver
	}
	s.current = s.deps.Validator.Rotate(s.current)
	return nil
}

// Fit previews the current figure at origin without touching the board.
func (s *Session) Fit(origin domain.Pos) (domain.Fit, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state.Terminal() {
		return domain.Fit{}, domain.ErrSessionOver
	}
	return s.deps.Validator.CanPlace(s.board.View(), s.current, origin), nil
}

// Place drops the current figure at origin. A nil error means the figure was
// placed; the session may have ended as a result.
func (s *Session) Place(origin domain.Pos) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state.Terminal() {
		return domain.ErrSessionOver
	}
	if fit := s.deps.Validator.CanPlace(s.board.View(), s.current, origin); !fit.OK {
		s.log.Debug("placement rejected", zap.Int("row", origin.Row), zap.Int("col", origin.Col))
		return fmt.Errorf("%w: figure does not fit at (%d,%d)", domain.ErrPlacementRejected, origin.Row, origin.Col)
	}

	slots := s.current.Occupied()
	placed, err := s.board.Place(s.current, origin, s.deps.Decay.Armer(s.deps.Clock.Now(), s.level.Stable))
	if err != nil {
		return err
	}
	s.drops++

	// Every placed cell is resolved with its own content, even when an earlier
	// cell of this drop already cleared it.
	victory := false
	for i, p := range placed {
		if res := s.deps.Resolver.HandleMatches(s.board, &s.ledger, p, slots[i]); res.Victory {
			victory = true
		}
	}
	if victory {
		s.finish(domain.Victory, "")
		return nil
	}

	s.current = s.next
	s.next = s.generate()
	s.checkDefeat()
	return nil
}

// Tick advances decay to now and reports whether any cell changed. Terminal
// sessions no longer decay.
func (s *Session) Tick(now time.Time) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state.Terminal() {
		return false
	}
	return s.deps.Decay.Tick(s.board, now)
}

// ActivateCatalyst turns slot of the current figure into a Catalyst, paying
// CatalystCost bonus.
func (s *Session) ActivateCatalyst(slot domain.Pos) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state.Terminal() {
		return domain.ErrSessionOver
	}
	if !s.level.Substances {
		return fmt.Errorf("%w: level %s has no substances", domain.ErrCatalystUnavailable, s.level.ID)
	}
	if slot.Row < 0 || slot.Row >= s.current.Rows() || slot.Col < 0 || slot.Col >= s.current.Cols() {
		return fmt.Errorf("%w: slot (%d,%d) outside the figure", domain.ErrCatalystUnavailable, slot.Row, slot.Col)
	}
	cell := s.current[slot.Row][slot.Col]
	if cell.IsEmpty() || cell.Type == domain.Catalyst {
		return fmt.Errorf("%w: slot (%d,%d) holds %s", domain.ErrCatalystUnavailable, slot.Row, slot.Col, cell.Type)
	}
	if s.ledger.Bonus < s.opts.CatalystCost {
		return fmt.Errorf("%w: bonus %d, need %d", domain.ErrCatalystUnavailable, s.ledger.Bonus, s.opts.CatalystCost)
	}
	s.ledger.Bonus -= s.opts.CatalystCost
	s.current = s.current.Clone()
	s.current[slot.Row][slot.Col] = domain.CatalystCell()
	return nil
}

// Abort ends an active session, discarding in-level score. On a terminal
// session it returns the existing outcome.
func (s *Session) Abort() domain.Outcome {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.state.Terminal() {
		s.finish(domain.Aborted, "aborted")
	}
	return s.outcome
}

// Outcome reports the final result once the session is terminal.
func (s *Session) Outcome() (domain.Outcome, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.outcome, s.state.Terminal()
}

func (s *Session) checkDefeat() {
	_, ok, st := s.deps.Searcher.GlobalCheck(s.board.View(), s.current)
	if ok {
		return
	}
	s.log.Debug("no placement for current figure", zap.Int("nodes", st.Nodes), zap.Duration("took", st.Duration))
	s.finish(domain.Defeat, domain.ErrNoPlacementAvailable.Error())
}

// finish must be called with mu held and at most once.
func (s *Session) finish(state domain.State, reason string) {
	s.state = state
	s.outcome = domain.Outcome{
		LevelID: s.level.ID,
		State:   state,
		Score:   s.opts.EntryScore,
		Bonus:   s.ledger.Bonus,
		Reason:  reason,
	}
	if state == domain.Victory {
		s.outcome.Score = s.ledger.Score
		s.outcome.Unlocks = s.level.Research
	}
	s.log.Info("session finished",
		zap.Stringer("state", state),
		zap.Int("score", s.outcome.Score),
		zap.Int("bonus", s.outcome.Bonus),
		zap.Int("drops", s.drops))
}
