package ports

import (
	"context"
	"time"

	"svw.info/alchemy/internal/board"
	"svw.info/alchemy/internal/domain"
)

// Stats captures performance characteristics of a search.
type Stats struct {
	Nodes    int
	Duration time.Duration
}

// Clock supplies the instant used for decay expiry.
type Clock interface {
	Now() time.Time
}

// Rand is the slice of math/rand/v2 the engine needs; tests script it.
type Rand interface {
	IntN(n int) int
}

// FigureGenerator produces the next random figure for a level.
type FigureGenerator interface {
	Generate(maxSize int, palette []domain.Kind, spoilable map[domain.Kind]bool) domain.Figure
}

// PlacementValidator tests figure fit and rotates figures.
type PlacementValidator interface {
	CanPlace(g domain.Grid, f domain.Figure, origin domain.Pos) domain.Fit
	Rotate(f domain.Figure) domain.Figure
}

// PlacementSearcher looks for any legal placement of a figure.
type PlacementSearcher interface {
	GlobalCheck(g domain.Grid, f domain.Figure) (domain.Placement, bool, Stats)
	Enumerate(g domain.Grid, f domain.Figure) ([]domain.Placement, Stats)
}

// MatchResolver clears runs through a newly placed cell. origin is the content
// that was placed at pos.
type MatchResolver interface {
	HandleMatches(b *board.Board, l *domain.Ledger, pos domain.Pos, origin domain.Cell) MatchResult
}

// MatchResult reports what one HandleMatches call did.
type MatchResult struct {
	Vertical   bool
	Horizontal bool
	Cleared    []domain.Pos
	Kind       domain.Kind
	Victory    bool
}

func (r MatchResult) Matched() bool { return r.Vertical || r.Horizontal }

// DecayScheduler ages material on every tick.
type DecayScheduler interface {
	Tick(b *board.Board, now time.Time) bool
	Expiry(now time.Time) time.Time
	Armer(now time.Time, stable map[domain.Kind]bool) board.ArmFunc
}

// Hinter suggests a placement for the current figure.
type Hinter interface {
	Hint(ctx context.Context, g domain.Grid, f domain.Figure) (domain.Hint, bool, error)
}

// LevelStore loads level definitions.
type LevelStore interface {
	Load(ctx context.Context, id string) (*domain.LevelDefinition, error)
	List(ctx context.Context) ([]domain.LevelMeta, error)
}

// ProgressStore persists per-user progress as opaque records.
type ProgressStore interface {
	Load(ctx context.Context, user string) (*domain.Progress, error)
	Save(ctx context.Context, p *domain.Progress) error
}
