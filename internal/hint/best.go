package hint

import (
	"context"
	"fmt"
	"time"

	"svw.info/alchemy/internal/board"
	"svw.info/alchemy/internal/domain"
	"svw.info/alchemy/internal/ports"
	"svw.info/alchemy/internal/validator"
)

// BestPlacement suggests the fitting placement that clears the most cells,
// simulated on a copy of the grid. Ties go to the earliest in search order.
type BestPlacement struct {
	Searcher ports.PlacementSearcher
	Resolver ports.MatchResolver
}

func NewBestPlacement(s ports.PlacementSearcher, r ports.MatchResolver) *BestPlacement {
	return &BestPlacement{Searcher: s, Resolver: r}
}

func noTimer(domain.Cell) (time.Time, bool) { return time.Time{}, false }

// Hint returns false when f fits nowhere.
func (h *BestPlacement) Hint(ctx context.Context, g domain.Grid, f domain.Figure) (domain.Hint, bool, error) {
	placements, _ := h.Searcher.Enumerate(g, f)
	if len(placements) == 0 {
		return domain.Hint{}, false, nil
	}
	rots := validator.Rotations(f)
	best, bestCleared := placements[0], -1
	for _, p := range placements {
		if err := ctx.Err(); err != nil {
			return domain.Hint{}, false, err
		}
		n := h.cleared(g, rots[p.Rotation], p.Origin)
		if n > bestCleared {
			best, bestCleared = p, n
		}
	}
	return domain.Hint{
		Placement: best,
		Cleared:   bestCleared,
		Message:   message(best, bestCleared),
	}, true, nil
}

func (h *BestPlacement) cleared(g domain.Grid, f domain.Figure, origin domain.Pos) int {
	b := board.New(g)
	placed, err := b.Place(f, origin, noTimer)
	if err != nil {
		return 0
	}
	slots := f.Occupied()
	var ledger domain.Ledger
	n := 0
	for i, p := range placed {
		n += len(h.Resolver.HandleMatches(b, &ledger, p, slots[i]).Cleared)
	}
	return n
}

func message(p domain.Placement, cleared int) string {
	where := fmt.Sprintf("row %d, column %d", p.Origin.Row+1, p.Origin.Col+1)
	if p.Rotation > 0 {
		where = fmt.Sprintf("%s after %d turn(s)", where, p.Rotation)
	}
	if cleared == 0 {
		return "No match yet: " + where + " keeps the figure on the board"
	}
	return fmt.Sprintf("Drop at %s to clear %d cells", where, cleared)
}
