// Package board holds the authoritative grid of cells together with the per-cell
// decay expiry instants, and owns every mutation primitive on them.
package board

import (
	"fmt"
	"time"

	"svw.info/alchemy/internal/domain"
)

// ArmFunc decides the expiry instant for a freshly written cell. Returning false
// leaves the cell without a timer.
type ArmFunc func(c domain.Cell) (time.Time, bool)

// Board is not safe for concurrent use; the session serializes access.
type Board struct {
	grid   domain.Grid
	expiry [][]time.Time
}

// New copies g into a board with every timer disarmed.
func New(g domain.Grid) *Board {
	b := &Board{grid: g.Clone(), expiry: make([][]time.Time, len(g))}
	for r := range g {
		b.expiry[r] = make([]time.Time, len(g[r]))
	}
	return b
}

func (b *Board) Size() int { return len(b.grid) }

func (b *Board) In(p domain.Pos) bool { return b.grid.In(p) }

// At returns the cell at p; ok is false outside the grid.
func (b *Board) At(p domain.Pos) (c domain.Cell, ok bool) {
	if !b.grid.In(p) {
		return domain.Cell{}, false
	}
	return b.grid[p.Row][p.Col], true
}

// View exposes the live grid for read-only scans. Callers must not modify it.
func (b *Board) View() domain.Grid { return b.grid }

// Grid returns a copy of the cells.
func (b *Board) Grid() domain.Grid { return b.grid.Clone() }

// Clone deep-copies cells and timers.
func (b *Board) Clone() *Board {
	out := &Board{grid: b.grid.Clone(), expiry: make([][]time.Time, len(b.expiry))}
	for r := range b.expiry {
		out.expiry[r] = append([]time.Time(nil), b.expiry[r]...)
	}
	return out
}

// Set replaces the cell at p. Border and Decorative cells never mutate.
func (b *Board) Set(p domain.Pos, c domain.Cell) error {
	cur, ok := b.At(p)
	if !ok {
		return fmt.Errorf("set %v: out of bounds", p)
	}
	if cur.Static() {
		return fmt.Errorf("set %v: %s cell is immutable", p, cur.Type)
	}
	b.grid[p.Row][p.Col] = c
	return nil
}

// SetDecay moves the Element at p to stage d. It reports false, changing
// nothing, when p holds no Element.
func (b *Board) SetDecay(p domain.Pos, d domain.Decay) bool {
	cur, ok := b.At(p)
	if !ok || cur.Type != domain.Element {
		return false
	}
	b.grid[p.Row][p.Col].Decay = d
	return true
}

// Clear empties p and disarms its timer. Static cells are left untouched.
func (b *Board) Clear(p domain.Pos) {
	cur, ok := b.At(p)
	if !ok || cur.Static() {
		return
	}
	b.grid[p.Row][p.Col] = domain.EmptyCell()
	b.expiry[p.Row][p.Col] = time.Time{}
}

func (b *Board) Arm(p domain.Pos, at time.Time) {
	if b.grid.In(p) {
		b.expiry[p.Row][p.Col] = at
	}
}

func (b *Board) Disarm(p domain.Pos) {
	if b.grid.In(p) {
		b.expiry[p.Row][p.Col] = time.Time{}
	}
}

// Expiry returns the armed instant at p, zero when not decaying.
func (b *Board) Expiry(p domain.Pos) time.Time {
	if !b.grid.In(p) {
		return time.Time{}
	}
	return b.expiry[p.Row][p.Col]
}

// Armed lists positions with a non-zero expiry in row-major order.
func (b *Board) Armed() []domain.Pos {
	var out []domain.Pos
	for r := range b.expiry {
		for c, at := range b.expiry[r] {
			if !at.IsZero() {
				out = append(out, domain.Pos{Row: r, Col: c})
			}
		}
	}
	return out
}

// ArmAll arms every cell arm accepts. Used once at level load.
func (b *Board) ArmAll(arm ArmFunc) {
	for r := range b.grid {
		for c, cell := range b.grid[r] {
			if at, ok := arm(cell); ok {
				b.expiry[r][c] = at
			}
		}
	}
}

// Place writes every occupied slot of f at origin and arms it through arm.
// Nothing is written unless every slot lands inside the grid on an Empty cell;
// otherwise the error wraps domain.ErrPlacementRejected. The placed positions are
// returned in figure scan order.
func (b *Board) Place(f domain.Figure, origin domain.Pos, arm ArmFunc) ([]domain.Pos, error) {
	for r, row := range f {
		for c, slot := range row {
			if slot.IsEmpty() {
				continue
			}
			p := origin.Add(domain.Pos{Row: r, Col: c})
			cur, ok := b.At(p)
			if !ok {
				return nil, fmt.Errorf("%w: slot (%d,%d) lands outside the grid at %v", domain.ErrPlacementRejected, r, c, p)
			}
			if !cur.IsEmpty() {
				return nil, fmt.Errorf("%w: slot (%d,%d) lands on %s cell at %v", domain.ErrPlacementRejected, r, c, cur.Type, p)
			}
		}
	}
	placed := make([]domain.Pos, 0, f.Size())
	for r, row := range f {
		for c, slot := range row {
			if slot.IsEmpty() {
				continue
			}
			p := origin.Add(domain.Pos{Row: r, Col: c})
			b.grid[p.Row][p.Col] = slot
			if at, ok := arm(slot); ok {
				b.expiry[p.Row][p.Col] = at
			} else {
				b.expiry[p.Row][p.Col] = time.Time{}
			}
			placed = append(placed, p)
		}
	}
	return placed, nil
}
