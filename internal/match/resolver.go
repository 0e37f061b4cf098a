// Package match resolves runs of three or more through a newly placed cell.
package match

import (
	"go.uber.org/zap"

	"svw.info/alchemy/internal/board"
	"svw.info/alchemy/internal/domain"
	"svw.info/alchemy/internal/ports"
)

var (
	up    = domain.Pos{Row: -1}
	down  = domain.Pos{Row: 1}
	left  = domain.Pos{Col: -1}
	right = domain.Pos{Col: 1}

	axes = [2]struct {
		name string
		dirs [2]domain.Pos
	}{
		{"vertical", [2]domain.Pos{up, down}},
		{"horizontal", [2]domain.Pos{left, right}},
	}
)

// Resolver evaluates both axes through a cell, clears what matched and books
// score, bonus and goal progress into a Ledger. It does not cascade.
type Resolver struct {
	Rules  domain.ScoreRules
	Logger *zap.Logger
}

func NewResolver(rules domain.ScoreRules, logger *zap.Logger) *Resolver {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Resolver{Rules: rules, Logger: logger}
}

// HandleMatches resolves a cell placed at pos, scanning with the placed content
// origin rather than what the board holds now: an earlier cell of the same drop
// may already have cleared pos. An axis matches when the two directional walks
// together find at least two partners.
func (r *Resolver) HandleMatches(b *board.Board, l *domain.Ledger, pos domain.Pos, origin domain.Cell) ports.MatchResult {
	var res ports.MatchResult
	if !b.In(pos) {
		return res
	}
	// Only materials and catalysts scan; this also rules out Locked origins.
	if _, isMaterial := origin.Material(); !isMaterial && origin.Type != domain.Catalyst {
		return res
	}

	for i, axis := range axes {
		hitsA, kindA := r.walk(b, origin, pos, axis.dirs[0])
		hitsB, kindB := r.walk(b, origin, pos, axis.dirs[1])
		counter := len(hitsA) + len(hitsB)
		if counter < 2 {
			continue
		}

		kind := kindA
		if kind == "" {
			kind = kindB
		}
		if i == 0 {
			res.Vertical = true
		} else {
			res.Horizontal = true
		}
		if res.Kind == "" {
			res.Kind = kind
		}
		if kind != "" {
			l.Goal.Decrement(kind)
		}
		for _, p := range append(hitsA, hitsB...) {
			b.Clear(p)
			res.Cleared = append(res.Cleared, p)
		}
		run := counter
		if r.Rules.CountOrigin {
			run++
		}
		l.Score += r.Rules.PerCell * run
		if counter-2 > 0 {
			l.Bonus += counter - 2
		}
		r.Logger.Debug("match",
			zap.String("axis", axis.name),
			zap.String("kind", string(kind)),
			zap.Int("counter", counter),
			zap.Int("score", l.Score),
			zap.Int("bonus", l.Bonus))
	}

	if !res.Matched() {
		return res
	}
	if c, _ := b.At(pos); !c.IsEmpty() {
		b.Clear(pos)
		res.Cleared = append(res.Cleared, pos)
	}
	res.Victory = l.Goal.Done()
	return res
}

// walk steps from pos in dir while cells keep matching. A Catalyst neighbour
// always counts. A Catalyst origin adopts the first concrete kind it meets and
// holds it for the rest of this walk only. A Locked neighbour stops the walk
// without counting; Locked origins never reach here. The returned kind is the
// one the walk matched against.
func (r *Resolver) walk(b *board.Board, origin domain.Cell, pos, dir domain.Pos) ([]domain.Pos, domain.Kind) {
	active, adopted := origin.Material()
	var hits []domain.Pos
	for p := pos.Add(dir); ; p = p.Add(dir) {
		c, ok := b.At(p)
		if !ok || c.Type == domain.Locked {
			break
		}
		if c.Type == domain.Catalyst {
			hits = append(hits, p)
			continue
		}
		k, ok := c.Material()
		if !ok {
			break
		}
		if !adopted {
			active, adopted = k, true
			hits = append(hits, p)
			continue
		}
		if k != active {
			break
		}
		hits = append(hits, p)
	}
	return hits, active
}
