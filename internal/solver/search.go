package solver

import (
	"time"

	"svw.info/alchemy/internal/domain"
	"svw.info/alchemy/internal/ports"
	"svw.info/alchemy/internal/validator"
)

// ExhaustiveSearcher tries every rotation at every grid origin.
type ExhaustiveSearcher struct {
	Validator *validator.FitValidator
}

func NewExhaustiveSearcher(v *validator.FitValidator) *ExhaustiveSearcher {
	if v == nil {
		v = validator.New()
	}
	return &ExhaustiveSearcher{Validator: v}
}

// GlobalCheck returns the first fitting placement, scanning rotations 0..3 and
// origins in row-major order. ok=false means the figure cannot go anywhere.
func (s *ExhaustiveSearcher) GlobalCheck(g domain.Grid, f domain.Figure) (domain.Placement, bool, ports.Stats) {
	start := time.Now()
	nodes := 0
	for rot, fig := range validator.Rotations(f) {
		for r := 0; r < g.Size(); r++ {
			for c := 0; c < len(g[r]); c++ {
				nodes++
				origin := domain.Pos{Row: r, Col: c}
				if s.Validator.Fits(g, fig, origin) {
					return domain.Placement{Rotation: rot, Origin: origin}, true, ports.Stats{Nodes: nodes, Duration: time.Since(start)}
				}
			}
		}
	}
	return domain.Placement{}, false, ports.Stats{Nodes: nodes, Duration: time.Since(start)}
}

// Enumerate lists every fitting placement in the same order GlobalCheck scans.
func (s *ExhaustiveSearcher) Enumerate(g domain.Grid, f domain.Figure) ([]domain.Placement, ports.Stats) {
	start := time.Now()
	nodes := 0
	var out []domain.Placement
	for rot, fig := range validator.Rotations(f) {
		for r := 0; r < g.Size(); r++ {
			for c := 0; c < len(g[r]); c++ {
				nodes++
				origin := domain.Pos{Row: r, Col: c}
				if s.Validator.Fits(g, fig, origin) {
					out = append(out, domain.Placement{Rotation: rot, Origin: origin})
				}
			}
		}
	}
	return out, ports.Stats{Nodes: nodes, Duration: time.Since(start)}
}
