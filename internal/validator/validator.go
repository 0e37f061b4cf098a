package validator

import "svw.info/alchemy/internal/domain"

// FitValidator checks figure placement against a grid. It never mutates either.
type FitValidator struct{}

func New() *FitValidator { return &FitValidator{} }

// CanPlace tests every occupied slot of f at origin: the target cell must exist
// and be Empty. Out-of-range targets are bounds-checked, never indexed.
func (v *FitValidator) CanPlace(g domain.Grid, f domain.Figure, origin domain.Pos) domain.Fit {
	fit := domain.Fit{OK: true, Cells: make([][]bool, len(f))}
	for r, row := range f {
		fit.Cells[r] = make([]bool, len(row))
		for c, slot := range row {
			if slot.IsEmpty() {
				continue
			}
			p := origin.Add(domain.Pos{Row: r, Col: c})
			if g.In(p) && g[p.Row][p.Col].IsEmpty() {
				fit.Cells[r][c] = true
				fit.Shadow = append(fit.Shadow, p)
				continue
			}
			fit.OK = false
			fit.Darken = append(fit.Darken, domain.Pos{Row: r, Col: c})
		}
	}
	return fit
}

// Fits is CanPlace without the advisory output, for search loops.
func (v *FitValidator) Fits(g domain.Grid, f domain.Figure, origin domain.Pos) bool {
	for r, row := range f {
		for c, slot := range row {
			if slot.IsEmpty() {
				continue
			}
			p := origin.Add(domain.Pos{Row: r, Col: c})
			if !g.In(p) || !g[p.Row][p.Col].IsEmpty() {
				return false
			}
		}
	}
	return true
}
