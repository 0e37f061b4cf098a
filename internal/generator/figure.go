package generator

import "svw.info/alchemy/internal/domain"

// shapeCols maps (size, rows) to a column count. size 4 over 2 rows picks 2 or 3.
func (g *RandomGenerator) shapeCols(size, rows int) int {
	if rows == size {
		return 1
	}
	switch size {
	case 4:
		switch rows {
		case 3:
			return 2
		case 2:
			return 2 + g.Rand.IntN(2)
		default:
			return 4
		}
	case 3:
		if rows == 2 {
			return 2
		}
		return 3
	default: // size 2, one row
		return 2
	}
}

// Generate draws a figure of 1..maxSize occupied slots. Slots are dealt from a
// shuffled pool, so occupied slots are not guaranteed to touch each other.
// palette must not be empty.
func (g *RandomGenerator) Generate(maxSize int, palette []domain.Kind, spoilable map[domain.Kind]bool) domain.Figure {
	if maxSize < 1 {
		maxSize = 1
	}
	if maxSize > domain.MaxFigureSize {
		maxSize = domain.MaxFigureSize
	}
	size := 1 + g.Rand.IntN(maxSize)
	rows := 1 + g.Rand.IntN(size)
	cols := g.shapeCols(size, rows)
	empty := rows*cols - size

	pool := make([]domain.Cell, 0, rows*cols)
	for i := 0; i < size; i++ {
		k := palette[g.Rand.IntN(len(palette))]
		d := domain.Fresh
		if spoilable[k] && g.Rand.IntN(2) == 1 {
			d = domain.Spoilt
		}
		pool = append(pool, domain.ElementCell(k, d))
	}
	for i := 0; i < empty; i++ {
		pool = append(pool, domain.EmptyCell())
	}

	fig := make(domain.Figure, rows)
	for r := range fig {
		fig[r] = make([]domain.Cell, cols)
		for c := range fig[r] {
			i := g.Rand.IntN(len(pool))
			fig[r][c] = pool[i]
			pool = append(pool[:i], pool[i+1:]...)
		}
	}
	return fig
}
