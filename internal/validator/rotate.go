package validator

import "svw.info/alchemy/internal/domain"

// Rotate turns f a quarter clockwise: reverse the row order, then transpose.
// Four applications return the original figure.
func (v *FitValidator) Rotate(f domain.Figure) domain.Figure {
	return Rotate(f)
}

func Rotate(f domain.Figure) domain.Figure {
	rows, cols := f.Rows(), f.Cols()
	out := make(domain.Figure, cols)
	for i := range out {
		out[i] = make([]domain.Cell, rows)
		for j := range out[i] {
			out[i][j] = f[rows-1-j][i]
		}
	}
	return out
}

// Rotations returns f followed by its three further quarter turns.
func Rotations(f domain.Figure) [4]domain.Figure {
	var out [4]domain.Figure
	out[0] = f
	for i := 1; i < 4; i++ {
		out[i] = Rotate(out[i-1])
	}
	return out
}
