package match

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"svw.info/alchemy/internal/board"
	"svw.info/alchemy/internal/domain"
	"svw.info/alchemy/internal/ports"
)

const perCell = 50

// parse builds a board from rows of cell codes.
func parse(t *testing.T, rows ...[]string) *board.Board {
	t.Helper()
	g := domain.NewGrid(len(rows))
	for r, row := range rows {
		require.Len(t, row, len(rows))
		for c, code := range row {
			cell, err := domain.ParseCell(code)
			require.NoError(t, err)
			g[r][c] = cell
		}
	}
	return board.New(g)
}

func codes(b *board.Board) [][]string {
	g := b.Grid()
	out := make([][]string, len(g))
	for r := range g {
		out[r] = make([]string, len(g[r]))
		for c := range g[r] {
			out[r][c] = g[r][c].Code()
		}
	}
	return out
}

func resolver() *Resolver {
	return NewResolver(domain.ScoreRules{PerCell: perCell, CountOrigin: true}, nil)
}

func at(r, c int) domain.Pos { return domain.Pos{Row: r, Col: c} }

// resolve scans from p with whatever the board holds there.
func resolve(r *Resolver, b *board.Board, l *domain.Ledger, p domain.Pos) ports.MatchResult {
	c, _ := b.At(p)
	return r.HandleMatches(b, l, p, c)
}

func TestStraightRunOfThree(t *testing.T) {
	b := parse(t,
		[]string{"0", "A", "0", "0"},
		[]string{"0", "A", "0", "0"},
		[]string{"0", "A", "0", "0"},
		[]string{"0", "0", "0", "0"},
	)
	l := &domain.Ledger{Goal: domain.Goal{"A": 2, "B": 1}}
	res := resolve(resolver(), b, l, at(2, 1))

	assert.True(t, res.Vertical)
	assert.False(t, res.Horizontal)
	assert.Equal(t, domain.Kind("A"), res.Kind)
	assert.ElementsMatch(t, []domain.Pos{at(0, 1), at(1, 1), at(2, 1)}, res.Cleared)
	assert.Equal(t, 3*perCell, l.Score)
	assert.Equal(t, 0, l.Bonus)
	assert.Equal(t, domain.Goal{"A": 1, "B": 1}, l.Goal)
	assert.False(t, res.Victory)
	for _, row := range codes(b) {
		assert.Equal(t, []string{"0", "0", "0", "0"}, row)
	}
}

func TestDecayStageDoesNotMatter(t *testing.T) {
	b := parse(t,
		[]string{"As", "Ao", "A"},
		[]string{"0", "0", "0"},
		[]string{"0", "0", "0"},
	)
	l := &domain.Ledger{Goal: domain.Goal{"A": 1}}
	res := resolve(resolver(), b, l, at(0, 2))
	assert.True(t, res.Horizontal)
	assert.True(t, res.Victory)
}

func TestBareOldCellNeverMatches(t *testing.T) {
	b := parse(t,
		[]string{"o", "o", "A"},
		[]string{"0", "0", "0"},
		[]string{"0", "0", "0"},
	)
	l := &domain.Ledger{Goal: domain.Goal{"A": 1}}
	assert.False(t, resolve(resolver(), b, l, at(0, 2)).Matched())
}

func TestBothAxesAndOversizedRun(t *testing.T) {
	b := parse(t,
		[]string{"0", "0", "B", "0", "0"},
		[]string{"0", "0", "B", "0", "0"},
		[]string{"B", "B", "B", "B", "B"},
		[]string{"0", "0", "0", "0", "0"},
		[]string{"0", "0", "0", "0", "0"},
	)
	l := &domain.Ledger{Goal: domain.Goal{"B": 5}}
	res := resolve(resolver(), b, l, at(2, 2))

	require.True(t, res.Vertical)
	require.True(t, res.Horizontal)
	assert.Len(t, res.Cleared, 7)
	// vertical: counter 2 -> 3 cells; horizontal: counter 4 -> 5 cells, bonus 2.
	assert.Equal(t, 3*perCell+5*perCell, l.Score)
	assert.Equal(t, 2, l.Bonus)
	assert.Equal(t, 3, l.Goal["B"])
}

func TestLockedNeighbourBlocks(t *testing.T) {
	b := parse(t,
		[]string{"Al", "A", "A"},
		[]string{"0", "0", "0"},
		[]string{"0", "0", "0"},
	)
	l := &domain.Ledger{Goal: domain.Goal{"A": 1}}
	res := resolve(resolver(), b, l, at(0, 2))
	assert.False(t, res.Matched())
	assert.Equal(t, 0, l.Score)
	assert.Equal(t, "Al", codes(b)[0][0])
}

func TestBorderAndDecorativeStopWalk(t *testing.T) {
	b := parse(t,
		[]string{"A", "b", "A", "A"},
		[]string{"A", "0", "0", "0"},
		[]string{"e", "0", "0", "0"},
		[]string{"A", "0", "0", "0"},
	)
	l := &domain.Ledger{Goal: domain.Goal{"A": 1}}
	assert.False(t, resolve(resolver(), b, l, at(0, 3)).Matched())
	assert.False(t, resolve(resolver(), b, l, at(1, 0)).Matched())
}

func TestCatalystNeighbourCompletesRun(t *testing.T) {
	b := parse(t,
		[]string{"sul", "A", "A"},
		[]string{"0", "0", "0"},
		[]string{"0", "0", "0"},
	)
	l := &domain.Ledger{Goal: domain.Goal{"A": 1}}
	res := resolve(resolver(), b, l, at(0, 2))
	assert.True(t, res.Horizontal)
	assert.True(t, res.Victory)
	assert.Equal(t, []string{"0", "0", "0"}, codes(b)[0])
}

func TestCatalystOriginAdoptsKind(t *testing.T) {
	b := parse(t,
		[]string{"0", "0", "0", "0"},
		[]string{"B", "B", "sul", "A"},
		[]string{"0", "0", "0", "0"},
		[]string{"0", "0", "0", "0"},
	)
	l := &domain.Ledger{Goal: domain.Goal{"A": 1, "B": 1}}
	res := resolve(resolver(), b, l, at(1, 2))

	// Left walk adopts B and takes both; right walk adopts A on its own.
	require.True(t, res.Horizontal)
	assert.Equal(t, domain.Kind("B"), res.Kind)
	assert.Equal(t, domain.Goal{"A": 1, "B": 0}, l.Goal)
	assert.Equal(t, []string{"0", "0", "0", "0"}, codes(b)[1])
}

func TestCatalystOriginChainBreaksOnSecondKind(t *testing.T) {
	b := parse(t,
		[]string{"sul", "A", "B", "B"},
		[]string{"0", "0", "0", "0"},
		[]string{"0", "0", "0", "0"},
		[]string{"0", "0", "0", "0"},
	)
	l := &domain.Ledger{Goal: domain.Goal{"A": 1}}
	res := resolve(resolver(), b, l, at(0, 0))
	assert.False(t, res.Matched())
	assert.Equal(t, "sul", codes(b)[0][0])
}

func TestCatalystOnlyRunLeavesGoal(t *testing.T) {
	b := parse(t,
		[]string{"sul", "sul", "sul"},
		[]string{"0", "0", "0"},
		[]string{"0", "0", "0"},
	)
	l := &domain.Ledger{Goal: domain.Goal{"A": 1}}
	res := resolve(resolver(), b, l, at(0, 0))
	assert.True(t, res.Horizontal)
	assert.Equal(t, domain.Kind(""), res.Kind)
	assert.Equal(t, 1, l.Goal["A"])
	assert.False(t, res.Victory)
}

func TestGoalClampsAtZero(t *testing.T) {
	b := parse(t,
		[]string{"A", "A", "A"},
		[]string{"B", "B", "B"},
		[]string{"0", "0", "0"},
	)
	l := &domain.Ledger{Goal: domain.Goal{"A": 0, "B": 1}}
	res := resolve(resolver(), b, l, at(0, 0))
	require.True(t, res.Horizontal)
	assert.Equal(t, 0, l.Goal["A"])
	assert.False(t, res.Victory)

	res = resolve(resolver(), b, l, at(1, 2))
	require.True(t, res.Horizontal)
	assert.Equal(t, 0, l.Goal["B"])
	assert.True(t, res.Victory)
}

func TestScoreWithoutOriginCell(t *testing.T) {
	b := parse(t,
		[]string{"A", "A", "A"},
		[]string{"0", "0", "0"},
		[]string{"0", "0", "0"},
	)
	l := &domain.Ledger{Score: 700, Goal: domain.Goal{"B": 1}}
	r := NewResolver(domain.ScoreRules{PerCell: perCell}, nil)
	resolve(r, b, l, at(0, 1))
	assert.Equal(t, 700+2*perCell, l.Score)
}

func TestEmptyOriginIsIgnored(t *testing.T) {
	b := parse(t,
		[]string{"A", "0", "A"},
		[]string{"0", "0", "0"},
		[]string{"0", "0", "0"},
	)
	l := &domain.Ledger{Goal: domain.Goal{"A": 1}}
	assert.False(t, resolve(resolver(), b, l, at(0, 1)).Matched())
	assert.False(t, resolve(resolver(), b, l, at(9, 9)).Matched())
}

func TestPlacedContentScansFromClearedCell(t *testing.T) {
	b := parse(t,
		[]string{"0", "B", "0"},
		[]string{"A", "0", "0"},
		[]string{"A", "0", "0"},
	)
	l := &domain.Ledger{Goal: domain.Goal{"A": 2}}
	res := resolver().HandleMatches(b, l, at(0, 0), domain.ElementCell("A", domain.Fresh))

	assert.True(t, res.Vertical)
	assert.False(t, res.Horizontal)
	assert.ElementsMatch(t, []domain.Pos{at(1, 0), at(2, 0)}, res.Cleared)
	assert.Equal(t, [][]string{
		{"0", "B", "0"},
		{"0", "0", "0"},
		{"0", "0", "0"},
	}, codes(b))
	assert.Equal(t, 3*perCell, l.Score)
	assert.Equal(t, 1, l.Goal["A"])
}
