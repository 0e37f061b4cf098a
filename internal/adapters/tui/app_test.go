package tui

import (
	"context"
	"testing"
	"testing/fstest"
	"time"

	"github.com/gdamore/tcell/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"svw.info/alchemy/internal/clock"
	"svw.info/alchemy/internal/domain"
	"svw.info/alchemy/internal/hint"
	"svw.info/alchemy/internal/infrastructure/storage"
	"svw.info/alchemy/internal/match"
	"svw.info/alchemy/internal/ports"
	"svw.info/alchemy/internal/randtest"
	"svw.info/alchemy/internal/solver"
	"svw.info/alchemy/internal/usecase"
)

var testLevels = fstest.MapFS{
	"level_1.json": {Data: []byte(`{
		"id": "1", "figure_max_size": 1, "elements": ["A"], "goal": {"A": 1}, "substances": true,
		"field": [["A", "A", "0"], ["0", "0", "0"], ["0", "0", "b"]]}`)},
}

type recorder struct {
	matches, victories, defeats int
}

func (r *recorder) Match()   { r.matches++ }
func (r *recorder) Victory() { r.victories++ }
func (r *recorder) Defeat()  { r.defeats++ }
func (r *recorder) Close()   {}

func newApp(t *testing.T) (*App, tcell.SimulationScreen, *recorder) {
	t.Helper()
	rules := domain.ScoreRules{PerCell: 50, CountOrigin: true}
	uc := usecase.NewService(
		storage.NewLevels(testLevels),
		storage.NewProgress(t.TempDir()),
		hint.NewBestPlacement(solver.NewExhaustiveSearcher(nil), match.NewResolver(rules, nil)),
		clock.NewMock(time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)),
		usecase.Engine{
			Rules:        rules,
			Lifetime:     time.Minute,
			CatalystCost: 3,
			NewRand:      func() ports.Rand { return randtest.NewScript() },
		},
		nil,
	)
	id, _, err := uc.Start(context.Background(), "alice", "1")
	require.NoError(t, err)

	screen := tcell.NewSimulationScreen("UTF-8")
	require.NoError(t, screen.Init())
	screen.SetSize(60, 12)
	t.Cleanup(screen.Fini)

	a := New(screen, uc, id, nil)
	rec := &recorder{}
	a.Sound = rec
	require.NoError(t, a.refresh(context.Background()))
	a.cursor = domain.Pos{Row: 1, Col: 1}
	return a, screen, rec
}

func key(k tcell.Key) *tcell.EventKey { return tcell.NewEventKey(k, 0, tcell.ModNone) }

func char(r rune) *tcell.EventKey { return tcell.NewEventKey(tcell.KeyRune, r, tcell.ModNone) }

func TestCursorStaysOnGrid(t *testing.T) {
	a, _, _ := newApp(t)
	ctx := context.Background()
	assert.True(t, a.Handle(ctx, char('k')))
	assert.True(t, a.Handle(ctx, key(tcell.KeyUp)))
	assert.Equal(t, domain.Pos{Row: 0, Col: 1}, a.Cursor())
	a.Handle(ctx, char('l'))
	a.Handle(ctx, key(tcell.KeyRight))
	assert.Equal(t, domain.Pos{Row: 0, Col: 2}, a.Cursor())
	a.Handle(ctx, char('j'))
	a.Handle(ctx, char('h'))
	a.Handle(ctx, key(tcell.KeyLeft))
	assert.Equal(t, domain.Pos{Row: 1, Col: 0}, a.Cursor())
}

func TestRejectedDropShowsMessage(t *testing.T) {
	a, _, rec := newApp(t)
	ctx := context.Background()
	a.Handle(ctx, key(tcell.KeyUp))
	a.Handle(ctx, key(tcell.KeyLeft))
	assert.False(t, a.fit.OK)
	assert.True(t, a.Handle(ctx, key(tcell.KeyEnter)))
	assert.Equal(t, "does not fit here", a.Message())
	assert.Zero(t, rec.matches)
}

func TestDropCompletesLevel(t *testing.T) {
	a, _, rec := newApp(t)
	ctx := context.Background()
	a.Handle(ctx, key(tcell.KeyUp))
	a.Handle(ctx, key(tcell.KeyRight))
	assert.True(t, a.fit.OK)
	assert.True(t, a.Handle(ctx, char(' ')))
	assert.Equal(t, 1, rec.matches)
	assert.Equal(t, 1, rec.victories)
	require.NotNil(t, a.outcome)
	assert.Equal(t, domain.Victory, a.outcome.State)
	assert.Equal(t, 150, a.outcome.Score)

	// any key leaves once the level is over
	assert.False(t, a.Handle(ctx, char('x')))
}

func TestHintMovesCursor(t *testing.T) {
	a, _, _ := newApp(t)
	a.Handle(context.Background(), char('?'))
	assert.Equal(t, domain.Pos{Row: 0, Col: 2}, a.Cursor())
	assert.Contains(t, a.Message(), "row 1, column 3")
}

func TestCatalystWithoutBonus(t *testing.T) {
	a, _, _ := newApp(t)
	a.Handle(context.Background(), char('c'))
	assert.NotEmpty(t, a.Message())
	assert.Equal(t, domain.Element, a.snap.Current[0][0].Type)
}

func TestQuitAborts(t *testing.T) {
	a, _, _ := newApp(t)
	assert.False(t, a.Handle(context.Background(), char('q')))
	require.NotNil(t, a.outcome)
	assert.Equal(t, domain.Aborted, a.outcome.State)
}

func TestDrawShowsBoardAndPanel(t *testing.T) {
	a, screen, _ := newApp(t)
	a.updateFit(context.Background())
	a.draw()

	x, y := cellAt(domain.Pos{Row: 0, Col: 0})
	r, _, _, _ := screen.GetContent(x, y)
	assert.Equal(t, 'A', r)

	x, y = cellAt(domain.Pos{Row: 2, Col: 2})
	_, _, st, _ := screen.GetContent(x, y)
	_, bg, _ := st.Decompose()
	assert.Equal(t, tcell.ColorGray, bg)

	// the figure overlays the cursor cell
	x, y = cellAt(domain.Pos{Row: 1, Col: 1})
	r, _, _, _ = screen.GetContent(x, y)
	assert.Equal(t, 'A', r)

	px := gridX + 3*cellW + 2
	var line []rune
	for i := 0; i < len("Score  0"); i++ {
		r, _, _, _ := screen.GetContent(px+i, gridY+1)
		line = append(line, r)
	}
	assert.Equal(t, "Score  0", string(line))
}
