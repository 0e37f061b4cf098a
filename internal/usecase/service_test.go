package usecase

import (
	"context"
	"errors"
	"sync"
	"testing"
	"testing/fstest"
	"time"

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
)

var t0 = time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

// Level 1 is won by dropping an A at (0,2). Level 2 is a single open cell
// that no A can match. Level 3 has no room at all.
var testLevels = fstest.MapFS{
	"level_1.json": {Data: []byte(`{
		"id": "1", "name": "First", "figure_max_size": 1,
		"elements": ["A"], "goal": {"A": 1}, "research": "vitriol",
		"field": [["A", "A", "0"], ["0", "0", "0"], ["0", "0", "A"]]}`)},
	"level_2.json": {Data: []byte(`{
		"id": "2", "figure_max_size": 1, "elements": ["A"], "goal": {"B": 1},
		"field": [["0", "b"], ["b", "b"]]}`)},
	"level_3.json": {Data: []byte(`{
		"id": "3", "figure_max_size": 1, "elements": ["A"], "goal": {"A": 1},
		"field": [["b"]]}`)},
}

type fixture struct {
	svc   *Service
	clock *clock.Mock
	store *storage.Progress
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	c := clock.NewMock(t0)
	store := storage.NewProgress(t.TempDir())
	rules := domain.ScoreRules{PerCell: 50, CountOrigin: true}
	svc := NewService(
		storage.NewLevels(testLevels),
		store,
		hint.NewBestPlacement(solver.NewExhaustiveSearcher(nil), match.NewResolver(rules, nil)),
		c,
		Engine{
			Rules:        rules,
			Lifetime:     60 * time.Second,
			CatalystCost: 3,
			TTL:          time.Hour,
			NewRand:      func() ports.Rand { return randtest.NewScript() },
		},
		nil,
	)
	return &fixture{svc: svc, clock: c, store: store}
}

func TestNewUserHasOnlyFirstLevelOpen(t *testing.T) {
	f := newFixture(t)
	levels, err := f.svc.ListLevels(context.Background(), "alice")
	require.NoError(t, err)
	require.Len(t, levels, 3)
	assert.False(t, levels[0].Locked)
	assert.True(t, levels[1].Locked)
	assert.True(t, levels[2].Locked)

	_, _, err = f.svc.Start(context.Background(), "alice", "2")
	assert.True(t, errors.Is(err, domain.ErrLevelLocked))
}

func TestVictorySettlesProgressOnce(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	id, snap, err := f.svc.Start(ctx, "alice", "1")
	require.NoError(t, err)
	require.Equal(t, domain.Active, snap.State)

	snap, err = f.svc.Place(ctx, id, domain.Pos{Row: 0, Col: 2})
	require.NoError(t, err)
	assert.Equal(t, domain.Victory, snap.State)
	assert.Equal(t, 150, snap.Score)

	p, err := f.store.Load(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, 150, p.Score)
	assert.Equal(t, []string{"3"}, p.Locked)
	assert.Equal(t, []string{"vitriol"}, p.Research)

	// A second settle attempt through abort leaves the record alone.
	p.Score = 999
	require.NoError(t, f.store.Save(ctx, p))
	out, err := f.svc.Abort(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, domain.Victory, out.State)
	p, err = f.store.Load(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, 999, p.Score)

	_, err = f.svc.Place(ctx, id, domain.Pos{Row: 1, Col: 1})
	assert.True(t, errors.Is(err, domain.ErrSessionOver))
}

func TestReplayStartsAtStoredScore(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	require.NoError(t, f.store.Save(ctx, &domain.Progress{User: "bob", Score: 500, Locked: []string{}}))

	id, snap, err := f.svc.Start(ctx, "bob", "1")
	require.NoError(t, err)
	assert.Equal(t, 500, snap.Score)

	_, err = f.svc.Place(ctx, id, domain.Pos{Row: 0, Col: 2})
	require.NoError(t, err)
	p, err := f.store.Load(ctx, "bob")
	require.NoError(t, err)
	assert.Equal(t, 650, p.Score)
}

func TestDefeatAndAbortKeepProgress(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	require.NoError(t, f.store.Save(ctx, &domain.Progress{User: "carol", Score: 80, Locked: []string{}}))

	id, _, err := f.svc.Start(ctx, "carol", "2")
	require.NoError(t, err)
	snap, err := f.svc.Place(ctx, id, domain.Pos{Row: 0, Col: 0})
	require.NoError(t, err)
	assert.Equal(t, domain.Defeat, snap.State)
	out, done, err := f.svc.Outcome(ctx, id)
	require.NoError(t, err)
	require.True(t, done)
	assert.Equal(t, 80, out.Score)

	id, snap, err = f.svc.Start(ctx, "carol", "3")
	require.NoError(t, err)
	assert.Equal(t, domain.Defeat, snap.State)

	id, _, err = f.svc.Start(ctx, "carol", "1")
	require.NoError(t, err)
	out, err = f.svc.Abort(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, domain.Aborted, out.State)
	assert.Equal(t, 80, out.Score)

	p, err := f.store.Load(ctx, "carol")
	require.NoError(t, err)
	assert.Equal(t, 80, p.Score)
}

func TestUnknownSessionAndLevel(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	_, err := f.svc.Snapshot(ctx, "nope")
	assert.True(t, errors.Is(err, domain.ErrSessionNotFound))

	require.NoError(t, f.store.Save(ctx, &domain.Progress{User: "dan", Locked: []string{}}))
	_, _, err = f.svc.Start(ctx, "dan", "42")
	assert.True(t, errors.Is(err, domain.ErrLevelNotFound))
}

func TestRejectedPlacementPassesThrough(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	id, before, err := f.svc.Start(ctx, "erin", "1")
	require.NoError(t, err)

	_, err = f.svc.Place(ctx, id, domain.Pos{Row: 0, Col: 0})
	assert.True(t, errors.Is(err, domain.ErrPlacementRejected))
	after, err := f.svc.Snapshot(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, before, after)
}

func TestHintSuggestsWinningDrop(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	id, _, err := f.svc.Start(ctx, "frank", "1")
	require.NoError(t, err)

	h, ok, err := f.svc.Hint(ctx, id)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, domain.Pos{Row: 0, Col: 2}, h.Placement.Origin)
	assert.Equal(t, 3, h.Cleared)

	fit, err := f.svc.Fit(ctx, id, h.Placement.Origin)
	require.NoError(t, err)
	assert.True(t, fit.OK)
}

func TestTickAllPublishesDecay(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	id, _, err := f.svc.Start(ctx, "gina", "1")
	require.NoError(t, err)

	ch, cancel, err := f.svc.Subscribe(id)
	require.NoError(t, err)
	defer cancel()

	assert.Equal(t, 0, f.svc.TickAll(t0.Add(30*time.Second)))
	assert.Equal(t, 1, f.svc.TickAll(t0.Add(60*time.Second)))

	select {
	case snap := <-ch:
		assert.Equal(t, "As", snap.Grid[0][0].Code())
		assert.Equal(t, "As", snap.Grid[2][2].Code())
	default:
		t.Fatal("no snapshot published")
	}
}

func TestSweep(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	won, _, err := f.svc.Start(ctx, "hank", "1")
	require.NoError(t, err)
	_, err = f.svc.Place(ctx, won, domain.Pos{Row: 0, Col: 2})
	require.NoError(t, err)

	idle, _, err := f.svc.Start(ctx, "ivy", "1")
	require.NoError(t, err)
	ch, _, err := f.svc.Subscribe(idle)
	require.NoError(t, err)

	assert.Equal(t, 1, f.svc.Sweep(ctx, t0.Add(time.Minute)))
	assert.Equal(t, []string{idle}, f.svc.Sessions())

	assert.Equal(t, 1, f.svc.Sweep(ctx, t0.Add(2*time.Hour)))
	assert.Empty(t, f.svc.Sessions())
	_, open := <-ch
	assert.False(t, open)

	p, err := f.svc.LoadProgress(ctx, "ivy")
	require.NoError(t, err)
	assert.Equal(t, 0, p.Score)
}

func TestSubscribeRacingSweepIsAlwaysClosed(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	for i := 0; i < 50; i++ {
		id, _, err := f.svc.Start(ctx, "jo", "1")
		require.NoError(t, err)

		var wg sync.WaitGroup
		var ch <-chan domain.Snapshot
		var subErr error
		wg.Add(2)
		go func() {
			defer wg.Done()
			ch, _, subErr = f.svc.Subscribe(id)
		}()
		go func() {
			defer wg.Done()
			f.svc.Sweep(ctx, t0.Add(2*time.Hour))
		}()
		wg.Wait()
		require.Empty(t, f.svc.Sessions())

		if subErr != nil {
			assert.True(t, errors.Is(subErr, domain.ErrSessionNotFound))
			continue
		}
		select {
		case _, open := <-ch:
			assert.False(t, open)
		case <-time.After(time.Second):
			t.Fatalf("subscription to swept session %s never closed", id)
		}
	}
}

func TestCatalystNeedsBonus(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	id, _, err := f.svc.Start(ctx, "jo", "1")
	require.NoError(t, err)
	_, err = f.svc.ActivateCatalyst(ctx, id, domain.Pos{})
	assert.True(t, errors.Is(err, domain.ErrCatalystUnavailable))
}
