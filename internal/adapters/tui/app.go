// Package tui is a terminal front-end for one level: cursor-driven placement
// on a tcell screen, with decay ticks driving redraws.
package tui

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/gdamore/tcell/v2"
	"go.uber.org/zap"

	"svw.info/alchemy/internal/domain"
	"svw.info/alchemy/internal/usecase"
)

// App plays a single session. It is driven from one goroutine.
type App struct {
	Screen  tcell.Screen
	UC      *usecase.Service
	Session string
	Sound   Sound
	Logger  *zap.Logger
	// Tick is the decay and redraw interval.
	Tick time.Duration
	Now  func() time.Time

	cursor  domain.Pos
	snap    domain.Snapshot
	fit     domain.Fit
	message string
	outcome *domain.Outcome
}

func New(screen tcell.Screen, uc *usecase.Service, sessionID string, logger *zap.Logger) *App {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &App{
		Screen:  screen,
		UC:      uc,
		Session: sessionID,
		Sound:   Silent{},
		Logger:  logger,
		Tick:    100 * time.Millisecond,
		Now:     time.Now,
	}
}

// Run draws and handles input until the player quits or ctx ends. It returns
// the session outcome.
func (a *App) Run(ctx context.Context) (domain.Outcome, error) {
	if err := a.refresh(ctx); err != nil {
		return domain.Outcome{}, err
	}
	a.cursor = domain.Pos{Row: a.snap.Grid.Size() / 2, Col: a.snap.Grid.Size() / 2}
	a.updateFit(ctx)
	a.draw()

	events := make(chan tcell.Event, 16)
	quit := make(chan struct{})
	defer close(quit)
	go func() {
		for {
			ev := a.Screen.PollEvent()
			if ev == nil {
				return
			}
			select {
			case events <- ev:
			case <-quit:
				return
			}
		}
	}()

	ticker := time.NewTicker(a.Tick)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			out, _ := a.UC.Abort(context.Background(), a.Session)
			return out, ctx.Err()
		case ev := <-events:
			if !a.Handle(ctx, ev) {
				out, _, err := a.UC.Outcome(ctx, a.Session)
				return out, err
			}
			a.draw()
		case <-ticker.C:
			if a.outcome == nil {
				a.UC.TickAll(a.Now())
				_ = a.refresh(ctx)
			}
			a.draw()
		}
	}
}

func (a *App) refresh(ctx context.Context) error {
	snap, err := a.UC.Snapshot(ctx, a.Session)
	if err != nil {
		return err
	}
	a.snap = snap
	return nil
}

func (a *App) updateFit(ctx context.Context) {
	fit, err := a.UC.Fit(ctx, a.Session, a.cursor)
	if err != nil {
		a.fit = domain.Fit{}
		return
	}
	a.fit = fit
}

// Handle applies one input event and reports whether the app keeps running.
func (a *App) Handle(ctx context.Context, ev tcell.Event) bool {
	switch ev := ev.(type) {
	case *tcell.EventResize:
		a.Screen.Sync()
		return true
	case *tcell.EventKey:
		if a.outcome != nil {
			return false
		}
		return a.handleKey(ctx, ev)
	}
	return true
}

func (a *App) handleKey(ctx context.Context, ev *tcell.EventKey) bool {
	a.message = ""
	switch ev.Key() {
	case tcell.KeyEscape, tcell.KeyCtrlC:
		out, err := a.UC.Abort(ctx, a.Session)
		if err != nil {
			a.Logger.Warn("abort failed", zap.Error(err))
		}
		a.outcome = &out
		return false
	case tcell.KeyUp:
		a.move(-1, 0)
	case tcell.KeyDown:
		a.move(1, 0)
	case tcell.KeyLeft:
		a.move(0, -1)
	case tcell.KeyRight:
		a.move(0, 1)
	case tcell.KeyEnter:
		a.place(ctx)
	case tcell.KeyRune:
		switch ev.Rune() {
		case 'k':
			a.move(-1, 0)
		case 'j':
			a.move(1, 0)
		case 'h':
			a.move(0, -1)
		case 'l':
			a.move(0, 1)
		case ' ':
			a.place(ctx)
		case 'r':
			a.command(func() (domain.Snapshot, error) { return a.UC.Rotate(ctx, a.Session) })
		case 'c':
			a.catalyst(ctx)
		case '?':
			a.hint(ctx)
		case 'q':
			out, _ := a.UC.Abort(ctx, a.Session)
			a.outcome = &out
			return false
		}
	}
	a.updateFit(ctx)
	return true
}

func (a *App) move(dr, dc int) {
	n := a.snap.Grid.Size()
	p := a.cursor.Add(domain.Pos{Row: dr, Col: dc})
	if p.Row < 0 || p.Col < 0 || p.Row >= n || p.Col >= n {
		return
	}
	a.cursor = p
}

func (a *App) command(run func() (domain.Snapshot, error)) {
	snap, err := run()
	if err != nil {
		a.message = err.Error()
		return
	}
	a.snap = snap
}

func (a *App) place(ctx context.Context) {
	before := a.snap.Score
	snap, err := a.UC.Place(ctx, a.Session, a.cursor)
	if err != nil {
		if errors.Is(err, domain.ErrPlacementRejected) {
			a.message = "does not fit here"
		} else {
			a.message = err.Error()
		}
		return
	}
	a.snap = snap
	if snap.Score > before {
		a.Sound.Match()
	}
	switch snap.State {
	case domain.Victory:
		a.Sound.Victory()
		a.finish(ctx)
	case domain.Defeat:
		a.Sound.Defeat()
		a.finish(ctx)
	}
}

func (a *App) finish(ctx context.Context) {
	out, done, err := a.UC.Outcome(ctx, a.Session)
	if err != nil || !done {
		return
	}
	a.outcome = &out
	a.message = "press any key"
}

// catalyst converts the first convertible slot of the current figure.
func (a *App) catalyst(ctx context.Context) {
	for r, row := range a.snap.Current {
		for c, cell := range row {
			if cell.IsEmpty() || cell.Type == domain.Catalyst {
				continue
			}
			a.command(func() (domain.Snapshot, error) {
				return a.UC.ActivateCatalyst(ctx, a.Session, domain.Pos{Row: r, Col: c})
			})
			return
		}
	}
	a.message = "nothing to convert"
}

// hint rotates the figure as suggested and moves the cursor there.
func (a *App) hint(ctx context.Context) {
	h, ok, err := a.UC.Hint(ctx, a.Session)
	if err != nil {
		a.message = err.Error()
		return
	}
	if !ok {
		a.message = "no placement available"
		return
	}
	for i := 0; i < h.Placement.Rotation; i++ {
		a.command(func() (domain.Snapshot, error) { return a.UC.Rotate(ctx, a.Session) })
	}
	a.cursor = h.Placement.Origin
	a.message = h.Message
}

// Cursor is the grid cell the figure's top-left slot sits on.
func (a *App) Cursor() domain.Pos { return a.cursor }

// Message is the status line text.
func (a *App) Message() string { return a.message }

func (a *App) statusLines() []string {
	lines := []string{
		fmt.Sprintf("Level  %s", a.snap.LevelID),
		fmt.Sprintf("Score  %d", a.snap.Score),
		fmt.Sprintf("Bonus  %d", a.snap.Bonus),
		"",
		"Goal",
	}
	for _, k := range a.snap.Goal.Kinds() {
		lines = append(lines, fmt.Sprintf("  %-4s %d", k, a.snap.Goal[k]))
	}
	if a.outcome != nil {
		lines = append(lines, "", fmt.Sprintf("%s  score %d", a.outcome.State, a.outcome.Score))
	}
	return lines
}
