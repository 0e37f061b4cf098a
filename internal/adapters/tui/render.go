package tui

import (
	"github.com/gdamore/tcell/v2"

	"svw.info/alchemy/internal/domain"
)

const (
	gridX = 1
	gridY = 1
	cellW = 2
)

var (
	styleBase       = tcell.StyleDefault
	styleBorder     = tcell.StyleDefault.Foreground(tcell.ColorGray).Background(tcell.ColorGray)
	styleDecorative = tcell.StyleDefault.Foreground(tcell.ColorDarkSlateGray)
	styleCatalyst   = tcell.StyleDefault.Foreground(tcell.ColorFuchsia).Bold(true)
	styleLocked     = tcell.StyleDefault.Foreground(tcell.ColorBlack).Background(tcell.ColorSilver)
	styleFresh      = tcell.StyleDefault.Foreground(tcell.ColorWhite).Bold(true)
	styleSpoilt     = tcell.StyleDefault.Foreground(tcell.ColorOlive)
	styleOld        = tcell.StyleDefault.Foreground(tcell.ColorDimGray)
	styleFits       = tcell.StyleDefault.Background(tcell.ColorDarkGreen)
	styleBlocked    = tcell.StyleDefault.Background(tcell.ColorDarkRed)
	styleMessage    = tcell.StyleDefault.Foreground(tcell.ColorYellow)
)

// glyph returns the rune and style used for a cell.
func glyph(c domain.Cell) (rune, tcell.Style) {
	switch c.Type {
	case domain.Border:
		return ' ', styleBorder
	case domain.Decorative:
		return '░', styleDecorative
	case domain.Catalyst:
		return '*', styleCatalyst
	case domain.Locked:
		return kindRune(c.Kind), styleLocked
	case domain.Element:
		switch c.Decay {
		case domain.Spoilt:
			return kindRune(c.Kind), styleSpoilt
		case domain.Old:
			if c.Kind == "" {
				return 'o', styleOld
			}
			return kindRune(c.Kind), styleOld
		}
		return kindRune(c.Kind), styleFresh
	}
	return '·', styleOld
}

func kindRune(k domain.Kind) rune {
	if k == "" {
		return '?'
	}
	return rune(k[0])
}

func (a *App) put(x, y int, r rune, st tcell.Style) {
	a.Screen.SetContent(x, y, r, nil, st)
}

func (a *App) text(x, y int, s string, st tcell.Style) {
	for i, r := range []rune(s) {
		a.put(x+i, y, r, st)
	}
}

// cellAt is the screen column and row of a grid position.
func cellAt(p domain.Pos) (int, int) {
	return gridX + p.Col*cellW, gridY + p.Row
}

func (a *App) draw() {
	a.Screen.Clear()
	g := a.snap.Grid
	for r := range g {
		for c, cell := range g[r] {
			x, y := cellAt(domain.Pos{Row: r, Col: c})
			ch, st := glyph(cell)
			a.put(x, y, ch, st)
			if cell.Type == domain.Border {
				a.put(x+1, y, ' ', st)
			}
		}
	}

	// current figure under the cursor
	if a.outcome == nil {
		for r, row := range a.snap.Current {
			for c, slot := range row {
				if slot.IsEmpty() {
					continue
				}
				p := a.cursor.Add(domain.Pos{Row: r, Col: c})
				if !g.In(p) {
					continue
				}
				ch, st := glyph(slot)
				bg := styleBlocked
				if a.fit.OK {
					bg = styleFits
				}
				fg, _, _ := st.Decompose()
				x, y := cellAt(p)
				a.put(x, y, ch, bg.Foreground(fg))
			}
		}
	}

	px := gridX + g.Size()*cellW + 2
	y := gridY
	for _, line := range a.statusLines() {
		a.text(px, y, line, styleBase)
		y++
	}
	y++
	a.text(px, y, "Next", styleBase)
	y++
	for _, row := range a.snap.Next {
		for c, slot := range row {
			if slot.IsEmpty() {
				continue
			}
			ch, st := glyph(slot)
			a.put(px+2+c*cellW, y, ch, st)
		}
		y++
	}

	bottom := gridY + g.Size() + 1
	a.text(gridX, bottom, "arrows/hjkl move  r rotate  enter place  c catalyst  ? hint  q quit", styleOld)
	if a.message != "" {
		a.text(gridX, bottom+1, a.message, styleMessage)
	}
	a.Screen.Show()
}
