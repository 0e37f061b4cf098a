package domain

import "sort"

// Pos identifies a grid cell or a figure slot.
type Pos struct {
	Row int `json:"row"`
	Col int `json:"col"`
}

func (p Pos) Add(d Pos) Pos { return Pos{Row: p.Row + d.Row, Col: p.Col + d.Col} }

// Grid is a row-major N×N matrix of cells.
type Grid [][]Cell

// NewGrid returns an n×n grid of empty cells.
func NewGrid(n int) Grid {
	g := make(Grid, n)
	for r := range g {
		g[r] = make([]Cell, n)
	}
	return g
}

func (g Grid) Size() int { return len(g) }

func (g Grid) In(p Pos) bool {
	return p.Row >= 0 && p.Col >= 0 && p.Row < len(g) && p.Col < len(g[p.Row])
}

func (g Grid) Clone() Grid {
	out := make(Grid, len(g))
	for r := range g {
		out[r] = append([]Cell(nil), g[r]...)
	}
	return out
}

// Figure is a rows×cols piece; Empty cells are blank slots.
type Figure [][]Cell

func (f Figure) Rows() int { return len(f) }

func (f Figure) Cols() int {
	if len(f) == 0 {
		return 0
	}
	return len(f[0])
}

// Size counts occupied slots.
func (f Figure) Size() int {
	n := 0
	for _, row := range f {
		for _, c := range row {
			if !c.IsEmpty() {
				n++
			}
		}
	}
	return n
}

// Occupied lists the non-blank slots in row-major order, the order they are
// placed in.
func (f Figure) Occupied() []Cell {
	out := make([]Cell, 0, f.Size())
	for _, row := range f {
		for _, c := range row {
			if !c.IsEmpty() {
				out = append(out, c)
			}
		}
	}
	return out
}

func (f Figure) Clone() Figure {
	out := make(Figure, len(f))
	for r := range f {
		out[r] = append([]Cell(nil), f[r]...)
	}
	return out
}

func (f Figure) Equal(o Figure) bool {
	if len(f) != len(o) {
		return false
	}
	for r := range f {
		if len(f[r]) != len(o[r]) {
			return false
		}
		for c := range f[r] {
			if f[r][c] != o[r][c] {
				return false
			}
		}
	}
	return true
}

// Goal maps a kind to the remaining quantity required to win.
type Goal map[Kind]int

func (g Goal) Clone() Goal {
	out := make(Goal, len(g))
	for k, v := range g {
		out[k] = v
	}
	return out
}

// Done reports whether every tracked quantity reached zero.
func (g Goal) Done() bool {
	for _, v := range g {
		if v > 0 {
			return false
		}
	}
	return true
}

// Decrement lowers k by one, clamped at zero. It reports whether k is tracked.
func (g Goal) Decrement(k Kind) bool {
	v, ok := g[k]
	if !ok {
		return false
	}
	if v <= 1 {
		g[k] = 0
	} else {
		g[k] = v - 1
	}
	return true
}

// Kinds returns the tracked kinds in a stable order.
func (g Goal) Kinds() []Kind {
	out := make([]Kind, 0, len(g))
	for k := range g {
		out = append(out, k)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// Ledger is the mutable score state a resolver writes into.
type Ledger struct {
	Score int  `json:"score"`
	Bonus int  `json:"bonus"`
	Goal  Goal `json:"goal"`
}

// ScoreRules is level/version configuration for match scoring.
type ScoreRules struct {
	PerCell int
	// CountOrigin includes the placed cell itself in the scored run length.
	CountOrigin bool
}

// Fit is the outcome of testing a figure at an origin. Cells mirrors the figure;
// blank slots are false. Shadow lists grid cells the fitting slots would cover and
// Darken lists figure slots that do not fit. Both are advisory.
type Fit struct {
	OK     bool     `json:"ok"`
	Cells  [][]bool `json:"cells"`
	Shadow []Pos    `json:"shadow,omitempty"`
	Darken []Pos    `json:"darken,omitempty"`
}

// Placement is a rotation count (0-3, clockwise quarter turns) and an origin.
type Placement struct {
	Rotation int `json:"rotation"`
	Origin   Pos `json:"origin"`
}

// Hint describes a suggested placement for the UI.
type Hint struct {
	Placement Placement `json:"placement"`
	Cleared   int       `json:"cleared"`
	Message   string    `json:"message,omitempty"`
}

// Snapshot is a read-only copy of a session for the presentation layer.
type Snapshot struct {
	LevelID    string `json:"level"`
	State      State  `json:"state"`
	Grid       Grid   `json:"grid"`
	Current    Figure `json:"current"`
	Next       Figure `json:"next"`
	Score      int    `json:"score"`
	Bonus      int    `json:"bonus"`
	Goal       Goal   `json:"goal"`
	Substances bool   `json:"substances,omitempty"`
}

// Outcome is what a finished session reports. Score is the in-level score on
// Victory and the level-entry score otherwise.
type Outcome struct {
	LevelID string `json:"level"`
	State   State  `json:"state"`
	Score   int    `json:"score"`
	Bonus   int    `json:"bonus"`
	Unlocks string `json:"unlocks,omitempty"`
	Reason  string `json:"reason,omitempty"`
}

// Progress is a persisted per-user record exchanged between sessions.
type Progress struct {
	User     string   `json:"user"`
	Score    int      `json:"score"`
	Locked   []string `json:"locked"`
	Research []string `json:"research,omitempty"`
}

func (p *Progress) IsLocked(levelID string) bool {
	for _, id := range p.Locked {
		if id == levelID {
			return true
		}
	}
	return false
}

// Unlock removes levelID from the locked list and reports whether it was locked.
func (p *Progress) Unlock(levelID string) bool {
	for i, id := range p.Locked {
		if id == levelID {
			p.Locked = append(p.Locked[:i], p.Locked[i+1:]...)
			return true
		}
	}
	return false
}

// LevelMeta is a lightweight listing entry.
type LevelMeta struct {
	ID     string `json:"id"`
	Name   string `json:"name,omitempty"`
	Locked bool   `json:"locked"`
}
