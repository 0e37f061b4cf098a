package domain

import (
	"encoding/json"
	"fmt"
)

// MaxFigureSize is the largest figure the generator's shape table covers.
const MaxFigureSize = 4

// CellCode is a level-file cell. Files written by hand mix numbers and strings
// ([0, "b", 1]), so both decode.
type CellCode string

func (c *CellCode) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err == nil {
		*c = CellCode(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return fmt.Errorf("cell code must be a string or number: %s", string(b))
	}
	*c = CellCode(n.String())
	return nil
}

// LevelDefinition is the level file as supplied by a loader.
type LevelDefinition struct {
	ID            string         `json:"id" yaml:"id"`
	Name          string         `json:"name,omitempty" yaml:"name,omitempty"`
	Size          int            `json:"size,omitempty" yaml:"size,omitempty"`
	Field         [][]CellCode   `json:"field" yaml:"field"`
	Elements      []string       `json:"elements" yaml:"elements"`
	Spoilt        []string       `json:"spoilt,omitempty" yaml:"spoilt,omitempty"`
	Stable        []string       `json:"stable,omitempty" yaml:"stable,omitempty"`
	Goal          map[string]int `json:"goal" yaml:"goal"`
	FigureMaxSize int            `json:"figure_max_size" yaml:"figure_max_size"`
	Substances    bool           `json:"substances,omitempty" yaml:"substances,omitempty"`
	Research      string         `json:"research,omitempty" yaml:"research,omitempty"`
	Background    string         `json:"bg_image,omitempty" yaml:"bg_image,omitempty"`
}

// Level is a validated level ready to start a session.
type Level struct {
	ID            string
	Name          string
	Grid          Grid
	Palette       []Kind
	Spoilable     map[Kind]bool
	Stable        map[Kind]bool
	Goal          Goal
	FigureMaxSize int
	Substances    bool
	Research      string
}

// Compile validates d and converts it to a Level. Every failure wraps
// ErrInvalidLevelDefinition.
func (d *LevelDefinition) Compile() (*Level, error) {
	invalid := func(format string, args ...any) error {
		return fmt.Errorf("%w: level %q: %s", ErrInvalidLevelDefinition, d.ID, fmt.Sprintf(format, args...))
	}

	if d.ID == "" {
		return nil, invalid("missing id")
	}
	n := len(d.Field)
	if n == 0 {
		return nil, invalid("missing field")
	}
	if d.Size != 0 && d.Size != n {
		return nil, invalid("field has %d rows, size is %d", n, d.Size)
	}
	grid := NewGrid(n)
	for r, row := range d.Field {
		if len(row) != n {
			return nil, invalid("field row %d has %d cells, want %d", r, len(row), n)
		}
		for c, code := range row {
			cell, err := ParseCell(string(code))
			if err != nil {
				return nil, invalid("field[%d][%d]: %v", r, c, err)
			}
			grid[r][c] = cell
		}
	}

	if len(d.Elements) == 0 {
		return nil, invalid("missing elements palette")
	}
	palette := make([]Kind, 0, len(d.Elements))
	for i, e := range d.Elements {
		k := Kind(e)
		if !k.Valid() {
			return nil, invalid("elements[%d]: bad kind %q", i, e)
		}
		palette = append(palette, k)
	}

	spoilable, err := kindSet(d.Spoilt)
	if err != nil {
		return nil, invalid("spoilt: %v", err)
	}
	stable, err := kindSet(d.Stable)
	if err != nil {
		return nil, invalid("stable: %v", err)
	}

	if len(d.Goal) == 0 {
		return nil, invalid("missing goal")
	}
	goal := make(Goal, len(d.Goal))
	for k, q := range d.Goal {
		if !Kind(k).Valid() {
			return nil, invalid("goal: bad kind %q", k)
		}
		if q < 0 {
			return nil, invalid("goal[%s]: negative quantity %d", k, q)
		}
		goal[Kind(k)] = q
	}

	if d.FigureMaxSize < 1 || d.FigureMaxSize > MaxFigureSize {
		return nil, invalid("figure_max_size %d out of range 1..%d", d.FigureMaxSize, MaxFigureSize)
	}

	return &Level{
		ID:            d.ID,
		Name:          d.Name,
		Grid:          grid,
		Palette:       palette,
		Spoilable:     spoilable,
		Stable:        stable,
		Goal:          goal,
		FigureMaxSize: d.FigureMaxSize,
		Substances:    d.Substances,
		Research:      d.Research,
	}, nil
}

func kindSet(names []string) (map[Kind]bool, error) {
	out := make(map[Kind]bool, len(names))
	for _, name := range names {
		k := Kind(name)
		if !k.Valid() {
			return nil, fmt.Errorf("bad kind %q", name)
		}
		out[k] = true
	}
	return out, nil
}
