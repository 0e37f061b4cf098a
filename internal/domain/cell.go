package domain

import (
	"fmt"
	"strings"
)

// Cell codes used by level files and snapshots.
const (
	CodeEmpty      = "0"
	CodeBorder     = "b"
	CodeDecorative = "e"
	CodeOld        = "o"
	CodeCatalyst   = "sul"

	suffixSpoilt = 's'
	suffixLocked = 'l'
	suffixOld    = 'o'
)

// Kind names a material type, e.g. "1" for mercury in the bundled levels.
type Kind string

// Valid reports whether k can be used as a material kind: 1-8 ASCII letters or
// digits, not a reserved cell code and not ending in a variant suffix.
func (k Kind) Valid() bool {
	s := string(k)
	if len(s) == 0 || len(s) > 8 {
		return false
	}
	switch s {
	case CodeEmpty, CodeBorder, CodeDecorative, CodeOld, CodeCatalyst:
		return false
	}
	for i := 0; i < len(s); i++ {
		ch := s[i]
		if !(ch >= 'a' && ch <= 'z' || ch >= 'A' && ch <= 'Z' || ch >= '0' && ch <= '9') {
			return false
		}
	}
	if len(s) > 1 {
		switch s[len(s)-1] {
		case suffixSpoilt, suffixLocked, suffixOld:
			return false
		}
	}
	return true
}

// Cell is one grid square. Kind is meaningful for Element and Locked, Decay only
// for Element.
type Cell struct {
	Type  CellType
	Kind  Kind
	Decay Decay
}

func EmptyCell() Cell      { return Cell{} }
func BorderCell() Cell     { return Cell{Type: Border} }
func DecorativeCell() Cell { return Cell{Type: Decorative} }
func CatalystCell() Cell   { return Cell{Type: Catalyst} }
func LockedCell(k Kind) Cell {
	return Cell{Type: Locked, Kind: k}
}
func ElementCell(k Kind, d Decay) Cell {
	return Cell{Type: Element, Kind: k, Decay: d}
}

func (c Cell) IsEmpty() bool { return c.Type == Empty }

// Static cells never mutate and never take part in matches.
func (c Cell) Static() bool { return c.Type == Border || c.Type == Decorative }

// Material returns the kind an Element contributes to a match, regardless of its
// decay stage. Old cells loaded from the bare "o" code carry no kind.
func (c Cell) Material() (Kind, bool) {
	if c.Type != Element || c.Kind == "" {
		return "", false
	}
	return c.Kind, true
}

// Code renders the cell in level-file notation.
func (c Cell) Code() string {
	switch c.Type {
	case Empty:
		return CodeEmpty
	case Border:
		return CodeBorder
	case Decorative:
		return CodeDecorative
	case Catalyst:
		return CodeCatalyst
	case Locked:
		return string(c.Kind) + string(suffixLocked)
	case Element:
		switch c.Decay {
		case Spoilt:
			return string(c.Kind) + string(suffixSpoilt)
		case Old:
			if c.Kind == "" {
				return CodeOld
			}
			return string(c.Kind) + string(suffixOld)
		default:
			return string(c.Kind)
		}
	}
	return "?"
}

func (c Cell) String() string { return c.Code() }

// ParseCell decodes a level-file cell code.
func ParseCell(code string) (Cell, error) {
	code = strings.TrimSpace(code)
	switch code {
	case CodeEmpty:
		return EmptyCell(), nil
	case CodeBorder:
		return BorderCell(), nil
	case CodeDecorative:
		return DecorativeCell(), nil
	case CodeCatalyst:
		return CatalystCell(), nil
	case CodeOld:
		return ElementCell("", Old), nil
	}
	if k := Kind(code); k.Valid() {
		return ElementCell(k, Fresh), nil
	}
	if len(code) > 1 {
		k := Kind(code[:len(code)-1])
		if k.Valid() {
			switch code[len(code)-1] {
			case suffixSpoilt:
				return ElementCell(k, Spoilt), nil
			case suffixLocked:
				return LockedCell(k), nil
			case suffixOld:
				return ElementCell(k, Old), nil
			}
		}
	}
	return Cell{}, fmt.Errorf("unknown cell code %q", code)
}

func (c Cell) MarshalText() ([]byte, error) { return []byte(c.Code()), nil }

func (c *Cell) UnmarshalText(b []byte) error {
	parsed, err := ParseCell(string(b))
	if err != nil {
		return err
	}
	*c = parsed
	return nil
}
