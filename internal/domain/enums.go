package domain

import "fmt"

// CellType tags which variant a Cell holds.
type CellType uint8

const (
	Empty CellType = iota
	Border
	Decorative
	Element
	Locked
	Catalyst
)

func (t CellType) String() string {
	switch t {
	case Empty:
		return "empty"
	case Border:
		return "border"
	case Decorative:
		return "decorative"
	case Element:
		return "element"
	case Locked:
		return "locked"
	case Catalyst:
		return "catalyst"
	default:
		return fmt.Sprintf("celltype(%d)", uint8(t))
	}
}

// Decay is the age of an Element cell. Old is terminal.
type Decay uint8

const (
	Fresh Decay = iota
	Spoilt
	Old
)

func (d Decay) String() string {
	switch d {
	case Fresh:
		return "fresh"
	case Spoilt:
		return "spoilt"
	case Old:
		return "old"
	default:
		return fmt.Sprintf("decay(%d)", uint8(d))
	}
}

// State is the lifecycle of a session. Everything but Active is terminal.
type State int

const (
	Active State = iota
	Victory
	Defeat
	Aborted
)

// Terminal reports whether no further mutation is accepted.
func (s State) Terminal() bool { return s != Active }

func (s State) String() string {
	switch s {
	case Active:
		return "active"
	case Victory:
		return "victory"
	case Defeat:
		return "defeat"
	case Aborted:
		return "aborted"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

func (s State) MarshalText() ([]byte, error) { return []byte(s.String()), nil }

func (s *State) UnmarshalText(b []byte) error {
	switch string(b) {
	case "active":
		*s = Active
	case "victory":
		*s = Victory
	case "defeat":
		*s = Defeat
	case "aborted":
		*s = Aborted
	default:
		return fmt.Errorf("unknown session state %q", string(b))
	}
	return nil
}
