// Package randtest provides deterministic random sources for tests.
package randtest

// Script replays a fixed sequence of draws. Each value is reduced modulo the
// requested bound; once exhausted it keeps returning 0.
type Script struct {
	Values []int
	pos    int
}

func NewScript(values ...int) *Script { return &Script{Values: values} }

func (s *Script) IntN(n int) int {
	if n <= 0 {
		panic("randtest: IntN bound must be positive")
	}
	if s.pos >= len(s.Values) {
		return 0
	}
	v := s.Values[s.pos] % n
	s.pos++
	if v < 0 {
		v += n
	}
	return v
}

// Used reports how many scripted values were consumed.
func (s *Script) Used() int { return s.pos }
