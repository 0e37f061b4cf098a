// Package decay ages unclaimed material: Fresh -> Spoilt -> Old.
package decay

import (
	"time"

	"go.uber.org/zap"

	"svw.info/alchemy/internal/board"
	"svw.info/alchemy/internal/domain"
	"svw.info/alchemy/internal/ports"
)

// Scheduler advances decay on each clock tick. It never resolves matches.
type Scheduler struct {
	Lifetime time.Duration
	// Jitter is added in whole seconds, uniformly from 0 to Jitter inclusive.
	Jitter time.Duration
	Rand   ports.Rand
	Logger *zap.Logger
}

func NewScheduler(lifetime, jitter time.Duration, r ports.Rand, logger *zap.Logger) *Scheduler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Scheduler{Lifetime: lifetime, Jitter: jitter, Rand: r, Logger: logger}
}

// Expiry is the instant a timer armed at now runs out.
func (s *Scheduler) Expiry(now time.Time) time.Time {
	at := now.Add(s.Lifetime)
	if n := int(s.Jitter / time.Second); n > 0 {
		at = at.Add(time.Duration(s.Rand.IntN(n+1)) * time.Second)
	}
	return at
}

// Armer returns the arming policy for cells written at now: fresh or spoilt
// Elements of kinds outside stable get a timer, everything else does not.
func (s *Scheduler) Armer(now time.Time, stable map[domain.Kind]bool) board.ArmFunc {
	return func(c domain.Cell) (time.Time, bool) {
		if c.Type != domain.Element || c.Decay == domain.Old || c.Kind == "" || stable[c.Kind] {
			return time.Time{}, false
		}
		return s.Expiry(now), true
	}
}

// Tick transitions every cell whose timer expired at or before now and reports
// whether any cell changed.
func (s *Scheduler) Tick(b *board.Board, now time.Time) bool {
	spoiled, aged := 0, 0
	for _, p := range b.Armed() {
		if b.Expiry(p).After(now) {
			continue
		}
		cell, _ := b.At(p)
		if cell.Type == domain.Element && cell.Decay == domain.Fresh {
			b.SetDecay(p, domain.Spoilt)
			b.Arm(p, s.Expiry(now))
			spoiled++
			continue
		}
		if b.SetDecay(p, domain.Old) {
			aged++
		}
		b.Disarm(p)
	}
	if spoiled+aged == 0 {
		return false
	}
	s.Logger.Debug("material decayed",
		zap.Int("spoiled", spoiled),
		zap.Int("aged", aged),
		zap.Time("now", now))
	return true
}
