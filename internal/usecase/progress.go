package usecase

import (
	"context"
	"errors"
	"io/fs"

	"go.uber.org/zap"

	"svw.info/alchemy/internal/domain"
)

// newProgress is the record of a user who never finished a level: no score
// and every level but the first locked.
func newProgress(user string, levels []domain.LevelMeta) *domain.Progress {
	p := &domain.Progress{User: user, Locked: []string{}}
	for i, m := range levels {
		if i > 0 {
			p.Locked = append(p.Locked, m.ID)
		}
	}
	return p
}

// LoadProgress returns the stored record for user, or a fresh one.
func (u *Service) LoadProgress(ctx context.Context, user string) (*domain.Progress, error) {
	if u.Progress == nil || u.Levels == nil {
		return nil, errNotConfigured
	}
	p, err := u.Progress.Load(ctx, user)
	if err == nil {
		return p, nil
	}
	if !errors.Is(err, fs.ErrNotExist) {
		return nil, err
	}
	levels, err := u.Levels.List(ctx)
	if err != nil {
		return nil, err
	}
	return newProgress(user, levels), nil
}

// ListLevels returns the level list with lock state for user.
func (u *Service) ListLevels(ctx context.Context, user string) ([]domain.LevelMeta, error) {
	if u.Levels == nil {
		return nil, errNotConfigured
	}
	levels, err := u.Levels.List(ctx)
	if err != nil {
		return nil, err
	}
	p, err := u.LoadProgress(ctx, user)
	if err != nil {
		return nil, err
	}
	for i := range levels {
		levels[i].Locked = p.IsLocked(levels[i].ID)
	}
	return levels, nil
}

// settle writes the outcome of a finished session into the user's progress,
// exactly once per session. Only Victory changes the record.
func (u *Service) settle(ctx context.Context, e *entry) error {
	out, done := e.s.Outcome()
	if !done || !e.settled.CompareAndSwap(false, true) {
		return nil
	}
	u.Logger.Info("level finished",
		zap.String("session", e.id),
		zap.String("user", e.user),
		zap.String("level_id", out.LevelID),
		zap.Stringer("state", out.State),
		zap.Int("score", out.Score))
	if out.State != domain.Victory {
		return nil
	}

	p, err := u.LoadProgress(ctx, e.user)
	if err != nil {
		return err
	}
	p.Score = out.Score
	levels, err := u.Levels.List(ctx)
	if err != nil {
		return err
	}
	for i, m := range levels {
		if m.ID == out.LevelID && i+1 < len(levels) {
			if p.Unlock(levels[i+1].ID) {
				u.Logger.Info("level unlocked", zap.String("user", e.user), zap.String("level_id", levels[i+1].ID))
			}
			break
		}
	}
	if out.Unlocks != "" && !contains(p.Research, out.Unlocks) {
		p.Research = append(p.Research, out.Unlocks)
	}
	return u.Progress.Save(ctx, p)
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
