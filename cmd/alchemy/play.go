package main

import (
	"context"
	"errors"
	"fmt"
	"os/signal"
	"syscall"

	"github.com/gdamore/tcell/v2"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"svw.info/alchemy/internal/adapters/tui"
)

var (
	playUser  string
	playLevel string
	playSound bool
)

var playCmd = &cobra.Command{
	Use:   "play",
	Short: "Play a level in the terminal",
	RunE:  runPlay,
}

func init() {
	playCmd.Flags().StringVarP(&playUser, "user", "u", "player", "player name")
	playCmd.Flags().StringVarP(&playLevel, "level", "l", "", "level id (default: last unlocked)")
	playCmd.Flags().BoolVar(&playSound, "sound", false, "play sound effects")
	playCmd.Flags().StringVar(&logFile, "log-file", "alchemy.log", "log destination while the terminal is in use")
}

func runPlay(cmd *cobra.Command, args []string) error {
	uc, err := newService()
	if err != nil {
		return err
	}
	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGTERM)
	defer stop()

	level := playLevel
	if level == "" {
		metas, err := uc.ListLevels(ctx, playUser)
		if err != nil {
			return err
		}
		for _, m := range metas {
			if !m.Locked {
				level = m.ID
			}
		}
		if level == "" {
			return errors.New("no unlocked level")
		}
	}
	id, _, err := uc.Start(ctx, playUser, level)
	if err != nil {
		return err
	}

	screen, err := tcell.NewScreen()
	if err != nil {
		return fmt.Errorf("failed to create screen: %w", err)
	}
	if err := screen.Init(); err != nil {
		return fmt.Errorf("failed to initialize screen: %w", err)
	}

	app := tui.New(screen, uc, id, logger)
	app.Tick = cfg.GetTickInterval()
	if playSound {
		if b, err := tui.NewBeeper(); err != nil {
			logger.Warn("sound disabled", zap.Error(err))
		} else {
			app.Sound = b
		}
	}
	defer app.Sound.Close()

	out, err := app.Run(ctx)
	screen.Fini()
	if err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Level %s: %s, score %d\n", out.LevelID, out.State, out.Score)
	return nil
}
