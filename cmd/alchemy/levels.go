package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

var levelsUser string

var levelsCmd = &cobra.Command{
	Use:   "levels",
	Short: "List levels and their lock state for a player",
	RunE: func(cmd *cobra.Command, args []string) error {
		uc, err := newService()
		if err != nil {
			return err
		}
		p, err := uc.LoadProgress(cmd.Context(), levelsUser)
		if err != nil {
			return err
		}
		metas, err := uc.ListLevels(cmd.Context(), levelsUser)
		if err != nil {
			return err
		}
		w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "ID\tNAME\tSTATUS")
		for _, m := range metas {
			status := "open"
			if m.Locked {
				status = "locked"
			}
			fmt.Fprintf(w, "%s\t%s\t%s\n", m.ID, m.Name, status)
		}
		if err := w.Flush(); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "\nscore %d", p.Score)
		if len(p.Research) > 0 {
			fmt.Fprintf(cmd.OutOrStdout(), ", research %v", p.Research)
		}
		fmt.Fprintln(cmd.OutOrStdout())
		return nil
	},
}

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Write the default configuration to --config",
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := cfg.Save(cfgFile); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "wrote %s\n", cfgFile)
		return nil
	},
}

func init() {
	levelsCmd.Flags().StringVarP(&levelsUser, "user", "u", "player", "player name")
}
