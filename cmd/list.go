package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/pable/go-chess-forensics/internal/storage"
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List all analyzed games",
	Args:  cobra.NoArgs,
	RunE:  runList,
}

func runList(cmd *cobra.Command, args []string) error {
	db, err := storage.Open(dbPath)
	if err != nil {
		return fmt.Errorf("open storage: %w", err)
	}
	defer db.Close()

	games, err := db.ListGames()
	if err != nil {
		return fmt.Errorf("list games: %w", err)
	}
	if len(games) == 0 {
		fmt.Fprintln(os.Stdout, "No games analyzed yet. Run 'chessforensics analyze <game.pgn>' to add one.")
		return nil
	}

	fmt.Fprintf(os.Stdout, "%-14s  %-16s  %-16s  %-7s  %-10s  %-8s  %5s\n",
		"HASH", "WHITE", "BLACK", "RESULT", "DATE", "TC", "PLIES")
	fmt.Fprintf(os.Stdout, "%-14s  %-16s  %-16s  %-7s  %-10s  %-8s  %5s\n",
		"──────────────", "────────────────", "────────────────", "───────", "──────────", "────────", "─────")
	for _, g := range games {
		tc := g.TimeControl
		if tc == "" {
			tc = "—"
		}
		fmt.Fprintf(os.Stdout, "%-14s  %-16s  %-16s  %-7s  %-10s  %-8s  %5d\n",
			g.Hash[:12], clip(g.White, 16), clip(g.Black, 16), g.Result, g.Date, tc, g.PlyCount)
	}
	return nil
}

func clip(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n-1] + "…"
}
