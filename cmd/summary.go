package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/pable/go-chess-forensics/internal/storage"
)

// summaryCmd displays a high-level overview of the database.
var summaryCmd = &cobra.Command{
	Use:   "summary",
	Short: "Show a high-level overview of the database",
	Long: `Display aggregate statistics over all analyzed games: game and
player counts, average accuracy and the number of high-risk players.`,
	Args: cobra.NoArgs,
	RunE: runSummary,
}

func runSummary(cmd *cobra.Command, args []string) error {
	db, err := storage.Open(dbPath)
	if err != nil {
		return fmt.Errorf("open storage: %w", err)
	}
	defer db.Close()

	ov, err := db.GetOverview()
	if err != nil {
		return fmt.Errorf("get overview: %w", err)
	}
	if ov.Games == 0 {
		fmt.Fprintln(os.Stdout, "No games analyzed yet. Run 'chessforensics analyze <game.pgn>' to add one.")
		return nil
	}

	avgAcc, avgRisk := "—", "—"
	if ov.AvgAccuracy != nil {
		avgAcc = fmt.Sprintf("%.1f", *ov.AvgAccuracy)
	}
	if ov.AvgRiskScore != nil {
		avgRisk = fmt.Sprintf("%.1f", *ov.AvgRiskScore)
	}

	fmt.Fprintf(os.Stdout, "\n=== Database Summary ===\n\n")
	fmt.Fprintf(os.Stdout, "  Games analyzed     : %d\n", ov.Games)
	fmt.Fprintf(os.Stdout, "  Player records     : %d\n", ov.Players)
	fmt.Fprintf(os.Stdout, "  High-risk players  : %d\n", ov.HighRiskPlayers)
	fmt.Fprintf(os.Stdout, "  Average accuracy   : %s\n", avgAcc)
	fmt.Fprintf(os.Stdout, "  Average risk score : %s\n", avgRisk)
	fmt.Fprintln(os.Stdout)
	return nil
}
