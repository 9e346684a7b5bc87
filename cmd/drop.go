package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/pable/go-chess-forensics/internal/storage"
)

var dropCmd = &cobra.Command{
	Use:   "drop <hash-prefix>",
	Short: "Delete a stored game and all its analysis data",
	Args:  cobra.ExactArgs(1),
	RunE:  runDrop,
}

func runDrop(cmd *cobra.Command, args []string) error {
	db, err := storage.Open(dbPath)
	if err != nil {
		return fmt.Errorf("open storage: %w", err)
	}
	defer db.Close()

	summary, err := db.GetGameByPrefix(args[0])
	if err != nil {
		return fmt.Errorf("query game: %w", err)
	}
	if summary == nil {
		fmt.Fprintf(os.Stderr, "No game found with hash prefix %q\n", args[0])
		return nil
	}

	if err := db.DeleteGame(summary.Hash); err != nil {
		return fmt.Errorf("delete game: %w", err)
	}
	fmt.Fprintf(os.Stdout, "Deleted %s (%s vs %s, %s)\n",
		summary.Hash[:12], summary.White, summary.Black, summary.Date)
	return nil
}
