package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/pable/go-chess-forensics/internal/storage"
)

var showMoves bool

var showCmd = &cobra.Command{
	Use:   "show <hash-prefix>",
	Short: "Show stored analysis by game hash prefix",
	Args:  cobra.ExactArgs(1),
	RunE:  runShow,
}

func init() {
	showCmd.Flags().BoolVar(&showMoves, "moves", false, "include the per-move analysis sheet")
}

func runShow(cmd *cobra.Command, args []string) error {
	prefix := args[0]

	db, err := storage.Open(dbPath)
	if err != nil {
		return fmt.Errorf("open storage: %w", err)
	}
	defer db.Close()

	summary, err := db.GetGameByPrefix(prefix)
	if err != nil {
		return fmt.Errorf("query game: %w", err)
	}
	if summary == nil {
		fmt.Fprintf(os.Stderr, "No game found with hash prefix %q\n", prefix)
		return nil
	}
	return showByPrefix(db, summary.Hash, showMoves)
}
