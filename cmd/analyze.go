package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/pable/go-chess-forensics/internal/book"
	"github.com/pable/go-chess-forensics/internal/complexity"
	"github.com/pable/go-chess-forensics/internal/engine"
	"github.com/pable/go-chess-forensics/internal/evaluator"
	"github.com/pable/go-chess-forensics/internal/metrics"
	"github.com/pable/go-chess-forensics/internal/model"
	"github.com/pable/go-chess-forensics/internal/pgn"
	"github.com/pable/go-chess-forensics/internal/report"
	"github.com/pable/go-chess-forensics/internal/risk"
	"github.com/pable/go-chess-forensics/internal/storage"
)

var (
	enginePath     string
	engineDepth    int
	engineMultiPV  int
	engineThreads  int
	engineHashMB   int
	engineTimeout  int
	skipBook       bool
	bookSpacingMS  int
	analyzeVerbose bool
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze <game.pgn>",
	Short: "Analyze a PGN game with a UCI engine and store the results",
	Args:  cobra.ExactArgs(1),
	RunE:  runAnalyze,
}

func init() {
	analyzeCmd.Flags().StringVar(&enginePath, "engine", "stockfish", "path to a UCI engine binary")
	analyzeCmd.Flags().IntVar(&engineDepth, "depth", 12, "engine search depth per position")
	analyzeCmd.Flags().IntVar(&engineMultiPV, "multipv", 3, "number of principal variations")
	analyzeCmd.Flags().IntVar(&engineThreads, "threads", 1, "engine threads")
	analyzeCmd.Flags().IntVar(&engineHashMB, "hash", 64, "engine hash table size (MB)")
	analyzeCmd.Flags().IntVar(&engineTimeout, "timeout", 30, "per-position evaluation timeout (seconds)")
	analyzeCmd.Flags().BoolVar(&skipBook, "no-book", false, "skip opening-book lookups")
	analyzeCmd.Flags().IntVar(&bookSpacingMS, "book-spacing", 50, "minimum spacing between book lookups (ms)")
	analyzeCmd.Flags().BoolVar(&analyzeVerbose, "moves", false, "print the per-move analysis sheet")
}

func runAnalyze(cmd *cobra.Command, args []string) error {
	pgnPath := args[0]

	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return fmt.Errorf("create db dir: %w", err)
	}
	db, err := storage.Open(dbPath)
	if err != nil {
		return fmt.Errorf("open storage: %w", err)
	}
	defer db.Close()

	fmt.Fprintf(os.Stdout, "Parsing %s...\n", pgnPath)
	game, err := pgn.ParseFile(pgnPath)
	if err != nil {
		return fmt.Errorf("parse pgn: %w", err)
	}

	exists, err := db.GameExists(game.Hash)
	if err != nil {
		return fmt.Errorf("check game: %w", err)
	}
	if exists {
		fmt.Fprintf(os.Stdout, "Game %s already analyzed — showing cached results.\n", game.Hash[:12])
		return showByPrefix(db, game.Hash, analyzeVerbose)
	}

	cfg := engine.Config{
		Path:        enginePath,
		Depth:       engineDepth,
		MultiPV:     engineMultiPV,
		Threads:     engineThreads,
		HashMB:      engineHashMB,
		EvalTimeout: time.Duration(engineTimeout) * time.Second,
	}
	session, err := engine.NewSession(cfg)
	if err != nil {
		return fmt.Errorf("start engine: %w", err)
	}
	defer session.Close()

	ev := &evaluator.Evaluator{
		Engine: session,
		Progress: func(done, total int) {
			fmt.Fprintf(os.Stdout, "\rEvaluating move %d/%d...", done, total)
			if done == total {
				fmt.Fprintln(os.Stdout)
			}
		},
	}
	if !skipBook {
		ev.Book = book.NewClient(time.Duration(bookSpacingMS) * time.Millisecond)
	}

	analyses, err := ev.Analyze(cmd.Context(), game)
	if err != nil {
		return fmt.Errorf("analyze game: %w", err)
	}

	white, black := metrics.Aggregate(game, analyses)
	records := []storage.PlayerRecord{
		{Metrics: white, Risk: risk.Assess(&white)},
		{Metrics: black, Risk: risk.Assess(&black)},
	}

	summary := model.GameSummary{
		Hash:        game.Hash,
		White:       game.White,
		Black:       game.Black,
		Result:      game.Result,
		Event:       game.Event,
		Date:        game.Date,
		TimeControl: game.TimeControl,
		PlyCount:    len(game.Moves),
		EngineDepth: engineDepth,
		MultiPV:     engineMultiPV,
		AnalyzedAt:  time.Now().UTC().Format(time.RFC3339),
	}

	if err := db.InsertGame(summary); err != nil {
		return fmt.Errorf("insert game: %w", err)
	}
	if err := db.InsertPlayerRecords(records); err != nil {
		return fmt.Errorf("insert player metrics: %w", err)
	}
	if err := db.InsertMoveAnalyses(game.Hash, analyses); err != nil {
		return fmt.Errorf("insert move analyses: %w", err)
	}

	printGameReport(summary, records, analyses, analyzeVerbose)
	return nil
}

func printGameReport(summary model.GameSummary, records []storage.PlayerRecord, analyses []model.MoveAnalysis, withMoves bool) {
	ms := make([]model.PlayerMetrics, len(records))
	rs := make([]model.RiskAssessment, len(records))
	for i, r := range records {
		ms[i] = r.Metrics
		rs[i] = r.Risk
	}

	report.PrintGameSummary(os.Stdout, summary)
	report.PrintComplexitySummary(os.Stdout, complexity.Summarize(analyses))
	report.PrintPlayerTable(os.Stdout, ms)
	fmt.Fprintln(os.Stdout)
	report.PrintTimingTable(os.Stdout, ms)
	fmt.Fprintln(os.Stdout)
	report.PrintRiskTable(os.Stdout, ms, rs)
	if withMoves {
		report.PrintMoveTable(os.Stdout, analyses)
	}
}

func showByPrefix(db *storage.DB, prefix string, withMoves bool) error {
	summary, err := db.GetGameByPrefix(prefix)
	if err != nil {
		return fmt.Errorf("query game: %w", err)
	}
	if summary == nil {
		return fmt.Errorf("game not found: %s", prefix)
	}
	records, err := db.GetPlayerRecords(summary.Hash)
	if err != nil {
		return fmt.Errorf("get player metrics: %w", err)
	}
	analyses, err := db.GetMoveAnalyses(summary.Hash)
	if err != nil {
		return fmt.Errorf("get move analyses: %w", err)
	}
	printGameReport(*summary, records, analyses, withMoves)
	return nil
}
