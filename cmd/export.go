package cmd

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/pable/go-chess-forensics/internal/complexity"
	"github.com/pable/go-chess-forensics/internal/model"
	"github.com/pable/go-chess-forensics/internal/storage"
)

var exportOut string

var exportCmd = &cobra.Command{
	Use:   "export <hash-prefix>",
	Short: "Export a game's full analysis as JSON",
	Args:  cobra.ExactArgs(1),
	RunE:  runExport,
}

func init() {
	exportCmd.Flags().StringVar(&exportOut, "out", "", "write to file instead of stdout")
}

type exportPlayer struct {
	Name             string   `json:"name"`
	Color            string   `json:"color"`
	TotalMoves       int      `json:"total_moves"`
	EvaluatedMoves   int      `json:"evaluated_moves"`
	Accuracy         *float64 `json:"accuracy"`
	AvgLoss          *float64 `json:"avg_cp_loss"`
	StdLoss          *float64 `json:"std_cp_loss"`
	BestMoveRate     *float64 `json:"best_move_rate"`
	Top3Rate         *float64 `json:"top3_rate"`
	Excellent        int      `json:"excellent"`
	Good             int      `json:"good"`
	Inaccuracies     int      `json:"inaccuracies"`
	Mistakes         int      `json:"mistakes"`
	Blunders         int      `json:"blunders"`
	OpeningMoves     int      `json:"opening_moves"`
	TimedMoves       int      `json:"timed_moves"`
	TimeMean         float64  `json:"time_mean_s"`
	TimeStd          float64  `json:"time_std_s"`
	TimeConsistency  *float64 `json:"time_consistency"`
	ComplexityCorr   float64  `json:"complexity_time_corr"`
	TimingFlag       string   `json:"timing_flag,omitempty"`
	TimingSuppressed bool     `json:"timing_suppressed,omitempty"`
	AvgPCS           float64  `json:"avg_pcs"`
	MaxPCS           float64  `json:"max_pcs"`
	RiskScore        int      `json:"risk_score"`
	RiskLevel        string   `json:"risk_level"`
	RiskFactors      []string `json:"risk_factors"`
}

type exportMove struct {
	Ply         int      `json:"ply"`
	SAN         string   `json:"san"`
	UCI         string   `json:"uci"`
	Color       string   `json:"color"`
	Rank        *int     `json:"rank"`
	Loss        *float64 `json:"cp_loss"`
	LossApprox  bool     `json:"loss_approximate,omitempty"`
	PCS         *float64 `json:"pcs"`
	PCSCategory string   `json:"pcs_category,omitempty"`
	ElapsedS    *float64 `json:"elapsed_s"`
	InTheory    bool     `json:"in_theory"`
	TheoryKnown bool     `json:"theory_known"`
}

func runExport(cmd *cobra.Command, args []string) error {
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
		return fmt.Errorf("game not found: %s", args[0])
	}
	records, err := db.GetPlayerRecords(summary.Hash)
	if err != nil {
		return fmt.Errorf("get player metrics: %w", err)
	}
	analyses, err := db.GetMoveAnalyses(summary.Hash)
	if err != nil {
		return fmt.Errorf("get move analyses: %w", err)
	}

	players := make([]exportPlayer, 0, len(records))
	for _, r := range records {
		players = append(players, buildExportPlayer(r))
	}
	moves := make([]exportMove, 0, len(analyses))
	for i := range analyses {
		moves = append(moves, buildExportMove(&analyses[i]))
	}

	doc := map[string]any{
		"game":       summary,
		"complexity": complexity.Summarize(analyses),
		"players":    players,
		"moves":      moves,
	}
	b, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal export: %w", err)
	}
	b = append(b, '\n')

	if exportOut == "" {
		_, err = os.Stdout.Write(b)
		return err
	}
	if err := os.WriteFile(exportOut, b, 0644); err != nil {
		return fmt.Errorf("write export: %w", err)
	}
	fmt.Fprintf(os.Stdout, "Exported %s to %s\n", summary.Hash[:12], exportOut)
	return nil
}

func buildExportPlayer(r storage.PlayerRecord) exportPlayer {
	m := r.Metrics
	p := exportPlayer{
		Name:             m.Name,
		Color:            m.Color.String(),
		TotalMoves:       m.TotalMoves,
		EvaluatedMoves:   m.EvaluatedMoves,
		Accuracy:         m.AccuracyScore,
		AvgLoss:          m.AvgLoss,
		StdLoss:          m.StdLoss,
		BestMoveRate:     m.BestMoveRate,
		Top3Rate:         m.Top3Rate,
		Excellent:        m.ExcellentCount,
		Good:             m.GoodCount,
		Inaccuracies:     m.InaccuracyCount,
		Mistakes:         m.MistakeCount,
		Blunders:         m.BlunderCount,
		OpeningMoves:     m.OpeningMoveCount,
		TimedMoves:       m.Timing.TimedMoves,
		TimeMean:         m.Timing.MeanSeconds,
		TimeStd:          m.Timing.StdSeconds,
		ComplexityCorr:   m.Timing.ComplexityCorr,
		TimingFlag:       m.Timing.Flag,
		TimingSuppressed: m.Timing.Suppressed,
		AvgPCS:           m.AvgPCS,
		MaxPCS:           m.MaxPCS,
		RiskScore:        r.Risk.Score,
		RiskLevel:        r.Risk.Level,
		RiskFactors:      r.Risk.Factors,
	}
	if m.Timing.Defined {
		cv := m.Timing.Consistency
		p.TimeConsistency = &cv
	}
	return p
}

func buildExportMove(a *model.MoveAnalysis) exportMove {
	return exportMove{
		Ply:         a.Ply,
		SAN:         a.SAN,
		UCI:         a.UCI,
		Color:       a.Color.String(),
		Rank:        a.Rank,
		Loss:        a.CentipawnLoss,
		LossApprox:  a.LossApproximate,
		PCS:         a.PCS,
		PCSCategory: a.PCSCategory,
		ElapsedS:    a.ElapsedSeconds,
		InTheory:    a.InTheory,
		TheoryKnown: a.TheoryKnown,
	}
}
