package report

import (
	"fmt"
	"io"
	"strconv"

	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/tw"
	"github.com/pable/go-chess-forensics/internal/complexity"
	"github.com/pable/go-chess-forensics/internal/model"
)

// PrintGameSummary prints a one-line summary header for the game.
func PrintGameSummary(w io.Writer, s model.GameSummary) {
	tc := s.TimeControl
	if tc == "" {
		tc = "—"
	}
	fmt.Fprintf(w, "\n%s vs %s  |  %s  |  Date: %s  |  TC: %s  |  Depth: %d/PV%d  |  Hash: %s\n\n",
		s.White, s.Black, s.Result, s.Date, tc, s.EngineDepth, s.MultiPV, s.Hash[:12])
}

func newTable(w io.Writer) *tablewriter.Table {
	return tablewriter.NewTable(w, tablewriter.WithConfig(tablewriter.Config{
		Row: tw.CellConfig{
			Alignment: tw.CellAlignment{Global: tw.AlignRight},
		},
		Header: tw.CellConfig{
			Alignment: tw.CellAlignment{Global: tw.AlignCenter},
		},
	}))
}

// PrintComplexitySummary prints the whole-game sharpness profile.
func PrintComplexitySummary(w io.Writer, s model.ComplexitySummary) {
	if s.EvaluatedPositions == 0 {
		return
	}
	fmt.Fprintf(w, "Complexity: avg %.0f / max %.0f over %d positions  |  trivial %d  balanced %d  critical %d  chaotic %d  |  longest sharp streak %d\n\n",
		s.AvgPCS, s.MaxPCS, s.EvaluatedPositions,
		s.Categories[complexity.Trivial], s.Categories[complexity.Balanced],
		s.Categories[complexity.Critical], s.Categories[complexity.Chaotic],
		s.LongestSharpStreak)
}

// PrintPlayerTable prints both players' accuracy and agreement metrics.
func PrintPlayerTable(w io.Writer, metrics []model.PlayerMetrics) {
	table := newTable(w)
	table.Header("PLAYER", "SIDE", "MOVES", "EVAL", "ACC", "AVG_LOSS", "BEST%", "TOP3%",
		"EX", "GOOD", "INACC", "MIST", "BLUN", "BOOK", "AVG_PCS")

	for _, m := range metrics {
		table.Append(
			m.Name,
			m.Color.String(),
			strconv.Itoa(m.TotalMoves),
			strconv.Itoa(m.EvaluatedMoves),
			fmtOpt(m.AccuracyScore, "%.1f"),
			fmtOpt(m.AvgLoss, "%.1f"),
			fmtOpt(m.BestMoveRate, "%.0f%%"),
			fmtOpt(m.Top3Rate, "%.0f%%"),
			strconv.Itoa(m.ExcellentCount),
			strconv.Itoa(m.GoodCount),
			strconv.Itoa(m.InaccuracyCount),
			strconv.Itoa(m.MistakeCount),
			strconv.Itoa(m.BlunderCount),
			strconv.Itoa(m.OpeningMoveCount),
			fmt.Sprintf("%.0f", m.AvgPCS),
		)
	}
	table.Render()
}

// PrintTimingTable prints both players' move-time behavior.
func PrintTimingTable(w io.Writer, metrics []model.PlayerMetrics) {
	table := newTable(w)
	table.Header("PLAYER", "TIMED", "MEAN_S", "STD_S", "CV", "PCS_CORR", "FLAG")

	for _, m := range metrics {
		t := m.Timing
		cv := "—"
		if t.Defined {
			cv = fmt.Sprintf("%.2f", t.Consistency)
		}
		flag := ""
		switch {
		case t.Suppressed:
			flag = "(suppressed: bullet)"
		case t.Flag != "":
			flag = t.Flag
		}
		table.Append(
			m.Name,
			strconv.Itoa(t.TimedMoves),
			fmt.Sprintf("%.1f", t.MeanSeconds),
			fmt.Sprintf("%.1f", t.StdSeconds),
			cv,
			fmt.Sprintf("%.2f", t.ComplexityCorr),
			flag,
		)
	}
	table.Render()
}

// PrintRiskTable prints the composite risk assessment with its contributing
// factors listed below the table.
func PrintRiskTable(w io.Writer, metrics []model.PlayerMetrics, risks []model.RiskAssessment) {
	table := newTable(w)
	table.Header("PLAYER", "SIDE", "SCORE", "LEVEL")

	for i, m := range metrics {
		table.Append(m.Name, m.Color.String(), strconv.Itoa(risks[i].Score), risks[i].Level)
	}
	table.Render()

	for i, m := range metrics {
		if len(risks[i].Factors) == 0 {
			continue
		}
		fmt.Fprintf(w, "\n%s:\n", m.Name)
		for _, f := range risks[i].Factors {
			fmt.Fprintf(w, "  - %s\n", f)
		}
	}
	fmt.Fprintln(w)
}

// PrintMoveTable prints the per-move analysis sheet.
func PrintMoveTable(w io.Writer, analyses []model.MoveAnalysis) {
	table := newTable(w)
	table.Header("PLY", "MOVE", "SIDE", "RANK", "LOSS", "PCS", "CATEGORY", "TIME_S", "BOOK")

	for i := range analyses {
		a := &analyses[i]

		rank := "—"
		if a.Rank != nil {
			if *a.Rank == model.RankOutsideWindow {
				rank = ">PV"
			} else {
				rank = strconv.Itoa(*a.Rank)
			}
		}
		loss := fmtOpt(a.CentipawnLoss, "%.0f")
		if a.LossApproximate && loss != "—" {
			loss = "≥" + loss
		}
		book := "—"
		if a.TheoryKnown {
			if a.InTheory {
				book = "book"
			} else {
				book = "out"
			}
		}

		table.Append(
			strconv.Itoa(a.Ply),
			a.SAN,
			a.Color.String(),
			rank,
			loss,
			fmtOpt(a.PCS, "%.0f"),
			a.PCSCategory,
			fmtOpt(a.ElapsedSeconds, "%.1f"),
			book,
		)
	}
	table.Render()
}

// fmtOpt formats an optional metric, rendering missing values as "—" so
// they can never be read as zero.
func fmtOpt(p *float64, format string) string {
	if p == nil {
		return "—"
	}
	return fmt.Sprintf(format, *p)
}
