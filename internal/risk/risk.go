// Package risk maps aggregated player metrics onto a single composite
// fair-play score. Purely a function of PlayerMetrics; no state.
package risk

import (
	"fmt"

	"github.com/pable/go-chess-forensics/internal/model"
)

// longGameMoves gates the tiers that are only meaningful over a real
// sample of moves.
const longGameMoves = 20

// Level thresholds on the composite score, inclusive on the lower bound.
const (
	VeryLow  = "very low"
	Low      = "low"
	Moderate = "moderate"
	High     = "high"
	VeryHigh = "very high"
)

// band is one tier of a signal: points awarded when the metric clears the
// threshold (direction per the owning signal) and the move-count gate.
type band struct {
	threshold float64
	minMoves  int // strictly more than this many evaluated moves required; 0 = no gate
	points    int
	label     string
}

// signal is one weighted contribution to the composite score. Bands are
// ordered strongest-first; the first one that matches is awarded.
type signal struct {
	name      string
	metric    func(m *model.PlayerMetrics) (float64, bool)
	higherBad bool // true: value >= threshold fires; false: value <= threshold fires
	bands     []band
}

// The tier table from the scoring design. Weights: best-move rate 40,
// accuracy 30, average centipawn loss 20, zero blunders in a long game 10.
var signals = []signal{
	{
		name: "best-move rate",
		metric: func(m *model.PlayerMetrics) (float64, bool) {
			if m.BestMoveRate == nil {
				return 0, false
			}
			return *m.BestMoveRate, true
		},
		higherBad: true,
		bands: []band{
			{threshold: 80, points: 40, label: "≥80%"},
			{threshold: 60, points: 25, label: "≥60%"},
			{threshold: 40, points: 10, label: "≥40%"},
		},
	},
	{
		name: "accuracy score",
		metric: func(m *model.PlayerMetrics) (float64, bool) {
			if m.AccuracyScore == nil {
				return 0, false
			}
			return *m.AccuracyScore, true
		},
		higherBad: true,
		bands: []band{
			{threshold: 95, points: 30, label: "≥95"},
			{threshold: 90, points: 20, label: "≥90"},
			{threshold: 85, points: 10, label: "≥85"},
		},
	},
	{
		name: "avg centipawn loss",
		metric: func(m *model.PlayerMetrics) (float64, bool) {
			if m.AvgLoss == nil {
				return 0, false
			}
			return *m.AvgLoss, true
		},
		higherBad: false,
		bands: []band{
			{threshold: 15, minMoves: longGameMoves, points: 20, label: "≤15 over a long game"},
			{threshold: 25, points: 10, label: "≤25"},
		},
	},
	{
		name: "blunders",
		metric: func(m *model.PlayerMetrics) (float64, bool) {
			if m.EvaluatedMoves == 0 {
				return 0, false
			}
			return float64(m.BlunderCount), true
		},
		higherBad: false,
		bands: []band{
			{threshold: 0, minMoves: longGameMoves, points: 10, label: "zero in a long game"},
		},
	},
}

// Assess computes the composite risk for one player. Timing flags are
// surfaced as qualitative factors alongside the score, never folded into
// the numeric sum.
func Assess(m *model.PlayerMetrics) model.RiskAssessment {
	var score int
	var factors []string

	for _, sig := range signals {
		value, ok := sig.metric(m)
		if !ok {
			continue
		}
		for _, b := range sig.bands {
			if b.minMoves > 0 && m.EvaluatedMoves <= b.minMoves {
				continue
			}
			fired := value >= b.threshold
			if !sig.higherBad {
				fired = value <= b.threshold
			}
			if fired {
				score += b.points
				factors = append(factors, fmt.Sprintf("%s %.1f (%s): +%d",
					sig.name, value, b.label, b.points))
				break
			}
		}
	}

	if m.Timing.Flag != "" && !m.Timing.Suppressed {
		factors = append(factors, fmt.Sprintf(
			"move-time consistency %s (CV %.2f) — corroborating only, not scored",
			m.Timing.Flag, m.Timing.Consistency))
	}

	return model.RiskAssessment{
		Score:   score,
		Level:   Level(score),
		Factors: factors,
	}
}

// Level maps a composite score onto its qualitative band.
func Level(score int) string {
	switch {
	case score < 20:
		return VeryLow
	case score < 40:
		return Low
	case score < 60:
		return Moderate
	case score < 80:
		return High
	default:
		return VeryHigh
	}
}
