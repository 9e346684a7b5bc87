// Package complexity computes the Positional Complexity Score (PCS): how
// punishing a wrong guess would have been in a position, independent of the
// move actually played.
package complexity

import "github.com/pable/go-chess-forensics/internal/model"

// Category thresholds in centipawns, inclusive on the lower bound.
const (
	trivialMax  = 30
	balancedMax = 80
	criticalMax = 150
)

const (
	Trivial  = "trivial"
	Balanced = "balanced"
	Critical = "critical"
	Chaotic  = "chaotic"
)

// Score computes PCS from the top PV scores of the pre-move position:
//
//	PCS = max(0, S1-S2) + max(0, S1-S3)/2
//
// with S2/S3 defaulting to S1 when fewer lines were available, so missing
// lines contribute 0, never negative. The result is always >= 0.
func Score(eval *model.EngineEvaluation) float64 {
	if eval == nil || len(eval.Lines) == 0 {
		return 0
	}
	s1 := float64(eval.Lines[0].ScoreCP)
	s2, s3 := s1, s1
	if len(eval.Lines) > 1 {
		s2 = float64(eval.Lines[1].ScoreCP)
	}
	if len(eval.Lines) > 2 {
		s3 = float64(eval.Lines[2].ScoreCP)
	}
	return max(0, s1-s2) + max(0, s1-s3)/2
}

// Categorize maps a PCS value onto its qualitative label.
func Categorize(pcs float64) string {
	switch {
	case pcs < trivialMax:
		return Trivial
	case pcs < balancedMax:
		return Balanced
	case pcs < criticalMax:
		return Critical
	default:
		return Chaotic
	}
}

// Summarize rolls the per-move complexity scores into a whole-game
// profile. Moves without engine data carry no PCS and also break the
// sharp streak, since nothing is known about those positions.
func Summarize(analyses []model.MoveAnalysis) model.ComplexitySummary {
	s := model.ComplexitySummary{Categories: make(map[string]int, 4)}
	var sum float64
	streak := 0
	for i := range analyses {
		a := &analyses[i]
		if a.PCS == nil {
			streak = 0
			continue
		}
		s.EvaluatedPositions++
		sum += *a.PCS
		if *a.PCS > s.MaxPCS {
			s.MaxPCS = *a.PCS
		}
		s.Categories[a.PCSCategory]++

		if a.PCSCategory == Critical || a.PCSCategory == Chaotic {
			streak++
			if streak > s.LongestSharpStreak {
				s.LongestSharpStreak = streak
			}
		} else {
			streak = 0
		}
	}
	if s.EvaluatedPositions > 0 {
		s.AvgPCS = sum / float64(s.EvaluatedPositions)
	}
	return s
}
