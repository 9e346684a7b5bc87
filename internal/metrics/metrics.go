// Package metrics rolls per-move analysis records into per-player summary
// metrics: accuracy, engine-agreement rates, move-quality buckets, opening
// run length and timing behavior.
package metrics

import (
	"github.com/pable/go-chess-forensics/internal/model"
	"github.com/pable/go-chess-forensics/internal/timing"
)

// Move-quality bucket boundaries in centipawns of loss.
const (
	excellentMax  = 20
	goodMax       = 50
	inaccuracyMax = 100
	mistakeMax    = 300
)

// BulletThreshold is the base time control (seconds) at or below which
// timing-consistency flags are suppressed.
const BulletThreshold = 60

// Aggregate computes PlayerMetrics for both players from the full
// per-game MoveAnalysis sequence. Records are expected in game order.
func Aggregate(game *model.Game, analyses []model.MoveAnalysis) (white, black model.PlayerMetrics) {
	white = forPlayer(game, analyses, model.White)
	black = forPlayer(game, analyses, model.Black)
	return white, black
}

func forPlayer(game *model.Game, analyses []model.MoveAnalysis, color model.Color) model.PlayerMetrics {
	m := model.PlayerMetrics{
		GameHash: game.Hash,
		Name:     game.PlayerName(color),
		Color:    color,
	}

	var own []model.MoveAnalysis
	for _, a := range analyses {
		if a.Color == color {
			own = append(own, a)
		}
	}
	m.TotalMoves = len(own)

	var losses []float64
	var accs []float64
	var pcsSum, pcsMax float64
	pcsCount := 0
	ranked, best, top3 := 0, 0, 0

	for _, a := range own {
		if a.Eval != nil {
			m.EvaluatedMoves++
		}
		if a.Rank != nil {
			// Evaluated moves count against the player even when the
			// played move fell outside the multi-PV window; only
			// missing engine data is excluded.
			ranked++
			switch *a.Rank {
			case 1:
				best++
				top3++
			case 2, 3:
				top3++
			}
		}
		if a.CentipawnLoss != nil {
			loss := *a.CentipawnLoss
			losses = append(losses, loss)
			accs = append(accs, max(0, 100-loss/3))
			switch {
			case loss < excellentMax:
				m.ExcellentCount++
			case loss < goodMax:
				m.GoodCount++
			case loss < inaccuracyMax:
				m.InaccuracyCount++
			case loss < mistakeMax:
				m.MistakeCount++
			default:
				m.BlunderCount++
			}
		}
		if a.PCS != nil {
			pcsSum += *a.PCS
			pcsCount++
			if *a.PCS > pcsMax {
				pcsMax = *a.PCS
			}
		}
	}

	if len(losses) > 0 {
		m.AvgLoss = model.Float(timing.Mean(losses))
		m.StdLoss = model.Float(timing.StdDev(losses))
		m.AccuracyScore = model.Float(timing.Mean(accs))
	}
	m.RankedMoves = ranked
	if ranked > 0 {
		m.BestMoveRate = model.Float(100 * float64(best) / float64(ranked))
		m.Top3Rate = model.Float(100 * float64(top3) / float64(ranked))
	}
	if pcsCount > 0 {
		m.AvgPCS = pcsSum / float64(pcsCount)
		m.MaxPCS = pcsMax
	}

	m.OpeningMoveCount = openingRun(own)
	m.Timing = timing.Analyze(own, game.BaseTimeSeconds(), BulletThreshold)
	return m
}

// openingRun counts the longest prefix of the player's moves each
// individually confirmed in opening theory. Counting stops at the first
// gap even if a later move independently matches theory, and a failed
// lookup (TheoryKnown false) ends the run rather than extending it.
func openingRun(moves []model.MoveAnalysis) int {
	n := 0
	for _, a := range moves {
		if !a.TheoryKnown || !a.InTheory {
			break
		}
		n++
	}
	return n
}
