package metrics

import (
	"math"
	"testing"

	"github.com/pable/go-chess-forensics/internal/model"
)

// mv builds an evaluated white move with the given rank and loss.
func mv(ply int, rank int, loss float64) model.MoveAnalysis {
	a := model.MoveAnalysis{
		Move: model.Move{Ply: ply, Color: model.White},
		Eval: &model.EngineEvaluation{Lines: []model.EngineLine{{ScoreCP: 0}}},
	}
	a.Rank = model.Int(rank)
	a.CentipawnLoss = model.Float(loss)
	return a
}

// noData builds a white move whose engine evaluation timed out.
func noData(ply int) model.MoveAnalysis {
	return model.MoveAnalysis{Move: model.Move{Ply: ply, Color: model.White}}
}

func testGame() *model.Game {
	return &model.Game{Hash: "h", White: "alice", Black: "bob", TimeControl: "600+5"}
}

func approx(t *testing.T, name string, got, want float64) {
	t.Helper()
	if math.Abs(got-want) > 1e-9 {
		t.Errorf("%s = %v, want %v", name, got, want)
	}
}

func TestAccuracyClamping(t *testing.T) {
	analyses := []model.MoveAnalysis{
		mv(1, 1, 0),   // accuracy 100
		mv(2, 0, 300), // accuracy 0, clamped
		mv(3, 0, 900), // accuracy still 0
	}
	white, _ := Aggregate(testGame(), analyses)
	if white.AccuracyScore == nil {
		t.Fatal("accuracy not computed")
	}
	approx(t, "accuracy", *white.AccuracyScore, 100.0/3)
}

func TestMissingDataExcludedFromMeans(t *testing.T) {
	analyses := []model.MoveAnalysis{
		mv(1, 1, 30),
		noData(2),
		mv(3, 1, 60),
	}
	white, _ := Aggregate(testGame(), analyses)
	if white.EvaluatedMoves != 2 {
		t.Errorf("evaluated = %d, want 2", white.EvaluatedMoves)
	}
	approx(t, "avg loss", *white.AvgLoss, 45)
	// The timed-out move must not drag the match-rate denominator.
	if white.RankedMoves != 2 {
		t.Errorf("ranked = %d, want 2", white.RankedMoves)
	}
	approx(t, "best rate", *white.BestMoveRate, 100)
}

func TestOutsideWindowChargedInRates(t *testing.T) {
	analyses := []model.MoveAnalysis{
		mv(1, 1, 0),
		mv(2, model.RankOutsideWindow, 120), // evaluated, not in top 3
		mv(3, 2, 40),
		mv(4, 3, 70),
	}
	white, _ := Aggregate(testGame(), analyses)
	approx(t, "best rate", *white.BestMoveRate, 25)
	approx(t, "top3 rate", *white.Top3Rate, 75)
}

func TestQualityBuckets(t *testing.T) {
	analyses := []model.MoveAnalysis{
		mv(1, 1, 0),    // excellent
		mv(2, 1, 19.9), // excellent
		mv(3, 2, 20),   // good
		mv(4, 0, 50),   // inaccuracy
		mv(5, 0, 99.9), // inaccuracy
		mv(6, 0, 100),  // mistake
		mv(7, 0, 299),  // mistake
		mv(8, 0, 300),  // blunder
	}
	white, _ := Aggregate(testGame(), analyses)
	if white.ExcellentCount != 2 || white.GoodCount != 1 ||
		white.InaccuracyCount != 2 || white.MistakeCount != 2 || white.BlunderCount != 1 {
		t.Errorf("buckets = %d/%d/%d/%d/%d, want 2/1/2/2/1",
			white.ExcellentCount, white.GoodCount, white.InaccuracyCount,
			white.MistakeCount, white.BlunderCount)
	}
}

func TestOpeningRunStopsAtFirstGap(t *testing.T) {
	theory := func(ply int, in bool) model.MoveAnalysis {
		a := mv(ply, 1, 0)
		a.InTheory = in
		a.TheoryKnown = true
		return a
	}
	analyses := []model.MoveAnalysis{
		theory(1, true),
		theory(2, true),
		theory(3, true),
		theory(4, false),
		theory(5, true), // independently matches theory, must not count
	}
	white, _ := Aggregate(testGame(), analyses)
	if white.OpeningMoveCount != 3 {
		t.Errorf("opening run = %d, want 3", white.OpeningMoveCount)
	}
}

func TestOpeningRunEndsOnUnknown(t *testing.T) {
	a1 := mv(1, 1, 0)
	a1.InTheory, a1.TheoryKnown = true, true
	a2 := mv(2, 1, 0) // lookup failed: TheoryKnown stays false
	analyses := []model.MoveAnalysis{a1, a2}
	white, _ := Aggregate(testGame(), analyses)
	if white.OpeningMoveCount != 1 {
		t.Errorf("opening run = %d, want 1", white.OpeningMoveCount)
	}
}

func TestPlayerSeparation(t *testing.T) {
	b := model.MoveAnalysis{
		Move: model.Move{Ply: 1, Color: model.Black},
		Eval: &model.EngineEvaluation{Lines: []model.EngineLine{{}}},
	}
	b.Rank = model.Int(1)
	b.CentipawnLoss = model.Float(10)

	analyses := []model.MoveAnalysis{mv(1, 0, 200), b}
	white, black := Aggregate(testGame(), analyses)
	if white.TotalMoves != 1 || black.TotalMoves != 1 {
		t.Fatalf("moves split %d/%d, want 1/1", white.TotalMoves, black.TotalMoves)
	}
	approx(t, "white loss", *white.AvgLoss, 200)
	approx(t, "black loss", *black.AvgLoss, 10)
	if white.Name != "alice" || black.Name != "bob" {
		t.Errorf("names = %q/%q", white.Name, black.Name)
	}
}
