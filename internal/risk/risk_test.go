package risk

import (
	"strings"
	"testing"

	"github.com/pable/go-chess-forensics/internal/model"
)

func metrics(bestRate, accuracy, avgLoss float64, blunders, evaluated int) *model.PlayerMetrics {
	return &model.PlayerMetrics{
		BestMoveRate:   model.Float(bestRate),
		AccuracyScore:  model.Float(accuracy),
		AvgLoss:        model.Float(avgLoss),
		BlunderCount:   blunders,
		EvaluatedMoves: evaluated,
	}
}

func TestAssessMaximal(t *testing.T) {
	// 85% best-move rate, 96 accuracy, 12 avg loss over 40 moves, 0 blunders.
	a := Assess(metrics(85, 96, 12, 0, 40))
	if a.Score != 100 {
		t.Errorf("score = %d, want 100", a.Score)
	}
	if a.Level != VeryHigh {
		t.Errorf("level = %q, want %q", a.Level, VeryHigh)
	}
	if len(a.Factors) != 4 {
		t.Errorf("factors = %v, want 4 entries", a.Factors)
	}
}

func TestAssessClean(t *testing.T) {
	// 30% best rate, 70 accuracy, 60 avg loss, 2 blunders over 25 moves.
	a := Assess(metrics(30, 70, 60, 2, 25))
	if a.Score != 0 {
		t.Errorf("score = %d, want 0", a.Score)
	}
	if a.Level != VeryLow {
		t.Errorf("level = %q, want %q", a.Level, VeryLow)
	}
}

func TestAssessMiddleTiers(t *testing.T) {
	// 65% best rate (+25), 91 accuracy (+20), 22 loss (+10), 1 blunder.
	a := Assess(metrics(65, 91, 22, 1, 30))
	if a.Score != 55 {
		t.Errorf("score = %d, want 55", a.Score)
	}
	if a.Level != Moderate {
		t.Errorf("level = %q, want %q", a.Level, Moderate)
	}
}

func TestStrictLossTierNeedsLongGame(t *testing.T) {
	// Avg loss 12 but only 15 evaluated moves: falls through to the ≤25
	// tier for 10 points instead of 20.
	a := Assess(metrics(0, 0, 12, 1, 15))
	if a.Score != 10 {
		t.Errorf("score = %d, want 10", a.Score)
	}

	// Zero blunders over a short game earns nothing either.
	b := Assess(metrics(0, 0, 100, 0, 15))
	if b.Score != 0 {
		t.Errorf("short-game zero blunders: score = %d, want 0", b.Score)
	}
}

func TestAssessMissingData(t *testing.T) {
	a := Assess(&model.PlayerMetrics{})
	if a.Score != 0 {
		t.Errorf("no data: score = %d, want 0", a.Score)
	}
	if len(a.Factors) != 0 {
		t.Errorf("no data: factors = %v, want none", a.Factors)
	}
}

func TestTimingFlagIsQualitativeOnly(t *testing.T) {
	m := metrics(30, 70, 60, 2, 25)
	m.Timing = model.TimingSummary{Flag: FlagName, Consistency: 0.95, Defined: true}
	a := Assess(m)
	if a.Score != 0 {
		t.Errorf("timing flag changed the score: %d", a.Score)
	}
	found := false
	for _, f := range a.Factors {
		if strings.Contains(f, "consistency") {
			found = true
		}
	}
	if !found {
		t.Errorf("timing factor missing from %v", a.Factors)
	}
}

// FlagName mirrors timing.FlagStronglyElevated without importing the
// package, keeping the dependency direction one-way.
const FlagName = "strongly elevated"

func TestLevelBoundaries(t *testing.T) {
	cases := []struct {
		score int
		want  string
	}{
		{0, VeryLow}, {19, VeryLow},
		{20, Low}, {39, Low},
		{40, Moderate}, {59, Moderate},
		{60, High}, {79, High},
		{80, VeryHigh}, {100, VeryHigh},
	}
	for _, c := range cases {
		if got := Level(c.score); got != c.want {
			t.Errorf("Level(%d) = %q, want %q", c.score, got, c.want)
		}
	}
}
