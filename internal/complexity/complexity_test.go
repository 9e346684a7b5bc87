package complexity

import (
	"testing"

	"github.com/pable/go-chess-forensics/internal/model"
)

func eval(scores ...int) *model.EngineEvaluation {
	e := &model.EngineEvaluation{Depth: 12}
	for _, s := range scores {
		e.Lines = append(e.Lines, model.EngineLine{ScoreCP: s})
	}
	return e
}

func TestScoreZeroWhenLinesEqual(t *testing.T) {
	if got := Score(eval(45, 45, 45)); got != 0 {
		t.Errorf("equal lines: PCS = %v, want 0", got)
	}
}

func TestScoreFormula(t *testing.T) {
	// S1=100, S2=40, S3=-20 → (100-40) + (100-(-20))/2 = 120
	if got := Score(eval(100, 40, -20)); got != 120 {
		t.Errorf("PCS = %v, want 120", got)
	}
}

func TestScoreMissingLinesContributeZero(t *testing.T) {
	if got := Score(eval(80)); got != 0 {
		t.Errorf("single line: PCS = %v, want 0", got)
	}
	// Two lines: S3 defaults to S1.
	if got := Score(eval(80, 30)); got != 50 {
		t.Errorf("two lines: PCS = %v, want 50", got)
	}
}

func TestScoreNeverNegative(t *testing.T) {
	cases := []*model.EngineEvaluation{
		nil,
		eval(),
		eval(0, 0, 0),
		eval(-500, -500, -500),
		eval(10, 200, 300), // unsorted input cannot push it below zero
	}
	for _, e := range cases {
		if got := Score(e); got < 0 {
			t.Errorf("Score(%v) = %v, want >= 0", e, got)
		}
	}
}

func analysisWith(pcs float64) model.MoveAnalysis {
	return model.MoveAnalysis{PCS: model.Float(pcs), PCSCategory: Categorize(pcs)}
}

func TestSummarize(t *testing.T) {
	analyses := []model.MoveAnalysis{
		analysisWith(10),  // trivial
		analysisWith(90),  // critical, streak 1
		analysisWith(200), // chaotic, streak 2
		analysisWith(160), // chaotic, streak 3
		analysisWith(40),  // balanced, streak broken
		analysisWith(100), // critical, streak 1
	}
	s := Summarize(analyses)
	if s.EvaluatedPositions != 6 {
		t.Errorf("evaluated = %d, want 6", s.EvaluatedPositions)
	}
	if s.AvgPCS != 100 || s.MaxPCS != 200 {
		t.Errorf("avg/max = %v/%v, want 100/200", s.AvgPCS, s.MaxPCS)
	}
	if s.Categories[Trivial] != 1 || s.Categories[Balanced] != 1 ||
		s.Categories[Critical] != 2 || s.Categories[Chaotic] != 2 {
		t.Errorf("categories = %v", s.Categories)
	}
	if s.LongestSharpStreak != 3 {
		t.Errorf("streak = %d, want 3", s.LongestSharpStreak)
	}
}

func TestSummarizeStreakBrokenByMissingData(t *testing.T) {
	analyses := []model.MoveAnalysis{
		analysisWith(90),
		{}, // engine timed out on this position
		analysisWith(95),
	}
	s := Summarize(analyses)
	if s.EvaluatedPositions != 2 {
		t.Errorf("evaluated = %d, want 2", s.EvaluatedPositions)
	}
	if s.LongestSharpStreak != 1 {
		t.Errorf("streak = %d, want 1", s.LongestSharpStreak)
	}
}

func TestSummarizeEmpty(t *testing.T) {
	s := Summarize(nil)
	if s.EvaluatedPositions != 0 || s.AvgPCS != 0 || s.LongestSharpStreak != 0 {
		t.Errorf("summary of nothing = %+v", s)
	}
}

func TestCategorizeBoundaries(t *testing.T) {
	cases := []struct {
		pcs  float64
		want string
	}{
		{0, Trivial},
		{29.99, Trivial},
		{30.0, Balanced},
		{79.99, Balanced},
		{80.0, Critical},
		{149.99, Critical},
		{150.0, Chaotic},
		{1000, Chaotic},
	}
	for _, c := range cases {
		if got := Categorize(c.pcs); got != c.want {
			t.Errorf("Categorize(%v) = %q, want %q", c.pcs, got, c.want)
		}
	}
}
