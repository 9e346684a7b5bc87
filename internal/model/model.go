package model

import "strconv"

// Color identifies which side a player is on.
type Color string

const (
	White Color = "white"
	Black Color = "black"
)

func (c Color) String() string { return string(c) }

// ---- Parsed game input ----

// Move is one half-move as parsed from the PGN movetext.
type Move struct {
	Ply        int    // 1-based half-move index over the whole game
	Number     int    // full-move number as printed in the PGN
	Color      Color  // side that played the move
	SAN        string // algebraic notation, e.g. "Nf3"
	UCI        string // coordinate notation, e.g. "g1f3"
	FENBefore  string // position before the move was played
	LegalMoves int    // legal-move count in the position before the move

	// ElapsedSeconds is the think time derived from [%clk] annotations.
	// Nil when the game carries no clock data for this move.
	ElapsedSeconds *float64
}

// Game is a parsed PGN game. Immutable once built.
type Game struct {
	Hash        string // sha256 of the PGN source, storage key
	White       string
	Black       string
	Result      string
	Event       string
	Date        string
	TimeControl string // raw PGN TimeControl tag, e.g. "180+2"
	Moves       []Move
}

// BaseTimeSeconds parses the base time out of the TimeControl tag
// ("600+5" → 600). Returns 0 when the tag is absent or unparseable.
func (g *Game) BaseTimeSeconds() int {
	tc := g.TimeControl
	for i := 0; i < len(tc); i++ {
		if tc[i] == '+' || tc[i] == '/' {
			tc = tc[:i]
			break
		}
	}
	base, err := strconv.Atoi(tc)
	if err != nil || base < 0 {
		return 0
	}
	return base
}

// PlayerName returns the name of the player on the given side.
func (g *Game) PlayerName(c Color) string {
	if c == White {
		return g.White
	}
	return g.Black
}

// ---- Engine output ----

// EngineLine is one principal variation head: the engine's candidate move
// and its score in centipawns from the side-to-move's perspective. Forced
// mates are saturated into large centipawn values by the engine session,
// so ScoreCP is always comparable arithmetic.
type EngineLine struct {
	MoveUCI string
	ScoreCP int
	Mate    bool // score was saturated from a mate announcement
}

// EngineEvaluation is the multi-PV evaluation of one position. Lines are
// ordered best-first (PV-1..PV-n).
type EngineEvaluation struct {
	Lines []EngineLine
	Depth int
}

// Best returns the PV-1 score, or 0 with ok=false when no lines exist.
func (e *EngineEvaluation) Best() (int, bool) {
	if e == nil || len(e.Lines) == 0 {
		return 0, false
	}
	return e.Lines[0].ScoreCP, true
}

// ---- Per-move analysis ----

// Rank sentinel: a move that was evaluated but fell outside the requested
// multi-PV window. A nil rank means the engine produced no data at all.
const RankOutsideWindow = 0

// MoveAnalysis is the full forensic record for one half-move. Built once
// by the evaluator and immutable thereafter.
type MoveAnalysis struct {
	Move

	// Eval is the multi-PV evaluation of the pre-move position, nil when
	// the engine timed out on it.
	Eval *EngineEvaluation

	// Rank of the played move among the PV lines: 1..multipv, or
	// RankOutsideWindow when evaluated but not among them. Nil when the
	// position has no engine data.
	Rank *int

	// CentipawnLoss is max(0, S1 - S_played). Nil without engine data.
	CentipawnLoss *float64

	// LossApproximate marks a loss estimated from the lowest PV line
	// because the played move fell outside the multi-PV window.
	LossApproximate bool

	// PCS is the positional complexity score of the pre-move position.
	// Nil without engine data.
	PCS         *float64
	PCSCategory string // "", "trivial", "balanced", "critical", "chaotic"

	// InTheory reports whether the pre-move position is in the opening
	// book. Only meaningful when TheoryKnown; a failed lookup leaves
	// TheoryKnown false so "confirmed out of book" stays distinguishable
	// from "unknown".
	InTheory    bool
	TheoryKnown bool
}

// BestMove reports whether the played move matched PV-1.
func (m *MoveAnalysis) BestMove() bool {
	return m.Rank != nil && *m.Rank == 1
}

// ComplexitySummary is the sharpness profile of a whole game, both
// players' positions combined.
type ComplexitySummary struct {
	EvaluatedPositions int
	AvgPCS             float64
	MaxPCS             float64
	Categories         map[string]int

	// LongestSharpStreak is the longest run of consecutive critical or
	// chaotic positions; unevaluated positions break the run.
	LongestSharpStreak int
}

// ---- Aggregated per-player metrics ----

// TimingSummary holds a player's thinking-time statistics.
type TimingSummary struct {
	TimedMoves  int
	MeanSeconds float64
	StdSeconds  float64

	// Consistency is the coefficient of variation over timed moves.
	// Defined is false (and Consistency 0) with fewer than 2 timed moves
	// or a zero mean.
	Consistency float64
	Defined     bool

	// ComplexityCorr is the Pearson correlation between PCS and elapsed
	// time over moves carrying both. 0 with fewer than 2 pairs or a
	// zero-variance series.
	ComplexityCorr float64

	// Flag is the policy signal consumed by the risk scorer: "",
	// "elevated" or "strongly elevated". Suppressed records that the
	// flag was withheld (bullet time control).
	Flag       string
	Suppressed bool
}

// PlayerMetrics aggregates one player's MoveAnalysis sequence.
type PlayerMetrics struct {
	GameHash string
	Name     string
	Color    Color

	TotalMoves     int // half-moves played
	EvaluatedMoves int // moves with engine data

	// AccuracyScore is the mean of max(0, 100 - loss/3) over moves with
	// an available centipawn loss. Nil when no move has engine data.
	AccuracyScore *float64
	AvgLoss       *float64
	StdLoss       *float64

	// BestMoveRate and Top3Rate are percentages. Moves without engine
	// data are excluded from the denominator; moves evaluated but
	// outside the multi-PV window are charged against the player.
	BestMoveRate *float64
	Top3Rate     *float64
	RankedMoves  int // denominator behind the two rates

	ExcellentCount  int // loss < 20
	GoodCount       int // [20, 50)
	InaccuracyCount int // [50, 100)
	MistakeCount    int // [100, 300)
	BlunderCount    int // >= 300

	// OpeningMoveCount is the longest prefix of this player's moves each
	// individually confirmed in opening theory.
	OpeningMoveCount int

	Timing TimingSummary

	AvgPCS float64
	MaxPCS float64
}

// ---- Risk assessment ----

// RiskAssessment is the composite fair-play signal for one player.
// Derived purely from PlayerMetrics; recomputable at any time.
type RiskAssessment struct {
	Score   int    // 0-100
	Level   string // "very low", "low", "moderate", "high", "very high"
	Factors []string
}

// GameSummary is a lightweight record for list/show commands.
type GameSummary struct {
	Hash        string
	White       string
	Black       string
	Result      string
	Event       string
	Date        string
	TimeControl string
	PlyCount    int
	EngineDepth int
	MultiPV     int
	AnalyzedAt  string
}

// Float returns a pointer to v. Convenience for optional metrics.
func Float(v float64) *float64 { return &v }

// Int returns a pointer to v.
func Int(v int) *int { return &v }
