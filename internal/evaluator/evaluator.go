// Package evaluator walks a parsed game move by move, collecting engine
// evaluations, move ranks, centipawn losses, complexity scores and opening
// theory status into per-move analysis records.
package evaluator

import (
	"context"
	"errors"
	"fmt"

	"github.com/pable/go-chess-forensics/internal/complexity"
	"github.com/pable/go-chess-forensics/internal/engine"
	"github.com/pable/go-chess-forensics/internal/model"
)

// theoryWindowPlies bounds opening-book lookups: beyond this depth no real
// opening line survives, so positions are marked out of theory without a
// network call.
const theoryWindowPlies = 40

// EngineSession is the engine dependency: a fixed-configuration session
// serving one evaluation per position.
type EngineSession interface {
	Evaluate(ctx context.Context, fen string) (*model.EngineEvaluation, error)
}

// BookClient answers whether the position reached by a UCI move sequence
// is in known opening theory.
type BookClient interface {
	InTheory(ctx context.Context, moves []string) (bool, error)
}

// Evaluator runs the per-move analysis pass. Book may be nil, in which
// case every move's theory status stays unknown.
type Evaluator struct {
	Engine EngineSession
	Book   BookClient

	// Progress, when set, is called after each analyzed half-move.
	Progress func(done, total int)
}

// Analyze produces one MoveAnalysis per half-move of the game, in game
// order. A per-position evaluation failure degrades that move to a
// no-data record; any other engine error aborts the run.
func (e *Evaluator) Analyze(ctx context.Context, g *model.Game) ([]model.MoveAnalysis, error) {
	analyses := make([]model.MoveAnalysis, 0, len(g.Moves))
	played := make([]string, 0, len(g.Moves))
	st := bookTracking

	for i, mv := range g.Moves {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		a := model.MoveAnalysis{Move: mv}

		ev, err := e.Engine.Evaluate(ctx, mv.FENBefore)
		switch {
		case err == nil:
			e.score(&a, ev)
		case errors.Is(err, engine.ErrEvalUnavailable):
			// Leave the record dataless; downstream metrics exclude it.
		default:
			return nil, fmt.Errorf("evaluate ply %d: %w", mv.Ply, err)
		}

		played = append(played, mv.UCI)
		st = e.theory(ctx, &a, played, st)

		analyses = append(analyses, a)
		if e.Progress != nil {
			e.Progress(i+1, len(g.Moves))
		}
	}
	return analyses, nil
}

// score fills rank, centipawn loss and complexity from the pre-move
// evaluation. Scores are from the side-to-move's perspective, so the loss
// is S1 minus the played line's score, never negative.
func (e *Evaluator) score(a *model.MoveAnalysis, ev *model.EngineEvaluation) {
	a.Eval = ev
	s1, ok := ev.Best()
	if !ok {
		return
	}

	rank := model.RankOutsideWindow
	played := s1
	for i, line := range ev.Lines {
		if line.MoveUCI == a.UCI {
			rank = i + 1
			played = line.ScoreCP
			break
		}
	}
	a.Rank = model.Int(rank)

	if rank == model.RankOutsideWindow {
		// The played move fell outside the multi-PV window; the weakest
		// reported line bounds its score from above, so the true loss is
		// at least this.
		played = ev.Lines[len(ev.Lines)-1].ScoreCP
		a.LossApproximate = true
	}
	a.CentipawnLoss = model.Float(max(0, float64(s1-played)))

	pcs := complexity.Score(ev)
	a.PCS = model.Float(pcs)
	a.PCSCategory = complexity.Categorize(pcs)
}

// bookState tracks the game's opening-book status across moves. Once the
// game is confirmed out of book every later move is too, with no further
// lookups; once a lookup fails the status is unknowable for the rest of
// the game and must not be reported as "out of theory".
type bookState int

const (
	bookTracking bookState = iota // still in book, keep looking up
	bookLeft                      // confirmed out of book
	bookUnknown                   // lookup failed, status unknowable
)

// theory resolves one move's opening-book status and advances the state.
func (e *Evaluator) theory(ctx context.Context, a *model.MoveAnalysis, played []string, st bookState) bookState {
	// Past the theory window no lookup is needed: the position is out of
	// book regardless of what came before.
	if a.Ply > theoryWindowPlies {
		a.TheoryKnown = true
		return bookLeft
	}
	switch st {
	case bookLeft:
		a.TheoryKnown = true
		return bookLeft
	case bookUnknown:
		return bookUnknown
	}
	if e.Book == nil {
		return bookUnknown
	}
	hit, err := e.Book.InTheory(ctx, played)
	if err != nil {
		return bookUnknown
	}
	a.TheoryKnown = true
	a.InTheory = hit
	if hit {
		return bookTracking
	}
	return bookLeft
}
