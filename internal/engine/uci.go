package engine

import (
	"sort"
	"strconv"
	"strings"

	"github.com/pable/go-chess-forensics/internal/model"
)

// Evaluation is the multi-PV result for one position.
type Evaluation = model.EngineEvaluation

// pvLine is one parsed "info" record worth keeping.
type pvLine struct {
	depth   int
	moveUCI string
	scoreCP int
	mate    bool
}

// accumulator collects info lines during one search, keeping the deepest
// record seen per multipv index.
type accumulator struct {
	multiPV int
	best    map[int]pvLine // multipv index (1-based) → deepest line
}

func newAccumulator(multiPV int) *accumulator {
	return &accumulator{multiPV: multiPV, best: make(map[int]pvLine, multiPV)}
}

func (a *accumulator) feed(line string) {
	idx, pl, ok := parseInfo(line)
	if !ok || idx > a.multiPV {
		return
	}
	if prev, seen := a.best[idx]; !seen || pl.depth >= prev.depth {
		a.best[idx] = pl
	}
}

// result assembles the evaluation, ordered best-first. Engines report
// multipv 1 as the top line; the sort keeps that order and guards against
// engines that interleave out-of-order indices.
func (a *accumulator) result() *Evaluation {
	idxs := make([]int, 0, len(a.best))
	for i := range a.best {
		idxs = append(idxs, i)
	}
	sort.Ints(idxs)

	ev := &Evaluation{}
	for _, i := range idxs {
		pl := a.best[i]
		ev.Lines = append(ev.Lines, model.EngineLine{
			MoveUCI: pl.moveUCI,
			ScoreCP: pl.scoreCP,
			Mate:    pl.mate,
		})
		if pl.depth > ev.Depth {
			ev.Depth = pl.depth
		}
	}
	return ev
}

// parseInfo extracts (multipv index, line) from a UCI "info" record.
// Records without a score or a pv head are ignored (ok=false), as are
// bound scores, which are transient during the search.
func parseInfo(line string) (int, pvLine, bool) {
	if !strings.HasPrefix(line, "info ") {
		return 0, pvLine{}, false
	}
	fields := strings.Fields(line)

	pl := pvLine{}
	idx := 1 // engines omit "multipv" when MultiPV is 1
	haveScore := false

	for i := 0; i < len(fields); i++ {
		switch fields[i] {
		case "depth":
			if i+1 < len(fields) {
				pl.depth, _ = strconv.Atoi(fields[i+1])
			}
		case "multipv":
			if i+1 < len(fields) {
				idx, _ = strconv.Atoi(fields[i+1])
			}
		case "lowerbound", "upperbound":
			return 0, pvLine{}, false
		case "score":
			if i+2 >= len(fields) {
				return 0, pvLine{}, false
			}
			n, err := strconv.Atoi(fields[i+2])
			if err != nil {
				return 0, pvLine{}, false
			}
			switch fields[i+1] {
			case "cp":
				pl.scoreCP = n
			case "mate":
				pl.scoreCP = saturateMate(n)
				pl.mate = true
			default:
				return 0, pvLine{}, false
			}
			haveScore = true
			i += 2
		case "pv":
			if i+1 < len(fields) {
				pl.moveUCI = fields[i+1]
			}
			// pv is the last token group; nothing useful follows.
			i = len(fields)
		}
	}

	if !haveScore || pl.moveUCI == "" || idx < 1 {
		return 0, pvLine{}, false
	}
	return idx, pl, true
}

// saturateMate maps "mate in n" onto a large centipawn value whose sign
// matches the mate direction, shorter mates scoring higher.
func saturateMate(n int) int {
	if n >= 0 {
		return mateScore - n
	}
	return -mateScore - n
}
