// Package pgn turns PGN game records into the model types the analysis
// pipeline consumes: tags, per-move SAN/UCI/FEN, legal-move counts and
// think times recovered from embedded [%clk] annotations.
package pgn

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"os"
	"regexp"
	"strconv"
	"strings"

	"github.com/notnil/chess"

	"github.com/pable/go-chess-forensics/internal/model"
)

// clkRe matches lichess/chess.com clock annotations: {[%clk 0:05:32]} or
// {[%clk 1:02:03.4]}. Matches appear in movetext order, one per half-move.
var clkRe = regexp.MustCompile(`\[%clk\s+(\d+):(\d{1,2}):(\d{1,2}(?:\.\d+)?)\]`)

// ParseFile reads and parses a single-game PGN file.
func ParseFile(path string) (*model.Game, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read pgn: %w", err)
	}
	return Parse(string(raw))
}

// Parse builds a model.Game from PGN source. The game hash is the sha256
// of the raw source, so re-analyzing the same file is a cache hit while
// any edit produces a distinct record. A game without moves is an error.
func Parse(src string) (*model.Game, error) {
	opt, err := chess.PGN(strings.NewReader(src))
	if err != nil {
		return nil, fmt.Errorf("parse pgn: %w", err)
	}
	cg := chess.NewGame(opt)

	moves := cg.Moves()
	if len(moves) == 0 {
		return nil, fmt.Errorf("pgn contains no moves")
	}
	positions := cg.Positions()

	sum := sha256.Sum256([]byte(src))
	g := &model.Game{
		Hash:        hex.EncodeToString(sum[:]),
		White:       tag(cg, "White"),
		Black:       tag(cg, "Black"),
		Result:      tag(cg, "Result"),
		Event:       tag(cg, "Event"),
		Date:        tag(cg, "Date"),
		TimeControl: tagOrEmpty(cg, "TimeControl"),
	}

	san := chess.AlgebraicNotation{}
	uci := chess.UCINotation{}
	for i, mv := range moves {
		pos := positions[i]
		m := model.Move{
			Ply:        i + 1,
			Number:     i/2 + 1,
			SAN:        san.Encode(pos, mv),
			UCI:        uci.Encode(pos, mv),
			FENBefore:  pos.String(),
			LegalMoves: len(pos.ValidMoves()),
		}
		if pos.Turn() == chess.White {
			m.Color = model.White
		} else {
			m.Color = model.Black
		}
		g.Moves = append(g.Moves, m)
	}

	attachThinkTimes(g, src)
	return g, nil
}

// tag returns a PGN tag value, defaulting to "Unknown" so reports and
// storage never carry empty player or event names.
func tag(g *chess.Game, key string) string {
	if tp := g.GetTagPair(key); tp != nil && tp.Value != "" && tp.Value != "?" {
		return tp.Value
	}
	return "Unknown"
}

// tagOrEmpty is tag without the default, for tags where absence matters.
func tagOrEmpty(g *chess.Game, key string) string {
	if tp := g.GetTagPair(key); tp != nil && tp.Value != "-" && tp.Value != "?" {
		return tp.Value
	}
	return ""
}

// attachThinkTimes derives per-move elapsed seconds from clock
// annotations. The i-th annotation in the movetext is the clock remaining
// after the i-th half-move; a player's think time is their previous
// remaining clock minus the current one, clamped at zero because
// increments can push the raw difference negative. A game with no or
// partial annotations simply leaves the affected moves untimed.
func attachThinkTimes(g *model.Game, src string) {
	clocks := clkRe.FindAllStringSubmatch(movetext(src), -1)
	if len(clocks) == 0 {
		return
	}

	base := float64(g.BaseTimeSeconds())
	prev := map[model.Color]float64{model.White: base, model.Black: base}
	seen := map[model.Color]bool{}

	for i := range g.Moves {
		if i >= len(clocks) {
			return
		}
		remaining, ok := clockSeconds(clocks[i])
		if !ok {
			continue
		}
		mv := &g.Moves[i]
		// The first move per side needs the starting clock; without a
		// TimeControl tag there is nothing to diff against.
		if seen[mv.Color] || base > 0 {
			elapsed := max(0, prev[mv.Color]-remaining)
			mv.ElapsedSeconds = model.Float(elapsed)
		}
		prev[mv.Color] = remaining
		seen[mv.Color] = true
	}
}

// movetext strips the tag-pair section so clock regex matches cannot come
// from headers.
func movetext(src string) string {
	if i := strings.Index(src, "\n\n"); i >= 0 {
		return src[i:]
	}
	return src
}

func clockSeconds(m []string) (float64, bool) {
	h, err1 := strconv.Atoi(m[1])
	min, err2 := strconv.Atoi(m[2])
	sec, err3 := strconv.ParseFloat(m[3], 64)
	if err1 != nil || err2 != nil || err3 != nil {
		return 0, false
	}
	return float64(h*3600+min*60) + sec, true
}
