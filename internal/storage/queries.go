package storage

import (
	"database/sql"
	"fmt"
	"strings"

	"github.com/pable/go-chess-forensics/internal/model"
)

// PlayerRecord pairs a player's aggregated metrics with the risk
// assessment derived from them; the two are always written together.
type PlayerRecord struct {
	Metrics model.PlayerMetrics
	Risk    model.RiskAssessment
}

// Overview holds store-wide aggregates for the summary command.
type Overview struct {
	Games           int
	Players         int
	HighRiskPlayers int // risk score 60 and above
	AvgAccuracy     *float64
	AvgRiskScore    *float64
}

// GameExists returns true if a game with the given hash is already stored.
func (db *DB) GameExists(hash string) (bool, error) {
	var count int
	err := db.conn.QueryRow("SELECT COUNT(1) FROM games WHERE hash = ?", hash).Scan(&count)
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// InsertGame inserts a game record. Uses INSERT OR REPLACE so re-analyzing
// the same PGN is idempotent.
func (db *DB) InsertGame(s model.GameSummary) error {
	_, err := db.conn.Exec(`
		INSERT OR REPLACE INTO games(hash, white, black, result, event, date, time_control, ply_count, engine_depth, multipv, analyzed_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		s.Hash, s.White, s.Black, s.Result, s.Event, s.Date,
		s.TimeControl, s.PlyCount, s.EngineDepth, s.MultiPV, s.AnalyzedAt,
	)
	return err
}

// ListGames returns all stored game summaries, most recently analyzed first.
func (db *DB) ListGames() ([]model.GameSummary, error) {
	rows, err := db.conn.Query(`
		SELECT hash, white, black, result, event, date, time_control, ply_count, engine_depth, multipv, analyzed_at
		FROM games ORDER BY analyzed_at DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.GameSummary
	for rows.Next() {
		var s model.GameSummary
		if err := rows.Scan(&s.Hash, &s.White, &s.Black, &s.Result, &s.Event, &s.Date,
			&s.TimeControl, &s.PlyCount, &s.EngineDepth, &s.MultiPV, &s.AnalyzedAt); err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

// GetGameByPrefix finds the first game whose hash starts with the given
// prefix. Returns nil with no error when nothing matches.
func (db *DB) GetGameByPrefix(prefix string) (*model.GameSummary, error) {
	var s model.GameSummary
	err := db.conn.QueryRow(`
		SELECT hash, white, black, result, event, date, time_control, ply_count, engine_depth, multipv, analyzed_at
		FROM games WHERE hash LIKE ? LIMIT 1`, prefix+"%").
		Scan(&s.Hash, &s.White, &s.Black, &s.Result, &s.Event, &s.Date,
			&s.TimeControl, &s.PlyCount, &s.EngineDepth, &s.MultiPV, &s.AnalyzedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &s, nil
}

// InsertPlayerRecords writes both players' metrics and risk in one
// transaction.
func (db *DB) InsertPlayerRecords(records []PlayerRecord) error {
	tx, err := db.conn.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	stmt, err := tx.Prepare(`
		INSERT OR REPLACE INTO player_metrics(
			game_hash, name, color, total_moves, evaluated_moves,
			accuracy, avg_loss, std_loss, best_move_rate, top3_rate, ranked_moves,
			excellent_count, good_count, inaccuracy_count, mistake_count, blunder_count,
			opening_moves,
			timed_moves, time_mean, time_std, consistency, consistency_def,
			complexity_corr, timing_flag, timing_suppress,
			avg_pcs, max_pcs,
			risk_score, risk_level, risk_factors
		) VALUES (?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?)`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, r := range records {
		m := r.Metrics
		_, err = stmt.Exec(
			m.GameHash, m.Name, m.Color.String(), m.TotalMoves, m.EvaluatedMoves,
			nullFloat(m.AccuracyScore), nullFloat(m.AvgLoss), nullFloat(m.StdLoss),
			nullFloat(m.BestMoveRate), nullFloat(m.Top3Rate), m.RankedMoves,
			m.ExcellentCount, m.GoodCount, m.InaccuracyCount, m.MistakeCount, m.BlunderCount,
			m.OpeningMoveCount,
			m.Timing.TimedMoves, m.Timing.MeanSeconds, m.Timing.StdSeconds,
			m.Timing.Consistency, boolInt(m.Timing.Defined),
			m.Timing.ComplexityCorr, m.Timing.Flag, boolInt(m.Timing.Suppressed),
			m.AvgPCS, m.MaxPCS,
			r.Risk.Score, r.Risk.Level, strings.Join(r.Risk.Factors, "\n"),
		)
		if err != nil {
			return fmt.Errorf("insert player_metrics for %s/%s: %w", m.GameHash, m.Color, err)
		}
	}
	return tx.Commit()
}

// GetPlayerRecords returns both players' records for a game, white first.
func (db *DB) GetPlayerRecords(gameHash string) ([]PlayerRecord, error) {
	rows, err := db.conn.Query(`
		SELECT name, color, total_moves, evaluated_moves,
		       accuracy, avg_loss, std_loss, best_move_rate, top3_rate, ranked_moves,
		       excellent_count, good_count, inaccuracy_count, mistake_count, blunder_count,
		       opening_moves,
		       timed_moves, time_mean, time_std, consistency, consistency_def,
		       complexity_corr, timing_flag, timing_suppress,
		       avg_pcs, max_pcs,
		       risk_score, risk_level, risk_factors
		FROM player_metrics WHERE game_hash = ?
		ORDER BY color DESC`, gameHash)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []PlayerRecord
	for rows.Next() {
		var r PlayerRecord
		var colorStr, factors string
		var acc, avgLoss, stdLoss, bestRate, top3 sql.NullFloat64
		var consistencyDef, suppressed int
		if err := rows.Scan(
			&r.Metrics.Name, &colorStr, &r.Metrics.TotalMoves, &r.Metrics.EvaluatedMoves,
			&acc, &avgLoss, &stdLoss, &bestRate, &top3, &r.Metrics.RankedMoves,
			&r.Metrics.ExcellentCount, &r.Metrics.GoodCount, &r.Metrics.InaccuracyCount,
			&r.Metrics.MistakeCount, &r.Metrics.BlunderCount,
			&r.Metrics.OpeningMoveCount,
			&r.Metrics.Timing.TimedMoves, &r.Metrics.Timing.MeanSeconds, &r.Metrics.Timing.StdSeconds,
			&r.Metrics.Timing.Consistency, &consistencyDef,
			&r.Metrics.Timing.ComplexityCorr, &r.Metrics.Timing.Flag, &suppressed,
			&r.Metrics.AvgPCS, &r.Metrics.MaxPCS,
			&r.Risk.Score, &r.Risk.Level, &factors,
		); err != nil {
			return nil, err
		}
		r.Metrics.GameHash = gameHash
		r.Metrics.Color = model.Color(colorStr)
		r.Metrics.AccuracyScore = floatPtr(acc)
		r.Metrics.AvgLoss = floatPtr(avgLoss)
		r.Metrics.StdLoss = floatPtr(stdLoss)
		r.Metrics.BestMoveRate = floatPtr(bestRate)
		r.Metrics.Top3Rate = floatPtr(top3)
		r.Metrics.Timing.Defined = consistencyDef != 0
		r.Metrics.Timing.Suppressed = suppressed != 0
		if factors != "" {
			r.Risk.Factors = strings.Split(factors, "\n")
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

// InsertMoveAnalyses bulk-inserts per-move records in a transaction. Only
// the best engine line is persisted; the full multi-PV set lives in the
// derived rank, loss and complexity columns.
func (db *DB) InsertMoveAnalyses(gameHash string, analyses []model.MoveAnalysis) error {
	tx, err := db.conn.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	stmt, err := tx.Prepare(`
		INSERT OR REPLACE INTO move_analyses(
			game_hash, ply, number, color, san, uci, fen_before, legal_moves,
			elapsed_seconds, eval_depth, best_uci, best_score,
			move_rank, cp_loss, loss_approx, pcs, pcs_category, in_theory, theory_known
		) VALUES (?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?)`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, a := range analyses {
		var evalDepth, bestScore any
		var bestUCI any
		if a.Eval != nil && len(a.Eval.Lines) > 0 {
			evalDepth = a.Eval.Depth
			bestUCI = a.Eval.Lines[0].MoveUCI
			bestScore = a.Eval.Lines[0].ScoreCP
		}
		_, err = stmt.Exec(
			gameHash, a.Ply, a.Number, a.Color.String(), a.SAN, a.UCI, a.FENBefore, a.LegalMoves,
			nullFloat(a.ElapsedSeconds), evalDepth, bestUCI, bestScore,
			nullInt(a.Rank), nullFloat(a.CentipawnLoss), boolInt(a.LossApproximate),
			nullFloat(a.PCS), a.PCSCategory, boolInt(a.InTheory), boolInt(a.TheoryKnown),
		)
		if err != nil {
			return fmt.Errorf("insert move_analyses ply %d: %w", a.Ply, err)
		}
	}
	return tx.Commit()
}

// GetMoveAnalyses returns a game's per-move records in ply order.
func (db *DB) GetMoveAnalyses(gameHash string) ([]model.MoveAnalysis, error) {
	rows, err := db.conn.Query(`
		SELECT ply, number, color, san, uci, fen_before, legal_moves,
		       elapsed_seconds, eval_depth, best_uci, best_score,
		       move_rank, cp_loss, loss_approx, pcs, pcs_category, in_theory, theory_known
		FROM move_analyses WHERE game_hash = ? ORDER BY ply`, gameHash)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.MoveAnalysis
	for rows.Next() {
		var a model.MoveAnalysis
		var colorStr string
		var elapsed, cpLoss, pcs sql.NullFloat64
		var evalDepth, bestScore, rank sql.NullInt64
		var bestUCI sql.NullString
		var lossApprox, inTheory, theoryKnown int
		if err := rows.Scan(
			&a.Ply, &a.Number, &colorStr, &a.SAN, &a.UCI, &a.FENBefore, &a.LegalMoves,
			&elapsed, &evalDepth, &bestUCI, &bestScore,
			&rank, &cpLoss, &lossApprox, &pcs, &a.PCSCategory, &inTheory, &theoryKnown,
		); err != nil {
			return nil, err
		}
		a.Color = model.Color(colorStr)
		a.ElapsedSeconds = floatPtr(elapsed)
		if evalDepth.Valid {
			a.Eval = &model.EngineEvaluation{
				Depth: int(evalDepth.Int64),
				Lines: []model.EngineLine{{MoveUCI: bestUCI.String, ScoreCP: int(bestScore.Int64)}},
			}
		}
		a.Rank = intPtr(rank)
		a.CentipawnLoss = floatPtr(cpLoss)
		a.LossApproximate = lossApprox != 0
		a.PCS = floatPtr(pcs)
		a.InTheory = inTheory != 0
		a.TheoryKnown = theoryKnown != 0
		out = append(out, a)
	}
	return out, rows.Err()
}

// DeleteGame removes a game and all its dependent rows.
func (db *DB) DeleteGame(hash string) error {
	tx, err := db.conn.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	for _, q := range []string{
		"DELETE FROM move_analyses WHERE game_hash = ?",
		"DELETE FROM player_metrics WHERE game_hash = ?",
		"DELETE FROM games WHERE hash = ?",
	} {
		if _, err := tx.Exec(q, hash); err != nil {
			return err
		}
	}
	return tx.Commit()
}

// GetOverview returns store-wide aggregates.
func (db *DB) GetOverview() (*Overview, error) {
	var o Overview
	if err := db.conn.QueryRow("SELECT COUNT(1) FROM games").Scan(&o.Games); err != nil {
		return nil, err
	}
	var avgAcc, avgRisk sql.NullFloat64
	err := db.conn.QueryRow(`
		SELECT COUNT(1),
		       COALESCE(SUM(CASE WHEN risk_score >= 60 THEN 1 ELSE 0 END), 0),
		       AVG(accuracy),
		       AVG(risk_score)
		FROM player_metrics`).Scan(&o.Players, &o.HighRiskPlayers, &avgAcc, &avgRisk)
	if err != nil {
		return nil, err
	}
	o.AvgAccuracy = floatPtr(avgAcc)
	o.AvgRiskScore = floatPtr(avgRisk)
	return &o, nil
}

func boolInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

func nullFloat(p *float64) any {
	if p == nil {
		return nil
	}
	return *p
}

func nullInt(p *int) any {
	if p == nil {
		return nil
	}
	return *p
}

func floatPtr(n sql.NullFloat64) *float64 {
	if !n.Valid {
		return nil
	}
	v := n.Float64
	return &v
}

func intPtr(n sql.NullInt64) *int {
	if !n.Valid {
		return nil
	}
	v := int(n.Int64)
	return &v
}
