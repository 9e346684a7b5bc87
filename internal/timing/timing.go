// Package timing characterizes a player's thinking-time behavior: how
// uniform their move times are and whether time spent tracks position
// complexity.
package timing

import (
	"math"

	"github.com/pable/go-chess-forensics/internal/model"
)

// Policy thresholds for the consistency flag.
const (
	elevatedCV         = 0.8
	stronglyElevatedCV = 0.9

	// The first plies of any game are played quickly and uniformly by
	// everyone; they are excluded from the flag computation.
	openingGracePlies = 10
)

const (
	FlagElevated         = "elevated"
	FlagStronglyElevated = "strongly elevated"
)

// Mean returns the arithmetic mean of xs, 0 for an empty slice.
func Mean(xs []float64) float64 {
	if len(xs) == 0 {
		return 0
	}
	var sum float64
	for _, x := range xs {
		sum += x
	}
	return sum / float64(len(xs))
}

// StdDev returns the population standard deviation of xs.
func StdDev(xs []float64) float64 {
	if len(xs) < 2 {
		return 0
	}
	m := Mean(xs)
	var ss float64
	for _, x := range xs {
		d := x - m
		ss += d * d
	}
	return math.Sqrt(ss / float64(len(xs)))
}

// Pearson returns the Pearson correlation coefficient of two equal-length
// series. Returns 0 with fewer than 2 samples or when either series has
// zero variance.
func Pearson(xs, ys []float64) float64 {
	n := len(xs)
	if n != len(ys) || n < 2 {
		return 0
	}
	mx, my := Mean(xs), Mean(ys)
	var sxy, sxx, syy float64
	for i := 0; i < n; i++ {
		dx, dy := xs[i]-mx, ys[i]-my
		sxy += dx * dy
		sxx += dx * dx
		syy += dy * dy
	}
	if sxx == 0 || syy == 0 {
		return 0
	}
	return sxy / math.Sqrt(sxx*syy)
}

// Analyze derives the timing summary for one player's move sequence.
// baseTimeSeconds is the game's base time control; at or below
// bulletThreshold the consistency flag is suppressed entirely.
func Analyze(moves []model.MoveAnalysis, baseTimeSeconds, bulletThreshold int) model.TimingSummary {
	var times []float64
	var pcs, pcsTimes []float64
	for _, m := range moves {
		if m.ElapsedSeconds == nil {
			continue
		}
		times = append(times, *m.ElapsedSeconds)
		if m.PCS != nil {
			pcs = append(pcs, *m.PCS)
			pcsTimes = append(pcsTimes, *m.ElapsedSeconds)
		}
	}

	s := model.TimingSummary{TimedMoves: len(times)}
	s.MeanSeconds = Mean(times)
	s.StdSeconds = StdDev(times)
	if len(times) >= 2 && s.MeanSeconds > 0 {
		s.Consistency = s.StdSeconds / s.MeanSeconds
		s.Defined = true
	}
	s.ComplexityCorr = Pearson(pcs, pcsTimes)

	s.Flag, s.Suppressed = flag(times, baseTimeSeconds, bulletThreshold)
	return s
}

// flag computes the policy signal over the timed moves past the opening
// grace window.
func flag(times []float64, baseTimeSeconds, bulletThreshold int) (string, bool) {
	if baseTimeSeconds > 0 && baseTimeSeconds <= bulletThreshold {
		return "", true
	}
	if len(times) <= openingGracePlies {
		return "", false
	}
	rest := times[openingGracePlies:]
	m := Mean(rest)
	if len(rest) < 2 || m == 0 {
		return "", false
	}
	cv := StdDev(rest) / m
	switch {
	case cv > stronglyElevatedCV:
		return FlagStronglyElevated, false
	case cv > elevatedCV:
		return FlagElevated, false
	}
	return "", false
}
