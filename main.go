// Package main is the entry point for the chessforensics CLI tool, which
// replays PGN chess games through a UCI engine and computes per-player
// forensic statistics for fair-play review.
package main

import "github.com/pable/go-chess-forensics/cmd"

func main() {
	cmd.Execute()
}
