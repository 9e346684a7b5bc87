package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	"github.com/spf13/cobra"

	"github.com/pable/go-chess-forensics/internal/complexity"
	"github.com/pable/go-chess-forensics/internal/model"
	"github.com/pable/go-chess-forensics/internal/storage"
)

const explainSystemPrompt = `You are a chess fair-play analyst. You are given structured data from a
game-analysis tool and a question from a reviewer.

Rules:
- Answer ONLY from the data provided. Never invent or estimate statistics.
- Always cite specific numbers when making a claim.
- If the data is insufficient to answer confidently, say so explicitly.
- A high risk score is a screening signal, not proof of cheating; phrase
  conclusions accordingly.
- Be concise — focus on which metrics drive the assessment.

Metrics glossary:
- Accuracy: mean of max(0, 100 - cp_loss/3) per move. >95 over a long game is rare for humans.
- CP loss: centipawns lost vs the engine's best move. 0 = best move played.
- Best-move rate: % of evaluated moves matching the engine's first choice. Strong humans: 40-60%.
- Top-3 rate: % of evaluated moves inside the engine's top 3 choices.
- PCS: positional complexity score from multi-PV score gaps. trivial <30, balanced <80, critical <150, chaotic >=150.
- Opening moves: consecutive moves matching a rated-game opening database.
- Time consistency (CV): std/mean of move times. Humans vary with position; CV >0.8 with high accuracy is unusual.
- Complexity-time correlation: humans think longer in complex positions (positive corr). Near-zero with flat times is suspicious.
- Timing flags are corroborating signals only and never enter the risk score.
- Risk score 0-100: very low <20, low <40, moderate <60, high <80, very high >=80.`

var (
	explainModel  string
	explainAPIKey string
)

var explainCmd = &cobra.Command{
	Use:   "explain <hash-prefix> <question>",
	Short: "AI-powered grounded review of a stored analysis (requires ANTHROPIC_API_KEY)",
	Args:  cobra.ExactArgs(2),
	RunE:  runExplain,
}

func init() {
	explainCmd.Flags().StringVar(&explainModel, "model", "claude-haiku-4-5-20251001", "Anthropic model to use")
	explainCmd.Flags().StringVar(&explainAPIKey, "api-key", "", "Anthropic API key (falls back to $ANTHROPIC_API_KEY)")
}

func runExplain(cmd *cobra.Command, args []string) error {
	question := args[1]

	db, err := storage.Open(dbPath)
	if err != nil {
		return fmt.Errorf("open storage: %w", err)
	}
	defer db.Close()

	summary, err := db.GetGameByPrefix(args[0])
	if err != nil {
		return fmt.Errorf("query game: %w", err)
	}
	if summary == nil {
		return fmt.Errorf("game not found: %s", args[0])
	}
	records, err := db.GetPlayerRecords(summary.Hash)
	if err != nil {
		return fmt.Errorf("get player metrics: %w", err)
	}
	analyses, err := db.GetMoveAnalyses(summary.Hash)
	if err != nil {
		return fmt.Errorf("get move analyses: %w", err)
	}

	contextJSON, err := buildGameContext(summary, records, analyses)
	if err != nil {
		return fmt.Errorf("build context: %w", err)
	}
	return callAnthropic(cmd.Context(), explainAPIKey, explainModel, contextJSON, question)
}

// buildGameContext serialises a stored analysis into compact JSON: the
// game header, both players' metrics and the notable moves (blunders and
// critical positions), not the full move sheet.
func buildGameContext(summary *model.GameSummary, records []storage.PlayerRecord, analyses []model.MoveAnalysis) (string, error) {
	players := make([]exportPlayer, 0, len(records))
	for _, r := range records {
		players = append(players, buildExportPlayer(r))
	}

	var notable []exportMove
	for i := range analyses {
		a := &analyses[i]
		bigLoss := a.CentipawnLoss != nil && *a.CentipawnLoss >= 100
		critical := a.PCS != nil && *a.PCS >= 150
		if bigLoss || critical {
			notable = append(notable, buildExportMove(a))
		}
	}

	doc := map[string]any{
		"subject": "game",
		"white":   summary.White,
		"black":   summary.Black,
		"result":  summary.Result,
		"date":    summary.Date,
		"time_control": map[string]any{
			"tag": summary.TimeControl,
		},
		"engine": map[string]any{
			"depth":   summary.EngineDepth,
			"multipv": summary.MultiPV,
		},
		"plies":         summary.PlyCount,
		"complexity":    complexity.Summarize(analyses),
		"players":       players,
		"notable_moves": notable,
	}

	b, err := json.Marshal(doc)
	return string(b), err
}

// callAnthropic streams a response from the Anthropic API and prints it to
// stdout.
func callAnthropic(ctx context.Context, apiKey, modelID, dataJSON, question string) error {
	if apiKey == "" {
		apiKey = os.Getenv("ANTHROPIC_API_KEY")
	}
	if apiKey == "" {
		return fmt.Errorf("no API key: set ANTHROPIC_API_KEY or use --api-key")
	}

	client := anthropic.NewClient(option.WithAPIKey(apiKey))

	userMsg := fmt.Sprintf("DATA:\n%s\n\nQUESTION: %s", dataJSON, question)

	fmt.Fprintln(os.Stdout, "\n─── AI Review ───────────────────────────────────────")

	stream := client.Messages.NewStreaming(ctx, anthropic.MessageNewParams{
		Model:     anthropic.Model(modelID),
		MaxTokens: 1024,
		System: []anthropic.TextBlockParam{
			{Text: explainSystemPrompt},
		},
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(userMsg)),
		},
	})

	for stream.Next() {
		evt := stream.Current()
		if evt.Type == "content_block_delta" {
			delta := evt.AsContentBlockDelta()
			if delta.Delta.Type == "text_delta" {
				fmt.Fprint(os.Stdout, delta.Delta.AsTextDelta().Text)
			}
		}
	}
	fmt.Fprintln(os.Stdout, "\n─────────────────────────────────────────────────────")

	if err := stream.Err(); err != nil {
		errStr := err.Error()
		if strings.Contains(errStr, "401") || strings.Contains(errStr, "authentication") {
			return fmt.Errorf("API authentication failed — check your API key")
		}
		return fmt.Errorf("streaming error: %w", err)
	}
	return nil
}
