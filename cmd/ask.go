package cmd

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	json "github.com/goccy/go-json"
	"github.com/spf13/cobra"

	"github.com/pable/go-smite-metrics/internal/model"
	"github.com/pable/go-smite-metrics/internal/storage"
)

const askSystemPrompt = `You are a SMITE 2 performance analyst. You are given structured data
from a combat-log parsing tool and a question from the player.

Rules:
- Answer ONLY from the data provided. Never invent or estimate statistics.
- Always cite specific numbers when making a claim.
- If the data is insufficient to answer confidently, say so explicitly.
- Be concise and actionable — focus on what the player can actually improve.
- Avoid generic MOBA advice unless it directly explains a pattern in the data.

Metrics glossary:
- KDA: (kills + assists) / deaths, with deaths floored at 1.
- DPM: damage per minute against all targets.
- Player damage: damage dealt to enemy gods only.
- Damage efficiency: total damage per gold spent on items. Higher = better itemization value.
- Gold efficiency: gold earned per minute of match time.
- Survival efficiency: weighted kills+assists per death. Higher = better trades.
- Combat contribution: share of the team's god damage dealt by this player (%).
- Target prioritization: share of damage dealt to high-priority targets (%).
- Mitigated damage: damage absorbed by protections while attacking.`

var (
	askModel  string
	askAPIKey string
)

var askCmd = &cobra.Command{
	Use:   "ask",
	Short: "AI-powered grounded analysis (requires ANTHROPIC_API_KEY)",
}

var askMatchCmd = &cobra.Command{
	Use:   "match <match-prefix> <question>",
	Short: "Analyze a stored match with AI",
	Args:  cobra.ExactArgs(2),
	RunE:  runAskMatch,
}

var askPlayerCmd = &cobra.Command{
	Use:   "player <name> <question>",
	Short: "Analyze a player's stored matches with AI",
	Args:  cobra.ExactArgs(2),
	RunE:  runAskPlayer,
}

func init() {
	askCmd.PersistentFlags().StringVar(&askModel, "model", "claude-haiku-4-5-20251001", "Anthropic model to use")
	askCmd.PersistentFlags().StringVar(&askAPIKey, "api-key", "", "Anthropic API key (falls back to $ANTHROPIC_API_KEY)")

	askCmd.AddCommand(askMatchCmd)
	askCmd.AddCommand(askPlayerCmd)
}

func runAskMatch(cmd *cobra.Command, args []string) error {
	db, err := storage.Open(dbPath)
	if err != nil {
		return fmt.Errorf("open storage: %w", err)
	}
	defer db.Close()

	match, err := db.GetMatchByPrefix(args[0])
	if err != nil {
		return fmt.Errorf("find match: %w", err)
	}
	if match == nil {
		return fmt.Errorf("no match found with prefix %q", args[0])
	}
	metrics, err := db.GetPlayerMetrics(match.MatchID)
	if err != nil {
		return fmt.Errorf("query metrics: %w", err)
	}

	contextJSON, err := buildMatchContext(match, metrics)
	if err != nil {
		return fmt.Errorf("build context: %w", err)
	}
	return streamAnthropic(cmd.Context(), askAPIKey, askModel, contextJSON, args[1])
}

func runAskPlayer(cmd *cobra.Command, args []string) error {
	db, err := storage.Open(dbPath)
	if err != nil {
		return fmt.Errorf("open storage: %w", err)
	}
	defer db.Close()

	metrics, err := db.GetAllPlayerMetrics(args[0])
	if err != nil {
		return fmt.Errorf("query metrics: %w", err)
	}
	if len(metrics) == 0 {
		return fmt.Errorf("no data for player %q", args[0])
	}

	contextJSON, err := buildPlayerContext(args[0], metrics)
	if err != nil {
		return fmt.Errorf("build context: %w", err)
	}
	return streamAnthropic(cmd.Context(), askAPIKey, askModel, contextJSON, args[1])
}

type metricsEntry struct {
	Match                string  `json:"match,omitempty"`
	Name                 string  `json:"name,omitempty"`
	God                  string  `json:"god"`
	Role                 string  `json:"role,omitempty"`
	Team                 string  `json:"team,omitempty"`
	Kills                int     `json:"kills"`
	Deaths               int     `json:"deaths"`
	Assists              int     `json:"assists"`
	KDA                  float64 `json:"kda"`
	PlayerDamage         float64 `json:"player_damage"`
	TotalDamage          float64 `json:"total_damage"`
	DPM                  float64 `json:"dpm"`
	MitigatedDamage      float64 `json:"mitigated_damage"`
	DamageReceived       float64 `json:"damage_received"`
	HealingDone          float64 `json:"healing_done"`
	GoldEarned           float64 `json:"gold_earned"`
	GoldSpent            float64 `json:"gold_spent"`
	GPM                  float64 `json:"gpm"`
	DamageEfficiency     float64 `json:"damage_efficiency"`
	GoldEfficiency       float64 `json:"gold_efficiency"`
	SurvivalEfficiency   float64 `json:"survival_efficiency"`
	CombatContribution   float64 `json:"combat_contribution_pct"`
	TargetPrioritization float64 `json:"target_prioritization_pct"`
}

func metricsToEntry(m model.PlayerMetrics, withMatch bool) metricsEntry {
	e := metricsEntry{
		God:                  m.GodName,
		Role:                 m.Role,
		Team:                 m.TeamID,
		Kills:                m.Kills,
		Deaths:               m.Deaths,
		Assists:              m.Assists,
		KDA:                  m.KDARatio,
		PlayerDamage:         m.PlayerDamage,
		TotalDamage:          m.TotalDamage,
		DPM:                  m.DamagePerMinute,
		MitigatedDamage:      m.MitigatedDamage,
		DamageReceived:       m.DamageReceived,
		HealingDone:          m.HealingDone,
		GoldEarned:           m.GoldEarned,
		GoldSpent:            m.GoldSpent,
		GPM:                  m.GoldPerMinute,
		DamageEfficiency:     m.DamageEfficiency,
		GoldEfficiency:       m.GoldEfficiency,
		SurvivalEfficiency:   m.SurvivalEfficiency,
		CombatContribution:   m.CombatContribution,
		TargetPrioritization: m.TargetPrioritization,
	}
	if withMatch {
		e.Match = m.MatchID
	} else {
		e.Name = m.PlayerName
	}
	return e
}

// buildMatchContext serialises one stored match into compact JSON.
func buildMatchContext(match *model.MatchSummary, metrics []model.PlayerMetrics) (string, error) {
	players := make([]metricsEntry, 0, len(metrics))
	for _, m := range metrics {
		players = append(players, metricsToEntry(m, false))
	}

	duration := 0.0
	if d, ok := match.DurationMinutes(); ok {
		duration = d
	}
	doc := map[string]any{
		"subject":          "match",
		"match_id":         match.MatchID,
		"mode":             match.Mode,
		"duration_minutes": duration,
		"players":          players,
	}

	b, err := json.Marshal(doc)
	return string(b), err
}

// buildPlayerContext serialises one player's match history into compact JSON.
func buildPlayerContext(name string, metrics []model.PlayerMetrics) (string, error) {
	matches := make([]metricsEntry, 0, len(metrics))
	for _, m := range metrics {
		matches = append(matches, metricsToEntry(m, true))
	}

	doc := map[string]any{
		"subject":          "player",
		"player":           name,
		"matches_analyzed": len(metrics),
		"matches":          matches,
	}

	b, err := json.Marshal(doc)
	return string(b), err
}

// streamAnthropic streams a response from the Anthropic API and prints it to stdout.
func streamAnthropic(ctx context.Context, apiKey, modelID, dataJSON, question string) error {
	if apiKey == "" {
		apiKey = os.Getenv("ANTHROPIC_API_KEY")
	}
	if apiKey == "" {
		return fmt.Errorf("no API key: set ANTHROPIC_API_KEY or use --api-key")
	}

	client := anthropic.NewClient(option.WithAPIKey(apiKey))

	userMsg := fmt.Sprintf("DATA:\n%s\n\nQUESTION: %s", dataJSON, question)

	fmt.Fprintln(os.Stdout, "\n─── AI Analysis ─────────────────────────────────────")

	stream := client.Messages.NewStreaming(ctx, anthropic.MessageNewParams{
		Model:     anthropic.Model(modelID),
		MaxTokens: 1024,
		System: []anthropic.TextBlockParam{
			{Text: askSystemPrompt},
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
