// Package analysis produces AI rating refreshes. With an OpenAI API key it
// asks the model to rate the player from their current record; without one,
// or when the API call fails, it falls back to the deterministic formulas
// the cascade rules use.
package analysis

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	openai "github.com/sashabaranov/go-openai"
	"go.uber.org/zap"

	"github.com/squadpulse/squadpulse/internal/integrity"
	"github.com/squadpulse/squadpulse/internal/player"
)

const systemPrompt = "You are a football performance analyst. Given a player record, " +
	"reply with ONLY a JSON object of the form " +
	`{"physicality": x, "skillset": x, "gameImpact": x, "overall": x}` +
	" where every value is a number between 0 and 10."

// Analyzer rates players. A nil client means fallback-only mode.
type Analyzer struct {
	client *openai.Client
	model  string
	log    *zap.Logger
}

// New creates an analyzer. An empty API key is valid and selects the
// deterministic fallback.
func New(apiKey, model string, log *zap.Logger) *Analyzer {
	a := &Analyzer{model: model, log: log}
	if apiKey != "" {
		a.client = openai.NewClient(apiKey)
	}
	return a
}

// Rate produces a full rating for the player document.
func (a *Analyzer) Rate(ctx context.Context, doc *player.Document) (player.AIRating, error) {
	if a.client == nil {
		return Fallback(doc), nil
	}
	rating, err := a.rateWithModel(ctx, doc)
	if err != nil {
		a.log.Warn("model rating failed, using fallback formulas", zap.Error(err))
		return Fallback(doc), nil
	}
	return rating, nil
}

func (a *Analyzer) rateWithModel(ctx context.Context, doc *player.Document) (player.AIRating, error) {
	record, err := json.Marshal(doc)
	if err != nil {
		return player.AIRating{}, fmt.Errorf("encoding player record: %w", err)
	}

	resp, err := a.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: a.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: systemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: string(record)},
		},
		Temperature: 0,
	})
	if err != nil {
		return player.AIRating{}, fmt.Errorf("chat completion: %w", err)
	}
	if len(resp.Choices) == 0 {
		return player.AIRating{}, fmt.Errorf("no completion choices returned")
	}

	return parseRating(resp.Choices[0].Message.Content)
}

// parseRating decodes the model reply, tolerating a fenced code block.
func parseRating(content string) (player.AIRating, error) {
	content = strings.TrimSpace(content)
	content = strings.TrimPrefix(content, "```json")
	content = strings.TrimPrefix(content, "```")
	content = strings.TrimSuffix(content, "```")

	var rating player.AIRating
	if err := json.Unmarshal([]byte(strings.TrimSpace(content)), &rating); err != nil {
		return player.AIRating{}, fmt.Errorf("parsing model reply: %w", err)
	}
	rating.Physicality = clamp10(rating.Physicality)
	rating.Skillset = clamp10(rating.Skillset)
	rating.GameImpact = clamp10(rating.GameImpact)
	rating.Overall = clamp10(rating.Overall)
	return rating, nil
}

// Fallback computes the rating with the same formulas the cascade rules
// use, so an offline refresh is consistent with cascade-produced values.
func Fallback(doc *player.Document) player.AIRating {
	physicality := integrity.PhysicalityScore(doc.PhysicalAttributes)
	skillset := integrity.SkillsetScore(doc.Skills)
	gameImpact := integrity.GameImpactScore(doc.GameStats)
	return player.AIRating{
		Physicality: physicality,
		Skillset:    skillset,
		GameImpact:  gameImpact,
		Overall:     integrity.OverallRating(physicality, skillset, gameImpact),
	}
}

func clamp10(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 10 {
		return 10
	}
	return v
}
