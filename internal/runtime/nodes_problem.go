package runtime

import (
	"context"
	"fmt"
	"strings"

	"github.com/mitchellh/mapstructure"

	"github.com/aurida/helpline/pkg/domain"
)

const problemClassifyPrompt = `You are a triage assistant for an internet service provider's support line.
Classify the customer's reported problem from the conversation below.

Respond with a single JSON object, nothing else:
{
  "type": one of "internet_down", "slow_speed", "tv_issue", "wifi_issue", "other",
  "description": short summary of the problem in the customer's language,
  "identified": true if the problem is clear enough to start diagnostics, false if a clarifying question is needed
}

Reference notes that may help with classification:
%s`

// problemClassification is the structured result of the triage prompt.
type problemClassification struct {
	Type        string `mapstructure:"type"`
	Description string `mapstructure:"description"`
	Identified  bool   `mapstructure:"identified"`
}

// nodeProblemCapture classifies the caller's problem from their latest
// messages. Loops (via its router) while the description stays ambiguous.
func (e *Engine) nodeProblemCapture(ctx context.Context, s *domain.ConversationState) Result {
	text := s.LastUserMessage()
	if text == "" {
		return Result{Patch: e.clarifyPatch(s)}
	}

	// Optional enrichment; unavailability degrades quality, never the turn.
	notes := "(none)"
	if e.collab.Retrieval != nil {
		docs, err := e.collab.Retrieval.Retrieve(ctx, text, 3, 0.35)
		if err != nil {
			e.logger.Warn("retrieval unavailable, classifying without notes", "err", err)
		} else if len(docs) > 0 {
			parts := make([]string, 0, len(docs))
			for _, d := range docs {
				parts = append(parts, "- "+d.Content)
			}
			notes = strings.Join(parts, "\n")
		}
	}

	raw, err := e.collab.LLM.GenerateJSON(ctx,
		fmt.Sprintf(problemClassifyPrompt, notes),
		recentMessages(s, 6), 0.1, 300)
	if err != nil {
		return Result{Err: fmt.Errorf("classify problem: %w", err)}
	}

	var c problemClassification
	if err := mapstructure.WeakDecode(raw, &c); err != nil {
		return Result{Err: fmt.Errorf("decode classification: %w", err)}
	}

	description := c.Description
	if description == "" {
		description = text
	}

	if !c.Identified || c.Type == "" {
		patch := e.clarifyPatch(s)
		// Keep the partial description so the next attempt has context.
		patch.Problem = &domain.Problem{Description: description}
		return Result{Patch: patch}
	}

	return Result{Patch: domain.Patch{
		Problem: &domain.Problem{
			Type:        c.Type,
			Description: description,
			Identified:  true,
		},
	}}
}

func (e *Engine) clarifyPatch(s *domain.ConversationState) domain.Patch {
	return domain.Patch{
		AppendMessages: []domain.Message{
			e.assistantMessage(domain.NodeProblemCapture, e.t(s, "problem.clarify")),
		},
		Flags: &domain.Flags{WaitingForUserInput: true},
	}
}
