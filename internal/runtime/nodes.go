package runtime

import (
	"context"
	"strings"

	"github.com/aurida/helpline/pkg/domain"
)

// nodeGreeting emits the welcome message. First contact only: the entry
// resolver routes here exclusively for an empty transcript.
func (e *Engine) nodeGreeting(ctx context.Context, s *domain.ConversationState) Result {
	return Result{Patch: domain.Patch{
		AppendMessages: []domain.Message{
			e.assistantMessage(domain.NodeGreeting, e.t(s, "greeting.welcome")),
		},
		Flags: &domain.Flags{WaitingForUserInput: true},
	}}
}

// nodeInformProviderIssue explains the outage and ends the conversation.
// Terminal for the provider-issue path; no ticket is needed because the
// fault is already known on the provider side.
func (e *Engine) nodeInformProviderIssue(ctx context.Context, s *domain.ConversationState) Result {
	summary := summarizeIssues(s.Diagnostics.IssuesFound)
	if summary == "" {
		summary = e.t(s, "diagnostics.generic_issue")
	}

	return Result{Patch: domain.Patch{
		AppendMessages: []domain.Message{
			e.assistantMessage(domain.NodeInformProviderIssue, e.t(s, "diagnostics.provider_issue", summary)),
		},
		Flags: &domain.Flags{ConversationEnded: true},
	}}
}

// nodeClosing says goodbye and ends the conversation. The farewell depends
// on how far the conversation got.
func (e *Engine) nodeClosing(ctx context.Context, s *domain.ConversationState) Result {
	key := "closing.goodbye"
	switch {
	case s.Troubleshoot.Resolved:
		key = "closing.resolved"
	case s.Diagnostics.Completed && !s.Diagnostics.NeedsTroubleshooting:
		key = "closing.line_ok"
	case !s.Customer.Identified():
		key = "closing.not_identified"
	}

	return Result{Patch: domain.Patch{
		AppendMessages: []domain.Message{
			e.assistantMessage(domain.NodeClosing, e.t(s, key)),
		},
		Flags: &domain.Flags{ConversationEnded: true},
	}}
}

func summarizeIssues(issues []domain.Issue) string {
	parts := make([]string, 0, len(issues))
	for _, issue := range issues {
		if issue.Description != "" {
			parts = append(parts, issue.Description)
		}
	}
	return strings.Join(parts, "; ")
}
