package runtime

import (
	"context"
	"fmt"

	"github.com/aurida/helpline/pkg/domain"
	"github.com/aurida/helpline/pkg/ports"
)

// nodeTroubleshooting steps through the scenario matching the captured
// problem, one instruction per user reply, counting unresolved attempts.
// Exhausting the retry budget (or the scenario) forces escalation.
func (e *Engine) nodeTroubleshooting(ctx context.Context, s *domain.ConversationState) Result {
	ts := s.Troubleshoot

	// Already concluded: the router takes over (closing or ticket).
	if ts.Resolved || ts.NeedsEscalation {
		return Result{}
	}

	if !ts.Active() {
		return e.startScenario(ctx, s)
	}

	scenario := e.scenarios.Get(ts.ScenarioID)
	if scenario == nil || ts.CurrentStep >= len(scenario.Steps) {
		// Scenario content changed between turns; escalate rather than guess.
		ts.NeedsEscalation = true
		return Result{Patch: domain.Patch{Troubleshoot: &ts}}
	}
	current := scenario.Steps[ts.CurrentStep]

	reply := s.LastUserMessage()
	if isAffirmative(reply) {
		ts.Resolved = true
		ts.CompletedSteps = append(ts.CompletedSteps, current.ID)
		return Result{Patch: domain.Patch{Troubleshoot: &ts}}
	}

	// Unresolved attempt.
	ts.RetryCount++
	ts.CompletedSteps = append(ts.CompletedSteps, current.ID)

	if ts.RetryCount >= ts.MaxRetries || ts.CurrentStep+1 >= len(scenario.Steps) {
		ts.NeedsEscalation = true
		return Result{Patch: domain.Patch{Troubleshoot: &ts}}
	}

	ts.CurrentStep++
	next := scenario.Steps[ts.CurrentStep]
	return Result{Patch: domain.Patch{
		Troubleshoot: &ts,
		AppendMessages: []domain.Message{
			e.assistantMessage(domain.NodeTroubleshooting,
				e.t(s, "troubleshooting.retry", next.Text(s.Language))),
		},
		Flags: &domain.Flags{WaitingForUserInput: true},
	}}
}

// startScenario picks the scenario for the captured problem type and issues
// its first instruction, optionally annotated with a live ping result.
func (e *Engine) startScenario(ctx context.Context, s *domain.ConversationState) Result {
	scenario := e.scenarios.ForProblemType(s.Problem.Type)
	if scenario == nil || len(scenario.Steps) == 0 {
		return Result{Err: fmt.Errorf("no troubleshooting scenario for problem type %q", s.Problem.Type)}
	}

	ts := domain.Troubleshooting{
		ScenarioID: scenario.ID,
		MaxRetries: e.maxRetries,
	}

	text := e.t(s, "troubleshooting.step", scenario.Steps[0].Text(s.Language))
	if note := e.pingNote(ctx, s); note != "" {
		text += "\n\n" + note
	}

	return Result{Patch: domain.Patch{
		Troubleshoot: &ts,
		AppendMessages: []domain.Message{
			e.assistantMessage(domain.NodeTroubleshooting, text),
		},
		Flags: &domain.Flags{WaitingForUserInput: true},
	}}
}

// pingNote runs an on-demand ping test. Best-effort enrichment only: any
// failure to run the test is logged and ignored.
func (e *Engine) pingNote(ctx context.Context, s *domain.ConversationState) string {
	if e.collab.Diagnostics == nil || !s.Customer.Identified() {
		return ""
	}
	ping, err := e.collab.Diagnostics.RunPingTest(ctx, s.Customer.CustomerID)
	if err != nil {
		e.logger.Warn("ping test unavailable", "customer_id", s.Customer.CustomerID, "err", err)
		return ""
	}
	if ping.Success {
		return ""
	}
	return e.t(s, "troubleshooting.ping_note")
}

// nodeCreateTicket opens an escalation ticket in the CRM, carrying the steps
// already attempted.
func (e *Engine) nodeCreateTicket(ctx context.Context, s *domain.ConversationState) Result {
	scenario := e.scenarios.Get(s.Troubleshoot.ScenarioID)
	steps := make([]string, 0, len(s.Troubleshoot.CompletedSteps))
	for _, id := range s.Troubleshoot.CompletedSteps {
		if scenario != nil {
			if step := scenario.Step(id); step != nil {
				steps = append(steps, step.Text(s.Language))
				continue
			}
		}
		steps = append(steps, id)
	}

	ticketType := s.Problem.Type
	if ticketType == "" {
		ticketType = "other"
	}

	res, err := e.collab.CRM.CreateTicket(ctx, ports.TicketRequest{
		CustomerID: s.Customer.CustomerID,
		Type:       ticketType,
		Summary:    s.Problem.Description,
		Details:    fmt.Sprintf("Troubleshooting exhausted after %d attempts (scenario %s).", s.Troubleshoot.RetryCount, s.Troubleshoot.ScenarioID),
		Priority:   "high",
		Steps:      steps,
	})
	if err != nil {
		return Result{Err: fmt.Errorf("create ticket: %w", err)}
	}
	if !res.Success {
		return Result{Patch: domain.Patch{
			AppendMessages: []domain.Message{
				e.assistantMessage(domain.NodeCreateTicket, e.t(s, "ticket.failed")),
			},
			Flags: &domain.Flags{WaitingForUserInput: true},
		}}
	}

	return Result{Patch: domain.Patch{
		Ticket: &domain.Ticket{
			Created:  true,
			TicketID: res.TicketID,
			Type:     ticketType,
		},
		AppendMessages: []domain.Message{
			e.assistantMessage(domain.NodeCreateTicket, e.t(s, "ticket.created", res.TicketID)),
		},
		Flags: &domain.Flags{WaitingForUserInput: true},
	}}
}
