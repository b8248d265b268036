package runtime

import (
	"context"
	"fmt"

	"github.com/aurida/helpline/pkg/domain"
)

// nodeDiagnostics runs the provider-side line check and classifies the fault
// as provider-vs-customer. It produces no message: the routing decision
// (inform about an outage vs start troubleshooting) speaks for it.
func (e *Engine) nodeDiagnostics(ctx context.Context, s *domain.ConversationState) Result {
	if !s.Customer.Identified() {
		// Nothing to check against; the router closes this path.
		return Result{}
	}

	report, err := e.collab.Diagnostics.CheckProviderIssues(ctx, s.Customer.CustomerID)
	if err != nil {
		return Result{Err: fmt.Errorf("check provider issues: %w", err)}
	}

	providerIssue := report.ProviderIssue
	return Result{Patch: domain.Patch{
		Diagnostics: &domain.Diagnostics{
			Completed:            true,
			ProviderIssue:        &providerIssue,
			NeedsTroubleshooting: report.NeedsTroubleshooting,
			IssuesFound:          report.IssuesFound,
		},
	}}
}
