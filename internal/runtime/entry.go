package runtime

import "github.com/aurida/helpline/pkg/domain"

// ResolveEntry picks the node execution should begin at this turn, from
// persisted state alone. No in-memory continuation survives between turns,
// so every turn re-derives its starting point here.
//
// Decision order, first match wins, most advanced condition first:
//  1. no messages yet                                  -> greeting
//  2. scenario active or diagnostics done              -> troubleshooting
//  3. unidentified, problem captured, search not given up -> address_search
//  4. identified but address not confirmed             -> address_confirmation
//  5. everything else                                  -> problem_capture
func (e *Engine) ResolveEntry(s *domain.ConversationState) domain.NodeID {
	switch {
	case len(s.Messages) == 0:
		return domain.NodeGreeting
	case s.Troubleshoot.Active() || s.Diagnostics.Completed:
		return domain.NodeTroubleshooting
	case !s.Customer.Identified() && s.Problem.Identified && !addressSearchConcluded(s):
		return domain.NodeAddressSearch
	case s.Customer.Identified() && !addressConfirmed(s):
		return domain.NodeAddressConfirmation
	default:
		return domain.NodeProblemCapture
	}
}

func addressConfirmed(s *domain.ConversationState) bool {
	return s.Customer.AddressConfirmed != nil && *s.Customer.AddressConfirmed
}

// addressSearchConcluded reports whether address_search has exhausted its
// attempts to identify the caller. While the reply to the final ask is still
// pending, the search is not concluded: that reply deserves one last lookup.
func addressSearchConcluded(s *domain.ConversationState) bool {
	if s.AssistantAsks(domain.NodeAddressSearch) < maxAddressAsks {
		return false
	}
	for i := len(s.Messages) - 1; i >= 0; i-- {
		if m := s.Messages[i]; m.Role == domain.RoleAssistant {
			return m.Node != domain.NodeAddressSearch
		}
	}
	return true
}
