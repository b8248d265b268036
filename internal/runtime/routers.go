package runtime

import "github.com/aurida/helpline/pkg/domain"

// routerDestinations declares the legal destination set of every router.
// The registry verifies each destination resolves to a registered node, and
// the property tests assert routers never leave their declared set.
var routerDestinations = map[domain.NodeID][]domain.NodeID{
	domain.NodeGreeting:            {domain.NodeProblemCapture},
	domain.NodeProblemCapture:      {domain.NodePhoneLookup, domain.NodeProblemCapture},
	domain.NodePhoneLookup:         {domain.NodeAddressConfirmation, domain.NodeAddressSearch, domain.NodePhoneLookup},
	domain.NodeAddressSearch:       {domain.NodeAddressConfirmation, domain.NodeClosing, domain.NodeAddressSearch},
	domain.NodeAddressConfirmation: {domain.NodeDiagnostics, domain.NodeAddressSearch, domain.NodeAddressConfirmation},
	domain.NodeDiagnostics:         {domain.NodeInformProviderIssue, domain.NodeTroubleshooting, domain.NodeClosing},
	domain.NodeInformProviderIssue: {domain.NodeEnd},
	domain.NodeTroubleshooting:     {domain.NodeClosing, domain.NodeCreateTicket, domain.NodeTroubleshooting},
	domain.NodeCreateTicket:        {domain.NodeClosing},
	domain.NodeClosing:             {domain.NodeEnd},
}

// Routers are pure, total functions. They check terminal and near-terminal
// conditions before early-stage ones, and fall back to the conservative
// branch when a fact is not yet known.

func routeGreeting(s *domain.ConversationState) domain.NodeID {
	return domain.NodeProblemCapture
}

func routeProblemCapture(s *domain.ConversationState) domain.NodeID {
	if s.Problem.Identified {
		return domain.NodePhoneLookup
	}
	// Still ambiguous: re-ask. The executor yields on the clarifying
	// question, so this self-loop never spins.
	return domain.NodeProblemCapture
}

func routePhoneLookup(s *domain.ConversationState) domain.NodeID {
	if s.Customer.Identified() {
		return domain.NodeAddressConfirmation
	}
	if s.Customer.Phone != "" {
		// A phone was tried and the CRM had no match.
		return domain.NodeAddressSearch
	}
	return domain.NodePhoneLookup
}

func routeAddressSearch(s *domain.ConversationState) domain.NodeID {
	if s.Customer.Identified() {
		return domain.NodeAddressConfirmation
	}
	if s.AssistantAsks(domain.NodeAddressSearch) >= maxAddressAsks {
		// Ask budget spent and the final lookup still failed; close without
		// a ticket.
		return domain.NodeClosing
	}
	return domain.NodeAddressSearch
}

func routeAddressConfirmation(s *domain.ConversationState) domain.NodeID {
	if s.Customer.AddressConfirmed != nil {
		if *s.Customer.AddressConfirmed {
			return domain.NodeDiagnostics
		}
		// Caller rejected the address on file; the confirmation node has
		// dropped the identity, so the search runs its lookup again.
		return domain.NodeAddressSearch
	}
	return domain.NodeAddressConfirmation
}

func routeDiagnostics(s *domain.ConversationState) domain.NodeID {
	if !s.Diagnostics.Completed {
		// Diagnostics could not run (e.g. no identified customer); no
		// forward progress is possible on this path.
		return domain.NodeClosing
	}
	if s.Diagnostics.ProviderIssue != nil && *s.Diagnostics.ProviderIssue {
		return domain.NodeInformProviderIssue
	}
	if !s.Diagnostics.NeedsTroubleshooting {
		// The line checks out clean on both sides; nothing to walk through.
		return domain.NodeClosing
	}
	return domain.NodeTroubleshooting
}

func routeInformProviderIssue(s *domain.ConversationState) domain.NodeID {
	return domain.NodeEnd
}

func routeTroubleshooting(s *domain.ConversationState) domain.NodeID {
	if s.Troubleshoot.Resolved {
		return domain.NodeClosing
	}
	if s.Troubleshoot.NeedsEscalation {
		if s.Ticket.Created {
			return domain.NodeClosing
		}
		return domain.NodeCreateTicket
	}
	return domain.NodeTroubleshooting
}

func routeCreateTicket(s *domain.ConversationState) domain.NodeID {
	return domain.NodeClosing
}

func routeClosing(s *domain.ConversationState) domain.NodeID {
	return domain.NodeEnd
}
