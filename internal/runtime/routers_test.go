package runtime

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/aurida/helpline/pkg/domain"
)

// routerStates is a grab bag of reachable states, from fresh to terminal,
// used to probe every router for destination-set violations.
func routerStates() map[string]*domain.ConversationState {
	yes, no := true, false

	fresh := domain.NewState("conv-1", domain.LanguageLT)

	captured := fresh.Clone()
	captured.Problem = domain.Problem{Type: "internet_down", Description: "neveikia", Identified: true}

	phoneTried := captured.Clone()
	phoneTried.Customer.Phone = "+37060000000"

	identified := captured.Clone()
	identified.Customer = testCustomer()

	confirmed := identified.Clone()
	confirmed.Customer.AddressConfirmed = &yes

	// Rejecting the proposed address drops the resolved identity.
	rejected := captured.Clone()
	rejected.Customer = domain.Customer{Phone: "+37061234567", AddressConfirmed: &no}

	providerIssue := confirmed.Clone()
	providerIssue.Diagnostics = domain.Diagnostics{Completed: true, ProviderIssue: &yes}

	customerIssue := confirmed.Clone()
	customerIssue.Diagnostics = domain.Diagnostics{Completed: true, ProviderIssue: &no, NeedsTroubleshooting: true}

	cleanLine := confirmed.Clone()
	cleanLine.Diagnostics = domain.Diagnostics{Completed: true, ProviderIssue: &no}

	troubleshooting := customerIssue.Clone()
	troubleshooting.Troubleshoot = domain.Troubleshooting{ScenarioID: "internet_down", CurrentStep: 1, RetryCount: 1, MaxRetries: 3}

	resolved := troubleshooting.Clone()
	resolved.Troubleshoot.Resolved = true

	escalated := troubleshooting.Clone()
	escalated.Troubleshoot.NeedsEscalation = true
	escalated.Troubleshoot.RetryCount = 3

	ticketed := escalated.Clone()
	ticketed.Ticket = domain.Ticket{Created: true, TicketID: "TCK-1", Type: "internet_down"}

	exhaustedSearch := captured.Clone()
	exhaustedSearch.Messages = append(exhaustedSearch.Messages,
		assistantMsg(domain.NodeAddressSearch),
		userMsg("nezinau"),
		assistantMsg(domain.NodeAddressSearch),
		userMsg("vis tiek nezinau"),
	)

	return map[string]*domain.ConversationState{
		"fresh":            fresh,
		"captured":         captured,
		"phone_tried":      phoneTried,
		"identified":       identified,
		"confirmed":        confirmed,
		"rejected":         rejected,
		"provider_issue":   providerIssue,
		"customer_issue":   customerIssue,
		"clean_line":       cleanLine,
		"troubleshooting":  troubleshooting,
		"resolved":         resolved,
		"escalated":        escalated,
		"ticketed":         ticketed,
		"exhausted_search": exhaustedSearch,
	}
}

func TestRoutersStayWithinDeclaredDestinations(t *testing.T) {
	engine := newTestEngine(t, Collaborators{})

	for stateName, state := range routerStates() {
		for _, node := range domain.AllNodes {
			if node.Terminal() {
				continue
			}
			got := engine.Route(node, state)
			assert.Contains(t, engine.Destinations(node), got,
				"router %s left its destination set on state %s", node, stateName)
		}
	}
}

func TestRouteProgression(t *testing.T) {
	states := routerStates()
	engine := newTestEngine(t, Collaborators{})

	assert.Equal(t, domain.NodeProblemCapture, engine.Route(domain.NodeGreeting, states["fresh"]))
	assert.Equal(t, domain.NodeProblemCapture, engine.Route(domain.NodeProblemCapture, states["fresh"]))
	assert.Equal(t, domain.NodePhoneLookup, engine.Route(domain.NodeProblemCapture, states["captured"]))
	assert.Equal(t, domain.NodePhoneLookup, engine.Route(domain.NodePhoneLookup, states["captured"]))
	assert.Equal(t, domain.NodeAddressSearch, engine.Route(domain.NodePhoneLookup, states["phone_tried"]))
	assert.Equal(t, domain.NodeAddressConfirmation, engine.Route(domain.NodePhoneLookup, states["identified"]))
	assert.Equal(t, domain.NodeAddressConfirmation, engine.Route(domain.NodeAddressSearch, states["identified"]))
	assert.Equal(t, domain.NodeClosing, engine.Route(domain.NodeAddressSearch, states["exhausted_search"]))
	assert.Equal(t, domain.NodeDiagnostics, engine.Route(domain.NodeAddressConfirmation, states["confirmed"]))
	assert.Equal(t, domain.NodeAddressSearch, engine.Route(domain.NodeAddressConfirmation, states["rejected"]))
	assert.Equal(t, domain.NodeInformProviderIssue, engine.Route(domain.NodeDiagnostics, states["provider_issue"]))
	assert.Equal(t, domain.NodeTroubleshooting, engine.Route(domain.NodeDiagnostics, states["customer_issue"]))
	assert.Equal(t, domain.NodeClosing, engine.Route(domain.NodeDiagnostics, states["clean_line"]))
	// Diagnostics that never completed cannot go forward.
	assert.Equal(t, domain.NodeClosing, engine.Route(domain.NodeDiagnostics, states["captured"]))
	assert.Equal(t, domain.NodeTroubleshooting, engine.Route(domain.NodeTroubleshooting, states["troubleshooting"]))
	assert.Equal(t, domain.NodeClosing, engine.Route(domain.NodeTroubleshooting, states["resolved"]))
	assert.Equal(t, domain.NodeCreateTicket, engine.Route(domain.NodeTroubleshooting, states["escalated"]))
	assert.Equal(t, domain.NodeClosing, engine.Route(domain.NodeTroubleshooting, states["ticketed"]))
	assert.Equal(t, domain.NodeClosing, engine.Route(domain.NodeCreateTicket, states["escalated"]))
	assert.Equal(t, domain.NodeEnd, engine.Route(domain.NodeClosing, states["resolved"]))
	assert.Equal(t, domain.NodeEnd, engine.Route(domain.NodeInformProviderIssue, states["provider_issue"]))
}
