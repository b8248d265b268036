package runtime

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/aurida/helpline/pkg/domain"
)

func stateWithMessages(msgs ...domain.Message) *domain.ConversationState {
	s := domain.NewState("conv-1", domain.LanguageLT)
	s.Messages = append(s.Messages, msgs...)
	return s
}

func userMsg(text string) domain.Message {
	return domain.Message{Role: domain.RoleUser, Content: text, Timestamp: time.Now()}
}

func assistantMsg(node domain.NodeID) domain.Message {
	return domain.Message{Role: domain.RoleAssistant, Content: "...", Node: node, Timestamp: time.Now()}
}

func TestResolveEntry(t *testing.T) {
	engine := newTestEngine(t, Collaborators{})

	t.Run("empty transcript starts at greeting", func(t *testing.T) {
		s := domain.NewState("conv-1", domain.LanguageLT)
		assert.Equal(t, domain.NodeGreeting, engine.ResolveEntry(s))
	})

	t.Run("default resumes problem capture", func(t *testing.T) {
		s := stateWithMessages(assistantMsg(domain.NodeGreeting), userMsg("labas"))
		assert.Equal(t, domain.NodeProblemCapture, engine.ResolveEntry(s))
	})

	t.Run("partial problem description stays in problem capture", func(t *testing.T) {
		s := stateWithMessages(assistantMsg(domain.NodeProblemCapture), userMsg("nezinau"))
		s.Problem = domain.Problem{Description: "kazkas negerai"}
		assert.Equal(t, domain.NodeProblemCapture, engine.ResolveEntry(s))
	})

	t.Run("captured problem without identity resumes address search", func(t *testing.T) {
		s := stateWithMessages(assistantMsg(domain.NodePhoneLookup), userMsg("+37061234567"))
		s.Problem = domain.Problem{Type: "internet_down", Description: "neveikia", Identified: true}
		assert.Equal(t, domain.NodeAddressSearch, engine.ResolveEntry(s))
	})

	t.Run("rejected address resumes address search", func(t *testing.T) {
		no := false
		s := stateWithMessages(
			assistantMsg(domain.NodeAddressConfirmation),
			userMsg("ne"),
			assistantMsg(domain.NodeAddressSearch),
			userMsg("Taikos pr. 9, Klaipeda"),
		)
		s.Problem = domain.Problem{Type: "internet_down", Identified: true}
		s.Customer = domain.Customer{Phone: "+37061234567", AddressConfirmed: &no}
		assert.Equal(t, domain.NodeAddressSearch, engine.ResolveEntry(s))
	})

	t.Run("identified but unconfirmed resumes address confirmation", func(t *testing.T) {
		s := stateWithMessages(assistantMsg(domain.NodeAddressConfirmation), userMsg("1"))
		s.Problem = domain.Problem{Type: "internet_down", Identified: true}
		s.Customer = testCustomer()
		assert.Equal(t, domain.NodeAddressConfirmation, engine.ResolveEntry(s))
	})

	t.Run("active scenario resumes troubleshooting", func(t *testing.T) {
		s := stateWithMessages(assistantMsg(domain.NodeTroubleshooting), userMsg("nepadejo"))
		s.Customer = testCustomer()
		s.Troubleshoot = domain.Troubleshooting{ScenarioID: "internet_down", MaxRetries: 3}
		assert.Equal(t, domain.NodeTroubleshooting, engine.ResolveEntry(s))
	})

	t.Run("completed diagnostics resume troubleshooting", func(t *testing.T) {
		no := false
		s := stateWithMessages(assistantMsg(domain.NodeTroubleshooting), userMsg("vis dar neveikia"))
		s.Customer = testCustomer()
		s.Diagnostics = domain.Diagnostics{Completed: true, ProviderIssue: &no}
		assert.Equal(t, domain.NodeTroubleshooting, engine.ResolveEntry(s))
	})

	t.Run("pending reply to final address ask still enters address search", func(t *testing.T) {
		s := stateWithMessages(
			assistantMsg(domain.NodeAddressSearch),
			userMsg("nezinau"),
			assistantMsg(domain.NodeAddressSearch),
			userMsg("Vilnius, Gedimino pr. 12"),
		)
		s.Problem = domain.Problem{Type: "internet_down", Identified: true}
		assert.Equal(t, domain.NodeAddressSearch, engine.ResolveEntry(s))
	})

	t.Run("concluded address search falls back to problem capture", func(t *testing.T) {
		s := stateWithMessages(
			assistantMsg(domain.NodeAddressSearch),
			userMsg("nezinau"),
			assistantMsg(domain.NodeAddressSearch),
			userMsg("vis tiek nezinau"),
			assistantMsg(domain.NodeClosing),
			userMsg("labas"),
		)
		s.Problem = domain.Problem{Type: "internet_down", Identified: true}
		assert.Equal(t, domain.NodeProblemCapture, engine.ResolveEntry(s))
	})

	t.Run("idempotent for unchanged state", func(t *testing.T) {
		s := stateWithMessages(assistantMsg(domain.NodeGreeting), userMsg("labas"))
		first := engine.ResolveEntry(s)
		assert.Equal(t, first, engine.ResolveEntry(s))
	})
}
