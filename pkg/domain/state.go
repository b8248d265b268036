package domain

import "time"

// Language selects the message catalog for a conversation.
type Language string

const (
	LanguageLT Language = "lt"
	LanguageEN Language = "en"
)

// Address is a physical service address from the CRM.
type Address struct {
	City        string `json:"city"`
	Street      string `json:"street"`
	HouseNumber string `json:"house_number"`
	Apartment   string `json:"apartment,omitempty"`
}

// Customer holds what is known about the caller. Optional scalar facts use
// pointers so "not yet known" is distinguishable from a negative answer.
type Customer struct {
	CustomerID       string    `json:"customer_id,omitempty"`
	Name             string    `json:"name,omitempty"`
	Phone            string    `json:"phone,omitempty"`
	Addresses        []Address `json:"addresses,omitempty"`
	AddressConfirmed *bool     `json:"address_confirmed,omitempty"`
}

// Identified reports whether the caller has been resolved to a CRM record.
func (c Customer) Identified() bool {
	return c.CustomerID != ""
}

// Problem is the captured description of what the caller reports.
type Problem struct {
	Type        string `json:"type,omitempty"`
	Description string `json:"description,omitempty"`
	Identified  bool   `json:"identified"`
}

// Issue is a single finding from the network diagnostics collaborator.
type Issue struct {
	Code        string `json:"code"`
	Description string `json:"description"`
	Severity    string `json:"severity,omitempty"`
}

// Diagnostics records the outcome of the provider-side check.
// Invariant: Completed implies ProviderIssue is non-nil.
type Diagnostics struct {
	Completed            bool    `json:"completed"`
	ProviderIssue        *bool   `json:"provider_issue,omitempty"`
	NeedsTroubleshooting bool    `json:"needs_troubleshooting,omitempty"`
	IssuesFound          []Issue `json:"issues_found,omitempty"`
}

// Troubleshooting tracks progress through a step-by-step scenario.
type Troubleshooting struct {
	ScenarioID      string   `json:"scenario_id,omitempty"`
	CurrentStep     int      `json:"current_step"`
	CompletedSteps  []string `json:"completed_steps,omitempty"`
	RetryCount      int      `json:"retry_count"`
	MaxRetries      int      `json:"max_retries"`
	Resolved        bool     `json:"resolved"`
	NeedsEscalation bool     `json:"needs_escalation"`
}

// Active reports whether a scenario has been started.
func (t Troubleshooting) Active() bool {
	return t.ScenarioID != ""
}

// Ticket records the escalation ticket, if one was created.
type Ticket struct {
	Created  bool   `json:"created"`
	TicketID string `json:"ticket_id,omitempty"`
	Type     string `json:"type,omitempty"`
}

// Flags holds turn-loop control bits.
type Flags struct {
	ConversationEnded   bool `json:"conversation_ended"`
	WaitingForUserInput bool `json:"waiting_for_user_input"`
}

// ErrorEntry is one recorded node failure. Internal detail only; never
// surfaced in conversation text.
type ErrorEntry struct {
	Node      NodeID    `json:"node"`
	Message   string    `json:"message"`
	Timestamp time.Time `json:"timestamp"`
}

// ConversationState is the full serializable record of one conversation.
// It is a plain value type: nodes mutate it only through patches applied by
// the turn executor, and the checkpoint store owns it between turns.
type ConversationState struct {
	ConversationID string          `json:"conversation_id"`
	Language       Language        `json:"language"`
	CurrentNode    NodeID          `json:"current_node,omitempty"`
	Messages       []Message       `json:"messages"`
	Customer       Customer        `json:"customer"`
	Problem        Problem         `json:"problem"`
	Diagnostics    Diagnostics     `json:"diagnostics"`
	Troubleshoot   Troubleshooting `json:"troubleshooting"`
	Ticket         Ticket          `json:"ticket"`
	Flags          Flags           `json:"flags"`
	Errors         []ErrorEntry    `json:"errors,omitempty"`
	LastError      string          `json:"last_error,omitempty"`
}

// NewState creates a fresh conversation with default field values.
// CurrentNode is left unset; the entry resolver decides where to begin.
func NewState(conversationID string, lang Language) *ConversationState {
	return &ConversationState{
		ConversationID: conversationID,
		Language:       lang,
		Messages:       []Message{},
	}
}

// Clone returns a deep copy, so stores and the executor can hand out state
// without sharing slices with the caller.
func (s *ConversationState) Clone() *ConversationState {
	if s == nil {
		return nil
	}
	next := *s

	next.Messages = make([]Message, len(s.Messages))
	copy(next.Messages, s.Messages)

	next.Customer.Addresses = cloneSlice(s.Customer.Addresses)
	if s.Customer.AddressConfirmed != nil {
		v := *s.Customer.AddressConfirmed
		next.Customer.AddressConfirmed = &v
	}

	next.Diagnostics.IssuesFound = cloneSlice(s.Diagnostics.IssuesFound)
	if s.Diagnostics.ProviderIssue != nil {
		v := *s.Diagnostics.ProviderIssue
		next.Diagnostics.ProviderIssue = &v
	}

	next.Troubleshoot.CompletedSteps = cloneSlice(s.Troubleshoot.CompletedSteps)
	next.Errors = cloneSlice(s.Errors)

	return &next
}

// LastUserMessage returns the content of the most recent user message, or ""
// when the user has not spoken yet.
func (s *ConversationState) LastUserMessage() string {
	for i := len(s.Messages) - 1; i >= 0; i-- {
		if s.Messages[i].Role == RoleUser {
			return s.Messages[i].Content
		}
	}
	return ""
}

// AssistantAsks counts the assistant messages a given node has produced.
// Nodes use it to avoid re-asking the same question forever.
func (s *ConversationState) AssistantAsks(node NodeID) int {
	n := 0
	for _, m := range s.Messages {
		if m.Role == RoleAssistant && m.Node == node {
			n++
		}
	}
	return n
}

func cloneSlice[T any](in []T) []T {
	if in == nil {
		return nil
	}
	out := make([]T, len(in))
	copy(out, in)
	return out
}
