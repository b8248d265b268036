package ports

import (
	"context"

	"github.com/aurida/helpline/pkg/domain"
)

// LLMService generates text or structured output from a prompt and the
// conversation transcript. Calls may fail or time out; nodes treat that as a
// node-level failure.
type LLMService interface {
	Generate(ctx context.Context, systemPrompt string, messages []domain.Message, temperature float64, maxTokens int) (string, error)

	// GenerateJSON asks the model for a single JSON object and returns it
	// decoded into a generic map.
	GenerateJSON(ctx context.Context, systemPrompt string, messages []domain.Message, temperature float64, maxTokens int) (map[string]any, error)
}

// LookupResult is the outcome of a CRM customer search.
type LookupResult struct {
	Found    bool
	Customer domain.Customer
}

// TicketRequest describes an escalation ticket to open in the CRM.
type TicketRequest struct {
	CustomerID string
	Type       string
	Summary    string
	Details    string
	Priority   string
	Steps      []string
}

// TicketResult is the CRM's answer to CreateTicket.
type TicketResult struct {
	Success  bool
	TicketID string
}

// CRMService resolves caller identity and opens tickets.
type CRMService interface {
	LookupByPhone(ctx context.Context, phone string) (*LookupResult, error)
	LookupByAddress(ctx context.Context, city, street, houseNumber, apartment string) (*LookupResult, error)
	CreateTicket(ctx context.Context, req TicketRequest) (*TicketResult, error)
}

// DiagnosticsReport is the outcome of a provider-side line check.
type DiagnosticsReport struct {
	ProviderIssue        bool
	NeedsTroubleshooting bool
	IssuesFound          []domain.Issue
}

// PingResult is the outcome of an on-demand ping test.
type PingResult struct {
	Success    bool
	LatencyMS  int
	PacketLoss float64
}

// NetworkDiagnosticsService checks the provider infrastructure serving a
// customer.
type NetworkDiagnosticsService interface {
	CheckProviderIssues(ctx context.Context, customerID string) (*DiagnosticsReport, error)
	RunPingTest(ctx context.Context, customerID string) (*PingResult, error)
}

// RetrievedDocument is one ranked hit from the knowledge base.
type RetrievedDocument struct {
	Content  string
	Score    float64
	Metadata map[string]string
}

// RetrievalService searches the support knowledge base. It is an optional
// enrichment source: unavailability degrades answer quality but must not
// abort a turn.
type RetrievalService interface {
	Retrieve(ctx context.Context, query string, topK int, threshold float64) ([]RetrievedDocument, error)
}

// Translator resolves localized strings. T is total: a missing key falls
// back to the key itself, so it never fails.
type Translator interface {
	T(lang domain.Language, key string, args ...any) string
}
