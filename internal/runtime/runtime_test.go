package runtime

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/aurida/helpline/pkg/domain"
	"github.com/aurida/helpline/pkg/ports"
)

// Shared fakes for the engine tests. Behavior is set per test through the
// function fields; unset fields return benign defaults.

type fakeLLM struct {
	generateFn func(systemPrompt string) (string, error)
	jsonFn     func(systemPrompt string) (map[string]any, error)
}

func (f *fakeLLM) Generate(_ context.Context, systemPrompt string, _ []domain.Message, _ float64, _ int) (string, error) {
	if f.generateFn == nil {
		return "ok", nil
	}
	return f.generateFn(systemPrompt)
}

func (f *fakeLLM) GenerateJSON(_ context.Context, systemPrompt string, _ []domain.Message, _ float64, _ int) (map[string]any, error) {
	if f.jsonFn == nil {
		return map[string]any{}, nil
	}
	return f.jsonFn(systemPrompt)
}

type fakeCRM struct {
	byPhone   map[string]domain.Customer
	byAddress map[string]domain.Customer
	ticketErr error
	ticketOK  bool
	tickets   []ports.TicketRequest
}

func (f *fakeCRM) LookupByPhone(_ context.Context, phone string) (*ports.LookupResult, error) {
	if c, ok := f.byPhone[phone]; ok {
		return &ports.LookupResult{Found: true, Customer: c}, nil
	}
	return &ports.LookupResult{}, nil
}

func (f *fakeCRM) LookupByAddress(_ context.Context, city, _, _, _ string) (*ports.LookupResult, error) {
	if c, ok := f.byAddress[city]; ok {
		return &ports.LookupResult{Found: true, Customer: c}, nil
	}
	return &ports.LookupResult{}, nil
}

func (f *fakeCRM) CreateTicket(_ context.Context, req ports.TicketRequest) (*ports.TicketResult, error) {
	if f.ticketErr != nil {
		return nil, f.ticketErr
	}
	f.tickets = append(f.tickets, req)
	if !f.ticketOK {
		return &ports.TicketResult{}, nil
	}
	return &ports.TicketResult{Success: true, TicketID: "TCK-TEST"}, nil
}

type fakeDiagnostics struct {
	report    *ports.DiagnosticsReport
	reportErr error
	ping      *ports.PingResult
}

func (f *fakeDiagnostics) CheckProviderIssues(context.Context, string) (*ports.DiagnosticsReport, error) {
	if f.reportErr != nil {
		return nil, f.reportErr
	}
	if f.report == nil {
		return &ports.DiagnosticsReport{NeedsTroubleshooting: true}, nil
	}
	return f.report, nil
}

func (f *fakeDiagnostics) RunPingTest(context.Context, string) (*ports.PingResult, error) {
	if f.ping == nil {
		return &ports.PingResult{Success: true}, nil
	}
	return f.ping, nil
}

// echoTranslator returns "key" or "key:arg1" so tests can assert which
// catalog entry a message came from without coupling to catalog text.
type echoTranslator struct{}

func (echoTranslator) T(_ domain.Language, key string, args ...any) string {
	out := key
	for _, a := range args {
		out += ":" + toString(a)
	}
	return out
}

func toString(v any) string {
	if s, ok := v.(string); ok {
		return s
	}
	return "?"
}

func testCustomer() domain.Customer {
	return domain.Customer{
		CustomerID: "cust-1",
		Name:       "Jonas",
		Phone:      "+37061234567",
		Addresses: []domain.Address{
			{City: "Vilnius", Street: "Gedimino pr.", HouseNumber: "12"},
		},
	}
}

func newTestEngine(t *testing.T, collab Collaborators, opts ...Option) *Engine {
	t.Helper()
	if collab.LLM == nil {
		collab.LLM = &fakeLLM{}
	}
	if collab.CRM == nil {
		collab.CRM = &fakeCRM{}
	}
	if collab.Diagnostics == nil {
		collab.Diagnostics = &fakeDiagnostics{}
	}
	if collab.Translator == nil {
		collab.Translator = echoTranslator{}
	}
	opts = append([]Option{WithClock(func() time.Time {
		return time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	})}, opts...)

	engine, err := NewEngine(collab, opts...)
	require.NoError(t, err)
	return engine
}
