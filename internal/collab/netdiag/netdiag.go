// Package netdiag implements the network diagnostics port with
// configurable per-customer outcomes. It mirrors the behavior of the
// provider-side monitoring API the engine talks to in production.
package netdiag

import (
	"context"
	"sync"

	"github.com/aurida/helpline/pkg/domain"
	"github.com/aurida/helpline/pkg/ports"
)

// Outcome fixes what the diagnostics check reports for one customer.
// LineOK marks a line that is clean on both sides, so no device-side
// troubleshooting is suggested either.
type Outcome struct {
	ProviderIssue bool
	LineOK        bool
	Issues        []domain.Issue
	Ping          ports.PingResult
}

// Service answers diagnostics queries from a fixture outcome table.
// Customers without an entry get a clean line that still needs
// device-side troubleshooting.
type Service struct {
	mu       sync.RWMutex
	outcomes map[string]Outcome
}

var _ ports.NetworkDiagnosticsService = (*Service)(nil)

// New creates a diagnostics service with an empty outcome table.
func New() *Service {
	return &Service{outcomes: make(map[string]Outcome)}
}

// SetOutcome fixes the diagnostics result for a customer id.
func (s *Service) SetOutcome(customerID string, outcome Outcome) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.outcomes[customerID] = outcome
}

// CheckProviderIssues reports the provider-side status of the line
// serving customerID.
func (s *Service) CheckProviderIssues(_ context.Context, customerID string) (*ports.DiagnosticsReport, error) {
	s.mu.RLock()
	outcome, ok := s.outcomes[customerID]
	s.mu.RUnlock()

	if !ok {
		return &ports.DiagnosticsReport{NeedsTroubleshooting: true}, nil
	}
	report := &ports.DiagnosticsReport{
		ProviderIssue:        outcome.ProviderIssue,
		NeedsTroubleshooting: !outcome.ProviderIssue && !outcome.LineOK,
		IssuesFound:          append([]domain.Issue(nil), outcome.Issues...),
	}
	return report, nil
}

// RunPingTest runs an on-demand reachability probe against the
// customer's CPE.
func (s *Service) RunPingTest(_ context.Context, customerID string) (*ports.PingResult, error) {
	s.mu.RLock()
	outcome, ok := s.outcomes[customerID]
	s.mu.RUnlock()

	if !ok {
		return &ports.PingResult{Success: true, LatencyMS: 14}, nil
	}
	ping := outcome.Ping
	return &ping, nil
}
