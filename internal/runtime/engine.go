// Package runtime implements the conversation workflow engine: the node and
// router registries, the entry resolver and the turn executor.
package runtime

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/aurida/helpline/internal/logging"
	"github.com/aurida/helpline/pkg/domain"
	"github.com/aurida/helpline/pkg/ports"
)

const (
	// defaultMaxIterations bounds node/router cycles within one turn.
	defaultMaxIterations = 10
	// defaultMaxRetries bounds unresolved troubleshooting attempts.
	defaultMaxRetries = 3
	// maxAddressAsks bounds how often address_search re-asks before giving up.
	maxAddressAsks = 2
)

// NodeFunc executes one conversation phase: given the current state it
// returns a Result with a partial-state patch, or a failure.
type NodeFunc func(ctx context.Context, s *domain.ConversationState) Result

// RouterFunc picks the next node after the given node ran. Routers are pure
// and total: they must return a legal destination for every reachable state.
type RouterFunc func(s *domain.ConversationState) domain.NodeID

// Result is the explicit outcome of a node run. Err marks a node-level
// failure (usually a collaborator error); the executor handles it fail-soft.
type Result struct {
	Patch domain.Patch
	Err   error
}

// Collaborators groups the external services nodes may call.
// Retrieval is optional; everything else is required.
type Collaborators struct {
	LLM         ports.LLMService
	CRM         ports.CRMService
	Diagnostics ports.NetworkDiagnosticsService
	Retrieval   ports.RetrievalService
	Translator  ports.Translator
}

// Engine is the conversation state machine runner.
type Engine struct {
	collab Collaborators
	logger *slog.Logger
	clock  func() time.Time

	maxIterations int
	maxRetries    int
	scenarios     *ScenarioBook

	nodes        map[domain.NodeID]NodeFunc
	routers      map[domain.NodeID]RouterFunc
	destinations map[domain.NodeID][]domain.NodeID
}

// Option configures the Engine.
type Option func(*Engine)

// WithLogger sets a structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(e *Engine) {
		e.logger = logger
	}
}

// WithClock overrides the time source (used by tests for stable timestamps).
func WithClock(clock func() time.Time) Option {
	return func(e *Engine) {
		e.clock = clock
	}
}

// WithMaxRetries sets the troubleshooting retry cap.
func WithMaxRetries(n int) Option {
	return func(e *Engine) {
		if n > 0 {
			e.maxRetries = n
		}
	}
}

// WithMaxIterations sets the per-turn iteration ceiling.
func WithMaxIterations(n int) Option {
	return func(e *Engine) {
		if n > 0 {
			e.maxIterations = n
		}
	}
}

// WithScenarioBook replaces the embedded troubleshooting scenarios.
func WithScenarioBook(book *ScenarioBook) Option {
	return func(e *Engine) {
		e.scenarios = book
	}
}

// WithNodeOverride replaces a registered node function. Intended for tests.
func WithNodeOverride(id domain.NodeID, fn NodeFunc) Option {
	return func(e *Engine) {
		e.nodes[id] = fn
	}
}

// WithRouterOverride replaces a registered router function. Intended for tests.
func WithRouterOverride(id domain.NodeID, fn RouterFunc) Option {
	return func(e *Engine) {
		e.routers[id] = fn
	}
}

// NewEngine builds the engine, registers all nodes and routers, and verifies
// the registries are consistent.
func NewEngine(collab Collaborators, opts ...Option) (*Engine, error) {
	if collab.Translator == nil {
		return nil, fmt.Errorf("translator collaborator is required")
	}

	e := &Engine{
		collab:        collab,
		logger:        logging.NewNop(),
		clock:         time.Now,
		maxIterations: defaultMaxIterations,
		maxRetries:    defaultMaxRetries,
	}

	e.nodes = map[domain.NodeID]NodeFunc{
		domain.NodeGreeting:            e.nodeGreeting,
		domain.NodeProblemCapture:      e.nodeProblemCapture,
		domain.NodePhoneLookup:         e.nodePhoneLookup,
		domain.NodeAddressSearch:       e.nodeAddressSearch,
		domain.NodeAddressConfirmation: e.nodeAddressConfirmation,
		domain.NodeDiagnostics:         e.nodeDiagnostics,
		domain.NodeInformProviderIssue: e.nodeInformProviderIssue,
		domain.NodeTroubleshooting:     e.nodeTroubleshooting,
		domain.NodeCreateTicket:        e.nodeCreateTicket,
		domain.NodeClosing:             e.nodeClosing,
	}
	e.routers = map[domain.NodeID]RouterFunc{
		domain.NodeGreeting:            routeGreeting,
		domain.NodeProblemCapture:      routeProblemCapture,
		domain.NodePhoneLookup:         routePhoneLookup,
		domain.NodeAddressSearch:       routeAddressSearch,
		domain.NodeAddressConfirmation: routeAddressConfirmation,
		domain.NodeDiagnostics:         routeDiagnostics,
		domain.NodeInformProviderIssue: routeInformProviderIssue,
		domain.NodeTroubleshooting:     routeTroubleshooting,
		domain.NodeCreateTicket:        routeCreateTicket,
		domain.NodeClosing:             routeClosing,
	}
	e.destinations = routerDestinations

	if e.scenarios == nil {
		book, err := LoadScenarios()
		if err != nil {
			return nil, fmt.Errorf("failed to load troubleshooting scenarios: %w", err)
		}
		e.scenarios = book
	}

	for _, opt := range opts {
		opt(e)
	}

	if err := e.verify(); err != nil {
		return nil, err
	}
	return e, nil
}

// verify cross-checks the registries: every node has a router and every
// declared router destination resolves to a registered node or the terminal
// sentinel.
func (e *Engine) verify() error {
	for _, id := range domain.AllNodes {
		if _, ok := e.nodes[id]; !ok {
			return fmt.Errorf("node %q has no registered function", id)
		}
		if _, ok := e.routers[id]; !ok {
			return fmt.Errorf("node %q has no registered router", id)
		}
		dests, ok := e.destinations[id]
		if !ok || len(dests) == 0 {
			return fmt.Errorf("node %q has no declared destinations", id)
		}
		for _, d := range dests {
			if d.Terminal() {
				continue
			}
			if _, ok := e.nodes[d]; !ok {
				return fmt.Errorf("router for %q declares unknown destination %q", id, d)
			}
		}
	}
	return nil
}

// Destinations returns the declared legal destinations for a node.
func (e *Engine) Destinations(id domain.NodeID) []domain.NodeID {
	return e.destinations[id]
}

// Route invokes the registered router for a node. Exposed for property tests.
func (e *Engine) Route(id domain.NodeID, s *domain.ConversationState) domain.NodeID {
	return e.routers[id](s)
}

// t resolves a localized string in the conversation's language.
func (e *Engine) t(s *domain.ConversationState, key string, args ...any) string {
	return e.collab.Translator.T(s.Language, key, args...)
}

// assistantMessage builds a transcript entry attributed to a node.
func (e *Engine) assistantMessage(node domain.NodeID, content string) domain.Message {
	return domain.Message{
		Role:      domain.RoleAssistant,
		Content:   content,
		Node:      node,
		Timestamp: e.clock(),
	}
}

// recentMessages returns up to n of the newest transcript entries.
func recentMessages(s *domain.ConversationState, n int) []domain.Message {
	if len(s.Messages) <= n {
		return s.Messages
	}
	return s.Messages[len(s.Messages)-n:]
}
