// Package conversation exposes the two operations a front-end needs:
// Start and ProcessMessage. It owns checkpoint load/save around each turn
// and serializes turns per conversation id within the process.
package conversation

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/aurida/helpline/internal/logging"
	"github.com/aurida/helpline/internal/runtime"
	"github.com/aurida/helpline/pkg/domain"
	"github.com/aurida/helpline/pkg/ports"
)

// lockEntry holds a per-conversation mutex and its reference count.
type lockEntry struct {
	mu   sync.Mutex
	refs int
}

// Service drives conversations: load checkpoint, run one turn, save.
type Service struct {
	store  ports.CheckpointStore
	engine *runtime.Engine
	logger *slog.Logger

	mu    sync.Mutex
	locks map[string]*lockEntry

	metrics *Metrics

	defaultLanguage domain.Language
}

// Option configures the Service.
type Option func(*Service)

// WithLogger sets a structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

// WithMetrics enables prometheus instrumentation.
func WithMetrics(m *Metrics) Option {
	return func(s *Service) {
		s.metrics = m
	}
}

// WithDefaultLanguage sets the language used when Start receives none.
func WithDefaultLanguage(lang domain.Language) Option {
	return func(s *Service) {
		s.defaultLanguage = lang
	}
}

// New creates a Service over the given checkpoint store and engine.
func New(store ports.CheckpointStore, engine *runtime.Engine, opts ...Option) *Service {
	s := &Service{
		store:           store,
		engine:          engine,
		logger:          logging.NewNop(),
		locks:           make(map[string]*lockEntry),
		defaultLanguage: domain.LanguageLT,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Start begins (or resumes) a conversation. An empty id mints a new one.
// For a fresh conversation it runs the greeting turn and returns the welcome
// text; for an existing id it returns the checkpointed state unchanged.
func (s *Service) Start(ctx context.Context, conversationID string, lang domain.Language) (*domain.ConversationState, string, error) {
	if conversationID == "" {
		conversationID = uuid.NewString()
	}
	if lang == "" {
		lang = s.defaultLanguage
	}

	var (
		state *domain.ConversationState
		reply string
	)
	err := s.withLock(conversationID, func() error {
		existing, err := s.store.Load(ctx, conversationID)
		if err == nil {
			state = existing
			return nil
		}
		if !errors.Is(err, domain.ErrConversationNotFound) {
			return fmt.Errorf("checkpoint store unavailable: %w", err)
		}

		fresh := domain.NewState(conversationID, lang)
		result, err := s.engine.RunTurn(ctx, fresh, "")
		if err != nil {
			return fmt.Errorf("greeting turn: %w", err)
		}
		if err := s.store.Save(ctx, conversationID, result.State); err != nil {
			return fmt.Errorf("failed to checkpoint conversation: %w", err)
		}

		s.observeTurn(result, time.Time{})
		state = result.State
		reply = result.Reply
		return nil
	})
	if err != nil {
		return nil, "", err
	}

	s.logger.Info("conversation started",
		"conversation_id", conversationID,
		"language", state.Language,
	)
	return state, reply, nil
}

// ProcessMessage advances a conversation by one turn with the inbound user
// text. The returned state is the freshly checkpointed one.
//
// A store failure is fatal for the request: processing a support ticket on
// top of a silently fresh state would lose the caller's progress.
func (s *Service) ProcessMessage(ctx context.Context, conversationID, text string) (*domain.ConversationState, string, error) {
	started := time.Now()

	var (
		state *domain.ConversationState
		reply string
	)
	err := s.withLock(conversationID, func() error {
		prior, err := s.store.Load(ctx, conversationID)
		if err != nil {
			if errors.Is(err, domain.ErrConversationNotFound) {
				return err
			}
			return fmt.Errorf("checkpoint store unavailable: %w", err)
		}

		result, err := s.engine.RunTurn(ctx, prior, text)
		if err != nil {
			return err
		}
		if err := s.store.Save(ctx, conversationID, result.State); err != nil {
			return fmt.Errorf("failed to checkpoint conversation: %w", err)
		}

		s.observeTurn(result, started)
		state = result.State
		reply = result.Reply

		s.logger.Debug("turn processed",
			"conversation_id", conversationID,
			"stop", result.Stop,
			"path", result.Path,
		)
		return nil
	})
	if err != nil {
		return nil, "", err
	}
	return state, reply, nil
}

// Store returns the underlying checkpoint store.
func (s *Service) Store() ports.CheckpointStore {
	return s.store
}

func (s *Service) observeTurn(result *runtime.TurnResult, started time.Time) {
	if s.metrics == nil {
		return
	}
	s.metrics.TurnsTotal.WithLabelValues(string(result.Stop)).Inc()
	for _, node := range result.Path {
		s.metrics.NodeRuns.WithLabelValues(string(node)).Inc()
	}
	if result.Stop == runtime.StopNodeError && len(result.Path) > 0 {
		s.metrics.NodeFailures.WithLabelValues(string(result.Path[len(result.Path)-1])).Inc()
	}
	if !started.IsZero() {
		s.metrics.TurnDuration.Observe(time.Since(started).Seconds())
	}
}

// withLock serializes turns for one conversation id. Reference counting
// garbage-collects idle locks.
func (s *Service) withLock(conversationID string, fn func() error) error {
	s.mu.Lock()
	entry, ok := s.locks[conversationID]
	if !ok {
		entry = &lockEntry{}
		s.locks[conversationID] = entry
	}
	entry.refs++
	s.mu.Unlock()

	entry.mu.Lock()
	defer func() {
		entry.mu.Unlock()

		s.mu.Lock()
		entry.refs--
		if entry.refs <= 0 {
			delete(s.locks, conversationID)
		}
		s.mu.Unlock()
	}()

	return fn()
}
