package conversation

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aurida/helpline/internal/runtime"
	"github.com/aurida/helpline/pkg/adapters/memory"
	"github.com/aurida/helpline/pkg/domain"
	"github.com/aurida/helpline/pkg/ports"
)

type stubLLM struct{}

func (stubLLM) Generate(context.Context, string, []domain.Message, float64, int) (string, error) {
	return "ok", nil
}

func (stubLLM) GenerateJSON(context.Context, string, []domain.Message, float64, int) (map[string]any, error) {
	return map[string]any{"identified": false}, nil
}

type stubCRM struct{}

func (stubCRM) LookupByPhone(context.Context, string) (*ports.LookupResult, error) {
	return &ports.LookupResult{}, nil
}

func (stubCRM) LookupByAddress(context.Context, string, string, string, string) (*ports.LookupResult, error) {
	return &ports.LookupResult{}, nil
}

func (stubCRM) CreateTicket(context.Context, ports.TicketRequest) (*ports.TicketResult, error) {
	return &ports.TicketResult{}, nil
}

type stubDiagnostics struct{}

func (stubDiagnostics) CheckProviderIssues(context.Context, string) (*ports.DiagnosticsReport, error) {
	return &ports.DiagnosticsReport{NeedsTroubleshooting: true}, nil
}

func (stubDiagnostics) RunPingTest(context.Context, string) (*ports.PingResult, error) {
	return &ports.PingResult{Success: true}, nil
}

type keyTranslator struct{}

func (keyTranslator) T(_ domain.Language, key string, _ ...any) string { return key }

func newTestService(t *testing.T, opts ...Option) *Service {
	t.Helper()
	engine, err := runtime.NewEngine(runtime.Collaborators{
		LLM:         stubLLM{},
		CRM:         stubCRM{},
		Diagnostics: stubDiagnostics{},
		Translator:  keyTranslator{},
	})
	require.NoError(t, err)
	return New(memory.NewStore(), engine, opts...)
}

func TestStartMintsIDAndGreets(t *testing.T) {
	service := newTestService(t)

	state, reply, err := service.Start(context.Background(), "", "")
	require.NoError(t, err)

	assert.NotEmpty(t, state.ConversationID)
	assert.Equal(t, domain.LanguageLT, state.Language)
	assert.Equal(t, "greeting.welcome", reply)

	// The greeting turn is checkpointed immediately.
	saved, err := service.Store().Load(context.Background(), state.ConversationID)
	require.NoError(t, err)
	assert.Equal(t, state.Messages, saved.Messages)
}

func TestStartResumesExistingConversation(t *testing.T) {
	service := newTestService(t)

	first, _, err := service.Start(context.Background(), "conv-1", domain.LanguageEN)
	require.NoError(t, err)

	second, reply, err := service.Start(context.Background(), "conv-1", domain.LanguageLT)
	require.NoError(t, err)

	// Resume returns the checkpoint untouched: same transcript, no new
	// greeting, original language.
	assert.Empty(t, reply)
	assert.Equal(t, first.Messages, second.Messages)
	assert.Equal(t, domain.LanguageEN, second.Language)
}

func TestStartDefaultLanguageOption(t *testing.T) {
	service := newTestService(t, WithDefaultLanguage(domain.LanguageEN))

	state, _, err := service.Start(context.Background(), "", "")
	require.NoError(t, err)
	assert.Equal(t, domain.LanguageEN, state.Language)
}

func TestProcessMessageAdvancesAndCheckpoints(t *testing.T) {
	service := newTestService(t)

	started, _, err := service.Start(context.Background(), "conv-1", "")
	require.NoError(t, err)

	state, reply, err := service.ProcessMessage(context.Background(), "conv-1", "kazkas negerai")
	require.NoError(t, err)

	assert.Equal(t, "problem.clarify", reply)
	assert.Greater(t, len(state.Messages), len(started.Messages))

	saved, err := service.Store().Load(context.Background(), "conv-1")
	require.NoError(t, err)
	assert.Equal(t, state.Messages, saved.Messages)
}

func TestProcessMessageUnknownConversation(t *testing.T) {
	service := newTestService(t)

	_, _, err := service.ProcessMessage(context.Background(), "absent", "labas")
	assert.ErrorIs(t, err, domain.ErrConversationNotFound)
}

func TestProcessMessageConcurrentTurnsSerialize(t *testing.T) {
	service := newTestService(t)

	_, _, err := service.Start(context.Background(), "conv-1", "")
	require.NoError(t, err)

	const turns = 8
	var wg sync.WaitGroup
	for i := 0; i < turns; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, _, err := service.ProcessMessage(context.Background(), "conv-1", fmt.Sprintf("zinute %d", i))
			assert.NoError(t, err)
		}(i)
	}
	wg.Wait()

	state, err := service.Store().Load(context.Background(), "conv-1")
	require.NoError(t, err)

	users := 0
	for _, m := range state.Messages {
		if m.Role == domain.RoleUser {
			users++
		}
	}
	// Serialized turns: every message lands exactly once.
	assert.Equal(t, turns, users)
}

func TestMetricsCountTurns(t *testing.T) {
	registry := prometheus.NewRegistry()
	metrics := NewMetrics(registry)
	service := newTestService(t, WithMetrics(metrics))

	_, _, err := service.Start(context.Background(), "conv-1", "")
	require.NoError(t, err)
	_, _, err = service.ProcessMessage(context.Background(), "conv-1", "kazkas negerai")
	require.NoError(t, err)

	assert.Equal(t, float64(2),
		testutil.ToFloat64(metrics.TurnsTotal.WithLabelValues(string(runtime.StopYielded))))
	assert.Equal(t, float64(1),
		testutil.ToFloat64(metrics.NodeRuns.WithLabelValues(string(domain.NodeGreeting))))
}
