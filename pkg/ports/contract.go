package ports

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aurida/helpline/pkg/domain"
)

// RunCheckpointStoreContract runs a suite of tests verifying that a
// CheckpointStore implementation adheres to the interface contract.
func RunCheckpointStoreContract(t *testing.T, store CheckpointStore) {
	ctx := context.Background()
	id := "contract-" + time.Now().Format("20060102150405")

	t.Run("Save and Load round-trip", func(t *testing.T) {
		state := domain.NewState(id, domain.LanguageLT)
		state.CurrentNode = domain.NodeProblemCapture
		state.Messages = append(state.Messages, domain.Message{
			Role:      domain.RoleAssistant,
			Content:   "Sveiki!",
			Node:      domain.NodeGreeting,
			Timestamp: time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC),
		})
		state.Problem = domain.Problem{Type: "internet_down", Description: "no connectivity", Identified: true}
		providerIssue := false
		state.Diagnostics = domain.Diagnostics{Completed: true, ProviderIssue: &providerIssue}
		state.Troubleshoot = domain.Troubleshooting{ScenarioID: "internet_down", CurrentStep: 1, RetryCount: 1, MaxRetries: 3}

		err := store.Save(ctx, id, state)
		require.NoError(t, err, "Save should not return error")

		loaded, err := store.Load(ctx, id)
		require.NoError(t, err, "Load should not return error")
		assert.Equal(t, state, loaded)
	})

	t.Run("Save overwrites", func(t *testing.T) {
		first := domain.NewState(id, domain.LanguageEN)
		first.CurrentNode = domain.NodeGreeting
		require.NoError(t, store.Save(ctx, id, first))

		second := first.Clone()
		second.CurrentNode = domain.NodeDiagnostics
		require.NoError(t, store.Save(ctx, id, second))

		loaded, err := store.Load(ctx, id)
		require.NoError(t, err)
		assert.Equal(t, domain.NodeDiagnostics, loaded.CurrentNode)
	})

	t.Run("Load non-existent", func(t *testing.T) {
		_, err := store.Load(ctx, "missing-"+id)
		assert.ErrorIs(t, err, domain.ErrConversationNotFound)
	})

	t.Run("Loaded state is isolated", func(t *testing.T) {
		state := domain.NewState(id, domain.LanguageLT)
		require.NoError(t, store.Save(ctx, id, state))

		loaded, err := store.Load(ctx, id)
		require.NoError(t, err)
		loaded.Messages = append(loaded.Messages, domain.Message{Role: domain.RoleUser, Content: "mutated"})

		again, err := store.Load(ctx, id)
		require.NoError(t, err)
		assert.Empty(t, again.Messages, "mutating a loaded state must not affect the checkpoint")
	})

	t.Run("Delete", func(t *testing.T) {
		require.NoError(t, store.Save(ctx, id, domain.NewState(id, domain.LanguageLT)))
		require.NoError(t, store.Delete(ctx, id))

		_, err := store.Load(ctx, id)
		assert.ErrorIs(t, err, domain.ErrConversationNotFound)
	})

	t.Run("List", func(t *testing.T) {
		id1 := id + "-1"
		id2 := id + "-2"
		_ = store.Save(ctx, id1, domain.NewState(id1, domain.LanguageLT))
		_ = store.Save(ctx, id2, domain.NewState(id2, domain.LanguageEN))
		defer func() {
			_ = store.Delete(ctx, id1)
			_ = store.Delete(ctx, id2)
		}()

		ids, err := store.List(ctx)
		require.NoError(t, err)
		assert.Contains(t, ids, id1)
		assert.Contains(t, ids, id2)
	})
}
