package runtime

import (
	"context"
	"fmt"
	"strings"

	"github.com/aurida/helpline/pkg/domain"
)

// StopReason explains why a turn ended.
type StopReason string

const (
	// StopYielded: a node produced an assistant message; the user must reply.
	StopYielded StopReason = "yielded"
	// StopEnded: the conversation reached a terminal state.
	StopEnded StopReason = "ended"
	// StopStuck: a router returned its own node without forward progress.
	StopStuck StopReason = "stuck"
	// StopCeiling: the iteration ceiling was reached.
	StopCeiling StopReason = "ceiling"
	// StopNodeError: a node failed and the fail-soft apology was issued.
	StopNodeError StopReason = "node_error"
)

// TurnResult is the outcome of processing one inbound message.
type TurnResult struct {
	State *domain.ConversationState

	// Reply is the assistant text produced this turn (possibly an apology),
	// empty if the turn produced nothing to say.
	Reply string

	// Path lists the nodes executed this turn, in order.
	Path []domain.NodeID

	Stop StopReason
}

// RunTurn advances the conversation by one turn: it appends the inbound user
// message (if any), resolves the entry node from persisted state, then runs
// node -> router -> node until a node speaks, the conversation ends, or a
// guard trips. The prior state is never mutated; the result carries a new
// state ready for checkpointing.
func (e *Engine) RunTurn(ctx context.Context, prior *domain.ConversationState, userText string) (*TurnResult, error) {
	if prior == nil {
		return nil, fmt.Errorf("nil conversation state")
	}
	if prior.Flags.ConversationEnded {
		return nil, domain.ErrConversationEnded
	}

	state := prior.Clone()

	if userText != "" {
		state.Messages = append(state.Messages, domain.Message{
			Role:      domain.RoleUser,
			Content:   userText,
			Node:      state.CurrentNode,
			Timestamp: e.clock(),
		})
	}

	next := e.ResolveEntry(state)
	e.logger.Debug("turn started",
		"conversation_id", state.ConversationID,
		"entry", next,
	)

	var (
		path    []domain.NodeID
		replies []string
		stop    StopReason
	)

	for i := 0; i < e.maxIterations; i++ {
		if next.Terminal() {
			state.Flags.ConversationEnded = true
			stop = StopEnded
			break
		}

		fn, ok := e.nodes[next]
		if !ok {
			return nil, fmt.Errorf("no node registered for %q", next)
		}

		state.CurrentNode = next
		path = append(path, next)

		res := fn(ctx, state)
		if res.Err != nil {
			// Fail-soft: apologize, record the failure, end the turn. The
			// internal error never reaches the transcript.
			e.logger.Error("node failed",
				"conversation_id", state.ConversationID,
				"node", next,
				"err", res.Err,
			)
			apology := e.t(state, "error.apology")
			detail := res.Err.Error()
			state.Apply(domain.Patch{
				LastError:      &detail,
				AppendErrors:   []domain.ErrorEntry{{Node: next, Message: detail, Timestamp: e.clock()}},
				AppendMessages: []domain.Message{e.assistantMessage(next, apology)},
			})
			replies = append(replies, apology)
			stop = StopNodeError
			break
		}

		state.Apply(res.Patch)
		spoke := false
		for _, m := range res.Patch.AppendMessages {
			if m.Role == domain.RoleAssistant {
				replies = append(replies, m.Content)
				spoke = true
			}
		}

		if state.Flags.ConversationEnded {
			stop = StopEnded
			break
		}
		// The turn yields as soon as the user has something to read.
		if spoke {
			stop = StopYielded
			break
		}

		candidate := e.routers[next](state)
		if candidate == next {
			e.logger.Warn("router made no forward progress, stopping turn",
				"conversation_id", state.ConversationID,
				"node", next,
			)
			stop = StopStuck
			break
		}
		next = candidate
	}

	if stop == "" {
		e.logger.Warn("turn iteration ceiling reached",
			"conversation_id", state.ConversationID,
			"path", path,
		)
		stop = StopCeiling
	}

	state.Flags.WaitingForUserInput = !state.Flags.ConversationEnded

	e.logger.Debug("turn finished",
		"conversation_id", state.ConversationID,
		"stop", stop,
		"path", path,
	)

	return &TurnResult{
		State: state,
		Reply: strings.Join(replies, "\n\n"),
		Path:  path,
		Stop:  stop,
	}, nil
}
