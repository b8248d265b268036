// Package mcp exposes the conversation service as an MCP server, so agent
// hosts can drive support conversations as tools.
package mcp

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/aurida/helpline/pkg/conversation"
	"github.com/aurida/helpline/pkg/domain"
)

// ConversationResponse is the structured result of both tools.
type ConversationResponse struct {
	ConversationID string `json:"conversation_id" jsonschema_description:"Identifier to pass to send_message"`
	Reply          string `json:"reply" jsonschema_description:"Assistant reply text"`
	CurrentNode    string `json:"current_node,omitempty" jsonschema_description:"Conversation phase"`
	Ended          bool   `json:"ended" jsonschema_description:"True once the conversation is over"`
}

// Server wraps the conversation service as an MCP server.
type Server struct {
	service   *conversation.Service
	mcpServer *server.MCPServer
}

// NewServer creates the MCP server and registers its tools.
func NewServer(service *conversation.Service, version string) *Server {
	s := &Server{
		service:   service,
		mcpServer: server.NewMCPServer("helpline-mcp", version),
	}
	s.registerTools()
	s.registerResources()
	return s
}

// ServeStdio starts the server on Stdin/Stdout.
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcpServer)
}

func (s *Server) registerTools() {
	startTool := mcp.NewTool("start_conversation",
		mcp.WithDescription("Start a new support conversation and get the greeting. Returns the conversation id to use with send_message."),
		mcp.WithString("language", mcp.Description("Conversation language: lt or en (optional, defaults to lt)")),
		mcp.WithOutputSchema[ConversationResponse](),
	)
	s.mcpServer.AddTool(startTool, mcp.NewStructuredToolHandler(s.handleStart))

	messageTool := mcp.NewTool("send_message",
		mcp.WithDescription("Send a user message to an existing conversation and get the assistant's reply."),
		mcp.WithString("conversation_id", mcp.Required(), mcp.Description("Conversation id from start_conversation")),
		mcp.WithString("text", mcp.Required(), mcp.Description("User message text")),
		mcp.WithOutputSchema[ConversationResponse](),
	)
	s.mcpServer.AddTool(messageTool, mcp.NewStructuredToolHandler(s.handleMessage))
}

func (s *Server) handleStart(ctx context.Context, _ mcp.CallToolRequest, args map[string]interface{}) (ConversationResponse, error) {
	lang, _ := args["language"].(string)

	state, reply, err := s.service.Start(ctx, "", domain.Language(lang))
	if err != nil {
		return ConversationResponse{}, fmt.Errorf("start failed: %w", err)
	}
	return toResponse(state, reply), nil
}

func (s *Server) handleMessage(ctx context.Context, _ mcp.CallToolRequest, args map[string]interface{}) (ConversationResponse, error) {
	conversationID, _ := args["conversation_id"].(string)
	text, _ := args["text"].(string)
	if conversationID == "" {
		return ConversationResponse{}, fmt.Errorf("conversation_id is required")
	}
	if text == "" {
		return ConversationResponse{}, fmt.Errorf("text is required")
	}

	state, reply, err := s.service.ProcessMessage(ctx, conversationID, text)
	if err != nil {
		return ConversationResponse{}, fmt.Errorf("send failed: %w", err)
	}
	return toResponse(state, reply), nil
}

func (s *Server) registerResources() {
	s.mcpServer.AddResource(mcp.NewResource("helpline://conversations", "Active Conversations",
		mcp.WithMIMEType("application/json"),
	), func(ctx context.Context, _ mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
		ids, err := s.service.Store().List(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to list conversations: %w", err)
		}
		jsonBytes, _ := json.Marshal(ids)

		return []mcp.ResourceContents{
			mcp.TextResourceContents{
				URI:      "helpline://conversations",
				MIMEType: "application/json",
				Text:     string(jsonBytes),
			},
		}, nil
	})
}

func toResponse(state *domain.ConversationState, reply string) ConversationResponse {
	return ConversationResponse{
		ConversationID: state.ConversationID,
		Reply:          reply,
		CurrentNode:    string(state.CurrentNode),
		Ended:          state.Flags.ConversationEnded,
	}
}
