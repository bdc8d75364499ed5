package api

import (
	"context"
	"net/http"

	"taskdeck/internal/chat"
)

// ChatRequest is the payload for the assistant proxy endpoint. The full
// transcript travels with every exchange; the backend holds no thread state
// the client can rely on.
type ChatRequest struct {
	Message             string              `json:"message"`
	ConversationID      string              `json:"conversation_id,omitempty"`
	ConversationHistory []chat.HistoryEntry `json:"conversation_history"`
	Stream              bool                `json:"stream"`
}

type ChatResponse struct {
	ConversationID string `json:"conversation_id"`
	Response       string `json:"response"`
}

// SendChat posts one message plus the transcript so far and returns the
// assistant's reply.
func (c *Client) SendChat(ctx context.Context, req ChatRequest) (ChatResponse, error) {
	req.Stream = false
	var resp ChatResponse
	if err := c.do(ctx, http.MethodPost, "/api/v1/chat", req, &resp); err != nil {
		return ChatResponse{}, err
	}
	return resp, nil
}
