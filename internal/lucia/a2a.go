package lucia

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/google/uuid"
)

// A2A JSON-RPC envelope. The backend proxies these verbatim to the
// target agent, so the shapes follow the A2A protocol rather than the
// backend's own conventions.

type A2ARequest struct {
	JSONRPC string      `json:"jsonrpc"`
	Method  string      `json:"method"`
	ID      string      `json:"id"`
	Params  interface{} `json:"params,omitempty"`
}

type A2AError struct {
	Code    int         `json:"code"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

type A2AMessage struct {
	Kind      string    `json:"kind"`
	MessageID string    `json:"messageId"`
	ContextID string    `json:"contextId,omitempty"`
	Role      string    `json:"role"`
	Parts     []A2APart `json:"parts"`
}

type A2APart struct {
	Kind string `json:"kind"`
	Text string `json:"text,omitempty"`
}

type a2aMessageParams struct {
	Message A2AMessage `json:"message"`
}

type a2aResponse struct {
	JSONRPC string     `json:"jsonrpc"`
	ID      string     `json:"id"`
	Result  *a2aResult `json:"result,omitempty"`
	Error   *A2AError  `json:"error,omitempty"`
}

type a2aResult struct {
	ContextID string `json:"contextId,omitempty"`
	Status    struct {
		State   string      `json:"state,omitempty"`
		Message *A2AMessage `json:"message,omitempty"`
	} `json:"status"`
}

// ChatReply is the distilled outcome of one proxied A2A exchange.
type ChatReply struct {
	Text      string `json:"text"`
	ContextID string `json:"contextId,omitempty"`
	State     string `json:"state,omitempty"`
}

// SendAgentMessage proxies one user message to an agent through the
// backend. Passing the contextId from a previous reply continues that
// conversation; an empty contextId starts a new one.
func (c *Client) SendAgentMessage(ctx context.Context, agentURL, text, contextID string) (*ChatReply, error) {
	req := A2ARequest{
		JSONRPC: "2.0",
		Method:  "message/send",
		ID:      uuid.NewString(),
		Params: a2aMessageParams{
			Message: A2AMessage{
				Kind:      "message",
				MessageID: uuid.NewString(),
				ContextID: contextID,
				Role:      "user",
				Parts:     []A2APart{{Kind: "text", Text: text}},
			},
		},
	}

	q := url.Values{}
	q.Set("agentUrl", agentURL)

	var resp a2aResponse
	if err := c.do(ctx, "POST", "/agents/proxy", q, req, &resp); err != nil {
		return nil, err
	}

	if resp.Error != nil {
		return nil, fmt.Errorf("agent error %d: %s", resp.Error.Code, resp.Error.Message)
	}
	if resp.Result == nil {
		return nil, fmt.Errorf("agent returned neither result nor error")
	}

	reply := &ChatReply{
		ContextID: resp.Result.ContextID,
		State:     resp.Result.Status.State,
	}
	if msg := resp.Result.Status.Message; msg != nil {
		var parts []string
		for _, p := range msg.Parts {
			if p.Kind == "text" && p.Text != "" {
				parts = append(parts, p.Text)
			}
		}
		reply.Text = strings.Join(parts, "\n")
		if reply.ContextID == "" {
			reply.ContextID = msg.ContextID
		}
	}

	return reply, nil
}
