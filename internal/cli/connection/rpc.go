package connection

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
)

// RPCError is a JSON-RPC error object returned by a fork.
type RPCError struct {
	Code    int             `json:"code"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data,omitempty"`
}

func (e *RPCError) Error() string {
	var data struct {
		Code string `json:"code"`
	}
	if len(e.Data) > 0 && json.Unmarshal(e.Data, &data) == nil && data.Code != "" {
		return fmt.Sprintf("[%s] %s (rpc %d)", data.Code, e.Message, e.Code)
	}
	return fmt.Sprintf("rpc error %d: %s", e.Code, e.Message)
}

type rpcRequest struct {
	JSONRPC string `json:"jsonrpc"`
	ID      int    `json:"id"`
	Method  string `json:"method"`
	Params  any    `json:"params,omitempty"`
}

type rpcResponse struct {
	Result json.RawMessage `json:"result"`
	Error  *RPCError       `json:"error"`
}

// Call invokes a JSON-RPC method on the fork and decodes the result into
// result, which may be nil.
func (c *HTTPClient) Call(ctx context.Context, forkID, method string, params, result any) error {
	resp, err := c.Post(ctx, "/fork/"+url.PathEscape(forkID)+"/rpc", rpcRequest{
		JSONRPC: "2.0",
		ID:      1,
		Method:  method,
		Params:  params,
	})
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	if resp.StatusCode >= 400 {
		// Middleware rejections use the REST envelope.
		return ParseResponse(resp, nil)
	}
	defer resp.Body.Close()

	var reply rpcResponse
	if err := json.NewDecoder(resp.Body).Decode(&reply); err != nil {
		return fmt.Errorf("parse rpc response: %w", err)
	}
	if reply.Error != nil {
		return reply.Error
	}
	if result != nil {
		if err := json.Unmarshal(reply.Result, result); err != nil {
			return fmt.Errorf("parse rpc result: %w", err)
		}
	}
	return nil
}
