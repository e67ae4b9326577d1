package handler

import (
	"encoding/json"
	"time"

	"github.com/yndnr/forkmesh-go/internal/core/domain"
)

// Response is the standard API response envelope.
// All REST responses use this format; /metrics and /fork/{id}/rpc do not.
type Response struct {
	Code      string `json:"code"`
	Message   string `json:"message"`
	RequestID string `json:"request_id"`
	Timestamp int64  `json:"timestamp"`
	Data      any    `json:"data,omitempty"`
	Details   any    `json:"details,omitempty"` // Additional error details
}

// NewResponse creates a success response.
func NewResponse(requestID string, data any) *Response {
	return &Response{
		Code:      "OK",
		Message:   "Success",
		RequestID: requestID,
		Timestamp: time.Now().UnixMilli(),
		Data:      data,
	}
}

// NewErrorResponse creates an error response.
func NewErrorResponse(requestID, code, message string, details any) *Response {
	if s, ok := details.(string); ok && s == "" {
		details = nil
	}
	return &Response{
		Code:      code,
		Message:   message,
		RequestID: requestID,
		Timestamp: time.Now().UnixMilli(),
		Details:   details,
	}
}

// ForkResponse is the body for POST /fork/create and GET /fork/{id}.
type ForkResponse = domain.ForkInfo

// ListForksResponse is the response body for GET /forks.
type ListForksResponse struct {
	Items []domain.ForkInfo `json:"items"`
	Total int               `json:"total"`
}

// RevokeForkResponse is the response body for POST /fork/{id}/revoke.
type RevokeForkResponse struct {
	ForkID  string `json:"fork_id"`
	Revoked bool   `json:"revoked"`
}

// TransactionsResponse is the response body for GET /fork/{id}/transactions.
type TransactionsResponse struct {
	ForkID       string                     `json:"fork_id"`
	Transactions []domain.TransactionRecord `json:"transactions"`
}

// GCTriggerResponse is the response body for POST /admin/v1/gc/trigger.
type GCTriggerResponse struct {
	Evicted     int       `json:"evicted"`
	ActiveForks int       `json:"active_forks"`
	TriggeredAt time.Time `json:"triggered_at"`
}

// StatusSummaryResponse is the response body for GET /admin/v1/status/summary.
type StatusSummaryResponse struct {
	Status           string `json:"status"`
	Version          string `json:"version"`
	Commit           string `json:"commit"`
	ActiveForks      int    `json:"active_forks"`
	RetentionSeconds int64  `json:"retention_seconds"`
	Time             string `json:"time"`
}

// JSON-RPC 2.0 framing.

// JSONRPCVersion is the only protocol version accepted.
const JSONRPCVersion = "2.0"

// RPCRequest is one JSON-RPC call.
type RPCRequest struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      json.RawMessage `json:"id,omitempty"`
	Method  string          `json:"method"`
	Params  json.RawMessage `json:"params,omitempty"`
}

// RPCResponse is one JSON-RPC reply. Exactly one of Result and Error is set.
type RPCResponse struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      json.RawMessage `json:"id"`
	Result  any             `json:"result,omitempty"`
	Error   *RPCError       `json:"error,omitempty"`
}

// RPCError is the JSON-RPC error object.
type RPCError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Data    any    `json:"data,omitempty"`
}

// AccountValue is an account as rendered by getAccountInfo and accepted by
// set_account. Data is a [payload, encoding] pair.
type AccountValue struct {
	Lamports   uint64      `json:"lamports"`
	Owner      string      `json:"owner"`
	Data       EncodedData `json:"data"`
	Executable bool        `json:"executable"`
	RentEpoch  uint64      `json:"rentEpoch"`
}

// BlockhashValue is the getLatestBlockhash result.
type BlockhashValue struct {
	Blockhash            string `json:"blockhash"`
	LastValidBlockHeight uint64 `json:"lastValidBlockHeight"`
}
