package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/yndnr/forkmesh-go/internal/core/domain"
	"github.com/yndnr/forkmesh-go/internal/telemetry/logger"
)

// JSON-RPC error codes. The -320xx range carries fork store failures.
const (
	CodeParseError      = -32700
	CodeInvalidRequest  = -32600
	CodeMethodNotFound  = -32601
	CodeInvalidParams   = -32602
	CodeInternalError   = -32603
	CodeExecutionFailed = -32002
	CodeCodecError      = -32003
	CodeForkNotFound    = -32004
	CodeFetchFailed     = -32005
)

// maxRPCBodyBytes caps one JSON-RPC request or batch.
const maxRPCBodyBytes = 4 << 20

// rpcMethod serves one JSON-RPC method against a fork.
type rpcMethod func(ctx context.Context, forkID string, p params) (any, error)

// registerMethods builds the JSON-RPC method table.
func (h *Handler) registerMethods() {
	h.methods = map[string]rpcMethod{
		// Standard methods
		"getBalance":                        h.rpcGetBalance,
		"getAccountInfo":                    h.rpcGetAccountInfo,
		"getLatestBlockhash":                h.rpcGetLatestBlockhash,
		"sendTransaction":                   h.rpcSendTransaction,
		"getMinimumBalanceForRentExemption": h.rpcGetMinimumBalanceForRentExemption,
		"getTransactionHistory":             h.rpcGetTransactionHistory,
		"getHealth":                         h.rpcGetHealth,
		"get_token_balance":                 h.rpcGetTokenBalance,

		// Cheat codes
		"set_balance":       h.rpcSetBalance,
		"set_token_balance": h.rpcSetTokenBalance,
		"set_account":       h.rpcSetAccount,
		"load_account":      h.rpcLoadAccount,
	}
}

// handleRPC handles POST /fork/{id}/rpc. It accepts a single call or a
// batch and always answers 200 with JSON-RPC objects.
func (h *Handler) handleRPC(w http.ResponseWriter, r *http.Request) {
	forkID := r.PathValue("id")
	ctx := logger.WithForkID(r.Context(), forkID)

	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxRPCBodyBytes))
	if err != nil {
		h.writeRPC(w, errorResponse(nil, &RPCError{Code: CodeParseError, Message: "failed to read request body"}))
		return
	}

	body = bytes.TrimSpace(body)
	if len(body) > 0 && body[0] == '[' {
		var batch []json.RawMessage
		if err := json.Unmarshal(body, &batch); err != nil {
			h.writeRPC(w, errorResponse(nil, &RPCError{Code: CodeParseError, Message: "parse error"}))
			return
		}
		if len(batch) == 0 {
			h.writeRPC(w, errorResponse(nil, &RPCError{Code: CodeInvalidRequest, Message: "empty batch"}))
			return
		}
		out := make([]*RPCResponse, 0, len(batch))
		for _, raw := range batch {
			out = append(out, h.call(ctx, forkID, raw))
		}
		h.writeRPC(w, out)
		return
	}

	h.writeRPC(w, h.call(ctx, forkID, body))
}

// call decodes and runs one JSON-RPC request.
func (h *Handler) call(ctx context.Context, forkID string, raw json.RawMessage) *RPCResponse {
	var req RPCRequest
	if err := json.Unmarshal(raw, &req); err != nil {
		return errorResponse(nil, &RPCError{Code: CodeParseError, Message: "parse error"})
	}
	id := req.ID
	if req.Method == "" || (req.JSONRPC != "" && req.JSONRPC != JSONRPCVersion) {
		return errorResponse(id, &RPCError{Code: CodeInvalidRequest, Message: "invalid request"})
	}

	method, ok := h.methods[req.Method]
	if !ok {
		h.rpcObs.ObserveRPC("unknown", "error")
		return errorResponse(id, toRPCError(domain.ErrMethodNotFound.WithDetails(req.Method)))
	}

	result, err := h.invoke(ctx, forkID, method, req.Params)
	if err != nil {
		h.rpcObs.ObserveRPC(req.Method, "error")
		// Uncoded errors are unexpected; coded ones are the caller's problem.
		if domain.GetErrorCode(err) == "" {
			h.logger.WithContext(ctx).Error("rpc call failed", "method", req.Method, "error", err)
		}
		return errorResponse(id, toRPCError(err))
	}

	h.rpcObs.ObserveRPC(req.Method, "ok")
	return &RPCResponse{JSONRPC: JSONRPCVersion, ID: nullID(id), Result: result}
}

// invoke checks the fork and parameters, then runs method.
func (h *Handler) invoke(ctx context.Context, forkID string, method rpcMethod, rawParams json.RawMessage) (any, error) {
	if _, err := h.forks.GetFork(ctx, forkID); err != nil {
		return nil, err
	}
	p, err := parseParams(rawParams)
	if err != nil {
		return nil, err
	}
	return method(ctx, forkID, p)
}

func (h *Handler) writeRPC(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		h.logger.Error("failed to encode rpc response", "error", err)
	}
}

func errorResponse(id json.RawMessage, e *RPCError) *RPCResponse {
	return &RPCResponse{JSONRPC: JSONRPCVersion, ID: nullID(id), Error: e}
}

func nullID(id json.RawMessage) json.RawMessage {
	if len(id) == 0 {
		return json.RawMessage("null")
	}
	return id
}

// toRPCError maps an error to a JSON-RPC error object. Domain errors carry
// their stable code in data.
func toRPCError(err error) *RPCError {
	var de *domain.DomainError
	if !errors.As(err, &de) {
		return &RPCError{Code: CodeInternalError, Message: "internal error"}
	}

	msg := de.Message
	if de.Details != "" {
		msg += ": " + de.Details
	}
	return &RPCError{
		Code:    rpcCode(de.Code),
		Message: msg,
		Data:    map[string]string{"code": de.Code},
	}
}

func rpcCode(code string) int {
	switch code {
	case domain.ErrSessionNotFound.Code:
		return CodeForkNotFound
	case domain.ErrFetchFailed.Code:
		return CodeFetchFailed
	case domain.ErrExecutionFailed.Code:
		return CodeExecutionFailed
	case domain.ErrCodecError.Code:
		return CodeCodecError
	case domain.ErrMethodNotFound.Code:
		return CodeMethodNotFound
	case domain.ErrInvalidAddress.Code, domain.ErrDecodeError.Code,
		domain.ErrInvalidArgument.Code, domain.ErrMissingArgument.Code, domain.ErrBadRequest.Code:
		return CodeInvalidParams
	default:
		return CodeInternalError
	}
}
