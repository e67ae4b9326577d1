// Package logger is the ForkMesh structured logger, a thin layer over log/slog.
//
// Lines are JSON by default or text on request. Attributes whose keys look
// like credentials are masked, as are API keys in RPC URL query strings.
// The level is process-wide and may change at runtime.
//
// Request and fork ids travel in context.Context:
//
//	ctx = logger.WithForkID(logger.WithRequestID(ctx, reqID), forkID)
//	log.WithContext(ctx).Info("balance set")
//
// Every record logged through a context-bound Logger carries request_id and
// fork_id attributes when they are present.
package logger
