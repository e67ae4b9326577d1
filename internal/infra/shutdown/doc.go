// Package shutdown coordinates graceful process termination.
//
// Components register named hooks as they start; on SIGINT or SIGTERM the
// hooks run in reverse registration order under one shared deadline.
//
//	h := shutdown.NewHandler(15*time.Second, log)
//	h.OnShutdown("http server", srv.Shutdown)
//	err := h.Wait(ctx)
package shutdown
