// Package shutdown coordinates graceful termination of snapkeep-server.
//
// Components register named hooks as they start; on SIGINT, SIGTERM or
// cancellation of the parent context the hooks run newest first under a
// shared deadline:
//
//	h := shutdown.NewHandler(15*time.Second, shutdown.WithLogger(log))
//	h.OnShutdown("http", srv.Shutdown)
//	err := h.Wait(ctx)
package shutdown
