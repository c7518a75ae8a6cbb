// Package shutdown provides graceful shutdown for GymDesk.
//
// A Handler waits for SIGINT, SIGTERM or an explicit Trigger, then runs
// the registered hooks in reverse order under a shared timeout.
//
// Usage:
//
//	h := shutdown.NewHandler(15 * time.Second)
//	h.OnShutdown(srv.Stop)
//	h.OnShutdown(store.Close)
//	err := h.Wait()
package shutdown
