// Package timer implements the timer lifecycle controller.
//
// The Controller is a two-state machine (Idle, Running) that owns the single
// in-flight timer. Starting resolves tags through the store's registry;
// stopping persists the slice, its tags and its description in one
// transaction and returns to Idle.
//
// CONCURRENCY:
//
// All mutable state lives behind one mutex. The only storage I/O performed
// while holding it is the transactional insert in Stop. Tag resolution during
// Start runs outside the lock, and the Running check is repeated once the
// lock is re-acquired.
//
// WATCHDOG:
//
// A timer started with a duration gets one watchdog goroutine. It sleeps on
// the Clock until the deadline (no busy polling) and then runs the same stop
// path a user would, guarded by the timer's token: if the timer it was armed
// for is already gone, it does nothing. Stopping by either path cancels the
// watchdog's context, so exactly one stop persists the slice.
//
// The timer itself is never written to the store while running; a crash loses
// it.
package timer
