// Package rcu implements a read-biased concurrent single-value container
// based on the Read-Copy-Update pattern.
//
// The container holds one logical payload at a time. Many readers observe
// the current payload through Cell.Read with minimal coordination — no
// reader ever blocks on another reader or on a writer. A writer installs a
// new payload with Cell.Update, which atomically publishes the new value
// and schedules the displaced one for deferred destruction.
//
// Destruction of a displaced payload never happens synchronously inside
// Update. Instead, a payload retired in epoch E is only destroyed once no
// reader can still observe it: the reader whose departure from a
// publish-window happens to drop the in-flight reader count to zero is
// elected to rotate the two retirement stacks (current and final) and
// drain whichever one has aged out a full epoch. This buys a full extra
// epoch of delay, which is what makes the drain safe without a tracing
// collector or reader-visible locks.
//
// Check the documentation of Cell and PayloadRef for the full protocol.
package rcu
