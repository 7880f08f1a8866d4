// Package snapshot takes epoch-gated, point-in-time dumps of an
// orderbook.OrderBook for two purposes: a warm-restart optimization
// that lets cmd/engined skip most of a long journal replay, and the
// read-only "snapshot commands" extension an external reporting
// collaborator can poll without ever taking the engine's single
// writer off its hot path.
package snapshot
