// Package memory provides epoch-based reclamation for Order values so
// the engine's single writer can reuse freed orders without an
// allocation on every place/cancel/fill, even while a concurrent
// snapshot reader may still be mid-walk over a price level that held
// one. See epoch.go for the reclaim protocol and pool.go for the
// typed backing pool.
package memory
