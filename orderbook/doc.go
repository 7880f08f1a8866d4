// Package orderbook implements the price-level limit order book and
// the price-time-priority matching algorithm for a single instrument.
//
// The book is owned exclusively by the engine's single writer thread;
// nothing in this package takes locks or spawns goroutines. Callers
// are responsible for serializing access (see package engine).
package orderbook
