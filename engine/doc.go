// Package engine is the single-writer actor that owns every
// instrument's OrderBook. It consumes Commands from a bounded queue,
// one at a time, applies them through the orderbook matcher, derives
// and journals the InverseOp for each applied command, and emits
// Events describing what happened. See Engine.Run.
package engine
