// Package ingress bridges a durable external "commands" Kafka topic
// into the engine's input queue. Each instrument is assigned its own
// partition so that commands for one instrument are delivered in
// partition (and therefore topic-write) order, matching the FIFO
// discipline the engine's input queue itself provides for in-process
// producers (spec §5).
package ingress
