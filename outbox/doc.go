// Package outbox durably tracks delivery of engine Events to external
// consumers (the Kafka broadcaster) so a crash between "matched" and
// "published" never silently drops an event: every event is written
// here as New before being handed to the broadcaster, transitions to
// Sent once produced to Kafka, and to Acked once Kafka confirms it.
package outbox
