// Package broadcaster drains the outbox's New entries into an
// external Kafka topic so downstream consumers (ledger writers, user
// notification services) see every engine Event at least once.
package broadcaster
