// Package config loads the engine's static configuration: the
// instrument list and the per-process tunables that main.go used to
// hardcode (WAL segment sizing, topics, listen address).
package config
