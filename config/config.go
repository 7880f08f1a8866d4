package config

import (
	"fmt"
	"os"
	"time"

	"clobengine/orderbook"

	"gopkg.in/yaml.v3"
)

// Instrument is one traded market the engine will own a book for.
type Instrument struct {
	Id               string `yaml:"id"`
	SelfTradePolicy  string `yaml:"self_trade_policy"` // allow | cancel_taker | cancel_maker | cancel_both
	CommandPartition int    `yaml:"command_partition"` // kafka-go ingress partition for this instrument
}

// Config is the engined process's full static configuration.
type Config struct {
	Instruments []Instrument `yaml:"instruments"`

	Journal struct {
		Dir             string        `yaml:"dir"`
		SegmentSize     int64         `yaml:"segment_size_bytes"`
		SegmentDuration time.Duration `yaml:"segment_duration"`
	} `yaml:"journal"`

	Outbox struct {
		Dir string `yaml:"dir"`
	} `yaml:"outbox"`

	Kafka struct {
		Brokers       []string `yaml:"brokers"`
		CommandsTopic string   `yaml:"commands_topic"`
		EventsTopic   string   `yaml:"events_topic"`
	} `yaml:"kafka"`

	GRPC struct {
		ListenAddr string `yaml:"listen_addr"`
	} `yaml:"grpc"`

	InputQueueDepth int           `yaml:"input_queue_depth"`
	EpochTick       time.Duration `yaml:"epoch_tick"`

	// MemoryRetireRingCapacity sizes each instrument's order retire
	// ring (memory.RetireRing); must be a power of two.
	MemoryRetireRingCapacity uint64 `yaml:"memory_retire_ring_capacity"`
}

// Default returns a Config usable for local development without a
// YAML file: in-memory journal, no outbox/Kafka, a loopback gRPC
// listener, and one instrument.
func Default() Config {
	var c Config
	c.Instruments = []Instrument{{Id: "DEFAULT-INSTR", SelfTradePolicy: "cancel_taker", CommandPartition: 0}}
	c.Journal.SegmentSize = 64 * 1024 * 1024
	c.Journal.SegmentDuration = time.Minute
	c.GRPC.ListenAddr = ":50051"
	c.InputQueueDepth = 4096
	c.EpochTick = 2 * time.Second
	c.MemoryRetireRingCapacity = 1 << 16
	return c
}

// ParseSelfTradePolicy maps the YAML-facing policy name onto the
// orderbook enum. Unknown names default to cancel-taker, the safest
// of the four and the one Default() itself uses.
func ParseSelfTradePolicy(name string) orderbook.SelfTradePolicy {
	switch name {
	case "allow":
		return orderbook.STPAllow
	case "cancel_maker":
		return orderbook.STPCancelMaker
	case "cancel_both":
		return orderbook.STPCancelBoth
	case "cancel_taker":
		return orderbook.STPCancelTaker
	default:
		return orderbook.STPCancelTaker
	}
}

// Load reads and parses a YAML config file at path.
func Load(path string) (Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("config: read %s: %w", path, err)
	}
	c := Default()
	if err := yaml.Unmarshal(b, &c); err != nil {
		return Config{}, fmt.Errorf("config: parse %s: %w", path, err)
	}
	if len(c.Instruments) == 0 {
		return Config{}, fmt.Errorf("config: %s declares no instruments", path)
	}
	return c, nil
}
