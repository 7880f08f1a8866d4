package config

import (
	"os"
	"path/filepath"
	"testing"

	"clobengine/orderbook"

	"github.com/stretchr/testify/require"
)

func TestDefaultHasAtLeastOneInstrument(t *testing.T) {
	c := Default()
	require.NotEmpty(t, c.Instruments)
	require.NotZero(t, c.Journal.SegmentSize)
	require.NotEmpty(t, c.GRPC.ListenAddr)
}

func TestLoadParsesYAMLAndOverridesDefaults(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "engined.yaml")
	const body = `
instruments:
  - id: BTC-USD
    self_trade_policy: cancel_both
    command_partition: 0
  - id: ETH-USD
    self_trade_policy: allow
    command_partition: 1
journal:
  dir: /var/lib/engined/journal
  segment_size_bytes: 134217728
kafka:
  brokers: ["broker-1:9092", "broker-2:9092"]
  commands_topic: commands
  events_topic: events
grpc:
  listen_addr: "0.0.0.0:50051"
`
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))

	c, err := Load(path)
	require.NoError(t, err)
	require.Len(t, c.Instruments, 2)
	require.Equal(t, "BTC-USD", c.Instruments[0].Id)
	require.Equal(t, "ETH-USD", c.Instruments[1].Id)
	require.Equal(t, int64(134217728), c.Journal.SegmentSize)
	require.Equal(t, "/var/lib/engined/journal", c.Journal.Dir)
	require.Equal(t, []string{"broker-1:9092", "broker-2:9092"}, c.Kafka.Brokers)
	require.Equal(t, "0.0.0.0:50051", c.GRPC.ListenAddr)
}

func TestLoadRejectsFileWithNoInstruments(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "empty.yaml")
	require.NoError(t, os.WriteFile(path, []byte("instruments: []\n"), 0o644))

	_, err := Load(path)
	require.Error(t, err)
}

func TestLoadMissingFileReturnsError(t *testing.T) {
	_, err := Load("/nonexistent/path/engined.yaml")
	require.Error(t, err)
}

func TestParseSelfTradePolicy(t *testing.T) {
	require.Equal(t, orderbook.STPAllow, ParseSelfTradePolicy("allow"))
	require.Equal(t, orderbook.STPCancelMaker, ParseSelfTradePolicy("cancel_maker"))
	require.Equal(t, orderbook.STPCancelBoth, ParseSelfTradePolicy("cancel_both"))
	require.Equal(t, orderbook.STPCancelTaker, ParseSelfTradePolicy("cancel_taker"))
	require.Equal(t, orderbook.STPCancelTaker, ParseSelfTradePolicy("unknown"))
}
