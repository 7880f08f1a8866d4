package ingress

import (
	"context"
	"log"

	"github.com/segmentio/kafka-go"
)

// Deliver hands one command's raw, still-encoded bytes to the engine. The
// engine owns decoding (it alone knows the Command wire type); ingress
// only guarantees delivery order within a partition.
type Deliver func(ctx context.Context, instrumentPartition int, raw []byte) error

// Replayer consumes a fixed partition of the commands topic — one per
// instrument, per the caller's partition assignment — and replays
// each message through Deliver.
type Replayer struct {
	reader    *kafka.Reader
	partition int
	deliver   Deliver
}

// New constructs a Replayer bound to one partition of topic.
func New(brokers []string, topic string, partition int, deliver Deliver) *Replayer {
	return &Replayer{
		reader: kafka.NewReader(kafka.ReaderConfig{
			Brokers:   brokers,
			Topic:     topic,
			Partition: partition,
			MinBytes:  1,
			MaxBytes:  10e6,
		}),
		partition: partition,
		deliver:   deliver,
	}
}

// Run reads messages until ctx is canceled or the reader errors.
func (r *Replayer) Run(ctx context.Context) error {
	for {
		msg, err := r.reader.ReadMessage(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			return err
		}
		if err := r.deliver(ctx, r.partition, msg.Value); err != nil {
			log.Printf("ingress: partition %d seq offset %d delivery failed: %v", r.partition, msg.Offset, err)
			return err
		}
	}
}

// Close releases the underlying reader.
func (r *Replayer) Close() error {
	return r.reader.Close()
}
