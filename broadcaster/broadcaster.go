package broadcaster

import (
	"context"
	"log"
	"time"

	"clobengine/outbox"

	"github.com/IBM/sarama"
)

// Broadcaster polls the outbox for undelivered events and publishes
// them to Kafka, advancing each through Sent then Acked.
type Broadcaster struct {
	box      *outbox.Outbox
	producer sarama.SyncProducer
	topic    string
	interval time.Duration
}

// New constructs a Broadcaster publishing to topic on brokers,
// requiring all in-sync replicas to ack before SendMessage returns.
func New(box *outbox.Outbox, brokers []string, topic string) (*Broadcaster, error) {
	cfg := sarama.NewConfig()
	cfg.Producer.Return.Successes = true
	cfg.Producer.RequiredAcks = sarama.WaitForAll
	cfg.Producer.Retry.Max = 5

	producer, err := sarama.NewSyncProducer(brokers, cfg)
	if err != nil {
		return nil, err
	}

	return NewWithProducer(box, producer, topic), nil
}

// NewWithProducer builds a Broadcaster around an already-constructed
// producer, so tests can substitute sarama/mocks.NewSyncProducer.
func NewWithProducer(box *outbox.Outbox, producer sarama.SyncProducer, topic string) *Broadcaster {
	return &Broadcaster{box: box, producer: producer, topic: topic, interval: 250 * time.Millisecond}
}

// Start runs the poll loop in its own goroutine until ctx is canceled.
func (b *Broadcaster) Start(ctx context.Context) {
	log.Println("[broadcaster] started")

	go func() {
		ticker := time.NewTicker(b.interval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				b.drainOnce()
			}
		}
	}()
}

func (b *Broadcaster) drainOnce() {
	failedThisPass := make(map[uint64]bool)
	for _, state := range []outbox.State{outbox.StateNew, outbox.StateFailed} {
		_ = b.box.ScanByState(state, func(seq uint64, rec outbox.Record) error {
			if failedThisPass[seq] {
				return nil
			}
			msg := &sarama.ProducerMessage{Topic: b.topic, Value: sarama.ByteEncoder(rec.Payload)}

			if _, _, err := b.producer.SendMessage(msg); err != nil {
				_ = b.box.MarkFailed(seq, rec.Retries+1)
				failedThisPass[seq] = true
				return nil // keep scanning; retried on the next tick
			}

			_ = b.box.MarkSent(seq, rec.Retries)
			_ = b.box.MarkAcked(seq, rec.Retries)
			return nil
		})
	}
}

// Close releases the underlying Kafka producer.
func (b *Broadcaster) Close() error {
	return b.producer.Close()
}
