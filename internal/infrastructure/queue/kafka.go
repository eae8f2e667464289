package queue

import (
	"coffeeStatApp/internal/app/dto"
	"coffeeStatApp/internal/domain/model"
	"coffeeStatApp/internal/domain/repository"
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/segmentio/kafka-go"
)

// KafkaConfig holds Kafka connection configuration
type KafkaConfig struct {
	Brokers      []string
	Topic        string
	BatchSize    int
	BatchTimeout int // milliseconds
}

// MessageWriter is the part of kafka.Writer the producer uses
type MessageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// KafkaProducer publishes every transaction of a generated snapshot to a topic
type KafkaProducer struct {
	writer MessageWriter
}

// NewKafkaProducer creates a new Kafka producer
func NewKafkaProducer(config KafkaConfig) *KafkaProducer {
	writer := &kafka.Writer{
		Addr:         kafka.TCP(config.Brokers...),
		Topic:        config.Topic,
		Balancer:     &kafka.Hash{}, // all rows of a run land on the same partition
		RequiredAcks: kafka.RequireAll,
		BatchSize:    config.BatchSize,
		BatchTimeout: time.Duration(config.BatchTimeout) * time.Millisecond,
	}

	return NewKafkaProducerWithWriter(writer)
}

// NewKafkaProducerWithWriter wraps an existing writer
func NewKafkaProducerWithWriter(writer MessageWriter) *KafkaProducer {
	return &KafkaProducer{writer: writer}
}

var _ repository.SnapshotPublisher = (*KafkaProducer)(nil)

// PublishSnapshot sends one message per transaction, keyed by run id so a run keeps its order
func (p *KafkaProducer) PublishSnapshot(ctx context.Context, snap *model.Snapshot) error {
	msgs, err := SnapshotMessages(snap)
	if err != nil {
		return err
	}
	if len(msgs) == 0 {
		return nil
	}
	if err := p.writer.WriteMessages(ctx, msgs...); err != nil {
		return fmt.Errorf("write %d messages for run %s: %w", len(msgs), snap.RunID, err)
	}
	return nil
}

// SnapshotMessages encodes a snapshot as TransactionEvent messages
func SnapshotMessages(snap *model.Snapshot) ([]kafka.Message, error) {
	params := snap.Dataset.Params
	now := time.Now()
	msgs := make([]kafka.Message, len(snap.Dataset.Transactions))
	for i, tx := range snap.Dataset.Transactions {
		data, err := json.Marshal(dto.TransactionEvent{
			RunID:       snap.RunID,
			Seed:        params.Seed,
			Records:     params.Records,
			Transaction: dto.FromModel(tx),
		})
		if err != nil {
			return nil, err
		}
		msgs[i] = kafka.Message{
			Key:   []byte(snap.RunID),
			Value: data,
			Time:  now,
		}
	}
	return msgs, nil
}

// Close closes the producer
func (p *KafkaProducer) Close() error {
	return p.writer.Close()
}
