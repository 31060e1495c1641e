package ingest

import (
	"context"
	"fmt"
	"time"

	"github.com/IBM/sarama"
	"github.com/sirupsen/logrus"

	"token-radar/internal/domain"
)

// KafkaConfig configures the Kafka source.
type KafkaConfig struct {
	Brokers []string
	Topic   string
	GroupID string
}

// KafkaSource streams chat messages from a Kafka topic through a
// consumer group. Each record value is one JSON chat frame.
type KafkaSource struct {
	group  sarama.ConsumerGroup
	config KafkaConfig
}

var _ Source = (*KafkaSource)(nil)

// NewKafkaSource creates a Kafka source and joins the consumer group.
func NewKafkaSource(config KafkaConfig) (*KafkaSource, error) {
	if len(config.Brokers) == 0 || config.Topic == "" || config.GroupID == "" {
		return nil, fmt.Errorf("kafka brokers, topic and group id are required")
	}

	cfg := sarama.NewConfig()
	cfg.Version = sarama.V2_1_0_0
	cfg.Consumer.Group.Rebalance.GroupStrategies = []sarama.BalanceStrategy{sarama.NewBalanceStrategyRange()}
	cfg.Consumer.Offsets.Initial = sarama.OffsetOldest
	cfg.Consumer.Return.Errors = true

	group, err := sarama.NewConsumerGroup(config.Brokers, config.GroupID, cfg)
	if err != nil {
		return nil, fmt.Errorf("join consumer group: %w", err)
	}

	return &KafkaSource{group: group, config: config}, nil
}

// Name identifies the source in logs.
func (s *KafkaSource) Name() string {
	return "kafka"
}

// Messages starts the consume loop. Sarama requires re-running Consume
// after every rebalance, so the loop spins until the context ends.
func (s *KafkaSource) Messages(ctx context.Context) (<-chan domain.ChatMessage, error) {
	out := make(chan domain.ChatMessage, messageBuffer)
	handler := &claimHandler{out: out}

	go func() {
		for err := range s.group.Errors() {
			logrus.Errorf("Kafka consumer group error: %v", err)
		}
	}()

	go func() {
		defer close(out)
		for {
			if err := s.group.Consume(ctx, []string{s.config.Topic}, handler); err != nil {
				logrus.Errorf("Kafka consume failed, retrying: %v", err)
				select {
				case <-ctx.Done():
					return
				case <-time.After(300 * time.Millisecond):
				}
			}
			if ctx.Err() != nil {
				return
			}
		}
	}()

	return out, nil
}

// Close leaves the consumer group.
func (s *KafkaSource) Close() error {
	return s.group.Close()
}

// claimHandler forwards decoded records to the output channel.
type claimHandler struct {
	out chan<- domain.ChatMessage
}

func (h *claimHandler) Setup(sarama.ConsumerGroupSession) error   { return nil }
func (h *claimHandler) Cleanup(sarama.ConsumerGroupSession) error { return nil }

func (h *claimHandler) ConsumeClaim(sess sarama.ConsumerGroupSession, claim sarama.ConsumerGroupClaim) error {
	for record := range claim.Messages() {
		msg, err := decodeFrame(record.Value)
		if err != nil {
			logrus.Warnf("Dropping bad Kafka record %s/%d@%d: %v",
				record.Topic, record.Partition, record.Offset, err)
			sess.MarkMessage(record, "")
			continue
		}

		if msg.ObservedAt.IsZero() {
			msg.ObservedAt = record.Timestamp.UTC()
		}

		select {
		case h.out <- msg:
			sess.MarkMessage(record, "")
		case <-sess.Context().Done():
			return nil
		}
	}
	return nil
}
