package notify

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/segmentio/kafka-go"
)

type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// AccountEvent is the Kafka record of one account update.
type AccountEvent struct {
	Community string `json:"community"`
	Member    string `json:"member"`
	Diff      int64  `json:"diff"`
	Balance   int64  `json:"balance"`
	Reason    string `json:"reason"`
	TsUnixMs  int64  `json:"ts_unix_ms"`
}

// KafkaSink publishes notices to a topic keyed by community and member, so
// one member's updates stay ordered within a partition.
type KafkaSink struct {
	writer messageWriter
}

func NewKafkaSink(brokers []string, topic string) *KafkaSink {
	return &KafkaSink{writer: &kafka.Writer{
		Addr:                   kafka.TCP(brokers...),
		Topic:                  topic,
		Balancer:               &kafka.Hash{},
		AllowAutoTopicCreation: true,
	}}
}

func (s *KafkaSink) Name() string {
	return "kafka"
}

func (s *KafkaSink) Send(ctx context.Context, n Notice) error {
	b, err := json.Marshal(AccountEvent{
		Community: n.Update.Community,
		Member:    n.Update.Member,
		Diff:      n.Update.Diff,
		Balance:   n.Update.Balance,
		Reason:    n.Reason,
		TsUnixMs:  n.At.UnixMilli(),
	})
	if err != nil {
		return fmt.Errorf("marshal account event: %w", err)
	}
	return s.writer.WriteMessages(ctx, kafka.Message{
		Key:   []byte(n.Update.Community + ":" + n.Update.Member),
		Value: b,
		Time:  n.At,
	})
}

func (s *KafkaSink) Close() error {
	return s.writer.Close()
}
