package outbox

import (
	"context"
	"errors"
	"fmt"

	"github.com/Muscledia/gamification-outbox/pkg/messaging/kafka/producer"
	"github.com/confluentinc/confluent-kafka-go/v2/kafka"
)

// Publisher is the opaque broker capability the processor depends on. A
// publish attempt either succeeds within the caller's deadline or returns a
// classified error.
type Publisher interface {
	Publish(ctx context.Context, topic, key string, payload []byte, headers map[string]string) error

	// Healthy reports whether the broker is currently reachable.
	Healthy(ctx context.Context) bool
}

type kafkaPublisher struct {
	producer producer.Producer
}

func newKafkaPublisher(p producer.Producer) Publisher {
	return &kafkaPublisher{producer: p}
}

// Publish produces one message and waits for the broker's delivery report.
// A context deadline expiring mid-flight is a transient failure: the message
// may or may not have reached the broker, which at-least-once delivery with
// consumer-side deduplication tolerates.
func (p *kafkaPublisher) Publish(ctx context.Context, topic, key string, payload []byte, headers map[string]string) error {
	kafkaHeaders := make([]kafka.Header, 0, len(headers))
	for k, v := range headers {
		kafkaHeaders = append(kafkaHeaders, kafka.Header{Key: k, Value: []byte(v)})
	}

	deliveryChan := make(chan kafka.Event, 1)
	err := p.producer.Produce(&kafka.Message{
		TopicPartition: kafka.TopicPartition{Topic: &topic, Partition: kafka.PartitionAny},
		Key:            []byte(key),
		Value:          payload,
		Headers:        kafkaHeaders,
	}, deliveryChan)
	if err != nil {
		return classifyPublishError(topic, err)
	}

	select {
	case <-ctx.Done():
		return &TransientPublishError{Topic: topic, Err: ctx.Err()}
	case event := <-deliveryChan:
		msg, ok := event.(*kafka.Message)
		if !ok {
			return &TransientPublishError{Topic: topic, Err: fmt.Errorf("unexpected delivery event %T", event)}
		}
		if msg.TopicPartition.Error != nil {
			return classifyPublishError(topic, msg.TopicPartition.Error)
		}
		return nil
	}
}

func (p *kafkaPublisher) Healthy(ctx context.Context) bool {
	meta, err := p.producer.GetMetadata(nil, false, 1000)
	return err == nil && len(meta.Brokers) > 0
}

// classifyPublishError separates broker rejections of the message itself
// (permanent, dead-letter immediately) from delivery problems (retryable).
// Classification is by kafka error code, never by message text.
func classifyPublishError(topic string, err error) error {
	var kafkaErr kafka.Error
	if errors.As(err, &kafkaErr) {
		switch kafkaErr.Code() {
		case kafka.ErrMsgSizeTooLarge, kafka.ErrInvalidMsg, kafka.ErrInvalidMsgSize:
			return &ValidationError{Reason: kafkaErr.Code().String(), Err: err}
		}
	}
	return &TransientPublishError{Topic: topic, Err: err}
}
