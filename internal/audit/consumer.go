package audit

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/twmb/franz-go/pkg/kgo"
)

// Consumer drains the audit topic into a Store so access decisions are
// queryable after the fact. A malformed record is logged and skipped; one bad
// payload must not wedge the partition.
type Consumer struct {
	client *kgo.Client
	store  Store
	logger *slog.Logger
	topic  string
}

// ConsumerOption configures a Consumer.
type ConsumerOption func(*Consumer)

// WithConsumerTopic overrides the audit topic to consume.
func WithConsumerTopic(topic string) ConsumerOption {
	return func(c *Consumer) {
		c.topic = topic
	}
}

// WithConsumerLogger injects a structured logger.
func WithConsumerLogger(logger *slog.Logger) ConsumerOption {
	return func(c *Consumer) {
		c.logger = logger
	}
}

// NewConsumer joins the given consumer group on the audit topic.
func NewConsumer(brokers []string, group string, store Store, opts ...ConsumerOption) (*Consumer, error) {
	c := &Consumer{
		store:  store,
		logger: slog.Default(),
		topic:  DefaultTopic,
	}
	for _, opt := range opts {
		opt(c)
	}

	client, err := kgo.NewClient(
		kgo.SeedBrokers(brokers...),
		kgo.ConsumeTopics(c.topic),
		kgo.ConsumerGroup(group),
		kgo.ConsumeResetOffset(kgo.NewOffset().AtStart()),
	)
	if err != nil {
		return nil, fmt.Errorf("create kafka consumer: %w", err)
	}
	c.client = client
	return c, nil
}

// Run polls until ctx is cancelled or the client is closed.
func (c *Consumer) Run(ctx context.Context) error {
	for {
		fetches := c.client.PollFetches(ctx)
		if fetches.IsClientClosed() {
			return nil
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		fetches.EachError(func(topic string, partition int32, err error) {
			c.logger.ErrorContext(ctx, "audit fetch error",
				"topic", topic,
				"partition", partition,
				"error", err,
			)
		})
		fetches.EachRecord(func(record *kgo.Record) {
			event, err := decodeEvent(record.Value)
			if err != nil {
				c.logger.WarnContext(ctx, "skipping malformed audit record",
					"error", err,
					"offset", record.Offset,
				)
				return
			}
			if err := c.store.Append(ctx, event); err != nil {
				c.logger.ErrorContext(ctx, "audit event persist failed",
					"kind", string(event.Kind),
					"error", err,
				)
			}
		})
	}
}

// Close leaves the consumer group and releases the client.
func (c *Consumer) Close() {
	c.client.Close()
}

func decodeEvent(payload []byte) (Event, error) {
	var event Event
	if err := json.Unmarshal(payload, &event); err != nil {
		return Event{}, fmt.Errorf("decode audit event: %w", err)
	}
	if event.Kind == "" {
		return Event{}, fmt.Errorf("decode audit event: missing kind")
	}
	return event, nil
}
