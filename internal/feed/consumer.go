// Package feed reads sensor snapshots from Kafka and hands them to a Sink.
package feed

import (
	"context"
	"errors"
	"time"

	"github.com/segmentio/kafka-go"
	"golang.org/x/sync/errgroup"

	"sensor-dashboard/internal/config"
	"sensor-dashboard/internal/logging"
	"sensor-dashboard/internal/metrics"
	"sensor-dashboard/internal/models"
)

// Feed channels.
const (
	ChannelLive    = "live"
	ChannelHistory = "history"
)

// Sink consumes decoded snapshots and subscription failures.
type Sink interface {
	Live(s models.Snapshot)
	HistoryAppend(s models.Snapshot)
	FeedError(channel string, err error)
}

// Archive stores history channel snapshots for later preload.
type Archive interface {
	AppendSnapshot(ctx context.Context, s models.Snapshot) error
}

// MessageReader is the subset of *kafka.Reader the consumer needs.
type MessageReader interface {
	ReadMessage(ctx context.Context) (kafka.Message, error)
	Close() error
}

type Consumer struct {
	live       MessageReader
	history    MessageReader
	sink       Sink
	archive    Archive
	logger     *logging.Logger
	retryDelay time.Duration
	now        func() time.Time
}

// NewConsumer builds readers for the live and history topics.
func NewConsumer(cfg config.Config, sink Sink, logger *logging.Logger) *Consumer {
	newReader := func(topic string) *kafka.Reader {
		return kafka.NewReader(kafka.ReaderConfig{
			Brokers:     []string{cfg.Kafka.Broker},
			Topic:       topic,
			GroupID:     cfg.Kafka.GroupID,
			MinBytes:    1,
			MaxBytes:    1 << 20,
			StartOffset: kafka.LastOffset,
		})
	}
	return NewConsumerWithReaders(newReader(cfg.Kafka.LiveTopic), newReader(cfg.Kafka.HistoryTopic), sink, logger)
}

// NewConsumerWithReaders wires explicit readers. Either reader may be nil.
func NewConsumerWithReaders(live, history MessageReader, sink Sink, logger *logging.Logger) *Consumer {
	return &Consumer{
		live:       live,
		history:    history,
		sink:       sink,
		logger:     logger,
		retryDelay: 2 * time.Second,
		now:        time.Now,
	}
}

// WithArchive mirrors history channel snapshots into a.
func (c *Consumer) WithArchive(a Archive) *Consumer {
	c.archive = a
	return c
}

// Run reads both channels until ctx is cancelled.
func (c *Consumer) Run(ctx context.Context) error {
	g, ctx := errgroup.WithContext(ctx)
	if c.live != nil {
		g.Go(func() error {
			return c.consume(ctx, ChannelLive, c.live, c.sink.Live)
		})
	}
	if c.history != nil {
		g.Go(func() error {
			return c.consume(ctx, ChannelHistory, c.history, c.handleHistory(ctx))
		})
	}
	return g.Wait()
}

func (c *Consumer) handleHistory(ctx context.Context) func(models.Snapshot) {
	return func(s models.Snapshot) {
		c.sink.HistoryAppend(s)
		if c.archive == nil {
			return
		}
		if err := c.archive.AppendSnapshot(ctx, s); err != nil {
			c.logger.Warnf("Failed to archive history snapshot: %v", err)
		}
	}
}

func (c *Consumer) consume(ctx context.Context, channel string, r MessageReader, handle func(models.Snapshot)) error {
	log := c.logger.WithField("channel", channel)
	log.Infof("Kafka consumer started")
	for {
		msg, err := r.ReadMessage(ctx)
		if err != nil {
			if ctx.Err() != nil || errors.Is(err, context.Canceled) {
				log.Infof("Kafka consumer stopped")
				return nil
			}
			log.Errorf("Read message failed: %v", err)
			metrics.IncFeedError(channel)
			c.sink.FeedError(channel, err)
			select {
			case <-ctx.Done():
				return nil
			case <-time.After(c.retryDelay):
			}
			continue
		}

		receivedAt := msg.Time
		if receivedAt.IsZero() {
			receivedAt = c.now()
		}
		snap, err := models.ParseSnapshot(msg.Value, receivedAt)
		if err != nil {
			log.Errorf("Unmarshal message failed: %v", err)
			metrics.IncFeedError(channel)
			continue
		}
		snap.Key = string(msg.Key)
		handle(snap)
	}
}

// Close closes both readers.
func (c *Consumer) Close() {
	for _, r := range []MessageReader{c.live, c.history} {
		if r == nil {
			continue
		}
		if err := r.Close(); err != nil {
			c.logger.Warnf("Failed to close reader: %v", err)
		}
	}
}
