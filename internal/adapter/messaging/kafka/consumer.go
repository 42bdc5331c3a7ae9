package kafka

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"transaction-orchestrator/internal/core/domain"
	"transaction-orchestrator/internal/core/ports"
	"transaction-orchestrator/pkg/apperror"

	"github.com/rs/zerolog"
	"github.com/twmb/franz-go/pkg/kgo"
	"go.opentelemetry.io/otel"
	"golang.org/x/sync/errgroup"
)

// FetchClient is the part of *kgo.Client the Consumer drives.
type FetchClient interface {
	PollRecords(ctx context.Context, maxPollRecords int) kgo.Fetches
	CommitRecords(ctx context.Context, rs ...*kgo.Record) error
	SetOffsets(setOffsets map[string]map[int32]kgo.EpochOffset)
	AllowRebalance()
	Close()
}

type ConsumerConfig struct {
	RecordsPerPoll  int
	MaxRedeliveries int
	// Channels maps each consumed topic onto its inbound channel.
	Channels map[string]domain.Channel
}

// Consumer feeds inbound records to the orchestrator.
//
// Handled records (duplicates included) are committed. A retryable failure
// rewinds the partition to the failed record. Records that can never succeed
// are redelivered up to MaxRedeliveries and then parked in the dead-letter
// queue. A fatal error stops Poll.
type Consumer struct {
	client  FetchClient
	handler ports.OrchestrationService
	dlq     ports.DeadLetterQueue // nil = drop after max redeliveries
	cfg     ConsumerConfig
	log     zerolog.Logger

	mu       sync.Mutex
	attempts map[string]int
	now      func() time.Time
}

type action int

const (
	actionCommit action = iota
	actionRewind
	actionStop
)

// NewConsumer creates a Consumer. Poll must be called to start consuming.
func NewConsumer(client FetchClient, handler ports.OrchestrationService, dlq ports.DeadLetterQueue, cfg ConsumerConfig, log zerolog.Logger) *Consumer {
	return &Consumer{
		client:   client,
		handler:  handler,
		dlq:      dlq,
		cfg:      cfg,
		log:      log.With().Str("component", "kafka_consumer").Logger(),
		attempts: make(map[string]int),
		now:      time.Now,
	}
}

// Poll consumes until ctx is cancelled or a fatal error occurs.
// The client is closed on return.
func (c *Consumer) Poll(ctx context.Context) error {
	defer c.client.Close()

	for {
		if ctx.Err() != nil {
			c.log.Info().Msg("polling stopped: context canceled")
			return nil
		}

		fetches := c.client.PollRecords(ctx, c.cfg.RecordsPerPoll)
		if fetches.IsClientClosed() {
			return errors.New("kafka client closed")
		}
		if errors.Is(fetches.Err0(), context.Canceled) {
			c.log.Info().Msg("polling stopped: context canceled")
			return nil
		}
		fetches.EachError(func(topic string, partition int32, err error) {
			c.log.Warn().Err(err).Str("topic", topic).Int32("partition", partition).Msg("fetch error")
		})

		err := c.processFetches(ctx, fetches)
		c.client.AllowRebalance()
		if err != nil {
			return err
		}
	}
}

// processFetches handles partitions concurrently and records of a partition in order.
func (c *Consumer) processFetches(ctx context.Context, fetches kgo.Fetches) error {
	g, gctx := errgroup.WithContext(ctx)
	fetches.EachPartition(func(p kgo.FetchTopicPartition) {
		if len(p.Records) == 0 {
			return
		}
		g.Go(func() error {
			return c.processPartition(gctx, p.Records)
		})
	})
	return g.Wait()
}

func (c *Consumer) processPartition(ctx context.Context, records []*kgo.Record) error {
	var done []*kgo.Record
	defer func() {
		if len(done) == 0 {
			return
		}
		if err := c.client.CommitRecords(context.WithoutCancel(ctx), done...); err != nil {
			c.log.Error().Err(err).Str("topic", done[0].Topic).Int32("partition", done[0].Partition).Msg("commit failed")
		}
	}()

	for _, rec := range records {
		act, err := c.handleRecord(ctx, rec)
		switch act {
		case actionCommit:
			done = append(done, rec)
		case actionRewind:
			c.rewind(rec)
			return nil
		case actionStop:
			return err
		}
	}
	return nil
}

func (c *Consumer) handleRecord(ctx context.Context, rec *kgo.Record) (action, error) {
	ctx = otel.GetTextMapPropagator().Extract(ctx, headerCarrier{record: rec})
	log := c.log.With().
		Str("topic", rec.Topic).
		Int32("partition", rec.Partition).
		Int64("offset", rec.Offset).
		Logger()

	channel, ok := c.cfg.Channels[rec.Topic]
	if !ok {
		return c.poison(ctx, rec, fmt.Errorf("no channel bound to topic %q", rec.Topic)), nil
	}

	evt, err := domain.DecodeInboundEvent(rec.Value)
	if err != nil {
		return c.poison(ctx, rec, err), nil
	}

	res, err := c.handler.Handle(ctx, channel, evt)
	switch {
	case err == nil:
		c.forget(rec)
		if res != nil && res.Duplicate {
			log.Debug().Str("event_id", evt.ID).Msg("duplicate record committed")
		}
		return actionCommit, nil
	case apperror.IsFatal(err):
		log.Error().Err(err).Str("event_id", evt.ID).Msg("contract violation, stopping consumer")
		return actionStop, err
	case apperror.IsRetryable(err):
		log.Warn().Err(err).Str("event_id", evt.ID).Msg("handling failed, record will be redelivered")
		return actionRewind, nil
	default:
		return c.poison(ctx, rec, err), nil
	}
}

// poison counts a delivery of a record that cannot succeed and parks it once
// the redelivery budget is spent.
func (c *Consumer) poison(ctx context.Context, rec *kgo.Record, cause error) action {
	key := recordKey(rec)

	c.mu.Lock()
	c.attempts[key]++
	attempts := c.attempts[key]
	c.mu.Unlock()

	if attempts < c.cfg.MaxRedeliveries {
		c.log.Warn().Err(cause).Str("record", key).Int("attempts", attempts).Msg("poison record, redelivering")
		return actionRewind
	}

	if c.dlq != nil {
		err := c.dlq.Park(ctx, ports.DeadLetter{
			Topic:     rec.Topic,
			Partition: rec.Partition,
			Offset:    rec.Offset,
			Key:       string(rec.Key),
			Value:     rec.Value,
			Reason:    cause.Error(),
			Attempts:  attempts,
			ParkedAt:  c.now().UTC(),
		})
		if err != nil {
			c.log.Error().Err(err).Str("record", key).Msg("dead-letter park failed, redelivering")
			return actionRewind
		}
	} else {
		c.log.Error().Err(cause).Str("record", key).Int("attempts", attempts).Msg("poison record dropped")
	}

	c.forget(rec)
	return actionCommit
}

func (c *Consumer) rewind(rec *kgo.Record) {
	c.client.SetOffsets(map[string]map[int32]kgo.EpochOffset{
		rec.Topic: {rec.Partition: {Epoch: rec.LeaderEpoch, Offset: rec.Offset}},
	})
}

func (c *Consumer) forget(rec *kgo.Record) {
	c.mu.Lock()
	delete(c.attempts, recordKey(rec))
	c.mu.Unlock()
}

func recordKey(rec *kgo.Record) string {
	return fmt.Sprintf("%s/%d/%d", rec.Topic, rec.Partition, rec.Offset)
}
