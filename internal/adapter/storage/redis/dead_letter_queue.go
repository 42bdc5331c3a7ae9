package redis

import (
	"context"
	"encoding/json"
	"fmt"

	"transaction-orchestrator/internal/core/ports"

	goredis "github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

// DeadLetterQueue implements ports.DeadLetterQueue as a Redis list.
// Newest letters are pushed to the head.
type DeadLetterQueue struct {
	client   *goredis.Client
	log      zerolog.Logger
	listName string
}

// NewDeadLetterQueue creates a dead-letter list writer.
func NewDeadLetterQueue(client *goredis.Client, listName string, log zerolog.Logger) *DeadLetterQueue {
	return &DeadLetterQueue{
		client:   client,
		log:      log.With().Str("component", "dead_letter_queue").Logger(),
		listName: listName,
	}
}

// Park stores a poison record for manual inspection.
func (q *DeadLetterQueue) Park(ctx context.Context, letter ports.DeadLetter) error {
	data, err := json.Marshal(letter)
	if err != nil {
		return fmt.Errorf("marshal dead letter: %w", err)
	}

	if err := q.client.LPush(ctx, q.listName, data).Err(); err != nil {
		return fmt.Errorf("redis dead letter push: %w", err)
	}

	q.log.Warn().
		Str("topic", letter.Topic).
		Int32("partition", letter.Partition).
		Int64("offset", letter.Offset).
		Int("attempts", letter.Attempts).
		Str("reason", letter.Reason).
		Msg("record parked in dead-letter list")
	return nil
}

// List returns up to limit parked letters, newest first.
func (q *DeadLetterQueue) List(ctx context.Context, limit int64) ([]ports.DeadLetter, error) {
	raw, err := q.client.LRange(ctx, q.listName, 0, limit-1).Result()
	if err != nil {
		return nil, fmt.Errorf("redis dead letter range: %w", err)
	}

	letters := make([]ports.DeadLetter, 0, len(raw))
	for _, item := range raw {
		var l ports.DeadLetter
		if err := json.Unmarshal([]byte(item), &l); err != nil {
			q.log.Error().Err(err).Msg("skipping undecodable dead letter")
			continue
		}
		letters = append(letters, l)
	}
	return letters, nil
}
