package kafka

import (
	"context"
	"encoding/json"
	"time"

	wbfkafka "github.com/wb-go/wbf/kafka"
	"github.com/wb-go/wbf/retry"
	"github.com/wb-go/wbf/zlog"

	"github.com/zotdga/zotdga/internal/config"
	"github.com/zotdga/zotdga/internal/dto"
)

type TaskHandler func(ctx context.Context, task *dto.PrewarmTask) error

type Consumer struct {
	client  *wbfkafka.Consumer
	handler TaskHandler
	topic   string
}

func NewConsumer(cfg *config.KafkaConfig, handler TaskHandler) (*Consumer, error) {
	client := wbfkafka.NewConsumer(cfg.Brokers, cfg.Topic, cfg.GroupID)

	zlog.Logger.Info().
		Strs("brokers", cfg.Brokers).
		Str("topic", cfg.Topic).
		Str("group_id", cfg.GroupID).
		Msg("Kafka consumer initialized (wbf)")

	return &Consumer{
		client:  client,
		handler: handler,
		topic:   cfg.Topic,
	}, nil
}

func (c *Consumer) Start(ctx context.Context) error {
	strategy := retry.Strategy{
		Attempts: 3,
		Delay:    2 * time.Second,
		Backoff:  2.0,
	}

	for {
		select {
		case <-ctx.Done():
			zlog.Logger.Info().Msg("Kafka consumer stopped")
			return nil
		default:
			msg, err := c.client.FetchWithRetry(ctx, strategy)
			if err != nil {
				zlog.Logger.Error().Err(err).Msg("Failed to fetch Kafka message")
				time.Sleep(time.Second)
				continue
			}

			var task dto.PrewarmTask
			if err := json.Unmarshal(msg.Value, &task); err != nil {
				zlog.Logger.Error().
					Err(err).
					Bytes("msg", msg.Value).
					Msg("Failed to unmarshal prewarm task")
				continue
			}

			if task.AssetID == "" || task.OwnerID == "" {
				zlog.Logger.Error().
					Str("asset_id", task.AssetID).
					Str("owner_id", task.OwnerID).
					Msg("Invalid task: empty AssetID or OwnerID")
				continue
			}

			zlog.Logger.Info().
				Str("asset_id", task.AssetID).
				Msg("Received prewarm task")

			if err := c.handler(ctx, &task); err != nil {
				zlog.Logger.Error().
					Err(err).
					Str("asset_id", task.AssetID).
					Msg("Prewarm task failed")
				continue
			}

			if err := c.client.Commit(ctx, msg); err != nil {
				zlog.Logger.Error().
					Err(err).
					Str("asset_id", task.AssetID).
					Msg("Failed to commit message")
				continue
			}

			zlog.Logger.Info().
				Str("asset_id", task.AssetID).
				Msg("Prewarm task processed and committed")
		}
	}
}

func (c *Consumer) Close() error {
	if err := c.client.Close(); err != nil {
		zlog.Logger.Error().Err(err).Msg("Failed to close Kafka consumer")
		return err
	}
	zlog.Logger.Info().Msg("Kafka consumer closed successfully")
	return nil
}
