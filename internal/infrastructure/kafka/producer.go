package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	wbfkafka "github.com/wb-go/wbf/kafka"
	"github.com/wb-go/wbf/retry"
	"github.com/wb-go/wbf/zlog"

	"github.com/zotdga/zotdga/internal/config"
	"github.com/zotdga/zotdga/internal/domain"
	"github.com/zotdga/zotdga/internal/dto"
)

type Producer struct {
	client *wbfkafka.Producer
	topic  string
}

func NewProducer(cfg *config.KafkaConfig) *Producer {
	client := wbfkafka.NewProducer(cfg.Brokers, cfg.Topic)
	zlog.Logger.Info().
		Strs("brokers", cfg.Brokers).
		Str("topic", cfg.Topic).
		Msg("Kafka producer initialized (wbf)")
	return &Producer{
		client: client,
		topic:  cfg.Topic,
	}
}

// PublishPrewarmTask enqueues a thumbnail prewarm for an uploaded asset.
func (p *Producer) PublishPrewarmTask(ctx context.Context, assetID, ownerID string) error {
	task := dto.PrewarmTask{
		AssetID: assetID,
		OwnerID: ownerID,
	}

	data, err := json.Marshal(task)
	if err != nil {
		zlog.Logger.Error().
			Err(err).
			Str("asset_id", task.AssetID).
			Msg("Failed to marshal prewarm task")
		return fmt.Errorf("%w: marshal task: %v", domain.ErrQueueFailed, err)
	}

	strategy := retry.Strategy{
		Attempts: 3,
		Delay:    2 * time.Second,
		Backoff:  2.0,
	}
	if err := p.client.SendWithRetry(ctx, strategy, nil, data); err != nil {
		zlog.Logger.Error().
			Err(err).
			Str("asset_id", task.AssetID).
			Msg("Failed to send Kafka message with retry")
		return fmt.Errorf("%w: send task: %v", domain.ErrQueueFailed, err)
	}

	zlog.Logger.Info().
		Str("asset_id", task.AssetID).
		Str("owner_id", task.OwnerID).
		Msg("Prewarm task sent to Kafka")
	return nil
}

func (p *Producer) Close() error {
	if err := p.client.Close(); err != nil {
		zlog.Logger.Error().Err(err).Msg("Failed to close Kafka producer")
		return err
	}
	zlog.Logger.Info().Msg("Kafka producer closed successfully")
	return nil
}
