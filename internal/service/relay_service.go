package service

import (
	"context"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"smartwallet-core/internal/model"
	"smartwallet-core/internal/service/mq"
	"smartwallet-core/pkg/logger"
)

// RelayService drains the transactional outbox to the event bus. Rows
// are published oldest-first and flipped to SENT individually, so a
// crash mid-batch re-publishes at most the unflipped tail; consumers
// must tolerate duplicates.
type RelayService struct {
	db        *gorm.DB
	producer  mq.Producer
	interval  time.Duration
	batchSize int
}

func NewRelayService(db *gorm.DB, producer mq.Producer) *RelayService {
	return &RelayService{
		db:        db,
		producer:  producer,
		interval:  2 * time.Second,
		batchSize: 100,
	}
}

// Start runs the relay loop until ctx is cancelled.
func (s *RelayService) Start(ctx context.Context) {
	logger.Info("outbox relay started", zap.Duration("interval", s.interval))

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			logger.Info("outbox relay stopped")
			return
		case <-ticker.C:
			if err := s.relayOnce(ctx); err != nil {
				logger.Error("outbox relay pass failed", zap.Error(err))
			}
		}
	}
}

func (s *RelayService) relayOnce(ctx context.Context) error {
	var pending []model.OutboxMessage
	err := s.db.WithContext(ctx).
		Where("status = ?", "PENDING").
		Order("id asc").Limit(s.batchSize).
		Find(&pending).Error
	if err != nil {
		return err
	}

	for _, msg := range pending {
		if err := s.producer.Publish(ctx, msg.Topic, msg.Key, msg.Payload); err != nil {
			// Row stays PENDING and is retried next pass.
			logger.Error("outbox publish failed",
				zap.Uint64("id", msg.ID),
				zap.String("topic", msg.Topic),
				zap.Error(err))
			return err
		}

		if err := s.db.WithContext(ctx).Model(&model.OutboxMessage{}).
			Where("id = ?", msg.ID).
			Update("status", "SENT").Error; err != nil {
			return err
		}
	}
	return nil
}
