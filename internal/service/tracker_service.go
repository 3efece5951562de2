package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"smartwallet-core/internal/gateway"
	"smartwallet-core/internal/model"
	"smartwallet-core/internal/service/mq"
	"smartwallet-core/pkg/config"
	"smartwallet-core/pkg/logger"
)

// TrackerService follows submitted batches until the gateway relay
// settles them, flipping pending history rows to confirmed or failed.
// It consumes submission events; a batch that is still queued leaves the
// event unacknowledged so the broker redelivers it later.
type TrackerService struct {
	db       *gorm.DB
	gw       gateway.Gateway
	consumer mq.Consumer
}

func NewTrackerService(db *gorm.DB, gw gateway.Gateway, consumer mq.Consumer) *TrackerService {
	return &TrackerService{db: db, gw: gw, consumer: consumer}
}

// Start subscribes to submission events until ctx is cancelled.
func (s *TrackerService) Start(ctx context.Context) error {
	return s.consumer.Subscribe(ctx, mq.TopicSubmission, s.handle)
}

func (s *TrackerService) Close() error {
	return s.consumer.Close()
}

func (s *TrackerService) handle(msg *mq.Message) error {
	var ev SubmissionEvent
	if err := json.Unmarshal(msg.Payload, &ev); err != nil {
		// Malformed events are dropped; redelivery cannot fix them.
		logger.Error("tracker: malformed submission event",
			zap.String("id", msg.ID), zap.Error(err))
		return nil
	}

	if ev.PaymentChannel {
		// Channel commitments settle through reconciliation, not the relay.
		return nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	batch, err := s.gw.GetSubmittedBatch(ctx, ev.Hash)
	if err != nil {
		return err
	}
	if batch == nil || batch.State == gateway.BatchStateQueued || batch.State == "" {
		return fmt.Errorf("batch %s not settled yet", ev.Hash)
	}

	status := model.TxStatusConfirmed
	if batch.State == gateway.BatchStateReverted {
		status = model.TxStatusFailed
	}

	var account model.SmartWalletAccount
	err = s.db.Where("address = ?", ev.Account).First(&account).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			logger.Warn("tracker: event for unknown account dropped",
				zap.String("account", ev.Account), zap.String("hash", ev.Hash))
			return nil
		}
		return err
	}

	updates := map[string]interface{}{"status": status}
	if batch.TransactionHash != "" {
		updates["transaction_hash"] = batch.TransactionHash
	}
	err = s.db.Model(&model.HistoryTransaction{}).
		Where("account_id = ? AND hash = ? AND status = ?", account.ID, ev.Hash, model.TxStatusPending).
		Updates(updates).Error
	if err != nil {
		return err
	}

	logger.Info("batch settled",
		zap.String("hash", ev.Hash),
		zap.String("state", batch.State),
		zap.String("status", status),
		zap.String("explorer", transactionExplorerLink(batch.TransactionHash)))
	return nil
}

// transactionExplorerLink builds the block-explorer URL for a mined
// transaction, or "" when the hash or the base URL is missing.
func transactionExplorerLink(txHash string) string {
	base := config.Global.Gateway.TxDetailsUrl
	if txHash == "" || base == "" {
		return ""
	}
	return base + txHash
}
