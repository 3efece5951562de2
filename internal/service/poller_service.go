package service

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"smartwallet-core/pkg/logger"
	"smartwallet-core/pkg/utils/lock"
)

const syncLockKey = "cron:wallet_sync"

// PollerService runs the periodic sync: payment channels, balances and
// the deposit stake. The distributed lock keeps the sync at most-once
// across instances per tick.
type PollerService struct {
	wallet *WalletService
	locker lock.DistributedLock
	spec   string
	cron   *cron.Cron
}

func NewPollerService(wallet *WalletService, locker lock.DistributedLock, spec string) *PollerService {
	return &PollerService{
		wallet: wallet,
		locker: locker,
		spec:   spec,
	}
}

func (s *PollerService) Start() error {
	s.cron = cron.New()
	if _, err := s.cron.AddFunc(s.spec, s.tick); err != nil {
		return err
	}
	s.cron.Start()
	logger.Info("wallet sync scheduled", zap.String("spec", s.spec))
	return nil
}

// Stop halts scheduling and waits for a running tick to finish.
func (s *PollerService) Stop() {
	if s.cron == nil {
		return
	}
	<-s.cron.Stop().Done()
}

func (s *PollerService) tick() {
	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	token, ok, err := s.locker.Acquire(ctx, syncLockKey, time.Minute)
	if err != nil {
		logger.Error("wallet sync lock failed", zap.Error(err))
		return
	}
	if !ok {
		logger.Debug("wallet sync skipped, another instance holds the lock")
		return
	}
	defer func() {
		if err := s.locker.Release(ctx, syncLockKey, token); err != nil {
			logger.Error("wallet sync lock release failed", zap.Error(err))
		}
	}()

	// Each step degrades independently; one failing read must not stop
	// the others.
	if err := s.wallet.SyncPaymentChannels(ctx); err != nil {
		logger.Warn("wallet sync: payment channels failed", zap.Error(err))
	}
	if err := s.wallet.RefreshBalances(ctx); err != nil {
		logger.Warn("wallet sync: balances failed", zap.Error(err))
	}
	if err := s.wallet.RefreshDepositBalance(ctx); err != nil {
		logger.Warn("wallet sync: deposit failed", zap.Error(err))
	}
}
