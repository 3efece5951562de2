package service

import (
	"context"
	"errors"
	"strings"
	"sync/atomic"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"smartwallet-core/internal/gateway"
	"smartwallet-core/internal/model"
	"smartwallet-core/internal/service/mq"
	"smartwallet-core/pkg/assets"
	"smartwallet-core/pkg/errno"
	"smartwallet-core/pkg/logger"
	"smartwallet-core/pkg/monitor"
	"smartwallet-core/pkg/utils/lock"
)

const (
	ensSuffix   = ".smart.eth"
	sendLockTTL = 2 * time.Minute
)

// SubmissionEvent is published after a send is accepted by the gateway.
type SubmissionEvent struct {
	Account        string `json:"account"`
	Hash           string `json:"hash"`
	PaymentChannel bool   `json:"payment_channel"`
}

// ReconcileEvent is published after payment-channel reconciliation
// persisted new history records.
type ReconcileEvent struct {
	Account string `json:"account"`
	Records int    `json:"records"`
}

// WalletService is the orchestration layer: it owns the session
// lifecycle, the local account/asset/history state, and the glue between
// the gateway services and the database.
type WalletService struct {
	db           *gorm.DB
	gw           gateway.Gateway
	batch        *BatchService
	deposits     *DepositService
	reconciler   *ReconcileService
	locker       lock.DistributedLock
	paymentToken string // symbol of the payment-network stake token

	online atomic.Bool
}

func NewWalletService(db *gorm.DB, gw gateway.Gateway, batch *BatchService, deposits *DepositService, reconciler *ReconcileService, locker lock.DistributedLock, paymentToken string) *WalletService {
	s := &WalletService{
		db:           db,
		gw:           gw,
		batch:        batch,
		deposits:     deposits,
		reconciler:   reconciler,
		locker:       locker,
		paymentToken: paymentToken,
	}
	s.online.Store(true)
	return s
}

// SetOnline flips the connectivity flag; gateway-touching operations
// refuse to start while offline.
func (s *WalletService) SetOnline(online bool) {
	s.online.Store(online)
}

func (s *WalletService) requireOnline(op string) error {
	if !s.online.Load() {
		logger.Warn("operation skipped while offline", zap.String("op", op))
		return errno.ErrOffline
	}
	return nil
}

func (s *WalletService) requireSession(op string) error {
	if s.gw.AccountAddress() == "" {
		logger.Warn("operation requires an initialized session", zap.String("op", op))
		return errno.ErrSessionNotInitialized
	}
	return nil
}

// InitSession registers the session key with the gateway and binds the
// contract account.
func (s *WalletService) InitSession(ctx context.Context, privateKeyHex string) error {
	if err := s.requireOnline("initSession"); err != nil {
		return err
	}

	if err := s.gw.Init(ctx, privateKeyHex); err != nil {
		logger.Error("session init failed", zap.Error(err))
		return errno.ErrGatewayTransport
	}

	logger.Info("session initialized", zap.String("account", s.gw.AccountAddress()))
	return nil
}

// CloseSession tears the gateway session down.
func (s *WalletService) CloseSession() error {
	return s.gw.Destroy()
}

// ImportAccounts pulls the smart-contract accounts connected to the
// session key, persists them, and seeds the first one as active with the
// given asset set. Balances refresh afterwards on a best-effort basis.
func (s *WalletService) ImportAccounts(ctx context.Context, initialAssets []assets.Asset) error {
	if err := s.requireOnline("importAccounts"); err != nil {
		return err
	}
	if err := s.requireSession("importAccounts"); err != nil {
		return err
	}

	accounts, err := s.gw.GetConnectedAccounts(ctx)
	if err != nil {
		logger.Error("importAccounts: getConnectedAccounts failed", zap.Error(err))
		return errno.ErrGatewayTransport
	}
	if len(accounts) == 0 {
		logger.Warn("importAccounts: session key owns no accounts")
		return errno.ErrNoGatewayAccounts
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, acc := range accounts {
			row := model.SmartWalletAccount{Address: acc.Address, Type: acc.Type}
			if err := tx.Clauses(clause.OnConflict{
				Columns:   []clause.Column{{Name: "address"}},
				DoNothing: true,
			}).Create(&row).Error; err != nil {
				return err
			}
		}

		var activeCount int64
		if err := tx.Model(&model.SmartWalletAccount{}).
			Where("is_active = ?", true).Count(&activeCount).Error; err != nil {
			return err
		}
		if activeCount == 0 {
			if err := tx.Model(&model.SmartWalletAccount{}).
				Where("address = ?", accounts[0].Address).
				Update("is_active", true).Error; err != nil {
				return err
			}
		}

		var active model.SmartWalletAccount
		if err := tx.Where("is_active = ?", true).First(&active).Error; err != nil {
			return err
		}
		for _, a := range initialAssets {
			row := model.AccountAsset{
				AccountID: active.ID,
				Address:   strings.ToLower(a.Address),
				Symbol:    a.Symbol,
				Decimals:  a.Decimals,
			}
			if err := tx.Clauses(clause.OnConflict{
				Columns:   []clause.Column{{Name: "account_id"}, {Name: "address"}},
				DoNothing: true,
			}).Create(&row).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		logger.Error("importAccounts: persisting accounts failed", zap.Error(err))
		return errno.ErrDatabase
	}

	logger.Info("accounts imported", zap.Int("count", len(accounts)))

	if err := s.RefreshBalances(ctx); err != nil {
		logger.Warn("importAccounts: initial balance refresh failed", zap.Error(err))
	}
	return nil
}

// ActiveAccount returns the account the wallet currently operates as.
func (s *WalletService) ActiveAccount(ctx context.Context) (*model.SmartWalletAccount, error) {
	var account model.SmartWalletAccount
	err := s.db.WithContext(ctx).Where("is_active = ?", true).First(&account).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errno.ErrAccountNotFound
		}
		return nil, errno.ErrDatabase
	}
	return &account, nil
}

// ReserveENSName reserves username under the wallet's ENS suffix.
func (s *WalletService) ReserveENSName(ctx context.Context, username string) error {
	if err := s.requireOnline("reserveENSName"); err != nil {
		return err
	}
	if err := s.requireSession("reserveENSName"); err != nil {
		return err
	}

	fullName := strings.ToLower(username) + ensSuffix
	if err := s.gw.ReserveENSName(ctx, fullName); err != nil {
		logger.Error("reserveENSName failed", zap.String("name", fullName), zap.Error(err))
		return errno.ErrGatewayTransport
	}
	logger.Info("ens name reserved", zap.String("name", fullName))
	return nil
}

// RefreshBalances fetches balances for the active account's assets and
// replaces the cached rows wholesale. A partial gateway response still
// counts as a refresh; stale rows for assets the response dropped are
// removed with the rest.
func (s *WalletService) RefreshBalances(ctx context.Context) error {
	account, err := s.ActiveAccount(ctx)
	if err != nil {
		return err
	}
	index, err := s.assetIndex(ctx, account.ID)
	if err != nil {
		return err
	}

	balances, err := s.deposits.GetBalances(ctx, account.Address, index.List())
	if err != nil {
		return err
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("account_id = ?", account.ID).
			Delete(&model.AccountBalance{}).Error; err != nil {
			return err
		}
		for _, b := range balances {
			row := model.AccountBalance{
				AccountID: account.ID,
				Symbol:    b.Symbol,
				Balance:   b.Balance,
			}
			if err := tx.Create(&row).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		logger.Error("refreshBalances: persisting failed", zap.Error(err))
		return errno.ErrDatabase
	}

	if monitor.Business != nil {
		monitor.Business.BalanceRefreshTotal.WithLabelValues("success").Inc()
	}
	return nil
}

// CachedBalances returns the last persisted balances for the active
// account.
func (s *WalletService) CachedBalances(ctx context.Context) ([]model.AccountBalance, error) {
	account, err := s.ActiveAccount(ctx)
	if err != nil {
		return nil, err
	}
	var rows []model.AccountBalance
	if err := s.db.WithContext(ctx).
		Where("account_id = ?", account.ID).
		Order("symbol asc").Find(&rows).Error; err != nil {
		return nil, errno.ErrDatabase
	}
	return rows, nil
}

// RefreshDepositBalance re-reads the payment-network stake for the
// configured payment token and upserts the local state row.
func (s *WalletService) RefreshDepositBalance(ctx context.Context) error {
	account, err := s.ActiveAccount(ctx)
	if err != nil {
		return err
	}
	index, err := s.assetIndex(ctx, account.ID)
	if err != nil {
		return err
	}
	asset, ok := index.BySymbol(s.paymentToken)
	if !ok {
		logger.Error("refreshDepositBalance: payment token not in asset index",
			zap.String("symbol", s.paymentToken))
		return errno.ErrAssetNotFound
	}

	baseUnits, err := s.deposits.GetAccountTokenDepositBalance(ctx, asset.Address)
	if err != nil {
		return err
	}
	staked := baseUnits.Shift(-asset.Decimals)

	state := model.PaymentNetworkState{
		AccountID:    account.ID,
		TokenSymbol:  asset.Symbol,
		StakedAmount: staked,
	}
	err = s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "account_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"token_symbol", "staked_amount", "updated_at"}),
	}).Create(&state).Error
	if err != nil {
		logger.Error("refreshDepositBalance: persisting failed", zap.Error(err))
		return errno.ErrDatabase
	}

	if monitor.Business != nil {
		monitor.Business.DepositRefreshTotal.WithLabelValues("success").Inc()
	}
	logger.Debug("deposit balance refreshed",
		zap.String("symbol", asset.Symbol),
		zap.String("staked", staked.String()))
	return nil
}

// InitPaymentNetwork marks the payment network as initialised for the
// active account once there is evidence of use: a positive stake or any
// payment-channel history. The flag never flips back.
func (s *WalletService) InitPaymentNetwork(ctx context.Context) error {
	account, err := s.ActiveAccount(ctx)
	if err != nil {
		return err
	}

	var state model.PaymentNetworkState
	err = s.db.WithContext(ctx).Where("account_id = ?", account.ID).First(&state).Error
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return errno.ErrDatabase
	}
	if state.Initialised {
		return nil
	}

	if err := s.RefreshDepositBalance(ctx); err != nil {
		return err
	}
	if err := s.db.WithContext(ctx).Where("account_id = ?", account.ID).First(&state).Error; err != nil {
		return errno.ErrDatabase
	}

	initialised := state.StakedAmount.IsPositive()
	if !initialised {
		var channelCount int64
		if err := s.db.WithContext(ctx).Model(&model.HistoryTransaction{}).
			Where("account_id = ? AND is_payment_channel = ?", account.ID, true).
			Count(&channelCount).Error; err != nil {
			return errno.ErrDatabase
		}
		initialised = channelCount > 0
	}
	if !initialised {
		return nil
	}

	if err := s.db.WithContext(ctx).Model(&model.PaymentNetworkState{}).
		Where("account_id = ?", account.ID).
		Update("initialised", true).Error; err != nil {
		return errno.ErrDatabase
	}
	logger.Info("payment network initialised", zap.String("account", account.Address))
	return nil
}

// PaymentNetwork returns the persisted payment-network state for the
// active account, or nil when no refresh has run yet.
func (s *WalletService) PaymentNetwork(ctx context.Context) (*model.PaymentNetworkState, error) {
	account, err := s.ActiveAccount(ctx)
	if err != nil {
		return nil, err
	}

	var state model.PaymentNetworkState
	err = s.db.WithContext(ctx).Where("account_id = ?", account.ID).First(&state).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, errno.ErrDatabase
	}
	return &state, nil
}

// SyncPaymentChannels reconciles the gateway's channel view into local
// history. New records and the reconcile event commit in one
// transaction; re-running against an unchanged gateway view writes
// nothing.
func (s *WalletService) SyncPaymentChannels(ctx context.Context) error {
	account, err := s.ActiveAccount(ctx)
	if err != nil {
		return err
	}
	index, err := s.assetIndex(ctx, account.ID)
	if err != nil {
		return err
	}

	channels := s.reconciler.FetchPaymentChannels(ctx, account.Address)
	if len(channels) == 0 {
		return nil
	}

	var existing []model.HistoryTransaction
	if err := s.db.WithContext(ctx).
		Where("account_id = ? AND is_payment_channel = ?", account.ID, true).
		Find(&existing).Error; err != nil {
		return errno.ErrDatabase
	}

	fresh := s.reconciler.Reconcile(account.ID, channels, existing, index)
	if len(fresh) == 0 {
		return nil
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for i := range fresh {
			if err := tx.Clauses(clause.OnConflict{
				Columns: []clause.Column{
					{Name: "account_id"}, {Name: "hash"}, {Name: "channel_state"}, {Name: "batch_position"},
				},
				DoNothing: true,
			}).Create(&fresh[i]).Error; err != nil {
				return err
			}
		}
		return model.CreateOutboxMessage(tx, mq.TopicReconcile, account.Address, ReconcileEvent{
			Account: account.Address,
			Records: len(fresh),
		})
	})
	if err != nil {
		logger.Error("syncPaymentChannels: persisting failed", zap.Error(err))
		return errno.ErrDatabase
	}

	logger.Info("payment channels reconciled",
		zap.String("account", account.Address),
		zap.Int("records", len(fresh)))
	return nil
}

// SubmitTransfer runs one send end to end: serialize per account, drive
// the gateway pipeline, then record pending history and the submission
// event together.
func (s *WalletService) SubmitTransfer(ctx context.Context, req SendRequest) (*gateway.SubmittedBatch, error) {
	if err := s.requireOnline("submitTransfer"); err != nil {
		return nil, err
	}
	if err := s.requireSession("submitTransfer"); err != nil {
		return nil, err
	}

	account, err := s.ActiveAccount(ctx)
	if err != nil {
		return nil, err
	}
	index, err := s.assetIndex(ctx, account.ID)
	if err != nil {
		return nil, err
	}

	lockKey := "send:" + strings.ToLower(account.Address)
	token, ok, err := s.locker.Acquire(ctx, lockKey, sendLockTTL)
	if err != nil {
		logger.Error("submitTransfer: acquiring send lock failed", zap.Error(err))
		return nil, errno.InternalServerError
	}
	if !ok {
		logger.Warn("submitTransfer: send already in flight",
			zap.String("account", account.Address))
		return nil, errno.ErrSendInProgress
	}
	defer func() {
		if err := s.locker.Release(ctx, lockKey, token); err != nil {
			logger.Error("submitTransfer: releasing send lock failed", zap.Error(err))
		}
	}()

	submitted, err := s.batch.Send(ctx, req)
	if err != nil {
		return nil, err
	}

	records := s.historyRecords(account, req, submitted, index)
	_, isPayment := req.(PeerToPeerSend)

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for i := range records {
			if err := tx.Create(&records[i]).Error; err != nil {
				return err
			}
		}
		return model.CreateOutboxMessage(tx, mq.TopicSubmission, account.Address, SubmissionEvent{
			Account:        account.Address,
			Hash:           submitted.Hash,
			PaymentChannel: isPayment,
		})
	})
	if err != nil {
		// The gateway already accepted the batch; a bookkeeping failure
		// must not report the send itself as failed.
		logger.Error("submitTransfer: recording history failed",
			zap.String("hash", submitted.Hash), zap.Error(err))
	}
	return submitted, nil
}

// historyRecords builds the pending history rows for an accepted send.
// Intents whose token is not in the asset index are logged and skipped,
// matching the read-path policy for unknown assets.
func (s *WalletService) historyRecords(account *model.SmartWalletAccount, req SendRequest, submitted *gateway.SubmittedBatch, index *assets.Index) []model.HistoryTransaction {
	now := time.Now()

	switch r := req.(type) {
	case OnChainBatchSend:
		records := make([]model.HistoryTransaction, 0, len(r.Transactions))
		for i, tx := range r.Transactions {
			asset, ok := resolveIntentAsset(tx.TokenAddress, index)
			if !ok {
				logger.Warn("submitTransfer: intent token not in asset index, history skipped",
					zap.String("token", tx.TokenAddress))
				continue
			}
			// All intents of one batch share the gateway hash; the intent
			// position keeps each row's identity distinct.
			records = append(records, model.HistoryTransaction{
				AccountID:     account.ID,
				Hash:          submitted.Hash,
				FromAddress:   account.Address,
				ToAddress:     tx.To,
				Value:         assets.FormatUnitsString(tx.Value, asset.Decimals),
				AssetSymbol:   asset.Symbol,
				BatchPosition: i,
				Status:        model.TxStatusPending,
				SubmittedAt:   now,
			})
		}
		return records

	case PeerToPeerSend:
		asset, ok := resolveIntentAsset(r.Token, index)
		if !ok {
			logger.Warn("submitTransfer: payment token not in asset index, history skipped",
				zap.String("token", r.Token))
			return nil
		}
		return []model.HistoryTransaction{{
			AccountID:        account.ID,
			Hash:             submitted.Hash,
			FromAddress:      account.Address,
			ToAddress:        r.Recipient,
			Value:            assets.FormatUnitsString(r.Value, asset.Decimals),
			AssetSymbol:      asset.Symbol,
			IsPaymentChannel: true,
			Status:           model.TxStatusPending,
			SubmittedAt:      now,
		}}

	default:
		return nil
	}
}

// History returns the active account's transaction history, newest
// first.
func (s *WalletService) History(ctx context.Context, limit int) ([]model.HistoryTransaction, error) {
	account, err := s.ActiveAccount(ctx)
	if err != nil {
		return nil, err
	}
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	var rows []model.HistoryTransaction
	if err := s.db.WithContext(ctx).
		Where("account_id = ?", account.ID).
		Order("submitted_at desc").Limit(limit).Find(&rows).Error; err != nil {
		return nil, errno.ErrDatabase
	}
	return rows, nil
}

func resolveIntentAsset(tokenAddress string, index *assets.Index) (assets.Asset, bool) {
	if tokenAddress == "" {
		tokenAddress = assets.AddressZero
	}
	return index.ByAddress(tokenAddress)
}

// assetIndex loads the account's asset set into a lookup index.
func (s *WalletService) assetIndex(ctx context.Context, accountID uint64) (*assets.Index, error) {
	var rows []model.AccountAsset
	if err := s.db.WithContext(ctx).
		Where("account_id = ?", accountID).
		Order("id asc").Find(&rows).Error; err != nil {
		return nil, errno.ErrDatabase
	}

	list := make([]assets.Asset, 0, len(rows))
	for _, r := range rows {
		list = append(list, assets.Asset{
			Address:  r.Address,
			Symbol:   r.Symbol,
			Decimals: r.Decimals,
		})
	}
	return assets.NewIndex(list), nil
}
