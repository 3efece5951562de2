package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"smartwallet-core/internal/gateway"
	"smartwallet-core/internal/model"
	"smartwallet-core/internal/service/mq"
	"smartwallet-core/pkg/errno"
)

// fakeLock always grants unless told otherwise.
type fakeLock struct {
	denied   bool
	acquired []string
	released []string
}

func (l *fakeLock) Acquire(ctx context.Context, key string, ttl time.Duration) (string, bool, error) {
	if l.denied {
		return "", false, nil
	}
	l.acquired = append(l.acquired, key)
	return "token", true, nil
}

func (l *fakeLock) Release(ctx context.Context, key string, token string) error {
	l.released = append(l.released, key)
	return nil
}

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(model.AllModels()...))
	return db
}

func seedActiveAccount(t *testing.T, db *gorm.DB) *model.SmartWalletAccount {
	t.Helper()
	account := &model.SmartWalletAccount{Address: "0xAccount", Type: "contract", IsActive: true}
	require.NoError(t, db.Create(account).Error)

	for _, a := range testAssets {
		require.NoError(t, db.Create(&model.AccountAsset{
			AccountID: account.ID,
			Address:   a.Address,
			Symbol:    a.Symbol,
			Decimals:  a.Decimals,
		}).Error)
	}
	return account
}

func newTestWalletService(db *gorm.DB, fake *fakeGateway, locker *fakeLock) *WalletService {
	return NewWalletService(
		db, fake,
		NewBatchService(fake),
		NewDepositService(fake),
		NewReconcileService(fake),
		locker, "PLR",
	)
}

func TestSubmitTransferRecordsEveryBatchIntent(t *testing.T) {
	db := newTestDB(t)
	account := seedActiveAccount(t, db)
	fake := newFakeGateway()
	svc := newTestWalletService(db, fake, &fakeLock{})

	// Approve then transfer against the same token: one gateway hash,
	// two history rows.
	submitted, err := svc.SubmitTransfer(context.Background(), OnChainBatchSend{
		Transactions: []gateway.TransactionIntent{
			{To: "0x00000000000000000000000000000000000000aa", TokenAddress: "0x00000000000000000000000000000000000000aa", Data: "0xapprove"},
			{To: "0x00000000000000000000000000000000000000aa", TokenAddress: "0x00000000000000000000000000000000000000aa", Data: "0xtransfer"},
		},
	})
	require.NoError(t, err)
	require.NotNil(t, submitted)

	var rows []model.HistoryTransaction
	require.NoError(t, db.Where("account_id = ?", account.ID).Order("batch_position asc").Find(&rows).Error)
	require.Len(t, rows, 2)
	assert.Equal(t, submitted.Hash, rows[0].Hash)
	assert.Equal(t, submitted.Hash, rows[1].Hash)
	assert.Equal(t, 0, rows[0].BatchPosition)
	assert.Equal(t, 1, rows[1].BatchPosition)
	assert.Equal(t, model.TxStatusPending, rows[0].Status)
	assert.Equal(t, model.TxStatusPending, rows[1].Status)

	var outboxCount int64
	require.NoError(t, db.Model(&model.OutboxMessage{}).
		Where("topic = ?", mq.TopicSubmission).Count(&outboxCount).Error)
	assert.Equal(t, int64(1), outboxCount)
}

func TestSubmitTransferRecordsPayment(t *testing.T) {
	db := newTestDB(t)
	account := seedActiveAccount(t, db)
	fake := newFakeGateway()
	svc := newTestWalletService(db, fake, &fakeLock{})

	submitted, err := svc.SubmitTransfer(context.Background(), PeerToPeerSend{
		Recipient: "0xRecipient",
		Token:     "0x00000000000000000000000000000000000000aa",
		Value:     "1000000000000000000",
	})
	require.NoError(t, err)
	require.NotNil(t, submitted)

	var rows []model.HistoryTransaction
	require.NoError(t, db.Where("account_id = ?", account.ID).Find(&rows).Error)
	require.Len(t, rows, 1)
	assert.True(t, rows[0].IsPaymentChannel)
	assert.Equal(t, "0xRecipient", rows[0].ToAddress)
}

func TestSubmitTransferRejectsConcurrentSend(t *testing.T) {
	db := newTestDB(t)
	seedActiveAccount(t, db)
	fake := newFakeGateway()
	svc := newTestWalletService(db, fake, &fakeLock{denied: true})

	submitted, err := svc.SubmitTransfer(context.Background(), OnChainBatchSend{
		Transactions: []gateway.TransactionIntent{{To: "0xA", Value: "1"}},
	})

	assert.Nil(t, submitted)
	assert.ErrorIs(t, err, errno.ErrSendInProgress)
	assert.Equal(t, 0, fake.callCount("submitBatch"))
}

func TestSubmitTransferReleasesLock(t *testing.T) {
	db := newTestDB(t)
	seedActiveAccount(t, db)
	fake := newFakeGateway()
	locker := &fakeLock{}
	svc := newTestWalletService(db, fake, locker)

	_, err := svc.SubmitTransfer(context.Background(), OnChainBatchSend{
		Transactions: []gateway.TransactionIntent{{To: "0xA", Value: "1"}},
	})
	require.NoError(t, err)

	require.Len(t, locker.acquired, 1)
	assert.Equal(t, locker.acquired, locker.released)
}
