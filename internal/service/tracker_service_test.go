package service

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"smartwallet-core/internal/gateway"
	"smartwallet-core/internal/model"
	"smartwallet-core/internal/service/mq"
	"smartwallet-core/pkg/config"
)

func submissionMessage(t *testing.T, ev SubmissionEvent) *mq.Message {
	t.Helper()
	payload, err := json.Marshal(ev)
	require.NoError(t, err)
	return &mq.Message{ID: "1", Topic: mq.TopicSubmission, Key: ev.Account, Payload: payload}
}

func seedPendingHistory(t *testing.T, db *gorm.DB, accountID uint64, hash string) {
	t.Helper()
	require.NoError(t, db.Create(&model.HistoryTransaction{
		AccountID:   accountID,
		Hash:        hash,
		FromAddress: "0xFrom",
		ToAddress:   "0xTo",
		AssetSymbol: "PLR",
		Status:      model.TxStatusPending,
	}).Error)
}

func TestTrackerConfirmsOnlyTheEventAccount(t *testing.T) {
	db := newTestDB(t)
	account := seedActiveAccount(t, db)

	other := &model.SmartWalletAccount{Address: "0xOther", Type: "contract"}
	require.NoError(t, db.Create(other).Error)

	// Same gateway hash recorded for two accounts; only the event's
	// account settles.
	seedPendingHistory(t, db, account.ID, "0xbatchhash")
	seedPendingHistory(t, db, other.ID, "0xbatchhash")

	fake := newFakeGateway()
	fake.batchByHash = &gateway.SubmittedBatch{
		Hash:            "0xbatchhash",
		State:           gateway.BatchStateSent,
		TransactionHash: "0xmined",
	}
	tracker := NewTrackerService(db, fake, nil)

	err := tracker.handle(submissionMessage(t, SubmissionEvent{Account: account.Address, Hash: "0xbatchhash"}))
	require.NoError(t, err)

	var mine, theirs model.HistoryTransaction
	require.NoError(t, db.Where("account_id = ?", account.ID).First(&mine).Error)
	require.NoError(t, db.Where("account_id = ?", other.ID).First(&theirs).Error)

	assert.Equal(t, model.TxStatusConfirmed, mine.Status)
	assert.Equal(t, "0xmined", mine.TransactionHash)
	assert.Equal(t, model.TxStatusPending, theirs.Status)
	assert.Equal(t, "", theirs.TransactionHash)
}

func TestTrackerFailsRevertedBatch(t *testing.T) {
	db := newTestDB(t)
	account := seedActiveAccount(t, db)
	seedPendingHistory(t, db, account.ID, "0xbatchhash")

	fake := newFakeGateway()
	fake.batchByHash = &gateway.SubmittedBatch{Hash: "0xbatchhash", State: gateway.BatchStateReverted}
	tracker := NewTrackerService(db, fake, nil)

	err := tracker.handle(submissionMessage(t, SubmissionEvent{Account: account.Address, Hash: "0xbatchhash"}))
	require.NoError(t, err)

	var row model.HistoryTransaction
	require.NoError(t, db.Where("account_id = ?", account.ID).First(&row).Error)
	assert.Equal(t, model.TxStatusFailed, row.Status)
}

func TestTrackerRetriesUnsettledBatch(t *testing.T) {
	db := newTestDB(t)
	account := seedActiveAccount(t, db)
	seedPendingHistory(t, db, account.ID, "0xbatchhash")

	fake := newFakeGateway()
	fake.batchByHash = &gateway.SubmittedBatch{Hash: "0xbatchhash", State: gateway.BatchStateQueued}
	tracker := NewTrackerService(db, fake, nil)

	err := tracker.handle(submissionMessage(t, SubmissionEvent{Account: account.Address, Hash: "0xbatchhash"}))
	assert.Error(t, err)

	var row model.HistoryTransaction
	require.NoError(t, db.Where("account_id = ?", account.ID).First(&row).Error)
	assert.Equal(t, model.TxStatusPending, row.Status)
}

func TestTrackerIgnoresPaymentChannelEvents(t *testing.T) {
	fake := newFakeGateway()
	tracker := NewTrackerService(nil, fake, nil)

	err := tracker.handle(submissionMessage(t, SubmissionEvent{
		Account: "0xAccount", Hash: "0xbatchhash", PaymentChannel: true,
	}))
	require.NoError(t, err)
	assert.Equal(t, 0, fake.callCount("getSubmittedBatch"))
}

func TestTrackerDropsMalformedEvents(t *testing.T) {
	fake := newFakeGateway()
	tracker := NewTrackerService(nil, fake, nil)

	err := tracker.handle(&mq.Message{ID: "1", Topic: mq.TopicSubmission, Payload: []byte("{not json")})
	require.NoError(t, err)
	assert.Equal(t, 0, fake.callCount("getSubmittedBatch"))
}

func TestTransactionExplorerLink(t *testing.T) {
	prev := config.Global.Gateway.TxDetailsUrl
	config.Global.Gateway.TxDetailsUrl = "https://etherscan.io/tx/"
	defer func() { config.Global.Gateway.TxDetailsUrl = prev }()

	assert.Equal(t, "https://etherscan.io/tx/0xmined", transactionExplorerLink("0xmined"))
	assert.Equal(t, "", transactionExplorerLink(""))

	config.Global.Gateway.TxDetailsUrl = ""
	assert.Equal(t, "", transactionExplorerLink("0xmined"))
}
