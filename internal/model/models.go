package model

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// History transaction statuses.
const (
	TxStatusPending   = "pending"
	TxStatusConfirmed = "confirmed"
	TxStatusFailed    = "failed"
)

// SmartWalletAccount is a smart-contract account imported from the
// gateway. One of them is active at a time.
type SmartWalletAccount struct {
	ID        uint64         `gorm:"primaryKey;autoIncrement" json:"id"`
	Address   string         `gorm:"type:varchar(64);not null;unique" json:"address"`
	Type      string         `gorm:"type:varchar(32);not null" json:"type"`
	IsActive  bool           `gorm:"not null;default:false;index" json:"is_active"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

// HistoryTransaction is the local projection of an on-chain batch send or
// a payment-channel commitment into the wallet's transaction history.
//
// The record identity is (account, hash, channel_state, batch_position),
// enforced by idx_account_hash_state. Payment-channel records carry
// position 0, so reconciliation never appends a second record for the
// same (hash, state) pair; batch sends share one hash and use the intent
// position to keep one row per intent.
type HistoryTransaction struct {
	ID               uint64          `gorm:"primaryKey;autoIncrement" json:"id"`
	AccountID        uint64          `gorm:"not null;uniqueIndex:idx_account_hash_state" json:"account_id"`
	Hash             string          `gorm:"type:varchar(128);not null;uniqueIndex:idx_account_hash_state" json:"hash"`
	FromAddress      string          `gorm:"type:varchar(64);not null" json:"from"`
	ToAddress        string          `gorm:"type:varchar(64);not null" json:"to"`
	Value            decimal.Decimal `gorm:"type:decimal(32,18);not null;default:0" json:"value"`
	AssetSymbol      string          `gorm:"type:varchar(16);not null" json:"asset"`
	IsPaymentChannel bool            `gorm:"not null;default:false" json:"is_payment_channel"`
	ChannelState     string          `gorm:"type:varchar(32);not null;default:'';uniqueIndex:idx_account_hash_state" json:"channel_state,omitempty"`
	BatchPosition    int             `gorm:"not null;default:0;uniqueIndex:idx_account_hash_state" json:"batch_position"`
	Status           string          `gorm:"type:varchar(16);not null;default:'pending'" json:"status"`
	TransactionHash  string          `gorm:"type:varchar(128);not null;default:''" json:"transaction_hash,omitempty"`
	SubmittedAt      time.Time       `json:"submitted_at"`
	CreatedAt        time.Time       `json:"created_at"`
	UpdatedAt        time.Time       `json:"updated_at"`
}

// AccountAsset is one supported asset of an account; the set is loaded at
// import time and used to build the in-memory asset index.
type AccountAsset struct {
	ID        uint64    `gorm:"primaryKey;autoIncrement" json:"id"`
	AccountID uint64    `gorm:"not null;uniqueIndex:idx_account_asset" json:"account_id"`
	Address   string    `gorm:"type:varchar(64);not null;uniqueIndex:idx_account_asset" json:"address"`
	Symbol    string    `gorm:"type:varchar(16);not null" json:"symbol"`
	Decimals  int32     `gorm:"not null;default:18" json:"decimals"`
	CreatedAt time.Time `json:"created_at"`
}

// AccountBalance is the cached balance of one asset, replaced wholesale
// on each successful refresh.
type AccountBalance struct {
	ID        uint64          `gorm:"primaryKey;autoIncrement" json:"id"`
	AccountID uint64          `gorm:"not null;uniqueIndex:idx_account_symbol" json:"account_id"`
	Symbol    string          `gorm:"type:varchar(16);not null;uniqueIndex:idx_account_symbol" json:"symbol"`
	Balance   decimal.Decimal `gorm:"type:decimal(32,18);not null;default:0" json:"balance"`
	UpdatedAt time.Time       `json:"updated_at"`
}

// PaymentNetworkState tracks the account's payment-network stake and
// whether the network has been initialised for it.
type PaymentNetworkState struct {
	ID           uint64          `gorm:"primaryKey;autoIncrement" json:"id"`
	AccountID    uint64          `gorm:"not null;unique" json:"account_id"`
	TokenSymbol  string          `gorm:"type:varchar(16);not null" json:"token_symbol"`
	StakedAmount decimal.Decimal `gorm:"type:decimal(32,18);not null;default:0" json:"staked_amount"`
	Initialised  bool            `gorm:"not null;default:false" json:"initialised"`
	UpdatedAt    time.Time       `json:"updated_at"`
}

// OutboxMessage implements the transactional outbox: wallet events are
// written in the same DB transaction as the state they describe and
// relayed to the MQ afterwards.
type OutboxMessage struct {
	ID        uint64         `gorm:"primaryKey;autoIncrement" json:"id"`
	Topic     string         `gorm:"type:varchar(255);not null" json:"topic"`
	Key       string         `gorm:"type:varchar(64);not null;default:''" json:"key"` // partition key
	DedupKey  string         `gorm:"type:varchar(64);not null;unique" json:"dedup_key"`
	Payload   []byte         `gorm:"type:text;not null" json:"payload"`
	Status    string         `gorm:"type:varchar(50);not null;default:'PENDING';index" json:"status"` // PENDING, SENT, FAILED
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

func (SmartWalletAccount) TableName() string {
	return "smart_wallet_accounts"
}

func (HistoryTransaction) TableName() string {
	return "history_transactions"
}

func (AccountAsset) TableName() string {
	return "account_assets"
}

func (AccountBalance) TableName() string {
	return "account_balances"
}

func (PaymentNetworkState) TableName() string {
	return "payment_network_states"
}

func (OutboxMessage) TableName() string {
	return "outbox_messages"
}
