package gateway

import "time"

// TransactionIntent is one transaction queued into the gateway batch.
// Immutable once appended; amounts are decimal strings in base units.
type TransactionIntent struct {
	To           string `json:"to"`
	Value        string `json:"value"`
	TokenAddress string `json:"tokenAddress,omitempty"` // token contract for token transfers
	Data         string `json:"data,omitempty"`         // hex calldata
}

// BatchEstimate is the gateway's cost estimate for the currently
// accumulated batch. Valid only for the batch it was computed against.
type BatchEstimate struct {
	FeeAmount string `json:"feeAmount"` // base units of FeeToken
	FeeToken  string `json:"feeToken"`  // empty means native currency
}

// SubmittedBatch identifies a batch accepted by the gateway relay.
type SubmittedBatch struct {
	Hash            string `json:"hash"`
	State           string `json:"state,omitempty"`
	TransactionHash string `json:"transactionHash,omitempty"` // on-chain hash once mined
}

// Batch relay states reported by GetSubmittedBatch.
const (
	BatchStateQueued   = "Queued"
	BatchStateSent     = "Sent"
	BatchStateReverted = "Reverted"
)

// ChannelState is the lifecycle state of a payment channel commitment.
type ChannelState string

const (
	ChannelStateOpened    ChannelState = "Opened"
	ChannelStateCommitted ChannelState = "Committed"
	ChannelStateSettled   ChannelState = "Settled"
)

// PaymentChannel is an off-chain payment commitment between two parties.
// The gateway owns the truth; the client holds read-only copies.
type PaymentChannel struct {
	Hash            string       `json:"hash"`
	Sender          string       `json:"sender"`
	Recipient       string       `json:"recipient"`
	Token           string       `json:"token,omitempty"` // empty means native currency
	CommittedAmount string       `json:"committedAmount"` // base units
	State           ChannelState `json:"state"`
	UpdatedAt       time.Time    `json:"updatedAt"`
}

// PaymentDeposit is a token stake held in the payment network.
type PaymentDeposit struct {
	Address         string `json:"address"` // deposit contract address
	Token           string `json:"token,omitempty"`
	TotalAmount     string `json:"totalAmount"`
	AvailableAmount string `json:"availableAmount"`
}

// AccountBalance is one entry of a multi-asset balance response.
// Token is empty for the native currency, which the gateway always
// includes regardless of the requested token filter.
type AccountBalance struct {
	Token   string `json:"token,omitempty"`
	Balance string `json:"balance"` // base units
}

// Account is a smart-contract account connected to the session key.
type Account struct {
	Address string `json:"address"`
	Type    string `json:"type,omitempty"`
	State   string `json:"state,omitempty"`
}

// ENSNode is an ENS registry entry held by the gateway.
type ENSNode struct {
	Name    string `json:"name"`
	Hash    string `json:"hash,omitempty"`
	Address string `json:"address,omitempty"`
	State   string `json:"state,omitempty"`
}

// IncreasePaymentChannelRequest tops up a peer-to-peer payment channel
// directly, bypassing the batch pipeline.
type IncreasePaymentChannelRequest struct {
	Recipient string `json:"recipient"`
	Token     string `json:"token,omitempty"` // empty means native currency
	Value     string `json:"value"`           // base units
}
