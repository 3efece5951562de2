// Package gateway talks to the remote smart-wallet gateway: the service
// that accumulates transaction batches, estimates and relays them, and
// runs the off-chain payment network.
//
// The pending batch is a stateful resource on the gateway side, keyed by
// the session's contract account. Append order is submission order, and a
// failed append leaves the remote batch partially populated; callers must
// always ClearBatch before building a new one.
package gateway

import "context"

// Gateway is the remote smart-wallet gateway surface. All methods are
// network calls and may fail with a transport error; none of them retry.
type Gateway interface {
	// Init registers the session key with the gateway and computes the
	// contract account. Must succeed before any other call.
	Init(ctx context.Context, privateKeyHex string) error

	// AccountAddress returns the contract account bound to the session,
	// or "" when the session is not initialized.
	AccountAddress() string

	// GetConnectedAccounts lists the smart-contract accounts owned by the
	// session key.
	GetConnectedAccounts(ctx context.Context) ([]Account, error)

	// ReserveENSName reserves an ENS subname for the session account.
	ReserveENSName(ctx context.Context, name string) error

	// ClearBatch discards the gateway's pending batch. Safe to call with
	// an already-empty batch.
	ClearBatch(ctx context.Context) error

	// AppendToBatch adds one transaction to the pending batch.
	AppendToBatch(ctx context.Context, tx TransactionIntent) error

	// EstimateBatch estimates the cost of the pending batch, optionally
	// paying fees in feeToken. A nil estimate with nil error means the
	// gateway had no estimate; that is not a failure.
	EstimateBatch(ctx context.Context, feeToken string) (*BatchEstimate, error)

	// SubmitBatch finalizes and relays the pending batch.
	SubmitBatch(ctx context.Context) (*SubmittedBatch, error)

	// IncreasePaymentChannelAmount tops up a payment channel directly,
	// without touching the pending batch.
	IncreasePaymentChannelAmount(ctx context.Context, req IncreasePaymentChannelRequest) (*SubmittedBatch, error)

	// GetAccountBalances returns balances for the given token addresses.
	// The native currency is always included and must not be part of the
	// filter.
	GetAccountBalances(ctx context.Context, account string, tokens []string) ([]AccountBalance, error)

	// GetPaymentChannels lists channels where address is sender or
	// recipient.
	GetPaymentChannels(ctx context.Context, address string) ([]PaymentChannel, error)

	// GetPaymentDeposits returns payment-network deposits for the session
	// account, always including the native one.
	GetPaymentDeposits(ctx context.Context, tokens []string) ([]PaymentDeposit, error)

	// GetENSNode resolves an ENS name, hash or address.
	GetENSNode(ctx context.Context, nameOrHashOrAddress string) (*ENSNode, error)

	// GetSubmittedBatch returns the relay state of a previously submitted
	// batch by its hash.
	GetSubmittedBatch(ctx context.Context, hash string) (*SubmittedBatch, error)

	// Destroy tears the session down. Subsequent calls fail.
	Destroy() error
}
