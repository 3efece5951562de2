package service

import (
	"context"
	"sync"

	"smartwallet-core/internal/gateway"
)

// fakeGateway is a scripted in-memory Gateway. Every remote call is
// recorded in order so tests can assert on the exact sequence.
type fakeGateway struct {
	mu    sync.Mutex
	calls []string

	initErr     error
	account     string
	clearErr    error
	appendErr   error
	appendErrAt int // 0-based append position that fails; -1 means never
	estimate    *gateway.BatchEstimate
	estimateErr error
	submitted   *gateway.SubmittedBatch
	submitErr   error
	paymentErr  error

	accounts    []gateway.Account
	accountsErr error
	balances    []gateway.AccountBalance
	balancesErr error
	channels    []gateway.PaymentChannel
	channelsErr error
	deposits    []gateway.PaymentDeposit
	depositsErr error
	batchByHash *gateway.SubmittedBatch
	batchErr    error

	appended      []gateway.TransactionIntent
	feeToken      string
	balanceTokens []string
	depositTokens []string
	paymentReq    *gateway.IncreasePaymentChannelRequest
}

func newFakeGateway() *fakeGateway {
	return &fakeGateway{
		account:     "0xAccount",
		appendErrAt: -1,
		submitted:   &gateway.SubmittedBatch{Hash: "0xbatchhash"},
	}
}

func (f *fakeGateway) record(call string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, call)
}

func (f *fakeGateway) callCount(name string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, c := range f.calls {
		if c == name {
			n++
		}
	}
	return n
}

func (f *fakeGateway) Init(ctx context.Context, privateKeyHex string) error {
	f.record("init")
	return f.initErr
}

func (f *fakeGateway) AccountAddress() string {
	return f.account
}

func (f *fakeGateway) GetConnectedAccounts(ctx context.Context) ([]gateway.Account, error) {
	f.record("getConnectedAccounts")
	return f.accounts, f.accountsErr
}

func (f *fakeGateway) ReserveENSName(ctx context.Context, name string) error {
	f.record("reserveENSName")
	return nil
}

func (f *fakeGateway) ClearBatch(ctx context.Context) error {
	f.record("clearBatch")
	if f.clearErr != nil {
		return f.clearErr
	}
	f.appended = nil
	return nil
}

func (f *fakeGateway) AppendToBatch(ctx context.Context, tx gateway.TransactionIntent) error {
	f.record("appendToBatch")
	if f.appendErr != nil && (f.appendErrAt < 0 || f.appendErrAt == len(f.appended)) {
		return f.appendErr
	}
	f.appended = append(f.appended, tx)
	return nil
}

func (f *fakeGateway) EstimateBatch(ctx context.Context, feeToken string) (*gateway.BatchEstimate, error) {
	f.record("estimateBatch")
	f.feeToken = feeToken
	return f.estimate, f.estimateErr
}

func (f *fakeGateway) SubmitBatch(ctx context.Context) (*gateway.SubmittedBatch, error) {
	f.record("submitBatch")
	return f.submitted, f.submitErr
}

func (f *fakeGateway) IncreasePaymentChannelAmount(ctx context.Context, req gateway.IncreasePaymentChannelRequest) (*gateway.SubmittedBatch, error) {
	f.record("increasePaymentChannelAmount")
	f.paymentReq = &req
	if f.paymentErr != nil {
		return nil, f.paymentErr
	}
	return f.submitted, nil
}

func (f *fakeGateway) GetAccountBalances(ctx context.Context, account string, tokens []string) ([]gateway.AccountBalance, error) {
	f.record("getAccountBalances")
	f.balanceTokens = tokens
	return f.balances, f.balancesErr
}

func (f *fakeGateway) GetPaymentChannels(ctx context.Context, address string) ([]gateway.PaymentChannel, error) {
	f.record("getPaymentChannels")
	return f.channels, f.channelsErr
}

func (f *fakeGateway) GetPaymentDeposits(ctx context.Context, tokens []string) ([]gateway.PaymentDeposit, error) {
	f.record("getPaymentDeposits")
	f.depositTokens = tokens
	return f.deposits, f.depositsErr
}

func (f *fakeGateway) GetENSNode(ctx context.Context, nameOrHashOrAddress string) (*gateway.ENSNode, error) {
	f.record("getENSNode")
	return nil, nil
}

func (f *fakeGateway) GetSubmittedBatch(ctx context.Context, hash string) (*gateway.SubmittedBatch, error) {
	f.record("getSubmittedBatch")
	return f.batchByHash, f.batchErr
}

func (f *fakeGateway) Destroy() error {
	f.record("destroy")
	f.account = ""
	return nil
}
