package gateway

import (
	"context"
	"fmt"
	"sync"

	"github.com/ethereum/go-ethereum/rpc"

	"smartwallet-core/pkg/errno"
)

// Client is the JSON-RPC implementation of Gateway. One Client holds one
// gateway session; construct it at startup and inject it by reference
// into the services that need it.
type Client struct {
	rpc     *rpc.Client
	network string

	mu             sync.RWMutex
	accountAddress string
}

// Dial connects to the gateway RPC endpoint. The session is not usable
// until Init has run.
func Dial(ctx context.Context, url string, network string) (*Client, error) {
	c, err := rpc.DialContext(ctx, url)
	if err != nil {
		return nil, fmt.Errorf("gateway dial %s: %w", url, err)
	}
	return &Client{rpc: c, network: network}, nil
}

type initSessionParams struct {
	PrivateKey string `json:"privateKey"`
	Network    string `json:"network"`
	Sync       bool   `json:"sync"`
}

// Init registers the session key with the gateway and computes the
// contract account for it. Must be called once before any other method.
func (c *Client) Init(ctx context.Context, privateKeyHex string) error {
	var account Account
	err := c.rpc.CallContext(ctx, &account, "gateway_computeContractAccount", initSessionParams{
		PrivateKey: privateKeyHex,
		Network:    c.network,
		Sync:       true,
	})
	if err != nil {
		return fmt.Errorf("gateway computeContractAccount: %w", err)
	}

	c.mu.Lock()
	c.accountAddress = account.Address
	c.mu.Unlock()
	return nil
}

func (c *Client) AccountAddress() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.accountAddress
}

// requireSession guards methods that need an initialized session; the
// precondition failure is detected before any remote call.
func (c *Client) requireSession() error {
	if c.AccountAddress() == "" {
		return errno.ErrSessionNotInitialized
	}
	return nil
}

func (c *Client) call(ctx context.Context, result interface{}, method string, args ...interface{}) error {
	if err := c.requireSession(); err != nil {
		return err
	}
	if err := c.rpc.CallContext(ctx, result, method, args...); err != nil {
		return fmt.Errorf("gateway %s: %w", method, err)
	}
	return nil
}

// itemsResult matches the gateway's paginated list envelope.
type itemsResult[T any] struct {
	Items []T `json:"items"`
}

func (c *Client) GetConnectedAccounts(ctx context.Context) ([]Account, error) {
	// TODO: pagination; one page covers every session seen so far
	var res itemsResult[Account]
	if err := c.call(ctx, &res, "gateway_getConnectedAccounts"); err != nil {
		return nil, err
	}
	return res.Items, nil
}

type reserveENSNameParams struct {
	Name string `json:"name"`
}

func (c *Client) ReserveENSName(ctx context.Context, name string) error {
	var reserved ENSNode
	return c.call(ctx, &reserved, "gateway_reserveENSName", reserveENSNameParams{Name: name})
}

func (c *Client) ClearBatch(ctx context.Context) error {
	var ok bool
	return c.call(ctx, &ok, "gateway_clearBatch")
}

func (c *Client) AppendToBatch(ctx context.Context, tx TransactionIntent) error {
	var ok bool
	return c.call(ctx, &ok, "gateway_batchExecuteAccountTransaction", tx)
}

type estimateBatchParams struct {
	RefundToken string `json:"refundToken,omitempty"`
}

func (c *Client) EstimateBatch(ctx context.Context, feeToken string) (*BatchEstimate, error) {
	var estimate *BatchEstimate
	err := c.call(ctx, &estimate, "gateway_estimateBatch", estimateBatchParams{RefundToken: feeToken})
	if err != nil {
		return nil, err
	}
	return estimate, nil
}

func (c *Client) SubmitBatch(ctx context.Context) (*SubmittedBatch, error) {
	var submitted SubmittedBatch
	if err := c.call(ctx, &submitted, "gateway_submitBatch"); err != nil {
		return nil, err
	}
	return &submitted, nil
}

func (c *Client) IncreasePaymentChannelAmount(ctx context.Context, req IncreasePaymentChannelRequest) (*SubmittedBatch, error) {
	var submitted SubmittedBatch
	if err := c.call(ctx, &submitted, "gateway_increaseP2PPaymentChannelAmount", req); err != nil {
		return nil, err
	}
	return &submitted, nil
}

type accountBalancesParams struct {
	Account string   `json:"account"`
	Tokens  []string `json:"tokens,omitempty"`
}

func (c *Client) GetAccountBalances(ctx context.Context, account string, tokens []string) ([]AccountBalance, error) {
	var res itemsResult[AccountBalance]
	err := c.call(ctx, &res, "gateway_getAccountBalances", accountBalancesParams{
		Account: account,
		Tokens:  tokens,
	})
	if err != nil {
		return nil, err
	}
	return res.Items, nil
}

type paymentChannelsParams struct {
	SenderOrRecipient string `json:"senderOrRecipient"`
}

func (c *Client) GetPaymentChannels(ctx context.Context, address string) ([]PaymentChannel, error) {
	// TODO: pagination
	var res itemsResult[PaymentChannel]
	err := c.call(ctx, &res, "gateway_getP2PPaymentChannels", paymentChannelsParams{SenderOrRecipient: address})
	if err != nil {
		return nil, err
	}
	return res.Items, nil
}

type paymentDepositsParams struct {
	Tokens []string `json:"tokens,omitempty"`
}

func (c *Client) GetPaymentDeposits(ctx context.Context, tokens []string) ([]PaymentDeposit, error) {
	var res itemsResult[PaymentDeposit]
	err := c.call(ctx, &res, "gateway_getP2PPaymentDeposits", paymentDepositsParams{Tokens: tokens})
	if err != nil {
		return nil, err
	}
	return res.Items, nil
}

type ensNodeParams struct {
	NameOrHashOrAddress string `json:"nameOrHashOrAddress"`
}

func (c *Client) GetENSNode(ctx context.Context, nameOrHashOrAddress string) (*ENSNode, error) {
	var node *ENSNode
	err := c.call(ctx, &node, "gateway_getENSNode", ensNodeParams{NameOrHashOrAddress: nameOrHashOrAddress})
	if err != nil {
		return nil, err
	}
	return node, nil
}

type submittedBatchParams struct {
	Hash string `json:"hash"`
}

func (c *Client) GetSubmittedBatch(ctx context.Context, hash string) (*SubmittedBatch, error) {
	var batch *SubmittedBatch
	err := c.call(ctx, &batch, "gateway_getSubmittedBatch", submittedBatchParams{Hash: hash})
	if err != nil {
		return nil, err
	}
	return batch, nil
}

// Destroy closes the RPC connection and forgets the session account.
func (c *Client) Destroy() error {
	c.mu.Lock()
	c.accountAddress = ""
	c.mu.Unlock()

	c.rpc.Close()
	return nil
}
